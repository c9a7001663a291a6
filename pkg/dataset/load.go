package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// LoadFromFile loads a dataset, choosing the format by file extension.
func LoadFromFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset file %q: %w", path, err)
	}

	var ds *Dataset
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		ds, err = parseCSV(data)
	case ".json":
		ds, err = parseJSON(data)
	case ".yaml", ".yml":
		ds, err = parseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q for %q", ext, path)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing dataset %q: %w", path, err)
	}
	return ds, nil
}

// LoadFromText sniffs the format: a leading '{' or '[' is JSON, a leading
// "---" is YAML, anything else is CSV.
func LoadFromText(text string) (*Dataset, error) {
	trimmed := strings.TrimSpace(text)
	switch {
	case strings.HasPrefix(trimmed, "{"), strings.HasPrefix(trimmed, "["):
		return parseJSON([]byte(trimmed))
	case strings.HasPrefix(trimmed, "---"):
		return parseYAML([]byte(trimmed))
	default:
		return parseCSV([]byte(text))
	}
}

func parseCSV(data []byte) (*Dataset, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("csv has no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv: %w", err)
		}
		records = append(records, rec)
	}
	return New(header, records)
}

func parseJSON(data []byte) (*Dataset, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON")
	}

	set := newRecordSet()
	root := gjson.ParseBytes(data)
	switch {
	case root.IsArray():
		root.ForEach(func(_, item gjson.Result) bool {
			rec := newOrderedRecord()
			if item.IsObject() {
				flattenJSON("", item, rec)
			} else {
				rec.set(scalarColumn, jsonScalar(item))
			}
			set.add(rec)
			return true
		})
	case root.IsObject():
		rec := newOrderedRecord()
		flattenJSON("", root, rec)
		set.add(rec)
	default:
		return nil, fmt.Errorf("JSON dataset must be an array or an object, got %s", root.Type)
	}
	return set.dataset()
}

// flattenJSON writes obj into rec, joining nested object keys with dots.
func flattenJSON(prefix string, obj gjson.Result, rec *orderedRecord) {
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if prefix != "" {
			name = prefix + "." + name
		}
		if value.IsObject() {
			flattenJSON(name, value, rec)
		} else {
			rec.set(name, jsonScalar(value))
		}
		return true
	})
}

func jsonScalar(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	case gjson.True, gjson.False:
		return v.String()
	default:
		return v.Raw
	}
}

func parseYAML(data []byte) (*Dataset, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return New(nil, nil)
	}

	set := newRecordSet()
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		for _, item := range root.Content {
			rec := newOrderedRecord()
			if item.Kind == yaml.MappingNode {
				if err := flattenYAML("", item, rec); err != nil {
					return nil, err
				}
			} else {
				v, err := yamlScalar(item)
				if err != nil {
					return nil, err
				}
				rec.set(scalarColumn, v)
			}
			set.add(rec)
		}
	case yaml.MappingNode:
		rec := newOrderedRecord()
		if err := flattenYAML("", root, rec); err != nil {
			return nil, err
		}
		set.add(rec)
	default:
		return nil, fmt.Errorf("YAML dataset must be a list or a mapping")
	}
	return set.dataset()
}

func flattenYAML(prefix string, m *yaml.Node, rec *orderedRecord) error {
	for i := 0; i+1 < len(m.Content); i += 2 {
		name := m.Content[i].Value
		if prefix != "" {
			name = prefix + "." + name
		}
		value := m.Content[i+1]
		if value.Kind == yaml.AliasNode {
			value = value.Alias
		}
		if value.Kind == yaml.MappingNode {
			if err := flattenYAML(name, value, rec); err != nil {
				return err
			}
			continue
		}
		v, err := yamlScalar(value)
		if err != nil {
			return fmt.Errorf("column %q: %w", name, err)
		}
		rec.set(name, v)
	}
	return nil
}

func yamlScalar(n *yaml.Node) (string, error) {
	if n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!null" {
			return "", nil
		}
		return n.Value, nil
	}
	out, err := yaml.Marshal(n)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
