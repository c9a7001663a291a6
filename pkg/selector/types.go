package selector

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ElementDescriptor is a snapshot of one DOM node taken when it was picked.
type ElementDescriptor struct {
	TagName     string            `json:"tagName" yaml:"tag_name"`
	Attributes  map[string]string `json:"attributes" yaml:"attributes"`
	TextContent string            `json:"textContent" yaml:"text_content"`
}

// AncestorChain runs from the target's parent up to, but excluding, <body>.
type AncestorChain []ElementDescriptor

// BlacklistEntry marks a tag/attribute/value combination as untrustworthy.
type BlacklistEntry struct {
	Element   string `json:"element" yaml:"element"`
	Attribute string `json:"attribute" yaml:"attribute"`
	Value     string `json:"value" yaml:"value"`
}

func (e BlacklistEntry) String() string {
	return fmt.Sprintf("%s %s %q", e.Element, e.Attribute, e.Value)
}

// Blacklist is an insertion-ordered set of BlacklistEntry. The zero value and
// a nil *Blacklist are both empty and safe to query.
type Blacklist struct {
	seen    map[BlacklistEntry]struct{}
	entries []BlacklistEntry
}

// NewBlacklist returns a blacklist holding entries, duplicates collapsed.
func NewBlacklist(entries ...BlacklistEntry) *Blacklist {
	bl := &Blacklist{}
	for _, e := range entries {
		bl.Add(e)
	}
	return bl
}

// Add inserts e and reports whether it was new.
func (b *Blacklist) Add(e BlacklistEntry) bool {
	if b.seen == nil {
		b.seen = make(map[BlacklistEntry]struct{})
	}
	if _, ok := b.seen[e]; ok {
		return false
	}
	b.seen[e] = struct{}{}
	b.entries = append(b.entries, e)
	return true
}

func (b *Blacklist) Contains(e BlacklistEntry) bool {
	if b == nil {
		return false
	}
	_, ok := b.seen[e]
	return ok
}

// Entries returns a copy of the entries in insertion order.
func (b *Blacklist) Entries() []BlacklistEntry {
	if b == nil {
		return nil
	}
	out := make([]BlacklistEntry, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.entries)
}

// Merge adds every entry of other to b.
func (b *Blacklist) Merge(other *Blacklist) {
	for _, e := range other.Entries() {
		b.Add(e)
	}
}

// Summarize renders bl as "<tag> <attribute> "<value>" no longer exists"
// clauses joined by "; ".
func Summarize(bl *Blacklist) string {
	if bl.Len() == 0 {
		return "No specific attribute failures detected"
	}
	clauses := make([]string, 0, bl.Len())
	for _, e := range bl.Entries() {
		clauses = append(clauses, fmt.Sprintf("%s %s %q no longer exists", e.Element, e.Attribute, e.Value))
	}
	return strings.Join(clauses, "; ")
}

// LoadBlacklist reads a YAML list of entries. A missing file yields an empty
// blacklist.
func LoadBlacklist(path string) (*Blacklist, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewBlacklist(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading blacklist file %q: %w", path, err)
	}

	var entries []BlacklistEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing blacklist YAML from %q: %w", path, err)
	}
	return NewBlacklist(entries...), nil
}

// SaveBlacklist writes bl to path as a YAML list.
func SaveBlacklist(path string, bl *Blacklist) error {
	entries := bl.Entries()
	if entries == nil {
		entries = []BlacklistEntry{}
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding blacklist: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing blacklist file %q: %w", path, err)
	}
	return nil
}
