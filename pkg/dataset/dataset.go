// Package dataset holds the row-oriented tabular data a workflow iterates
// over. Column order is significant: col(0) is the first declared column.
package dataset

import (
	"fmt"
	"strings"
)

// Dataset is an ordered set of columns and rows of string values. Every row
// has exactly one value per column; missing values are "".
type Dataset struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a dataset. Short records are padded with "" and long records
// are rejected. Column names must be unique.
func New(columns []string, records [][]string) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := index[c]; dup {
			return nil, fmt.Errorf("duplicate column %q", c)
		}
		index[c] = i
	}

	rows := make([][]string, len(records))
	for i, rec := range records {
		if len(rec) > len(columns) {
			return nil, fmt.Errorf("row %d has %d values but only %d columns", i+1, len(rec), len(columns))
		}
		row := make([]string, len(columns))
		copy(row, rec)
		rows[i] = row
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{columns: cols, index: index, rows: rows}, nil
}

// Columns returns the column names in declaration order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

func (d *Dataset) Len() int {
	return len(d.rows)
}

// Row returns the row at zero-based index i.
func (d *Dataset) Row(i int) (Row, error) {
	if i < 0 || i >= len(d.rows) {
		return Row{}, fmt.Errorf("row index %d out of range (dataset has %d rows)", i, len(d.rows))
	}
	return Row{ds: d, values: d.rows[i]}, nil
}

func (d *Dataset) Rows() []Row {
	out := make([]Row, len(d.rows))
	for i, values := range d.rows {
		out[i] = Row{ds: d, values: values}
	}
	return out
}

// Preview returns at most n rows from the start of the dataset.
func (d *Dataset) Preview(n int) []Row {
	rows := d.Rows()
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// HasColumn reports whether name is a declared column.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Row is one record of a Dataset.
type Row struct {
	ds     *Dataset
	values []string
}

// Lookup returns the value of the named column.
func (r Row) Lookup(name string) (string, bool) {
	if r.ds == nil {
		return "", false
	}
	i, ok := r.ds.index[name]
	if !ok {
		return "", false
	}
	return r.values[i], true
}

// At returns the value of the column at zero-based position i.
func (r Row) At(i int) (string, bool) {
	if i < 0 || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

func (r Row) Len() int {
	return len(r.values)
}

func (r Row) Columns() []string {
	if r.ds == nil {
		return nil
	}
	return r.ds.Columns()
}

// Map returns the row keyed by column name.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	for i, c := range r.Columns() {
		m[c] = r.values[i]
	}
	return m
}

func (r Row) String() string {
	cols := r.Columns()
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprintf("%s=%q", c, r.values[i])
	}
	return strings.Join(parts, " ")
}

// recordSet accumulates records whose keys appear in any order, keeping
// columns in first-seen order.
type recordSet struct {
	columns []string
	seen    map[string]bool
	records []map[string]string
}

func newRecordSet() *recordSet {
	return &recordSet{seen: make(map[string]bool)}
}

func (s *recordSet) add(rec *orderedRecord) {
	for _, k := range rec.keys {
		if !s.seen[k] {
			s.seen[k] = true
			s.columns = append(s.columns, k)
		}
	}
	s.records = append(s.records, rec.values)
}

func (s *recordSet) dataset() (*Dataset, error) {
	records := make([][]string, len(s.records))
	for i, m := range s.records {
		row := make([]string, len(s.columns))
		for j, c := range s.columns {
			row[j] = m[c]
		}
		records[i] = row
	}
	return New(s.columns, records)
}

type orderedRecord struct {
	keys   []string
	values map[string]string
}

func newOrderedRecord() *orderedRecord {
	return &orderedRecord{values: make(map[string]string)}
}

func (r *orderedRecord) set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// scalarColumn is the column used for datasets that are a bare list of values.
const scalarColumn = "value"
