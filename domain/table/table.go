// Package table provides the ordered, typed tabular data structure shared by the
// transform library, the model layer and the safety analytics engine.
//
// A Table keeps its columns in insertion order. Every row holds one Value per
// column; keys absent from an input record become missing values rather than
// omitted cells. Storage kinds are inferred once per column when the table is
// built or a column is replaced.
package table

import (
	"fmt"
	"sort"
	"strings"
)

// StorageKind is the physical type of a column.
type StorageKind string

const (
	StorageNumeric   StorageKind = "numeric"
	StorageBoolean   StorageKind = "boolean"
	StorageTimestamp StorageKind = "timestamp"
	StorageObject    StorageKind = "object"
)

// Column describes one column of a table.
type Column struct {
	Name string      `json:"name"`
	Kind StorageKind `json:"kind"`
}

// Table is an ordered sequence of uniformly keyed records.
type Table struct {
	columns []Column
	index   map[string]int
	rows    [][]Value
}

// New creates an empty table with the given column names.
func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int, len(columns))}
	for _, name := range columns {
		t.addColumn(name)
	}
	t.refreshKinds()
	return t
}

// FromRows builds a table from explicit column order and row values.
func FromRows(columns []string, rows [][]interface{}) (*Table, error) {
	t := New(columns...)
	if len(t.columns) != len(columns) {
		return nil, fmt.Errorf("duplicate column names in %v", columns)
	}
	for i, raw := range rows {
		if len(raw) != len(columns) {
			return nil, fmt.Errorf("row %d has %d values, expected %d", i, len(raw), len(columns))
		}
		row := make([]Value, len(raw))
		for j, v := range raw {
			row[j] = ValueOf(v)
		}
		t.rows = append(t.rows, row)
	}
	t.refreshKinds()
	return t, nil
}

// FromRecords builds a table from unordered maps. Column order follows the first
// record that introduces each key, with keys of a record taken in sorted order.
func FromRecords(records []map[string]interface{}) *Table {
	b := NewBuilder()
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]Value, len(keys))
		for i, k := range keys {
			values[i] = ValueOf(rec[k])
		}
		b.Add(keys, values)
	}
	return b.Table()
}

func (t *Table) addColumn(name string) int {
	if idx, ok := t.index[name]; ok {
		return idx
	}
	t.columns = append(t.columns, Column{Name: name})
	idx := len(t.columns) - 1
	t.index[name] = idx
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], Value{})
	}
	return idx
}

func (t *Table) refreshKinds() {
	for j := range t.columns {
		t.columns[j].Kind = t.inferKind(j)
	}
}

func (t *Table) inferKind(j int) StorageKind {
	var seen ValueType
	present := false
	for _, row := range t.rows {
		v := row[j]
		if v.IsMissing() {
			continue
		}
		if !present {
			seen = v.Type
			present = true
			continue
		}
		if v.Type != seen {
			return StorageObject
		}
	}
	if !present {
		return StorageObject
	}
	switch seen {
	case ValueTypeNumeric:
		return StorageNumeric
	case ValueTypeBoolean:
		return StorageBoolean
	case ValueTypeTimestamp:
		return StorageTimestamp
	}
	return StorageObject
}

// NumRows returns the number of records.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns.
func (t *Table) NumCols() int { return len(t.columns) }

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool { return t == nil || len(t.rows) == 0 }

// Columns returns a copy of the column descriptors in order.
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Name
	}
	return out
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// ColumnIndex returns the position of a column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	idx, ok := t.index[name]
	return idx, ok
}

// Kind returns the storage kind of a column, or "" if it does not exist.
func (t *Table) Kind(name string) StorageKind {
	if idx, ok := t.index[name]; ok {
		return t.columns[idx].Kind
	}
	return ""
}

// Column returns a copy of the values of one column.
func (t *Table) Column(name string) ([]Value, bool) {
	idx, ok := t.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = row[idx]
	}
	return out, true
}

// Row returns the values of row i in column order. The slice must not be modified.
func (t *Table) Row(i int) []Value { return t.rows[i] }

// At returns the cell at row i, column j.
func (t *Table) At(i, j int) Value { return t.rows[i][j] }

// ColumnsOfKind lists the names of columns with the given storage kind.
func (t *Table) ColumnsOfKind(kind StorageKind) []string {
	var out []string
	for _, c := range t.columns {
		if c.Kind == kind {
			out = append(out, c.Name)
		}
	}
	return out
}

// NumericColumns lists numeric columns in order.
func (t *Table) NumericColumns() []string { return t.ColumnsOfKind(StorageNumeric) }

// ObjectColumns lists object (string/mixed/all-missing) columns in order.
func (t *Table) ObjectColumns() []string { return t.ColumnsOfKind(StorageObject) }

// FindColumn returns the first column whose lower-cased name contains any of the fragments.
func (t *Table) FindColumn(fragments ...string) (string, bool) {
	for _, c := range t.columns {
		lower := strings.ToLower(c.Name)
		for _, f := range fragments {
			if strings.Contains(lower, f) {
				return c.Name, true
			}
		}
	}
	return "", false
}

// FindColumnExact returns the first column whose name equals name, ignoring case.
func (t *Table) FindColumnExact(name string) (string, bool) {
	for _, c := range t.columns {
		if strings.EqualFold(c.Name, name) {
			return c.Name, true
		}
	}
	return "", false
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{
		columns: t.Columns(),
		index:   make(map[string]int, len(t.index)),
		rows:    make([][]Value, len(t.rows)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	for i, row := range t.rows {
		out.rows[i] = append([]Value(nil), row...)
	}
	return out
}

// SelectRows returns a new table holding the given rows in the given order.
func (t *Table) SelectRows(indices []int) *Table {
	out := &Table{
		columns: t.Columns(),
		index:   make(map[string]int, len(t.index)),
		rows:    make([][]Value, 0, len(indices)),
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	for _, i := range indices {
		out.rows = append(out.rows, append([]Value(nil), t.rows[i]...))
	}
	out.refreshKinds()
	return out
}

// Filter keeps the rows for which keep returns true.
func (t *Table) Filter(keep func(row []Value) bool) *Table {
	var indices []int
	for i, row := range t.rows {
		if keep(row) {
			indices = append(indices, i)
		}
	}
	return t.SelectRows(indices)
}

// Select returns a table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		j, ok := t.index[n]
		if !ok {
			return nil, fmt.Errorf("column %q not found", n)
		}
		idx[i] = j
	}
	out := New(names...)
	out.rows = make([][]Value, len(t.rows))
	for r, row := range t.rows {
		vals := make([]Value, len(idx))
		for i, j := range idx {
			vals[i] = row[j]
		}
		out.rows[r] = vals
	}
	out.refreshKinds()
	return out, nil
}

// Drop returns a table without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	var keep []string
	for _, c := range t.columns {
		if !drop[c.Name] {
			keep = append(keep, c.Name)
		}
	}
	out, _ := t.Select(keep...)
	return out
}

// SetColumn replaces the values of a column, or appends it if absent.
func (t *Table) SetColumn(name string, values []Value) error {
	if len(values) != len(t.rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", name, len(values), len(t.rows))
	}
	idx := t.addColumn(name)
	for i := range t.rows {
		t.rows[i][idx] = values[i]
	}
	t.columns[idx].Kind = t.inferKind(idx)
	return nil
}

// Rename returns a copy of the table with every column renamed by fn.
func (t *Table) Rename(fn func(string) string) *Table {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = fn(c.Name)
	}
	out := New(names...)
	if len(out.columns) != len(names) {
		// colliding names: keep positional order, later duplicates get a suffix
		out = New()
		for i, n := range names {
			name := n
			for k := 1; out.HasColumn(name); k++ {
				name = fmt.Sprintf("%s_%d", n, k)
			}
			names[i] = name
			out.addColumn(name)
		}
	}
	out.rows = make([][]Value, len(t.rows))
	for i, row := range t.rows {
		out.rows[i] = append([]Value(nil), row...)
	}
	out.refreshKinds()
	return out
}

// Records returns the rows as maps, for callers that do not care about key order.
func (t *Table) Records() []map[string]interface{} {
	out := make([]map[string]interface{}, len(t.rows))
	for i, row := range t.rows {
		rec := make(map[string]interface{}, len(row))
		for j, v := range row {
			rec[t.columns[j].Name] = v.Interface()
		}
		out[i] = rec
	}
	return out
}

// Builder accumulates records with possibly differing key sets into a Table.
type Builder struct {
	t *Table
}

// NewBuilder starts an empty table.
func NewBuilder() *Builder {
	return &Builder{t: New()}
}

// Add appends one record given as parallel key and value slices.
func (b *Builder) Add(keys []string, values []Value) {
	row := make([]Value, len(b.t.columns), len(b.t.columns)+len(keys))
	for i, k := range keys {
		idx, ok := b.t.index[k]
		if !ok {
			idx = b.t.addColumn(k)
			row = append(row, Value{})
		}
		row[idx] = values[i]
	}
	b.t.rows = append(b.t.rows, row)
}

// Table finalizes storage kinds and returns the built table.
func (b *Builder) Table() *Table {
	b.t.refreshKinds()
	return b.t
}
