package safety

import (
	"safetyhub/domain/table"
)

// Dataset is an ordered set of named tables.
type Dataset struct {
	names  []string
	tables map[string]*table.Table
}

// NewDataset creates an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{tables: make(map[string]*table.Table)}
}

// Put stores t under name. Replacing a table keeps its original position.
func (d *Dataset) Put(name string, t *table.Table) {
	if t == nil {
		t = table.New()
	}
	if _, ok := d.tables[name]; !ok {
		d.names = append(d.names, name)
	}
	d.tables[name] = t
}

// Table returns the named table, or an empty table when absent.
func (d *Dataset) Table(name string) *table.Table {
	if t, ok := d.tables[name]; ok {
		return t
	}
	return table.New()
}

// Has reports whether name was added.
func (d *Dataset) Has(name string) bool {
	_, ok := d.tables[name]
	return ok
}

// Names lists table names in insertion order.
func (d *Dataset) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Subset returns the tables named in names that are present, in that order.
func (d *Dataset) Subset(names ...string) *Dataset {
	out := NewDataset()
	for _, n := range names {
		if t, ok := d.tables[n]; ok {
			out.Put(n, t)
		}
	}
	return out
}
