package transform

import (
	"errors"

	"safetyhub/domain/core"
	"safetyhub/domain/table"
)

var errNonFinite = errors.New("column statistics are not finite")

// Encode replaces every object column with dense integer codes assigned in order
// of first appearance. Values are compared by their text form, so a missing cell
// becomes the category "nan".
func Encode(t *table.Table) (*table.Table, error) {
	object := t.ObjectColumns()
	if len(object) == 0 {
		logger.Warn("No categorical columns found for encoding")
		return t.Clone(), nil
	}

	out := t.Clone()
	for _, name := range object {
		values, _ := out.Column(name)
		codes := make(map[string]int)
		for i, v := range values {
			key := v.Text()
			code, ok := codes[key]
			if !ok {
				code = len(codes)
				codes[key] = code
			}
			values[i] = table.NewNumericValue(float64(code))
		}
		if err := out.SetColumn(name, values); err != nil {
			return nil, core.NewDataError("encode", name, err)
		}
	}
	return out, nil
}

// Encoding returns the code assigned to each distinct value of an object column,
// in code order. It is the mapping Encode would apply.
func Encoding(t *table.Table, column string) ([]string, error) {
	values, ok := t.Column(column)
	if !ok {
		return nil, core.NewDataError("encode", column, core.NewColumnNotFoundError(column))
	}
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		key := v.Text()
		if !seen[key] {
			seen[key] = true
			out = append(out, key)
		}
	}
	return out, nil
}
