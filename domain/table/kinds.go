package table

import (
	"strings"
	"time"
)

// DetectedType is the heuristic classification of a column.
type DetectedType string

const (
	TypeNumerical   DetectedType = "numerical"
	TypeCategorical DetectedType = "categorical"
	TypeDatetime    DetectedType = "datetime"
	TypeBoolean     DetectedType = "boolean"
	TypeOther       DetectedType = "other"
)

var booleanTokens = map[string]bool{
	"0": true, "1": true,
	"True": true, "False": true,
	"true": true, "false": true,
	"Yes": true, "No": true,
	"yes": true, "no": true,
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"1/2/06",
	"01-02-06",
	"01-02-2006",
	"02-Jan-2006",
	"2-Jan-06",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2006-01",
	"Jan 2006",
	"January 2006",
}

// ParseTime parses a date or date-time string in any of the common layouts
// produced by spreadsheets and ISO-8601 exports.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// AsDate converts a timestamp or date-like string to a time.
func (v Value) AsDate() (time.Time, bool) {
	switch v.Type {
	case ValueTypeTimestamp:
		return v.ts, true
	case ValueTypeString:
		return ParseTime(v.str)
	}
	return time.Time{}, false
}

// DetectTypes classifies every column, keyed by column name.
func DetectTypes(t *Table) map[string]DetectedType {
	out := make(map[string]DetectedType, len(t.columns))
	for j, c := range t.columns {
		out[c.Name] = t.detectType(j, c.Kind)
	}
	return out
}

func (t *Table) detectType(j int, kind StorageKind) DetectedType {
	switch kind {
	case StorageNumeric:
		return TypeNumerical
	case StorageBoolean:
		return TypeBoolean
	case StorageTimestamp:
		return TypeDatetime
	}

	var first Value
	found := false
	for _, row := range t.rows {
		if !row[j].IsMissing() {
			first = row[j]
			found = true
			break
		}
	}
	if !found {
		return TypeOther
	}
	if _, ok := first.AsDate(); ok {
		return TypeDatetime
	}

	distinct := make(map[string]bool)
	for _, row := range t.rows {
		v := row[j]
		if v.IsMissing() || !booleanTokens[v.Text()] {
			return TypeCategorical
		}
		distinct[v.Text()] = true
	}
	if len(distinct) == 2 {
		return TypeBoolean
	}
	return TypeCategorical
}
