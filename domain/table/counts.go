package table

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Count is the frequency of one distinct value.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Counts is a frequency table ordered by descending count, ties in order of
// first appearance. It encodes as a JSON object keeping that order.
type Counts []Count

// CountValues tallies the text form of every non-missing value.
func CountValues(values []Value) Counts {
	index := make(map[string]int)
	var out Counts
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		key := v.Text()
		if i, ok := index[key]; ok {
			out[i].Count++
			continue
		}
		index[key] = len(out)
		out = append(out, Count{Value: key, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// CountColumn tallies a column of t. A missing column yields nil.
func CountColumn(t *Table, column string) Counts {
	values, ok := t.Column(column)
	if !ok {
		return nil
	}
	return CountValues(values)
}

// Get returns the count for a value, or 0.
func (c Counts) Get(value string) int {
	for _, e := range c {
		if e.Value == value {
			return e.Count
		}
	}
	return 0
}

// Total sums every count.
func (c Counts) Total() int {
	n := 0
	for _, e := range c {
		n += e.Count
	}
	return n
}

// Head returns at most n leading entries.
func (c Counts) Head(n int) Counts {
	if len(c) <= n {
		return c
	}
	return c[:n]
}

func (c Counts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range c {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(e.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *Counts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var out Counts
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := tok.(string)
		var n int
		if err := dec.Decode(&n); err != nil {
			return err
		}
		out = append(out, Count{Value: key, Count: n})
	}
	*c = out
	return nil
}

// RowKey identifies the full contents of row i, used for duplicate detection.
func (t *Table) RowKey(i int) string {
	parts := make([]string, len(t.rows[i]))
	for j, v := range t.rows[i] {
		parts[j] = v.Key()
	}
	return strings.Join(parts, "\x1f")
}
