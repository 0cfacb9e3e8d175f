package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// MarshalJSON encodes the table as an array of records with keys in column order.
func (t *Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeRecord(&buf, t.columns, row); err != nil {
			return nil, err
		}
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// EncodeRecord encodes row i as a single JSON object with keys in column order.
func (t *Table) EncodeRecord(i int) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeRecord(&buf, t.columns, t.rows[i]); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRecord(buf *bytes.Buffer, columns []Column, row []Value) error {
	buf.WriteByte('{')
	for j, c := range columns {
		if j > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := row[j].MarshalJSON()
		if err != nil {
			return fmt.Errorf("column %q: %w", c.Name, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return nil
}

// UnmarshalJSON decodes an array of records, keeping first-seen key order.
func (t *Table) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*t = *New()
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return fmt.Errorf("table: expected array of records, got %v", tok)
	}

	b := NewBuilder()
	for dec.More() {
		keys, values, err := decodeObject(dec)
		if err != nil {
			return err
		}
		b.Add(keys, values)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*t = *b.Table()
	return nil
}

// DecodeRecord decodes one JSON object into parallel key and value slices in document order.
func DecodeRecord(data []byte) ([]string, []Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return decodeObject(dec)
}

// AddJSON appends one JSON-encoded record.
func (b *Builder) AddJSON(data []byte) error {
	keys, values, err := DecodeRecord(data)
	if err != nil {
		return err
	}
	b.Add(keys, values)
	return nil
}

func decodeObject(dec *json.Decoder) ([]string, []Value, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return nil, nil, fmt.Errorf("table: unexpected end of input")
		}
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("table: expected record object, got %v", tok)
	}

	var keys []string
	var values []Value
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("table: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("table: value of %q: %w", key, err)
		}
		var v Value
		if err := v.UnmarshalJSON(raw); err != nil {
			return nil, nil, fmt.Errorf("table: value of %q: %w", key, err)
		}
		keys = append(keys, key)
		values = append(values, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}
