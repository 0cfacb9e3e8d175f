package table

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// ValueType defines the storage type for values
type ValueType uint8

const (
	ValueTypeMissing ValueType = iota
	ValueTypeNumeric
	ValueTypeString
	ValueTypeBoolean
	ValueTypeTimestamp
)

func (t ValueType) String() string {
	switch t {
	case ValueTypeNumeric:
		return "numeric"
	case ValueTypeString:
		return "string"
	case ValueTypeBoolean:
		return "boolean"
	case ValueTypeTimestamp:
		return "timestamp"
	default:
		return "missing"
	}
}

// Value is a single typed cell. The zero Value is missing.
type Value struct {
	Type ValueType
	num  float64
	str  string
	b    bool
	ts   time.Time
}

// NewNumericValue creates a numeric value. NaN is stored as missing.
func NewNumericValue(n float64) Value {
	if math.IsNaN(n) {
		return Value{}
	}
	return Value{Type: ValueTypeNumeric, num: n}
}

// NewStringValue creates a string value
func NewStringValue(s string) Value {
	return Value{Type: ValueTypeString, str: s}
}

// NewBooleanValue creates a boolean value
func NewBooleanValue(b bool) Value {
	return Value{Type: ValueTypeBoolean, b: b}
}

// NewTimestampValue creates a timestamp value
func NewTimestampValue(t time.Time) Value {
	return Value{Type: ValueTypeTimestamp, ts: t}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{}
}

// ValueOf converts a decoded Go value into a Value.
func ValueOf(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Value{}
	case Value:
		return x
	case float64:
		return NewNumericValue(x)
	case float32:
		return NewNumericValue(float64(x))
	case int:
		return NewNumericValue(float64(x))
	case int32:
		return NewNumericValue(float64(x))
	case int64:
		return NewNumericValue(float64(x))
	case uint:
		return NewNumericValue(float64(x))
	case uint64:
		return NewNumericValue(float64(x))
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return NewNumericValue(f)
		}
		return NewStringValue(x.String())
	case string:
		return NewStringValue(x)
	case bool:
		return NewBooleanValue(x)
	case time.Time:
		return NewTimestampValue(x)
	case *time.Time:
		if x == nil {
			return Value{}
		}
		return NewTimestampValue(*x)
	default:
		return NewStringValue(fmt.Sprint(x))
	}
}

func (v Value) IsMissing() bool   { return v.Type == ValueTypeMissing }
func (v Value) IsNumeric() bool   { return v.Type == ValueTypeNumeric }
func (v Value) IsString() bool    { return v.Type == ValueTypeString }
func (v Value) IsBoolean() bool   { return v.Type == ValueTypeBoolean }
func (v Value) IsTimestamp() bool { return v.Type == ValueTypeTimestamp }

// AsFloat64 returns the numeric value, 1/0 for booleans, or 0 otherwise.
func (v Value) AsFloat64() float64 {
	switch v.Type {
	case ValueTypeNumeric:
		return v.num
	case ValueTypeBoolean:
		if v.b {
			return 1
		}
	}
	return 0
}

// AsString returns the string value, or empty string if not a string
func (v Value) AsString() string {
	if v.Type == ValueTypeString {
		return v.str
	}
	return ""
}

// AsBoolean returns the boolean value, or false if not a boolean
func (v Value) AsBoolean() bool {
	return v.Type == ValueTypeBoolean && v.b
}

// AsTime returns the timestamp value, or the zero time.
func (v Value) AsTime() time.Time {
	if v.Type == ValueTypeTimestamp {
		return v.ts
	}
	return time.Time{}
}

// Text is the string coercion used for encoding and grouping.
func (v Value) Text() string {
	switch v.Type {
	case ValueTypeNumeric:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueTypeString:
		return v.str
	case ValueTypeBoolean:
		if v.b {
			return "True"
		}
		return "False"
	case ValueTypeTimestamp:
		return v.ts.Format(time.RFC3339)
	default:
		return "nan"
	}
}

// Key identifies the value for equality checks; values of different types never collide.
func (v Value) Key() string {
	return strconv.Itoa(int(v.Type)) + ":" + v.Text()
}

// Equal reports whether two values are identical. Missing equals missing.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case ValueTypeNumeric:
		return v.num == o.num
	case ValueTypeString:
		return v.str == o.str
	case ValueTypeBoolean:
		return v.b == o.b
	case ValueTypeTimestamp:
		return v.ts.Equal(o.ts)
	}
	return true
}

// Less orders values by type first, then by natural value order.
func (v Value) Less(o Value) bool {
	if v.Type != o.Type {
		return v.Type < o.Type
	}
	switch v.Type {
	case ValueTypeNumeric:
		return v.num < o.num
	case ValueTypeString:
		return v.str < o.str
	case ValueTypeBoolean:
		return !v.b && o.b
	case ValueTypeTimestamp:
		return v.ts.Before(o.ts)
	}
	return false
}

// Interface returns the plain Go value (float64, string, bool, time.Time or nil).
func (v Value) Interface() interface{} {
	switch v.Type {
	case ValueTypeNumeric:
		return v.num
	case ValueTypeString:
		return v.str
	case ValueTypeBoolean:
		return v.b
	case ValueTypeTimestamp:
		return v.ts
	}
	return nil
}

func (v Value) String() string {
	if v.IsMissing() {
		return "<missing>"
	}
	return v.Text()
}

// MarshalJSON encodes the value as its native JSON type.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Type {
	case ValueTypeNumeric:
		if math.IsInf(v.num, 0) {
			return []byte("null"), nil
		}
		return json.Marshal(v.num)
	case ValueTypeString:
		return json.Marshal(v.str)
	case ValueTypeBoolean:
		return json.Marshal(v.b)
	case ValueTypeTimestamp:
		return json.Marshal(v.ts.Format(time.RFC3339Nano))
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes a native JSON scalar. Strings are never parsed as dates.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.(type) {
	case map[string]interface{}, []interface{}:
		*v = NewStringValue(string(data))
	default:
		*v = ValueOf(raw)
	}
	return nil
}
