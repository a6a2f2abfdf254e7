package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface over the plain value grammar.
// Number, String, Sequence and Table are the document grammar; Bool and Null
// exist so codecs can report what they decoded.
type Value interface {
	plainValue() // Sealed - only these types implement it
}

// Null is an explicit null decoded from text.
type Null struct{}

func (Null) plainValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool is a boolean decoded from text. It has no node counterpart.
type Bool bool

func (Bool) plainValue() {}

// Number is the only scalar kind stored in a document.
type Number float64

func (Number) plainValue() {}

// String is a plain string. Stored in a document as a text node.
type String string

func (String) plainValue() {}

// Sequence is an ordered list of values.
type Sequence []Value

func (Sequence) plainValue() {}

// Table is a string-keyed table of values.
// Use SortedKeys() for deterministic iteration.
type Table map[string]Value

func (Table) plainValue() {}

// Pair is a key-value pair for Table construction.
type Pair struct {
	Key   string
	Value Value
}

// T builds a Table from pairs.
// Example: T(P("name", String("notes")), P("count", Number(2)))
func T(pairs ...Pair) Table {
	t := make(Table, len(pairs))
	for _, p := range pairs {
		t[p.Key] = p.Value
	}
	return t
}

// P is a shorthand for Pair.
func P(key string, v Value) Pair {
	return Pair{Key: key, Value: v}
}

// S builds a Sequence.
func S(vals ...Value) Sequence {
	if vals == nil {
		return Sequence{}
	}
	return Sequence(vals)
}

// SortedKeys returns keys in RFC 8785 order (UTF-16 code units).
// Go's string comparison is UTF-8 and orders some keys differently.
func (t Table) SortedKeys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareKeys)
	return keys
}

// CompareKeys compares strings by UTF-16 code units.
func CompareKeys(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	}
	return 0
}

// IsEmpty reports whether v carries no content: nil, Null, or a table or
// sequence without entries.
func IsEmpty(v Value) bool {
	switch v := v.(type) {
	case nil, Null:
		return true
	case Table:
		return len(v) == 0
	case Sequence:
		return len(v) == 0
	}
	return false
}

// KindName returns a short name for diagnostics.
func KindName(v Value) string {
	switch v.(type) {
	case nil:
		return "absent"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Sequence:
		return "sequence"
	case Table:
		return "table"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// MarshalJSON implements json.Marshaler for Table with sorted keys.
// Not canonical (HTML escaping, no NFC). Use MarshalCanonical for comparison.
func (t Table) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range t.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := Marshal(t[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Sequence.
func (s Sequence) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := Marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("sequence[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Marshal marshals a Value to JSON bytes. Absent values encode as null.
func Marshal(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(bool(val))
	case Number:
		return formatNumber(float64(val))
	case String:
		return json.Marshal(string(val))
	case Sequence:
		return val.MarshalJSON()
	case Table:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown value type: %T", v)
	}
}

// Unmarshal decodes JSON into a Value.
// Numbers are decoded through json.Number to keep large integers exact
// until the final float64 conversion.
func Unmarshal(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return FromAny(raw)
}

// formatNumber renders a float the way ECMAScript's Number.prototype.toString
// does for the common cases: integral values without exponent below 1e21.
func formatNumber(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("number %v has no JSON representation", f)
	}
	if f == 0 {
		return []byte("0"), nil
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e21 {
		return []byte(fmt.Sprintf("%.0f", f)), nil
	}
	return json.Marshal(f)
}
