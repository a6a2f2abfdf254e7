package convert

import (
	"slices"
	"strconv"

	"github.com/roach88/docproxy/internal/node"
	"github.com/roach88/docproxy/internal/value"
)

// ReservedKey is the table key used for transport metadata. A table that
// carries it cannot be written into a document.
const ReservedKey = "client"

// FromNode materializes n into a plain value: a point-in-time deep copy.
// Texts become strings. A nil node yields a nil value.
func FromNode(n node.Node) value.Value {
	return node.Visit(n, node.Visitor[value.Value]{
		Absent: func() value.Value { return nil },
		Number: func(num node.Number) value.Value {
			return value.Number(num)
		},
		Text: func(t node.Text) value.Value {
			return value.String(t.String())
		},
		Sequence: func(s node.Sequence) value.Value {
			out := make(value.Sequence, 0, s.Len())
			for i := 0; ; i++ {
				item, ok := s.Get(i)
				if !ok {
					break
				}
				out = append(out, FromNode(item))
			}
			return out
		},
		Map: func(m node.Map) value.Value {
			out := make(value.Table, m.Len())
			for _, k := range m.Keys() {
				if item, ok := m.Get(k); ok {
					out[k] = FromNode(item)
				}
			}
			return out
		},
	})
}

// ToNode builds detached nodes for v using f. Numbers and nil pass through;
// strings become texts.
//
// The whole value is validated before any node is built, so a failure never
// leaves partially built nodes behind.
func ToNode(f node.Factory, v value.Value) (node.Node, error) {
	if err := Validate(v); err != nil {
		return nil, err
	}
	return build(f, v), nil
}

// ToNodes converts each value. Validation covers every value before any is
// built.
func ToNodes(f node.Factory, vs []value.Value) ([]node.Node, error) {
	for i, v := range vs {
		if err := validateElem(v, []string{strconv.Itoa(i)}); err != nil {
			return nil, err
		}
	}
	out := make([]node.Node, len(vs))
	for i, v := range vs {
		out[i] = build(f, v)
	}
	return out, nil
}

// Validate reports the first part of v that cannot be written to a document.
func Validate(v value.Value) error {
	return validate(v, nil)
}

func validate(v value.Value, path []string) error {
	switch x := v.(type) {
	case nil, value.Number, value.String:
		return nil
	case value.Sequence:
		for i, item := range x {
			if err := validateElem(item, append(slices.Clip(path), strconv.Itoa(i))); err != nil {
				return err
			}
		}
		return nil
	case value.Table:
		if _, ok := x[ReservedKey]; ok {
			return &ConversionError{
				Code:    ErrCodeReservedKeyCollision,
				Path:    path,
				Message: "table uses reserved key " + strconv.Quote(ReservedKey),
			}
		}
		for _, k := range x.SortedKeys() {
			if err := validateElem(x[k], append(slices.Clip(path), k)); err != nil {
				return err
			}
		}
		return nil
	default:
		return &ConversionError{
			Code:    ErrCodeUnsupportedValueKind,
			Path:    path,
			Message: "cannot store a " + value.KindName(v),
		}
	}
}

// validateElem is validate for a value stored inside a container, where an
// absent value has nothing to become.
func validateElem(v value.Value, path []string) error {
	if v == nil {
		return &ConversionError{
			Code:    ErrCodeUnsupportedValueKind,
			Path:    path,
			Message: "cannot store an absent value inside a container",
		}
	}
	return validate(v, path)
}

// build assumes v has been validated.
func build(f node.Factory, v value.Value) node.Node {
	switch x := v.(type) {
	case value.Number:
		return node.Number(x)
	case value.String:
		return f.NewText(string(x))
	case value.Sequence:
		seq := f.NewSequence()
		items := make([]node.Node, len(x))
		for i, item := range x {
			items[i] = build(f, item)
		}
		seq.Insert(0, items...)
		return seq
	case value.Table:
		m := f.NewMap()
		for _, k := range x.SortedKeys() {
			m.Set(k, build(f, x[k]))
		}
		return m
	}
	return nil
}
