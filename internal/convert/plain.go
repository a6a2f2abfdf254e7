package convert

import (
	"github.com/roach88/docproxy/internal/node"
	"github.com/roach88/docproxy/internal/value"
)

// Snapshotter is implemented by live, node-backed values such as views.
type Snapshotter interface {
	Snapshot() value.Value
}

// Plain reduces x to a plain value before it is written back into a
// document. Live views and nodes are materialized; Go natives go through
// value.FromAny.
func Plain(x any) (value.Value, error) {
	switch v := x.(type) {
	case nil:
		return nil, nil
	case Snapshotter:
		return v.Snapshot(), nil
	case node.Node:
		return FromNode(v), nil
	case value.Value:
		return v, nil
	}

	v, err := value.FromAny(x)
	if err != nil {
		return nil, &ConversionError{
			Code:    ErrCodeUnsupportedValueKind,
			Message: err.Error(),
		}
	}
	return v, nil
}

// PlainNode reduces x and converts it to detached nodes in one step.
func PlainNode(f node.Factory, x any) (node.Node, error) {
	v, err := Plain(x)
	if err != nil {
		return nil, err
	}
	return ToNode(f, v)
}
