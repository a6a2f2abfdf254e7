package view

import (
	"strconv"

	"github.com/roach88/docproxy/internal/convert"
	"github.com/roach88/docproxy/internal/node"
	"github.com/roach88/docproxy/internal/value"
)

// SequenceView is a live view of a sequence node.
//
// Index writes are accepted in [0, Len()]; writing at Len() appends. There
// is no sparse growth.
type SequenceView struct {
	doc node.Doc
	s   node.Sequence
}

// Kind implements View.
func (v *SequenceView) Kind() node.Kind { return node.KindSequence }

// Node implements View.
func (v *SequenceView) Node() node.Node { return v.s }

// Len implements View.
func (v *SequenceView) Len() int { return v.s.Len() }

// Get materializes the element at i.
func (v *SequenceView) Get(i int) (value.Value, error) {
	n, ok := v.s.Get(i)
	if !ok {
		return nil, v.outOfRange(i)
	}
	return convert.FromNode(n), nil
}

// Child returns a live view of a container element.
func (v *SequenceView) Child(i int) (View, error) {
	n, ok := v.s.Get(i)
	if !ok {
		return nil, v.outOfRange(i)
	}
	return Of(v.doc, n)
}

// Values materializes every element, in order.
func (v *SequenceView) Values() value.Sequence {
	seq, _ := convert.FromNode(v.s).(value.Sequence)
	return seq
}

// Snapshot implements convert.Snapshotter.
func (v *SequenceView) Snapshot() value.Value {
	return v.Values()
}

// Set replaces the element at i, or appends when i == Len().
//
// Replacement deletes one element and inserts one in a single transaction.
// Consumers that track elements by position see a removal and an insertion,
// not an in-place update.
func (v *SequenceView) Set(i int, x any) error {
	n, err := elementNode(v.doc, x)
	if err != nil {
		return err
	}

	var rangeErr error
	err = transact(v.doc, func() {
		length := v.s.Len()
		switch {
		case i >= 0 && i < length:
			v.s.Delete(i, 1)
			v.s.Insert(i, n)
		case i == length:
			v.s.Insert(length, n)
		default:
			rangeErr = v.outOfRange(i)
		}
	})
	if rangeErr != nil {
		return rangeErr
	}
	return err
}

// SetKey is Set addressed by a decimal key.
func (v *SequenceView) SetKey(key string, x any) error {
	if !isIndex(key) {
		return newError(ErrCodeInvalidKey, key, "sequence keys must be indices")
	}
	i, err := strconv.Atoi(key)
	if err != nil {
		return newError(ErrCodeInvalidKey, key, "index does not fit in an int")
	}
	return v.Set(i, x)
}

// Append adds xs at the end.
func (v *SequenceView) Append(xs ...any) error {
	nodes, err := elementNodes(v.doc, xs)
	if err != nil {
		return err
	}
	return transact(v.doc, func() {
		v.s.Insert(v.s.Len(), nodes...)
	})
}

// Prepend adds xs at the start, keeping their order.
func (v *SequenceView) Prepend(xs ...any) error {
	nodes, err := elementNodes(v.doc, xs)
	if err != nil {
		return err
	}
	return transact(v.doc, func() {
		v.s.Insert(0, nodes...)
	})
}

// RemoveLast removes and returns the last element. On an empty sequence it
// returns nil and changes nothing.
func (v *SequenceView) RemoveLast() (value.Value, error) {
	return v.removeAt(func(length int) int { return length - 1 })
}

// RemoveFirst removes and returns the first element. On an empty sequence
// it returns nil and changes nothing.
func (v *SequenceView) RemoveFirst() (value.Value, error) {
	return v.removeAt(func(int) int { return 0 })
}

func (v *SequenceView) removeAt(index func(length int) int) (value.Value, error) {
	var removed value.Value
	err := transact(v.doc, func() {
		length := v.s.Len()
		if length == 0 {
			return
		}
		i := index(length)
		n, _ := v.s.Get(i)
		removed = convert.FromNode(n)
		v.s.Delete(i, 1)
	})
	return removed, err
}

// SpliceAt removes deleteCount elements at start, inserts items there, and
// returns the removed elements materialized. start must be in [0, Len()];
// deleteCount is clamped to the elements available.
func (v *SequenceView) SpliceAt(start, deleteCount int, items ...any) ([]value.Value, error) {
	if deleteCount < 0 {
		return nil, newError(ErrCodeOutOfRange, strconv.Itoa(deleteCount), "negative delete count")
	}
	nodes, err := elementNodes(v.doc, items)
	if err != nil {
		return nil, err
	}

	var (
		removed  []value.Value
		rangeErr error
	)
	err = transact(v.doc, func() {
		length := v.s.Len()
		if start < 0 || start > length {
			rangeErr = v.outOfRange(start)
			return
		}
		end := min(start+deleteCount, length)

		removed = make([]value.Value, 0, end-start)
		for i := start; i < end; i++ {
			n, _ := v.s.Get(i)
			removed = append(removed, convert.FromNode(n))
		}

		if end > start {
			v.s.Delete(start, end-start)
		}
		if len(nodes) > 0 {
			v.s.Insert(start, nodes...)
		}
	})
	if rangeErr != nil {
		return nil, rangeErr
	}
	return removed, err
}

// ReplaceAll replaces the whole contents with xs in one transaction.
func (v *SequenceView) ReplaceAll(xs ...any) error {
	nodes, err := elementNodes(v.doc, xs)
	if err != nil {
		return err
	}
	return transact(v.doc, func() {
		v.s.Delete(0, v.s.Len())
		v.s.Insert(0, nodes...)
	})
}

// Reverse is not supported on sequence views.
func (v *SequenceView) Reverse() error {
	return newError(ErrCodeUnsupported, "reverse", "cannot reorder a sequence view in place")
}

// Sort is not supported on sequence views.
func (v *SequenceView) Sort(func(a, b value.Value) int) error {
	return newError(ErrCodeUnsupported, "sort", "cannot reorder a sequence view in place")
}

// Concat is not supported on sequence views; use Append.
func (v *SequenceView) Concat(...any) error {
	return newError(ErrCodeUnsupported, "concat", "use Append")
}

func (v *SequenceView) outOfRange(i int) error {
	return newError(ErrCodeOutOfRange, strconv.Itoa(i), "index out of range [0, %d)", v.s.Len())
}

// elementNode converts x for storage inside a sequence, where absent values
// have nothing to become.
func elementNode(f node.Factory, x any) (node.Node, error) {
	nodes, err := elementNodes(f, []any{x})
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

func elementNodes(f node.Factory, xs []any) ([]node.Node, error) {
	vs := make([]value.Value, len(xs))
	for i, x := range xs {
		v, err := convert.Plain(x)
		if err != nil {
			return nil, err
		}
		vs[i] = v
	}
	return convert.ToNodes(f, vs)
}
