package view

import (
	"strconv"

	"github.com/roach88/docproxy/internal/convert"
	"github.com/roach88/docproxy/internal/node"
	"github.com/roach88/docproxy/internal/value"
)

// View is a live accessor over a container node. Reads materialize from the
// node on every call; writes run in one document transaction each.
type View interface {
	convert.Snapshotter
	Kind() node.Kind
	Len() int
	Node() node.Node
}

var (
	_ View = (*MapView)(nil)
	_ View = (*SequenceView)(nil)
)

// Of returns the view matching n's kind.
func Of(doc node.Doc, n node.Node) (View, error) {
	switch node.KindOf(n) {
	case node.KindMap:
		m, _ := node.AsMap(n)
		return &MapView{doc: doc, m: m}, nil
	case node.KindSequence:
		s, _ := node.AsSequence(n)
		return &SequenceView{doc: doc, s: s}, nil
	}
	return nil, newError(ErrCodeNotAContainer, "", "cannot view a %s", node.KindOf(n))
}

// Assign writes x under key on either view kind. On a sequence, key must be
// a decimal index.
func Assign(v View, key string, x any) error {
	switch vv := v.(type) {
	case *MapView:
		return vv.Set(key, x)
	case *SequenceView:
		return vv.SetKey(key, x)
	}
	return newError(ErrCodeNotAContainer, key, "cannot assign into a %T", v)
}

// Read returns the plain value under key on either view kind.
func Read(v View, key string) (value.Value, bool) {
	switch vv := v.(type) {
	case *MapView:
		return vv.Get(key)
	case *SequenceView:
		i, err := strconv.Atoi(key)
		if err != nil || !isIndex(key) {
			return nil, false
		}
		x, err := vv.Get(i)
		return x, err == nil
	}
	return nil, false
}

// isIndex accepts only ASCII digits.
func isIndex(key string) bool {
	if key == "" {
		return false
	}
	for i := 0; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return false
		}
	}
	return true
}

// transact runs fn in one document transaction.
func transact(doc node.Doc, fn func()) error {
	return doc.Transact(func() error {
		fn()
		return nil
	})
}
