package docpath

import (
	"github.com/roach88/docproxy/internal/node"
)

// Resolve walks s from the root map named by its first segment.
//
// Maps are stepped into by key, sequences by index. A box marker hands the
// remaining segments to the box resolver, whose result is a text node.
func Resolve(doc node.Doc, s string) (node.Node, error) {
	p, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return ResolvePath(doc, p)
}

// ResolvePath is Resolve for an already parsed path.
func ResolvePath(doc node.Doc, p Path) (node.Node, error) {
	if len(p.steps) == 0 {
		return nil, newError(ErrCodeEmptyPath, p.raw, "", "path has no segments")
	}
	root, err := rootMap(doc, p)
	if err != nil {
		return nil, err
	}
	var cur node.Node = root

	for i := 1; i < len(p.steps); i++ {
		st := p.steps[i]
		if st.Kind == StepBox {
			box, ok := node.AsMap(cur)
			if !ok {
				return nil, newError(ErrCodeWrongKind, p.raw, st.Name,
					"box marker on a %s", node.KindOf(cur))
			}
			return resolveInBox(box, p.raw, p.steps[i+1:])
		}

		next, err := step(cur, st, p.raw)
		if err != nil {
			return nil, err
		}
		cur = next
	}

	return cur, nil
}

// rootMap returns the root map named by the first segment of p, creating it
// when absent. An existing root of another kind is WRONG_KIND.
func rootMap(doc node.Doc, p Path) (node.Map, error) {
	name := p.steps[0].Name
	n, ok := doc.Root(name)
	if !ok {
		return doc.GetMap(name), nil
	}
	m, ok := node.AsMap(n)
	if !ok {
		return nil, newError(ErrCodeWrongKind, p.raw, name, "root is a %s, not a map", node.KindOf(n))
	}
	return m, nil
}

// rootText is rootMap for a single-segment text path.
func rootText(doc node.Doc, p Path) (node.Text, error) {
	name := p.steps[0].Name
	n, ok := doc.Root(name)
	if !ok {
		return doc.GetText(name), nil
	}
	text, ok := node.AsText(n)
	if !ok {
		return nil, newError(ErrCodeWrongKind, p.raw, name, "root is a %s, not a text", node.KindOf(n))
	}
	return text, nil
}

// step moves one segment down from cur.
func step(cur node.Node, st Step, raw string) (node.Node, error) {
	switch node.KindOf(cur) {
	case node.KindMap:
		m, _ := node.AsMap(cur)
		next, ok := m.Get(st.Name)
		if !ok {
			return nil, newError(ErrCodeNotFound, raw, st.Name, "key does not exist")
		}
		return next, nil

	case node.KindSequence:
		seq, _ := node.AsSequence(cur)
		if st.Kind != StepIndex {
			return nil, newError(ErrCodeWrongKind, raw, st.Name, "sequence needs an index")
		}
		next, ok := seq.Get(st.Index)
		if !ok {
			return nil, newError(ErrCodeOutOfRange, raw, st.Name,
				"index %d out of range [0, %d)", st.Index, seq.Len())
		}
		return next, nil

	default:
		return nil, newError(ErrCodeWrongKind, raw, st.Name,
			"cannot step into a %s", node.KindOf(cur))
	}
}

// ResolveText resolves s to a text node.
//
// A single-segment path names a root text. Longer paths walk maps from the
// root map named by the first segment; the last segment must hold a text.
// With create set, missing maps along the way and the final text are created
// in one transaction. Create mode through a box is not supported.
func ResolveText(doc node.Doc, s string, create bool) (node.Text, error) {
	p, err := Parse(s)
	if err != nil {
		return nil, err
	}

	if p.Len() == 1 {
		return rootText(doc, p)
	}

	if create && p.BoxIndex() >= 0 {
		return nil, newError(ErrCodeNotImplemented, s, BoxMarker, "creating entries inside a box")
	}

	cur, err := rootMap(doc, p)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(p.steps); i++ {
		st := p.steps[i]
		if st.Kind == StepBox {
			return resolveInBox(cur, p.raw, p.steps[i+1:])
		}
		last := i == len(p.steps)-1

		next, ok := cur.Get(st.Name)
		if !ok {
			if !create {
				return nil, newError(ErrCodeNotFound, s, st.Name, "key does not exist")
			}
			return createChain(doc, cur, p.steps[i:])
		}

		if last {
			text, ok := node.AsText(next)
			if !ok {
				return nil, newError(ErrCodeWrongKind, s, st.Name, "expected text, found %s", node.KindOf(next))
			}
			return text, nil
		}

		m, ok := node.AsMap(next)
		if !ok {
			return nil, newError(ErrCodeWrongKind, s, st.Name, "expected map, found %s", node.KindOf(next))
		}
		cur = m
	}

	// Unreachable: the loop returns on its last step.
	return nil, newError(ErrCodeEmptyPath, s, "", "path has no segments")
}

// createChain builds maps for all but the last of rest and a text for the
// last, detached, then attaches the chain under parent with a single edit.
func createChain(doc node.Doc, parent node.Map, rest []Step) (node.Text, error) {
	text := doc.NewText("")
	var top node.Node = text
	for i := len(rest) - 2; i >= 0; i-- {
		m := doc.NewMap()
		m.Set(rest[i+1].Name, top)
		top = m
	}

	err := doc.Transact(func() error {
		parent.Set(rest[0].Name, top)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return text, nil
}

// LocateBoxRoot returns the map that owns the box addressed by s: the map
// reached just before the box marker. ok is false when s does not pass
// through a box marker before its last segment.
func LocateBoxRoot(doc node.Doc, s string) (box node.Map, ok bool, err error) {
	p, err := Parse(s)
	if err != nil {
		return nil, false, err
	}
	if p.Len() < 2 {
		return nil, false, newError(ErrCodePathTooShort, s, "", "box paths need at least two segments")
	}

	cur, err := rootMap(doc, p)
	if err != nil {
		return nil, false, err
	}
	for i := 1; i < len(p.steps)-1; i++ {
		st := p.steps[i]
		if st.Kind == StepBox {
			return cur, true, nil
		}
		next, err := step(cur, st, s)
		if err != nil {
			return nil, false, err
		}
		m, isMap := node.AsMap(next)
		if !isMap {
			return nil, false, newError(ErrCodeWrongKind, s, st.Name, "expected map, found %s", node.KindOf(next))
		}
		cur = m
	}

	return nil, false, nil
}
