package store

import (
	"fmt"

	"github.com/roach88/docproxy/internal/convert"
	"github.com/roach88/docproxy/internal/memdoc"
	"github.com/roach88/docproxy/internal/node"
	"github.com/roach88/docproxy/internal/value"
)

// Capture materializes every root of doc. Maps become tables, sequences
// sequences and texts strings, so the root kinds survive a round trip.
func Capture(doc *memdoc.Doc) value.Table {
	roots := value.Table{}
	for _, name := range doc.Roots() {
		if n, ok := doc.Root(name); ok {
			roots[name] = convert.FromNode(n)
		}
	}
	return roots
}

// Restore replaces the contents of doc's roots with roots, in one
// transaction. Roots of doc not named in roots are left alone.
func Restore(doc *memdoc.Doc, roots value.Table) error {
	for _, name := range roots.SortedKeys() {
		if err := checkRoot(doc, name, roots[name]); err != nil {
			return err
		}
	}

	return doc.Transact(func() error {
		for _, name := range roots.SortedKeys() {
			switch v := roots[name].(type) {
			case value.Table:
				m := doc.GetMap(name)
				for _, k := range m.Keys() {
					if _, keep := v[k]; !keep {
						m.Delete(k)
					}
				}
				for _, k := range v.SortedKeys() {
					n, _ := convert.ToNode(doc, v[k])
					m.Set(k, n)
				}

			case value.Sequence:
				s := doc.GetSequence(name)
				nodes, _ := convert.ToNodes(doc, v)
				s.Delete(0, s.Len())
				s.Insert(0, nodes...)

			case value.String:
				t := doc.GetText(name)
				t.Delete(0, t.Len())
				t.Insert(0, string(v))
			}
		}
		return nil
	})
}

// checkRoot validates a root value against the grammar and against the
// kind of an existing root with the same name.
func checkRoot(doc *memdoc.Doc, name string, v value.Value) error {
	var kind node.Kind
	switch v.(type) {
	case value.Table:
		kind = node.KindMap
	case value.Sequence:
		kind = node.KindSequence
	case value.String:
		kind = node.KindText
	default:
		return fmt.Errorf("restore root %q: a root cannot be a %s", name, value.KindName(v))
	}

	if err := convert.Validate(v); err != nil {
		return fmt.Errorf("restore root %q: %w", name, err)
	}

	if existing, ok := doc.Root(name); ok && existing.Kind() != kind {
		return fmt.Errorf("restore root %q: document has a %s, snapshot has a %s", name, existing.Kind(), kind)
	}
	return nil
}
