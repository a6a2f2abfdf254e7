// Package docops holds the path-addressed document operations shared by the
// command line and the scenario harness.
//
// Every operation checks the root named by the first path segment before
// resolving, so a root of the wrong kind is reported as WRONG_KIND instead of
// being created or replaced by accident.
package docops

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/docproxy/internal/codec"
	"github.com/roach88/docproxy/internal/convert"
	"github.com/roach88/docproxy/internal/docpath"
	"github.com/roach88/docproxy/internal/memdoc"
	"github.com/roach88/docproxy/internal/node"
	"github.com/roach88/docproxy/internal/store"
	"github.com/roach88/docproxy/internal/value"
	"github.com/roach88/docproxy/internal/view"
)

// CodeDecode is reported for text that a codec could not decode.
const CodeDecode = "DECODE_ERROR"

// Code returns the stable code of a path, conversion, mutation or decode
// error anywhere in err's chain, or "".
func Code(err error) string {
	var (
		pathErr *docpath.PathError
		convErr *convert.ConversionError
		mutErr  *view.MutationError
		decErr  *codec.DecodeError
	)
	switch {
	case errors.As(err, &pathErr):
		return string(pathErr.Code)
	case errors.As(err, &convErr):
		return string(convErr.Code)
	case errors.As(err, &mutErr):
		return string(mutErr.Code)
	case errors.As(err, &decErr):
		return CodeDecode
	}
	return ""
}

// CheckRoot validates the root named by p's first segment before p is
// resolved: a lone segment must name a root of kind want, longer paths
// start from a root map. A missing root is an error unless create is set.
// A zero want accepts any kind.
func CheckRoot(doc *memdoc.Doc, p docpath.Path, want node.Kind, create bool) error {
	name := p.Steps()[0].Name
	if p.Len() > 1 {
		want = node.KindMap
	}

	n, ok := doc.Root(name)
	if !ok {
		if create {
			return nil
		}
		return &docpath.PathError{
			Code:    docpath.ErrCodeNotFound,
			Path:    p.Raw(),
			Step:    name,
			Message: "no such root",
		}
	}
	if want != 0 && n.Kind() != want {
		return &docpath.PathError{
			Code:    docpath.ErrCodeWrongKind,
			Path:    p.Raw(),
			Step:    name,
			Message: fmt.Sprintf("root is a %s, expected %s", n.Kind(), want),
		}
	}
	return nil
}

// ResolveNode resolves an existing node. A lone segment names a root of any
// kind.
func ResolveNode(doc *memdoc.Doc, path string) (node.Node, error) {
	p, err := docpath.Parse(path)
	if err != nil {
		return nil, err
	}
	if err := CheckRoot(doc, p, 0, false); err != nil {
		return nil, err
	}
	if p.Len() == 1 {
		n, _ := doc.Root(p.Steps()[0].Name)
		return n, nil
	}
	return docpath.ResolvePath(doc, p)
}

// Get returns the plain value at path.
func Get(doc *memdoc.Doc, path string) (value.Value, error) {
	n, err := ResolveNode(doc, path)
	if err != nil {
		return nil, err
	}
	return convert.FromNode(n), nil
}

// ResolveText resolves path to a text node, creating it when create is set.
func ResolveText(doc *memdoc.Doc, path string, create bool) (node.Text, error) {
	p, err := docpath.Parse(path)
	if err != nil {
		return nil, err
	}
	if err := CheckRoot(doc, p, node.KindText, create); err != nil {
		return nil, err
	}
	return docpath.ResolveText(doc, path, create)
}

// Assign writes v at path in one transaction. A nil v deletes the key.
//
// A lone segment replaces a whole root: a table makes a map root, a
// sequence a sequence root and a string a text root. Roots cannot be
// deleted.
func Assign(doc *memdoc.Doc, path string, v value.Value) error {
	p, err := docpath.Parse(path)
	if err != nil {
		return err
	}

	if p.Len() == 1 {
		if v == nil {
			return &view.MutationError{Code: view.ErrCodeUnsupported, Key: path, Message: "roots cannot be deleted"}
		}
		return store.Restore(doc, value.Table{p.Steps()[0].Name: v})
	}

	if err := CheckRoot(doc, p, node.KindMap, true); err != nil {
		return err
	}
	names := p.Names()
	parent, err := docpath.Resolve(doc, strings.Join(names[:len(names)-1], docpath.Separator))
	if err != nil {
		return err
	}
	pv, err := view.Of(doc, parent)
	if err != nil {
		return err
	}

	return view.Assign(pv, names[len(names)-1], v)
}

// Sequence returns a view of the sequence at path. A lone segment names a
// root sequence, created when missing.
func Sequence(doc *memdoc.Doc, path string) (*view.SequenceView, error) {
	p, err := docpath.Parse(path)
	if err != nil {
		return nil, err
	}
	if err := CheckRoot(doc, p, node.KindSequence, true); err != nil {
		return nil, err
	}

	var n node.Node
	if p.Len() == 1 {
		n = doc.GetSequence(p.Steps()[0].Name)
	} else if n, err = docpath.ResolvePath(doc, p); err != nil {
		return nil, err
	}

	v, err := view.Of(doc, n)
	if err != nil {
		return nil, err
	}
	seq, ok := v.(*view.SequenceView)
	if !ok {
		return nil, &view.MutationError{
			Code:    view.ErrCodeNotAContainer,
			Key:     path,
			Message: "not a sequence: " + n.Kind().String(),
		}
	}
	return seq, nil
}

// ListBox lists the directory addressed by the segments after the box
// marker in path.
func ListBox(doc *memdoc.Doc, path string) ([]string, error) {
	p, err := docpath.Parse(path)
	if err != nil {
		return nil, err
	}
	i := p.BoxIndex()
	if i < 0 {
		return nil, &docpath.PathError{
			Code:    docpath.ErrCodeWrongKind,
			Path:    path,
			Message: "path does not enter a box",
		}
	}
	if err := CheckRoot(doc, p, node.KindMap, false); err != nil {
		return nil, err
	}

	names := p.Names()
	owner, err := docpath.Resolve(doc, strings.Join(names[:i], docpath.Separator))
	if err != nil {
		return nil, err
	}
	box, ok := node.AsMap(owner)
	if !ok {
		return nil, &docpath.PathError{
			Code:    docpath.ErrCodeWrongKind,
			Path:    path,
			Step:    docpath.BoxMarker,
			Message: "box marker on a " + node.KindOf(owner).String(),
		}
	}
	return docpath.ListBox(box, strings.Join(names[i+1:], docpath.Separator))
}
