package docpath

import (
	"github.com/roach88/docproxy/internal/node"
)

// Box entry schema. A box is a flat table of entries keyed by synthetic id;
// directories reference children by id rather than by nesting.
const (
	// BoxRootKey is the sentinel id of a box's root directory.
	BoxRootKey = "root:"

	// FieldKind holds KindDirectory or KindText.
	FieldKind = "kind"
	// FieldChildren maps child name to entry id on a directory.
	FieldChildren = "children"
	// FieldContent holds the text node of a text entry.
	FieldContent = "content"

	// KindDirectory marks a directory entry.
	KindDirectory = "directory"
	// KindText marks a text entry.
	KindText = "text"
)

// ResolveInBox resolves a slash-separated path of names inside box and
// returns the content of the text entry it names.
func ResolveInBox(box node.Map, s string) (node.Text, error) {
	p, err := Parse(s)
	if err != nil {
		return nil, err
	}
	return resolveInBox(box, s, p.steps)
}

// resolveInBox walks names from the box root. Every entry stepped out of must
// be a directory; the final entry must be a text.
func resolveInBox(box node.Map, raw string, names []Step) (node.Text, error) {
	if len(names) == 0 {
		return nil, newError(ErrCodeEmptyPath, raw, BoxMarker, "box path has no segments")
	}

	entry, err := walkBox(box, raw, names)
	if err != nil {
		return nil, err
	}

	last := names[len(names)-1].Name
	if EntryKind(entry) != KindText {
		return nil, newError(ErrCodeNotAText, raw, last, "entry is not a text")
	}
	contentNode, _ := entry.Get(FieldContent)
	content, ok := node.AsText(contentNode)
	if !ok {
		return nil, newError(ErrCodeNotAText, raw, last, "text entry content is a %s", node.KindOf(contentNode))
	}
	return content, nil
}

// ListBox returns the child names of the directory addressed by s inside
// box, sorted. An empty s lists the root directory.
func ListBox(box node.Map, s string) ([]string, error) {
	var steps []Step
	if p, err := Parse(s); err == nil {
		steps = p.steps
	}

	entry, err := walkBox(box, s, steps)
	if err != nil {
		return nil, err
	}
	if EntryKind(entry) != KindDirectory {
		return nil, newError(ErrCodeNotADirectory, s, "", "entry is not a directory")
	}

	children, _ := entry.Get(FieldChildren)
	m, ok := node.AsMap(children)
	if !ok {
		return []string{}, nil
	}
	return m.Keys(), nil
}

// walkBox returns the entry reached from the root by names, of any kind.
func walkBox(box node.Map, raw string, names []Step) (node.Map, error) {
	rootNode, ok := box.Get(BoxRootKey)
	if !ok {
		return nil, newError(ErrCodeBoxHasNoRoot, raw, BoxMarker, "box does not have a root entry")
	}
	entry, ok := node.AsMap(rootNode)
	if !ok {
		return nil, newError(ErrCodeBoxHasNoRoot, raw, BoxMarker, "box root is a %s", node.KindOf(rootNode))
	}

	for _, st := range names {
		if EntryKind(entry) != KindDirectory {
			return nil, newError(ErrCodeNotADirectory, raw, st.Name, "entry is not a directory")
		}
		id, ok := childID(entry, st.Name)
		if !ok {
			return nil, newError(ErrCodeEntryNotFound, raw, st.Name, "no such entry")
		}
		next, ok := box.Get(id)
		if !ok {
			return nil, newError(ErrCodeEntryNotFound, raw, st.Name, "entry id %q does not resolve", id)
		}
		if entry, ok = node.AsMap(next); !ok {
			return nil, newError(ErrCodeEntryNotFound, raw, st.Name, "entry id %q is a %s", id, node.KindOf(next))
		}
	}
	return entry, nil
}

// EntryKind returns the kind field of a box entry, or "".
func EntryKind(entry node.Map) string {
	s, _ := stringField(entry, FieldKind)
	return s
}

// Children returns a directory's name to id table, or nil.
func Children(entry node.Map) map[string]string {
	n, ok := entry.Get(FieldChildren)
	if !ok {
		return nil
	}
	children, ok := node.AsMap(n)
	if !ok {
		return nil
	}
	out := make(map[string]string, children.Len())
	for _, name := range children.Keys() {
		if id, ok := stringField(children, name); ok {
			out[name] = id
		}
	}
	return out
}

func childID(entry node.Map, name string) (string, bool) {
	n, ok := entry.Get(FieldChildren)
	if !ok {
		return "", false
	}
	children, ok := node.AsMap(n)
	if !ok {
		return "", false
	}
	id, ok := stringField(children, name)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// stringField reads a string stored as a text node.
func stringField(m node.Map, key string) (string, bool) {
	n, ok := m.Get(key)
	if !ok {
		return "", false
	}
	t, ok := node.AsText(n)
	if !ok {
		return "", false
	}
	return t.String(), true
}
