package testutil

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/docproxy/internal/docpath"
	"github.com/roach88/docproxy/internal/node"
)

// Generator produces entry ids.
type Generator interface {
	Generate() string
}

type uuidGenerator struct{}

func (uuidGenerator) Generate() string { return uuid.NewString() }

// BoxBuilder populates a box fixture: a flat map of entries keyed by id,
// with a root directory under docpath.BoxRootKey.
type BoxBuilder struct {
	doc node.Doc
	box node.Map
	ids Generator
}

// NewBox creates the root directory entry in box if it is missing.
// A nil ids uses random UUIDs.
func NewBox(doc node.Doc, box node.Map, ids Generator) *BoxBuilder {
	if ids == nil {
		ids = uuidGenerator{}
	}
	b := &BoxBuilder{doc: doc, box: box, ids: ids}
	if !box.Has(docpath.BoxRootKey) {
		_ = doc.Transact(func() error {
			box.Set(docpath.BoxRootKey, b.newEntry(docpath.KindDirectory, ""))
			return nil
		})
	}
	return b
}

// Dir adds a directory named name under the directory parent and returns
// its id. An empty parent means the root.
func (b *BoxBuilder) Dir(parent, name string) string {
	return b.add(parent, name, b.newEntry(docpath.KindDirectory, ""))
}

// Text adds a text entry and returns its id.
func (b *BoxBuilder) Text(parent, name, content string) string {
	return b.add(parent, name, b.newEntry(docpath.KindText, content))
}

// Entry returns the entry stored under id.
func (b *BoxBuilder) Entry(id string) node.Map {
	if id == "" {
		id = docpath.BoxRootKey
	}
	n, ok := b.box.Get(id)
	if !ok {
		panic(fmt.Sprintf("testutil: no box entry %q", id))
	}
	m, ok := node.AsMap(n)
	if !ok {
		panic(fmt.Sprintf("testutil: box entry %q is a %s", id, node.KindOf(n)))
	}
	return m
}

// Link adds a child reference without creating an entry, for dangling-id
// fixtures.
func (b *BoxBuilder) Link(parent, name, id string) {
	children := b.children(parent)
	_ = b.doc.Transact(func() error {
		children.Set(name, b.doc.NewText(id))
		return nil
	})
}

func (b *BoxBuilder) add(parent, name string, entry node.Map) string {
	children := b.children(parent)
	id := b.ids.Generate()
	_ = b.doc.Transact(func() error {
		b.box.Set(id, entry)
		children.Set(name, b.doc.NewText(id))
		return nil
	})
	return id
}

func (b *BoxBuilder) children(parent string) node.Map {
	n, ok := b.Entry(parent).Get(docpath.FieldChildren)
	if !ok {
		panic(fmt.Sprintf("testutil: box entry %q is not a directory", parent))
	}
	m, _ := node.AsMap(n)
	return m
}

func (b *BoxBuilder) newEntry(kind, content string) node.Map {
	entry := b.doc.NewMap()
	entry.Set(docpath.FieldKind, b.doc.NewText(kind))
	switch kind {
	case docpath.KindDirectory:
		entry.Set(docpath.FieldChildren, b.doc.NewMap())
	case docpath.KindText:
		entry.Set(docpath.FieldContent, b.doc.NewText(content))
	}
	return entry
}
