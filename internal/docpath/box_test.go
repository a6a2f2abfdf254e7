package docpath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docproxy/internal/docpath"
	"github.com/roach88/docproxy/internal/memdoc"
	"github.com/roach88/docproxy/internal/testutil"
)

// seedBox builds box "box" with:
//
//	notes       text "hello"
//	docs/       directory
//	docs/readme text "read me"
//	dangling    child id that does not resolve
func seedBox(t *testing.T, doc *memdoc.Doc) *testutil.BoxBuilder {
	t.Helper()
	b := testutil.NewBox(doc, doc.GetMap("box"), testutil.NewSequentialIDGenerator("e"))
	b.Text("", "notes", "hello")
	docs := b.Dir("", "docs")
	b.Text(docs, "readme", "read me")
	b.Link("", "dangling", "missing-id")
	return b
}

func TestResolve_BoxText(t *testing.T) {
	doc := newDoc(t)
	seedBox(t, doc)

	n, err := docpath.Resolve(doc, "box/@/notes")
	require.NoError(t, err)

	text, err := docpath.ResolveText(doc, "box/@/notes", false)
	require.NoError(t, err)
	assert.Equal(t, "hello", text.String())
	assert.Same(t, n, text)
}

func TestResolve_BoxNested(t *testing.T) {
	doc := newDoc(t)
	seedBox(t, doc)

	text, err := docpath.ResolveText(doc, "box/@/docs/readme", false)
	require.NoError(t, err)
	assert.Equal(t, "read me", text.String())
}

func TestResolve_BoxErrors(t *testing.T) {
	doc := newDoc(t)
	seedBox(t, doc)
	doc.GetMap("empty").Set("x", doc.NewMap())

	tests := []struct {
		path string
		code docpath.ErrorCode
	}{
		{"box/@/missing", docpath.ErrCodeEntryNotFound},
		{"box/@/dangling", docpath.ErrCodeEntryNotFound},
		{"box/@/notes/deeper", docpath.ErrCodeNotADirectory},
		{"box/@/docs", docpath.ErrCodeNotAText},
		{"box/@", docpath.ErrCodeEmptyPath},
		{"empty/@/x", docpath.ErrCodeBoxHasNoRoot},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := docpath.Resolve(doc, tt.path)
			require.Error(t, err)
			assert.Equal(t, tt.code, docpath.CodeOf(err))
		})
	}
}

func TestResolveInBox(t *testing.T) {
	doc := newDoc(t)
	seedBox(t, doc)

	text, err := docpath.ResolveInBox(doc.GetMap("box"), "/docs/readme")
	require.NoError(t, err)
	assert.Equal(t, "read me", text.String())

	_, err = docpath.ResolveInBox(doc.GetMap("box"), "")
	assert.True(t, docpath.HasCode(err, docpath.ErrCodeEmptyPath))
}

func TestListBox(t *testing.T) {
	doc := newDoc(t)
	seedBox(t, doc)
	box := doc.GetMap("box")

	names, err := docpath.ListBox(box, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"dangling", "docs", "notes"}, names)

	names, err = docpath.ListBox(box, "docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"readme"}, names)

	_, err = docpath.ListBox(box, "notes")
	assert.True(t, docpath.HasCode(err, docpath.ErrCodeNotADirectory))
}

func TestChildrenAndEntryKind(t *testing.T) {
	doc := newDoc(t)
	b := seedBox(t, doc)

	root := b.Entry("")
	assert.Equal(t, docpath.KindDirectory, docpath.EntryKind(root))
	assert.Equal(t, map[string]string{
		"notes":    "e-1",
		"docs":     "e-2",
		"dangling": "missing-id",
	}, docpath.Children(root))

	assert.Equal(t, docpath.KindText, docpath.EntryKind(b.Entry("e-1")))
	assert.Nil(t, docpath.Children(b.Entry("e-1")))
}

func TestLocateBoxRoot(t *testing.T) {
	doc := newDoc(t)
	seedBox(t, doc)

	box, ok, err := docpath.LocateBoxRoot(doc, "box/@/notes")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Same(t, doc.GetMap("box"), box)

	_, ok, err = docpath.LocateBoxRoot(doc, "box/notes")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = docpath.LocateBoxRoot(doc, "box")
	assert.True(t, docpath.HasCode(err, docpath.ErrCodePathTooShort))
}

func TestLocateBoxRoot_Nested(t *testing.T) {
	doc := newDoc(t)
	inner := doc.NewMap()
	doc.GetMap("outer").Set("inner", inner)
	testutil.NewBox(doc, inner, nil).Text("", "f", "x")

	box, ok, err := docpath.LocateBoxRoot(doc, "outer/inner/@/f")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, inner, box)

	text, err := docpath.ResolveText(doc, "outer/inner/@/f", false)
	require.NoError(t, err)
	assert.Equal(t, "x", text.String())
}
