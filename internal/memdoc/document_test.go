package memdoc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/docproxy/internal/node"
)

type fixedIDs string

func (f fixedIDs) Generate() string { return string(f) }

func newTestDoc(t *testing.T) *Doc {
	t.Helper()
	d := New(WithIDGenerator(fixedIDs("doc-1")))
	t.Cleanup(d.Close)
	return d
}

// eventLog records observer deliveries.
type eventLog struct {
	mu    sync.Mutex
	calls [][]node.Event
}

func (l *eventLog) observe(events []node.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, events)
}

func (l *eventLog) snapshot() [][]node.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([][]node.Event(nil), l.calls...)
}

func TestNewAssignsGUID(t *testing.T) {
	d := newTestDoc(t)
	assert.Equal(t, "doc-1", d.GUID())

	d2 := New()
	defer d2.Close()
	assert.Len(t, d2.GUID(), 36)
}

func TestRootsCreatedOnDemand(t *testing.T) {
	d := newTestDoc(t)

	m := d.GetMap("cfg")
	assert.Same(t, m, d.GetMap("cfg"))
	d.GetText("readme")
	d.GetSequence("list")

	assert.Equal(t, []string{"cfg", "list", "readme"}, d.Roots())

	_, ok := d.Root("missing")
	assert.False(t, ok)
}

func TestRootKindConflictPanics(t *testing.T) {
	d := newTestDoc(t)
	d.GetMap("x")

	assert.Panics(t, func() { d.GetText("x") })
}

func TestTransactDeliversOncePerObserver(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetMap("root")
	var log eventLog
	root.ObserveDeep(log.observe)

	err := d.Transact(func() error {
		root.Set("a", node.Number(1))
		root.Set("b", node.Number(2))
		root.Set("c", d.NewText("hi"))
		return nil
	})
	require.NoError(t, err)
	d.Flush()

	calls := log.snapshot()
	require.Len(t, calls, 1)
	assert.Len(t, calls[0], 3)
	assert.Equal(t, int64(1), d.Seq())
}

func TestNestedTransactJoinsOuter(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetMap("root")
	var log eventLog
	root.ObserveDeep(log.observe)

	err := d.Transact(func() error {
		root.Set("a", node.Number(1))
		return d.Transact(func() error {
			root.Set("b", node.Number(2))
			return nil
		})
	})
	require.NoError(t, err)
	d.Flush()

	calls := log.snapshot()
	require.Len(t, calls, 1)
	assert.Len(t, calls[0], 2)
	assert.Equal(t, int64(1), d.Seq())
}

func TestObserversRunAfterCommit(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetMap("root")
	var log eventLog
	root.ObserveDeep(log.observe)

	_ = d.Transact(func() error {
		root.Set("a", node.Number(1))
		d.Flush() // barrier is queued before the transaction commits
		assert.Empty(t, log.snapshot())
		return nil
	})
	d.Flush()

	assert.Len(t, log.snapshot(), 1)
}

func TestImplicitTransactionPerEdit(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetMap("root")
	var log eventLog
	root.ObserveDeep(log.observe)

	root.Set("a", node.Number(1))
	root.Set("b", node.Number(2))
	d.Flush()

	assert.Len(t, log.snapshot(), 2)
	assert.Equal(t, int64(2), d.Seq())
}

func TestEmptyTransactionDoesNotCommit(t *testing.T) {
	d := newTestDoc(t)
	require.NoError(t, d.Transact(func() error { return nil }))
	assert.Equal(t, int64(0), d.Seq())
}

func TestDeepEventPaths(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetMap("root")

	list := d.NewSequence()
	list.Insert(0, d.NewText("p"), d.NewText("q"))
	root.Set("items", list)
	d.Flush()

	var log eventLog
	root.ObserveDeep(log.observe)

	got, ok := root.Get("items")
	require.True(t, ok)
	seq, ok := node.AsSequence(got)
	require.True(t, ok)
	second, ok := seq.Get(1)
	require.True(t, ok)
	text, ok := node.AsText(second)
	require.True(t, ok)

	text.Insert(1, "!")
	d.Flush()

	calls := log.snapshot()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 1)
	assert.Equal(t, []string{"items", "1"}, calls[0][0].Path)
	assert.Same(t, text, calls[0][0].Target)
	assert.Equal(t, "q!", text.String())
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetMap("root")
	var log eventLog
	sub := root.ObserveDeep(log.observe)

	root.Set("a", node.Number(1))
	d.Flush()
	sub.Unsubscribe()
	sub.Unsubscribe()
	root.Set("b", node.Number(2))
	d.Flush()

	assert.Len(t, log.snapshot(), 1)
}

func TestOnCommit(t *testing.T) {
	d := newTestDoc(t)
	var mu sync.Mutex
	var commits []Commit
	sub := d.OnCommit(func(c Commit) {
		mu.Lock()
		defer mu.Unlock()
		commits = append(commits, c)
	})

	_ = d.Transact(func() error {
		d.GetMap("root").Set("a", node.Number(1))
		d.GetMap("root").Delete("a")
		return nil
	})
	d.Flush()
	sub.Unsubscribe()
	d.GetMap("root").Set("b", node.Number(1))
	d.Flush()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, commits, 1)
	assert.Equal(t, Commit{Seq: 1, Changes: 2}, commits[0])
}

func TestObserverPanicDoesNotStopDelivery(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetMap("root")
	root.ObserveDeep(func([]node.Event) { panic("boom") })
	var log eventLog
	root.ObserveDeep(log.observe)

	root.Set("a", node.Number(1))
	d.Flush()

	assert.Len(t, log.snapshot(), 1)
}

func TestInsertAttachedNodePanics(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetMap("root")
	child := d.NewMap()
	root.Set("a", child)

	assert.Panics(t, func() { root.Set("b", child) })
	assert.Panics(t, func() { root.Set("c", nil) })
}

func TestRemovedNodeIsDetached(t *testing.T) {
	d := newTestDoc(t)
	root := d.GetMap("root")
	child := d.NewMap()
	root.Set("a", child)
	root.Delete("a")
	d.Flush()

	var log eventLog
	root.ObserveDeep(log.observe)
	child.Set("x", node.Number(1))
	d.Flush()

	assert.Empty(t, log.snapshot())
	assert.False(t, root.Has("a"))

	// A detached node can be inserted again.
	root.Set("b", child)
	assert.Equal(t, []string{"b"}, root.Keys())
}

func TestSequenceAndTextClampOffsets(t *testing.T) {
	d := newTestDoc(t)
	seq := d.GetSequence("list")
	seq.Insert(10, node.Number(1))
	seq.Insert(-3, node.Number(0))
	seq.Delete(1, 10)

	assert.Equal(t, 1, seq.Len())
	first, _ := seq.Get(0)
	assert.Equal(t, node.Number(0), first)

	text := d.GetText("t")
	text.Insert(5, "world")
	text.Insert(0, "hello ")
	text.Delete(5, 100)
	assert.Equal(t, "hello", text.String())
}

func TestCloseDeliversPending(t *testing.T) {
	d := New()
	root := d.GetMap("root")
	var log eventLog
	root.ObserveDeep(log.observe)

	root.Set("a", node.Number(1))
	d.Close()
	d.Close()

	assert.Len(t, log.snapshot(), 1)
}
