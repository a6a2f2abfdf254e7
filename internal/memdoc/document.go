package memdoc

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/docproxy/internal/node"
)

// Commit describes one committed transaction.
type Commit struct {
	// Seq is a per-document logical clock, starting at 1.
	Seq int64
	// Changes counts the primitive edits in the transaction.
	Changes int
}

// Option configures a Doc.
type Option func(*Doc)

// WithIDGenerator sets the GUID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(d *Doc) {
		d.ids = g
	}
}

// Doc is a single-replica document.
//
// Thread-safety model:
//   - Primitive reads and edits are atomic with respect to each other
//   - Transact serializes transactions against each other
//   - An edit made outside Transact commits on its own
//   - Observers and commit hooks run on one dispatcher goroutine, in commit order
//
// Edits made from another goroutine while a transaction is open join that
// transaction, and so does a nested Transact. Callers that share a Doc
// across goroutines group their edits with Transact.
type Doc struct {
	guid string
	ids  IDGenerator

	txMu sync.Mutex // serializes Transact
	mu   sync.Mutex // guards everything below and all attached node state

	roots map[string]node.Node
	tx    *txn
	seq   int64
	hooks []*commitHook

	queue *batchQueue
	done  chan struct{}
}

var _ node.Doc = (*Doc)(nil)

// New creates a document and starts its dispatcher.
// Close must be called to stop the dispatcher goroutine.
func New(opts ...Option) *Doc {
	d := &Doc{
		ids:   UUIDv7Generator{},
		roots: make(map[string]node.Node),
		queue: newBatchQueue(),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.guid = d.ids.Generate()

	go d.dispatch()

	return d
}

// GUID returns the document identifier.
func (d *Doc) GUID() string {
	return d.guid
}

// Close stops the dispatcher after delivering everything already committed.
// Safe to call more than once.
func (d *Doc) Close() {
	d.queue.Close()
	<-d.done
}

// Flush blocks until every commit made before the call has been delivered.
// Must not be called from an observer.
func (d *Doc) Flush() {
	barrier := make(chan struct{})
	if !d.queue.Enqueue(batch{barrier: barrier}) {
		return
	}
	<-barrier
}

// Seq returns the sequence number of the last commit.
func (d *Doc) Seq() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

// NewMap implements node.Factory.
func (d *Doc) NewMap() node.Map {
	return newMap()
}

// NewSequence implements node.Factory.
func (d *Doc) NewSequence() node.Sequence {
	return newSequence()
}

// NewText implements node.Factory.
func (d *Doc) NewText(s string) node.Text {
	return newText(s)
}

// GetMap returns the named root map, creating it if absent.
// Panics if name is already a root of another kind.
func (d *Doc) GetMap(name string) node.Map {
	return d.root(name, node.KindMap, func() node.Node { return newMap() }).(node.Map)
}

// GetSequence returns the named root sequence, creating it if absent.
func (d *Doc) GetSequence(name string) node.Sequence {
	return d.root(name, node.KindSequence, func() node.Node { return newSequence() }).(node.Sequence)
}

// GetText returns the named root text, creating it if absent.
func (d *Doc) GetText(name string) node.Text {
	return d.root(name, node.KindText, func() node.Node { return newText("") }).(node.Text)
}

func (d *Doc) root(name string, kind node.Kind, create func() node.Node) node.Node {
	d.mu.Lock()
	defer d.mu.Unlock()

	if n, ok := d.roots[name]; ok {
		if n.Kind() != kind {
			panic(fmt.Sprintf("memdoc: root %q is a %s, not a %s", name, n.Kind(), kind))
		}
		return n
	}

	n := create()
	b := baseOf(n)
	b.root = name
	b.setDoc(d)
	d.roots[name] = n
	return n
}

// Roots returns root names in sorted order.
func (d *Doc) Roots() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	names := make([]string, 0, len(d.roots))
	for name := range d.roots {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Root returns a root node by name without creating it.
func (d *Doc) Root(name string) (node.Node, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.roots[name]
	return n, ok
}

// Transact runs fn as one transaction. Observers see its edits in a single
// delivery after fn returns.
//
// A Transact issued while a transaction is open joins it: fn runs at once
// and its edits commit with the outer transaction.
func (d *Doc) Transact(fn func() error) error {
	d.mu.Lock()
	open := d.tx != nil
	d.mu.Unlock()
	if open {
		return fn()
	}

	d.txMu.Lock()
	defer d.txMu.Unlock()

	d.mu.Lock()
	d.tx = newTxn()
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		t := d.tx
		d.tx = nil
		d.commitLocked(t)
		d.mu.Unlock()
	}()

	return fn()
}

// OnCommit registers fn to run after every commit, after observers.
func (d *Doc) OnCommit(fn func(Commit)) node.Subscription {
	h := &commitHook{doc: d, fn: fn}
	h.active.Store(true)

	d.mu.Lock()
	d.hooks = append(d.hooks, h)
	d.mu.Unlock()

	return h
}

// edit applies fn to an attached node under the document lock and records
// the change against target.
func (d *Doc) edit(target *base, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	fn()

	t := d.tx
	implicit := t == nil
	if implicit {
		t = newTxn()
	}
	t.record(target)
	if implicit {
		d.commitLocked(t)
	}
}

// commitLocked seals t and hands it to the dispatcher. Caller holds d.mu.
func (d *Doc) commitLocked(t *txn) {
	if t == nil || t.changes == 0 {
		return
	}
	d.seq++

	hooks := make([]*commitHook, 0, len(d.hooks))
	for _, h := range d.hooks {
		if h.active.Load() {
			hooks = append(hooks, h)
		}
	}

	b := batch{
		commit:     Commit{Seq: d.seq, Changes: t.changes},
		deliveries: t.deliveries,
		hooks:      hooks,
	}
	if !d.queue.Enqueue(b) {
		slog.Debug("commit after close dropped", "doc", d.guid, "seq", d.seq)
	}
}

// dispatch drains the queue until it is closed and empty.
func (d *Doc) dispatch() {
	defer close(d.done)

	for {
		if b, ok := d.queue.TryDequeue(); ok {
			d.deliver(b)
			continue
		}

		if _, open := <-d.queue.Wait(); !open && d.queue.Len() == 0 {
			return
		}
	}
}

func (d *Doc) deliver(b batch) {
	if b.barrier != nil {
		close(b.barrier)
		return
	}

	for _, dl := range b.deliveries {
		if !dl.obs.active.Load() {
			continue
		}
		d.safeCall(func() { dl.obs.fn(dl.events) })
	}
	for _, h := range b.hooks {
		if !h.active.Load() {
			continue
		}
		d.safeCall(func() { h.fn(b.commit) })
	}
}

// safeCall keeps one failing observer from stopping delivery to the rest.
func (d *Doc) safeCall(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("observer panicked", "doc", d.guid, "panic", r)
		}
	}()
	fn()
}

// txn accumulates the deliveries of one transaction.
type txn struct {
	changes    int
	deliveries []delivery
	index      map[*observer]int
}

func newTxn() *txn {
	return &txn{index: make(map[*observer]int)}
}

// record walks from target to its root, adding an event for every deep
// observer on the way. Paths are relative to the observing node.
func (t *txn) record(target *base) {
	t.changes++

	var up []string // keys from target upward
	for b := target; b != nil; b = b.parent {
		for _, obs := range b.observers {
			path := slices.Clone(up)
			slices.Reverse(path)
			t.add(obs, node.Event{Target: target.self, Path: path})
		}
		if b.parent != nil {
			up = append(up, b.parent.childKey(b))
		}
	}
}

func (t *txn) add(obs *observer, ev node.Event) {
	if i, ok := t.index[obs]; ok {
		t.deliveries[i].events = append(t.deliveries[i].events, ev)
		return
	}
	t.index[obs] = len(t.deliveries)
	t.deliveries = append(t.deliveries, delivery{obs: obs, events: []node.Event{ev}})
}
