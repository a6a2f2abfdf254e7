package memdoc

import (
	"fmt"
	"slices"
	"strconv"
	"sync/atomic"

	"github.com/roach88/docproxy/internal/node"
)

// base is the bookkeeping shared by every container and text node.
// All fields of an attached node are guarded by doc.mu.
type base struct {
	self      node.Node
	doc       *Doc
	parent    *base
	key       string // key in the parent map
	root      string // root name, empty for non-roots
	observers []*observer
}

func baseOf(n node.Node) *base {
	switch v := n.(type) {
	case *mapNode:
		return &v.base
	case *seqNode:
		return &v.base
	case *textNode:
		return &v.base
	}
	return nil
}

// setDoc attaches or detaches the whole subtree.
func (b *base) setDoc(d *Doc) {
	b.doc = d
	switch v := b.self.(type) {
	case *mapNode:
		for _, c := range v.entries {
			if cb := baseOf(c); cb != nil {
				cb.setDoc(d)
			}
		}
	case *seqNode:
		for _, c := range v.items {
			if cb := baseOf(c); cb != nil {
				cb.setDoc(d)
			}
		}
	}
}

// childKey names child within b: its map key or its sequence index.
func (b *base) childKey(child *base) string {
	switch v := b.self.(type) {
	case *mapNode:
		return child.key
	case *seqNode:
		for i, it := range v.items {
			if baseOf(it) == child {
				return strconv.Itoa(i)
			}
		}
	}
	return ""
}

func (b *base) link(parent *base, key string) {
	b.parent = parent
	b.key = key
	b.setDoc(parent.doc)
}

// locked runs fn under the document lock when attached.
func (b *base) locked(fn func()) {
	if d := b.doc; d != nil {
		d.mu.Lock()
		defer d.mu.Unlock()
	}
	fn()
}

// mutate runs fn and, when attached, records it as a change of b.
func (b *base) mutate(fn func()) {
	if b.doc == nil {
		fn()
		return
	}
	b.doc.edit(b, fn)
}

// ObserveDeep implements node.Observable.
func (b *base) ObserveDeep(fn func(events []node.Event)) node.Subscription {
	o := &observer{owner: b, fn: fn}
	o.active.Store(true)
	b.locked(func() {
		b.observers = append(b.observers, o)
	})
	return o
}

// adopt validates that v can be inserted. Panics on misuse: nil nodes,
// foreign node implementations and nodes that already have a parent.
func adopt(vs ...node.Node) []*base {
	out := make([]*base, len(vs))
	seen := make(map[*base]bool, len(vs))
	for i, v := range vs {
		switch v.(type) {
		case nil:
			panic("memdoc: nil node")
		case node.Number:
			continue
		}
		b := baseOf(v)
		if b == nil {
			panic(fmt.Sprintf("memdoc: %T is not a memdoc node", v))
		}
		if b.parent != nil || b.root != "" || seen[b] {
			panic("memdoc: node is already part of a document")
		}
		seen[b] = true
		out[i] = b
	}
	return out
}

// release detaches a removed node.
func release(n node.Node) {
	if b := baseOf(n); b != nil {
		b.parent = nil
		b.key = ""
		b.setDoc(nil)
	}
}

type observer struct {
	owner  *base
	fn     func([]node.Event)
	active atomic.Bool
}

// Unsubscribe implements node.Subscription. Safe to call more than once.
func (o *observer) Unsubscribe() {
	if !o.active.CompareAndSwap(true, false) {
		return
	}
	o.owner.locked(func() {
		o.owner.observers = slices.DeleteFunc(o.owner.observers, func(x *observer) bool {
			return x == o
		})
	})
}

type commitHook struct {
	doc    *Doc
	fn     func(Commit)
	active atomic.Bool
}

// Unsubscribe implements node.Subscription. Safe to call more than once.
func (h *commitHook) Unsubscribe() {
	if !h.active.CompareAndSwap(true, false) {
		return
	}
	h.doc.mu.Lock()
	defer h.doc.mu.Unlock()
	h.doc.hooks = slices.DeleteFunc(h.doc.hooks, func(x *commitHook) bool {
		return x == h
	})
}

// mapNode implements node.Map.
type mapNode struct {
	base
	entries map[string]node.Node
}

func newMap() *mapNode {
	m := &mapNode{entries: make(map[string]node.Node)}
	m.self = m
	return m
}

func (m *mapNode) Kind() node.Kind { return node.KindMap }

func (m *mapNode) Get(key string) (n node.Node, ok bool) {
	m.locked(func() {
		n, ok = m.entries[key]
	})
	return n, ok
}

func (m *mapNode) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *mapNode) Set(key string, v node.Node) {
	child := adopt(v)[0]
	m.mutate(func() {
		if old, ok := m.entries[key]; ok {
			release(old)
		}
		if child != nil {
			child.link(&m.base, key)
		}
		m.entries[key] = v
	})
}

func (m *mapNode) Delete(key string) {
	if !m.Has(key) {
		return
	}
	m.mutate(func() {
		if old, ok := m.entries[key]; ok {
			release(old)
			delete(m.entries, key)
		}
	})
}

func (m *mapNode) Keys() (keys []string) {
	m.locked(func() {
		keys = make([]string, 0, len(m.entries))
		for k := range m.entries {
			keys = append(keys, k)
		}
	})
	slices.Sort(keys)
	return keys
}

func (m *mapNode) Len() (n int) {
	m.locked(func() {
		n = len(m.entries)
	})
	return n
}

// seqNode implements node.Sequence.
type seqNode struct {
	base
	items []node.Node
}

func newSequence() *seqNode {
	s := &seqNode{}
	s.self = s
	return s
}

func (s *seqNode) Kind() node.Kind { return node.KindSequence }

func (s *seqNode) Len() (n int) {
	s.locked(func() {
		n = len(s.items)
	})
	return n
}

func (s *seqNode) Get(i int) (n node.Node, ok bool) {
	s.locked(func() {
		if i >= 0 && i < len(s.items) {
			n, ok = s.items[i], true
		}
	})
	return n, ok
}

// Insert places items before index i. i is clamped to [0, Len()].
func (s *seqNode) Insert(i int, items ...node.Node) {
	if len(items) == 0 {
		return
	}
	children := adopt(items...)
	s.mutate(func() {
		i = clamp(i, len(s.items))
		for _, c := range children {
			if c != nil {
				c.link(&s.base, "")
			}
		}
		s.items = slices.Insert(s.items, i, items...)
	})
}

// Delete removes n items starting at i. The range is clamped.
func (s *seqNode) Delete(i, n int) {
	if n <= 0 {
		return
	}
	s.mutate(func() {
		i = clamp(i, len(s.items))
		end := clamp(i+n, len(s.items))
		for _, old := range s.items[i:end] {
			release(old)
		}
		s.items = slices.Delete(s.items, i, end)
	})
}

// textNode implements node.Text.
type textNode struct {
	base
	runes []rune
}

func newText(s string) *textNode {
	t := &textNode{runes: []rune(s)}
	t.self = t
	return t
}

func (t *textNode) Kind() node.Kind { return node.KindText }

func (t *textNode) String() (s string) {
	t.locked(func() {
		s = string(t.runes)
	})
	return s
}

func (t *textNode) Len() (n int) {
	t.locked(func() {
		n = len(t.runes)
	})
	return n
}

// Insert inserts s before rune offset i. i is clamped to [0, Len()].
func (t *textNode) Insert(i int, s string) {
	if s == "" {
		return
	}
	t.mutate(func() {
		i = clamp(i, len(t.runes))
		t.runes = slices.Insert(t.runes, i, []rune(s)...)
	})
}

// Delete removes n runes starting at i. The range is clamped.
func (t *textNode) Delete(i, n int) {
	if n <= 0 {
		return
	}
	t.mutate(func() {
		i = clamp(i, len(t.runes))
		end := clamp(i+n, len(t.runes))
		t.runes = slices.Delete(t.runes, i, end)
	})
}

func clamp(i, n int) int {
	return max(0, min(i, n))
}
