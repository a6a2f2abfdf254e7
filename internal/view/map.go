package view

import (
	"github.com/roach88/docproxy/internal/convert"
	"github.com/roach88/docproxy/internal/node"
	"github.com/roach88/docproxy/internal/value"
)

// MapView is a live view of a map node.
type MapView struct {
	doc node.Doc
	m   node.Map
}

// Kind implements View.
func (v *MapView) Kind() node.Kind { return node.KindMap }

// Node implements View.
func (v *MapView) Node() node.Node { return v.m }

// Len implements View.
func (v *MapView) Len() int { return v.m.Len() }

// Keys returns the current keys, sorted. Not cached.
func (v *MapView) Keys() []string { return v.m.Keys() }

// Has reports whether key is present now.
func (v *MapView) Has(key string) bool { return v.m.Has(key) }

// Get materializes the field under key.
func (v *MapView) Get(key string) (value.Value, bool) {
	n, ok := v.m.Get(key)
	if !ok {
		return nil, false
	}
	return convert.FromNode(n), true
}

// Child returns a live view of a container field.
func (v *MapView) Child(key string) (View, error) {
	n, ok := v.m.Get(key)
	if !ok {
		return nil, newError(ErrCodeNotAContainer, key, "no such key")
	}
	return Of(v.doc, n)
}

// Set converts x and stores it under key. A live view or node passed as x
// is reduced to a plain snapshot first. A nil x deletes the key.
func (v *MapView) Set(key string, x any) error {
	n, err := convert.PlainNode(v.doc, x)
	if err != nil {
		return err
	}
	return transact(v.doc, func() {
		if n == nil {
			v.m.Delete(key)
			return
		}
		v.m.Set(key, n)
	})
}

// Delete removes key. A missing key is not an error.
func (v *MapView) Delete(key string) error {
	if !v.m.Has(key) {
		return nil
	}
	return transact(v.doc, func() {
		v.m.Delete(key)
	})
}

// Replace makes the map's contents equal to t in one transaction.
func (v *MapView) Replace(t value.Table) error {
	if err := convert.Validate(t); err != nil {
		return err
	}
	entries := make(map[string]node.Node, len(t))
	for k, x := range t {
		n, err := convert.ToNode(v.doc, x)
		if err != nil {
			return err
		}
		entries[k] = n
	}

	return transact(v.doc, func() {
		for _, k := range v.m.Keys() {
			if _, keep := entries[k]; !keep {
				v.m.Delete(k)
			}
		}
		for _, k := range t.SortedKeys() {
			v.m.Set(k, entries[k])
		}
	})
}

// Snapshot implements convert.Snapshotter.
func (v *MapView) Snapshot() value.Value {
	return convert.FromNode(v.m)
}
