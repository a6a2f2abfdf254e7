package reactive

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/roach88/docproxy/internal/convert"
	"github.com/roach88/docproxy/internal/docpath"
	"github.com/roach88/docproxy/internal/node"
	"github.com/roach88/docproxy/internal/value"
	"github.com/roach88/docproxy/internal/view"
)

// ErrUnbound is returned by Set on a handle whose path did not resolve.
var ErrUnbound = errors.New("reactive: binding is not bound to a node")

// DefaultDelay is the debounce delay between a change and its trigger.
const DefaultDelay = time.Millisecond

// Option configures Bind.
type Option func(*options)

type options struct {
	delay time.Duration
	sched Scheduler
}

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		o.delay = d
	}
}

// WithScheduler sets the scheduler used for debouncing.
func WithScheduler(s Scheduler) Option {
	return func(o *options) {
		o.sched = s
	}
}

// Handle is a reactive binding to one node of a document.
//
// A handle whose path did not resolve at bind time is degraded: Get returns
// an empty sequence and Set fails with ErrUnbound. It never rebinds.
type Handle struct {
	doc     node.Doc
	path    string
	tracker Tracker

	n        node.Node // nil when degraded
	sub      node.Subscription
	debounce *Debouncer
	disposed atomic.Bool
}

// Bind resolves path and observes the node it names. Every burst of changes
// below the node ends in one tracker.Trigger after the debounce delay.
//
// Dispose must be called to release the observer.
func Bind(doc node.Doc, path string, tracker Tracker, opts ...Option) *Handle {
	o := options{delay: DefaultDelay, sched: TimeScheduler{}}
	for _, opt := range opts {
		opt(&o)
	}

	h := &Handle{doc: doc, path: path, tracker: tracker}

	n, err := docpath.Resolve(doc, path)
	if err != nil {
		slog.Warn("binding degraded", "path", path, "err", err)
		return h
	}
	obs, ok := n.(node.Observable)
	if !ok {
		slog.Warn("binding degraded", "path", path, "kind", node.KindOf(n).String())
		return h
	}

	h.n = n
	h.debounce = NewDebouncer(o.delay, o.sched, tracker.Trigger)
	h.sub = obs.ObserveDeep(func([]node.Event) {
		if !h.disposed.Load() {
			h.debounce.Schedule()
		}
	})

	slog.Debug("binding attached", "path", path, "kind", n.Kind().String())
	return h
}

// Path returns the bound path.
func (h *Handle) Path() string {
	return h.path
}

// Bound reports whether the path resolved at bind time.
func (h *Handle) Bound() bool {
	return h.n != nil
}

// Get tracks the read and materializes the bound node afresh.
func (h *Handle) Get() value.Value {
	h.tracker.Track()
	if h.n == nil {
		return value.Sequence{}
	}
	return convert.FromNode(h.n)
}

// View tracks the read and returns a live view of the bound container.
func (h *Handle) View() (view.View, bool) {
	h.tracker.Track()
	if h.n == nil {
		return nil, false
	}
	v, err := view.Of(h.doc, h.n)
	if err != nil {
		return nil, false
	}
	return v, true
}

// Set replaces the whole contents of the bound node with x in one
// transaction. The trigger goes through the debouncer, so it coalesces with
// the observer's own. Sequences take a sequence, maps a table and
// texts a string.
func (h *Handle) Set(x any) error {
	if h.n == nil {
		return ErrUnbound
	}

	v, err := convert.Plain(x)
	if err != nil {
		return err
	}

	switch node.KindOf(h.n) {
	case node.KindSequence:
		seq, ok := v.(value.Sequence)
		if !ok {
			return h.mismatch(v)
		}
		sv, _ := view.Of(h.doc, h.n)
		items := make([]any, len(seq))
		for i, item := range seq {
			items[i] = item
		}
		err = sv.(*view.SequenceView).ReplaceAll(items...)

	case node.KindMap:
		t, ok := v.(value.Table)
		if !ok {
			return h.mismatch(v)
		}
		mv, _ := view.Of(h.doc, h.n)
		err = mv.(*view.MapView).Replace(t)

	case node.KindText:
		s, ok := v.(value.String)
		if !ok {
			return h.mismatch(v)
		}
		text, _ := node.AsText(h.n)
		err = h.doc.Transact(func() error {
			text.Delete(0, text.Len())
			text.Insert(0, string(s))
			return nil
		})

	default:
		return h.mismatch(v)
	}

	if err != nil {
		return err
	}
	if !h.disposed.Load() {
		h.debounce.Schedule()
	}
	return nil
}

func (h *Handle) mismatch(v value.Value) error {
	return fmt.Errorf("reactive: cannot set %s binding %q to a %s",
		node.KindOf(h.n), h.path, value.KindName(v))
}

// Dispose removes the observer and drops any pending trigger.
// Safe to call more than once.
func (h *Handle) Dispose() {
	if !h.disposed.CompareAndSwap(false, true) {
		return
	}
	if h.sub != nil {
		h.sub.Unsubscribe()
	}
	if h.debounce != nil {
		h.debounce.Cancel()
	}
}
