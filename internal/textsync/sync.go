package textsync

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/roach88/docproxy/internal/codec"
	"github.com/roach88/docproxy/internal/docpath"
	"github.com/roach88/docproxy/internal/node"
	"github.com/roach88/docproxy/internal/value"
)

// ErrEmpty is returned when the text, or what it decodes to, is empty.
// An empty read is treated as an error so a transient blank text never
// replaces the decoded state.
var ErrEmpty = errors.New("textsync: text is empty")

// ErrClosed is returned by Set after Close.
var ErrClosed = errors.New("textsync: closed")

// Sync keeps a structured value and a text node in step through a codec.
//
// Inbound: every change to the text re-decodes it. Outbound: Set encodes a
// value and replaces the whole text, unless the text already decodes to an
// equal value.
//
// Thread-safety: All methods are safe for concurrent use. Inbound decodes
// run on the document's dispatcher goroutine.
type Sync struct {
	doc   node.Doc
	text  node.Text
	codec codec.Codec

	mu        sync.Mutex
	status    Status
	value     value.Value
	err       error
	listeners []*listener

	// writeMu orders outbound writes before the inbound decode they cause.
	writeMu sync.Mutex

	sub    node.Subscription
	closed atomic.Bool
}

// Attach binds text to c and decodes it immediately. A nil c uses
// codec.Default.
//
// The returned Sync is usable even when the first decode fails; the error is
// also returned so the caller sees it.
func Attach(doc node.Doc, text node.Text, c codec.Codec) (*Sync, error) {
	if c == nil {
		c = codec.Default
	}
	s := &Sync{doc: doc, text: text, codec: c, status: StatusInit}

	s.sub = text.ObserveDeep(func([]node.Event) {
		if s.closed.Load() {
			return
		}
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		if err := s.Refresh(); err != nil {
			slog.Warn("inbound decode failed", "codec", c.Name(), "err", err)
		}
	})

	return s, s.Refresh()
}

// AttachPath resolves path to a text node and attaches it. With create set,
// missing maps and the text are created.
func AttachPath(doc node.Doc, path string, c codec.Codec, create bool) (*Sync, error) {
	text, err := docpath.ResolveText(doc, path, create)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	return Attach(doc, text, c)
}

// Refresh decodes the current text. On failure the status becomes error and
// the previous value is kept.
func (s *Sync) Refresh() error {
	s.setStatus(StatusParsing, nil)

	raw := s.text.String()
	if strings.TrimSpace(raw) == "" {
		s.setStatus(StatusError, ErrEmpty)
		return ErrEmpty
	}

	v, err := s.codec.Decode(raw)
	if err != nil {
		s.setStatus(StatusError, err)
		return err
	}
	if value.IsEmpty(v) {
		s.setStatus(StatusError, ErrEmpty)
		return ErrEmpty
	}

	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
	s.setStatus(StatusOK, nil)
	return nil
}

// Set writes v to the text. The write is skipped when the current text
// already decodes to a value equal to v; the returned bool reports whether
// the text was written. Empty values are refused with ErrEmpty.
func (s *Sync) Set(v value.Value) (bool, error) {
	if s.closed.Load() {
		return false, ErrClosed
	}
	if value.IsEmpty(v) {
		return false, ErrEmpty
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if cur, err := s.codec.Decode(s.text.String()); err == nil && value.Equal(cur, v) {
		return false, nil
	}

	out, err := s.codec.Encode(v)
	if err != nil {
		return false, fmt.Errorf("encode: %w", err)
	}

	s.setStatus(StatusSaving, nil)
	err = s.doc.Transact(func() error {
		s.text.Delete(0, s.text.Len())
		s.text.Insert(0, out)
		return nil
	})
	if err != nil {
		s.setStatus(StatusError, err)
		return false, err
	}

	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
	s.setStatus(StatusSaved, nil)
	return true, nil
}

// Value returns the last successfully decoded or written value.
func (s *Sync) Value() value.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Status returns the current status.
func (s *Sync) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Err returns the error behind StatusError, or nil.
func (s *Sync) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Codec returns the codec in use.
func (s *Sync) Codec() codec.Codec {
	return s.codec
}

// OnStatus registers fn for every status transition. fn runs on the
// goroutine that caused the transition.
func (s *Sync) OnStatus(fn func(Status)) node.Subscription {
	l := &listener{sync: s, fn: fn}
	l.active.Store(true)

	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
	return l
}

// Close stops inbound decoding. Safe to call more than once.
func (s *Sync) Close() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	s.sub.Unsubscribe()
}

func (s *Sync) setStatus(st Status, err error) {
	s.mu.Lock()
	s.status = st
	s.err = err
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		if l.active.Load() {
			l.fn(st)
		}
	}
}

type listener struct {
	sync   *Sync
	fn     func(Status)
	active atomic.Bool
}

// Unsubscribe implements node.Subscription. Safe to call more than once.
func (l *listener) Unsubscribe() {
	if !l.active.CompareAndSwap(true, false) {
		return
	}
	l.sync.mu.Lock()
	defer l.sync.mu.Unlock()
	l.sync.listeners = slices.DeleteFunc(l.sync.listeners, func(x *listener) bool {
		return x == l
	})
}
