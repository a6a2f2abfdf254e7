package provider

import (
	"context"
	"fmt"
	"sync"
)

// Status is a connection state.
type Status int

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Provider feeds a document from some source and reports on it.
type Provider interface {
	// Synced is closed once the document holds the source's state.
	Synced() <-chan struct{}
	// Status delivers connection state changes. It is closed by Close.
	Status() <-chan Status
	// Close releases the provider. Safe to call more than once.
	Close() error
}

// WaitSynced blocks until p has synced or ctx is done.
func WaitSynced(ctx context.Context, p Provider) error {
	select {
	case <-p.Synced():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for sync: %w", ctx.Err())
	}
}

// Notifier is the shared plumbing for Provider implementations: a one-shot
// synced signal and a status stream that never blocks the sender.
type Notifier struct {
	synced     chan struct{}
	syncedOnce sync.Once

	mu      sync.Mutex
	status  chan Status
	current Status
	closed  bool
}

// NewNotifier creates a notifier in StatusDisconnected. buffer sizes the
// status channel; when it is full the oldest state is dropped.
func NewNotifier(buffer int) *Notifier {
	return &Notifier{
		synced: make(chan struct{}),
		status: make(chan Status, max(buffer, 1)),
	}
}

// MarkSynced closes the synced channel. Later calls do nothing.
func (n *Notifier) MarkSynced() {
	n.syncedOnce.Do(func() { close(n.synced) })
}

// Synced implements Provider.
func (n *Notifier) Synced() <-chan struct{} {
	return n.synced
}

// Status implements Provider.
func (n *Notifier) Status() <-chan Status {
	return n.status
}

// Current returns the last status set.
func (n *Notifier) Current() Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// SetStatus records s and offers it to the status channel. Repeating the
// current status is a no-op.
func (n *Notifier) SetStatus(s Status) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed || s == n.current {
		return
	}
	n.current = s
	for {
		select {
		case n.status <- s:
			return
		default:
		}
		// Full: drop the oldest.
		select {
		case <-n.status:
		default:
		}
	}
}

// Close closes the status channel. Safe to call more than once.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	close(n.status)
}
