package memdoc

import (
	"sync"

	"github.com/roach88/docproxy/internal/node"
)

// delivery is one observer call produced by a commit.
type delivery struct {
	obs    *observer
	events []node.Event
}

// batch is everything one commit hands to the dispatcher.
// A batch with a non-nil barrier carries no work and only signals that
// everything enqueued before it has been delivered.
type batch struct {
	commit     Commit
	deliveries []delivery
	hooks      []*commitHook
	barrier    chan struct{}
}

// batchQueue is a FIFO of committed batches drained by the dispatcher
// goroutine.
//
// The queue is unbounded so that observers may mutate the document (and so
// enqueue more work) from inside a callback without blocking the dispatcher.
type batchQueue struct {
	mu      sync.Mutex
	batches []batch
	closed  bool
	signal  chan struct{} // buffered, size 1
}

func newBatchQueue() *batchQueue {
	return &batchQueue{
		batches: make([]batch, 0, 16),
		signal:  make(chan struct{}, 1),
	}
}

// Enqueue adds a batch to the back of the queue.
// Returns false if the queue is closed.
func (q *batchQueue) Enqueue(b batch) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	q.batches = append(q.batches, b)

	// Non-blocking: a buffer of 1 coalesces multiple signals.
	select {
	case q.signal <- struct{}{}:
	default:
	}

	return true
}

// TryDequeue removes the front batch without blocking.
func (q *batchQueue) TryDequeue() (batch, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.batches) == 0 {
		return batch{}, false
	}

	b := q.batches[0]
	// Clear the slot so delivered events can be collected.
	q.batches[0] = batch{}

	if len(q.batches) == 1 {
		q.batches = q.batches[:0]
	} else {
		q.batches = q.batches[1:]
	}

	return b, true
}

// Wait returns a channel that signals when batches may be available.
// The channel is closed when the queue is closed.
func (q *batchQueue) Wait() <-chan struct{} {
	return q.signal
}

// Len returns the current queue length.
func (q *batchQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.batches)
}

// Close stops accepting batches and wakes the dispatcher.
func (q *batchQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.signal)
}
