package sync

import (
	"errors"

	"github.com/cschleiden/go-futures/future"
)

var (
	// ErrQueueOverflow is returned by Put when the item buffer is full.
	ErrQueueOverflow = errors.New("sync: queue overflow")

	// ErrQueueUnderflow is returned by Get when too many gets are already
	// waiting for items.
	ErrQueueUnderflow = errors.New("sync: queue underflow")
)

// Queue is an event-driven queue. Items may be added as usual; retrieving an
// item from an empty queue returns a future that fires once an item becomes
// available.
type Queue struct {
	waiting []*future.Future
	pending []any

	maxSize    int
	maxWaiters int
}

// QueueOption configures a queue.
type QueueOption func(q *Queue)

// WithMaxSize bounds the number of buffered items. Put returns
// ErrQueueOverflow once the buffer is full and no waiter is available.
func WithMaxSize(n int) QueueOption {
	return func(q *Queue) {
		q.maxSize = n
	}
}

// WithMaxWaiters bounds the number of outstanding Get futures. Get returns
// ErrQueueUnderflow once the limit is reached.
func WithMaxWaiters(n int) QueueOption {
	return func(q *Queue) {
		q.maxWaiters = n
	}
}

// NewQueue creates a queue. Without options, both the item buffer and the
// waiter list are unbounded.
func NewQueue(opts ...QueueOption) *Queue {
	q := &Queue{
		maxSize:    -1,
		maxWaiters: -1,
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Len returns the number of buffered items.
func (q *Queue) Len() int {
	return len(q.pending)
}

// Put adds an item. If a get is waiting, the item is delivered directly to
// the oldest waiter's future; otherwise it is buffered.
func (q *Queue) Put(v any) error {
	if len(q.waiting) > 0 {
		f := q.waiting[0]
		q.waiting[0] = nil
		q.waiting = q.waiting[1:]

		f.Fire(v)
		return nil
	}

	if q.maxSize < 0 || len(q.pending) < q.maxSize {
		q.pending = append(q.pending, v)
		return nil
	}

	return ErrQueueOverflow
}

// Get retrieves an item. If one is buffered, the returned future has already
// fired with it; otherwise the future joins the waiter list and fires when
// an item is put. Cancelling a waiting future gives up the spot.
func (q *Queue) Get() (*future.Future, error) {
	if len(q.pending) > 0 {
		v := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]

		return future.Resolved(v), nil
	}

	if q.maxWaiters < 0 || len(q.waiting) < q.maxWaiters {
		f := future.New(future.WithCanceller(q.cancelGet))
		q.waiting = append(q.waiting, f)
		return f, nil
	}

	return nil, ErrQueueUnderflow
}

// cancelGet removes a cancelled waiter. A waiter that Put has already fired
// is no longer in the list, so removal cannot target a popped slot.
func (q *Queue) cancelGet(f *future.Future) {
	for i, w := range q.waiting {
		if w == f {
			q.waiting = append(q.waiting[:i], q.waiting[i+1:]...)
			return
		}
	}
}
