// Package sync provides synchronization primitives for event-driven code:
// a mutual-exclusion lock, a counting semaphore, and a bounded queue. None
// of them ever block a goroutine; a caller that has to wait receives a
// cancellable future that fires when the resource becomes available.
//
// Like the future package, these primitives assume a single logical thread
// of control and are not safe for concurrent use.
package sync

import "github.com/cschleiden/go-futures/future"

// Lock is a mutual-exclusion lock. Acquire returns a future instead of
// blocking; on Release, ownership transfers directly to the oldest waiter,
// so the lock is never observably free while waiters exist.
type Lock struct {
	locked  bool
	waiting []*future.Future
}

func NewLock() *Lock {
	return &Lock{}
}

// Locked reports whether the lock is currently held. Useful as the
// equivalent of a non-blocking acquisition check.
func (l *Lock) Locked() bool {
	return l.locked
}

// Acquire attempts to take the lock. The returned future fires with the
// lock itself once it is held. If the lock is busy, the future joins the
// tail of the wait list; cancelling it gives up the spot with no other side
// effect.
func (l *Lock) Acquire() *future.Future {
	f := future.New(future.WithCanceller(l.cancelAcquire))

	if l.locked {
		l.waiting = append(l.waiting, f)
	} else {
		l.locked = true
		f.Fire(l)
	}

	return f
}

// cancelAcquire removes a cancelled waiter from the wait list. A waiter that
// Release has already fired is no longer in the list, and its canceller
// never runs, so removal cannot target a popped slot.
func (l *Lock) cancelAcquire(f *future.Future) {
	for i, w := range l.waiting {
		if w == f {
			l.waiting = append(l.waiting[:i], l.waiting[i+1:]...)
			return
		}
	}
}

// Release releases the lock and hands it to the oldest waiter, if any.
// Releasing a lock that is not held panics.
func (l *Lock) Release() {
	if !l.locked {
		panic("sync: release of unlocked lock")
	}

	l.locked = false

	if len(l.waiting) > 0 {
		l.locked = true

		f := l.waiting[0]
		l.waiting[0] = nil
		l.waiting = l.waiting[1:]

		f.Fire(l)
	}
}
