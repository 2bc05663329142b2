package sync

import "github.com/cschleiden/go-futures/future"

// Semaphore is a counting semaphore. At most the configured number of
// holders may have acquired it at once; further acquirers wait on futures.
type Semaphore struct {
	tokens  int
	limit   int
	waiting []*future.Future
}

// NewSemaphore creates a semaphore with the given number of tokens. It
// panics if tokens < 1.
func NewSemaphore(tokens int) *Semaphore {
	if tokens < 1 {
		panic("sync: semaphore requires at least one token")
	}

	return &Semaphore{
		tokens: tokens,
		limit:  tokens,
	}
}

// Tokens returns the number of tokens currently available.
func (s *Semaphore) Tokens() int {
	return s.tokens
}

// Acquire attempts to take a token. The returned future fires with the
// semaphore once a token is held. Cancelling a waiting future gives up the
// spot in the wait list.
func (s *Semaphore) Acquire() *future.Future {
	f := future.New(future.WithCanceller(s.cancelAcquire))

	if s.tokens == 0 {
		s.waiting = append(s.waiting, f)
	} else {
		s.tokens--
		f.Fire(s)
	}

	return f
}

func (s *Semaphore) cancelAcquire(f *future.Future) {
	for i, w := range s.waiting {
		if w == f {
			s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
			return
		}
	}
}

// Release returns a token and hands it to the oldest waiter, if any.
// Releasing more times than Acquire was called panics; that is a programmer
// error, not a runtime condition.
func (s *Semaphore) Release() {
	if s.tokens >= s.limit {
		panic("sync: semaphore released too many times")
	}

	s.tokens++

	if len(s.waiting) > 0 {
		s.tokens--

		f := s.waiting[0]
		s.waiting[0] = nil
		s.waiting = s.waiting[1:]

		f.Fire(s)
	}
}
