package flock

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cschleiden/go-futures/future"
	"github.com/cschleiden/go-futures/log"
	"github.com/cschleiden/go-futures/timer"
)

var (
	// ErrAlreadyAcquiring is the error WaitUntilLocked fails with when an
	// acquisition is already in progress for this lock.
	ErrAlreadyAcquiring = errors.New("flock: acquisition already in progress")

	// ErrTimeout is the error WaitUntilLocked fails with when the lock
	// could not be taken within the given timeout.
	ErrTimeout = errors.New("flock: timed out waiting for lock")
)

// Lock polls a LockFile until it can be taken. Retries are scheduled on a
// timer with backoff; the caller observes the outcome through a future and
// is never blocked.
type Lock struct {
	file      *LockFile
	scheduler *timer.Scheduler
	policy    func() backoff.BackOff
	logger    log.Logger

	tryCall     *timer.Call
	timeoutCall *timer.Call
}

// Option configures a Lock.
type Option func(l *Lock)

// WithScheduler sets the scheduler retries are issued on. Tests pass a
// scheduler backed by a mock clock.
func WithScheduler(s *timer.Scheduler) Option {
	return func(l *Lock) {
		l.scheduler = s
	}
}

// WithLogger sets the logger retry attempts are reported to.
func WithLogger(lg log.Logger) Option {
	return func(l *Lock) {
		l.logger = lg
	}
}

// WithBackOff sets the policy producing retry intervals. The factory is
// invoked once per acquisition.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(l *Lock) {
		l.policy = fn
	}
}

// NewLock creates a polling lock backed by the file at path.
func NewLock(path string, opts ...Option) *Lock {
	l := &Lock{
		file:      New(path),
		scheduler: timer.NewScheduler(),
		policy:    defaultBackOff,
		logger:    log.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(l)
	}

	l.logger = l.logger.With(log.LockPathKey, path)

	return l
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.Multiplier = 1.5
	// Retry until told to stop; timeouts are handled by the caller's
	// deadline, not by the interval policy.
	b.MaxElapsedTime = 0
	b.Reset()

	return b
}

// WaitUntilLocked returns a future that fires with the lock once the
// underlying file lock has been taken. A timeout of zero waits forever.
// Cancelling the future stops the polling. Only one acquisition may be in
// flight per Lock at a time; a second one fails with ErrAlreadyAcquiring.
func (l *Lock) WaitUntilLocked(timeout time.Duration) *future.Future {
	if l.tryCall != nil {
		return future.Rejected(ErrAlreadyAcquiring)
	}

	f := future.New(future.WithCanceller(func(*future.Future) {
		l.stop()
	}))

	b := l.policy()

	if timeout > 0 {
		l.timeoutCall = l.scheduler.Schedule(timeout, func() {
			l.timeoutCall = nil
			if l.tryCall != nil {
				l.tryCall.Cancel()
				l.tryCall = nil
			}

			// One final attempt before giving up.
			ok, err := l.file.TryLock()
			switch {
			case err != nil:
				f.FireError(err)
			case ok:
				f.Fire(l)
			default:
				f.FireError(fmt.Errorf("acquiring %s: %w", l.file.path, ErrTimeout))
			}
		})
	}

	var try func()
	try = func() {
		l.tryCall = nil

		ok, err := l.file.TryLock()
		if err != nil {
			l.stop()
			f.FireError(err)
			return
		}

		if ok {
			l.stop()
			f.Fire(l)
			return
		}

		delay := b.NextBackOff()
		if delay == backoff.Stop {
			l.stop()
			f.FireError(fmt.Errorf("acquiring %s: %w", l.file.path, ErrTimeout))
			return
		}

		l.logger.Debug("lock busy, retrying", log.DelayKey, delay.Milliseconds())
		l.tryCall = l.scheduler.Schedule(delay, try)
	}

	try()

	return f
}

func (l *Lock) stop() {
	if l.tryCall != nil {
		l.tryCall.Cancel()
		l.tryCall = nil
	}
	if l.timeoutCall != nil {
		l.timeoutCall.Cancel()
		l.timeoutCall = nil
	}
}

// Unlock releases the underlying file lock.
func (l *Lock) Unlock() error {
	return l.file.Unlock()
}

// Held reports whether the underlying file lock is currently held.
func (l *Lock) Held() bool {
	return l.file.Held()
}
