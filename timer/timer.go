// Package timer schedules delayed calls on a clock. It is the time source
// for everything in this module that retries or times out; passing a mock
// clock makes those behaviors deterministic in tests.
package timer

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/cschleiden/go-futures/future"
)

// Scheduler issues delayed calls.
type Scheduler struct {
	clock clock.Clock
}

// NewScheduler returns a scheduler backed by the wall clock.
func NewScheduler() *Scheduler {
	return &Scheduler{clock: clock.New()}
}

// NewSchedulerWithClock returns a scheduler backed by the given clock. Tests
// pass clock.NewMock().
func NewSchedulerWithClock(c clock.Clock) *Scheduler {
	return &Scheduler{clock: c}
}

// Now returns the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Call is a scheduled delayed call.
type Call struct {
	timer *clock.Timer
}

// Schedule runs fn once after delay has elapsed on the scheduler's clock.
func (s *Scheduler) Schedule(delay time.Duration, fn func()) *Call {
	return &Call{timer: s.clock.AfterFunc(delay, fn)}
}

// Cancel stops the call. It reports whether the call was stopped before
// running.
func (c *Call) Cancel() bool {
	return c.timer.Stop()
}

// WithTimeout arranges for f to be cancelled if it does not settle within d.
// The delayed cancel is disarmed as soon as f settles. Returns f for
// chaining.
func (s *Scheduler) WithTimeout(f *future.Future, d time.Duration) *future.Future {
	call := s.Schedule(d, f.Cancel)

	f.AddBoth(func(v any, err error) (any, error) {
		call.Cancel()
		return v, err
	})

	return f
}
