package sync

import "github.com/cschleiden/go-futures/future"

// Locker is the acquire/release contract shared by Lock and Semaphore.
type Locker interface {
	Acquire() *future.Future
	Release()
}

// Run acquires l, invokes fn while holding it, and releases l once fn's
// outcome has settled, including the case where fn returns a future of its
// own. The returned future fires with fn's outcome, on success and on
// failure alike.
func Run(l Locker, fn func() (any, error)) *future.Future {
	f := l.Acquire()

	f.AddCallback(func(any) (any, error) {
		d := future.From(fn)

		d.AddBoth(func(v any, err error) (any, error) {
			l.Release()
			return v, err
		})

		return d, nil
	})

	return f
}
