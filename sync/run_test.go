package sync

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cschleiden/go-futures/future"
)

func Test_Run_HoldsLockDuringFn(t *testing.T) {
	l := NewLock()

	var lockedDuringFn bool

	f := Run(l, func() (any, error) {
		lockedDuringFn = l.Locked()
		return 42, nil
	})

	require.True(t, lockedDuringFn)
	require.False(t, l.Locked())

	v, err := f.Result()
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func Test_Run_ReleasesOnError(t *testing.T) {
	l := NewLock()

	cause := errors.New("boom")

	f := Run(l, func() (any, error) {
		return nil, cause
	})

	require.False(t, l.Locked())

	_, err := f.Result()
	require.ErrorIs(t, err, cause)
}

func Test_Run_ReleasesOnPanic(t *testing.T) {
	l := NewLock()

	f := Run(l, func() (any, error) {
		panic("boom")
	})

	require.False(t, l.Locked())

	_, err := f.Result()
	require.EqualError(t, err, "panic: boom")
}

func Test_Run_WaitsForReturnedFuture(t *testing.T) {
	l := NewLock()

	inner := future.New()

	f := Run(l, func() (any, error) {
		return inner, nil
	})

	// The lock stays held until the inner future settles.
	require.True(t, l.Locked())
	require.False(t, f.Fired())

	inner.Fire("done")

	require.False(t, l.Locked())

	v, err := f.Result()
	require.NoError(t, err)
	require.Equal(t, "done", v)
}

func Test_Run_QueuesBehindCurrentHolder(t *testing.T) {
	l := NewLock()

	holder := l.Acquire()

	ran := false
	f := Run(l, func() (any, error) {
		ran = true
		return nil, nil
	})

	require.True(t, holder.Fired())
	require.False(t, ran)

	l.Release()

	require.True(t, ran)
	require.True(t, f.Fired())
}

func Test_Run_WithSemaphore(t *testing.T) {
	s := NewSemaphore(1)

	f := Run(s, func() (any, error) {
		return "held", nil
	})

	require.Equal(t, 1, s.Tokens())

	v, err := f.Result()
	require.NoError(t, err)
	require.Equal(t, "held", v)
}
