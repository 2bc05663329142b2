package sync

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cschleiden/go-futures/future"
)

func Test_Lock_AcquireFiresImmediatelyWhenFree(t *testing.T) {
	l := NewLock()

	f := l.Acquire()

	require.True(t, f.Fired())
	require.True(t, l.Locked())

	v, err := f.Result()
	require.NoError(t, err)
	require.Same(t, l, v)
}

func Test_Lock_WaitersAcquireInOrder(t *testing.T) {
	l := NewLock()

	var order []int

	hold := func(id int) *future.Future {
		return l.Acquire().AddCallback(func(v any) (any, error) {
			order = append(order, id)
			return v, nil
		})
	}

	hold(1)
	second := hold(2)
	third := hold(3)

	require.Equal(t, []int{1}, order)
	require.False(t, second.Fired())

	l.Release()
	require.Equal(t, []int{1, 2}, order)
	require.False(t, third.Fired())

	l.Release()
	require.Equal(t, []int{1, 2, 3}, order)

	l.Release()
	require.False(t, l.Locked())
}

func Test_Lock_NeverObservablyFreeDuringHandoff(t *testing.T) {
	l := NewLock()

	l.Acquire()

	var lockedAtFire bool
	l.Acquire().AddCallback(func(v any) (any, error) {
		lockedAtFire = l.Locked()
		return v, nil
	})

	l.Release()

	require.True(t, lockedAtFire)
	require.True(t, l.Locked())
}

func Test_Lock_CancelledWaiterIsSkipped(t *testing.T) {
	l := NewLock()

	l.Acquire()
	second := l.Acquire()
	third := l.Acquire()

	second.Cancel()

	_, err := second.Result()
	require.ErrorIs(t, err, future.ErrCancelled)

	l.Release()

	require.True(t, third.Fired())
	require.True(t, l.Locked())
}

func Test_Lock_ReleaseUnlockedPanics(t *testing.T) {
	l := NewLock()

	require.PanicsWithValue(t, "sync: release of unlocked lock", func() {
		l.Release()
	})
}
