package future

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Chain_DeliversResultToTarget(t *testing.T) {
	a := New()
	b := New()

	a.ChainTo(b)

	var got any
	a.AddCallback(func(v any) (any, error) {
		got = v
		return v, nil
	})

	a.Fire("hey")

	// The source's own chain continues with the original result.
	require.Equal(t, "hey", got)

	v, err := b.Result()
	require.NoError(t, err)
	require.Equal(t, "hey", v)
}

func Test_Chain_DeliversErrorToTarget(t *testing.T) {
	a := New()
	b := New()

	var got error
	b.AddErrback(func(err error) (any, error) {
		got = err
		return nil, err
	})

	a.ChainTo(b)
	a.FireError(ErrCancelled)

	require.ErrorIs(t, got, ErrCancelled)
}

func Test_Chain_MultipleTargetsAllReceiveResult(t *testing.T) {
	a := New()

	var second, third any

	b := New().AddCallback(func(v any) (any, error) {
		second = v
		return v, nil
	})
	c := New().AddCallback(func(v any) (any, error) {
		third = v
		return v, nil
	})

	a.ChainTo(b)
	a.ChainTo(c)

	a.Fire("hey")

	require.Equal(t, "hey", second)
	require.Equal(t, "hey", third)
}

func Test_Chain_FireOnChainedTargetPanics(t *testing.T) {
	a := New()
	b := New()

	a.ChainTo(b)

	require.PanicsWithValue(t, "future: cannot fire an already-chained future", func() {
		b.Fire("hey")
	})
}

func Test_Chain_AddStageToChainedTargetPanics(t *testing.T) {
	a := New()
	b := New()

	a.ChainTo(b)

	require.PanicsWithValue(t, "future: cannot add stage to an already-chained future", func() {
		b.AddCallback(func(v any) (any, error) { return v, nil })
	})
}

func Test_Chain_CancelledTargetIgnoresLateResult(t *testing.T) {
	cancellerCalls := 0

	source := New()
	target := New(WithCanceller(func(*Future) {
		cancellerCalls++
	}))

	var targetErr error
	target.AddErrback(func(err error) (any, error) {
		targetErr = err
		return nil, nil
	})

	source.ChainTo(target)
	target.Cancel()

	require.Equal(t, 1, cancellerCalls)
	require.ErrorIs(t, targetErr, ErrCancelled)

	// The source still fires its own chain; the cancelled target sees
	// nothing and nothing panics.
	source.Fire("hey")

	v, err := source.Result()
	require.NoError(t, err)
	require.Equal(t, "hey", v)
}

func Test_Chain_CancellingSourcePropagatesToTarget(t *testing.T) {
	var cancelled []string

	source := New(WithCanceller(func(*Future) {
		cancelled = append(cancelled, "source")
	}))
	target := New(WithCanceller(func(*Future) {
		cancelled = append(cancelled, "target")
	}))

	var sourceErr, targetErr error
	source.AddErrback(func(err error) (any, error) {
		sourceErr = err
		return nil, nil
	})
	target.AddErrback(func(err error) (any, error) {
		targetErr = err
		return nil, nil
	})

	source.ChainTo(target)
	source.Cancel()

	require.Equal(t, []string{"source", "target"}, cancelled)
	require.ErrorIs(t, sourceErr, ErrCancelled)
	require.ErrorIs(t, targetErr, ErrCancelled)

	// A later explicit cancel of the target is a no-op.
	target.Cancel()

	require.Equal(t, []string{"source", "target"}, cancelled)
}

func Test_Chain_ThreeLevelCancellationPropagates(t *testing.T) {
	var cancelled []string

	a := New(WithCanceller(func(*Future) {
		cancelled = append(cancelled, "a")
	}))
	b := New()
	c := New(WithCanceller(func(*Future) {
		cancelled = append(cancelled, "c")
	}))

	var cErr error
	c.AddErrback(func(err error) (any, error) {
		cErr = err
		return nil, nil
	})

	// Chain bottom-up: once b is chained to a it cannot take new stages.
	b.ChainTo(c)
	a.ChainTo(b)

	a.Cancel()

	require.Equal(t, []string{"a", "c"}, cancelled)
	require.True(t, b.Cancelled())
	require.ErrorIs(t, cErr, ErrCancelled)
}
