package main

import (
	"fmt"

	"github.com/cschleiden/go-futures/coro"
	"github.com/cschleiden/go-futures/future"
)

func main() {
	first := future.New()
	second := future.New()

	// A routine suspends on futures but reads like sequential code.
	result := coro.RunInline(func(a *coro.Awaiter) (any, error) {
		x, err := a.Await(first)
		if err != nil {
			return nil, err
		}

		y, err := a.Await(second)
		if err != nil {
			return nil, err
		}

		return x.(int) + y.(int), nil
	})

	result.AddCallback(func(v any) (any, error) {
		fmt.Println("sum:", v)
		return v, nil
	})

	first.Fire(1)
	second.Fire(2)

	// The explicit-wait flavor yields a wrapper and unwraps the outcome
	// after being resumed.
	greeting := coro.Run(func(y *coro.Yielder) (any, error) {
		w := coro.WaitFor(future.Resolved("hello"))
		y.Yield(w)

		v, err := w.Unwrap()
		if err != nil {
			return nil, err
		}

		return v.(string) + ", coroutine", nil
	})

	v, err := greeting.Result()
	if err != nil {
		panic(err)
	}

	fmt.Println(v)
}
