package main

import (
	"fmt"

	"github.com/cschleiden/go-futures/future"
	"github.com/cschleiden/go-futures/sync"
)

func main() {
	l := sync.NewLock()

	// Run holds the lock for the duration of the function, including any
	// future the function returns.
	inner := future.New()

	sync.Run(l, func() (any, error) {
		fmt.Println("first holder, waiting for inner work")
		return inner, nil
	})

	queued := sync.Run(l, func() (any, error) {
		fmt.Println("second holder")
		return "done", nil
	})

	fmt.Println("second queued:", !queued.Fired())

	// Settling the inner future releases the lock and runs the queued
	// section.
	inner.Fire(nil)

	// A queue hands items to waiting gets in order.
	q := sync.NewQueue()

	item, err := q.Get()
	if err != nil {
		panic(err)
	}

	item.AddCallback(func(v any) (any, error) {
		fmt.Println("got item:", v)
		return v, nil
	})

	if err := q.Put("first"); err != nil {
		panic(err)
	}
}
