package main

import (
	"errors"
	"fmt"

	"github.com/cschleiden/go-futures/future"
)

func main() {
	// A future is a placeholder for a result that is not available yet.
	// Stages added to it run in order once it fires.
	f := future.New()

	f.AddCallback(func(v any) (any, error) {
		return fmt.Sprintf("Hello, %v!", v), nil
	})

	f.AddCallback(func(v any) (any, error) {
		fmt.Println(v)
		return v, nil
	})

	f.Fire("world")

	// Errors skip callbacks and run errbacks instead; a handled error
	// switches the chain back to the success path.
	g := future.New()

	g.AddCallback(func(v any) (any, error) {
		return nil, errors.New("something went wrong")
	})

	g.AddErrback(func(err error) (any, error) {
		fmt.Println("recovered:", err)
		return "default", nil
	})

	g.AddCallback(func(v any) (any, error) {
		fmt.Println("continuing with:", v)
		return v, nil
	})

	g.Fire("ignored")

	// Chaining forwards one future's result to another.
	source := future.New()
	target := future.New()

	target.AddCallback(func(v any) (any, error) {
		fmt.Println("target received:", v)
		return v, nil
	})

	source.ChainTo(target)
	source.Fire(42)
}
