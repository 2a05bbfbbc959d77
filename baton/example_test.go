package baton_test

import (
	"context"
	"fmt"

	"github.com/notorious-go/roundrobin/baton"
	"github.com/notorious-go/roundrobin/turn"
)

// This example passes the baton around a ring of three workers for seven
// turns. Each worker prints the ring's counter when the baton reaches it.
func ExampleRing() {
	printer := turn.ObserverFunc(func(e turn.Event) {
		fmt.Printf("t%d %d\n", e.Worker+1, e.Value)
	})
	r, err := baton.New(3, baton.WithTurns(7), baton.WithObserver(printer))
	if err != nil {
		panic(err)
	}
	if err := r.Run(context.Background()); err != nil {
		panic(err)
	}
	fmt.Println("counter:", r.Counter(), "holder:", r.Holder())

	// Output:
	// t1 0
	// t2 1
	// t3 2
	// t1 3
	// t2 4
	// t3 5
	// t1 6
	// counter: 7 holder: 1
}

// This example shows how a failing unit of work surfaces instead of leaving
// the ring waiting forever for a hand-off that will never come.
func ExampleWithWork() {
	work := func(_ context.Context, e turn.Event) error {
		if e.Value == 2 {
			return fmt.Errorf("cannot process %d", e.Value)
		}
		return nil
	}
	r, err := baton.New(2, baton.WithWork(work))
	if err != nil {
		panic(err)
	}
	fmt.Println(r.Run(context.Background()))

	// Output:
	// baton: turn failed: worker 0 at 2: cannot process 2
}
