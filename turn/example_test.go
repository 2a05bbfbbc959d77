package turn_test

import (
	"fmt"

	"github.com/notorious-go/roundrobin/turn"
)

// This example walks a three-worker group through its first values, asking
// the ownership rule who goes next at every step.
func ExampleOwner() {
	const workers = 3

	last := turn.None
	for range 5 {
		owner := turn.Owner(last, workers)
		value := last + 1
		fmt.Printf("worker %d produces %d\n", owner, value)
		last = value
	}

	// Output:
	// worker 0 produces 0
	// worker 1 produces 1
	// worker 2 produces 2
	// worker 0 produces 3
	// worker 1 produces 4
}

func ExampleNext() {
	seq := []int{0, 1, 2, 3}
	fmt.Println(turn.Next(seq, 3), turn.NextValue(seq))

	// Output:
	// 1 4
}
