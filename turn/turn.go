package turn

import (
	"errors"
	"fmt"
)

// ErrInvalidWorkers is returned when a coordinator is configured with fewer
// than one worker.
var ErrInvalidWorkers = errors.New("turn: worker count must be positive")

// None is the last value of an empty sequence. Passing it to Owner yields the
// owner of the very first value.
const None = -1

// WorkerID identifies a worker within a group of N workers. Valid IDs lie in
// [0, N) and are fixed when the worker is created.
type WorkerID int

// Owner returns the worker allowed to produce the value following last in a
// group of n workers. Use None as last for an empty sequence.
//
// Owner is pure. It assumes n was accepted by Validate and panics with a
// division by zero otherwise.
func Owner(last, n int) WorkerID {
	return WorkerID((last + 1) % n)
}

// Next returns the worker allowed to append to seq in a group of n workers.
func Next(seq []int, n int) WorkerID {
	if len(seq) == 0 {
		return Owner(None, n)
	}
	return Owner(seq[len(seq)-1], n)
}

// NextValue returns the value that follows seq: one past its last element, or
// zero for an empty sequence.
func NextValue(seq []int) int {
	if len(seq) == 0 {
		return 0
	}
	return seq[len(seq)-1] + 1
}

// Validate reports whether n is a usable worker count.
func Validate(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, n)
	}
	return nil
}
