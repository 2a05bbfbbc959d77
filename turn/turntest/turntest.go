// Package turntest provides utilities for testing round-robin coordinators.
// The checks verify the ordering invariants every coordinator in this module
// must uphold, independently of how it synchronizes its workers.
//
// # Overview
//
// A coordinator under test reports its turns through a [turn.Recorder]. Once
// it has finished, the recorded stream is handed to the checks:
//
//   - [CheckSequence] verifies a final sequence is exactly 0, 1, ..., count-1.
//   - [CheckOwnership] verifies every value was produced by its owner.
//   - [CheckRoundRobin] verifies workers act in fixed cyclic order, each
//     exactly k times in every window of k*N turns.
//   - [CheckEquivalent] verifies two coordinators produced the same stream.
//
// # Example Usage
//
//	var rec turn.Recorder
//	c, _ := polling.New(3, 10, polling.WithObserver(&rec))
//	seq, err := c.Run(ctx)
//	require.NoError(t, err)
//	turntest.CheckSequence(t, seq, 10)
//	turntest.CheckOwnership(t, rec.Events(), 3)
//
// Violations are reported with t.Errorf so that a single run reports every
// broken invariant rather than only the first.
package turntest

import (
	"slices"
	"testing"

	"github.com/notorious-go/roundrobin/turn"
)

// CheckSequence verifies that seq holds exactly the values 0 through count-1 in
// order, with no repeated or skipped values.
func CheckSequence(t testing.TB, seq []int, count int) {
	t.Helper()

	if len(seq) != count {
		t.Errorf("sequence has %d values, want %d", len(seq), count)
	}
	for i, v := range seq {
		if v != i {
			t.Errorf("sequence[%d] = %d, want %d", i, v, i)
			return
		}
	}
}

// CheckOwnership verifies that the values of events increase by one from zero
// and that each was produced by the worker owning it in a group of n workers,
// that is, by worker value mod n.
func CheckOwnership(t testing.TB, events []turn.Event, n int) {
	t.Helper()

	last := turn.None
	for i, e := range events {
		if e.Value != last+1 {
			t.Errorf("event %d: value %d follows %d; values must be consecutive", i, e.Value, last)
		}
		if want := turn.Owner(last, n); e.Worker != want {
			t.Errorf("event %d: value %d produced by worker %d, owner is worker %d", i, e.Value, e.Worker, want)
		}
		last = e.Value
	}
}

// CheckRoundRobin verifies that the workers of events act in fixed cyclic order
// starting at worker 0, so that every full window of k*n events contains
// exactly k turns of each of the n workers.
func CheckRoundRobin(t testing.TB, events []turn.Event, n int) {
	t.Helper()

	for i, e := range events {
		if want := turn.WorkerID(i % n); e.Worker != want {
			t.Errorf("turn %d taken by worker %d, want worker %d", i, e.Worker, want)
			return
		}
	}

	// Count per window as well; a broken cycle is caught above, but the count
	// makes the failure message point at the unfair worker.
	for start := 0; start+n <= len(events); start += n {
		turns := make([]int, n)
		for _, e := range events[start : start+n] {
			if int(e.Worker) < 0 || int(e.Worker) >= n {
				t.Errorf("turn taken by unknown worker %d", e.Worker)
				return
			}
			turns[e.Worker]++
		}
		for w, k := range turns {
			if k != 1 {
				t.Errorf("window starting at turn %d: worker %d acted %d times, want 1", start, w, k)
			}
		}
	}
}

// CheckEquivalent verifies that two event streams are identical.
func CheckEquivalent(t testing.TB, got, want []turn.Event) {
	t.Helper()

	if slices.Equal(got, want) {
		return
	}
	if len(got) != len(want) {
		t.Errorf("streams differ in length: got %d events, want %d", len(got), len(want))
	}
	for i := range min(len(got), len(want)) {
		if got[i] != want[i] {
			t.Errorf("streams diverge at event %d: got %v, want %v", i, got[i], want[i])
			return
		}
	}
}

// Stream returns the ideal event stream for count turns of n workers: value v
// produced by worker v mod n.
func Stream(count, n int) []turn.Event {
	events := make([]turn.Event, count)
	for v := range count {
		events[v] = turn.Event{Worker: turn.WorkerID(v % n), Value: v}
	}
	return events
}
