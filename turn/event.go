package turn

import (
	"fmt"
	"slices"
	"sync"
)

// Event reports a single turn: the worker that acted and the value it
// produced. For a polling coordinator the value is the appended sequence
// element; for a baton ring it is the counter value read under the baton.
type Event struct {
	Worker WorkerID
	Value  int
}

func (e Event) String() string {
	return fmt.Sprintf("worker %d: %d", e.Worker, e.Value)
}

// An Observer receives events as they happen.
//
// Coordinators call Observe while the acting worker still holds exclusive
// access, so implementations must not block for long and must not call back
// into the coordinator.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts an ordinary function to the Observer interface.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) {
	f(e)
}

// Discard is an Observer that drops every event.
var Discard Observer = ObserverFunc(func(Event) {})

// Multi returns an Observer that forwards each event to all the given
// observers, in order. Nil observers are skipped.
func Multi(observers ...Observer) Observer {
	observers = slices.DeleteFunc(slices.Clone(observers), func(o Observer) bool { return o == nil })
	return ObserverFunc(func(e Event) {
		for _, o := range observers {
			o.Observe(e)
		}
	})
}

// A Recorder is an Observer that captures every event it receives. It is safe
// for concurrent use.
//
// The zero-value Recorder is ready to use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Observe(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events returns a copy of the recorded events in the order they were observed.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Values returns the recorded values in the order they were observed.
func (r *Recorder) Values() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	values := make([]int, len(r.events))
	for i, e := range r.events {
		values[i] = e.Value
	}
	return values
}

// Workers returns the acting workers in the order they were observed.
func (r *Recorder) Workers() []WorkerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	workers := make([]WorkerID, len(r.events))
	for i, e := range r.events {
		workers[i] = e.Worker
	}
	return workers
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
