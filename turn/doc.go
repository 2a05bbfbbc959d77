// Package turn defines the turn-ownership rule shared by the round-robin
// coordinators in this module, together with the event stream they emit.
//
// # Turn Ownership
//
// A fixed set of N workers, identified by [WorkerID] values in [0, N), take
// turns producing the values of a single sequence 0, 1, 2, ... The worker
// allowed to produce the next value is a pure function of the last produced
// value:
//
//	owner(last, N) = (last + 1) mod N
//
// The empty sequence is owned by worker 0, which is what [Owner] returns for
// [None]. The rule holds no state: every worker consults it, no worker owns
// it, and identical arguments always yield identical results.
//
// # Events
//
// Every coordinator reports each turn as an [Event] to an [Observer]. The
// observer is called while the producing worker still holds exclusive access
// to the shared state, so the order in which events are observed is exactly
// the order in which values were produced. A [Recorder] captures the stream
// for later inspection:
//
//	var rec turn.Recorder
//	c, err := polling.New(3, 10, polling.WithObserver(&rec))
//	...
//	fmt.Println(rec.Workers()) // [0 1 2 0 1 2 0 1 2 0]
//
// # Configuration Errors
//
// The worker count must be positive. [Validate] reports [ErrInvalidWorkers]
// otherwise; coordinators call it once, before any worker starts.
package turn
