// Package polling coordinates N workers that take turns appending to a shared
// sequence by repeatedly inspecting it under a mutex.
//
// # Protocol
//
// Every worker runs the same loop against the shared sequence:
//
//  1. Acquire the mutex.
//  2. If the sequence holds count values, release the mutex and stop.
//  3. Ask the ownership rule who owns the next slot (see [turn.Next]).
//  4. If it is this worker, append the next value, report it, release the
//     mutex and go back to 1.
//  5. Otherwise release the mutex and retry.
//
// Because the whole read-decide-append step happens under one held mutex, no
// two workers can ever append the same value, and every value v is appended by
// worker v mod N. When the coordinator returns, the sequence is exactly
// 0, 1, ..., count-1.
//
// Each worker stops on its own next observation of a full sequence. With more
// workers than values, the high-numbered workers stop without ever appending;
// that is correct, not an error.
//
// # Wait Disciplines
//
// Step 5 can be carried out in two ways, selected with [WithWait]:
//
//   - [Spin] releases the mutex, yields the processor and retries at once.
//     Workers never block. This burns CPU while waiting and relies on the Go
//     scheduler to eventually grant the owner the mutex; it is the default
//     because it mirrors the protocol literally and is fine for small N and
//     short turns.
//   - [Cond] waits on a condition variable that is broadcast after every
//     append. The ownership check is unchanged; only the wait is.
//
// Both disciplines produce identical event streams.
//
// # Starvation
//
// The mutex guarantees mutual exclusion, not fairness. A spinning worker may
// in principle keep winning the mutex while the owner of the next slot waits.
// This is a liveness risk, not a correctness violation. [WithStallWarning]
// makes it observable: when the sequence has not advanced for the given
// duration, a waiting worker logs a warning and the stall-warning metric is
// incremented, once per stall.
//
// # Cancellation
//
// Workers check the context passed to [Coordinator.Run] every time they find
// it is not their turn. On cancellation Run returns the cause together with the
// values appended so far, which still satisfy every ordering invariant.
package polling
