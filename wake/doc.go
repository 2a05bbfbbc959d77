// Package wake provides a binary wake signal: a level-triggered flag that
// goroutines can block on until another goroutine arms it.
//
// # Why This Package Exists
//
// A baton ring hands the right to act from worker to worker. Each worker owns
// one Signal, sleeps on it, and is woken when its predecessor arms it. The
// primitive needed for that is a manual-reset event: arming releases every
// waiter and keeps releasing them until the signal is explicitly disarmed.
//
// Go's channels come close but are edge-triggered: a buffered send is consumed
// by exactly one receive and a closed channel can never be reopened. This
// package wraps a closable channel behind Arm and Disarm so the signal can be
// toggled for the lifetime of the ring, while Wait keeps the channel-based
// select semantics needed for cancellation.
//
// # When NOT to Use This Package
//
// This package implements one very specific signal variant. If you need
// anything beyond it, use something else:
//
//   - Counting permits: use a semaphore or a buffered channel
//   - Waiting for a value to reach a threshold: use sync.Cond
//   - One-shot broadcast: close a channel, or use context cancellation
//   - Handing off exactly one unit of work: use an unbuffered channel
//
// # Design Trade-offs
//
//   - Level-triggered: a Wait on an armed signal returns immediately, no
//     matter how many goroutines already passed through it.
//   - Idempotent: arming an armed signal or disarming a disarmed one does
//     nothing. There is no count to get wrong.
//   - Disarm reallocates: every arm-disarm cycle allocates one channel.
//
// # Implementation
//
// The signal holds a channel that is closed while the signal is armed. Arm
// closes it; Disarm replaces it with a fresh open channel. Waiters capture the
// channel current at the time of the call, so a Disarm racing with a Wait never
// wakes the waiter spuriously.
package wake
