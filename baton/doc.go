// Package baton coordinates N workers arranged in a ring that pass a single
// right-to-act, the baton, from hand to hand.
//
// # Protocol
//
// Worker i owns a [wake.Signal] and always hands the baton to worker
// (i+1) mod N. Before any worker runs, the ring arms the signal of worker 0;
// every other signal starts disarmed. Each worker then loops:
//
//  1. Block until its own signal is armed.
//  2. Read the ring's counter, perform the unit of work and report the turn.
//  3. Increment the counter.
//  4. Disarm its own signal and arm the next worker's.
//
// Only one signal is armed at a time, so only one worker ever touches the
// counter and no lock is needed around it: the hand-off itself orders every
// access. The counter increases by exactly one per hand-off and the acting
// workers form the periodic sequence 0, 1, ..., N-1, 0, 1, ...
//
// A worker disarms its own signal before arming its successor's. Doing it the
// other way round lets a fast ring come all the way back and arm the signal
// again before it is cleared, which drops the baton; with a single worker the
// successor is the worker itself and the ring would stop after one turn.
//
// # Termination
//
// A ring runs until the context passed to [Ring.Run] is done. [WithTurns]
// bounds it instead: the worker that receives the baton after the budget is
// spent sets the ring's termination flag rather than acting, and Run returns
// nil. That worker keeps the baton, which [Ring.Holder] reports.
//
// # Liveness
//
// Every hand-off depends on the previous holder. If a holder fails mid-turn,
// after disarming its own signal but before arming the next one, no signal is
// armed and the ring can never make progress again. The ring treats this as
// fatal and never hangs silently:
//
//   - A unit of work that returns an error drops the baton; Run fails with
//     [ErrTurnFailed].
//   - A unit of work that never returns is caught by the optional watchdog
//     configured with [WithStallTimeout]; Run fails with [ErrStalled], naming
//     the worker that holds the baton.
package baton
