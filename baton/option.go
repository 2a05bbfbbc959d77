package baton

import (
	"context"
	"log/slog"
	"time"

	"github.com/notorious-go/roundrobin/turn"
)

// Work is the unit of work a worker performs while it holds the baton. The
// event carries the acting worker and the counter value it read.
//
// Work must return once ctx is done. A non-nil error drops the baton.
type Work func(ctx context.Context, e turn.Event) error

// Option configures a Ring.
type Option func(*Ring)

// WithObserver reports every turn to o. The observer is called while the
// acting worker holds the baton.
func WithObserver(o turn.Observer) Option {
	return func(r *Ring) {
		if o != nil {
			r.observer = o
		}
	}
}

// WithLogger sets the logger used for lifecycle, turn and stall records.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Ring) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTurns stops the ring after n turns. A negative n leaves the ring
// unbounded, which is the default.
func WithTurns(n int) Option {
	return func(r *Ring) {
		r.turns = n
	}
}

// WithWork sets the unit of work performed on every turn, before the turn is
// reported and the counter incremented.
func WithWork(w Work) Option {
	return func(r *Ring) {
		if w != nil {
			r.work = w
		}
	}
}

// WithStallTimeout aborts the ring with ErrStalled when no hand-off happens
// within d. Zero disables the watchdog, which is the default.
func WithStallTimeout(d time.Duration) Option {
	return func(r *Ring) {
		r.stallTimeout = d
	}
}
