package polling

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/notorious-go/roundrobin/turn"
)

// Wait selects how a worker waits when it finds the next slot owned by
// another worker.
type Wait int

const (
	// Spin retries immediately after yielding the processor.
	Spin Wait = iota
	// Cond blocks on a condition variable until the sequence changes.
	Cond
)

func (w Wait) String() string {
	switch w {
	case Spin:
		return "spin"
	case Cond:
		return "cond"
	default:
		return fmt.Sprintf("Wait(%d)", int(w))
	}
}

// ParseWait parses the name of a wait discipline, as returned by Wait.String.
func ParseWait(s string) (Wait, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "spin":
		return Spin, nil
	case "cond":
		return Cond, nil
	default:
		return 0, fmt.Errorf("polling: unknown wait discipline %q", s)
	}
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithObserver reports every appended value to o. The observer is called while
// the mutex is held.
func WithObserver(o turn.Observer) Option {
	return func(c *Coordinator) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithLogger sets the logger used for lifecycle, turn and stall records.
// Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithWait selects the wait discipline. Defaults to Spin.
func WithWait(w Wait) Option {
	return func(c *Coordinator) {
		c.wait = w
	}
}

// WithStallWarning logs a warning when the sequence has not advanced for d.
// Zero disables the warning.
func WithStallWarning(d time.Duration) Option {
	return func(c *Coordinator) {
		c.stallWarning = d
	}
}
