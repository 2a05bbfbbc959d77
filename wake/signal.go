package wake

import (
	"context"
	"sync"
)

// Signal is a binary wake primitive. It is either armed or disarmed; waiters
// block while it is disarmed and are released once it is armed.
//
// The zero-value Signal is disarmed and ready to use. A Signal must not be
// copied after first use.
type Signal struct {
	mu sync.Mutex
	// ch is closed while the signal is armed. It starts as nil and is
	// initialized to an open channel on first use.
	ch    chan struct{}
	armed bool
}

// New returns a disarmed Signal.
func New() *Signal {
	return &Signal{ch: make(chan struct{})}
}

// init ensures the signal has a channel. The caller must hold s.mu.
func (s *Signal) init() {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
}

// Arm arms the signal, releasing all current and future waiters until the
// signal is disarmed. Arming an armed signal does nothing.
func (s *Signal) Arm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	if !s.armed {
		close(s.ch)
		s.armed = true
	}
}

// Disarm disarms the signal so that subsequent waiters block until it is armed
// again. Disarming a disarmed signal does nothing.
func (s *Signal) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.armed {
		s.ch = make(chan struct{})
		s.armed = false
	}
	s.init()
}

// Ready returns a channel that is closed once the signal is armed. The
// channel reflects the signal at the time of the call; disarming the signal
// afterwards does not reopen it.
func (s *Signal) Ready() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.init()
	return s.ch
}

// Wait blocks until the signal is armed or ctx is done, in which case it
// returns the cause of the context's cancellation.
//
// Typical usage in a hand-off loop:
//
//	for {
//	    if err := own.Wait(ctx); err != nil {
//	        return err
//	    }
//	    // ... act ...
//	    own.Disarm()
//	    next.Arm()
//	}
func (s *Signal) Wait(ctx context.Context) error {
	select {
	case <-s.Ready():
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Armed reports whether the signal is currently armed.
func (s *Signal) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// String returns "Signal(armed)" or "Signal(disarmed)", enabling direct
// printing of signals in fmt operations.
func (s *Signal) String() string {
	if s.Armed() {
		return "Signal(armed)"
	}
	return "Signal(disarmed)"
}
