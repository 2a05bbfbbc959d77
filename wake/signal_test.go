package wake_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notorious-go/roundrobin/wake"
)

func Example() {
	s := wake.New()
	fmt.Println("Created:", s)

	// Arming is idempotent; the signal stays armed until disarmed.
	s.Arm()
	s.Arm()
	fmt.Println("After arming twice:", s)

	// Waiting on an armed signal returns immediately, any number of times.
	for range 2 {
		if err := s.Wait(context.Background()); err == nil {
			fmt.Println("Wait returned")
		}
	}

	s.Disarm()
	fmt.Println("After disarming:", s)

	// Output:
	// Created: Signal(disarmed)
	// After arming twice: Signal(armed)
	// Wait returned
	// Wait returned
	// After disarming: Signal(disarmed)
}

func TestZeroValue(t *testing.T) {
	var s wake.Signal
	assert.False(t, s.Armed())
	s.Disarm()
	assert.False(t, s.Armed())
	s.Arm()
	assert.True(t, s.Armed())
	require.NoError(t, s.Wait(t.Context()))
}

func TestWaitBlocksUntilArmed(t *testing.T) {
	s := wake.New()

	done := make(chan error, 1)
	go func() { done <- s.Wait(t.Context()) }()

	select {
	case <-done:
		t.Fatal("Wait returned before the signal was armed")
	case <-time.After(20 * time.Millisecond):
	}

	s.Arm()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the signal was armed")
	}
}

func TestArmReleasesAllWaiters(t *testing.T) {
	s := wake.New()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Wait(t.Context()))
		}()
	}
	s.Arm()
	wg.Wait()
}

func TestWaitCancelled(t *testing.T) {
	s := wake.New()
	cause := errors.New("shutting down")
	ctx, cancel := context.WithCancelCause(t.Context())
	cancel(cause)

	err := s.Wait(ctx)
	require.ErrorIs(t, err, cause)
}

func TestReadySnapshot(t *testing.T) {
	s := wake.New()
	s.Arm()
	ready := s.Ready()
	s.Disarm()

	// The channel observed while armed stays closed.
	select {
	case <-ready:
	default:
		t.Fatal("Ready channel captured while armed is not closed")
	}

	select {
	case <-s.Ready():
		t.Fatal("Ready channel of a disarmed signal is closed")
	default:
	}
}
