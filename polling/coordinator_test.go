package polling_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notorious-go/roundrobin/polling"
	"github.com/notorious-go/roundrobin/turn"
	"github.com/notorious-go/roundrobin/turn/turntest"
)

var disciplines = []polling.Wait{polling.Spin, polling.Cond}

// run executes a coordinator to completion and verifies the ordering
// invariants shared by every scenario.
func run(t *testing.T, workers, count int, wait polling.Wait) *turn.Recorder {
	t.Helper()

	var rec turn.Recorder
	c, err := polling.New(workers, count, polling.WithObserver(&rec), polling.WithWait(wait))
	require.NoError(t, err)

	seq, err := c.Run(t.Context())
	require.NoError(t, err)

	turntest.CheckSequence(t, seq, count)
	turntest.CheckOwnership(t, rec.Events(), workers)
	assert.Equal(t, seq, rec.Values(), "emission order must match the sequence")
	assert.Equal(t, seq, c.Sequence())
	return &rec
}

func TestScenarios(t *testing.T) {
	for _, wait := range disciplines {
		t.Run(wait.String(), func(t *testing.T) {
			t.Run("three-workers-ten-values", func(t *testing.T) {
				rec := run(t, 3, 10, wait)
				want := []turn.WorkerID{0, 1, 2, 0, 1, 2, 0, 1, 2, 0}
				assert.Equal(t, want, rec.Workers())
				assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, rec.Values())
			})
			t.Run("single-worker", func(t *testing.T) {
				rec := run(t, 1, 5, wait)
				assert.Equal(t, []int{0, 1, 2, 3, 4}, rec.Values())
				assert.Equal(t, []turn.WorkerID{0, 0, 0, 0, 0}, rec.Workers())
			})
			t.Run("more-workers-than-values", func(t *testing.T) {
				rec := run(t, 5, 3, wait)
				assert.Equal(t, []turn.WorkerID{0, 1, 2}, rec.Workers())
				assert.NotContains(t, rec.Workers(), turn.WorkerID(3))
				assert.NotContains(t, rec.Workers(), turn.WorkerID(4))
			})
			t.Run("empty", func(t *testing.T) {
				rec := run(t, 4, 0, wait)
				assert.Zero(t, rec.Len())
			})
		})
	}
}

func TestOrderingProperties(t *testing.T) {
	for _, wait := range disciplines {
		for workers := 1; workers <= 6; workers++ {
			for _, count := range []int{0, 1, workers - 1, workers, workers + 1, 25} {
				name := fmt.Sprintf("%v/n=%d/count=%d", wait, workers, count)
				t.Run(name, func(t *testing.T) {
					rec := run(t, workers, count, wait)
					turntest.CheckRoundRobin(t, rec.Events(), workers)
				})
			}
		}
	}
}

func TestDisciplinesAreEquivalent(t *testing.T) {
	spin := run(t, 4, 40, polling.Spin)
	cond := run(t, 4, 40, polling.Cond)
	turntest.CheckEquivalent(t, cond.Events(), spin.Events())
	turntest.CheckEquivalent(t, spin.Events(), turntest.Stream(40, 4))
}

func TestInvalidConfiguration(t *testing.T) {
	_, err := polling.New(0, 10)
	require.ErrorIs(t, err, turn.ErrInvalidWorkers)

	_, err = polling.New(-3, 10)
	require.ErrorIs(t, err, turn.ErrInvalidWorkers)

	_, err = polling.New(3, -1)
	require.ErrorIs(t, err, polling.ErrInvalidCount)

	_, err = polling.New(3, 1, polling.WithWait(polling.Wait(42)))
	require.Error(t, err)
}

func TestRunTwice(t *testing.T) {
	c, err := polling.New(2, 4)
	require.NoError(t, err)

	_, err = c.Run(t.Context())
	require.NoError(t, err)

	seq, err := c.Run(t.Context())
	require.ErrorIs(t, err, polling.ErrStarted)
	assert.Equal(t, []int{0, 1, 2, 3}, seq)
}

func TestCancellation(t *testing.T) {
	const stopAt = 7
	for _, tt := range []struct {
		name    string
		workers int
		wait    polling.Wait
	}{
		{"spin", 3, polling.Spin},
		{"cond", 3, polling.Cond},
		{"spin/single", 1, polling.Spin},
		{"cond/single", 1, polling.Cond},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cause := errors.New("operator abort")
			ctx, cancel := context.WithCancelCause(t.Context())
			defer cancel(nil)

			var rec turn.Recorder
			observer := turn.Multi(&rec, turn.ObserverFunc(func(e turn.Event) {
				if e.Value == stopAt {
					cancel(cause)
				}
			}))
			c, err := polling.New(tt.workers, 1<<30, polling.WithWait(tt.wait), polling.WithObserver(observer))
			require.NoError(t, err)

			seq, err := c.Run(ctx)
			require.ErrorIs(t, err, cause)

			// Whatever was appended before the workers noticed is still a valid
			// prefix.
			require.Greater(t, len(seq), stopAt)
			require.Less(t, len(seq), 1<<20)
			turntest.CheckSequence(t, seq, len(seq))
			turntest.CheckOwnership(t, rec.Events(), tt.workers)
		})
	}
}

func TestParseWait(t *testing.T) {
	for _, wait := range disciplines {
		got, err := polling.ParseWait(wait.String())
		require.NoError(t, err)
		assert.Equal(t, wait, got)
	}
	got, err := polling.ParseWait("")
	require.NoError(t, err)
	assert.Equal(t, polling.Spin, got)

	_, err = polling.ParseWait("sleep")
	require.Error(t, err)
}
