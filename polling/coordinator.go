package polling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/notorious-go/roundrobin/metrics"
	"github.com/notorious-go/roundrobin/turn"
)

var tracer = otel.Tracer("github.com/notorious-go/roundrobin/polling")

var (
	// ErrInvalidCount is returned when a coordinator is configured with a
	// negative count.
	ErrInvalidCount = errors.New("polling: count must not be negative")
	// ErrStarted is returned by Run when the coordinator has already run.
	ErrStarted = errors.New("polling: coordinator already started")
)

// A Coordinator runs a fixed group of workers that jointly grow a sequence
// from empty to a configured length, each worker appending only the values it
// owns.
//
// A Coordinator runs once. Use New to create one.
type Coordinator struct {
	workers      int
	count        int
	wait         Wait
	stallWarning time.Duration
	observer     turn.Observer
	logger       *slog.Logger
	now          func() time.Time

	started atomic.Bool

	// mu guards everything below. cond is bound to mu.
	mu   sync.Mutex
	cond *sync.Cond
	seq  []int
	// advanced is the time the sequence last changed. warned records whether a
	// stall warning was already issued since then.
	advanced time.Time
	warned   bool
}

// New returns a Coordinator for the given number of workers that stops once
// the sequence holds count values.
//
// New reports a configuration error, wrapping turn.ErrInvalidWorkers or
// ErrInvalidCount, if workers is not positive or count is negative.
func New(workers, count int, opts ...Option) (*Coordinator, error) {
	if err := turn.Validate(workers); err != nil {
		return nil, fmt.Errorf("polling: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, count)
	}
	c := &Coordinator{
		workers:  workers,
		count:    count,
		observer: turn.Discard,
		logger:   slog.Default(),
		now:      time.Now,
		seq:      make([]int, 0, min(count, 1<<12)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.wait != Spin && c.wait != Cond {
		return nil, fmt.Errorf("polling: unknown wait discipline %v", c.wait)
	}
	c.cond = sync.NewCond(&c.mu)
	return c, nil
}

// Run starts the workers and blocks until all of them have stopped. It returns
// the final sequence, which is 0, 1, ..., count-1 unless ctx was cancelled, in
// which case Run returns the values appended so far and the cause of the
// cancellation.
func (c *Coordinator) Run(ctx context.Context) (seq []int, err error) {
	if !c.started.CompareAndSwap(false, true) {
		return c.Sequence(), ErrStarted
	}

	runID := uuid.NewString()
	logger := c.logger.With("strategy", metrics.Polling, "run", runID)
	ctx, span := tracer.Start(ctx, "polling.Coordinator.Run", trace.WithAttributes(
		attribute.String("roundrobin.run", runID),
		attribute.Int("roundrobin.workers", c.workers),
		attribute.Int("roundrobin.count", c.count),
		attribute.String("roundrobin.wait", c.wait.String()),
	))
	defer func() {
		span.SetAttributes(attribute.Int("roundrobin.len", len(seq)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	logger.Info("polling: starting workers", "workers", c.workers, "count", c.count, "wait", c.wait)
	c.mu.Lock()
	c.advanced = c.now()
	c.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	if c.wait == Cond {
		// Waiting workers only notice cancellation when woken.
		stop := context.AfterFunc(ctx, c.wakeAll)
		defer stop()
	}

	gauge := metrics.WorkerGauge.WithLabelValues(metrics.Polling)
	for id := range c.workers {
		w := c.newWorker(turn.WorkerID(id), logger)
		gauge.Inc()
		g.Go(func() error {
			defer gauge.Dec()
			if c.wait == Cond {
				return w.waitLoop(ctx)
			}
			return w.spinLoop(ctx)
		})
	}

	err = g.Wait()
	seq = c.Sequence()
	if err != nil {
		logger.Warn("polling: stopped before completion", "len", len(seq), "error", err)
		return seq, err
	}
	logger.Info("polling: sequence complete", "len", len(seq))
	return seq, nil
}

// Sequence returns a copy of the values appended so far. It is safe to call at
// any time.
func (c *Coordinator) Sequence() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.seq)
}

func (c *Coordinator) wakeAll() {
	c.mu.Lock()
	c.cond.Broadcast()
	c.mu.Unlock()
}

// A worker is one member of the group. Its id is fixed for its lifetime.
type worker struct {
	id      turn.WorkerID
	c       *Coordinator
	logger  *slog.Logger
	turns   prometheus.Counter
	retries prometheus.Counter
}

func (c *Coordinator) newWorker(id turn.WorkerID, logger *slog.Logger) *worker {
	label := strconv.Itoa(int(id))
	return &worker{
		id:      id,
		c:       c,
		logger:  logger.With("worker", int(id)),
		turns:   metrics.TurnCounter.WithLabelValues(metrics.Polling, label),
		retries: metrics.RetryCounter.WithLabelValues(metrics.Polling, label),
	}
}

// spinLoop busy-waits for turns: the mutex is released between checks and
// the worker never blocks on anything but the mutex itself.
func (w *worker) spinLoop(ctx context.Context) error {
	c := w.c
	for {
		c.mu.Lock()
		if ctx.Err() != nil {
			c.mu.Unlock()
			return context.Cause(ctx)
		}
		done, took := w.take()
		if !done && !took {
			w.checkStall()
		}
		c.mu.Unlock()

		switch {
		case done:
			return nil
		case took:
			continue
		}
		w.retries.Inc()
		runtime.Gosched()
	}
}

// waitLoop holds the mutex except while blocked on the condition variable,
// which is broadcast after every append and on cancellation.
func (w *worker) waitLoop(ctx context.Context) error {
	c := w.c
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		// A lone worker owns every slot, so cancellation is checked before
		// each take rather than only when the worker has to wait.
		if ctx.Err() != nil {
			return context.Cause(ctx)
		}
		done, took := w.take()
		switch {
		case done:
			return nil
		case took:
			c.cond.Broadcast()
			continue
		}
		w.checkStall()
		w.retries.Inc()
		c.cond.Wait()
	}
}

// take appends the next value if w owns it. It reports whether the sequence
// is already complete and whether w appended a value. c.mu must be held.
func (w *worker) take() (done, took bool) {
	c := w.c
	if len(c.seq) == c.count {
		return true, false
	}
	if turn.Next(c.seq, c.workers) != w.id {
		return false, false
	}
	v := turn.NextValue(c.seq)
	c.seq = append(c.seq, v)
	c.advanced = c.now()
	c.warned = false

	// Report while still holding the mutex so the stream order is the sequence
	// order.
	c.observer.Observe(turn.Event{Worker: w.id, Value: v})
	w.turns.Inc()
	w.logger.Debug("polling: turn taken", "value", v)
	return false, true
}

// checkStall issues the stall warning once per stall. c.mu must be held.
func (w *worker) checkStall() {
	c := w.c
	if c.stallWarning <= 0 || c.warned {
		return
	}
	since := c.now().Sub(c.advanced)
	if since < c.stallWarning {
		return
	}
	c.warned = true
	metrics.StallWarningCounter.WithLabelValues(metrics.Polling).Inc()
	w.logger.Warn("polling: sequence has not advanced",
		"owner", int(turn.Next(c.seq, c.workers)),
		"len", len(c.seq),
		"since", since,
	)
}
