package baton

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/notorious-go/roundrobin/metrics"
	"github.com/notorious-go/roundrobin/turn"
	"github.com/notorious-go/roundrobin/wake"
)

var tracer = otel.Tracer("github.com/notorious-go/roundrobin/baton")

var (
	// ErrStalled is returned by Run when the watchdog sees no hand-off within
	// the stall timeout.
	ErrStalled = errors.New("baton: ring stalled")
	// ErrTurnFailed is returned by Run when a worker's unit of work fails and
	// the baton is dropped.
	ErrTurnFailed = errors.New("baton: turn failed")
	// ErrStarted is returned by Run when the ring has already run.
	ErrStarted = errors.New("baton: ring already started")
)

// errFinished cancels the workers of a bounded ring once its turns are spent.
var errFinished = errors.New("baton: turns exhausted")

// A Ring runs a fixed group of workers in cyclic order, passing a single baton
// from each worker to the next.
//
// A Ring runs once. Use New to create one.
type Ring struct {
	workers      int
	turns        int
	stallTimeout time.Duration
	work         Work
	observer     turn.Observer
	logger       *slog.Logger

	started atomic.Bool

	// signals[i] wakes worker i.
	signals []*wake.Signal
	// counter is read and written only by the worker holding the baton.
	counter int
	// holder is the worker whose signal was armed last.
	holder atomic.Int64
	// beat receives a value on every hand-off, for the watchdog.
	beat chan struct{}
}

// New returns a Ring of the given number of workers.
//
// New reports a configuration error wrapping turn.ErrInvalidWorkers if workers
// is not positive.
func New(workers int, opts ...Option) (*Ring, error) {
	if err := turn.Validate(workers); err != nil {
		return nil, fmt.Errorf("baton: %w", err)
	}
	r := &Ring{
		workers:  workers,
		turns:    -1,
		work:     func(context.Context, turn.Event) error { return nil },
		observer: turn.Discard,
		logger:   slog.Default(),
		signals:  make([]*wake.Signal, workers),
		beat:     make(chan struct{}, 1),
	}
	for i := range r.signals {
		r.signals[i] = wake.New()
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run arms the first worker's signal, starts the workers and blocks until
// they stop.
//
// An unbounded ring stops only when ctx is done, and Run returns the cause. A
// ring bounded by WithTurns returns nil once its turns are spent. A dropped
// or stuck baton makes Run fail with ErrTurnFailed or ErrStalled.
func (r *Ring) Run(ctx context.Context) (err error) {
	if !r.started.CompareAndSwap(false, true) {
		return ErrStarted
	}

	runID := uuid.NewString()
	logger := r.logger.With("strategy", metrics.Baton, "run", runID)
	ctx, span := tracer.Start(ctx, "baton.Ring.Run", trace.WithAttributes(
		attribute.String("roundrobin.run", runID),
		attribute.Int("roundrobin.workers", r.workers),
		attribute.Int("roundrobin.turns", r.turns),
	))
	defer func() {
		span.SetAttributes(attribute.Int("roundrobin.counter", r.counter))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	logger.Info("baton: starting ring", "workers", r.workers, "turns", r.turns, "stall_timeout", r.stallTimeout)

	ctx, finish := context.WithCancelCause(ctx)
	defer finish(nil)
	g, ctx := errgroup.WithContext(ctx)

	// Hand the baton to worker 0 before anyone runs.
	r.holder.Store(0)
	r.signals[0].Arm()

	gauge := metrics.WorkerGauge.WithLabelValues(metrics.Baton)
	for id := range r.workers {
		w := r.newWorker(turn.WorkerID(id), logger, finish)
		gauge.Inc()
		g.Go(func() error {
			defer gauge.Dec()
			return w.loop(ctx)
		})
	}
	if r.stallTimeout > 0 {
		g.Go(func() error {
			return r.watchdog(ctx, logger)
		})
	}

	if err = g.Wait(); err != nil {
		logger.Error("baton: ring stopped", "counter", r.counter, "error", err)
		return err
	}
	logger.Info("baton: ring finished", "counter", r.counter)
	return nil
}

// Counter returns the number of turns taken. It must not be called while Run
// is in progress.
func (r *Ring) Counter() int {
	return r.counter
}

// Holder returns the worker whose signal was armed last: the worker holding
// the baton, or about to.
func (r *Ring) Holder() turn.WorkerID {
	return turn.WorkerID(r.holder.Load())
}

// handedOff records that the baton now belongs to id.
func (r *Ring) handedOff(id turn.WorkerID) {
	r.holder.Store(int64(id))
	select {
	case r.beat <- struct{}{}:
	default:
	}
}

// watchdog fails the ring when no hand-off happens within the stall timeout.
func (r *Ring) watchdog(ctx context.Context, logger *slog.Logger) error {
	timer := time.NewTimer(r.stallTimeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.beat:
			timer.Reset(r.stallTimeout)
		case <-timer.C:
			holder := r.Holder()
			metrics.StallCounter.Inc()
			logger.Error("baton: no hand-off within stall timeout", "holder", int(holder), "timeout", r.stallTimeout)
			return fmt.Errorf("%w: worker %d held the baton for %v", ErrStalled, holder, r.stallTimeout)
		}
	}
}

// A worker is one member of the ring. It waits on own and hands off to next.
type worker struct {
	id     turn.WorkerID
	next   turn.WorkerID
	r      *Ring
	own    *wake.Signal
	logger *slog.Logger
	finish context.CancelCauseFunc
}

func (r *Ring) newWorker(id turn.WorkerID, logger *slog.Logger, finish context.CancelCauseFunc) *worker {
	next := turn.Owner(int(id), r.workers)
	return &worker{
		id:     id,
		next:   next,
		r:      r,
		own:    r.signals[id],
		logger: logger.With("worker", int(id)),
		finish: finish,
	}
}

func (w *worker) loop(ctx context.Context) error {
	r := w.r
	turns := metrics.TurnCounter.WithLabelValues(metrics.Baton, strconv.Itoa(int(w.id)))
	for {
		if err := w.own.Wait(ctx); err != nil {
			if errors.Is(err, errFinished) {
				return nil
			}
			return err
		}
		if r.turns >= 0 && r.counter >= r.turns {
			w.logger.Debug("baton: turns exhausted", "counter", r.counter)
			w.finish(errFinished)
			return nil
		}

		e := turn.Event{Worker: w.id, Value: r.counter}
		if err := r.work(ctx, e); err != nil {
			w.own.Disarm()
			if ctx.Err() != nil {
				// Shut down mid-turn rather than failed.
				if cause := context.Cause(ctx); !errors.Is(cause, errFinished) {
					return cause
				}
				return nil
			}
			// The baton is lost: nobody else will ever be woken.
			w.logger.Error("baton: turn failed, baton dropped", "counter", e.Value, "error", err)
			return fmt.Errorf("%w: worker %d at %d: %w", ErrTurnFailed, w.id, e.Value, err)
		}
		r.observer.Observe(e)
		r.counter++
		turns.Inc()
		w.logger.Debug("baton: turn taken", "value", e.Value)

		w.own.Disarm()
		r.handedOff(w.next)
		r.signals[w.next].Arm()
	}
}
