package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/notorious-go/roundrobin/config"
	"github.com/notorious-go/roundrobin/metrics"
)

// session holds what a sub-command needs besides its own flags. close releases
// everything setup started.
type session struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func(context.Context) error
}

func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil {
			s.logger.Warn("roundrobin: shutdown", "error", err)
		}
	}
}

func setup(cmd *cobra.Command, f *flags) (context.Context, *session, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	s := &session{cfg: cfg, logger: logger}
	if f.trace {
		shutdown, err := startTracing(ctx, cmd.ErrOrStderr())
		if err != nil {
			return nil, nil, err
		}
		s.closers = append(s.closers, shutdown)
	}
	if f.metricsAddr != "" {
		s.closers = append(s.closers, serveMetrics(f.metricsAddr, logger))
	}
	return ctx, s, nil
}

func newLogger(w io.Writer, cfg config.LogConfig) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// startTracing installs a global tracer provider exporting to w.
func startTracing(ctx context.Context, w io.Writer) (func(context.Context) error, error) {
	exp, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx, resource.WithAttributes(
		attribute.String("service.name", "roundrobin"),
		attribute.String("service.version", version),
	))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp), sdktrace.WithResource(res))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// serveMetrics exposes the round-robin metrics on addr until the returned
// function is called.
func serveMetrics(addr string, logger *slog.Logger) func(context.Context) error {
	reg := metrics.NewRegistry()
	metrics.RegisterMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("roundrobin: metrics server", "addr", addr, "error", err)
		}
	}()
	logger.Info("roundrobin: serving metrics", "addr", addr)
	return srv.Shutdown
}

func parseDuration(s string) (config.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("duration must not be negative")
	}
	return config.Duration(d), nil
}
