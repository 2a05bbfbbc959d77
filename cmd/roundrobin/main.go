// Command roundrobin runs a group of workers that take turns producing
// numbers, using either the polling coordinator or the baton ring.
//
//	roundrobin poll --workers 3 --count 10
//	roundrobin baton --workers 3 --turns 9
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/notorious-go/roundrobin/baton"
	"github.com/notorious-go/roundrobin/config"
	"github.com/notorious-go/roundrobin/polling"
	"github.com/notorious-go/roundrobin/turn"
)

var version = "0.1.0"

// flags holds the command-line settings. Flags left unset fall back to the
// config file, then to config.DefaultConfig.
type flags struct {
	configPath  string
	workers     int
	logLevel    string
	logFormat   string
	metricsAddr string
	trace       bool

	count        int
	wait         string
	stallWarning string

	turns        int
	stallTimeout string
}

func newRootCmd() *cobra.Command {
	var f flags
	rootCmd := &cobra.Command{
		Use:           "roundrobin",
		Short:         "Round-robin workers taking turns on a shared sequence",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "path to a YAML config file")
	pf.IntVarP(&f.workers, "workers", "n", 0, "number of workers")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&f.logFormat, "log-format", "", "log format (text, json)")
	pf.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	pf.BoolVar(&f.trace, "trace", false, "write OpenTelemetry spans to stderr")

	pollCmd := &cobra.Command{
		Use:   "poll",
		Short: "Take turns by polling a mutex-protected sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPoll(cmd, &f)
		},
	}
	pollCmd.Flags().IntVar(&f.count, "count", 0, "length of the sequence to produce")
	pollCmd.Flags().StringVar(&f.wait, "wait", "", "wait discipline (spin, cond)")
	pollCmd.Flags().StringVar(&f.stallWarning, "stall-warning", "", "warn when the sequence stops advancing for this long")

	batonCmd := &cobra.Command{
		Use:   "baton",
		Short: "Take turns by passing a baton around a ring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBaton(cmd, &f)
		},
	}
	batonCmd.Flags().IntVar(&f.turns, "turns", 0, "stop after this many turns; negative runs until interrupted")
	batonCmd.Flags().StringVar(&f.stallTimeout, "stall-timeout", "", "abort when no hand-off happens for this long")

	rootCmd.AddCommand(pollCmd, batonCmd)
	return rootCmd
}

func runPoll(cmd *cobra.Command, f *flags) error {
	ctx, s, err := setup(cmd, f)
	if err != nil {
		return err
	}
	defer s.close()

	opts, err := s.cfg.PollingOptions()
	if err != nil {
		return err
	}
	opts = append(opts, polling.WithLogger(s.logger), polling.WithObserver(printer(cmd.OutOrStdout())))
	c, err := polling.New(s.cfg.Workers, s.cfg.Polling.Count, opts...)
	if err != nil {
		return err
	}
	_, err = c.Run(ctx)
	return interrupted(ctx, err)
}

func runBaton(cmd *cobra.Command, f *flags) error {
	ctx, s, err := setup(cmd, f)
	if err != nil {
		return err
	}
	defer s.close()

	opts := append(s.cfg.BatonOptions(), baton.WithLogger(s.logger), baton.WithObserver(printer(cmd.OutOrStdout())))
	r, err := baton.New(s.cfg.Workers, opts...)
	if err != nil {
		return err
	}
	return interrupted(ctx, r.Run(ctx))
}

// printer writes one line per turn.
func printer(w io.Writer) turn.Observer {
	return turn.ObserverFunc(func(e turn.Event) {
		fmt.Fprintf(w, "task-%d number:%d\n", e.Worker, e.Value)
	})
}

// interrupted treats a run stopped by an interrupt as a clean exit.
func interrupted(ctx context.Context, err error) error {
	if err != nil && ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// loadConfig reads the config file, if any, and applies the flags set on the
// command line on top of it.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if changed("count") {
		cfg.Polling.Count = f.count
	}
	if changed("wait") {
		cfg.Polling.Wait = f.wait
	}
	if changed("turns") {
		cfg.Baton.Turns = f.turns
	}
	if changed("stall-warning") {
		d, err := parseDuration(f.stallWarning)
		if err != nil {
			return nil, fmt.Errorf("--stall-warning: %w", err)
		}
		cfg.Polling.StallWarning = d
	}
	if changed("stall-timeout") {
		d, err := parseDuration(f.stallTimeout)
		if err != nil {
			return nil, fmt.Errorf("--stall-timeout: %w", err)
		}
		cfg.Baton.StallTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
