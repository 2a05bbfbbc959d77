// Package config loads the settings of the roundrobin command from YAML.
//
// A config file may set any subset of the fields; the rest keep the values of
// DefaultConfig:
//
//	workers: 3
//	polling:
//	  count: 10
//	  wait: cond
//	  stallWarning: 500ms
//	baton:
//	  turns: 30
//	  stallTimeout: 2s
//	log:
//	  level: debug
//	  format: json
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/notorious-go/roundrobin/baton"
	"github.com/notorious-go/roundrobin/polling"
	"github.com/notorious-go/roundrobin/turn"
)

// Config is a serialisable representation of the command configuration.
type Config struct {
	Workers int           `yaml:"workers"`
	Polling PollingConfig `yaml:"polling"`
	Baton   BatonConfig   `yaml:"baton"`
	Log     LogConfig     `yaml:"log"`
}

// PollingConfig configures the poll command and the polling coordinator.
type PollingConfig struct {
	// Count is the length of the sequence to produce.
	Count int `yaml:"count"`
	// Wait is the wait discipline: "spin" or "cond".
	Wait string `yaml:"wait"`
	// StallWarning enables starvation warnings when positive.
	StallWarning Duration `yaml:"stallWarning"`
}

// BatonConfig configures the baton command and the baton ring.
type BatonConfig struct {
	// Turns bounds the ring. Negative runs until interrupted.
	Turns int `yaml:"turns"`
	// StallTimeout enables the liveness watchdog when positive.
	StallTimeout Duration `yaml:"stallTimeout"`
}

// LogConfig selects the slog handler used by the command.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// DefaultConfig returns a Config with three workers printing the numbers 0
// through 9 by polling, and an unbounded baton ring.
func DefaultConfig() *Config {
	return &Config{
		Workers: 3,
		Polling: PollingConfig{
			Count: 10,
			Wait:  polling.Spin.String(),
		},
		Baton: BatonConfig{
			Turns: -1,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the YAML file at path on top of DefaultConfig and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns an aggregated error describing invalid settings, or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	if err := turn.Validate(c.Workers); err != nil {
		errs = append(errs, fmt.Errorf("config: workers: %w", err))
	}
	if c.Polling.Count < 0 {
		errs = append(errs, fmt.Errorf("config: polling.count: %w", polling.ErrInvalidCount))
	}
	if _, err := polling.ParseWait(c.Polling.Wait); err != nil {
		errs = append(errs, fmt.Errorf("config: polling.wait: %w", err))
	}
	if c.Polling.StallWarning < 0 {
		errs = append(errs, errors.New("config: polling.stallWarning must not be negative"))
	}
	if c.Baton.StallTimeout < 0 {
		errs = append(errs, errors.New("config: baton.stallTimeout must not be negative"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("config: log.level: %w", err))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("config: log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// PollingOptions translates the polling settings into coordinator options.
func (c *Config) PollingOptions() ([]polling.Option, error) {
	wait, err := polling.ParseWait(c.Polling.Wait)
	if err != nil {
		return nil, err
	}
	return []polling.Option{
		polling.WithWait(wait),
		polling.WithStallWarning(time.Duration(c.Polling.StallWarning)),
	}, nil
}

// BatonOptions translates the baton settings into ring options.
func (c *Config) BatonOptions() []baton.Option {
	return []baton.Option{
		baton.WithTurns(c.Baton.Turns),
		baton.WithStallTimeout(time.Duration(c.Baton.StallTimeout)),
	}
}

// ParseLevel parses a slog level name. The empty string is Info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, err
	}
	return level, nil
}

// Duration is a time.Duration written in YAML as a Go duration string such as
// "1.5s" or "250ms".
type Duration time.Duration

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}
