// Package config holds the runtime options shared by the class registry and
// the async runtime, loadable from YAML.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Options configures a runtime instance.
type Options struct {
	// MaxChainDepth bounds prototype chain walks. A walk that goes deeper is
	// treated as a cyclic chain and fails with a RangeError.
	MaxChainDepth int `yaml:"max_chain_depth"`

	// MaxDrainTurns bounds the number of microtask turns a single drain may
	// run (0 = unlimited).
	MaxDrainTurns int `yaml:"max_drain_turns"`

	// ReportUnhandledRejections logs promises still rejected without a
	// handler after a drain.
	ReportUnhandledRejections bool `yaml:"report_unhandled_rejections"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the options used when nothing is configured.
func Default() Options {
	return Options{
		MaxChainDepth:             1 << 12,
		MaxDrainTurns:             1 << 20,
		ReportUnhandledRejections: true,
		LogLevel:                  "warn",
	}
}

// Parse decodes YAML over the defaults. Absent keys keep their default.
func Parse(data []byte) (Options, error) {
	opts := Default()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("config: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return Options{}, err
	}
	return opts, nil
}

// Load reads and parses a YAML file.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Validate checks option ranges.
func (o Options) Validate() error {
	if o.MaxChainDepth <= 0 {
		return fmt.Errorf("config: max_chain_depth must be positive, got %d", o.MaxChainDepth)
	}
	if o.MaxDrainTurns < 0 {
		return fmt.Errorf("config: max_drain_turns must not be negative, got %d", o.MaxDrainTurns)
	}
	if _, err := parseLevel(o.LogLevel); err != nil {
		return err
	}
	return nil
}

// Logger builds a text logger writing to w at the configured level.
func (o Options) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(o.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "", "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log_level %q", s)
}
