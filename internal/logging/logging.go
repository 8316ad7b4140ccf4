// Package logging builds the zap loggers used across longboard.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the level, encoding and destination of a logger
type Options struct {
	Level  string // debug, info, warn, error
	Format string // console or json
	File   string // empty logs to stderr
}

// New builds a sugared logger. Format "json" uses the production encoder,
// anything else the development console encoder.
func New(opts Options) (*zap.SugaredLogger, error) {
	level, err := zapcore.ParseLevel(defaultString(opts.Level, "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var cfg zap.Config
	switch opts.Format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "", "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.Development = false
	default:
		return nil, fmt.Errorf("invalid log format %q", opts.Format)
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.DisableStacktrace = true

	if opts.File != "" {
		cfg.OutputPaths = []string{opts.File}
		cfg.ErrorOutputPaths = []string{opts.File}
	} else {
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Must is New for main packages; it falls back to stderr logging at info level on error.
func Must(opts Options) *zap.SugaredLogger {
	log, err := New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logging: %v\n", err)
		log, _ = New(Options{})
	}
	return log
}

// Nop discards everything
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
