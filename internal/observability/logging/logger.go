// Package logging provides structured logging with zerolog.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging configuration.
type Config struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	TimeFormat string // RFC3339, Unix, etc.
	File       string // optional rotated log file, written in addition to stdout
	MaxSizeMB  int
	MaxBackups int
}

// DefaultConfig returns sensible default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     "json",
		TimeFormat: time.RFC3339,
		MaxSizeMB:  50,
		MaxBackups: 5,
	}
}

// Init initializes the global zerolog logger.
func Init(cfg Config) {
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}
	zerolog.TimeFieldFormat = cfg.TimeFormat

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = zerolog.New(Output(cfg, os.Stdout)).
		With().
		Timestamp().
		Caller().
		Str("service", "oral-health-intake-service").
		Logger()
}

// Output builds the log writer for cfg on top of stdout.
func Output(cfg Config, stdout io.Writer) io.Writer {
	var out io.Writer = stdout
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        stdout,
			TimeFormat: time.Kitchen,
		}
	}
	if cfg.File == "" {
		return out
	}

	// Files always get JSON so they stay machine readable.
	rotated := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		Compress:   true,
	}
	return zerolog.MultiLevelWriter(out, rotated)
}

// Logger returns the global service logger.
func Logger() zerolog.Logger {
	return log.Logger
}

// WithComponent returns a logger with a component tag.
func WithComponent(component string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Logger()
}

// WithSession returns a logger with intake session context.
func WithSession(sessionId string) zerolog.Logger {
	return log.With().
		Str("sessionId", sessionId).
		Logger()
}

// WithRecording returns a logger with session and recording context.
func WithRecording(sessionId, recordingId string) zerolog.Logger {
	return log.With().
		Str("sessionId", sessionId).
		Str("recordingId", recordingId).
		Logger()
}

// WithProvider returns a logger tagged with an external provider.
func WithProvider(component, provider string) zerolog.Logger {
	return log.With().
		Str("component", component).
		Str("provider", provider).
		Logger()
}
