// Package config contains all knobs and defaults used to configure the
// progressive delivery engine.
package config

import (
	"fmt"
	"time"
)

const (
	// DefaultChunkSize is the number of parts returned per request.
	DefaultChunkSize = 2

	// DefaultCursorTTL bounds how long an issued cursor stays usable.
	DefaultCursorTTL = 1 * time.Hour

	// DefaultMaxKeysPerRequest bounds key-based access fan-out.
	DefaultMaxKeysPerRequest = 10

	// DefaultMaxCursorSize is the byte bound on inbound cursor strings,
	// rejected before any decode work.
	DefaultMaxCursorSize = 1024

	// DefaultEvaluationConcurrency of 1 evaluates a window sequentially.
	DefaultEvaluationConcurrency = 1

	// DefaultPartTimeout of 0 leaves producer calls unbounded.
	DefaultPartTimeout = 0 * time.Second
)

// LogConfig configures structured logging.
type LogConfig struct {
	// Format is either 'text' or 'json'.
	Format string

	// Level is one of none, debug, info, warn, error.
	Level string
}

// Config holds the settings of one delivery engine instance.
type Config struct {
	// Secret is the application-wide secret cursors are keyed from. The
	// cipher key is derived from it, never the secret itself. Required.
	Secret string

	// ChunkSize is the number of parts evaluated per request.
	ChunkSize int

	// CursorTTL is the cursor time-to-live. Zero disables expiry.
	CursorTTL time.Duration

	// MaxKeysPerRequest bounds how many distinct names one key-based call
	// may request.
	MaxKeysPerRequest int

	// MaxCursorSize is the byte bound on inbound cursor strings.
	MaxCursorSize int

	// EvaluationConcurrency caps simultaneous in-flight producer calls
	// within one window. 1 means sequential.
	EvaluationConcurrency int

	// PartTimeout bounds each producer call. Zero disables the bound.
	// Individual parts may override it.
	PartTimeout time.Duration

	Log LogConfig
}

// DefaultConfig returns the config with all defaults set. The Secret must
// still be supplied by the caller.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:             DefaultChunkSize,
		CursorTTL:             DefaultCursorTTL,
		MaxKeysPerRequest:     DefaultMaxKeysPerRequest,
		MaxCursorSize:         DefaultMaxCursorSize,
		EvaluationConcurrency: DefaultEvaluationConcurrency,
		PartTimeout:           DefaultPartTimeout,
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
	}
}

// Verify checks the config for setup errors. It is meant to run once at
// component initialization; none of these conditions are recoverable at
// request time.
func (c *Config) Verify() error {
	if c.Secret == "" {
		return fmt.Errorf("config 'secret' is required for cursor encryption")
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("config 'chunkSize' must be a positive integer, got %d", c.ChunkSize)
	}

	if c.CursorTTL < 0 {
		return fmt.Errorf("config 'cursorTTL' must not be negative, got %v", c.CursorTTL)
	}

	if c.MaxKeysPerRequest <= 0 {
		return fmt.Errorf("config 'maxKeysPerRequest' must be a positive integer, got %d", c.MaxKeysPerRequest)
	}

	if c.MaxCursorSize <= 0 {
		return fmt.Errorf("config 'maxCursorSize' must be a positive integer, got %d", c.MaxCursorSize)
	}

	if c.EvaluationConcurrency <= 0 {
		return fmt.Errorf("config 'evaluationConcurrency' must be a positive integer, got %d", c.EvaluationConcurrency)
	}

	if c.PartTimeout < 0 {
		return fmt.Errorf("config 'partTimeout' must not be negative, got %v", c.PartTimeout)
	}

	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("config 'log.format' must be one of ['text', 'json']")
	}

	switch c.Log.Level {
	case "none", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config 'log.level' must be one of ['none', 'debug', 'info', 'warn', 'error']")
	}

	return nil
}
