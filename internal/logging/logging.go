// Package logging configures the process-wide zerolog logger and hands out
// component-scoped children.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config captures options for configuring the base logger.
type Config struct {
	Level  string    // "debug", "info", ...; empty falls back to SESSIONDECK_LOG_LEVEL then info
	Output io.Writer // defaults to os.Stderr
}

// Canonical field names shared by all components.
const (
	FieldComponent  = "component"
	FieldEvent      = "event"
	FieldEndpoint   = "endpoint"
	FieldRequestID  = "request_id"
	FieldRunID      = "run_id"
	FieldIdentifier = "identifier"
	FieldURL        = "url"
	FieldEnv        = "environment"
)

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// Configure replaces the base logger. Loggers obtained before the call keep
// their old writer, so callers should configure before wiring components.
func Configure(cfg Config) {
	level := zerolog.InfoLevel
	raw := strings.TrimSpace(cfg.Level)
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("SESSIONDECK_LOG_LEVEL"))
	}
	if raw != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	writer := cfg.Output
	if writer == nil {
		writer = os.Stderr
	}

	mu.Lock()
	defer mu.Unlock()
	base = zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// ConfigureFile points the base logger at path, creating its directory.
// The returned func closes the file.
func ConfigureFile(level, path string) (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	Configure(Config{Level: level, Output: file})
	return file.Close, nil
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger annotated with the component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str(FieldComponent, component).Logger()
}

// Nop returns a logger that discards everything. Tests use it to keep output quiet.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
