// Package logger wraps zerolog for the vault tools.
//
// Log events carry vault names, actions and durations. Passwords, keys and
// decrypted payloads are never passed to a logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is a thin wrapper around zerolog.Logger.
type Logger struct {
	zerolog.Logger
}

func init() {
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		return runtime.FuncForPC(pc).Name()
	}
	zerolog.CallerFieldName = "func"
}

// New builds a logger for role. An empty path writes to stderr so command
// output on stdout stays clean; otherwise entries are appended to path.
func New(role, level, path string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stderr
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
	}

	return NewWithWriter(role, lvl, out), nil
}

// NewWithWriter builds a logger writing JSON lines to w.
func NewWithWriter(role string, level zerolog.Level, w io.Writer) *Logger {
	l := zerolog.New(w).Level(level).With().
		Str("role", role).
		Timestamp().
		Caller().
		Logger()
	return &Logger{l}
}

// ParseLevel accepts zerolog level names; empty means info.
func ParseLevel(level string) (zerolog.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zerolog.InfoLevel, nil
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level %q: %w", level, err)
	}
	return lvl, nil
}

// Nop returns a *Logger that discards all output.
func Nop() *Logger {
	return &Logger{zerolog.Nop()}
}

// WithVault returns a child logger carrying the vault name.
func (l *Logger) WithVault(name string) *Logger {
	return &Logger{l.With().Str("vault", name).Logger()}
}
