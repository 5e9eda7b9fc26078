// Package logger provides the process-wide structured logger.
//
// It wraps log/slog with a colored text handler for terminals, a JSON
// handler for log shippers, and runtime level/format switching driven
// by config hot reload.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Config selects the logger's level, format, and destination.
type Config struct {
	Level  string // DEBUG, INFO, WARN, ERROR
	Format string // text, json
	Output string // stdout, stderr, or a file path
}

var (
	// levelVar is shared by every handler ever built, so SetLevel
	// takes effect without rebuilding the handler.
	levelVar slog.LevelVar

	current atomic.Pointer[slog.Logger]

	mu      sync.Mutex
	out     io.Writer = os.Stdout
	format            = "text"
	colored bool
)

func init() {
	colored = isTerminal(os.Stdout.Fd())
	rebuild()
}

// rebuild swaps in a fresh logger for the current output and format.
// Callers other than init hold mu.
func rebuild() {
	opts := &slog.HandlerOptions{Level: &levelVar}
	var h slog.Handler
	if format == "json" {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = newTextHandler(out, &levelVar, colored)
	}
	current.Store(slog.New(h))
}

// Init applies the given configuration. An empty field leaves the
// corresponding setting unchanged.
func Init(cfg Config) error {
	if cfg.Output != "" {
		w, color, err := resolveOutput(cfg.Output)
		if err != nil {
			return err
		}
		mu.Lock()
		out = w
		colored = color
		rebuild()
		mu.Unlock()
	}
	SetLevel(cfg.Level)
	SetFormat(cfg.Format)
	return nil
}

// InitWithWriter points the logger at an arbitrary writer. Test use.
func InitWithWriter(w io.Writer, level, format string, color bool) {
	mu.Lock()
	out = w
	colored = color
	rebuild()
	mu.Unlock()
	SetLevel(level)
	SetFormat(format)
}

func resolveOutput(dest string) (io.Writer, bool, error) {
	switch strings.ToLower(dest) {
	case "stdout":
		return os.Stdout, isTerminal(os.Stdout.Fd()), nil
	case "stderr":
		return os.Stderr, isTerminal(os.Stderr.Fd()), nil
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, false, fmt.Errorf("failed to open log file %q: %w", dest, err)
	}
	return f, false, nil
}

// SetLevel sets the minimum log level. Unknown levels are ignored so a
// bad hot-reloaded config cannot silence the process.
func SetLevel(level string) {
	if l, ok := parseLevel(level); ok {
		levelVar.Set(l)
	}
}

func parseLevel(level string) (slog.Level, bool) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO":
		return slog.LevelInfo, true
	case "WARN":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	}
	return 0, false
}

// SetFormat switches between "text" and "json" output. Unknown formats
// are ignored.
func SetFormat(f string) {
	f = strings.ToLower(f)
	if f != "text" && f != "json" {
		return
	}
	mu.Lock()
	if f != format {
		format = f
		rebuild()
	}
	mu.Unlock()
}

// Debug logs at debug level. Args are alternating key/value pairs.
func Debug(msg string, args ...any) {
	current.Load().Debug(msg, args...)
}

// Info logs at info level.
func Info(msg string, args ...any) {
	current.Load().Info(msg, args...)
}

// Warn logs at warn level.
func Warn(msg string, args ...any) {
	current.Load().Warn(msg, args...)
}

// Error logs at error level.
func Error(msg string, args ...any) {
	current.Load().Error(msg, args...)
}

// With returns a logger with pre-bound attributes.
func With(args ...any) *slog.Logger {
	return current.Load().With(args...)
}
