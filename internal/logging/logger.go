// Package logging provides the process-wide structured logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	slogseq "github.com/sokkalf/slog-seq"
)

var (
	// logger is the global logger instance
	logger = slog.New(slog.DiscardHandler)
	// closer releases the Seq sink, if any
	closer = func() {}
	// mu protects logger and closer
	mu sync.RWMutex
)

// Options configures the global logger.
type Options struct {
	// Level is debug, info, warn or error. Unknown values mean info.
	Level string
	// Format is text or json.
	Format string
	// SeqURL enables a Seq sink in addition to the console.
	SeqURL string
	// Output is the console writer, os.Stderr when nil.
	Output io.Writer
}

// Init replaces the global logger. Calling Init again closes the previous
// Seq sink.
func Init(opts Options) {
	level := ParseLevel(opts.Level)
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var console slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		console = slog.NewJSONHandler(out, handlerOpts)
	} else {
		console = slog.NewTextHandler(out, handlerOpts)
	}

	handler := console
	closeFn := func() {}
	if opts.SeqURL != "" {
		_, seqHandler := slogseq.NewLogger(
			opts.SeqURL,
			slogseq.WithBatchSize(50),
			slogseq.WithFlushInterval(500*time.Millisecond),
			slogseq.WithHandlerOptions(handlerOpts),
		)
		if seqHandler != nil {
			handler = &multiHandler{handlers: []slog.Handler{console, seqHandler}}
			closeFn = func() { seqHandler.Close() }
		}
	}

	mu.Lock()
	prev := closer
	logger = slog.New(handler)
	closer = closeFn
	mu.Unlock()

	prev()
}

// Close flushes and releases the Seq sink, if any.
func Close() {
	mu.Lock()
	c := closer
	closer = func() {}
	mu.Unlock()
	c()
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Enabled reports whether level is enabled on the global logger.
func Enabled(level slog.Level) bool {
	return Logger().Enabled(context.Background(), level)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	Logger().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	Logger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	Logger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	Logger().Error(msg, args...)
}

// With returns a logger with the given attributes
func With(args ...any) *slog.Logger {
	return Logger().With(args...)
}

// Logger returns the underlying slog.Logger instance
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}
