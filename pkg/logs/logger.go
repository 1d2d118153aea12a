// Package logs builds the structured loggers used by the scheduler and the
// error handler.
package logs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options configures New.
type Options struct {
	// Writer receives human-readable text records. Nil means os.Stderr.
	Writer io.Writer
	// Level is the minimum level. Nil means a fresh LevelVar at info.
	Level *slog.LevelVar
	// JSON, when non-nil, additionally receives JSON records.
	JSON io.Writer
	// Handlers are extra handlers to fan out to.
	Handlers []slog.Handler
}

// New returns a logger fanning out to a text handler, an optional JSON
// handler and any extra handlers.
func New(opts Options) *slog.Logger {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}
	level := opts.Level
	if level == nil {
		level = new(slog.LevelVar)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	handlers := []slog.Handler{slog.NewTextHandler(writer, handlerOpts)}
	if opts.JSON != nil {
		handlers = append(handlers, slog.NewJSONHandler(opts.JSON, handlerOpts))
	}
	handlers = append(handlers, opts.Handlers...)

	if len(handlers) == 1 {
		return slog.New(handlers[0])
	}
	return slog.New(slogmulti.Fanout(handlers...))
}

// ParseLevel maps "debug", "info", "warn" and "error" to slog levels. The
// empty string is info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
