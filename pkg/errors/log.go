package errors

import (
	"context"
	"log/slog"
)

// LogHandler is an ErrorHandler that writes errors to a structured logger.
type LogHandler struct {
	// Logger receives the records. Nil uses slog.Default().
	Logger *slog.Logger
	// Verbose enables detailed output including stack traces.
	Verbose bool
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// HandleError logs an Error.
func (h *LogHandler) HandleError(err *Error) {
	if err == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("op", err.Op),
		slog.String("kind", err.Kind.String()),
		slog.Any("error", err.Err),
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().LogAttrs(context.Background(), slog.LevelError, "framework error", attrs...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("op", err.Op),
		slog.Any("value", err.Value),
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().LogAttrs(context.Background(), slog.LevelError, "recovered panic", attrs...)
}

// HandleBuildError logs a BuildError.
func (h *LogHandler) HandleBuildError(err *BuildError) {
	if err == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("component", err.Component),
		slog.String("phase", err.Phase),
		slog.String("error", err.Error()),
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, slog.String("stack", err.StackTrace))
	}
	h.logger().LogAttrs(context.Background(), slog.LevelError, "component step failed", attrs...)
}

// HandlePatchError logs a PatchError.
func (h *LogHandler) HandlePatchError(err *PatchError) {
	if err == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("kind", err.Kind.String()),
		slog.String("node", string(err.Node)),
	}
	if err.Component != "" {
		attrs = append(attrs, slog.String("component", err.Component))
	}
	if err.Property != "" {
		attrs = append(attrs, slog.String("property", err.Property))
	}
	if err.Event != "" {
		attrs = append(attrs, slog.String("event", err.Event))
	}
	if err.Key != "" {
		attrs = append(attrs, slog.String("key", err.Key))
	}
	attrs = append(attrs, slog.Any("error", err.Err))
	h.logger().LogAttrs(context.Background(), slog.LevelError, "reconciliation failed", attrs...)
}
