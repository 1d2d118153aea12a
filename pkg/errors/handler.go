package errors

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

var (
	// DefaultHandler receives every reported error. It starts as a
	// LogHandler on slog.Default.
	DefaultHandler ErrorHandler = &LogHandler{}

	handlerMu sync.RWMutex
)

// SetHandler replaces the global handler. Nil restores the default
// LogHandler.
func SetHandler(h ErrorHandler) {
	if h == nil {
		h = &LogHandler{}
	}
	handlerMu.Lock()
	DefaultHandler = h
	handlerMu.Unlock()
}

// deliver stamps *at when it is zero and passes the current handler to fn.
func deliver(at *time.Time, fn func(ErrorHandler)) {
	if at.IsZero() {
		*at = time.Now()
	}
	handlerMu.RLock()
	h := DefaultHandler
	handlerMu.RUnlock()
	if h != nil {
		fn(h)
	}
}

// Report sends a generic error to the global handler.
func Report(err *Error) {
	if err != nil {
		deliver(&err.Timestamp, func(h ErrorHandler) { h.HandleError(err) })
	}
}

// ReportPanic sends a recovered panic to the global handler.
func ReportPanic(err *PanicError) {
	if err != nil {
		deliver(&err.Timestamp, func(h ErrorHandler) { h.HandlePanic(err) })
	}
}

// ReportError routes err to the handler method for its type. Errors of
// other types are reported as an Error of KindUnknown carrying op.
func ReportError(op string, err error) {
	switch e := err.(type) {
	case nil:
	case *PatchError:
		if e != nil {
			deliver(&e.Timestamp, func(h ErrorHandler) { h.HandlePatchError(e) })
		}
	case *BuildError:
		if e != nil {
			deliver(&e.Timestamp, func(h ErrorHandler) { h.HandleBuildError(e) })
		}
	case *PanicError:
		ReportPanic(e)
	case *Error:
		Report(e)
	default:
		Report(&Error{Op: op, Kind: KindUnknown, Err: err})
	}
}

// Recover reports a panic in progress under op. Call it deferred:
//
//	defer errors.Recover("core.Dispatch")
func Recover(op string) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{Op: op, Value: r, StackTrace: CaptureStack()})
	}
}

// RecoverWithCallback is Recover followed by callback(r), so the caller can
// turn the panic into a result.
func RecoverWithCallback(op string, callback func(r any)) {
	if r := recover(); r != nil {
		ReportPanic(&PanicError{Op: op, Value: r, StackTrace: CaptureStack()})
		if callback != nil {
			callback(r)
		}
	}
}

// CaptureStack formats the caller's stack, starting at the function that
// called the one calling CaptureStack.
func CaptureStack() string {
	var pcs [32]uintptr
	n := runtime.Callers(3, pcs[:])
	if n == 0 {
		return ""
	}
	var sb strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for more := true; more; {
		var frame runtime.Frame
		frame, more = frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
	}
	return sb.String()
}
