// Package errors provides structured error handling for the framework.
//
// Errors fall into three classes. Authoring errors (malformed property
// values, duplicate sibling keys, invalid trees) and toolkit errors are fatal:
// the scheduler stops and the host process is expected to exit. Runtime
// conditions such as a failed deferred task are not errors at this level;
// components model them as ordinary messages.
package errors

import (
	"fmt"
	"time"

	"github.com/go-drift/vtree/pkg/vnode"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindAuthoring indicates a static mistake in a component's view.
	KindAuthoring
	// KindToolkit indicates a failure reported by the widget toolkit.
	KindToolkit
	// KindTask indicates a deferred task failure.
	KindTask
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindBuild indicates a failure inside a component's update or view step.
	KindBuild
	// KindInit indicates an initialization error.
	KindInit
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuthoring:
		return "authoring"
	case KindToolkit:
		return "toolkit"
	case KindTask:
		return "task"
	case KindPanic:
		return "panic"
	case KindBuild:
		return "build"
	case KindInit:
		return "init"
	default:
		return "unknown"
	}
}

// Error represents a structured framework error.
type Error struct {
	// Op is the operation that failed (e.g., "core.Run").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "core.task").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// BuildError represents a failure inside a component step.
type BuildError struct {
	// Component is the type name of the component that failed.
	Component string
	// Phase is the step that failed ("update", "change", "view").
	Phase string
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// Err is the underlying error (nil for panics).
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *BuildError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.%s(): %v", e.Component, e.Phase, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s.%s(): %v", e.Component, e.Phase, e.Err)
	}
	return fmt.Sprintf("unknown error in %s.%s()", e.Component, e.Phase)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// PatchError represents a failure while reconciling a virtual tree against
// live widgets. It names the offending node so the diagnostic points at the
// authoring site.
type PatchError struct {
	// Kind is KindAuthoring or KindToolkit.
	Kind ErrorKind
	// Component is the type name of the component whose view was reconciled.
	Component string
	// Node is the kind of the offending node.
	Node vnode.Kind
	// Key is the child key involved, if any.
	Key string
	// Property is the property name involved, if any.
	Property string
	// Event is the event name involved, if any.
	Event string
	// Err is the underlying error.
	Err error
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *PatchError) Error() string {
	loc := string(e.Node)
	switch {
	case e.Property != "":
		loc += "." + e.Property
	case e.Event != "":
		loc += "::" + e.Event
	}
	if e.Key != "" {
		loc += fmt.Sprintf(" (key %q)", e.Key)
	}
	if e.Component != "" {
		return fmt.Sprintf("%s error in %s view at %s: %v", e.Kind, e.Component, loc, e.Err)
	}
	return fmt.Sprintf("%s error at %s: %v", e.Kind, loc, e.Err)
}

func (e *PatchError) Unwrap() error {
	return e.Err
}

// ErrorHandler receives errors reported by the framework.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *Error)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleBuildError is called when a component step fails.
	HandleBuildError(err *BuildError)
	// HandlePatchError is called when reconciliation fails.
	HandlePatchError(err *PatchError)
}
