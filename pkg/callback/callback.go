// Package callback provides a shared, possibly-empty function handle.
//
// A Callback is attached to an event slot of a virtual node or passed into a
// nested component's properties. Copying a Callback shares the underlying
// handle; it never duplicates the wrapped function. The zero value is an
// empty callback that ignores every value sent to it:
//
//	type ButtonProps struct {
//	    OnClick callback.Callback[struct{}]
//	}
//
//	// Skip building an expensive argument when nobody listens.
//	if !props.OnClick.IsEmpty() {
//	    props.OnClick.Send(struct{}{})
//	}
package callback

import "fmt"

// handle is the shared cell behind a non-empty Callback. It is never mutated
// after construction, so Send is safe from any goroutine.
type handle[A any] struct {
	fn func(A)
}

// Callback is an optional shared handle to a function of A.
type Callback[A any] struct {
	h *handle[A]
}

// New wraps fn in a non-empty callback. A nil fn yields an empty callback.
func New[A any](fn func(A)) Callback[A] {
	if fn == nil {
		return Callback[A]{}
	}
	return Callback[A]{h: &handle[A]{fn: fn}}
}

// Empty returns a callback that does nothing. It is equal to the zero value.
func Empty[A any]() Callback[A] {
	return Callback[A]{}
}

// Send invokes the wrapped function with value.
// If the callback is empty, this has no effect.
func (c Callback[A]) Send(value A) {
	if c.h == nil {
		return
	}
	c.h.fn(value)
}

// IsEmpty reports whether the callback wraps no function.
func (c Callback[A]) IsEmpty() bool {
	return c.h == nil
}

// Equal reports whether both callbacks share the same handle or are both empty.
func (c Callback[A]) Equal(other Callback[A]) bool {
	return c.h == other.h
}

func (c Callback[A]) String() string {
	if c.h == nil {
		return "Callback(empty)"
	}
	return fmt.Sprintf("Callback(%p)", c.h)
}

// Map adapts a callback to a different argument type. The result is empty
// when target is empty, so emptiness survives the conversion.
func Map[A, B any](target Callback[B], convert func(A) B) Callback[A] {
	if target.IsEmpty() || convert == nil {
		return Callback[A]{}
	}
	return New(func(value A) {
		target.Send(convert(value))
	})
}
