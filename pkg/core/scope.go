package core

import (
	"github.com/google/uuid"

	"github.com/go-drift/vtree/pkg/callback"
	"github.com/go-drift/vtree/pkg/vnode"
)

// Scope is a component's handle to its own mailbox and to the scheduler.
// It is passed to View so event handlers can be bound to messages. A scope
// stays valid after its component is destroyed; sending to it is then a
// silent no-op.
type Scope[M any] struct {
	b *base
}

// ID returns the unique identifier of the component instance.
func (s *Scope[M]) ID() uuid.UUID {
	return s.b.id
}

// Name returns the component type name.
func (s *Scope[M]) Name() string {
	return s.b.name
}

// Closed reports whether the component has been destroyed.
func (s *Scope[M]) Closed() bool {
	return s.b.closed.Load()
}

// Send enqueues msg in the component's mailbox. Safe from any goroutine.
func (s *Scope[M]) Send(msg M) {
	s.b.sched.post(envelope{target: s.b.self, msg: msg})
}

// Handler returns an event callback producing messages with f.
func (s *Scope[M]) Handler(f func(vnode.Event) M) callback.Callback[vnode.Event] {
	return Callback(s, f)
}

// Trigger returns an event callback that always sends msg.
func (s *Scope[M]) Trigger(msg M) callback.Callback[vnode.Event] {
	return Callback(s, func(vnode.Event) M { return msg })
}

// Quit asks the scheduler to stop with the given exit code.
func (s *Scope[M]) Quit(code int) {
	s.b.sched.Quit(code)
}

// Callback returns a callback that converts its argument to a message with f
// and enqueues it in the scope's mailbox. Once the component is destroyed
// the callback drops values without calling f.
func Callback[A, M any](s *Scope[M], f func(A) M) callback.Callback[A] {
	if f == nil {
		return callback.Empty[A]()
	}
	return callback.New(func(value A) {
		if s.Closed() {
			return
		}
		s.Send(f(value))
	})
}
