// Package toolkit defines the boundary between the reconciler and a native
// widget toolkit.
//
// The reconciler issues only the operations of the Toolkit interface. Each
// operation is synchronous and either succeeds or reports an error the core
// treats as fatal. Registry adapts a set of per-kind factories to that
// interface; Recorder wraps any Toolkit and records the calls it receives.
package toolkit

import (
	"errors"

	"github.com/go-drift/vtree/pkg/vnode"
)

// Widget is an opaque handle to one live toolkit widget.
type Widget interface {
	// ID returns the unique identifier assigned when the widget was created.
	ID() int64
	// Kind returns the widget class the widget was created from.
	Kind() vnode.Kind
}

// Sink receives event arguments from a connected widget event.
type Sink func(args ...any)

// Toolkit is the set of operations the reconciler performs on live widgets.
// Implementations are only ever called from the scheduler's loop.
type Toolkit interface {
	// Create constructs a widget of the given kind.
	Create(kind vnode.Kind) (Widget, error)
	// Destroy releases a widget. Children are destroyed before their parent.
	Destroy(w Widget)
	// SetProperty applies a property value.
	SetProperty(w Widget, name string, value any) error
	// ResetProperty restores a property to the toolkit default.
	ResetProperty(w Widget, name string) error
	// Connect routes the named event to sink, replacing any existing connection.
	Connect(w Widget, event string, sink Sink) error
	// Disconnect removes the named event connection.
	Disconnect(w Widget, event string)
	// InsertChild attaches child to parent at index.
	InsertChild(parent, child Widget, index int) error
	// RemoveChild detaches child from parent.
	RemoveChild(parent, child Widget)
	// SetChildProperty applies a property of child's placement in parent.
	SetChildProperty(parent, child Widget, name string, value any) error
	// ResetChildProperty restores a child property to the container default.
	ResetChildProperty(parent, child Widget, name string) error
	// ReorderChildren rearranges parent's children to match order, which must
	// contain exactly the current children.
	ReorderChildren(parent Widget, order []Widget) error
}

// Object is a widget implementation produced by a Factory.
type Object interface {
	Widget
	SetProperty(name string, value any) error
	ResetProperty(name string) error
	Connect(event string, sink Sink) error
	Disconnect(event string)
	Dispose()
}

// Container is an Object that accepts children.
type Container interface {
	Object
	InsertChild(child Object, index int) error
	RemoveChild(child Object)
	SetChildren(order []Object) error
	SetChildProperty(child Object, name string, value any) error
	ResetChildProperty(child Object, name string) error
}

// Factory creates widgets of a specific kind.
type Factory interface {
	// Kind returns the widget kind this factory creates.
	Kind() vnode.Kind
	// Create creates a new widget instance with the given id.
	Create(id int64) (Object, error)
}

// Standard errors for toolkit operations.
var (
	// ErrKindNotRegistered indicates no factory exists for the requested kind.
	ErrKindNotRegistered = errors.New("widget kind not registered")

	// ErrNotContainer indicates a child operation on a widget that cannot hold children.
	ErrNotContainer = errors.New("widget does not accept children")

	// ErrUnknownWidget indicates a handle that was not created by this toolkit
	// or was already destroyed.
	ErrUnknownWidget = errors.New("unknown widget")

	// ErrUnknownProperty indicates the widget class has no such property.
	ErrUnknownProperty = errors.New("unknown property")

	// ErrInvalidValue indicates a property value of the wrong type.
	ErrInvalidValue = errors.New("invalid property value")

	// ErrUnknownEvent indicates the widget class emits no such event.
	ErrUnknownEvent = errors.New("unknown event")

	// ErrNotChild indicates a child property on a widget that is not a
	// child of the given parent.
	ErrNotChild = errors.New("widget is not a child of the container")

	// ErrChildOrder indicates a reorder that does not match the current children.
	ErrChildOrder = errors.New("child order does not match current children")
)
