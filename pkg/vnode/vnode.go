// Package vnode defines the immutable virtual node tree that components
// produce from their view step.
//
// A tree is a description of the desired widget hierarchy. It never touches
// live widgets; the reconciler in package core is the only bridge between a
// tree and the toolkit. Trees are rebuilt wholesale on every render and are
// cheap to share because nothing mutates them after construction.
//
// # Node Kinds
//
// Object describes a toolkit widget: a kind identifier, ordered properties,
// ordered children and named event handlers. Text is a leaf holding a string.
// Component is a placeholder for a nested component whose state is opaque to
// the parent.
//
// # Child Properties
//
// Object and Component nodes may carry child properties. These belong to the
// relationship between a widget and its container (packing, grid cells) and
// are applied through the parent after the widget is inserted. On a
// component placeholder they apply to the component's root widget. A node
// with no parent ignores them.
//
// # Identity
//
// Within one child list, children are matched positionally unless they carry
// a key. Keyed children are matched by key, so reordering them moves live
// widgets instead of recreating them.
package vnode

import (
	"slices"

	"github.com/go-drift/vtree/pkg/callback"
)

// Kind identifies a widget class in the toolkit.
type Kind string

// TextKind is the toolkit kind used to realize Text nodes.
const TextKind Kind = "#text"

// TextProperty is the property carrying a Text node's content.
const TextProperty = "text"

// Node is an immutable virtual node. It is implemented by Object, Text and
// Component only.
type Node interface {
	isNode()
}

// Event is the value delivered to event handler callbacks.
type Event struct {
	// Name is the event name the handler was registered for.
	Name string
	// Args are the toolkit-specific event arguments.
	Args []any
}

// Arg returns the argument at index i, or nil if absent.
func (e Event) Arg(i int) any {
	if i < 0 || i >= len(e.Args) {
		return nil
	}
	return e.Args[i]
}

// Property is a named property value. Unset values are never stored; an
// omitted property resolves to the toolkit default.
type Property struct {
	Name  string
	Value any
}

// Handler binds an event name to a callback.
type Handler struct {
	Event    string
	Callback callback.Callback[Event]
}

// Object describes a toolkit widget and its subtree.
type Object struct {
	Kind     Kind
	Key      string
	Props    []Property
	Children []Node
	Handlers []Handler
	// ChildProps are applied through the parent container.
	ChildProps []Property
}

func (Object) isNode() {}

// Prop returns the value of the named property.
func (o Object) Prop(name string) (any, bool) {
	for _, p := range o.Props {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// Handler returns the callback registered for event.
func (o Object) Handler(event string) (callback.Callback[Event], bool) {
	for _, h := range o.Handlers {
		if h.Event == event {
			return h.Callback, true
		}
	}
	return callback.Callback[Event]{}, false
}

// Text is a leaf node holding a string.
type Text struct {
	Content string
	Key     string
}

func (Text) isNode() {}

// ComponentSpec describes a nested component placeholder. Implementations
// are provided by package core.
type ComponentSpec interface {
	// ComponentType returns a comparable identity for the component type.
	ComponentType() any
	// ComponentName returns a human-readable type name for diagnostics.
	ComponentName() string
	// Props returns the properties the nested component is created or updated with.
	Props() any
}

// Component is a placeholder for a nested component.
type Component struct {
	Key  string
	Spec ComponentSpec
	// ChildProps are applied to the component's root widget through the
	// parent container.
	ChildProps []Property
}

func (Component) isNode() {}

// KindOf returns the kind used to decide whether two nodes can be patched in
// place. Nodes of different kinds are always remounted.
func KindOf(node Node) Kind {
	switch n := node.(type) {
	case Object:
		return n.Kind
	case *Object:
		return n.Kind
	case Text:
		return TextKind
	case *Text:
		return TextKind
	case Component:
		return componentKind(n.Spec)
	case *Component:
		return componentKind(n.Spec)
	default:
		return ""
	}
}

func componentKind(spec ComponentSpec) Kind {
	if spec == nil {
		return "component:<nil>"
	}
	return Kind("component:" + spec.ComponentName())
}

// KeyOf returns the explicit key of node, or "" when it has none.
func KeyOf(node Node) string {
	switch n := node.(type) {
	case Object:
		return n.Key
	case *Object:
		return n.Key
	case Text:
		return n.Key
	case *Text:
		return n.Key
	case Component:
		return n.Key
	case *Component:
		return n.Key
	default:
		return ""
	}
}

// ChildPropsOf returns the child properties of node. Text nodes have none.
func ChildPropsOf(node Node) []Property {
	switch n := Deref(node).(type) {
	case Object:
		return n.ChildProps
	case Component:
		return n.ChildProps
	default:
		return nil
	}
}

// WithChildProp returns a copy of node with the named child property set.
// An absent value (see Resolve) removes it. Text nodes are returned
// unchanged.
func WithChildProp(node Node, name string, value any) Node {
	switch n := Deref(node).(type) {
	case Object:
		n.ChildProps = setProperty(slices.Clone(n.ChildProps), name, value)
		return n
	case Component:
		n.ChildProps = setProperty(slices.Clone(n.ChildProps), name, value)
		return n
	default:
		return node
	}
}

// WithKey returns a copy of node carrying key.
func WithKey(node Node, key string) Node {
	switch n := node.(type) {
	case Object:
		n.Key = key
		return n
	case *Object:
		c := *n
		c.Key = key
		return c
	case Text:
		n.Key = key
		return n
	case *Text:
		c := *n
		c.Key = key
		return c
	case Component:
		n.Key = key
		return n
	case *Component:
		c := *n
		c.Key = key
		return c
	default:
		return node
	}
}

// Deref normalizes pointer nodes to their value form so callers can switch
// on value types only. A nil pointer yields nil.
func Deref(node Node) Node {
	switch n := node.(type) {
	case *Object:
		if n == nil {
			return nil
		}
		return *n
	case *Text:
		if n == nil {
			return nil
		}
		return *n
	case *Component:
		if n == nil {
			return nil
		}
		return *n
	default:
		return node
	}
}
