package vnode

import (
	"slices"
	"sort"

	"github.com/go-drift/vtree/pkg/callback"
)

// Builder accumulates an Object description. Build copies the accumulated
// state, so a builder can be reused without affecting nodes it produced.
//
// Example:
//
//	vnode.New("Button").
//	    Prop("label", "inc!").
//	    On("clicked", s.Handler(func(vnode.Event) Msg { return Inc{} })).
//	    Build()
type Builder struct {
	obj Object
}

// New starts building an Object of the given kind.
func New(kind Kind) *Builder {
	return &Builder{obj: Object{Kind: kind}}
}

// Key sets the explicit identity key.
func (b *Builder) Key(key string) *Builder {
	b.obj.Key = key
	return b
}

// Prop sets a property. Setting the same name twice keeps the first
// position and the last value. An absent value (see Resolve) removes the
// property so it resolves to the toolkit default.
func (b *Builder) Prop(name string, value any) *Builder {
	b.obj.Props = setProperty(b.obj.Props, name, value)
	return b
}

// ChildProp sets a child property, applied through the parent container.
// It follows the same rules as Prop.
func (b *Builder) ChildProp(name string, value any) *Builder {
	b.obj.ChildProps = setProperty(b.obj.ChildProps, name, value)
	return b
}

// On registers a handler for event. An empty callback removes the handler.
func (b *Builder) On(event string, cb callback.Callback[Event]) *Builder {
	idx := slices.IndexFunc(b.obj.Handlers, func(h Handler) bool { return h.Event == event })
	switch {
	case cb.IsEmpty() && idx >= 0:
		b.obj.Handlers = slices.Delete(b.obj.Handlers, idx, idx+1)
	case cb.IsEmpty():
	case idx >= 0:
		b.obj.Handlers[idx].Callback = cb
	default:
		b.obj.Handlers = append(b.obj.Handlers, Handler{Event: event, Callback: cb})
	}
	return b
}

// Child appends children. Nil children are skipped so conditional
// children can be written inline.
func (b *Builder) Child(children ...Node) *Builder {
	for _, child := range children {
		if child = Deref(child); child != nil {
			b.obj.Children = append(b.obj.Children, child)
		}
	}
	return b
}

// Build returns the immutable Object.
func (b *Builder) Build() Object {
	return Object{
		Kind:     b.obj.Kind,
		Key:      b.obj.Key,
		Props:    slices.Clone(b.obj.Props),
		Children: slices.Clone(b.obj.Children),
		Handlers: slices.Clone(b.obj.Handlers),

		ChildProps: slices.Clone(b.obj.ChildProps),
	}
}

func setProperty(props []Property, name string, value any) []Property {
	resolved, ok := Resolve(value)
	idx := slices.IndexFunc(props, func(p Property) bool { return p.Name == name })
	switch {
	case !ok && idx >= 0:
		return slices.Delete(props, idx, idx+1)
	case !ok:
		return props
	case idx >= 0:
		props[idx].Value = resolved
		return props
	default:
		return append(props, Property{Name: name, Value: resolved})
	}
}

// Element builds an Object from maps. Map entries are ordered by name so the
// result is deterministic.
func Element(kind Kind, props map[string]any, children []Node, handlers map[string]callback.Callback[Event]) Object {
	b := New(kind)
	for _, name := range sortedKeys(props) {
		b.Prop(name, props[name])
	}
	for _, event := range sortedKeys(handlers) {
		b.On(event, handlers[event])
	}
	b.Child(children...)
	return b.Build()
}

// NewText returns a Text leaf.
func NewText(content string) Text {
	return Text{Content: content}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
