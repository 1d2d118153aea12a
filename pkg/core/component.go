package core

import (
	"github.com/go-drift/vtree/pkg/vnode"
)

// Component is the behaviour of a component with properties P and messages M.
type Component[P, M any] interface {
	// Update applies a message to the component's state.
	Update(msg M) Action[M]
	// Change applies new properties supplied by a re-rendering parent.
	Change(props P) Action[M]
	// View describes the component's widgets for its current state.
	View(s *Scope[M]) vnode.Node
}

// Mounter is implemented by components that want to know when their
// widgets first exist.
type Mounter interface {
	Mounted()
}

// Unmounter is implemented by components that want to know when they are
// being removed.
type Unmounter interface {
	Unmounted()
}

type actionKind uint8

const (
	actionNone actionKind = iota
	actionRender
	actionDefer
)

// Action is the result of an update step. The zero value requests nothing.
type Action[M any] struct {
	kind actionKind
	task Task[M]
}

// None returns an action that requests nothing.
func None[M any]() Action[M] {
	return Action[M]{}
}

// Render returns an action that re-renders the component.
func Render[M any]() Action[M] {
	return Action[M]{kind: actionRender}
}

// Defer returns an action that re-renders the component and runs task on
// the scheduler. The task's result is delivered back as a message. A nil
// task is equivalent to Render.
func Defer[M any](task Task[M]) Action[M] {
	if task == nil {
		return Render[M]()
	}
	return Action[M]{kind: actionDefer, task: task}
}

// Renders reports whether the action re-renders the component.
func (a Action[M]) Renders() bool {
	return a.kind != actionNone
}

func (a Action[M]) String() string {
	switch a.kind {
	case actionRender:
		return "render"
	case actionDefer:
		return "defer"
	default:
		return "none"
	}
}

// Type describes a component type. Create one per component with NewType and
// use With to place the component inside a parent's view.
type Type[P, M any] struct {
	name   string
	create func(P) Component[P, M]
}

// NewType declares a component type. create builds a fresh component from
// its initial properties.
func NewType[P, M any](name string, create func(P) Component[P, M]) *Type[P, M] {
	return &Type[P, M]{name: name, create: create}
}

// Name returns the component type name.
func (t *Type[P, M]) Name() string {
	return t.name
}

// With returns a placeholder node that mounts this component with props.
func (t *Type[P, M]) With(props P) vnode.Component {
	return vnode.Component{Spec: &placeholder[P, M]{typ: t, props: props}}
}

// placeholder is the ComponentSpec carried by vnode.Component nodes built
// with Type.With.
type placeholder[P, M any] struct {
	typ   *Type[P, M]
	props P
}

func (p *placeholder[P, M]) ComponentType() any    { return p.typ }
func (p *placeholder[P, M]) ComponentName() string { return p.typ.name }
func (p *placeholder[P, M]) Props() any            { return p.props }

func (p *placeholder[P, M]) mount(s *Scheduler, depth int) (instance, error) {
	rt, err := mountRuntime(s, p.typ, p.props, depth)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

// mountable is implemented by placeholders this package knows how to mount.
type mountable interface {
	vnode.ComponentSpec
	mount(s *Scheduler, depth int) (instance, error)
}
