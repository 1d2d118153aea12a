package core

import (
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/go-drift/vtree/pkg/errors"
	"github.com/go-drift/vtree/pkg/toolkit"
	"github.com/go-drift/vtree/pkg/vnode"
)

// Lifecycle is the state of a mounted component.
type Lifecycle int

const (
	// Unmounted means the component has been created but has no widgets yet.
	Unmounted Lifecycle = iota
	// Mounted means the initial view has been built.
	Mounted
	// Updating means a message is being applied or a render is pending.
	Updating
	// Rendered means the live widgets reflect the latest view.
	Rendered
	// Unmounting means the component is being torn down.
	Unmounting
	// Destroyed means the component's widgets are gone and its mailbox is closed.
	Destroyed
)

func (l Lifecycle) String() string {
	switch l {
	case Unmounted:
		return "unmounted"
	case Mounted:
		return "mounted"
	case Updating:
		return "updating"
	case Rendered:
		return "rendered"
	case Unmounting:
		return "unmounting"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("Lifecycle(%d)", int(l))
	}
}

// Instance is a mounted component as seen from outside the scheduler.
type Instance interface {
	// ID returns the unique identifier of the instance.
	ID() uuid.UUID
	// Name returns the component type name.
	Name() string
	// Lifecycle returns the current lifecycle state.
	Lifecycle() Lifecycle
	// Widget returns the root widget of the component's current view.
	Widget() toolkit.Widget
}

// instance is the scheduler's view of a component runtime.
type instance interface {
	Instance
	depth() int
	closed() bool
	root() *liveNode
	attach(parent, slot *liveNode)
	receive(props any)
	dispatch(msg any, props bool) error
	render() error
	unmount()
}

// base holds the type-independent parts of a runtime.
type base struct {
	id     uuid.UUID
	name   string
	sched  *Scheduler
	self   instance
	level  int
	closed atomic.Bool
}

// runtime drives one component instance: it owns the component's state,
// applies its messages and keeps its widget subtree reconciled.
type runtime[P, M any] struct {
	base

	typ   *Type[P, M]
	comp  Component[P, M]
	scope *Scope[M]
	props P
	phase Lifecycle
	view  vnode.Node
	tree  *liveNode

	// parent is the live container holding this component's root widget and
	// slot is the placeholder node among its children. Both are nil for a
	// top-level component.
	parent *liveNode
	slot   *liveNode
}

func mountRuntime[P, M any](s *Scheduler, typ *Type[P, M], props P, depth int) (*runtime[P, M], error) {
	rt := &runtime[P, M]{typ: typ, props: props}
	rt.id = uuid.New()
	rt.name = typ.name
	rt.sched = s
	rt.self = rt
	rt.level = depth
	rt.scope = &Scope[M]{b: &rt.base}

	if err := rt.guard("create", func() {
		rt.comp = typ.create(props)
	}); err != nil {
		return nil, err
	}
	if rt.comp == nil {
		return nil, &errors.BuildError{
			Component: rt.name,
			Phase:     "create",
			Err:       fmt.Errorf("constructor returned nil component"),
			Timestamp: time.Now(),
		}
	}

	view, err := rt.safeView()
	if err != nil {
		return nil, err
	}
	if err := checkRoot(rt.name, view); err != nil {
		return nil, err
	}

	s.muted.Add(1)
	tree, err := newPatcher(s, rt).build(view, depth)
	s.muted.Add(-1)
	if err != nil {
		return nil, err
	}

	rt.tree = tree
	rt.view = view
	rt.phase = Mounted
	s.logger.Debug("component mounted",
		slog.String("component", rt.name),
		slog.String("id", rt.id.String()),
		slog.Int("depth", depth))

	if m, ok := rt.comp.(Mounter); ok {
		if err := rt.guard("mounted", m.Mounted); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

func (rt *runtime[P, M]) ID() uuid.UUID         { return rt.id }
func (rt *runtime[P, M]) Name() string          { return rt.name }
func (rt *runtime[P, M]) Lifecycle() Lifecycle  { return rt.phase }
func (rt *runtime[P, M]) depth() int            { return rt.level }
func (rt *runtime[P, M]) closed() bool          { return rt.base.closed.Load() }
func (rt *runtime[P, M]) root() *liveNode       { return rt.tree }
func (rt *runtime[P, M]) attach(parent, slot *liveNode) {
	rt.parent = parent
	rt.slot = slot
}

func (rt *runtime[P, M]) Widget() toolkit.Widget {
	if rt.tree == nil {
		return nil
	}
	return rt.tree.widget
}

// receive enqueues new properties from a re-rendering parent.
func (rt *runtime[P, M]) receive(props any) {
	rt.sched.post(envelope{target: rt, msg: props, props: true})
}

// dispatch applies one mailbox entry.
func (rt *runtime[P, M]) dispatch(msg any, props bool) error {
	if rt.phase == Unmounting || rt.phase == Destroyed {
		return nil
	}

	var action Action[M]
	var err error
	if props {
		p, _ := msg.(P)
		rt.props = p
		err = rt.guard("change", func() { action = rt.comp.Change(p) })
	} else {
		m, _ := msg.(M)
		err = rt.guard("update", func() { action = rt.comp.Update(m) })
	}
	if err != nil {
		return err
	}

	switch action.kind {
	case actionRender:
		rt.phase = Updating
		rt.sched.markDirty(rt)
	case actionDefer:
		rt.phase = Updating
		rt.sched.markDirty(rt)
		task := action.task
		rt.sched.spawn(rt, func(co *Co) any { return task(co) })
	}
	return nil
}

// render reconciles the live subtree against a fresh view.
func (rt *runtime[P, M]) render() error {
	if rt.phase == Unmounting || rt.phase == Destroyed {
		return nil
	}
	view, err := rt.safeView()
	if err != nil {
		return err
	}
	if err := checkRoot(rt.name, view); err != nil {
		return err
	}

	rt.sched.muted.Add(1)
	defer rt.sched.muted.Add(-1)

	p := newPatcher(rt.sched, rt)
	if vnode.KindOf(view) == rt.tree.kind {
		if err := p.patch(rt.tree, view); err != nil {
			return err
		}
	} else if err := rt.replaceRoot(p, view); err != nil {
		return err
	}

	rt.view = view
	rt.phase = Rendered
	return nil
}

// replaceRoot remounts the component's root widget when its kind changes,
// keeping the widget's position and child properties inside the parent
// container.
func (rt *runtime[P, M]) replaceRoot(p *patcher, view vnode.Node) error {
	next, err := p.build(view, rt.level)
	if err != nil {
		return err
	}
	old := rt.tree
	if rt.parent == nil {
		p.destroy(old)
		rt.tree = next
		return nil
	}

	index := slices.Index(rt.parent.children, rt.slot)
	rt.sched.tk.RemoveChild(rt.parent.widget, old.widget)
	p.destroy(old)
	if err := rt.sched.tk.InsertChild(rt.parent.widget, next.widget, index); err != nil {
		return p.toolkitError(rt.parent, err)
	}
	rt.slot.widget = next.widget
	rt.tree = next
	return p.applyChildProps(rt.parent, rt.slot)
}

// unmount tears the component down. The caller detaches the root widget
// from its parent first.
func (rt *runtime[P, M]) unmount() {
	if rt.phase == Unmounting || rt.phase == Destroyed {
		return
	}
	rt.phase = Unmounting
	rt.base.closed.Store(true)

	if u, ok := rt.comp.(Unmounter); ok {
		if err := rt.guard("unmounted", u.Unmounted); err != nil {
			errors.ReportError("core.unmount", err)
		}
	}
	if rt.tree != nil {
		newPatcher(rt.sched, rt).destroy(rt.tree)
	}
	rt.phase = Destroyed
	rt.sched.logger.Debug("component destroyed",
		slog.String("component", rt.name),
		slog.String("id", rt.id.String()))
}

func (rt *runtime[P, M]) safeView() (vnode.Node, error) {
	var view vnode.Node
	err := rt.guard("view", func() { view = rt.comp.View(rt.scope) })
	return vnode.Deref(view), err
}

// guard runs fn and converts a panic into a BuildError.
func (rt *runtime[P, M]) guard(phase string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &errors.BuildError{
				Component:  rt.name,
				Phase:      phase,
				Recovered:  r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			}
		}
	}()
	fn()
	return nil
}

// checkRoot rejects views whose root cannot own a widget directly.
func checkRoot(component string, view vnode.Node) error {
	switch view.(type) {
	case vnode.Object, vnode.Text:
		return nil
	case vnode.Component:
		return &errors.PatchError{
			Kind:      errors.KindAuthoring,
			Component: component,
			Node:      vnode.KindOf(view),
			Err:       fmt.Errorf("view root must be a widget, not a component"),
		}
	default:
		return &errors.PatchError{
			Kind:      errors.KindAuthoring,
			Component: component,
			Err:       fmt.Errorf("view returned no root node"),
		}
	}
}
