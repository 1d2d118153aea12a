package toolkit

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-drift/vtree/pkg/vnode"
)

// Registry implements Toolkit on top of per-kind factories and tracks every
// live widget it created.
type Registry struct {
	factories map[vnode.Kind]Factory
	widgets   map[int64]Object
	nextID    atomic.Int64
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[vnode.Kind]Factory),
		widgets:   make(map[int64]Object),
	}
}

// RegisterFactory registers a factory for its widget kind, replacing any
// previous factory for the same kind.
func (r *Registry) RegisterFactory(factory Factory) {
	r.mu.Lock()
	r.factories[factory.Kind()] = factory
	r.mu.Unlock()
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []vnode.Kind {
	r.mu.RLock()
	kinds := make([]vnode.Kind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	r.mu.RUnlock()
	slices.Sort(kinds)
	return kinds
}

// Create creates a new widget of the given kind.
func (r *Registry) Create(kind vnode.Kind) (Widget, error) {
	r.mu.RLock()
	factory, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("create %q: %w", kind, ErrKindNotRegistered)
	}

	id := r.nextID.Add(1)
	obj, err := factory.Create(id)
	if err != nil {
		return nil, fmt.Errorf("create %q: %w", kind, err)
	}

	r.mu.Lock()
	r.widgets[id] = obj
	r.mu.Unlock()
	return obj, nil
}

// Destroy disposes a widget and forgets it. Unknown widgets are ignored.
func (r *Registry) Destroy(w Widget) {
	if w == nil {
		return
	}
	r.mu.Lock()
	obj, ok := r.widgets[w.ID()]
	if ok {
		delete(r.widgets, w.ID())
	}
	r.mu.Unlock()

	if ok {
		obj.Dispose()
	}
}

// Lookup returns a live widget by id, or nil.
func (r *Registry) Lookup(id int64) Object {
	r.mu.RLock()
	obj := r.widgets[id]
	r.mu.RUnlock()
	return obj
}

// Widgets returns all live widgets ordered by id.
func (r *Registry) Widgets() []Object {
	r.mu.RLock()
	objs := make([]Object, 0, len(r.widgets))
	for _, obj := range r.widgets {
		objs = append(objs, obj)
	}
	r.mu.RUnlock()
	slices.SortFunc(objs, func(a, b Object) int {
		switch {
		case a.ID() < b.ID():
			return -1
		case a.ID() > b.ID():
			return 1
		}
		return 0
	})
	return objs
}

// Len returns the number of live widgets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.widgets)
}

// SetProperty applies a property on a live widget.
func (r *Registry) SetProperty(w Widget, name string, value any) error {
	obj, err := r.object(w)
	if err != nil {
		return err
	}
	return obj.SetProperty(name, value)
}

// ResetProperty restores a property to its default.
func (r *Registry) ResetProperty(w Widget, name string) error {
	obj, err := r.object(w)
	if err != nil {
		return err
	}
	return obj.ResetProperty(name)
}

// Connect routes an event of a live widget to sink.
func (r *Registry) Connect(w Widget, event string, sink Sink) error {
	obj, err := r.object(w)
	if err != nil {
		return err
	}
	return obj.Connect(event, sink)
}

// Disconnect removes an event connection. Unknown widgets are ignored.
func (r *Registry) Disconnect(w Widget, event string) {
	if obj, err := r.object(w); err == nil {
		obj.Disconnect(event)
	}
}

// InsertChild attaches child to parent at index.
func (r *Registry) InsertChild(parent, child Widget, index int) error {
	p, c, err := r.pair(parent, child)
	if err != nil {
		return err
	}
	return p.InsertChild(c, index)
}

// RemoveChild detaches child from parent. Unknown widgets are ignored.
func (r *Registry) RemoveChild(parent, child Widget) {
	if p, c, err := r.pair(parent, child); err == nil {
		p.RemoveChild(c)
	}
}

// SetChildProperty applies a child property through parent.
func (r *Registry) SetChildProperty(parent, child Widget, name string, value any) error {
	p, c, err := r.pair(parent, child)
	if err != nil {
		return err
	}
	return p.SetChildProperty(c, name, value)
}

// ResetChildProperty restores a child property to the container default.
func (r *Registry) ResetChildProperty(parent, child Widget, name string) error {
	p, c, err := r.pair(parent, child)
	if err != nil {
		return err
	}
	return p.ResetChildProperty(c, name)
}

// ReorderChildren rearranges parent's children.
func (r *Registry) ReorderChildren(parent Widget, order []Widget) error {
	p, err := r.container(parent)
	if err != nil {
		return err
	}
	objs := make([]Object, 0, len(order))
	for _, w := range order {
		obj, err := r.object(w)
		if err != nil {
			return err
		}
		objs = append(objs, obj)
	}
	return p.SetChildren(objs)
}

func (r *Registry) object(w Widget) (Object, error) {
	if w == nil {
		return nil, ErrUnknownWidget
	}
	r.mu.RLock()
	obj, ok := r.widgets[w.ID()]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("widget %d (%s): %w", w.ID(), w.Kind(), ErrUnknownWidget)
	}
	return obj, nil
}

func (r *Registry) pair(parent, child Widget) (Container, Object, error) {
	p, err := r.container(parent)
	if err != nil {
		return nil, nil, err
	}
	c, err := r.object(child)
	if err != nil {
		return nil, nil, err
	}
	return p, c, nil
}

func (r *Registry) container(w Widget) (Container, error) {
	obj, err := r.object(w)
	if err != nil {
		return nil, err
	}
	c, ok := obj.(Container)
	if !ok {
		return nil, fmt.Errorf("widget %d (%s): %w", w.ID(), w.Kind(), ErrNotContainer)
	}
	return c, nil
}
