package headless

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/go-drift/vtree/pkg/toolkit"
	"github.com/go-drift/vtree/pkg/vnode"
)

// NaturalWidthProperty is a read-only property reporting the pixel width of
// a widget's text content in the fixed headless font.
const NaturalWidthProperty = "natural-width"

// Widget is an in-memory widget. It implements toolkit.Container for every
// class; child operations fail with toolkit.ErrNotContainer on leaf classes.
type Widget struct {
	id       int64
	class    *Class
	mu       sync.Mutex
	props    map[string]any
	sinks    map[string]toolkit.Sink
	children []*Widget
	parent   *Widget
	disposed bool

	// packing holds the child properties set by the parent.
	packing map[string]any
}

func newWidget(id int64, class *Class) *Widget {
	return &Widget{
		id:    id,
		class: class,
		props: make(map[string]any),
		sinks: make(map[string]toolkit.Sink),
	}
}

func (w *Widget) ID() int64        { return w.id }
func (w *Widget) Kind() vnode.Kind { return w.class.Kind }

// Property returns the effective value of a property: the explicitly set
// value, else the class default.
func (w *Widget) Property(name string) (any, bool) {
	if name == NaturalWidthProperty {
		return w.NaturalWidth(), true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if v, ok := w.props[name]; ok {
		return v, true
	}
	spec, ok := w.class.Props[name]
	if !ok {
		return nil, false
	}
	return spec.Default, true
}

// Properties returns a copy of the explicitly set property values.
func (w *Widget) Properties() map[string]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.props)
}

// IsSet reports whether the property was explicitly set.
func (w *Widget) IsSet(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.props[name]
	return ok
}

// NaturalWidth measures the widget's label or text in the headless font.
func (w *Widget) NaturalWidth() int {
	for _, name := range []string{"label", vnode.TextProperty, "title"} {
		w.mu.Lock()
		v, ok := w.props[name]
		w.mu.Unlock()
		if s, isString := v.(string); ok && isString {
			return font.MeasureString(basicfont.Face7x13, s).Ceil()
		}
	}
	return 0
}

// SetProperty validates and stores a property value. Classes with a notify
// event for the property emit it synchronously after the value is stored.
func (w *Widget) SetProperty(name string, value any) error {
	spec, ok := w.class.Props[name]
	if !ok {
		return fmt.Errorf("%s.%s: %w", w.class.Kind, name, toolkit.ErrUnknownProperty)
	}
	if spec.Type != nil && (value == nil || !reflect.TypeOf(value).AssignableTo(spec.Type)) {
		return fmt.Errorf("%s.%s: %w: want %s, got %T", w.class.Kind, name, toolkit.ErrInvalidValue, spec.Type, value)
	}
	w.mu.Lock()
	if w.disposed {
		w.mu.Unlock()
		return fmt.Errorf("%s#%d: %w", w.class.Kind, w.id, toolkit.ErrUnknownWidget)
	}
	w.props[name] = value
	w.mu.Unlock()

	if event, ok := w.class.Notify[name]; ok {
		w.Emit(event, value)
	}
	return nil
}

// ResetProperty forgets an explicitly set value.
func (w *Widget) ResetProperty(name string) error {
	if _, ok := w.class.Props[name]; !ok {
		return fmt.Errorf("%s.%s: %w", w.class.Kind, name, toolkit.ErrUnknownProperty)
	}
	w.mu.Lock()
	delete(w.props, name)
	w.mu.Unlock()
	return nil
}

// Connect routes event to sink.
func (w *Widget) Connect(event string, sink toolkit.Sink) error {
	if !slices.Contains(w.class.Events, event) {
		return fmt.Errorf("%s::%s: %w", w.class.Kind, event, toolkit.ErrUnknownEvent)
	}
	w.mu.Lock()
	w.sinks[event] = sink
	w.mu.Unlock()
	return nil
}

// Disconnect removes the connection for event.
func (w *Widget) Disconnect(event string) {
	w.mu.Lock()
	delete(w.sinks, event)
	w.mu.Unlock()
}

// Connected reports whether event has a sink.
func (w *Widget) Connected(event string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.sinks[event]
	return ok
}

// Emit simulates the widget firing event. It reports whether a sink received it.
func (w *Widget) Emit(event string, args ...any) bool {
	w.mu.Lock()
	sink, ok := w.sinks[event]
	disposed := w.disposed
	w.mu.Unlock()
	if !ok || disposed {
		return false
	}
	sink(args...)
	return true
}

// Dispose marks the widget destroyed and drops its connections.
func (w *Widget) Dispose() {
	w.mu.Lock()
	w.disposed = true
	clear(w.sinks)
	w.mu.Unlock()
}

// Disposed reports whether the widget was destroyed.
func (w *Widget) Disposed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.disposed
}

// Parent returns the widget's parent, or nil.
func (w *Widget) Parent() *Widget {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.parent
}

// Children returns a copy of the widget's children.
func (w *Widget) Children() []*Widget {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.children)
}

// InsertChild attaches child at index, clamped to the valid range.
func (w *Widget) InsertChild(child toolkit.Object, index int) error {
	if !w.class.Container {
		return fmt.Errorf("%s#%d: %w", w.class.Kind, w.id, toolkit.ErrNotContainer)
	}
	c, ok := child.(*Widget)
	if !ok {
		return fmt.Errorf("child %d: %w", child.ID(), toolkit.ErrUnknownWidget)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.class.MaxChildren > 0 && len(w.children) >= w.class.MaxChildren {
		return fmt.Errorf("%s accepts at most %d children: %w", w.class.Kind, w.class.MaxChildren, toolkit.ErrNotContainer)
	}
	index = max(0, min(index, len(w.children)))
	w.children = slices.Insert(w.children, index, c)
	c.mu.Lock()
	c.parent = w
	c.mu.Unlock()
	return nil
}

// RemoveChild detaches child if present.
func (w *Widget) RemoveChild(child toolkit.Object) {
	c, ok := child.(*Widget)
	if !ok {
		return
	}
	w.mu.Lock()
	idx := slices.Index(w.children, c)
	if idx >= 0 {
		w.children = slices.Delete(w.children, idx, idx+1)
	}
	w.mu.Unlock()
	if idx >= 0 {
		c.mu.Lock()
		c.parent = nil
		c.packing = nil
		c.mu.Unlock()
	}
}

// SetChildren reorders the existing children.
func (w *Widget) SetChildren(order []toolkit.Object) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(order) != len(w.children) {
		return fmt.Errorf("%s#%d: %w", w.class.Kind, w.id, toolkit.ErrChildOrder)
	}
	next := make([]*Widget, 0, len(order))
	for _, obj := range order {
		c, ok := obj.(*Widget)
		if !ok || !slices.Contains(w.children, c) || slices.Contains(next, c) {
			return fmt.Errorf("%s#%d: %w", w.class.Kind, w.id, toolkit.ErrChildOrder)
		}
		next = append(next, c)
	}
	w.children = next
	return nil
}

// SetChildProperty validates and stores a property of child's placement.
func (w *Widget) SetChildProperty(child toolkit.Object, name string, value any) error {
	c, spec, err := w.childProp(child, name)
	if err != nil {
		return err
	}
	if spec.Type != nil && (value == nil || !reflect.TypeOf(value).AssignableTo(spec.Type)) {
		return fmt.Errorf("%s child %s: %w: want %s, got %T", w.class.Kind, name, toolkit.ErrInvalidValue, spec.Type, value)
	}
	c.mu.Lock()
	if c.packing == nil {
		c.packing = make(map[string]any)
	}
	c.packing[name] = value
	c.mu.Unlock()
	return nil
}

// ResetChildProperty forgets a child property set on child.
func (w *Widget) ResetChildProperty(child toolkit.Object, name string) error {
	c, _, err := w.childProp(child, name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.packing, name)
	c.mu.Unlock()
	return nil
}

func (w *Widget) childProp(child toolkit.Object, name string) (*Widget, PropSpec, error) {
	c, ok := child.(*Widget)
	if !ok || c.Parent() != w {
		return nil, PropSpec{}, fmt.Errorf("%s#%d child %d: %w", w.class.Kind, w.id, child.ID(), toolkit.ErrNotChild)
	}
	spec, ok := w.class.ChildProps[name]
	if !ok {
		return nil, PropSpec{}, fmt.Errorf("%s child %s: %w", w.class.Kind, name, toolkit.ErrUnknownProperty)
	}
	return c, spec, nil
}

// ChildProperty returns the effective value of a child property: the value
// set by the parent, else the parent class default.
func (w *Widget) ChildProperty(name string) (any, bool) {
	w.mu.Lock()
	v, ok := w.packing[name]
	parent := w.parent
	w.mu.Unlock()
	if ok {
		return v, true
	}
	if parent == nil {
		return nil, false
	}
	spec, ok := parent.class.ChildProps[name]
	if !ok {
		return nil, false
	}
	return spec.Default, true
}

// ChildProperties returns a copy of the child properties set by the parent.
func (w *Widget) ChildProperties() map[string]any {
	w.mu.Lock()
	defer w.mu.Unlock()
	return maps.Clone(w.packing)
}

func (w *Widget) String() string {
	return fmt.Sprintf("%s#%d", w.class.Kind, w.id)
}

type factory struct {
	class *Class
}

func (f factory) Kind() vnode.Kind { return f.class.Kind }

func (f factory) Create(id int64) (toolkit.Object, error) {
	return newWidget(id, f.class), nil
}
