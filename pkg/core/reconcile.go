package core

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-drift/vtree/pkg/callback"
	"github.com/go-drift/vtree/pkg/errors"
	"github.com/go-drift/vtree/pkg/toolkit"
	"github.com/go-drift/vtree/pkg/vnode"
)

// liveNode mirrors one reconciled virtual node and the widget it produced.
type liveNode struct {
	kind     vnode.Kind
	key      string
	node     vnode.Node
	widget   toolkit.Widget
	children []*liveNode
	handlers map[string]*binding

	// comp is set for component placeholders; widget then tracks the
	// component's root widget.
	comp instance
}

// binding is the stable target of a toolkit event connection. Rebinding a
// handler swaps cb without reconnecting.
type binding struct {
	event string
	cb    callback.Callback[vnode.Event]
	sched *Scheduler
}

func (b *binding) sink(args ...any) {
	if b.sched.muted.Load() > 0 {
		return
	}
	b.cb.Send(vnode.Event{Name: b.event, Args: args})
}

// patcher reconciles nodes owned by one component.
type patcher struct {
	sched *Scheduler
	tk    toolkit.Toolkit
	owner instance
}

func newPatcher(s *Scheduler, owner instance) *patcher {
	return &patcher{sched: s, tk: s.tk, owner: owner}
}

// build creates the widgets for node and its subtree.
func (p *patcher) build(node vnode.Node, depth int) (*liveNode, error) {
	switch n := vnode.Deref(node).(type) {
	case vnode.Object:
		return p.buildObject(n, depth)
	case vnode.Text:
		w, err := p.tk.Create(vnode.TextKind)
		if err != nil {
			return nil, p.createError(vnode.TextKind, n.Key, err)
		}
		ln := &liveNode{kind: vnode.TextKind, key: n.Key, node: n, widget: w}
		if err := p.tk.SetProperty(w, vnode.TextProperty, n.Content); err != nil {
			return nil, p.propertyError(ln, vnode.TextProperty, err)
		}
		return ln, nil
	case vnode.Component:
		m, ok := n.Spec.(mountable)
		if !ok {
			return nil, p.authoringError(vnode.KindOf(n), n.Key, fmt.Errorf("component placeholder %T cannot be mounted", n.Spec))
		}
		inst, err := m.mount(p.sched, depth+1)
		if err != nil {
			return nil, err
		}
		return &liveNode{
			kind:   vnode.KindOf(n),
			key:    n.Key,
			node:   n,
			widget: inst.Widget(),
			comp:   inst,
		}, nil
	default:
		return nil, p.authoringError("", "", fmt.Errorf("unsupported node %T", node))
	}
}

func (p *patcher) buildObject(n vnode.Object, depth int) (*liveNode, error) {
	if n.Kind == "" {
		return nil, p.authoringError("", n.Key, fmt.Errorf("widget node has no kind"))
	}
	if err := p.checkKeys(n); err != nil {
		return nil, err
	}
	w, err := p.tk.Create(n.Kind)
	if err != nil {
		return nil, p.createError(n.Kind, n.Key, err)
	}
	ln := &liveNode{kind: n.Kind, key: n.Key, node: n, widget: w}

	for _, prop := range n.Props {
		if err := p.tk.SetProperty(w, prop.Name, prop.Value); err != nil {
			return nil, p.propertyError(ln, prop.Name, err)
		}
	}
	for _, h := range n.Handlers {
		if err := p.connect(ln, h); err != nil {
			return nil, err
		}
	}
	for i, child := range n.Children {
		c, err := p.build(child, depth)
		if err != nil {
			return nil, err
		}
		if err := p.adopt(ln, c, i); err != nil {
			return nil, err
		}
		ln.children = append(ln.children, c)
	}
	return ln, nil
}

// adopt inserts child's widget into parent at index and applies its child
// properties.
func (p *patcher) adopt(parent, child *liveNode, index int) error {
	if err := p.tk.InsertChild(parent.widget, child.widget, index); err != nil {
		return p.toolkitError(parent, err)
	}
	if child.comp != nil {
		child.comp.attach(parent, child)
	}
	return p.applyChildProps(parent, child)
}

// applyChildProps sets every child property of child's node through parent.
func (p *patcher) applyChildProps(parent, child *liveNode) error {
	for _, prop := range vnode.ChildPropsOf(child.node) {
		if err := p.tk.SetChildProperty(parent.widget, child.widget, prop.Name, prop.Value); err != nil {
			return p.childPropertyError(child, prop.Name, err)
		}
	}
	return nil
}

// patchChildProps applies the child properties that differ between child's
// current node and next, and resets those next drops.
func (p *patcher) patchChildProps(parent, child *liveNode, next vnode.Node) error {
	old := vnode.ChildPropsOf(child.node)
	props := vnode.ChildPropsOf(next)
	if len(old) == 0 && len(props) == 0 {
		return nil
	}
	return diffProps(old, props,
		func(name string, value any) error {
			if err := p.tk.SetChildProperty(parent.widget, child.widget, name, value); err != nil {
				return p.childPropertyError(child, name, err)
			}
			return nil
		},
		func(name string) error {
			if err := p.tk.ResetChildProperty(parent.widget, child.widget, name); err != nil {
				return p.childPropertyError(child, name, err)
			}
			return nil
		})
}

// patch updates ln in place to match next. The caller guarantees that next
// has the same kind as ln.
func (p *patcher) patch(ln *liveNode, next vnode.Node) error {
	next = vnode.Deref(next)
	switch n := next.(type) {
	case vnode.Object:
		if err := p.checkKeys(n); err != nil {
			return err
		}
		old := ln.node.(vnode.Object)
		if err := p.patchProps(ln, old.Props, n.Props); err != nil {
			return err
		}
		if err := p.patchHandlers(ln, n.Handlers); err != nil {
			return err
		}
		if err := p.patchChildren(ln, n); err != nil {
			return err
		}
	case vnode.Text:
		old := ln.node.(vnode.Text)
		if old.Content != n.Content {
			if err := p.tk.SetProperty(ln.widget, vnode.TextProperty, n.Content); err != nil {
				return p.propertyError(ln, vnode.TextProperty, err)
			}
		}
	case vnode.Component:
		old := ln.node.(vnode.Component)
		if !reflect.DeepEqual(old.Spec.Props(), n.Spec.Props()) {
			ln.comp.receive(n.Spec.Props())
		}
	}
	ln.node = next
	ln.key = vnode.KeyOf(next)
	return nil
}

func (p *patcher) patchProps(ln *liveNode, old, next []vnode.Property) error {
	return diffProps(old, next,
		func(name string, value any) error {
			if err := p.tk.SetProperty(ln.widget, name, value); err != nil {
				return p.propertyError(ln, name, err)
			}
			return nil
		},
		func(name string) error {
			if err := p.tk.ResetProperty(ln.widget, name); err != nil {
				return p.propertyError(ln, name, err)
			}
			return nil
		})
}

// diffProps calls set for each property of next that is new or changed
// and reset for each property of old that next no longer has.
func diffProps(old, next []vnode.Property, set func(string, any) error, reset func(string) error) error {
	previous := make(map[string]any, len(old))
	for _, prop := range old {
		previous[prop.Name] = prop.Value
	}
	present := make(map[string]bool, len(next))
	for _, prop := range next {
		present[prop.Name] = true
		if v, ok := previous[prop.Name]; ok && sameValue(v, prop.Value) {
			continue
		}
		if err := set(prop.Name, prop.Value); err != nil {
			return err
		}
	}
	for _, prop := range old {
		if present[prop.Name] {
			continue
		}
		if err := reset(prop.Name); err != nil {
			return err
		}
	}
	return nil
}

func (p *patcher) patchHandlers(ln *liveNode, next []vnode.Handler) error {
	present := make(map[string]bool, len(next))
	for _, h := range next {
		present[h.Event] = true
		if b, ok := ln.handlers[h.Event]; ok {
			b.cb = h.Callback
			continue
		}
		if err := p.connect(ln, h); err != nil {
			return err
		}
	}
	for event := range ln.handlers {
		if !present[event] {
			p.tk.Disconnect(ln.widget, event)
			delete(ln.handlers, event)
		}
	}
	return nil
}

func (p *patcher) connect(ln *liveNode, h vnode.Handler) error {
	b := &binding{event: h.Event, cb: h.Callback, sched: p.sched}
	if err := p.tk.Connect(ln.widget, h.Event, b.sink); err != nil {
		return p.eventError(ln, h.Event, err)
	}
	if ln.handlers == nil {
		ln.handlers = make(map[string]*binding)
	}
	ln.handlers[h.Event] = b
	return nil
}

// patchChildren matches next's children against ln's live children by key,
// or by position among unkeyed siblings. Unmatched and kind-changed children
// are destroyed first, survivors are reordered with a single call when their
// relative order changed, and new children are inserted at their final index.
func (p *patcher) patchChildren(ln *liveNode, next vnode.Object) error {
	old := ln.children
	if len(old) == 0 && len(next.Children) == 0 {
		return nil
	}

	index := make(map[string]int, len(old))
	ordinal := 0
	for i, c := range old {
		index[identity(c.key, &ordinal)] = i
	}

	used := make([]bool, len(old))
	matched := make([]*liveNode, len(next.Children))
	ordinal = 0
	for i, child := range next.Children {
		child = vnode.Deref(child)
		j, ok := index[identity(vnode.KeyOf(child), &ordinal)]
		if ok && sameKind(old[j], child) {
			matched[i] = old[j]
			used[j] = true
		}
	}

	var survivors []*liveNode
	for j, c := range old {
		if used[j] {
			survivors = append(survivors, c)
			continue
		}
		p.tk.RemoveChild(ln.widget, c.widget)
		p.destroy(c)
	}

	order := make([]toolkit.Widget, 0, len(survivors))
	moved := false
	for _, c := range matched {
		if c == nil {
			continue
		}
		if survivors[len(order)] != c {
			moved = true
		}
		order = append(order, c.widget)
	}
	if moved {
		if err := p.tk.ReorderChildren(ln.widget, order); err != nil {
			return p.toolkitError(ln, err)
		}
	}

	children := make([]*liveNode, len(next.Children))
	for i, child := range next.Children {
		if c := matched[i]; c != nil {
			if err := p.patchChildProps(ln, c, child); err != nil {
				return err
			}
			if err := p.patch(c, child); err != nil {
				return err
			}
			children[i] = c
			continue
		}
		c, err := p.build(child, p.owner.depth())
		if err != nil {
			return err
		}
		if err := p.adopt(ln, c, i); err != nil {
			return err
		}
		children[i] = c
	}
	ln.children = children
	return nil
}

// sameValue compares property values. Pointers are references and compare
// by identity; everything else compares by content.
func sameValue(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Kind() == reflect.Pointer && vb.Kind() == reflect.Pointer {
		return va.Type() == vb.Type() && va.Pointer() == vb.Pointer()
	}
	return reflect.DeepEqual(a, b)
}

// identity returns the matching key for a child: its explicit key, or its
// ordinal among unkeyed siblings.
func identity(key string, ordinal *int) string {
	if key != "" {
		return "k:" + key
	}
	id := "#" + strconv.Itoa(*ordinal)
	*ordinal++
	return id
}

// sameKind reports whether ln can be patched into node.
func sameKind(ln *liveNode, node vnode.Node) bool {
	if ln.kind != vnode.KindOf(node) {
		return false
	}
	if c, ok := node.(vnode.Component); ok {
		old := ln.node.(vnode.Component)
		return old.Spec.ComponentType() == c.Spec.ComponentType()
	}
	return true
}

// checkKeys rejects duplicate keys among n's children.
func (p *patcher) checkKeys(n vnode.Object) error {
	seen := make(map[string]bool, len(n.Children))
	for _, child := range n.Children {
		key := vnode.KeyOf(child)
		if key == "" {
			continue
		}
		if seen[key] {
			return p.authoringError(n.Kind, key, fmt.Errorf("duplicate child key %q", key))
		}
		seen[key] = true
	}
	return nil
}

// destroy releases ln's subtree bottom-up. The caller detaches ln's widget
// from its parent first.
func (p *patcher) destroy(ln *liveNode) {
	if ln.comp != nil {
		ln.comp.unmount()
		return
	}
	for _, c := range ln.children {
		p.destroy(c)
	}
	ln.children = nil
	ln.handlers = nil
	p.tk.Destroy(ln.widget)
}

func (p *patcher) component() string {
	if p.owner == nil {
		return ""
	}
	return p.owner.Name()
}

func (p *patcher) authoringError(kind vnode.Kind, key string, err error) error {
	return &errors.PatchError{
		Kind:      errors.KindAuthoring,
		Component: p.component(),
		Node:      kind,
		Key:       key,
		Err:       err,
	}
}

func (p *patcher) createError(kind vnode.Kind, key string, err error) error {
	return &errors.PatchError{
		Kind:      classify(err),
		Component: p.component(),
		Node:      kind,
		Key:       key,
		Err:       err,
	}
}

func (p *patcher) propertyError(ln *liveNode, name string, err error) error {
	return &errors.PatchError{
		Kind:      classify(err),
		Component: p.component(),
		Node:      ln.kind,
		Key:       ln.key,
		Property:  name,
		Err:       err,
	}
}

func (p *patcher) childPropertyError(ln *liveNode, name string, err error) error {
	return &errors.PatchError{
		Kind:      classify(err),
		Component: p.component(),
		Node:      ln.kind,
		Key:       ln.key,
		Property:  "child:" + name,
		Err:       err,
	}
}

func (p *patcher) eventError(ln *liveNode, event string, err error) error {
	return &errors.PatchError{
		Kind:      classify(err),
		Component: p.component(),
		Node:      ln.kind,
		Key:       ln.key,
		Event:     event,
		Err:       err,
	}
}

func (p *patcher) toolkitError(ln *liveNode, err error) error {
	return &errors.PatchError{
		Kind:      classify(err),
		Component: p.component(),
		Node:      ln.kind,
		Key:       ln.key,
		Err:       err,
	}
}

// classify separates mistakes in a view from failures of the toolkit itself.
func classify(err error) errors.ErrorKind {
	for _, target := range []error{
		toolkit.ErrKindNotRegistered,
		toolkit.ErrUnknownProperty,
		toolkit.ErrInvalidValue,
		toolkit.ErrUnknownEvent,
		toolkit.ErrNotContainer,
	} {
		if stderrors.Is(err, target) {
			return errors.KindAuthoring
		}
	}
	return errors.KindToolkit
}
