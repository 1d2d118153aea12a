package toolkit

import (
	"fmt"
	"sync"

	"github.com/go-drift/vtree/pkg/vnode"
)

// Op names a Toolkit operation.
type Op string

// Recorded operations.
const (
	OpCreate        Op = "create"
	OpDestroy       Op = "destroy"
	OpSetProperty   Op = "set-property"
	OpResetProperty Op = "reset-property"
	OpConnect       Op = "connect"
	OpDisconnect    Op = "disconnect"
	OpInsertChild   Op = "insert-child"
	OpRemoveChild   Op = "remove-child"
	OpReorder       Op = "reorder-children"

	OpSetChildProperty   Op = "set-child-property"
	OpResetChildProperty Op = "reset-child-property"
)

// Call is one recorded toolkit operation.
type Call struct {
	Op     Op
	Kind   vnode.Kind
	Widget int64
	// Name is the property or event name, when the operation has one.
	Name string
	// Value is the property value for OpSetProperty and OpSetChildProperty.
	Value any
}

func (c Call) String() string {
	if c.Name != "" {
		return fmt.Sprintf("%s %s#%d %s", c.Op, c.Kind, c.Widget, c.Name)
	}
	return fmt.Sprintf("%s %s#%d", c.Op, c.Kind, c.Widget)
}

// Recorder wraps a Toolkit and records every call it forwards. It is used by
// tests to assert that reconciliation issues a minimal set of operations.
type Recorder struct {
	Toolkit
	mu    sync.Mutex
	calls []Call
}

// NewRecorder wraps tk.
func NewRecorder(tk Toolkit) *Recorder {
	return &Recorder{Toolkit: tk}
}

func (r *Recorder) record(call Call) {
	r.mu.Lock()
	r.calls = append(r.calls, call)
	r.mu.Unlock()
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Count returns the number of recorded calls of op.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Len returns the number of recorded calls.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Reset clears the recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func (r *Recorder) Create(kind vnode.Kind) (Widget, error) {
	w, err := r.Toolkit.Create(kind)
	var id int64
	if w != nil {
		id = w.ID()
	}
	r.record(Call{Op: OpCreate, Kind: kind, Widget: id})
	return w, err
}

func (r *Recorder) Destroy(w Widget) {
	r.record(Call{Op: OpDestroy, Kind: w.Kind(), Widget: w.ID()})
	r.Toolkit.Destroy(w)
}

func (r *Recorder) SetProperty(w Widget, name string, value any) error {
	r.record(Call{Op: OpSetProperty, Kind: w.Kind(), Widget: w.ID(), Name: name, Value: value})
	return r.Toolkit.SetProperty(w, name, value)
}

func (r *Recorder) ResetProperty(w Widget, name string) error {
	r.record(Call{Op: OpResetProperty, Kind: w.Kind(), Widget: w.ID(), Name: name})
	return r.Toolkit.ResetProperty(w, name)
}

func (r *Recorder) Connect(w Widget, event string, sink Sink) error {
	r.record(Call{Op: OpConnect, Kind: w.Kind(), Widget: w.ID(), Name: event})
	return r.Toolkit.Connect(w, event, sink)
}

func (r *Recorder) Disconnect(w Widget, event string) {
	r.record(Call{Op: OpDisconnect, Kind: w.Kind(), Widget: w.ID(), Name: event})
	r.Toolkit.Disconnect(w, event)
}

func (r *Recorder) InsertChild(parent, child Widget, index int) error {
	r.record(Call{Op: OpInsertChild, Kind: child.Kind(), Widget: child.ID()})
	return r.Toolkit.InsertChild(parent, child, index)
}

func (r *Recorder) RemoveChild(parent, child Widget) {
	r.record(Call{Op: OpRemoveChild, Kind: child.Kind(), Widget: child.ID()})
	r.Toolkit.RemoveChild(parent, child)
}

func (r *Recorder) SetChildProperty(parent, child Widget, name string, value any) error {
	r.record(Call{Op: OpSetChildProperty, Kind: child.Kind(), Widget: child.ID(), Name: name, Value: value})
	return r.Toolkit.SetChildProperty(parent, child, name, value)
}

func (r *Recorder) ResetChildProperty(parent, child Widget, name string) error {
	r.record(Call{Op: OpResetChildProperty, Kind: child.Kind(), Widget: child.ID(), Name: name})
	return r.Toolkit.ResetChildProperty(parent, child, name)
}

func (r *Recorder) ReorderChildren(parent Widget, order []Widget) error {
	r.record(Call{Op: OpReorder, Kind: parent.Kind(), Widget: parent.ID()})
	return r.Toolkit.ReorderChildren(parent, order)
}
