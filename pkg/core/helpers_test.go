package core

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/vtree/pkg/errors"
	"github.com/go-drift/vtree/pkg/logs"
	"github.com/go-drift/vtree/pkg/toolkit"
	"github.com/go-drift/vtree/pkg/toolkit/headless"
	"github.com/go-drift/vtree/pkg/vnode"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type harness struct {
	t     *testing.T
	hl    *headless.Toolkit
	rec   *toolkit.Recorder
	clock *testClock
	sched *Scheduler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	hl := headless.New()
	rec := toolkit.NewRecorder(hl)
	clock := newTestClock()
	s := NewScheduler(rec, WithLogger(logs.Discard()), WithClock(clock))
	t.Cleanup(s.Close)
	return &harness{t: t, hl: hl, rec: rec, clock: clock, sched: s}
}

func (h *harness) flush() {
	h.t.Helper()
	if err := h.sched.Flush(); err != nil {
		h.t.Fatalf("Flush: %v", err)
	}
}

func (h *harness) widget(w toolkit.Widget) *headless.Widget {
	h.t.Helper()
	hw := h.hl.Resolve(w)
	if hw == nil {
		h.t.Fatalf("no headless widget for %v", w)
	}
	return hw
}

func (h *harness) child(w toolkit.Widget, path ...int) *headless.Widget {
	h.t.Helper()
	hw := h.widget(w)
	for _, i := range path {
		children := hw.Children()
		if i >= len(children) {
			h.t.Fatalf("%v has %d children, want index %d", hw, len(children), i)
		}
		hw = children[i]
	}
	return hw
}

func prop(t *testing.T, w *headless.Widget, name string) any {
	t.Helper()
	v, ok := w.Property(name)
	if !ok {
		t.Fatalf("%v has no property %q", w, name)
	}
	return v
}

func childIDs(w *headless.Widget) []int64 {
	var ids []int64
	for _, c := range w.Children() {
		ids = append(ids, c.ID())
	}
	return ids
}

// captureErrors installs an error handler that records fatal reports.
type captureErrors struct {
	mu      sync.Mutex
	patch   []*errors.PatchError
	build   []*errors.BuildError
	panics  []*errors.PanicError
	generic []*errors.Error
}

func (c *captureErrors) HandleError(err *errors.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generic = append(c.generic, err)
}

func (c *captureErrors) HandlePanic(err *errors.PanicError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panics = append(c.panics, err)
}

func (c *captureErrors) HandleBuildError(err *errors.BuildError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.build = append(c.build, err)
}

func (c *captureErrors) HandlePatchError(err *errors.PatchError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patch = append(c.patch, err)
}

func captureReports(t *testing.T) *captureErrors {
	t.Helper()
	c := &captureErrors{}
	errors.SetHandler(c)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return c
}

// counter shows its count in a label next to an "inc!" button.
type counterMsg int

type counter struct {
	count   int
	updates int
	views   int
	scope   *Scope[counterMsg]
}

func (c *counter) Update(m counterMsg) Action[counterMsg] {
	c.updates++
	c.count += int(m)
	return Render[counterMsg]()
}

func (c *counter) Change(struct{}) Action[counterMsg] {
	return None[counterMsg]()
}

func (c *counter) View(s *Scope[counterMsg]) vnode.Node {
	c.views++
	c.scope = s
	return vnode.New(headless.KindBox).
		Child(
			vnode.New(headless.KindLabel).Prop("label", strconv.Itoa(c.count)).Build(),
			vnode.New(headless.KindButton).Prop("label", "inc!").On("clicked", s.Trigger(1)).Build(),
		).
		Build()
}

func counterType(out **counter) *Type[struct{}, counterMsg] {
	return NewType("Counter", func(struct{}) Component[struct{}, counterMsg] {
		c := &counter{}
		if out != nil {
			*out = c
		}
		return c
	})
}

type viewFunc = func(s *Scope[viewerMsg]) vnode.Node

// viewer renders whatever view function it currently holds.
// A message without a view is recorded in notes.
type viewerMsg struct {
	view viewFunc
	note string
}

type viewer struct {
	view      viewFunc
	scope     *Scope[viewerMsg]
	notes     []string
	changes   int
	mounted   int
	unmounted int
}

func (v *viewer) Update(m viewerMsg) Action[viewerMsg] {
	if m.view == nil {
		v.notes = append(v.notes, m.note)
		return None[viewerMsg]()
	}
	v.view = m.view
	return Render[viewerMsg]()
}

func (v *viewer) Change(viewFunc) Action[viewerMsg] {
	v.changes++
	return None[viewerMsg]()
}

func (v *viewer) View(s *Scope[viewerMsg]) vnode.Node {
	v.scope = s
	return v.view(s)
}

func (v *viewer) Mounted()   { v.mounted++ }
func (v *viewer) Unmounted() { v.unmounted++ }

// set swaps the viewer's view function through its mailbox.
func (v *viewer) set(view viewFunc) {
	v.scope.Send(viewerMsg{view: view})
}

// viewerType declares a viewer component; out, when non-nil, receives the
// most recently created instance.
func viewerType(name string, out **viewer) *Type[viewFunc, viewerMsg] {
	return NewType(name, func(view viewFunc) Component[viewFunc, viewerMsg] {
		v := &viewer{view: view}
		if out != nil {
			*out = v
		}
		return v
	})
}

func mountViewer(h *harness, initial viewFunc) (*viewer, Instance) {
	h.t.Helper()
	var v *viewer
	inst, err := Mount(h.sched, viewerType("Viewer", &v), initial)
	if err != nil {
		h.t.Fatalf("Mount: %v", err)
	}
	return v, inst
}

func static(n vnode.Node) viewFunc {
	return func(*Scope[viewerMsg]) vnode.Node { return n }
}

func labels(names ...string) []vnode.Node {
	nodes := make([]vnode.Node, len(names))
	for i, name := range names {
		nodes[i] = vnode.New(headless.KindLabel).Prop("label", name).Build()
	}
	return nodes
}

func keyedLabels(names ...string) []vnode.Node {
	nodes := make([]vnode.Node, len(names))
	for i, name := range names {
		nodes[i] = vnode.New(headless.KindLabel).Key(name).Prop("label", name).Build()
	}
	return nodes
}

func box(children ...vnode.Node) vnode.Node {
	return vnode.New(headless.KindBox).Child(children...).Build()
}
