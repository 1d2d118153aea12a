package core

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/go-drift/vtree/pkg/errors"
	"github.com/go-drift/vtree/pkg/toolkit"
	"github.com/go-drift/vtree/pkg/toolkit/headless"
	"github.com/go-drift/vtree/pkg/vnode"
)

func TestCounter_ClickUpdatesLabel(t *testing.T) {
	h := newHarness(t)
	var c *counter
	inst, err := Mount(h.sched, counterType(&c), struct{}{})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	label := h.child(inst.Widget(), 0)
	button := h.child(inst.Widget(), 1)
	if got := prop(t, button, "label"); got != "inc!" {
		t.Fatalf("button label = %v", got)
	}

	h.rec.Reset()
	if !button.Emit("clicked") {
		t.Fatal("clicked has no connection")
	}
	h.flush()

	if c.count != 1 {
		t.Errorf("count = %d, want 1", c.count)
	}
	calls := h.rec.Calls()
	if len(calls) != 1 || calls[0].Op != toolkit.OpSetProperty || calls[0].Name != "label" {
		t.Fatalf("calls = %v, want exactly one set-property", calls)
	}
	if got := prop(t, label, "label"); got != "1" {
		t.Errorf("label = %v, want 1", got)
	}
	if inst.Lifecycle() != Rendered {
		t.Errorf("lifecycle = %v, want rendered", inst.Lifecycle())
	}
}

func TestScheduler_RenderWithoutChangesIsSilent(t *testing.T) {
	h := newHarness(t)
	var c *counter
	if _, err := Mount(h.sched, counterType(&c), struct{}{}); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	h.rec.Reset()
	c.scope.Send(0)
	h.flush()

	if c.updates != 1 {
		t.Errorf("updates = %d, want 1", c.updates)
	}
	if h.rec.Len() != 0 {
		t.Errorf("calls = %v, want none", h.rec.Calls())
	}
}

func TestScheduler_CoalescesRendersWithinPass(t *testing.T) {
	h := newHarness(t)
	var c *counter
	inst, err := Mount(h.sched, counterType(&c), struct{}{})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	views := c.views

	c.scope.Send(1)
	c.scope.Send(1)
	c.scope.Send(1)
	h.flush()

	if c.count != 3 {
		t.Errorf("count = %d, want 3", c.count)
	}
	if c.views != views+1 {
		t.Errorf("views = %d, want %d", c.views, views+1)
	}
	if got := prop(t, h.child(inst.Widget(), 0), "label"); got != "3" {
		t.Errorf("label = %v, want 3", got)
	}
}

// outer holds a count and passes it to an inner component that keeps its
// own click count.
type outerMsg struct{}

type outer struct {
	count int
	inner *Type[innerProps, innerMsg]
}

func (o *outer) Update(outerMsg) Action[outerMsg] {
	o.count++
	return Render[outerMsg]()
}

func (o *outer) Change(struct{}) Action[outerMsg] { return None[outerMsg]() }

func (o *outer) View(s *Scope[outerMsg]) vnode.Node {
	return vnode.New(headless.KindBox).
		Child(
			vnode.New(headless.KindButton).Prop("label", "more").On("clicked", s.Trigger(outerMsg{})).Build(),
			o.inner.With(innerProps{Count: o.count}),
		).
		Build()
}

type innerProps struct {
	Count int
}

type innerMsg struct{}

type inner struct {
	props  innerProps
	clicks int
}

func (i *inner) Update(innerMsg) Action[innerMsg] {
	i.clicks++
	return Render[innerMsg]()
}

func (i *inner) Change(p innerProps) Action[innerMsg] {
	if p == i.props {
		return None[innerMsg]()
	}
	i.props = p
	return Render[innerMsg]()
}

func (i *inner) View(s *Scope[innerMsg]) vnode.Node {
	return vnode.New(headless.KindBox).
		Child(
			vnode.New(headless.KindLabel).Prop("label", fmt.Sprintf("%d/%d", i.props.Count, i.clicks)).Build(),
			vnode.New(headless.KindButton).Prop("label", "click").On("clicked", s.Trigger(innerMsg{})).Build(),
		).
		Build()
}

func TestNested_PropsChangeKeepsChildState(t *testing.T) {
	h := newHarness(t)
	var created []*inner
	innerType := NewType("Inner", func(p innerProps) Component[innerProps, innerMsg] {
		i := &inner{props: p}
		created = append(created, i)
		return i
	})
	outerType := NewType("Outer", func(struct{}) Component[struct{}, outerMsg] {
		return &outer{count: 1, inner: innerType}
	})
	inst, err := Mount(h.sched, outerType, struct{}{})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	more := h.child(inst.Widget(), 0)
	label := h.child(inst.Widget(), 1, 0)
	click := h.child(inst.Widget(), 1, 1)

	click.Emit("clicked")
	h.flush()
	if got := prop(t, label, "label"); got != "1/1" {
		t.Fatalf("label = %v, want 1/1", got)
	}

	h.rec.Reset()
	more.Emit("clicked")
	h.flush()

	if got := prop(t, label, "label"); got != "2/1" {
		t.Errorf("label = %v, want 2/1", got)
	}
	if len(created) != 1 {
		t.Errorf("inner created %d times, want 1", len(created))
	}
	if n := h.rec.Count(toolkit.OpCreate) + h.rec.Count(toolkit.OpDestroy); n != 0 {
		t.Errorf("props change remounted widgets: %v", h.rec.Calls())
	}
}

func TestNested_TypeChangeRemounts(t *testing.T) {
	h := newHarness(t)
	var first, second *viewer
	a := viewerType("A", &first)
	b := viewerType("B", &second)
	leaf := static(vnode.New(headless.KindLabel).Prop("label", "leaf").Build())

	v, _ := mountViewer(h, static(box(a.With(leaf))))
	v.set(static(box(b.With(leaf))))
	h.flush()

	if first.unmounted != 1 {
		t.Errorf("A unmounted %d times, want 1", first.unmounted)
	}
	if second == nil || second.mounted != 1 {
		t.Fatal("B was not mounted")
	}
}

type entryMsg struct {
	text string
}

type entry struct {
	text    string
	updates int
}

func (e *entry) Update(m entryMsg) Action[entryMsg] {
	e.updates++
	e.text = m.text
	return Render[entryMsg]()
}

func (e *entry) Change(struct{}) Action[entryMsg] { return None[entryMsg]() }

func (e *entry) View(s *Scope[entryMsg]) vnode.Node {
	return vnode.New(headless.KindEntry).
		Prop("text", e.text).
		On("changed", s.Handler(func(ev vnode.Event) entryMsg {
			text, _ := ev.Arg(0).(string)
			return entryMsg{text: text}
		})).
		Build()
}

func TestScheduler_MutesEventsDuringReconcile(t *testing.T) {
	h := newHarness(t)
	var e *entry
	var scope *Scope[entryMsg]
	typ := NewType("Entry", func(struct{}) Component[struct{}, entryMsg] {
		e = &entry{}
		return e
	})
	inst, err := Mount(h.sched, typ, struct{}{})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	scope = inst.(*runtime[struct{}, entryMsg]).scope
	widget := h.widget(inst.Widget())

	scope.Send(entryMsg{text: "abc"})
	h.flush()
	if e.updates != 1 {
		t.Errorf("updates = %d, want 1; reconcile echoes leaked", e.updates)
	}
	if got := prop(t, widget, "text"); got != "abc" {
		t.Errorf("text = %v, want abc", got)
	}

	widget.Emit("changed", "typed")
	h.flush()
	if e.updates != 2 || e.text != "typed" {
		t.Errorf("updates = %d text = %q, want a user edit to be delivered once", e.updates, e.text)
	}
}

func TestScope_SendAfterUnmountIsDropped(t *testing.T) {
	h := newHarness(t)
	var child *viewer
	childType := viewerType("Child", &child)
	leaf := static(vnode.New(headless.KindLabel).Prop("label", "leaf").Build())

	v, _ := mountViewer(h, static(box(childType.With(leaf))))
	if child.mounted != 1 {
		t.Fatalf("child mounted %d times", child.mounted)
	}
	scope := child.scope

	v.set(static(box()))
	h.flush()

	if child.unmounted != 1 {
		t.Errorf("child unmounted %d times, want 1", child.unmounted)
	}
	if !scope.Closed() {
		t.Error("scope still open")
	}
	scope.Send(viewerMsg{note: "late"})
	Callback(scope, func(string) viewerMsg { return viewerMsg{note: "cb"} }).Send("x")
	h.flush()
	if len(child.notes) != 0 {
		t.Errorf("notes = %v, want none", child.notes)
	}
}

func TestScheduler_PanicInUpdateIsFatal(t *testing.T) {
	reports := captureReports(t)
	h := newHarness(t)
	typ := NewType("Panicky", func(struct{}) Component[struct{}, counterMsg] {
		return &panicky{}
	})
	inst, err := Mount(h.sched, typ, struct{}{})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	inst.(*runtime[struct{}, counterMsg]).scope.Send(1)

	err = h.sched.Flush()
	var be *errors.BuildError
	if !stderrors.As(err, &be) {
		t.Fatalf("Flush error = %v, want BuildError", err)
	}
	if be.Component != "Panicky" || be.Phase != "update" || be.Recovered != "boom" {
		t.Errorf("error = %+v", be)
	}
	if len(reports.build) != 1 {
		t.Errorf("reported %d build errors, want 1", len(reports.build))
	}
	if h.sched.Err() != err {
		t.Error("Err does not return the fatal error")
	}
}

type panicky struct{}

func (panicky) Update(counterMsg) Action[counterMsg] { panic("boom") }
func (panicky) Change(struct{}) Action[counterMsg]   { return None[counterMsg]() }
func (panicky) View(*Scope[counterMsg]) vnode.Node {
	return vnode.New(headless.KindLabel).Build()
}

// quitter quits with the message value.
type quitter struct {
	updates int
}

func (q *quitter) Update(code counterMsg) Action[counterMsg] {
	q.updates++
	return None[counterMsg]()
}

func (q *quitter) Change(struct{}) Action[counterMsg] { return None[counterMsg]() }

func (q *quitter) View(s *Scope[counterMsg]) vnode.Node {
	return vnode.New(headless.KindWindow).
		Prop("title", "quit").
		On("close-request", Callback(s, func(vnode.Event) counterMsg {
			s.Quit(3)
			return 0
		})).
		Child(vnode.New(headless.KindLabel).Prop("label", "bye").Build()).
		Build()
}

func TestRun_QuitStopsAndUnmounts(t *testing.T) {
	h := newHarness(t)
	q := &quitter{}
	typ := NewType("Quitter", func(struct{}) Component[struct{}, counterMsg] { return q })
	inst, err := Mount(h.sched, typ, struct{}{})
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	window := h.widget(inst.Widget())

	window.Emit("close-request")
	code, err := h.sched.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if code != 3 {
		t.Errorf("code = %d, want 3", code)
	}
	if q.updates != 0 {
		t.Errorf("updates = %d; messages after quit must not dispatch", q.updates)
	}
	if !window.Disposed() || h.hl.Len() != 0 {
		t.Errorf("%d widgets left after quit", h.hl.Len())
	}
	if inst.Lifecycle() != Destroyed {
		t.Errorf("lifecycle = %v, want destroyed", inst.Lifecycle())
	}
}

func TestRun_ContextCancelStops(t *testing.T) {
	h := newHarness(t)
	if _, err := Mount(h.sched, counterType(nil), struct{}{}); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, err := h.sched.Run(ctx)
	if err != nil || code != 0 {
		t.Errorf("Run = (%d, %v), want (0, nil)", code, err)
	}
	if h.hl.Len() != 0 {
		t.Errorf("%d widgets left", h.hl.Len())
	}
}

func TestRun_FatalErrorExitsNonZero(t *testing.T) {
	captureReports(t)
	hl := headless.New()
	code, err := Run(context.Background(), hl, viewerType("Broken", nil),
		static(vnode.New(headless.KindLabel).Prop("label", 5).Build()))
	if err == nil || code != 1 {
		t.Errorf("Run = (%d, %v), want code 1 and an error", code, err)
	}
}

func TestLifecycle_String(t *testing.T) {
	tests := map[Lifecycle]string{
		Unmounted:     "unmounted",
		Mounted:       "mounted",
		Updating:      "updating",
		Rendered:      "rendered",
		Unmounting:    "unmounting",
		Destroyed:     "destroyed",
		Lifecycle(42): "Lifecycle(42)",
	}
	for l, want := range tests {
		if got := l.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(l), got, want)
		}
	}
}

func TestAction(t *testing.T) {
	if None[int]().Renders() {
		t.Error("None renders")
	}
	if !Render[int]().Renders() || Render[int]().String() != "render" {
		t.Error("Render does not render")
	}
	if d := Defer(func(*Co) int { return 1 }); !d.Renders() || d.String() != "defer" {
		t.Errorf("Defer = %v", d)
	}
	if d := Defer[int](nil); d.String() != "render" {
		t.Errorf("Defer(nil) = %v, want render", d)
	}
	var zero Action[int]
	if zero.String() != "none" {
		t.Errorf("zero action = %v", zero)
	}
}

func TestDispatch_RunsInOrderWithMessages(t *testing.T) {
	h := newHarness(t)
	var c *counter
	if _, err := Mount(h.sched, counterType(&c), struct{}{}); err != nil {
		t.Fatalf("Mount: %v", err)
	}

	var seen []int
	c.scope.Send(1)
	h.sched.Dispatch(func() { seen = append(seen, c.count) })
	c.scope.Send(1)
	h.sched.Dispatch(func() { seen = append(seen, c.count) })
	h.sched.Dispatch(nil)
	if !h.sched.Pending() {
		t.Fatal("expected pending work before flush")
	}
	h.flush()

	if fmt.Sprint(seen) != "[1 2]" {
		t.Errorf("seen = %v, want [1 2]", seen)
	}
	if c.views != 2 {
		t.Errorf("views = %d, want 2 (mount plus one coalesced render)", c.views)
	}
}

func TestDispatch_PanicIsReported(t *testing.T) {
	reports := captureReports(t)
	h := newHarness(t)

	ran := false
	h.sched.Dispatch(func() { panic("dispatch boom") })
	h.sched.Dispatch(func() { ran = true })
	h.flush()

	if len(reports.panics) != 1 || reports.panics[0].Op != "core.Dispatch" {
		t.Fatalf("panics = %v, want one core.Dispatch report", reports.panics)
	}
	if !ran {
		t.Error("callback after the panic did not run")
	}
	if h.sched.Err() != nil {
		t.Errorf("Err = %v, want nil", h.sched.Err())
	}
}
