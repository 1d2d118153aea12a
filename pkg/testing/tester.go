package testing

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-drift/vtree/pkg/core"
	"github.com/go-drift/vtree/pkg/logs"
	"github.com/go-drift/vtree/pkg/toolkit"
	"github.com/go-drift/vtree/pkg/toolkit/headless"
)

// ErrSettleTimeout is returned when PumpAndSettle exceeds its timeout.
var ErrSettleTimeout = errors.New("PumpAndSettle timed out: scheduler did not settle")

// Tester mounts components on a headless toolkit and drives the scheduler
// by hand. It uses a fake clock, so sleeping tasks only wake when the test
// advances time.
type Tester struct {
	hl    *headless.Toolkit
	rec   *toolkit.Recorder
	clock *FakeClock
	sched *core.Scheduler
	root  core.Instance
}

// NewTester creates a tester. Options are applied after the tester's own
// defaults (a discarding logger and the fake clock). Call Cleanup when
// done, or use NewTesterWithT instead.
func NewTester(opts ...core.Option) *Tester {
	hl := headless.New()
	rec := toolkit.NewRecorder(hl)
	clk := NewFakeClock()
	base := []core.Option{core.WithLogger(logs.Discard()), core.WithClock(clk)}
	return &Tester{
		hl:    hl,
		rec:   rec,
		clock: clk,
		sched: core.NewScheduler(rec, append(base, opts...)...),
	}
}

// NewTesterWithT creates a tester that cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T, opts ...core.Option) *Tester {
	tester := NewTester(opts...)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts every component and stops pending tasks.
func (t *Tester) Cleanup() {
	t.sched.Close()
	t.root = nil
}

// Mount mounts typ as the tester's root component and pumps once.
func Mount[P, M any](t *Tester, typ *core.Type[P, M], props P) error {
	inst, err := core.Mount(t.sched, typ, props)
	if err != nil {
		return err
	}
	t.root = inst
	return t.Pump()
}

// Toolkit returns the headless toolkit behind the recorder.
func (t *Tester) Toolkit() *headless.Toolkit {
	return t.hl
}

// Recorder returns the recorder that sees every toolkit call.
func (t *Tester) Recorder() *toolkit.Recorder {
	return t.rec
}

// Scheduler returns the scheduler driven by the tester.
func (t *Tester) Scheduler() *core.Scheduler {
	return t.sched
}

// Clock returns the fake clock for advancing time in tests.
func (t *Tester) Clock() *FakeClock {
	return t.clock
}

// Root returns the root component instance, or nil before Mount.
func (t *Tester) Root() core.Instance {
	return t.root
}

// RootWidget returns the root component's current root widget.
func (t *Tester) RootWidget() *headless.Widget {
	if t.root == nil {
		return nil
	}
	return t.hl.Resolve(t.root.Widget())
}

// Pump dispatches queued messages, resumes runnable tasks and renders until
// the scheduler is idle.
func (t *Tester) Pump() error {
	return t.sched.Flush()
}

// Dispatch queues fn to run on the scheduler during the next Pump.
func (t *Tester) Dispatch(fn func()) {
	t.sched.Dispatch(fn)
}

// PumpAndSettle pumps until no work is pending and no task is sleeping.
// Between pumps the fake clock advances by step. Returns ErrSettleTimeout if
// the scheduler does not settle within timeout.
func (t *Tester) PumpAndSettle(step, timeout time.Duration) error {
	var elapsed time.Duration
	for elapsed <= timeout {
		if err := t.Pump(); err != nil {
			return err
		}
		if !t.sched.Pending() && t.sched.Sleeping() == 0 {
			return nil
		}
		t.clock.Advance(step)
		elapsed += step
	}
	return ErrSettleTimeout
}

// Find evaluates a finder against the live widget tree.
func (t *Tester) Find(finder Finder) FinderResult {
	return FinderResult{
		widgets: finder.Evaluate(t.hl.Roots()),
		finder:  finder,
	}
}

// Emit fires event on the first widget matching finder, then pumps.
func (t *Tester) Emit(finder Finder, event string, args ...any) error {
	w := t.Find(finder).FirstOrNil()
	if w == nil {
		return fmt.Errorf("emit %s: no widget found: %s", event, finder.Description())
	}
	if !w.Emit(event, args...) {
		return fmt.Errorf("emit %s: %v has no connection", event, w)
	}
	return t.Pump()
}

// Enter sets the text property of the first widget matching finder as a
// user edit would, then pumps. Widgets that notify on text changes deliver
// the edit to their handlers.
func (t *Tester) Enter(finder Finder, text string) error {
	w := t.Find(finder).FirstOrNil()
	if w == nil {
		return fmt.Errorf("enter: no widget found: %s", finder.Description())
	}
	if err := w.SetProperty("text", text); err != nil {
		return fmt.Errorf("enter: %w", err)
	}
	return t.Pump()
}
