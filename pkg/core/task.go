package core

import (
	"context"
	"fmt"
	"log/slog"
	goruntime "runtime"
	"time"

	"github.com/google/uuid"

	"github.com/go-drift/vtree/pkg/errors"
)

// Task is a deferred computation started by Defer. Its body runs only while
// the scheduler loop is parked on it and may suspend with the Co it
// receives. The returned message is delivered to the originating component.
type Task[M any] func(co *Co) M

type signalKind uint8

const (
	sigYield signalKind = iota
	sigSleep
	sigAwait
	sigDone
)

type signal struct {
	kind     signalKind
	deadline time.Time
	result   any
	panicked bool
}

// task is the scheduler's record of one running Task.
type task struct {
	id       uuid.UUID
	owner    instance
	co       *Co
	body     func(*Co) any
	started  bool
	deadline time.Time
}

// Co is a task's handle for cooperative suspension. Its methods must only be
// called from the task body that received it.
type Co struct {
	sched  *Scheduler
	t      *task
	resume chan struct{}
	signal chan signal
}

// Context returns a context cancelled when the scheduler stops.
func (c *Co) Context() context.Context {
	return c.sched.ctx
}

// Now returns the scheduler clock's current time.
func (c *Co) Now() time.Time {
	return c.sched.clock.Now()
}

// Yield lets the loop dispatch pending messages before the task continues.
func (c *Co) Yield() {
	c.suspend(signal{kind: sigYield})
}

// Sleep suspends the task until d has elapsed on the scheduler clock.
func (c *Co) Sleep(d time.Duration) {
	c.suspend(signal{kind: sigSleep, deadline: c.sched.clock.Now().Add(d)})
}

// Await runs fn on its own goroutine and suspends the task until it returns.
// fn receives the scheduler's context and must not touch component state.
// A panic in fn is reported and returned as an error.
func Await[T any](c *Co, fn func(ctx context.Context) (T, error)) (T, error) {
	var value T
	var err error
	go func() {
		defer c.sched.makeReady(c.t)
		defer errors.RecoverWithCallback("core.Await", func(r any) {
			err = fmt.Errorf("await: panic: %v", r)
		})
		value, err = fn(c.sched.ctx)
	}()
	c.suspend(signal{kind: sigAwait})
	return value, err
}

// suspend hands control back to the loop and blocks until resumed. When the
// scheduler stops first the task goroutine exits.
func (c *Co) suspend(sig signal) {
	c.signal <- sig
	c.wait()
}

func (c *Co) wait() {
	select {
	case <-c.resume:
	case <-c.sched.ctx.Done():
		goruntime.Goexit()
	}
}

// spawn starts body for owner. The body runs first on the next pass.
func (s *Scheduler) spawn(owner instance, body func(*Co) any) {
	t := &task{id: uuid.New(), owner: owner, body: body}
	t.co = &Co{
		sched:  s,
		t:      t,
		resume: make(chan struct{}),
		signal: make(chan signal),
	}
	s.logger.Debug("task spawned",
		slog.String("component", owner.Name()),
		slog.String("task", t.id.String()))
	s.makeReady(t)
}

func (s *Scheduler) makeReady(t *task) {
	s.mu.Lock()
	s.ready = append(s.ready, t)
	s.mu.Unlock()
	s.signal()
}

func (s *Scheduler) takeReady() []*task {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.ready
	s.ready = nil
	return r
}

// resume runs t until its next suspension point.
func (s *Scheduler) resume(t *task) {
	if !t.started {
		t.started = true
		go t.run()
	}
	select {
	case t.co.resume <- struct{}{}:
	case <-s.ctx.Done():
		return
	}
	sig := <-t.co.signal

	switch sig.kind {
	case sigYield:
		s.makeReady(t)
	case sigSleep:
		t.deadline = sig.deadline
		s.sleeping = append(s.sleeping, t)
	case sigAwait:
		// Await's goroutine makes t ready again.
	case sigDone:
		if sig.panicked {
			return
		}
		if t.owner.closed() {
			s.logger.Debug("task result dropped",
				slog.String("component", t.owner.Name()),
				slog.String("task", t.id.String()))
			return
		}
		s.post(envelope{target: t.owner, msg: sig.result})
	}
}

func (t *task) run() {
	t.co.wait()

	var result any
	panicked := true
	func() {
		defer func() {
			if !panicked {
				return
			}
			if r := recover(); r != nil {
				errors.ReportPanic(&errors.PanicError{
					Op:         "core.task." + t.owner.Name(),
					Value:      r,
					StackTrace: errors.CaptureStack(),
					Timestamp:  time.Now(),
				})
			}
		}()
		result = t.body(t.co)
		panicked = false
	}()
	t.co.signal <- signal{kind: sigDone, result: result, panicked: panicked}
}

// wakeSleepers moves sleeping tasks whose deadline has passed to the ready
// list. It reports whether any task woke.
func (s *Scheduler) wakeSleepers() bool {
	if len(s.sleeping) == 0 {
		return false
	}
	now := s.clock.Now()
	woke := false
	remaining := s.sleeping[:0]
	for _, t := range s.sleeping {
		if t.deadline.After(now) {
			remaining = append(remaining, t)
			continue
		}
		woke = true
		s.makeReady(t)
	}
	clear(s.sleeping[len(remaining):])
	s.sleeping = remaining
	return woke
}

// nextDeadline returns how long until the earliest sleeping task is due.
func (s *Scheduler) nextDeadline() (time.Duration, bool) {
	if len(s.sleeping) == 0 {
		return 0, false
	}
	earliest := s.sleeping[0].deadline
	for _, t := range s.sleeping[1:] {
		if t.deadline.Before(earliest) {
			earliest = t.deadline
		}
	}
	d := earliest.Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	return d, true
}
