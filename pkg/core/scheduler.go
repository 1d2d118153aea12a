package core

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-drift/vtree/pkg/errors"
	"github.com/go-drift/vtree/pkg/toolkit"
)

// Clock supplies the current time for task sleeps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger used for lifecycle and dispatch records.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used to schedule sleeping tasks.
func WithClock(clock Clock) Option {
	return func(s *Scheduler) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDebug enables a debug record for every dispatched message.
func WithDebug(enabled bool) Option {
	return func(s *Scheduler) {
		s.debug = enabled
	}
}

// envelope is one mailbox entry. Entries with fn set carry a callback
// queued with Dispatch instead of a message.
type envelope struct {
	target instance
	msg    any
	// props marks a property change from a re-rendering parent.
	props bool
	fn    func()
}

// Scheduler owns the loop that applies messages, renders dirty components
// and resumes deferred tasks. Component state and widgets are only touched
// from the goroutine calling Flush or Run; Send and Quit are safe from any
// goroutine.
type Scheduler struct {
	tk     toolkit.Toolkit
	logger *slog.Logger
	clock  Clock
	debug  bool

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	queue []envelope
	ready []*task
	wake  chan struct{}

	// Loop-only state.
	sleeping []*task
	dirty    []instance
	dirtySet map[instance]bool
	roots    []instance
	err      error

	muted atomic.Int32
	quit  atomic.Bool
	code  atomic.Int64
}

// NewScheduler returns a scheduler that reconciles against tk.
func NewScheduler(tk toolkit.Toolkit, opts ...Option) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		tk:       tk,
		logger:   slog.Default(),
		clock:    systemClock{},
		ctx:      ctx,
		cancel:   cancel,
		wake:     make(chan struct{}, 1),
		dirtySet: make(map[instance]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Toolkit returns the toolkit the scheduler reconciles against.
func (s *Scheduler) Toolkit() toolkit.Toolkit {
	return s.tk
}

// Mount creates a top-level component and builds its widgets. The component's
// root widget is left unparented; hosts typically use a window kind as the
// root so it can be shown directly.
func Mount[P, M any](s *Scheduler, typ *Type[P, M], props P) (Instance, error) {
	if s.err != nil {
		return nil, s.err
	}
	rt, err := mountRuntime(s, typ, props, 0)
	if err != nil {
		return nil, s.fail(err)
	}
	s.roots = append(s.roots, rt)
	return rt, nil
}

// Quit requests that the loop stop with code. Messages still queued are not
// dispatched.
func (s *Scheduler) Quit(code int) {
	if s.quit.Swap(true) {
		return
	}
	s.code.Store(int64(code))
	s.logger.Debug("quit requested", slog.Int("code", code))
	s.signal()
}

// Quitting reports whether Quit has been called.
func (s *Scheduler) Quitting() bool {
	return s.quit.Load()
}

// ExitCode returns the code passed to Quit.
func (s *Scheduler) ExitCode() int {
	return int(s.code.Load())
}

// Err returns the fatal error that stopped the scheduler, if any.
func (s *Scheduler) Err() error {
	return s.err
}

// Pending reports whether messages, renders or runnable tasks are waiting.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	busy := len(s.queue) > 0 || len(s.ready) > 0
	s.mu.Unlock()
	return busy || len(s.dirty) > 0
}

// Sleeping returns the number of tasks waiting on the clock.
func (s *Scheduler) Sleeping() int {
	return len(s.sleeping)
}

// post appends env to the mailbox queue unless the target is gone.
func (s *Scheduler) post(env envelope) {
	if env.target == nil || env.target.closed() {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, env)
	s.mu.Unlock()
	s.signal()
}

// Dispatch schedules fn to run on the loop goroutine, in order with queued
// messages. It is safe to call from any goroutine. Input from other
// goroutines, such as widget events simulated by a host, should go through
// Dispatch so it never races a render.
func (s *Scheduler) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, envelope{fn: fn})
	s.mu.Unlock()
	s.signal()
}

func (s *Scheduler) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) markDirty(inst instance) {
	if s.dirtySet[inst] {
		return
	}
	s.dirtySet[inst] = true
	s.dirty = append(s.dirty, inst)
}

// Flush runs passes until no work is left. Each pass wakes due sleepers,
// resumes runnable tasks once, dispatches the messages queued at the start
// of the pass in order and then renders every dirty component once,
// shallowest first. Flush returns the fatal error that stopped the
// scheduler, if any; after a fatal error every later call returns it too.
func (s *Scheduler) Flush() error {
	if s.err != nil {
		return s.err
	}
	for !s.quit.Load() {
		worked := s.wakeSleepers()

		for _, t := range s.takeReady() {
			worked = true
			s.resume(t)
		}

		for _, env := range s.takeQueue() {
			if s.quit.Load() {
				return nil
			}
			worked = true
			if err := s.dispatch(env); err != nil {
				return s.fail(err)
			}
		}

		if len(s.dirty) > 0 {
			worked = true
			if err := s.flushRenders(); err != nil {
				return s.fail(err)
			}
		}

		if !worked {
			return nil
		}
	}
	return nil
}

func (s *Scheduler) takeQueue() []envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.queue
	s.queue = nil
	return q
}

func (s *Scheduler) dispatch(env envelope) error {
	if env.fn != nil {
		s.invoke(env.fn)
		return nil
	}
	if env.target.closed() {
		s.logger.Debug("message dropped",
			slog.String("component", env.target.Name()),
			slog.String("id", env.target.ID().String()))
		return nil
	}
	if s.debug {
		s.logger.Debug("dispatch",
			slog.String("component", env.target.Name()),
			slog.String("id", env.target.ID().String()),
			slog.Bool("props", env.props),
			slog.String("msg", fmt.Sprintf("%#v", env.msg)))
	}
	return env.target.dispatch(env.msg, env.props)
}

// invoke runs a dispatched callback. A panic is reported and does not stop
// the loop.
func (s *Scheduler) invoke(fn func()) {
	defer errors.Recover("core.Dispatch")
	fn()
}

// flushRenders reconciles dirty components, shallowest first. A component
// unmounted by an ancestor's render earlier in the list is skipped.
func (s *Scheduler) flushRenders() error {
	dirty := s.dirty
	s.dirty = nil
	clear(s.dirtySet)

	slices.SortStableFunc(dirty, func(a, b instance) int {
		return a.depth() - b.depth()
	})
	for _, inst := range dirty {
		if inst.closed() {
			continue
		}
		if err := inst.render(); err != nil {
			return err
		}
	}
	return nil
}

// fail records err as fatal, reports it and stops every task.
func (s *Scheduler) fail(err error) error {
	if s.err != nil {
		return s.err
	}
	s.err = err
	errors.ReportError("core.Flush", err)
	s.cancel()
	return err
}

// Run flushes and waits for work until Quit is called, ctx is done or a
// fatal error occurs. It then unmounts every top-level component and
// returns the exit code. A fatal error yields code 1 and leaves the widgets
// as they are.
func (s *Scheduler) Run(ctx context.Context) (int, error) {
	defer s.cancel()
	for {
		if err := s.Flush(); err != nil {
			return 1, err
		}
		if s.quit.Load() {
			break
		}

		var timer *time.Timer
		var fire <-chan time.Time
		if d, ok := s.nextDeadline(); ok {
			timer = time.NewTimer(d)
			fire = timer.C
		}
		select {
		case <-s.wake:
		case <-fire:
		case <-ctx.Done():
			s.Quit(0)
		}
		if timer != nil {
			timer.Stop()
		}
	}

	s.Close()
	s.logger.Debug("scheduler stopped", slog.Int("code", s.ExitCode()))
	return s.ExitCode(), nil
}

// Close unmounts every top-level component and stops all tasks. It is safe
// to call more than once.
func (s *Scheduler) Close() {
	s.cancel()
	if s.err != nil {
		return
	}
	roots := s.roots
	s.roots = nil
	for _, root := range roots {
		root.unmount()
	}
}

// Run mounts typ with props on a new scheduler and runs it until quit.
func Run[P, M any](ctx context.Context, tk toolkit.Toolkit, typ *Type[P, M], props P, opts ...Option) (int, error) {
	s := NewScheduler(tk, opts...)
	if _, err := Mount(s, typ, props); err != nil {
		s.cancel()
		return 1, err
	}
	return s.Run(ctx)
}
