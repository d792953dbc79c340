// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
)

// Scheduler owns a set of fibers and dispatches them one at a time on the
// goroutine that calls [Scheduler.Run].
//
// Fibers switch only at explicit suspension points. Run, Close and every
// in-domain operation are single-threaded; Spawn, Cancel, Wakeup, Stop and
// Stats may be called from any goroutine.
type Scheduler struct {
	name     string
	instance uuid.UUID
	log      *zap.Logger
	opts     options

	running atomix.Uint32
	closed  atomix.Uint32
	curGoid atomix.Uint64
	stats   counters

	// Liveness table. Handles resolve fibers by ID through it, since a
	// fiber's coroutine is released once the fiber is reaped.
	mu   sync.Mutex
	live map[ID]*Fiber

	inbox inbox

	// Owned by the loop domain.
	current    *Fiber
	runq       queue[*Fiber]
	timers     timerHeap
	batch      []event
	admitted   int
	recvParked int
	stopping   bool
	fatal      *panics.Recovered
}

// Stats is a snapshot of scheduler counters.
type Stats struct {
	Spawned  uint64
	Live     int64
	Switches uint64
	Parks    uint64
}

type counters struct {
	spawned  atomix.Uint64
	live     atomix.Int64
	switches atomix.Uint64
	parks    atomix.Uint64
}

// New creates a scheduler. It does nothing until [Scheduler.Run] is called.
func New(opts ...Option) *Scheduler {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	id := uuid.New()
	if o.name == "" {
		o.name = "sched-" + id.String()[:8]
	}
	s := &Scheduler{
		name:     o.name,
		instance: id,
		opts:     o,
		live:     make(map[ID]*Fiber),
	}
	s.log = o.logger.With(zap.String("scheduler", o.name), zap.Stringer("instance", id))
	s.inbox.init()
	return s
}

// Name returns the scheduler name.
func (s *Scheduler) Name() string {
	return s.name
}

// Current returns the running fiber, or nil between dispatches.
// Only meaningful from inside a fiber of s.
func (s *Scheduler) Current() *Fiber {
	return s.current
}

// Stats returns a snapshot of the scheduler counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Spawned:  s.stats.spawned.Load(),
		Live:     s.stats.live.Load(),
		Switches: s.stats.switches.Load(),
		Parks:    s.stats.parks.Load(),
	}
}

// Run drives the scheduler on the calling goroutine.
//
// It returns nil once no fiber is left, unless [WithKeepAlive] is set, in
// which case it serves until ctx ends or [Scheduler.Stop] is called. It
// returns ctx.Err() when ctx ends, and [ErrRunning] if the scheduler is
// already running, including a re-entrant call from one of its fibers.
//
// When fibers are left but none is runnable and nothing external can wake
// one (no pending timer, no fiber waiting on an open channel), Run panics
// with a [*DeadlockError]. A panic in a detached fiber is re-raised from Run.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(0, 1) {
		return ErrRunning
	}
	defer s.running.Store(0)
	if s.closed.Load() != 0 {
		return ErrSchedulerClosed
	}
	s.stopping = false
	for {
		s.drain()
		if s.stopping {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		s.timers.expire(time.Now(), s.fire)
		if f, ok := s.runq.pop(); ok {
			s.dispatch(f)
			continue
		}
		if !s.opts.keepAlive {
			if s.admitted == 0 {
				return nil
			}
			if s.timers.Len() == 0 && s.recvParked == 0 {
				if s.inbox.hasPending() {
					continue
				}
				s.deadlock()
			}
		}
		if err := s.idle(ctx); err != nil {
			return err
		}
	}
}

// Stop asks a running [Scheduler.Run] to return after the current turn.
func (s *Scheduler) Stop() {
	s.inbox.post(event{kind: evStop})
}

// Cancel sets the cancellation flag of fiber id. A fiber parked in Yield
// or Sleep is also woken so that it reaches its next checkpoint; fibers
// waiting on a latch, a join or a channel are left parked. Cancel of an
// unknown or dead fiber is a no-op.
func (s *Scheduler) Cancel(id ID) {
	f := s.lookup(id)
	if f == nil {
		return
	}
	f.cancelled.Store(1)
	s.log.Debug("fiber cancelled", zap.Uint64("fiber", uint64(id)))
	s.inbox.post(event{kind: evCancel, id: id})
}

// Wakeup readies fiber id if it is parked in Yield, Sleep or a [Cond]
// wait, and is remembered by a fiber that is runnable when it lands. It may
// be called from any goroutine; the wake is applied on the scheduler loop.
func (s *Scheduler) Wakeup(id ID) {
	s.inbox.post(event{kind: evWake, id: id})
}

// Close unwinds every fiber that has not finished, running its deferred
// calls, and releases the scheduler. Join cells of unwound fibers complete
// with [ErrSchedulerClosed]. Close returns [ErrRunning] while Run is active.
func (s *Scheduler) Close() error {
	if !s.running.CompareAndSwap(0, 1) {
		return ErrRunning
	}
	defer s.running.Store(0)
	if !s.closed.CompareAndSwap(0, 1) {
		return nil
	}
	s.drain()
	s.mu.Lock()
	fibers := make([]*Fiber, 0, len(s.live))
	for _, f := range s.live {
		fibers = append(fibers, f)
	}
	s.mu.Unlock()
	slices.SortFunc(fibers, func(a, b *Fiber) int { return cmp.Compare(a.id, b.id) })
	for _, f := range fibers {
		s.unwind(f)
	}
	s.runq.reset()
	s.timers = nil
	s.fatal = nil
	s.log.Debug("scheduler closed", zap.Int("unwound", len(fibers)))
	return nil
}

func (s *Scheduler) spawnTarget() (*Scheduler, bool) {
	return s, false
}

// reserve claims a live slot before a fiber's coroutine is created, so a
// rejected spawn allocates nothing.
func (s *Scheduler) reserve(name string) {
	if s.closed.Load() != 0 {
		panic(ErrSchedulerClosed)
	}
	if n := s.stats.live.Add(1); s.opts.maxFibers > 0 && n > int64(s.opts.maxFibers) {
		s.stats.live.Add(-1)
		s.log.Error("fiber limit exhausted", zap.Int("max", s.opts.maxFibers), zap.String("name", name))
		panic(ErrExhausted)
	}
}

// admit registers f, whose slot reserve claimed, and queues it for its
// first dispatch. Close marks s closed before it snapshots the liveness
// table, so a fiber registered here is either unwound by Close or
// rejected and stopped.
func (s *Scheduler) admit(f *Fiber, inDomain bool) {
	s.mu.Lock()
	if s.closed.Load() != 0 {
		s.mu.Unlock()
		s.stats.live.Add(-1)
		f.stop()
		panic(ErrSchedulerClosed)
	}
	s.live[f.id] = f
	s.mu.Unlock()
	s.stats.spawned.Add(1)
	s.log.Debug("fiber spawned",
		zap.Uint64("fiber", uint64(f.id)),
		zap.String("name", f.name),
		zap.Bool("detached", f.detached))
	if inDomain {
		s.enqueue(f)
		return
	}
	s.inbox.post(event{kind: evSpawn, fiber: f})
}

func (s *Scheduler) enqueue(f *Fiber) {
	s.admitted++
	f.state.Store(uint32(StateRunnable))
	s.runq.push(f)
}

func (s *Scheduler) lookup(id ID) *Fiber {
	s.mu.Lock()
	f := s.live[id]
	s.mu.Unlock()
	return f
}

// ready moves a suspended fiber to the run queue tail.
func (s *Scheduler) ready(f *Fiber) {
	if State(f.state.Load()) != StateSuspended {
		return
	}
	if f.wait == waitRecv {
		s.recvParked--
	}
	f.wait = waitNone
	f.state.Store(uint32(StateRunnable))
	s.runq.push(f)
}

func (s *Scheduler) wake(id ID) {
	f := s.lookup(id)
	if f == nil {
		return
	}
	switch State(f.state.Load()) {
	case StateSuspended:
		if f.wait.wakeable() {
			s.ready(f)
		}
	case StateRunnable, StateRunning:
		f.woken = true
	}
}

// fire ends the timed wait of f. Every timed wait removes its timer when it
// resumes, so a due timer always belongs to the wait f is parked in.
func (s *Scheduler) fire(f *Fiber) {
	if State(f.state.Load()) != StateSuspended {
		return
	}
	f.timedOut = true
	s.ready(f)
}

// inFiber reports whether the caller is a fiber s is running. Blocking
// calls made there would stall the loop for good.
func (s *Scheduler) inFiber() bool {
	g := s.curGoid.Load()
	return g != 0 && g == goroutineID()
}

// drain applies the events posted since the last turn.
func (s *Scheduler) drain() {
	batch := s.inbox.swap(s.batch)
	for i := range batch {
		ev := &batch[i]
		switch ev.kind {
		case evSpawn:
			if State(ev.fiber.state.Load()) != StateDead {
				s.enqueue(ev.fiber)
			}
		case evWake, evCancel:
			s.wake(ev.id)
		case evNotify:
			ev.target.notify(s)
		case evStop:
			s.stopping = true
		}
	}
	clear(batch)
	s.batch = batch[:0]
}

func (s *Scheduler) dispatch(f *Fiber) {
	s.current = f
	f.state.Store(uint32(StateRunning))
	f.switches++
	s.stats.switches.Add(1)
	s.curGoid.Store(f.goid)
	_, alive := f.next()
	s.curGoid.Store(0)
	s.current = nil
	if alive {
		return
	}
	s.reap(f)
	if rec := s.fatal; rec != nil {
		s.fatal = nil
		panic(rec.AsError())
	}
}

// reap retires a fiber whose coroutine has returned.
func (s *Scheduler) reap(f *Fiber) {
	if f.wait == waitRecv {
		s.recvParked--
	}
	f.wait = waitNone
	f.state.Store(uint32(StateDead))
	s.mu.Lock()
	delete(s.live, f.id)
	s.mu.Unlock()
	s.stats.live.Add(-1)
	s.admitted--

	rec := f.panicked
	f.settle(rec, f.unwound)
	for _, j := range f.joiners {
		s.ready(j)
	}
	f.joiners = nil
	f.body, f.settle = nil, nil

	switch {
	case rec != nil:
		s.log.Error("fiber panicked",
			zap.Uint64("fiber", uint64(f.id)),
			zap.String("name", f.name),
			zap.String("panic", rec.String()))
		if f.detached {
			s.fatal = rec
		}
	case f.unwound:
		s.log.Debug("fiber unwound", zap.Uint64("fiber", uint64(f.id)), zap.String("name", f.name))
	default:
		s.log.Debug("fiber exited", zap.Uint64("fiber", uint64(f.id)), zap.String("name", f.name))
	}
}

// unwind stops f's coroutine. A started fiber resumes inside its last
// suspension point and unwinds; a fiber that never ran is discarded.
func (s *Scheduler) unwind(f *Fiber) {
	if State(f.state.Load()) == StateDead {
		return
	}
	s.current = f
	f.stop()
	s.current = nil
	if !f.started {
		f.unwound = true
	}
	s.reap(f)
}

func (s *Scheduler) deadlock() {
	err := &DeadlockError{Scheduler: s.name}
	s.mu.Lock()
	for _, f := range s.live {
		if State(f.state.Load()) == StateSuspended {
			err.Parked = append(err.Parked, Parked{ID: f.id, Name: f.name, Wait: f.wait.String()})
		}
	}
	s.mu.Unlock()
	slices.SortFunc(err.Parked, func(a, b Parked) int { return cmp.Compare(a.ID, b.ID) })
	s.log.Error("deadlock detected", zap.Int("parked", len(err.Parked)), zap.Error(err))
	panic(err)
}

// idle blocks the loop until an event is posted, the next timer is due,
// or ctx ends.
func (s *Scheduler) idle(ctx context.Context) error {
	var due <-chan time.Time
	if when, ok := s.timers.deadline(); ok {
		t := time.NewTimer(time.Until(when))
		defer t.Stop()
		due = t.C
	}
	select {
	case <-s.inbox.signal:
	case <-due:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
