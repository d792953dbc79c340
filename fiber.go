// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"iter"
	"time"

	"code.hybscloud.com/atomix"
	"github.com/sourcegraph/conc/panics"
)

// State is the scheduling state of a fiber.
// Cancellation is not a state: it is the orthogonal flag reported by
// [Fiber.IsCancelled].
type State uint32

const (
	// StateRunnable fibers wait in the run queue.
	StateRunnable State = iota
	// StateRunning is the one fiber currently dispatched.
	StateRunning
	// StateSuspended fibers are parked until an event readies them.
	StateSuspended
	// StateDead fibers have returned and been reaped.
	StateDead
)

func (s State) String() string {
	switch s {
	case StateRunnable:
		return "runnable"
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// waitKind records why a suspended fiber is parked.
type waitKind uint8

const (
	waitNone waitKind = iota
	waitYield
	waitSleep
	waitLatch
	waitJoin
	waitRecv
	waitCond
)

func (w waitKind) String() string {
	switch w {
	case waitYield:
		return "yield"
	case waitSleep:
		return "sleep"
	case waitLatch:
		return "latch"
	case waitJoin:
		return "join"
	case waitRecv:
		return "channel"
	case waitCond:
		return "cond"
	default:
		return "none"
	}
}

// wakeable reports whether Wakeup and Cancel resume a fiber parked on w.
// Latch, join and channel waits are resumed only by their own event or,
// for a timed channel wait, by its deadline.
func (w waitKind) wakeable() bool {
	return w == waitYield || w == waitSleep || w == waitCond
}

// Fiber is a cooperatively scheduled unit of execution with its own stack.
//
// A *Fiber is handed to the fiber's body and is the explicit context for
// every in-domain operation: suspending, sleeping, locking a [Latch],
// receiving from a [Receiver] and joining another fiber. Those operations
// panic when f is not the fiber the scheduler is currently running.
type Fiber struct {
	id        ID
	name      string
	sched     *Scheduler
	detached  bool
	state     atomix.Uint32
	cancelled atomix.Uint32

	// Owned by the scheduler domain.
	wait     waitKind
	woken    bool
	timedOut bool
	switches uint64
	goid     uint64
	joiners  []*Fiber
	started  bool
	unwound  bool
	panicked *panics.Recovered

	body   func(*Fiber)
	settle func(rec *panics.Recovered, unwound bool)

	next  func() (struct{}, bool)
	stop  func()
	yield func(struct{}) bool
}

func newFiber(s *Scheduler, name string, detached bool) *Fiber {
	f := &Fiber{id: nextID(), name: name, sched: s, detached: detached}
	f.next, f.stop = iter.Pull[struct{}](f.main)
	return f
}

// main is the coroutine body. Panics are captured so that the coroutine
// always returns to the scheduler; the scheduler decides where they go.
func (f *Fiber) main(yield func(struct{}) bool) {
	f.yield = yield
	f.started = true
	f.goid = goroutineID()
	f.sched.curGoid.Store(f.goid)
	var pc panics.Catcher
	pc.Try(func() { f.body(f) })
	if rec := pc.Recovered(); rec != nil {
		if rec.Value == errUnwound {
			f.unwound = true
		} else {
			f.panicked = rec
		}
	}
}

// ID returns the fiber's identifier.
func (f *Fiber) ID() ID {
	return f.id
}

// Name returns the fiber's human-readable name. Names need not be unique.
func (f *Fiber) Name() string {
	return f.name
}

// SetName renames the running fiber.
func (f *Fiber) SetName(name string) {
	f.mustBeCurrent("SetName")
	f.name = name
}

// Scheduler returns the scheduler that owns f.
func (f *Fiber) Scheduler() *Scheduler {
	return f.sched
}

// State returns the fiber's current scheduling state.
func (f *Fiber) State() State {
	return State(f.state.Load())
}

// IsCancelled reports whether [Scheduler.Cancel] has been called for f.
// It is the cooperative checkpoint: nothing else stops a fiber.
func (f *Fiber) IsCancelled() bool {
	return f.cancelled.Load() != 0
}

// CheckCancel returns [ErrCancelled] once f is cancelled.
func (f *Fiber) CheckCancel() error {
	if f.IsCancelled() {
		return ErrCancelled
	}
	return nil
}

// Switches returns how many times f has been switched in by its scheduler.
// It is read from inside f; see [CheckYield].
func (f *Fiber) Switches() uint64 {
	return f.switches
}

// Yield suspends the running fiber until something wakes it: an explicit
// [Fiber.Wakeup] or [Scheduler.Wakeup], or cancellation. A wakeup that
// reached f while it was running or runnable is remembered, and Yield then
// only gives up the turn. A fiber that yields with nothing left to wake it
// is reported as a deadlock by [Scheduler.Run].
func (f *Fiber) Yield() {
	f.mustBeCurrent("Yield")
	f.park(waitYield)
}

// Reschedule gives up the rest of the fiber's turn. The fiber stays
// runnable and resumes after every fiber already in the run queue.
// A remembered wakeup is consumed.
func (f *Fiber) Reschedule() {
	f.mustBeCurrent("Reschedule")
	f.requeue()
}

// Checkpoint gives up the rest of the turn like [Fiber.Reschedule] and then
// returns [ErrCancelled] if f has been cancelled.
func (f *Fiber) Checkpoint() error {
	f.mustBeCurrent("Checkpoint")
	f.requeue()
	return f.CheckCancel()
}

// Sleep suspends the running fiber for at least d. Wakeup and Cancel end
// the sleep early; callers that care check [Fiber.IsCancelled] afterwards.
// A non-positive d behaves like [Fiber.Reschedule].
func (f *Fiber) Sleep(d time.Duration) {
	f.mustBeCurrent("Sleep")
	if d <= 0 {
		f.Reschedule()
		return
	}
	t := f.sched.timers.add(f, time.Now().Add(d))
	f.park(waitSleep)
	f.sched.timers.remove(t)
}

// Wakeup readies the fiber id if it is parked in Yield, Sleep or a
// [Cond] wait. For a fiber that is running or runnable, f itself included,
// the wakeup is remembered and ends its next such wait at once. It is a
// no-op for fibers that are dead or waiting on a latch, a join or a channel.
func (f *Fiber) Wakeup(id ID) {
	f.mustBeCurrent("Wakeup")
	f.sched.wake(id)
}

// CheckYield calls fn on the running fiber f and reports whether f was
// switched out while fn ran.
func CheckYield[T any](f *Fiber, fn func() T) (T, bool) {
	f.mustBeCurrent("CheckYield")
	before := f.switches
	v := fn()
	return v, f.switches != before
}

func (f *Fiber) spawnTarget() (*Scheduler, bool) {
	f.mustBeCurrent("Spawn")
	return f.sched, true
}

func (f *Fiber) mustBeCurrent(op string) {
	if f == nil || f.sched.current != f {
		panic("fiber: " + op + " called outside the running fiber")
	}
}

// park suspends f with reason w until the scheduler readies it. A
// remembered wakeup turns a wakeable wait into a plain reschedule.
func (f *Fiber) park(w waitKind) {
	if f.woken && w.wakeable() {
		f.requeue()
		return
	}
	s := f.sched
	f.wait = w
	if w == waitRecv {
		s.recvParked++
	}
	f.state.Store(uint32(StateSuspended))
	s.stats.parks.Add(1)
	f.switchOut()
}

func (f *Fiber) requeue() {
	f.woken = false
	f.state.Store(uint32(StateRunnable))
	f.sched.runq.push(f)
	f.switchOut()
}

// switchOut hands control back to the scheduler loop. When the scheduler
// is closed the coroutine is resumed with yield reporting false, and the
// fiber's stack is unwound so its deferred calls run.
func (f *Fiber) switchOut() {
	if !f.yield(struct{}{}) {
		panic(errUnwound)
	}
}
