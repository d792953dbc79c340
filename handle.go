// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"context"

	"code.hybscloud.com/atomix"
	"github.com/sourcegraph/conc/panics"
)

// Spawner is where a new fiber is spawned from.
// A [*Scheduler] spawns from any goroutine; the fiber is admitted on the
// scheduler's next turn. A [*Fiber] spawns from inside the running fiber
// and queues the new fiber directly.
type Spawner interface {
	spawnTarget() (s *Scheduler, inDomain bool)
}

// SpawnOption configures a spawned fiber.
type SpawnOption func(*spawnOptions)

type spawnOptions struct {
	detached bool
}

// Detached makes the fiber non-joinable. Its result is discarded and it is
// reclaimed as soon as it returns.
func Detached() SpawnOption {
	return func(o *spawnOptions) { o.detached = true }
}

// Spawn creates a runnable fiber named name that runs body.
// Spawning panics with [ErrExhausted] past the scheduler's fiber limit and
// with [ErrSchedulerClosed] on a closed scheduler.
func Spawn[T any](on Spawner, name string, body func(*Fiber) T, opts ...SpawnOption) *Handle[T] {
	var so spawnOptions
	for _, opt := range opts {
		opt(&so)
	}
	s, inDomain := on.spawnTarget()
	s.reserve(name)
	f := newFiber(s, name, so.detached)
	h := &Handle[T]{id: f.id, name: name, sched: s}
	if so.detached {
		f.body = func(f *Fiber) { body(f) }
		f.settle = func(*panics.Recovered, bool) {}
	} else {
		c := &cell[T]{done: make(chan struct{})}
		f.body = func(f *Fiber) { c.value = body(f) }
		f.settle = c.settle
		h.cell = c
	}
	s.admit(f, inDomain)
	return h
}

// Go spawns a detached fiber running body.
func Go(on Spawner, name string, body func(*Fiber), opts ...SpawnOption) *Handle[struct{}] {
	opts = append(opts[:len(opts):len(opts)], Detached())
	return Spawn(on, name, func(f *Fiber) struct{} {
		body(f)
		return struct{}{}
	}, opts...)
}

// cell holds the outcome of a joinable fiber. It outlives the fiber.
type cell[T any] struct {
	done     chan struct{}
	value    T
	panicked *panics.Recovered
	unwound  bool
	joined   atomix.Uint32
}

func (c *cell[T]) settle(rec *panics.Recovered, unwound bool) {
	c.panicked = rec
	c.unwound = unwound
	close(c.done)
}

func (c *cell[T]) isDone() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Handle refers to a spawned fiber by ID. It stays valid after the fiber
// is reaped.
type Handle[T any] struct {
	id    ID
	name  string
	sched *Scheduler
	cell  *cell[T]
}

// ID returns the fiber's identifier.
func (h *Handle[T]) ID() ID {
	return h.id
}

// Name returns the name the fiber was spawned with.
func (h *Handle[T]) Name() string {
	return h.name
}

// Joinable reports whether the fiber may be joined.
func (h *Handle[T]) Joinable() bool {
	return h.cell != nil
}

// State returns the fiber's scheduling state, or [StateDead] once it has
// been reaped.
func (h *Handle[T]) State() State {
	if f := h.sched.lookup(h.id); f != nil {
		return f.State()
	}
	return StateDead
}

// Done returns a channel closed when the fiber is dead. It is nil for
// detached fibers.
func (h *Handle[T]) Done() <-chan struct{} {
	if h.cell == nil {
		return nil
	}
	return h.cell.done
}

// Cancel sets the fiber's cancellation flag. See [Scheduler.Cancel].
func (h *Handle[T]) Cancel() {
	h.sched.Cancel(h.id)
}

// Join suspends cur until the fiber is dead and returns its result.
// cur must be the running fiber of the same scheduler. A panic in the
// joined fiber is re-raised in cur. Joining twice, joining a detached
// fiber and joining oneself panic.
func (h *Handle[T]) Join(cur *Fiber) T {
	cur.mustBeCurrent("Join")
	if cur.sched != h.sched {
		panic("fiber: Join across schedulers, use Wait")
	}
	if cur.id == h.id {
		panic("fiber: fiber joins itself")
	}
	c := h.claim()
	if !c.isDone() {
		if t := h.sched.lookup(h.id); t != nil {
			t.joiners = append(t.joiners, cur)
			cur.park(waitJoin)
		}
	}
	if c.panicked != nil {
		panic(c.panicked.AsError())
	}
	if c.unwound {
		panic(ErrSchedulerClosed)
	}
	return c.value
}

// Wait blocks the calling goroutine until the fiber is dead and returns
// its result. It is the join for callers outside the scheduler. Waiting
// for a live fiber from a fiber of the same scheduler would stall its loop
// and panics; use [Handle.Join] there.
//
// If ctx ends first, Wait returns ctx.Err() and the handle may be joined
// again. It returns [ErrSchedulerClosed] for a fiber unwound by Close and
// re-raises a panic from the fiber. Joining twice or joining a detached
// fiber panics.
func (h *Handle[T]) Wait(ctx context.Context) (T, error) {
	c := h.claim()
	var zero T
	if !c.isDone() && h.sched.inFiber() {
		c.joined.Store(0)
		panic("fiber: Wait called from a fiber of the same scheduler, use Join")
	}
	select {
	case <-c.done:
	case <-ctx.Done():
		c.joined.Store(0)
		return zero, ctx.Err()
	}
	if c.panicked != nil {
		panic(c.panicked.AsError())
	}
	if c.unwound {
		return zero, ErrSchedulerClosed
	}
	return c.value, nil
}

func (h *Handle[T]) claim() *cell[T] {
	if h.cell == nil {
		panic("fiber: join of a detached fiber")
	}
	if !h.cell.joined.CompareAndSwap(0, 1) {
		panic("fiber: fiber joined twice")
	}
	return h.cell
}
