// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// Latch is a mutual-exclusion lock for fibers of one scheduler.
//
// A contended Lock suspends the calling fiber rather than the goroutine.
// Unlock hands ownership straight to the longest-waiting fiber, so waiters
// acquire in arrival order and a fiber calling Lock later cannot overtake
// them. The zero value is an unlocked latch.
//
// A Latch is bound to the scheduler of the first fiber that locks it and
// must not be shared across schedulers.
type Latch struct {
	sched   *Scheduler
	owner   *Fiber
	waiters queue[*Fiber]
}

// Guard is proof of holding a [Latch]. Unlock releases it.
type Guard struct {
	latch    *Latch
	released bool
}

// NewLatch returns an unlocked latch.
func NewLatch() *Latch {
	return &Latch{}
}

// Lock acquires l for f, suspending f behind earlier waiters while l is
// held. Locking a latch f already holds panics. A waiter unwound by
// [Scheduler.Close] leaves the queue, passing on ownership it was handed.
func (l *Latch) Lock(f *Fiber) *Guard {
	f.mustBeCurrent("Latch.Lock")
	l.bind(f.sched)
	if l.owner == nil {
		l.owner = f
		return &Guard{latch: l}
	}
	if l.owner == f {
		panic("fiber: latch locked twice by the same fiber")
	}
	l.waiters.push(f)
	acquired := false
	defer func() {
		if !acquired {
			l.abandon(f)
		}
	}()
	f.park(waitLatch)
	acquired = true
	if l.owner != f {
		panic("fiber: latch resumed without ownership")
	}
	return &Guard{latch: l}
}

// TryLock acquires l if it is free. It never suspends.
func (l *Latch) TryLock(f *Fiber) (*Guard, bool) {
	f.mustBeCurrent("Latch.TryLock")
	l.bind(f.sched)
	if l.owner != nil {
		return nil, false
	}
	l.owner = f
	return &Guard{latch: l}, true
}

// Locked reports whether l is held.
func (l *Latch) Locked() bool {
	return l.owner != nil
}

// Owner returns the holder's ID.
func (l *Latch) Owner() (ID, bool) {
	if l.owner == nil {
		return 0, false
	}
	return l.owner.id, true
}

// Waiting returns the number of fibers queued on l.
func (l *Latch) Waiting() int {
	return l.waiters.len()
}

func (l *Latch) bind(s *Scheduler) {
	if l.sched == nil {
		l.sched = s
		return
	}
	if l.sched != s {
		panic("fiber: latch shared across schedulers")
	}
}

// Unlock releases the latch. If fibers are waiting, the head of the queue
// becomes the holder and is made runnable. Unlocking twice panics.
func (g *Guard) Unlock() {
	if g.released {
		panic("fiber: latch guard released twice")
	}
	l := g.latch
	if l.sched.current == nil {
		panic("fiber: latch released outside a fiber")
	}
	g.released = true
	l.handOff()
}

// handOff passes ownership to the first live waiter, or frees l.
func (l *Latch) handOff() {
	for {
		next, ok := l.waiters.pop()
		if !ok {
			l.owner = nil
			return
		}
		if next.State() == StateDead {
			continue
		}
		l.owner = next
		l.sched.ready(next)
		return
	}
}

// abandon withdraws f from l after its wait was unwound.
func (l *Latch) abandon(f *Fiber) {
	if l.owner == f {
		l.handOff()
		return
	}
	l.waiters.remove(f)
}
