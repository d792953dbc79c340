// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "time"

// Cond is a condition variable for fibers of one scheduler.
//
// Wait suspends the calling fiber until Signal or Broadcast readies it. It
// needs no latch around it: fibers switch only at suspension points, so the
// predicate a waiter checks cannot change between the check and the wait.
// A wait also ends on [Fiber.Wakeup] or cancellation, so callers re-check
// the predicate in a loop. The zero value is ready to use.
type Cond struct {
	sched   *Scheduler
	waiters queue[*Fiber]
}

// NewCond returns a condition variable with no waiters.
func NewCond() *Cond {
	return &Cond{}
}

// Wait suspends f until the condition is signalled or f is woken.
func (c *Cond) Wait(f *Fiber) {
	f.mustBeCurrent("Cond.Wait")
	c.wait(f)
}

// WaitTimeout is [Cond.Wait] bounded by d. It reports false if d elapsed
// first. A non-positive d reports false without suspending.
func (c *Cond) WaitTimeout(f *Fiber, d time.Duration) bool {
	f.mustBeCurrent("Cond.WaitTimeout")
	if d <= 0 {
		return false
	}
	f.timedOut = false
	t := f.sched.timers.add(f, time.Now().Add(d))
	c.wait(f)
	f.sched.timers.remove(t)
	timedOut := f.timedOut
	f.timedOut = false
	return !timedOut
}

func (c *Cond) wait(f *Fiber) {
	c.bind(f.sched)
	c.waiters.push(f)
	defer c.waiters.remove(f)
	f.park(waitCond)
}

// Signal readies the longest-waiting fiber. It never suspends and does
// nothing when no fiber waits.
func (c *Cond) Signal() {
	if c.checkDomain() {
		for {
			f, ok := c.waiters.pop()
			if !ok {
				return
			}
			if c.parked(f) {
				c.sched.ready(f)
				return
			}
		}
	}
}

// Broadcast readies every waiting fiber. It never suspends.
func (c *Cond) Broadcast() {
	if c.checkDomain() {
		for {
			f, ok := c.waiters.pop()
			if !ok {
				return
			}
			if c.parked(f) {
				c.sched.ready(f)
			}
		}
	}
}

// Waiting returns the number of fibers waiting on c.
func (c *Cond) Waiting() int {
	return c.waiters.len()
}

// parked reports whether f still waits on c. A waiter that was already
// woken keeps its queue entry until it resumes.
func (c *Cond) parked(f *Fiber) bool {
	return f.State() == StateSuspended && f.wait == waitCond
}

func (c *Cond) checkDomain() bool {
	if c.sched == nil {
		return false
	}
	if c.sched.current == nil {
		panic("fiber: cond signalled outside a fiber")
	}
	return true
}

func (c *Cond) bind(s *Scheduler) {
	if c.sched == nil {
		c.sched = s
		return
	}
	if c.sched != s {
		panic("fiber: cond shared across schedulers")
	}
}
