// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"sync"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfq"
)

// channel is the shared state of a cross-domain channel.
//
// Messages travel through a bounded lock-free MPSC queue. slots counts
// claimed plus buffered messages and never exceeds capacity; a sender
// claims a slot before enqueueing and the receiver frees one after each
// dequeue. Senders that find no free slot sleep on cond. The receive side
// belongs to one scheduler, recorded in sched under mu: waiters is touched
// only on its loop, and armed tells producers that a waiter needs a notify
// event.
type channel[T any] struct {
	q        lfq.MPSC[T]
	capacity int64
	slots    atomix.Int64
	closed   atomix.Uint32

	mu      sync.Mutex
	cond    sync.Cond
	blocked atomix.Int64

	armed   atomix.Uint32
	sched   *Scheduler
	waiters queue[*Fiber]
}

// Sender is the producer side of a cross-domain channel. It may be used
// from any goroutine, including ones that host no scheduler, and may be
// shared by many producers.
type Sender[T any] struct {
	ch *channel[T]
}

// Receiver is the consumer side of a cross-domain channel. It is used only
// from fibers of a single scheduler.
type Receiver[T any] struct {
	ch *channel[T]
}

// NewChannel creates a channel that buffers up to capacity messages.
// It panics if capacity is less than 1.
func NewChannel[T any](capacity int) (*Sender[T], *Receiver[T]) {
	if capacity < 1 {
		panic("fiber: channel capacity must be at least 1")
	}
	ch := &channel[T]{capacity: int64(capacity)}
	// lfq rounds the ring size; the slot counter enforces the exact capacity.
	ch.q.Init(max(capacity, 2))
	ch.cond.L = &ch.mu
	return &Sender[T]{ch: ch}, &Receiver[T]{ch: ch}
}

// Send enqueues v, blocking the calling goroutine while the buffer is full.
// It returns [ErrClosed] if the channel is closed before v is enqueued.
//
// Send is the one operation that blocks an OS thread. It is woken only by
// free space or Close, never by cancellation of the receiving fiber. A
// fiber of the receiving scheduler that finds the buffer full panics
// instead of blocking the loop that would drain it.
func (s *Sender[T]) Send(v T) error {
	c := s.ch
	if c.closed.Load() != 0 {
		return ErrClosed
	}
	if !c.claim() {
		c.mu.Lock()
		if c.sched != nil && c.sched.inFiber() {
			c.mu.Unlock()
			panic("fiber: Send on a full channel from the receiving scheduler")
		}
		c.blocked.Add(1)
		for !c.claim() {
			if c.closed.Load() != 0 {
				c.blocked.Add(-1)
				c.mu.Unlock()
				return ErrClosed
			}
			c.cond.Wait()
		}
		c.blocked.Add(-1)
		c.mu.Unlock()
	}
	return c.publish(v)
}

// TrySend enqueues v without blocking. It returns [iox.ErrWouldBlock] when
// the buffer is full and [ErrClosed] once the channel is closed.
func (s *Sender[T]) TrySend(v T) error {
	c := s.ch
	if c.closed.Load() != 0 {
		return ErrClosed
	}
	if !c.claim() {
		return iox.ErrWouldBlock
	}
	return c.publish(v)
}

// Close closes the channel. It is idempotent.
func (s *Sender[T]) Close() {
	s.ch.close()
}

// Len returns the number of buffered messages, counting sends that have
// claimed a slot and are completing.
func (s *Sender[T]) Len() int {
	return int(s.ch.slots.Load())
}

// Cap returns the channel capacity.
func (s *Sender[T]) Cap() int {
	return int(s.ch.capacity)
}

// Recv dequeues the next message, suspending f while the buffer is empty.
// Messages buffered before Close are still delivered; after them Recv
// returns [ErrClosed].
func (r *Receiver[T]) Recv(f *Fiber) (T, error) {
	f.mustBeCurrent("Receiver.Recv")
	return r.recv(f, nil)
}

// RecvTimeout is [Receiver.Recv] bounded by d. It returns [ErrTimeout] if
// no message arrives within d; a non-positive d never suspends.
func (r *Receiver[T]) RecvTimeout(f *Fiber, d time.Duration) (T, error) {
	f.mustBeCurrent("Receiver.RecvTimeout")
	if d <= 0 {
		v, err := r.TryRecv(f)
		if iox.IsWouldBlock(err) {
			err = ErrTimeout
		}
		return v, err
	}
	f.timedOut = false
	t := f.sched.timers.add(f, time.Now().Add(d))
	defer f.sched.timers.remove(t)
	return r.recv(f, t)
}

// recv parks f until a message arrives, the channel closes, or the timer
// t, when set, fires.
func (r *Receiver[T]) recv(f *Fiber, t *timer) (T, error) {
	c := r.ch
	c.bind(f.sched)
	for {
		if v, err := c.take(); err == nil {
			return v, nil
		}
		if c.closed.Load() != 0 {
			return c.drainClosed()
		}
		c.waiters.push(f)
		c.armed.Store(1)
		if v, err := c.take(); err == nil {
			c.waiters.remove(f)
			return v, nil
		}
		if c.closed.Load() != 0 {
			c.waiters.remove(f)
			return c.drainClosed()
		}
		f.park(waitRecv)
		if t != nil && f.timedOut {
			f.timedOut = false
			c.waiters.remove(f)
			if v, err := c.take(); err == nil {
				return v, nil
			}
			var zero T
			return zero, ErrTimeout
		}
	}
}

// TryRecv dequeues the next message without suspending. It returns
// [iox.ErrWouldBlock] when the buffer is empty and [ErrClosed] once the
// channel is closed and drained.
func (r *Receiver[T]) TryRecv(f *Fiber) (T, error) {
	f.mustBeCurrent("Receiver.TryRecv")
	c := r.ch
	c.bind(f.sched)
	v, err := c.take()
	if err == nil {
		return v, nil
	}
	if c.closed.Load() != 0 {
		return c.drainClosed()
	}
	return v, iox.ErrWouldBlock
}

// Close closes the channel. It is idempotent.
func (r *Receiver[T]) Close() {
	r.ch.close()
}

// Len returns the number of buffered messages.
func (r *Receiver[T]) Len() int {
	return int(r.ch.slots.Load())
}

// Cap returns the channel capacity.
func (r *Receiver[T]) Cap() int {
	return int(r.ch.capacity)
}

func (c *channel[T]) claim() bool {
	for {
		n := c.slots.Load()
		if n >= c.capacity {
			return false
		}
		if c.slots.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// publish enqueues v into a claimed slot. The ring holds at least as many
// messages as there are claimed slots, so Enqueue only backs off while the
// consumer finishes releasing a ring cell.
func (c *channel[T]) publish(v T) error {
	if c.closed.Load() != 0 {
		c.slots.Add(-1)
		return ErrClosed
	}
	var bo iox.Backoff
	for c.q.Enqueue(&v) != nil {
		bo.Wait()
	}
	c.signal()
	return nil
}

func (c *channel[T]) take() (T, error) {
	v, err := c.q.Dequeue()
	if err != nil {
		return v, err
	}
	c.slots.Add(-1)
	if c.blocked.Load() > 0 {
		c.mu.Lock()
		c.cond.Signal()
		c.mu.Unlock()
	}
	return v, nil
}

// drainClosed delivers messages whose senders claimed a slot before Close
// and are still enqueueing, then reports ErrClosed.
func (c *channel[T]) drainClosed() (T, error) {
	var bo iox.Backoff
	for c.slots.Load() > 0 {
		if v, err := c.take(); err == nil {
			return v, nil
		}
		bo.Wait()
	}
	var zero T
	return zero, ErrClosed
}

// signal posts a notify event when a receiver is parked. The receiver
// binds c.sched before it arms.
func (c *channel[T]) signal() {
	if c.armed.CompareAndSwap(1, 0) {
		c.mu.Lock()
		s := c.sched
		c.mu.Unlock()
		s.inbox.post(event{kind: evNotify, target: c})
	}
}

// notify runs on the receiving scheduler's loop and readies every parked
// receiver; those that find the buffer empty park again.
func (c *channel[T]) notify(s *Scheduler) {
	for {
		f, ok := c.waiters.pop()
		if !ok {
			return
		}
		s.ready(f)
	}
}

func (c *channel[T]) close() {
	if !c.closed.CompareAndSwap(0, 1) {
		return
	}
	c.mu.Lock()
	c.cond.Broadcast()
	c.mu.Unlock()
	c.signal()
}

func (c *channel[T]) bind(s *Scheduler) {
	if c.sched == s {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sched != nil {
		panic("fiber: receiver used from two schedulers")
	}
	c.sched = s
}
