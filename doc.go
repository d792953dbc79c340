// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fiber provides a cooperative fiber scheduler and the primitives
// that let fibers exchange data with goroutines outside the scheduler.
//
// # Architecture
//
//   - Fibers: stackful coroutines via [iter.Pull]. A switch is a direct hand-off, so at most one fiber of a [Scheduler] executes at any instant and fibers switch only at explicit suspension points.
//   - Scheduler: [Scheduler.Run] dispatches runnable fibers in FIFO order on the calling goroutine and detects deadlock instead of hanging.
//   - Latch: [Latch] is a FIFO mutual-exclusion lock that suspends fibers, not goroutines, under contention.
//   - Cond: [Cond] is a condition variable for fibers with signal, broadcast and timed waits.
//   - Channel: [NewChannel] creates a bounded channel. Transport is a lock-free MPSC queue via [code.hybscloud.com/lfq]; an atomic slot counter enforces the exact capacity. [Sender.Send] blocks the producing goroutine under backpressure; [Receiver.Recv] and [Receiver.RecvTimeout] suspend the consuming fiber.
//   - Effects: fiber operations as algebraic effects on [code.hybscloud.com/kont], evaluated on a fiber with [Exec].
//
// # Domains
//
// Every operation that suspends takes the running [*Fiber] explicitly and
// panics when called from anywhere else. [Spawn], [Scheduler.Cancel],
// [Scheduler.Wakeup], [Scheduler.Stop], [Handle.Wait] and the [Sender]
// side of a channel are safe from any goroutine.
//
// # Cancellation
//
// Cancellation is cooperative. [Scheduler.Cancel] sets a flag that the
// fiber observes with [Fiber.IsCancelled] or [Fiber.Checkpoint], and wakes
// it if it is parked in [Fiber.Yield], [Fiber.Sleep] or a [Cond] wait. It
// never interrupts a latch, join or channel wait, and a goroutine blocked
// in [Sender.Send] is woken only by free space or Close.
//
// # Example
//
//	s := fiber.New()
//	tx, rx := fiber.NewChannel[int](1)
//	go func() {
//		for i := range 3 {
//			_ = tx.Send(i)
//		}
//		tx.Close()
//	}()
//	h := fiber.Spawn(s, "sum", func(f *fiber.Fiber) int {
//		sum := 0
//		for {
//			v, err := rx.Recv(f)
//			if err != nil {
//				return sum
//			}
//			sum += v
//		}
//	})
//	_ = s.Run(context.Background())
//	sum, _ := h.Wait(context.Background())
package fiber
