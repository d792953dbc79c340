// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"time"

	"code.hybscloud.com/kont"
)

// fiberDispatcher is the structural interface for fiber effects.
// DispatchFiber runs on the fiber and may suspend it.
type fiberDispatcher interface {
	DispatchFiber(f *Fiber) kont.Resumed
}

// fiberHandler implements kont.Handler for fiber effects.
// Value type: passed to evalFrames on the stack, avoiding heap allocation.
type fiberHandler[R any] struct {
	f *Fiber
}

// Dispatch implements kont.Handler via structural interface assertion.
func (h fiberHandler[R]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	fop, ok := op.(fiberDispatcher)
	if !ok {
		panic("fiber: unhandled effect in fiberHandler")
	}
	return fop.DispatchFiber(h.f), true
}

// Exec evaluates a Cont-world effect computation on the running fiber f.
// Effects suspend f exactly as the corresponding methods do.
func Exec[R any](f *Fiber, m kont.Eff[R]) R {
	f.mustBeCurrent("Exec")
	return kont.Handle(m, fiberHandler[R]{f: f})
}

// ExecExpr evaluates an Expr-world effect computation on the running fiber f.
func ExecExpr[R any](f *Fiber, m kont.Expr[R]) R {
	f.mustBeCurrent("ExecExpr")
	return kont.HandleExpr(m, fiberHandler[R]{f: f})
}

// SpawnEff spawns a fiber whose body is the effect computation m.
func SpawnEff[R any](on Spawner, name string, m kont.Eff[R], opts ...SpawnOption) *Handle[R] {
	return Spawn(on, name, func(f *Fiber) R { return Exec(f, m) }, opts...)
}

// Yield is the effect for [Fiber.Yield].
type Yield struct {
	kont.Phantom[struct{}]
}

// DispatchFiber parks f until it is woken.
func (Yield) DispatchFiber(f *Fiber) kont.Resumed {
	f.Yield()
	return struct{}{}
}

// Reschedule is the effect for [Fiber.Reschedule].
type Reschedule struct {
	kont.Phantom[struct{}]
}

// DispatchFiber gives up f's turn.
func (Reschedule) DispatchFiber(f *Fiber) kont.Resumed {
	f.Reschedule()
	return struct{}{}
}

// Sleep is the effect for [Fiber.Sleep].
type Sleep struct {
	kont.Phantom[struct{}]
	Duration time.Duration
}

// DispatchFiber suspends f for s.Duration.
func (s Sleep) DispatchFiber(f *Fiber) kont.Resumed {
	f.Sleep(s.Duration)
	return struct{}{}
}

// Cancelled is the effect that reads the fiber's cancellation flag.
type Cancelled struct {
	kont.Phantom[bool]
}

// DispatchFiber reports [Fiber.IsCancelled]. Never suspends.
func (Cancelled) DispatchFiber(f *Fiber) kont.Resumed {
	return f.IsCancelled()
}

// Recv is the effect for [Receiver.Recv]. It resumes with Right(message),
// or Left(ErrClosed) once the channel is closed and drained.
type Recv[T any] struct {
	kont.Phantom[kont.Either[error, T]]
	From *Receiver[T]
}

// DispatchFiber receives from r.From, suspending f while it is empty.
func (r Recv[T]) DispatchFiber(f *Fiber) kont.Resumed {
	v, err := r.From.Recv(f)
	if err != nil {
		return kont.Left[error, T](err)
	}
	return kont.Right[error, T](v)
}

// Lock is the effect for [Latch.Lock].
type Lock struct {
	kont.Phantom[*Guard]
	Latch *Latch
}

// DispatchFiber acquires l.Latch, suspending f while it is contended.
func (l Lock) DispatchFiber(f *Fiber) kont.Resumed {
	return l.Latch.Lock(f)
}

// Unlock is the effect for [Guard.Unlock].
type Unlock struct {
	kont.Phantom[struct{}]
	Guard *Guard
}

// DispatchFiber releases u.Guard. Never suspends.
func (u Unlock) DispatchFiber(*Fiber) kont.Resumed {
	u.Guard.Unlock()
	return struct{}{}
}

// Checkpoint is the effect for [Fiber.Checkpoint]. It resumes with nil, or
// [ErrCancelled] once the fiber is cancelled.
type Checkpoint struct {
	kont.Phantom[error]
}

// DispatchFiber gives up f's turn and reads its cancellation flag.
func (Checkpoint) DispatchFiber(f *Fiber) kont.Resumed {
	return f.Checkpoint()
}

// Wait is the effect for [Cond.Wait] and, with a positive Timeout, for
// [Cond.WaitTimeout]. It resumes with false only when Timeout elapsed.
type Wait struct {
	kont.Phantom[bool]
	Cond    *Cond
	Timeout time.Duration
}

// DispatchFiber suspends f on w.Cond.
func (w Wait) DispatchFiber(f *Fiber) kont.Resumed {
	if w.Timeout > 0 {
		return w.Cond.WaitTimeout(f, w.Timeout)
	}
	w.Cond.Wait(f)
	return true
}
