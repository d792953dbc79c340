// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"code.hybscloud.com/kont"
)

// Loop runs a stateful fiber loop (Cont-world). step returns Left(next) to
// continue or Right(result) to finish. The cancellation flag is read before
// every step: once it is set the loop stops and resumes with Left(state),
// the state the next step would have received.
func Loop[S, A any](initial S, step func(S) kont.Eff[kont.Either[S, A]]) kont.Eff[kont.Either[S, A]] {
	return CancelledBind(func(cancelled bool) kont.Eff[kont.Either[S, A]] {
		if cancelled {
			return kont.Pure(kont.Left[S, A](initial))
		}
		return kont.Bind(step(initial), func(e kont.Either[S, A]) kont.Eff[kont.Either[S, A]] {
			if next, ok := e.GetLeft(); ok {
				return Loop(next, step)
			}
			return kont.Pure(e)
		})
	})
}

// RecvLoop folds every message received from rx into acc and resumes with
// the result once rx is closed and drained (Cont-world).
func RecvLoop[T, A any](rx *Receiver[T], acc A, fold func(A, T) A) kont.Eff[A] {
	return RecvBind(rx,
		func(v T) kont.Eff[A] { return RecvLoop(rx, fold(acc, v), fold) },
		func(error) kont.Eff[A] { return kont.Pure(acc) },
	)
}

func exprLoopUnwind[S, A any](data, data2, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	state := data.(S)
	step := data2.(func(S) kont.Expr[kont.Either[S, A]])
	var result kont.Expr[kont.Either[S, A]]
	if current.(bool) {
		result = kont.ExprReturn(kont.Left[S, A](state))
	} else {
		result = exprLoopStep(state, step)
	}
	return kont.Erased(result.Value), result.Frame
}

// ExprLoop is the Expr-world form of [Loop]: it reads the cancellation flag
// and then runs one step.
func ExprLoop[S, A any](initial S, step func(S) kont.Expr[kont.Either[S, A]]) kont.Expr[kont.Either[S, A]] {
	uf := kont.AcquireUnwindFrame()
	uf.Data1 = initial
	uf.Data2 = step
	uf.Unwind = exprLoopUnwind[S, A]
	ef := kont.AcquireEffectFrame()
	ef.Operation = exprCancelled
	ef.Resume = identityResume
	ef.Next = uf
	return kont.ExprSuspend[kont.Either[S, A]](ef)
}

// exprLoopStep runs step once and continues the loop on Left.
// Fuses ExprBind inline to avoid the type-erasing wrapper closure.
func exprLoopStep[S, A any](state S, step func(S) kont.Expr[kont.Either[S, A]]) kont.Expr[kont.Either[S, A]] {
	m := step(state)
	if _, ok := m.Frame.(kont.ReturnFrame); ok {
		if next, ok := m.Value.GetLeft(); ok {
			return ExprLoop(next, step)
		}
		return kont.ExprReturn(m.Value)
	}
	bf := kont.AcquireBindFrame()
	bf.F = func(a kont.Erased) kont.Expr[kont.Erased] {
		e := a.(kont.Either[S, A])
		if next, ok := e.GetLeft(); ok {
			r := ExprLoop(next, step)
			return kont.Expr[kont.Erased]{Value: kont.Erased(r.Value), Frame: r.Frame}
		}
		return kont.Expr[kont.Erased]{Value: kont.Erased(e), Frame: kont.ReturnFrame{}}
	}
	bf.Next = kont.ReturnFrame{}
	var zero kont.Either[S, A]
	return kont.Expr[kont.Either[S, A]]{
		Value: zero,
		Frame: kont.ChainFrames(m.Frame, bf),
	}
}

// ExprRecvLoop is the Expr-world form of [RecvLoop].
func ExprRecvLoop[T, A any](rx *Receiver[T], acc A, fold func(A, T) A) kont.Expr[A] {
	return ExprRecvBind(rx,
		func(v T) kont.Expr[A] { return ExprRecvLoop(rx, fold(acc, v), fold) },
		func(error) kont.Expr[A] { return kont.ExprReturn(acc) },
	)
}
