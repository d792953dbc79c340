// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"code.hybscloud.com/kont"
)

// fiberErrorHandler handles both fiber and error effects.
// Fiber ops run on the fiber and may suspend it. Error ops short-circuit on Throw.
type fiberErrorHandler[E, A any] struct {
	f      *Fiber
	errCtx *kont.ErrorContext[E]
}

// Dispatch implements kont.Handler for the composed Fiber+Error handler.
// Dispatch order: Fiber → Error.
func (h fiberErrorHandler[E, A]) Dispatch(op kont.Operation) (kont.Resumed, bool) {
	if fop, ok := op.(fiberDispatcher); ok {
		return fop.DispatchFiber(h.f), true
	}
	if eop, ok := op.(interface {
		DispatchError(ctx *kont.ErrorContext[E]) (kont.Resumed, bool)
	}); ok {
		v, _ := eop.DispatchError(h.errCtx)
		if h.errCtx.HasErr {
			return kont.Left[E, A](h.errCtx.Err), false
		}
		return v, true
	}
	panic("fiber: unhandled effect in fiberErrorHandler")
}

// ExecError evaluates a computation with fiber and error effects on the
// running fiber f. Returns Either[E, R]: Right on success, Left on Throw.
func ExecError[E, R any](f *Fiber, m kont.Eff[R]) kont.Either[E, R] {
	f.mustBeCurrent("ExecError")
	wrapped := kont.Map[kont.Resumed, R, kont.Either[E, R]](m, func(r R) kont.Either[E, R] {
		return kont.Right[E, R](r)
	})
	var errCtx kont.ErrorContext[E]
	h := fiberErrorHandler[E, R]{f: f, errCtx: &errCtx}
	return kont.Handle(wrapped, h)
}

// ExecErrorExpr is the Expr-world form of [ExecError].
func ExecErrorExpr[E, R any](f *Fiber, m kont.Expr[R]) kont.Either[E, R] {
	f.mustBeCurrent("ExecErrorExpr")
	wrapped := kont.ExprMap(m, func(r R) kont.Either[E, R] {
		return kont.Right[E, R](r)
	})
	var errCtx kont.ErrorContext[E]
	h := fiberErrorHandler[E, R]{f: f, errCtx: &errCtx}
	return kont.HandleExpr(wrapped, h)
}
