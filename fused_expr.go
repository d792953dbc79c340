// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"time"

	"code.hybscloud.com/kont"
)

// Pre-allocated erased operations and frames to eliminate heap escapes
// when boxing empty structs into any/kont.Frame during Expr-world execution.
var (
	exprReturnFrame kont.Frame  = kont.ReturnFrame{}
	exprYield       kont.Erased = Yield{}
	exprReschedule  kont.Erased = Reschedule{}
	exprCancelled   kont.Erased = Cancelled{}
)

// identityResume is the identity resume function for EffectFrame construction.
func identityResume(v kont.Erased) kont.Erased { return v }

// exprThen suspends on op and then continues with next.
func exprThen[B any](op kont.Erased, next kont.Expr[B]) kont.Expr[B] {
	tf := kont.AcquireThenFrame()
	tf.Second = kont.Expr[kont.Erased]{Value: kont.Erased(next.Value), Frame: next.Frame}
	tf.Next = exprReturnFrame
	ef := kont.AcquireEffectFrame()
	ef.Operation = op
	ef.Resume = identityResume
	ef.Next = tf
	return kont.ExprSuspend[B](ef)
}

// ExprYieldThen parks the fiber until woken and then continues with next.
// Fuses ExprPerform(Yield{}) + ExprThen.
func ExprYieldThen[B any](next kont.Expr[B]) kont.Expr[B] {
	return exprThen(exprYield, next)
}

// ExprRescheduleThen gives up the fiber's turn and then continues with next.
// Fuses ExprPerform(Reschedule{}) + ExprThen.
func ExprRescheduleThen[B any](next kont.Expr[B]) kont.Expr[B] {
	return exprThen(exprReschedule, next)
}

// ExprSleepThen sleeps for d and then continues with next.
// Fuses ExprPerform(Sleep{Duration: d}) + ExprThen.
func ExprSleepThen[B any](d time.Duration, next kont.Expr[B]) kont.Expr[B] {
	return exprThen(kont.Erased(Sleep{Duration: d}), next)
}

func recvBindUnwind[T, B any](data, data2, _ kont.Erased, current kont.Erased) (kont.Erased, kont.Frame) {
	onValue := data.(func(T) kont.Expr[B])
	onClosed := data2.(func(error) kont.Expr[B])
	e := current.(kont.Either[error, T])
	var result kont.Expr[B]
	if v, ok := e.GetRight(); ok {
		result = onValue(v)
	} else {
		err, _ := e.GetLeft()
		result = onClosed(err)
	}
	return kont.Erased(result.Value), result.Frame
}

// ExprRecvBind receives from r and passes the message to onValue, or the
// close error to onClosed.
// Fuses ExprPerform(Recv[T]{From: r}) + ExprBind + Either branch.
func ExprRecvBind[T, B any](r *Receiver[T], onValue func(T) kont.Expr[B], onClosed func(error) kont.Expr[B]) kont.Expr[B] {
	bf := kont.AcquireUnwindFrame()
	bf.Data1 = onValue
	bf.Data2 = onClosed
	bf.Unwind = recvBindUnwind[T, B]
	ef := kont.AcquireEffectFrame()
	ef.Operation = Recv[T]{From: r}
	ef.Resume = identityResume
	ef.Next = bf
	return kont.ExprSuspend[B](ef)
}
