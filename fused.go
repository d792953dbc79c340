// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"time"

	"code.hybscloud.com/kont"
)

// YieldThen parks the fiber until woken and then continues with next.
// Fuses Perform(Yield{}) + Then.
func YieldThen[B any](next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Yield{}), next)
}

// RescheduleThen gives up the fiber's turn and then continues with next.
// Fuses Perform(Reschedule{}) + Then.
func RescheduleThen[B any](next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Reschedule{}), next)
}

// SleepThen sleeps for d and then continues with next.
// Fuses Perform(Sleep{Duration: d}) + Then.
func SleepThen[B any](d time.Duration, next kont.Eff[B]) kont.Eff[B] {
	return kont.Then(kont.Perform(Sleep{Duration: d}), next)
}

// CancelledBind reads the cancellation flag and passes it to f.
// Fuses Perform(Cancelled{}) + Bind.
func CancelledBind[B any](f func(bool) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Cancelled{}), f)
}

// RecvBind receives from r and passes the message to onValue, or the
// close error to onClosed.
// Fuses Perform(Recv[T]{From: r}) + Bind + Either branch.
func RecvBind[T, B any](r *Receiver[T], onValue func(T) kont.Eff[B], onClosed func(error) kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Recv[T]{From: r}), func(e kont.Either[error, T]) kont.Eff[B] {
		if v, ok := e.GetRight(); ok {
			return onValue(v)
		}
		err, _ := e.GetLeft()
		return onClosed(err)
	})
}

// LockThen runs body while holding l and releases l when body completes.
// Fuses Perform(Lock{Latch: l}) + Bind + Perform(Unlock{}).
func LockThen[B any](l *Latch, body func() kont.Eff[B]) kont.Eff[B] {
	return kont.Bind(kont.Perform(Lock{Latch: l}), func(g *Guard) kont.Eff[B] {
		return kont.Bind(body(), func(b B) kont.Eff[B] {
			return kont.Then(kont.Perform(Unlock{Guard: g}), kont.Pure(b))
		})
	})
}
