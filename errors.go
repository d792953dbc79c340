// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrClosed is returned by channel operations once the channel is closed
	// and, on the receive side, every buffered message has been delivered.
	ErrClosed = errors.New("fiber: channel closed")

	// ErrCancelled is returned by [Fiber.CheckCancel] once the fiber's
	// cancellation flag is set.
	ErrCancelled = errors.New("fiber: cancelled")

	// ErrDeadlock is wrapped by [DeadlockError].
	ErrDeadlock = errors.New("fiber: deadlock")

	// ErrExhausted is the panic value when spawning past the fiber limit.
	ErrExhausted = errors.New("fiber: fiber limit exhausted")

	// ErrRunning is returned by [Scheduler.Run] and [Scheduler.Close] while
	// the scheduler loop is active.
	ErrRunning = errors.New("fiber: scheduler is running")

	// ErrSchedulerClosed reports that the scheduler was closed before the
	// fiber completed.
	ErrSchedulerClosed = errors.New("fiber: scheduler closed")

	// ErrTimeout is returned by [Receiver.RecvTimeout] when no message
	// arrives in time.
	ErrTimeout = errors.New("fiber: timed out")
)

// errUnwound is the panic value used to unwind a fiber's stack when its
// scheduler is closed. It never escapes the fiber boundary.
var errUnwound = errors.New("fiber: unwound")

// Parked describes a suspended fiber in a [DeadlockError].
type Parked struct {
	ID   ID
	Name string
	Wait string
}

// DeadlockError is the panic value raised by [Scheduler.Run] when no fiber
// is runnable and nothing outside the scheduler can make one runnable.
type DeadlockError struct {
	Scheduler string
	Parked    []Parked
}

func (e *DeadlockError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fiber: deadlock in scheduler %q: %d fibers parked", e.Scheduler, len(e.Parked))
	for i, p := range e.Parked {
		if i == 0 {
			b.WriteString(" (")
		} else {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d %q on %s", p.ID, p.Name, p.Wait)
	}
	if len(e.Parked) > 0 {
		b.WriteString(")")
	}
	return b.String()
}

// Unwrap returns [ErrDeadlock].
func (e *DeadlockError) Unwrap() error {
	return ErrDeadlock
}
