// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "sync"

type eventKind uint8

const (
	evSpawn eventKind = iota
	evWake
	evCancel
	evNotify
	evStop
)

// notifier is implemented by objects that need a callback on the
// scheduler loop when an external goroutine changes their state.
type notifier interface {
	notify(s *Scheduler)
}

type event struct {
	kind   eventKind
	id     ID
	fiber  *Fiber
	target notifier
}

// inbox carries events from any goroutine into the scheduler loop.
// Producers append under mu and leave a token in signal so that an idle
// loop wakes up; the loop swaps the pending batch out in one step.
type inbox struct {
	mu     sync.Mutex
	events []event
	signal chan struct{}
}

func (q *inbox) init() {
	q.signal = make(chan struct{}, 1)
}

func (q *inbox) post(ev event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
	select {
	case q.signal <- struct{}{}:
	default:
	}
}

// swap returns the pending events and takes buf as the next buffer.
func (q *inbox) swap(buf []event) []event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return buf[:0]
	}
	out := q.events
	q.events = buf[:0]
	return out
}

func (q *inbox) hasPending() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events) != 0
}
