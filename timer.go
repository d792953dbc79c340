// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import (
	"container/heap"
	"time"
)

// timer is a sleep deadline for one fiber.
type timer struct {
	when  time.Time
	fiber *Fiber
	index int
}

// timerHeap is a min-heap of sleep deadlines.
type timerHeap []*timer

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].when.Before(h[j].when) }

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

func (h *timerHeap) add(f *Fiber, when time.Time) *timer {
	t := &timer{when: when, fiber: f}
	heap.Push(h, t)
	return t
}

// remove drops t if it has not fired yet.
func (h *timerHeap) remove(t *timer) {
	if t.index >= 0 {
		heap.Remove(h, t.index)
	}
}

func (h timerHeap) deadline() (time.Time, bool) {
	if len(h) == 0 {
		return time.Time{}, false
	}
	return h[0].when, true
}

// expire pops every timer due at now and passes its fiber to fire.
func (h *timerHeap) expire(now time.Time, fire func(*Fiber)) {
	for len(*h) > 0 && !(*h)[0].when.After(now) {
		t := heap.Pop(h).(*timer)
		fire(t.fiber)
	}
}
