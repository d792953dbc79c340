// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

// queue is an unbounded FIFO owned by a single domain.
// It is not safe for concurrent use.
type queue[T comparable] struct {
	buf  []T
	head int
}

func (q *queue[T]) len() int {
	return len(q.buf) - q.head
}

func (q *queue[T]) push(v T) {
	q.buf = append(q.buf, v)
}

func (q *queue[T]) pop() (T, bool) {
	var zero T
	if q.head == len(q.buf) {
		return zero, false
	}
	v := q.buf[q.head]
	q.buf[q.head] = zero
	q.head++
	switch {
	case q.head == len(q.buf):
		q.buf = q.buf[:0]
		q.head = 0
	case q.head >= 64 && 2*q.head >= len(q.buf):
		n := copy(q.buf, q.buf[q.head:])
		clear(q.buf[n:])
		q.buf = q.buf[:n]
		q.head = 0
	}
	return v, true
}

// remove deletes the first occurrence of v and reports whether it was found.
func (q *queue[T]) remove(v T) bool {
	for i := q.head; i < len(q.buf); i++ {
		if q.buf[i] != v {
			continue
		}
		copy(q.buf[i:], q.buf[i+1:])
		var zero T
		q.buf[len(q.buf)-1] = zero
		q.buf = q.buf[:len(q.buf)-1]
		return true
	}
	return false
}

func (q *queue[T]) reset() {
	clear(q.buf)
	q.buf = q.buf[:0]
	q.head = 0
}
