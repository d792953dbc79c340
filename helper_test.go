// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber_test

import (
	"context"
	"testing"
	"time"

	"code.hybscloud.com/fiber"
)

// run drives s to completion on the test goroutine.
func run(tb testing.TB, s *fiber.Scheduler) {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		tb.Fatalf("run: %v", err)
	}
}

// wait joins h from outside the scheduler.
func wait[T any](tb testing.TB, h *fiber.Handle[T]) T {
	tb.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := h.Wait(ctx)
	if err != nil {
		tb.Fatalf("wait %q: %v", h.Name(), err)
	}
	return v
}

// catch runs fn and returns the value it panicked with, or nil.
func catch(fn func()) (r any) {
	defer func() { r = recover() }()
	fn()
	return nil
}

// eventually polls cond until it holds or the deadline passes.
func eventually(tb testing.TB, cond func() bool) {
	tb.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			tb.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}
