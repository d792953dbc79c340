// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber_test

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"
	"testing"
	"testing/quick"
	"time"

	"code.hybscloud.com/fiber"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// TestRunOrder verifies that fibers start in spawn order and that
// Reschedule sends the running fiber behind every runnable one.
func TestRunOrder(t *testing.T) {
	s := fiber.New(fiber.WithLogger(zaptest.NewLogger(t)))
	var got []string
	for _, name := range []string{"a", "b", "c"} {
		fiber.Go(s, name, func(f *fiber.Fiber) {
			got = append(got, f.Name()+"1")
			f.Reschedule()
			got = append(got, f.Name()+"2")
		})
	}
	run(t, s)
	want := []string{"a1", "b1", "c1", "a2", "b2", "c2"}
	if !slices.Equal(got, want) {
		t.Fatalf("order: got %v, want %v", got, want)
	}
}

// TestRunEmpty verifies that Run returns at once with no fibers.
func TestRunEmpty(t *testing.T) {
	run(t, fiber.New())
}

// TestYieldWakeup verifies that a yielded fiber stays parked until
// another fiber wakes it.
func TestYieldWakeup(t *testing.T) {
	s := fiber.New()
	var got []string
	a := fiber.Spawn(s, "a", func(f *fiber.Fiber) int {
		got = append(got, "a:park")
		f.Yield()
		got = append(got, "a:resumed")
		return 1
	})
	fiber.Go(s, "b", func(f *fiber.Fiber) {
		f.Reschedule()
		if st := a.State(); st != fiber.StateSuspended {
			t.Errorf("a state: got %v, want suspended", st)
		}
		got = append(got, "b:wake")
		f.Wakeup(a.ID())
	})
	run(t, s)
	want := []string{"a:park", "b:wake", "a:resumed"}
	if !slices.Equal(got, want) {
		t.Fatalf("order: got %v, want %v", got, want)
	}
	if v := wait(t, a); v != 1 {
		t.Fatalf("result: got %d, want 1", v)
	}
}

// TestWakeupSelf verifies that a fiber waking itself ends its next Yield
// and its next Sleep instead of parking.
func TestWakeupSelf(t *testing.T) {
	s := fiber.New()
	h := fiber.Spawn(s, "a", func(f *fiber.Fiber) time.Duration {
		start := time.Now()
		f.Wakeup(f.ID())
		f.Yield()
		f.Wakeup(f.ID())
		f.Sleep(time.Hour)
		return time.Since(start)
	})
	run(t, s)
	if d := wait(t, h); d > time.Minute {
		t.Fatalf("slept %v", d)
	}
}

// TestWakeupRunnableRemembered verifies that a wakeup aimed at a runnable
// fiber ends that fiber's next Yield, and that an unknown ID is ignored.
func TestWakeupRunnableRemembered(t *testing.T) {
	s := fiber.New()
	var got []string
	a := fiber.Go(s, "a", func(f *fiber.Fiber) {
		got = append(got, "a:1")
		f.Reschedule()
		got = append(got, "a:2")
		f.Yield()
		got = append(got, "a:3")
	})
	fiber.Go(s, "b", func(f *fiber.Fiber) {
		if st := a.State(); st != fiber.StateRunnable {
			t.Errorf("a state: got %v, want runnable", st)
		}
		f.Wakeup(a.ID())
		f.Wakeup(fiber.ID(1 << 62))
	})
	run(t, s)
	if want := []string{"a:1", "a:2", "a:3"}; !slices.Equal(got, want) {
		t.Fatalf("order: got %v, want %v", got, want)
	}
}

// TestRescheduleConsumesWakeup verifies that Reschedule uses up a
// remembered wakeup, so a later Yield parks again.
func TestRescheduleConsumesWakeup(t *testing.T) {
	s := fiber.New()
	a := fiber.Go(s, "a", func(f *fiber.Fiber) {
		f.Wakeup(f.ID())
		f.Reschedule()
		f.Yield()
	})
	fiber.Go(s, "b", func(f *fiber.Fiber) {
		f.Reschedule()
		if st := a.State(); st != fiber.StateSuspended {
			t.Errorf("a state: got %v, want suspended", st)
		}
		f.Wakeup(a.ID())
	})
	run(t, s)
}

// TestCheckpoint verifies that Checkpoint gives up the turn and reports
// cancellation.
func TestCheckpoint(t *testing.T) {
	s := fiber.New()
	var got []string
	a := fiber.Spawn(s, "a", func(f *fiber.Fiber) error {
		for {
			got = append(got, "a")
			if err := f.Checkpoint(); err != nil {
				return err
			}
		}
	})
	fiber.Go(s, "b", func(f *fiber.Fiber) {
		got = append(got, "b")
		a.Cancel()
	})
	run(t, s)
	if err := wait(t, a); !errors.Is(err, fiber.ErrCancelled) {
		t.Fatalf("got %v, want ErrCancelled", err)
	}
	if want := []string{"a", "b"}; !slices.Equal(got, want) {
		t.Fatalf("order: got %v, want %v", got, want)
	}
}

// TestCheckYield verifies the per-fiber switch count.
func TestCheckYield(t *testing.T) {
	s := fiber.New()
	type result struct {
		first, idle, resched, sleep bool
		switches                    uint64
	}
	h := fiber.Spawn(s, "a", func(f *fiber.Fiber) result {
		var r result
		r.first = f.Switches() == 1
		_, r.idle = fiber.CheckYield(f, func() int { return 1 })
		_, r.resched = fiber.CheckYield(f, func() struct{} { f.Reschedule(); return struct{}{} })
		_, r.sleep = fiber.CheckYield(f, func() struct{} { f.Sleep(time.Millisecond); return struct{}{} })
		r.switches = f.Switches()
		return r
	})
	run(t, s)
	if r := wait(t, h); !r.first || r.idle || !r.resched || !r.sleep || r.switches != 3 {
		t.Fatalf("got %+v", r)
	}
}

// TestSleep verifies that Sleep suspends a fiber for at least the
// requested duration while other fibers keep running.
func TestSleep(t *testing.T) {
	s := fiber.New()
	const d = 20 * time.Millisecond
	var got []string
	start := time.Now()
	var slept time.Duration
	fiber.Go(s, "sleeper", func(f *fiber.Fiber) {
		f.Sleep(d)
		slept = time.Since(start)
		got = append(got, "sleeper")
	})
	fiber.Go(s, "worker", func(f *fiber.Fiber) {
		got = append(got, "worker")
	})
	run(t, s)
	if slept < d {
		t.Fatalf("slept %v, want at least %v", slept, d)
	}
	if want := []string{"worker", "sleeper"}; !slices.Equal(got, want) {
		t.Fatalf("order: got %v, want %v", got, want)
	}
}

// TestSleepWokenEarly verifies that Wakeup ends a sleep before its timer.
func TestSleepWokenEarly(t *testing.T) {
	s := fiber.New()
	start := time.Now()
	a := fiber.Spawn(s, "a", func(f *fiber.Fiber) time.Duration {
		f.Sleep(time.Hour)
		return time.Since(start)
	})
	fiber.Go(s, "b", func(f *fiber.Fiber) {
		f.Wakeup(a.ID())
	})
	run(t, s)
	if v := wait(t, a); v > time.Minute {
		t.Fatalf("sleep ran for %v", v)
	}
}

// TestSleepNonPositive verifies that Sleep(0) behaves like Reschedule.
func TestSleepNonPositive(t *testing.T) {
	s := fiber.New()
	var got []string
	fiber.Go(s, "a", func(f *fiber.Fiber) {
		f.Sleep(0)
		got = append(got, "a")
	})
	fiber.Go(s, "b", func(f *fiber.Fiber) {
		got = append(got, "b")
	})
	run(t, s)
	if want := []string{"b", "a"}; !slices.Equal(got, want) {
		t.Fatalf("order: got %v, want %v", got, want)
	}
}

// TestInDomainSpawn verifies that a fiber spawned from a fiber joins the
// run queue tail.
func TestInDomainSpawn(t *testing.T) {
	s := fiber.New()
	var got []string
	fiber.Go(s, "parent", func(f *fiber.Fiber) {
		got = append(got, "parent")
		fiber.Go(f, "child", func(*fiber.Fiber) {
			got = append(got, "child")
		})
		f.Reschedule()
		got = append(got, "parent2")
	})
	run(t, s)
	if want := []string{"parent", "child", "parent2"}; !slices.Equal(got, want) {
		t.Fatalf("order: got %v, want %v", got, want)
	}
}

// TestCancelFlag verifies that cancellation is observed only at explicit
// checkpoints and that a fiber ignoring it completes normally.
func TestCancelFlag(t *testing.T) {
	s := fiber.New()
	ignoring := fiber.Spawn(s, "ignoring", func(f *fiber.Fiber) int {
		sum := 0
		for i := range 5 {
			sum += i
			f.Reschedule()
		}
		return sum
	})
	checking := fiber.Spawn(s, "checking", func(f *fiber.Fiber) error {
		for {
			if err := f.CheckCancel(); err != nil {
				return err
			}
			f.Reschedule()
		}
	})
	fiber.Go(s, "canceller", func(f *fiber.Fiber) {
		f.Reschedule()
		ignoring.Cancel()
		checking.Cancel()
	})
	run(t, s)
	if v := wait(t, ignoring); v != 10 {
		t.Fatalf("ignoring: got %d, want 10", v)
	}
	if err := wait(t, checking); !errors.Is(err, fiber.ErrCancelled) {
		t.Fatalf("checking: got %v, want ErrCancelled", err)
	}
}

// TestCancelProperty verifies that a cancelled fiber stops after exactly
// the checkpoint following the cancel, whatever the turn it lands on.
func TestCancelProperty(t *testing.T) {
	f := func(k uint8) bool {
		after := int(k%32) + 1
		s := fiber.New()
		worker := fiber.Spawn(s, "worker", func(f *fiber.Fiber) int {
			n := 0
			for !f.IsCancelled() {
				n++
				f.Reschedule()
			}
			return n
		})
		fiber.Go(s, "canceller", func(f *fiber.Fiber) {
			for range after {
				f.Reschedule()
			}
			worker.Cancel()
		})
		if err := s.Run(context.Background()); err != nil {
			return false
		}
		v, err := worker.Wait(context.Background())
		return err == nil && v == after+1
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

// TestCancelWakesYield verifies that Cancel readies a fiber parked in
// Yield so that it can observe the flag.
func TestCancelWakesYield(t *testing.T) {
	s := fiber.New()
	a := fiber.Spawn(s, "a", func(f *fiber.Fiber) error {
		f.Yield()
		return f.CheckCancel()
	})
	fiber.Go(s, "b", func(f *fiber.Fiber) {
		a.Cancel()
	})
	run(t, s)
	if err := wait(t, a); !errors.Is(err, fiber.ErrCancelled) {
		t.Fatalf("got %v, want ErrCancelled", err)
	}
}

// TestCancelBeforeRun verifies that a fiber cancelled before its first
// dispatch sees the flag on entry.
func TestCancelBeforeRun(t *testing.T) {
	s := fiber.New()
	a := fiber.Spawn(s, "a", func(f *fiber.Fiber) bool {
		return f.IsCancelled()
	})
	a.Cancel()
	run(t, s)
	if !wait(t, a) {
		t.Fatal("cancel flag not set on entry")
	}
}

// TestCancelDoesNotInterruptLatch verifies that a fiber waiting on a
// latch stays parked when cancelled and acquires the latch later.
func TestCancelDoesNotInterruptLatch(t *testing.T) {
	s := fiber.New()
	l := fiber.NewLatch()
	var waiter *fiber.Handle[bool]
	fiber.Go(s, "holder", func(f *fiber.Fiber) {
		g := l.Lock(f)
		waiter = fiber.Spawn(f, "waiter", func(f *fiber.Fiber) bool {
			g := l.Lock(f)
			defer g.Unlock()
			return f.IsCancelled()
		})
		f.Reschedule()
		waiter.Cancel()
		for range 3 {
			f.Reschedule()
		}
		if st := waiter.State(); st != fiber.StateSuspended {
			t.Errorf("waiter state: got %v, want suspended", st)
		}
		g.Unlock()
	})
	run(t, s)
	if !wait(t, waiter) {
		t.Fatal("cancel flag not observed after acquiring")
	}
}

// TestDeadlock verifies that a fiber yielding with nothing to wake it
// makes Run panic with a DeadlockError naming it.
func TestDeadlock(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := fiber.New(fiber.WithName("dl"), fiber.WithLogger(zap.New(core)))
	unwound := false
	h := fiber.Spawn(s, "stuck", func(f *fiber.Fiber) int {
		defer func() { unwound = true }()
		f.Yield()
		return 0
	})
	r := catch(func() { _ = s.Run(context.Background()) })
	err, ok := r.(error)
	if !ok {
		t.Fatalf("panic value: got %v, want error", r)
	}
	if !errors.Is(err, fiber.ErrDeadlock) {
		t.Fatalf("got %v, want ErrDeadlock", err)
	}
	var de *fiber.DeadlockError
	if !errors.As(err, &de) {
		t.Fatalf("got %T, want *DeadlockError", err)
	}
	want := []fiber.Parked{{ID: h.ID(), Name: "stuck", Wait: "yield"}}
	if de.Scheduler != "dl" || !slices.Equal(de.Parked, want) {
		t.Fatalf("deadlock: got %+v", de)
	}
	if n := logs.FilterMessage("deadlock detected").Len(); n != 1 {
		t.Fatalf("deadlock logged %d times", n)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if !unwound {
		t.Fatal("parked fiber not unwound by Close")
	}
	if _, err := h.Wait(context.Background()); !errors.Is(err, fiber.ErrSchedulerClosed) {
		t.Fatalf("wait: got %v, want ErrSchedulerClosed", err)
	}
}

// TestDeadlockLatchJoin verifies detection of a cycle through a latch
// and a join.
func TestDeadlockLatchJoin(t *testing.T) {
	s := fiber.New()
	l := fiber.NewLatch()
	var b *fiber.Handle[struct{}]
	a := fiber.Go(s, "a", func(f *fiber.Fiber) {
		g := l.Lock(f)
		defer g.Unlock()
		b.Join(f)
	})
	b = fiber.Spawn(s, "b", func(f *fiber.Fiber) struct{} {
		l.Lock(f).Unlock()
		return struct{}{}
	})
	r := catch(func() { _ = s.Run(context.Background()) })
	de, ok := r.(*fiber.DeadlockError)
	if !ok {
		t.Fatalf("panic value: got %v, want *DeadlockError", r)
	}
	want := []fiber.Parked{
		{ID: a.ID(), Name: "a", Wait: "join"},
		{ID: b.ID(), Name: "b", Wait: "latch"},
	}
	if !slices.Equal(de.Parked, want) {
		t.Fatalf("parked: got %+v, want %+v", de.Parked, want)
	}
	if !strings.Contains(de.Error(), "2 fibers parked") {
		t.Fatalf("message: %q", de.Error())
	}
	_ = s.Close()
}

// TestKeepAlive verifies that a keep-alive scheduler serves external
// spawns until stopped.
func TestKeepAlive(t *testing.T) {
	s := fiber.New(fiber.WithKeepAlive(true))
	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	for i := range 3 {
		h := fiber.Spawn(s, fmt.Sprintf("job-%d", i), func(f *fiber.Fiber) int {
			f.Reschedule()
			return i * i
		})
		if v := wait(t, h); v != i*i {
			t.Fatalf("job %d: got %d", i, v)
		}
	}
	s.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

// TestKeepAliveContext verifies that Run returns ctx.Err() when ctx ends.
func TestKeepAliveContext(t *testing.T) {
	s := fiber.New(fiber.WithKeepAlive(true))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want DeadlineExceeded", err)
	}
}

// TestStopFromFiber verifies that Stop leaves parked fibers in place for
// a later Run.
func TestStopFromFiber(t *testing.T) {
	s := fiber.New()
	a := fiber.Spawn(s, "a", func(f *fiber.Fiber) string {
		f.Yield()
		return "woken"
	})
	fiber.Go(s, "stopper", func(f *fiber.Fiber) {
		s.Stop()
	})
	run(t, s)
	if st := a.State(); st != fiber.StateSuspended {
		t.Fatalf("state: got %v, want suspended", st)
	}
	s.Wakeup(a.ID())
	run(t, s)
	if v := wait(t, a); v != "woken" {
		t.Fatalf("got %q", v)
	}
}

// TestRunReentrant verifies that Run from inside a fiber is rejected.
func TestRunReentrant(t *testing.T) {
	s := fiber.New()
	h := fiber.Spawn(s, "a", func(f *fiber.Fiber) error {
		return s.Run(context.Background())
	})
	run(t, s)
	if err := wait(t, h); !errors.Is(err, fiber.ErrRunning) {
		t.Fatalf("got %v, want ErrRunning", err)
	}
}

// TestClose verifies that Close unwinds unfinished fibers, running their
// deferred calls, and that the closed scheduler rejects further use.
func TestClose(t *testing.T) {
	s := fiber.New()
	var cleaned []string
	parked := fiber.Spawn(s, "parked", func(f *fiber.Fiber) int {
		defer func() { cleaned = append(cleaned, "parked") }()
		f.Yield()
		return 1
	})
	fiber.Go(s, "stopper", func(f *fiber.Fiber) {
		s.Stop()
	})
	run(t, s)
	fresh := fiber.Spawn(s, "fresh", func(f *fiber.Fiber) int {
		cleaned = append(cleaned, "fresh ran")
		return 2
	})

	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if want := []string{"parked"}; !slices.Equal(cleaned, want) {
		t.Fatalf("cleanup: got %v, want %v", cleaned, want)
	}
	for _, h := range []*fiber.Handle[int]{parked, fresh} {
		if _, err := h.Wait(context.Background()); !errors.Is(err, fiber.ErrSchedulerClosed) {
			t.Fatalf("%s: got %v, want ErrSchedulerClosed", h.Name(), err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := s.Run(context.Background()); !errors.Is(err, fiber.ErrSchedulerClosed) {
		t.Fatalf("run after close: got %v", err)
	}
	r := catch(func() { fiber.Go(s, "late", func(*fiber.Fiber) {}) })
	if r != fiber.ErrSchedulerClosed {
		t.Fatalf("spawn after close: got %v", r)
	}
	if st := s.Stats(); st.Live != 0 {
		t.Fatalf("live after close: %d", st.Live)
	}
}

// TestCloseWhileRunning verifies that Close is rejected during Run.
func TestCloseWhileRunning(t *testing.T) {
	s := fiber.New()
	h := fiber.Spawn(s, "a", func(f *fiber.Fiber) error {
		return s.Close()
	})
	run(t, s)
	if err := wait(t, h); !errors.Is(err, fiber.ErrRunning) {
		t.Fatalf("got %v, want ErrRunning", err)
	}
}

// TestMaxFibers verifies that spawning past the limit panics with
// ErrExhausted and that reaped fibers free their slot.
func TestMaxFibers(t *testing.T) {
	s := fiber.New(fiber.WithMaxFibers(1))
	fiber.Go(s, "one", func(*fiber.Fiber) {})
	r := catch(func() { fiber.Go(s, "two", func(*fiber.Fiber) {}) })
	if r != fiber.ErrExhausted {
		t.Fatalf("got %v, want ErrExhausted", r)
	}
	run(t, s)
	fiber.Go(s, "three", func(*fiber.Fiber) {})
	run(t, s)
	if st := s.Stats(); st.Spawned != 2 {
		t.Fatalf("spawned: got %d, want 2", st.Spawned)
	}
}

// TestRejectedSpawnReleasesNothing verifies that spawns rejected for the
// fiber limit or a closed scheduler leave no goroutine behind.
func TestRejectedSpawnReleasesNothing(t *testing.T) {
	s := fiber.New(fiber.WithMaxFibers(1))
	fiber.Go(s, "one", func(*fiber.Fiber) {})
	before := runtime.NumGoroutine()
	for range 100 {
		if r := catch(func() { fiber.Go(s, "extra", func(*fiber.Fiber) {}) }); r != fiber.ErrExhausted {
			t.Fatalf("got %v, want ErrExhausted", r)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	for range 100 {
		if r := catch(func() { fiber.Go(s, "late", func(*fiber.Fiber) {}) }); r != fiber.ErrSchedulerClosed {
			t.Fatalf("got %v, want ErrSchedulerClosed", r)
		}
	}
	if after := runtime.NumGoroutine(); after-before >= 10 {
		t.Fatalf("goroutines: %d before, %d after", before, after)
	}
	if st := s.Stats(); st.Spawned != 1 || st.Live != 0 {
		t.Fatalf("stats: %+v", st)
	}
}

// TestStats verifies the scheduler counters.
func TestStats(t *testing.T) {
	s := fiber.New()
	for range 2 {
		fiber.Go(s, "w", func(f *fiber.Fiber) {
			f.Reschedule()
		})
	}
	if st := s.Stats(); st.Live != 2 || st.Spawned != 2 {
		t.Fatalf("before run: %+v", st)
	}
	run(t, s)
	st := s.Stats()
	if st.Live != 0 || st.Spawned != 2 || st.Switches != 4 || st.Parks != 0 {
		t.Fatalf("after run: %+v", st)
	}
}

// TestFiberIdentity verifies names, scheduler ownership and Current.
func TestFiberIdentity(t *testing.T) {
	s := fiber.New(fiber.WithName("ident"))
	if s.Name() != "ident" {
		t.Fatalf("name: %q", s.Name())
	}
	h := fiber.Spawn(s, "before", func(f *fiber.Fiber) string {
		if s.Current() != f || f.Scheduler() != s {
			t.Error("fiber not current on its scheduler")
		}
		if f.State() != fiber.StateRunning {
			t.Errorf("state: %v", f.State())
		}
		f.SetName("after")
		return f.Name()
	})
	if h.Name() != "before" {
		t.Fatalf("handle name: %q", h.Name())
	}
	run(t, s)
	if v := wait(t, h); v != "after" {
		t.Fatalf("renamed: got %q", v)
	}
	if s.Current() != nil {
		t.Fatal("current fiber outside Run")
	}
	if fiber.New().Name() == "" {
		t.Fatal("default name empty")
	}
}

// TestOutsideFiberPanics verifies that suspending operations reject a
// fiber that is not the one running.
func TestOutsideFiberPanics(t *testing.T) {
	s := fiber.New()
	var captured *fiber.Fiber
	fiber.Go(s, "a", func(f *fiber.Fiber) { captured = f })
	run(t, s)
	ops := map[string]func(){
		"Yield":      func() { captured.Yield() },
		"Reschedule": func() { captured.Reschedule() },
		"Sleep":      func() { captured.Sleep(time.Millisecond) },
		"Wakeup":     func() { captured.Wakeup(1) },
		"Spawn":      func() { fiber.Go(captured, "x", func(*fiber.Fiber) {}) },
	}
	for name, op := range ops {
		r := catch(op)
		msg, _ := r.(string)
		if !strings.Contains(msg, "outside the running fiber") {
			t.Errorf("%s: got %v", name, r)
		}
	}
}

// TestDetachedPanic verifies that a panic in a detached fiber is
// re-raised from Run after the fiber is reaped.
func TestDetachedPanic(t *testing.T) {
	s := fiber.New()
	fiber.Go(s, "boom", func(*fiber.Fiber) { panic("boom") })
	r := catch(func() { _ = s.Run(context.Background()) })
	if r == nil || !strings.Contains(fmt.Sprint(r), "boom") {
		t.Fatalf("got %v, want boom", r)
	}
	if st := s.Stats(); st.Live != 0 {
		t.Fatalf("live: %d", st.Live)
	}
}

// TestStateString verifies the State names.
func TestStateString(t *testing.T) {
	for st, want := range map[fiber.State]string{
		fiber.StateRunnable:  "runnable",
		fiber.StateRunning:   "running",
		fiber.StateSuspended: "suspended",
		fiber.StateDead:      "dead",
		fiber.State(99):      "unknown",
	} {
		if st.String() != want {
			t.Errorf("%d: got %q, want %q", st, st.String(), want)
		}
	}
}
