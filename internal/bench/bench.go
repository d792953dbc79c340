// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bench drives the fiber runtime end to end.
//
// A run has two phases on one scheduler. In the channel phase producer
// goroutines send sequenced messages across a cross-domain channel to a
// set of consumer fibers, which fold every message into a tally guarded by
// a latch. In the latch phase fibers take turns on one latch while holding
// it across a reschedule. Both phases check ordering: per-producer FIFO for
// the channel and strict hand-off order for the latch.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.hybscloud.com/fiber"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"code.hybscloud.com/fiber/internal/config"
)

// flushEvery is how often a consumer keeps the tally latch across a
// reschedule, so that other consumers queue on it.
const flushEvery = 64

type message struct {
	producer int
	seq      int
}

// tally accumulates delivered messages. It is only touched while holding
// its latch.
type tally struct {
	latch      *fiber.Latch
	next       []int
	delivered  int
	checksum   uint64
	violations int
}

func (t *tally) record(m message, perProducer int) {
	if m.seq != t.next[m.producer] {
		t.violations++
	}
	t.next[m.producer] = m.seq + 1
	t.delivered++
	t.checksum += uint64(m.producer*perProducer + m.seq + 1)
}

// Run executes both phases and returns the report. A report with ordering
// violations is returned together with [ErrOrder].
func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Report, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := fiber.New(fiber.WithName("fiberbench"), fiber.WithLogger(log))
	defer func() { _ = s.Close() }()

	r := &Report{Config: *cfg}
	if err := runChannel(ctx, s, cfg, r); err != nil {
		return nil, err
	}
	if err := runLatch(ctx, s, cfg, r); err != nil {
		return nil, err
	}
	st := s.Stats()
	r.Spawned = st.Spawned
	r.Switches = st.Switches
	r.Parks = st.Parks
	log.Info("bench finished",
		zap.Int("delivered", r.Delivered),
		zap.Int("grants", r.Grants),
		zap.Uint64("switches", r.Switches))
	if !r.OK() {
		return r, ErrOrder
	}
	return r, nil
}

// ErrOrder reports that a run observed an ordering violation.
var ErrOrder = errors.New("bench: ordering violated")

func runChannel(ctx context.Context, s *fiber.Scheduler, cfg *config.Config, r *Report) error {
	tx, rx := fiber.NewChannel[message](cfg.Capacity)
	t := &tally{latch: fiber.NewLatch(), next: make([]int, cfg.Producers)}

	for i := range cfg.Consumers {
		fiber.Go(s, fmt.Sprintf("consumer-%d", i), func(f *fiber.Fiber) {
			consume(f, rx, t, cfg.Messages)
		})
	}

	start := time.Now()
	p := pool.New().WithErrors()
	for id := range cfg.Producers {
		p.Go(func() error {
			for seq := range cfg.Messages {
				if err := tx.Send(message{producer: id, seq: seq}); err != nil {
					return fmt.Errorf("producer %d: %w", id, err)
				}
			}
			return nil
		})
	}
	sent := make(chan error, 1)
	go func() {
		err := p.Wait()
		tx.Close()
		sent <- err
	}()

	if err := s.Run(ctx); err != nil {
		rx.Close()
		<-sent
		return err
	}
	if err := <-sent; err != nil {
		return err
	}
	r.ChannelElapsed = time.Since(start)
	r.Delivered = t.delivered
	r.Checksum = t.checksum
	r.FIFOViolations = t.violations
	return nil
}

func consume(f *fiber.Fiber, rx *fiber.Receiver[message], t *tally, perProducer int) {
	for {
		m, err := rx.Recv(f)
		if err != nil {
			return
		}
		g := t.latch.Lock(f)
		t.record(m, perProducer)
		if t.delivered%flushEvery == 0 {
			f.Reschedule()
		}
		g.Unlock()
	}
}

func runLatch(ctx context.Context, s *fiber.Scheduler, cfg *config.Config, r *Report) error {
	l := fiber.NewLatch()
	grants := make([]int, 0, cfg.Latch.Fibers*cfg.Latch.Rounds)
	for i := range cfg.Latch.Fibers {
		fiber.Go(s, fmt.Sprintf("latch-%d", i), func(f *fiber.Fiber) {
			for range cfg.Latch.Rounds {
				g := l.Lock(f)
				grants = append(grants, i)
				f.Reschedule()
				g.Unlock()
				f.Reschedule()
			}
		})
	}
	start := time.Now()
	if err := s.Run(ctx); err != nil {
		return err
	}
	r.LatchElapsed = time.Since(start)
	r.Grants = len(grants)
	for k, id := range grants {
		if id != k%cfg.Latch.Fibers {
			r.GrantViolations++
		}
	}
	return nil
}
