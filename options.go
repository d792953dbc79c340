// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fiber

import "go.uber.org/zap"

// Option configures a [Scheduler].
type Option func(*options)

type options struct {
	name      string
	logger    *zap.Logger
	maxFibers int
	keepAlive bool
}

// WithName sets the scheduler name used in logs and deadlock reports.
// The default is derived from the scheduler's instance id.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the scheduler logger. The default is a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMaxFibers caps the number of live fibers. Spawning past the cap
// panics with [ErrExhausted]. Zero means no cap.
func WithMaxFibers(n int) Option {
	return func(o *options) { o.maxFibers = n }
}

// WithKeepAlive keeps [Scheduler.Run] serving after the last fiber exits
// and disables deadlock detection, for schedulers fed by external
// goroutines through [Scheduler.Wakeup] or [Spawn]. Run then returns only
// on context end or [Scheduler.Stop].
func WithKeepAlive(on bool) Option {
	return func(o *options) { o.keepAlive = on }
}
