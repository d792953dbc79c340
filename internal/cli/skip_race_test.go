// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package cli

import "testing"

// skipRace skips tests that push messages through the lfq MPSC channel.
// The race detector cannot see lfq's cross-variable memory ordering and
// reports false positives.
func skipRace(tb testing.TB) {
	tb.Helper()
	tb.Skip("skip: MPSC uses cross-variable memory ordering")
}
