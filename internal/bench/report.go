// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"code.hybscloud.com/fiber/internal/config"
)

// Report is the outcome of a run.
type Report struct {
	Config config.Config `json:"config"`

	Delivered      int    `json:"delivered"`
	Checksum       uint64 `json:"checksum"`
	FIFOViolations int    `json:"fifo_violations"`

	Grants          int `json:"grants"`
	GrantViolations int `json:"grant_violations"`

	Spawned  uint64 `json:"spawned"`
	Switches uint64 `json:"switches"`
	Parks    uint64 `json:"parks"`

	ChannelElapsed time.Duration `json:"channel_elapsed_ns"`
	LatchElapsed   time.Duration `json:"latch_elapsed_ns"`
}

// Expected returns the message count and checksum of a complete run.
// Every message contributes a distinct value in 1..total.
func (r *Report) Expected() (total int, checksum uint64) {
	total = r.Config.Producers * r.Config.Messages
	n := uint64(total)
	return total, n * (n + 1) / 2
}

// OK reports whether every message arrived in order and every latch grant
// followed hand-off order.
func (r *Report) OK() bool {
	total, sum := r.Expected()
	return r.Delivered == total &&
		r.Checksum == sum &&
		r.FIFOViolations == 0 &&
		r.Grants == r.Config.Latch.Fibers*r.Config.Latch.Rounds &&
		r.GrantViolations == 0
}

// WriteText writes the report as aligned text. Without timings the output
// depends only on the configuration and the outcome.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	c := r.Config
	total, sum := r.Expected()
	status := "ok"
	if !r.OK() {
		status = "FAILED"
	}
	lines := []string{
		"channel",
		fmt.Sprintf("  producers\t%d", c.Producers),
		fmt.Sprintf("  messages\t%d each", c.Messages),
		fmt.Sprintf("  capacity\t%d", c.Capacity),
		fmt.Sprintf("  consumers\t%d", c.Consumers),
		fmt.Sprintf("  delivered\t%d/%d", r.Delivered, total),
		fmt.Sprintf("  checksum\t%d/%d", r.Checksum, sum),
		fmt.Sprintf("  fifo violations\t%d", r.FIFOViolations),
		"latch",
		fmt.Sprintf("  fibers\t%d", c.Latch.Fibers),
		fmt.Sprintf("  rounds\t%d", c.Latch.Rounds),
		fmt.Sprintf("  grants\t%d", r.Grants),
		fmt.Sprintf("  order violations\t%d", r.GrantViolations),
		"scheduler",
		fmt.Sprintf("  spawned\t%d", r.Spawned),
	}
	if c.Timings {
		lines = append(lines,
			"timings",
			fmt.Sprintf("  channel\t%v\t%s", r.ChannelElapsed.Round(time.Microsecond), rate(total, r.ChannelElapsed)),
			fmt.Sprintf("  latch\t%v\t%s", r.LatchElapsed.Round(time.Microsecond), rate(r.Grants, r.LatchElapsed)),
			fmt.Sprintf("  switches\t%d", r.Switches),
			fmt.Sprintf("  parks\t%d", r.Parks),
		)
	}
	lines = append(lines, "result\t"+status)
	for _, l := range lines {
		if _, err := fmt.Fprintln(tw, l); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func rate(n int, d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f/s", float64(n)/d.Seconds())
}
