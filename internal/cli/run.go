// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"code.hybscloud.com/fiber/internal/bench"
	"code.hybscloud.com/fiber/internal/logging"
)

// NewRunCommand creates the run command.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the channel and latch phases and print a report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return WrapExitError(ExitCommandError, "logger", err)
			}
			defer func() { _ = log.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rep, err := bench.Run(ctx, cfg, log)
			if rep == nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.Format == "json" {
				if werr := rep.WriteJSON(out); werr != nil {
					return werr
				}
			} else if werr := rep.WriteText(out); werr != nil {
				return werr
			}
			if errors.Is(err, bench.ErrOrder) {
				return WrapExitError(ExitFailure, "run", err)
			}
			return err
		},
	}
}
