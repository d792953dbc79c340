// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cli implements the fiberbench command line.
package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"code.hybscloud.com/fiber/internal/config"
)

// RootOptions holds global flags and the configuration source shared by
// all commands.
type RootOptions struct {
	ConfigFile string
	Format     string // "text" | "json"

	v *viper.Viper
}

// ValidFormats defines the allowed report formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the fiberbench CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "fiberbench",
		Short: "Exercise the fiber runtime end to end",
		Long: `fiberbench drives producer goroutines into consumer fibers through a
cross-domain channel, then runs latch hand-off rounds, and reports whether
every ordering guarantee held.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return opts.initConfig(cmd.Flags())
		},
	}

	d := config.Default()
	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default is $XDG_CONFIG_HOME/fiberbench/config.yaml)")
	pf.StringVar(&opts.Format, "format", "text", "report format (text|json)")
	pf.Int("producers", d.Producers, "producer goroutines")
	pf.Int("messages", d.Messages, "messages per producer")
	pf.Int("capacity", d.Capacity, "channel capacity")
	pf.Int("consumers", d.Consumers, "consumer fibers")
	pf.Int("latch-fibers", d.Latch.Fibers, "fibers contending for the latch")
	pf.Int("latch-rounds", d.Latch.Rounds, "latch acquisitions per fiber")
	pf.String("log-level", d.Log.Level, "log level (debug|info|warn|error)")
	pf.String("log-format", d.Log.Format, "log format (console|json)")
	pf.Bool("timings", d.Timings, "append wall-clock timings to the report")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// initConfig layers defaults, the config file, FIBERBENCH_* environment
// variables and flags into opts.v.
func (o *RootOptions) initConfig(flags *pflag.FlagSet) error {
	v := o.v
	config.SetDefaults(v)

	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(config.Dir())
	}

	v.SetEnvPrefix("FIBERBENCH")
	// FIBERBENCH_LATCH_FIBERS for latch.fibers
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, name := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if o.ConfigFile != "" || !errors.As(err, &notFound) {
			return WrapExitError(ExitCommandError, "read config", err)
		}
	}
	return nil
}

// flagKeys maps configuration keys to their flag names.
var flagKeys = map[string]string{
	"producers":    "producers",
	"messages":     "messages",
	"capacity":     "capacity",
	"consumers":    "consumers",
	"latch.fibers": "latch-fibers",
	"latch.rounds": "latch-rounds",
	"log.level":    "log-level",
	"log.format":   "log-format",
	"timings":      "timings",
}

// load returns the validated configuration.
func (o *RootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.v)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	return cfg, nil
}
