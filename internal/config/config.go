// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config holds the fiberbench configuration.
//
// Values come from, in rising precedence: built-in defaults, a YAML config
// file, FIBERBENCH_* environment variables and command-line flags.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config is the complete fiberbench configuration.
type Config struct {
	// Producers is the number of producer goroutines.
	Producers int `mapstructure:"producers" yaml:"producers" json:"producers"`
	// Messages is the number of messages each producer sends.
	Messages int `mapstructure:"messages" yaml:"messages" json:"messages"`
	// Capacity is the channel capacity.
	Capacity int `mapstructure:"capacity" yaml:"capacity" json:"capacity"`
	// Consumers is the number of receiving fibers.
	Consumers int `mapstructure:"consumers" yaml:"consumers" json:"consumers"`

	Latch LatchConfig `mapstructure:"latch" yaml:"latch" json:"latch"`
	Log   LogConfig   `mapstructure:"log" yaml:"log" json:"log"`

	// Timings appends wall-clock figures to the report. They vary between
	// runs, so they are off by default.
	Timings bool `mapstructure:"timings" yaml:"timings" json:"timings"`
}

// LatchConfig controls the latch phase.
type LatchConfig struct {
	// Fibers is the number of fibers contending for the latch.
	Fibers int `mapstructure:"fibers" yaml:"fibers" json:"fibers"`
	// Rounds is how many times each fiber acquires it.
	Rounds int `mapstructure:"rounds" yaml:"rounds" json:"rounds"`
}

// LogConfig controls the diagnostic logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level" yaml:"level" json:"level"`
	// Format is console or json.
	Format string `mapstructure:"format" yaml:"format" json:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Producers: 4,
		Messages:  10000,
		Capacity:  64,
		Consumers: 2,
		Latch: LatchConfig{
			Fibers: 8,
			Rounds: 100,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}

// SetDefaults registers the built-in values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("producers", d.Producers)
	v.SetDefault("messages", d.Messages)
	v.SetDefault("capacity", d.Capacity)
	v.SetDefault("consumers", d.Consumers)
	v.SetDefault("latch.fibers", d.Latch.Fibers)
	v.SetDefault("latch.rounds", d.Latch.Rounds)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("timings", d.Timings)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}

// Dir returns the user's fiberbench config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fiberbench")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "fiberbench")
}
