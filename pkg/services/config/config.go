// Package config loads the service configuration: an optional YAML file
// layered over defaults, with SMARTPLANS_* environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type Solver struct {
	// TimeBudget bounds each optimization solve; a model still running
	// past it is reported as a budget failure, not left to spin.
	TimeBudget time.Duration `mapstructure:"time_budget"`
}

type Artifacts struct {
	Enabled   bool   `mapstructure:"enabled"`
	OutputDir string `mapstructure:"output_dir"`
}

type Config struct {
	Server    Server    `mapstructure:"server"`
	Solver    Solver    `mapstructure:"solver"`
	Artifacts Artifacts `mapstructure:"artifacts"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("server.addr", ":8001")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("solver.time_budget", "10s")
	v.SetDefault("artifacts.enabled", true)
	v.SetDefault("artifacts.output_dir", "./files")

	v.SetEnvPrefix("SMARTPLANS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
