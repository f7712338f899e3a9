package app

import (
	"errors"
	"fmt"

	"github.com/vk/mismipgen/internal/mismip"
)

var (
	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"json", "console"}
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Initials   string
	Experiment string
	// Step, when non-zero, writes only that bootstrapped step.
	Step         int
	Semianalytic bool
	Mode         int
	Mx           int
	Model        int
	Executable   string

	All        bool
	SweepPaths []string // hcl, yaml or yml files and directories

	BootstrapDir string
	NoBootstrap  bool

	LogFormat string
	LogLevel  string

	// Args is the command line recorded in the script header.
	Args []string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.All && len(cfg.SweepPaths) > 0 {
		return nil, errors.New("--all and --sweep cannot be combined")
	}
	if cfg.Step < 0 {
		return nil, fmt.Errorf("%w: %d", mismip.ErrInvalidStep, cfg.Step)
	}
	if !cfg.All && len(cfg.SweepPaths) == 0 {
		if _, err := mismip.ParseExperiment(cfg.Experiment); err != nil {
			return nil, err
		}
	}
	if !contains(LogLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log-level %q: must be one of %v", cfg.LogLevel, LogLevels)
	}
	if !contains(LogFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log-format %q: must be one of %v", cfg.LogFormat, LogFormats)
	}
	if cfg.BootstrapDir == "" {
		cfg.BootstrapDir = "."
	}
	return &cfg, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
