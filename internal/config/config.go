// Package config provides YAML-based configuration for the frame loop, the
// terminal host, logging, run statistics and the SSH server.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/fixstep/internal/input"
	"github.com/vovakirdan/fixstep/internal/loop"
)

// Config is the full fixstep configuration.
type Config struct {
	Loop    LoopConfig    `yaml:"loop"`
	Input   InputConfig   `yaml:"input"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	SSH     SSHConfig     `yaml:"ssh"`
}

// LoopConfig defines the frame scheduler timing.
type LoopConfig struct {
	TargetFPS    int           `yaml:"target_fps"`     // Used when target_step is unset
	TargetStep   time.Duration `yaml:"target_step"`    // Fixed update step, e.g. "16ms"
	MaxFrameTime time.Duration `yaml:"max_frame_time"` // Ceiling on simulated time per idle tick
	PollInterval time.Duration `yaml:"poll_interval"`  // How often the host delivers idle ticks
}

// InputConfig defines how the terminal host reports input.
type InputConfig struct {
	KeyReleaseDelay time.Duration `yaml:"key_release_delay"` // Terminals never report releases; synthesize one after this
	ScrollPolicy    string        `yaml:"scroll_policy"`     // "accumulate" or "latest"
	CloseKeys       []string      `yaml:"close_keys"`        // Keys that request closing the window
}

// LogConfig defines logging output.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file used while a TUI owns the terminal
}

// StorageConfig defines where run statistics are kept.
type StorageConfig struct {
	DBPath   string `yaml:"db_path"`
	Disabled bool   `yaml:"disabled"`
}

// SSHConfig defines the SSH server.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKeyPath string        `yaml:"host_key_path"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	DefaultApp  string        `yaml:"default_app"`
}

// Step returns the configured update step, derived from target_fps when
// target_step is not set.
func (c LoopConfig) Step() (time.Duration, error) {
	if c.TargetStep != 0 {
		return c.TargetStep, nil
	}
	return loop.StepForFPS(c.TargetFPS)
}

// Scroll returns the parsed scroll policy.
func (c InputConfig) Scroll() (input.ScrollPolicy, error) {
	p, ok := input.ParseScrollPolicy(c.ScrollPolicy)
	if !ok {
		return p, fmt.Errorf("config: unknown scroll_policy %q", c.ScrollPolicy)
	}
	return p, nil
}

// LogLevel returns the parsed log level.
func (c LogConfig) LogLevel() (log.Level, error) {
	if c.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.Level)
	if err != nil {
		return lvl, fmt.Errorf("config: %w", err)
	}
	return lvl, nil
}

// Validate checks the configuration. Timing errors are *loop.ConfigError.
func (c Config) Validate() error {
	var errs []error

	step, err := c.Loop.Step()
	if err != nil {
		errs = append(errs, err)
	} else if err := positive("target step", step); err != nil {
		errs = append(errs, err)
	}
	if err := positive("max frame time", c.Loop.MaxFrameTime); err != nil {
		errs = append(errs, err)
	}
	if err := positive("poll interval", c.Loop.PollInterval); err != nil {
		errs = append(errs, err)
	}
	if err := positive("key release delay", c.Input.KeyReleaseDelay); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Input.Scroll(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Log.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	if !c.Storage.Disabled && c.Storage.DBPath == "" {
		errs = append(errs, errors.New("config: storage.db_path is required unless storage is disabled"))
	}

	return errors.Join(errs...)
}

func positive(field string, d time.Duration) error {
	if d <= 0 {
		return &loop.ConfigError{Field: field, Value: d.String()}
	}
	return nil
}
