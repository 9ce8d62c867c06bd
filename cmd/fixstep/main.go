// fixstep runs fixed-timestep terminal apps locally or over SSH.
//
// Usage:
//
//	fixstep list              - List available apps
//	fixstep run <app>         - Run an app in this terminal
//	fixstep serve             - Start SSH server for remote sessions
//	fixstep stats [app]       - Show recorded run statistics
//
// Global flags:
//
//	--config <path>     - Configuration file (default: search ~/.fixstep, ./configs)
//	--fps <rate>        - Override the target update rate
//	--step <duration>   - Override the target update step
//	--seed <value>      - RNG seed for reproducible runs
//	--db <path>         - Run statistics database
//	--no-db             - Do not record runs
//	--log-level <level> - debug, info, warn, error
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	// Import apps to register them
	_ "github.com/vovakirdan/fixstep/internal/apps/bounce"
	_ "github.com/vovakirdan/fixstep/internal/apps/inputlab"

	"github.com/vovakirdan/fixstep/internal/config"
	"github.com/vovakirdan/fixstep/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagFPS      int
	flagStep     string
	flagSeed     int64
	flagDBPath   string
	flagNoDB     bool
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fixstep",
	Short: "fixstep - fixed-timestep apps in your terminal",
	Long: `fixstep runs small interactive apps on a fixed-timestep frame loop:
the simulation advances in constant steps while frames are drawn as often
as the terminal allows, blending between the last two steps.

Available commands:
  list     - Show all available apps
  run      - Run an app in this terminal
  serve    - Start SSH server for remote sessions
  stats    - View recorded run statistics

Examples:
  fixstep list
  fixstep run bounce
  fixstep run bounce --fps 30
  fixstep serve --ssh :2222
  fixstep stats bounce`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to fixstep.yaml")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Target update rate (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagStep, "step", "", "Target update step, e.g. 16ms (overrides --fps)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run statistics database (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagNoDB, "no-db", false, "Do not record run statistics")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
}

// loadConfig loads the configuration file and applies the global flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("fps") {
		cfg.Loop.TargetFPS = flagFPS
		cfg.Loop.TargetStep = 0
	}
	if flags.Changed("step") {
		step, err := parseDuration("step", flagStep)
		if err != nil {
			return cfg, err
		}
		cfg.Loop.TargetStep = step
	}
	if flags.Changed("db") {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagNoDB {
		cfg.Storage.Disabled = true
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = flagLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// newLogger creates the process logger. A non-empty file receives the output
// instead of stderr; the returned close func releases it.
func newLogger(cfg config.Config, prefix, file string) (*log.Logger, func(), error) {
	level, err := cfg.Log.LogLevel()
	if err != nil {
		return nil, nil, err
	}

	out := os.Stderr
	closeFn := func() {}
	if file != "" {
		path := config.ExpandHome(file)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file: %w", err)
		}
		out = f
		closeFn = func() { f.Close() }
	}

	logger := log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})
	return logger, closeFn, nil
}

// openStore opens the run statistics database, or returns nil when storage
// is disabled or unavailable.
func openStore(cfg config.Config, logger *log.Logger) *storage.Store {
	if cfg.Storage.Disabled {
		return nil
	}
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		// Continue without storage - the run still works
		logger.Warn("could not open run database", "path", cfg.Storage.DBPath, "error", err)
		return nil
	}
	return store
}

func parseDuration(flag, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}
