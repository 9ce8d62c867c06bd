package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/fixstep/internal/platform/tui"
	"github.com/vovakirdan/fixstep/internal/registry"
)

var runCmd = &cobra.Command{
	Use:   "run <app>",
	Short: "Run an app in this terminal",
	Long: `Start the specified app in the current terminal.

The app is simulated at the target update rate (--fps or --step) no matter
how fast the terminal redraws. Logs go to the configured log file while the
app owns the terminal.

Host keys:
  Ctrl+C   - Close the window (configurable with input.close_keys)
  Ctrl+Z   - Suspend

Examples:
  fixstep run bounce
  fixstep run bounce --fps 30
  fixstep run inputlab --step 100ms
  fixstep run bounce --config ./my-fixstep.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runApp,
}

func runApp(cmd *cobra.Command, args []string) error {
	appID := args[0]

	if !registry.Exists(appID) {
		return fmt.Errorf("unknown app %q; run 'fixstep list' to see available apps", appID)
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("fixstep run needs an interactive terminal")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so logs go to a file
	logger, closeLog, err := newLogger(cfg, "fixstep", cfg.Log.File)
	if err != nil {
		return err
	}
	defer closeLog()

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	app, err := registry.Create(appID)
	if err != nil {
		return err
	}

	opts, err := tui.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	opts.Window = 1
	opts.User = os.Getenv("USER")
	opts.Seed = flagSeed
	opts.Logger = logger
	opts.Store = store

	logger.Info("starting run", "app", appID, "target_step", opts.TargetStep, "max_frame_time", opts.MaxFrameTime)

	report, err := tui.Run(app, opts)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s after %s (%d updates, %d renders, %d clamped ticks)\n",
		app.Title(), report.Reason, report.Duration.Round(1e6),
		report.Stats.Updates, report.Stats.Renders, report.Stats.ClampedTicks)
	return nil
}
