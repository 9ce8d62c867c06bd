package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/fixstep/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout string
	flagDefaultApp  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the fixstep SSH server",
	Long: `Start an SSH server that runs an app for every connection.

Each SSH session gets its own window and frame loop. The app is picked by
the session command and defaults to ssh.default_app. Runs of every session
are recorded in the shared statistics database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.fixstep/host_key

Examples:
  fixstep serve                           # Listen on :23235 with auto-generated key
  fixstep serve --ssh :2222               # Listen on port 2222
  fixstep serve --app inputlab            # Default to the input lab
  fixstep serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23235 -t           # default app
  ssh localhost -p 23235 -t inputlab  # named app`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, overrides config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().StringVar(&flagIdleTimeout, "idle-timeout", "", "Idle timeout before disconnecting, e.g. 30m")
	serveCmd.Flags().StringVar(&flagDefaultApp, "app", "", "App for sessions that name none")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("ssh") {
		cfg.SSH.Address = flagSSHAddr
	}
	if flags.Changed("host-key") {
		cfg.SSH.HostKeyPath = flagHostKey
	}
	if flags.Changed("app") {
		cfg.SSH.DefaultApp = flagDefaultApp
	}
	if flags.Changed("idle-timeout") {
		d, err := parseDuration("idle-timeout", flagIdleTimeout)
		if err != nil {
			return err
		}
		cfg.SSH.IdleTimeout = d
	}

	logger, closeLog, err := newLogger(cfg, "fixstep-ssh", "")
	if err != nil {
		return err
	}
	defer closeLog()

	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	host, err := tui.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	host.Seed = flagSeed

	server, err := tui.NewSSHServer(tui.SSHServerConfig{
		Address:     cfg.SSH.Address,
		HostKeyPath: cfg.SSH.HostKeyPath,
		IdleTimeout: cfg.SSH.IdleTimeout,
		DefaultApp:  cfg.SSH.DefaultApp,
		Host:        host,
	}, store, logger)
	if err != nil {
		return fmt.Errorf("error creating server: %w", err)
	}

	fmt.Printf("Starting fixstep SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
