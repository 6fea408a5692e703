// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/floodqa-tui/internal/config"
	"github.com/jeranaias/floodqa-tui/internal/logging"
	"github.com/jeranaias/floodqa-tui/internal/querysvc"
)

// Build information, set with -ldflags "-X ...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// APPLICATION
// =============================================================================

// App carries the global flags and what PersistentPreRunE builds from them.
type App struct {
	ConfigPath string
	Endpoint   string
	LogLevel   string

	cfg    *config.Config
	logger *zap.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	app := &App{}

	root := &cobra.Command{
		Use:   "floodqa",
		Short: "Flood emergency question answering in the terminal",
		Long: `floodqa asks a flood emergency knowledge service questions and shows the
answer with its supporting passages. Coordinates in an answer are marked on
the map panel.

Run without arguments to start the full-screen interface.`,
		SilenceUsage:      true,
		PersistentPreRunE: app.setup,
		PersistentPostRun: app.teardown,
		RunE:              app.runTUI,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.ConfigPath, "config", "", "config file (default ~/.floodqa/config.toml)")
	flags.StringVar(&app.Endpoint, "endpoint", "", "query service URL (overrides the config file)")
	flags.StringVar(&app.LogLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		app.chatCommand(),
		app.askCommand(),
		app.themeCommand(),
		app.configCommand(),
		versionCommand(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}

// =============================================================================
// SETUP
// =============================================================================

// setup loads the configuration, applies flag overrides and opens the log.
func (a *App) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.LogPath()})
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}

	a.cfg = cfg
	a.logger = logger
	logger.Debug("command starting", zap.String("command", cmd.CommandPath()), zap.String("version", Version))
	return nil
}

func (a *App) teardown(*cobra.Command, []string) {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func (a *App) loadConfig() (*config.Config, error) {
	if a.ConfigPath != "" {
		return config.LoadFromPath(a.ConfigPath)
	}
	return config.Load()
}

// applyFlags lets command line flags win over the file and environment.
func (a *App) applyFlags(cfg *config.Config) {
	if a.Endpoint != "" {
		cfg.Query.Endpoint = a.Endpoint
	}
	if a.LogLevel != "" {
		cfg.Log.Level = a.LogLevel
	}
}

// configPath is the file that config commands read and write.
func (a *App) configPath() (string, error) {
	if a.ConfigPath != "" {
		return a.ConfigPath, nil
	}
	return config.ActivePath()
}

// newClient builds a query client from the loaded configuration.
func (a *App) newClient() *querysvc.Client {
	return querysvc.NewClientWithConfig(&querysvc.ClientConfig{
		Endpoint:      a.cfg.Query.Endpoint,
		Timeout:       a.cfg.Query.Timeout.D(),
		RatePerSecond: a.cfg.Query.RatePerSecond,
	}, a.logger)
}

// =============================================================================
// VERSION
// =============================================================================

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "floodqa %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
		},
	}
}
