// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/floodqa-tui/internal/config"
	"github.com/jeranaias/floodqa-tui/internal/storage"
	"github.com/jeranaias/floodqa-tui/internal/ui/chat"
)

// =============================================================================
// FULL-SCREEN INTERFACE
// =============================================================================

// runTUI starts the question screen, or the plain REPL when stdin or stdout
// is not a terminal.
func (a *App) runTUI(cmd *cobra.Command, _ []string) error {
	if !IsTTY() || !IsStdoutTTY() {
		a.logger.Info("not a terminal, using plain mode")
		return a.runPlain(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	prefs, err := storage.OpenPrefs(a.cfg.PrefsPath())
	if err != nil {
		a.logger.Warn("preferences unavailable; theme will not be saved", zap.Error(err))
		prefs = nil
	} else {
		defer prefs.Close()
	}

	m := chat.New(chat.Options{
		Config:  a.cfg,
		Prefs:   prefs,
		Logger:  a.logger,
		Context: ctx,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if a.cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)

	a.watchConfig(ctx, p)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interface failed: %w", err)
	}
	return nil
}

// watchConfig forwards config file changes to the running program. A file
// that cannot be watched is logged and otherwise ignored.
func (a *App) watchConfig(ctx context.Context, p *tea.Program) {
	path, err := a.configPath()
	if err != nil {
		a.logger.Debug("no config path to watch", zap.Error(err))
		return
	}

	err = config.Watch(ctx, path, config.DefaultDebounce, func(cfg *config.Config, err error) {
		if cfg != nil {
			a.applyFlags(cfg)
		}
		p.Send(chat.ConfigReloadedMsg{Config: cfg, Err: err})
	})
	if err != nil {
		a.logger.Info("config hot reload disabled", zap.String("path", path), zap.Error(err))
		return
	}
	a.logger.Info("watching config", zap.String("path", path))
}
