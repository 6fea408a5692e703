// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/floodqa-tui/internal/conversation"
	"github.com/jeranaias/floodqa-tui/internal/storage"
	"github.com/jeranaias/floodqa-tui/internal/ui/chat"
)

func (a *App) themeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the saved colour scheme",
		Long: `The colour scheme is saved in the preferences database and restored on
start. Without a saved value floodqa follows the terminal background.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the saved theme",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withPrefs(func(prefs *storage.Prefs) error {
					v, err := prefs.Get(cmd.Context(), storage.KeyTheme)
					if errors.Is(err, storage.ErrNotFound) {
						fmt.Fprintln(cmd.OutOrStdout(), "unset (follows the terminal background)")
						return nil
					}
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), v)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:       "set <light|dark>",
			Short:     "Save a theme",
			Args:      cobra.ExactArgs(1),
			ValidArgs: []string{string(conversation.ThemeLight), string(conversation.ThemeDark)},
			RunE: func(cmd *cobra.Command, args []string) error {
				theme, ok := conversation.ParseTheme(args[0])
				if !ok {
					return fmt.Errorf("unknown theme %q (want light or dark)", args[0])
				}
				return a.withPrefs(func(prefs *storage.Prefs) error {
					return a.saveTheme(cmd, prefs, theme)
				})
			},
		},
		&cobra.Command{
			Use:   "toggle",
			Short: "Switch between light and dark",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withPrefs(func(prefs *storage.Prefs) error {
					current := chat.ResolveTheme(cmd.Context(), prefs, a.logger)
					return a.saveTheme(cmd, prefs, current.Toggle())
				})
			},
		},
	)
	return cmd
}

func (a *App) saveTheme(cmd *cobra.Command, prefs *storage.Prefs, theme conversation.Theme) error {
	if err := prefs.Set(cmd.Context(), storage.KeyTheme, string(theme)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "theme: %s\n", theme)
	return nil
}

// withPrefs opens the preferences database for the duration of fn.
func (a *App) withPrefs(fn func(*storage.Prefs) error) error {
	prefs, err := storage.OpenPrefs(a.cfg.PrefsPath())
	if err != nil {
		return err
	}
	defer prefs.Close()
	return fn(prefs)
}
