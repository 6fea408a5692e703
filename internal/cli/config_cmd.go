// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/floodqa-tui/internal/config"
)

func (a *App) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit the configuration",
		Long: `Keys use dot notation, e.g. query.endpoint or ui.jump_threshold.

Examples:
  floodqa config show
  floodqa config get query.timeout
  floodqa config set query.endpoint http://10.0.0.7:5000/query
  floodqa config set ui.suggestions "避难场所在哪？, 如何求救？"`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), highlightJSON(a.cfg.String()))
			},
		},
		&cobra.Command{
			Use:               "get <key>",
			Short:             "Print one setting",
			Args:              cobra.ExactArgs(1),
			ValidArgsFunction: completeConfigKeys,
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := a.cfg.Get(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatValue(v))
				return nil
			},
		},
		&cobra.Command{
			Use:               "set <key> <value>",
			Short:             "Change one setting in the config file",
			Args:              cobra.ExactArgs(2),
			ValidArgsFunction: completeConfigKeys,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.setConfigValue(cmd, args[0], args[1])
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file path",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				path, err := a.configPath()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), path)
				return nil
			},
		},
	)
	return cmd
}

// setConfigValue edits the file itself, not the effective configuration, so
// environment overrides are not written back.
func (a *App) setConfigValue(cmd *cobra.Command, key, value string) error {
	path, err := a.configPath()
	if err != nil {
		return err
	}

	cfg := config.Default()
	if _, statErr := os.Stat(path); statErr == nil {
		if strings.HasSuffix(path, ".json") {
			err = config.LoadJSON(cfg, path)
		} else {
			err = config.LoadTOML(cfg, path)
		}
		if err != nil {
			return err
		}
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return statErr
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	check := cfg.Clone()
	check.SetDefaults()
	if err := check.Validate(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}

	a.logger.Info("config updated", zap.String("key", key), zap.String("path", path))
	fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, value)
	return nil
}

// completeConfigKeys completes the key argument of config get and set.
func completeConfigKeys(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	var keys []string
	for _, k := range config.GetAllKeys() {
		if strings.HasPrefix(k, toComplete) {
			keys = append(keys, k)
		}
	}
	return keys, cobra.ShellCompDirectiveNoFileComp
}

// formatValue prints durations as "60s" and lists comma separated.
func formatValue(v interface{}) string {
	switch v := v.(type) {
	case encoding.TextMarshaler:
		text, err := v.MarshalText()
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(text)
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}
