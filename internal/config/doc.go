// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for floodqa.
//
// Supports both TOML and JSON configuration formats, with defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - QueryConfig: Query service endpoint, timeout and client throttle
//   - MapConfig: Initial camera and fly-to animation of the map panel
//   - UIConfig: History size, jump threshold, suggestions and rendering
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (FLOODQA_*), also read from a .env file
//   - ~/.floodqa/config.toml
//   - ~/.floodqa/config.json
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	endpoint := cfg.Query.Endpoint
//	timeout := cfg.Query.Timeout.D()
//
// Reload on change:
//
//	err := config.Watch(ctx, path, config.DefaultDebounce, func(cfg *config.Config, err error) {
//	    ...
//	})
package config
