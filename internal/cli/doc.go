// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the floodqa command line.
//
// # Commands
//
//	floodqa                       full-screen question screen (default)
//	floodqa chat --plain          line-mode REPL
//	floodqa ask "question"        ask once and print the answer
//	floodqa ask --json "question" print the answer as JSON
//	floodqa theme get|set|toggle  the persisted colour scheme
//	floodqa config show|get|set|path
//	floodqa version
//
// # Global Flags
//
//	--config PATH     config file (default ~/.floodqa/config.toml)
//	--endpoint URL    query service URL, overrides the config file
//	--log-level LVL   debug, info, warn or error
//
// When stdin is not a terminal the default command runs the plain REPL
// instead of the full-screen interface.
package cli
