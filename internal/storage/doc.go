// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists client preferences for floodqa.
//
// Preferences are string key/value pairs in a SQLite database
// (modernc.org/sqlite, no cgo). The only key today is KeyTheme.
//
// # Usage
//
//	prefs, err := storage.OpenPrefs(cfg.PrefsPath())
//	if err != nil {
//	    return err
//	}
//	defer prefs.Close()
//
//	theme, err := prefs.Get(ctx, storage.KeyTheme)
//	if errors.Is(err, storage.ErrNotFound) {
//	    // follow the terminal background
//	}
//
// # Storage Location
//
// The database lives at <data_dir>/prefs.db (default ~/.floodqa/prefs.db).
package storage
