// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the floodqa TUI.

# Color System (colors.go)

Colours are declared as lipgloss.AdaptiveColor pairs. Unlike a purely
adaptive palette, the theme resolves one side of each pair with Pick, so the
user's light/dark choice (Ctrl+T, persisted in the prefs store) applies even
when the terminal reports the other background.

	Blue    - user turns, focus, shortcut keys
	Amber   - responder avatar, busy state
	Emerald - ready state, relevance scores
	Rose    - notices and errors
	Cyan    - map panel

# Themes (theme.go)

	theme := styles.NewTheme(styles.DetectDark())
	theme = styles.ByName("dark")

A Theme carries the transcript.Styles for message rendering and the glamour
style name for markdown answers.

# Layout Modes

	LayoutNarrow - < 60 columns
	LayoutMedium - 60-100 columns (reference list auto-expands)
	LayoutWide   - >= 100 columns

# Animations (animations.go)

SpinnerConfig definitions convert to bubbles spinners with Bubble.
*/
package styles
