// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/jeranaias/floodqa-tui/internal/ui/components"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the question screen.
type KeyMap struct {
	Submit      key.Binding
	HistoryUp   key.Binding
	HistoryDown key.Binding
	Suggestion  key.Binding
	Jump        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	References  key.Binding
	ToggleTheme key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "ask"),
		),
		HistoryUp: key.NewBinding(
			key.WithKeys("alt+up"),
			key.WithHelp("M-↑", "older question"),
		),
		HistoryDown: key.NewBinding(
			key.WithKeys("alt+down"),
			key.WithHelp("M-↓", "newer question"),
		),
		Suggestion: key.NewBinding(
			key.WithKeys("alt+1", "alt+2", "alt+3", "alt+4"),
			key.WithHelp("M-1..4", "quick question"),
		),
		Jump: key.NewBinding(
			key.WithKeys("end"),
			key.WithHelp("End", "latest"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		References: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("^R", "references"),
		),
		ToggleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("^T", "theme"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("^C", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar, most important
// first.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.HistoryUp, k.Suggestion, k.Jump, k.ToggleTheme, k.References, k.Quit}
}

// Shortcuts converts ShortHelp into status bar hints.
func (k KeyMap) Shortcuts() []components.Shortcut {
	var out []components.Shortcut
	for _, b := range k.ShortHelp() {
		h := b.Help()
		out = append(out, components.Shortcut{Key: h.Key, Desc: h.Desc})
	}
	return out
}

// suggestionNumber returns the chip number of an alt+N key, or 0.
func suggestionNumber(keyStr string) int {
	if len(keyStr) != len("alt+1") || keyStr[:4] != "alt+" {
		return 0
	}
	n := int(keyStr[4] - '0')
	if n < 1 || n > components.MaxSuggestions {
		return 0
	}
	return n
}
