// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/floodqa-tui/internal/ui/styles"
)

// MaxSuggestions is the number of chips with an Alt+N shortcut.
const MaxSuggestions = 4

// chipTextWidth caps the visible text of one chip.
const chipTextWidth = 24

// =============================================================================
// SUGGESTION CHIPS
// =============================================================================

// Suggestions renders the quick-question chips shown under an empty input.
type Suggestions struct {
	items []string
	theme *styles.Theme
}

// NewSuggestions creates chips for items; only the first MaxSuggestions are
// used.
func NewSuggestions(items []string, theme *styles.Theme) *Suggestions {
	s := &Suggestions{theme: theme}
	s.SetItems(items)
	return s
}

// SetItems replaces the chips.
func (s *Suggestions) SetItems(items []string) {
	s.items = s.items[:0]
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			s.items = append(s.items, it)
		}
		if len(s.items) == MaxSuggestions {
			break
		}
	}
}

// SetTheme restyles the chips.
func (s *Suggestions) SetTheme(theme *styles.Theme) {
	s.theme = theme
}

// Items returns the chip texts.
func (s *Suggestions) Items() []string {
	return append([]string(nil), s.items...)
}

// At returns the question for a 1-based chip number.
func (s *Suggestions) At(n int) (string, bool) {
	if n < 1 || n > len(s.items) {
		return "", false
	}
	return s.items[n-1], true
}

// HitTest returns the 1-based chip under column col of the chip row, or 0.
func (s *Suggestions) HitTest(col int) int {
	x := 0
	for i := range s.items {
		w := lipgloss.Width(s.chip(i))
		if col >= x && col < x+w {
			return i + 1
		}
		x += w
	}
	return 0
}

// View renders the chips on one row, dropping those that do not fit.
func (s *Suggestions) View(width int) string {
	var row strings.Builder
	used := 0
	for i := range s.items {
		chip := s.chip(i)
		w := lipgloss.Width(chip)
		if used+w > width {
			break
		}
		row.WriteString(chip)
		used += w
	}
	return row.String()
}

func (s *Suggestions) chip(i int) string {
	text := runewidth.Truncate(s.items[i], chipTextWidth, "…")
	return s.theme.Chip.Render(s.theme.ChipKey.Render("M-"+itoa(i+1)) + " " + text)
}
