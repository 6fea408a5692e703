// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/floodqa-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: product name, the service being asked and the
// theme toggle icon.
type Header struct {
	Title     string
	Subtitle  string
	Endpoint  string
	ThemeIcon string
	Width     int
	theme     *styles.Theme
}

// NewHeader creates a header with default titles.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title:    "floodqa",
		Subtitle: "防汛应急问答",
		Width:    80,
		theme:    theme,
	}
}

// SetTheme restyles the header.
func (h *Header) SetTheme(theme *styles.Theme) {
	h.theme = theme
}

// IconColumn returns the column of the theme icon, for click handling.
// It is -1 when the icon is not shown.
func (h *Header) IconColumn() int {
	if h.ThemeIcon == "" {
		return -1
	}
	return h.Width - h.theme.Header.GetPaddingRight() - runewidth.StringWidth(h.ThemeIcon)
}

// View renders the header.
func (h *Header) View() string {
	inner := h.Width - h.theme.Header.GetHorizontalFrameSize()

	left := h.theme.HeaderTitle.Render(h.Title)
	if h.Subtitle != "" {
		left += " " + h.theme.ShortcutDesc.Render(h.Subtitle)
	}
	right := h.theme.HeaderIcon.Render(h.ThemeIcon)

	if h.Endpoint != "" {
		room := inner - lipgloss.Width(left) - lipgloss.Width(right) - 4
		if room > 8 {
			left += "  " + h.theme.ShortcutDesc.Render(runewidth.Truncate(h.Endpoint, room, "…"))
		}
	}

	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(right), 1)
	w := max(h.Width, 1)
	return h.theme.Header.Width(w).MaxWidth(w).Render(left + strings.Repeat(" ", gap) + right)
}
