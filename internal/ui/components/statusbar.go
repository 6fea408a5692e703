// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/floodqa-tui/internal/ui/styles"
)

// NoticeTTL is how long a transient notice stays in the status bar.
const NoticeTTL = 3 * time.Second

// Shortcut is one key hint.
type Shortcut struct {
	Key  string
	Desc string
}

// DefaultShortcuts are the hints shown on wide terminals.
var DefaultShortcuts = []Shortcut{
	{"Enter", "ask"},
	{"M-↑/↓", "history"},
	{"End", "latest"},
	{"^T", "theme"},
	{"^C", "quit"},
}

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar shows the request state, a transient notice and key hints.
type StatusBar struct {
	Width     int
	Shortcuts []Shortcut

	spinner     Spinner
	notice      string
	noticeUntil time.Time
	mapNote     string
	theme       *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width:     80,
		Shortcuts: DefaultShortcuts,
		spinner:   NewSpinner("Answering", theme),
		theme:     theme,
	}
}

// SetTheme restyles the bar.
func (s *StatusBar) SetTheme(theme *styles.Theme) {
	s.theme = theme
	s.spinner.SetTheme(theme)
}

// SetLoading starts or stops the spinner. Starting returns its tick command.
func (s *StatusBar) SetLoading(loading bool, now time.Time) tea.Cmd {
	if !loading {
		s.spinner.Stop()
		return nil
	}
	if s.spinner.IsActive() {
		return nil
	}
	return s.spinner.Start(now)
}

// Loading reports whether the spinner is running.
func (s *StatusBar) Loading() bool {
	return s.spinner.IsActive()
}

// Notify shows text until now+NoticeTTL.
func (s *StatusBar) Notify(text string, now time.Time) {
	s.notice = text
	s.noticeUntil = now.Add(NoticeTTL)
}

// Notice returns the notice visible at now, if any.
func (s *StatusBar) Notice(now time.Time) string {
	if s.notice == "" || !now.Before(s.noticeUntil) {
		return ""
	}
	return s.notice
}

// SetMapNote sets the persistent map state text (e.g. "map unavailable").
func (s *StatusBar) SetMapNote(note string) {
	s.mapNote = note
}

// Update forwards spinner ticks.
func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

// View renders the bar at now.
func (s *StatusBar) View(now time.Time) string {
	var left string
	switch {
	case s.Notice(now) != "":
		left = s.theme.StatusNotice.Render(styles.StatusIndicators.Warning + " " + s.Notice(now))
	case s.spinner.IsActive():
		left = s.spinner.View(now)
	default:
		left = s.theme.StatusReady.Render("Ready")
	}
	if s.mapNote != "" {
		left += "  " + s.theme.ShortcutDesc.Render(s.mapNote)
	}

	inner := s.Width - s.theme.StatusBar.GetHorizontalFrameSize()
	right := s.shortcuts(inner - lipgloss.Width(left) - 2)

	gap := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		right, gap = "", max(inner-lipgloss.Width(left), 0)
	}
	line := left + strings.Repeat(" ", gap) + right
	w := max(s.Width, 1)
	return s.theme.StatusBar.Width(w).MaxWidth(w).MaxHeight(1).Render(line)
}

// shortcuts renders as many hints as fit in width.
func (s *StatusBar) shortcuts(width int) string {
	var parts []string
	used := 0
	for _, sc := range s.Shortcuts {
		part := s.theme.ShortcutKey.Render(sc.Key) + " " + s.theme.ShortcutDesc.Render(sc.Desc)
		w := lipgloss.Width(part)
		if len(parts) > 0 {
			w += 2
		}
		if used+w > width {
			break
		}
		parts = append(parts, part)
		used += w
	}
	return strings.Join(parts, "  ")
}
