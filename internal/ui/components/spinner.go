// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/floodqa-tui/internal/ui/styles"
)

// =============================================================================
// SPINNER MODEL
// =============================================================================

// Spinner is the loading indicator shown while a question is in flight.
type Spinner struct {
	// Core spinner from bubbles
	spinner spinner.Model

	message   string
	startTime time.Time
	isActive  bool
	showTimer bool
	theme     *styles.Theme
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(message string, theme *styles.Theme) Spinner {
	s := spinner.New()
	s.Spinner = styles.LineSpinner.Bubble()

	return Spinner{
		spinner:   s,
		message:   message,
		showTimer: true,
		theme:     theme,
	}
}

// SetTheme restyles the spinner.
func (s *Spinner) SetTheme(theme *styles.Theme) {
	s.theme = theme
}

// =============================================================================
// STATE MANAGEMENT
// =============================================================================

// Start activates the spinner and records the start time.
func (s *Spinner) Start(now time.Time) tea.Cmd {
	s.isActive = true
	s.startTime = now
	return s.spinner.Tick
}

// Stop deactivates the spinner.
func (s *Spinner) Stop() {
	s.isActive = false
}

// IsActive returns whether the spinner is currently running.
func (s *Spinner) IsActive() bool {
	return s.isActive
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Update advances the animation. Ticks arriving after Stop end the loop.
func (s Spinner) Update(msg tea.Msg) (Spinner, tea.Cmd) {
	if !s.isActive {
		return s, nil
	}

	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return s, cmd
}

// View renders the spinner with the elapsed time at now.
func (s Spinner) View(now time.Time) string {
	if !s.isActive {
		return ""
	}

	result := s.theme.Spinner.Render(s.spinner.View()) + " " + s.theme.StatusBusy.Render(s.message)
	if s.showTimer && !s.startTime.IsZero() {
		result += s.theme.ShortcutDesc.Render(" (" + formatElapsed(now.Sub(s.startTime)) + ")")
	}
	return result
}
