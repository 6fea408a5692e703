// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

// =============================================================================
// PHASE
// =============================================================================

// Phase is the submission lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSuccess
	PhaseFailed
)

// String returns the name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSuccess:
		return "success"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// =============================================================================
// THEME
// =============================================================================

// Theme is the colour scheme of the interface.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Icon returns the glyph of the theme a toggle would switch to.
func (t Theme) Icon() string {
	if t == ThemeDark {
		return "☀"
	}
	return "☾"
}

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, bool) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), true
	}
	return "", false
}

// =============================================================================
// APP STATE
// =============================================================================

// AppState is the interface state shared between the controller and its
// hosts. Loading is true exactly while a query is in flight.
type AppState struct {
	Theme              Theme
	Loading            bool
	Phase              Phase
	SuggestionsVisible bool
}

// NewAppState returns the initial state.
func NewAppState(theme Theme) *AppState {
	if _, ok := ParseTheme(string(theme)); !ok {
		theme = ThemeLight
	}
	return &AppState{
		Theme:              theme,
		Phase:              PhaseIdle,
		SuggestionsVisible: true,
	}
}

// Idle reports whether a new question may be submitted.
func (s *AppState) Idle() bool {
	return !s.Loading
}

// ToggleTheme flips the theme and returns the new one.
func (s *AppState) ToggleTheme() Theme {
	s.Theme = s.Theme.Toggle()
	return s.Theme
}
