// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/floodqa-tui/internal/transcript"
)

// Theme names as persisted in preferences.
const (
	NameLight = "light"
	NameDark  = "dark"
)

// Theme holds all the styled components for the application. Every colour is
// resolved for one variant, so a manual toggle overrides terminal detection.
type Theme struct {
	Name         string
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER STYLES
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderIcon  lipgloss.Style

	// ==========================================================================
	// TRANSCRIPT STYLES
	// ==========================================================================

	Transcript      transcript.Styles
	ScrollIndicator lipgloss.Style
	JumpButton      lipgloss.Style

	// ==========================================================================
	// INPUT AREA STYLES
	// ==========================================================================

	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputText        lipgloss.Style
	InputPlaceholder lipgloss.Style

	Chip    lipgloss.Style
	ChipKey lipgloss.Style

	// ==========================================================================
	// SIDE PANEL STYLES
	// ==========================================================================

	ReferencePanel lipgloss.Style
	ReferenceTitle lipgloss.Style
	ReferenceText  lipgloss.Style
	ReferenceScore lipgloss.Style
	MapPanel       lipgloss.Style

	// ==========================================================================
	// STATUS BAR STYLES
	// ==========================================================================

	StatusBar    lipgloss.Style
	StatusReady  lipgloss.Style
	StatusBusy   lipgloss.Style
	StatusNotice lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style
	Spinner      lipgloss.Style
}

// DetectDark reports whether the terminal background is dark. It is the
// default when no theme preference is stored.
func DetectDark() bool {
	return termenv.HasDarkBackground()
}

// NewTheme creates the light or dark theme.
func NewTheme(dark bool) *Theme {
	colorProfile := termenv.ColorProfile()

	t := &Theme{
		Name:         NameLight,
		IsDark:       dark,
		HasTrueColor: colorProfile == termenv.TrueColor,
		ColorProfile: colorProfile,
	}
	if dark {
		t.Name = NameDark
	}

	t.initStyles()
	return t
}

// ByName returns the theme for a persisted name; anything but "dark" is light.
func ByName(name string) *Theme {
	return NewTheme(name == NameDark)
}

// GlamourStyle returns the glamour standard style matching the theme.
func (t *Theme) GlamourStyle() string {
	return t.Name
}

// c resolves an adaptive colour for this theme.
func (t *Theme) c(ac lipgloss.AdaptiveColor) lipgloss.Color {
	return Pick(ac, t.IsDark)
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(t.c(SurfaceDim)).
		Foreground(t.c(TextPrimary)).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.c(Blue))

	t.HeaderIcon = lipgloss.NewStyle().
		Foreground(t.c(Amber))

	// Transcript
	t.Transcript = transcript.Styles{
		UserAvatar:   lipgloss.NewStyle().Foreground(t.c(Blue)).Bold(true),
		SystemAvatar: lipgloss.NewStyle().Foreground(t.c(Amber)).Bold(true),
		Name:         lipgloss.NewStyle().Foreground(t.c(TextSecondary)).Bold(true),
		Timestamp:    lipgloss.NewStyle().Foreground(t.c(TextMuted)),
		UserBody:     lipgloss.NewStyle().Foreground(t.c(UserBodyFg)),
		SystemBody:   lipgloss.NewStyle().Foreground(t.c(SystemBodyFg)),
		Pending:      lipgloss.NewStyle().Foreground(t.c(TextMuted)),
	}

	t.ScrollIndicator = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		Italic(true).
		Align(lipgloss.Center)

	t.JumpButton = lipgloss.NewStyle().
		Foreground(t.c(TextInverse)).
		Background(t.c(Blue)).
		Bold(true).
		Padding(0, 1)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(t.c(Overlay)).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(t.c(Blue)).
		Bold(true)

	t.InputText = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary))

	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(t.c(TextMuted)).
		Italic(true)

	t.Chip = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary)).
		Background(t.c(ChipBg)).
		Padding(0, 1).
		MarginRight(1)

	t.ChipKey = lipgloss.NewStyle().
		Foreground(t.c(Blue)).
		Bold(true)

	// Side panels
	t.ReferencePanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Overlay)).
		Padding(0, 1)

	t.ReferenceTitle = lipgloss.NewStyle().
		Foreground(t.c(TextSecondary)).
		Bold(true)

	t.ReferenceText = lipgloss.NewStyle().
		Foreground(t.c(TextPrimary))

	t.ReferenceScore = lipgloss.NewStyle().
		Foreground(t.c(Emerald))

	t.MapPanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.c(Cyan)).
		Foreground(t.c(TextSecondary)).
		Padding(0, 1)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(t.c(SurfaceDim)).
		Foreground(t.c(TextSecondary)).
		Padding(0, 1)

	t.StatusReady = lipgloss.NewStyle().
		Foreground(t.c(Emerald)).
		Bold(true)

	t.StatusBusy = lipgloss.NewStyle().
		Foreground(t.c(Amber)).
		Bold(true)

	t.StatusNotice = lipgloss.NewStyle().
		Foreground(t.c(Rose)).
		Bold(true)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(t.c(Blue)).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(t.c(TextMuted))

	t.Spinner = lipgloss.NewStyle().
		Foreground(t.c(Amber))
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	return LayoutFor(t.Width)
}

// LayoutFor returns the layout mode for a terminal width.
func LayoutFor(width int) LayoutMode {
	if width < 60 {
		return LayoutNarrow
	}
	if width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // >= 100 columns
)
