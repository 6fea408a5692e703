// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	tests := []struct {
		dark bool
		name string
	}{
		{false, NameLight},
		{true, NameDark},
	}

	for _, tt := range tests {
		theme := NewTheme(tt.dark)
		if theme.Name != tt.name {
			t.Errorf("NewTheme(%v).Name = %q, want %q", tt.dark, theme.Name, tt.name)
		}
		if theme.IsDark != tt.dark {
			t.Errorf("NewTheme(%v).IsDark = %v", tt.dark, theme.IsDark)
		}
		if theme.GlamourStyle() != tt.name {
			t.Errorf("GlamourStyle() = %q, want %q", theme.GlamourStyle(), tt.name)
		}
	}
}

func TestByName(t *testing.T) {
	if !ByName("dark").IsDark {
		t.Error(`ByName("dark") should be dark`)
	}
	for _, name := range []string{"light", "", "solarized"} {
		if ByName(name).IsDark {
			t.Errorf("ByName(%q) should fall back to light", name)
		}
	}
}

func TestThemeStylesRender(t *testing.T) {
	theme := NewTheme(true)

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"JumpButton", theme.JumpButton},
		{"Chip", theme.Chip},
		{"ReferencePanel", theme.ReferencePanel},
		{"MapPanel", theme.MapPanel},
		{"StatusBar", theme.StatusBar},
		{"UserAvatar", theme.Transcript.UserAvatar},
		{"SystemBody", theme.Transcript.SystemBody},
	}

	for _, s := range styles {
		if !strings.Contains(s.style.Render("test"), "test") {
			t.Errorf("%s style lost its content", s.name)
		}
	}
}

// =============================================================================
// COLOR RESOLUTION TESTS
// =============================================================================

func TestPick(t *testing.T) {
	if got := Pick(Blue, false); string(got) != Blue.Light {
		t.Errorf("Pick(Blue, light) = %q, want %q", got, Blue.Light)
	}
	if got := Pick(Blue, true); string(got) != Blue.Dark {
		t.Errorf("Pick(Blue, dark) = %q, want %q", got, Blue.Dark)
	}
}

func TestThemesDiffer(t *testing.T) {
	light := NewTheme(false)
	dark := NewTheme(true)

	if light.JumpButton.GetBackground() == dark.JumpButton.GetBackground() {
		t.Error("light and dark jump buttons should use different backgrounds")
	}
}

// =============================================================================
// LAYOUT TESTS
// =============================================================================

func TestLayoutFor(t *testing.T) {
	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	for _, tt := range tests {
		if got := LayoutFor(tt.width); got != tt.want {
			t.Errorf("LayoutFor(%d) = %v, want %v", tt.width, got, tt.want)
		}
	}

	theme := NewTheme(false)
	theme.SetSize(120, 40)
	if theme.GetLayoutMode() != LayoutWide {
		t.Error("120 columns should be wide")
	}
}

// =============================================================================
// ANIMATION TESTS
// =============================================================================

func TestSpinnerConfig(t *testing.T) {
	if got := LineSpinner.Duration(); got != 100*time.Millisecond {
		t.Errorf("LineSpinner.Duration() = %v, want 100ms", got)
	}
	if got := (SpinnerConfig{}).Duration(); got != time.Second {
		t.Errorf("zero FPS Duration() = %v, want 1s", got)
	}

	sp := PulseSpinner.Bubble()
	if len(sp.Frames) != len(PulseSpinner.Frames) {
		t.Errorf("Bubble() frames = %d, want %d", len(sp.Frames), len(PulseSpinner.Frames))
	}
	if sp.FPS != PulseSpinner.Duration() {
		t.Errorf("Bubble() FPS = %v, want %v", sp.FPS, PulseSpinner.Duration())
	}
}

func TestStatusRenderers(t *testing.T) {
	cases := map[string]string{
		RenderSuccess("saved"): StatusIndicators.Success,
		RenderError("failed"):  StatusIndicators.Error,
		RenderWarning("odd"):   StatusIndicators.Warning,
		RenderInfo("fyi"):      StatusIndicators.Info,
	}
	for out, indicator := range cases {
		if !strings.Contains(out, indicator) {
			t.Errorf("%q missing indicator %q", out, indicator)
		}
	}
}
