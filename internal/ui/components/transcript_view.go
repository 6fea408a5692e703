// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/floodqa-tui/internal/scroll"
	"github.com/jeranaias/floodqa-tui/internal/transcript"
	"github.com/jeranaias/floodqa-tui/internal/ui/styles"
)

// JumpLabel is the text of the jump-to-latest button.
const JumpLabel = "↓ Jump to latest (End)"

// wheelLines is how far one wheel notch scrolls.
const wheelLines = 3

// =============================================================================
// TRANSCRIPT VIEW COMPONENT - Scrollable transcript with jump button
// =============================================================================

// TranscriptView shows the transcript in a viewport. The last row is reserved
// for the scroll indicator and the jump-to-latest button.
type TranscriptView struct {
	vp    *viewport.Model
	tr    *transcript.Transcript
	coord *scroll.Coordinator
	theme *styles.Theme

	width  int
	height int
	ready  bool
}

// NewTranscriptView wraps tr. threshold is the jump distance in lines.
func NewTranscriptView(tr *transcript.Transcript, theme *styles.Theme, threshold int) *TranscriptView {
	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	v := &TranscriptView{
		vp:     &vp,
		tr:     tr,
		theme:  theme,
		width:  80,
		height: 21,
	}
	v.coord = scroll.New(scroll.ViewportSurface{VP: v.vp}, threshold)
	return v
}

// SetThreshold replaces the coordinator with one using threshold.
func (v *TranscriptView) SetThreshold(threshold int) {
	v.coord = scroll.New(scroll.ViewportSurface{VP: v.vp}, threshold)
	v.coord.Recompute()
}

// SetTheme restyles the view.
func (v *TranscriptView) SetTheme(theme *styles.Theme) {
	v.theme = theme
}

// SetSize updates the dimensions, including the indicator row.
func (v *TranscriptView) SetSize(width, height int) {
	v.width = width
	v.height = max(height, 2)
	v.vp.Width = width
	v.vp.Height = v.height - 1
	v.ready = true
}

// Width returns the content width.
func (v *TranscriptView) Width() int {
	return v.width
}

// Refresh re-renders the transcript at now. A view that was at the bottom
// stays there so line reveals remain visible.
func (v *TranscriptView) Refresh(now time.Time) {
	atBottom := v.vp.AtBottom()
	v.vp.SetContent(v.tr.Render(now, v.width))
	if atBottom {
		v.vp.GotoBottom()
	}
	v.coord.Recompute()
}

// Follow scrolls to the newest content after a render.
func (v *TranscriptView) Follow(now time.Time) {
	v.vp.SetContent(v.tr.Render(now, v.width))
	v.coord.JumpToLatest()
}

// JumpToLatest implements conversation.Jumper.
func (v *TranscriptView) JumpToLatest() {
	v.coord.JumpToLatest()
}

// ScrollUp scrolls towards older messages.
func (v *TranscriptView) ScrollUp(lines int) {
	v.vp.LineUp(lines)
	v.coord.Recompute()
}

// ScrollDown scrolls towards newer messages.
func (v *TranscriptView) ScrollDown(lines int) {
	v.vp.LineDown(lines)
	v.coord.Recompute()
}

// JumpVisible reports whether the jump button is shown.
func (v *TranscriptView) JumpVisible() bool {
	return v.coord.Visible()
}

// AtBottom returns true if the newest line is visible.
func (v *TranscriptView) AtBottom() bool {
	return v.vp.AtBottom()
}

// yOffset returns the first visible line.
func (v *TranscriptView) yOffset() int {
	return v.vp.YOffset
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Update handles scroll keys and the mouse wheel. It reports whether msg was
// consumed.
func (v *TranscriptView) Update(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup":
			v.ScrollUp(v.vp.Height)
			return true
		case "pgdown":
			v.ScrollDown(v.vp.Height)
			return true
		case "ctrl+home":
			v.vp.GotoTop()
			v.coord.Recompute()
			return true
		}

	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseWheelUp:
			v.ScrollUp(wheelLines)
			return true
		case tea.MouseWheelDown:
			v.ScrollDown(wheelLines)
			return true
		}
	}
	return false
}

// IsJumpHit reports whether a click at (col, row), relative to the view, lands
// on the visible jump button.
func (v *TranscriptView) IsJumpHit(col, row int) bool {
	if !v.coord.Visible() || row != v.height-1 {
		return false
	}
	w := lipgloss.Width(v.theme.JumpButton.Render(JumpLabel))
	return col >= v.width-w && col < v.width
}

// View renders the viewport with the indicator row.
func (v *TranscriptView) View() string {
	if !v.ready {
		return ""
	}
	return lipgloss.JoinVertical(lipgloss.Left, v.vp.View(), v.indicatorRow())
}

// indicatorRow shows the scroll position on the left and, when far from the
// bottom, the jump button on the right.
func (v *TranscriptView) indicatorRow() string {
	left := ""
	if !v.vp.AtBottom() {
		left = v.theme.ScrollIndicator.Render(
			fmt.Sprintf("v %d lines below", v.coord.DistanceFromBottom()))
	}

	if !v.coord.Visible() {
		return lipgloss.NewStyle().Width(v.width).Render(left)
	}

	button := v.theme.JumpButton.Render(JumpLabel)
	gap := v.width - lipgloss.Width(left) - lipgloss.Width(button)
	if gap < 1 {
		return button
	}
	return left + strings.Repeat(" ", gap) + button
}
