// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package scroll decides when the "jump to latest" affordance is shown for a
// scrollable transcript and moves it to the newest content on request.
package scroll

import "github.com/charmbracelet/bubbles/viewport"

// DefaultThreshold is the distance from the bottom, in lines, beyond which the
// jump affordance is shown.
const DefaultThreshold = 100

// =============================================================================
// SURFACE
// =============================================================================

// Surface is a scrollable region.
type Surface interface {
	// ScrollTop is the offset of the first visible line.
	ScrollTop() int
	// ScrollHeight is the total content height.
	ScrollHeight() int
	// ClientHeight is the visible height.
	ClientHeight() int
	// ScrollToBottom moves to the end of the content.
	ScrollToBottom()
}

// ViewportSurface adapts a bubbles viewport to Surface.
type ViewportSurface struct {
	VP *viewport.Model
}

// ScrollTop implements Surface.
func (s ViewportSurface) ScrollTop() int { return s.VP.YOffset }

// ScrollHeight implements Surface.
func (s ViewportSurface) ScrollHeight() int { return s.VP.TotalLineCount() }

// ClientHeight implements Surface.
func (s ViewportSurface) ClientHeight() int { return s.VP.Height }

// ScrollToBottom implements Surface.
func (s ViewportSurface) ScrollToBottom() { s.VP.GotoBottom() }

// =============================================================================
// COORDINATOR
// =============================================================================

// Coordinator tracks whether the jump affordance should be visible.
type Coordinator struct {
	surface   Surface
	threshold int
	visible   bool
}

// New creates a coordinator for surface. A non-positive threshold selects
// DefaultThreshold.
func New(surface Surface, threshold int) *Coordinator {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Coordinator{surface: surface, threshold: threshold}
}

// Threshold returns the distance beyond which the affordance shows.
func (c *Coordinator) Threshold() int {
	return c.threshold
}

// DistanceFromBottom returns how far the visible region is above the end of
// the content. It is never negative.
func (c *Coordinator) DistanceFromBottom() int {
	d := c.surface.ScrollHeight() - c.surface.ScrollTop() - c.surface.ClientHeight()
	if d < 0 {
		return 0
	}
	return d
}

// ShouldShowJumpAffordance reports whether the viewer is more than the
// threshold away from the bottom. Exactly the threshold does not count.
func (c *Coordinator) ShouldShowJumpAffordance() bool {
	return c.DistanceFromBottom() > c.threshold
}

// Recompute re-evaluates the affordance after a scroll and reports whether it
// is now visible.
func (c *Coordinator) Recompute() bool {
	c.visible = c.ShouldShowJumpAffordance()
	return c.visible
}

// Visible returns the result of the last Recompute.
func (c *Coordinator) Visible() bool {
	return c.visible
}

// JumpToLatest scrolls to the bottom and hides the affordance.
func (c *Coordinator) JumpToLatest() {
	c.surface.ScrollToBottom()
	c.Recompute()
}
