// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/floodqa-tui/internal/model"
	"github.com/jeranaias/floodqa-tui/internal/ui/styles"
)

// ReferenceTitle heads the reference list.
const ReferenceTitle = "References"

// passageLines is how many lines of each passage are shown.
const passageLines = 3

// =============================================================================
// REFERENCE LIST COMPONENT
// =============================================================================

// ReferenceList shows the passages supporting the latest answer, each with
// its relevance. On wide terminals it sits beside the transcript; on narrow
// ones it is collapsed to a one-line summary and expands when a new set
// arrives.
type ReferenceList struct {
	items      []model.Reference
	generation int
	expanded   bool
	width      int
	theme      *styles.Theme
}

// NewReferenceList creates an empty list.
func NewReferenceList(theme *styles.Theme) *ReferenceList {
	return &ReferenceList{theme: theme, width: 30}
}

// SetTheme restyles the list.
func (r *ReferenceList) SetTheme(theme *styles.Theme) {
	r.theme = theme
}

// SetWidth sets the outer width.
func (r *ReferenceList) SetWidth(width int) {
	r.width = max(width, 12)
}

// Sync copies set if it changed since the last call and reports whether it
// did. A new set auto-expands the list.
func (r *ReferenceList) Sync(set *model.ReferenceSet) bool {
	if set.Generation() == r.generation {
		return false
	}
	r.generation = set.Generation()
	r.items = set.Items()
	r.expanded = true
	return true
}

// Len returns the number of passages.
func (r *ReferenceList) Len() int {
	return len(r.items)
}

// Expanded reports whether the collapsed list is currently open.
func (r *ReferenceList) Expanded() bool {
	return r.expanded
}

// Collapse closes the list; used on the next transcript interaction.
func (r *ReferenceList) Collapse() {
	r.expanded = false
}

// Toggle flips the collapsed list open or closed.
func (r *ReferenceList) Toggle() {
	r.expanded = !r.expanded
}

// View renders the full panel.
func (r *ReferenceList) View() string {
	panel := r.theme.ReferencePanel.Width(r.width - r.theme.ReferencePanel.GetHorizontalBorderSize())
	inner := max(r.width-r.theme.ReferencePanel.GetHorizontalFrameSize(), 4)

	var b strings.Builder
	b.WriteString(r.theme.ReferenceTitle.Render(ReferenceTitle))
	if len(r.items) == 0 {
		b.WriteString("\n")
		b.WriteString(r.theme.ReferenceScore.Render("none yet"))
		return panel.Render(b.String())
	}

	for i, ref := range r.items {
		b.WriteString("\n\n")
		b.WriteString(r.theme.ReferenceScore.Render(
			runewidth.Truncate(itoa(i+1)+". relevance: "+ref.RelevancePercent(), inner, "…")))
		for _, line := range wrapPassage(ref.Text, inner, passageLines) {
			b.WriteString("\n")
			b.WriteString(r.theme.ReferenceText.Render(line))
		}
	}
	return panel.Render(b.String())
}

// Summary renders the collapsed one-line form.
func (r *ReferenceList) Summary(width int) string {
	hint := "▸ "
	if r.expanded {
		hint = "▾ "
	}
	text := hint + ReferenceTitle + " (" + itoa(len(r.items)) + ") Ctrl+R"
	return r.theme.ReferenceTitle.Render(runewidth.Truncate(text, width, "…"))
}

// =============================================================================
// HELPERS
// =============================================================================

// wrapPassage hard-wraps text to width cells and keeps at most maxLines,
// marking the cut with an ellipsis. CJK text has no spaces to break on, so
// wrapping is by cell width rather than by word.
func wrapPassage(text string, width, maxLines int) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" || width <= 0 {
		return nil
	}

	var lines []string
	var cur strings.Builder
	curWidth := 0
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if curWidth+w > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
			if len(lines) == maxLines {
				break
			}
		}
		cur.WriteRune(r)
		curWidth += w
	}
	if len(lines) < maxLines && cur.Len() > 0 {
		return append(lines, cur.String())
	}
	if len(lines) == maxLines {
		last := lines[maxLines-1]
		lines[maxLines-1] = runewidth.Truncate(last, width-1, "") + "…"
	}
	return lines
}

// ReferencePanelWidth is the side panel width for a terminal width.
func ReferencePanelWidth(total int) int {
	if styles.LayoutFor(total) == styles.LayoutWide {
		return max(total/4, 28)
	}
	return total
}
