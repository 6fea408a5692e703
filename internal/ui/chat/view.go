// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/floodqa-tui/internal/ui/components"
	"github.com/jeranaias/floodqa-tui/internal/ui/styles"
)

// AskLabel is the submit button at the end of the input line.
const AskLabel = "Ask ⏎"

// Fixed rows around the body.
const (
	headerRows = 1
	inputRows  = 3 // border, input line, chips
	statusRows = 1
)

// Map panel geometry. The grid sits inside a border and one column of
// padding, below a coordinates line, above up to two caption lines.
const (
	mapInsetX        = 2
	mapInsetY        = 2
	mapChromeWidth   = 4
	mapChromeHeight  = 5
	mapGridMinWidth  = 16
	mapGridMinHeight = 3
	narrowMapRows    = 9
	narrowMapMinBody = 18
	wideMapMaxRows   = 16
)

// =============================================================================
// LAYOUT
// =============================================================================

// rect is a screen region in cells.
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// layout is the screen geometry for one terminal size. The same values drive
// rendering and mouse hit testing.
type layout struct {
	width, height int
	wide          bool

	body       rect
	transcript rect
	mapPanel   rect // zero when the map is hidden
	refs       rect // the side panel, or the one-line summary when narrow

	inputRow  int
	chipsRow  int
	statusRow int
}

func computeLayout(width, height int) layout {
	l := layout{
		width:  width,
		height: height,
		wide:   styles.LayoutFor(width) == styles.LayoutWide,
	}
	bodyHeight := max(height-headerRows-inputRows-statusRows, 2)
	l.body = rect{0, headerRows, width, bodyHeight}
	l.inputRow = headerRows + bodyHeight + 1
	l.chipsRow = l.inputRow + 1
	l.statusRow = l.chipsRow + 1

	if l.wide {
		side := components.ReferencePanelWidth(width)
		l.transcript = rect{0, l.body.y, width - side, bodyHeight}

		mapRows := min(bodyHeight/2, wideMapMaxRows)
		if mapRows-mapChromeHeight >= mapGridMinHeight && side-mapChromeWidth >= mapGridMinWidth {
			l.mapPanel = rect{width - side, l.body.y, side, mapRows}
		}
		l.refs = rect{width - side, l.body.y + l.mapPanel.h, side, bodyHeight - l.mapPanel.h}
		return l
	}

	y := l.body.y
	if bodyHeight >= narrowMapMinBody && width-mapChromeWidth >= mapGridMinWidth {
		l.mapPanel = rect{0, y, width, narrowMapRows}
		y += narrowMapRows
	}
	l.refs = rect{0, y, width, 1}
	y++
	l.transcript = rect{0, y, width, l.body.y + bodyHeight - y}
	return l
}

// showMap reports whether the map panel has room.
func (l layout) showMap() bool {
	return l.mapPanel.w > 0
}

// mapCell converts a screen position to a map grid cell.
func (l layout) mapCell(x, y int) (col, row int) {
	return x - l.mapPanel.x - mapInsetX, y - l.mapPanel.y - mapInsetY
}

// resize recomputes the layout and sizes every component.
func (m *Model) resize(width, height int) {
	m.layout = computeLayout(width, height)
	l := m.layout
	m.theme.SetSize(width, height)

	m.header.Width = width
	m.status.Width = width
	m.view.SetSize(l.transcript.w, l.transcript.h)
	m.refs.SetWidth(l.refs.w)
	if l.showMap() {
		m.terminal.SetSize(l.mapPanel.w-mapChromeWidth, l.mapPanel.h-mapChromeHeight)
	}

	inner := width - m.theme.InputContainer.GetHorizontalFrameSize()
	m.input.Width = max(inner-lipgloss.Width(m.input.Prompt)-m.askWidth()-2, 1)
	m.view.Refresh(m.now())
}

// =============================================================================
// RENDERING
// =============================================================================

// View implements tea.Model.
func (m Model) View() string {
	now := m.now()
	l := m.layout

	body := lipgloss.NewStyle().
		Width(l.width).
		Height(l.body.h).
		MaxHeight(l.body.h).
		Render(m.bodyView(now))

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header.View(),
		body,
		m.inputView(),
		m.status.View(now),
	)
}

func (m Model) bodyView(now time.Time) string {
	l := m.layout
	if l.wide {
		var side []string
		if l.showMap() {
			side = append(side, m.mapView(now))
		}
		side = append(side, clip(m.refs.View(), l.refs.h))
		return lipgloss.JoinHorizontal(lipgloss.Top,
			m.view.View(),
			lipgloss.JoinVertical(lipgloss.Left, side...),
		)
	}

	var rows []string
	if l.showMap() {
		rows = append(rows, m.mapView(now))
	}
	rows = append(rows, m.refs.Summary(l.refs.w))
	if m.refs.Expanded() {
		rows = append(rows, clip(m.refs.View(), l.transcript.h))
	} else {
		rows = append(rows, m.view.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// mapView renders the map panel padded to its fixed height.
func (m Model) mapView(now time.Time) string {
	h := m.layout.mapPanel.h
	return lipgloss.NewStyle().Height(h).MaxHeight(h).Render(m.terminal.View(now))
}

// inputView renders the input line with the Ask button and, while the input
// is empty, the suggestion chips.
func (m Model) inputView() string {
	inner := m.layout.width - m.theme.InputContainer.GetHorizontalFrameSize()

	field := m.input.View()
	ask := m.theme.JumpButton.Render(AskLabel)
	gap := max(inner-lipgloss.Width(field)-lipgloss.Width(ask), 1)
	line := field + strings.Repeat(" ", gap) + ask

	var chips string
	if m.ctrl.State().SuggestionsVisible {
		chips = m.chips.View(inner)
	}
	return m.theme.InputContainer.Width(m.layout.width).MaxWidth(m.layout.width).Render(line + "\n" + chips)
}

// askWidth is the rendered width of the Ask button.
func (m Model) askWidth() int {
	return lipgloss.Width(m.theme.JumpButton.Render(AskLabel))
}

// askHit reports whether x on the input row is on the Ask button.
func (m Model) askHit(x int) bool {
	right := m.layout.width - m.theme.InputContainer.GetPaddingRight()
	return x >= right-m.askWidth() && x < right
}

// clip cuts s to at most h lines.
func clip(s string, h int) string {
	return lipgloss.NewStyle().MaxHeight(max(h, 0)).Render(s)
}
