// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mapview

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/floodqa-tui/internal/geo"
)

// =============================================================================
// TERMINAL MAP WIDGET
// =============================================================================

// Approximate cell geometry used for the linear projection: a 256px tile and a
// terminal cell roughly 8px wide and twice as tall.
const (
	tilePixels  = 256
	cellPixelsX = 8
	cellAspect  = 2
)

// MinZoom and MaxZoom bound the camera.
const (
	MinZoom = 1
	MaxZoom = 18
)

// ErrNotVisible is returned for popups added before Show.
var ErrNotVisible = errors.New("map widget not visible")

// flight is an in-progress camera animation.
type flight struct {
	from, to         geo.Point
	fromZoom, toZoom float64
	start            time.Time
	dur              time.Duration
}

// Terminal renders a map panel with lipgloss. Camera moves are eased over the
// requested duration; the host redraws with View(now) on its own ticks.
type Terminal struct {
	width, height int // grid size in cells

	center geo.Point
	zoom   float64
	flight *flight

	popups   []Popup
	handlers map[Event][]Handler
	visible  bool

	now   func() time.Time
	style lipgloss.Style
}

// NewTerminal creates a widget with a grid of width x height cells.
func NewTerminal(width, height int) *Terminal {
	t := &Terminal{
		handlers: make(map[Event][]Handler),
		now:      time.Now,
		style: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			Padding(0, 1),
	}
	t.SetSize(width, height)
	return t
}

// SetSize resizes the grid.
func (t *Terminal) SetSize(width, height int) {
	t.width = max(width, 8)
	t.height = max(height, 4)
}

// SetStyle replaces the panel style (border colour follows the theme).
func (t *Terminal) SetStyle(s lipgloss.Style) {
	t.style = s
}

// SetClock overrides the clock, for tests.
func (t *Terminal) SetClock(now func() time.Time) {
	t.now = now
}

// SetView implements Widget.
func (t *Terminal) SetView(center geo.Point, zoom float64) error {
	if math.IsNaN(center.Lng) || math.IsNaN(center.Lat) || math.IsNaN(zoom) {
		return fmt.Errorf("invalid view %v z%v", center, zoom)
	}
	t.center = center
	t.zoom = clampZoom(zoom)
	t.flight = nil
	return nil
}

// On implements Widget.
func (t *Terminal) On(ev Event, h Handler) {
	t.handlers[ev] = append(t.handlers[ev], h)
}

// AddPopup implements Widget.
func (t *Terminal) AddPopup(p Popup) error {
	if !t.visible {
		return ErrNotVisible
	}
	t.popups = append(t.popups, p)
	return nil
}

// RemoveAllPopups implements Widget.
func (t *Terminal) RemoveAllPopups() {
	t.popups = nil
}

// FlyTo implements Widget. The flight starts from the camera's current
// (possibly mid-flight) position.
func (t *Terminal) FlyTo(center geo.Point, zoom float64, d time.Duration) {
	now := t.now()
	from, fromZoom := t.Camera(now)
	if d <= 0 {
		t.center, t.zoom, t.flight = center, clampZoom(zoom), nil
		return
	}
	t.flight = &flight{
		from:     from,
		to:       center,
		fromZoom: fromZoom,
		toZoom:   clampZoom(zoom),
		start:    now,
		dur:      d,
	}
}

// Show implements Widget and emits the load event.
func (t *Terminal) Show() {
	t.visible = true
	t.emit(EventLoad, EventData{})
}

// Fail reports a widget-internal error to subscribers.
func (t *Terminal) Fail(err error) {
	t.emit(EventError, EventData{Err: err})
}

// Popups returns the markers currently shown.
func (t *Terminal) Popups() []Popup {
	return append([]Popup(nil), t.popups...)
}

// Visible reports whether Show has been called.
func (t *Terminal) Visible() bool {
	return t.visible
}

// Camera returns the centre and zoom at now, interpolating an active flight.
func (t *Terminal) Camera(now time.Time) (geo.Point, float64) {
	f := t.flight
	if f == nil {
		return t.center, t.zoom
	}
	elapsed := now.Sub(f.start)
	if elapsed >= f.dur {
		t.center, t.zoom, t.flight = f.to, f.toZoom, nil
		return t.center, t.zoom
	}
	k := easeInOutCubic(float64(elapsed) / float64(f.dur))
	return geo.Point{
		Lng: lerp(f.from.Lng, f.to.Lng, k),
		Lat: lerp(f.from.Lat, f.to.Lat, k),
	}, lerp(f.fromZoom, f.toZoom, k)
}

// Animating reports whether a flight is still in progress at now.
func (t *Terminal) Animating(now time.Time) bool {
	t.Camera(now)
	return t.flight != nil
}

// Click converts a grid cell into a point and emits a click event.
// Cells outside the grid are ignored.
func (t *Terminal) Click(col, row int) {
	if !t.visible || col < 0 || row < 0 || col >= t.width || row >= t.height {
		return
	}
	t.emit(EventClick, EventData{Point: t.Unproject(col, row, t.now())})
}

// Project maps p onto the grid at now. ok is false when p is off screen.
func (t *Terminal) Project(p geo.Point, now time.Time) (col, row int, ok bool) {
	center, zoom := t.Camera(now)
	dx, dy := degreesPerCell(zoom)
	col = t.width/2 + int(math.Round((p.Lng-center.Lng)/dx))
	row = t.height/2 - int(math.Round((p.Lat-center.Lat)/dy))
	ok = col >= 0 && col < t.width && row >= 0 && row < t.height
	return col, row, ok
}

// Unproject maps a grid cell back to a point at now.
func (t *Terminal) Unproject(col, row int, now time.Time) geo.Point {
	center, zoom := t.Camera(now)
	dx, dy := degreesPerCell(zoom)
	return geo.Point{
		Lng: center.Lng + float64(col-t.width/2)*dx,
		Lat: center.Lat - float64(row-t.height/2)*dy,
	}
}

// View renders the panel at now.
func (t *Terminal) View(now time.Time) string {
	if !t.visible {
		return ""
	}
	center, zoom := t.Camera(now)

	grid := make([][]rune, t.height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat("·", t.width))
	}
	grid[t.height/2][t.width/2] = '+'

	for _, p := range t.popups {
		if col, row, ok := t.Project(p.At, now); ok {
			grid[row][col] = '◆'
		}
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%.4f°N %.4f°E  z%.1f\n", center.Lat, center.Lng, zoom))
	for _, line := range grid {
		b.WriteString(string(line))
		b.WriteByte('\n')
	}
	b.WriteString(t.popupCaption())

	return t.style.Render(b.String())
}

// popupCaption describes the active popup under the grid.
func (t *Terminal) popupCaption() string {
	if len(t.popups) == 0 {
		return runewidth.Truncate("click to drop a marker", t.width, "…")
	}
	p := t.popups[len(t.popups)-1]
	caption := runewidth.Truncate("◆ "+p.Title+" "+p.At.String(), t.width, "…")
	if p.Body != "" {
		caption += "\n" + runewidth.Truncate("  "+p.Body, t.width, "…")
	}
	return caption
}

// emit calls every handler subscribed to ev.
func (t *Terminal) emit(ev Event, data EventData) {
	for _, h := range t.handlers[ev] {
		h(data)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// degreesPerCell returns the longitude and latitude span of one cell.
func degreesPerCell(zoom float64) (dx, dy float64) {
	worldCells := tilePixels * math.Pow(2, zoom) / cellPixelsX
	dx = 360 / worldCells
	return dx, dx * cellAspect
}

func clampZoom(z float64) float64 {
	return math.Min(MaxZoom, math.Max(MinZoom, z))
}

func lerp(a, b, k float64) float64 {
	return a + (b-a)*k
}

func easeInOutCubic(x float64) float64 {
	if x < 0.5 {
		return 4 * x * x * x
	}
	return 1 - math.Pow(-2*x+2, 3)/2
}
