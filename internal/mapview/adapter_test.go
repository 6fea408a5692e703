// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mapview

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeranaias/floodqa-tui/internal/geo"
)

// panicWidget fails hard inside SetView.
type panicWidget struct{ *Terminal }

func (panicWidget) SetView(geo.Point, float64) error { panic("style fetch failed") }

// errWidget rejects the initial view.
type errWidget struct{ *Terminal }

func (errWidget) SetView(geo.Point, float64) error { return errors.New("no network") }

func newObservedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func newReadyAdapter(t *testing.T) (*Adapter, *Terminal) {
	t.Helper()
	w := NewTerminal(40, 12)
	a := NewAdapter(w, DefaultOptions(), nil)
	require.NoError(t, a.Init())
	return a, w
}

// =============================================================================
// INIT TESTS
// =============================================================================

func TestInit_AppliesDefaultView(t *testing.T) {
	a, w := newReadyAdapter(t)

	assert.True(t, a.Ready())
	assert.True(t, a.Loaded(), "load event should be observed")
	assert.True(t, w.Visible())

	center, zoom := w.Camera(time.Now())
	assert.Equal(t, geo.Point{Lng: 119.42, Lat: 31.96}, center)
	assert.Equal(t, 10.0, zoom)
}

func TestInit_Failures(t *testing.T) {
	tests := []struct {
		name   string
		widget Widget
	}{
		{name: "nil widget", widget: nil},
		{name: "widget error", widget: errWidget{NewTerminal(10, 5)}},
		{name: "widget panic", widget: panicWidget{NewTerminal(10, 5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := newObservedLogger()
			a := NewAdapter(tt.widget, DefaultOptions(), logger)

			err := a.Init()
			var initErr *MapInitError
			require.ErrorAs(t, err, &initErr)
			assert.False(t, a.Ready())
			assert.Equal(t, 1, logs.FilterMessage("map initialization failed").Len())
		})
	}
}

func TestInit_WidgetErrorEventIsLogged(t *testing.T) {
	logger, logs := newObservedLogger()
	w := NewTerminal(20, 6)
	a := NewAdapter(w, DefaultOptions(), logger)
	require.NoError(t, a.Init())

	w.Fail(errors.New("tile 404"))
	assert.Equal(t, 1, logs.FilterMessage("map error").Len())
	assert.True(t, a.Ready(), "widget errors must not disable the adapter")
}

// =============================================================================
// MARKER TESTS
// =============================================================================

func TestPlaceMarker_KeepsSingleMarker(t *testing.T) {
	a, w := newReadyAdapter(t)

	first := geo.Point{Lng: 119.42, Lat: 31.96}
	second := geo.Point{Lng: 118.80, Lat: 32.06}
	a.PlaceMarker(first, "")
	a.PlaceMarker(second, "")

	popups := w.Popups()
	require.Len(t, popups, 1)
	assert.Equal(t, second, popups[0].At)
	assert.Equal(t, EmergencyTitle, popups[0].Title)

	active, ok := a.Active()
	require.True(t, ok)
	assert.Equal(t, second, active.At)
	assert.False(t, a.ActiveIsManual())
}

func TestPlaceMarker_FliesToPoint(t *testing.T) {
	a, w := newReadyAdapter(t)
	start := time.Now()
	w.SetClock(func() time.Time { return start })

	target := geo.Point{Lng: 120.0, Lat: 32.5}
	a.PlaceMarker(target, "安置点")

	assert.True(t, w.Animating(start.Add(time.Second)))

	mid, midZoom := w.Camera(start.Add(time.Second))
	assert.NotEqual(t, target, mid)
	assert.Greater(t, midZoom, 10.0)

	end, zoom := w.Camera(start.Add(2 * time.Second))
	assert.Equal(t, target, end)
	assert.Equal(t, 13.0, zoom)
	assert.False(t, w.Animating(start.Add(3*time.Second)))

	active, _ := a.Active()
	assert.Equal(t, "安置点", active.Body)
}

func TestPlaceMarker_UninitializedIsNoop(t *testing.T) {
	logger, logs := newObservedLogger()
	w := NewTerminal(20, 6)
	a := NewAdapter(w, DefaultOptions(), logger)

	assert.NotPanics(t, func() { a.PlaceMarker(geo.Point{Lng: 1, Lat: 2}, "") })
	assert.Empty(t, w.Popups())
	assert.Equal(t, 1, logs.FilterMessage("map not initialized, marker skipped").Len())

	nilAdapter := NewAdapter(nil, Options{}, nil)
	assert.NotPanics(t, func() { nilAdapter.PlaceMarker(geo.Point{}, "") })
}

func TestClick_DropsManualMarker(t *testing.T) {
	a, w := newReadyAdapter(t)
	a.PlaceMarker(geo.Point{Lng: 119.42, Lat: 31.96}, "")

	now := time.Now().Add(time.Minute)
	w.SetClock(func() time.Time { return now })
	centerBefore, zoomBefore := w.Camera(now)

	w.Click(0, 0)

	popups := w.Popups()
	require.Len(t, popups, 1)
	assert.Equal(t, ManualTitle, popups[0].Title)
	assert.True(t, a.ActiveIsManual())

	centerAfter, zoomAfter := w.Camera(now)
	assert.Equal(t, centerBefore, centerAfter, "manual markers never move the camera")
	assert.Equal(t, zoomBefore, zoomAfter)
}

// =============================================================================
// PROJECTION TESTS
// =============================================================================

func TestProjectRoundTrip(t *testing.T) {
	w := NewTerminal(40, 12)
	require.NoError(t, w.SetView(geo.Point{Lng: 119.42, Lat: 31.96}, 10))
	now := time.Now()

	p := w.Unproject(5, 3, now)
	col, row, ok := w.Project(p, now)
	require.True(t, ok)
	assert.Equal(t, 5, col)
	assert.Equal(t, 3, row)

	_, _, ok = w.Project(geo.Point{Lng: -70, Lat: 40}, now)
	assert.False(t, ok)
}

func TestViewShowsMarker(t *testing.T) {
	a, w := newReadyAdapter(t)
	w.FlyTo(geo.Point{Lng: 119.42, Lat: 31.96}, 10, 0)
	a.HandleClick(geo.Point{Lng: 119.42, Lat: 31.96})

	view := w.View(time.Now())
	assert.Contains(t, view, "◆")
	assert.Contains(t, view, ManualTitle)
}
