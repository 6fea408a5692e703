// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package mapview

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/floodqa-tui/internal/geo"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Popup titles.
const (
	EmergencyTitle = "Emergency location"
	ManualTitle    = "Marked point"
)

// Options configures the adapter camera.
type Options struct {
	Center      geo.Point
	Zoom        float64
	FlyZoom     float64
	FlyDuration time.Duration
}

// DefaultOptions centres the map on Zhenjiang at zoom 10 and flies to markers
// at zoom 13 over two seconds.
func DefaultOptions() Options {
	return Options{
		Center:      geo.Point{Lng: 119.42, Lat: 31.96},
		Zoom:        10,
		FlyZoom:     13,
		FlyDuration: 2 * time.Second,
	}
}

// MapInitError reports that the widget could not be initialized. It is only
// ever logged; chat keeps working without a map.
type MapInitError struct {
	Cause error
}

func (e *MapInitError) Error() string {
	return "map initialization failed: " + e.Cause.Error()
}

func (e *MapInitError) Unwrap() error {
	return e.Cause
}

// ErrNoWidget is the MapInitError cause when no widget was supplied.
var ErrNoWidget = errors.New("no map widget")

// =============================================================================
// ADAPTER
// =============================================================================

// Adapter owns the single active marker on a Widget.
//
// Adapter is driven from the UI goroutine only.
type Adapter struct {
	widget Widget
	opts   Options
	logger *zap.Logger

	ready  bool
	loaded bool
	active *Popup
	manual bool
}

// NewAdapter wraps widget. A nil widget is allowed; Init then fails and every
// placement becomes a logged no-op.
func NewAdapter(widget Widget, opts Options, logger *zap.Logger) *Adapter {
	def := DefaultOptions()
	if opts.Zoom == 0 {
		opts.Zoom = def.Zoom
	}
	if opts.FlyZoom == 0 {
		opts.FlyZoom = def.FlyZoom
	}
	if opts.FlyDuration == 0 {
		opts.FlyDuration = def.FlyDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		widget: widget,
		opts:   opts,
		logger: logger.Named("map"),
	}
}

// Init applies the default view, subscribes to widget events and shows the
// widget. Failures, including panics inside the widget, are logged and
// returned as *MapInitError.
func (a *Adapter) Init() (err error) {
	a.logger.Debug("initializing map")

	defer func() {
		if r := recover(); r != nil {
			err = &MapInitError{Cause: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			a.ready = false
			a.logger.Error("map initialization failed", zap.Error(err))
		}
	}()

	if a.widget == nil {
		return &MapInitError{Cause: ErrNoWidget}
	}

	if err := a.widget.SetView(a.opts.Center, a.opts.Zoom); err != nil {
		return &MapInitError{Cause: err}
	}

	a.widget.On(EventLoad, func(EventData) {
		a.loaded = true
		a.logger.Debug("map loaded")
	})
	a.widget.On(EventClick, func(ev EventData) {
		a.logger.Debug("map clicked", zap.Float64("lng", ev.Point.Lng), zap.Float64("lat", ev.Point.Lat))
		a.HandleClick(ev.Point)
	})
	a.widget.On(EventError, func(ev EventData) {
		a.logger.Warn("map error", zap.Error(ev.Err))
	})

	a.widget.Show()
	a.ready = true
	a.logger.Debug("map container visible")
	return nil
}

// Ready reports whether Init succeeded.
func (a *Adapter) Ready() bool {
	return a.ready
}

// Loaded reports whether the widget has emitted its load event.
func (a *Adapter) Loaded() bool {
	return a.loaded
}

// PlaceMarker replaces any marker with one at p and flies the camera there.
// label is optional body text under the "Emergency location" title.
//
// Without an initialized widget the call is logged and ignored.
func (a *Adapter) PlaceMarker(p geo.Point, label string) {
	if !a.ready {
		a.logger.Warn("map not initialized, marker skipped", zap.Stringer("point", p))
		return
	}

	a.logger.Debug("placing marker", zap.Stringer("point", p))
	if !a.replace(Popup{At: p, Title: EmergencyTitle, Body: label}) {
		return
	}
	a.manual = false

	a.widget.FlyTo(p, a.opts.FlyZoom, a.opts.FlyDuration)
	a.logger.Debug("marker placed", zap.Stringer("point", p))
}

// HandleClick drops a manual marker at p. It is independent of PlaceMarker:
// it never moves the camera.
func (a *Adapter) HandleClick(p geo.Point) {
	if !a.ready {
		return
	}
	if a.replace(Popup{At: p, Title: ManualTitle}) {
		a.manual = true
	}
}

// Active returns the marker currently shown.
func (a *Adapter) Active() (Popup, bool) {
	if a.active == nil {
		return Popup{}, false
	}
	return *a.active, true
}

// ActiveIsManual reports whether the active marker came from a click.
func (a *Adapter) ActiveIsManual() bool {
	return a.active != nil && a.manual
}

// replace clears every popup before adding p so markers never accumulate.
func (a *Adapter) replace(p Popup) bool {
	a.widget.RemoveAllPopups()
	a.active = nil

	if err := a.widget.AddPopup(p); err != nil {
		a.logger.Warn("add popup failed", zap.Error(err))
		return false
	}
	a.active = &p
	return true
}
