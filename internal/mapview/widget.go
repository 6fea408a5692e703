// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package mapview places query-driven and manual markers on a map widget.
//
// The widget itself is an external capability behind the Widget interface.
// Terminal is the lipgloss-rendered implementation used by the TUI.
package mapview

import (
	"time"

	"github.com/jeranaias/floodqa-tui/internal/geo"
)

// =============================================================================
// WIDGET CONTRACT
// =============================================================================

// Event identifies a widget lifecycle event.
type Event int

const (
	EventLoad Event = iota
	EventClick
	EventError
)

// String returns the event name used in diagnostics.
func (e Event) String() string {
	switch e {
	case EventLoad:
		return "load"
	case EventClick:
		return "click"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// EventData carries the payload of an event. Point is set for clicks, Err for
// errors.
type EventData struct {
	Point geo.Point
	Err   error
}

// Handler receives widget events.
type Handler func(EventData)

// Popup is a marker with an info box.
type Popup struct {
	At    geo.Point
	Title string
	Body  string
}

// Widget is the mapping capability the adapter drives.
type Widget interface {
	// SetView sets the camera without animation.
	SetView(center geo.Point, zoom float64) error
	// On subscribes to a lifecycle event.
	On(ev Event, h Handler)
	// AddPopup shows a marker with an info box.
	AddPopup(p Popup) error
	// RemoveAllPopups removes every marker currently shown.
	RemoveAllPopups()
	// FlyTo animates the camera to center and zoom over d.
	FlyTo(center geo.Point, zoom float64, d time.Duration)
	// Show makes the widget visible.
	Show()
}
