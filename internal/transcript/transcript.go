// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transcript keeps the append-only list of rendered messages and the
// transient "typing" placeholder, and renders them for the terminal.
package transcript

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/floodqa-tui/internal/model"
)

// DefaultLineRevealDelay staggers the lines of a multi-line message.
const DefaultLineRevealDelay = 100 * time.Millisecond

// =============================================================================
// EVENTS
// =============================================================================

// EventKind identifies what changed in the transcript.
type EventKind int

const (
	EventMessage EventKind = iota
	EventPendingShown
	EventPendingRemoved
)

// Event is delivered to listeners after every render.
type Event struct {
	Kind    EventKind
	Message model.Message // set for EventMessage
}

// Listener is notified after every render.
type Listener func(Event)

// PendingHandle identifies the placeholder returned by RenderPending.
type PendingHandle struct {
	id string
}

// Valid reports whether the handle refers to a placeholder at all.
func (h PendingHandle) Valid() bool { return h.id != "" }

// =============================================================================
// TRANSCRIPT
// =============================================================================

// Options configures presentation.
type Options struct {
	// LineRevealDelay is the per-line delay for multi-line bodies
	LineRevealDelay time.Duration
	// Markdown renders system bodies through glamour
	Markdown bool
}

// entry is one rendered message and the time its reveal started.
type entry struct {
	msg        model.Message
	renderedAt time.Time
	lines      []line
}

// line is one visual line of a message body.
type line struct {
	text  string
	delay time.Duration
}

// pending is the transient placeholder.
type pending struct {
	id    string
	since time.Time
}

// Transcript is the append-only message log. Only the placeholder is ever
// removed.
//
// Transcript is owned by the UI goroutine and is not safe for concurrent use.
type Transcript struct {
	entries   []entry
	pending   *pending
	opts      Options
	listeners []Listener
	renderer  *Renderer
	now       func() time.Time
}

// New creates an empty transcript.
func New(opts Options) *Transcript {
	if opts.LineRevealDelay < 0 {
		opts.LineRevealDelay = 0
	}
	return &Transcript{
		opts:     opts,
		renderer: NewRenderer(DefaultStyles(), opts.Markdown),
		now:      time.Now,
	}
}

// SetClock overrides the clock, for tests.
func (t *Transcript) SetClock(now func() time.Time) {
	t.now = now
}

// Renderer returns the renderer used by Render.
func (t *Transcript) Renderer() *Renderer {
	return t.renderer
}

// SetLineRevealDelay changes the stagger for messages rendered from now on.
func (t *Transcript) SetLineRevealDelay(d time.Duration) {
	t.opts.LineRevealDelay = max(d, 0)
}

// OnRendered registers a listener called after every render.
func (t *Transcript) OnRendered(l Listener) {
	t.listeners = append(t.listeners, l)
}

// RenderMessage appends msg. A body with line breaks is split into staggered
// visual lines; msg.Body itself is kept intact.
func (t *Transcript) RenderMessage(msg model.Message) {
	t.entries = append(t.entries, entry{
		msg:        msg,
		renderedAt: t.now(),
		lines:      splitLines(msg.Body, t.opts.LineRevealDelay),
	})
	t.notify(Event{Kind: EventMessage, Message: msg})
}

// RenderPending shows the typing placeholder and returns its handle. An
// existing placeholder is replaced, so at most one is ever shown.
func (t *Transcript) RenderPending() PendingHandle {
	p := &pending{id: uuid.NewString(), since: t.now()}
	t.pending = p
	t.notify(Event{Kind: EventPendingShown})
	return PendingHandle{id: p.id}
}

// RemovePending removes the placeholder identified by h. Stale handles are
// ignored and reported as false.
func (t *Transcript) RemovePending(h PendingHandle) bool {
	if t.pending == nil || t.pending.id != h.id {
		return false
	}
	t.pending = nil
	t.notify(Event{Kind: EventPendingRemoved})
	return true
}

// HasPending reports whether the placeholder is shown.
func (t *Transcript) HasPending() bool {
	return t.pending != nil
}

// Messages returns the rendered messages in order. The placeholder is never
// included.
func (t *Transcript) Messages() []model.Message {
	out := make([]model.Message, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.msg
	}
	return out
}

// Len returns the number of rendered messages.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Revealing reports whether any line is still waiting for its reveal delay.
func (t *Transcript) Revealing(now time.Time) bool {
	for i := len(t.entries) - 1; i >= 0; i-- {
		e := t.entries[i]
		if n := len(e.lines); n > 0 && now.Before(e.renderedAt.Add(e.lines[n-1].delay)) {
			return true
		}
	}
	return false
}

// Render draws the transcript at now for the given width.
func (t *Transcript) Render(now time.Time, width int) string {
	var b strings.Builder
	for i, e := range t.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(t.renderer.Entry(e, now, width))
	}
	if t.pending != nil {
		if len(t.entries) > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(t.renderer.Pending(now.Sub(t.pending.since)))
	}
	return b.String()
}

func (t *Transcript) notify(ev Event) {
	for _, l := range t.listeners {
		l(ev)
	}
}

// splitLines breaks a body at explicit line breaks. Blank lines are dropped
// but still count toward the stagger, so paragraph gaps read as pauses.
func splitLines(body string, delay time.Duration) []line {
	if !strings.Contains(body, "\n") {
		return []line{{text: body}}
	}
	var out []line
	for i, l := range strings.Split(body, "\n") {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, line{text: l, delay: time.Duration(i) * delay})
	}
	return out
}
