// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transcript

import (
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/floodqa-tui/internal/model"
)

// Avatar glyphs shown in front of every message.
const (
	UserAvatar   = "◉"
	SystemAvatar = "⚑"
)

// pendingFrame is how long each frame of the typing dots lasts.
const pendingFrame = 300 * time.Millisecond

// bodyIndent is the left margin of message bodies.
const bodyIndent = 2

// =============================================================================
// STYLES
// =============================================================================

// Styles holds the lipgloss styles used for each part of a message.
type Styles struct {
	UserAvatar   lipgloss.Style
	SystemAvatar lipgloss.Style
	Name         lipgloss.Style
	Timestamp    lipgloss.Style
	UserBody     lipgloss.Style
	SystemBody   lipgloss.Style
	Pending      lipgloss.Style
}

// DefaultStyles returns uncoloured styles.
func DefaultStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		UserAvatar:   plain,
		SystemAvatar: plain,
		Name:         plain.Bold(true),
		Timestamp:    plain.Faint(true),
		UserBody:     plain,
		SystemBody:   plain,
		Pending:      plain.Faint(true),
	}
}

// =============================================================================
// RENDERER
// =============================================================================

// mdEntry is one cached glamour rendering.
type mdEntry struct {
	width int
	out   string
}

// Renderer turns entries into styled terminal text. Markdown output is cached
// per message and width since glamour is comparatively slow.
type Renderer struct {
	styles   Styles
	markdown bool
	mdStyle  string

	md      *glamour.TermRenderer
	mdWidth int
	cache   map[string]mdEntry
}

// NewRenderer creates a renderer.
func NewRenderer(s Styles, markdown bool) *Renderer {
	return &Renderer{
		styles:   s,
		markdown: markdown,
		mdStyle:  "dark",
		cache:    make(map[string]mdEntry),
	}
}

// SetStyles replaces the styles, e.g. after a theme toggle.
func (r *Renderer) SetStyles(s Styles) {
	r.styles = s
}

// SetMarkdown switches glamour rendering of system bodies on or off.
func (r *Renderer) SetMarkdown(on bool) {
	r.markdown = on
}

// SetMarkdownStyle selects the glamour standard style ("dark" or "light").
func (r *Renderer) SetMarkdownStyle(name string) {
	if name == r.mdStyle {
		return
	}
	r.mdStyle = name
	r.md = nil
	r.cache = make(map[string]mdEntry)
}

// Entry renders a message with its header and the lines revealed by now.
func (r *Renderer) Entry(e entry, now time.Time, width int) string {
	var b strings.Builder
	b.WriteString(r.header(e.msg))

	bodyStyle := r.styles.SystemBody
	if e.msg.IsUser() {
		bodyStyle = r.styles.UserBody
	}
	if width > bodyIndent+1 {
		bodyStyle = bodyStyle.Width(width - bodyIndent)
	}

	revealed := 0
	for _, l := range e.lines {
		if now.Before(e.renderedAt.Add(l.delay)) {
			break
		}
		revealed++
	}

	if revealed == len(e.lines) && r.markdown && !e.msg.IsUser() {
		if out, ok := r.renderMarkdown(e.msg, width); ok {
			b.WriteString("\n")
			b.WriteString(out)
			return b.String()
		}
	}

	for _, l := range e.lines[:revealed] {
		b.WriteString("\n")
		b.WriteString(indent(bodyStyle.Render(l.text)))
	}
	return b.String()
}

// Pending renders the typing placeholder after it has been shown for elapsed.
func (r *Renderer) Pending(elapsed time.Duration) string {
	n := int(elapsed/pendingFrame)%3 + 1
	dots := strings.Repeat("●", n) + strings.Repeat("○", 3-n)
	return r.styles.SystemAvatar.Render(SystemAvatar) + " " + r.styles.Pending.Render(dots)
}

// Plain renders a message without styling or reveal delays, for line-mode
// output.
func Plain(msg model.Message) string {
	avatar := SystemAvatar
	if msg.IsUser() {
		avatar = UserAvatar
	}
	var b strings.Builder
	b.WriteString(avatar + " " + msg.Role.DisplayName() + "  " + msg.Timestamp())
	for _, l := range splitLines(msg.Body, 0) {
		b.WriteString("\n")
		b.WriteString(indent(l.text))
	}
	return b.String()
}

func (r *Renderer) header(msg model.Message) string {
	avatar := r.styles.SystemAvatar.Render(SystemAvatar)
	if msg.IsUser() {
		avatar = r.styles.UserAvatar.Render(UserAvatar)
	}
	return avatar + " " +
		r.styles.Name.Render(msg.Role.DisplayName()) + "  " +
		r.styles.Timestamp.Render(msg.Timestamp())
}

// renderMarkdown renders msg through glamour, falling back to plain lines on
// any error.
func (r *Renderer) renderMarkdown(msg model.Message, width int) (string, bool) {
	if c, ok := r.cache[msg.ID]; ok && c.width == width {
		return c.out, true
	}

	wrap := width - bodyIndent
	if wrap < 20 {
		wrap = 20
	}
	if r.md == nil || r.mdWidth != wrap {
		md, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(r.mdStyle),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return "", false
		}
		r.md, r.mdWidth = md, wrap
	}

	out, err := r.md.Render(msg.Body)
	if err != nil {
		return "", false
	}
	out = strings.Trim(out, "\n")
	r.cache[msg.ID] = mdEntry{width: width, out: out}
	return out, true
}

func indent(s string) string {
	pad := strings.Repeat(" ", bodyIndent)
	return pad + strings.ReplaceAll(s, "\n", "\n"+pad)
}
