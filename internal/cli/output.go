// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/floodqa-tui/internal/model"
	"github.com/jeranaias/floodqa-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(styles.Blue).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	warnStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	scoreStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)
)

// =============================================================================
// REFERENCES
// =============================================================================

// formatReferences lists refs with their relevance, one passage line each.
func formatReferences(refs []model.Reference, width int) string {
	var b strings.Builder
	for i, ref := range refs {
		head := strings.Join([]string{strconv.Itoa(i + 1) + ".", "relevance:", ref.RelevancePercent()}, " ")
		b.WriteString(scoreStyle.Render(head))
		b.WriteString("\n   ")
		text := strings.Join(strings.Fields(ref.Text), " ")
		b.WriteString(runewidth.Truncate(text, max(width-3, 10), "…"))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// MARKDOWN
// =============================================================================

// renderMarkdown renders an answer through glamour. It returns text unchanged
// when colours are off or rendering fails.
func renderMarkdown(text string, width int) string {
	if !ColorsEnabled() {
		return text
	}
	style := styles.NameLight
	if styles.DetectDark() {
		style = styles.NameDark
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// =============================================================================
// JSON HIGHLIGHTING
// =============================================================================

// highlightJSON colours JSON for a terminal. It returns src unchanged when
// colours are off or highlighting fails.
func highlightJSON(src string) string {
	if !ColorsEnabled() {
		return src
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		return src
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return src
	}
	return buf.String()
}
