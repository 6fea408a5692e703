// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/floodqa-tui/internal/conversation"
	"github.com/jeranaias/floodqa-tui/internal/ui/styles"
)

// frameInterval paces line reveals, the pending dots and map flights.
const frameInterval = 50 * time.Millisecond

// pageLines is how far PgUp/PgDn scroll.
const pageLines = 10

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case AnswerMsg:
		return m.handleAnswer(msg)

	case frameTickMsg:
		return m.handleFrame()

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg)

	case themeSavedMsg:
		if msg.Err != nil {
			m.logger.Warn("failed to persist theme", zap.String("theme", string(msg.Theme)), zap.Error(msg.Err))
		}
		return m, nil

	case spinner.TickMsg:
		return m, m.status.Update(msg)
	}

	var cmd tea.Cmd
	*m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// KEYBOARD
// =============================================================================

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.submit(m.input.Value(), conversation.SourceEnter)

	case key.Matches(msg, m.keys.HistoryUp):
		m.ctrl.Dispatch(conversation.RecallCommand{Direction: conversation.Older})
		m.syncSuggestions()
		return m, nil

	case key.Matches(msg, m.keys.HistoryDown):
		m.ctrl.Dispatch(conversation.RecallCommand{Direction: conversation.Newer})
		m.syncSuggestions()
		return m, nil

	case key.Matches(msg, m.keys.Suggestion):
		return m.submitSuggestion(suggestionNumber(msg.String()))

	case key.Matches(msg, m.keys.ToggleTheme):
		return m.toggleTheme()

	case key.Matches(msg, m.keys.Jump):
		m.ctrl.Dispatch(conversation.JumpCommand{})
		return m, nil

	case key.Matches(msg, m.keys.References):
		m.refs.Toggle()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.view.ScrollUp(pageLines)
		m.refs.Collapse()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.view.ScrollDown(pageLines)
		m.refs.Collapse()
		return m, nil
	}

	var cmd tea.Cmd
	*m.input, cmd = m.input.Update(msg)
	m.syncSuggestions()
	return m, cmd
}

// =============================================================================
// MOUSE
// =============================================================================

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	l := m.layout

	switch msg.Type {
	case tea.MouseWheelUp, tea.MouseWheelDown:
		if l.wide || !m.refs.Expanded() {
			m.view.Update(msg)
		}
		if !l.wide {
			m.refs.Collapse()
		}
		return m, nil
	case tea.MouseLeft:
	default:
		return m, nil
	}

	x, y := msg.X, msg.Y
	switch {
	case y == 0 && x == m.header.IconColumn():
		return m.toggleTheme()

	case l.showMap() && l.mapPanel.contains(x, y):
		col, row := l.mapCell(x, y)
		m.terminal.Click(col, row)
		return m, m.ensureTicking()

	case !l.wide && l.refs.contains(x, y):
		m.refs.Toggle()
		return m, nil

	case l.transcript.contains(x, y):
		if !l.wide && m.refs.Expanded() {
			m.refs.Collapse()
			return m, nil
		}
		if m.view.IsJumpHit(x-l.transcript.x, y-l.transcript.y) {
			m.ctrl.Dispatch(conversation.JumpCommand{})
		}
		return m, nil

	case y == l.inputRow && m.askHit(x):
		return m.submit(m.input.Value(), conversation.SourceButton)

	case y == l.chipsRow && m.ctrl.State().SuggestionsVisible:
		col := x - m.theme.InputContainer.GetPaddingLeft()
		return m.submitSuggestion(m.chips.HitTest(col))
	}
	return m, nil
}

// =============================================================================
// SUBMISSION
// =============================================================================

// submit begins a question and schedules its query.
func (m Model) submit(text string, src conversation.Source) (tea.Model, tea.Cmd) {
	now := m.now()
	res := m.ctrl.Dispatch(conversation.SubmitCommand{Text: text, Source: src})

	var verr *conversation.ValidationError
	switch {
	case errors.Is(res.Err, conversation.ErrBusy):
		m.status.Notify(BusyNotice, now)
		return m, nil
	case errors.As(res.Err, &verr):
		return m, nil
	case res.Err != nil:
		m.logger.Error("submit rejected", zap.Error(res.Err))
		return m, nil
	}

	m.syncSuggestions()
	return m, tea.Batch(
		m.runQuery(res.Ticket),
		m.status.SetLoading(true, now),
		m.ensureTicking(),
	)
}

// submitSuggestion submits chip n (1-based) while the chips are shown.
func (m Model) submitSuggestion(n int) (tea.Model, tea.Cmd) {
	if !m.ctrl.State().SuggestionsVisible {
		return m, nil
	}
	q, ok := m.chips.At(n)
	if !ok {
		return m, nil
	}
	return m.submit(q, conversation.SourceSuggestion)
}

// runQuery runs the ticket's query off the UI goroutine.
func (m Model) runQuery(t *conversation.Ticket) tea.Cmd {
	ctrl, ctx := m.ctrl, m.ctx
	return func() tea.Msg {
		answer, err := ctrl.Run(ctx, t)
		return AnswerMsg{Ticket: t, Answer: answer, Err: err}
	}
}

// handleAnswer settles a finished query on the UI goroutine.
func (m Model) handleAnswer(msg AnswerMsg) (tea.Model, tea.Cmd) {
	out := m.ctrl.Settle(msg.Ticket, msg.Answer, msg.Err)
	m.status.SetLoading(m.ctrl.State().Loading, m.now())

	if m.refs.Sync(m.ctrl.References()) && m.layout.wide {
		m.refs.Collapse()
	}
	if out.Point != nil && !m.mapper.Ready() {
		m.status.Notify("Location found but the map is unavailable", m.now())
	}
	return m, m.ensureTicking()
}

// =============================================================================
// THEME
// =============================================================================

func (m Model) toggleTheme() (tea.Model, tea.Cmd) {
	m.ctrl.Dispatch(conversation.ToggleThemeCommand{})
	theme := m.ctrl.State().Theme
	m.applyTheme(styles.ByName(string(theme)))
	m.logger.Info("theme toggled", zap.String("theme", string(theme)))
	return m, m.saveTheme(theme)
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func (m Model) handleConfigReload(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil || msg.Config == nil {
		m.logger.Warn("config reload failed; keeping previous settings", zap.Error(msg.Err))
		m.status.Notify("Config reload failed", m.now())
		return m, nil
	}
	m.applyConfig(msg.Config)
	m.status.Notify("Config reloaded", m.now())
	return m, nil
}

// =============================================================================
// ANIMATION
// =============================================================================

// animating reports whether anything on screen is still moving.
func (m Model) animating(now time.Time) bool {
	return m.tr.Revealing(now) || m.tr.HasPending() || m.terminal.Animating(now)
}

// ensureTicking starts the frame tick if it is not already running.
func (m *Model) ensureTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return frameTick()
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

func (m Model) handleFrame() (tea.Model, tea.Cmd) {
	now := m.now()
	m.view.Refresh(now)
	if m.animating(now) {
		return m, frameTick()
	}
	m.ticking = false
	return m, nil
}
