// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/floodqa-tui/internal/config"
	"github.com/jeranaias/floodqa-tui/internal/conversation"
	"github.com/jeranaias/floodqa-tui/internal/geo"
	"github.com/jeranaias/floodqa-tui/internal/mapview"
	"github.com/jeranaias/floodqa-tui/internal/model"
	"github.com/jeranaias/floodqa-tui/internal/querysvc"
	"github.com/jeranaias/floodqa-tui/internal/storage"
)

var t0 = time.Date(2025, 7, 1, 14, 7, 0, 0, time.Local)

// =============================================================================
// TEST HELPERS
// =============================================================================

type queryFunc func(ctx context.Context, q string) (*querysvc.Answer, error)

func (f queryFunc) Query(ctx context.Context, q string) (*querysvc.Answer, error) {
	return f(ctx, q)
}

func answerWith(text string, refs ...model.Reference) queryFunc {
	return func(context.Context, string) (*querysvc.Answer, error) {
		return &querysvc.Answer{Text: text, References: refs}, nil
	}
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.UI.LineRevealDelay = 0
	return cfg
}

func newTestModel(t *testing.T, q conversation.Querier) Model {
	t.Helper()
	return New(Options{
		Config:  testConfig(),
		Querier: q,
		Theme:   conversation.ThemeLight,
		Now:     func() time.Time { return t0 },
	})
}

// update applies msg and returns the new model.
func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// collect runs cmd and every command of a batch, returning their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func answerIn(t *testing.T, msgs []tea.Msg) AnswerMsg {
	t.Helper()
	for _, msg := range msgs {
		if a, ok := msg.(AnswerMsg); ok {
			return a
		}
	}
	t.Fatal("no AnswerMsg produced")
	return AnswerMsg{}
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// ask types text, presses Enter and settles the answer.
func ask(t *testing.T, m Model, text string) Model {
	t.Helper()
	m = typeText(t, m, text)
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = update(t, m, answerIn(t, collect(cmd)))
	return m
}

func roles(msgs []model.Message) []model.Role {
	out := make([]model.Role, len(msgs))
	for i, msg := range msgs {
		out[i] = msg.Role
	}
	return out
}

// =============================================================================
// STARTUP
// =============================================================================

func TestNew_Startup(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))

	assert.Equal(t, "light", m.ThemeName())
	assert.True(t, m.Map().Ready())
	assert.True(t, m.input.Focused())
	assert.True(t, m.Controller().State().SuggestionsVisible)

	view := m.View()
	assert.Contains(t, view, "floodqa")
	assert.Contains(t, view, "☾")
	assert.Contains(t, view, AskLabel)
	assert.Contains(t, view, "M-1")
	assert.Contains(t, view, "click to drop a marker")
}

func TestNew_ResizeKeepsRendering(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))

	for _, size := range []tea.WindowSizeMsg{{Width: 160, Height: 50}, {Width: 70, Height: 40}, {Width: 40, Height: 12}} {
		m, _ = update(t, m, size)
		assert.NotEmpty(t, m.View())
	}
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmit_EnterRendersAnswerReferencesAndMarker(t *testing.T) {
	refs := []model.Reference{{Text: "镇江市防汛应急预案第三条", Score: 0.873}}
	m := newTestModel(t, answerWith("请前往北纬31.96°，东经119.42°的安置点", refs...))

	m = typeText(t, m, "最近的安置点在哪？")
	assert.False(t, m.Controller().State().SuggestionsVisible)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, m.InputValue())
	assert.True(t, m.Controller().State().Loading)
	assert.True(t, m.Transcript().HasPending())
	assert.Equal(t, []model.Role{model.RoleUser}, roles(m.Transcript().Messages()))

	m, _ = update(t, m, answerIn(t, collect(cmd)))

	assert.False(t, m.Controller().State().Loading)
	assert.False(t, m.Transcript().HasPending())
	assert.Equal(t, []model.Role{model.RoleUser, model.RoleSystem}, roles(m.Transcript().Messages()))

	popup, ok := m.Map().Active()
	require.True(t, ok)
	assert.Equal(t, geo.Point{Lng: 119.42, Lat: 31.96}, popup.At)
	assert.Equal(t, mapview.EmergencyTitle, popup.Title)

	assert.Contains(t, m.View(), "relevance: 87.3%")
}

func TestSubmit_FailureRendersOneSystemMessage(t *testing.T) {
	m := newTestModel(t, queryFunc(func(context.Context, string) (*querysvc.Answer, error) {
		return nil, &querysvc.ClientError{Type: querysvc.ErrTypeHTTPStatus, StatusCode: 500, Message: "HTTP error: status 500"}
	}))

	m = ask(t, m, "水位多少？")

	msgs := m.Transcript().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleSystem, msgs[1].Role)
	assert.Contains(t, msgs[1].Body, "500")
	assert.Zero(t, m.Controller().References().Len())
	_, ok := m.Map().Active()
	assert.False(t, ok)
}

func TestSubmit_BlankIgnored(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))

	m = typeText(t, m, "   ")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, cmd)
	assert.Zero(t, m.Transcript().Len())
	assert.Empty(t, m.Notice())
}

func TestSubmit_BusyShowsNotice(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))

	m = typeText(t, m, "第一个问题")
	m, first := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, first)

	m = typeText(t, m, "第二个问题")
	m, second := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Nil(t, second)
	assert.Equal(t, BusyNotice, m.Notice())
	assert.Equal(t, "第二个问题", m.InputValue(), "a rejected question stays in the input")
	assert.Equal(t, []model.Role{model.RoleUser}, roles(m.Transcript().Messages()))

	m, _ = update(t, m, answerIn(t, collect(first)))
	assert.Equal(t, []model.Role{model.RoleUser, model.RoleSystem}, roles(m.Transcript().Messages()))
}

func TestSubmit_AskButton(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))
	m = typeText(t, m, "问题")

	right := m.layout.width - m.theme.InputContainer.GetPaddingRight()
	m, cmd := update(t, m, tea.MouseMsg{X: right - 1, Y: m.layout.inputRow, Type: tea.MouseLeft})

	require.NotNil(t, cmd)
	msgs := m.Transcript().Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "问题", msgs[0].Body)
}

func TestSubmit_AltSuggestion(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1"), Alt: true})
	require.NotNil(t, cmd)

	msgs := m.Transcript().Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, config.DefaultSuggestions[0], msgs[0].Body)
	assert.False(t, m.Controller().State().SuggestionsVisible)

	m, _ = update(t, m, answerIn(t, collect(cmd)))
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2"), Alt: true})
	assert.Nil(t, cmd, "chips are hidden after a submission")
}

func TestSubmit_ChipClick(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))

	x := m.theme.InputContainer.GetPaddingLeft()
	m, cmd := update(t, m, tea.MouseMsg{X: x, Y: m.layout.chipsRow, Type: tea.MouseLeft})

	require.NotNil(t, cmd)
	require.Len(t, m.Transcript().Messages(), 1)
	assert.Equal(t, config.DefaultSuggestions[0], m.Transcript().Messages()[0].Body)
}

func TestSubmit_OverHTTP(t *testing.T) {
	var (
		mu       sync.Mutex
		received []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req querysvc.QueryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		received = append(received, req.Question)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(querysvc.QueryResponse{
			Status: querysvc.StatusSuccess,
			Answer: "已收到",
			Contexts: []querysvc.ContextPassage{
				{Text: "避难场所名录", Score: 0.5},
			},
		})
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.Query.Endpoint = srv.URL
	cfg.Query.RatePerSecond = 0
	m := New(Options{Config: cfg, Theme: conversation.ThemeLight, Now: func() time.Time { return t0 }})
	defer m.client.cur.Load().CloseIdleConnections()

	assert.Equal(t, srv.URL, m.header.Endpoint)
	m = ask(t, m, "附近哪里有避难场所？")

	mu.Lock()
	assert.Equal(t, []string{"附近哪里有避难场所？"}, received)
	mu.Unlock()
	msgs := m.Transcript().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "已收到", msgs[1].Body)
	assert.Equal(t, 1, m.Controller().References().Len())
}

// =============================================================================
// HISTORY
// =============================================================================

func TestRecall_AltArrows(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))
	m = ask(t, m, "a")
	m = ask(t, m, "b")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	assert.Equal(t, "b", m.InputValue())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp, Alt: true})
	assert.Equal(t, "a", m.InputValue())
	assert.False(t, m.Controller().State().SuggestionsVisible)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown, Alt: true})
	assert.Equal(t, "b", m.InputValue())
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown, Alt: true})
	assert.Empty(t, m.InputValue())
	assert.True(t, m.Controller().State().SuggestionsVisible)
}

// =============================================================================
// THEME
// =============================================================================

func TestToggleTheme_PersistsPreference(t *testing.T) {
	prefs, err := storage.OpenPrefs(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	defer prefs.Close()

	m := New(Options{
		Config:  testConfig(),
		Querier: answerWith("ok"),
		Prefs:   prefs,
		Theme:   conversation.ThemeLight,
		Now:     func() time.Time { return t0 },
	})

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.Equal(t, "dark", m.ThemeName())
	assert.Equal(t, conversation.ThemeDark, m.Controller().State().Theme)
	assert.Contains(t, m.View(), "☀")

	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	saved, ok := msgs[0].(themeSavedMsg)
	require.True(t, ok)
	require.NoError(t, saved.Err)

	got, err := prefs.Get(context.Background(), storage.KeyTheme)
	require.NoError(t, err)
	assert.Equal(t, "dark", got)
	assert.Equal(t, conversation.ThemeDark, ResolveTheme(context.Background(), prefs, nil))
}

func TestToggleTheme_HeaderIconClick(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))

	m, cmd := update(t, m, tea.MouseMsg{X: m.header.IconColumn(), Y: 0, Type: tea.MouseLeft})
	assert.Nil(t, cmd, "no prefs store, nothing to persist")
	assert.Equal(t, "dark", m.ThemeName())
}

func TestResolveTheme_IgnoresInvalidStoredValue(t *testing.T) {
	prefs, err := storage.OpenPrefs(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	defer prefs.Close()
	require.NoError(t, prefs.Set(context.Background(), storage.KeyTheme, "sepia"))

	got := ResolveTheme(context.Background(), prefs, nil)
	_, ok := conversation.ParseTheme(string(got))
	assert.True(t, ok)
}

// =============================================================================
// MAP
// =============================================================================

func TestMapClick_DropsManualMarker(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))
	l := m.layout
	require.True(t, l.showMap())

	x := l.mapPanel.x + mapInsetX + (l.mapPanel.w-mapChromeWidth)/2
	y := l.mapPanel.y + mapInsetY + (l.mapPanel.h-mapChromeHeight)/2
	m, _ = update(t, m, tea.MouseMsg{X: x, Y: y, Type: tea.MouseLeft})

	popup, ok := m.Map().Active()
	require.True(t, ok)
	assert.Equal(t, mapview.ManualTitle, popup.Title)
	assert.True(t, m.Map().ActiveIsManual())
}

func TestMapClick_OutsideGridIgnored(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))
	l := m.layout

	m, _ = update(t, m, tea.MouseMsg{X: l.mapPanel.x, Y: l.mapPanel.y, Type: tea.MouseLeft})
	_, ok := m.Map().Active()
	assert.False(t, ok, "a click on the border is not on the map")
}

// =============================================================================
// SCROLLING
// =============================================================================

func TestJumpToLatest(t *testing.T) {
	m := newTestModel(t, answerWith("第一行\n第二行\n第三行\n第四行\n第五行"))
	for i := 0; i < 30; i++ {
		m = ask(t, m, "问题")
	}
	require.True(t, m.view.AtBottom())

	m, _ = update(t, m, tea.MouseMsg{Type: tea.MouseWheelUp})
	assert.False(t, m.view.AtBottom())

	for i := 0; i < 20; i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyPgUp})
	}
	require.True(t, m.view.JumpVisible())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnd})
	assert.True(t, m.view.AtBottom())
	assert.False(t, m.view.JumpVisible())
}

func TestNewAnswerFollowsToBottom(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))
	for i := 0; i < 30; i++ {
		m = ask(t, m, "问题")
	}
	m.view.ScrollUp(1000)
	require.False(t, m.view.AtBottom())

	m = ask(t, m, "再问一次")
	assert.True(t, m.view.AtBottom())
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func TestConfigReload_AppliesSettings(t *testing.T) {
	m := New(Options{Config: testConfig(), Theme: conversation.ThemeLight, Now: func() time.Time { return t0 }})

	cfg := testConfig()
	cfg.Query.Endpoint = "http://10.0.0.7:5000/query"
	cfg.Query.Timeout = config.Duration(5 * time.Second)
	cfg.UI.Suggestions = []string{"只有一个"}

	m, _ = update(t, m, ConfigReloadedMsg{Config: cfg})

	assert.Equal(t, "http://10.0.0.7:5000/query", m.header.Endpoint)
	assert.Equal(t, 5*time.Second, m.Controller().Timeout())
	assert.Equal(t, []string{"只有一个"}, m.chips.Items())
	assert.Equal(t, "Config reloaded", m.Notice())
}

func TestConfigReload_ErrorKeepsSettings(t *testing.T) {
	m := newTestModel(t, answerWith("ok"))

	m, _ = update(t, m, ConfigReloadedMsg{Err: errors.New("bad toml")})

	assert.Equal(t, "Config reload failed", m.Notice())
	assert.Equal(t, conversation.DefaultTimeout, m.Controller().Timeout())
}

// =============================================================================
// LAYOUT & KEYS
// =============================================================================

func TestComputeLayout(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wide    bool
		showMap bool
	}{
		{name: "wide", w: 120, h: 40, wide: true, showMap: true},
		{name: "narrow tall", w: 80, h: 40, showMap: true},
		{name: "narrow short", w: 80, h: 20},
		{name: "wide short", w: 120, h: 12, wide: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := computeLayout(tt.w, tt.h)
			assert.Equal(t, tt.wide, l.wide)
			assert.Equal(t, tt.showMap, l.showMap())
			assert.Equal(t, tt.h-1, l.statusRow)
			assert.Equal(t, l.body.y+l.body.h, l.transcript.y+l.transcript.h, "transcript fills the body")
			assert.Positive(t, l.transcript.h)
		})
	}
}

func TestSuggestionNumber(t *testing.T) {
	assert.Equal(t, 1, suggestionNumber("alt+1"))
	assert.Equal(t, 4, suggestionNumber("alt+4"))
	assert.Equal(t, 0, suggestionNumber("alt+5"))
	assert.Equal(t, 0, suggestionNumber("ctrl+1"))
	assert.Equal(t, 0, suggestionNumber("1"))
}

func TestKeyMapShortcuts(t *testing.T) {
	sc := DefaultKeyMap().Shortcuts()
	require.NotEmpty(t, sc)
	assert.Equal(t, "Enter", sc[0].Key)
}
