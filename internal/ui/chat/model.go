// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/floodqa-tui/internal/config"
	"github.com/jeranaias/floodqa-tui/internal/conversation"
	"github.com/jeranaias/floodqa-tui/internal/geo"
	"github.com/jeranaias/floodqa-tui/internal/history"
	"github.com/jeranaias/floodqa-tui/internal/mapview"
	"github.com/jeranaias/floodqa-tui/internal/model"
	"github.com/jeranaias/floodqa-tui/internal/storage"
	"github.com/jeranaias/floodqa-tui/internal/transcript"
	"github.com/jeranaias/floodqa-tui/internal/ui/components"
	"github.com/jeranaias/floodqa-tui/internal/ui/styles"
)

// BusyNotice is shown when a question is submitted while another is pending.
const BusyNotice = "A question is already being answered"

// Default terminal size until the first WindowSizeMsg arrives.
const (
	defaultWidth  = 100
	defaultHeight = 30
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Model.
type Options struct {
	// Config supplies the query, map and UI settings (default config.Default())
	Config *config.Config

	// Querier overrides the HTTP client built from Config.Query. An injected
	// querier is not replaced on config reload.
	Querier conversation.Querier

	// Prefs persists the theme; nil disables persistence
	Prefs *storage.Prefs

	// Theme is the starting theme; empty resolves it with ResolveTheme
	Theme conversation.Theme

	Logger  *zap.Logger
	Context context.Context
	Now     func() time.Time
}

// ResolveTheme returns the persisted theme, or the terminal's background
// when none is stored.
func ResolveTheme(ctx context.Context, prefs *storage.Prefs, logger *zap.Logger) conversation.Theme {
	if logger == nil {
		logger = zap.NewNop()
	}
	if prefs != nil {
		v, err := prefs.Get(ctx, storage.KeyTheme)
		switch {
		case err == nil:
			if t, ok := conversation.ParseTheme(v); ok {
				return t
			}
			logger.Warn("ignoring invalid stored theme", zap.String("value", v))
		case !errors.Is(err, storage.ErrNotFound):
			logger.Warn("failed to read theme preference", zap.Error(err))
		}
	}
	if styles.DetectDark() {
		return conversation.ThemeDark
	}
	return conversation.ThemeLight
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the question screen. Components are held by pointer so the
// controller and listeners see the same instances as every copy of Model.
type Model struct {
	ctx    context.Context
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time
	keys   KeyMap

	ctrl   *conversation.Controller
	client *reloadingClient // nil when a Querier was injected
	tr     *transcript.Transcript
	input  *textinput.Model
	prefs  *storage.Prefs
	theme  *styles.Theme

	header *components.Header
	view   *components.TranscriptView
	refs   *components.ReferenceList
	chips  *components.Suggestions
	status *components.StatusBar

	terminal *mapview.Terminal
	mapper   *mapview.Adapter

	layout  layout
	ticking bool
}

// New builds the screen and runs the startup sequence: theme, map, input
// focus, scroll affordance.
func New(opts Options) Model {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	cfg := opts.Config
	logger := opts.Logger.Named("ui")

	if opts.Theme == "" {
		opts.Theme = ResolveTheme(opts.Context, opts.Prefs, logger)
	}
	theme := styles.ByName(string(opts.Theme))

	m := Model{
		ctx:    opts.Context,
		cfg:    cfg,
		logger: logger,
		now:    opts.Now,
		keys:   DefaultKeyMap(),
		prefs:  opts.Prefs,
		theme:  theme,
		input:  newTextInput(),
		header: components.NewHeader(theme),
		refs:   components.NewReferenceList(theme),
		chips:  components.NewSuggestions(cfg.UI.Suggestions, theme),
		status: components.NewStatusBar(theme),
	}
	m.status.Shortcuts = m.keys.Shortcuts()

	m.tr = transcript.New(transcript.Options{
		LineRevealDelay: cfg.UI.LineRevealDelay.D(),
		Markdown:        cfg.UI.Markdown,
	})
	m.tr.SetClock(opts.Now)
	m.view = components.NewTranscriptView(m.tr, theme, cfg.UI.JumpThreshold)
	m.tr.OnRendered(func(transcript.Event) {
		m.view.Follow(m.now())
	})

	m.terminal = mapview.NewTerminal(mapGridMinWidth, mapGridMinHeight)
	m.terminal.SetClock(opts.Now)
	m.mapper = mapview.NewAdapter(m.terminal, mapview.Options{
		Center:      geo.Point{Lng: cfg.Map.CenterLng, Lat: cfg.Map.CenterLat},
		Zoom:        cfg.Map.Zoom,
		FlyZoom:     cfg.Map.FlyZoom,
		FlyDuration: cfg.Map.FlyDuration.D(),
	}, opts.Logger)

	querier := opts.Querier
	if querier == nil {
		m.client = newReloadingClient(cfg.Query, opts.Logger)
		querier = m.client
		m.header.Endpoint = m.client.Endpoint()
	}

	m.ctrl = conversation.New(conversation.Deps{
		Querier:    querier,
		Transcript: m.tr,
		Map:        m.mapper,
		Input:      inputAdapter{ti: m.input},
		Jumper:     m.view,
		History:    history.New(cfg.UI.HistorySize),
		References: &model.ReferenceSet{},
		State:      conversation.NewAppState(opts.Theme),
		Logger:     opts.Logger,
		Timeout:    cfg.Query.Timeout.D(),
	})

	m.resize(defaultWidth, defaultHeight)
	m.startup()
	return m
}

// startup runs the ordered initialization steps, logging each one.
func (m *Model) startup() {
	m.applyTheme(m.theme)
	m.logger.Info("theme applied", zap.String("theme", m.theme.Name))

	if err := m.mapper.Init(); err != nil {
		m.status.SetMapNote("map unavailable")
		m.logger.Warn("map unavailable; chat continues without it", zap.Error(err))
	} else {
		m.logger.Info("map initialized", zap.Bool("loaded", m.mapper.Loaded()))
	}

	m.input.Focus()
	m.syncSuggestions()
	m.logger.Info("input focused")

	m.view.Refresh(m.now())
	m.logger.Info("scroll affordance computed", zap.Bool("jump_visible", m.view.JumpVisible()))
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Controller returns the conversation controller.
func (m Model) Controller() *conversation.Controller {
	return m.ctrl
}

// Transcript returns the rendered transcript.
func (m Model) Transcript() *transcript.Transcript {
	return m.tr
}

// Map returns the map adapter.
func (m Model) Map() *mapview.Adapter {
	return m.mapper
}

// InputValue returns the current input text.
func (m Model) InputValue() string {
	return m.input.Value()
}

// ThemeName returns the active theme name.
func (m Model) ThemeName() string {
	return m.theme.Name
}

// Notice returns the status notice currently shown.
func (m Model) Notice() string {
	return m.status.Notice(m.now())
}

// =============================================================================
// THEME & CONFIG
// =============================================================================

// applyTheme restyles every component.
func (m *Model) applyTheme(t *styles.Theme) {
	m.theme = t
	m.theme.SetSize(m.layout.width, m.layout.height)

	m.header.SetTheme(t)
	m.header.ThemeIcon = m.ctrl.State().Theme.Icon()
	m.view.SetTheme(t)
	m.refs.SetTheme(t)
	m.chips.SetTheme(t)
	m.status.SetTheme(t)
	m.terminal.SetStyle(t.MapPanel)

	r := m.tr.Renderer()
	r.SetStyles(t.Transcript)
	r.SetMarkdownStyle(t.GlamourStyle())

	m.input.PromptStyle = t.InputPrompt
	m.input.TextStyle = t.InputText
	m.input.PlaceholderStyle = t.InputPlaceholder

	m.view.Refresh(m.now())
}

// applyConfig applies the settings that can change while running. History
// size and map camera settings take effect on the next start.
func (m *Model) applyConfig(cfg *config.Config) {
	m.cfg = cfg
	m.ctrl.SetTimeout(cfg.Query.Timeout.D())
	if m.client != nil && m.client.Reconfigure(cfg.Query) {
		m.header.Endpoint = m.client.Endpoint()
	}

	m.tr.SetLineRevealDelay(cfg.UI.LineRevealDelay.D())
	m.tr.Renderer().SetMarkdown(cfg.UI.Markdown)
	m.view.SetThreshold(cfg.UI.JumpThreshold)
	m.chips.SetItems(cfg.UI.Suggestions)
	m.syncSuggestions()

	m.view.Refresh(m.now())
	m.logger.Info("config applied",
		zap.String("endpoint", cfg.Query.Endpoint),
		zap.Duration("timeout", cfg.Query.Timeout.D()),
		zap.Bool("markdown", cfg.UI.Markdown))
}

// syncSuggestions shows the chips only while the input is empty.
func (m *Model) syncSuggestions() {
	m.ctrl.State().SuggestionsVisible = m.input.Value() == "" && len(m.chips.Items()) > 0
}

// saveTheme persists theme off the UI goroutine.
func (m Model) saveTheme(theme conversation.Theme) tea.Cmd {
	if m.prefs == nil {
		return nil
	}
	prefs, ctx := m.prefs, m.ctx
	return func() tea.Msg {
		return themeSavedMsg{Theme: theme, Err: prefs.Set(ctx, storage.KeyTheme, string(theme))}
	}
}
