// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation orchestrates a question from submission to rendered
// answer: transcript turns, pending placeholder, history, references and the
// map marker for coordinates found in the answer.
//
// A submission is split into three steps so that an event loop can keep the
// network call off its own goroutine:
//
//	ticket, err := ctrl.Begin(question, source)  // UI goroutine
//	answer, err := ctrl.Run(ctx, ticket)         // any goroutine
//	outcome := ctrl.Settle(ticket, answer, err)  // UI goroutine
//
// Submit composes the three for line-mode hosts.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeranaias/floodqa-tui/internal/geo"
	"github.com/jeranaias/floodqa-tui/internal/history"
	"github.com/jeranaias/floodqa-tui/internal/model"
	"github.com/jeranaias/floodqa-tui/internal/querysvc"
	"github.com/jeranaias/floodqa-tui/internal/transcript"
)

// DefaultTimeout bounds a single query.
const DefaultTimeout = 60 * time.Second

// =============================================================================
// PORTS
// =============================================================================

// Querier answers a question.
type Querier interface {
	Query(ctx context.Context, question string) (*querysvc.Answer, error)
}

// Transcript is the rendering surface for conversation turns.
type Transcript interface {
	RenderMessage(msg model.Message)
	RenderPending() transcript.PendingHandle
	RemovePending(h transcript.PendingHandle) bool
}

// MarkerPlacer shows a location on the map.
type MarkerPlacer interface {
	PlaceMarker(p geo.Point, label string)
}

// Input is the question field.
type Input interface {
	Clear()
	Set(text string)
}

// Jumper scrolls the transcript to its newest content.
type Jumper interface {
	JumpToLatest()
}

// =============================================================================
// SOURCE
// =============================================================================

// Source is where a submission came from.
type Source int

const (
	SourceButton Source = iota
	SourceEnter
	SourceSuggestion
)

// String returns the name of the source.
func (s Source) String() string {
	switch s {
	case SourceButton:
		return "button"
	case SourceEnter:
		return "enter"
	case SourceSuggestion:
		return "suggestion"
	default:
		return "unknown"
	}
}

// =============================================================================
// TICKET / OUTCOME
// =============================================================================

// Ticket identifies one in-flight submission.
type Ticket struct {
	ID       string
	Question string
	Source   Source
	Started  time.Time

	pending transcript.PendingHandle
}

// Outcome describes how a submission settled.
type Outcome struct {
	Phase   Phase
	Message model.Message // the rendered system message
	Err     error         // the query failure, if any

	// Point is set when the answer contained coordinates.
	Point *geo.Point

	ReferencesReplaced bool
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Deps are the collaborators of a Controller. Transcript, Querier, History,
// References and State are required; the rest may be nil.
type Deps struct {
	Querier    Querier
	Transcript Transcript
	Map        MarkerPlacer
	Input      Input
	Jumper     Jumper
	History    *history.Buffer
	References *model.ReferenceSet
	State      *AppState
	Logger     *zap.Logger
	Timeout    time.Duration
}

// Controller owns the submission lifecycle. Apart from Run, its methods must
// be called from a single goroutine.
type Controller struct {
	querier    Querier
	transcript Transcript
	mapper     MarkerPlacer
	input      Input
	jumper     Jumper
	history    *history.Buffer
	refs       *model.ReferenceSet
	state      *AppState
	logger     *zap.Logger
	timeout    time.Duration

	inflight *Ticket
	now      func() time.Time
}

// New creates a controller.
func New(d Deps) *Controller {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.State == nil {
		d.State = NewAppState(ThemeLight)
	}
	if d.History == nil {
		d.History = history.New(history.DefaultCapacity)
	}
	if d.References == nil {
		d.References = &model.ReferenceSet{}
	}
	if d.Timeout <= 0 {
		d.Timeout = DefaultTimeout
	}
	return &Controller{
		querier:    d.Querier,
		transcript: d.Transcript,
		mapper:     d.Map,
		input:      d.Input,
		jumper:     d.Jumper,
		history:    d.History,
		refs:       d.References,
		state:      d.State,
		logger:     d.Logger.Named("conversation"),
		timeout:    d.Timeout,
		now:        time.Now,
	}
}

// State returns the shared application state.
func (c *Controller) State() *AppState {
	return c.state
}

// History returns the question history.
func (c *Controller) History() *history.Buffer {
	return c.history
}

// References returns the current reference set.
func (c *Controller) References() *model.ReferenceSet {
	return c.refs
}

// Timeout returns the per-query deadline.
func (c *Controller) Timeout() time.Duration {
	return c.timeout
}

// SetTimeout changes the per-query deadline for later submissions.
func (c *Controller) SetTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// Begin validates question and moves to the submitting phase: the user turn
// is rendered, the input cleared, the question recorded in history and the
// placeholder shown.
//
// It returns *ValidationError for blank questions and ErrBusy while another
// question is pending; in both cases nothing is rendered.
func (c *Controller) Begin(question string, src Source) (*Ticket, error) {
	if strings.TrimSpace(question) == "" {
		return nil, &ValidationError{Reason: "question is empty"}
	}
	if c.state.Loading {
		c.logger.Debug("submission rejected, request in flight", zap.Stringer("source", src))
		return nil, ErrBusy
	}

	now := c.now()
	c.transcript.RenderMessage(model.NewMessageAt(model.RoleUser, question, now))
	if c.input != nil {
		c.input.Clear()
	}
	c.history.Push(question)
	c.state.SuggestionsVisible = false

	t := &Ticket{
		ID:       uuid.NewString(),
		Question: question,
		Source:   src,
		Started:  now,
		pending:  c.transcript.RenderPending(),
	}
	c.state.Loading = true
	c.state.Phase = PhaseSubmitting
	c.inflight = t

	c.logger.Info("question submitted",
		zap.String("ticket", t.ID),
		zap.Stringer("source", src),
		zap.Int("length", len(question)))
	return t, nil
}

// Run performs the remote call for t under the configured deadline. It touches
// no controller state and may run on any goroutine.
func (c *Controller) Run(ctx context.Context, t *Ticket) (answer *querysvc.Answer, err error) {
	defer func() {
		if r := recover(); r != nil {
			answer, err = nil, fmt.Errorf("query panicked: %v", r)
		}
	}()

	if c.querier == nil {
		return nil, fmt.Errorf("no query service configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.querier.Query(ctx, t.Question)
}

// Settle renders the result of Run and returns to idle. Loading is cleared on
// every path, including a panic in a collaborator.
func (c *Controller) Settle(t *Ticket, answer *querysvc.Answer, err error) (out Outcome) {
	if t == nil || t != c.inflight {
		c.logger.Warn("stale ticket ignored")
		return Outcome{Phase: c.state.Phase}
	}

	defer func() {
		c.inflight = nil
		c.state.Loading = false
		c.state.Phase = PhaseIdle
	}()

	c.transcript.RemovePending(t.pending)

	if err == nil && answer == nil {
		err = ErrEmptyAnswer
	}
	if err != nil {
		c.state.Phase = PhaseFailed
		msg := model.NewMessageAt(model.RoleSystem, FailureText(err), c.now())
		c.transcript.RenderMessage(msg)
		c.logger.Warn("query failed",
			zap.String("ticket", t.ID),
			zap.Stringer("error_type", querysvc.ErrorTypeOf(err)),
			zap.Duration("elapsed", c.now().Sub(t.Started)),
			zap.Error(err))
		return Outcome{Phase: PhaseFailed, Message: msg, Err: err}
	}

	c.state.Phase = PhaseSuccess
	msg := model.NewMessageAt(model.RoleSystem, answer.Text, c.now())
	c.transcript.RenderMessage(msg)

	out = Outcome{Phase: PhaseSuccess, Message: msg}
	out.ReferencesReplaced = c.refs.Replace(answer.References)
	out.Point = c.locate(answer.Text)

	c.logger.Info("answer rendered",
		zap.String("ticket", t.ID),
		zap.Int("references", len(answer.References)),
		zap.Bool("located", out.Point != nil),
		zap.Duration("elapsed", c.now().Sub(t.Started)))
	return out
}

// Submit runs a whole submission synchronously.
func (c *Controller) Submit(ctx context.Context, question string, src Source) (Outcome, error) {
	t, err := c.Begin(question, src)
	if err != nil {
		return Outcome{}, err
	}
	answer, qerr := c.Run(ctx, t)
	return c.Settle(t, answer, qerr), nil
}

// locate extracts coordinates from text and hands them to the map. Map
// failures, panics included, are logged and never reach the caller.
func (c *Controller) locate(text string) *geo.Point {
	p, ok := geo.Extract(text)
	if !ok {
		c.logger.Debug("no coordinates in answer")
		return nil
	}
	if c.mapper == nil {
		return &p
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("map marker failed", zap.Any("panic", r), zap.Stringer("point", p))
			}
		}()
		c.mapper.PlaceMarker(p, "")
	}()
	return &p
}

// =============================================================================
// HISTORY RECALL
// =============================================================================

// RecallPrevious writes the next older question into the input. It does
// nothing while a question is pending.
func (c *Controller) RecallPrevious() bool {
	if !c.state.Idle() {
		return false
	}
	text, ok := c.history.RecallPrevious()
	if !ok {
		return false
	}
	if c.input != nil {
		c.input.Set(text)
	}
	return true
}

// RecallNext writes the next newer question into the input, or clears it
// after the newest.
func (c *Controller) RecallNext() bool {
	if !c.state.Idle() {
		return false
	}
	text, ok := c.history.RecallNext()
	if !ok {
		return false
	}
	if c.input != nil {
		c.input.Set(text)
	}
	return true
}
