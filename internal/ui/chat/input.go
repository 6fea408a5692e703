// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/textinput"
	"go.uber.org/zap"

	"github.com/jeranaias/floodqa-tui/internal/config"
	"github.com/jeranaias/floodqa-tui/internal/querysvc"
)

// Placeholder is shown in the empty input.
const Placeholder = "输入您的问题… (Enter to ask)"

// =============================================================================
// INPUT ADAPTER
// =============================================================================

// inputAdapter lets the controller clear and fill the text input.
type inputAdapter struct {
	ti *textinput.Model
}

func (a inputAdapter) Clear() {
	a.ti.Reset()
}

func (a inputAdapter) Set(text string) {
	a.ti.SetValue(text)
	a.ti.CursorEnd()
}

// newTextInput creates the question input. It is focused during startup.
func newTextInput() *textinput.Model {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.Placeholder = Placeholder
	ti.CharLimit = 500
	return &ti
}

// =============================================================================
// RELOADABLE QUERY CLIENT
// =============================================================================

// reloadingClient is a querysvc client that can be replaced when the query
// settings change. Query runs on command goroutines while Reconfigure runs on
// the UI goroutine.
type reloadingClient struct {
	cur    atomic.Pointer[querysvc.Client]
	last   config.QueryConfig
	logger *zap.Logger
}

func newReloadingClient(q config.QueryConfig, logger *zap.Logger) *reloadingClient {
	r := &reloadingClient{logger: logger}
	r.cur.Store(clientFor(q, logger))
	r.last = q
	return r
}

func clientFor(q config.QueryConfig, logger *zap.Logger) *querysvc.Client {
	return querysvc.NewClientWithConfig(&querysvc.ClientConfig{
		Endpoint:      q.Endpoint,
		Timeout:       q.Timeout.D(),
		RatePerSecond: q.RatePerSecond,
	}, logger)
}

// Query implements conversation.Querier.
func (r *reloadingClient) Query(ctx context.Context, question string) (*querysvc.Answer, error) {
	return r.cur.Load().Query(ctx, question)
}

// Endpoint returns the URL currently queried.
func (r *reloadingClient) Endpoint() string {
	return r.cur.Load().Endpoint()
}

// Reconfigure swaps in a new client when q differs from the current settings.
// A query already in flight finishes on the old client.
func (r *reloadingClient) Reconfigure(q config.QueryConfig) bool {
	if q == r.last {
		return false
	}
	old := r.cur.Swap(clientFor(q, r.logger))
	r.last = q
	old.CloseIdleConnections()
	r.logger.Info("query client reconfigured", zap.String("endpoint", q.Endpoint))
	return true
}
