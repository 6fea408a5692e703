// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/jeranaias/floodqa-tui/internal/config"
	"github.com/jeranaias/floodqa-tui/internal/conversation"
	"github.com/jeranaias/floodqa-tui/internal/querysvc"
)

// =============================================================================
// QUERY MESSAGES
// =============================================================================

// AnswerMsg carries the result of a query back to the UI goroutine.
type AnswerMsg struct {
	Ticket *conversation.Ticket
	Answer *querysvc.Answer
	Err    error
}

// =============================================================================
// ANIMATION MESSAGES
// =============================================================================

// frameTickMsg advances line reveals, the pending indicator and map flights.
type frameTickMsg time.Time

// =============================================================================
// SETTINGS MESSAGES
// =============================================================================

// ConfigReloadedMsg delivers a configuration reloaded from disk. Err is set
// when the file could not be loaded; the previous settings stay in effect.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}

// themeSavedMsg reports the outcome of persisting the theme preference.
type themeSavedMsg struct {
	Theme conversation.Theme
	Err   error
}
