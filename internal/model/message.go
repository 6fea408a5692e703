// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcript messages and
// supporting references.
package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleSystem:
		return "Responder"
	default:
		return string(r)
	}
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single transcript entry. It is never modified after it has
// been rendered.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, body string) Message {
	return NewMessageAt(role, body, time.Now())
}

// NewMessageAt creates a message with an explicit creation time.
func NewMessageAt(role Role, body string, at time.Time) Message {
	return Message{
		ID:        "msg_" + uuid.NewString(),
		Role:      role,
		Body:      body,
		CreatedAt: at,
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(body string) Message {
	return NewMessage(RoleUser, body)
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(body string) Message {
	return NewMessage(RoleSystem, body)
}

// IsUser reports whether the message was typed by the user.
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// Timestamp returns the zero-padded local "HH:MM" of CreatedAt.
func (m Message) Timestamp() string {
	return m.CreatedAt.Local().Format("15:04")
}
