// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea model for the floodqa question screen.
//
// The model owns the widgets (transcript view, input, suggestion chips,
// reference panel, map panel, status bar) and hands every user action to a
// conversation.Controller. Queries run as tea.Cmds off the UI goroutine and
// come back as AnswerMsg, which the model settles on the UI goroutine.
//
// # Layout
//
//	header (title, endpoint, theme icon)
//	transcript | map panel
//	           | references
//	input line            [Ask]
//	suggestion chips
//	status bar
//
// Terminals narrower than the wide layout stack the map above a one-line
// reference summary and give the rest of the body to the transcript.
//
// # Animation
//
// Line reveals, the pending indicator and map flights are driven by a single
// frame tick that runs only while something is moving.
package chat
