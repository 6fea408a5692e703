// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the floodqa TUI.
//
// # Components
//
//   - TranscriptView: the scrolling transcript, its scroll indicator and the
//     jump-to-latest button, driven by a scroll.Coordinator
//   - ReferenceList: supporting passages with "relevance: 87.3%" scores
//   - Suggestions: quick question chips (Alt+1..Alt+4)
//   - StatusBar: request spinner, transient notices, key hints
//   - Header: title, endpoint and the theme toggle icon
//
// Every component takes a *styles.Theme and is restyled with SetTheme after
// a theme toggle.
package components
