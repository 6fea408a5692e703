// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stubsvc is a local stand-in for the flood question answering
// service. It speaks the same request/response contract as the real service
// and answers from a JSON fixture, so the client can be demoed and tested
// without the retrieval backend.
//
// Endpoints:
//   - POST /query  - answer a question: {"question": "..."}
//   - GET  /health - liveness check
//   - GET  /stats  - request counters
//
// A request that cannot be decoded, or that carries no question, gets the
// service's error shape with HTTP 200:
//
//	{"answer":"server error","contexts":[],"status":"error"}
package stubsvc
