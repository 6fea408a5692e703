// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package querysvc provides the HTTP client for the remote question answering
// service.
package querysvc

import "github.com/jeranaias/floodqa-tui/internal/model"

// =============================================================================
// WIRE TYPES
// =============================================================================

// Status values of a query response. Only StatusSuccess is treated as an
// answer.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// QueryRequest is the request body for the query endpoint.
type QueryRequest struct {
	Question string `json:"question"`
}

// ContextPassage is one supporting passage in a query response.
type ContextPassage struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
	Index *int    `json:"index,omitempty"`
}

// QueryResponse is the response body of the query endpoint. It is used for
// both success ("status":"success") and application errors ("status":"error").
type QueryResponse struct {
	Status   string           `json:"status"`
	Answer   string           `json:"answer"`
	Contexts []ContextPassage `json:"contexts"`
}

// =============================================================================
// DOMAIN RESULT
// =============================================================================

// Answer is a successful response converted to domain types.
type Answer struct {
	Text       string
	References []model.Reference
}

// toAnswer converts a wire response into an Answer.
func (r *QueryResponse) toAnswer() *Answer {
	refs := make([]model.Reference, 0, len(r.Contexts))
	for _, c := range r.Contexts {
		ref := model.Reference{Text: c.Text, Score: c.Score}
		if c.Index != nil {
			ref.Index = *c.Index
		}
		refs = append(refs, ref)
	}
	return &Answer{Text: r.Answer, References: refs}
}
