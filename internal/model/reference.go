// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "strconv"

// Reference is a supporting passage returned alongside an answer.
type Reference struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"` // relevance in [0,1]
	Index int     `json:"index,omitempty"`
}

// RelevancePercent formats the score as a percentage with one decimal,
// e.g. 0.8734 -> "87.3%".
func (r Reference) RelevancePercent() string {
	return strconv.FormatFloat(r.Score*100, 'f', 1, 64) + "%"
}

// ReferenceSet is the reference list currently shown beside the transcript.
// Each answer replaces the whole set; references never accumulate.
type ReferenceSet struct {
	items []Reference
	gen   int
}

// Replace swaps in a new set. An empty slice leaves the current set intact.
func (s *ReferenceSet) Replace(refs []Reference) bool {
	if len(refs) == 0 {
		return false
	}
	s.items = append([]Reference(nil), refs...)
	s.gen++
	return true
}

// Items returns a copy of the current references.
func (s *ReferenceSet) Items() []Reference {
	return append([]Reference(nil), s.items...)
}

// Len returns the number of references shown.
func (s *ReferenceSet) Len() int { return len(s.items) }

// Generation increments on every replacement. Tests and the view use it to
// detect mutation.
func (s *ReferenceSet) Generation() int { return s.gen }
