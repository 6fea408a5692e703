// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package stubsvc

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/floodqa-tui/internal/querysvc"
)

//go:embed fixture.json
var defaultFixture []byte

// Entry is one canned answer. It matches a question containing any of its
// keywords.
type Entry struct {
	Keywords []string                  `json:"keywords,omitempty"`
	Answer   string                    `json:"answer"`
	Contexts []querysvc.ContextPassage `json:"contexts"`
}

// Fixture is the answer table served by the stub.
type Fixture struct {
	Entries  []Entry `json:"entries"`
	Fallback Entry   `json:"fallback"`
}

// DefaultFixture returns the built-in flood answers.
func DefaultFixture() *Fixture {
	f, err := parseFixture(defaultFixture)
	if err != nil {
		panic(fmt.Sprintf("stubsvc: built-in fixture: %v", err))
	}
	return f
}

// LoadFixture reads a fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}
	f, err := parseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

func parseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid fixture JSON: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate rejects entries that could never match and a missing fallback.
func (f *Fixture) Validate() error {
	if strings.TrimSpace(f.Fallback.Answer) == "" {
		return errors.New("fixture has no fallback answer")
	}
	for i, e := range f.Entries {
		if len(e.Keywords) == 0 {
			return fmt.Errorf("entry %d has no keywords", i)
		}
		if strings.TrimSpace(e.Answer) == "" {
			return fmt.Errorf("entry %d has no answer", i)
		}
	}
	return nil
}

// Match returns the first entry with a keyword contained in question, or the
// fallback.
func (f *Fixture) Match(question string) Entry {
	q := strings.ToLower(question)
	for _, e := range f.Entries {
		for _, kw := range e.Keywords {
			if kw != "" && strings.Contains(q, strings.ToLower(kw)) {
				return e
			}
		}
	}
	return f.Fallback
}
