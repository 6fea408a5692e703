// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"errors"
	"fmt"
)

// ErrBusy is returned by Begin while a previous question is still pending.
var ErrBusy = errors.New("a question is already being answered")

// ErrEmptyAnswer is the failure used when the query service returned neither
// an answer nor an error.
var ErrEmptyAnswer = errors.New("empty response from query service")

// ValidationError rejects a submission before anything is rendered.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid question: " + e.Reason
}

// errorFooter closes every rendered failure message.
const errorFooter = "Please check the server connection or try again later."

// FailureText is the body of the system message rendered for a failed query.
func FailureText(err error) string {
	return fmt.Sprintf("Error: %s\n%s", err.Error(), errorFooter)
}
