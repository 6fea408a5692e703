// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/floodqa-tui/internal/geo"
	"github.com/jeranaias/floodqa-tui/internal/model"
	"github.com/jeranaias/floodqa-tui/internal/querysvc"
)

// ErrEmptyQuestion is returned by ask for a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

// AskResult is the --json output of the ask command.
type AskResult struct {
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	References []model.Reference `json:"references"`
	Location   *geo.Point        `json:"location,omitempty"`
}

func (a *App) askCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask one question and print the answer",
		Long: `Sends a single question to the query service and prints the answer, its
references and any coordinates found in it.

Examples:
  floodqa ask 附近哪里有避难场所？
  floodqa ask --json "洪水来临时应该如何撤离？"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.ask(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the answer as JSON")
	return cmd
}

// ask performs one query and writes the result to out.
func (a *App) ask(ctx context.Context, out io.Writer, question string, asJSON bool) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return ErrEmptyQuestion
	}

	client := a.newClient()
	defer client.CloseIdleConnections()

	answer, err := client.Query(ctx, question)
	if err != nil {
		a.logger.Warn("ask failed",
			zap.Stringer("error_type", querysvc.ErrorTypeOf(err)),
			zap.Error(err))
		return fmt.Errorf("query failed: %w", err)
	}

	result := AskResult{
		Question:   question,
		Answer:     answer.Text,
		References: answer.References,
	}
	if result.References == nil {
		result.References = []model.Reference{}
	}
	if p, ok := geo.Extract(answer.Text); ok {
		result.Location = &p
	}

	if asJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		fmt.Fprintln(out, highlightJSON(string(data)))
		return nil
	}

	width := GetTerminalWidth()
	fmt.Fprintln(out, renderMarkdown(result.Answer, width))
	if len(result.References) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, titleStyle.Render("References"))
		fmt.Fprint(out, formatReferences(result.References, width))
	}
	if result.Location != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, infoStyle.Render("Location: "+result.Location.String()))
	}
	return nil
}
