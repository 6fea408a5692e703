// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/floodqa-tui/internal/conversation"
	"github.com/jeranaias/floodqa-tui/internal/history"
	"github.com/jeranaias/floodqa-tui/internal/transcript"
)

const (
	plainPrompt     = "floodqa> "
	historyFileName = "history"
)

func (a *App) chatCommand() *cobra.Command {
	var plain bool
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive question session",
		Long: `Starts an interactive session. With --plain the session is a line-mode
REPL with history (Up/Down) instead of the full-screen interface.

Commands inside the REPL:
` + indentHelp(replHelp),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if plain {
				return a.runPlain(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return a.runTUI(cmd, args)
		},
	}
	cmd.Flags().BoolVar(&plain, "plain", false, "line-mode REPL instead of the full-screen interface")
	return cmd
}

// =============================================================================
// REPL SESSION
// =============================================================================

// replSession is a line-mode conversation. Rendered transcript entries are
// printed as they arrive.
type replSession struct {
	ctrl *conversation.Controller
	out  io.Writer
}

func newREPLSession(q conversation.Querier, historySize int, out io.Writer, logger *zap.Logger) *replSession {
	tr := transcript.New(transcript.Options{})
	tr.OnRendered(func(ev transcript.Event) {
		switch ev.Kind {
		case transcript.EventMessage:
			fmt.Fprintln(out, transcript.Plain(ev.Message))
			fmt.Fprintln(out)
		case transcript.EventPendingShown:
			fmt.Fprintln(out, infoStyle.Render("… answering"))
		}
	})

	ctrl := conversation.New(conversation.Deps{
		Querier:    q,
		Transcript: tr,
		History:    history.New(historySize),
		Logger:     logger,
	})
	return &replSession{ctrl: ctrl, out: out}
}

// handle processes one input line and reports whether the session should
// end.
func (s *replSession) handle(ctx context.Context, line string) (quit bool) {
	text := strings.TrimSpace(line)
	switch text {
	case "":
		return false
	case "/quit", "/q", "/exit":
		return true
	case "/help", "/h":
		fmt.Fprintln(s.out, replHelp)
		return false
	case "/refs", "/r":
		s.printReferences()
		return false
	case "/history":
		buf := s.ctrl.History()
		for i, q := range buf.Entries() {
			fmt.Fprintf(s.out, "%3d  %s\n", i+1, q)
		}
		fmt.Fprintf(s.out, "(%d of %d kept)\n", buf.Len(), buf.Capacity())
		return false
	}
	if strings.HasPrefix(text, "/") {
		fmt.Fprintln(s.out, warnStyle.Render("Unknown command "+text+"; /help lists commands"))
		return false
	}

	out, err := s.ctrl.Submit(ctx, line, conversation.SourceEnter)
	if err != nil {
		return false
	}
	if out.Point != nil {
		fmt.Fprintln(s.out, infoStyle.Render("Location: "+out.Point.String()))
	}
	if out.ReferencesReplaced {
		fmt.Fprintln(s.out, infoStyle.Render(fmt.Sprintf("%d references (/refs to show)", s.ctrl.References().Len())))
	}
	return false
}

func (s *replSession) printReferences() {
	refs := s.ctrl.References().Items()
	if len(refs) == 0 {
		fmt.Fprintln(s.out, infoStyle.Render("No references yet"))
		return
	}
	fmt.Fprint(s.out, formatReferences(refs, GetTerminalWidth()))
}

const replHelp = `/refs      show the references of the last answer
/history   list previous questions
/help      show this help
/quit      exit (Ctrl+D also works)`

func indentHelp(help string) string {
	return "  " + strings.ReplaceAll(help, "\n", "\n  ")
}

// =============================================================================
// LINE EDITING
// =============================================================================

// runPlain drives a replSession with liner. Without a terminal liner reads
// plain lines from stdin, so piped input works too.
func (a *App) runPlain(ctx context.Context, _ io.Reader, out io.Writer) error {
	session := newREPLSession(a.newClient(), a.cfg.UI.HistorySize, out, a.logger)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := filepath.Join(a.cfg.DataDir, historyFileName)
	seedHistory(session.ctrl.History(), line, historyPath)
	defer saveHistory(session.ctrl.History(), historyPath, a.logger)

	if IsTTY() {
		fmt.Fprintln(out, titleStyle.Render("floodqa")+" "+infoStyle.Render("asking "+a.cfg.Query.Endpoint+"  (/help, Ctrl+D to exit)"))
	}

	for {
		if ctx.Err() != nil {
			return nil
		}
		input, err := line.Prompt(plainPrompt)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		if strings.TrimSpace(input) != "" && !strings.HasPrefix(strings.TrimSpace(input), "/") {
			line.AppendHistory(input)
		}
		if session.handle(ctx, input) {
			return nil
		}
	}
}

// seedHistory loads saved questions into buf and mirrors buf into liner.
func seedHistory(buf *history.Buffer, line *liner.State, path string) {
	for _, q := range readHistoryFile(path) {
		buf.Push(q)
	}
	for _, q := range buf.Entries() {
		line.AppendHistory(q)
	}
}

func readHistoryFile(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if q := strings.TrimSpace(sc.Text()); q != "" {
			out = append(out, q)
		}
	}
	return out
}

// saveHistory writes buf to path, oldest first, owner-only.
func saveHistory(buf *history.Buffer, path string, logger *zap.Logger) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		logger.Warn("failed to save history", zap.Error(err))
		return
	}
	data := strings.Join(buf.Entries(), "\n")
	if data != "" {
		data += "\n"
	}
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		logger.Warn("failed to save history", zap.Error(err))
	}
}
