// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

// =============================================================================
// COMMANDS
// =============================================================================

// Command is a discrete user intent produced by key, click or suggestion
// events.
type Command interface {
	command()
}

// Direction selects the history recall direction.
type Direction int

const (
	Older Direction = iota
	Newer
)

// SubmitCommand asks a question.
type SubmitCommand struct {
	Text   string
	Source Source
}

// RecallCommand walks the question history.
type RecallCommand struct {
	Direction Direction
}

// JumpCommand scrolls the transcript to the newest message.
type JumpCommand struct{}

// ToggleThemeCommand flips the colour scheme.
type ToggleThemeCommand struct{}

func (SubmitCommand) command()      {}
func (RecallCommand) command()      {}
func (JumpCommand) command()        {}
func (ToggleThemeCommand) command() {}

// Result is what Dispatch did.
type Result struct {
	// Ticket is set when a submission began; the host must Run and Settle it.
	Ticket *Ticket
	// Err is a rejected submission (*ValidationError or ErrBusy).
	Err error
	// Changed reports whether anything visible changed.
	Changed bool
}

// Dispatch applies cmd. Submissions only begin here; running the query is
// left to the host so it can schedule the call on its own terms.
func (c *Controller) Dispatch(cmd Command) Result {
	switch cmd := cmd.(type) {
	case SubmitCommand:
		t, err := c.Begin(cmd.Text, cmd.Source)
		return Result{Ticket: t, Err: err, Changed: t != nil}

	case RecallCommand:
		if cmd.Direction == Older {
			return Result{Changed: c.RecallPrevious()}
		}
		return Result{Changed: c.RecallNext()}

	case JumpCommand:
		if c.jumper == nil {
			return Result{}
		}
		c.jumper.JumpToLatest()
		return Result{Changed: true}

	case ToggleThemeCommand:
		c.state.ToggleTheme()
		return Result{Changed: true}
	}
	return Result{}
}
