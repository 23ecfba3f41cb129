// Package prompt provides the two cancellable interactive primitives the
// session is built from: a live-filtered search prompt and a free-text
// prompt. Each prompt runs as its own bubbletea program scoped to the
// caller's context, so cancelling the context resolves the prompt
// immediately instead of leaving it waiting for input.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned when the operator abandons a prompt with esc or
// ctrl+c, or when the surrounding cancellation scope fires.
var ErrCancelled = errors.New("prompt cancelled")

// Suggestion is one selectable entry in a search prompt.
type Suggestion struct {
	Label  string // shown to the operator
	Value  string // returned on selection
	Detail string // optional annotation
}

// SuggestFunc produces the suggestions matching the partial input typed so
// far.
type SuggestFunc func(partial string) []Suggestion

// Runner executes prompts on a terminal.
type Runner struct {
	in  io.Reader
	out io.Writer
}

// New creates a Runner bound to stdin/stdout.
func New() *Runner {
	return &Runner{in: os.Stdin, out: os.Stdout}
}

// Search presents a live-filtered suggestion list and returns the value of
// the entry the operator picks.
func (r *Runner) Search(ctx context.Context, message string, suggest SuggestFunc) (string, error) {
	final, err := r.run(ctx, newSearchModel(message, suggest))
	if err != nil {
		return "", err
	}
	m := final.(searchModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.chosen, nil
}

// Text presents a free-text prompt and returns the entered line verbatim.
func (r *Runner) Text(ctx context.Context, message string) (string, error) {
	final, err := r.run(ctx, newTextModel(message))
	if err != nil {
		return "", err
	}
	m := final.(textModel)
	if m.cancelled {
		return "", ErrCancelled
	}
	return m.submitted, nil
}

// run executes one prompt program under ctx. A context fired mid-prompt
// kills the program; that is reported as cancellation, not as a failure.
func (r *Runner) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(r.in),
		tea.WithOutput(r.out),
	)
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, tea.ErrProgramKilled) {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("prompt: %w", err)
	}
	return final, nil
}
