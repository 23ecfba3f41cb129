// Package session drives the interactive table → column → predicate →
// execute loop over a reflected catalog.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"

	"github.com/sadopc/pgscope/internal/executor"
	"github.com/sadopc/pgscope/internal/prompt"
	"github.com/sadopc/pgscope/internal/render"
	"github.com/sadopc/pgscope/internal/schema"
)

// Prompter is the interactive surface the controller drives.
type Prompter interface {
	Search(ctx context.Context, message string, suggest prompt.SuggestFunc) (string, error)
	Text(ctx context.Context, message string) (string, error)
}

// Executor runs the assembled ad-hoc query.
type Executor interface {
	Execute(ctx context.Context, table, column, fragment string) (*executor.Result, error)
}

// Controller owns the interactive loop. The catalog it reads from is
// frozen before the loop starts and never mutated afterwards.
type Controller struct {
	catalog *schema.Catalog
	prompts Prompter
	exec    Executor
	out     io.Writer
	log     zerolog.Logger
}

// New creates a Controller over a fully loaded catalog.
func New(catalog *schema.Catalog, prompts Prompter, exec Executor, out io.Writer, log zerolog.Logger) *Controller {
	return &Controller{
		catalog: catalog,
		prompts: prompts,
		exec:    exec,
		out:     out,
		log:     log,
	}
}

// Run executes the loop until ctx is cancelled. A cancelled iteration
// (esc, ctrl+c, SIGINT) restarts the loop silently; per-query failures are
// reported inside the iteration and the loop continues. Anything else is a
// defect and is returned to the caller.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.iterate(ctx); err != nil {
			if errors.Is(err, prompt.ErrCancelled) || errors.Is(err, executor.ErrCancelled) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
}

// iterate runs one pass of the state machine. A single cancellation scope
// covers every prompt and the execution call, so cancelling at any step
// unwinds the whole iteration.
func (c *Controller) iterate(ctx context.Context) error {
	iterCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := watchInterrupt(cancel)
	defer stop()

	tableName, err := c.prompts.Search(iterCtx, "Select a table", c.suggestTables)
	if err != nil {
		return err
	}

	def, ok := c.catalog.Lookup(tableName)
	if !ok {
		// The selection came from the same catalog that produced the
		// suggestions; a miss is a programming defect, not operator input.
		return fmt.Errorf("selected table %q missing from catalog", tableName)
	}

	if line := render.RelationSummary(def); line != "" {
		fmt.Fprintln(c.out, line)
	}

	column, err := c.prompts.Search(iterCtx, "Select a column of "+def.Name, suggestColumns(def))
	if err != nil {
		return err
	}

	fragment, err := c.prompts.Text(iterCtx, fmt.Sprintf(`Predicate to follow WHERE "%s"`, column))
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, render.SQL(executor.BuildQuery(def.Name, column, fragment)))

	res, err := c.exec.Execute(iterCtx, def.Name, column, fragment)
	if err != nil {
		if errors.Is(err, executor.ErrCancelled) {
			return err
		}
		// Per-query failures end the iteration, not the session.
		c.log.Error().Err(err).Str("table", def.Name).Msg("query failed")
		fmt.Fprintln(c.out, render.Error(err))
		return nil
	}

	fmt.Fprintln(c.out, render.Table(res))
	fmt.Fprintln(c.out, render.Footer(res))
	return nil
}

// suggestTables filters catalog table names by case-sensitive substring
// containment on the partial input.
func (c *Controller) suggestTables(partial string) []prompt.Suggestion {
	var out []prompt.Suggestion
	for _, def := range c.catalog.Tables() {
		if !strings.Contains(def.Name, partial) {
			continue
		}
		out = append(out, prompt.Suggestion{
			Label:  def.Name,
			Value:  def.Name,
			Detail: tableDetail(def),
		})
	}
	return out
}

// suggestColumns filters one table's column names the same way.
func suggestColumns(def schema.TableDefinition) prompt.SuggestFunc {
	return func(partial string) []prompt.Suggestion {
		var out []prompt.Suggestion
		for _, col := range def.Columns {
			if !strings.Contains(col.Name, partial) {
				continue
			}
			out = append(out, prompt.Suggestion{
				Label:  col.Name,
				Value:  col.Name,
				Detail: columnDetail(col),
			})
		}
		return out
	}
}

func tableDetail(def schema.TableDefinition) string {
	detail := fmt.Sprintf("%d columns", len(def.Columns))
	if n := len(def.Relations); n > 0 {
		detail += fmt.Sprintf(", %d relations", n)
	}
	return detail
}

func columnDetail(col schema.Column) string {
	detail := col.Type
	if col.Primary {
		detail += " pk"
	}
	if !col.Nullable {
		detail += " not null"
	}
	return detail
}

// watchInterrupt feeds SIGINT into the iteration's cancellation scope so a
// keyboard interrupt between prompts abandons the iteration the same way
// esc does inside one. The returned stop function releases the handler
// when the iteration ends.
func watchInterrupt(cancel context.CancelFunc) (stop func()) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	done := make(chan struct{})
	go func() {
		select {
		case <-sigc:
			cancel()
		case <-done:
		}
	}()
	return func() {
		signal.Stop(sigc)
		close(done)
	}
}
