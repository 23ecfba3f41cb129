// Package render turns query results and schema summaries into styled
// console output.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/sadopc/pgscope/internal/executor"
	"github.com/sadopc/pgscope/internal/schema"
	"github.com/sadopc/pgscope/internal/theme"
)

// maxCellWidth caps individual cell width so one wide value cannot push
// the table past the terminal.
const maxCellWidth = 50

// Table renders a query result as a bordered table.
func Table(res *executor.Result) string {
	if len(res.Columns) == 0 {
		return theme.Current.MutedText.Render("(no columns)")
	}

	th := theme.Current
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(th.TableBorder).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return th.TableHeader
			}
			return th.TableCell
		}).
		Headers(truncateAll(res.Columns)...)

	for _, row := range res.Rows {
		t.Row(truncateAll(row)...)
	}
	return t.Render()
}

// Footer formats the result summary line shown under the table.
func Footer(res *executor.Result) string {
	plural := "rows"
	if len(res.Rows) == 1 {
		plural = "row"
	}
	return theme.Current.MutedText.Render(
		fmt.Sprintf("%d %s in %s", len(res.Rows), plural, res.Duration.Round(time.Millisecond)))
}

// Error formats a per-query failure for display without ending the session.
func Error(err error) string {
	return theme.Current.ErrorText.Render("error: " + err.Error())
}

// RelationSummary formats the constraint edges of a table as one line,
// e.g. "orders: fk user_id -> users(id), unique number". Tables without
// relations produce an empty string.
func RelationSummary(def schema.TableDefinition) string {
	if len(def.Relations) == 0 {
		return ""
	}

	parts := make([]string, 0, len(def.Relations))
	for _, rel := range def.Relations {
		switch rel.Kind {
		case schema.RelationForeign:
			parts = append(parts, fmt.Sprintf("fk %s -> %s(%s)", rel.SourceColumn, rel.TargetTable, rel.TargetColumn))
		default:
			parts = append(parts, "unique "+rel.SourceColumn)
		}
	}
	return theme.Current.MutedText.Render(def.Name + ": " + strings.Join(parts, ", "))
}

func truncateAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = runewidth.Truncate(c, maxCellWidth, "…")
	}
	return out
}
