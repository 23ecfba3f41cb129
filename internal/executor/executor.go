// Package executor assembles and runs the ad-hoc filtered query produced
// by one session iteration.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrCancelled is returned when execution is abandoned through the
// iteration's cancellation scope.
var ErrCancelled = errors.New("query cancelled")

// Querier is the slice of a pgx pool the executor needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Result holds the rows of one executed query, stringified for display.
type Result struct {
	Columns  []string
	Rows     [][]string
	Duration time.Duration
}

// Executor runs ad-hoc queries over a live connection.
type Executor struct {
	db Querier
}

// New creates an Executor over db.
func New(db Querier) *Executor {
	return &Executor{db: db}
}

// BuildQuery assembles the statement for one session iteration. table and
// column come from the reflected catalog and are interpolated as
// known-good identifiers; fragment is operator-supplied SQL appended
// verbatim after the column reference. The fragment is deliberately not a
// bound parameter, since it carries operators as well as values.
func BuildQuery(table, column, fragment string) string {
	return fmt.Sprintf(`SELECT * FROM %s WHERE "%s" %s`, table, column, strings.TrimSpace(fragment))
}

// Execute runs the assembled query and collects all rows. Failures caused
// by the cancellation scope are reported as ErrCancelled; anything else is
// an execution error for the session to display.
func (e *Executor) Execute(ctx context.Context, table, column, fragment string) (*Result, error) {
	start := time.Now()

	rows, err := e.db.Query(ctx, BuildQuery(table, column, fragment))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("execute: %w", err)
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	cols := make([]string, len(fds))
	for i, fd := range fds {
		cols[i] = fd.Name
	}

	var out [][]string
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("execute values: %w", err)
		}
		out = append(out, valuesToStrings(vals))
	}
	if err := rows.Err(); err != nil {
		if ctx.Err() != nil {
			return nil, ErrCancelled
		}
		return nil, fmt.Errorf("execute rows: %w", err)
	}

	return &Result{
		Columns:  cols,
		Rows:     out,
		Duration: time.Since(start),
	}, nil
}

// valuesToStrings converts a row of database values to strings.
func valuesToStrings(vals []any) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = valueToString(v)
	}
	return out
}

// valueToString converts a single database value to a display string.
func valueToString(v any) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format("2006-01-02 15:04:05")
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int8:
		return fmt.Sprintf("%d", val)
	case int16:
		return fmt.Sprintf("%d", val)
	case int32:
		return fmt.Sprintf("%d", val)
	case int64:
		return fmt.Sprintf("%d", val)
	case float32:
		return fmt.Sprintf("%g", val)
	case float64:
		return fmt.Sprintf("%g", val)
	case [16]byte:
		// UUID
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16])
	case []string:
		return "{" + strings.Join(val, ",") + "}"
	case []int32:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = fmt.Sprintf("%d", n)
		}
		return "{" + strings.Join(parts, ",") + "}"
	case []int64:
		parts := make([]string, len(val))
		for i, n := range val {
			parts[i] = fmt.Sprintf("%d", n)
		}
		return "{" + strings.Join(parts, ",") + "}"
	case pgtype.Numeric:
		dv, err := val.Value()
		if err != nil || dv == nil {
			return ""
		}
		if s, ok := dv.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", dv)
	default:
		return fmt.Sprintf("%v", v)
	}
}
