package session

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sadopc/pgscope/internal/executor"
	"github.com/sadopc/pgscope/internal/prompt"
	"github.com/sadopc/pgscope/internal/schema"
)

// step is one scripted prompt response.
type step struct {
	value string
	err   error
}

// scriptPrompter replays canned responses and records every prompt it was
// asked to show. When the script runs out it cancels the session context,
// so Run-based tests terminate.
type scriptPrompter struct {
	steps []step
	idx   int

	searchMessages []string
	textMessages   []string

	exhausted func()
}

func (p *scriptPrompter) next() step {
	if p.idx >= len(p.steps) {
		if p.exhausted != nil {
			p.exhausted()
		}
		return step{err: prompt.ErrCancelled}
	}
	s := p.steps[p.idx]
	p.idx++
	return s
}

func (p *scriptPrompter) Search(_ context.Context, message string, _ prompt.SuggestFunc) (string, error) {
	p.searchMessages = append(p.searchMessages, message)
	s := p.next()
	return s.value, s.err
}

func (p *scriptPrompter) Text(_ context.Context, message string) (string, error) {
	p.textMessages = append(p.textMessages, message)
	s := p.next()
	return s.value, s.err
}

// fakeExec records execution requests.
type fakeExec struct {
	calls [][3]string
	res   *executor.Result
	err   error
}

func (e *fakeExec) Execute(_ context.Context, table, column, fragment string) (*executor.Result, error) {
	e.calls = append(e.calls, [3]string{table, column, fragment})
	if e.err != nil {
		return nil, e.err
	}
	return e.res, nil
}

func testCatalog() *schema.Catalog {
	cat := schema.NewCatalog()
	cat.Add(schema.TableDefinition{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: "integer", Primary: true},
			{Name: "name", Type: "text"},
			{Name: "email", Type: "text", Nullable: true},
		},
	})
	cat.Add(schema.TableDefinition{
		Name: "orders",
		Columns: []schema.Column{
			{Name: "id", Type: "integer", Primary: true},
			{Name: "user_id", Type: "integer"},
		},
		Relations: []schema.Relation{
			{Kind: schema.RelationForeign, SourceTable: "orders", SourceColumn: "user_id", TargetTable: "users", TargetColumn: "id"},
		},
	})
	cat.Add(schema.TableDefinition{Name: "order_items"})
	return cat
}

func newController(p Prompter, e Executor) (*Controller, *bytes.Buffer) {
	var out bytes.Buffer
	return New(testCatalog(), p, e, &out, zerolog.Nop()), &out
}

func TestIterate_HappyPath(t *testing.T) {
	p := &scriptPrompter{steps: []step{
		{value: "users"},
		{value: "email"},
		{value: "= 'a@b.com'"},
	}}
	e := &fakeExec{res: &executor.Result{
		Columns: []string{"id", "email"},
		Rows:    [][]string{{"1", "a@b.com"}},
	}}
	c, out := newController(p, e)

	if err := c.iterate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(e.calls) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(e.calls))
	}
	if e.calls[0] != [3]string{"users", "email", "= 'a@b.com'"} {
		t.Fatalf("unexpected execution args: %v", e.calls[0])
	}

	text := out.String()
	if !strings.Contains(text, "SELECT") {
		t.Error("expected assembled statement to be echoed")
	}
	if !strings.Contains(text, "a@b.com") {
		t.Error("expected result rows in output")
	}
	if !strings.Contains(text, "1 row") {
		t.Error("expected footer in output")
	}
}

func TestIterate_CancelledAtTableSelect(t *testing.T) {
	p := &scriptPrompter{steps: []step{{err: prompt.ErrCancelled}}}
	e := &fakeExec{}
	c, _ := newController(p, e)

	err := c.iterate(context.Background())
	if !errors.Is(err, prompt.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(p.searchMessages) != 1 {
		t.Fatalf("expected only the table prompt, got %v", p.searchMessages)
	}
	if len(p.textMessages) != 0 {
		t.Fatal("expected no predicate prompt after cancellation")
	}
	if len(e.calls) != 0 {
		t.Fatal("expected no execution after cancellation")
	}
}

func TestIterate_CancelledAtColumnSelect(t *testing.T) {
	p := &scriptPrompter{steps: []step{
		{value: "users"},
		{err: prompt.ErrCancelled},
	}}
	e := &fakeExec{}
	c, _ := newController(p, e)

	err := c.iterate(context.Background())
	if !errors.Is(err, prompt.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(p.textMessages) != 0 {
		t.Fatal("expected no predicate prompt after cancellation")
	}
	if len(e.calls) != 0 {
		t.Fatal("expected no execution after cancellation")
	}
}

func TestIterate_CancelledAtPredicate(t *testing.T) {
	p := &scriptPrompter{steps: []step{
		{value: "users"},
		{value: "email"},
		{err: prompt.ErrCancelled},
	}}
	e := &fakeExec{}
	c, _ := newController(p, e)

	err := c.iterate(context.Background())
	if !errors.Is(err, prompt.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if len(e.calls) != 0 {
		t.Fatal("expected no execution after cancellation")
	}
}

func TestIterate_ExecutionErrorDoesNotEndSession(t *testing.T) {
	p := &scriptPrompter{steps: []step{
		{value: "users"},
		{value: "email"},
		{value: "LIKE"},
	}}
	e := &fakeExec{err: errors.New("syntax error at end of input")}
	c, out := newController(p, e)

	if err := c.iterate(context.Background()); err != nil {
		t.Fatalf("expected nil error after reported failure, got %v", err)
	}
	if !strings.Contains(out.String(), "error:") {
		t.Error("expected failure to be reported")
	}
}

func TestIterate_LookupMissIsFatal(t *testing.T) {
	p := &scriptPrompter{steps: []step{{value: "ghost"}}}
	e := &fakeExec{}
	c, _ := newController(p, e)

	err := c.iterate(context.Background())
	if err == nil {
		t.Fatal("expected invariant violation error")
	}
	if errors.Is(err, prompt.ErrCancelled) {
		t.Fatal("invariant violation must not look like cancellation")
	}
	if len(e.calls) != 0 {
		t.Fatal("expected no execution")
	}
}

func TestIterate_ShowsRelationSummary(t *testing.T) {
	p := &scriptPrompter{steps: []step{
		{value: "orders"},
		{value: "user_id"},
		{value: "= 1"},
	}}
	e := &fakeExec{res: &executor.Result{Columns: []string{"id"}}}
	c, out := newController(p, e)

	if err := c.iterate(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "fk user_id -> users(id)") {
		t.Error("expected relation summary after table selection")
	}
}

func TestRun_RestartsAfterCancelledIteration(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &scriptPrompter{
		steps: []step{
			{err: prompt.ErrCancelled}, // first iteration abandoned
			{value: "users"},           // second iteration completes
			{value: "email"},
			{value: "IS NULL"},
		},
		exhausted: cancel,
	}
	e := &fakeExec{res: &executor.Result{Columns: []string{"id"}}}
	c, _ := newController(p, e)

	err := c.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The second iteration must have started fresh at table selection and
	// run to execution.
	if len(p.searchMessages) < 3 {
		t.Fatalf("expected a fresh table prompt after cancellation, got %v", p.searchMessages)
	}
	if p.searchMessages[0] != p.searchMessages[1] {
		t.Fatalf("expected restart at table selection, got %v", p.searchMessages)
	}
	if len(e.calls) != 1 {
		t.Fatalf("expected exactly 1 execution, got %d", len(e.calls))
	}
}

func TestRun_ReturnsInvariantViolation(t *testing.T) {
	p := &scriptPrompter{steps: []step{{value: "ghost"}}}
	c, _ := newController(p, &fakeExec{})

	if err := c.Run(context.Background()); err == nil {
		t.Fatal("expected error from Run")
	}
}

func TestSuggestTables_SubstringFilter(t *testing.T) {
	c, _ := newController(&scriptPrompter{}, &fakeExec{})

	all := c.suggestTables("")
	if len(all) != 3 {
		t.Fatalf("expected all tables for empty input, got %d", len(all))
	}

	got := c.suggestTables("order")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches for 'order', got %d", len(got))
	}

	if got := c.suggestTables("ORDER"); len(got) != 0 {
		t.Fatalf("expected case-sensitive filtering, got %d matches", len(got))
	}
}

func TestSuggestTables_Detail(t *testing.T) {
	c, _ := newController(&scriptPrompter{}, &fakeExec{})

	for _, s := range c.suggestTables("orders") {
		if s.Value != "orders" {
			continue
		}
		if !strings.Contains(s.Detail, "2 columns") || !strings.Contains(s.Detail, "1 relations") {
			t.Fatalf("unexpected detail: %q", s.Detail)
		}
		return
	}
	t.Fatal("orders not suggested")
}

func TestSuggestColumns(t *testing.T) {
	def, _ := testCatalog().Lookup("users")
	suggest := suggestColumns(def)

	all := suggest("")
	if len(all) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(all))
	}
	// Column order follows the definition.
	if all[0].Value != "id" || all[2].Value != "email" {
		t.Fatalf("unexpected order: %v", all)
	}

	got := suggest("mail")
	if len(got) != 1 || got[0].Value != "email" {
		t.Fatalf("expected substring match on email, got %v", got)
	}

	if !strings.Contains(all[0].Detail, "pk") {
		t.Errorf("expected pk marker, got %q", all[0].Detail)
	}
	if !strings.Contains(all[1].Detail, "not null") {
		t.Errorf("expected not null marker, got %q", all[1].Detail)
	}
	if strings.Contains(all[2].Detail, "not null") {
		t.Errorf("nullable column must not carry not null marker, got %q", all[2].Detail)
	}
}
