// Package introspect loads the database's own description of its schema
// into the in-memory catalog. Every query is read-only and takes the
// table name as a bound parameter.
package introspect

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/sadopc/pgscope/internal/schema"
)

// Querier is the slice of a pgx pool the introspector needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Introspector reflects one database schema (by default "public").
type Introspector struct {
	db         Querier
	schemaName string
}

// New creates an Introspector over db for the public schema.
func New(db Querier) *Introspector {
	return &Introspector{db: db, schemaName: "public"}
}

// NewForSchema creates an Introspector scoped to the named schema.
func NewForSchema(db Querier, schemaName string) *Introspector {
	return &Introspector{db: db, schemaName: schemaName}
}

const listTablesSQL = `
	SELECT table_name
	FROM information_schema.tables
	WHERE table_schema = $1
	  AND table_type   = 'BASE TABLE'
	ORDER BY table_name`

const columnsSQL = `
	SELECT a.attname,
	       format_type(a.atttypid, a.atttypmod),
	       a.attnotnull,
	       a.atthasdef,
	       COALESCE(pg_get_expr(d.adbin, d.adrelid), '')
	FROM pg_attribute a
	LEFT JOIN pg_attrdef d
	       ON d.adrelid = a.attrelid AND d.adnum = a.attnum
	WHERE a.attrelid = ($1 || '.' || $2)::regclass
	  AND a.attnum > 0
	  AND NOT a.attisdropped
	ORDER BY a.attnum`

const primarySQL = `
	SELECT a.attname
	FROM pg_index i
	JOIN pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)
	WHERE i.indrelid = ($1 || '.' || $2)::regclass
	  AND i.indisprimary`

// relationsSQL emits one row per foreign-key or unique constraint whose
// owning table is a base table. Only the leading key position of each
// constraint is resolved; multi-column constraints are reduced to their
// first column.
const relationsSQL = `
	SELECT c.contype::text,
	       sa.attname,
	       COALESCE(tc.relname, ''),
	       COALESCE(ta.attname, '')
	FROM pg_constraint c
	JOIN pg_class sc     ON sc.oid = c.conrelid
	JOIN pg_attribute sa ON sa.attrelid = c.conrelid AND sa.attnum = c.conkey[1]
	LEFT JOIN pg_class tc     ON tc.oid = c.confrelid
	LEFT JOIN pg_attribute ta ON ta.attrelid = c.confrelid AND ta.attnum = c.confkey[1]
	WHERE c.conrelid = ($1 || '.' || $2)::regclass
	  AND c.contype IN ('f', 'u')
	  AND sc.relkind = 'r'
	ORDER BY c.conname`

// ListTables returns all base table names in the schema.
func (in *Introspector) ListTables(ctx context.Context) ([]string, error) {
	rows, err := in.db.Query(ctx, listTablesSQL, in.schemaName)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list tables scan: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// Columns returns the columns of table in attribute order. A column's
// default is reconstructed from the stored expression only when the
// catalog marks the column as having one; primary membership is derived
// structurally from the primary-key index.
func (in *Introspector) Columns(ctx context.Context, table string) ([]schema.Column, error) {
	pkSet, err := in.primaryColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	rows, err := in.db.Query(ctx, columnsSQL, in.schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	defer rows.Close()

	var cols []schema.Column
	for rows.Next() {
		var (
			name, typ, expr string
			notNull, hasDef bool
		)
		if err := rows.Scan(&name, &typ, &notNull, &hasDef, &expr); err != nil {
			return nil, fmt.Errorf("columns scan: %w", err)
		}
		col := schema.Column{
			Name:     name,
			Type:     typ,
			Nullable: !notNull,
			Primary:  pkSet[name],
		}
		if hasDef {
			col.Default = expr
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// primaryColumns returns the set of column names in table's primary key.
func (in *Introspector) primaryColumns(ctx context.Context, table string) (map[string]bool, error) {
	rows, err := in.db.Query(ctx, primarySQL, in.schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("primary keys: %w", err)
	}
	defer rows.Close()

	pk := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("primary keys scan: %w", err)
		}
		pk[name] = true
	}
	return pk, rows.Err()
}

// Relations returns the foreign-key and unique constraint edges owned by
// table.
func (in *Introspector) Relations(ctx context.Context, table string) ([]schema.Relation, error) {
	rows, err := in.db.Query(ctx, relationsSQL, in.schemaName, table)
	if err != nil {
		return nil, fmt.Errorf("relations: %w", err)
	}
	defer rows.Close()

	var rels []schema.Relation
	for rows.Next() {
		var contype, srcCol, tgtTable, tgtCol string
		if err := rows.Scan(&contype, &srcCol, &tgtTable, &tgtCol); err != nil {
			return nil, fmt.Errorf("relations scan: %w", err)
		}
		kind := schema.RelationUnique
		if contype == "f" {
			kind = schema.RelationForeign
		}
		rels = append(rels, schema.Relation{
			Kind:         kind,
			SourceTable:  table,
			SourceColumn: srcCol,
			TargetTable:  tgtTable,
			TargetColumn: tgtCol,
		})
	}
	return rels, rows.Err()
}

// Load reflects the whole schema into a catalog. Tables are processed in
// listing order, one at a time; each table's column and relation fetches
// run concurrently with each other. Any failure aborts the load, so a
// partial catalog is never returned.
func (in *Introspector) Load(ctx context.Context) (*schema.Catalog, error) {
	names, err := in.ListTables(ctx)
	if err != nil {
		return nil, err
	}

	cat := schema.NewCatalog()
	for _, name := range names {
		var (
			cols []schema.Column
			rels []schema.Relation
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			cols, err = in.Columns(gctx, name)
			return err
		})
		g.Go(func() error {
			var err error
			rels, err = in.Relations(gctx, name)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("reflect %s: %w", name, err)
		}
		cat.Add(schema.TableDefinition{Name: name, Columns: cols, Relations: rels})
	}
	return cat, nil
}
