// Package schema defines the in-memory model of a reflected database
// schema: columns, constraint relations, table definitions, and the
// catalog the interactive session reads from.
package schema

// RelationKind categorizes a constraint edge.
type RelationKind string

const (
	RelationForeign RelationKind = "foreign"
	RelationUnique  RelationKind = "unique"
)

// Column describes one table column as reported by the catalog. Default is
// the reconstructed default expression and is empty when the column has
// none; Primary is set when the column participates in the primary key.
type Column struct {
	Name     string
	Type     string
	Default  string
	Nullable bool
	Primary  bool
}

// Relation describes one foreign-key or unique constraint edge owned by
// SourceTable. Multi-column constraints are represented by their leading
// column only. TargetTable and TargetColumn are empty for a unique
// constraint, which has no counterpart table.
type Relation struct {
	Kind         RelationKind
	SourceTable  string
	SourceColumn string
	TargetTable  string
	TargetColumn string
}

// TableDefinition is one reflected table. Columns are in physical
// attribute order.
type TableDefinition struct {
	Name      string
	Columns   []Column
	Relations []Relation
}

// Catalog holds every reflected table, keyed by name and preserving the
// order tables were listed in. It is populated once during bootstrap and
// read-only afterwards, so lookups need no locking.
type Catalog struct {
	names []string
	defs  map[string]TableDefinition
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]TableDefinition)}
}

// Add appends a table definition. A definition added under an existing
// name replaces the previous one without changing the listing order.
func (c *Catalog) Add(def TableDefinition) {
	if _, ok := c.defs[def.Name]; !ok {
		c.names = append(c.names, def.Name)
	}
	c.defs[def.Name] = def
}

// Lookup returns the definition for name, reporting whether it exists.
func (c *Catalog) Lookup(name string) (TableDefinition, bool) {
	def, ok := c.defs[name]
	return def, ok
}

// Tables returns all definitions in listing order.
func (c *Catalog) Tables() []TableDefinition {
	out := make([]TableDefinition, 0, len(c.names))
	for _, name := range c.names {
		out = append(out, c.defs[name])
	}
	return out
}

// Len returns the number of tables in the catalog.
func (c *Catalog) Len() int { return len(c.names) }
