// Package ast is the typed abstract syntax tree that the generator walks.
//
// It is built from the parse tree produced by package grammar (see
// Build), never constructed directly by callers other than tests. Every
// node is a plain struct; polymorphic slots (Expr, Clause, PatternLength)
// are small interfaces satisfied by a handful of concrete types, matched
// with a type switch in the generator rather than a visitor hierarchy.
// Nodes are never shared between subtrees: Build always allocates fresh
// nodes, so callers may treat a *Query as owned outright.
package ast

// Position is the source location a node was parsed from, kept for
// diagnostics (error messages, EXPLAIN-style tooling). It carries no
// dependency on the grammar package's lexer types.
type Position struct {
	Line   int
	Column int
}

// Query is the root of a translated statement: an ordered list of clauses,
// optionally chained into a UNION.
type Query struct {
	Pos     Position
	Clauses []Clause
	Unions  []UnionArm // nil unless the query has one or more UNION clauses
}

// UnionArm is one `UNION [ALL] <query>` continuation.
type UnionArm struct {
	Pos   Position
	All   bool
	Query *Query
}

// Clause is any top-level clause: Match, Create, Merge, Delete, Set,
// Remove, With, Return, or Unsupported.
type Clause interface {
	isClause()
}

// Match is a MATCH (optionally OPTIONAL MATCH) clause.
type Match struct {
	Pos      Position
	Patterns []*Pattern
	Where    Expr // nil if absent
	Optional bool
}

func (*Match) isClause() {}

// Create is a CREATE clause: insert nodes/edges for every pattern element
// that isn't already bound by a preceding MATCH.
type Create struct {
	Pos      Position
	Patterns []*Pattern
}

func (*Create) isClause() {}

// Merge is a MERGE clause over a single pattern part, with optional
// ON MATCH / ON CREATE SET actions.
type Merge struct {
	Pos       Position
	Pattern   *Pattern
	OnMatch   []*SetItem
	OnCreate  []*SetItem
}

func (*Merge) isClause() {}

// Delete is a DELETE (or DETACH DELETE) clause.
type Delete struct {
	Pos    Position
	Detach bool
	Exprs  []Expr
}

func (*Delete) isClause() {}

// Set is a SET clause.
type Set struct {
	Pos   Position
	Items []*SetItem
}

func (*Set) isClause() {}

// SetItem is one assignment inside a SET clause (or a MERGE action).
//
// At most one of PropertyPath or Label is set alongside Variable:
//   - PropertyPath + Value:  SET v.k = expr, SET v.a.b = expr (path len > 1)
//   - Value, no path/label:  SET v = expr        (AddAssign false)
//   - Value, no path/label:  SET v += expr       (AddAssign true)
//   - Label, no path/value:  SET v:Label
//
// PropertyPath is kept as a path (not a single key) because it maps
// directly onto jsonb_set's '{k1,k2,...}' path argument (spec.md §4.3.6);
// a single-element path is the common `v.k = expr` case.
type SetItem struct {
	Pos          Position
	Variable     string
	PropertyPath []string
	Label        string // "" unless this is a label assignment
	AddAssign    bool
	Value        Expr // nil for a label assignment
}

// Remove is a REMOVE clause: strips labels or property keys.
type Remove struct {
	Pos   Position
	Items []*RemoveItem
}

func (*Remove) isClause() {}

// RemoveItem is one REMOVE target: either a property path or a label.
type RemoveItem struct {
	Pos          Position
	Variable     string
	PropertyPath []string // nil when Label is set
	Label        string   // "" when PropertyPath is set
}

// With is a WITH projection clause: it closes the current scope into a
// CTE and (optionally) filters the projected rows with Where, which
// becomes a HAVING clause when the projection aggregates.
type With struct {
	Pos      Position
	Distinct bool
	Star     bool // RETURN/WITH * — unsupported, see gen.Generate
	Items    []*ProjectionItem
	Where    Expr // nil if absent; semantically HAVING when aggregating
	OrderBy  []*OrderItem
	Skip     Expr
	Limit    Expr
}

func (*With) isClause() {}

// Return is the terminal projection clause of a query.
type Return struct {
	Pos      Position
	Distinct bool
	Star     bool // RETURN * — unsupported, see gen.Generate
	Items    []*ProjectionItem
	OrderBy  []*OrderItem
	Skip     Expr
	Limit    Expr
}

func (*Return) isClause() {}

// ProjectionItem is one SELECT-list entry: an expression with an optional
// alias, or a whole-variable projection (RETURN n).
type ProjectionItem struct {
	Pos   Position
	Expr  Expr
	Alias string // "" if no AS
}

// OrderItem is one ORDER BY entry.
type OrderItem struct {
	Pos  Position
	Expr Expr
	Desc bool
}

// Unsupported wraps a construct the grammar accepts but the generator
// declines to lower: UNWIND, CALL, list/pattern comprehensions,
// ALL/ANY/NONE/SINGLE, index access, and EXISTS subqueries. It carries
// enough information for gen to produce a GenerationError naming the
// offending construct, per spec.md §7 and SPEC_FULL.md's "Supplemented
// features" section.
type Unsupported struct {
	Pos  Position
	Kind string // e.g. "UNWIND", "CALL", "listComprehension", "quantifier:ALL", "existsSubquery"
}

func (*Unsupported) isClause() {}
func (*Unsupported) isExpr()   {}
