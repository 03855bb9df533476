// Package gen walks an *ast.Query and produces parameterised SQL against
// the fixed two-table property-graph schema (see package schema). There
// is no visitor/Accept indirection; compilation is a set of methods on
// *context, each matched to an AST node kind by a type switch.
package gen

import (
	"fmt"
	"strings"

	"github.com/cyphersql/cyphersql/schema"
	"github.com/google/uuid"
)

// binding records which table row a bound Cypher variable refers to.
type binding struct {
	alias string
	table string // schema.Nodes or schema.Edges
}

// context is the generation-time state owned by a single Generate call
// (spec §3's "generation-time state"): alias counters, the positional
// parameter accumulator, named-parameter interning, the tenant id, and
// the FROM/WHERE fragments accumulated since the last WITH boundary.
type context struct {
	sch *schema.Schema

	namedParams    map[string]any
	tenantID       string
	tenantParamIdx int // 0 until tenantParam is first called

	nodeCounter int
	edgeCounter int
	cteCounter  int

	params      []any
	namedIndex  map[string]int // $name -> already-assigned positional index

	vars map[string]*binding

	// created maps a variable bound by CREATE (or MERGE) to a SQL
	// expression yielding its uuid. Such variables have no FROM alias to
	// read a row back from; only a uuid-scoped write (SET, or another
	// CREATE edge endpoint) can reference them.
	created map[string]string

	from    []string // FROM/JOIN fragments, in order
	fromSet bool
	where   []string // predicate fragments, ANDed together

	ctes []string // WITH RECURSIVE bodies accumulated across the whole query
	anyRecursiveCTE bool

	projectionAliases map[string]string // With alias -> underlying SQL expression
	aggregating       bool
}

func newContext(sch *schema.Schema, namedParams map[string]any, tenantID string) *context {
	if sch == nil {
		sch = schema.Default()
	}
	return &context{
		sch:               sch,
		namedParams:       namedParams,
		tenantID:          tenantID,
		namedIndex:        map[string]int{},
		vars:              map[string]*binding{},
		projectionAliases: map[string]string{},
	}
}

// addParam appends value to the positional parameter list and returns its
// placeholder, e.g. "$3".
func (c *context) addParam(value any) string {
	c.params = append(c.params, value)
	return fmt.Sprintf("$%d", len(c.params))
}

// addNamedParam interns $name: the first occurrence appends its bound
// value (nil if the caller didn't supply one) and every later occurrence
// reuses the same placeholder (spec §3, §4.3.7, §8 invariant 2).
func (c *context) addNamedParam(name string) string {
	if idx, ok := c.namedIndex[name]; ok {
		return fmt.Sprintf("$%d", idx)
	}
	value := c.namedParams[name]
	placeholder := c.addParam(value)
	c.namedIndex[name] = len(c.params)
	return placeholder
}

// namedParamValue returns the caller-supplied value for $name, if any, used
// to infer a comparison cast (spec §4.3.5).
func (c *context) namedParamValue(name string) (any, bool) {
	v, ok := c.namedParams[name]
	return v, ok
}

// tenantParam returns the placeholder for the tenant id, binding it once
// on first use so repeated calls, and the fact that patterns are compiled
// before any other literal, together guarantee it lands at $1 (spec §3,
// §4.3.7: "it always occupies index 1 when present").
func (c *context) tenantParam() string {
	if c.tenantParamIdx == 0 {
		c.params = append(c.params, c.tenantID)
		c.tenantParamIdx = len(c.params)
	}
	return fmt.Sprintf("$%d", c.tenantParamIdx)
}

func (c *context) newNodeAlias() string {
	c.nodeCounter++
	return fmt.Sprintf("n%d", c.nodeCounter)
}

func (c *context) newEdgeAlias() string {
	c.edgeCounter++
	return fmt.Sprintf("e%d", c.edgeCounter)
}

func (c *context) newCTEName() string {
	c.cteCounter++
	return fmt.Sprintf("cte_%d", c.cteCounter)
}

// bind records that variable resolves to alias on table. Blank ("") and
// "_" variables are never recorded: they can't be referenced again.
func (c *context) bind(variable, alias, table string) {
	if variable == "" || variable == "_" {
		return
	}
	c.vars[variable] = &binding{alias: alias, table: table}
}

func (c *context) lookup(variable string) (*binding, bool) {
	b, ok := c.vars[variable]
	return b, ok
}

// bindCreated records that variable was produced by CREATE/MERGE within
// this scope, with uuidExpr the SQL expression yielding its uuid.
func (c *context) bindCreated(variable, uuidExpr, table string) {
	if variable == "" || variable == "_" {
		return
	}
	if c.created == nil {
		c.created = map[string]string{}
	}
	c.created[variable] = uuidExpr
	c.vars[variable] = &binding{table: table}
}

// resolveWriteTarget returns the table and a WHERE fragment identifying
// the row(s) bound to variable, for use by SET/REMOVE. A variable CREATEd
// in this scope resolves directly by uuid; a variable bound by a
// preceding MATCH resolves through a scalar subquery over its alias.
func (c *context) resolveWriteTarget(variable, clause string) (table, where string, err error) {
	if uuidExpr, ok := c.created[variable]; ok {
		b := c.vars[variable]
		return b.table, "uuid = " + uuidExpr, nil
	}
	b, ok := c.lookup(variable)
	if !ok || b.alias == "" {
		return "", "", unboundVariable(variable, clause)
	}
	return b.table, "uuid IN (" + selectAliasUUID(c, b.alias) + ")", nil
}

// addPredicate appends a WHERE-position fragment to be ANDed at assembly
// time.
func (c *context) addPredicate(sql string) {
	c.where = append(c.where, sql)
}

// addTenantPredicate constrains alias by group_id when a tenant id was
// supplied, satisfying spec §8 invariant 3.
func (c *context) addTenantPredicate(alias string) {
	if c.tenantID == "" {
		return
	}
	c.addPredicate(fmt.Sprintf("%s.group_id = %s", alias, c.tenantParam()))
}

func (c *context) whereClause() string {
	if len(c.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.where, " AND ")
}

func (c *context) fromClause() string {
	return strings.Join(c.from, " ")
}

// resetScope clears the FROM/WHERE/binding state after a WITH boundary
// flushes it into a CTE (spec §4.3.9).
func (c *context) resetScope() {
	c.vars = map[string]*binding{}
	c.from = nil
	c.fromSet = false
	c.where = nil
	c.projectionAliases = map[string]string{}
	c.aggregating = false
}

// newUUID is a var so tests could stub it; production always calls
// uuid.NewString.
var newUUID = uuid.NewString
