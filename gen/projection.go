package gen

import (
	"fmt"
	"strings"

	"github.com/cyphersql/cyphersql/ast"
)

// projection is a fully compiled SELECT-list plus the ORDER BY/SKIP/LIMIT
// tail shared by RETURN and WITH.
type projection struct {
	columns    []string // "sql AS alias" or bare "alias.*" entries, in order
	groupBy    []string // populated only when aggregating
	aggregated bool

	// wholeVars carries a WITH's whole-variable projection items (WITH n),
	// which can't take a column alias (n.* can't itself be named), so that
	// flushWith can rebind the variable directly onto the flushed CTE.
	wholeVars []wholeVarProjection
	// scalarAliases lists the output names of every non-whole-variable
	// item, in order, for rebinding onto the flushed CTE.
	scalarAliases []string
}

type wholeVarProjection struct {
	name  string
	table string
}

// compileProjectionItems lowers a RETURN/WITH item list into a SELECT
// list, detecting aggregation and, when aggregating, collecting the
// non-aggregated expressions for an implicit GROUP BY (spec §4.3.4,
// §8 invariant 4). It also populates c.projectionAliases so a later
// WITH ... WHERE (or ORDER BY) can refer to the projected aliases.
func (c *context) compileProjectionItems(items []*ast.ProjectionItem) (*projection, error) {
	aggregating := false
	for _, it := range items {
		if containsAggregate(it.Expr) {
			aggregating = true
			break
		}
	}
	c.aggregating = aggregating

	p := &projection{aggregated: aggregating}
	usedAliases := map[string]bool{}
	for i, it := range items {
		v, isVar := it.Expr.(*ast.Variable)
		if isVar {
			// A name projected by a preceding WITH is a column, not a row.
			_, projected := c.projectionAliases[v.Name]
			isVar = !projected
		}
		if isVar && it.Alias == "" {
			if aggregating {
				return nil, unsupported("whole-variable projection under aggregation", v.Name)
			}
			b, ok := c.lookup(v.Name)
			if !ok || b.alias == "" {
				return nil, unboundVariable(v.Name, "projection")
			}
			p.columns = append(p.columns, b.alias+".*")
			p.wholeVars = append(p.wholeVars, wholeVarProjection{name: v.Name, table: b.table})
			continue
		}

		sql, err := c.compileExpr(it.Expr)
		if err != nil {
			return nil, err
		}
		alias := it.Alias
		if alias == "" {
			alias = defaultAlias(it.Expr, i)
		}
		for usedAliases[alias] {
			alias = fmt.Sprintf("%s_%d", alias, i)
		}
		usedAliases[alias] = true

		c.projectionAliases[alias] = sql
		p.columns = append(p.columns, fmt.Sprintf("%s AS %s", sql, alias))
		p.scalarAliases = append(p.scalarAliases, alias)

		if aggregating && !containsAggregate(it.Expr) {
			p.groupBy = append(p.groupBy, sql)
		}
	}
	return p, nil
}

// containsAggregate reports whether e contains a call to one of the
// aggregate functions, walking through the operators that can wrap one
// (arithmetic, CASE, etc).
func containsAggregate(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.FunctionCall:
		if isAggregate(e.Name) {
			return true
		}
		for _, a := range e.Args {
			if containsAggregate(a) {
				return true
			}
		}
		return false
	case *ast.BinOp:
		return containsAggregate(e.Left) || containsAggregate(e.Right)
	case *ast.UnaryOp:
		return containsAggregate(e.Expr)
	case *ast.Compare:
		return containsAggregate(e.Left) || containsAggregate(e.Right)
	case *ast.Case:
		if e.Input != nil && containsAggregate(e.Input) {
			return true
		}
		for _, w := range e.Whens {
			if containsAggregate(w.When) || containsAggregate(w.Then) {
				return true
			}
		}
		if e.Else != nil {
			return containsAggregate(e.Else)
		}
		return false
	default:
		return false
	}
}

// defaultAlias mirrors the openCypher rule that an unaliased projection
// item's output name is its source text; since the printed AST is the
// closest thing we have to source text, fall back to a positional name
// for anything without an obvious identifier.
func defaultAlias(e ast.Expr, pos int) string {
	switch e := e.(type) {
	case *ast.Variable:
		return e.Name
	case *ast.PropertyAccess:
		if v, ok := e.Base.(*ast.Variable); ok {
			return v.Name + "_" + e.Key
		}
	case *ast.FunctionCall:
		return strings.ToLower(e.Name)
	}
	return fmt.Sprintf("col%d", pos+1)
}

// compileOrderBySkipLimit renders ORDER BY/SKIP/LIMIT, substituting a
// bare-variable ORDER BY item against a projection alias when possible
// (ORDER BY works over the projected row, not the pre-projection scope).
func (c *context) compileOrderBySkipLimit(order []*ast.OrderItem, skip, limit ast.Expr) (string, error) {
	var b strings.Builder
	if len(order) > 0 {
		parts := make([]string, 0, len(order))
		for _, o := range order {
			sql, err := c.compileExpr(o.Expr)
			if err != nil {
				return "", err
			}
			if o.Desc {
				sql += " DESC"
			}
			parts = append(parts, sql)
		}
		b.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}
	if limit != nil {
		sql, err := c.compileExpr(limit)
		if err != nil {
			return "", err
		}
		if skip != nil {
			skipSQL, err := c.compileExpr(skip)
			if err != nil {
				return "", err
			}
			fmt.Fprintf(&b, " LIMIT %s OFFSET %s", sql, skipSQL)
		} else {
			fmt.Fprintf(&b, " LIMIT %s", sql)
		}
	} else if skip != nil {
		sql, err := c.compileExpr(skip)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " OFFSET %s", sql)
	}
	return b.String(), nil
}

// compileHaving compiles a WITH clause's Where for HAVING position:
// bare-variable references to a projection alias resolve to the
// underlying SQL expression (already handled generically by
// compileExpr's *ast.Variable case via c.projectionAliases), so this is
// just compileExpr under an aggregating scope.
func (c *context) compileHaving(where ast.Expr) (string, error) {
	return c.compileExpr(where)
}
