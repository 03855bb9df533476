// Package gen's entry point: Generate walks an *ast.Query's clause list
// once, in order, threading generation-time state through a *context
// (spec §4.3.9's state machine). MATCH/CREATE/MERGE/SET/DELETE/REMOVE
// accumulate into the current scope; WITH flushes that scope into a CTE
// and starts a fresh one; RETURN assembles the final SELECT, and a clause
// list that ends without RETURN yields its write statements joined with
// semicolons.
package gen

import (
	"fmt"
	"strings"

	"github.com/cyphersql/cyphersql/ast"
	"github.com/cyphersql/cyphersql/schema"
)

// Generate lowers a parsed query into parameterised SQL. namedParams
// supplies the caller's bound values for `$name` parameters (nil is
// treated as empty); tenantID, if non-empty, constrains every node/edge
// access to that group_id and always occupies parameter $1 (spec §3).
func Generate(q *ast.Query, namedParams map[string]any, tenantID string, sch *schema.Schema) (string, []any, error) {
	if q == nil || len(q.Clauses) == 0 {
		return "", nil, emptyQuery()
	}
	c := newContext(sch, namedParams, tenantID)
	sql, _, err := c.compileQuery(q)
	if err != nil {
		return "", nil, err
	}
	return sql, c.params, nil
}

// compileQuery compiles q's main clause list, then folds in any UNION
// arms sharing the same context (so CTEs and parameters are numbered
// continuously across the whole statement, per spec §4.3.7).
func (c *context) compileQuery(q *ast.Query) (sql string, projectionCols int, err error) {
	body, cols, err := c.compileClauses(q.Clauses)
	if err != nil {
		return "", 0, err
	}
	parts := []string{body}
	for _, arm := range q.Unions {
		c.resetScope()
		armBody, armCols, err := c.compileQuery(arm.Query)
		if err != nil {
			return "", 0, err
		}
		if armCols != cols {
			return "", 0, unionShapeMismatch(cols, armCols)
		}
		kw := "UNION"
		if arm.All {
			kw = "UNION ALL"
		}
		parts = append(parts, kw+" "+armBody)
	}
	combined := strings.Join(parts, " ")
	if len(c.ctes) > 0 {
		kw := "WITH"
		if c.anyRecursiveCTE {
			kw = "WITH RECURSIVE"
		}
		combined = fmt.Sprintf("%s %s %s", kw, strings.Join(c.ctes, ", "), combined)
	}
	return combined, cols, nil
}

// compileClauses walks one SingleQuery's clause list (spec §4.3.9): every
// MATCH/CREATE/MERGE/SET/DELETE/REMOVE mutates the current scope in
// place; a WITH flushes it into a CTE; the list always ends in a Return
// (openCypher requires a terminal RETURN or an updating clause with no
// further reads, both handled below).
func (c *context) compileClauses(clauses []ast.Clause) (sql string, projectionCols int, err error) {
	var writes []writeStatement

	for _, cl := range clauses {
		switch cl := cl.(type) {
		case *ast.Match:
			for _, pat := range cl.Patterns {
				if err := c.compilePattern(pat, cl.Optional); err != nil {
					return "", 0, err
				}
			}
			if cl.Where != nil {
				where, err := c.compileExpr(cl.Where)
				if err != nil {
					return "", 0, err
				}
				c.addPredicate(where)
			}

		case *ast.Create:
			stmts, err := c.compileCreate(cl)
			if err != nil {
				return "", 0, err
			}
			writes = append(writes, stmts...)

		case *ast.Merge:
			stmts, err := c.compileMerge(cl)
			if err != nil {
				return "", 0, err
			}
			writes = append(writes, stmts...)

		case *ast.Set:
			stmts, err := c.compileSet(cl)
			if err != nil {
				return "", 0, err
			}
			writes = append(writes, stmts...)

		case *ast.Delete:
			stmts, err := c.compileDelete(cl)
			if err != nil {
				return "", 0, err
			}
			writes = append(writes, stmts...)

		case *ast.Remove:
			stmts, err := c.compileRemove(cl)
			if err != nil {
				return "", 0, err
			}
			writes = append(writes, stmts...)

		case *ast.With:
			if cl.Star {
				return "", 0, unsupported("WITH *", "")
			}
			if err := c.flushWith(cl); err != nil {
				return "", 0, err
			}

		case *ast.Return:
			if cl.Star {
				return "", 0, unsupported("RETURN *", "")
			}
			return c.compileReturn(cl, writes)

		case *ast.Unsupported:
			return "", 0, unsupported(cl.Kind, "")

		default:
			return "", 0, fmt.Errorf("gen: unhandled clause %T", cl)
		}
	}

	// A clause list with no terminal RETURN is a pure write: the caller
	// gets back the write statements chained with semicolons, and a
	// column count of 0 (there is no projection to shape-check in UNION).
	if len(writes) == 0 {
		return "", 0, emptyQuery()
	}
	return joinStatements(writes), 0, nil
}

// flushWith compiles a WITH clause's projection over the current scope
// into a CTE, then resets the scope so following clauses read from it
// (spec §4.3.9).
func (c *context) flushWith(w *ast.With) error {
	p, err := c.compileProjectionItems(w.Items)
	if err != nil {
		return err
	}

	var having string
	if w.Where != nil {
		whereSQL, err := c.compileHaving(w.Where)
		if err != nil {
			return err
		}
		if p.aggregated {
			having = " HAVING " + whereSQL
		} else {
			c.addPredicate(whereSQL)
		}
	}

	distinct := ""
	if w.Distinct {
		distinct = "DISTINCT "
	}
	body := fmt.Sprintf("SELECT %s%s %s%s", distinct, strings.Join(p.columns, ", "), c.fromClause(), c.whereClause())
	if p.aggregated && len(p.groupBy) > 0 {
		body += " GROUP BY " + strings.Join(p.groupBy, ", ")
	}
	body += having

	tail, err := c.compileOrderBySkipLimit(w.OrderBy, w.Skip, w.Limit)
	if err != nil {
		return err
	}
	body += tail

	cteName := c.newCTEName()
	c.ctes = append(c.ctes, fmt.Sprintf("%s AS (%s)", cteName, body))

	c.resetScope()
	c.from = []string{"FROM " + cteName}
	c.fromSet = true
	for _, alias := range p.scalarAliases {
		c.projectionAliases[alias] = cteName + "." + alias
	}
	for _, wv := range p.wholeVars {
		c.bind(wv.name, cteName, wv.table)
	}
	return nil
}

// compileReturn assembles the final SELECT, prefixing it with any writes
// queued earlier in the clause list as separate statements joined by
// "; " ahead of the SELECT (spec §4.3.6's writing-then-reading queries).
func (c *context) compileReturn(r *ast.Return, writes []writeStatement) (string, int, error) {
	p, err := c.compileProjectionItems(r.Items)
	if err != nil {
		return "", 0, err
	}

	distinct := ""
	if r.Distinct {
		distinct = "DISTINCT "
	}
	body := fmt.Sprintf("SELECT %s%s %s%s", distinct, strings.Join(p.columns, ", "), c.fromClause(), c.whereClause())
	if p.aggregated && len(p.groupBy) > 0 {
		body += " GROUP BY " + strings.Join(p.groupBy, ", ")
	}

	tail, err := c.compileOrderBySkipLimit(r.OrderBy, r.Skip, r.Limit)
	if err != nil {
		return "", 0, err
	}
	body += tail

	if len(writes) > 0 {
		body = joinStatements(writes) + "; " + body
	}
	return body, len(p.columns), nil
}

// joinStatements concatenates a run of writes into one semicolon-chained
// statement (spec §4.3.6: several nodes/edges affected by one clause
// share a single generated string).
func joinStatements(writes []writeStatement) string {
	parts := make([]string, len(writes))
	for i, w := range writes {
		parts[i] = w.sql
	}
	return strings.Join(parts, "; ")
}
