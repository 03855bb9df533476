package gen

import (
	"fmt"
	"strings"

	"github.com/cyphersql/cyphersql/ast"
)

// compileExpr lowers an expression to a SQL fragment. Compare is handled
// separately by compileCompare because its typing depends on both sides
// at once (spec §4.3.5); every other node type is self-contained.
func (c *context) compileExpr(e ast.Expr) (string, error) {
	switch e := e.(type) {
	case *ast.BinOp:
		return c.compileBinOp(e)
	case *ast.UnaryOp:
		return c.compileUnaryOp(e)
	case *ast.Compare:
		return c.compileCompare(e)
	case *ast.FunctionCall:
		return c.compileFunctionCall(e)
	case *ast.Case:
		return c.compileCase(e)
	case *ast.PropertyAccess:
		sql, _, err := c.compilePropertyOperand(e)
		return sql, err
	case *ast.In:
		return c.compileIn(e)
	case *ast.IsNull:
		return c.compileIsNull(e)
	case *ast.Like:
		return c.compileLike(e)
	case *ast.Labels:
		return c.compileLabels(e)
	case *ast.Int:
		return c.addParam(e.Value), nil
	case *ast.Float:
		return c.addParam(e.Value), nil
	case *ast.Str:
		return c.addParam(e.Value), nil
	case *ast.Bool:
		return c.addParam(e.Value), nil
	case *ast.Null:
		return "NULL", nil
	case *ast.List:
		return c.compileList(e)
	case *ast.Map:
		return c.compileMap(e)
	case *ast.Param:
		return c.addNamedParam(e.Name), nil
	case *ast.Variable:
		if sql, ok := c.projectionAliases[e.Name]; ok {
			return sql, nil
		}
		b, ok := c.lookup(e.Name)
		if !ok || b.alias == "" {
			return "", unboundVariable(e.Name, "expression (no row to project: bound by CREATE/MERGE, not a read)")
		}
		return b.alias + ".*", nil
	case *ast.Unsupported:
		return "", unsupported(e.Kind, "")
	default:
		return "", fmt.Errorf("gen: unhandled expression %T", e)
	}
}

func (c *context) compileBinOp(b *ast.BinOp) (string, error) {
	left, err := c.compileExpr(b.Left)
	if err != nil {
		return "", err
	}
	right, err := c.compileExpr(b.Right)
	if err != nil {
		return "", err
	}
	switch b.Op {
	case "XOR":
		return fmt.Sprintf("((%s) IS DISTINCT FROM (%s))", left, right), nil
	default:
		return fmt.Sprintf("(%s %s %s)", left, b.Op, right), nil
	}
}

func (c *context) compileUnaryOp(u *ast.UnaryOp) (string, error) {
	inner, err := c.compileExpr(u.Expr)
	if err != nil {
		return "", err
	}
	switch u.Op {
	case "NOT":
		return fmt.Sprintf("(NOT %s)", inner), nil
	default:
		return fmt.Sprintf("(%s%s)", u.Op, inner), nil
	}
}

// compileCompare implements spec §4.3.5: a JSON-extracted operand is cast
// to the other side's literal type before comparison; string literals
// compare as text (no cast); comparisons that don't involve a known-type
// literal on either side stay textual.
func (c *context) compileCompare(cmp *ast.Compare) (string, error) {
	leftSQL, leftJSON, err := c.compilePropertyOperand(cmp.Left)
	if err != nil {
		return "", err
	}
	rightSQL, rightJSON, err := c.compilePropertyOperand(cmp.Right)
	if err != nil {
		return "", err
	}

	// A JSON text operand is already parenthesised by compilePropertyOperand.
	if cast, ok := c.castHint(cmp.Right); ok && leftJSON {
		leftSQL = fmt.Sprintf("%s::%s", leftSQL, cast)
	}
	if cast, ok := c.castHint(cmp.Left); ok && rightJSON {
		rightSQL = fmt.Sprintf("%s::%s", rightSQL, cast)
	}
	return fmt.Sprintf("%s %s %s", leftSQL, cmp.Op, rightSQL), nil
}

// compilePropertyOperand compiles e, additionally reporting whether it is a
// JSON text extraction (properties->>'k') that a sibling operand's literal
// type may want to cast.
func (c *context) compilePropertyOperand(e ast.Expr) (sql string, isJSONText bool, err error) {
	pa, ok := e.(*ast.PropertyAccess)
	if !ok {
		sql, err = c.compileExpr(e)
		return sql, false, err
	}
	v, ok := pa.Base.(*ast.Variable)
	if !ok {
		// Chained access (a.b.c): only the first hop maps to a physical
		// column; anything beyond it is a JSON-nested key on that column's
		// JSON value, so fall back to the base compiling as text.
		base, err := c.compileExpr(pa.Base)
		if err != nil {
			return "", false, err
		}
		return fmt.Sprintf("(%s->>'%s')", base, escapeJSONKey(pa.Key)), true, nil
	}
	b, ok := c.lookup(v.Name)
	if !ok || b.alias == "" {
		return "", false, unboundVariable(v.Name, "expression (no row to project: bound by CREATE/MERGE, not a read)")
	}
	if c.sch.IsColumn(b.table, pa.Key) {
		return b.alias + "." + pa.Key, false, nil
	}
	return fmt.Sprintf("(%s.properties->>'%s')", b.alias, escapeJSONKey(pa.Key)), true, nil
}

func escapeJSONKey(k string) string {
	return strings.ReplaceAll(k, "'", "''")
}

// castHint reports the SQL cast that e's literal type implies, per
// spec §4.3.5: numeric/boolean literals cast the JSON side; string
// literals stay textual (no cast); a parameter casts if its bound value's
// Go type is known at generation time, else stays textual.
func (c *context) castHint(e ast.Expr) (string, bool) {
	switch e := e.(type) {
	case *ast.Int, *ast.Float:
		return "numeric", true
	case *ast.Bool:
		return "boolean", true
	case *ast.Param:
		v, ok := c.namedParamValue(e.Name)
		if !ok {
			return "", false
		}
		switch v.(type) {
		case int, int32, int64, float32, float64:
			return "numeric", true
		case bool:
			return "boolean", true
		default:
			return "", false
		}
	default:
		return "", false
	}
}

func (c *context) compileFunctionCall(f *ast.FunctionCall) (string, error) {
	name := strings.ToLower(f.Name)
	if name == "shortestpath" {
		return "", unsupported("shortestPath", "")
	}
	sqlName := name
	if name == "collect" {
		sqlName = "array_agg"
	}
	var args []string
	if f.Star {
		args = []string{"*"}
	} else {
		for _, a := range f.Args {
			s, err := c.compileExpr(a)
			if err != nil {
				return "", err
			}
			args = append(args, s)
		}
	}
	distinct := ""
	if f.Distinct {
		distinct = "DISTINCT "
	}
	return fmt.Sprintf("%s(%s%s)", sqlName, distinct, strings.Join(args, ", ")), nil
}

// isAggregate reports whether name is one of the aggregation functions
// that trigger implicit GROUP BY (spec §4.3.4, §8 invariant 4).
func isAggregate(name string) bool {
	switch strings.ToUpper(name) {
	case "COUNT", "SUM", "AVG", "MIN", "MAX", "COLLECT":
		return true
	default:
		return false
	}
}

func (c *context) compileCase(cs *ast.Case) (string, error) {
	var b strings.Builder
	b.WriteString("CASE")
	if cs.Input != nil {
		in, err := c.compileExpr(cs.Input)
		if err != nil {
			return "", err
		}
		b.WriteString(" " + in)
	}
	for _, w := range cs.Whens {
		when, err := c.compileExpr(w.When)
		if err != nil {
			return "", err
		}
		then, err := c.compileExpr(w.Then)
		if err != nil {
			return "", err
		}
		b.WriteString(fmt.Sprintf(" WHEN %s THEN %s", when, then))
	}
	if cs.Else != nil {
		els, err := c.compileExpr(cs.Else)
		if err != nil {
			return "", err
		}
		b.WriteString(" ELSE " + els)
	}
	b.WriteString(" END")
	return b.String(), nil
}

func (c *context) compileIn(in *ast.In) (string, error) {
	left, err := c.compileExpr(in.Expr)
	if err != nil {
		return "", err
	}
	if list, ok := in.List.(*ast.List); ok {
		parts := make([]string, 0, len(list.Items))
		for _, item := range list.Items {
			s, err := c.compileExpr(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return fmt.Sprintf("%s IN (%s)", left, strings.Join(parts, ", ")), nil
	}
	right, err := c.compileExpr(in.List)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = ANY(%s)", left, right), nil
}

func (c *context) compileIsNull(n *ast.IsNull) (string, error) {
	inner, err := c.compileExpr(n.Expr)
	if err != nil {
		return "", err
	}
	if n.Not {
		return inner + " IS NOT NULL", nil
	}
	return inner + " IS NULL", nil
}

func (c *context) compileLike(l *ast.Like) (string, error) {
	inner, err := c.compileExpr(l.Expr)
	if err != nil {
		return "", err
	}
	if l.Kind == ast.LikeRegex {
		val, err := c.compileExpr(l.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s ~ %s", inner, val), nil
	}
	lit, ok := l.Value.(*ast.Str)
	if !ok {
		return "", fmt.Errorf("gen: STARTS WITH/ENDS WITH/CONTAINS require a string literal operand")
	}
	escaped := escapeLike(lit.Value)
	var pattern string
	switch l.Kind {
	case ast.LikePrefix:
		pattern = escaped + "%"
	case ast.LikeSuffix:
		pattern = "%" + escaped
	case ast.LikeContains:
		pattern = "%" + escaped + "%"
	}
	placeholder := c.addParam(pattern)
	return fmt.Sprintf("%s LIKE %s ESCAPE '\\'", inner, placeholder), nil
}

// escapeLike escapes LIKE metacharacters in a literal per spec §4.3.3.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (c *context) compileLabels(l *ast.Labels) (string, error) {
	inner, err := c.compileExpr(l.Expr)
	if err != nil {
		return "", err
	}
	if len(l.Labels) == 0 {
		return "TRUE", nil
	}
	placeholder := c.addParam(l.Labels[0])
	return fmt.Sprintf("%s.type = %s", strings.TrimSuffix(inner, ".*"), placeholder), nil
}

func (c *context) compileList(l *ast.List) (string, error) {
	parts := make([]string, 0, len(l.Items))
	for _, item := range l.Items {
		s, err := c.compileExpr(item)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}
	return "ARRAY[" + strings.Join(parts, ", ") + "]", nil
}

func (c *context) compileMap(m *ast.Map) (string, error) {
	obj, err := c.evalMapToParam(m.Pairs)
	if err != nil {
		return "", err
	}
	return c.addParam(obj), nil
}

// evalMapToParam folds a map literal's pairs into a Go map so it can be
// bound as a single JSON parameter value; every value must itself be
// staticly known (a literal), matching how property maps are used in
// practice (spec §4.3.6's CREATE/MERGE examples).
func (c *context) evalMapToParam(pairs []*ast.PropertyPair) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		v, err := literalGoValue(p.Value)
		if err != nil {
			return nil, err
		}
		out[p.Key] = v
	}
	return out, nil
}

// literalGoValue extracts the Go value of a literal expression, for
// embedding into a JSON parameter (property maps) rather than a nested
// SQL fragment.
func literalGoValue(e ast.Expr) (any, error) {
	switch e := e.(type) {
	case *ast.Int:
		return e.Value, nil
	case *ast.Float:
		return e.Value, nil
	case *ast.Str:
		return e.Value, nil
	case *ast.Bool:
		return e.Value, nil
	case *ast.Null:
		return nil, nil
	case *ast.List:
		out := make([]any, 0, len(e.Items))
		for _, item := range e.Items {
			v, err := literalGoValue(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case *ast.Map:
		m := make(map[string]any, len(e.Pairs))
		for _, p := range e.Pairs {
			v, err := literalGoValue(p.Value)
			if err != nil {
				return nil, err
			}
			m[p.Key] = v
		}
		return m, nil
	default:
		return nil, fmt.Errorf("gen: property map values must be literals, got %T", e)
	}
}

