package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/cyphersql/cyphersql/grammar"
)

// Build parses cypher text and lowers the resulting parse tree into a
// *Query. Grammar rejections surface as the participle error unchanged;
// callers that need structured ParseError fields should use the top-level
// cyphersql.Parse, which wraps this.
func Build(cypher string) (*Query, error) {
	tree, err := grammar.Parse(cypher)
	if err != nil {
		return nil, err
	}
	if tree.Query == nil {
		return nil, fmt.Errorf("ast: empty query")
	}
	return buildQuery(tree.Query)
}

func pos(p lexer.Position) Position {
	return Position{Line: p.Line, Column: p.Column}
}

func buildQuery(q *grammar.Query) (*Query, error) {
	if q.StandaloneCall != nil {
		return &Query{
			Pos:     pos(q.StandaloneCall.Pos),
			Clauses: []Clause{&Unsupported{Pos: pos(q.StandaloneCall.Pos), Kind: "CALL"}},
		}, nil
	}
	return buildRegularQuery(q.RegularQuery)
}

func buildRegularQuery(rq *grammar.RegularQuery) (*Query, error) {
	out, err := buildSingleQuery(rq.SingleQuery)
	if err != nil {
		return nil, err
	}
	for _, u := range rq.Unions {
		arm, err := buildSingleQuery(u.Query)
		if err != nil {
			return nil, err
		}
		out.Unions = append(out.Unions, UnionArm{Pos: pos(u.Pos), All: u.All, Query: arm})
	}
	return out, nil
}

func buildSingleQuery(sq *grammar.SingleQuery) (*Query, error) {
	q := &Query{Pos: pos(sq.Pos)}
	for _, c := range sq.Clauses {
		clause, err := buildClause(c)
		if err != nil {
			return nil, err
		}
		q.Clauses = append(q.Clauses, clause)
	}
	return q, nil
}

func buildClause(c *grammar.Clause) (Clause, error) {
	switch {
	case c.Reading != nil:
		return buildReadingClause(c.Reading)
	case c.Updating != nil:
		return buildUpdatingClause(c.Updating)
	case c.With != nil:
		return buildWith(c.With)
	case c.Return != nil:
		return buildReturn(c.Return)
	default:
		return nil, fmt.Errorf("ast: empty clause at %v", pos(c.Pos))
	}
}

func buildReadingClause(r *grammar.ReadingClause) (Clause, error) {
	switch {
	case r.Match != nil:
		return buildMatch(r.Match)
	case r.Unwind != nil:
		return &Unsupported{Pos: pos(r.Unwind.Pos), Kind: "UNWIND"}, nil
	case r.Call != nil:
		return &Unsupported{Pos: pos(r.Call.Pos), Kind: "CALL"}, nil
	default:
		return nil, fmt.Errorf("ast: empty reading clause at %v", pos(r.Pos))
	}
}

func buildMatch(m *grammar.MatchClause) (*Match, error) {
	out := &Match{Pos: pos(m.Pos), Optional: m.Optional}
	patterns, err := buildPattern(m.Pattern)
	if err != nil {
		return nil, err
	}
	out.Patterns = patterns
	if m.Where != nil {
		where, err := buildExpression(m.Where.Expr)
		if err != nil {
			return nil, err
		}
		out.Where = where
	}
	return out, nil
}

func buildUpdatingClause(u *grammar.UpdatingClause) (Clause, error) {
	switch {
	case u.Create != nil:
		patterns, err := buildPattern(u.Create.Pattern)
		if err != nil {
			return nil, err
		}
		return &Create{Pos: pos(u.Create.Pos), Patterns: patterns}, nil
	case u.Merge != nil:
		return buildMerge(u.Merge)
	case u.Delete != nil:
		return buildDelete(u.Delete)
	case u.Set != nil:
		items, err := buildSetItems(u.Set.Items)
		if err != nil {
			return nil, err
		}
		return &Set{Pos: pos(u.Set.Pos), Items: items}, nil
	case u.Remove != nil:
		return buildRemove(u.Remove)
	default:
		return nil, fmt.Errorf("ast: empty updating clause at %v", pos(u.Pos))
	}
}

func buildMerge(m *grammar.MergeClause) (*Merge, error) {
	pat, err := buildPatternPart(m.Pattern)
	if err != nil {
		return nil, err
	}
	out := &Merge{Pos: pos(m.Pos), Pattern: pat}
	for _, action := range m.Actions {
		items, err := buildSetItems(action.Set.Items)
		if err != nil {
			return nil, err
		}
		if action.OnMatch {
			out.OnMatch = append(out.OnMatch, items...)
		} else {
			out.OnCreate = append(out.OnCreate, items...)
		}
	}
	return out, nil
}

func buildDelete(d *grammar.DeleteClause) (*Delete, error) {
	out := &Delete{Pos: pos(d.Pos), Detach: d.Detach}
	for _, e := range d.Exprs {
		expr, err := buildExpression(e)
		if err != nil {
			return nil, err
		}
		out.Exprs = append(out.Exprs, expr)
	}
	return out, nil
}

func buildRemove(r *grammar.RemoveClause) (*Remove, error) {
	out := &Remove{Pos: pos(r.Pos)}
	for _, item := range r.Items {
		ri := &RemoveItem{Pos: pos(item.Pos), Variable: item.Variable}
		switch {
		case item.Labels != nil:
			if len(item.Labels.Labels) > 0 {
				ri.Label = item.Labels.Labels[0]
			}
		case item.Property != nil:
			ri.PropertyPath = append([]string{}, item.Property.Props...)
		}
		out.Items = append(out.Items, ri)
	}
	return out, nil
}

// buildSetItems lowers the grammar's ambiguous SetItem alternation (see
// grammar/ast.go's comment on SetItem) into unambiguous ast.SetItem values.
func buildSetItems(items []*grammar.SetItem) ([]*SetItem, error) {
	out := make([]*SetItem, 0, len(items))
	for _, it := range items {
		si, err := buildSetItem(it)
		if err != nil {
			return nil, err
		}
		out = append(out, si)
	}
	return out, nil
}

func buildSetItem(it *grammar.SetItem) (*SetItem, error) {
	switch {
	case it.Property != nil:
		val, err := buildExpression(it.PropertyExpr)
		if err != nil {
			return nil, err
		}
		if len(it.Property.Props) == 0 {
			// The grammar's first alternative also matches bare `var = expr`
			// (a PropertyExpr with zero dotted segments); that is really a
			// whole-variable assignment, not a one-key property write.
			return &SetItem{Pos: pos(it.Pos), Variable: it.Property.Base, Value: val}, nil
		}
		return &SetItem{
			Pos:          pos(it.Pos),
			Variable:     it.Property.Base,
			PropertyPath: append([]string{}, it.Property.Props...),
			Value:        val,
		}, nil
	case it.Variable != "":
		val, err := buildExpression(it.VarExpr)
		if err != nil {
			return nil, err
		}
		return &SetItem{Pos: pos(it.Pos), Variable: it.Variable, AddAssign: it.AddAssign, Value: val}, nil
	case it.LabelVar != "":
		label := ""
		if it.Labels != nil && len(it.Labels.Labels) > 0 {
			label = it.Labels.Labels[0]
		}
		return &SetItem{Pos: pos(it.Pos), Variable: it.LabelVar, Label: label}, nil
	default:
		return nil, fmt.Errorf("ast: empty SET item at %v", pos(it.Pos))
	}
}

func buildWith(w *grammar.WithClause) (*With, error) {
	out := &With{Pos: pos(w.Pos)}
	if err := fillProjectionBody(w.Body, &out.Distinct, &out.Star, &out.Items, &out.OrderBy, &out.Skip, &out.Limit); err != nil {
		return nil, err
	}
	if w.Where != nil {
		where, err := buildExpression(w.Where.Expr)
		if err != nil {
			return nil, err
		}
		out.Where = where
	}
	return out, nil
}

func buildReturn(r *grammar.ReturnClause) (*Return, error) {
	out := &Return{Pos: pos(r.Pos)}
	if err := fillProjectionBody(r.Body, &out.Distinct, &out.Star, &out.Items, &out.OrderBy, &out.Skip, &out.Limit); err != nil {
		return nil, err
	}
	return out, nil
}

func fillProjectionBody(
	body *grammar.ProjectionBody,
	distinct *bool, star *bool,
	items *[]*ProjectionItem, order *[]*OrderItem,
	skip, limit *Expr,
) error {
	*distinct = body.Distinct
	if body.Items.Star {
		*star = true
	}
	for _, it := range body.Items.Items {
		expr, err := buildExpression(it.Expr)
		if err != nil {
			return err
		}
		*items = append(*items, &ProjectionItem{Pos: pos(it.Pos), Expr: expr, Alias: it.Alias})
	}
	if body.Order != nil {
		for _, oi := range body.Order.Items {
			expr, err := buildExpression(oi.Expr)
			if err != nil {
				return err
			}
			*order = append(*order, &OrderItem{Pos: pos(oi.Pos), Expr: expr, Desc: oi.Desc})
		}
	}
	if body.Skip != nil {
		expr, err := buildExpression(body.Skip.Expr)
		if err != nil {
			return err
		}
		*skip = expr
	}
	if body.Limit != nil {
		expr, err := buildExpression(body.Limit.Expr)
		if err != nil {
			return err
		}
		*limit = expr
	}
	return nil
}

// ---------------------------------------------------------------------------
// Patterns
// ---------------------------------------------------------------------------

func buildPattern(p *grammar.Pattern) ([]*Pattern, error) {
	out := make([]*Pattern, 0, len(p.Parts))
	for _, part := range p.Parts {
		built, err := buildPatternPart(part)
		if err != nil {
			return nil, err
		}
		out = append(out, built)
	}
	return out, nil
}

func buildPatternPart(part *grammar.PatternPart) (*Pattern, error) {
	out := &Pattern{Pos: pos(part.Pos), Variable: part.Var}
	if err := flattenPatternElement(part.Element, out); err != nil {
		return nil, err
	}
	if len(out.Nodes) == 0 {
		return nil, fmt.Errorf("ast: pattern with no nodes at %v", pos(part.Pos))
	}
	return out, nil
}

func flattenPatternElement(el *grammar.PatternElement, out *Pattern) error {
	if el.Paren != nil {
		return flattenPatternElement(el.Paren, out)
	}
	node, err := buildNodePattern(el.Node)
	if err != nil {
		return err
	}
	out.Nodes = append(out.Nodes, node)
	for _, link := range el.Chain {
		rel, err := buildRelPattern(link.Rel)
		if err != nil {
			return err
		}
		nextNode, err := buildNodePattern(link.Node)
		if err != nil {
			return err
		}
		out.Rels = append(out.Rels, rel)
		out.Nodes = append(out.Nodes, nextNode)
	}
	return nil
}

func buildNodePattern(n *grammar.NodePattern) (*NodePattern, error) {
	out := &NodePattern{Pos: pos(n.Pos), Variable: n.Variable}
	if n.Labels != nil {
		out.Labels = append([]string{}, n.Labels.Labels...)
	}
	props, err := buildProperties(n.Properties)
	if err != nil {
		return nil, err
	}
	out.Properties = props
	return out, nil
}

func buildRelPattern(r *grammar.RelationshipPattern) (*RelPattern, error) {
	out := &RelPattern{Pos: pos(r.Pos)}
	switch {
	case r.LeftArrow && !r.RightArrow:
		out.Dir = DirIn
	case r.RightArrow && !r.LeftArrow:
		out.Dir = DirOut
	default:
		out.Dir = DirEither
	}
	if r.Detail == nil {
		out.MinHops, out.MaxHops = 1, 1
		return out, nil
	}
	out.Variable = r.Detail.Variable
	if r.Detail.Types != nil {
		out.Types = append([]string{}, r.Detail.Types.Types...)
	}
	props, err := buildProperties(r.Detail.Properties)
	if err != nil {
		return nil, err
	}
	out.Properties = props

	rng := r.Detail.Range
	if rng == nil {
		out.MinHops, out.MaxHops = 1, 1
		return out, nil
	}
	out.VarLength = true
	switch {
	case !rng.Range:
		// bare "*" or "*n"
		if rng.Min == nil {
			out.MinHops, out.MaxHops = 1, Unbounded
		} else {
			out.MinHops, out.MaxHops = *rng.Min, *rng.Min
		}
	default:
		if rng.Min != nil {
			out.MinHops = *rng.Min
		} else {
			out.MinHops = 1
		}
		if rng.Max != nil {
			out.MaxHops = *rng.Max
		} else {
			out.MaxHops = Unbounded
		}
	}
	return out, nil
}

func buildProperties(p *grammar.Properties) (*PropertyMap, error) {
	if p == nil {
		return nil, nil
	}
	switch {
	case p.Map != nil:
		pairs, err := buildMapPairs(p.Map.Pairs)
		if err != nil {
			return nil, err
		}
		return &PropertyMap{Pos: pos(p.Pos), Pairs: pairs}, nil
	case p.Param != nil:
		return &PropertyMap{Pos: pos(p.Pos), Param: &Param{Pos: pos(p.Param.Pos), Name: p.Param.Name}}, nil
	default:
		return nil, nil
	}
}

func buildMapPairs(pairs []*grammar.MapPair) ([]*PropertyPair, error) {
	out := make([]*PropertyPair, 0, len(pairs))
	for _, p := range pairs {
		val, err := buildExpression(p.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, &PropertyPair{Pos: pos(p.Pos), Key: p.Key, Value: val})
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func buildExpression(e *grammar.Expression) (Expr, error) {
	left, err := buildXorExpr(e.Left)
	if err != nil {
		return nil, err
	}
	for _, term := range e.Right {
		right, err := buildXorExpr(term.Expr)
		if err != nil {
			return nil, err
		}
		left = &BinOp{Pos: pos(term.Pos), Op: "OR", Left: left, Right: right}
	}
	return left, nil
}

func buildXorExpr(x *grammar.XorExpr) (Expr, error) {
	left, err := buildAndExpr(x.Left)
	if err != nil {
		return nil, err
	}
	for _, term := range x.Right {
		right, err := buildAndExpr(term.Expr)
		if err != nil {
			return nil, err
		}
		left = &BinOp{Pos: pos(term.Pos), Op: "XOR", Left: left, Right: right}
	}
	return left, nil
}

func buildAndExpr(a *grammar.AndExpr) (Expr, error) {
	left, err := buildNotExpr(a.Left)
	if err != nil {
		return nil, err
	}
	for _, term := range a.Right {
		right, err := buildNotExpr(term.Expr)
		if err != nil {
			return nil, err
		}
		left = &BinOp{Pos: pos(term.Pos), Op: "AND", Left: left, Right: right}
	}
	return left, nil
}

func buildNotExpr(n *grammar.NotExpr) (Expr, error) {
	inner, err := buildComparisonExpr(n.Expr)
	if err != nil {
		return nil, err
	}
	if n.Not {
		return &UnaryOp{Pos: pos(n.Pos), Op: "NOT", Expr: inner}, nil
	}
	return inner, nil
}

func buildComparisonExpr(c *grammar.ComparisonExpr) (Expr, error) {
	left, err := buildAddSubExpr(c.Left)
	if err != nil {
		return nil, err
	}
	if len(c.Right) == 0 {
		return left, nil
	}
	var result Expr
	prevOperand := left
	for i, term := range c.Right {
		right, err := buildAddSubExpr(term.Expr)
		if err != nil {
			return nil, err
		}
		cmp := &Compare{Pos: pos(term.Pos), Op: term.Op, Left: prevOperand, Right: right}
		if i == 0 {
			result = cmp
		} else {
			result = &BinOp{Pos: pos(term.Pos), Op: "AND", Left: result, Right: cmp}
		}
		prevOperand = right
	}
	return result, nil
}

func buildAddSubExpr(a *grammar.AddSubExpr) (Expr, error) {
	left, err := buildMultDivExpr(a.Left)
	if err != nil {
		return nil, err
	}
	for _, term := range a.Right {
		right, err := buildMultDivExpr(term.Expr)
		if err != nil {
			return nil, err
		}
		left = &BinOp{Pos: pos(term.Pos), Op: term.Op, Left: left, Right: right}
	}
	return left, nil
}

func buildMultDivExpr(m *grammar.MultDivExpr) (Expr, error) {
	left, err := buildPowerExpr(m.Left)
	if err != nil {
		return nil, err
	}
	for _, term := range m.Right {
		right, err := buildPowerExpr(term.Expr)
		if err != nil {
			return nil, err
		}
		left = &BinOp{Pos: pos(term.Pos), Op: term.Op, Left: left, Right: right}
	}
	return left, nil
}

func buildPowerExpr(p *grammar.PowerExpr) (Expr, error) {
	left, err := buildUnaryExpr(p.Left)
	if err != nil {
		return nil, err
	}
	for _, term := range p.Right {
		right, err := buildUnaryExpr(term.Expr)
		if err != nil {
			return nil, err
		}
		left = &BinOp{Pos: pos(term.Pos), Op: "^", Left: left, Right: right}
	}
	return left, nil
}

func buildUnaryExpr(u *grammar.UnaryExpr) (Expr, error) {
	inner, err := buildPostfixExpr(u.Expr)
	if err != nil {
		return nil, err
	}
	if u.Op != "" {
		return &UnaryOp{Pos: pos(u.Pos), Op: u.Op, Expr: inner}, nil
	}
	return inner, nil
}

func buildPostfixExpr(p *grammar.PostfixExpr) (Expr, error) {
	cur, err := buildAtom(p.Atom)
	if err != nil {
		return nil, err
	}
	for _, suf := range p.Suffixes {
		cur, err = applySuffix(cur, suf)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

func applySuffix(cur Expr, suf *grammar.PostfixSuffix) (Expr, error) {
	switch {
	case suf.Property != "":
		return &PropertyAccess{Pos: pos(suf.Pos), Base: cur, Key: suf.Property}, nil
	case suf.Index != nil:
		return &Unsupported{Pos: pos(suf.Pos), Kind: "indexing"}, nil
	case suf.Labels != nil:
		return &Labels{Pos: pos(suf.Pos), Expr: cur, Labels: append([]string{}, suf.Labels.Labels...)}, nil
	case suf.IsNull != nil:
		return &IsNull{Pos: pos(suf.Pos), Expr: cur, Not: suf.IsNull.Not}, nil
	case suf.In != nil:
		list, err := buildAddSubExpr(suf.In.Expr)
		if err != nil {
			return nil, err
		}
		return &In{Pos: pos(suf.Pos), Expr: cur, List: list}, nil
	case suf.StringPred != nil:
		return applyStringPred(cur, suf.StringPred)
	default:
		return nil, fmt.Errorf("ast: empty postfix suffix at %v", pos(suf.Pos))
	}
}

func applyStringPred(cur Expr, sp *grammar.StringPredSuffix) (Expr, error) {
	var kind LikeKind
	var operand *grammar.AddSubExpr
	switch {
	case sp.StartsWith != nil:
		kind, operand = LikePrefix, sp.StartsWith
	case sp.EndsWith != nil:
		kind, operand = LikeSuffix, sp.EndsWith
	case sp.Contains != nil:
		kind, operand = LikeContains, sp.Contains
	default:
		return nil, fmt.Errorf("ast: empty string predicate at %v", pos(sp.Pos))
	}
	val, err := buildAddSubExpr(operand)
	if err != nil {
		return nil, err
	}
	return &Like{Pos: pos(sp.Pos), Kind: kind, Expr: cur, Value: val}, nil
}

func buildAtom(a *grammar.Atom) (Expr, error) {
	switch {
	case a.ListComprehension != nil:
		return &Unsupported{Pos: pos(a.Pos), Kind: "listComprehension"}, nil
	case a.PatternComprehension != nil:
		return &Unsupported{Pos: pos(a.Pos), Kind: "patternComprehension"}, nil
	case a.Parameter != nil:
		return &Param{Pos: pos(a.Parameter.Pos), Name: a.Parameter.Name}, nil
	case a.CaseExpr != nil:
		return buildCase(a.CaseExpr)
	case a.CountAll:
		return &FunctionCall{Pos: pos(a.Pos), Name: "count", Star: true}, nil
	case a.FilterPredicate != nil:
		return &Unsupported{Pos: pos(a.Pos), Kind: "quantifier:" + a.FilterPredicate.Type}, nil
	case a.ExistsSubquery != nil:
		return &Unsupported{Pos: pos(a.Pos), Kind: "existsSubquery"}, nil
	case a.Parenthesized != nil:
		return buildExpression(a.Parenthesized)
	case a.FunctionCall != nil:
		return buildFunctionCall(a.FunctionCall)
	case a.Literal != nil:
		return buildLiteral(a.Literal)
	case a.Variable != "":
		return &Variable{Pos: pos(a.Pos), Name: a.Variable}, nil
	default:
		return nil, fmt.Errorf("ast: empty atom at %v", pos(a.Pos))
	}
}

func buildCase(c *grammar.CaseExpression) (Expr, error) {
	out := &Case{Pos: pos(c.Pos)}
	if c.Input != nil {
		in, err := buildExpression(c.Input)
		if err != nil {
			return nil, err
		}
		out.Input = in
	}
	for _, w := range c.Whens {
		when, err := buildExpression(w.When)
		if err != nil {
			return nil, err
		}
		then, err := buildExpression(w.Then)
		if err != nil {
			return nil, err
		}
		out.Whens = append(out.Whens, &CaseWhen{Pos: pos(w.Pos), When: when, Then: then})
	}
	if c.Else != nil {
		els, err := buildExpression(c.Else)
		if err != nil {
			return nil, err
		}
		out.Else = els
	}
	return out, nil
}

func buildFunctionCall(f *grammar.FunctionCall) (Expr, error) {
	out := &FunctionCall{Pos: pos(f.Pos), Name: f.Name.String(), Distinct: f.Distinct}
	for _, arg := range f.Args {
		e, err := buildExpression(arg)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, e)
	}
	return out, nil
}

func buildLiteral(l *grammar.Literal) (Expr, error) {
	switch {
	case l.Null:
		return &Null{Pos: pos(l.Pos)}, nil
	case l.True:
		return &Bool{Pos: pos(l.Pos), Value: true}, nil
	case l.False:
		return &Bool{Pos: pos(l.Pos), Value: false}, nil
	case l.Float != nil:
		return &Float{Pos: pos(l.Pos), Value: *l.Float}, nil
	case l.HexInt != nil:
		v, err := strconv.ParseInt(*l.HexInt, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("ast: bad hex literal %q: %w", *l.HexInt, err)
		}
		return &Int{Pos: pos(l.Pos), Value: v}, nil
	case l.OctInt != nil:
		v, err := strconv.ParseInt(*l.OctInt, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("ast: bad octal literal %q: %w", *l.OctInt, err)
		}
		return &Int{Pos: pos(l.Pos), Value: v}, nil
	case l.Int != nil:
		return &Int{Pos: pos(l.Pos), Value: *l.Int}, nil
	case l.String != nil:
		return &Str{Pos: pos(l.Pos), Value: unquoteCypherString(*l.String)}, nil
	case l.List != nil:
		out := &List{Pos: pos(l.Pos)}
		for _, item := range l.List.Items {
			e, err := buildExpression(item)
			if err != nil {
				return nil, err
			}
			out.Items = append(out.Items, e)
		}
		return out, nil
	case l.Map != nil:
		pairs, err := buildMapPairs(l.Map.Pairs)
		if err != nil {
			return nil, err
		}
		return &Map{Pos: pos(l.Pos), Pairs: pairs}, nil
	default:
		return nil, fmt.Errorf("ast: empty literal at %v", pos(l.Pos))
	}
}

// unquoteCypherString strips the surrounding quote (either style) and
// resolves backslash escapes. Cypher accepts both ' and " as delimiters;
// the lexer captured the quotes as part of the token.
func unquoteCypherString(raw string) string {
	if len(raw) < 2 {
		return raw
	}
	body := raw[1 : len(raw)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\', '\'', '"':
				b.WriteByte(body[i])
			default:
				b.WriteByte('\\')
				b.WriteByte(body[i])
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
