package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders a Query back into Cypher-like source text. It is used by
// tests to check that Build is stable (parse, print, re-parse, compare)
// and by diagnostics that want to show the AST a query lowered to.
func Print(q *Query) string {
	var b strings.Builder
	p := &printer{b: &b}
	p.printQuery(q)
	return strings.TrimSpace(b.String())
}

type printer struct {
	b *strings.Builder
}

func (p *printer) write(s string) {
	p.b.WriteString(s)
}

func (p *printer) printQuery(q *Query) {
	for i, c := range q.Clauses {
		if i > 0 {
			p.write("\n")
		}
		p.printClause(c)
	}
	for _, u := range q.Unions {
		p.write("\nUNION")
		if u.All {
			p.write(" ALL")
		}
		p.write("\n")
		p.printQuery(u.Query)
	}
}

func (p *printer) printClause(c Clause) {
	switch c := c.(type) {
	case *Match:
		if c.Optional {
			p.write("OPTIONAL ")
		}
		p.write("MATCH ")
		p.printPatterns(c.Patterns)
		if c.Where != nil {
			p.write(" WHERE ")
			p.printExpr(c.Where)
		}
	case *Create:
		p.write("CREATE ")
		p.printPatterns(c.Patterns)
	case *Merge:
		p.write("MERGE ")
		p.printPattern(c.Pattern)
		if len(c.OnCreate) > 0 {
			p.write(" ON CREATE SET ")
			p.printSetItems(c.OnCreate)
		}
		if len(c.OnMatch) > 0 {
			p.write(" ON MATCH SET ")
			p.printSetItems(c.OnMatch)
		}
	case *Delete:
		if c.Detach {
			p.write("DETACH ")
		}
		p.write("DELETE ")
		for i, e := range c.Exprs {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(e)
		}
	case *Set:
		p.write("SET ")
		p.printSetItems(c.Items)
	case *Remove:
		p.write("REMOVE ")
		for i, item := range c.Items {
			if i > 0 {
				p.write(", ")
			}
			p.printRemoveItem(item)
		}
	case *With:
		p.write("WITH ")
		p.printDistinct(c.Distinct)
		p.printProjection(c.Star, c.Items, c.OrderBy, c.Skip, c.Limit)
		if c.Where != nil {
			p.write(" WHERE ")
			p.printExpr(c.Where)
		}
	case *Return:
		p.write("RETURN ")
		p.printDistinct(c.Distinct)
		p.printProjection(c.Star, c.Items, c.OrderBy, c.Skip, c.Limit)
	case *Unsupported:
		p.write("/* unsupported: " + c.Kind + " */")
	default:
		p.write(fmt.Sprintf("/* unknown clause %T */", c))
	}
}

func (p *printer) printDistinct(distinct bool) {
	if distinct {
		p.write("DISTINCT ")
	}
}

func (p *printer) printProjection(star bool, items []*ProjectionItem, order []*OrderItem, skip, limit Expr) {
	if star {
		p.write("*")
	} else {
		for i, it := range items {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(it.Expr)
			if it.Alias != "" {
				p.write(" AS " + it.Alias)
			}
		}
	}
	if len(order) > 0 {
		p.write(" ORDER BY ")
		for i, o := range order {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(o.Expr)
			if o.Desc {
				p.write(" DESC")
			}
		}
	}
	if skip != nil {
		p.write(" SKIP ")
		p.printExpr(skip)
	}
	if limit != nil {
		p.write(" LIMIT ")
		p.printExpr(limit)
	}
}

func (p *printer) printSetItems(items []*SetItem) {
	for i, it := range items {
		if i > 0 {
			p.write(", ")
		}
		p.write(it.Variable)
		switch {
		case it.Label != "":
			p.write(":" + it.Label)
		case len(it.PropertyPath) > 0:
			p.write("." + strings.Join(it.PropertyPath, "."))
			p.write(" = ")
			p.printExpr(it.Value)
		default:
			if it.AddAssign {
				p.write(" += ")
			} else {
				p.write(" = ")
			}
			p.printExpr(it.Value)
		}
	}
}

func (p *printer) printRemoveItem(it *RemoveItem) {
	p.write(it.Variable)
	if it.Label != "" {
		p.write(":" + it.Label)
		return
	}
	p.write("." + strings.Join(it.PropertyPath, "."))
}

func (p *printer) printPatterns(patterns []*Pattern) {
	for i, pat := range patterns {
		if i > 0 {
			p.write(", ")
		}
		p.printPattern(pat)
	}
}

func (p *printer) printPattern(pat *Pattern) {
	if pat.Variable != "" {
		p.write(pat.Variable + " = ")
	}
	p.printNode(pat.Nodes[0])
	for i, rel := range pat.Rels {
		p.printRel(rel)
		p.printNode(pat.Nodes[i+1])
	}
}

func (p *printer) printNode(n *NodePattern) {
	p.write("(")
	p.write(n.Variable)
	for _, l := range n.Labels {
		p.write(":" + l)
	}
	p.printPropertyMap(n.Properties)
	p.write(")")
}

func (p *printer) printRel(r *RelPattern) {
	if r.Dir == DirIn {
		p.write("<-")
	} else {
		p.write("-")
	}
	p.write("[")
	p.write(r.Variable)
	for i, t := range r.Types {
		if i == 0 {
			p.write(":" + t)
		} else {
			p.write("|" + t)
		}
	}
	if r.VarLength {
		p.write("*")
		p.write(strconv.Itoa(r.MinHops))
		p.write("..")
		if r.MaxHops != Unbounded {
			p.write(strconv.Itoa(r.MaxHops))
		}
	}
	p.printPropertyMap(r.Properties)
	p.write("]")
	if r.Dir == DirOut {
		p.write("->")
	} else {
		p.write("-")
	}
}

func (p *printer) printPropertyMap(m *PropertyMap) {
	if m == nil {
		return
	}
	if m.Param != nil {
		p.write(" $" + m.Param.Name)
		return
	}
	p.write(" {")
	for i, pair := range m.Pairs {
		if i > 0 {
			p.write(", ")
		}
		p.write(pair.Key + ": ")
		p.printExpr(pair.Value)
	}
	p.write("}")
}

func (p *printer) printExpr(e Expr) {
	switch e := e.(type) {
	case *BinOp:
		p.printExpr(e.Left)
		p.write(" " + e.Op + " ")
		p.printExpr(e.Right)
	case *UnaryOp:
		p.write(e.Op + " ")
		p.printExpr(e.Expr)
	case *Compare:
		p.printExpr(e.Left)
		p.write(" " + e.Op + " ")
		p.printExpr(e.Right)
	case *FunctionCall:
		p.write(e.Name + "(")
		if e.Distinct {
			p.write("DISTINCT ")
		}
		if e.Star {
			p.write("*")
		}
		for i, a := range e.Args {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(a)
		}
		p.write(")")
	case *Case:
		p.write("CASE ")
		if e.Input != nil {
			p.printExpr(e.Input)
			p.write(" ")
		}
		for _, w := range e.Whens {
			p.write("WHEN ")
			p.printExpr(w.When)
			p.write(" THEN ")
			p.printExpr(w.Then)
			p.write(" ")
		}
		if e.Else != nil {
			p.write("ELSE ")
			p.printExpr(e.Else)
			p.write(" ")
		}
		p.write("END")
	case *PropertyAccess:
		p.printExpr(e.Base)
		p.write("." + e.Key)
	case *In:
		p.printExpr(e.Expr)
		p.write(" IN ")
		p.printExpr(e.List)
	case *IsNull:
		p.printExpr(e.Expr)
		p.write(" IS ")
		if e.Not {
			p.write("NOT ")
		}
		p.write("NULL")
	case *Like:
		p.printExpr(e.Expr)
		switch e.Kind {
		case LikePrefix:
			p.write(" STARTS WITH ")
		case LikeSuffix:
			p.write(" ENDS WITH ")
		case LikeContains:
			p.write(" CONTAINS ")
		case LikeRegex:
			p.write(" =~ ")
		}
		p.printExpr(e.Value)
	case *Labels:
		p.printExpr(e.Expr)
		for _, l := range e.Labels {
			p.write(":" + l)
		}
	case *Int:
		p.write(strconv.FormatInt(e.Value, 10))
	case *Float:
		p.write(strconv.FormatFloat(e.Value, 'g', -1, 64))
	case *Str:
		p.write(strconv.Quote(e.Value))
	case *Bool:
		p.write(strconv.FormatBool(e.Value))
	case *Null:
		p.write("NULL")
	case *List:
		p.write("[")
		for i, it := range e.Items {
			if i > 0 {
				p.write(", ")
			}
			p.printExpr(it)
		}
		p.write("]")
	case *Map:
		p.write("{")
		for i, pair := range e.Pairs {
			if i > 0 {
				p.write(", ")
			}
			p.write(pair.Key + ": ")
			p.printExpr(pair.Value)
		}
		p.write("}")
	case *Param:
		p.write("$" + e.Name)
	case *Variable:
		p.write(e.Name)
	case *Unsupported:
		p.write("/* unsupported: " + e.Kind + " */")
	default:
		p.write(fmt.Sprintf("/* unknown expr %T */", e))
	}
}
