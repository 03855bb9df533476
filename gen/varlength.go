package gen

import (
	"fmt"
	"strings"

	"github.com/cyphersql/cyphersql/ast"
	"github.com/cyphersql/cyphersql/schema"
)

// compileVarLengthRel lowers a variable-length relationship pattern
// (spec §4.3.2) into a WITH RECURSIVE CTE tracking the visited edge set,
// and joins the outer query to it by start/end node uuid. Cycle
// prevention tracks edges, not nodes, per spec: repeated nodes are
// allowed as long as no edge is walked twice.
func (c *context) compileVarLengthRel(leftAlias string, right *ast.NodePattern, rel *ast.RelPattern, optional bool) (string, error) {
	cte := c.newCTEName()

	typeExpr, typeParams, err := c.edgeTypePredicateExpr("e", rel.Types)
	if err != nil {
		return "", err
	}
	propExpr, err := c.edgePropertyPredicateExpr("e", rel.Properties)
	if err != nil {
		return "", err
	}
	tenantExpr := ""
	if c.tenantID != "" {
		tenantExpr = fmt.Sprintf(" AND e.group_id = %s", c.tenantParam())
	}
	_ = typeParams

	baseArms := c.varLengthArms(rel.Dir, "e.source", "e.target")
	base := make([]string, 0, len(baseArms))
	for _, arm := range baseArms {
		base = append(base, fmt.Sprintf(
			"SELECT %s AS start_uuid, %s AS end_uuid, 1 AS depth, ARRAY[e.uuid] AS visited FROM edges e WHERE TRUE%s%s%s",
			arm.start, arm.end, typeExpr, propExpr, tenantExpr))
	}

	depthGuard := ""
	if rel.MaxHops != ast.Unbounded {
		depthGuard = fmt.Sprintf(" AND w.depth < %d", rel.MaxHops)
	}

	stepArms := c.varLengthArms(rel.Dir, "e.source", "e.target")
	step := make([]string, 0, len(stepArms))
	for _, arm := range stepArms {
		step = append(step, fmt.Sprintf(
			"SELECT w.start_uuid, %s AS end_uuid, w.depth + 1, w.visited || e.uuid FROM %s w JOIN edges e ON %s = w.end_uuid WHERE NOT e.uuid = ANY(w.visited)%s%s%s%s",
			arm.end, cte, arm.stepJoinCol, typeExpr, propExpr, tenantExpr, depthGuard))
	}

	body := strings.Join(base, " UNION ALL ") + " UNION ALL " + strings.Join(step, " UNION ALL ")
	c.ctes = append(c.ctes, fmt.Sprintf("%s(start_uuid, end_uuid, depth, visited) AS (%s)", cte, body))
	c.anyRecursiveCTE = true

	rightAlias := c.newNodeAlias()
	joinKW := "JOIN"
	if optional {
		joinKW = "LEFT JOIN"
	}
	c.from = append(c.from, fmt.Sprintf("%s %s ON %s.start_uuid = %s.uuid", joinKW, cte, cte, leftAlias))
	c.from = append(c.from, fmt.Sprintf("%s nodes %s ON %s.uuid = %s.end_uuid", joinKW, rightAlias, rightAlias, cte))

	minHops := rel.MinHops
	if minHops < 1 {
		minHops = 1
	}
	if rel.MaxHops == ast.Unbounded {
		c.addPredicate(fmt.Sprintf("%s.depth >= %d", cte, minHops))
	} else {
		c.addPredicate(fmt.Sprintf("%s.depth BETWEEN %d AND %d", cte, minHops, rel.MaxHops))
	}

	c.bind(rel.Variable, cte, schema.Edges)
	c.bind(right.Variable, rightAlias, schema.Nodes)
	c.addTenantPredicate(rightAlias)
	if err := c.addNodeConstraints(rightAlias, right); err != nil {
		return "", err
	}
	return rightAlias, nil
}

type varLengthArm struct {
	start       string
	end         string
	stepJoinCol string // the edges-e column the recursive step joins against w.end_uuid
}

// varLengthArms returns the UNION arms needed for the base/step selects
// of a variable-length pattern's CTE. A directed pattern needs one arm;
// an undirected pattern needs both orientations unioned so a match can
// walk the relationship in either direction at each hop.
func (c *context) varLengthArms(dir ast.Direction, source, target string) []varLengthArm {
	switch dir {
	case ast.DirOut:
		return []varLengthArm{{start: source, end: target, stepJoinCol: "e.source"}}
	case ast.DirIn:
		return []varLengthArm{{start: target, end: source, stepJoinCol: "e.target"}}
	default:
		return []varLengthArm{
			{start: source, end: target, stepJoinCol: "e.source"},
			{start: target, end: source, stepJoinCol: "e.target"},
		}
	}
}

// edgeTypePredicateExpr renders a "AND e.relation_type = $k" (or IN list)
// fragment for embedding directly in a CTE arm, reusing the same
// parameter across every arm/base/step occurrence.
func (c *context) edgeTypePredicateExpr(alias string, types []string) (string, []string, error) {
	switch len(types) {
	case 0:
		return "", nil, nil
	case 1:
		p := c.addParam(types[0])
		return fmt.Sprintf(" AND %s.relation_type = %s", alias, p), []string{p}, nil
	default:
		placeholders := make([]string, 0, len(types))
		for _, t := range types {
			placeholders = append(placeholders, c.addParam(t))
		}
		return fmt.Sprintf(" AND %s.relation_type IN (%s)", alias, joinCommaSQL(placeholders)), placeholders, nil
	}
}

// edgePropertyPredicateExpr renders the property-map predicates for an
// edge inside a variable-length pattern's CTE arms.
func (c *context) edgePropertyPredicateExpr(alias string, pm *ast.PropertyMap) (string, error) {
	if pm == nil {
		return "", nil
	}
	if pm.Param != nil {
		placeholder := c.addNamedParam(pm.Param.Name)
		return fmt.Sprintf(" AND %s.properties @> %s", alias, placeholder), nil
	}
	var b strings.Builder
	for _, pair := range pm.Pairs {
		col, isJSON, err := c.compileColumnOrJSONRef(alias, schema.Edges, pair.Key)
		if err != nil {
			return "", err
		}
		valSQL, err := c.compileExpr(pair.Value)
		if err != nil {
			return "", err
		}
		if isJSON {
			if cast, ok := c.castHint(pair.Value); ok {
				col = fmt.Sprintf("(%s)::%s", col, cast)
			}
		}
		fmt.Fprintf(&b, " AND %s = %s", col, valSQL)
	}
	return b.String(), nil
}
