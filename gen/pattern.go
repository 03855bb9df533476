package gen

import (
	"fmt"

	"github.com/cyphersql/cyphersql/ast"
	"github.com/cyphersql/cyphersql/schema"
)

// compilePattern lowers one pattern of a MATCH (or the read side of a
// CREATE) into FROM/JOIN fragments and predicates, per spec §4.3.1.
// optional makes every join it introduces a LEFT JOIN (spec: "OPTIONAL
// MATCH replaces all joins it introduces with LEFT JOIN").
func (c *context) compilePattern(pat *ast.Pattern, optional bool) error {
	alias, err := c.bindOrJoinNode(pat.Nodes[0], optional)
	if err != nil {
		return err
	}
	for i, rel := range pat.Rels {
		next := pat.Nodes[i+1]
		if rel.VarLength {
			alias, err = c.compileVarLengthRel(alias, next, rel, optional)
		} else {
			alias, err = c.compileFixedRel(alias, next, rel, optional)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// bindOrJoinNode resolves a node pattern's variable to an alias: reusing
// an already-bound alias, or allocating a fresh one and adding it to the
// FROM clause (as the initial "FROM nodes n1", or a cross join if a FROM
// is already established for this scope).
func (c *context) bindOrJoinNode(n *ast.NodePattern, optional bool) (string, error) {
	if n.Variable != "" && n.Variable != "_" {
		if b, ok := c.lookup(n.Variable); ok {
			if err := c.addNodeConstraints(b.alias, n); err != nil {
				return "", err
			}
			return b.alias, nil
		}
	}
	alias := c.newNodeAlias()
	switch {
	case !c.fromSet:
		c.from = append(c.from, fmt.Sprintf("FROM nodes %s", alias))
		c.fromSet = true
	case optional:
		c.from = append(c.from, fmt.Sprintf("LEFT JOIN nodes %s ON TRUE", alias))
	default:
		c.from = append(c.from, fmt.Sprintf("CROSS JOIN nodes %s", alias))
	}
	c.bind(n.Variable, alias, schema.Nodes)
	c.addTenantPredicate(alias)
	if err := c.addNodeConstraints(alias, n); err != nil {
		return "", err
	}
	return alias, nil
}

// addNodeConstraints adds the label and property-map predicates for a
// node pattern. The schema models a single label per node (one `type`
// column), so a multi-label pattern (:A:B) constrains on the first label
// only; additional labels are treated as informational.
func (c *context) addNodeConstraints(alias string, n *ast.NodePattern) error {
	if len(n.Labels) > 0 {
		c.addPredicate(fmt.Sprintf("%s.type = %s", alias, c.addParam(n.Labels[0])))
	}
	return c.addPropertyMapConstraints(alias, schema.Nodes, n.Properties)
}

// addPropertyMapConstraints expands a property map into conjunctive
// equality predicates (spec §4.3.1) or, for a whole-map parameter
// pattern, delegates to JSON containment.
func (c *context) addPropertyMapConstraints(alias, table string, pm *ast.PropertyMap) error {
	if pm == nil {
		return nil
	}
	if pm.Param != nil {
		placeholder := c.addNamedParam(pm.Param.Name)
		c.addPredicate(fmt.Sprintf("%s.properties @> %s", alias, placeholder))
		return nil
	}
	for _, pair := range pm.Pairs {
		col, isJSON, err := c.compileColumnOrJSONRef(alias, table, pair.Key)
		if err != nil {
			return err
		}
		valSQL, err := c.compileExpr(pair.Value)
		if err != nil {
			return err
		}
		if isJSON {
			if cast, ok := c.castHint(pair.Value); ok {
				col = fmt.Sprintf("(%s)::%s", col, cast)
			}
		}
		c.addPredicate(fmt.Sprintf("%s = %s", col, valSQL))
	}
	return nil
}

// compileColumnOrJSONRef is the pattern-context counterpart of
// compilePropertyOperand: given an alias/table/key directly (not a
// PropertyAccess node), decide column vs JSON extraction.
func (c *context) compileColumnOrJSONRef(alias, table, key string) (sql string, isJSON bool, err error) {
	if c.sch.IsColumn(table, key) {
		return alias + "." + key, false, nil
	}
	return fmt.Sprintf("(%s.properties->>'%s')", alias, escapeJSONKey(key)), true, nil
}

// compileFixedRel joins a single-hop relationship pattern between an
// already-resolved left alias and a not-yet-resolved right node pattern,
// returning the right node's alias.
func (c *context) compileFixedRel(leftAlias string, right *ast.NodePattern, rel *ast.RelPattern, optional bool) (string, error) {
	joinKW := "JOIN"
	if optional {
		joinKW = "LEFT JOIN"
	}

	edgeAlias := c.newEdgeAlias()
	rightAlias := c.newNodeAlias()

	switch rel.Dir {
	case ast.DirOut:
		c.from = append(c.from, fmt.Sprintf("%s edges %s ON %s.source = %s.uuid", joinKW, edgeAlias, edgeAlias, leftAlias))
		c.from = append(c.from, fmt.Sprintf("%s nodes %s ON %s.target = %s.uuid", joinKW, rightAlias, edgeAlias, rightAlias))
	case ast.DirIn:
		c.from = append(c.from, fmt.Sprintf("%s edges %s ON %s.target = %s.uuid", joinKW, edgeAlias, edgeAlias, leftAlias))
		c.from = append(c.from, fmt.Sprintf("%s nodes %s ON %s.source = %s.uuid", joinKW, rightAlias, edgeAlias, rightAlias))
	default: // DirEither
		c.from = append(c.from, fmt.Sprintf("%s edges %s ON (%s.source = %s.uuid OR %s.target = %s.uuid)",
			joinKW, edgeAlias, edgeAlias, leftAlias, edgeAlias, leftAlias))
		c.from = append(c.from, fmt.Sprintf(
			"%s nodes %s ON ((%s.uuid = %s.target AND %s.source = %s.uuid) OR (%s.uuid = %s.source AND %s.target = %s.uuid))",
			joinKW, rightAlias, rightAlias, edgeAlias, edgeAlias, leftAlias, rightAlias, edgeAlias, edgeAlias, leftAlias))
	}

	c.bind(rel.Variable, edgeAlias, schema.Edges)
	c.addTenantPredicate(edgeAlias)
	if err := c.addEdgeTypeConstraint(edgeAlias, rel.Types); err != nil {
		return "", err
	}
	if err := c.addPropertyMapConstraints(edgeAlias, schema.Edges, rel.Properties); err != nil {
		return "", err
	}

	c.bind(right.Variable, rightAlias, schema.Nodes)
	c.addTenantPredicate(rightAlias)
	if err := c.addNodeConstraints(rightAlias, right); err != nil {
		return "", err
	}
	return rightAlias, nil
}

// addEdgeTypeConstraint adds the relation_type predicate for an edge
// pattern's `:T1|T2` disjunction.
func (c *context) addEdgeTypeConstraint(alias string, types []string) error {
	switch len(types) {
	case 0:
		return nil
	case 1:
		c.addPredicate(fmt.Sprintf("%s.relation_type = %s", alias, c.addParam(types[0])))
	default:
		placeholders := make([]string, 0, len(types))
		for _, t := range types {
			placeholders = append(placeholders, c.addParam(t))
		}
		c.addPredicate(fmt.Sprintf("%s.relation_type IN (%s)", alias, joinCommaSQL(placeholders)))
	}
	return nil
}

func joinCommaSQL(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
