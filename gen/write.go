package gen

import (
	"fmt"
	"strings"

	"github.com/cyphersql/cyphersql/ast"
	"github.com/cyphersql/cyphersql/schema"
)

// writeStatement is one INSERT/UPDATE/DELETE emitted by a writing clause.
// A single Cypher clause can expand to several (e.g. CREATE (a)-[r]->(b)
// with neither endpoint already bound emits two node inserts and one
// edge insert).
type writeStatement struct {
	sql string
}

// compileCreate lowers a CREATE clause (spec §4.3.6): every node pattern
// with an unbound variable becomes an INSERT into nodes; every
// relationship pattern becomes an INSERT into edges, referencing its
// endpoints either by an already-bound alias's uuid column or by the
// uuid just generated for a freshly created endpoint.
func (c *context) compileCreate(cr *ast.Create) ([]writeStatement, error) {
	var stmts []writeStatement
	// Bind the tenant before any uuid/label/property parameter so it stays
	// $1 when CREATE is the first clause.
	if c.tenantID != "" {
		c.tenantParam()
	}
	for _, pat := range cr.Patterns {
		nodeUUIDs := make([]string, len(pat.Nodes))
		for i, n := range pat.Nodes {
			uuidExpr, isNew, err := c.resolveOrCreateNode(n, &stmts)
			if err != nil {
				return nil, err
			}
			nodeUUIDs[i] = uuidExpr
			_ = isNew
		}
		for i, rel := range pat.Rels {
			if rel.VarLength {
				return nil, unsupported("variable-length relationship in CREATE", rel.Variable)
			}
			source, target := nodeUUIDs[i], nodeUUIDs[i+1]
			if rel.Dir == ast.DirIn {
				source, target = target, source
			}
			if rel.Dir == ast.DirEither {
				return nil, unsupported("undirected relationship in CREATE", rel.Variable)
			}
			stmt, err := c.createEdgeStatement(rel, source, target)
			if err != nil {
				return nil, err
			}
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}

// resolveOrCreateNode returns a SQL expression yielding the node's uuid:
// either the bound alias's ".uuid" column if the variable is already in
// scope (matched by a preceding MATCH, or reused earlier in the same
// pattern), or a freshly generated UUID literal parameter alongside an
// INSERT statement appended to *stmts.
func (c *context) resolveOrCreateNode(n *ast.NodePattern, stmts *[]writeStatement) (uuidExpr string, isNew bool, err error) {
	if n.Variable != "" && n.Variable != "_" {
		if existing, ok := c.created[n.Variable]; ok {
			return existing, false, nil
		}
		if b, ok := c.lookup(n.Variable); ok && b.alias != "" {
			return b.alias + ".uuid", false, nil
		}
	}
	id := newUUID()
	idParam := c.addParam(id)

	label := ""
	if len(n.Labels) > 0 {
		label = n.Labels[0]
	}
	props, err := c.propertyMapToJSONParam(n.Properties)
	if err != nil {
		return "", false, err
	}

	cols := []string{"uuid", "type", "properties"}
	vals := []string{idParam, c.addParam(label), c.addParam(props)}
	if c.tenantID != "" {
		cols = append(cols, "group_id")
		vals = append(vals, c.tenantParam())
	}
	*stmts = append(*stmts, writeStatement{
		sql: fmt.Sprintf("INSERT INTO nodes (%s) VALUES (%s)", strings.Join(cols, ", "), strings.Join(vals, ", ")),
	})

	c.bindCreated(n.Variable, idParam, schema.Nodes)
	return idParam, true, nil
}

func (c *context) createEdgeStatement(rel *ast.RelPattern, sourceExpr, targetExpr string) (writeStatement, error) {
	id := newUUID()
	relType := ""
	if len(rel.Types) > 0 {
		relType = rel.Types[0]
	}
	props, err := c.propertyMapToJSONParam(rel.Properties)
	if err != nil {
		return writeStatement{}, err
	}
	cols := []string{"uuid", "source", "target", "relation_type", "properties"}
	vals := []string{c.addParam(id), sourceExpr, targetExpr, c.addParam(relType), c.addParam(props)}
	if c.tenantID != "" {
		cols = append(cols, "group_id")
		vals = append(vals, c.tenantParam())
	}
	if rel.Variable != "" && rel.Variable != "_" {
		c.bindCreated(rel.Variable, vals[0], schema.Edges)
	}
	return writeStatement{
		sql: fmt.Sprintf("INSERT INTO edges (%s) VALUES (%s)", strings.Join(cols, ", "), strings.Join(vals, ", ")),
	}, nil
}

func (c *context) propertyMapToJSONParam(pm *ast.PropertyMap) (map[string]any, error) {
	if pm == nil {
		return map[string]any{}, nil
	}
	if pm.Param != nil {
		v, ok := c.namedParamValue(pm.Param.Name)
		if !ok {
			return map[string]any{}, nil
		}
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
		return nil, fmt.Errorf("gen: parameter %q used as a property map must be a map", pm.Param.Name)
	}
	return c.evalMapToParam(pm.Pairs)
}

// compileMerge lowers MERGE (spec §4.3.6) into a CTE-based conditional
// insert: the fixed schema has no natural unique key for the pattern
// besides its generated uuid, so ON CONFLICT can't target it. Instead a
// "cte_N_target" CTE selects a matching row if one exists, and
// "cte_N_insert" inserts a new one only when it doesn't, RETURNING
// whichever uuid resulted. ON CREATE and ON MATCH SET items are applied as
// follow-up UPDATEs keyed by the same label and property map; they are not
// conditioned on whether the insert fired, so both lists run against
// whichever row exists afterwards.
func (c *context) compileMerge(m *ast.Merge) ([]writeStatement, error) {
	if len(m.Pattern.Nodes) != 1 || len(m.Pattern.Rels) != 0 {
		return nil, unsupported("MERGE on a multi-element pattern", m.Pattern.Variable)
	}
	n := m.Pattern.Nodes[0]
	if n.Variable == "" || n.Variable == "_" {
		return nil, unsupported("MERGE on an unnamed node pattern", "")
	}

	label := ""
	if len(n.Labels) > 0 {
		label = n.Labels[0]
	}
	props, err := c.propertyMapToJSONParam(n.Properties)
	if err != nil {
		return nil, err
	}
	tenantFilter := ""
	if c.tenantID != "" {
		tenantFilter = fmt.Sprintf(" AND group_id = %s", c.tenantParam())
	}

	labelParam := c.addParam(label)
	propsParam := c.addParam(props)
	idParam := c.addParam(newUUID())

	cte := c.newCTEName()
	sql := fmt.Sprintf(
		"WITH %s_target AS (SELECT uuid FROM nodes WHERE type = %s AND properties @> %s%s LIMIT 1), "+
			"%s_insert AS (INSERT INTO nodes (uuid, type, properties%s) SELECT %s, %s, %s%s "+
			"WHERE NOT EXISTS (SELECT 1 FROM %s_target) RETURNING uuid) "+
			"SELECT uuid FROM %s_target UNION ALL SELECT uuid FROM %s_insert",
		cte, labelParam, propsParam, tenantFilter,
		cte, tenantCol(c.tenantID), idParam, labelParam, propsParam, tenantVal(c),
		cte, cte, cte)

	// Subsequent SET statements re-select by the same natural key rather
	// than re-embedding sql (which contains the INSERT): the merge
	// statement above already made the row exist exactly once, so the
	// key lookup below is now a plain, idempotent SELECT.
	naturalKeyWhere := fmt.Sprintf("type = %s AND properties @> %s%s", labelParam, propsParam, tenantFilter)
	c.bindCreated(n.Variable, fmt.Sprintf("(SELECT uuid FROM nodes WHERE %s LIMIT 1)", naturalKeyWhere), schema.Nodes)

	var stmts []writeStatement
	stmts = append(stmts, writeStatement{sql: sql})

	applySet := func(items []*ast.SetItem) error {
		for _, it := range items {
			stmt, err := c.compileSetItemUpdate("nodes", naturalKeyWhere, it)
			if err != nil {
				return err
			}
			stmts = append(stmts, stmt)
		}
		return nil
	}
	if err := applySet(m.OnCreate); err != nil {
		return nil, err
	}
	if err := applySet(m.OnMatch); err != nil {
		return nil, err
	}
	return stmts, nil
}

func tenantCol(tenantID string) string {
	if tenantID == "" {
		return ""
	}
	return ", group_id"
}

func tenantVal(c *context) string {
	if c.tenantID == "" {
		return ""
	}
	return ", " + c.tenantParam()
}

// compileDelete lowers DELETE/DETACH DELETE (spec §4.3.6). Each deleted
// expression must resolve to a bound node or edge variable; DETACH first
// removes any edge touching a deleted node.
func (c *context) compileDelete(d *ast.Delete) ([]writeStatement, error) {
	var stmts []writeStatement
	var nodeAliases []string
	for _, e := range d.Exprs {
		v, ok := e.(*ast.Variable)
		if !ok {
			return nil, unsupported("DELETE of a non-variable expression", "")
		}
		b, ok := c.lookup(v.Name)
		if !ok || b.alias == "" {
			return nil, unboundVariable(v.Name, "DELETE")
		}
		if b.table == schema.Nodes {
			nodeAliases = append(nodeAliases, b.alias)
		}
	}
	if d.Detach && len(nodeAliases) > 0 {
		for _, alias := range nodeAliases {
			stmts = append(stmts, writeStatement{
				sql: fmt.Sprintf("DELETE FROM edges WHERE source IN (%s) OR target IN (%s)",
					selectAliasUUID(c, alias), selectAliasUUID(c, alias)),
			})
		}
	}
	for _, e := range d.Exprs {
		v := e.(*ast.Variable)
		b, _ := c.lookup(v.Name)
		stmts = append(stmts, writeStatement{
			sql: fmt.Sprintf("DELETE FROM %s WHERE uuid IN (%s)", b.table, selectAliasUUID(c, b.alias)),
		})
	}
	return stmts, nil
}

// selectAliasUUID rebuilds the FROM/WHERE that scoped alias, so a DELETE
// (which can't reference the outer query's joined aliases directly) can
// select the same uuid set through a scalar subquery.
func selectAliasUUID(c *context, alias string) string {
	return fmt.Sprintf("SELECT %s.uuid %s%s", alias, c.fromClause(), c.whereClause())
}

// compileSet lowers a SET clause (spec §4.3.6) into one UPDATE per item,
// scoped to the same row set as the enclosing MATCH via a uuid subquery.
func (c *context) compileSet(s *ast.Set) ([]writeStatement, error) {
	var stmts []writeStatement
	for _, it := range s.Items {
		table, where, err := c.resolveWriteTarget(it.Variable, "SET")
		if err != nil {
			return nil, err
		}
		stmt, err := c.compileSetItemUpdate(table, where, it)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// compileSetItemUpdate builds one UPDATE statement for a SET item (or a
// MERGE ON MATCH/ON CREATE action), scoped by whereClause.
func (c *context) compileSetItemUpdate(table, whereClause string, it *ast.SetItem) (writeStatement, error) {
	if it.Label != "" {
		return writeStatement{
			sql: fmt.Sprintf("UPDATE %s SET type = %s WHERE %s", table, c.addParam(it.Label), whereClause),
		}, nil
	}
	valSQL, err := c.compileExpr(it.Value)
	if err != nil {
		return writeStatement{}, err
	}
	switch {
	case len(it.PropertyPath) == 1:
		path := c.addParam([]string{it.PropertyPath[0]})
		return writeStatement{
			sql: fmt.Sprintf("UPDATE %s SET properties = jsonb_set(properties, %s, to_jsonb(%s), true) WHERE %s",
				table, path, valSQL, whereClause),
		}, nil
	case len(it.PropertyPath) > 1:
		path := c.addParam(append([]string{}, it.PropertyPath...))
		return writeStatement{
			sql: fmt.Sprintf("UPDATE %s SET properties = jsonb_set(properties, %s, to_jsonb(%s), true) WHERE %s",
				table, path, valSQL, whereClause),
		}, nil
	case it.AddAssign:
		return writeStatement{
			sql: fmt.Sprintf("UPDATE %s SET properties = properties || %s WHERE %s", table, valSQL, whereClause),
		}, nil
	default:
		return writeStatement{
			sql: fmt.Sprintf("UPDATE %s SET properties = %s WHERE %s", table, valSQL, whereClause),
		}, nil
	}
}

// compileRemove lowers a REMOVE clause (spec §4.3.6, extended per
// SPEC_FULL.md to cover label removal): a property key is stripped with
// the `#-` path-removal operator, a label is cleared by nulling `type`
// since the schema has a single label column.
func (c *context) compileRemove(r *ast.Remove) ([]writeStatement, error) {
	var stmts []writeStatement
	for _, it := range r.Items {
		table, where, err := c.resolveWriteTarget(it.Variable, "REMOVE")
		if err != nil {
			return nil, err
		}
		if it.Label != "" {
			stmts = append(stmts, writeStatement{
				sql: fmt.Sprintf("UPDATE %s SET type = NULL WHERE %s", table, where),
			})
			continue
		}
		path := c.addParam(append([]string{}, it.PropertyPath...))
		stmts = append(stmts, writeStatement{
			sql: fmt.Sprintf("UPDATE %s SET properties = properties #- %s WHERE %s", table, path, where),
		})
	}
	return stmts, nil
}
