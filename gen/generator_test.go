package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cyphersql/cyphersql/ast"
	"github.com/cyphersql/cyphersql/schema"
)

func mustParse(t *testing.T, cypher string) *ast.Query {
	t.Helper()
	q, err := ast.Build(cypher)
	require.NoError(t, err, cypher)
	return q
}

func TestGenerate_SimpleMatchReturn(t *testing.T) {
	q := mustParse(t, "MATCH (p:Person) WHERE p.age > 30 RETURN p.name")
	sql, params, err := Generate(q, nil, "", schema.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "FROM nodes n1")
	assert.Contains(t, sql, "n1.type = $1")
	assert.Contains(t, sql, "(n1.properties->>'age')::numeric > $2")
	assert.Contains(t, sql, "SELECT n1.name AS p_name")
	require.Len(t, params, 2)
	assert.Equal(t, "Person", params[0])
	assert.Equal(t, int64(30), params[1])
}

func TestGenerate_TenantAlwaysFirstParam(t *testing.T) {
	q := mustParse(t, "MATCH (p:Person {name: $name}) RETURN p")
	sql, params, err := Generate(q, map[string]any{"name": "Ada"}, "tenant-1", schema.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "n1.group_id = $1")
	assert.Equal(t, "tenant-1", params[0])
	assert.Equal(t, "Ada", params[2])
}

func TestGenerate_NamedParamInterned(t *testing.T) {
	q := mustParse(t, "MATCH (a:Person {name: $n}) MATCH (b:Person {name: $n}) RETURN a, b")
	_, params, err := Generate(q, map[string]any{"n": "Ada"}, "", schema.Default())
	require.NoError(t, err)
	require.Len(t, params, 3) // "Person", "Ada", "Person" — $n reused across both matches
	assert.Equal(t, "Ada", params[1])
}

func TestGenerate_RelationshipPatternJoins(t *testing.T) {
	q := mustParse(t, "MATCH (a:Person)-[r:KNOWS]->(b:Person) RETURN a.name, b.name")
	sql, _, err := Generate(q, nil, "", schema.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "JOIN edges e1 ON e1.source = n1.uuid")
	assert.Contains(t, sql, "JOIN nodes n2 ON e1.target = n2.uuid")
	assert.Contains(t, sql, "e1.relation_type = $2")
}

func TestGenerate_OptionalMatchLeftJoin(t *testing.T) {
	q := mustParse(t, "MATCH (a:Person) OPTIONAL MATCH (a)-[:KNOWS]->(b:Person) RETURN a.name, b.name")
	sql, _, err := Generate(q, nil, "", schema.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "LEFT JOIN edges")
	assert.Contains(t, sql, "LEFT JOIN nodes")
}

func TestGenerate_AggregationImplicitGroupBy(t *testing.T) {
	q := mustParse(t, "MATCH (p:Person)-[:WORKS_AT]->(c:Company) RETURN c.name, count(p) AS n")
	sql, _, err := Generate(q, nil, "", schema.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "count(n1.*)")
	assert.Contains(t, sql, "GROUP BY n2.name")
}

func TestGenerate_CollectMapsToArrayAgg(t *testing.T) {
	q := mustParse(t, "MATCH (p:Person) RETURN collect(p.name) AS names")
	sql, _, err := Generate(q, nil, "", schema.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "array_agg(")
}

func TestGenerate_WithWhereBecomesHavingWhenAggregating(t *testing.T) {
	q := mustParse(t, "MATCH (p:Person)-[:WORKS_AT]->(c:Company) WITH c.name AS name, count(p) AS n WHERE n > 5 RETURN name, n")
	sql, _, err := Generate(q, nil, "", schema.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "HAVING count(n1.*) > $")
	assert.Contains(t, sql, "WITH cte_1 AS (")
}

func TestGenerate_WholeVariableGroupingKeyIsUnsupported(t *testing.T) {
	q := mustParse(t, "MATCH (p:Person)-[:WORKS_AT]->(c:Company) WITH c, count(p) AS n RETURN c.name, n")
	_, _, err := Generate(q, nil, "", schema.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFeature)
}

func TestGenerate_VariableLengthPathRecursiveCTE(t *testing.T) {
	q := mustParse(t, "MATCH (a:Person)-[:KNOWS*1..3]->(b:Person) RETURN a.name, b.name")
	sql, _, err := Generate(q, nil, "", schema.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "WITH RECURSIVE cte_1")
	assert.Contains(t, sql, "NOT e.uuid = ANY(w.visited)")
	assert.Contains(t, sql, "cte_1.depth BETWEEN 1 AND 3")
}

func TestGenerate_UnboundedVariableLengthPath(t *testing.T) {
	q := mustParse(t, "MATCH (a:Person)-[:KNOWS*]->(b:Person) RETURN a.name")
	sql, _, err := Generate(q, nil, "", schema.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "cte_1.depth >= 1")
	assert.NotContains(t, sql, "w.depth <")
}

func TestGenerate_CreateNodeAndEdge(t *testing.T) {
	q := mustParse(t, "CREATE (a:Person {name: 'Ada'})-[:KNOWS]->(b:Person {name: 'Bo'})")
	sql, _, err := Generate(q, nil, "", schema.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "INSERT INTO nodes")
	assert.Contains(t, sql, "INSERT INTO edges")
}

func TestGenerate_CreateThenReturnBoundVariable(t *testing.T) {
	q := mustParse(t, "MATCH (a:Person {name: 'Ada'}) CREATE (a)-[:KNOWS]->(b:Person {name: 'Bo'}) RETURN a.name")
	sql, _, err := Generate(q, nil, "", schema.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "INSERT INTO nodes")
	assert.Contains(t, sql, "INSERT INTO edges")
	assert.Contains(t, sql, "; SELECT")
}

func TestGenerate_SetPropertyPathUsesJSONBSet(t *testing.T) {
	q := mustParse(t, "MATCH (p:Person) WHERE p.name = 'Ada' SET p.age = 31")
	stmts, _, err := (func() ([]writeStatement, int, error) {
		c := newContext(schema.Default(), nil, "")
		for _, cl := range q.Clauses {
			if m, ok := cl.(*ast.Match); ok {
				for _, pat := range m.Patterns {
					require.NoError(t, c.compilePattern(pat, false))
				}
				if m.Where != nil {
					sql, err := c.compileExpr(m.Where)
					require.NoError(t, err)
					c.addPredicate(sql)
				}
			}
			if s, ok := cl.(*ast.Set); ok {
				return func() ([]writeStatement, int, error) {
					stmts, err := c.compileSet(s)
					return stmts, 0, err
				}()
			}
		}
		return nil, 0, nil
	})()
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0].sql, "jsonb_set(properties,")
}

func TestGenerate_UnionShapeMismatch(t *testing.T) {
	q := mustParse(t, "MATCH (a:Person) RETURN a.name UNION MATCH (b:Person) RETURN b.name, b.age")
	_, _, err := Generate(q, nil, "", schema.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnionShapeMismatch)
}

func TestGenerate_UnwindIsUnsupported(t *testing.T) {
	q := mustParse(t, "UNWIND [1,2,3] AS x RETURN x")
	_, _, err := Generate(q, nil, "", schema.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFeature)
}

func TestGenerate_ShortestPathIsUnsupported(t *testing.T) {
	q := mustParse(t, "MATCH (a:Person) RETURN shortestPath(a.name)")
	_, _, err := Generate(q, nil, "", schema.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFeature)
}

func TestGenerate_UnboundVariableInReturn(t *testing.T) {
	q := mustParse(t, "MATCH (a:Person) RETURN b.name")
	_, _, err := Generate(q, nil, "", schema.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnboundVariable)
}

func TestGenerate_EmptyQuery(t *testing.T) {
	_, _, err := Generate(&ast.Query{}, nil, "", schema.Default())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestGenerate_StartsWithUsesEscapedLike(t *testing.T) {
	q := mustParse(t, `MATCH (p:Person) WHERE p.name STARTS WITH 'Ada' RETURN p.name`)
	sql, params, err := Generate(q, nil, "", schema.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "LIKE $2 ESCAPE '\\'")
	assert.Equal(t, "Ada%", params[1])
}
