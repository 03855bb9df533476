package ast_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/cyphersql/cyphersql/ast"
)

func TestBuild_Basic(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"simple return", "RETURN 42"},
		{"simple match", "MATCH (n) RETURN n"},
		{"match with label and properties", `MATCH (u:User {name: "Alice"}) RETURN u`},
		{"property access", "MATCH (u:User) RETURN u.name"},
		{"relationship pattern", "MATCH (a)-[:KNOWS]->(b) RETURN a, b"},
		{"undirected relationship", "MATCH (a)-[:KNOWS]-(b) RETURN a, b"},
		{"variable length range", "MATCH (a)-[:KNOWS*1..3]->(b) RETURN a, b"},
		{"variable length unbounded", "MATCH (a)-[:KNOWS*]->(b) RETURN a, b"},
		{"variable length min only", "MATCH (a)-[:KNOWS*2..]->(b) RETURN a, b"},
		{"where clause", "MATCH (u:User) WHERE u.age > 18 AND u.active = true RETURN u"},
		{"with having", "MATCH (n:Person) WITH n.city AS city, count(n) AS pop WHERE pop > 10 RETURN city"},
		{"create", "CREATE (n:Person {name: 'Alice'})"},
		{"merge with actions", "MERGE (u:User {id: $id}) ON CREATE SET u.name = $name ON MATCH SET u.updated = $t RETURN u"},
		{"delete", "MATCH (u:User) DELETE u"},
		{"detach delete", "MATCH (u:User) DETACH DELETE u"},
		{"set property path", "MATCH (u:User) SET u.address.city = $c RETURN u"},
		{"set whole variable", "MATCH (u:User) SET u = $props RETURN u"},
		{"set add assign", "MATCH (u:User) SET u += $props RETURN u"},
		{"set label", "MATCH (u) SET u:Admin RETURN u"},
		{"remove label", "MATCH (u) REMOVE u:Admin RETURN u"},
		{"remove property", "MATCH (u) REMOVE u.temp RETURN u"},
		{"union", "MATCH (a:A) RETURN a.name UNION MATCH (b:B) RETURN b.name"},
		{"union all", "MATCH (a:A) RETURN a.name UNION ALL MATCH (b:B) RETURN b.name"},
		{"order skip limit", "MATCH (u:User) RETURN u.name ORDER BY u.name DESC SKIP 10 LIMIT 5"},
		{"count star", "MATCH (u:User) RETURN count(*)"},
		{"case expression", "RETURN CASE WHEN 1 > 0 THEN 'p' ELSE 'n' END"},
		{"starts with", `MATCH (u:User) WHERE u.name STARTS WITH "A" RETURN u`},
		{"in list", "MATCH (u:User) WHERE u.id IN [1, 2, 3] RETURN u"},
		{"is not null", "MATCH (u:User) WHERE u.email IS NOT NULL RETURN u"},
		{"whole map param pattern", "MATCH (n:Person $props) RETURN n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ast.Build(tt.query)
			if err != nil {
				t.Fatalf("Build(%q) error: %v", tt.query, err)
			}
			if len(q.Clauses) == 0 {
				t.Fatalf("Build(%q) produced no clauses", tt.query)
			}
		})
	}
}

func TestBuild_UnsupportedConstructsSurfaceAsUnsupportedNode(t *testing.T) {
	tests := []struct {
		name  string
		query string
		kind  string
	}{
		{"unwind", "UNWIND [1, 2, 3] AS x RETURN x", "UNWIND"},
		{"call", "CALL db.labels() YIELD label RETURN label", "CALL"},
		{"list comprehension", "RETURN [x IN [1, 2] | x * 2]", "listComprehension"},
		{"exists subquery", "MATCH (u) WHERE EXISTS { MATCH (u)-[:KNOWS]->() } RETURN u", "existsSubquery"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ast.Build(tt.query)
			if err != nil {
				t.Fatalf("Build(%q) error: %v", tt.query, err)
			}
			if !containsUnsupported(q, tt.kind) {
				t.Fatalf("Build(%q) did not surface Unsupported{Kind:%q}", tt.query, tt.kind)
			}
		})
	}
}

func containsUnsupported(q *ast.Query, kind string) bool {
	for _, c := range q.Clauses {
		if u, ok := c.(*ast.Unsupported); ok && strings.HasPrefix(u.Kind, kind) {
			return true
		}
		if m, ok := c.(*ast.Return); ok {
			for _, item := range m.Items {
				if u, ok := item.Expr.(*ast.Unsupported); ok && strings.HasPrefix(u.Kind, kind) {
					return true
				}
			}
		}
		if m, ok := c.(*ast.Match); ok && m.Where != nil {
			if hasUnsupportedExpr(m.Where, kind) {
				return true
			}
		}
	}
	return false
}

func hasUnsupportedExpr(e ast.Expr, kind string) bool {
	switch e := e.(type) {
	case *ast.Unsupported:
		return strings.HasPrefix(e.Kind, kind)
	case *ast.BinOp:
		return hasUnsupportedExpr(e.Left, kind) || hasUnsupportedExpr(e.Right, kind)
	case *ast.UnaryOp:
		return hasUnsupportedExpr(e.Expr, kind)
	default:
		return false
	}
}

func TestBuild_SetItemAmbiguityResolvesToWholeVariableAssignment(t *testing.T) {
	q, err := ast.Build("MATCH (u:User) SET u = $props RETURN u")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	set, ok := q.Clauses[1].(*ast.Set)
	if !ok {
		t.Fatalf("expected second clause to be *ast.Set, got %T", q.Clauses[1])
	}
	if len(set.Items) != 1 {
		t.Fatalf("expected 1 SET item, got %d", len(set.Items))
	}
	item := set.Items[0]
	if item.Variable != "u" || len(item.PropertyPath) != 0 || item.Label != "" {
		t.Fatalf("expected whole-variable assignment to u, got %+v", item)
	}
	if _, ok := item.Value.(*ast.Param); !ok {
		t.Fatalf("expected Value to be *ast.Param, got %T", item.Value)
	}
}

func TestBuild_SetItemPropertyPath(t *testing.T) {
	q, err := ast.Build("MATCH (u:User) SET u.address.city = $c RETURN u")
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	set := q.Clauses[1].(*ast.Set)
	item := set.Items[0]
	if item.Variable != "u" {
		t.Fatalf("expected variable u, got %q", item.Variable)
	}
	wantPath := []string{"address", "city"}
	if len(item.PropertyPath) != len(wantPath) {
		t.Fatalf("expected path %v, got %v", wantPath, item.PropertyPath)
	}
	for i, p := range wantPath {
		if item.PropertyPath[i] != p {
			t.Fatalf("expected path %v, got %v", wantPath, item.PropertyPath)
		}
	}
}

func TestBuild_VariableLengthRangeForms(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		wantMin     int
		wantMax     int
		wantVarying bool
	}{
		{"unbounded star", "MATCH (a)-[:T*]->(b) RETURN a", 1, ast.Unbounded, true},
		{"exact count", "MATCH (a)-[:T*2]->(b) RETURN a", 2, 2, true},
		{"min only", "MATCH (a)-[:T*2..]->(b) RETURN a", 2, ast.Unbounded, true},
		{"max only", "MATCH (a)-[:T*..5]->(b) RETURN a", 1, 5, true},
		{"min and max", "MATCH (a)-[:T*1..3]->(b) RETURN a", 1, 3, true},
		{"fixed length", "MATCH (a)-[:T]->(b) RETURN a", 1, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ast.Build(tt.query)
			if err != nil {
				t.Fatalf("Build(%q) error: %v", tt.query, err)
			}
			m := q.Clauses[0].(*ast.Match)
			rel := m.Patterns[0].Rels[0]
			if rel.VarLength != tt.wantVarying {
				t.Fatalf("VarLength = %v, want %v", rel.VarLength, tt.wantVarying)
			}
			if rel.MinHops != tt.wantMin || rel.MaxHops != tt.wantMax {
				t.Fatalf("MinHops/MaxHops = %d/%d, want %d/%d", rel.MinHops, rel.MaxHops, tt.wantMin, tt.wantMax)
			}
		})
	}
}

// astCmpOpts ignores source position: two trees built from different text
// spans (e.g. an original query and its pretty-printed form) are still
// "the same tree" if they agree on everything but where each node started.
var astCmpOpts = cmpopts.IgnoreTypes(ast.Position{})

func TestBuild_PrintRoundTripStructurallyEqual(t *testing.T) {
	queries := []string{
		"MATCH (u:User) WHERE u.age > 18 RETURN u.name, u.age",
		"MATCH (a)-[:KNOWS*1..3]->(b) RETURN a, b",
		"CREATE (n:Person {name: 'Alice', age: 30})",
		"MATCH (n:Person) WITH n.city AS city, count(n) AS pop WHERE pop > 10 RETURN city",
	}
	for _, query := range queries {
		q1, err := ast.Build(query)
		if err != nil {
			t.Fatalf("Build(%q) error: %v", query, err)
		}
		q2, err := ast.Build(ast.Print(q1))
		if err != nil {
			t.Fatalf("Build(Print(Build(%q))) error: %v", query, err)
		}
		if diff := cmp.Diff(q1, q2, astCmpOpts); diff != "" {
			t.Fatalf("print round-trip changed AST structure for %q (-original +reparsed):\n%s", query, diff)
		}
	}
}

func TestBuild_PrintRoundTripStable(t *testing.T) {
	queries := []string{
		"MATCH (u:User) WHERE u.age > 18 RETURN u.name, u.age",
		"MATCH (a)-[:KNOWS*1..3]->(b) RETURN a, b",
		"CREATE (n:Person {name: 'Alice', age: 30})",
	}
	for _, query := range queries {
		q1, err := ast.Build(query)
		if err != nil {
			t.Fatalf("Build(%q) error: %v", query, err)
		}
		printed := ast.Print(q1)

		q2, err := ast.Build(printed)
		if err != nil {
			t.Fatalf("Build(Print(Build(%q))) error: %v\nprinted: %s", query, err, printed)
		}
		reprinted := ast.Print(q2)
		if printed != reprinted {
			t.Fatalf("print not stable under a second parse:\nfirst:  %s\nsecond: %s", printed, reprinted)
		}
	}
}
