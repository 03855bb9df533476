package cyphersql

import (
	"strings"

	"github.com/cyphersql/cyphersql/ast"
	"github.com/cyphersql/cyphersql/gen"
	"github.com/cyphersql/cyphersql/schema"
)

// Query is a parsed Cypher statement, ready for Generate. It carries no
// reference to the source text or the grammar's parse tree.
type Query = ast.Query

// Parse compiles cypher text into a Query. A grammar rejection is
// reported as a *ParseError; empty or whitespace-only input is rejected
// the same way.
func Parse(cypher string) (*Query, error) {
	if strings.TrimSpace(cypher) == "" {
		return nil, &ParseError{Message: "empty query"}
	}
	q, err := ast.Build(cypher)
	if err != nil {
		return nil, wrapParseError(err)
	}
	return q, nil
}

// Generate lowers q into parameterised SQL against sch (schema.Default()
// if nil). namedParams supplies the caller's values for `$name`
// parameters referenced anywhere in the query; tenantID, when non-empty,
// scopes every node/edge access to that group_id and is always bound as
// the first positional parameter when present.
//
// Generate never touches a database and never logs; a returned
// *GenerationError means q parsed but can't be lowered (spec §7).
func Generate(q *Query, namedParams map[string]any, tenantID string, sch *schema.Schema) (sql string, params []any, err error) {
	return gen.Generate(q, namedParams, tenantID, sch)
}

// Translate is a convenience wrapper combining Parse and Generate for
// callers that don't need the intermediate Query (e.g. one-shot CLI use).
func Translate(cypher string, namedParams map[string]any, tenantID string, sch *schema.Schema) (sql string, params []any, err error) {
	q, err := Parse(cypher)
	if err != nil {
		return "", nil, err
	}
	return Generate(q, namedParams, tenantID, sch)
}
