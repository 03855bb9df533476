// Package grammar is a participle grammar for the openCypher query
// language: a lexer, a concrete parse tree ("Script"), and the parser that
// drives them.
//
// The parse tree here is deliberately closer to the surface grammar than to
// a clean AST — every alternative production gets its own struct field, and
// most nodes carry a lexer.Position for diagnostics. Package ast builds the
// smaller, typed AST that the generator actually walks.
//
// # Coverage
//
// The grammar accepts the full read/write clause set (MATCH, OPTIONAL
// MATCH, WITH, RETURN, CREATE, MERGE, DELETE, SET, REMOVE, UNWIND, CALL,
// UNION), variable-length relationship patterns, property maps and
// parameters, and the full expression grammar including list/pattern
// comprehensions, quantified predicates, and EXISTS subqueries — several of
// which package gen deliberately declines to lower to SQL. See
// ast.Unsupported for why those still need to parse successfully.
//
// # Usage
//
//	tree, err := grammar.Parse("MATCH (u:User) RETURN u.name")
//	if err != nil {
//	    var perr participle.Error
//	    if errors.As(err, &perr) {
//	        pos := perr.Position()
//	        // pos.Line, pos.Column, perr.Message()
//	    }
//	}
package grammar
