// Package cyphersql translates a subset of openCypher into parameterised
// SQL against a fixed two-table property-graph schema (nodes and edges,
// see package schema). Translation is pure and synchronous: Generate
// never touches a database, never retries, and never logs; callers own
// execution against whatever driver they choose.
//
// Parse turns Cypher text into a *cyphersql.Query; Generate lowers that
// query, together with the caller's named parameters and an optional
// tenant id, into SQL text and a positional parameter slice ready for a
// driver's QueryContext/ExecContext.
package cyphersql
