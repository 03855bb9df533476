package cyphersql

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/cyphersql/cyphersql/gen"
)

// GenerationError reports an AST that parsed but cannot be lowered to SQL.
// It is defined in package gen, where generation happens, and aliased here
// so callers of the top-level API don't need a second import.
type GenerationError = gen.GenerationError

// Sentinel errors identifying GenerationError categories for errors.Is.
var (
	ErrUnsupportedFeature = gen.ErrUnsupportedFeature
	ErrUnboundVariable    = gen.ErrUnboundVariable
	ErrUnionShapeMismatch = gen.ErrUnionShapeMismatch
	ErrEmptyQuery         = gen.ErrEmptyQuery
)

// ParseError reports a Cypher query the grammar rejected.
type ParseError struct {
	Line     int
	Column   int
	Message  string
	Expected []string
}

func (e *ParseError) Error() string {
	if e.Line == 0 && e.Column == 0 {
		return fmt.Sprintf("cyphersql: parse error: %s", e.Message)
	}
	return fmt.Sprintf("cyphersql: parse error at %d:%d: %s", e.Line, e.Column, e.Message)
}

// participleError is the interface participle.Error satisfies; declared
// locally so this package doesn't need to import participle just to wrap
// its error type.
type participleError interface {
	error
	Message() string
	Position() lexer.Position
}

// wrapParseError converts a participle parse error into a *ParseError. If
// err isn't a participle error (e.g. it's already a *ParseError, or some
// other failure), it is returned unchanged.
func wrapParseError(err error) error {
	if err == nil {
		return nil
	}
	pe, ok := err.(participleError)
	if !ok {
		return err
	}
	return &ParseError{
		Line:     pe.Position().Line,
		Column:   pe.Position().Column,
		Message:  pe.Message(),
		Expected: extractExpected(pe.Message()),
	}
}

// extractExpected does a best-effort scrape of participle's
// "unexpected token X (expected A | B | C)" message shape. It returns nil
// when the message doesn't have that shape.
func extractExpected(msg string) []string {
	const marker = "(expected "
	i := strings.Index(msg, marker)
	if i < 0 || !strings.HasSuffix(msg, ")") {
		return nil
	}
	body := msg[i+len(marker) : len(msg)-1]
	parts := strings.Split(body, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}
