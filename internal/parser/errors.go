// Package parser implements the NexusLang parser: recursive descent with
// Pratt-style binary precedence, single-token lookahead. The toolchain is
// batch-oriented and deliberately has no error recovery (spec.md §9): the
// first ParseError halts parsing.
package parser

import (
	nxerrors "github.com/nexuslang/nexus/internal/errors"
	"github.com/nexuslang/nexus/internal/lexer"
)

// ParseError is the first (and only) syntax error a parse run reports.
type ParseError struct {
	Expected string
	Found    string
	Line     int
	Column   int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return e.Diagnostic().Format()
}

// Diagnostic converts the parser-specific error into the shared renderable
// shape used by the rest of the toolchain.
func (e *ParseError) Diagnostic() *nxerrors.Diagnostic {
	msg := "expected " + e.Expected + ", found " + e.Found
	return nxerrors.New(nxerrors.KindParse, msg, nxerrors.Position{Line: e.Line, Column: e.Column})
}

func newParseError(expected string, found lexer.Token) *ParseError {
	return &ParseError{
		Expected: expected,
		Found:    describeToken(found),
		Line:     found.Line,
		Column:   found.Column,
	}
}

func describeToken(tok lexer.Token) string {
	if tok.Type == lexer.TOKEN_EOF {
		return "end of input"
	}
	return tok.Type.String() + " '" + tok.Lexeme + "'"
}
