package lexer

import (
	"fmt"

	nxerrors "github.com/nexuslang/nexus/internal/errors"
)

// LexErrorKind classifies why scanning failed at a position.
type LexErrorKind string

const (
	LexErrUnexpectedCharacter LexErrorKind = "unexpected-character"
	LexErrUnterminatedString  LexErrorKind = "unterminated-string"
	LexErrUnterminatedComment LexErrorKind = "unterminated-comment"
	LexErrBadEscape           LexErrorKind = "bad-escape"
	LexErrMalformedNumber     LexErrorKind = "malformed-number"
)

// LexError is a single scanning failure: what went wrong, where, and the
// source snippet that triggered it. The lexer does not recover — it collects
// every LexError it can find in one pass (spec.md's "lex totality": every
// input either lexes fully or fails with at least one LexError) but never
// attempts to resynchronize mid-token.
type LexError struct {
	Kind    LexErrorKind
	Message string
	Line    int
	Column  int
	Snippet string
}

// Error implements the error interface.
func (e *LexError) Error() string {
	return e.Diagnostic().Format()
}

// Diagnostic converts the lexer-specific error into the shared renderable
// shape used by the rest of the toolchain.
func (e *LexError) Diagnostic() *nxerrors.Diagnostic {
	msg := e.Message
	if e.Snippet != "" {
		msg = fmt.Sprintf("%s (near %q)", e.Message, e.Snippet)
	}
	return nxerrors.New(nxerrors.KindLex, msg, nxerrors.Position{Line: e.Line, Column: e.Column})
}
