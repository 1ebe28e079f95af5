package interp

import (
	"github.com/nexuslang/nexus/internal/ast"
	nxerrors "github.com/nexuslang/nexus/internal/errors"
)

// RuntimeError is the common shape of every interpreter-phase error in the
// taxonomy (spec.md §7): it carries a kind, a message, the position where it
// was raised, and the call-site trace accumulated while unwinding.
type RuntimeError struct {
	Kind    nxerrors.Kind
	Message string
	Pos     ast.Position
	Trace   []nxerrors.CallSite
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return e.Diagnostic().Format()
}

// Diagnostic converts the runtime error into the shared renderable shape.
func (e *RuntimeError) Diagnostic() *nxerrors.Diagnostic {
	d := nxerrors.New(e.Kind, e.Message, nxerrors.Position{Line: e.Pos.Line, Column: e.Pos.Column})
	return d.WithTrace(e.Trace)
}

// pushTrace returns a copy of err with one more call-site frame recorded,
// used as each enclosing Call unwinds past an error raised deeper inside.
func (e *RuntimeError) pushTrace(pos ast.Position, name string) *RuntimeError {
	cp := *e
	cp.Trace = append([]nxerrors.CallSite{{
		Position: nxerrors.Position{Line: pos.Line, Column: pos.Column},
		Name:     name,
	}}, cp.Trace...)
	return &cp
}

func newNameError(pos ast.Position, msg string) *RuntimeError {
	return &RuntimeError{Kind: nxerrors.KindName, Message: msg, Pos: pos}
}

func newTypeError(pos ast.Position, msg string) *RuntimeError {
	return &RuntimeError{Kind: nxerrors.KindType, Message: msg, Pos: pos}
}

func newArityError(pos ast.Position, msg string) *RuntimeError {
	return &RuntimeError{Kind: nxerrors.KindArity, Message: msg, Pos: pos}
}

func newArithError(pos ast.Position, msg string) *RuntimeError {
	return &RuntimeError{Kind: nxerrors.KindArith, Message: msg, Pos: pos}
}

func newIndexError(pos ast.Position, msg string) *RuntimeError {
	return &RuntimeError{Kind: nxerrors.KindIndex, Message: msg, Pos: pos}
}

func newKeyError(pos ast.Position, msg string) *RuntimeError {
	return &RuntimeError{Kind: nxerrors.KindKey, Message: msg, Pos: pos}
}

func newTraitRangeError(pos ast.Position, msg string) *RuntimeError {
	return &RuntimeError{Kind: nxerrors.KindTraitRange, Message: msg, Pos: pos}
}

func newCancelledError(pos ast.Position, msg string) *RuntimeError {
	return &RuntimeError{Kind: nxerrors.KindCancelled, Message: msg, Pos: pos}
}

func newStackOverflowError(pos ast.Position, msg string) *RuntimeError {
	return &RuntimeError{Kind: nxerrors.KindStackOverflow, Message: msg, Pos: pos}
}
