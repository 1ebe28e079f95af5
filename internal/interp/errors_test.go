package interp

import (
	"testing"

	"github.com/nexuslang/nexus/internal/ast"
	nxerrors "github.com/nexuslang/nexus/internal/errors"
)

func TestErrorConstructorsSetKindMessageAndPos(t *testing.T) {
	pos := ast.Position{Line: 3, Column: 7}
	cases := []struct {
		name string
		err  *RuntimeError
		kind nxerrors.Kind
	}{
		{"name", newNameError(pos, "undefined: x"), nxerrors.KindName},
		{"type", newTypeError(pos, "expected int"), nxerrors.KindType},
		{"arity", newArityError(pos, "wrong number of arguments"), nxerrors.KindArity},
		{"arith", newArithError(pos, "division by zero"), nxerrors.KindArith},
		{"index", newIndexError(pos, "out of bounds"), nxerrors.KindIndex},
		{"key", newKeyError(pos, "missing key"), nxerrors.KindKey},
		{"trait-range", newTraitRangeError(pos, "out of range"), nxerrors.KindTraitRange},
		{"cancelled", newCancelledError(pos, "cancelled"), nxerrors.KindCancelled},
		{"stack-overflow", newStackOverflowError(pos, "stack overflow"), nxerrors.KindStackOverflow},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Pos != pos {
				t.Errorf("Pos = %v, want %v", tt.err.Pos, pos)
			}
			if tt.err.Trace != nil {
				t.Errorf("expected a freshly constructed error to carry no trace, got %v", tt.err.Trace)
			}
		})
	}
}

func TestRuntimeErrorDiagnosticCarriesKindMessageAndPosition(t *testing.T) {
	pos := ast.Position{Line: 2, Column: 5}
	err := newTypeError(pos, "expected int, got string")

	d := err.Diagnostic()
	if d.Kind != nxerrors.KindType {
		t.Errorf("Kind = %v, want %v", d.Kind, nxerrors.KindType)
	}
	if d.Position.Line != pos.Line || d.Position.Column != pos.Column {
		t.Errorf("Position = %+v, want {Line:%d Column:%d}", d.Position, pos.Line, pos.Column)
	}
}

func TestRuntimeErrorErrorDelegatesToDiagnosticFormat(t *testing.T) {
	err := newNameError(ast.Position{Line: 1, Column: 1}, "undefined: foo")
	if err.Error() != err.Diagnostic().Format() {
		t.Errorf("Error() = %q, want it to match Diagnostic().Format()", err.Error())
	}
}

func TestPushTracePrependsCallSitesInnermostFirst(t *testing.T) {
	origin := ast.Position{Line: 10, Column: 1}
	err := newNameError(origin, "undefined: x")

	inner := err.pushTrace(ast.Position{Line: 8, Column: 3}, "inner")
	outer := inner.pushTrace(ast.Position{Line: 5, Column: 2}, "outer")

	if len(outer.Trace) != 2 {
		t.Fatalf("got %d trace frames, want 2", len(outer.Trace))
	}
	if outer.Trace[0].Name != "outer" || outer.Trace[1].Name != "inner" {
		t.Errorf("got trace order %v, want [outer inner]", outer.Trace)
	}
	// pushTrace must not mutate the receiver's own trace slice.
	if len(inner.Trace) != 1 || inner.Trace[0].Name != "inner" {
		t.Errorf("expected pushTrace to leave the original error's trace untouched, got %v", inner.Trace)
	}
	if len(err.Trace) != 0 {
		t.Errorf("expected the origin error's trace to remain empty, got %v", err.Trace)
	}
}
