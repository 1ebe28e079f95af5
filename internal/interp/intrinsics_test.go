package interp

import (
	"strings"
	"testing"

	"github.com/nexuslang/nexus/internal/ast"
	"github.com/nexuslang/nexus/internal/host"
)

func TestIntrinsicPrintWritesRenderedValue(t *testing.T) {
	var out strings.Builder
	h := &host.DefaultHost{Sink: host.NewSink(&out, 0)}
	i := New(h, nil)

	if _, err := intrinsicPrint(i, []Value{Int(42)}, nil, ast.Position{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "42" {
		t.Errorf("got %q, want %q", got, "42")
	}
}

func TestIntrinsicPrintWrongArityFails(t *testing.T) {
	i := New(host.NewDefaultHost(), nil)
	if _, err := intrinsicPrint(i, nil, nil, ast.Position{}); err == nil {
		t.Error("expected an error for zero arguments")
	}
	if _, err := intrinsicPrint(i, []Value{Int(1), Int(2)}, nil, ast.Position{}); err == nil {
		t.Error("expected an error for two arguments")
	}
}

func TestIntrinsicNowReturnsHostClock(t *testing.T) {
	h := NewDefaultHostWithClock(t, 1000)
	i := New(h, nil)

	v, err := intrinsicNow(i, nil, nil, ast.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := v.(Int); !ok || int64(got) != 1000 {
		t.Errorf("got %v, want Int(1000)", v)
	}
}

func TestIntrinsicNowRejectsArguments(t *testing.T) {
	i := New(host.NewDefaultHost(), nil)
	if _, err := intrinsicNow(i, []Value{Int(1)}, nil, ast.Position{}); err == nil {
		t.Error("expected an error when now() is given arguments")
	}
}

func TestIntrinsicGetTraitReturnsSetValue(t *testing.T) {
	i := New(host.NewDefaultHost(), nil)
	i.personality.Set("curiosity", 0.5)

	v, err := intrinsicGetTrait(i, []Value{Str("curiosity")}, nil, ast.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, ok := v.(Float); !ok || float64(got) != 0.5 {
		t.Errorf("got %v, want Float(0.5)", v)
	}
}

func TestIntrinsicGetTraitUnsetReturnsNull(t *testing.T) {
	i := New(host.NewDefaultHost(), nil)
	v, err := intrinsicGetTrait(i, []Value{Str("never-set")}, nil, ast.Position{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != Null {
		t.Errorf("got %v, want Null", v)
	}
}

func TestIntrinsicGetTraitRequiresStringArgument(t *testing.T) {
	i := New(host.NewDefaultHost(), nil)
	if _, err := intrinsicGetTrait(i, []Value{Int(1)}, nil, ast.Position{}); err == nil {
		t.Error("expected a type error for a non-string argument")
	}
}

// NewDefaultHostWithClock builds a DefaultHost whose Now() always returns ms.
func NewDefaultHostWithClock(t *testing.T, ms int64) *host.DefaultHost {
	t.Helper()
	return host.NewDefaultHost().WithClock(func() int64 { return ms })
}
