package interp

import "testing"

func TestEnvironmentDeclareAndGet(t *testing.T) {
	e := NewEnvironment(nil)
	if !e.Declare("x", Int(1), true) {
		t.Fatal("expected first declaration to succeed")
	}
	v, ok := e.Get("x")
	if !ok || v != Int(1) {
		t.Fatalf("got (%v, %v), want (1, true)", v, ok)
	}
}

func TestEnvironmentRedeclarationInSameFrameFails(t *testing.T) {
	e := NewEnvironment(nil)
	e.Declare("x", Int(1), true)
	if e.Declare("x", Int(2), true) {
		t.Error("expected redeclaration in the same frame to fail")
	}
}

func TestEnvironmentShadowingAcrossFramesSucceeds(t *testing.T) {
	parent := NewEnvironment(nil)
	parent.Declare("x", Int(1), true)

	child := NewEnvironment(parent)
	if !child.Declare("x", Int(2), true) {
		t.Error("expected shadowing in a child frame to succeed")
	}
	v, _ := child.Get("x")
	if v != Int(2) {
		t.Errorf("got %v, want the child's shadowed binding", v)
	}
	pv, _ := parent.Get("x")
	if pv != Int(1) {
		t.Errorf("expected the parent's binding to be unaffected, got %v", pv)
	}
}

func TestEnvironmentGetWalksToParent(t *testing.T) {
	parent := NewEnvironment(nil)
	parent.Declare("x", Int(1), true)
	child := NewEnvironment(parent)

	v, ok := child.Get("x")
	if !ok || v != Int(1) {
		t.Fatalf("got (%v, %v), want (1, true)", v, ok)
	}
}

func TestEnvironmentGetUnboundReturnsFalse(t *testing.T) {
	e := NewEnvironment(nil)
	if _, ok := e.Get("nope"); ok {
		t.Error("expected an unbound name to return ok=false")
	}
}

func TestEnvironmentSetMutableBinding(t *testing.T) {
	e := NewEnvironment(nil)
	e.Declare("x", Int(1), true)
	if got := e.Set("x", Int(2)); got != assignOK {
		t.Fatalf("got %v, want assignOK", got)
	}
	v, _ := e.Get("x")
	if v != Int(2) {
		t.Errorf("got %v, want 2", v)
	}
}

func TestEnvironmentSetImmutableBindingFails(t *testing.T) {
	e := NewEnvironment(nil)
	e.Declare("x", Int(1), false)
	if got := e.Set("x", Int(2)); got != assignImmutable {
		t.Fatalf("got %v, want assignImmutable", got)
	}
}

func TestEnvironmentSetUnboundNameFails(t *testing.T) {
	e := NewEnvironment(nil)
	if got := e.Set("nope", Int(1)); got != assignUnbound {
		t.Fatalf("got %v, want assignUnbound", got)
	}
}

func TestEnvironmentSetWalksToParentFrame(t *testing.T) {
	parent := NewEnvironment(nil)
	parent.Declare("x", Int(1), true)
	child := NewEnvironment(parent)

	if got := child.Set("x", Int(9)); got != assignOK {
		t.Fatalf("got %v, want assignOK", got)
	}
	v, _ := parent.Get("x")
	if v != Int(9) {
		t.Errorf("expected the parent frame's binding to be mutated, got %v", v)
	}
}

func TestEnvironmentNamesCollectsEntireScopeChain(t *testing.T) {
	parent := NewEnvironment(nil)
	parent.Declare("outer", Int(1), true)
	child := NewEnvironment(parent)
	child.Declare("inner", Int(2), true)

	names := child.Names()
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["outer"] || !seen["inner"] {
		t.Errorf("got %v, want both outer and inner", names)
	}
}
