package interp

import "testing"

func TestTruthyTable(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want bool
	}{
		{"true bool", Bool(true), true},
		{"false bool", Bool(false), false},
		{"null", Null, false},
		{"zero int", Int(0), false},
		{"nonzero int", Int(1), true},
		{"zero float", Float(0), false},
		{"nonzero float", Float(0.1), true},
		{"empty string", Str(""), false},
		{"nonempty string", Str("x"), true},
		{"empty array", NewArray(nil), false},
		{"nonempty array", NewArray([]Value{Int(1)}), true},
		{"empty mapping", NewMapping(), false},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truthy(tt.v); got != tt.want {
				t.Errorf("Truthy(%v) = %v, want %v", tt.v, got, tt.want)
			}
		})
	}

	m := NewMapping()
	m.Set("k", Int(1))
	if !Truthy(m) {
		t.Error("expected a nonempty mapping to be truthy")
	}
}

func TestTypeNameCoversEveryValueKind(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Int(1), "int"},
		{Float(1), "float"},
		{Str("x"), "string"},
		{Bool(true), "bool"},
		{Null, "null"},
		{NewArray(nil), "array"},
		{NewMapping(), "mapping"},
		{&Function{Name: "f"}, "function"},
		{&Intrinsic{Name: "print"}, "function"},
		{&Handle{Kind: "voice"}, "handle"},
		{&RangeValue{Start: 0, End: 1}, "range"},
	}
	for _, tt := range cases {
		if got := TypeName(tt.v); got != tt.want {
			t.Errorf("TypeName(%#v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestEqualsNumericCrossTypeComparison(t *testing.T) {
	if !Equals(Int(2), Float(2.0)) {
		t.Error("expected Int(2) to equal Float(2.0)")
	}
	if Equals(Int(2), Float(2.1)) {
		t.Error("expected Int(2) to not equal Float(2.1)")
	}
}

func TestEqualsStructuralArraysAndMappings(t *testing.T) {
	a := NewArray([]Value{Int(1), Str("x")})
	b := NewArray([]Value{Int(1), Str("x")})
	if !Equals(a, b) {
		t.Error("expected structurally identical arrays to be equal")
	}

	c := NewArray([]Value{Int(1), Str("y")})
	if Equals(a, c) {
		t.Error("expected arrays differing in an element to not be equal")
	}

	m1 := NewMapping()
	m1.Set("a", Int(1))
	m2 := NewMapping()
	m2.Set("a", Int(1))
	if !Equals(m1, m2) {
		t.Error("expected structurally identical mappings to be equal")
	}

	m3 := NewMapping()
	m3.Set("a", Int(2))
	if Equals(m1, m3) {
		t.Error("expected mappings differing in a value to not be equal")
	}
}

func TestEqualsDoesNotCompareAcrossUnrelatedTypes(t *testing.T) {
	if Equals(Str("1"), Int(1)) {
		t.Error("expected a string and an int to never be equal")
	}
}

func TestRenderPrimitivesAndContainers(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{Int(42), "42"},
		{Float(1.5), "1.5"},
		{Str("hi"), "hi"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Null, "null"},
		{NewArray([]Value{Int(1), Str("x")}), `[1, "x"]`},
	}
	for _, tt := range cases {
		if got := Render(tt.v); got != tt.want {
			t.Errorf("Render(%#v) = %q, want %q", tt.v, got, tt.want)
		}
	}

	m := NewMapping()
	m.Set("a", Int(1))
	m.Set("b", Str("x"))
	if got, want := Render(m), `{a: 1, b: "x"}`; got != want {
		t.Errorf("Render(mapping) = %q, want %q", got, want)
	}
}

func TestMappingPreservesInsertionOrder(t *testing.T) {
	m := NewMapping()
	m.Set("z", Int(1))
	m.Set("a", Int(2))
	m.Set("z", Int(3)) // re-set, should not move position

	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "z" || keys[1] != "a" {
		t.Errorf("got keys %v, want [z a] in insertion order", keys)
	}
	v, ok := m.Get("z")
	if !ok || v != Int(3) {
		t.Errorf("expected re-Set to update the value, got %v", v)
	}
}
