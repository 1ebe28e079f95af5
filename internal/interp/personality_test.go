package interp

import "testing"

func TestPersonalitySetAndGet(t *testing.T) {
	p := NewPersonality()
	if !p.Set("curiosity", 0.8) {
		t.Fatal("expected an in-range trait set to succeed")
	}
	v, ok := p.Get("curiosity")
	if !ok || v != 0.8 {
		t.Errorf("got (%v, %v), want (0.8, true)", v, ok)
	}
}

func TestPersonalityRejectsOutOfRangeValues(t *testing.T) {
	p := NewPersonality()
	if p.Set("curiosity", 1.1) {
		t.Error("expected a value above 1.0 to be rejected")
	}
	if p.Set("curiosity", -0.1) {
		t.Error("expected a value below 0.0 to be rejected")
	}
}

func TestPersonalityBoundaryValuesAreAccepted(t *testing.T) {
	p := NewPersonality()
	if !p.Set("a", 0.0) {
		t.Error("expected 0.0 to be accepted")
	}
	if !p.Set("b", 1.0) {
		t.Error("expected 1.0 to be accepted")
	}
}

func TestPersonalityGetUnsetTraitReturnsFalse(t *testing.T) {
	p := NewPersonality()
	if _, ok := p.Get("never-set"); ok {
		t.Error("expected an unset trait to report ok=false")
	}
}
