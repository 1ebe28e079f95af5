package bytecode

import "testing"

func TestModuleRoundTrip(t *testing.T) {
	m := &Module{
		Version: Version,
		Code:    []byte{byte(OpLoadConst), 0, 0, 0, 0, byte(OpPop)},
		Consts: []Const{
			{Tag: ConstInt, I: 42},
			{Tag: ConstFloat, F: 3.5},
			{Tag: ConstString, S: "hi"},
			{Tag: ConstNull},
		},
		Symbols: []Symbol{
			{ID: 0, Kind: SymbolUser, Name: "x"},
			{ID: 1, Kind: SymbolIntrinsic, Name: "print"},
		},
	}

	encoded, err := m.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(decoded.Consts) != len(m.Consts) {
		t.Fatalf("expected %d constants, got %d", len(m.Consts), len(decoded.Consts))
	}
	for i, c := range m.Consts {
		got := decoded.Consts[i]
		if got.Tag != c.Tag || got.I != c.I || got.F != c.F || got.S != c.S {
			t.Errorf("constant %d: got %+v, want %+v", i, got, c)
		}
	}

	if len(decoded.Symbols) != len(m.Symbols) {
		t.Fatalf("expected %d symbols, got %d", len(m.Symbols), len(decoded.Symbols))
	}
	for i, s := range m.Symbols {
		got := decoded.Symbols[i]
		if got.ID != s.ID || got.Kind != s.Kind || got.Name != s.Name {
			t.Errorf("symbol %d: got %+v, want %+v", i, got, s)
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	raw := make([]byte, 32)
	copy(raw, []byte("BOGUS!!!"))
	if _, err := Decode(raw); err == nil {
		t.Error("expected error for bad magic")
	}
}

func TestDecodeRejectsHigherMajorVersion(t *testing.T) {
	m := &Module{Version: ModuleVersion{Major: Version.Major + 1}, Code: []byte{}}
	encoded, err := m.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := Decode(encoded); err == nil {
		t.Error("expected ModuleVersionError for unsupported major version")
	}
}

func TestDecodeRejectsTruncatedModule(t *testing.T) {
	if _, err := Decode([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for a module shorter than the header")
	}
}
