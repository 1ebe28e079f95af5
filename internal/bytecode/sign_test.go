package bytecode

import "testing"

func TestSignAndVerifyRoundTrip(t *testing.T) {
	key := []byte("test-signing-key")
	moduleBytes := []byte{0x4E, 0x58, 0x42, 0x32, 1, 1, 1, 0}

	sig, err := Sign(moduleBytes, key)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if err := Verify(moduleBytes, sig, key); err != nil {
		t.Errorf("expected signature to verify, got: %v", err)
	}
}

func TestVerifyRejectsTamperedModule(t *testing.T) {
	key := []byte("test-signing-key")
	moduleBytes := []byte{0x4E, 0x58, 0x42, 0x32, 1, 1, 1, 0}

	sig, err := Sign(moduleBytes, key)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	tampered := append([]byte{}, moduleBytes...)
	tampered[len(tampered)-1] = 0xFF

	if err := Verify(tampered, sig, key); err == nil {
		t.Error("expected verification to fail for tampered module bytes")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	moduleBytes := []byte{0x4E, 0x58, 0x42, 0x32}

	sig, err := Sign(moduleBytes, []byte("key-one"))
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	if err := Verify(moduleBytes, sig, []byte("key-two")); err == nil {
		t.Error("expected verification to fail for a mismatched key")
	}
}
