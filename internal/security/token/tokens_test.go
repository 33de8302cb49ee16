package tokens

import (
	"encoding/base64"
	"testing"
)

func TestGenerateOpaqueToken_LengthAndUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := GenerateOpaqueToken(32)
		if err != nil {
			t.Fatal(err)
		}
		raw, err := base64.RawURLEncoding.DecodeString(tok)
		if err != nil {
			t.Fatalf("token is not valid base64url: %v", err)
		}
		if len(raw) != 32 {
			t.Fatalf("expected 32 bytes, got %d", len(raw))
		}
		if seen[tok] {
			t.Fatal("duplicate token generated")
		}
		seen[tok] = true
	}
}

func TestSHA256Base64URL_Deterministic(t *testing.T) {
	a := SHA256Base64URL("hello")
	b := SHA256Base64URL("hello")
	if a != b {
		t.Fatal("hash should be deterministic")
	}
	if a == SHA256Base64URL("hello2") {
		t.Fatal("different inputs must not collide trivially")
	}
	if raw, err := base64.RawURLEncoding.DecodeString(a); err != nil || len(raw) != 32 {
		t.Fatalf("expected 32-byte digest, got %d (err=%v)", len(raw), err)
	}
}
