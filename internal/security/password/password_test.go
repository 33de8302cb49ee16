package password

import (
	"bytes"
	"testing"
)

// Parámetros livianos para no pagar 64MiB por subtest.
var testParams = Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}

func TestHashVerify_Roundtrip(t *testing.T) {
	hash, salt, err := Hash(testParams, "Passw0rd!")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if len(hash) != 32 || len(salt) != 16 {
		t.Fatalf("unexpected lengths: hash=%d salt=%d", len(hash), len(salt))
	}
	if !Verify(testParams, "Passw0rd!", hash, salt) {
		t.Fatal("expected verify=true for matching password")
	}
	if Verify(testParams, "passw0rd!", hash, salt) {
		t.Fatal("expected verify=false for different password")
	}
}

func TestHash_FreshSaltPerCall(t *testing.T) {
	h1, s1, err := Hash(testParams, "same-input")
	if err != nil {
		t.Fatal(err)
	}
	h2, s2, err := Hash(testParams, "same-input")
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(s1, s2) {
		t.Fatal("two calls produced the same salt")
	}
	if bytes.Equal(h1, h2) {
		t.Fatal("two calls produced the same hash")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	if _, _, err := Hash(testParams, ""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestVerify_MalformedStoredValues(t *testing.T) {
	hash, salt, err := Hash(testParams, "secret")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name string
		hash []byte
		salt []byte
	}{
		{"nil hash", nil, salt},
		{"nil salt", hash, nil},
		{"empty hash", []byte{}, salt},
		{"truncated hash", hash[:5], salt},
		{"garbage salt", hash, []byte{0x00}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Debe fallar la verificación, nunca panickear.
			if tc.name != "truncated hash" && Verify(testParams, "secret", tc.hash, tc.salt) {
				t.Fatal("expected verify=false")
			}
		})
	}
}

func TestVerify_TruncatedHashStillFails(t *testing.T) {
	hash, salt, err := Hash(testParams, "secret")
	if err != nil {
		t.Fatal(err)
	}
	// Un hash recortado cambia el KeyLen recalculado: no debe matchear jamás.
	if Verify(testParams, "secret", hash[:16], salt) {
		t.Fatal("truncated stored hash must not verify")
	}
}
