package jwt_test

import (
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	jwtx "github.com/dropDatabas3/assetweb/internal/jwt"
	"github.com/dropDatabas3/assetweb/internal/store/core"
)

var testUser = &core.User{
	ID:    "4f3c2a7e-0000-0000-0000-000000000001",
	Email: "jane@example.com",
	Role:  "User",
}

func newTestIssuer(ttl time.Duration) *jwtx.Issuer {
	return jwtx.NewIssuer([]byte("unit-test-signing-key-32-bytes!!"), "assetweb", "assetweb-api", ttl)
}

func TestIssueAccess_ClaimSet(t *testing.T) {
	iss := newTestIssuer(15 * time.Minute)

	signed, exp, err := iss.IssueAccess(testUser)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if time.Until(exp) > 15*time.Minute || time.Until(exp) < 14*time.Minute {
		t.Fatalf("expiry out of range: %v", exp)
	}

	claims, err := iss.Parse(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != testUser.ID {
		t.Fatalf("sub=%q, want user id", claims.Subject)
	}
	if claims.Email != "jane@example.com" || claims.Role != "User" {
		t.Fatalf("email/role claims wrong: %+v", claims)
	}
	if claims.ID == "" {
		t.Fatal("jti must be set")
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		t.Fatal("iat/exp must be set")
	}
}

func TestIssueAccess_UniqueJTI(t *testing.T) {
	iss := newTestIssuer(time.Minute)
	a, _, err := iss.IssueAccess(testUser)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := iss.IssueAccess(testUser)
	if err != nil {
		t.Fatal(err)
	}
	ca, _ := iss.Parse(a)
	cb, _ := iss.Parse(b)
	if ca == nil || cb == nil || ca.ID == cb.ID {
		t.Fatal("two issued tokens must carry distinct jti")
	}
}

func TestParse_RejectsWrongKey(t *testing.T) {
	iss := newTestIssuer(time.Minute)
	other := jwtx.NewIssuer([]byte("another-key-entirely-0123456789!"), "assetweb", "assetweb-api", time.Minute)

	signed, _, err := other.IssueAccess(testUser)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.Parse(signed); err == nil {
		t.Fatal("expected signature rejection")
	}
}

func TestParse_RejectsExpired(t *testing.T) {
	iss := newTestIssuer(-time.Minute) // TTL<=0 cae al default, así que firmamos a mano
	now := time.Now().Add(-2 * time.Hour)
	claims := jwtx.Claims{
		Email: testUser.Email,
		Role:  testUser.Role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    "assetweb",
			Subject:   testUser.ID,
			Audience:  jwtv5.ClaimStrings{"assetweb-api"},
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(time.Minute)),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString([]byte("unit-test-signing-key-32-bytes!!"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.Parse(signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParse_RejectsWrongAudience(t *testing.T) {
	iss := newTestIssuer(time.Minute)
	other := jwtx.NewIssuer([]byte("unit-test-signing-key-32-bytes!!"), "assetweb", "someone-else", time.Minute)
	signed, _, err := other.IssueAccess(testUser)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.Parse(signed); err == nil {
		t.Fatal("expected audience mismatch to be rejected")
	}
}

func TestIssueAccess_MissingKeyIsError(t *testing.T) {
	iss := &jwtx.Issuer{Iss: "assetweb", Aud: "assetweb-api", AccessTTL: time.Minute}
	if _, _, err := iss.IssueAccess(testUser); err == nil {
		t.Fatal("expected error without signing key")
	}
}
