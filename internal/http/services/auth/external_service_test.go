package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	"github.com/dropDatabas3/assetweb/internal/oauth/google"
)

func TestExternalLoginDisabledWithoutProvider(t *testing.T) {
	f := newFixture(t, nil) // sin OIDC configurado
	ctx := context.Background()

	_, _, err := f.svc.ExternalAuthURL(ctx)
	require.ErrorIs(t, err, ErrExternalDisabled)

	_, err = f.svc.ExternalLogin(ctx, dto.ExternalLoginRequest{IDToken: "whatever"})
	require.ErrorIs(t, err, ErrExternalDisabled)
}

func TestExternalIdentityIncomplete(t *testing.T) {
	f := newFixture(t, nil)
	s := f.svc.(*service)
	ctx := context.Background()

	_, err := s.resolveExternalUser(ctx, &google.IDClaims{Sub: "g-123"})
	require.ErrorIs(t, err, ErrExternalIdentityIncomplete)

	_, err = s.resolveExternalUser(ctx, &google.IDClaims{Email: "sinsub@example.com"})
	require.ErrorIs(t, err, ErrExternalIdentityIncomplete)
}

func TestExternalProvisionsNewUser(t *testing.T) {
	f := newFixture(t, nil)
	s := f.svc.(*service)
	ctx := context.Background()

	claims := &google.IDClaims{
		Sub:           "g-123",
		Email:         "eva@example.com",
		GivenName:     "Eva",
		FamilyName:    "Ruiz",
		EmailVerified: true,
	}
	u, err := s.resolveExternalUser(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, "Eva", u.FirstName)
	require.Equal(t, "Ruiz", u.LastName)
	require.Equal(t, "User", u.Role)
	require.True(t, u.EmailConfirmed) // el proveedor ya verificó el mail
	require.NotEmpty(t, u.PasswordHash)

	// segunda pasada resuelve la misma cuenta, no crea otra
	again, err := s.resolveExternalUser(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, u.ID, again.ID)
}

func TestExternalProvisionSplitsDisplayName(t *testing.T) {
	f := newFixture(t, nil)
	s := f.svc.(*service)

	u, err := s.resolveExternalUser(context.Background(), &google.IDClaims{
		Sub:   "g-456",
		Email: "juan@example.com",
		Name:  "Juan Pérez García",
	})
	require.NoError(t, err)
	require.Equal(t, "Juan", u.FirstName)
	require.Equal(t, "Pérez García", u.LastName)
}

func TestExternalProvisionConflictRetriedAsLookup(t *testing.T) {
	f := newFixture(t, nil)
	s := f.svc.(*service)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerReq("taken@example.com"))
	require.NoError(t, err)
	existing, err := f.repo.GetUserByEmail(ctx, "taken@example.com")
	require.NoError(t, err)

	// el insert choca con la cuenta existente y se resuelve como lookup
	u, err := s.provisionExternalUser(ctx, &google.IDClaims{
		Sub:   "g-789",
		Email: "taken@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, existing.ID, u.ID)
}

func TestExternalNonceConsumedOnce(t *testing.T) {
	f := newFixture(t, nil)
	s := f.svc.(*service)

	s.deps.Cache.Set(nonceCacheKey("state-1"), []byte("n-1"), time.Minute)

	// un nonce explícito pasa directo sin tocar la cache
	require.Equal(t, "given", s.consumeNonce("state-1", "given"))
	require.Equal(t, "n-1", s.consumeNonce("state-1", ""))
	require.Empty(t, s.consumeNonce("state-1", ""))

	// state desconocido no resuelve nada
	require.Empty(t, s.consumeNonce("state-x", ""))
}
