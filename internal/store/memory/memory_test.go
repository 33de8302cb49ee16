package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/assetweb/internal/store/core"
)

func seedUser(t *testing.T, s *Store) *core.User {
	t.Helper()
	u := &core.User{Email: "Ana@Example.com", FirstName: "Ana", LastName: "García", Role: "user"}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedToken(t *testing.T, s *Store, userID, hash string, ttl time.Duration) *core.RefreshToken {
	t.Helper()
	rt := &core.RefreshToken{UserID: userID, TokenHash: hash, ExpiresAt: time.Now().UTC().Add(ttl)}
	require.NoError(t, s.CreateRefreshToken(context.Background(), rt))
	return rt
}

func TestCreateUserNormalizesEmailAndRejectsDuplicates(t *testing.T) {
	s := New()
	u := seedUser(t, s)
	require.Equal(t, "ana@example.com", u.Email)

	dup := &core.User{Email: "ANA@example.COM"}
	require.ErrorIs(t, s.CreateUser(context.Background(), dup), core.ErrConflict)

	got, err := s.GetUserByEmail(context.Background(), "ana@EXAMPLE.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
}

func TestConfirmUserEmailExactlyOnce(t *testing.T) {
	s := New()
	u := seedUser(t, s)

	require.NoError(t, s.ConfirmUserEmail(context.Background(), u.ID))
	require.ErrorIs(t, s.ConfirmUserEmail(context.Background(), u.ID), core.ErrConflict)
	require.ErrorIs(t, s.ConfirmUserEmail(context.Background(), "nope"), core.ErrNotFound)
}

func TestRotateRefreshTokenChainsAndRevokesOld(t *testing.T) {
	s := New()
	u := seedUser(t, s)
	old := seedToken(t, s, u.ID, "hash-old", time.Hour)

	succ := &core.RefreshToken{UserID: u.ID, TokenHash: "hash-new", ExpiresAt: time.Now().UTC().Add(time.Hour)}
	require.NoError(t, s.RotateRefreshToken(context.Background(), old.TokenHash, succ, time.Now().UTC()))

	got, err := s.GetRefreshTokenByHash(context.Background(), "hash-old")
	require.NoError(t, err)
	require.True(t, got.Revoked)
	require.NotNil(t, got.ReplacedBy)
	require.Equal(t, succ.ID, *got.ReplacedBy)
	require.NotNil(t, got.ReasonRevoked)
	require.Equal(t, "Replaced by new token", *got.ReasonRevoked)

	// una segunda rotación del mismo token pierde el CAS
	again := &core.RefreshToken{UserID: u.ID, TokenHash: "hash-again", ExpiresAt: time.Now().UTC().Add(time.Hour)}
	require.ErrorIs(t, s.RotateRefreshToken(context.Background(), old.TokenHash, again, time.Now().UTC()), core.ErrTokenRevoked)
	_, err = s.GetRefreshTokenByHash(context.Background(), "hash-again")
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestRotateRefreshTokenExpired(t *testing.T) {
	s := New()
	u := seedUser(t, s)
	old := seedToken(t, s, u.ID, "hash-exp", -time.Minute)

	succ := &core.RefreshToken{UserID: u.ID, TokenHash: "hash-next", ExpiresAt: time.Now().UTC().Add(time.Hour)}
	err := s.RotateRefreshToken(context.Background(), old.TokenHash, succ, time.Now().UTC())
	require.ErrorIs(t, err, core.ErrTokenRevoked)
}

func TestConcurrentRotationSingleWinner(t *testing.T) {
	s := New()
	u := seedUser(t, s)
	seedToken(t, s, u.ID, "hash-race", time.Hour)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			succ := &core.RefreshToken{
				UserID:    u.ID,
				TokenHash: "hash-race-succ-" + string(rune('a'+i)),
				ExpiresAt: time.Now().UTC().Add(time.Hour),
			}
			errs[i] = s.RotateRefreshToken(context.Background(), "hash-race", succ, time.Now().UTC())
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else {
			require.ErrorIs(t, err, core.ErrTokenRevoked)
		}
	}
	require.Equal(t, 1, wins)
}

func TestRevokeRefreshTokenIdempotent(t *testing.T) {
	s := New()
	u := seedUser(t, s)
	seedToken(t, s, u.ID, "hash-rev", time.Hour)

	require.NoError(t, s.RevokeRefreshToken(context.Background(), "hash-rev", "logout"))
	require.NoError(t, s.RevokeRefreshToken(context.Background(), "hash-rev", "logout"))
	require.NoError(t, s.RevokeRefreshToken(context.Background(), "no-such-hash", "logout"))

	got, err := s.GetRefreshTokenByHash(context.Background(), "hash-rev")
	require.NoError(t, err)
	require.True(t, got.Revoked)
	require.Equal(t, "logout", *got.ReasonRevoked)
}

func TestUserHasCompany(t *testing.T) {
	s := New()
	u := seedUser(t, s)

	has, err := s.UserHasCompany(context.Background(), u.ID)
	require.NoError(t, err)
	require.False(t, has)

	s.AddCompany(u.ID, "Acme SRL")
	has, err = s.UserHasCompany(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, has)
}
