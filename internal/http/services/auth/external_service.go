package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	"github.com/dropDatabas3/assetweb/internal/oauth/google"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
	"github.com/dropDatabas3/assetweb/internal/security/password"
	tokens "github.com/dropDatabas3/assetweb/internal/security/token"
	"github.com/dropDatabas3/assetweb/internal/store/core"
	"github.com/dropDatabas3/assetweb/internal/util"
)

// ExternalAuthURL genera state y nonce propios, guarda el nonce en cache
// atado al state y devuelve la URL de autorización de Google.
func (s *service) ExternalAuthURL(ctx context.Context) (string, string, error) {
	if s.deps.OIDC == nil {
		return "", "", ErrExternalDisabled
	}
	state, err := tokens.GenerateOpaqueToken(16)
	if err != nil {
		return "", "", err
	}
	nonce, err := tokens.GenerateOpaqueToken(16)
	if err != nil {
		return "", "", err
	}
	if s.deps.Cache != nil {
		s.deps.Cache.Set(nonceCacheKey(state), []byte(nonce), 10*time.Minute)
	}
	u, err := s.deps.OIDC.AuthURL(ctx, state, nonce)
	if err != nil {
		return "", "", err
	}
	return u, state, nil
}

func (s *service) ExternalLogin(ctx context.Context, in dto.ExternalLoginRequest) (*dto.TokenResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("ExternalLogin"), logger.Provider("google"))

	if s.deps.OIDC == nil {
		return nil, ErrExternalDisabled
	}

	idToken := strings.TrimSpace(in.IDToken)
	if idToken == "" {
		if strings.TrimSpace(in.Code) == "" {
			return nil, ErrMissingFields
		}
		tr, err := s.deps.OIDC.ExchangeCode(ctx, in.Code)
		if err != nil {
			log.Warn("code exchange failed", logger.Err(err))
			return nil, ErrInvalidToken
		}
		idToken = tr.IDToken
	}

	claims, err := s.deps.OIDC.VerifyIDToken(ctx, idToken, s.consumeNonce(in.State, in.Nonce))
	if err != nil {
		log.Warn("id_token verification failed", logger.Err(err))
		return nil, ErrInvalidToken
	}

	u, err := s.resolveExternalUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	return s.issueTokenPair(ctx, u)
}

// consumeNonce resuelve el nonce esperado para la verificación del id_token.
// Si el flujo arrancó por ExternalAuthURL el nonce quedó en cache atado al
// state y se consume de a una vez; un nonce explícito pasa directo.
func (s *service) consumeNonce(state, explicit string) string {
	nonce := strings.TrimSpace(explicit)
	if nonce != "" || state == "" || s.deps.Cache == nil {
		return nonce
	}
	if b, ok := s.deps.Cache.Get(nonceCacheKey(state)); ok {
		s.deps.Cache.Delete(nonceCacheKey(state))
		return string(b)
	}
	return ""
}

// resolveExternalUser exige lo mínimo de la identidad ya verificada (sub y
// email) y resuelve la cuenta local, aprovisionándola si no existe.
func (s *service) resolveExternalUser(ctx context.Context, claims *google.IDClaims) (*core.User, error) {
	if claims.Sub == "" || claims.Email == "" {
		return nil, ErrExternalIdentityIncomplete
	}

	u, err := s.deps.Repo.GetUserByEmail(ctx, claims.Email)
	switch {
	case err == nil:
		return u, nil
	case errors.Is(err, core.ErrNotFound):
		u, err = s.provisionExternalUser(ctx, claims)
		if err != nil {
			return nil, err
		}
		logger.From(ctx).Info("external user provisioned",
			logger.Provider("google"), logger.UserID(u.ID), logger.Email(util.MaskEmail(u.Email)))
		return u, nil
	default:
		return nil, err
	}
}

// provisionExternalUser crea la cuenta local para una identidad de Google.
// La password es random: la cuenta solo entra por el proveedor hasta que el
// usuario haga un reset.
func (s *service) provisionExternalUser(ctx context.Context, claims *google.IDClaims) (*core.User, error) {
	randomPass, err := tokens.GenerateOpaqueToken(refreshTokenBytes)
	if err != nil {
		return nil, err
	}
	hash, salt, err := password.Hash(s.deps.Hash, randomPass)
	if err != nil {
		return nil, err
	}

	first := claims.GivenName
	last := claims.FamilyName
	if first == "" && claims.Name != "" {
		parts := strings.SplitN(claims.Name, " ", 2)
		first = parts[0]
		if len(parts) == 2 {
			last = parts[1]
		}
	}

	u := &core.User{
		Email:          claims.Email,
		FirstName:      first,
		LastName:       last,
		PasswordHash:   hash,
		PasswordSalt:   salt,
		Role:           "User",
		EmailConfirmed: claims.EmailVerified,
	}
	if err := s.deps.Repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, core.ErrConflict) {
			// carrera con otro login externo simultáneo: usamos la existente
			return s.deps.Repo.GetUserByEmail(ctx, claims.Email)
		}
		return nil, err
	}
	return u, nil
}

func nonceCacheKey(state string) string { return "oidc:nonce:" + state }
