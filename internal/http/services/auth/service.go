package auth

import (
	"context"
	"time"

	"github.com/dropDatabas3/assetweb/internal/cache"
	"github.com/dropDatabas3/assetweb/internal/email"
	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	jwtx "github.com/dropDatabas3/assetweb/internal/jwt"
	"github.com/dropDatabas3/assetweb/internal/metrics"
	"github.com/dropDatabas3/assetweb/internal/oauth/google"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
	"github.com/dropDatabas3/assetweb/internal/security/password"
	tokens "github.com/dropDatabas3/assetweb/internal/security/token"
	"github.com/dropDatabas3/assetweb/internal/store/core"
)

// refreshTokenBytes: 32 bytes random -> base64url en el wire, SHA-256 en DB.
const refreshTokenBytes = 32

// Deps contiene las dependencias del service de auth.
type Deps struct {
	Repo       core.Repository
	Issuer     *jwtx.Issuer
	Hash       password.Params
	Sender     email.Sender     // nil = no se mandan mails (dev)
	Templates  *email.Templates // requerido si Sender != nil
	OIDC       *google.OIDC     // nil = login externo deshabilitado
	Cache      cache.Cache
	BaseURL    string
	RefreshTTL time.Duration
	ConfirmTTL time.Duration
	AutoLogin  bool
}

type service struct {
	deps Deps
}

// New crea el service de autenticación.
func New(deps Deps) Service {
	if deps.Hash.Memory == 0 {
		deps.Hash = password.Default
	}
	if deps.RefreshTTL == 0 {
		deps.RefreshTTL = 7 * 24 * time.Hour
	}
	if deps.ConfirmTTL == 0 {
		deps.ConfirmTTL = 24 * time.Hour
	}
	return &service{deps: deps}
}

// newRefreshToken genera el refresh opaco en claro y el registro listo para
// persistir (solo el hash toca la base).
func (s *service) newRefreshToken(userID string, now time.Time) (string, *core.RefreshToken, error) {
	plain, err := tokens.GenerateOpaqueToken(refreshTokenBytes)
	if err != nil {
		return "", nil, ErrTokenIssueFailed
	}
	rt := &core.RefreshToken{
		UserID:    userID,
		TokenHash: tokens.SHA256Base64URL(plain),
		ExpiresAt: now.Add(s.deps.RefreshTTL),
	}
	return plain, rt, nil
}

// mintResult arma el resultado final de cualquier camino de emisión: access
// JWT + refresh en claro + flag de company. Único punto que firma el access.
func (s *service) mintResult(ctx context.Context, u *core.User, refresh string) (*dto.TokenResult, error) {
	access, exp, err := s.deps.Issuer.IssueAccess(u)
	if err != nil {
		logger.From(ctx).Error("issue access failed", logger.UserID(u.ID), logger.Err(err))
		return nil, ErrTokenIssueFailed
	}
	metrics.AccessTokensIssued.Inc()
	return &dto.TokenResult{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(time.Until(exp).Seconds()),
		HasCompany:   s.hasCompany(ctx, u.ID),
	}, nil
}

// issueTokenPair emite un par nuevo persistiendo el refresh como fila fresca
// (login, registro con auto-login, login externo).
func (s *service) issueTokenPair(ctx context.Context, u *core.User) (*dto.TokenResult, error) {
	refresh, rt, err := s.newRefreshToken(u.ID, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if err := s.deps.Repo.CreateRefreshToken(ctx, rt); err != nil {
		logger.From(ctx).Error("persist refresh failed", logger.UserID(u.ID), logger.Err(err))
		return nil, ErrTokenIssueFailed
	}
	return s.mintResult(ctx, u, refresh)
}

// hasCompany degrada a false ante errores: el flag es informativo y no
// justifica tirar el login.
func (s *service) hasCompany(ctx context.Context, userID string) bool {
	has, err := s.deps.Repo.UserHasCompany(ctx, userID)
	if err != nil {
		logger.From(ctx).Warn("has_company lookup failed", logger.UserID(userID), logger.Err(err))
		return false
	}
	return has
}
