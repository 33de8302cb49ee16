package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	"github.com/dropDatabas3/assetweb/internal/metrics"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
	tokens "github.com/dropDatabas3/assetweb/internal/security/token"
	"github.com/dropDatabas3/assetweb/internal/store/core"
)

func (s *service) Refresh(ctx context.Context, refreshToken string) (*dto.TokenResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Refresh"))

	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, ErrInvalidToken
	}
	oldHash := tokens.SHA256Base64URL(refreshToken)
	now := time.Now().UTC()

	current, err := s.deps.Repo.GetRefreshTokenByHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !current.Active(now) {
		// un refresh con token revocado o rotado suele ser replay
		log.Warn("refresh replay detected", logger.UserID(current.UserID), logger.TokenID(current.ID))
		metrics.RefreshReplaysDetected.Inc()
		return nil, ErrTokenExpiredOrRevoked
	}

	u, err := s.deps.Repo.GetUserByID(ctx, current.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	newRefresh, successor, err := s.newRefreshToken(u.ID, now)
	if err != nil {
		return nil, err
	}

	// CAS en el repo: de dos refresh concurrentes con el mismo token gana
	// exactamente uno. El sucesor se persiste adentro de la rotación, no
	// como fila suelta.
	if err := s.deps.Repo.RotateRefreshToken(ctx, oldHash, successor, now); err != nil {
		switch {
		case errors.Is(err, core.ErrTokenRevoked):
			log.Warn("refresh lost rotation race", logger.UserID(u.ID))
			metrics.RefreshReplaysDetected.Inc()
			return nil, ErrTokenExpiredOrRevoked
		case errors.Is(err, core.ErrNotFound):
			return nil, ErrInvalidToken
		default:
			return nil, err
		}
	}

	metrics.RefreshRotationsTotal.Inc()
	return s.mintResult(ctx, u, newRefresh)
}

// Revoke es idempotente y no revela si el token existía. El token vacío
// también responde ok: logout siempre es seguro de llamar.
func (s *service) Revoke(ctx context.Context, refreshToken, reason string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	if reason == "" {
		reason = "Revoked by user"
	}
	return s.deps.Repo.RevokeRefreshToken(ctx, tokens.SHA256Base64URL(refreshToken), reason)
}
