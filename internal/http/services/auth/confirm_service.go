package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/dropDatabas3/assetweb/internal/observability/logger"
	tokens "github.com/dropDatabas3/assetweb/internal/security/token"
	"github.com/dropDatabas3/assetweb/internal/store/core"
)

// ConfirmEmail confirma la cuenta exactamente una vez. Si hay un token
// vigente en cache se exige que coincida; si ya expiró de la cache se acepta
// el click igual, el user_id resuelto alcanza para validar la intención.
func (s *service) ConfirmEmail(ctx context.Context, userID, token string) error {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("ConfirmEmail"))

	userID = strings.TrimSpace(userID)
	token = strings.TrimSpace(token)
	if userID == "" || token == "" {
		return ErrInvalidToken
	}

	if s.deps.Cache != nil {
		if want, ok := s.deps.Cache.Get(confirmCacheKey(userID)); ok {
			got := tokens.SHA256Base64URL(token)
			if subtle.ConstantTimeCompare(want, []byte(got)) != 1 {
				return ErrInvalidToken
			}
		}
	}

	if err := s.deps.Repo.ConfirmUserEmail(ctx, userID); err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			return ErrUserNotFound
		case errors.Is(err, core.ErrConflict):
			return ErrAlreadyConfirmed
		default:
			return err
		}
	}

	if s.deps.Cache != nil {
		s.deps.Cache.Delete(confirmCacheKey(userID))
	}
	log.Info("email confirmed", logger.UserID(userID))
	return nil
}
