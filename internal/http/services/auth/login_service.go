package auth

import (
	"context"
	"errors"
	"strings"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	"github.com/dropDatabas3/assetweb/internal/metrics"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
	"github.com/dropDatabas3/assetweb/internal/security/password"
	"github.com/dropDatabas3/assetweb/internal/store/core"
	"github.com/dropDatabas3/assetweb/internal/util"
)

func (s *service) Login(ctx context.Context, in dto.LoginRequest) (*dto.TokenResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Login"))

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.deps.Repo.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			// mismo error que password inválido, no filtramos existencia
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if !password.Verify(s.deps.Hash, in.Password, u.PasswordHash, u.PasswordSalt) {
		log.Debug("password mismatch", logger.Email(util.MaskEmail(in.Email)))
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	// Login sin confirmar está permitido; la confirmación solo gatea
	// features que la exigen.
	res, err := s.issueTokenPair(ctx, u)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	log.Info("login ok", logger.UserID(u.ID))
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return res, nil
}
