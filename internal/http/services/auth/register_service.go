package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/dropDatabas3/assetweb/internal/email"
	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	"github.com/dropDatabas3/assetweb/internal/metrics"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
	"github.com/dropDatabas3/assetweb/internal/security/password"
	tokens "github.com/dropDatabas3/assetweb/internal/security/token"
	"github.com/dropDatabas3/assetweb/internal/store/core"
	"github.com/dropDatabas3/assetweb/internal/util"
)

func (s *service) Register(ctx context.Context, in dto.RegisterRequest) (*dto.TokenResult, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Register"))

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)

	if in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	// Fast path: la constraint de unicidad del store es la garantía real,
	// esto solo evita hashear al pedo cuando el email ya existe.
	if _, err := s.deps.Repo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	hash, salt, err := password.Hash(s.deps.Hash, in.Password)
	if err != nil {
		return nil, err
	}

	u := &core.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: hash,
		PasswordSalt: salt,
		Role:         "User",
	}
	if err := s.deps.Repo.CreateUser(ctx, u); err != nil {
		if errors.Is(err, core.ErrConflict) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	log.Info("user registered", logger.UserID(u.ID), logger.Email(util.MaskEmail(u.Email)))
	metrics.RegistrationsTotal.Inc()

	// El mail de confirmación es best-effort: si falla no deshacemos el
	// registro, el usuario puede pedir el reenvío.
	if err := s.sendConfirmationEmail(ctx, u); err != nil {
		log.Warn("confirmation email failed", logger.UserID(u.ID), logger.Err(err))
	}

	if !s.deps.AutoLogin {
		return &dto.TokenResult{HasCompany: false}, nil
	}
	return s.issueTokenPair(ctx, u)
}

// ResendConfirmation reenvía el mail de confirmación para una cuenta todavía
// no confirmada.
func (s *service) ResendConfirmation(ctx context.Context, emailAddr string) error {
	u, err := s.deps.Repo.GetUserByEmail(ctx, strings.TrimSpace(strings.ToLower(emailAddr)))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if u.EmailConfirmed {
		return ErrAlreadyConfirmed
	}
	if err := s.sendConfirmationEmail(ctx, u); err != nil {
		return ErrEmailDeliveryFailed
	}
	return nil
}

func (s *service) sendConfirmationEmail(ctx context.Context, u *core.User) error {
	if s.deps.Sender == nil || s.deps.Templates == nil {
		logger.From(ctx).Debug("email sender not configured, skipping confirmation mail")
		return nil
	}

	token, err := tokens.GenerateOpaqueToken(refreshTokenBytes)
	if err != nil {
		return err
	}
	// el hash queda en cache para validar el link mientras no expire
	if s.deps.Cache != nil {
		s.deps.Cache.Set(confirmCacheKey(u.ID), []byte(tokens.SHA256Base64URL(token)), s.deps.ConfirmTTL)
	}

	link := fmt.Sprintf("%s/v1/auth/confirm-email?user_id=%s&token=%s",
		strings.TrimRight(s.deps.BaseURL, "/"), url.QueryEscape(u.ID), url.QueryEscape(token))

	htmlBody, textBody, err := s.deps.Templates.RenderConfirm(email.ConfirmVars{
		FirstName: u.FirstName,
		Link:      link,
		TTL:       s.deps.ConfirmTTL.String(),
	})
	if err != nil {
		return err
	}

	if err := s.deps.Sender.Send(u.Email, "Confirmá tu cuenta", htmlBody, textBody); err != nil {
		metrics.ConfirmationEmailsSent.WithLabelValues("error").Inc()
		return err
	}
	metrics.ConfirmationEmailsSent.WithLabelValues("ok").Inc()
	return nil
}

func confirmCacheKey(userID string) string { return "confirm:" + userID }
