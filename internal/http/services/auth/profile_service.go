package auth

import (
	"context"
	"errors"
	"strings"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
	"github.com/dropDatabas3/assetweb/internal/security/password"
	"github.com/dropDatabas3/assetweb/internal/store/core"
)

// ProfileDeps contiene las dependencias del service de perfil.
type ProfileDeps struct {
	Repo core.Repository
	Hash password.Params
}

type profileService struct {
	deps ProfileDeps
}

// NewProfile crea el service de perfil.
func NewProfile(deps ProfileDeps) ProfileService {
	if deps.Hash.Memory == 0 {
		deps.Hash = password.Default
	}
	return &profileService{deps: deps}
}

func (s *profileService) Me(ctx context.Context, userID string) (*dto.MeResponse, error) {
	u, err := s.deps.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	has, err := s.deps.Repo.UserHasCompany(ctx, userID)
	if err != nil {
		has = false
	}
	return toMeResponse(u, has), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, in dto.UpdateProfileRequest) (*dto.MeResponse, error) {
	u, err := s.deps.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if in.FirstName == "" && in.LastName == "" {
		return nil, ErrMissingFields
	}
	if in.FirstName != "" {
		u.FirstName = in.FirstName
	}
	if in.LastName != "" {
		u.LastName = in.LastName
	}

	if err := s.deps.Repo.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	logger.From(ctx).Info("profile updated", logger.UserID(userID))

	has, err := s.deps.Repo.UserHasCompany(ctx, userID)
	if err != nil {
		has = false
	}
	return toMeResponse(u, has), nil
}

func (s *profileService) ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) error {
	if in.CurrentPassword == "" || in.NewPassword == "" {
		return ErrMissingFields
	}
	if in.NewPassword != in.ConfirmPassword {
		return ErrPasswordMismatch
	}

	u, err := s.deps.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !password.Verify(s.deps.Hash, in.CurrentPassword, u.PasswordHash, u.PasswordSalt) {
		return ErrInvalidCredentials
	}

	hash, salt, err := password.Hash(s.deps.Hash, in.NewPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.PasswordSalt = salt

	if err := s.deps.Repo.UpdateUser(ctx, u); err != nil {
		return err
	}
	logger.From(ctx).Info("password changed", logger.UserID(userID))
	return nil
}

func toMeResponse(u *core.User, hasCompany bool) *dto.MeResponse {
	return &dto.MeResponse{
		ID:             u.ID,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Role:           u.Role,
		EmailConfirmed: u.EmailConfirmed,
		HasCompany:     hasCompany,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
