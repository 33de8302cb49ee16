// Package auth contiene los services de autenticación y perfil.
package auth

import (
	"context"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
)

// Service define las operaciones de autenticación.
type Service interface {
	// Register crea la cuenta, manda el mail de confirmación y, si está
	// habilitado el auto-login, devuelve tokens.
	Register(ctx context.Context, in dto.RegisterRequest) (*dto.TokenResult, error)

	// Login autentica email/password y emite el par access/refresh.
	Login(ctx context.Context, in dto.LoginRequest) (*dto.TokenResult, error)

	// Refresh rota el refresh token: revoca el presentado y emite un par
	// nuevo de forma atómica.
	Refresh(ctx context.Context, refreshToken string) (*dto.TokenResult, error)

	// Revoke revoca un refresh token. Idempotente: revocar un token ya
	// revocado o inexistente no es error.
	Revoke(ctx context.Context, refreshToken, reason string) error

	// ConfirmEmail marca el mail del usuario como confirmado, exactamente
	// una vez.
	ConfirmEmail(ctx context.Context, userID, token string) error

	// ResendConfirmation reenvía el mail de confirmación a una cuenta no
	// confirmada.
	ResendConfirmation(ctx context.Context, email string) error

	// ExternalAuthURL arma la URL de autorización de Google con state y
	// nonce propios.
	ExternalAuthURL(ctx context.Context) (url string, state string, err error)

	// ExternalLogin resuelve el login con Google: canjea el code (o toma el
	// id_token directo), verifica la identidad y crea el usuario local si
	// no existe.
	ExternalLogin(ctx context.Context, in dto.ExternalLoginRequest) (*dto.TokenResult, error)
}

// ProfileService define las operaciones sobre la cuenta autenticada.
type ProfileService interface {
	Me(ctx context.Context, userID string) (*dto.MeResponse, error)
	UpdateProfile(ctx context.Context, userID string, in dto.UpdateProfileRequest) (*dto.MeResponse, error)
	ChangePassword(ctx context.Context, userID string, in dto.ChangePasswordRequest) error
}
