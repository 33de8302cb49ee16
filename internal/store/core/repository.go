package core

import (
	"context"
	"time"
)

// Repository es el contrato del credential store. La unicidad de email la
// garantiza el backend (constraint UNIQUE); el pre-check en el service es
// solo un fast-path para mejor mensaje de error.
type Repository interface {
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	UpdateUser(ctx context.Context, u *User) error
	ConfirmUserEmail(ctx context.Context, userID string) error

	// Refresh tokens
	CreateRefreshToken(ctx context.Context, rt *RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*RefreshToken, error)

	// RotateRefreshToken revoca el token viejo (CAS sobre revoked=false) y
	// persiste el sucesor como UNA operación lógica. Si el CAS falla porque
	// otro request ya lo rotó/revocó, retorna ErrTokenRevoked y NO inserta
	// nada. Si cualquiera de las dos escrituras falla, el token viejo queda
	// válido (sin rotación parcial).
	RotateRefreshToken(ctx context.Context, oldHash string, successor *RefreshToken, now time.Time) error

	// RevokeRefreshToken marca revoked=true con el motivo dado. Idempotente:
	// revocar un token ya revocado o inexistente no es error.
	RevokeRefreshToken(ctx context.Context, tokenHash, reason string) error

	// Companies (colaborador externo del login)
	UserHasCompany(ctx context.Context, userID string) (bool, error)
}
