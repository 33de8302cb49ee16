package core

import "time"

// User es la cuenta local. Hash y salt del password van SIEMPRE juntos:
// nunca se actualiza uno sin el otro.
type User struct {
	ID             string
	Email          string
	FirstName      string
	LastName       string
	PasswordHash   []byte
	PasswordSalt   []byte
	Role           string // "User" por defecto
	EmailConfirmed bool
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

// RefreshToken es una fila append-mostly: nunca se borra, solo se marca
// revocada con el motivo y (si fue rotada) el id del sucesor.
type RefreshToken struct {
	ID            string
	UserID        string
	TokenHash     string // sha256(base64url) del token opaco; el plaintext no se persiste
	ExpiresAt     time.Time
	Revoked       bool
	CreatedAt     time.Time
	ReplacedBy    *string // id de la fila del token que lo reemplazó
	ReasonRevoked *string
}

// Active informa si el token todavía sirve para rotar.
func (rt *RefreshToken) Active(now time.Time) bool {
	return !rt.Revoked && now.Before(rt.ExpiresAt)
}

// Company es el colaborador externo mínimo que necesita el login
// para derivar has_company.
type Company struct {
	ID        string
	OwnerID   string
	Name      string
	CreatedAt time.Time
}
