package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dropDatabas3/assetweb/internal/store/core"
)

var (
	ErrMissingKey   = errors.New("signing key not configured")
	ErrInvalidToken = errors.New("invalid token")
)

// Issuer firma access tokens con clave simétrica (HS256).
// La clave viene de configuración y su ausencia es error fatal de arranque,
// nunca un fallo por request.
type Issuer struct {
	Key       []byte
	Iss       string
	Aud       string
	AccessTTL time.Duration // ej: 15m
}

func NewIssuer(key []byte, iss, aud string, accessTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	return &Issuer{Key: key, Iss: iss, Aud: aud, AccessTTL: accessTTL}
}

// Claims es el set mínimo que verifica cualquier resource server conformante:
// firma + exp + iss/aud.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwtv5.RegisteredClaims
}

// IssueAccess emite el access token del usuario: sub/email/role/jti/iat/nbf/exp.
func (i *Issuer) IssueAccess(u *core.User) (string, time.Time, error) {
	if len(i.Key) == 0 {
		return "", time.Time{}, ErrMissingKey
	}
	now := time.Now().UTC()
	exp := now.Add(i.AccessTTL)

	claims := Claims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   u.ID,
			Audience:  jwtv5.ClaimStrings{i.Aud},
			ID:        uuid.NewString(),
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(i.Key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Keyfunc devuelve un jwt.Keyfunc para el parser (clave simétrica única).
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		if len(i.Key) == 0 {
			return nil, ErrMissingKey
		}
		return i.Key, nil
	}
}

// Parse valida firma, expiración, issuer y audience, y devuelve los claims.
func (i *Issuer) Parse(raw string) (*Claims, error) {
	var claims Claims
	tk, err := jwtv5.ParseWithClaims(raw, &claims, i.Keyfunc(),
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithAudience(i.Aud),
	)
	if err != nil || !tk.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
