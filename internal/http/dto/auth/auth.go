// Package auth define los contratos JSON de los endpoints de autenticación.
package auth

// RegisterRequest es el body de POST /v1/auth/register.
type RegisterRequest struct {
	Email           string `json:"email"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// LoginRequest es el body de POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest es el body de POST /v1/auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RevokeRequest es el body de POST /v1/auth/revoke.
type RevokeRequest struct {
	RefreshToken string `json:"refreshToken"`
	Reason       string `json:"reason,omitempty"`
}

// ExternalLoginRequest es el body de POST /v1/auth/external/google.
// Se acepta el authorization code (flujo server-side) o directamente un
// id_token ya obtenido por el cliente.
type ExternalLoginRequest struct {
	Code    string `json:"code,omitempty"`
	IDToken string `json:"idToken,omitempty"`
	State   string `json:"state,omitempty"`
	Nonce   string `json:"nonce,omitempty"`
}

// AuthResponse es la respuesta común de register/login/refresh/external.
type AuthResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn,omitempty"`
	HasCompany   bool   `json:"hasCompany"`
}

// TokenResult es el resultado interno de emitir un par de tokens.
type TokenResult struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	HasCompany   bool
}
