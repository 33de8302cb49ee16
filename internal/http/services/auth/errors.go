package auth

import "fmt"

// Errores de negocio del service. Los controllers los mapean a HTTP.
var (
	ErrMissingFields              = fmt.Errorf("missing required fields")
	ErrPasswordMismatch           = fmt.Errorf("passwords do not match")
	ErrInvalidCredentials         = fmt.Errorf("invalid credentials")
	ErrEmailAlreadyExists         = fmt.Errorf("email already registered")
	ErrUserNotFound               = fmt.Errorf("user not found")
	ErrAlreadyConfirmed           = fmt.Errorf("email already confirmed")
	ErrInvalidToken               = fmt.Errorf("invalid token")
	ErrTokenExpiredOrRevoked      = fmt.Errorf("token expired or revoked")
	ErrEmailDeliveryFailed        = fmt.Errorf("confirmation email delivery failed")
	ErrExternalIdentityIncomplete = fmt.Errorf("external identity incomplete")
	ErrTokenIssueFailed           = fmt.Errorf("failed to issue token")
	ErrExternalDisabled           = fmt.Errorf("external login not configured")
)
