// Package auth contiene los controllers HTTP de autenticación y perfil.
package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	httperrors "github.com/dropDatabas3/assetweb/internal/http/errors"
	svc "github.com/dropDatabas3/assetweb/internal/http/services/auth"
)

const (
	maxBodySize     = 64 * 1024 // 64KB
	contentTypeJSON = "application/json; charset=utf-8"
)

// Controllers agrupa los controllers de auth ya construidos.
type Controllers struct {
	Register *RegisterController
	Login    *LoginController
	Refresh  *RefreshController
	Confirm  *ConfirmController
	External *ExternalController
	Me       *MeController
}

// New arma todos los controllers a partir de los services.
func New(auth svc.Service, profile svc.ProfileService) *Controllers {
	return &Controllers{
		Register: NewRegisterController(auth),
		Login:    NewLoginController(auth),
		Refresh:  NewRefreshController(auth),
		Confirm:  NewConfirmController(auth),
		External: NewExternalController(auth),
		Me:       NewMeController(profile),
	}
}

// decodeJSON limita el body y decodea JSON en dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return httperrors.ErrInvalidJSON
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError mapea los errores de negocio del service a HTTP.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrMissingFields):
		httperrors.WriteError(w, httperrors.ErrMissingFields)
	case errors.Is(err, svc.ErrPasswordMismatch):
		httperrors.WriteError(w, httperrors.ErrPasswordMismatch)
	case errors.Is(err, svc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
	case errors.Is(err, svc.ErrEmailAlreadyExists):
		httperrors.WriteError(w, httperrors.ErrEmailAlreadyInUse)
	case errors.Is(err, svc.ErrUserNotFound):
		httperrors.WriteError(w, httperrors.ErrUserNotFound)
	case errors.Is(err, svc.ErrAlreadyConfirmed):
		httperrors.WriteError(w, httperrors.ErrAlreadyConfirmed)
	case errors.Is(err, svc.ErrInvalidToken):
		httperrors.WriteError(w, httperrors.ErrTokenInvalid)
	case errors.Is(err, svc.ErrTokenExpiredOrRevoked):
		httperrors.WriteError(w, httperrors.ErrTokenExpiredOrRevoked)
	case errors.Is(err, svc.ErrEmailDeliveryFailed):
		httperrors.WriteError(w, httperrors.ErrEmailDeliveryFailed)
	case errors.Is(err, svc.ErrExternalIdentityIncomplete):
		httperrors.WriteError(w, httperrors.ErrExternalIdentityIncomplete)
	case errors.Is(err, svc.ErrExternalDisabled):
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithDetail("login con google no disponible"))
	case errors.Is(err, svc.ErrTokenIssueFailed):
		httperrors.WriteError(w, httperrors.ErrInternalServerError.WithDetail("error al emitir tokens"))
	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
