package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/assetweb/internal/http/errors"
	svc "github.com/dropDatabas3/assetweb/internal/http/services/auth"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
)

// ExternalController maneja el login con Google.
type ExternalController struct {
	service svc.Service
}

func NewExternalController(service svc.Service) *ExternalController {
	return &ExternalController{service: service}
}

// AuthURL maneja GET /v1/auth/external/google/url
// Devuelve la URL de autorización para iniciar el flujo desde el front.
func (c *ExternalController) AuthURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	u, state, err := c.service.ExternalAuthURL(ctx)
	if err != nil {
		logger.From(ctx).Warn("external auth url failed", logger.Provider("google"), logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithDetail("login con google no disponible"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": u, "state": state})
}

// Login maneja POST /v1/auth/external/google
func (c *ExternalController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ExternalLogin"), logger.Provider("google"))

	var req dto.ExternalLoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	result, err := c.service.ExternalLogin(ctx, req)
	if err != nil {
		log.Debug("external login failed", logger.Err(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuthResponse{
		Success:      true,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		HasCompany:   result.HasCompany,
	})
}
