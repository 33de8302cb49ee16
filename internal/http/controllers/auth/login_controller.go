package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/assetweb/internal/http/errors"
	svc "github.com/dropDatabas3/assetweb/internal/http/services/auth"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
)

// LoginController maneja el endpoint de login.
type LoginController struct {
	service svc.Service
}

func NewLoginController(service svc.Service) *LoginController {
	return &LoginController{service: service}
}

// Login maneja POST /v1/auth/login
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Login"))

	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	result, err := c.service.Login(ctx, req)
	if err != nil {
		log.Debug("login failed", logger.Err(err))
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
