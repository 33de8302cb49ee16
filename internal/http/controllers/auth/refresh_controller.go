package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/assetweb/internal/http/errors"
	svc "github.com/dropDatabas3/assetweb/internal/http/services/auth"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
)

// RefreshController maneja rotación y revocación de refresh tokens.
type RefreshController struct {
	service svc.Service
}

func NewRefreshController(service svc.Service) *RefreshController {
	return &RefreshController{service: service}
}

// Refresh maneja POST /v1/auth/refresh
func (c *RefreshController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Refresh"))

	var req dto.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	result, err := c.service.Refresh(ctx, req.RefreshToken)
	if err != nil {
		log.Debug("refresh failed", logger.Err(err))
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

// Revoke maneja POST /v1/auth/revoke
func (c *RefreshController) Revoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req dto.RevokeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	if err := c.service.Revoke(ctx, req.RefreshToken, req.Reason); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AuthResponse{Success: true, Message: "token revocado"})
}
