package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/assetweb/internal/http/errors"
	"github.com/dropDatabas3/assetweb/internal/http/middlewares"
	svc "github.com/dropDatabas3/assetweb/internal/http/services/auth"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
)

// MeController maneja los endpoints de la cuenta autenticada.
type MeController struct {
	service svc.ProfileService
}

func NewMeController(service svc.ProfileService) *MeController {
	return &MeController{service: service}
}

// Me maneja GET /v1/me
func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middlewares.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	res, err := c.service.Me(ctx, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Update maneja PUT /v1/me
func (c *MeController) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middlewares.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	res, err := c.service.UpdateProfile(ctx, userID, req)
	if err != nil {
		logger.From(ctx).Debug("profile update failed", logger.Err(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ChangePassword maneja POST /v1/me/password
func (c *MeController) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middlewares.GetUserID(ctx)
	if userID == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	var req dto.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	if err := c.service.ChangePassword(ctx, userID, req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AuthResponse{Success: true, Message: "contraseña actualizada"})
}
