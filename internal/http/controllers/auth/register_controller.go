package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/assetweb/internal/http/errors"
	svc "github.com/dropDatabas3/assetweb/internal/http/services/auth"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
)

// RegisterController maneja el alta de usuarios.
type RegisterController struct {
	service svc.Service
}

func NewRegisterController(service svc.Service) *RegisterController {
	return &RegisterController{service: service}
}

// Register maneja POST /v1/auth/register
func (c *RegisterController) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("Register"))

	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	result, err := c.service.Register(ctx, req)
	if err != nil {
		log.Debug("register failed", logger.Err(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AuthResponse{
		Success:      true,
		Message:      "usuario creado, revisá tu correo para confirmar la cuenta",
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		HasCompany:   result.HasCompany,
	})
}

// ResendConfirmation maneja POST /v1/auth/resend-confirmation
func (c *RegisterController) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, err)
		return
	}

	if err := c.service.ResendConfirmation(ctx, req.Email); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AuthResponse{Success: true, Message: "correo de confirmación reenviado"})
}
