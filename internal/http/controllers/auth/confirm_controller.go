package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/assetweb/internal/http/dto/auth"
	svc "github.com/dropDatabas3/assetweb/internal/http/services/auth"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
)

// ConfirmController maneja la confirmación de email por deep link.
type ConfirmController struct {
	service svc.Service
}

func NewConfirmController(service svc.Service) *ConfirmController {
	return &ConfirmController{service: service}
}

// Confirm maneja GET /v1/auth/confirm-email?user_id=...&token=...
// Es GET porque llega por click en el mail.
func (c *ConfirmController) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ConfirmEmail"))

	q := r.URL.Query()
	userID := q.Get("user_id")
	token := q.Get("token")

	if err := c.service.ConfirmEmail(ctx, userID, token); err != nil {
		log.Debug("confirm failed", logger.Err(err))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.AuthResponse{Success: true, Message: "correo confirmado"})
}
