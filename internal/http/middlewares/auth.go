package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/assetweb/internal/http/errors"
	jwtx "github.com/dropDatabas3/assetweb/internal/jwt"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
)

// WithBearerAuth exige un access token válido y deja el user id en contexto.
func WithBearerAuth(issuer *jwtx.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("falta el header Authorization"))
				return
			}

			claims, err := issuer.Parse(raw)
			if err != nil {
				logger.From(r.Context()).Debug("bearer rejected", logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			ctx := setUserID(r.Context(), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
