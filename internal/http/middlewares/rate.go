package middlewares

import (
	"net/http"
	"strconv"

	httperrors "github.com/dropDatabas3/assetweb/internal/http/errors"
	"github.com/dropDatabas3/assetweb/internal/observability/logger"
	"github.com/dropDatabas3/assetweb/internal/rate"
)

// WithRateLimit limita requests por IP de cliente usando el limiter dado.
// Si el limiter falla (Redis caído) deja pasar: preferimos degradar a
// bloquear logins legítimos.
func WithRateLimit(l rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l == nil {
				next.ServeHTTP(w, r)
				return
			}

			res, err := l.Allow(r.Context(), clientIP(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limiter error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(int(res.RetryAfter.Seconds())+1))
				}
				httperrors.WriteError(w, httperrors.ErrRateLimitExceeded)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
