// Package router arma el árbol de rutas de la API.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/assetweb/internal/http/controllers/auth"
	"github.com/dropDatabas3/assetweb/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/assetweb/internal/jwt"
	"github.com/dropDatabas3/assetweb/internal/rate"
)

// Deps son las piezas ya construidas que el router solo conecta.
type Deps struct {
	Controllers    *authctrl.Controllers
	Issuer         *jwtx.Issuer
	LoginLimiter   rate.Limiter // nil = sin límite
	RefreshLimiter rate.Limiter // nil = sin límite
	Metrics        http.Handler // nil = sin /metrics
	Ping           func(ctx context.Context) error
	CORSOrigins    []string // vacío = sin CORS
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middlewares.WithRequestID())
	r.Use(middlewares.WithLogging())
	if len(d.CORSOrigins) > 0 {
		r.Use(middlewares.WithCORS(d.CORSOrigins))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, req *http.Request) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db not ready"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	c := d.Controllers

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/register", c.Register.Register)
		r.Post("/resend-confirmation", c.Register.ResendConfirmation)
		r.Get("/confirm-email", c.Confirm.Confirm)
		r.Post("/revoke", c.Refresh.Revoke)

		// login y refresh llevan cada uno su rate limit por IP
		r.Group(func(r chi.Router) {
			r.Use(middlewares.WithRateLimit(d.LoginLimiter))
			r.Post("/login", c.Login.Login)
		})
		r.Group(func(r chi.Router) {
			r.Use(middlewares.WithRateLimit(d.RefreshLimiter))
			r.Post("/refresh", c.Refresh.Refresh)
		})

		r.Get("/external/google/url", c.External.AuthURL)
		r.Post("/external/google", c.External.Login)
	})

	r.Route("/v1/me", func(r chi.Router) {
		r.Use(middlewares.WithBearerAuth(d.Issuer))
		r.Get("/", c.Me.Me)
		r.Put("/", c.Me.Update)
		r.Post("/password", c.Me.ChangePassword)
	})

	return r
}
