// Package metrics define las métricas Prometheus del dominio de auth en un
// paquete aparte para evitar ciclos de import entre services y HTTP.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LoginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Intentos de login por resultado",
	}, []string{"result"}) // ok | invalid_credentials | rate_limited | error

	RegistrationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Registros de usuario exitosos",
	})

	AccessTokensIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_access_tokens_issued_total",
		Help: "Access tokens emitidos",
	})

	RefreshRotationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_refresh_rotations_total",
		Help: "Rotaciones de refresh token exitosas",
	})

	RefreshReplaysDetected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_refresh_replays_detected_total",
		Help: "Refresh con token ya revocado o rotado (posible replay)",
	})

	ConfirmationEmailsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_confirmation_emails_total",
		Help: "Mails de confirmación por resultado",
	}, []string{"result"}) // ok | error
)

// Register registra las métricas de auth en el registry dado (o el default si
// es nil). Tolera doble registro para no romper en tests.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		LoginsTotal,
		RegistrationsTotal,
		AccessTokensIssued,
		RefreshRotationsTotal,
		RefreshReplaysDetected,
		ConfirmationEmailsSent,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
