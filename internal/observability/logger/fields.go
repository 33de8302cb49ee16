package logger

import (
	"time"

	"go.uber.org/zap"
)

// Campos estándar — HTTP

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field { return zap.String("request_id", v) }

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field { return zap.String("method", v) }

// Path crea un campo para el path del request.
func Path(v string) zap.Field { return zap.String("path", v) }

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field { return zap.Int("status", v) }

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// Campos estándar — negocio

// UserID crea un campo para el ID del usuario.
func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Email crea un campo para el email. Pasar siempre enmascarado en prod
// (util.MaskEmail).
func Email(v string) zap.Field { return zap.String("email", v) }

// TokenID crea un campo para el ID de un refresh token.
func TokenID(v string) zap.Field { return zap.String("token_id", v) }

// Provider crea un campo para el proveedor de identidad externo.
func Provider(v string) zap.Field { return zap.String("provider", v) }

// Campos estándar — sistema

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op crea un campo para la operación actual.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer crea un campo para la capa (controller, service, store).
func Layer(v string) zap.Field { return zap.String("layer", v) }

// Err crea un campo para un error.
func Err(err error) zap.Field { return zap.Error(err) }

// Genéricos

func String(key, v string) zap.Field          { return zap.String(key, v) }
func Int(key string, v int) zap.Field         { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field       { return zap.Bool(key, v) }
func Duration(v time.Duration) zap.Field      { return zap.Duration("duration", v) }
func Any(key string, v any) zap.Field         { return zap.Any(key, v) }
