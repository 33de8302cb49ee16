// Package cache provee un cache chico de valores efímeros (nonces de OAuth,
// ventanas de rate limit) con backend en memoria o Redis.
package cache

import "time"

// Cache es la interfaz mínima que consumen los services.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
	Delete(key string)
}
