// Package password implementa el hashing de credenciales locales.
//
// Hash y salt se guardan como columnas separadas (el modelo exige que se
// seteen siempre juntos). La verificación recalcula con el salt guardado y
// compara en tiempo constante.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, SaltLen: 16, KeyLen: 32}

// Hash genera un salt aleatorio fresco y deriva la clave argon2id.
// Dos llamadas con el mismo plaintext producen salts (y hashes) distintos.
func Hash(p Params, plain string) (hash, salt []byte, err error) {
	if plain == "" {
		return nil, nil, fmt.Errorf("empty password")
	}
	salt = make([]byte, p.SaltLen)
	if _, err = rand.Read(salt); err != nil {
		return nil, nil, err
	}
	hash = argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return hash, salt, nil
}

// Verify recalcula el hash con el salt guardado y compara completo
// (subtle.ConstantTimeCompare, sin early-exit). Valores corruptos o de
// largo inesperado devuelven false, nunca panic.
func Verify(p Params, plain string, hash, salt []byte) bool {
	if plain == "" || len(hash) == 0 || len(salt) == 0 {
		return false
	}
	key := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, uint32(len(hash)))
	return subtle.ConstantTimeCompare(key, hash) == 1
}
