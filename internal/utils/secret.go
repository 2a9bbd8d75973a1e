// Package utils provides small helpers shared across handlers and middleware:
// API secret generation, argon2id hashing and best-effort reverse DNS.
package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters. NeedsRehash reports true for any stored hash produced
// with different values, so bumping these retires old hashes on next issuance.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonSaltLen = 16
	argonKeyLen  = 32

	secretLen = 64 // bytes of randomness per API secret
)

// ErrMalformedHash is returned when a stored hash cannot be parsed as a
// PHC-encoded argon2id string.
var ErrMalformedHash = errors.New("malformed argon2id hash")

// NewSecret returns a high-entropy URL-safe API secret.
func NewSecret() (string, error) {
	buf := make([]byte, secretLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// HashSecret derives an argon2id hash of the secret under a fresh random salt
// and returns it in PHC string format.
func HashSecret(secret string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(secret), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifySecret reports whether secret matches the PHC-encoded hash. The final
// comparison is constant-time; parse failures and empty inputs report false.
func VerifySecret(encoded, secret string) bool {
	if encoded == "" || secret == "" {
		return false
	}
	salt, key, memory, time, threads, err := parseHash(encoded)
	if err != nil {
		return false
	}
	derived := argon2.IDKey([]byte(secret), salt, time, memory, threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(derived, key) == 1
}

// NeedsRehash reports whether the stored hash was produced with parameters
// other than the current ones and should be regenerated.
func NeedsRehash(encoded string) bool {
	salt, key, memory, time, threads, err := parseHash(encoded)
	if err != nil {
		return true
	}
	return memory != argonMemory || time != argonTime || threads != argonThreads ||
		len(salt) != argonSaltLen || len(key) != argonKeyLen
}

// parseHash splits a PHC argon2id string into salt, key and parameters.
func parseHash(encoded string) (salt, key []byte, memory, time uint32, threads uint8, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, nil, 0, 0, 0, ErrMalformedHash
	}
	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, nil, 0, 0, 0, ErrMalformedHash
	}
	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return nil, nil, 0, 0, 0, ErrMalformedHash
	}
	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, 0, 0, 0, ErrMalformedHash
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, 0, 0, 0, ErrMalformedHash
	}
	return salt, key, memory, time, threads, nil
}
