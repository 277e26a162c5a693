package security

import (
	"github.com/matthewhartstonge/argon2"
)

// HashPassword derives an argon2id digest for storage. The cleartext is never
// persisted or returned to clients.
func HashPassword(password string) (string, error) {
	cfg := argon2.DefaultConfig()

	encoded, err := cfg.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// VerifyPassword checks a cleartext password against a stored digest.
func VerifyPassword(password, hash string) (bool, error) {
	return argon2.VerifyEncoded([]byte(password), []byte(hash))
}
