package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters. The salt is stored alongside the hash in one
// base64-encoded blob.
const (
	saltLength  = 16
	iterations  = 3
	memory      = 64 * 1024
	parallelism = 2
	keyLength   = 32
)

// HashPassword derives an argon2id hash with a fresh random salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("error generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, keyLength)

	saltAndHash := make([]byte, 0, len(salt)+len(hash))
	saltAndHash = append(saltAndHash, salt...)
	saltAndHash = append(saltAndHash, hash...)

	return base64.StdEncoding.EncodeToString(saltAndHash), nil
}

// VerifyPassword re-derives the hash under the stored salt and compares in
// constant time.
func VerifyPassword(password, encodedHash string) bool {
	saltAndHash, err := base64.StdEncoding.DecodeString(encodedHash)
	if err != nil {
		return false
	}
	if len(saltAndHash) < saltLength {
		return false
	}

	salt := saltAndHash[:saltLength]
	storedHash := saltAndHash[saltLength:]

	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, keyLength)

	return subtle.ConstantTimeCompare(hash, storedHash) == 1
}
