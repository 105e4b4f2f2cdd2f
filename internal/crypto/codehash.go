// Package crypto implements hashing of verification codes at rest.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashCode returns the Argon2id hash of code using the provided salt.
// Codes are short-lived secrets; they never land in the database in
// plaintext.
func HashCode(code, salt []byte) []byte {
	return argon2.IDKey(code, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyCode verifies code against the expected Argon2id hash and salt.
func VerifyCode(code, salt, expected []byte) bool {
	got := HashCode(code, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
