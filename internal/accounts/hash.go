package accounts

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Hasher derives and verifies one-way secret hashes.
type Hasher interface {
	// Hash returns a fresh random salt and the hash of secret under it.
	Hash(secret string) (salt, hash []byte, err error)

	// Verify reports whether secret hashes to hash under salt.
	Verify(secret string, salt, hash []byte) bool
}

// Argon2Hasher hashes secrets with argon2id.
type Argon2Hasher struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	KeyLen  uint32
	SaltLen int
}

// DefaultHasher returns the argon2id parameters used in production.
func DefaultHasher() Argon2Hasher {
	return Argon2Hasher{
		Time:    1,
		Memory:  64 * 1024,
		Threads: 4,
		KeyLen:  32,
		SaltLen: 32,
	}
}

func (h Argon2Hasher) Hash(secret string) ([]byte, []byte, error) {
	salt := make([]byte, h.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, h.derive(secret, salt), nil
}

func (h Argon2Hasher) Verify(secret string, salt, hash []byte) bool {
	return subtle.ConstantTimeCompare(h.derive(secret, salt), hash) == 1
}

func (h Argon2Hasher) derive(secret string, salt []byte) []byte {
	return argon2.IDKey([]byte(secret), salt, h.Time, h.Memory, h.Threads, h.KeyLen)
}
