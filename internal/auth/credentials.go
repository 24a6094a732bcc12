package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters used for newly generated hashes. Verification reads the
// parameters embedded in the stored hash, so these can change without
// invalidating existing credentials.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltSize     = 16
)

// Credentials verifies login attempts against a single stored Argon2id hash.
// The hash is supplied by the operator through configuration; the running
// process never writes it anywhere.
type Credentials struct {
	encodedHash string
}

func NewCredentials(encodedHash string) *Credentials {
	return &Credentials{encodedHash: encodedHash}
}

// Verify reports whether plaintext matches the stored hash. A missing or
// unparseable stored hash fails closed: every attempt is rejected.
func (c *Credentials) Verify(plaintext string) bool {
	if c.encodedHash == "" || plaintext == "" {
		return false
	}
	ok, err := verifyHash(c.encodedHash, plaintext)
	if err != nil {
		return false
	}
	return ok
}

// Configured reports whether a credential has been set at all.
func (c *Credentials) Configured() bool {
	return c.encodedHash != ""
}

// GenerateHash produces a salted Argon2id hash of plaintext in the standard
// $argon2id$v=19$m=...,t=...,p=...$salt$hash encoding.
func GenerateHash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyHash(encoded, plaintext string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, fmt.Errorf("malformed argon2id hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("parse hash version: %w", err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var memory, timeCost uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return false, fmt.Errorf("parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("decode salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("decode hash: %w", err)
	}

	got := argon2.IDKey([]byte(plaintext), salt, timeCost, memory, threads, uint32(len(want)))

	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
