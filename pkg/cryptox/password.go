package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

var (
	ErrPasswordMismatch = errors.New("password does not match")
	ErrInvalidHash      = errors.New("invalid hash format")
)

// Argon2 hashes passwords into PHC-format Argon2id strings. The pepper is
// appended to every password before hashing and never stored alongside it.
type Argon2 struct {
	pepper string
}

// NewArgon2 returns a hasher bound to pepper. An empty pepper is allowed.
func NewArgon2(pepper string) *Argon2 {
	return &Argon2{pepper: pepper}
}

// Hash generates a PHC-format Argon2id hash string including salt and parameters.
func (a *Argon2) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey(
		[]byte(password+a.pepper),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)
	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	// Return PHC-style encoded string
	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		b64Salt,
		b64Hash,
	), nil
}

// Compare checks a plaintext password against a PHC-style Argon2id hash.
// It returns ErrPasswordMismatch for a wrong password and ErrInvalidHash
// when the stored value cannot be parsed.
func (a *Argon2) Compare(password, encodedHash string) error {
	// Validate structure: ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return fmt.Errorf("%w: expected 6 parts", ErrInvalidHash)
	}
	if parts[1] != "argon2id" {
		return fmt.Errorf("%w: not argon2id", ErrInvalidHash)
	}
	if parts[2] != "v=19" {
		return fmt.Errorf("%w: wrong version", ErrInvalidHash)
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("%w: failed to parse parameters: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("%w: failed to decode salt: %v", ErrInvalidHash, err)
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("%w: failed to decode hash: %v", ErrInvalidHash, err)
	}

	computed := argon2.IDKey(
		[]byte(password+a.pepper),
		salt,
		iters,
		mem,
		par,
		uint32(len(expectedHash)), // #nosec G115 - If this overflows we have bigger problems
	)

	if subtle.ConstantTimeCompare(computed, expectedHash) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

// DummyHash returns a well-formed hash of a random password. Comparing
// against it costs the same as a real comparison and never succeeds in
// practice, which keeps unknown-user logins as slow as wrong-password ones.
func (a *Argon2) DummyHash() string {
	h, err := a.Hash(MustGenerateToken(TokenSize128))
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to build dummy hash: %v", err))
	}
	return h
}

// GeneratePassword returns a random 16 character alphanumeric password.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 16
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
