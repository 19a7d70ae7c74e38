package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const unusablePrefix = "!"

var ErrInvalidHash = errors.New("invalid hash format")

// argonParams are the Argon2id settings recorded in every encoded hash
type argonParams struct {
	memory      uint32
	time        uint32
	parallelism uint8
	saltLength  int
	keyLength   uint32
}

var defaultParams = argonParams{memory: 64 * 1024, time: 3, parallelism: 2, saltLength: 16, keyLength: 32}

// HashPassword hashes a password using Argon2id.
// Format: $argon2id$v=19$m=65536,t=3,p=2$salt$hash
func HashPassword(password string) (string, error) {
	p := defaultParams
	salt := make([]byte, p.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.parallelism, p.keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// decodeHash reads the parameters, salt and key back out of an encoded hash
func decodeHash(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrInvalidHash
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.parallelism); err != nil {
		return p, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("%w: key: %v", ErrInvalidHash, err)
	}
	p.saltLength = len(salt)
	p.keyLength = uint32(len(key))
	return p, salt, key, nil
}

// VerifyPassword verifies a password against a hash, using the parameters
// stored in the hash. An unusable credential never verifies.
func VerifyPassword(password, hashedPassword string) (bool, error) {
	if !IsUsablePassword(hashedPassword) {
		return false, nil
	}
	p, salt, key, err := decodeHash(hashedPassword)
	if err != nil {
		return false, err
	}
	computed := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.parallelism, p.keyLength)
	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}

// UnusablePassword returns a credential marker that can never match any password
func UnusablePassword() string {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return unusablePrefix
	}
	return unusablePrefix + hex.EncodeToString(b)
}

// IsUsablePassword reports whether hashedPassword can ever authenticate
func IsUsablePassword(hashedPassword string) bool {
	return hashedPassword != "" && !strings.HasPrefix(hashedPassword, unusablePrefix)
}
