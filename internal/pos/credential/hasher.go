// Package credential hashes operator passwords and resolves logins to users.
package credential

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher names
const (
	HasherSHA256 = "sha256"
	HasherBcrypt = "bcrypt"
)

// Hasher turns a password into a stored digest and checks candidates against it
type Hasher interface {
	Hash(password string) (string, error)
	Verify(digest, password string) bool
}

// SHA256Hasher produces the lowercase hex SHA-256 of the password.
// The digest is unsalted, so equal passwords share a digest.
type SHA256Hasher struct{}

// Hash returns the hex digest
func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Verify compares in constant time
func (h SHA256Hasher) Verify(digest, password string) bool {
	candidate, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(digest)) == 1
}

// BcryptHasher stores salted bcrypt digests
type BcryptHasher struct {
	Cost int
}

// Hash returns a bcrypt digest
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks password against a bcrypt digest
func (BcryptHasher) Verify(digest, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

// NewHasher selects a hasher by name
func NewHasher(name string) (Hasher, error) {
	switch name {
	case HasherSHA256, "":
		return SHA256Hasher{}, nil
	case HasherBcrypt:
		return BcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hasher %q", name)
	}
}
