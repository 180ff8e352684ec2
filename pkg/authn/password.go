// Package authn provides password hashing and verification for configured
// users.
//
// Each user record carries an algorithm tag alongside the stored hash, so
// deployments can mix schemes (and migrate between them) without touching
// the access layer, which treats verification as an opaque boolean.
package authn

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// Supported algorithm tags.
const (
	AlgorithmArgon2 = "argon2"
	AlgorithmBcrypt = "bcrypt"
	AlgorithmSHA256 = "sha256"
	AlgorithmPlain  = "plain"
)

// bcryptCost is the work factor used when hashing new bcrypt passwords.
const bcryptCost = 12

// Verify checks a password against a stored hash using the given algorithm
// tag (case-insensitive).
//
// Unknown algorithms and malformed hashes verify as false rather than
// erroring: a misconfigured user record must never become an
// authentication bypass.
func Verify(password, hash, algorithm string) bool {
	switch strings.ToLower(algorithm) {
	case AlgorithmArgon2:
		match, err := argon2id.ComparePasswordAndHash(password, hash)
		return err == nil && match
	case AlgorithmBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	case AlgorithmSHA256:
		computed := sha256Hex(password)
		return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(hash))) == 1
	case AlgorithmPlain:
		return subtle.ConstantTimeCompare([]byte(password), []byte(hash)) == 1
	default:
		return false
	}
}

// Hash produces a stored-hash string for the given algorithm tag
// (case-insensitive). Returns an error for unknown algorithms.
func Hash(password, algorithm string) (string, error) {
	switch strings.ToLower(algorithm) {
	case AlgorithmArgon2:
		return argon2id.CreateHash(password, argon2id.DefaultParams)
	case AlgorithmBcrypt:
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
		if err != nil {
			return "", fmt.Errorf("bcrypt hashing failed: %w", err)
		}
		return string(hash), nil
	case AlgorithmSHA256:
		return sha256Hex(password), nil
	case AlgorithmPlain:
		return password, nil
	default:
		return "", fmt.Errorf("unknown password algorithm %q", algorithm)
	}
}

func sha256Hex(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
