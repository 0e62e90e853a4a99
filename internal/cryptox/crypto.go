// Package cryptox holds the credential hashing primitives used for volunteer
// passwords. Hashes are bcrypt, salted per call, so hashing the same password
// twice yields different strings.
package cryptox

import (
	"errors"

	"github.com/dmitrijs2005/volunteerhub/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt work factor used when none is configured.
const DefaultCost = 16

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password must not be empty")

// HashPassword derives a storable bcrypt hash from password using the given
// work factor. Out-of-range costs are rejected by bcrypt itself.
//
// Example:
//
//	hash, err := HashPassword("secret1", DefaultCost)
//	if err != nil {
//	    return err
//	}
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	b := []byte(password)
	defer common.WipeByteArray(b)

	h, err := bcrypt.GenerateFromPassword(b, cost)
	if err != nil {
		return "", err
	}

	return string(h), nil
}

// ComparePassword reports whether candidate matches the stored hash.
// A mismatch is not an error; a malformed hash is.
func ComparePassword(candidate, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, err
}
