package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"qmate-api/internal/model"
)

const (
	DefaultBcryptCost = 12
	maxPasswordBytes  = 72
)

// ErrMalformedDigest means the stored digest could not be parsed. It points at
// corrupt storage, never at a wrong password.
var ErrMalformedDigest = errors.New("stored password digest is malformed")

type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt digest. Two calls with the same input differ.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: password is required", model.ErrInvalidInput)
	}
	if len(plaintext) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password exceeds %d bytes", model.ErrInvalidInput, maxPasswordBytes)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A mismatch is (false, nil);
// an unparseable digest is (false, ErrMalformedDigest).
func (h *PasswordHasher) Verify(plaintext string, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %s", ErrMalformedDigest, bcryptFailure(err))
}

// bcryptFailure names the failure without echoing the digest back.
func bcryptFailure(err error) string {
	var (
		prefixErr  bcrypt.InvalidHashPrefixError
		costErr    bcrypt.InvalidCostError
		versionErr bcrypt.HashVersionTooNewError
	)
	switch {
	case errors.Is(err, bcrypt.ErrHashTooShort):
		return "digest too short"
	case errors.As(err, &prefixErr):
		return "invalid prefix"
	case errors.As(err, &costErr):
		return "invalid cost"
	case errors.As(err, &versionErr):
		return "unsupported version"
	default:
		return "unparseable"
	}
}
