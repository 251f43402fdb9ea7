package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"qmate-api/internal/model"
)

type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// Validation failures. All of them satisfy errors.Is(err, model.ErrTokenInvalid).
var (
	ErrTokenExpired   = fmt.Errorf("%w: expired", model.ErrTokenInvalid)
	ErrTokenSignature = fmt.Errorf("%w: signature mismatch", model.ErrTokenInvalid)
	ErrTokenMalformed = fmt.Errorf("%w: malformed", model.ErrTokenInvalid)
)

// Claims is the decoded, verified content of a token.
type Claims struct {
	Subject   string
	Email     string
	Role      string
	Kind      TokenKind
	ExpiresAt time.Time
}

type tokenClaims struct {
	Email string    `json:"email"`
	Role  string    `json:"role"`
	Type  TokenKind `json:"type"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies tokens with a single symmetric secret.
// It is immutable after construction.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

func NewTokenCodec(secret string, algorithm string) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token signing secret is required")
	}

	method, err := signingMethod(algorithm)
	if err != nil {
		return nil, err
	}

	return &TokenCodec{secret: []byte(secret), method: method, now: time.Now}, nil
}

func signingMethod(algorithm string) (jwt.SigningMethod, error) {
	switch strings.ToUpper(strings.TrimSpace(algorithm)) {
	case "", "HS256":
		return jwt.SigningMethodHS256, nil
	case "HS384":
		return jwt.SigningMethodHS384, nil
	case "HS512":
		return jwt.SigningMethodHS512, nil
	default:
		return nil, fmt.Errorf("unsupported signing algorithm %q", algorithm)
	}
}

func (c *TokenCodec) Algorithm() string {
	return c.method.Alg()
}

// Issue signs claims as a token of the given kind expiring ttl from now.
// Any ExpiresAt or Kind already present on claims is ignored.
func (c *TokenCodec) Issue(claims Claims, kind TokenKind, ttl time.Duration) (string, error) {
	if kind != TokenAccess && kind != TokenRefresh {
		return "", fmt.Errorf("unknown token kind %q", kind)
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}

	now := c.now().UTC()
	token := jwt.NewWithClaims(c.method, tokenClaims{
		Email: claims.Email,
		Role:  claims.Role,
		Type:  kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// Validate verifies signature and expiry before reading any claim.
func (c *TokenCodec) Validate(tokenString string) (Claims, error) {
	parsed := &tokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, parsed, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		// Reject non-canonical base64url so no two encodings share a signature.
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrTokenSignature
		default:
			return Claims{}, ErrTokenMalformed
		}
	}

	if parsed.Type != TokenAccess && parsed.Type != TokenRefresh {
		return Claims{}, ErrTokenMalformed
	}

	return Claims{
		Subject:   parsed.Subject,
		Email:     parsed.Email,
		Role:      parsed.Role,
		Kind:      parsed.Type,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}
