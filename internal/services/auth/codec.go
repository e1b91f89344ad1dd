package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySecret is returned when a Codec is built without a signing secret
var ErrEmptySecret = errors.New("signing secret must not be empty")

// Codec signs and verifies claim sets with a shared HMAC secret.
// It is stateless and safe for concurrent use.
type Codec struct {
	secret []byte
}

// NewCodec creates a Codec for the given secret
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return &Codec{secret: s}, nil
}

// Sign encodes claims as an HS256 JWT
func (c *Codec) Sign(claims Claims) (string, error) {
	if _, err := ParseLevel(string(claims.Level)); err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, toTokenClaims(claims))
	return token.SignedString(c.secret)
}

// Verify checks the token's signature and structure and returns its claims.
// Expiry and tier-specific fields are not checked here.
func (c *Codec) Verify(token string) (Claims, error) {
	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}

	claims, err := parsed.toClaims()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	return claims, nil
}
