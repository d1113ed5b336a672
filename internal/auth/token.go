package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// ErrMalformed is returned when a token cannot be parsed, carries no
	// subject name or lacks a required claim.
	ErrMalformed TokenError = "malformed token"
	// ErrBadSignature is returned when the signature does not match the key
	// or the token was signed with anything but HS256.
	ErrBadSignature TokenError = "bad token signature"
	// ErrExpired is returned when the token carries an expiry in the past.
	ErrExpired TokenError = "token expired"
)

// TokenError is the error type returned by [Codec.Verify].
type TokenError string

// Error satisfies [error].
func (e TokenError) Error() string { return string(e) }

// Claims is the payload of a session token.
type Claims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Codec issues and verifies HS256 session tokens. It performs no I/O.
type Codec struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewCodec returns a Codec signing with key. A zero ttl issues tokens without
// an expiry.
func NewCodec(key []byte, ttl time.Duration) *Codec {
	return &Codec{key: key, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for name. Every call yields a distinct token.
func (c *Codec) Issue(name string) (string, error) {
	now := c.now()
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if c.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(c.ttl))
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token signature and expiry and returns the subject name.
// With a ttl configured, tokens without an expiry are rejected. Errors wrap
// one of [ErrMalformed], [ErrBadSignature] or [ErrExpired].
func (c *Codec) Verify(tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	}
	if c.ttl > 0 {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (any, error) { return c.key, nil },
		opts...,
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", fmt.Errorf("%w: %w", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return "", fmt.Errorf("%w: %w", ErrBadSignature, err)
	default:
		return "", fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if claims.Name == "" {
		return "", fmt.Errorf("%w: no name claim", ErrMalformed)
	}
	return claims.Name, nil
}
