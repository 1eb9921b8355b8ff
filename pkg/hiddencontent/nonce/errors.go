package nonce

import "errors"

// Token validation errors
var (
	// ErrNoSecretKey is returned when no secret key is configured
	ErrNoSecretKey = errors.New("nonce: no secret key configured")

	// ErrMissingToken is returned for an empty token
	ErrMissingToken = errors.New("nonce: missing token")

	// ErrInvalidToken is returned when the token does not match the current
	// or previous tick, which includes expired tokens
	ErrInvalidToken = errors.New("nonce: invalid or expired token")
)
