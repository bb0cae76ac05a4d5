package session

import "errors"

var (
	// ErrNotConfigured means the app was built without WithSession.
	ErrNotConfigured = errors.New("session: not configured")

	ErrNotFound     = errors.New("session: not found")
	ErrExpired      = errors.New("session: expired")
	ErrInvalidToken = errors.New("session: invalid token")
	ErrTypeMismatch = errors.New("session: value type mismatch")
	ErrEncode       = errors.New("session: failed to encode values")
	ErrDecode       = errors.New("session: failed to decode values")
)
