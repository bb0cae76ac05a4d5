package session

import (
	"fmt"
	"time"
)

// Session is the server-side state behind the session cookie. The backoffice
// keeps flash messages, the CSRF token and the preferred language in Values.
type Session struct {
	CreatedAt    time.Time
	LastActiveAt time.Time
	ExpiresAt    time.Time

	// UserID is set once the session is bound to an account.
	UserID *string
	// Values must survive a JSON round trip.
	Values    map[string]any
	ID        string
	Token     string
	IP        string
	UserAgent string

	dirty bool
	fresh bool
}

// New returns an unsaved session expiring at expiresAt.
func New(id, token string, expiresAt time.Time) *Session {
	now := time.Now()
	return &Session{
		ID:           id,
		Token:        token,
		Values:       map[string]any{},
		CreatedAt:    now,
		LastActiveAt: now,
		ExpiresAt:    expiresAt,
		dirty:        true,
		fresh:        true,
	}
}

func (s *Session) IsAuthenticated() bool {
	return s.UserID != nil && *s.UserID != ""
}

func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

func (s *Session) SetValue(key string, val any) {
	if s.Values == nil {
		s.Values = map[string]any{}
	}
	s.Values[key] = val
	s.dirty = true
}

func (s *Session) GetValue(key string) (any, bool) {
	val, ok := s.Values[key]
	return val, ok
}

// DeleteValue removes key. Deleting a missing key leaves the session clean.
func (s *Session) DeleteValue(key string) {
	if _, ok := s.Values[key]; !ok {
		return
	}
	delete(s.Values, key)
	s.dirty = true
}

// IsDirty reports unsaved changes.
func (s *Session) IsDirty() bool { return s.dirty }
func (s *Session) MarkDirty() { s.dirty = true }
func (s *Session) ClearDirty() { s.dirty = false }

// IsNew reports a session that was never persisted.
func (s *Session) IsNew() bool { return s.fresh }
func (s *Session) ClearNew() { s.fresh = false }

// Value returns the value under key as T.
func Value[T any](s *Session, key string) (T, error) {
	var zero T
	if s == nil {
		return zero, ErrNotFound
	}
	val, ok := s.Values[key]
	if !ok {
		return zero, ErrNotFound
	}
	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T", ErrTypeMismatch, key, val)
	}
	return typed, nil
}

// ValueOr is Value with a fallback for missing or mistyped values.
func ValueOr[T any](s *Session, key string, fallback T) T {
	if v, err := Value[T](s, key); err == nil {
		return v
	}
	return fallback
}
