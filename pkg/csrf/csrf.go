// Package csrf issues and verifies session-bound CSRF tokens.
//
// A token is minted once per session, stored under SessionKey and echoed by
// the client either in the HeaderName header or in the FormField form field.
package csrf

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"net/http"
	"time"
)

const (
	// SessionKey is the session value holding the token.
	SessionKey = "csrf_token"
	// FormField is the form field carrying the token.
	FormField = "csrf_token"
	// HeaderName is the request header carrying the token.
	HeaderName = "X-Csrf-Token"
)

var (
	ErrTokenMissing  = errors.New("csrf: token missing")
	ErrTokenMismatch = errors.New("csrf: token mismatch")
	ErrNoSession     = errors.New("csrf: session missing")
)

// Store is the subset of a session the manager needs.
type Store interface {
	GetValue(key string) (any, bool)
	SetValue(key string, val any)
}

// Manager mints and checks tokens with an application secret.
type Manager struct {
	secret []byte
}

// New returns a Manager keyed by secret.
func New(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

// EnsureToken returns the session token, minting one on first use.
func (m *Manager) EnsureToken(sessionID string, s Store) (string, error) {
	if s == nil {
		return "", ErrNoSession
	}
	if token := stored(s); token != "" {
		return token, nil
	}
	token, err := m.generate(sessionID)
	if err != nil {
		return "", err
	}
	s.SetValue(SessionKey, token)
	return token, nil
}

// Verify compares token with the session token in constant time.
func (m *Manager) Verify(s Store, token string) error {
	if s == nil {
		return ErrTokenMissing
	}
	expected := stored(s)
	if expected == "" || token == "" {
		return ErrTokenMissing
	}
	if !hmac.Equal([]byte(expected), []byte(token)) {
		return ErrTokenMismatch
	}
	return nil
}

// SafeMethod reports whether method never changes state.
func SafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	default:
		return false
	}
}

func stored(s Store) string {
	v, ok := s.GetValue(SessionKey)
	if !ok {
		return ""
	}
	token, _ := v.(string)
	return token
}

func (m *Manager) generate(sessionID string) (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, m.secret)
	_, _ = mac.Write([]byte(sessionID))
	_, _ = mac.Write([]byte{'|'})
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(time.Now().UnixNano()))
	_, _ = mac.Write(buf)
	_, _ = mac.Write(nonce)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}
