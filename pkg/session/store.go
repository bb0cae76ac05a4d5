package session

import "context"

// Store persists sessions. SQLiteStore and RedisStore implement it.
//
// Get returns ErrNotFound for an unknown token and ErrExpired for a session
// past ExpiresAt.
type Store interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// DeleteByUserID drops every session bound to userID.
	DeleteByUserID(ctx context.Context, userID string) error
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*RedisStore)(nil)
)
