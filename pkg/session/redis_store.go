package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "session:"

// RedisStore keeps sessions as JSON documents with a TTL matching their expiry.
//
// Keys:
//
//	<prefix>token:<token> -> session JSON
//	<prefix>id:<id>       -> current token
//	<prefix>user:<userID> -> set of session ids
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore returns a Store backed by Redis.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

type redisRecord struct {
	CreatedAt    time.Time      `json:"created_at"`
	LastActiveAt time.Time      `json:"last_active_at"`
	ExpiresAt    time.Time      `json:"expires_at"`
	UserID       *string        `json:"user_id,omitempty"`
	Values       map[string]any `json:"values"`
	ID           string         `json:"id"`
	Token        string         `json:"token"`
	IP           string         `json:"ip"`
	UserAgent    string         `json:"user_agent"`
}

func (s *RedisStore) tokenKey(token string) string { return s.prefix + "token:" + token }
func (s *RedisStore) idKey(id string) string       { return s.prefix + "id:" + id }
func (s *RedisStore) userKey(userID string) string { return s.prefix + "user:" + userID }

func (s *RedisStore) write(ctx context.Context, sess *Session, oldToken string) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrExpired
	}

	data, err := json.Marshal(redisRecord{
		ID:           sess.ID,
		Token:        sess.Token,
		UserID:       sess.UserID,
		Values:       sess.Values,
		IP:           sess.IP,
		UserAgent:    sess.UserAgent,
		CreatedAt:    sess.CreatedAt,
		LastActiveAt: sess.LastActiveAt,
		ExpiresAt:    sess.ExpiresAt,
	})
	if err != nil {
		return errors.Join(ErrEncode, err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if oldToken != "" && oldToken != sess.Token {
			pipe.Del(ctx, s.tokenKey(oldToken))
		}
		pipe.Set(ctx, s.tokenKey(sess.Token), data, ttl)
		pipe.Set(ctx, s.idKey(sess.ID), sess.Token, ttl)
		if sess.UserID != nil && *sess.UserID != "" {
			pipe.SAdd(ctx, s.userKey(*sess.UserID), sess.ID)
			pipe.Expire(ctx, s.userKey(*sess.UserID), ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (s *RedisStore) Create(ctx context.Context, sess *Session) error {
	return s.write(ctx, sess, "")
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	data, err := s.client.Get(ctx, s.tokenKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if rec.Values == nil {
		rec.Values = make(map[string]any)
	}

	sess := &Session{
		ID:           rec.ID,
		Token:        rec.Token,
		UserID:       rec.UserID,
		Values:       rec.Values,
		IP:           rec.IP,
		UserAgent:    rec.UserAgent,
		CreatedAt:    rec.CreatedAt,
		LastActiveAt: rec.LastActiveAt,
		ExpiresAt:    rec.ExpiresAt,
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return sess, nil
}

func (s *RedisStore) Update(ctx context.Context, sess *Session) error {
	oldToken, err := s.client.Get(ctx, s.idKey(sess.ID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return fmt.Errorf("update session: %w", err)
	}
	sess.LastActiveAt = time.Now()
	return s.write(ctx, sess, oldToken)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	token, err := s.client.Get(ctx, s.idKey(id)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete session: %w", err)
	}

	keys := []string{s.idKey(id)}
	if token != "" {
		keys = append(keys, s.tokenKey(token))
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteByUserID(ctx context.Context, userID string) error {
	ids, err := s.client.SMembers(ctx, s.userKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	for _, id := range ids {
		if err := s.Delete(ctx, id); err != nil {
			return err
		}
	}
	if err := s.client.Del(ctx, s.userKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}
