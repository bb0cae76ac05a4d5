package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/dmitrymomot/shorty/pkg/db"
)

type sessionRow struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	CreatedAt    time.Time `bun:"created_at,notnull"`
	LastActiveAt time.Time `bun:"last_active_at,notnull"`
	ExpiresAt    time.Time `bun:"expires_at,notnull"`
	UserID       *string   `bun:"user_id"`
	ID           string    `bun:"id,pk"`
	Token        string    `bun:"token,notnull"`
	Values       string    `bun:"values,notnull"`
	IP           string    `bun:"ip,notnull"`
	UserAgent    string    `bun:"user_agent,notnull"`
}

func toRow(s *Session) (*sessionRow, error) {
	values, err := json.Marshal(s.Values)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return &sessionRow{
		ID:           s.ID,
		Token:        s.Token,
		UserID:       s.UserID,
		Values:       string(values),
		IP:           s.IP,
		UserAgent:    s.UserAgent,
		CreatedAt:    s.CreatedAt.UTC(),
		LastActiveAt: s.LastActiveAt.UTC(),
		ExpiresAt:    s.ExpiresAt.UTC(),
	}, nil
}

func (r *sessionRow) toSession() (*Session, error) {
	values := make(map[string]any)
	if r.Values != "" {
		if err := json.Unmarshal([]byte(r.Values), &values); err != nil {
			return nil, errors.Join(ErrDecode, err)
		}
	}
	return &Session{
		ID:           r.ID,
		Token:        r.Token,
		UserID:       r.UserID,
		Values:       values,
		IP:           r.IP,
		UserAgent:    r.UserAgent,
		CreatedAt:    r.CreatedAt,
		LastActiveAt: r.LastActiveAt,
		ExpiresAt:    r.ExpiresAt,
	}, nil
}

// SQLiteStore keeps sessions in the application database.
type SQLiteStore struct {
	client *db.Client
}

// NewSQLiteStore returns a Store backed by the sessions table.
func NewSQLiteStore(client *db.Client) *SQLiteStore {
	return &SQLiteStore{client: client}
}

func (s *SQLiteStore) Create(ctx context.Context, sess *Session) error {
	row, err := toRow(sess)
	if err != nil {
		return err
	}
	return s.client.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
		if _, err := conn.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) Get(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	row := new(sessionRow)
	err := s.client.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
		return conn.NewSelect().Model(row).Where("token = ?", token).Scan(ctx)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	sess, err := row.toSession()
	if err != nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, ErrExpired
	}
	return sess, nil
}

func (s *SQLiteStore) Update(ctx context.Context, sess *Session) error {
	sess.LastActiveAt = time.Now()
	row, err := toRow(sess)
	if err != nil {
		return err
	}
	return s.client.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
		res, err := conn.NewUpdate().Model(row).WherePK().Exec(ctx)
		if err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	return s.client.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
		if _, err := conn.NewDelete().Model((*sessionRow)(nil)).Where("id = ?", id).Exec(ctx); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) DeleteByUserID(ctx context.Context, userID string) error {
	return s.client.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
		if _, err := conn.NewDelete().Model((*sessionRow)(nil)).Where("user_id = ?", userID).Exec(ctx); err != nil {
			return fmt.Errorf("delete user sessions: %w", err)
		}
		return nil
	})
}

// DeleteExpired removes sessions whose expiry is before now.
func (s *SQLiteStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := s.client.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
		res, err := conn.NewDelete().Model((*sessionRow)(nil)).Where("expires_at < ?", now.UTC()).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete expired sessions: %w", err)
		}
		n, _ = res.RowsAffected()
		return nil
	})
	return n, err
}
