package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/dmitrymomot/shorty/pkg/db"
)

// User is an account as listed in the backoffice.
type User struct {
	CreatedAt time.Time
	Username  string
	ID        int64
	Role      Role
}

// Credentials is the stored password hash of an account.
type Credentials struct {
	Hash string
	ID   int64
}

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	Username  string    `bun:"username,notnull"`
	Password  string    `bun:"password,notnull"`
	Role      string    `bun:"role,notnull"`
	ID        int64     `bun:"id,pk,autoincrement"`
}

func (r *userRow) toUser() User {
	return User{ID: r.ID, Username: r.Username, Role: ParseRole(r.Role), CreatedAt: r.CreatedAt}
}

type tokenRow struct {
	bun.BaseModel `bun:"table:user_tokens,alias:t"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	Token     string    `bun:"token,pk"`
	UserID    int64     `bun:"user_id,notnull"`
}

// Repository stores accounts and their login tokens.
type Repository struct {
	client *db.Client
	tx     bun.IDB
}

// NewRepository returns a Repository using client.
func NewRepository(client *db.Client) *Repository {
	return &Repository{client: client}
}

func (r *Repository) run(ctx context.Context, fn func(ctx context.Context, conn bun.IDB) error) error {
	if r.tx != nil {
		return fn(ctx, r.tx)
	}
	return r.client.WithConn(ctx, fn)
}

// InTx runs fn with a repository bound to a single transaction. Nested calls
// reuse the outer transaction.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context, repo *Repository) error) error {
	if r.tx != nil {
		return fn(ctx, r)
	}
	return r.client.WithTx(ctx, func(ctx context.Context, tx bun.IDB) error {
		return fn(ctx, &Repository{client: r.client, tx: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// FindIdentityByToken resolves a login token cookie to its account.
func (r *Repository) FindIdentityByToken(ctx context.Context, token string) (Identity, error) {
	row := new(userRow)
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		return conn.NewSelect().
			Model(row).
			Column("u.id", "u.username", "u.role").
			Join("JOIN user_tokens AS t ON t.user_id = u.id").
			Where("t.token = ?", token).
			Limit(1).
			Scan(ctx)
	})
	if err != nil {
		return Identity{}, fmt.Errorf("find identity by token: %w", notFound(err))
	}
	return Identity{ID: row.ID, Username: row.Username, Role: ParseRole(row.Role)}, nil
}

func (r *Repository) PasswordByUsername(ctx context.Context, username string) (Credentials, error) {
	row := new(userRow)
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		return conn.NewSelect().Model(row).Column("u.id", "u.password").Where("u.username = ?", username).Scan(ctx)
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("password by username: %w", notFound(err))
	}
	return Credentials{ID: row.ID, Hash: row.Password}, nil
}

func (r *Repository) AddToken(ctx context.Context, token string, userID int64) error {
	row := &tokenRow{Token: token, UserID: userID, CreatedAt: time.Now().UTC()}
	return r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		if _, err := conn.NewInsert().Model(row).Exec(ctx); err != nil {
			return fmt.Errorf("add token: %w", err)
		}
		return nil
	})
}

func (r *Repository) DeleteToken(ctx context.Context, token string) error {
	return r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		if _, err := conn.NewDelete().Model((*tokenRow)(nil)).Where("token = ?", token).Exec(ctx); err != nil {
			return fmt.Errorf("delete token: %w", err)
		}
		return nil
	})
}

// DeleteTokensByUser revokes every login of userID and returns how many
// tokens were removed.
func (r *Repository) DeleteTokensByUser(ctx context.Context, userID int64) (int64, error) {
	var n int64
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		res, err := conn.NewDelete().Model((*tokenRow)(nil)).Where("user_id = ?", userID).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete tokens by user: %w", err)
		}
		n, _ = res.RowsAffected()
		return nil
	})
	return n, err
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	var rows []userRow
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		return conn.NewSelect().Model(&rows).Column("u.id", "u.username", "u.role", "u.created_at").OrderExpr("u.id ASC").Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]User, 0, len(rows))
	for i := range rows {
		users = append(users, rows[i].toUser())
	}
	return users, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	row := new(userRow)
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		return conn.NewSelect().Model(row).Column("u.id", "u.username", "u.role", "u.created_at").Where("u.id = ?", id).Scan(ctx)
	})
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", notFound(err))
	}
	return row.toUser(), nil
}

func (r *Repository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var taken bool
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		var err error
		taken, err = conn.NewSelect().Model((*userRow)(nil)).Where("u.username = ?", username).Exists(ctx)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("username taken: %w", err)
	}
	return taken, nil
}

// Count returns the number of accounts.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		var err error
		n, err = conn.NewSelect().Model((*userRow)(nil)).Count(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Create inserts an account and returns its id. hash must already be encoded.
func (r *Repository) Create(ctx context.Context, username, hash string, role Role) (int64, error) {
	row := &userRow{Username: username, Password: hash, Role: role.String(), CreatedAt: time.Now().UTC()}
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		_, err := conn.NewInsert().Model(row).Returning("id").Exec(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return row.ID, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, id int64, username string, role Role) error {
	return r.update(ctx, "update profile", func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("username = ?", username).Set("role = ?", role.String()).Where("id = ?", id)
	})
}

func (r *Repository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.update(ctx, "update password", func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.Set("password = ?", hash).Where("id = ?", id)
	})
}

func (r *Repository) update(ctx context.Context, op string, build func(*bun.UpdateQuery) *bun.UpdateQuery) error {
	return r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		res, err := build(conn.NewUpdate().Model((*userRow)(nil))).Exec(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil
	})
}
