package shortlink

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/dmitrymomot/shorty/pkg/db"
)

// MaxPathLength is the longest short path that can be stored or looked up.
const MaxPathLength = 100

// Link is a short path and the URL it redirects to.
type Link struct {
	CreatedAt time.Time
	Path      string
	Redirect  string
	// Creator is the username of CreatedBy, filled by List.
	Creator   string
	ID        int64
	CreatedBy int64
}

type linkRow struct {
	bun.BaseModel `bun:"table:url_redirects,alias:r"`

	CreatedAt time.Time `bun:"created_at,notnull"`
	Path      string    `bun:"url_path,notnull"`
	Redirect  string    `bun:"url_redirect,notnull"`
	Creator   string    `bun:"creator,scanonly"`
	ID        int64     `bun:"id,pk,autoincrement"`
	CreatedBy int64     `bun:"created_by,notnull"`
}

func (r *linkRow) toLink() Link {
	return Link{
		ID:        r.ID,
		Path:      r.Path,
		Redirect:  r.Redirect,
		CreatedAt: r.CreatedAt,
		CreatedBy: r.CreatedBy,
		Creator:   r.Creator,
	}
}

// Repository stores short links in url_redirects.
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

// InTx runs fn with a repository bound to one transaction.
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

// List returns every link with its creator's username, oldest first.
func (r *Repository) List(ctx context.Context) ([]Link, error) {
	var rows []linkRow
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		return conn.NewSelect().
			Model(&rows).
			Column("r.id", "r.url_path", "r.url_redirect", "r.created_at", "r.created_by").
			ColumnExpr("COALESCE(u.username, '') AS creator").
			Join("LEFT JOIN users AS u ON u.id = r.created_by").
			OrderExpr("r.id ASC").
			Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	links := make([]Link, 0, len(rows))
	for i := range rows {
		links = append(links, rows[i].toLink())
	}
	return links, nil
}

// Get returns the link with id or ErrNotFound.
func (r *Repository) Get(ctx context.Context, id int64) (Link, error) {
	row := new(linkRow)
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		return conn.NewSelect().
			Model(row).
			Column("r.id", "r.url_path", "r.url_redirect", "r.created_at", "r.created_by").
			Where("r.id = ?", id).
			Scan(ctx)
	})
	if err != nil {
		return Link{}, fmt.Errorf("get link: %w", notFound(err))
	}
	return row.toLink(), nil
}

// Redirect returns the target stored for path.
func (r *Repository) Redirect(ctx context.Context, path string) (string, error) {
	var target string
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		return conn.NewSelect().
			Model((*linkRow)(nil)).
			Column("r.url_redirect").
			Where("r.url_path = ?", path).
			Limit(1).
			Scan(ctx, &target)
	})
	if err != nil {
		return "", fmt.Errorf("redirect for path: %w", notFound(err))
	}
	return target, nil
}

// PathTaken reports whether a link other than exceptID uses path.
func (r *Repository) PathTaken(ctx context.Context, path string, exceptID int64) (bool, error) {
	var taken bool
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		var err error
		taken, err = conn.NewSelect().
			Model((*linkRow)(nil)).
			Where("r.url_path = ?", path).
			Where("r.id != ?", exceptID).
			Exists(ctx)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("path taken: %w", err)
	}
	return taken, nil
}

func (r *Repository) Create(ctx context.Context, path, redirect string, createdBy int64) (int64, error) {
	row := &linkRow{Path: path, Redirect: redirect, CreatedBy: createdBy, CreatedAt: time.Now().UTC()}
	err := r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		_, err := conn.NewInsert().Model(row).Returning("id").Exec(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create link: %w", err)
	}
	return row.ID, nil
}

func (r *Repository) Update(ctx context.Context, id int64, path, redirect string) error {
	return r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		res, err := conn.NewUpdate().
			Model((*linkRow)(nil)).
			Set("url_path = ?", path).
			Set("url_redirect = ?", redirect).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update link: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("update link: %w", ErrNotFound)
		}
		return nil
	})
}

// Delete removes the link. A missing id yields ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return r.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		res, err := conn.NewDelete().Model((*linkRow)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return fmt.Errorf("delete link: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("delete link: %w", ErrNotFound)
		}
		return nil
	})
}
