package stack

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/dmitrymomot/shorty/pkg/db"
)

// Entry is one stored error report.
type Entry struct {
	ReportedAt time.Time
	Name       string
	Summary    string
	Stack      string
	ID         int64
}

type entryRow struct {
	bun.BaseModel `bun:"table:error_stack_log,alias:e"`

	ReportedAt time.Time `bun:"reported_at,notnull"`
	Name       string    `bun:"error_name,notnull"`
	Summary    string    `bun:"error_summary,notnull"`
	Stack      string    `bun:"error_stack,notnull"`
	ID         int64     `bun:"id,pk,autoincrement"`
}

func (r *entryRow) toEntry() Entry {
	return Entry{
		ID:         r.ID,
		Name:       r.Name,
		Summary:    r.Summary,
		Stack:      r.Stack,
		ReportedAt: r.ReportedAt,
	}
}

// Repository stores reports in error_stack_log.
type Repository struct {
	client *db.Client
	now    func() time.Time
}

// NewRepository returns a Repository using client.
func NewRepository(client *db.Client) *Repository {
	return &Repository{client: client, now: time.Now}
}

// Add stores a report stamped with the current time.
func (r *Repository) Add(ctx context.Context, data LogData) error {
	row := &entryRow{
		Name:       data.Name,
		Summary:    data.Summary,
		Stack:      data.Details,
		ReportedAt: r.now().UTC(),
	}
	err := r.client.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
		_, err := conn.NewInsert().Model(row).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("add error report: %w", err)
	}
	return nil
}

// List returns every report without its stack, newest first.
func (r *Repository) List(ctx context.Context) ([]Entry, error) {
	var rows []entryRow
	err := r.client.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
		return conn.NewSelect().
			Model(&rows).
			Column("e.id", "e.error_name", "e.error_summary", "e.reported_at").
			OrderExpr("e.reported_at DESC, e.id DESC").
			Scan(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("list error reports: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].toEntry())
	}
	return entries, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Entry, error) {
	row := new(entryRow)
	err := r.client.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
		return conn.NewSelect().Model(row).Where("e.id = ?", id).Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get error report: %w", err)
	}
	return row.toEntry(), nil
}

// PurgeBefore deletes reports older than cutoff and returns how many went.
func (r *Repository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var n int64
	err := r.client.WithConn(ctx, func(ctx context.Context, conn bun.IDB) error {
		res, err := conn.NewDelete().
			Model((*entryRow)(nil)).
			Where("reported_at < ?", cutoff.UTC()).
			Exec(ctx)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("purge error reports: %w", err)
	}
	return n, nil
}
