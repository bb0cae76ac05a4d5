package stack

import (
	"context"
	"time"
)

// DefaultRetention is how long reports are kept by Clear.
const DefaultRetention = 30 * 24 * time.Hour

// DefaultPurgeSchedule runs the purge once a day at midnight.
const DefaultPurgeSchedule = "@daily"

// Service is the read and maintenance side of the error log.
type Service struct {
	repo      *Repository
	now       func() time.Time
	retention time.Duration
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithRetention overrides DefaultRetention.
func WithRetention(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.retention = d
		}
	}
}

// NewService returns a Service backed by repo.
func NewService(repo *Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, now: time.Now, retention: DefaultRetention}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the stored errors, newest first.
func (s *Service) List(ctx context.Context) ([]Entry, error) {
	return s.repo.List(ctx)
}

// Get returns one entry or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (Entry, error) {
	return s.repo.Get(ctx, id)
}

// Clear deletes reports older than the retention period.
func (s *Service) Clear(ctx context.Context) (int64, error) {
	return s.repo.PurgeBefore(ctx, s.now().Add(-s.retention))
}

// PurgeTask clears old reports on a schedule. It satisfies the job manager's
// task shape.
type PurgeTask struct {
	svc      *Service
	schedule string
}

// NewPurgeTask runs svc.Clear on schedule, DefaultPurgeSchedule when empty.
func NewPurgeTask(svc *Service, schedule string) *PurgeTask {
	if schedule == "" {
		schedule = DefaultPurgeSchedule
	}
	return &PurgeTask{svc: svc, schedule: schedule}
}

func (t *PurgeTask) Name() string     { return "purge_error_stack" }
func (t *PurgeTask) Schedule() string { return t.schedule }

func (t *PurgeTask) Handle(ctx context.Context) error {
	_, err := t.svc.Clear(ctx)
	return err
}
