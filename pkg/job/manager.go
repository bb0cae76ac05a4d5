package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dmitrymomot/shorty/pkg/logger"
)

// Manager owns the cron scheduler and the registered tasks.
type Manager struct {
	cron   *cron.Cron
	logger *slog.Logger
	tasks  map[string]func(context.Context) error
	// ctx is cancelled by Stop so running tasks can give up early.
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
}

// NewManager validates every schedule and returns a stopped manager.
func NewManager(opts ...Option) (*Manager, error) {
	cfg := &config{logger: logger.NewNope(), location: time.UTC}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Manager{
		logger: cfg.logger,
		tasks:  make(map[string]func(context.Context) error, len(cfg.schedules)),
		cron: cron.New(
			cron.WithLocation(cfg.location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())

	for _, sched := range cfg.schedules {
		if _, ok := m.tasks[sched.name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTask, sched.name)
		}
		name := sched.name
		if _, err := m.cron.AddFunc(sched.schedule, func() { _ = m.run(m.ctx, name) }); err != nil {
			return nil, fmt.Errorf("%w: %q for %s: %v", ErrInvalidSchedule, sched.schedule, name, err)
		}
		m.tasks[name] = sched.handler
	}
	return m, nil
}

// Start begins firing schedules.
func (m *Manager) Start(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return ErrAlreadyStarted
	}
	m.cron.Start()
	m.started = true
	m.logger.Info("job manager started", slog.Int("tasks", len(m.tasks)))
	return nil
}

// Stop prevents new runs and waits for running tasks until ctx is done.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.started {
		return ErrNotStarted
	}
	m.started = false
	m.cancel()

	done := m.cron.Stop()
	select {
	case <-done.Done():
		m.logger.Info("job manager stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("job: stop: %w", ctx.Err())
	}
}

// Run executes the named task immediately, outside its schedule.
func (m *Manager) Run(ctx context.Context, name string) error {
	return m.run(ctx, name)
}

func (m *Manager) run(ctx context.Context, name string) error {
	handler, ok := m.tasks[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTask, name)
	}

	start := time.Now()
	m.logger.DebugContext(ctx, "executing task", slog.String("task", name))
	if err := handler(ctx); err != nil {
		m.logger.ErrorContext(ctx, "task failed", slog.String("task", name), slog.Any("error", err))
		return err
	}
	m.logger.DebugContext(ctx, "task completed", slog.String("task", name), slog.Duration("took", time.Since(start)))
	return nil
}

// Running reports whether the scheduler is started.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

// StartFunc adapts Start to a startup hook.
func (m *Manager) StartFunc() func(context.Context) error {
	return m.Start
}

// Shutdown adapts Stop to a shutdown hook.
func (m *Manager) Shutdown() func(context.Context) error {
	return m.Stop
}
