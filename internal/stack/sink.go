package stack

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/shorty/pkg/logger"
)

// DefaultQueueSize bounds the reports waiting to be written.
const DefaultQueueSize = 128

// LogData is one error report.
type LogData struct {
	Name    string
	Summary string
	Details string
}

// Store persists reports. *Repository implements it.
type Store interface {
	Add(ctx context.Context, data LogData) error
}

type report struct {
	ctx  context.Context
	data LogData
}

// Sink writes reports on a background goroutine so the request that failed
// does not wait on the database.
type Sink struct {
	store  Store
	logger *slog.Logger
	queue  chan report
	done   chan struct{}

	mu     sync.RWMutex
	closed bool
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithQueueSize overrides DefaultQueueSize.
func WithQueueSize(n int) SinkOption {
	return func(s *Sink) {
		if n > 0 {
			s.queue = make(chan report, n)
		}
	}
}

// WithSinkLogger sets the logger used for write failures.
func WithSinkLogger(l *slog.Logger) SinkOption {
	return func(s *Sink) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSink starts the writer goroutine. Call Close to stop it.
func NewSink(store Store, opts ...SinkOption) *Sink {
	s := &Sink{
		store:  store,
		logger: logger.NewNope(),
		queue:  make(chan report, DefaultQueueSize),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.work()
	return s
}

func (s *Sink) work() {
	defer close(s.done)
	for r := range s.queue {
		if err := s.store.Add(r.ctx, r.data); err != nil {
			s.logger.ErrorContext(r.ctx, "error report not stored",
				slog.String("name", r.data.Name),
				slog.Any("error", err),
			)
		}
	}
}

// Report queues data without blocking. The request context is kept for its
// values only, so cancelling the request does not drop the report.
func (s *Sink) Report(ctx context.Context, data LogData) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrSinkClosed
	}
	select {
	case s.queue <- report{ctx: context.WithoutCancel(ctx), data: data}:
		return nil
	default:
		s.logger.WarnContext(ctx, "error report dropped", slog.String("name", data.Name))
		return ErrSinkBacklog
	}
}

// Close stops accepting reports and waits until the queue is written or ctx
// is done.
func (s *Sink) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stack: drain sink: %w", ctx.Err())
	}
}
