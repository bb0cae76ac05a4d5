package job

import (
	"context"
	"log/slog"
	"time"
)

type config struct {
	logger    *slog.Logger
	location  *time.Location
	schedules []scheduleConfig
}

//nolint:betteralign // all fields contain pointers, no optimization possible
type scheduleConfig struct {
	handler  func(context.Context) error
	name     string
	schedule string
}

// Option configures the manager.
type Option func(*config)

// WithScheduledTask registers a periodic task. The task must implement
// Name(), Schedule() and Handle(ctx).
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithLogger sets the logger. A no-op logger is used otherwise.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLocation sets the time zone schedules are evaluated in. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		if loc != nil {
			c.location = loc
		}
	}
}
