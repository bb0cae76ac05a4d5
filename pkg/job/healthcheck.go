package job

import (
	"context"
	"errors"
)

// ErrHealthcheckFailed is returned when the scheduler is not running.
var ErrHealthcheckFailed = errors.New("job: healthcheck failed")

// Healthcheck reports whether m is running. Compatible with health.CheckFunc.
//
//	shorty.WithHealthChecks(shorty.WithReadinessCheck("jobs", job.Healthcheck(m)))
func Healthcheck(m *Manager) func(ctx context.Context) error {
	return func(context.Context) error {
		if m == nil || !m.Running() {
			return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
		}
		return nil
	}
}
