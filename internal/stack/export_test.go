package stack

import "time"

// SetClock pins the clock used for timestamps and retention.
func SetClock(repo *Repository, svc *Service, now func() time.Time) {
	if repo != nil {
		repo.now = now
	}
	if svc != nil {
		svc.now = now
	}
}
