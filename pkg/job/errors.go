package job

import "errors"

var (
	ErrUnknownTask     = errors.New("job: unknown task")
	ErrInvalidSchedule = errors.New("job: invalid schedule")
	ErrDuplicateTask   = errors.New("job: duplicate task name")
	ErrAlreadyStarted  = errors.New("job: already started")
	ErrNotStarted      = errors.New("job: not started")
)
