package stack

import "errors"

var (
	ErrNotFound    = errors.New("stack: entry not found")
	ErrSinkClosed  = errors.New("stack: sink closed")
	ErrSinkBacklog = errors.New("stack: sink queue full")
)
