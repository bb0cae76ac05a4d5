package shortlink

import "errors"

var (
	ErrNotFound  = errors.New("shortlink: not found")
	ErrForbidden = errors.New("shortlink: not the owner")
)
