package db

import "errors"

var (
	ErrPathEmpty         = errors.New("db: sqlite file path is empty")
	ErrConnection        = errors.New("db: failed to open database connection")
	ErrInitFailed        = errors.New("db: failed to initialize database")
	ErrOptionEmpty       = errors.New("db: option value is empty")
	ErrLock              = errors.New("db: failed to acquire connection lock")
	ErrHealthcheckFailed = errors.New("db: healthcheck failed")
	ErrSetDialect        = errors.New("db migrator: failed to set dialect")
	ErrApplyMigrations   = errors.New("db migrator: failed to apply migrations")
)
