package db

import "time"

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

type Config struct {
	// Path to the SQLite file, or MemoryPath.
	Path string `yaml:"path" env:"DATABASE_PATH"`

	// How long SQLite itself waits on a locked file before failing.
	BusyTimeout time.Duration `yaml:"busy_timeout" env:"DATABASE_BUSY_TIMEOUT"`
}
