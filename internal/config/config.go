// Package config loads the process configuration.
//
// Sources are applied in order, later ones winning:
//
//  1. built-in defaults (Default)
//  2. shorty.yaml
//  3. the file named by $APP_CONFIG_PATH, or shorty.local.yaml
//  4. environment variables prefixed with APP_, with .env filling gaps
//
// YAML files hold one section per profile. The "default" section always
// applies; the section named by $APP_PROFILE is layered on top of it.
//
//	default:
//	  backoffice: {address: 0.0.0.0, port: 8001}
//	production:
//	  session: {driver: redis, cookie_secure: true}
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/dmitrymomot/shorty/pkg/db"
	"github.com/dmitrymomot/shorty/pkg/logger"
	"github.com/dmitrymomot/shorty/pkg/redis"
)

// Session store drivers.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

var (
	ErrParse   = errors.New("config: failed to parse")
	ErrInvalid = errors.New("config: invalid value")
)

type Config struct {
	Public     Server        `yaml:"public" envPrefix:"PUBLIC_"`
	Backoffice Server        `yaml:"backoffice" envPrefix:"BACKOFFICE_"`
	Database   db.Config     `yaml:"sqlite"`
	Redis      redis.Config  `yaml:"redis"`
	Session    Session       `yaml:"session" envPrefix:"SESSION_"`
	Security   Security      `yaml:"security"`
	Stack      Stack         `yaml:"stack" envPrefix:"STACK_"`
	Redirects  Redirects     `yaml:"redirect_cache" envPrefix:"REDIRECT_CACHE_"`
	Log        logger.Config `yaml:"log"`
}

// Server is a listen address.
type Server struct {
	Address string `yaml:"address" env:"ADDRESS"`
	Port    int    `yaml:"port" env:"PORT"`
}

// Addr returns host:port.
func (s Server) Addr() string {
	return net.JoinHostPort(s.Address, strconv.Itoa(s.Port))
}

type Session struct {
	Driver       string        `yaml:"driver" env:"DRIVER"`
	RedisPrefix  string        `yaml:"redis_prefix" env:"REDIS_PREFIX"`
	MaxAge       time.Duration `yaml:"max_age" env:"MAX_AGE"`
	CookieSecure bool          `yaml:"cookie_secure" env:"COOKIE_SECURE"`
}

type Security struct {
	// CSRFSecret signs CSRF tokens. A random secret is generated at startup when empty.
	CSRFSecret     string   `yaml:"csrf_secret" env:"CSRF_SECRET"`
	AllowedHosts   []string `yaml:"allowed_hosts" env:"ALLOWED_HOSTS" envSeparator:","`
	LoginRateLimit int      `yaml:"login_rate_limit" env:"LOGIN_RATE_LIMIT"`
	HSTSSeconds    int64    `yaml:"hsts_seconds" env:"HSTS_SECONDS"`
	SSLRedirect    bool     `yaml:"ssl_redirect" env:"SSL_REDIRECT"`
	Development    bool     `yaml:"development" env:"DEV"`
}

// Stack configures the error log.
type Stack struct {
	Retention     time.Duration `yaml:"retention" env:"RETENTION"`
	PurgeSchedule string        `yaml:"purge_schedule" env:"PURGE_SCHEDULE"`
	Buffer        int           `yaml:"buffer" env:"BUFFER"`
}

// Redirects configures the public redirect cache. It lives in Redis when a
// Redis URL is set, in process memory otherwise. A zero TTL disables it.
type Redirects struct {
	TTL         time.Duration `yaml:"ttl" env:"TTL"`
	MaxEntries  int           `yaml:"max_entries" env:"MAX_ENTRIES"`
	RedisPrefix string        `yaml:"redis_prefix" env:"REDIS_PREFIX"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Public:     Server{Address: "127.0.0.1", Port: 8000},
		Backoffice: Server{Address: "127.0.0.1", Port: 8001},
		Database:   db.Config{Path: "./sqlite.db", BusyTimeout: 5 * time.Second},
		Redis:      redis.Config{PoolSize: 10},
		Session: Session{
			Driver:      DriverSQLite,
			RedisPrefix: "shorty:session:",
			MaxAge:      30 * 24 * time.Hour,
		},
		Security: Security{LoginRateLimit: 10},
		Stack: Stack{
			Retention:     30 * 24 * time.Hour,
			PurgeSchedule: "@daily",
			Buffer:        128,
		},
		Redirects: Redirects{
			TTL:         time.Minute,
			MaxEntries:  10_000,
			RedisPrefix: "shorty:redirect:",
		},
		Log: logger.Config{
			Level:  "info",
			Format: "json",
			Sentry: logger.SentryConfig{Environment: "production", MinLevel: "warn"},
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Database.Path == "":
		return fmt.Errorf("%w: sqlite.path is empty", ErrInvalid)
	case c.Public.Port <= 0 || c.Backoffice.Port <= 0:
		return fmt.Errorf("%w: listen ports must be positive", ErrInvalid)
	case c.Session.Driver != DriverSQLite && c.Session.Driver != DriverRedis:
		return fmt.Errorf("%w: session.driver %q (want sqlite or redis)", ErrInvalid, c.Session.Driver)
	case c.Session.Driver == DriverRedis && c.Redis.URL == "":
		return fmt.Errorf("%w: redis.url is required by the redis session driver", ErrInvalid)
	case c.Stack.Retention <= 0:
		return fmt.Errorf("%w: stack.retention must be positive", ErrInvalid)
	}
	return nil
}
