// Package logger builds slog loggers with context-derived attributes and an
// optional Sentry fan-out.
//
// Context extractors run on every record, so request-scoped values such as the
// request id or the signed-in username show up without passing them around:
//
//	log := logger.New(cfg.Log, os.Stdout,
//		middlewares.RequestIDExtractor(),
//		user.IdentityExtractor(),
//	)
//
// When cfg.Log.Sentry.DSN is set, warnings are also stored as Sentry logs and
// errors become Sentry issues. Register SentryFlush as a shutdown hook so
// buffered events are delivered before exit.
package logger
