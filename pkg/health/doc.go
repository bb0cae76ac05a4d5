// Package health serves liveness and readiness probes.
//
// Liveness always answers OK while the process runs. Readiness runs every
// registered [CheckFunc] in parallel under a shared timeout and answers 503
// when any of them fails. Both handlers reply with JSON when the client asks
// for it (Accept: application/json or ?format=json) and plain text otherwise.
//
//	checks := health.Checks{"sqlite": db.Healthcheck(client)}
//	r.Get("/health/ready", health.ReadinessHandler(checks, health.WithLogger(log)))
package health
