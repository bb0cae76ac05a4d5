// Package job runs periodic maintenance tasks inside the process on a cron
// schedule.
//
// Tasks are plain structs discovered by structural typing, so task packages
// do not import job:
//
//	type PurgeErrors struct{ svc *stack.Service }
//
//	func (t *PurgeErrors) Name() string     { return "purge_errors" }
//	func (t *PurgeErrors) Schedule() string { return "@daily" }
//	func (t *PurgeErrors) Handle(ctx context.Context) error {
//	    _, err := t.svc.Purge(ctx)
//	    return err
//	}
//
//	m, err := job.NewManager(job.WithScheduledTask(&PurgeErrors{svc}), job.WithLogger(l))
//
// Schedules use the standard five field cron syntax and the @daily style
// descriptors. Runs of the same task never overlap; a run that is still busy
// when the next tick fires causes that tick to be skipped.
//
// Start and Stop fit the startup and shutdown hooks of shorty.Run:
//
//	shorty.Run(
//	    shorty.StartupHook(m.StartFunc()),
//	    shorty.ShutdownHook(m.Shutdown()),
//	)
package job
