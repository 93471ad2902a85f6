// Package scheduler runs the server's periodic maintenance jobs on cron
// schedules with a seconds field.
package scheduler

import (
	"context"

	"github.com/dmitrijs2005/lifesync/internal/logging"
	"github.com/robfig/cron/v3"
)

type Runner struct {
	cron   *cron.Cron
	logger logging.Logger
}

func New(l logging.Logger) *Runner {
	return &Runner{
		cron:   cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: l.With("module", "scheduler"),
	}
}

// Add registers job under a cron schedule with seconds. Jobs receive the context passed to Run.
func (r *Runner) Add(ctx context.Context, schedule string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(schedule, func() {
		job(ctx)
	})
}

// Run starts the scheduler and blocks until ctx is done and running jobs
// have returned.
func (r *Runner) Run(ctx context.Context) {
	r.logger.Info(ctx, "cron started", "jobs", len(r.cron.Entries()))
	r.cron.Start()

	<-ctx.Done()

	<-r.cron.Stop().Done()
	r.logger.Info(ctx, "cron stopped")
}
