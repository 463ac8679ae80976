package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"FeedDigest/internal/ports"
)

// Cron runs registered jobs on standard cron expressions, evaluated in the
// configured timezone.
type Cron struct {
	cron *cron.Cron
	loc  *time.Location
}

var _ ports.Scheduler = (*Cron)(nil)

// New builds a scheduler bound to loc; nil means UTC.
func New(loc *time.Location) *Cron {
	if loc == nil {
		loc = time.UTC
	}
	return &Cron{
		cron: cron.New(cron.WithLocation(loc)),
		loc:  loc,
	}
}

// AddJob registers a job under a cron expression. The job receives the
// trigger time in the scheduler's timezone.
func (c *Cron) AddJob(spec string, job func(time.Time)) error {
	_, err := c.cron.AddFunc(spec, func() {
		job(time.Now().In(c.loc))
	})
	return err
}

// Start begins the cron loop in its own goroutine.
func (c *Cron) Start() {
	c.cron.Start()
}

// Stop waits for running jobs to finish or the context to expire.
func (c *Cron) Stop(ctx context.Context) error {
	done := c.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
