package watcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the poll job on a fixed interval.
type Scheduler struct {
	cron *cron.Cron
	log  *slog.Logger
}

// NewScheduler creates a Scheduler that calls job every interval. Intervals
// below one second are rounded up by cron.
func NewScheduler(interval time.Duration, job func(), log *slog.Logger) (*Scheduler, error) {
	c := cron.New()

	if _, err := c.AddFunc("@every "+interval.String(), job); err != nil {
		return nil, err
	}

	return &Scheduler{cron: c, log: log}, nil
}

// Start begins running the poll job.
func (s *Scheduler) Start() {
	s.log.Debug("scheduler started")
	s.cron.Start()
}

// Stop stops the scheduler. The returned context is done once a running
// job has returned.
func (s *Scheduler) Stop() context.Context {
	s.log.Debug("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}
