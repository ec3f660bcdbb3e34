package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"flight-tracker/services"
	"flight-tracker/utils"
)

// Job collects one snapshot.
type Job interface {
	CollectOnce(ctx context.Context) (string, int, error)
}

// Scheduler runs the collector once a day at a fixed local time.
type Scheduler struct {
	scheduler *gocron.Scheduler
	job       Job
	at        string
	timeout   time.Duration
	logger    *utils.Logger
}

// New creates a Scheduler firing every day at "HH:MM" in loc. Each run is
// bounded by timeout.
func New(job Job, at string, loc *time.Location, timeout time.Duration, logger *utils.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(loc),
		job:       job,
		at:        at,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start schedules the daily job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if _, err := time.Parse("15:04", s.at); err != nil {
		return fmt.Errorf("scheduler: invalid time %q: %w", s.at, err)
	}

	// a slow search must not overlap with the next run
	job, err := s.scheduler.Every(1).Day().At(s.at).SingletonMode().Do(s.RunOnce)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("[scheduler] Daily collection at %s, next run %s", s.at, job.NextRun().Format(time.RFC3339))
	return nil
}

// RunOnce runs the job a single time and logs the outcome.
func (s *Scheduler) RunOnce() {
	s.logger.Info("[scheduler] Running collection job")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	path, n, err := s.job.CollectOnce(ctx)
	switch {
	case errors.Is(err, services.ErrNoFlights):
		s.logger.Warn("[scheduler] No flights found, nothing written")
	case err != nil:
		s.logger.Error("[scheduler] Collection failed: %v", err)
	default:
		s.logger.Info("[scheduler] Collected %d legs into %s", n, path)
	}
}

// Jobs returns the number of scheduled jobs.
func (s *Scheduler) Jobs() int {
	return len(s.scheduler.Jobs())
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
