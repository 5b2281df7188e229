// Package scheduler runs the recurring monthly backfill job.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/ballpark-live/internal/ingest"
)

// Scheduler manages the scheduled backfill job
type Scheduler struct {
	cron            *cron.Cron
	pipeline        *ingest.Pipeline
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
	now             func() time.Time
}

// NewScheduler creates a new scheduler
func NewScheduler(pipeline *ingest.Pipeline, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		pipeline:        pipeline,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
		now:             time.Now,
	}
}

// ScheduleMonthlyBackfill schedules the backfill of the previous calendar
// month. The cron expression decides when it fires; each firing ingests the
// month before the firing time, so a run early in a month picks up the month
// that just closed.
func (s *Scheduler) ScheduleMonthlyBackfill(cronExpression string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Hour)
		defer cancel()

		year, month := previousMonth(s.now().UTC())

		s.logger.WithFields(logrus.Fields{
			"year":  year,
			"month": int(month),
		}).Info("Starting scheduled backfill")

		result, err := s.pipeline.Run(ctx, year, month, ingest.ModeApply)
		if err != nil {
			s.logger.WithError(err).Error("Scheduled backfill failed")
			return
		}

		s.logger.WithFields(logrus.Fields{
			"fetched":  result.GamesFetched,
			"admitted": result.GamesAdmitted,
			"rejected": result.GamesRejected,
			"inserted": result.Inserted.Games,
		}).Info("Scheduled backfill completed")
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled monthly backfill")

	return nil
}

// previousMonth returns the calendar month before t. Going through the
// first of t's month avoids AddDate's day normalization, which would skip
// a short month entirely when t falls on day 29-31.
func previousMonth(t time.Time) (int, time.Month) {
	lastOfPrev := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return lastOfPrev.Year(), lastOfPrev.Month()
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running job to finish
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out with a job still running")
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
