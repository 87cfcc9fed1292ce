package utils

import (
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// RetrainScheduler runs the retraining job on a cron schedule.
type RetrainScheduler struct {
	cron    *cron.Cron
	entryID cron.EntryID
	job     func() error
	mu      sync.Mutex
	running bool
}

// NewRetrainScheduler creates a scheduler around the given retraining job.
func NewRetrainScheduler(job func() error) *RetrainScheduler {
	return &RetrainScheduler{
		cron: cron.New(),
		job:  job,
	}
}

// Start registers the cron expression and begins the schedule.
func (s *RetrainScheduler) Start(cronExpr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	logger := GetLogger()
	entryID, err := s.cron.AddFunc(cronExpr, func() {
		logger.Info("Scheduled retraining started", Component("scheduler"))
		if err := s.job(); err != nil {
			logger.Error("Scheduled retraining failed", err, Component("scheduler"))
			return
		}
		logger.Info("Scheduled retraining completed", Component("scheduler"))
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.running = true
	logger.Info("Retraining scheduler started",
		Component("scheduler"),
		String("cron", cronExpr))
	return nil
}

// Stop halts the schedule, waiting for a running job to finish.
func (s *RetrainScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	GetLogger().Info("Retraining scheduler stopped", Component("scheduler"))
}

// Running reports whether the scheduler is active.
func (s *RetrainScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
