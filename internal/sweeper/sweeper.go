// Package sweeper runs the optional periodic expiry sweep. Cleanup
// normally piggybacks on ingestion traffic; deployments with sparse
// traffic can enable this to keep the table bounded regardless.
package sweeper

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"mail-webhook-relay/internal/config"
	"mail-webhook-relay/internal/pipeline"
)

// Sweeper manages the periodic expired-email sweep
type Sweeper struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.SweeperConfig
	pipeline  *pipeline.Pipeline
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.RWMutex
}

// New creates a new sweeper
func New(cfg *config.SweeperConfig, p *pipeline.Pipeline) *Sweeper {
	return &Sweeper{
		cron:     cron.New(),
		config:   cfg,
		pipeline: p,
	}
}

// Start starts the sweeper
func (s *Sweeper) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("sweeper is already running")
	}

	schedule := fmt.Sprintf("*/%d * * * *", s.config.IntervalMinutes)
	entryID, err := s.cron.AddFunc(schedule, s.runSweep)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Sweeper started with interval: %d minutes", s.config.IntervalMinutes)
	return nil
}

// Stop stops the sweeper and waits for a running sweep to finish
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		logrus.Info("Sweeper stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Sweeper stop timeout, forcing shutdown")
	}

	s.isRunning = false
	return nil
}

// IsRunning returns whether the sweeper is running
func (s *Sweeper) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled sweep
func (s *Sweeper) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Wait waits for any in-flight sweep to complete
func (s *Sweeper) Wait() {
	s.wg.Wait()
}

func (s *Sweeper) runSweep() {
	s.wg.Add(1)
	defer s.wg.Done()

	if _, err := s.pipeline.Sweep(); err != nil {
		logrus.Errorf("Periodic sweep failed: %v", err)
	}
}
