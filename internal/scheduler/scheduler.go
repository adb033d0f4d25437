// Package scheduler triggers periodic index rebuilds from a cron expression.
package scheduler

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a single task on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	mu      sync.Mutex
	entryID cron.EntryID
}

// New creates a Scheduler. A run that is still in progress when the next
// tick fires makes that tick a no-op.
func New(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger: logger,
	}
}

// Schedule registers task under spec, a standard five-field cron expression
// or a descriptor such as "@hourly" or "@every 10m". A previous schedule is
// replaced.
func (s *Scheduler) Schedule(spec string, task func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
		s.entryID = 0
	}

	id, err := s.cron.AddFunc(spec, task)
	if err != nil {
		return fmt.Errorf("scheduler: add %q: %w", spec, err)
	}
	s.entryID = id
	s.logger.Info("scheduler: refresh scheduled", slog.String("schedule", spec))
	return nil
}

// Next returns the next activation time, or the zero time when nothing is
// scheduled or the scheduler has not been started.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// Start begins the cron scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Validate reports whether spec is an expression Schedule accepts.
func Validate(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return nil
}
