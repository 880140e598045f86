package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/notexe/localhealth/internal/reminder"
	"github.com/sirupsen/logrus"
)

// Checker evaluates reminders against the current time.
type Checker interface {
	Tick() []reminder.Notification
}

// Scheduler runs the reminder due-check on a fixed interval.
type Scheduler struct {
	checker  Checker
	interval time.Duration
	log      logrus.FieldLogger
}

// New creates a Scheduler that ticks checker every interval.
func New(checker Checker, interval time.Duration, log logrus.FieldLogger) *Scheduler {
	return &Scheduler{
		checker:  checker,
		interval: interval,
		log:      log.WithField("component", "scheduler"),
	}
}

// Run blocks and runs tick() on interval + immediately on start.
// It exits when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}

	s.log.WithField("interval", s.interval).Info("started")

	// Run immediately on start
	s.tick()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("shutting down")
			return nil
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	emitted := s.checker.Tick()
	if len(emitted) == 0 {
		s.log.Debug("no reminders due")
		return
	}
	s.log.WithField("count", len(emitted)).Info("notifications emitted")
}
