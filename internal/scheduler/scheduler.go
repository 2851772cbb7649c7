package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/aeroweather/backend/internal/collector"
)

// Scheduler triggers a daily collection run for the previous calendar day.
// It is a thin shell around the Collector; all pipeline semantics live there.
type Scheduler struct {
	scheduler *gocron.Scheduler
	collector *collector.Collector
}

// New creates a new Scheduler.
func New(c *collector.Collector) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		collector: c,
	}
}

// Start schedules the daily job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At("00:00").Do(func() {
		day := time.Now().UTC().AddDate(0, 0, -1)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		summary, err := s.collector.Run(ctx, day, day, false)
		if err != nil {
			log.Printf("scheduler: daily collection failed: %v", err)
			return
		}
		log.Printf("scheduler: daily collection stored %d records", summary.Records)
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
