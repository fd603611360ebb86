package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"GradeConsolidator/internal/ports"
)

// Scheduler wires the interval driver with the pipeline use case.
type Scheduler struct {
	driver    ports.Scheduler
	pipeline  *Pipeline
	onRefresh func(Result)
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop periodic re-ingestion.
// onRefresh, when set, is called after every run that rewrote the table.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, onRefresh func(Result), logger *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, onRefresh: onRefresh, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		result, err := s.pipeline.Run(ctx)
		if err != nil {
			if s.logger != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warn("scheduled ingestion failed", "trigger", trigger.Format(time.RFC3339), "error", err)
			}
			return
		}
		if s.onRefresh != nil {
			s.onRefresh(result)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
