package main

import (
	"context"
	"fmt"
	"time"

	"github.com/flowitec/gogrow/internal/tasks"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// enqueueTimeout bounds a single enqueue against Redis
const enqueueTimeout = 10 * time.Second

// Scheduler queues certificate reconciliation sweeps on a cron schedule
type Scheduler struct {
	cron     *cron.Cron
	schedule cron.Schedule
	client   tasks.TaskEnqueuer
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler for a standard five-field cron expression
func NewScheduler(client tasks.TaskEnqueuer, logger *zap.Logger, spec string) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}

	return &Scheduler{
		cron:     cron.New(),
		schedule: schedule,
		client:   client,
		logger:   logger,
	}, nil
}

// Start queues one sweep right away, then one per schedule tick
func (s *Scheduler) Start() {
	s.enqueue()
	s.cron.Schedule(s.schedule, cron.FuncJob(s.enqueue))
	s.cron.Start()
	s.logger.Info("Scheduler started", zap.Time("next_run", s.schedule.Next(time.Now())))
}

// Stop stops the scheduler and waits for a running enqueue to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// enqueue queues a sweep unless one is still pending
func (s *Scheduler) enqueue() {
	ctx, cancel := context.WithTimeout(context.Background(), enqueueTimeout)
	defer cancel()

	queued, err := tasks.EnqueueReconcile(ctx, s.client)
	if err != nil {
		s.logger.Error("Failed to enqueue reconcile task", zap.Error(err))
		return
	}
	if !queued {
		s.logger.Debug("Reconcile task still pending, skipped")
		return
	}
	s.logger.Info("Enqueued reconcile task")
}
