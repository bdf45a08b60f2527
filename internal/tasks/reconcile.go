package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TypeReconcileCertificates asks the worker to issue certificates a crash left unissued
	TypeReconcileCertificates = "certificates:reconcile"
	// QueueDefault holds low priority maintenance work
	QueueDefault = "default"

	// reconcileUniqueFor keeps overlapping sweeps out of the queue
	reconcileUniqueFor = 10 * time.Minute
)

// NewReconcileTask builds a reconciliation sweep task
func NewReconcileTask() *asynq.Task {
	return asynq.NewTask(TypeReconcileCertificates, nil,
		asynq.Queue(QueueDefault),
		asynq.Unique(reconcileUniqueFor),
		asynq.MaxRetry(1),
	)
}

// EnqueueReconcile queues a sweep and reports whether it was queued.
// A sweep that is still pending is not an error.
func EnqueueReconcile(ctx context.Context, client TaskEnqueuer) (bool, error) {
	if _, err := client.EnqueueContext(ctx, NewReconcileTask()); err != nil {
		if errors.Is(err, asynq.ErrDuplicateTask) {
			return false, nil
		}
		return false, fmt.Errorf("failed to enqueue reconcile task: %w", err)
	}
	return true, nil
}
