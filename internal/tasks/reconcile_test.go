package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
)

func TestEnqueueReconcile(t *testing.T) {
	tests := []struct {
		name       string
		enqueueErr error
		wantQueued bool
		wantErr    bool
	}{
		{name: "queued", wantQueued: true},
		{name: "previous sweep pending", enqueueErr: asynq.ErrDuplicateTask},
		{name: "redis down", enqueueErr: errors.New("dial tcp: connection refused"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockEnqueuer{err: tt.enqueueErr}

			queued, err := EnqueueReconcile(context.Background(), client)

			if tt.wantErr {
				assert.ErrorContains(t, err, "failed to enqueue reconcile task")
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantQueued, queued)
			if tt.wantQueued {
				assert.Equal(t, TypeReconcileCertificates, client.tasks[0].Type())
			}
		})
	}
}
