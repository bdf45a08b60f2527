package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEnqueuer struct {
	err   error
	tasks []*asynq.Task
}

func (m *mockEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.tasks = append(m.tasks, task)
	return &asynq.TaskInfo{Type: task.Type(), Queue: QueueImmediate}, nil
}

func sampleCertificate() *models.Certificate {
	return &models.Certificate{
		ID:                "8f0c1d2e-aaaa-bbbb-cccc-000000000001",
		UserID:            "u1",
		CourseID:          "c1",
		UserName:          "Ana Silva",
		CourseTitle:       "Pump Basics",
		CertificateNumber: "FGGC-8F0C1D2E",
		IssuedAt:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCertificateIssuedTask_RoundTrip(t *testing.T) {
	task, err := NewCertificateIssuedTask(sampleCertificate(), "ana@flowitec.com")
	require.NoError(t, err)
	assert.Equal(t, TypeCertificateIssued, task.Type())

	payload, err := ParseCertificateIssued(task)

	require.NoError(t, err)
	assert.Equal(t, models.CertificateID("8f0c1d2e-aaaa-bbbb-cccc-000000000001"), payload.CertificateID)
	assert.Equal(t, "ana@flowitec.com", payload.Email)
	assert.Equal(t, "Pump Basics", payload.CourseTitle)
	assert.Equal(t, "FGGC-8F0C1D2E", payload.CertificateNumber)
	assert.True(t, payload.IssuedAt.Equal(sampleCertificate().IssuedAt))
}

func TestParseCertificateIssued_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		errText string
	}{
		{name: "not json", payload: []byte("42"), errText: "failed to decode payload"},
		{name: "no email", payload: []byte(`{"certificate_id":"c"}`), errText: "no recipient email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCertificateIssued(asynq.NewTask(TypeCertificateIssued, tt.payload))
			assert.ErrorContains(t, err, tt.errText)
		})
	}
}

func TestNotifier_CertificateIssued(t *testing.T) {
	tests := []struct {
		name        string
		enqueueErr  error
		wantErr     bool
		expectTasks int
	}{
		{name: "queued", expectTasks: 1},
		{name: "already queued", enqueueErr: asynq.ErrTaskIDConflict},
		{name: "redis down", enqueueErr: errors.New("dial tcp: connection refused"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockEnqueuer{err: tt.enqueueErr}
			n := NewNotifier(client)

			err := n.CertificateIssued(context.Background(), sampleCertificate(), "ana@flowitec.com")

			if tt.wantErr {
				assert.ErrorContains(t, err, "failed to enqueue certificate task")
			} else {
				assert.NoError(t, err)
			}
			assert.Len(t, client.tasks, tt.expectTasks)
		})
	}
}
