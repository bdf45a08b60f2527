package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/flowitec/gogrow/internal/tasks"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

type mockMailer struct {
	err  error
	sent []*mail.Message
}

func (m *mockMailer) DialAndSend(msgs ...*mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msgs...)
	return nil
}

type mockRenderer struct {
	err  error
	cert *models.Certificate
}

func (m *mockRenderer) Render(cert *models.Certificate) ([]byte, error) {
	m.cert = cert
	if m.err != nil {
		return nil, m.err
	}
	return []byte("\x89PNG-test"), nil
}

type mockReconciler struct {
	report *models.ReconcileReport
	err    error
	calls  int
}

func (m *mockReconciler) Reconcile(ctx context.Context) (*models.ReconcileReport, error) {
	m.calls++
	return m.report, m.err
}

func samplePayload() *tasks.CertificateIssuedPayload {
	return &tasks.CertificateIssuedPayload{
		CertificateID:     "8f0c1d2e-aaaa-bbbb-cccc-000000000001",
		Email:             "ana@flowitec.com",
		UserName:          "Ana <Silva>",
		CourseTitle:       "Pump Basics",
		CertificateNumber: "FGGC-8F0C1D2E",
		IssuedAt:          time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func certificateTask(t *testing.T, p *tasks.CertificateIssuedPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return asynq.NewTask(tasks.TypeCertificateIssued, data)
}

func TestBuildCertificateEmail(t *testing.T) {
	subject, body, err := buildCertificateEmail(samplePayload())

	require.NoError(t, err)
	assert.Equal(t, "Your certificate for Pump Basics", subject)
	assert.Contains(t, body, "Ana &lt;Silva&gt;")
	assert.Contains(t, body, "FGGC-8F0C1D2E")
	assert.Contains(t, body, "March 1, 2026")
}

func TestWorker_HandleCertificateIssued(t *testing.T) {
	t.Run("sends email with attachment", func(t *testing.T) {
		mailer := &mockMailer{}
		renderer := &mockRenderer{}
		w := NewWorker(zap.NewNop(), &mockReconciler{}, renderer, mailer, "noreply@flowitec.com")

		err := w.HandleCertificateIssued(context.Background(), certificateTask(t, samplePayload()))

		require.NoError(t, err)
		require.Len(t, mailer.sent, 1)
		msg := mailer.sent[0]
		assert.Equal(t, []string{"ana@flowitec.com"}, msg.GetHeader("To"))
		assert.Equal(t, []string{"noreply@flowitec.com"}, msg.GetHeader("From"))
		assert.Equal(t, "FGGC-8F0C1D2E", renderer.cert.CertificateNumber)

		var raw bytes.Buffer
		_, err = msg.WriteTo(&raw)
		require.NoError(t, err)
		assert.Contains(t, raw.String(), "certificate-FGGC-8F0C1D2E.png")
	})

	t.Run("render failure still sends", func(t *testing.T) {
		mailer := &mockMailer{}
		w := NewWorker(zap.NewNop(), &mockReconciler{}, &mockRenderer{err: errors.New("no font")}, mailer, "noreply@flowitec.com")

		err := w.HandleCertificateIssued(context.Background(), certificateTask(t, samplePayload()))

		require.NoError(t, err)
		assert.Len(t, mailer.sent, 1)
	})

	t.Run("smtp failure is retried", func(t *testing.T) {
		mailer := &mockMailer{err: errors.New("535 authentication failed")}
		w := NewWorker(zap.NewNop(), &mockReconciler{}, &mockRenderer{}, mailer, "noreply@flowitec.com")

		err := w.HandleCertificateIssued(context.Background(), certificateTask(t, samplePayload()))

		assert.ErrorContains(t, err, "failed to send email")
		assert.False(t, errors.Is(err, asynq.SkipRetry))
	})

	t.Run("bad payload is not retried", func(t *testing.T) {
		mailer := &mockMailer{}
		w := NewWorker(zap.NewNop(), &mockReconciler{}, &mockRenderer{}, mailer, "noreply@flowitec.com")

		err := w.HandleCertificateIssued(context.Background(), asynq.NewTask(tasks.TypeCertificateIssued, []byte(`{}`)))

		assert.ErrorIs(t, err, asynq.SkipRetry)
		assert.Empty(t, mailer.sent)
	})
}

func TestWorker_HandleReconcile(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		reconciler := &mockReconciler{report: &models.ReconcileReport{Checked: 3, Issued: 2}}
		w := NewWorker(zap.NewNop(), reconciler, &mockRenderer{}, &mockMailer{}, "noreply@flowitec.com")

		err := w.HandleReconcile(context.Background(), tasks.NewReconcileTask())

		assert.NoError(t, err)
		assert.Equal(t, 1, reconciler.calls)
	})

	t.Run("failure", func(t *testing.T) {
		reconciler := &mockReconciler{err: errors.New("database is down")}
		w := NewWorker(zap.NewNop(), reconciler, &mockRenderer{}, &mockMailer{}, "noreply@flowitec.com")

		err := w.HandleReconcile(context.Background(), tasks.NewReconcileTask())

		assert.EqualError(t, err, "database is down")
	})
}
