// Package tasks defines the background tasks shared by the API and the worker
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/hibiken/asynq"
)

const (
	// TypeCertificateIssued asks the worker to email a freshly issued certificate
	TypeCertificateIssued = "certificate:issued"
	// QueueImmediate is processed with the highest priority
	QueueImmediate = "immediate"
)

// CertificateIssuedPayload is the body of a certificate:issued task
type CertificateIssuedPayload struct {
	CertificateID     models.CertificateID `json:"certificate_id"`
	Email             string               `json:"email"`
	UserName          string               `json:"user_name"`
	CourseTitle       string               `json:"course_title"`
	CertificateNumber string               `json:"certificate_number"`
	IssuedAt          time.Time            `json:"issued_at"`
}

// certificateRetention keeps a sent certificate task around, so a late re-enqueue still hits its task ID
const certificateRetention = 24 * time.Hour

// NewCertificateIssuedTask builds the task for a certificate. The task ID is derived
// from the certificate ID, so a certificate is never queued twice.
func NewCertificateIssuedTask(cert *models.Certificate, email string) (*asynq.Task, error) {
	payload, err := json.Marshal(CertificateIssuedPayload{
		CertificateID:     cert.ID,
		Email:             email,
		UserName:          cert.UserName,
		CourseTitle:       cert.CourseTitle,
		CertificateNumber: cert.CertificateNumber,
		IssuedAt:          cert.IssuedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	return asynq.NewTask(TypeCertificateIssued, payload,
		asynq.Queue(QueueImmediate),
		asynq.TaskID("certificate:"+string(cert.ID)),
		asynq.MaxRetry(10),
		asynq.Retention(certificateRetention),
	), nil
}

// ParseCertificateIssued decodes a certificate:issued payload
func ParseCertificateIssued(t *asynq.Task) (*CertificateIssuedPayload, error) {
	var p CertificateIssuedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	if p.Email == "" {
		return nil, errors.New("payload has no recipient email")
	}
	return &p, nil
}

// TaskEnqueuer is satisfied by *asynq.Client
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Notifier queues certificate emails
type Notifier struct {
	client TaskEnqueuer
}

// NewNotifier creates a new certificate notifier
func NewNotifier(client TaskEnqueuer) *Notifier {
	return &Notifier{client: client}
}

// CertificateIssued queues the email for a certificate. A task already queued for it is not an error.
func (n *Notifier) CertificateIssued(ctx context.Context, cert *models.Certificate, email string) error {
	task, err := NewCertificateIssuedTask(cert, email)
	if err != nil {
		return err
	}

	if _, err := n.client.EnqueueContext(ctx, task); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue certificate task: %w", err)
	}
	return nil
}
