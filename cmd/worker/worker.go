package main

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/flowitec/gogrow/internal/tasks"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gopkg.in/mail.v2"
)

// Reconciler issues certificates for completed courses that have none
type Reconciler interface {
	// Reconcile runs one sweep and reports how many certificates it issued.
	Reconcile(ctx context.Context) (*models.ReconcileReport, error)
}

// CertificateRenderer draws the certificate attached to the email
type CertificateRenderer interface {
	Render(cert *models.Certificate) ([]byte, error)
}

// Mailer delivers messages. *mail.Dialer satisfies it.
type Mailer interface {
	DialAndSend(m ...*mail.Message) error
}

// Worker handles task processing
type Worker struct {
	logger     *zap.Logger
	reconciler Reconciler
	renderer   CertificateRenderer
	mailer     Mailer
	smtpFrom   string
}

// NewWorker creates a new worker instance
func NewWorker(logger *zap.Logger, reconciler Reconciler, renderer CertificateRenderer, mailer Mailer, smtpFrom string) *Worker {
	return &Worker{
		logger:     logger,
		reconciler: reconciler,
		renderer:   renderer,
		mailer:     mailer,
		smtpFrom:   smtpFrom,
	}
}

var certificateEmail = template.Must(template.New("certificate").Parse(`<html>
<body style="font-family: Arial, sans-serif; color: #1f2d3d;">
<h2>Congratulations, {{.UserName}}!</h2>
<p>You have completed <strong>{{.CourseTitle}}</strong> on Flowitec Go &amp; Grow.</p>
<p>Certificate number: <strong>{{.CertificateNumber}}</strong><br>
Issued on {{.IssuedAt.Format "January 2, 2006"}}</p>
<p>Your certificate is attached to this email and is always available in the app.</p>
</body>
</html>`))

// buildCertificateEmail returns the subject and HTML body for an issued certificate
func buildCertificateEmail(p *tasks.CertificateIssuedPayload) (string, string, error) {
	var body bytes.Buffer
	if err := certificateEmail.Execute(&body, p); err != nil {
		return "", "", fmt.Errorf("failed to render email body: %w", err)
	}
	return fmt.Sprintf("Your certificate for %s", p.CourseTitle), body.String(), nil
}

// HandleCertificateIssued emails a newly issued certificate with the PNG attached
func (w *Worker) HandleCertificateIssued(ctx context.Context, t *asynq.Task) error {
	payload, err := tasks.ParseCertificateIssued(t)
	if err != nil {
		// A malformed payload never succeeds
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	subject, body, err := buildCertificateEmail(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	m := mail.NewMessage()
	m.SetHeader("From", w.smtpFrom)
	m.SetHeader("To", payload.Email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	image, err := w.renderer.Render(&models.Certificate{
		ID:                payload.CertificateID,
		UserName:          payload.UserName,
		CourseTitle:       payload.CourseTitle,
		CertificateNumber: payload.CertificateNumber,
		IssuedAt:          payload.IssuedAt,
	})
	if err != nil {
		w.logger.Warn("Failed to render certificate, sending without attachment",
			zap.String("certificate_id", string(payload.CertificateID)),
			zap.Error(err),
		)
	} else {
		m.Attach(fmt.Sprintf("certificate-%s.png", payload.CertificateNumber),
			mail.SetCopyFunc(func(dst io.Writer) error {
				_, err := dst.Write(image)
				return err
			}),
		)
	}

	if err := w.mailer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	w.logger.Info("Certificate email sent",
		zap.String("certificate_id", string(payload.CertificateID)),
		zap.String("email", payload.Email),
	)
	return nil
}

// HandleReconcile runs one certificate reconciliation sweep
func (w *Worker) HandleReconcile(ctx context.Context, t *asynq.Task) error {
	report, err := w.reconciler.Reconcile(ctx)
	if err != nil {
		return err
	}

	w.logger.Info("Certificate reconciliation finished",
		zap.Int("checked", report.Checked),
		zap.Int("issued", report.Issued),
		zap.Int("resent", report.Resent),
		zap.Int("failed", report.Failed),
	)
	return nil
}
