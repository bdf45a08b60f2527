package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowitec/gogrow/internal/models"
	"go.uber.org/zap"
)

// CertificateProgressRepository is the part of progress storage the certificate issuer needs
type CertificateProgressRepository interface {
	// Method CountCompleted returns how many of the course's current lessons the user has completed
	// together with the course's lesson total.
	//
	// If some error occurs during counting, the error will be returned together with zero values.
	CountCompleted(ctx context.Context, userID models.UserID, courseID models.CourseID) (int, int, error)
	// Method MarkCompleted stamps completed_at of the progress record. An existing stamp is kept.
	MarkCompleted(ctx context.Context, userID models.UserID, courseID models.CourseID, at time.Time) error
	// Method ListCompletionCandidates returns up to "limit" (user, course) pairs at 100% without a certificate,
	// ordered by (user, course) and strictly after the "after" cursor. A zero cursor starts from the beginning.
	ListCompletionCandidates(ctx context.Context, after models.CompletionCandidate, limit int) ([]models.CompletionCandidate, error)
}

// QuizPassRepository reports quiz pass state for certificate eligibility
type QuizPassRepository interface {
	// Method CountUnpassedQuizzes returns how many quizzes of a course the user has not passed yet.
	CountUnpassedQuizzes(ctx context.Context, userID models.UserID, courseID models.CourseID) (int, error)
}

// CertificateRepository is the interface that wraps methods for certificate data access
type CertificateRepository interface {
	// Method CreateIfAbsent inserts the certificate unless the (user, course) pair already holds one.
	//
	// It returns the stored certificate and whether this call created it.
	CreateIfAbsent(ctx context.Context, cert *models.Certificate) (*models.Certificate, bool, error)
	// Method GetByID retrieves a certificate by ID.
	//
	// If the certificate does not exist, models.ErrCertificateNotFound is returned.
	GetByID(ctx context.Context, id models.CertificateID) (*models.Certificate, error)
	// Method GetByUserAndCourse retrieves the certificate a user holds for a course.
	//
	// If the user holds none, models.ErrCertificateNotFound is returned.
	GetByUserAndCourse(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Certificate, error)
	// Method ListByUser returns the user's certificates, newest first.
	ListByUser(ctx context.Context, userID models.UserID) ([]models.Certificate, error)
	// Method MarkNotified records that the certificate's email task was queued.
	MarkNotified(ctx context.Context, id models.CertificateID, at time.Time) error
	// Method ListUnnotified returns up to "limit" certificates issued at or before "issuedBefore" whose
	// email was never queued, ordered by ID and strictly after the "after" cursor.
	ListUnnotified(ctx context.Context, issuedBefore time.Time, after models.CertificateID, limit int) ([]models.PendingNotification, error)
}

// UserLookup retrieves users by ID
type UserLookup interface {
	GetByID(ctx context.Context, id models.UserID) (*models.User, error)
}

// CourseLookup retrieves courses by ID
type CourseLookup interface {
	GetByID(ctx context.Context, id models.CourseID) (*models.Course, error)
}

// CertificateNotifier is told about every newly issued certificate
type CertificateNotifier interface {
	// Method CertificateIssued schedules the notification for a freshly issued certificate.
	CertificateIssued(ctx context.Context, cert *models.Certificate, email string) error
}

// CertificateRenderer draws a certificate as a PNG image
type CertificateRenderer interface {
	Render(cert *models.Certificate) ([]byte, error)
}

const (
	// reconcileBatch is the page size of a reconciliation sweep
	reconcileBatch = 500
	// notifyGrace keeps the sweep away from certificates whose issuing request may still be queuing the email
	notifyGrace = time.Minute
)

type certificateService struct {
	progressRepo    CertificateProgressRepository
	quizPassRepo    QuizPassRepository
	certificateRepo CertificateRepository
	userRepo        UserLookup
	courseRepo      CourseLookup
	notifier        CertificateNotifier
	renderer        CertificateRenderer
	requireQuizzes  bool
	logger          *zap.Logger
	now             func() time.Time
}

// NewCertificateService creates a new certificate service.
// When requireQuizzes is set, every quiz of a course must be passed before a certificate is issued.
func NewCertificateService(
	progressRepo CertificateProgressRepository,
	quizPassRepo QuizPassRepository,
	certificateRepo CertificateRepository,
	userRepo UserLookup,
	courseRepo CourseLookup,
	notifier CertificateNotifier,
	renderer CertificateRenderer,
	requireQuizzes bool,
	logger *zap.Logger,
) *certificateService {
	return &certificateService{
		progressRepo:    progressRepo,
		quizPassRepo:    quizPassRepo,
		certificateRepo: certificateRepo,
		userRepo:        userRepo,
		courseRepo:      courseRepo,
		notifier:        notifier,
		renderer:        renderer,
		requireQuizzes:  requireQuizzes,
		logger:          logger,
		now:             time.Now,
	}
}

// IssueIfEligible issues the course certificate when the user has completed every lesson
// (and passed every quiz, when required). It returns nil without error when the user is not
// eligible yet, and the already stored certificate when one exists.
func (s *certificateService) IssueIfEligible(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Certificate, error) {
	eligible, err := s.eligible(ctx, userID, courseID)
	if err != nil || !eligible {
		return nil, err
	}

	existing, err := s.certificateRepo.GetByUserAndCourse(ctx, userID, courseID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, models.ErrCertificateNotFound) {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	// completed_at goes first: a crash before the insert leaves a 100% record without
	// a certificate, which the reconciliation sweep picks up
	if err := s.progressRepo.MarkCompleted(ctx, userID, courseID, now); err != nil {
		return nil, err
	}

	id := models.NewCertificateID()
	cert, created, err := s.certificateRepo.CreateIfAbsent(ctx, &models.Certificate{
		ID:                id,
		UserID:            userID,
		CourseID:          courseID,
		UserName:          user.FullName(),
		CourseTitle:       course.Title,
		CertificateNumber: models.CertificateNumber(id),
		IssuedAt:          now,
	})
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("certificate issued",
			zap.String("certificate_id", string(cert.ID)),
			zap.String("user_id", string(userID)),
			zap.String("course_id", string(courseID)),
		)
		if err := s.notify(ctx, cert, user.Email); err != nil {
			s.logger.Error("failed to enqueue certificate notification",
				zap.String("certificate_id", string(cert.ID)),
				zap.Error(err),
			)
		}
	}

	return cert, nil
}

// notify queues the certificate email and records that it was queued
func (s *certificateService) notify(ctx context.Context, cert *models.Certificate, email string) error {
	if err := s.notifier.CertificateIssued(ctx, cert, email); err != nil {
		return err
	}
	return s.certificateRepo.MarkNotified(ctx, cert.ID, s.now().UTC())
}

func (s *certificateService) eligible(ctx context.Context, userID models.UserID, courseID models.CourseID) (bool, error) {
	completed, total, err := s.progressRepo.CountCompleted(ctx, userID, courseID)
	if err != nil {
		return false, err
	}
	if total == 0 || completed < total {
		return false, nil
	}

	if !s.requireQuizzes {
		return true, nil
	}

	unpassed, err := s.quizPassRepo.CountUnpassedQuizzes(ctx, userID, courseID)
	if err != nil {
		return false, err
	}

	return unpassed == 0, nil
}

// List returns the caller's certificates
func (s *certificateService) List(ctx context.Context, userID models.UserID) ([]models.Certificate, error) {
	return s.certificateRepo.ListByUser(ctx, userID)
}

// Get returns a certificate to its owner or to an admin
func (s *certificateService) Get(ctx context.Context, id models.CertificateID, callerID models.UserID, callerRole models.Role) (*models.Certificate, error) {
	cert, err := s.certificateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if cert.UserID != callerID && callerRole != models.RoleAdmin {
		return nil, models.ErrAccessDenied
	}

	return cert, nil
}

// Render returns the certificate as a PNG image, with the same access rules as Get
func (s *certificateService) Render(ctx context.Context, id models.CertificateID, callerID models.UserID, callerRole models.Role) ([]byte, *models.Certificate, error) {
	cert, err := s.Get(ctx, id, callerID, callerRole)
	if err != nil {
		return nil, nil, err
	}

	image, err := s.renderer.Render(cert)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to render certificate: %w", err)
	}

	return image, cert, nil
}

// Reconcile issues certificates for completed courses that have none and queues the
// emails that never reached the queue. Individual failures are logged and counted; the sweep carries on.
func (s *certificateService) Reconcile(ctx context.Context) (*models.ReconcileReport, error) {
	report := &models.ReconcileReport{}

	if err := s.reconcileCertificates(ctx, report); err != nil {
		return nil, err
	}
	if err := s.resendNotifications(ctx, report); err != nil {
		return nil, err
	}

	if report.Checked > 0 || report.Resent > 0 || report.Failed > 0 {
		s.logger.Info("certificate reconciliation finished",
			zap.Int("checked", report.Checked),
			zap.Int("issued", report.Issued),
			zap.Int("resent", report.Resent),
			zap.Int("failed", report.Failed),
		)
	}

	return report, nil
}

// reconcileCertificates pages through every completion candidate, so pairs that stay
// ineligible never hide the ones behind them
func (s *certificateService) reconcileCertificates(ctx context.Context, report *models.ReconcileReport) error {
	var cursor models.CompletionCandidate
	for {
		candidates, err := s.progressRepo.ListCompletionCandidates(ctx, cursor, reconcileBatch)
		if err != nil {
			return err
		}

		for _, c := range candidates {
			if err := ctx.Err(); err != nil {
				return err
			}

			report.Checked++
			cert, err := s.IssueIfEligible(ctx, c.UserID, c.CourseID)
			if err != nil {
				report.Failed++
				s.logger.Error("failed to reconcile certificate",
					zap.String("user_id", string(c.UserID)),
					zap.String("course_id", string(c.CourseID)),
					zap.Error(err),
				)
				continue
			}
			if cert != nil {
				report.Issued++
			}
		}

		if len(candidates) < reconcileBatch {
			return nil
		}
		cursor = candidates[len(candidates)-1]
	}
}

// resendNotifications queues the email of every certificate whose first enqueue failed
func (s *certificateService) resendNotifications(ctx context.Context, report *models.ReconcileReport) error {
	issuedBefore := s.now().UTC().Add(-notifyGrace)

	var cursor models.CertificateID
	for {
		pending, err := s.certificateRepo.ListUnnotified(ctx, issuedBefore, cursor, reconcileBatch)
		if err != nil {
			return err
		}

		for i := range pending {
			if err := ctx.Err(); err != nil {
				return err
			}

			cert := &pending[i].Certificate
			if err := s.notify(ctx, cert, pending[i].Email); err != nil {
				report.Failed++
				s.logger.Error("failed to resend certificate notification",
					zap.String("certificate_id", string(cert.ID)),
					zap.Error(err),
				)
				continue
			}
			report.Resent++
		}

		if len(pending) < reconcileBatch {
			return nil
		}
		cursor = pending[len(pending)-1].Certificate.ID
	}
}
