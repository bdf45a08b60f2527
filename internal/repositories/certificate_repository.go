package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flowitec/gogrow/internal/models"
)

type certificateRepository struct {
	db *sql.DB
}

// NewCertificateRepository creates a new certificate repository
func NewCertificateRepository(db *sql.DB) *certificateRepository {
	return &certificateRepository{
		db: db,
	}
}

const certificateColumns = `id, user_id, course_id, user_name, course_title, certificate_number, issued_at`

func scanCertificate(row interface{ Scan(...any) error }) (*models.Certificate, error) {
	var c models.Certificate
	err := row.Scan(&c.ID, &c.UserID, &c.CourseID, &c.UserName, &c.CourseTitle, &c.CertificateNumber, &c.IssuedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateIfAbsent inserts the certificate unless (user, course) already holds one.
// It returns the stored certificate and whether this call created it.
func (r *certificateRepository) CreateIfAbsent(ctx context.Context, cert *models.Certificate) (*models.Certificate, bool, error) {
	query := `
		INSERT IGNORE INTO certificates (` + certificateColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		cert.ID,
		cert.UserID,
		cert.CourseID,
		cert.UserName,
		cert.CourseTitle,
		cert.CertificateNumber,
		cert.IssuedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create certificate: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 1 {
		return cert, true, nil
	}

	existing, err := r.GetByUserAndCourse(ctx, cert.UserID, cert.CourseID)
	if err != nil {
		return nil, false, err
	}

	return existing, false, nil
}

// GetByID retrieves a certificate by its ID
func (r *certificateRepository) GetByID(ctx context.Context, id models.CertificateID) (*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE id = ? LIMIT 1`

	cert, err := scanCertificate(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate by id: %w", err)
	}

	return cert, nil
}

// GetByUserAndCourse retrieves the certificate a user holds for a course
func (r *certificateRepository) GetByUserAndCourse(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE user_id = ? AND course_id = ? LIMIT 1`

	cert, err := scanCertificate(r.db.QueryRowContext(ctx, query, userID, courseID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCertificateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	return cert, nil
}

// ListByUser returns a user's certificates, newest first
func (r *certificateRepository) ListByUser(ctx context.Context, userID models.UserID) ([]models.Certificate, error) {
	query := `SELECT ` + certificateColumns + ` FROM certificates WHERE user_id = ? ORDER BY issued_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query certificates: %w", err)
	}
	defer rows.Close()

	certs := []models.Certificate{}
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certificate: %w", err)
		}
		certs = append(certs, *cert)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return certs, nil
}

// Count returns the number of issued certificates
func (r *certificateRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM certificates`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count certificates: %w", err)
	}
	return count, nil
}

// MarkNotified records that the certificate's email task reached the queue. Marking twice is a no-op.
func (r *certificateRepository) MarkNotified(ctx context.Context, id models.CertificateID, at time.Time) error {
	query := `INSERT IGNORE INTO certificate_notifications (certificate_id, notified_at) VALUES (?, ?)`

	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to mark certificate notified: %w", err)
	}

	return nil
}

// ListUnnotified returns up to limit certificates issued at or before issuedBefore whose email
// was never queued, ordered by ID and strictly after the given cursor, with the owner's email
func (r *certificateRepository) ListUnnotified(ctx context.Context, issuedBefore time.Time, after models.CertificateID, limit int) ([]models.PendingNotification, error) {
	query := `
		SELECT c.id, c.user_id, c.course_id, c.user_name, c.course_title, c.certificate_number, c.issued_at, u.email
		FROM certificates c
		JOIN users u ON u.id = c.user_id
		LEFT JOIN certificate_notifications n ON n.certificate_id = c.id
		WHERE n.certificate_id IS NULL AND c.issued_at <= ? AND c.id > ?
		ORDER BY c.id
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, issuedBefore, after, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query unnotified certificates: %w", err)
	}
	defer rows.Close()

	pending := []models.PendingNotification{}
	for rows.Next() {
		var p models.PendingNotification
		c := &p.Certificate
		if err := rows.Scan(&c.ID, &c.UserID, &c.CourseID, &c.UserName, &c.CourseTitle, &c.CertificateNumber, &c.IssuedAt, &p.Email); err != nil {
			return nil, fmt.Errorf("failed to scan unnotified certificate: %w", err)
		}
		pending = append(pending, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return pending, nil
}
