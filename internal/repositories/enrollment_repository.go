package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flowitec/gogrow/internal/models"
)

type enrollmentRepository struct {
	db *sql.DB
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *sql.DB) *enrollmentRepository {
	return &enrollmentRepository{
		db: db,
	}
}

// Create enrolls a user in a course. It reports false when the enrollment already existed.
func (r *enrollmentRepository) Create(ctx context.Context, userID models.UserID, courseID models.CourseID, at time.Time) (bool, error) {
	query := `INSERT IGNORE INTO enrollments (user_id, course_id, enrolled_at) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, userID, courseID, at)
	if err != nil {
		return false, fmt.Errorf("failed to create enrollment: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return affected == 1, nil
}

// Exists reports whether a user is enrolled in a course
func (r *enrollmentRepository) Exists(ctx context.Context, userID models.UserID, courseID models.CourseID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM enrollments WHERE user_id = ? AND course_id = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}

	return exists, nil
}

// ListCourses returns the courses a user is enrolled in with their stored percentage, oldest enrollment first
func (r *enrollmentRepository) ListCourses(ctx context.Context, userID models.UserID) ([]models.EnrolledCourse, error) {
	query := `
		SELECT
			c.id, c.title, c.description, c.thumbnail, c.category, c.duration_hours, c.is_published, c.created_by, c.created_at,
			COALESCE(p.percentage, 0)
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		LEFT JOIN progress p ON p.user_id = e.user_id AND p.course_id = e.course_id
		WHERE e.user_id = ?
		ORDER BY e.enrolled_at, c.title
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query enrolled courses: %w", err)
	}
	defer rows.Close()

	courses := []models.EnrolledCourse{}
	for rows.Next() {
		var ec models.EnrolledCourse
		var createdBy sql.NullString
		err := rows.Scan(
			&ec.ID,
			&ec.Title,
			&ec.Description,
			&ec.Thumbnail,
			&ec.Category,
			&ec.DurationHours,
			&ec.IsPublished,
			&createdBy,
			&ec.CreatedAt,
			&ec.Progress,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrolled course: %w", err)
		}
		ec.CreatedBy = models.UserID(createdBy.String)
		ec.CompletedLessons = []models.LessonID{}
		courses = append(courses, ec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return courses, nil
}

// Count returns the number of enrollments
func (r *enrollmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM enrollments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return count, nil
}
