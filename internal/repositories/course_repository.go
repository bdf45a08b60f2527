package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flowitec/gogrow/internal/models"
)

type courseRepository struct {
	db *sql.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *sql.DB) *courseRepository {
	return &courseRepository{
		db: db,
	}
}

const courseColumns = `id, title, description, thumbnail, category, duration_hours, is_published, created_by, created_at`

func scanCourse(row interface{ Scan(...any) error }) (*models.Course, error) {
	var c models.Course
	var createdBy sql.NullString
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Thumbnail,
		&c.Category,
		&c.DurationHours,
		&c.IsPublished,
		&createdBy,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CreatedBy = models.UserID(createdBy.String)
	return &c, nil
}

// Create inserts a course
func (r *courseRepository) Create(ctx context.Context, course *models.Course) error {
	query := `
		INSERT INTO courses (` + courseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var createdBy any
	if course.CreatedBy != "" {
		createdBy = course.CreatedBy
	}

	_, err := r.db.ExecContext(ctx, query,
		course.ID,
		course.Title,
		course.Description,
		course.Thumbnail,
		course.Category,
		course.DurationHours,
		course.IsPublished,
		createdBy,
		course.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	return nil
}

// GetByID retrieves a course by its ID
func (r *courseRepository) GetByID(ctx context.Context, id models.CourseID) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ? LIMIT 1`

	course, err := scanCourse(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course by id: %w", err)
	}

	return course, nil
}

// List returns courses ordered by creation time. When publishedOnly is set, drafts are excluded.
func (r *courseRepository) List(ctx context.Context, publishedOnly bool) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses`
	if publishedOnly {
		query += ` WHERE is_published = 1`
	}
	query += ` ORDER BY created_at, title`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	courses := []models.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courses = append(courses, *course)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return courses, nil
}

// Update overwrites the editable fields of a course
func (r *courseRepository) Update(ctx context.Context, course *models.Course) error {
	query := `
		UPDATE courses
		SET title = ?, description = ?, thumbnail = ?, category = ?, duration_hours = ?, is_published = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		course.Title,
		course.Description,
		course.Thumbnail,
		course.Category,
		course.DurationHours,
		course.IsPublished,
		course.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	return nil
}

// Delete removes a course. Modules, lessons, quizzes, enrollments and progress go with it.
func (r *courseRepository) Delete(ctx context.Context, id models.CourseID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrCourseNotFound
	}

	return nil
}

// Count returns the number of courses
func (r *courseRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return count, nil
}
