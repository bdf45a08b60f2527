package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flowitec/gogrow/internal/models"
)

type lessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) *lessonRepository {
	return &lessonRepository{
		db: db,
	}
}

const lessonColumns = `l.id, l.module_id, l.title, l.content_type, l.content, l.duration_minutes, l.sort_order`

func scanLesson(row interface{ Scan(...any) error }) (*models.Lesson, error) {
	var l models.Lesson
	err := row.Scan(&l.ID, &l.ModuleID, &l.Title, &l.ContentType, &l.Content, &l.DurationMinutes, &l.Order)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// Create inserts a lesson
func (r *lessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	query := `
		INSERT INTO lessons (id, module_id, title, content_type, content, duration_minutes, sort_order)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		lesson.ID,
		lesson.ModuleID,
		lesson.Title,
		lesson.ContentType,
		lesson.Content,
		lesson.DurationMinutes,
		lesson.Order,
	)
	if err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}

	return nil
}

// GetByID retrieves a lesson by its ID
func (r *lessonRepository) GetByID(ctx context.Context, id models.LessonID) (*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons l WHERE l.id = ? LIMIT 1`

	lesson, err := scanLesson(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrLessonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson by id: %w", err)
	}

	return lesson, nil
}

// GetRef resolves a lesson to its module and course
func (r *lessonRepository) GetRef(ctx context.Context, id models.LessonID) (*models.LessonRef, error) {
	query := `
		SELECT l.id, l.module_id, m.course_id
		FROM lessons l
		JOIN modules m ON m.id = l.module_id
		WHERE l.id = ?
		LIMIT 1
	`

	var ref models.LessonRef
	err := r.db.QueryRowContext(ctx, query, id).Scan(&ref.LessonID, &ref.ModuleID, &ref.CourseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrLessonNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve lesson: %w", err)
	}

	return &ref, nil
}

// ListByCourse returns every lesson of a course, ordered by module then lesson order
func (r *lessonRepository) ListByCourse(ctx context.Context, courseID models.CourseID) ([]models.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons l
		JOIN modules m ON m.id = l.module_id
		WHERE m.course_id = ?
		ORDER BY m.sort_order, m.id, l.sort_order, l.id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lessons: %w", err)
	}
	defer rows.Close()

	lessons := []models.Lesson{}
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, *lesson)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return lessons, nil
}

// CountByCourse returns the number of lessons in a course
func (r *lessonRepository) CountByCourse(ctx context.Context, courseID models.CourseID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM lessons l
		JOIN modules m ON m.id = l.module_id
		WHERE m.course_id = ?
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, courseID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}

	return count, nil
}

// Update overwrites the editable fields of a lesson
func (r *lessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	query := `
		UPDATE lessons
		SET title = ?, content_type = ?, content = ?, duration_minutes = ?, sort_order = ?
		WHERE id = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		lesson.Title,
		lesson.ContentType,
		lesson.Content,
		lesson.DurationMinutes,
		lesson.Order,
		lesson.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lesson: %w", err)
	}

	return nil
}

// Delete removes a lesson
func (r *lessonRepository) Delete(ctx context.Context, id models.LessonID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrLessonNotFound
	}

	return nil
}
