package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flowitec/gogrow/internal/models"
)

type progressRepository struct {
	db *sql.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *sql.DB) *progressRepository {
	return &progressRepository{
		db: db,
	}
}

// Ensure creates an empty progress record for (user, course) unless one exists
func (r *progressRepository) Ensure(ctx context.Context, userID models.UserID, courseID models.CourseID, at time.Time) error {
	query := `
		INSERT IGNORE INTO progress (user_id, course_id, percentage, started_at, last_accessed)
		VALUES (?, ?, 0, ?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query, userID, courseID, at, at); err != nil {
		return fmt.Errorf("failed to ensure progress: %w", err)
	}

	return nil
}

// RecordLesson adds a lesson to the completed set and refreshes the stored percentage.
// The progress row is locked for the duration so concurrent completions by the same
// user are counted one after the other. The progress record must already exist.
func (r *progressRepository) RecordLesson(ctx context.Context, userID models.UserID, ref models.LessonRef, at time.Time) (*models.LessonTally, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var locked int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM progress WHERE user_id = ? AND course_id = ? FOR UPDATE`,
		userID, ref.CourseID,
	).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock progress: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`INSERT IGNORE INTO progress_lessons (user_id, course_id, lesson_id, completed_at) VALUES (?, ?, ?, ?)`,
		userID, ref.CourseID, ref.LessonID, at,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to add completed lesson: %w", err)
	}
	added, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	tally := models.LessonTally{Added: added == 1}
	err = tx.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(pl.lesson_id)
		FROM lessons l
		JOIN modules m ON m.id = l.module_id
		LEFT JOIN progress_lessons pl ON pl.lesson_id = l.id AND pl.user_id = ? AND pl.course_id = m.course_id
		WHERE m.course_id = ?
	`, userID, ref.CourseID).Scan(&tally.Total, &tally.Completed)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed lessons: %w", err)
	}
	tally.Percentage = models.CompletionPercentage(tally.Completed, tally.Total)

	_, err = tx.ExecContext(ctx,
		`UPDATE progress SET percentage = ?, last_accessed = ? WHERE user_id = ? AND course_id = ?`,
		tally.Percentage, at, userID, ref.CourseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update progress percentage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &tally, nil
}

// CountCompleted returns how many of the course's current lessons the user has completed,
// together with the course's lesson total
func (r *progressRepository) CountCompleted(ctx context.Context, userID models.UserID, courseID models.CourseID) (completed, total int, err error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(pl.lesson_id)
		FROM lessons l
		JOIN modules m ON m.id = l.module_id
		LEFT JOIN progress_lessons pl ON pl.lesson_id = l.id AND pl.user_id = ? AND pl.course_id = m.course_id
		WHERE m.course_id = ?
	`

	if err = r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&total, &completed); err != nil {
		return 0, 0, fmt.Errorf("failed to count completed lessons: %w", err)
	}

	return completed, total, nil
}

// Get returns the stored progress of (user, course) with its completed lesson set.
// Quiz scores are not filled in.
func (r *progressRepository) Get(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Progress, error) {
	query := `
		SELECT percentage, started_at, last_accessed, completed_at
		FROM progress
		WHERE user_id = ? AND course_id = ?
		LIMIT 1
	`

	p := models.NewProgress(userID, courseID)
	var startedAt, lastAccessed, completedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, userID, courseID).Scan(&p.Percentage, &startedAt, &lastAccessed, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	p.StartedAt = timePtr(startedAt)
	p.LastAccessed = timePtr(lastAccessed)
	p.CompletedAt = timePtr(completedAt)

	lessons, err := r.completedLessons(ctx, `
		SELECT course_id, lesson_id
		FROM progress_lessons
		WHERE user_id = ? AND course_id = ?
		ORDER BY completed_at, lesson_id
	`, userID, courseID)
	if err != nil {
		return nil, err
	}
	if ids, ok := lessons[courseID]; ok {
		p.CompletedLessons = ids
	}

	return p, nil
}

// CompletedLessonsByUser returns the completed lesson sets of every course the user has progress in
func (r *progressRepository) CompletedLessonsByUser(ctx context.Context, userID models.UserID) (map[models.CourseID][]models.LessonID, error) {
	return r.completedLessons(ctx, `
		SELECT course_id, lesson_id
		FROM progress_lessons
		WHERE user_id = ?
		ORDER BY course_id, completed_at, lesson_id
	`, userID)
}

func (r *progressRepository) completedLessons(ctx context.Context, query string, args ...any) (map[models.CourseID][]models.LessonID, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed lessons: %w", err)
	}
	defer rows.Close()

	byCourse := make(map[models.CourseID][]models.LessonID)
	for rows.Next() {
		var courseID models.CourseID
		var lessonID models.LessonID
		if err := rows.Scan(&courseID, &lessonID); err != nil {
			return nil, fmt.Errorf("failed to scan completed lesson: %w", err)
		}
		byCourse[courseID] = append(byCourse[courseID], lessonID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return byCourse, nil
}

// MarkCompleted stamps completed_at once; later calls keep the first timestamp
func (r *progressRepository) MarkCompleted(ctx context.Context, userID models.UserID, courseID models.CourseID, at time.Time) error {
	query := `
		UPDATE progress
		SET completed_at = COALESCE(completed_at, ?), percentage = 100
		WHERE user_id = ? AND course_id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, at, userID, courseID); err != nil {
		return fmt.Errorf("failed to mark progress completed: %w", err)
	}

	return nil
}

// ListByCourse returns every learner's progress in a course with the learner's profile
func (r *progressRepository) ListByCourse(ctx context.Context, courseID models.CourseID) ([]models.LearnerProgress, error) {
	query := `
		SELECT
			p.user_id, p.percentage, p.started_at, p.last_accessed, p.completed_at,
			u.email, u.first_name, u.last_name, u.employee_id, u.role, u.created_at
		FROM progress p
		JOIN users u ON u.id = p.user_id
		WHERE p.course_id = ?
		ORDER BY u.last_name, u.first_name, u.email
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query course progress: %w", err)
	}
	defer rows.Close()

	list := []models.LearnerProgress{}
	for rows.Next() {
		var lp models.LearnerProgress
		var u models.User
		var startedAt, lastAccessed, completedAt sql.NullTime
		err := rows.Scan(
			&lp.UserID,
			&lp.Percentage,
			&startedAt,
			&lastAccessed,
			&completedAt,
			&u.Email,
			&u.FirstName,
			&u.LastName,
			&u.EmployeeID,
			&u.Role,
			&u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course progress: %w", err)
		}
		lp.CourseID = courseID
		lp.StartedAt = timePtr(startedAt)
		lp.LastAccessed = timePtr(lastAccessed)
		lp.CompletedAt = timePtr(completedAt)
		lp.CompletedLessons = []models.LessonID{}
		lp.QuizScores = map[models.QuizID]models.QuizScore{}
		u.ID = lp.UserID
		lp.User = &u
		list = append(list, lp)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	lessons, err := r.completedLessonsByUser(ctx, courseID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if ids, ok := lessons[list[i].UserID]; ok {
			list[i].CompletedLessons = ids
		}
	}

	return list, nil
}

func (r *progressRepository) completedLessonsByUser(ctx context.Context, courseID models.CourseID) (map[models.UserID][]models.LessonID, error) {
	query := `
		SELECT user_id, lesson_id
		FROM progress_lessons
		WHERE course_id = ?
		ORDER BY user_id, completed_at, lesson_id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed lessons: %w", err)
	}
	defer rows.Close()

	byUser := make(map[models.UserID][]models.LessonID)
	for rows.Next() {
		var userID models.UserID
		var lessonID models.LessonID
		if err := rows.Scan(&userID, &lessonID); err != nil {
			return nil, fmt.Errorf("failed to scan completed lesson: %w", err)
		}
		byUser[userID] = append(byUser[userID], lessonID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return byUser, nil
}

// ListCompletionCandidates returns up to limit (user, course) pairs at 100% that hold no
// certificate yet, ordered by (user_id, course_id) and strictly after the given cursor.
// A zero cursor starts from the beginning.
func (r *progressRepository) ListCompletionCandidates(ctx context.Context, after models.CompletionCandidate, limit int) ([]models.CompletionCandidate, error) {
	query := `
		SELECT p.user_id, p.course_id
		FROM progress p
		LEFT JOIN certificates c ON c.user_id = p.user_id AND c.course_id = p.course_id
		WHERE p.percentage = 100 AND c.id IS NULL
			AND (p.user_id > ? OR (p.user_id = ? AND p.course_id > ?))
		ORDER BY p.user_id, p.course_id
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, after.UserID, after.UserID, after.CourseID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query completion candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.CompletionCandidate{}
	for rows.Next() {
		var c models.CompletionCandidate
		if err := rows.Scan(&c.UserID, &c.CourseID); err != nil {
			return nil, fmt.Errorf("failed to scan completion candidate: %w", err)
		}
		candidates = append(candidates, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return candidates, nil
}
