package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/flowitec/gogrow/internal/models"
)

type quizAttemptRepository struct {
	db *sql.DB
}

// NewQuizAttemptRepository creates a new quiz attempt repository
func NewQuizAttemptRepository(db *sql.DB) *quizAttemptRepository {
	return &quizAttemptRepository{
		db: db,
	}
}

// Create stores a graded submission
func (r *quizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	query := `
		INSERT INTO quiz_attempts (id, user_id, quiz_id, course_id, score, passed, earned_points, total_points, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.UserID,
		attempt.QuizID,
		attempt.CourseID,
		attempt.Score,
		attempt.Passed,
		attempt.EarnedPoints,
		attempt.TotalPoints,
		attempt.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz attempt: %w", err)
	}

	return nil
}

// LatestScores returns the most recent attempt of each quiz the user took in a course
func (r *quizAttemptRepository) LatestScores(ctx context.Context, userID models.UserID, courseID models.CourseID) (map[models.QuizID]models.QuizScore, error) {
	query := `
		SELECT quiz_id, score, passed, submitted_at
		FROM quiz_attempts
		WHERE user_id = ? AND course_id = ?
		ORDER BY submitted_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz attempts: %w", err)
	}
	defer rows.Close()

	scores := make(map[models.QuizID]models.QuizScore)
	for rows.Next() {
		var quizID models.QuizID
		var s models.QuizScore
		if err := rows.Scan(&quizID, &s.Score, &s.Passed, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quiz attempt: %w", err)
		}
		// Rows are oldest first, so the last write wins
		scores[quizID] = s
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return scores, nil
}

// CountUnpassedQuizzes returns how many quizzes of a course the user has not passed,
// judged by the latest attempt per quiz in the same order LatestScores uses
func (r *quizAttemptRepository) CountUnpassedQuizzes(ctx context.Context, userID models.UserID, courseID models.CourseID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM quizzes q
		WHERE q.course_id = ?
			AND NOT EXISTS (
				SELECT 1 FROM quiz_attempts a
				WHERE a.quiz_id = q.id AND a.user_id = ? AND a.passed = 1
					AND NOT EXISTS (
						SELECT 1 FROM quiz_attempts b
						WHERE b.quiz_id = a.quiz_id AND b.user_id = a.user_id
							AND (b.submitted_at > a.submitted_at OR (b.submitted_at = a.submitted_at AND b.id > a.id))
					)
			)
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, courseID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unpassed quizzes: %w", err)
	}

	return count, nil
}
