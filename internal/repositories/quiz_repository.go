package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/flowitec/gogrow/internal/models"
)

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new quiz repository
func NewQuizRepository(db *sql.DB) *quizRepository {
	return &quizRepository{
		db: db,
	}
}

// Create inserts a quiz and its questions in one transaction
func (r *quizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO quizzes (id, module_id, course_id, title, description, passing_score, time_limit_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		quiz.ID,
		quiz.ModuleID,
		quiz.CourseID,
		quiz.Title,
		quiz.Description,
		quiz.PassingScore,
		nullableInt(quiz.TimeLimitMinutes),
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}

	if err := insertQuestions(ctx, tx, quiz.ID, quiz.Questions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Update replaces a quiz's fields and its whole question list in one transaction
func (r *quizRepository) Update(ctx context.Context, quiz *models.Quiz) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE quizzes
		SET title = ?, description = ?, passing_score = ?, time_limit_minutes = ?
		WHERE id = ?
	`
	_, err = tx.ExecContext(ctx, query,
		quiz.Title,
		quiz.Description,
		quiz.PassingScore,
		nullableInt(quiz.TimeLimitMinutes),
		quiz.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quiz: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM quiz_questions WHERE quiz_id = ?`, quiz.ID); err != nil {
		return fmt.Errorf("failed to delete quiz questions: %w", err)
	}

	if err := insertQuestions(ctx, tx, quiz.ID, quiz.Questions); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertQuestions(ctx context.Context, tx *sql.Tx, quizID models.QuizID, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	query := `
		INSERT INTO quiz_questions (quiz_id, position, question, question_type, options, correct_answer, points)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i, q := range questions {
		var options any
		if len(q.Options) > 0 {
			encoded, err := json.Marshal(q.Options)
			if err != nil {
				return fmt.Errorf("failed to encode question options: %w", err)
			}
			options = string(encoded)
		}

		if _, err := tx.ExecContext(ctx, query, quizID, i, q.Question, q.QuestionType, options, q.CorrectAnswer, q.Points); err != nil {
			return fmt.Errorf("failed to insert quiz question %d: %w", i, err)
		}
	}

	return nil
}

// GetByID retrieves a quiz with its questions in order
func (r *quizRepository) GetByID(ctx context.Context, id models.QuizID) (*models.Quiz, error) {
	query := `
		SELECT id, module_id, course_id, title, description, passing_score, time_limit_minutes
		FROM quizzes
		WHERE id = ?
		LIMIT 1
	`

	quiz, err := scanQuiz(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrQuizNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz by id: %w", err)
	}

	questions, err := r.queryQuestions(ctx, `
		SELECT quiz_id, question, question_type, options, correct_answer, points
		FROM quiz_questions
		WHERE quiz_id = ?
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	quiz.Questions = questions[quiz.ID]
	if quiz.Questions == nil {
		quiz.Questions = []models.Question{}
	}

	return quiz, nil
}

// ListByCourse returns every quiz of a course with its questions
func (r *quizRepository) ListByCourse(ctx context.Context, courseID models.CourseID) ([]models.Quiz, error) {
	query := `
		SELECT id, module_id, course_id, title, description, passing_score, time_limit_minutes
		FROM quizzes
		WHERE course_id = ?
		ORDER BY module_id, title, id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := []models.Quiz{}
	for rows.Next() {
		quiz, err := scanQuiz(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quizzes = append(quizzes, *quiz)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	if len(quizzes) == 0 {
		return quizzes, nil
	}

	questions, err := r.queryQuestions(ctx, `
		SELECT qq.quiz_id, qq.question, qq.question_type, qq.options, qq.correct_answer, qq.points
		FROM quiz_questions qq
		JOIN quizzes q ON q.id = qq.quiz_id
		WHERE q.course_id = ?
		ORDER BY qq.quiz_id, qq.position
	`, courseID)
	if err != nil {
		return nil, err
	}

	for i := range quizzes {
		quizzes[i].Questions = questions[quizzes[i].ID]
		if quizzes[i].Questions == nil {
			quizzes[i].Questions = []models.Question{}
		}
	}

	return quizzes, nil
}

// Delete removes a quiz and its questions
func (r *quizRepository) Delete(ctx context.Context, id models.QuizID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete quiz: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrQuizNotFound
	}

	return nil
}

func scanQuiz(row interface{ Scan(...any) error }) (*models.Quiz, error) {
	var q models.Quiz
	var timeLimit sql.NullInt64
	err := row.Scan(&q.ID, &q.ModuleID, &q.CourseID, &q.Title, &q.Description, &q.PassingScore, &timeLimit)
	if err != nil {
		return nil, err
	}
	if timeLimit.Valid {
		minutes := int(timeLimit.Int64)
		q.TimeLimitMinutes = &minutes
	}
	return &q, nil
}

// queryQuestions runs a question query and groups the rows by quiz ID, keeping row order
func (r *quizRepository) queryQuestions(ctx context.Context, query string, args ...any) (map[models.QuizID][]models.Question, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz questions: %w", err)
	}
	defer rows.Close()

	byQuiz := make(map[models.QuizID][]models.Question)
	for rows.Next() {
		var quizID models.QuizID
		var q models.Question
		var options sql.NullString
		if err := rows.Scan(&quizID, &q.Question, &q.QuestionType, &options, &q.CorrectAnswer, &q.Points); err != nil {
			return nil, fmt.Errorf("failed to scan quiz question: %w", err)
		}
		if options.Valid && options.String != "" {
			if err := json.Unmarshal([]byte(options.String), &q.Options); err != nil {
				return nil, fmt.Errorf("failed to decode question options: %w", err)
			}
		}
		byQuiz[quizID] = append(byQuiz[quizID], q)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return byQuiz, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
