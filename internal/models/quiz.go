package models

import "time"

// DefaultPassingScore applies when a quiz is created without one
const DefaultPassingScore = 70

// QuestionType is the kind of answer a question expects
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
)

// Valid reports whether q is a known question type
func (q QuestionType) Valid() bool {
	switch q {
	case QuestionTypeMultipleChoice, QuestionTypeTrueFalse, QuestionTypeShortAnswer:
		return true
	}
	return false
}

// Question is one scored item of a quiz
type Question struct {
	Question      string       `json:"question"`
	QuestionType  QuestionType `json:"question_type"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Points        int          `json:"points"`
}

// Quiz is a set of scored questions attached to a module
type Quiz struct {
	ID               QuizID     `json:"id"`
	ModuleID         ModuleID   `json:"module_id"`
	CourseID         CourseID   `json:"course_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	PassingScore     int        `json:"passing_score"`
	TimeLimitMinutes *int       `json:"time_limit_minutes,omitempty"`
	Questions        []Question `json:"questions"`
}

// WithoutAnswers returns a copy of the quiz with every correct answer cleared
func (q *Quiz) WithoutAnswers() *Quiz {
	out := *q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.CorrectAnswer = ""
		out.Questions[i] = question
	}
	return &out
}

// QuizRequest creates or replaces a quiz with its questions
type QuizRequest struct {
	Title            string     `json:"title"`
	Description      string     `json:"description,omitempty"`
	PassingScore     *int       `json:"passing_score,omitempty"`
	TimeLimitMinutes *int       `json:"time_limit_minutes,omitempty"`
	Questions        []Question `json:"questions"`
}

// QuizSubmission maps question index to the submitted answer
type QuizSubmission struct {
	Answers map[int]string `json:"answers"`
}

// QuestionResult reports how one question was answered
type QuestionResult struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"correct"`
}

// QuizResult is the graded outcome of a submission
type QuizResult struct {
	Score        float64          `json:"score"`
	Passed       bool             `json:"passed"`
	TotalPoints  int              `json:"total_points"`
	EarnedPoints int              `json:"earned_points"`
	Results      []QuestionResult `json:"results"`
	Certificate  *Certificate     `json:"certificate,omitempty"`
}

// QuizAttempt is a stored submission
type QuizAttempt struct {
	ID           AttemptID `json:"id"`
	UserID       UserID    `json:"user_id"`
	QuizID       QuizID    `json:"quiz_id"`
	CourseID     CourseID  `json:"course_id"`
	Score        float64   `json:"score"`
	Passed       bool      `json:"passed"`
	EarnedPoints int       `json:"earned_points"`
	TotalPoints  int       `json:"total_points"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// QuizScore is the latest attempt of a quiz as shown in progress
type QuizScore struct {
	Score       float64   `json:"score"`
	Passed      bool      `json:"passed"`
	SubmittedAt time.Time `json:"submitted_at"`
}
