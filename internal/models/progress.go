package models

import "time"

// Progress is a user's completion state for one course. The completed set never shrinks.
type Progress struct {
	UserID           UserID               `json:"user_id"`
	CourseID         CourseID             `json:"course_id"`
	CompletedLessons []LessonID           `json:"completed_lessons"`
	Percentage       int                  `json:"percentage"`
	QuizScores       map[QuizID]QuizScore `json:"quiz_scores"`
	StartedAt        *time.Time           `json:"started_at,omitempty"`
	LastAccessed     *time.Time           `json:"last_accessed,omitempty"`
	CompletedAt      *time.Time           `json:"completed_at,omitempty"`
}

// NewProgress returns the zero state for a user who has not started a course
func NewProgress(userID UserID, courseID CourseID) *Progress {
	return &Progress{
		UserID:           userID,
		CourseID:         courseID,
		CompletedLessons: []LessonID{},
		QuizScores:       map[QuizID]QuizScore{},
	}
}

// CompletionPercentage returns completed/total*100 rounded half up to an integer.
// A course without lessons is 0%, and only a fully completed course reaches 100.
func CompletionPercentage(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return min((completed*200+total)/(total*2), 99)
}

// LessonProgressRequest marks a lesson as completed
type LessonProgressRequest struct {
	LessonID  LessonID `json:"lesson_id"`
	Completed *bool    `json:"completed,omitempty"`
}

// LessonProgressResult is returned after a lesson completion is recorded
type LessonProgressResult struct {
	Message          string       `json:"message"`
	CourseID         CourseID     `json:"course_id"`
	Percentage       int          `json:"percentage"`
	CompletedLessons []LessonID   `json:"completed_lessons"`
	Certificate      *Certificate `json:"certificate,omitempty"`
}

// LearnerProgress is one row of the admin per-course progress report
type LearnerProgress struct {
	Progress
	User *User `json:"user"`
}

// LessonTally is the completion count of a course right after a lesson was recorded
type LessonTally struct {
	Added      bool
	Completed  int
	Total      int
	Percentage int
}

// AllCompleted reports whether every lesson of a non-empty course is completed
func (t *LessonTally) AllCompleted() bool {
	return t.Total > 0 && t.Completed >= t.Total
}
