package models

import "time"

// Course is the top-level learning unit
type Course struct {
	ID            CourseID  `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Thumbnail     string    `json:"thumbnail,omitempty"`
	Category      string    `json:"category,omitempty"`
	DurationHours float64   `json:"duration_hours"`
	IsPublished   bool      `json:"is_published"`
	CreatedBy     UserID    `json:"created_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// CourseRequest creates or fully replaces a course
type CourseRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Thumbnail     string  `json:"thumbnail,omitempty"`
	Category      string  `json:"category,omitempty"`
	DurationHours float64 `json:"duration_hours"`
	IsPublished   bool    `json:"is_published"`
}

// CourseTree is a course with its ordered modules, lessons and quizzes
type CourseTree struct {
	Course
	Modules []ModuleTree `json:"modules"`
}

// ModuleTree is a module with its ordered lessons and quizzes
type ModuleTree struct {
	Module
	Lessons []Lesson `json:"lessons"`
	Quizzes []Quiz   `json:"quizzes"`
}

// LessonCount returns the number of lessons across all modules
func (t *CourseTree) LessonCount() int {
	n := 0
	for _, m := range t.Modules {
		n += len(m.Lessons)
	}
	return n
}

// WithoutAnswers returns a copy of the tree with quiz answers removed
func (t *CourseTree) WithoutAnswers() *CourseTree {
	out := &CourseTree{Course: t.Course, Modules: make([]ModuleTree, len(t.Modules))}
	for i, m := range t.Modules {
		quizzes := make([]Quiz, len(m.Quizzes))
		for j := range m.Quizzes {
			quizzes[j] = *m.Quizzes[j].WithoutAnswers()
		}
		out.Modules[i] = ModuleTree{Module: m.Module, Lessons: m.Lessons, Quizzes: quizzes}
	}
	return out
}

// CourseDetail is the course page: the tree plus the caller's progress when they are enrolled
type CourseDetail struct {
	*CourseTree
	UserProgress *Progress `json:"user_progress,omitempty"`
}

// EnrolledCourse is a course in the caller's enrolled list
type EnrolledCourse struct {
	Course
	Progress         int        `json:"progress"`
	CompletedLessons []LessonID `json:"completed_lessons"`
}
