package models

// Module is an ordered group of lessons and quizzes inside a course
type Module struct {
	ID          ModuleID `json:"id"`
	CourseID    CourseID `json:"course_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Order       int      `json:"order"`
}

// ModuleRequest creates or replaces a module
type ModuleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}
