package models

// ContentType is how a lesson's content is presented
type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypePDF   ContentType = "pdf"
	ContentTypeText  ContentType = "text"
	ContentTypeEmbed ContentType = "embed"
)

// Valid reports whether c is a known content type
func (c ContentType) Valid() bool {
	switch c {
	case ContentTypeVideo, ContentTypePDF, ContentTypeText, ContentTypeEmbed:
		return true
	}
	return false
}

// Lesson is a single unit of content inside a module
type Lesson struct {
	ID              LessonID    `json:"id"`
	ModuleID        ModuleID    `json:"module_id"`
	Title           string      `json:"title"`
	ContentType     ContentType `json:"content_type"`
	Content         string      `json:"content"`
	DurationMinutes int         `json:"duration_minutes"`
	Order           int         `json:"order"`
}

// LessonRequest creates or replaces a lesson
type LessonRequest struct {
	Title           string      `json:"title"`
	ContentType     ContentType `json:"content_type"`
	Content         string      `json:"content"`
	DurationMinutes int         `json:"duration_minutes"`
	Order           int         `json:"order"`
}

// LessonRef locates a lesson in the course hierarchy
type LessonRef struct {
	LessonID LessonID
	ModuleID ModuleID
	CourseID CourseID
}
