package models

import "github.com/google/uuid"

// Identifiers are application-generated UUID strings. Each entity gets its own
// type so a CourseID cannot be passed where a LessonID is expected.
type (
	UserID        string
	CourseID      string
	ModuleID      string
	LessonID      string
	QuizID        string
	CertificateID string
	AttemptID     string
)

func NewUserID() UserID               { return UserID(uuid.NewString()) }
func NewCourseID() CourseID           { return CourseID(uuid.NewString()) }
func NewModuleID() ModuleID           { return ModuleID(uuid.NewString()) }
func NewLessonID() LessonID           { return LessonID(uuid.NewString()) }
func NewQuizID() QuizID               { return QuizID(uuid.NewString()) }
func NewCertificateID() CertificateID { return CertificateID(uuid.NewString()) }
func NewAttemptID() AttemptID         { return AttemptID(uuid.NewString()) }
