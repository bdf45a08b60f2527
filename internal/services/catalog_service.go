package services

import (
	"context"
	"time"

	"github.com/flowitec/gogrow/internal/models"
	"go.uber.org/zap"
)

// EnrollmentRepository is the interface that wraps methods for enrollment data access
type EnrollmentRepository interface {
	// Method Create enrolls a user in a course. It reports false when the enrollment already existed.
	Create(ctx context.Context, userID models.UserID, courseID models.CourseID, at time.Time) (bool, error)
	// Method Exists reports whether a user is enrolled in a course.
	Exists(ctx context.Context, userID models.UserID, courseID models.CourseID) (bool, error)
	// Method ListCourses returns the courses a user is enrolled in with their stored percentage.
	ListCourses(ctx context.Context, userID models.UserID) ([]models.EnrolledCourse, error)
}

// ProgressStarter creates empty progress records and reads completed lesson sets
type ProgressStarter interface {
	Ensure(ctx context.Context, userID models.UserID, courseID models.CourseID, at time.Time) error
	CompletedLessonsByUser(ctx context.Context, userID models.UserID) (map[models.CourseID][]models.LessonID, error)
}

// CourseProgressReader returns a user's progress in a course
type CourseProgressReader interface {
	GetCourseProgress(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Progress, error)
}

type catalogService struct {
	trees          *courseTreeLoader
	courseRepo     CourseReader
	enrollmentRepo EnrollmentRepository
	progressRepo   ProgressStarter
	progress       CourseProgressReader
	logger         *zap.Logger
	now            func() time.Time
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	courseRepo CourseReader,
	moduleRepo ModuleLister,
	lessonRepo LessonLister,
	quizRepo QuizLister,
	enrollmentRepo EnrollmentRepository,
	progressRepo ProgressStarter,
	progress CourseProgressReader,
	cache CourseTreeCache,
	logger *zap.Logger,
) *catalogService {
	return &catalogService{
		trees: &courseTreeLoader{
			courseRepo: courseRepo,
			moduleRepo: moduleRepo,
			lessonRepo: lessonRepo,
			quizRepo:   quizRepo,
			cache:      cache,
			logger:     logger,
		},
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		progress:       progress,
		logger:         logger,
		now:            time.Now,
	}
}

// ListCourses returns published courses to learners and every course to admins
func (s *catalogService) ListCourses(ctx context.Context, role models.Role) ([]models.Course, error) {
	return s.courseRepo.List(ctx, role != models.RoleAdmin)
}

// GetCourse returns the course tree with the caller's progress when the caller is enrolled.
// Learners get quizzes without answers and cannot open drafts they are not enrolled in.
func (s *catalogService) GetCourse(ctx context.Context, id models.CourseID, userID models.UserID, role models.Role) (*models.CourseDetail, error) {
	tree, err := s.trees.load(ctx, id)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.enrollmentRepo.Exists(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	detail := &models.CourseDetail{CourseTree: tree}
	if role != models.RoleAdmin {
		if !tree.IsPublished && !enrolled {
			return nil, models.ErrCourseNotFound
		}
		detail.CourseTree = tree.WithoutAnswers()
	}

	if enrolled {
		progress, err := s.progress.GetCourseProgress(ctx, userID, id)
		if err != nil {
			return nil, err
		}
		detail.UserProgress = progress
	}

	return detail, nil
}

// Enroll enrolls the caller in a course and starts an empty progress record
func (s *catalogService) Enroll(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.EnrollResponse, error) {
	if courseID == "" {
		return nil, models.Validation("course_id is required")
	}

	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	created, err := s.enrollmentRepo.Create(ctx, userID, courseID, now)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, models.ErrAlreadyEnrolled
	}

	if err := s.progressRepo.Ensure(ctx, userID, courseID, now); err != nil {
		return nil, err
	}

	s.logger.Info("user enrolled", zap.String("user_id", string(userID)), zap.String("course_id", string(courseID)))

	return &models.EnrollResponse{Message: "Enrolled successfully", CourseID: courseID}, nil
}

// ListEnrolled returns the caller's enrolled courses with percentage and completed lessons
func (s *catalogService) ListEnrolled(ctx context.Context, userID models.UserID) ([]models.EnrolledCourse, error) {
	courses, err := s.enrollmentRepo.ListCourses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return courses, nil
	}

	lessons, err := s.progressRepo.CompletedLessonsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range courses {
		if ids, ok := lessons[courses[i].ID]; ok {
			courses[i].CompletedLessons = ids
		}
	}

	return courses, nil
}
