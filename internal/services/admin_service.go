package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flowitec/gogrow/internal/models"
	"go.uber.org/zap"
)

// AdminUserRepository is the user data access the admin surface needs
type AdminUserRepository interface {
	GetByID(ctx context.Context, id models.UserID) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id models.UserID, role models.Role) error
	CountByRole(ctx context.Context, role models.Role) (int, error)
}

// AdminCourseRepository is the course data access the admin surface needs
type AdminCourseRepository interface {
	Create(ctx context.Context, course *models.Course) error
	GetByID(ctx context.Context, id models.CourseID) (*models.Course, error)
	Update(ctx context.Context, course *models.Course) error
	// Method Delete removes a course with everything it owns.
	//
	// If the course does not exist, models.ErrCourseNotFound is returned.
	Delete(ctx context.Context, id models.CourseID) error
	Count(ctx context.Context) (int, error)
}

// AdminModuleRepository is the module data access the admin surface needs
type AdminModuleRepository interface {
	Create(ctx context.Context, module *models.Module) error
	GetByID(ctx context.Context, id models.ModuleID) (*models.Module, error)
	Update(ctx context.Context, module *models.Module) error
	Delete(ctx context.Context, id models.ModuleID) error
}

// AdminLessonRepository is the lesson data access the admin surface needs
type AdminLessonRepository interface {
	Create(ctx context.Context, lesson *models.Lesson) error
	GetByID(ctx context.Context, id models.LessonID) (*models.Lesson, error)
	GetRef(ctx context.Context, id models.LessonID) (*models.LessonRef, error)
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id models.LessonID) error
}

// AdminQuizRepository is the quiz data access the admin surface needs
type AdminQuizRepository interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	GetByID(ctx context.Context, id models.QuizID) (*models.Quiz, error)
	Update(ctx context.Context, quiz *models.Quiz) error
	Delete(ctx context.Context, id models.QuizID) error
}

// AdminEnrollmentRepository enrolls users and counts enrollments
type AdminEnrollmentRepository interface {
	Create(ctx context.Context, userID models.UserID, courseID models.CourseID, at time.Time) (bool, error)
	Count(ctx context.Context) (int, error)
}

// AdminProgressRepository starts progress records and lists them per course
type AdminProgressRepository interface {
	Ensure(ctx context.Context, userID models.UserID, courseID models.CourseID, at time.Time) error
	ListByCourse(ctx context.Context, courseID models.CourseID) ([]models.LearnerProgress, error)
}

// CertificateCounter counts issued certificates
type CertificateCounter interface {
	Count(ctx context.Context) (int, error)
}

// CacheInvalidator drops cached course trees
type CacheInvalidator interface {
	Invalidate(ctx context.Context, id models.CourseID) error
}

// AdminRepositories groups the storage the admin service works on
type AdminRepositories struct {
	Users        AdminUserRepository
	Courses      AdminCourseRepository
	Modules      AdminModuleRepository
	Lessons      AdminLessonRepository
	Quizzes      AdminQuizRepository
	Enrollments  AdminEnrollmentRepository
	Progress     AdminProgressRepository
	Certificates CertificateCounter
}

type adminService struct {
	repos  AdminRepositories
	cache  CacheInvalidator
	logger *zap.Logger
	now    func() time.Time
}

// NewAdminService creates a new admin service
func NewAdminService(repos AdminRepositories, cache CacheInvalidator, logger *zap.Logger) *adminService {
	return &adminService{
		repos:  repos,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Stats returns the dashboard counters. Only learners are counted as users.
func (s *adminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	var stats models.AdminStats
	var err error

	if stats.TotalUsers, err = s.repos.Users.CountByRole(ctx, models.RoleLearner); err != nil {
		return nil, err
	}
	if stats.TotalCourses, err = s.repos.Courses.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalEnrollments, err = s.repos.Enrollments.Count(ctx); err != nil {
		return nil, err
	}
	if stats.TotalCertificates, err = s.repos.Certificates.Count(ctx); err != nil {
		return nil, err
	}

	return &stats, nil
}

// ListUsers returns every user
func (s *adminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repos.Users.List(ctx)
}

// UpdateRole changes a user's role
func (s *adminService) UpdateRole(ctx context.Context, userID models.UserID, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, models.Validation("Invalid role")
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Users.UpdateRole(ctx, userID, role); err != nil {
		return nil, err
	}
	user.Role = role

	s.logger.Info("user role updated", zap.String("user_id", string(userID)), zap.String("role", string(role)))
	return user, nil
}

// CreateCourse creates a course owned by the calling admin
func (s *adminService) CreateCourse(ctx context.Context, createdBy models.UserID, req *models.CourseRequest) (*models.Course, error) {
	if err := validateCourse(req); err != nil {
		return nil, err
	}

	course := &models.Course{
		ID:        models.NewCourseID(),
		CreatedBy: createdBy,
		CreatedAt: s.now().UTC(),
	}
	applyCourse(course, req)

	if err := s.repos.Courses.Create(ctx, course); err != nil {
		return nil, err
	}

	return course, nil
}

// UpdateCourse replaces the editable fields of a course
func (s *adminService) UpdateCourse(ctx context.Context, id models.CourseID, req *models.CourseRequest) (*models.Course, error) {
	if err := validateCourse(req); err != nil {
		return nil, err
	}

	course, err := s.repos.Courses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCourse(course, req)

	if err := s.repos.Courses.Update(ctx, course); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	return course, nil
}

// DeleteCourse removes a course with its modules, lessons, quizzes and progress
func (s *adminService) DeleteCourse(ctx context.Context, id models.CourseID) error {
	if err := s.repos.Courses.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// CreateModule adds a module to a course
func (s *adminService) CreateModule(ctx context.Context, courseID models.CourseID, req *models.ModuleRequest) (*models.Module, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, models.Validation("title is required")
	}
	if _, err := s.repos.Courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	module := &models.Module{
		ID:          models.NewModuleID(),
		CourseID:    courseID,
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Order:       req.Order,
	}
	if err := s.repos.Modules.Create(ctx, module); err != nil {
		return nil, err
	}
	s.invalidate(ctx, courseID)

	return module, nil
}

// UpdateModule replaces the editable fields of a module
func (s *adminService) UpdateModule(ctx context.Context, id models.ModuleID, req *models.ModuleRequest) (*models.Module, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, models.Validation("title is required")
	}

	module, err := s.repos.Modules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	module.Title = strings.TrimSpace(req.Title)
	module.Description = req.Description
	module.Order = req.Order

	if err := s.repos.Modules.Update(ctx, module); err != nil {
		return nil, err
	}
	s.invalidate(ctx, module.CourseID)

	return module, nil
}

// DeleteModule removes a module with its lessons and quizzes
func (s *adminService) DeleteModule(ctx context.Context, id models.ModuleID) error {
	module, err := s.repos.Modules.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Modules.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, module.CourseID)
	return nil
}

// CreateLesson adds a lesson to a module
func (s *adminService) CreateLesson(ctx context.Context, moduleID models.ModuleID, req *models.LessonRequest) (*models.Lesson, error) {
	if err := validateLesson(req); err != nil {
		return nil, err
	}
	module, err := s.repos.Modules.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	lesson := &models.Lesson{ID: models.NewLessonID(), ModuleID: moduleID}
	applyLesson(lesson, req)

	if err := s.repos.Lessons.Create(ctx, lesson); err != nil {
		return nil, err
	}
	s.invalidate(ctx, module.CourseID)

	return lesson, nil
}

// UpdateLesson replaces the editable fields of a lesson
func (s *adminService) UpdateLesson(ctx context.Context, id models.LessonID, req *models.LessonRequest) (*models.Lesson, error) {
	if err := validateLesson(req); err != nil {
		return nil, err
	}

	ref, err := s.repos.Lessons.GetRef(ctx, id)
	if err != nil {
		return nil, err
	}
	lesson, err := s.repos.Lessons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyLesson(lesson, req)

	if err := s.repos.Lessons.Update(ctx, lesson); err != nil {
		return nil, err
	}
	s.invalidate(ctx, ref.CourseID)

	return lesson, nil
}

// DeleteLesson removes a lesson. Completed-lesson rows pointing at it go with it.
func (s *adminService) DeleteLesson(ctx context.Context, id models.LessonID) error {
	ref, err := s.repos.Lessons.GetRef(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Lessons.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, ref.CourseID)
	return nil
}

// CreateQuiz adds a quiz to a module
func (s *adminService) CreateQuiz(ctx context.Context, moduleID models.ModuleID, req *models.QuizRequest) (*models.Quiz, error) {
	if err := validateQuiz(req); err != nil {
		return nil, err
	}
	module, err := s.repos.Modules.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	quiz := &models.Quiz{
		ID:       models.NewQuizID(),
		ModuleID: moduleID,
		CourseID: module.CourseID,
	}
	applyQuiz(quiz, req)

	if err := s.repos.Quizzes.Create(ctx, quiz); err != nil {
		return nil, err
	}
	s.invalidate(ctx, module.CourseID)

	return quiz, nil
}

// UpdateQuiz replaces a quiz's fields and its whole question list
func (s *adminService) UpdateQuiz(ctx context.Context, id models.QuizID, req *models.QuizRequest) (*models.Quiz, error) {
	if err := validateQuiz(req); err != nil {
		return nil, err
	}

	quiz, err := s.repos.Quizzes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyQuiz(quiz, req)

	if err := s.repos.Quizzes.Update(ctx, quiz); err != nil {
		return nil, err
	}
	s.invalidate(ctx, quiz.CourseID)

	return quiz, nil
}

// DeleteQuiz removes a quiz
func (s *adminService) DeleteQuiz(ctx context.Context, id models.QuizID) error {
	quiz, err := s.repos.Quizzes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Quizzes.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, quiz.CourseID)
	return nil
}

// AssignCourse enrolls each listed user in the course. Unknown and already enrolled users are skipped.
func (s *adminService) AssignCourse(ctx context.Context, courseID models.CourseID, userIDs []models.UserID) (*models.AssignResult, error) {
	if _, err := s.repos.Courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	result := &models.AssignResult{}
	seen := make(map[models.UserID]bool, len(userIDs))
	for _, userID := range userIDs {
		if seen[userID] {
			continue
		}
		seen[userID] = true

		if _, err := s.repos.Users.GetByID(ctx, userID); err != nil {
			if errors.Is(err, models.ErrUserNotFound) {
				result.Skipped++
				continue
			}
			return nil, err
		}

		created, err := s.repos.Enrollments.Create(ctx, userID, courseID, now)
		if err != nil {
			return nil, err
		}
		if !created {
			result.Skipped++
			continue
		}
		if err := s.repos.Progress.Ensure(ctx, userID, courseID, now); err != nil {
			return nil, err
		}
		result.Assigned++
	}

	result.Message = fmt.Sprintf("Course assigned to %d users", result.Assigned)
	s.logger.Info("course assigned",
		zap.String("course_id", string(courseID)),
		zap.Int("assigned", result.Assigned),
		zap.Int("skipped", result.Skipped),
	)

	return result, nil
}

// CourseProgress lists every learner's progress in a course with the learner's profile
func (s *adminService) CourseProgress(ctx context.Context, courseID models.CourseID) ([]models.LearnerProgress, error) {
	if _, err := s.repos.Courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repos.Progress.ListByCourse(ctx, courseID)
}

func (s *adminService) invalidate(ctx context.Context, id models.CourseID) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn("course cache invalidation failed", zap.String("course_id", string(id)), zap.Error(err))
	}
}

func validateCourse(req *models.CourseRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return models.Validation("title is required")
	}
	if req.DurationHours < 0 {
		return models.Validation("duration_hours cannot be negative")
	}
	return nil
}

func applyCourse(course *models.Course, req *models.CourseRequest) {
	course.Title = strings.TrimSpace(req.Title)
	course.Description = req.Description
	course.Thumbnail = req.Thumbnail
	course.Category = req.Category
	course.DurationHours = req.DurationHours
	course.IsPublished = req.IsPublished
}

func validateLesson(req *models.LessonRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return models.Validation("title is required")
	}
	if !req.ContentType.Valid() {
		return models.Validation("content_type must be one of video, pdf, text, embed")
	}
	if req.DurationMinutes < 0 {
		return models.Validation("duration_minutes cannot be negative")
	}
	return nil
}

func applyLesson(lesson *models.Lesson, req *models.LessonRequest) {
	lesson.Title = strings.TrimSpace(req.Title)
	lesson.ContentType = req.ContentType
	lesson.Content = req.Content
	lesson.DurationMinutes = req.DurationMinutes
	lesson.Order = req.Order
}

func validateQuiz(req *models.QuizRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return models.Validation("title is required")
	}
	if req.PassingScore != nil && (*req.PassingScore < 0 || *req.PassingScore > 100) {
		return models.Validation("passing_score must be between 0 and 100")
	}
	if req.TimeLimitMinutes != nil && *req.TimeLimitMinutes <= 0 {
		return models.Validation("time_limit_minutes must be positive")
	}
	for i, q := range req.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return models.Validation(fmt.Sprintf("question %d: text is required", i))
		}
		if !q.QuestionType.Valid() {
			return models.Validation(fmt.Sprintf("question %d: question_type must be one of multiple_choice, true_false, short_answer", i))
		}
		if q.QuestionType == models.QuestionTypeMultipleChoice && len(q.Options) < 2 {
			return models.Validation(fmt.Sprintf("question %d: multiple choice needs at least two options", i))
		}
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			return models.Validation(fmt.Sprintf("question %d: correct_answer is required", i))
		}
		if q.Points < 0 {
			return models.Validation(fmt.Sprintf("question %d: points cannot be negative", i))
		}
	}
	return nil
}

func applyQuiz(quiz *models.Quiz, req *models.QuizRequest) {
	quiz.Title = strings.TrimSpace(req.Title)
	quiz.Description = req.Description
	quiz.PassingScore = models.DefaultPassingScore
	if req.PassingScore != nil {
		quiz.PassingScore = *req.PassingScore
	}
	quiz.TimeLimitMinutes = req.TimeLimitMinutes

	quiz.Questions = make([]models.Question, len(req.Questions))
	for i, q := range req.Questions {
		if q.Points == 0 {
			q.Points = 1
		}
		quiz.Questions[i] = q
	}
}
