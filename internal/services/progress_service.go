package services

import (
	"context"
	"errors"
	"time"

	"github.com/flowitec/gogrow/internal/models"
	"go.uber.org/zap"
)

// LessonResolver locates lessons in the course hierarchy
type LessonResolver interface {
	// Method GetRef resolves a lesson to its module and course.
	//
	// If the lesson does not exist, models.ErrLessonNotFound is returned.
	GetRef(ctx context.Context, id models.LessonID) (*models.LessonRef, error)
}

// ProgressRepository is the interface that wraps methods for progress data access
type ProgressRepository interface {
	// Method Ensure creates an empty progress record for (user, course) unless one exists.
	Ensure(ctx context.Context, userID models.UserID, courseID models.CourseID, at time.Time) error
	// Method RecordLesson adds the lesson to the completed set and refreshes the stored percentage.
	//
	// The progress record must exist; otherwise models.ErrProgressNotFound is returned.
	RecordLesson(ctx context.Context, userID models.UserID, ref models.LessonRef, at time.Time) (*models.LessonTally, error)
	// Method CountCompleted returns the completed lesson count and the lesson total of the course.
	CountCompleted(ctx context.Context, userID models.UserID, courseID models.CourseID) (int, int, error)
	// Method Get returns the stored progress of (user, course) with its completed lesson set.
	//
	// If the user never started the course, models.ErrProgressNotFound is returned.
	Get(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Progress, error)
}

// QuizScoreRepository reads the latest quiz results of a user
type QuizScoreRepository interface {
	LatestScores(ctx context.Context, userID models.UserID, courseID models.CourseID) (map[models.QuizID]models.QuizScore, error)
}

type progressService struct {
	lessonRepo   LessonResolver
	progressRepo ProgressRepository
	scoreRepo    QuizScoreRepository
	issuer       CertificateIssuer
	logger       *zap.Logger
	now          func() time.Time
}

// NewProgressService creates a new progress service
func NewProgressService(lessonRepo LessonResolver, progressRepo ProgressRepository, scoreRepo QuizScoreRepository, issuer CertificateIssuer, logger *zap.Logger) *progressService {
	return &progressService{
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		scoreRepo:    scoreRepo,
		issuer:       issuer,
		logger:       logger,
		now:          time.Now,
	}
}

// RecordLessonCompletion marks a lesson completed for the user and recomputes the course percentage.
// Completing every lesson of the course triggers certificate issuance.
// A request with completed=false changes nothing and returns the current state.
func (s *progressService) RecordLessonCompletion(ctx context.Context, userID models.UserID, req *models.LessonProgressRequest) (*models.LessonProgressResult, error) {
	if req.LessonID == "" {
		return nil, models.Validation("lesson_id is required")
	}

	ref, err := s.lessonRepo.GetRef(ctx, req.LessonID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.progressRepo.Ensure(ctx, userID, ref.CourseID, now); err != nil {
		return nil, err
	}

	result := &models.LessonProgressResult{
		Message:  "Progress updated",
		CourseID: ref.CourseID,
	}

	if req.Completed != nil && !*req.Completed {
		result.Message = "Progress unchanged"
		progress, err := s.progressRepo.Get(ctx, userID, ref.CourseID)
		if err != nil {
			return nil, err
		}
		result.Percentage = progress.Percentage
		result.CompletedLessons = progress.CompletedLessons
		return result, nil
	}

	tally, err := s.progressRepo.RecordLesson(ctx, userID, *ref, now)
	if err != nil {
		return nil, err
	}
	result.Percentage = tally.Percentage

	if tally.AllCompleted() {
		cert, err := s.issuer.IssueIfEligible(ctx, userID, ref.CourseID)
		if err != nil {
			s.logger.Error("failed to check certificate eligibility",
				zap.String("user_id", string(userID)),
				zap.String("course_id", string(ref.CourseID)),
				zap.Error(err),
			)
		}
		result.Certificate = cert
	}

	progress, err := s.progressRepo.Get(ctx, userID, ref.CourseID)
	if err != nil {
		return nil, err
	}
	result.CompletedLessons = progress.CompletedLessons

	return result, nil
}

// GetCourseProgress returns the user's progress in a course with the latest score of every attempted quiz.
// A user who never started the course gets the zero state.
func (s *progressService) GetCourseProgress(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Progress, error) {
	progress, err := s.progressRepo.Get(ctx, userID, courseID)
	if errors.Is(err, models.ErrProgressNotFound) {
		return models.NewProgress(userID, courseID), nil
	}
	if err != nil {
		return nil, err
	}

	// Lessons may have been added or removed since the percentage was stored
	completed, total, err := s.progressRepo.CountCompleted(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	progress.Percentage = models.CompletionPercentage(completed, total)

	scores, err := s.scoreRepo.LatestScores(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	progress.QuizScores = scores

	return progress, nil
}
