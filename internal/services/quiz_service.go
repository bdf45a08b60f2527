package services

import (
	"context"
	"time"

	"github.com/flowitec/gogrow/internal/models"
	"go.uber.org/zap"
)

// QuizLookup retrieves quizzes with their questions
type QuizLookup interface {
	// Method GetByID retrieves a quiz by ID together with its ordered questions.
	//
	// If the quiz does not exist, models.ErrQuizNotFound is returned.
	GetByID(ctx context.Context, id models.QuizID) (*models.Quiz, error)
}

// QuizAttemptRepository stores graded submissions
type QuizAttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
}

// CertificateIssuer issues a course certificate once the user becomes eligible
type CertificateIssuer interface {
	// Method IssueIfEligible returns the user's certificate for the course, issuing it first when
	// the user has just become eligible. It returns nil without error while the user is not eligible.
	IssueIfEligible(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Certificate, error)
}

type quizService struct {
	quizRepo      QuizLookup
	attemptRepo   QuizAttemptRepository
	issuer        CertificateIssuer
	strictAnswers bool
	logger        *zap.Logger
	now           func() time.Time
}

// NewQuizService creates a new quiz service
func NewQuizService(quizRepo QuizLookup, attemptRepo QuizAttemptRepository, issuer CertificateIssuer, strictAnswers bool, logger *zap.Logger) *quizService {
	return &quizService{
		quizRepo:      quizRepo,
		attemptRepo:   attemptRepo,
		issuer:        issuer,
		strictAnswers: strictAnswers,
		logger:        logger,
		now:           time.Now,
	}
}

// GetQuiz returns a quiz. Only admins receive the correct answers.
func (s *quizService) GetQuiz(ctx context.Context, id models.QuizID, role models.Role) (*models.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if role != models.RoleAdmin {
		return quiz.WithoutAnswers(), nil
	}

	return quiz, nil
}

// SubmitQuiz grades the answers, stores the attempt and checks certificate eligibility for the quiz's course
func (s *quizService) SubmitQuiz(ctx context.Context, userID models.UserID, quizID models.QuizID, submission *models.QuizSubmission) (*models.QuizResult, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	result := Grade(quiz, submission.Answers, s.strictAnswers)

	attempt := &models.QuizAttempt{
		ID:           models.NewAttemptID(),
		UserID:       userID,
		QuizID:       quiz.ID,
		CourseID:     quiz.CourseID,
		Score:        result.Score,
		Passed:       result.Passed,
		EarnedPoints: result.EarnedPoints,
		TotalPoints:  result.TotalPoints,
		SubmittedAt:  s.now().UTC(),
	}
	if err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, err
	}

	if result.Passed {
		// A failed issuance is repaired by the reconciliation sweep
		cert, err := s.issuer.IssueIfEligible(ctx, userID, quiz.CourseID)
		if err != nil {
			s.logger.Error("failed to check certificate eligibility",
				zap.String("user_id", string(userID)),
				zap.String("course_id", string(quiz.CourseID)),
				zap.Error(err),
			)
		}
		result.Certificate = cert
	}

	return result, nil
}
