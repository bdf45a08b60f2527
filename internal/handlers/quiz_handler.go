package handlers

import (
	"context"
	"net/http"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/flowitec/gogrow/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// QuizService is the interface that wraps methods for taking quizzes
type QuizService interface {
	// Method GetQuiz returns a quiz; correct answers are stripped unless role is admin.
	GetQuiz(ctx context.Context, id models.QuizID, role models.Role) (*models.Quiz, error)
	// Method SubmitQuiz grades the answers, stores the attempt and may issue the course certificate.
	SubmitQuiz(ctx context.Context, userID models.UserID, quizID models.QuizID, submission *models.QuizSubmission) (*models.QuizResult, error)
}

// QuizHandler handles HTTP requests for quizzes
type QuizHandler struct {
	handlers.BaseHandler
	service QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(svc QuizService, logger *zap.Logger) *QuizHandler {
	return &QuizHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all quiz handler routes
func (h *QuizHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/quizzes", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/{id}", h.GetQuiz)
		r.Post("/{id}/submit", h.SubmitQuiz)
	})
}

// GetQuiz handles GET /quizzes/{id}
// @Summary Get quiz
// @Tags quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} models.Quiz
// @Failure 404 {object} handlers.ErrorResponse "Quiz not found"
// @Router /quizzes/{id} [get]
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	_, role, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	quiz, err := h.service.GetQuiz(r.Context(), models.QuizID(chi.URLParam(r, "id")), role)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, quiz)
}

// SubmitQuiz handles POST /quizzes/{id}/submit
// @Summary Submit quiz answers
// @Description Answers map question index to the answer text
// @Tags quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Param request body models.QuizSubmission true "Answers"
// @Success 200 {object} models.QuizResult
// @Failure 404 {object} handlers.ErrorResponse "Quiz not found"
// @Failure 422 {object} handlers.ErrorResponse "Invalid body"
// @Router /quizzes/{id}/submit [post]
func (h *QuizHandler) SubmitQuiz(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var submission models.QuizSubmission
	if !decodeBody(&h.BaseHandler, w, r, &submission) {
		return
	}

	result, err := h.service.SubmitQuiz(r.Context(), userID, models.QuizID(chi.URLParam(r, "id")), &submission)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}
