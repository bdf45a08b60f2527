package handlers

import (
	"context"
	"net/http"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/flowitec/gogrow/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProgressService is the interface that wraps methods for lesson progress
type ProgressService interface {
	// Method RecordLessonCompletion adds a lesson to the caller's completed set and recomputes the percentage.
	//
	// Completing the last lesson of a course may issue its certificate, returned in the result.
	RecordLessonCompletion(ctx context.Context, userID models.UserID, req *models.LessonProgressRequest) (*models.LessonProgressResult, error)
	// Method GetCourseProgress returns the caller's progress in a course, the zero state when never started.
	GetCourseProgress(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.Progress, error)
}

// ProgressHandler handles HTTP requests for lesson progress
type ProgressHandler struct {
	handlers.BaseHandler
	service ProgressService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(svc ProgressService, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all progress handler routes
func (h *ProgressHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/progress", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Post("/lesson", h.RecordLesson)
		r.Get("/course/{id}", h.GetCourseProgress)
	})
}

// RecordLesson handles POST /progress/lesson
// @Summary Complete a lesson
// @Tags progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.LessonProgressRequest true "Lesson"
// @Success 200 {object} models.LessonProgressResult
// @Failure 404 {object} handlers.ErrorResponse "Lesson not found"
// @Failure 422 {object} handlers.ErrorResponse "Invalid body"
// @Router /progress/lesson [post]
func (h *ProgressHandler) RecordLesson(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.LessonProgressRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	result, err := h.service.RecordLessonCompletion(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, result)
}

// GetCourseProgress handles GET /progress/course/{id}
// @Summary Course progress
// @Tags progress
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} models.Progress
// @Router /progress/course/{id} [get]
func (h *ProgressHandler) GetCourseProgress(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	progress, err := h.service.GetCourseProgress(r.Context(), userID, models.CourseID(chi.URLParam(r, "id")))
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}
