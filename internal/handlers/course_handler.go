package handlers

import (
	"context"
	"net/http"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/flowitec/gogrow/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogService is the interface that wraps methods for course browsing and enrollment
type CatalogService interface {
	// Method ListCourses returns published courses, or every course when role is admin.
	ListCourses(ctx context.Context, role models.Role) ([]models.Course, error)
	// Method GetCourse returns the course with its modules, lessons and quizzes.
	//
	// Learners never receive correct answers. The caller's progress is attached when enrolled.
	GetCourse(ctx context.Context, id models.CourseID, userID models.UserID, role models.Role) (*models.CourseDetail, error)
	// Method Enroll enrolls the caller in a course.
	//
	// Enrolling twice gives models.ErrAlreadyEnrolled.
	Enroll(ctx context.Context, userID models.UserID, courseID models.CourseID) (*models.EnrollResponse, error)
	// Method ListEnrolled returns the caller's courses with percentage and completed lessons.
	ListEnrolled(ctx context.Context, userID models.UserID) ([]models.EnrolledCourse, error)
}

// CourseHandler handles HTTP requests for the course catalog
type CourseHandler struct {
	handlers.BaseHandler
	service CatalogService
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(svc CatalogService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all course handler routes
func (h *CourseHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/courses", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", h.ListCourses)
		r.Get("/enrolled", h.ListEnrolled)
		r.Post("/enroll", h.Enroll)
		r.Get("/{id}", h.GetCourse)
	})
}

// ListCourses handles GET /courses
// @Summary List courses
// @Description Published courses for learners, all courses for admins
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Course
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Router /courses [get]
func (h *CourseHandler) ListCourses(w http.ResponseWriter, r *http.Request) {
	_, role, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	courses, err := h.service.ListCourses(r.Context(), role)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// ListEnrolled handles GET /courses/enrolled
// @Summary List enrolled courses
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.EnrolledCourse
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Router /courses/enrolled [get]
func (h *CourseHandler) ListEnrolled(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	courses, err := h.service.ListEnrolled(r.Context(), userID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, courses)
}

// GetCourse handles GET /courses/{id}
// @Summary Get course
// @Description Course tree with modules, lessons and quizzes, plus the caller's progress when enrolled
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} models.CourseDetail
// @Failure 404 {object} handlers.ErrorResponse "Course not found"
// @Router /courses/{id} [get]
func (h *CourseHandler) GetCourse(w http.ResponseWriter, r *http.Request) {
	userID, role, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	detail, err := h.service.GetCourse(r.Context(), models.CourseID(chi.URLParam(r, "id")), userID, role)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, detail)
}

// Enroll handles POST /courses/enroll
// @Summary Enroll
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.EnrollRequest true "Course to enroll in"
// @Success 200 {object} models.EnrollResponse
// @Failure 400 {object} handlers.ErrorResponse "Already enrolled"
// @Failure 404 {object} handlers.ErrorResponse "Course not found"
// @Router /courses/enroll [post]
func (h *CourseHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.EnrollRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	resp, err := h.service.Enroll(r.Context(), userID, req.CourseID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}
