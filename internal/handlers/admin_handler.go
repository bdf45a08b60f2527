package handlers

import (
	"context"
	"net/http"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/flowitec/gogrow/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AdminService is the interface that wraps methods for course administration
type AdminService interface {
	// Method Stats returns learner, course, enrollment and certificate counters.
	Stats(ctx context.Context) (*models.AdminStats, error)
	// Method ListUsers returns every user.
	ListUsers(ctx context.Context) ([]models.User, error)
	// Method UpdateRole changes a user's role. An unknown role is a validation error.
	UpdateRole(ctx context.Context, userID models.UserID, role models.Role) (*models.User, error)

	CreateCourse(ctx context.Context, createdBy models.UserID, req *models.CourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, id models.CourseID, req *models.CourseRequest) (*models.Course, error)
	// Method DeleteCourse removes a course with everything it owns.
	DeleteCourse(ctx context.Context, id models.CourseID) error

	CreateModule(ctx context.Context, courseID models.CourseID, req *models.ModuleRequest) (*models.Module, error)
	UpdateModule(ctx context.Context, id models.ModuleID, req *models.ModuleRequest) (*models.Module, error)
	DeleteModule(ctx context.Context, id models.ModuleID) error

	CreateLesson(ctx context.Context, moduleID models.ModuleID, req *models.LessonRequest) (*models.Lesson, error)
	UpdateLesson(ctx context.Context, id models.LessonID, req *models.LessonRequest) (*models.Lesson, error)
	DeleteLesson(ctx context.Context, id models.LessonID) error

	CreateQuiz(ctx context.Context, moduleID models.ModuleID, req *models.QuizRequest) (*models.Quiz, error)
	// Method UpdateQuiz replaces the quiz and its whole question list.
	UpdateQuiz(ctx context.Context, id models.QuizID, req *models.QuizRequest) (*models.Quiz, error)
	DeleteQuiz(ctx context.Context, id models.QuizID) error

	// Method AssignCourse enrolls several users at once, skipping unknown and already enrolled ones.
	AssignCourse(ctx context.Context, courseID models.CourseID, userIDs []models.UserID) (*models.AssignResult, error)
	// Method CourseProgress lists every learner's progress in a course.
	CourseProgress(ctx context.Context, courseID models.CourseID) ([]models.LearnerProgress, error)
}

// AdminHandler handles HTTP requests for the admin surface
type AdminHandler struct {
	handlers.BaseHandler
	service AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(svc AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all admin handler routes
func (h *AdminHandler) RegisterRoutes(r chi.Router, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(adminMiddleware)

		r.Get("/stats", h.Stats)
		r.Get("/users", h.ListUsers)
		r.Post("/users/{id}/role", h.UpdateRole)

		r.Post("/courses", h.CreateCourse)
		r.Put("/courses/{id}", h.UpdateCourse)
		r.Delete("/courses/{id}", h.DeleteCourse)
		r.Post("/courses/{id}/modules", h.CreateModule)
		r.Post("/courses/{id}/assign", h.AssignCourse)
		r.Get("/courses/{id}/progress", h.CourseProgress)

		r.Put("/modules/{id}", h.UpdateModule)
		r.Delete("/modules/{id}", h.DeleteModule)
		r.Post("/modules/{id}/lessons", h.CreateLesson)
		r.Post("/modules/{id}/quizzes", h.CreateQuiz)

		r.Put("/lessons/{id}", h.UpdateLesson)
		r.Delete("/lessons/{id}", h.DeleteLesson)

		r.Put("/quizzes/{id}", h.UpdateQuiz)
		r.Delete("/quizzes/{id}", h.DeleteQuiz)
	})
}

// Stats handles GET /admin/stats
// @Summary Dashboard counters
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.AdminStats
// @Failure 403 {object} handlers.ErrorResponse "Admin role required"
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, stats)
}

// ListUsers handles GET /admin/users
// @Summary List users
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.User
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, users)
}

// UpdateRole handles POST /admin/users/{id}/role
// @Summary Change a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param role query string false "Role, instead of the body" Enums(learner, admin)
// @Param request body models.UpdateRoleRequest false "Role"
// @Success 200 {object} models.User
// @Failure 404 {object} handlers.ErrorResponse "User not found"
// @Failure 422 {object} handlers.ErrorResponse "Invalid role"
// @Router /admin/users/{id}/role [post]
func (h *AdminHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRoleRequest
	if role := r.URL.Query().Get("role"); role != "" {
		req.Role = models.Role(role)
	} else if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	user, err := h.service.UpdateRole(r.Context(), models.UserID(chi.URLParam(r, "id")), req.Role)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, user)
}

// CreateCourse handles POST /admin/courses
// @Summary Create course
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CourseRequest true "Course"
// @Success 201 {object} models.Course
// @Failure 422 {object} handlers.ErrorResponse "Invalid course"
// @Router /admin/courses [post]
func (h *AdminHandler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.CourseRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	course, err := h.service.CreateCourse(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusCreated, course)
}

// UpdateCourse handles PUT /admin/courses/{id}
// @Summary Update course
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body models.CourseRequest true "Course"
// @Success 200 {object} models.Course
// @Failure 404 {object} handlers.ErrorResponse "Course not found"
// @Router /admin/courses/{id} [put]
func (h *AdminHandler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	var req models.CourseRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	course, err := h.service.UpdateCourse(r.Context(), models.CourseID(chi.URLParam(r, "id")), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, course)
}

// DeleteCourse handles DELETE /admin/courses/{id}
// @Summary Delete course
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} handlers.ErrorResponse "Course not found"
// @Router /admin/courses/{id} [delete]
func (h *AdminHandler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCourse(r.Context(), models.CourseID(chi.URLParam(r, "id"))); err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Course deleted"})
}

// CreateModule handles POST /admin/courses/{id}/modules
// @Summary Create module
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body models.ModuleRequest true "Module"
// @Success 201 {object} models.Module
// @Failure 404 {object} handlers.ErrorResponse "Course not found"
// @Router /admin/courses/{id}/modules [post]
func (h *AdminHandler) CreateModule(w http.ResponseWriter, r *http.Request) {
	var req models.ModuleRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	module, err := h.service.CreateModule(r.Context(), models.CourseID(chi.URLParam(r, "id")), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusCreated, module)
}

// AssignCourse handles POST /admin/courses/{id}/assign
// @Summary Assign course to users
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body models.AssignRequest true "Users, as an object or a bare array of IDs"
// @Success 200 {object} models.AssignResult
// @Failure 404 {object} handlers.ErrorResponse "Course not found"
// @Router /admin/courses/{id}/assign [post]
func (h *AdminHandler) AssignCourse(w http.ResponseWriter, r *http.Request) {
	var req models.AssignRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	result, err := h.service.AssignCourse(r.Context(), models.CourseID(chi.URLParam(r, "id")), req.UserIDs)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, result)
}

// CourseProgress handles GET /admin/courses/{id}/progress
// @Summary Learner progress in a course
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {array} models.LearnerProgress
// @Failure 404 {object} handlers.ErrorResponse "Course not found"
// @Router /admin/courses/{id}/progress [get]
func (h *AdminHandler) CourseProgress(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.CourseProgress(r.Context(), models.CourseID(chi.URLParam(r, "id")))
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, list)
}

// UpdateModule handles PUT /admin/modules/{id}
// @Summary Update module
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Param request body models.ModuleRequest true "Module"
// @Success 200 {object} models.Module
// @Router /admin/modules/{id} [put]
func (h *AdminHandler) UpdateModule(w http.ResponseWriter, r *http.Request) {
	var req models.ModuleRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	module, err := h.service.UpdateModule(r.Context(), models.ModuleID(chi.URLParam(r, "id")), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, module)
}

// DeleteModule handles DELETE /admin/modules/{id}
// @Summary Delete module
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Success 200 {object} models.MessageResponse
// @Router /admin/modules/{id} [delete]
func (h *AdminHandler) DeleteModule(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteModule(r.Context(), models.ModuleID(chi.URLParam(r, "id"))); err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Module deleted"})
}

// CreateLesson handles POST /admin/modules/{id}/lessons
// @Summary Create lesson
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Param request body models.LessonRequest true "Lesson"
// @Success 201 {object} models.Lesson
// @Router /admin/modules/{id}/lessons [post]
func (h *AdminHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	var req models.LessonRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	lesson, err := h.service.CreateLesson(r.Context(), models.ModuleID(chi.URLParam(r, "id")), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusCreated, lesson)
}

// CreateQuiz handles POST /admin/modules/{id}/quizzes
// @Summary Create quiz
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Module ID"
// @Param request body models.QuizRequest true "Quiz"
// @Success 201 {object} models.Quiz
// @Router /admin/modules/{id}/quizzes [post]
func (h *AdminHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.QuizRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	quiz, err := h.service.CreateQuiz(r.Context(), models.ModuleID(chi.URLParam(r, "id")), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusCreated, quiz)
}

// UpdateLesson handles PUT /admin/lessons/{id}
// @Summary Update lesson
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Param request body models.LessonRequest true "Lesson"
// @Success 200 {object} models.Lesson
// @Router /admin/lessons/{id} [put]
func (h *AdminHandler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	var req models.LessonRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	lesson, err := h.service.UpdateLesson(r.Context(), models.LessonID(chi.URLParam(r, "id")), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, lesson)
}

// DeleteLesson handles DELETE /admin/lessons/{id}
// @Summary Delete lesson
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Lesson ID"
// @Success 200 {object} models.MessageResponse
// @Router /admin/lessons/{id} [delete]
func (h *AdminHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLesson(r.Context(), models.LessonID(chi.URLParam(r, "id"))); err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Lesson deleted"})
}

// UpdateQuiz handles PUT /admin/quizzes/{id}
// @Summary Update quiz
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Param request body models.QuizRequest true "Quiz"
// @Success 200 {object} models.Quiz
// @Router /admin/quizzes/{id} [put]
func (h *AdminHandler) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var req models.QuizRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	quiz, err := h.service.UpdateQuiz(r.Context(), models.QuizID(chi.URLParam(r, "id")), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, quiz)
}

// DeleteQuiz handles DELETE /admin/quizzes/{id}
// @Summary Delete quiz
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} models.MessageResponse
// @Router /admin/quizzes/{id} [delete]
func (h *AdminHandler) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteQuiz(r.Context(), models.QuizID(chi.URLParam(r, "id"))); err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}
	h.RespondJSON(w, http.StatusOK, models.MessageResponse{Message: "Quiz deleted"})
}
