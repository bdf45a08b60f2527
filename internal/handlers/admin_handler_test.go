package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockAdminService is a mock implementation of AdminService recording the last call
type mockAdminService struct {
	err error

	lastCall  string
	lastID    string
	createdBy models.UserID
	role      models.Role
	userIDs   []models.UserID
	quizReq   *models.QuizRequest
}

func (m *mockAdminService) record(call, id string) { m.lastCall, m.lastID = call, id }

func (m *mockAdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	m.record("Stats", "")
	return &models.AdminStats{TotalUsers: 3}, m.err
}

func (m *mockAdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	m.record("ListUsers", "")
	return []models.User{}, m.err
}

func (m *mockAdminService) UpdateRole(ctx context.Context, userID models.UserID, role models.Role) (*models.User, error) {
	m.record("UpdateRole", string(userID))
	m.role = role
	return &models.User{ID: userID, Role: role}, m.err
}

func (m *mockAdminService) CreateCourse(ctx context.Context, createdBy models.UserID, req *models.CourseRequest) (*models.Course, error) {
	m.record("CreateCourse", "")
	m.createdBy = createdBy
	return &models.Course{ID: "c-new", Title: req.Title}, m.err
}

func (m *mockAdminService) UpdateCourse(ctx context.Context, id models.CourseID, req *models.CourseRequest) (*models.Course, error) {
	m.record("UpdateCourse", string(id))
	return &models.Course{ID: id}, m.err
}

func (m *mockAdminService) DeleteCourse(ctx context.Context, id models.CourseID) error {
	m.record("DeleteCourse", string(id))
	return m.err
}

func (m *mockAdminService) CreateModule(ctx context.Context, courseID models.CourseID, req *models.ModuleRequest) (*models.Module, error) {
	m.record("CreateModule", string(courseID))
	return &models.Module{CourseID: courseID}, m.err
}

func (m *mockAdminService) UpdateModule(ctx context.Context, id models.ModuleID, req *models.ModuleRequest) (*models.Module, error) {
	m.record("UpdateModule", string(id))
	return &models.Module{ID: id}, m.err
}

func (m *mockAdminService) DeleteModule(ctx context.Context, id models.ModuleID) error {
	m.record("DeleteModule", string(id))
	return m.err
}

func (m *mockAdminService) CreateLesson(ctx context.Context, moduleID models.ModuleID, req *models.LessonRequest) (*models.Lesson, error) {
	m.record("CreateLesson", string(moduleID))
	return &models.Lesson{ModuleID: moduleID}, m.err
}

func (m *mockAdminService) UpdateLesson(ctx context.Context, id models.LessonID, req *models.LessonRequest) (*models.Lesson, error) {
	m.record("UpdateLesson", string(id))
	return &models.Lesson{ID: id}, m.err
}

func (m *mockAdminService) DeleteLesson(ctx context.Context, id models.LessonID) error {
	m.record("DeleteLesson", string(id))
	return m.err
}

func (m *mockAdminService) CreateQuiz(ctx context.Context, moduleID models.ModuleID, req *models.QuizRequest) (*models.Quiz, error) {
	m.record("CreateQuiz", string(moduleID))
	m.quizReq = req
	return &models.Quiz{ModuleID: moduleID}, m.err
}

func (m *mockAdminService) UpdateQuiz(ctx context.Context, id models.QuizID, req *models.QuizRequest) (*models.Quiz, error) {
	m.record("UpdateQuiz", string(id))
	return &models.Quiz{ID: id}, m.err
}

func (m *mockAdminService) DeleteQuiz(ctx context.Context, id models.QuizID) error {
	m.record("DeleteQuiz", string(id))
	return m.err
}

func (m *mockAdminService) AssignCourse(ctx context.Context, courseID models.CourseID, userIDs []models.UserID) (*models.AssignResult, error) {
	m.record("AssignCourse", string(courseID))
	m.userIDs = userIDs
	return &models.AssignResult{Message: "Course assigned to 2 users", Assigned: 2}, m.err
}

func (m *mockAdminService) CourseProgress(ctx context.Context, courseID models.CourseID) ([]models.LearnerProgress, error) {
	m.record("CourseProgress", string(courseID))
	return []models.LearnerProgress{}, m.err
}

func TestAdminHandler_Routes(t *testing.T) {
	course := `{"title":"Pump Basics","description":"d","duration_hours":2,"is_published":true}`
	lesson := `{"title":"Intro","content_type":"text","content":"hi","duration_minutes":5,"order":1}`
	module := `{"title":"Fundamentals","order":1}`
	quiz := `{"title":"Check","passing_score":80,"questions":[{"question":"q","question_type":"true_false","correct_answer":"true","points":1}]}`

	tests := []struct {
		method         string
		path           string
		body           any
		expectedCall   string
		expectedID     string
		expectedStatus int
	}{
		{http.MethodGet, "/admin/stats", nil, "Stats", "", http.StatusOK},
		{http.MethodGet, "/admin/users", nil, "ListUsers", "", http.StatusOK},
		{http.MethodPost, "/admin/users/u1/role", `{"role":"admin"}`, "UpdateRole", "u1", http.StatusOK},
		{http.MethodPost, "/admin/courses", course, "CreateCourse", "", http.StatusCreated},
		{http.MethodPut, "/admin/courses/c1", course, "UpdateCourse", "c1", http.StatusOK},
		{http.MethodDelete, "/admin/courses/c1", nil, "DeleteCourse", "c1", http.StatusOK},
		{http.MethodPost, "/admin/courses/c1/modules", module, "CreateModule", "c1", http.StatusCreated},
		{http.MethodPost, "/admin/courses/c1/assign", `{"user_ids":["u1","u2"]}`, "AssignCourse", "c1", http.StatusOK},
		{http.MethodGet, "/admin/courses/c1/progress", nil, "CourseProgress", "c1", http.StatusOK},
		{http.MethodPut, "/admin/modules/m1", module, "UpdateModule", "m1", http.StatusOK},
		{http.MethodDelete, "/admin/modules/m1", nil, "DeleteModule", "m1", http.StatusOK},
		{http.MethodPost, "/admin/modules/m1/lessons", lesson, "CreateLesson", "m1", http.StatusCreated},
		{http.MethodPost, "/admin/modules/m1/quizzes", quiz, "CreateQuiz", "m1", http.StatusCreated},
		{http.MethodPut, "/admin/lessons/l1", lesson, "UpdateLesson", "l1", http.StatusOK},
		{http.MethodDelete, "/admin/lessons/l1", nil, "DeleteLesson", "l1", http.StatusOK},
		{http.MethodPut, "/admin/quizzes/q1", quiz, "UpdateQuiz", "q1", http.StatusOK},
		{http.MethodDelete, "/admin/quizzes/q1", nil, "DeleteQuiz", "q1", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			svc := &mockAdminService{}
			r := chi.NewRouter()
			NewAdminHandler(svc, zap.NewNop()).RegisterRoutes(r, asUser("admin-1", models.RoleAdmin))

			w := doRequest(t, r, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.expectedCall, svc.lastCall)
			assert.Equal(t, tt.expectedID, svc.lastID)
		})
	}
}

func TestAdminHandler_Bodies(t *testing.T) {
	t.Run("create course records the creator", func(t *testing.T) {
		svc := &mockAdminService{}
		r := chi.NewRouter()
		NewAdminHandler(svc, zap.NewNop()).RegisterRoutes(r, asUser("admin-1", models.RoleAdmin))

		w := doRequest(t, r, http.MethodPost, "/admin/courses", models.CourseRequest{Title: "Pump Basics"})

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, models.UserID("admin-1"), svc.createdBy)
	})

	t.Run("assign passes the user list", func(t *testing.T) {
		svc := &mockAdminService{}
		r := chi.NewRouter()
		NewAdminHandler(svc, zap.NewNop()).RegisterRoutes(r, asUser("admin-1", models.RoleAdmin))

		w := doRequest(t, r, http.MethodPost, "/admin/courses/c1/assign", models.AssignRequest{UserIDs: []models.UserID{"u1", "u2"}})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []models.UserID{"u1", "u2"}, svc.userIDs)
	})

	t.Run("assign accepts a bare array of user IDs", func(t *testing.T) {
		svc := &mockAdminService{}
		r := chi.NewRouter()
		NewAdminHandler(svc, zap.NewNop()).RegisterRoutes(r, asUser("admin-1", models.RoleAdmin))

		w := doRequest(t, r, http.MethodPost, "/admin/courses/c1/assign", `["u1","u2","u3"]`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []models.UserID{"u1", "u2", "u3"}, svc.userIDs)
	})

	t.Run("assign object with unknown field", func(t *testing.T) {
		svc := &mockAdminService{}
		r := chi.NewRouter()
		NewAdminHandler(svc, zap.NewNop()).RegisterRoutes(r, asUser("admin-1", models.RoleAdmin))

		w := doRequest(t, r, http.MethodPost, "/admin/courses/c1/assign", `{"users":["u1"]}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Empty(t, svc.lastCall)
	})

	t.Run("role from query parameter without body", func(t *testing.T) {
		svc := &mockAdminService{}
		r := chi.NewRouter()
		NewAdminHandler(svc, zap.NewNop()).RegisterRoutes(r, asUser("admin-1", models.RoleAdmin))

		w := doRequest(t, r, http.MethodPost, "/admin/users/u1/role?role=admin", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.RoleAdmin, svc.role)
		assert.Equal(t, "u1", svc.lastID)
	})

	t.Run("role body without query parameter", func(t *testing.T) {
		svc := &mockAdminService{}
		r := chi.NewRouter()
		NewAdminHandler(svc, zap.NewNop()).RegisterRoutes(r, asUser("admin-1", models.RoleAdmin))

		w := doRequest(t, r, http.MethodPost, "/admin/users/u1/role", `{"role":"learner"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, models.RoleLearner, svc.role)
	})

	t.Run("role missing from query and body", func(t *testing.T) {
		svc := &mockAdminService{}
		r := chi.NewRouter()
		NewAdminHandler(svc, zap.NewNop()).RegisterRoutes(r, asUser("admin-1", models.RoleAdmin))

		w := doRequest(t, r, http.MethodPost, "/admin/users/u1/role", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Empty(t, svc.lastCall)
	})

	t.Run("quiz passing score is optional", func(t *testing.T) {
		svc := &mockAdminService{}
		r := chi.NewRouter()
		NewAdminHandler(svc, zap.NewNop()).RegisterRoutes(r, asUser("admin-1", models.RoleAdmin))

		w := doRequest(t, r, http.MethodPost, "/admin/modules/m1/quizzes", `{"title":"Check","questions":[]}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Nil(t, svc.quizReq.PassingScore)
	})

	t.Run("invalid role", func(t *testing.T) {
		svc := &mockAdminService{err: models.Validation("Invalid role")}
		r := chi.NewRouter()
		NewAdminHandler(svc, zap.NewNop()).RegisterRoutes(r, asUser("admin-1", models.RoleAdmin))

		w := doRequest(t, r, http.MethodPost, "/admin/users/u1/role", `{"role":"owner"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "Invalid role", detail(t, w))
	})

	t.Run("delete missing course", func(t *testing.T) {
		svc := &mockAdminService{err: models.ErrCourseNotFound}
		r := chi.NewRouter()
		NewAdminHandler(svc, zap.NewNop()).RegisterRoutes(r, asUser("admin-1", models.RoleAdmin))

		w := doRequest(t, r, http.MethodDelete, "/admin/courses/c9", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
