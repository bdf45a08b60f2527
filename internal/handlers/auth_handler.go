package handlers

import (
	"context"
	"net/http"

	"github.com/flowitec/gogrow/internal/models"
	"github.com/flowitec/gogrow/libs/handlers"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for identity operations
type AuthService interface {
	// Method Login checks the credentials and returns a signed access token.
	//
	// A wrong email or password gives models.ErrInvalidCredentials.
	Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error)
	// Method Register creates a learner account and logs it in.
	//
	// When self-registration is off, models.ErrRegistrationDisabled is returned.
	Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error)
	// Method Me returns the profile of the given user.
	Me(ctx context.Context, userID models.UserID) (*models.User, error)
	// Method UpdateProfile changes the caller's name and returns the updated profile.
	UpdateProfile(ctx context.Context, userID models.UserID, req *models.UpdateProfileRequest) (*models.User, error)
}

// AuthHandler handles HTTP requests for login, registration and the caller's profile
type AuthHandler struct {
	handlers.BaseHandler
	service AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(svc AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service:     svc,
		BaseHandler: handlers.BaseHandler{Logger: logger},
	}
}

// RegisterRoutes registers all auth handler routes
func (h *AuthHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/register", h.Register)
		r.With(authMiddleware).Get("/me", h.Me)
	})
	r.Route("/users", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/profile", h.Me)
		r.Put("/profile", h.UpdateProfile)
	})
}

// Login handles POST /auth/login
// @Summary Log in
// @Description Exchange email and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.TokenResponse
// @Failure 401 {object} handlers.ErrorResponse "Invalid credentials"
// @Failure 422 {object} handlers.ErrorResponse "Malformed body"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// Register handles POST /auth/register
// @Summary Register
// @Description Create a learner account when self-registration is enabled
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "New account"
// @Success 200 {object} models.TokenResponse
// @Failure 400 {object} handlers.ErrorResponse "Email already registered"
// @Failure 403 {object} handlers.ErrorResponse "Registration is disabled"
// @Failure 422 {object} handlers.ErrorResponse "Invalid fields"
// @Router /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// Me handles GET /auth/me and GET /users/profile
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Router /auth/me [get]
// @Router /users/profile [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	user, err := h.service.Me(r.Context(), userID)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /users/profile
// @Summary Update profile
// @Description Change first and/or last name; empty values are ignored
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UpdateProfileRequest true "Names"
// @Success 200 {object} models.User
// @Failure 401 {object} handlers.ErrorResponse "Not authenticated"
// @Router /users/profile [put]
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := caller(&h.BaseHandler, w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if !decodeBody(&h.BaseHandler, w, r, &req) {
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		respondServiceError(&h.BaseHandler, w, r, err)
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}
