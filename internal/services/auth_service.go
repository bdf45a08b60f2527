// Package services holds the business logic of the LMS. Every service declares the
// repository methods it needs as small interfaces and receives them from main.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/flowitec/gogrow/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the interface that wraps methods for User table data access
type UserRepository interface {
	// Method Create inserts a new user into the database.
	//
	// If the email is already taken, models.ErrEmailTaken is returned.
	Create(ctx context.Context, user *models.User) error
	// Method GetByID retrieves a user by ID.
	//
	// If user with such ID does not exist, models.ErrUserNotFound is returned.
	GetByID(ctx context.Context, id models.UserID) (*models.User, error)
	// Method GetByEmail retrieves a user by email.
	//
	// If user with such email does not exist, models.ErrUserNotFound is returned.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Method UpdateProfile overwrites the user's first and last name.
	UpdateProfile(ctx context.Context, id models.UserID, firstName, lastName string) error
}

// TokenIssuer signs access tokens
type TokenIssuer interface {
	GenerateAccessToken(userID, role string) (string, time.Time, error)
}

type authService struct {
	userRepo            UserRepository
	tokenIssuer         TokenIssuer
	registrationEnabled bool
	logger              *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo UserRepository, tokenIssuer TokenIssuer, registrationEnabled bool, logger *zap.Logger) *authService {
	return &authService{
		userRepo:            userRepo,
		tokenIssuer:         tokenIssuer,
		registrationEnabled: registrationEnabled,
		logger:              logger,
	}
}

// emailRegex validates email format
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const minPasswordLength = 6

// Login authenticates a user by email and password
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.TokenResponse, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrUserNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// Register creates a learner account when self-registration is enabled
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.TokenResponse, error) {
	if !s.registrationEnabled {
		return nil, models.ErrRegistrationDisabled
	}

	email := normalizeEmail(req.Email)
	if !emailRegex.MatchString(email) {
		return nil, models.Validation("Invalid email format")
	}
	if len(req.Password) < minPasswordLength {
		return nil, models.Validation(fmt.Sprintf("Password must be at least %d characters long", minPasswordLength))
	}
	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if firstName == "" || lastName == "" {
		return nil, models.Validation("First and last name are required")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id := models.NewUserID()
	user := &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: string(passwordHash),
		FirstName:    firstName,
		LastName:     lastName,
		EmployeeID:   models.DefaultEmployeeID(id),
		Role:         models.RoleLearner,
		CreatedAt:    time.Now().UTC(),
	}
	if req.EmployeeID != nil && strings.TrimSpace(*req.EmployeeID) != "" {
		user.EmployeeID = strings.TrimSpace(*req.EmployeeID)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", string(user.ID)))

	return s.issueToken(user)
}

// Me returns the caller's profile
func (s *authService) Me(ctx context.Context, userID models.UserID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateProfile changes the caller's first and/or last name
func (s *authService) UpdateProfile(ctx context.Context, userID models.UserID, req *models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) != "" {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil && strings.TrimSpace(*req.LastName) != "" {
		user.LastName = strings.TrimSpace(*req.LastName)
	}

	if err := s.userRepo.UpdateProfile(ctx, user.ID, user.FirstName, user.LastName); err != nil {
		return nil, err
	}

	return user, nil
}

// EnsureAdmin creates the bootstrap admin account unless a user with that email exists.
// An empty password skips the bootstrap.
func (s *authService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		s.logger.Warn("admin bootstrap skipped: ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, models.ErrUserNotFound) {
		return err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	id := models.NewUserID()
	admin := &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: string(passwordHash),
		FirstName:    "Admin",
		LastName:     "Flowitec",
		EmployeeID:   "ADMIN001",
		Role:         models.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		// Another instance created it first
		if errors.Is(err, models.ErrEmailTaken) {
			return nil
		}
		return err
	}

	s.logger.Info("admin account created", zap.String("email", email))
	return nil
}

func (s *authService) issueToken(user *models.User) (*models.TokenResponse, error) {
	token, expiresAt, err := s.tokenIssuer.GenerateAccessToken(string(user.ID), string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
