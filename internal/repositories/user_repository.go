package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flowitec/gogrow/internal/models"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

const userColumns = `id, email, password_hash, first_name, last_name, employee_id, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.EmployeeID,
		&u.Role,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a user. A taken email returns models.ErrEmailTaken.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.EmployeeID,
		user.Role,
		user.CreatedAt,
	)
	if isDuplicateEntry(err) {
		return models.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id models.UserID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// List returns all users ordered by creation time
func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, email`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return users, nil
}

// UpdateProfile overwrites a user's first and last name
func (r *userRepository) UpdateProfile(ctx context.Context, id models.UserID, firstName, lastName string) error {
	query := `UPDATE users SET first_name = ?, last_name = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, firstName, lastName, id); err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}

	return nil
}

// UpdateRole sets a user's role
func (r *userRepository) UpdateRole(ctx context.Context, id models.UserID, role models.Role) error {
	query := `UPDATE users SET role = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, role, id); err != nil {
		return fmt.Errorf("failed to update user role: %w", err)
	}

	return nil
}

// CountByRole counts users with the given role
func (r *userRepository) CountByRole(ctx context.Context, role models.Role) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, role).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}

	return count, nil
}
