package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flowitec/gogrow/internal/models"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupUserTestRepository creates a user repository with a mock database
func setupUserTestRepository(t *testing.T) (*userRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewUserRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

var userRowColumns = []string{"id", "email", "password_hash", "first_name", "last_name", "employee_id", "role", "created_at"}

func TestNewUserRepository(t *testing.T) {
	db := &sql.DB{}

	repo := NewUserRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestUserRepository_Create(t *testing.T) {
	user := &models.User{
		ID:           "u1",
		Email:        "ana@flowitec.com",
		PasswordHash: "hash",
		FirstName:    "Ana",
		LastName:     "Silva",
		EmployeeID:   "EMP-U1",
		Role:         models.RoleLearner,
		CreatedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		wantErr       bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs("u1", "ana@flowitec.com", "hash", "Ana", "Silva", "EMP-U1", "learner", sqlmock.AnyArg()).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
		},
		{
			name: "duplicate email",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
			},
			expectedError: models.ErrEmailTaken,
			wantErr:       true,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO users`).
					WillReturnError(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			err := repo.Create(context.Background(), user)

			if tt.wantErr {
				require.Error(t, err)
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				}
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		expectedError error
		wantErr       bool
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(userRowColumns).
					AddRow("u1", "ana@flowitec.com", "hash", "Ana", "Silva", "EMP-U1", "admin", created)
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \? LIMIT 1`).
					WithArgs("u1").
					WillReturnRows(rows)
			},
		},
		{
			name: "not found",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \?`).
					WithArgs("u1").
					WillReturnError(sql.ErrNoRows)
			},
			expectedError: models.ErrUserNotFound,
			wantErr:       true,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users WHERE id = \?`).
					WithArgs("u1").
					WillReturnError(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			user, err := repo.GetByID(context.Background(), "u1")

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, user)
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.UserID("u1"), user.ID)
				assert.Equal(t, models.RoleAdmin, user.Role)
				assert.Equal(t, "Ana Silva", user.FullName())
				assert.Equal(t, created, user.CreatedAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByEmail(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM users WHERE email = \? LIMIT 1`).
		WithArgs("nobody@flowitec.com").
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	user, err := repo.GetByEmail(context.Background(), "nobody@flowitec.com")

	assert.Nil(t, user)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_List(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		wantErr       bool
		expectedCount int
	}{
		{
			name: "success",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(userRowColumns).
					AddRow("u1", "a@flowitec.com", "h", "A", "A", "EMP-1", "learner", now).
					AddRow("u2", "b@flowitec.com", "h", "B", "B", "EMP-2", "admin", now)
				mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY created_at, email`).WillReturnRows(rows)
			},
			expectedCount: 2,
		},
		{
			name: "empty",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT (.+) FROM users`).WillReturnRows(sqlmock.NewRows(userRowColumns))
			},
			expectedCount: 0,
		},
		{
			name: "rows iteration error",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(userRowColumns).
					AddRow("u1", "a@flowitec.com", "h", "A", "A", "EMP-1", "learner", now).
					RowError(0, errors.New("row error"))
				mock.ExpectQuery(`SELECT (.+) FROM users`).WillReturnRows(rows)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupUserTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			users, err := repo.List(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, users)
				assert.Len(t, users, tt.expectedCount)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_UpdateRole(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE users SET role = \? WHERE id = \?`).
		WithArgs("admin", "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateRole(context.Background(), "u1", models.RoleAdmin)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_UpdateProfile(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectExec(`UPDATE users SET first_name = \?, last_name = \? WHERE id = \?`).
		WithArgs("Ana", "Costa", "u1").
		WillReturnError(errors.New("database error"))

	err := repo.UpdateProfile(context.Background(), "u1", "Ana", "Costa")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to update user profile")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CountByRole(t *testing.T) {
	repo, mock, cleanup := setupUserTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE role = \?`).
		WithArgs("learner").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountByRole(context.Background(), models.RoleLearner)

	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
