package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flowitec/gogrow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupModuleTestRepository creates a module repository with a mock database
func setupModuleTestRepository(t *testing.T) (*moduleRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewModuleRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestModuleRepository_ListByCourse(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(sqlmock.Sqlmock)
		wantErr       bool
		expectedCount int
	}{
		{
			name: "ordered modules",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "course_id", "title", "description", "sort_order"}).
					AddRow("m1", "c1", "Basics", "", 0).
					AddRow("m2", "c1", "Advanced", "deep dive", 1)
				mock.ExpectQuery(`SELECT id, course_id, title, description, sort_order FROM modules WHERE course_id = \? ORDER BY sort_order, id`).
					WithArgs("c1").
					WillReturnRows(rows)
			},
			expectedCount: 2,
		},
		{
			name: "scan error",
			setupMock: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "course_id", "title", "description", "sort_order"}).
					AddRow("m1", "c1", "Basics", "", "not-a-number")
				mock.ExpectQuery(`FROM modules WHERE course_id = \?`).
					WithArgs("c1").
					WillReturnRows(rows)
			},
			wantErr: true,
		},
		{
			name: "database error",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM modules WHERE course_id = \?`).
					WithArgs("c1").
					WillReturnError(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := setupModuleTestRepository(t)
			defer cleanup()

			tt.setupMock(mock)

			modules, err := repo.ListByCourse(context.Background(), "c1")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, modules, tt.expectedCount)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestModuleRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := setupModuleTestRepository(t)
	defer cleanup()

	mock.ExpectQuery(`FROM modules WHERE id = \?`).
		WithArgs("m9").
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "title", "description", "sort_order"}))

	module, err := repo.GetByID(context.Background(), "m9")

	assert.Nil(t, module)
	assert.ErrorIs(t, err, models.ErrModuleNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModuleRepository_CreateUpdateDelete(t *testing.T) {
	repo, mock, cleanup := setupModuleTestRepository(t)
	defer cleanup()

	module := &models.Module{ID: "m1", CourseID: "c1", Title: "Basics", Order: 1}

	mock.ExpectExec(`INSERT INTO modules`).
		WithArgs("m1", "c1", "Basics", "", 1).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE modules SET title = \?, description = \?, sort_order = \? WHERE id = \?`).
		WithArgs("Basics", "", 1, "m1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM modules WHERE id = \?`).
		WithArgs("m1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), module))
	require.NoError(t, repo.Update(context.Background(), module))
	require.NoError(t, repo.Delete(context.Background(), "m1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}
