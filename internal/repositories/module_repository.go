package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/flowitec/gogrow/internal/models"
)

type moduleRepository struct {
	db *sql.DB
}

// NewModuleRepository creates a new module repository
func NewModuleRepository(db *sql.DB) *moduleRepository {
	return &moduleRepository{
		db: db,
	}
}

// Create inserts a module
func (r *moduleRepository) Create(ctx context.Context, module *models.Module) error {
	query := `
		INSERT INTO modules (id, course_id, title, description, sort_order)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query, module.ID, module.CourseID, module.Title, module.Description, module.Order)
	if err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}

	return nil
}

// GetByID retrieves a module by its ID
func (r *moduleRepository) GetByID(ctx context.Context, id models.ModuleID) (*models.Module, error) {
	query := `
		SELECT id, course_id, title, description, sort_order
		FROM modules
		WHERE id = ?
		LIMIT 1
	`

	var m models.Module
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.CourseID, &m.Title, &m.Description, &m.Order)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrModuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get module by id: %w", err)
	}

	return &m, nil
}

// ListByCourse returns the modules of a course in display order
func (r *moduleRepository) ListByCourse(ctx context.Context, courseID models.CourseID) ([]models.Module, error) {
	query := `
		SELECT id, course_id, title, description, sort_order
		FROM modules
		WHERE course_id = ?
		ORDER BY sort_order, id
	`

	rows, err := r.db.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query modules: %w", err)
	}
	defer rows.Close()

	modules := []models.Module{}
	for rows.Next() {
		var m models.Module
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Description, &m.Order); err != nil {
			return nil, fmt.Errorf("failed to scan module: %w", err)
		}
		modules = append(modules, m)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return modules, nil
}

// Update overwrites the editable fields of a module
func (r *moduleRepository) Update(ctx context.Context, module *models.Module) error {
	query := `UPDATE modules SET title = ?, description = ?, sort_order = ? WHERE id = ?`

	if _, err := r.db.ExecContext(ctx, query, module.Title, module.Description, module.Order, module.ID); err != nil {
		return fmt.Errorf("failed to update module: %w", err)
	}

	return nil
}

// Delete removes a module together with its lessons and quizzes
func (r *moduleRepository) Delete(ctx context.Context, id models.ModuleID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM modules WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete module: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrModuleNotFound
	}

	return nil
}
