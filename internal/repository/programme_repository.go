package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edushare-my/edushare-api/internal/models"
)

// ProgrammeRepository handles persistence for programme reference data.
type ProgrammeRepository struct {
	db *sqlx.DB
}

// NewProgrammeRepository creates a new repository instance.
func NewProgrammeRepository(db *sqlx.DB) *ProgrammeRepository {
	return &ProgrammeRepository{db: db}
}

// List returns programmes ordered by code. When activeOnly is set, disabled
// programmes are excluded.
func (r *ProgrammeRepository) List(ctx context.Context, activeOnly bool) ([]models.Programme, error) {
	query := `SELECT id, code, name, department, is_active, created_at, updated_at FROM programmes`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY code ASC`
	var programmes []models.Programme
	if err := r.db.SelectContext(ctx, &programmes, query); err != nil {
		return nil, fmt.Errorf("list programmes: %w", err)
	}
	return programmes, nil
}

// FindByID returns a programme by id.
func (r *ProgrammeRepository) FindByID(ctx context.Context, id string) (*models.Programme, error) {
	const query = `SELECT id, code, name, department, is_active, created_at, updated_at FROM programmes WHERE id = $1`
	var programme models.Programme
	if err := r.db.GetContext(ctx, &programme, query, id); err != nil {
		return nil, err
	}
	return &programme, nil
}

// ExistsByCode checks uniqueness of programme code.
func (r *ProgrammeRepository) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM programmes WHERE LOWER(code) = LOWER($1)"
	args := []interface{}{code}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check programme code: %w", err)
	}
	return true, nil
}

// Create persists a new programme.
func (r *ProgrammeRepository) Create(ctx context.Context, programme *models.Programme) error {
	if programme.ID == "" {
		programme.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if programme.CreatedAt.IsZero() {
		programme.CreatedAt = now
	}
	programme.UpdatedAt = now

	const query = `INSERT INTO programmes (id, code, name, department, is_active, created_at, updated_at)
		VALUES (:id, :code, :name, :department, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, programme); err != nil {
		return fmt.Errorf("create programme: %w", err)
	}
	return nil
}

// Update modifies a programme, including its soft-disable flag. Programmes
// are never deleted.
func (r *ProgrammeRepository) Update(ctx context.Context, programme *models.Programme) error {
	programme.UpdatedAt = time.Now().UTC()
	const query = `UPDATE programmes SET code = :code, name = :name, department = :department,
		is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, programme); err != nil {
		return fmt.Errorf("update programme: %w", err)
	}
	return nil
}
