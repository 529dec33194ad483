package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/edushare-my/edushare-api/internal/models"
)

// SubjectRepository handles persistence for subject reference data.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListByProgramme returns subjects of a programme, optionally filtered to one
// semester, ordered by semester then code. A valid-but-empty query returns an
// empty slice, never an error.
func (r *SubjectRepository) ListByProgramme(ctx context.Context, programmeID string, semester int) ([]models.Subject, error) {
	query := `SELECT id, programme_id, code, name, semester, credit_hours, created_at, updated_at
		FROM subjects WHERE programme_id = $1`
	args := []interface{}{programmeID}
	if semester > 0 {
		query += ` AND semester = $2`
		args = append(args, semester)
	}
	query += ` ORDER BY semester ASC, code ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID fetches a subject by identifier.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, programme_id, code, name, semester, credit_hours, created_at, updated_at
		FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// FindByCode returns the subject with the given code under a programme.
func (r *SubjectRepository) FindByCode(ctx context.Context, programmeID, code string) (*models.Subject, error) {
	const query = `SELECT id, programme_id, code, name, semester, credit_hours, created_at, updated_at
		FROM subjects WHERE programme_id = $1 AND UPPER(code) = UPPER($2)`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, programmeID, code); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ExistsByCode checks (programme_id, code) uniqueness.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, programmeID, code string) (bool, error) {
	const query = `SELECT 1 FROM subjects WHERE programme_id = $1 AND UPPER(code) = UPPER($2) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, programmeID, code); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return true, nil
}

// CountByCodes returns how many of the provided subject codes exist anywhere
// in the catalog; used to validate lecturer teaching assignments.
func (r *SubjectRepository) CountByCodes(ctx context.Context, codes []string) (int, error) {
	if len(codes) == 0 {
		return 0, nil
	}
	upper := make([]string, len(codes))
	for i, code := range codes {
		upper[i] = strings.ToUpper(strings.TrimSpace(code))
	}
	const query = `SELECT COUNT(DISTINCT UPPER(code)) FROM subjects WHERE UPPER(code) = ANY($1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, pq.Array(upper)); err != nil {
		return 0, fmt.Errorf("count subjects by codes: %w", err)
	}
	return count, nil
}

// Create persists a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, programme_id, code, name, semester, credit_hours, created_at, updated_at)
		VALUES (:id, :programme_id, :code, :name, :semester, :credit_hours, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Update modifies a subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	subject.UpdatedAt = time.Now().UTC()
	const query = `UPDATE subjects SET code = :code, name = :name, semester = :semester,
		credit_hours = :credit_hours, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}
	return nil
}
