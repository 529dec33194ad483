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

const materialColumns = `id, title, description, type, file_name, file_size, mime_type, file_path,
       programme_id, semester, subject_code, subject_name,
       uploader_id, uploader_name, uploader_role,
       status, approved_by, approver_name, approver_role, decided_at, rejection_reason,
       download_count, view_count, last_accessed, created_at`

// MaterialRepository handles persistence for uploaded materials.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository creates a new repository instance.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create persists a new material in a single insert; there is no partial
// write to roll back.
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	if material.Status == "" {
		material.Status = models.MaterialStatusPending
	}
	if material.CreatedAt.IsZero() {
		material.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO materials
	(id, title, description, type, file_name, file_size, mime_type, file_path,
	 programme_id, semester, subject_code, subject_name,
	 uploader_id, uploader_name, uploader_role,
	 status, approved_by, approver_name, approver_role, decided_at, rejection_reason,
	 download_count, view_count, last_accessed, created_at)
	VALUES (:id, :title, :description, :type, :file_name, :file_size, :mime_type, :file_path,
	 :programme_id, :semester, :subject_code, :subject_name,
	 :uploader_id, :uploader_name, :uploader_role,
	 :status, :approved_by, :approver_name, :approver_role, :decided_at, :rejection_reason,
	 :download_count, :view_count, :last_accessed, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

// GetByID fetches a material by identifier.
func (r *MaterialRepository) GetByID(ctx context.Context, id string) (*models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM materials WHERE id = $1`, materialColumns)
	var material models.Material
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		return nil, err
	}
	return &material, nil
}

// List returns materials matching filters with pagination metadata, newest
// first.
func (r *MaterialRepository) List(ctx context.Context, filter models.MaterialFilter) ([]models.Material, int, error) {
	base := "FROM materials WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.ProgrammeID != "" {
		conditions = append(conditions, fmt.Sprintf("programme_id = $%d", len(args)+1))
		args = append(args, filter.ProgrammeID)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.SubjectCode != "" {
		conditions = append(conditions, fmt.Sprintf("subject_code = $%d", len(args)+1))
		args = append(args, strings.ToUpper(filter.SubjectCode))
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.UploaderID != "" {
		conditions = append(conditions, fmt.Sprintf("uploader_id = $%d", len(args)+1))
		args = append(args, filter.UploaderID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", materialColumns, base, size, offset)
	var materials []models.Material
	if err := r.db.SelectContext(ctx, &materials, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list materials: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count materials: %w", err)
	}

	return materials, total, nil
}

// ListPendingBySubjects returns pending materials whose subject code is in
// the provided set, oldest first so queues are reviewed in order.
func (r *MaterialRepository) ListPendingBySubjects(ctx context.Context, subjectCodes []string) ([]models.Material, error) {
	if len(subjectCodes) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM materials WHERE status = $1 AND subject_code = ANY($2) ORDER BY created_at ASC`, materialColumns)
	var materials []models.Material
	if err := r.db.SelectContext(ctx, &materials, query, models.MaterialStatusPending, pq.Array(subjectCodes)); err != nil {
		return nil, fmt.Errorf("list pending materials by subjects: %w", err)
	}
	return materials, nil
}

// ListPendingByProgrammes returns pending materials under the provided
// programmes, oldest first.
func (r *MaterialRepository) ListPendingByProgrammes(ctx context.Context, programmeIDs []string) ([]models.Material, error) {
	if len(programmeIDs) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM materials WHERE status = $1 AND programme_id = ANY($2) ORDER BY created_at ASC`, materialColumns)
	var materials []models.Material
	if err := r.db.SelectContext(ctx, &materials, query, models.MaterialStatusPending, pq.Array(programmeIDs)); err != nil {
		return nil, fmt.Errorf("list pending materials by programmes: %w", err)
	}
	return materials, nil
}

// ListAllPending returns every pending material (admin review queue).
func (r *MaterialRepository) ListAllPending(ctx context.Context) ([]models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM materials WHERE status = $1 ORDER BY created_at ASC`, materialColumns)
	var materials []models.Material
	if err := r.db.SelectContext(ctx, &materials, query, models.MaterialStatusPending); err != nil {
		return nil, fmt.Errorf("list pending materials: %w", err)
	}
	return materials, nil
}

// DecisionParams groups the columns written by an approval decision.
type DecisionParams struct {
	ID              string
	Status          models.MaterialStatus
	ApprovedBy      string
	ApproverName    string
	ApproverRole    models.UserRole
	DecidedAt       time.Time
	RejectionReason *string
}

// ApplyDecision records an approve/reject outcome with a compare-and-set on
// the pending state: a material already decided is left untouched and
// sql.ErrNoRows is returned, which makes retried decisions detectable
// instead of silently overwriting the first approver.
func (r *MaterialRepository) ApplyDecision(ctx context.Context, params DecisionParams) error {
	query := fmt.Sprintf(`UPDATE materials
	SET status = :status, approved_by = :approved_by, approver_name = :approver_name,
	    approver_role = :approver_role, decided_at = :decided_at, rejection_reason = :rejection_reason
	WHERE id = :id AND status = '%s'`, models.MaterialStatusPending)
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":               params.ID,
		"status":           params.Status,
		"approved_by":      params.ApprovedBy,
		"approver_name":    params.ApproverName,
		"approver_role":    params.ApproverRole,
		"decided_at":       params.DecidedAt,
		"rejection_reason": params.RejectionReason,
	})
	if err != nil {
		return fmt.Errorf("apply material decision: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check material decision rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// IncrementDownloadCount bumps the download counter. Concurrent increments
// are serialized by the database; lost updates on the last_accessed stamp
// are tolerated.
func (r *MaterialRepository) IncrementDownloadCount(ctx context.Context, id string) error {
	const query = `UPDATE materials SET download_count = download_count + 1, last_accessed = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("increment download count: %w", err)
	}
	return nil
}

// IncrementViewCount bumps the view counter.
func (r *MaterialRepository) IncrementViewCount(ctx context.Context, id string) error {
	const query = `UPDATE materials SET view_count = view_count + 1, last_accessed = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("increment view count: %w", err)
	}
	return nil
}

// EngagementSummary aggregates per-subject material and engagement counts.
func (r *MaterialRepository) EngagementSummary(ctx context.Context) ([]models.SubjectEngagement, error) {
	const query = `SELECT programme_id, subject_code, subject_name,
		COUNT(*) AS total_count,
		COUNT(*) FILTER (WHERE status = 'APPROVED') AS approved_count,
		COUNT(*) FILTER (WHERE status = 'PENDING') AS pending_count,
		COUNT(*) FILTER (WHERE status = 'REJECTED') AS rejected_count,
		COALESCE(SUM(download_count), 0) AS download_total,
		COALESCE(SUM(view_count), 0) AS view_total
	FROM materials
	GROUP BY programme_id, subject_code, subject_name
	ORDER BY programme_id, subject_code`
	var rows []models.SubjectEngagement
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("engagement summary: %w", err)
	}
	return rows, nil
}

// Delete removes a material row (admin-only removal path).
func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted material rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
