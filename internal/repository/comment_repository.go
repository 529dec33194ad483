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

// CommentRepository handles persistence for comments and their attachments.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository creates a new repository instance.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create persists a comment together with its accepted attachments in one
// transaction.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create comment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertComment = `INSERT INTO comments (id, material_id, content, author_id, author_name, author_role, created_at)
		VALUES (:id, :material_id, :content, :author_id, :author_name, :author_role, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertComment, comment); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}

	const insertAttachment = `INSERT INTO comment_attachments (id, comment_id, file_name, file_size, mime_type, file_path, created_at)
		VALUES (:id, :comment_id, :file_name, :file_size, :mime_type, :file_path, :created_at)`
	for i := range comment.Attachments {
		att := &comment.Attachments[i]
		if att.ID == "" {
			att.ID = uuid.NewString()
		}
		att.CommentID = comment.ID
		if att.CreatedAt.IsZero() {
			att.CreatedAt = comment.CreatedAt
		}
		if _, err := tx.NamedExecContext(ctx, insertAttachment, att); err != nil {
			return fmt.Errorf("create comment attachment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create comment: %w", err)
	}
	return nil
}

// GetByID fetches a comment (without attachments) by identifier.
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	const query = `SELECT id, material_id, content, author_id, author_name, author_role, created_at
		FROM comments WHERE id = $1`
	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, query, id); err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListByMaterial returns a material's comments in creation order with their
// attachments populated.
func (r *CommentRepository) ListByMaterial(ctx context.Context, materialID string) ([]models.Comment, error) {
	const query = `SELECT id, material_id, content, author_id, author_name, author_role, created_at
		FROM comments WHERE material_id = $1 ORDER BY created_at ASC`
	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, materialID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if len(comments) == 0 {
		return comments, nil
	}

	ids := make([]string, len(comments))
	index := make(map[string]int, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
		index[c.ID] = i
	}

	attachments, err := r.listAttachments(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, att := range attachments {
		i := index[att.CommentID]
		comments[i].Attachments = append(comments[i].Attachments, att)
	}
	return comments, nil
}

// ListAttachments returns a single comment's attachments.
func (r *CommentRepository) ListAttachments(ctx context.Context, commentID string) ([]models.CommentAttachment, error) {
	return r.listAttachments(ctx, []string{commentID})
}

func (r *CommentRepository) listAttachments(ctx context.Context, commentIDs []string) ([]models.CommentAttachment, error) {
	query, args, err := sqlx.In(`SELECT id, comment_id, file_name, file_size, mime_type, file_path, created_at
		FROM comment_attachments WHERE comment_id IN (?) ORDER BY created_at ASC`, commentIDs)
	if err != nil {
		return nil, fmt.Errorf("build attachment query: %w", err)
	}
	query = r.db.Rebind(query)
	var attachments []models.CommentAttachment
	if err := r.db.SelectContext(ctx, &attachments, query, args...); err != nil {
		return nil, fmt.Errorf("list comment attachments: %w", err)
	}
	return attachments, nil
}

// Delete removes a comment and its attachment rows. The caller performs the
// author check; the delete itself is unconditional on ownership.
func (r *CommentRepository) Delete(ctx context.Context, materialID, commentID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete comment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM comment_attachments WHERE comment_id = $1`, commentID); err != nil {
		return fmt.Errorf("delete comment attachments: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND material_id = $2`, commentID, materialID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted comment rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete comment: %w", err)
	}
	return nil
}
