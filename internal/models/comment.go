package models

import "time"

// Comment is a remark attached to a material. Comments have a lifecycle
// independent of the parent material's approval state and are deletable only
// by their author.
type Comment struct {
	ID         string    `db:"id" json:"id"`
	MaterialID string    `db:"material_id" json:"material_id"`
	Content    string    `db:"content" json:"content"`
	AuthorID   string    `db:"author_id" json:"author_id"`
	AuthorName string    `db:"author_name" json:"author_name"`
	AuthorRole UserRole  `db:"author_role" json:"author_role"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	Attachments []CommentAttachment `json:"attachments,omitempty"`
}

// CommentAttachment is one file attached to a comment.
type CommentAttachment struct {
	ID        string    `db:"id" json:"id"`
	CommentID string    `db:"comment_id" json:"comment_id"`
	FileName  string    `db:"file_name" json:"file_name"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	MimeType  string    `db:"mime_type" json:"mime_type"`
	FilePath  string    `db:"file_path" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
