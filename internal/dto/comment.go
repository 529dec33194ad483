package dto

import "github.com/edushare-my/edushare-api/internal/models"

// CreateCommentRequest carries the comment text; attachments arrive as
// multipart files alongside it.
type CreateCommentRequest struct {
	Content string `form:"content" json:"content" validate:"required,max=2000"`
}

// AttachmentRejection reports one file refused during comment submission.
// Valid files in the same batch are still accepted.
type AttachmentRejection struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// CreateCommentResponse pairs the created comment with per-file rejections.
type CreateCommentResponse struct {
	Comment   *models.Comment       `json:"comment"`
	Rejected  []AttachmentRejection `json:"rejected_attachments,omitempty"`
	DeepLink  string                `json:"deep_link"`
}
