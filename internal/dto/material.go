package dto

import "github.com/edushare-my/edushare-api/internal/models"

// CreateMaterialRequest carries upload metadata; the file itself arrives as
// multipart content alongside it.
type CreateMaterialRequest struct {
	Title       string              `form:"title" json:"title" validate:"required,max=200"`
	Description string              `form:"description" json:"description" validate:"max=2000"`
	Type        models.MaterialType `form:"type" json:"type" validate:"required"`
	ProgrammeID string              `form:"programme_id" json:"programme_id" validate:"required"`
	Semester    int                 `form:"semester" json:"semester" validate:"required,min=1,max=5"`
	SubjectCode string              `form:"subject_code" json:"subject_code" validate:"required"`
}

// MaterialQuery captures browse filters.
type MaterialQuery struct {
	ProgrammeID string `form:"programme_id"`
	Semester    int    `form:"semester"`
	SubjectCode string `form:"subject_code"`
	Type        string `form:"type"`
	Search      string `form:"search"`
	Page        int    `form:"page"`
	PageSize    int    `form:"page_size"`
}

// RejectMaterialRequest carries the mandatory rejection reason.
type RejectMaterialRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// DownloadURLResponse returns the signed download location.
type DownloadURLResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}
