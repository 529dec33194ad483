package models

import "time"

// MaterialType enumerates the kinds of academic material.
type MaterialType string

const (
	MaterialTypeNote         MaterialType = "NOTE"
	MaterialTypeExamPaper    MaterialType = "EXAM_PAPER"
	MaterialTypeAnswerScheme MaterialType = "ANSWER_SCHEME"
)

// ValidMaterialType reports whether t is a known material type.
func ValidMaterialType(t MaterialType) bool {
	switch t {
	case MaterialTypeNote, MaterialTypeExamPaper, MaterialTypeAnswerScheme:
		return true
	}
	return false
}

// MaterialStatus captures the approval workflow states.
type MaterialStatus string

const (
	MaterialStatusPending  MaterialStatus = "PENDING"
	MaterialStatusApproved MaterialStatus = "APPROVED"
	MaterialStatusRejected MaterialStatus = "REJECTED"
)

// Material is the central entity: one uploaded resource with its file
// descriptor, organizational keys, approval state and engagement counters.
// The status column transitions at most once, PENDING -> APPROVED/REJECTED;
// approved and rejected are terminal.
type Material struct {
	ID          string       `db:"id" json:"id"`
	Title       string       `db:"title" json:"title"`
	Description string       `db:"description" json:"description"`
	Type        MaterialType `db:"type" json:"type"`

	FileName string `db:"file_name" json:"file_name"`
	FileSize int64  `db:"file_size" json:"file_size"`
	MimeType string `db:"mime_type" json:"mime_type"`
	FilePath string `db:"file_path" json:"-"`

	ProgrammeID string `db:"programme_id" json:"programme_id"`
	Semester    int    `db:"semester" json:"semester"`
	SubjectCode string `db:"subject_code" json:"subject_code"`
	SubjectName string `db:"subject_name" json:"subject_name"`

	UploaderID   string   `db:"uploader_id" json:"uploader_id"`
	UploaderName string   `db:"uploader_name" json:"uploader_name"`
	UploaderRole UserRole `db:"uploader_role" json:"uploader_role"`

	Status          MaterialStatus `db:"status" json:"status"`
	ApprovedBy      *string        `db:"approved_by" json:"approved_by,omitempty"`
	ApproverName    *string        `db:"approver_name" json:"approver_name,omitempty"`
	ApproverRole    *UserRole      `db:"approver_role" json:"approver_role,omitempty"`
	DecidedAt       *time.Time     `db:"decided_at" json:"decided_at,omitempty"`
	RejectionReason *string        `db:"rejection_reason" json:"rejection_reason,omitempty"`

	DownloadCount int        `db:"download_count" json:"download_count"`
	ViewCount     int        `db:"view_count" json:"view_count"`
	LastAccessed  *time.Time `db:"last_accessed" json:"last_accessed,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Decided reports whether the material left the pending state.
func (m *Material) Decided() bool {
	return m.Status != MaterialStatusPending
}

// MaterialFilter constrains browse queries.
type MaterialFilter struct {
	ProgrammeID string
	Semester    int
	SubjectCode string
	Type        MaterialType
	Status      MaterialStatus
	UploaderID  string
	Search      string
	Page        int
	PageSize    int
}
