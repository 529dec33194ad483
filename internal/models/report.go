package models

import "time"

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "CSV"
	ReportFormatPDF ReportFormat = "PDF"
)

// SubjectEngagement is one row of the per-subject engagement summary.
type SubjectEngagement struct {
	ProgrammeID   string `db:"programme_id" json:"programme_id"`
	SubjectCode   string `db:"subject_code" json:"subject_code"`
	SubjectName   string `db:"subject_name" json:"subject_name"`
	TotalCount    int    `db:"total_count" json:"total_count"`
	ApprovedCount int    `db:"approved_count" json:"approved_count"`
	PendingCount  int    `db:"pending_count" json:"pending_count"`
	RejectedCount int    `db:"rejected_count" json:"rejected_count"`
	DownloadTotal int    `db:"download_total" json:"download_total"`
	ViewTotal     int    `db:"view_total" json:"view_total"`
}

// ReportFile is a rendered export ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
	GeneratedAt time.Time
}
