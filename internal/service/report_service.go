package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edushare-my/edushare-api/internal/models"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
	"github.com/edushare-my/edushare-api/pkg/export"
)

type engagementSummarizer interface {
	EngagementSummary(ctx context.Context) ([]models.SubjectEngagement, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ReportServiceConfig gates exports.
type ReportServiceConfig struct {
	Enabled bool
}

// ReportService renders the admin engagement summary as CSV or PDF.
type ReportService struct {
	materials engagementSummarizer
	audit     auditLogger
	csv       csvRenderer
	pdf       pdfRenderer
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// NewReportService constructs the service.
func NewReportService(materials engagementSummarizer, audit auditLogger, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{materials: materials, audit: audit, csv: csv, pdf: pdf, logger: logger, cfg: cfg}
}

// ExportEngagement renders the per-subject engagement report. Admin only.
func (s *ReportService) ExportEngagement(ctx context.Context, format string, actor *models.JWTClaims) (*models.ReportFile, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "report exports are disabled")
	}

	var reportFormat models.ReportFormat
	switch models.ReportFormat(strings.ToUpper(strings.TrimSpace(format))) {
	case models.ReportFormatCSV, "":
		reportFormat = models.ReportFormatCSV
	case models.ReportFormatPDF:
		reportFormat = models.ReportFormatPDF
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be CSV or PDF")
	}

	rows, err := s.materials.EngagementSummary(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build engagement summary")
	}
	dataset := buildEngagementDataset(rows)

	now := time.Now().UTC()
	file := &models.ReportFile{GeneratedAt: now}
	switch reportFormat {
	case models.ReportFormatCSV:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		file.Payload = payload
		file.ContentType = "text/csv"
		file.Filename = fmt.Sprintf("engagement_%s.csv", now.Format("20060102_150405"))
	case models.ReportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Material Engagement Summary")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		file.Payload = payload
		file.ContentType = "application/pdf"
		file.Filename = fmt.Sprintf("engagement_%s.pdf", now.Format("20060102_150405"))
	}

	s.emitAudit(ctx, actor, string(reportFormat))
	return file, nil
}

func buildEngagementDataset(rows []models.SubjectEngagement) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Programme", "Subject Code", "Subject Name", "Materials", "Approved", "Pending", "Rejected", "Downloads", "Views"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, []string{
			row.ProgrammeID,
			row.SubjectCode,
			row.SubjectName,
			strconv.Itoa(row.TotalCount),
			strconv.Itoa(row.ApprovedCount),
			strconv.Itoa(row.PendingCount),
			strconv.Itoa(row.RejectedCount),
			strconv.Itoa(row.DownloadTotal),
			strconv.Itoa(row.ViewTotal),
		})
	}
	return dataset
}

func (s *ReportService) emitAudit(ctx context.Context, actor *models.JWTClaims, format string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:    &actor.UserID,
		Action:    models.AuditActionReportExport,
		Resource:  "report",
		NewValues: []byte(fmt.Sprintf(`{"format":%q}`, format)),
		IPAddress: "system",
		UserAgent: "report-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
