package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edushare-my/edushare-api/internal/models"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
	"github.com/edushare-my/edushare-api/pkg/export"
)

type summarizerStub struct {
	rows []models.SubjectEngagement
}

func (s *summarizerStub) EngagementSummary(ctx context.Context) ([]models.SubjectEngagement, error) {
	return s.rows, nil
}

func newReportTestService(rows []models.SubjectEngagement, audit *auditStub, enabled bool) *ReportService {
	return NewReportService(&summarizerStub{rows: rows}, audit, export.NewCSVExporter(), export.NewPDFExporter(), nil, ReportServiceConfig{Enabled: enabled})
}

func engagementRows() []models.SubjectEngagement {
	return []models.SubjectEngagement{
		{ProgrammeID: "prog-1", SubjectCode: "DPP20023", SubjectName: "Financial Accounting", TotalCount: 4, ApprovedCount: 3, PendingCount: 1, DownloadTotal: 17, ViewTotal: 52},
		{ProgrammeID: "prog-1", SubjectCode: "DPP30033", SubjectName: "Cost Accounting", TotalCount: 2, ApprovedCount: 1, RejectedCount: 1, DownloadTotal: 5, ViewTotal: 11},
	}
}

func TestReportServiceExportCSV(t *testing.T) {
	audit := &auditStub{}
	svc := newReportTestService(engagementRows(), audit, true)

	file, err := svc.ExportEngagement(context.Background(), "csv", adminClaims("admin-1"))
	require.NoError(t, err)
	require.Equal(t, "text/csv", file.ContentType)
	require.Contains(t, file.Filename, "engagement_")
	require.Contains(t, string(file.Payload), "DPP20023")
	require.Contains(t, string(file.Payload), "Financial Accounting")
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionReportExport, audit.logs[0].Action)
}

func TestReportServiceExportDefaultsToCSV(t *testing.T) {
	svc := newReportTestService(engagementRows(), &auditStub{}, true)

	file, err := svc.ExportEngagement(context.Background(), "", adminClaims("admin-1"))
	require.NoError(t, err)
	require.Equal(t, "text/csv", file.ContentType)
}

func TestReportServiceExportPDF(t *testing.T) {
	svc := newReportTestService(engagementRows(), &auditStub{}, true)

	file, err := svc.ExportEngagement(context.Background(), "pdf", adminClaims("admin-1"))
	require.NoError(t, err)
	require.Equal(t, "application/pdf", file.ContentType)
	require.True(t, bytes.HasPrefix(file.Payload, []byte("%PDF")))
}

func TestReportServiceExportRejectsUnknownFormat(t *testing.T) {
	svc := newReportTestService(engagementRows(), &auditStub{}, true)

	_, err := svc.ExportEngagement(context.Background(), "xlsx", adminClaims("admin-1"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceExportAdminOnly(t *testing.T) {
	svc := newReportTestService(engagementRows(), &auditStub{}, true)

	_, err := svc.ExportEngagement(context.Background(), "csv", lecturerClaims("lect-1"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReportServiceExportDisabled(t *testing.T) {
	svc := newReportTestService(engagementRows(), &auditStub{}, false)

	_, err := svc.ExportEngagement(context.Background(), "csv", adminClaims("admin-1"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}
