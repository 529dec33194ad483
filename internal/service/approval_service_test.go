package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edushare-my/edushare-api/internal/dto"
	"github.com/edushare-my/edushare-api/internal/models"
	"github.com/edushare-my/edushare-api/internal/repository"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
	"github.com/edushare-my/edushare-api/pkg/retry"
)

type approvalRepoStub struct {
	materials map[string]*models.Material
}

func newApprovalRepoStub() *approvalRepoStub {
	return &approvalRepoStub{materials: make(map[string]*models.Material)}
}

func (m *approvalRepoStub) GetByID(ctx context.Context, id string) (*models.Material, error) {
	if mat, ok := m.materials[id]; ok {
		clone := *mat
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *approvalRepoStub) ListPendingBySubjects(ctx context.Context, subjectCodes []string) ([]models.Material, error) {
	set := make(map[string]struct{}, len(subjectCodes))
	for _, code := range subjectCodes {
		set[code] = struct{}{}
	}
	var out []models.Material
	for _, mat := range m.materials {
		if mat.Status != models.MaterialStatusPending {
			continue
		}
		if _, ok := set[mat.SubjectCode]; ok {
			out = append(out, *mat)
		}
	}
	return out, nil
}

func (m *approvalRepoStub) ListPendingByProgrammes(ctx context.Context, programmeIDs []string) ([]models.Material, error) {
	set := make(map[string]struct{}, len(programmeIDs))
	for _, id := range programmeIDs {
		set[id] = struct{}{}
	}
	var out []models.Material
	for _, mat := range m.materials {
		if mat.Status != models.MaterialStatusPending {
			continue
		}
		if _, ok := set[mat.ProgrammeID]; ok {
			out = append(out, *mat)
		}
	}
	return out, nil
}

func (m *approvalRepoStub) ListAllPending(ctx context.Context) ([]models.Material, error) {
	var out []models.Material
	for _, mat := range m.materials {
		if mat.Status == models.MaterialStatusPending {
			out = append(out, *mat)
		}
	}
	return out, nil
}

func (m *approvalRepoStub) ApplyDecision(ctx context.Context, params repository.DecisionParams) error {
	mat, ok := m.materials[params.ID]
	if !ok || mat.Status != models.MaterialStatusPending {
		return sql.ErrNoRows
	}
	role := params.ApproverRole
	mat.Status = params.Status
	mat.ApprovedBy = &params.ApprovedBy
	mat.ApproverName = &params.ApproverName
	mat.ApproverRole = &role
	mat.DecidedAt = &params.DecidedAt
	mat.RejectionReason = params.RejectionReason
	return nil
}

type reviewerDirectoryStub struct {
	users      map[string]*models.User
	subjects   map[string][]string
	programmes map[string][]string
}

func newReviewerDirectoryStub() *reviewerDirectoryStub {
	return &reviewerDirectoryStub{
		users:      make(map[string]*models.User),
		subjects:   make(map[string][]string),
		programmes: make(map[string][]string),
	}
}

func (d *reviewerDirectoryStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := d.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (d *reviewerDirectoryStub) ListTeachingSubjects(ctx context.Context, lecturerID string) ([]string, error) {
	return d.subjects[lecturerID], nil
}

func (d *reviewerDirectoryStub) ListProgrammeAssignments(ctx context.Context, lecturerID string) ([]string, error) {
	return d.programmes[lecturerID], nil
}

type auditStub struct {
	logs []*models.AuditLog
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func fastRetry() retry.Policy {
	return retry.Policy{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func pendingMaterial(id, subjectCode, programmeID string, created time.Time) *models.Material {
	return &models.Material{
		ID:          id,
		Title:       "Material " + id,
		Type:        models.MaterialTypeNote,
		ProgrammeID: programmeID,
		Semester:    1,
		SubjectCode: subjectCode,
		SubjectName: "Subject " + subjectCode,
		UploaderID:  "student-1",
		Status:      models.MaterialStatusPending,
		CreatedAt:   created,
	}
}

func lecturerClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleLecturer, FullName: "Dr. " + id}
}

func TestApprovalServiceApprove(t *testing.T) {
	repo := newApprovalRepoStub()
	users := newReviewerDirectoryStub()
	audit := &auditStub{}

	repo.materials["mat-1"] = pendingMaterial("mat-1", "DPP20023", "prog-1", time.Now())
	users.users["lect-1"] = &models.User{ID: "lect-1", Role: models.RoleLecturer}
	users.subjects["lect-1"] = []string{"DPP20023"}

	svc := NewApprovalService(repo, users, audit, nil, nil, fastRetry())
	material, err := svc.Approve(context.Background(), "mat-1", lecturerClaims("lect-1"))
	require.NoError(t, err)
	require.Equal(t, models.MaterialStatusApproved, material.Status)
	require.Equal(t, "lect-1", *material.ApprovedBy)
	require.NotNil(t, material.DecidedAt)
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionMaterialApprove, audit.logs[0].Action)
}

func TestApprovalServiceSecondDecisionConflicts(t *testing.T) {
	repo := newApprovalRepoStub()
	users := newReviewerDirectoryStub()
	audit := &auditStub{}

	repo.materials["mat-1"] = pendingMaterial("mat-1", "DPP20023", "prog-1", time.Now())
	users.users["lect-1"] = &models.User{ID: "lect-1", Role: models.RoleLecturer}
	users.subjects["lect-1"] = []string{"DPP20023"}
	users.users["lect-2"] = &models.User{ID: "lect-2", Role: models.RoleLecturer}
	users.subjects["lect-2"] = []string{"DPP20023"}

	svc := NewApprovalService(repo, users, audit, nil, nil, fastRetry())
	_, err := svc.Approve(context.Background(), "mat-1", lecturerClaims("lect-1"))
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), "mat-1", dto.RejectMaterialRequest{Reason: "duplicate"}, lecturerClaims("lect-2"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	// The first decision stands untouched.
	stored := repo.materials["mat-1"]
	require.Equal(t, models.MaterialStatusApproved, stored.Status)
	require.Equal(t, "lect-1", *stored.ApprovedBy)
}

func TestApprovalServiceOutOfScopeForbiddenBeforeConflict(t *testing.T) {
	repo := newApprovalRepoStub()
	users := newReviewerDirectoryStub()
	audit := &auditStub{}

	material := pendingMaterial("mat-1", "DPP20023", "prog-1", time.Now())
	now := time.Now().UTC()
	approver := "lect-1"
	role := models.RoleLecturer
	material.Status = models.MaterialStatusApproved
	material.ApprovedBy = &approver
	material.ApproverRole = &role
	material.DecidedAt = &now
	repo.materials["mat-1"] = material

	users.users["lect-2"] = &models.User{ID: "lect-2", Role: models.RoleLecturer}
	users.subjects["lect-2"] = []string{"DPP20033"}

	// An out-of-scope lecturer gets forbidden, not conflict, even though the
	// material is already decided.
	svc := NewApprovalService(repo, users, audit, nil, nil, fastRetry())
	_, err := svc.Approve(context.Background(), "mat-1", lecturerClaims("lect-2"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestApprovalServiceOutOfScopeAttemptLeavesPendingDecidable(t *testing.T) {
	repo := newApprovalRepoStub()
	users := newReviewerDirectoryStub()
	audit := &auditStub{}

	repo.materials["mat-1"] = pendingMaterial("mat-1", "DPP20023", "prog-1", time.Now())
	users.users["lect-1"] = &models.User{ID: "lect-1", Role: models.RoleLecturer}
	users.subjects["lect-1"] = []string{"DPP20023"}
	users.users["lect-2"] = &models.User{ID: "lect-2", Role: models.RoleLecturer}
	users.subjects["lect-2"] = []string{"DPP20033"}

	svc := NewApprovalService(repo, users, audit, nil, nil, fastRetry())
	_, err := svc.Approve(context.Background(), "mat-1", lecturerClaims("lect-2"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	require.Equal(t, models.MaterialStatusPending, repo.materials["mat-1"].Status)

	material, err := svc.Approve(context.Background(), "mat-1", lecturerClaims("lect-1"))
	require.NoError(t, err)
	require.Equal(t, models.MaterialStatusApproved, material.Status)
	require.Equal(t, "lect-1", *material.ApprovedBy)
}

func TestApprovalServiceRejectRequiresReason(t *testing.T) {
	svc := NewApprovalService(newApprovalRepoStub(), newReviewerDirectoryStub(), &auditStub{}, nil, nil, fastRetry())
	_, err := svc.Reject(context.Background(), "mat-1", dto.RejectMaterialRequest{Reason: "   "}, lecturerClaims("lect-1"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestApprovalServiceListPendingScoped(t *testing.T) {
	repo := newApprovalRepoStub()
	users := newReviewerDirectoryStub()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.materials["mat-1"] = pendingMaterial("mat-1", "DPP20023", "prog-1", base)
	repo.materials["mat-2"] = pendingMaterial("mat-2", "DPP20033", "prog-1", base.Add(time.Minute))
	repo.materials["mat-3"] = pendingMaterial("mat-3", "DPP20043", "prog-2", base.Add(2*time.Minute))
	repo.materials["mat-4"] = pendingMaterial("mat-4", "DPP20023", "prog-1", base.Add(3*time.Minute))
	repo.materials["mat-5"] = pendingMaterial("mat-5", "DPP20033", "prog-1", base.Add(4*time.Minute))

	users.users["lect-1"] = &models.User{ID: "lect-1", Role: models.RoleLecturer}
	users.subjects["lect-1"] = []string{"DPP20023", "DPP20033"}

	svc := NewApprovalService(repo, users, &auditStub{}, nil, nil, fastRetry())
	review, err := svc.ListPending(context.Background(), lecturerClaims("lect-1"))
	require.NoError(t, err)
	require.Equal(t, models.ScopeExplicit, review.ScopeState)

	ids := make([]string, len(review.Materials))
	for i, m := range review.Materials {
		ids[i] = m.ID
	}
	require.Equal(t, []string{"mat-1", "mat-2", "mat-4", "mat-5"}, ids)
}

func TestApprovalServiceListPendingUnassigned(t *testing.T) {
	repo := newApprovalRepoStub()
	users := newReviewerDirectoryStub()

	repo.materials["mat-1"] = pendingMaterial("mat-1", "DPP20023", "prog-1", time.Now())
	legacy := "N/A"
	users.users["lect-1"] = &models.User{ID: "lect-1", Role: models.RoleLecturer, LegacyProgramme: &legacy}

	svc := NewApprovalService(repo, users, &auditStub{}, nil, nil, fastRetry())
	review, err := svc.ListPending(context.Background(), lecturerClaims("lect-1"))
	require.NoError(t, err)
	require.Equal(t, models.ScopeUnassigned, review.ScopeState)
	require.Empty(t, review.Materials)

	// Deciding is also refused for an unassigned lecturer.
	_, err = svc.Approve(context.Background(), "mat-1", lecturerClaims("lect-1"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestApprovalServiceLegacyProgrammeFallback(t *testing.T) {
	repo := newApprovalRepoStub()
	users := newReviewerDirectoryStub()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.materials["mat-1"] = pendingMaterial("mat-1", "DPP20023", "prog-1", base)
	repo.materials["mat-2"] = pendingMaterial("mat-2", "DPP20043", "prog-2", base.Add(time.Minute))

	legacy := "prog-1"
	users.users["lect-1"] = &models.User{ID: "lect-1", Role: models.RoleLecturer, LegacyProgramme: &legacy}

	svc := NewApprovalService(repo, users, &auditStub{}, nil, nil, fastRetry())
	review, err := svc.ListPending(context.Background(), lecturerClaims("lect-1"))
	require.NoError(t, err)
	require.Equal(t, models.ScopeLegacy, review.ScopeState)
	require.Len(t, review.Materials, 1)
	require.Equal(t, "mat-1", review.Materials[0].ID)

	material, err := svc.Approve(context.Background(), "mat-1", lecturerClaims("lect-1"))
	require.NoError(t, err)
	require.Equal(t, models.MaterialStatusApproved, material.Status)
}

func TestApprovalServiceAdminSeesEverything(t *testing.T) {
	repo := newApprovalRepoStub()
	repo.materials["mat-1"] = pendingMaterial("mat-1", "DPP20023", "prog-1", time.Now())
	repo.materials["mat-2"] = pendingMaterial("mat-2", "DPP20043", "prog-2", time.Now())

	svc := NewApprovalService(repo, newReviewerDirectoryStub(), &auditStub{}, nil, nil, fastRetry())
	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin, FullName: "Admin"}

	review, err := svc.ListPending(context.Background(), admin)
	require.NoError(t, err)
	require.Len(t, review.Materials, 2)

	// Admin decisions skip the scope check entirely.
	material, err := svc.Approve(context.Background(), "mat-2", admin)
	require.NoError(t, err)
	require.Equal(t, models.MaterialStatusApproved, material.Status)
}

func TestApprovalServiceStudentsForbidden(t *testing.T) {
	svc := NewApprovalService(newApprovalRepoStub(), newReviewerDirectoryStub(), &auditStub{}, nil, nil, fastRetry())
	student := &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}

	_, err := svc.ListPending(context.Background(), student)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Approve(context.Background(), "mat-1", student)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
