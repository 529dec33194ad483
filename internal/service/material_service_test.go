package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edushare-my/edushare-api/internal/dto"
	"github.com/edushare-my/edushare-api/internal/models"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
)

type materialRepoStub struct {
	materials map[string]*models.Material
	createErr error
	nextID    int
}

func newMaterialRepoStub() *materialRepoStub {
	return &materialRepoStub{materials: make(map[string]*models.Material)}
}

func (m *materialRepoStub) Create(ctx context.Context, material *models.Material) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	if material.ID == "" {
		material.ID = fmt.Sprintf("mat-%d", m.nextID)
	}
	stored := *material
	m.materials[material.ID] = &stored
	return nil
}

func (m *materialRepoStub) GetByID(ctx context.Context, id string) (*models.Material, error) {
	if mat, ok := m.materials[id]; ok {
		clone := *mat
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (m *materialRepoStub) List(ctx context.Context, filter models.MaterialFilter) ([]models.Material, int, error) {
	var out []models.Material
	for _, mat := range m.materials {
		if filter.Status != "" && mat.Status != filter.Status {
			continue
		}
		if filter.UploaderID != "" && mat.UploaderID != filter.UploaderID {
			continue
		}
		out = append(out, *mat)
	}
	return out, len(out), nil
}

func (m *materialRepoStub) Delete(ctx context.Context, id string) error {
	if _, ok := m.materials[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.materials, id)
	return nil
}

type catalogStub struct {
	programmes map[string]*models.Programme
	subjects   map[string]*models.Subject
}

func newCatalogStub() *catalogStub {
	return &catalogStub{
		programmes: make(map[string]*models.Programme),
		subjects:   make(map[string]*models.Subject),
	}
}

func (c *catalogStub) FindProgramme(ctx context.Context, id string) (*models.Programme, error) {
	if p, ok := c.programmes[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (c *catalogStub) FindSubject(ctx context.Context, programmeID, code string) (*models.Subject, error) {
	if s, ok := c.subjects[programmeID+"/"+strings.ToUpper(code)]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

// fileStorageStub keeps saved blobs in memory. Open is not exercised by these
// tests.
type fileStorageStub struct {
	saved   map[string]int64
	deleted []string
	saveErr error
}

func newFileStorageStub() *fileStorageStub {
	return &fileStorageStub{saved: make(map[string]int64)}
}

func (f *fileStorageStub) SaveStream(filename string, r io.Reader) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", err
	}
	path := "materials/" + filename
	f.saved[path] = n
	return path, nil
}

func (f *fileStorageStub) Open(filename string) (*os.File, error) {
	return nil, os.ErrNotExist
}

func (f *fileStorageStub) Delete(filename string) error {
	f.deleted = append(f.deleted, filename)
	delete(f.saved, filename)
	return nil
}

type engagementStub struct {
	views     []string
	downloads []string
}

func (e *engagementStub) MaterialViewed(id string)     { e.views = append(e.views, id) }
func (e *engagementStub) MaterialDownloaded(id string) { e.downloads = append(e.downloads, id) }

func seededCatalog() *catalogStub {
	catalog := newCatalogStub()
	catalog.programmes["prog-1"] = &models.Programme{ID: "prog-1", Code: "DPP", Name: "Diploma", IsActive: true}
	catalog.subjects["prog-1/DPP20023"] = &models.Subject{
		ID: "subj-1", ProgrammeID: "prog-1", Code: "DPP20023", Name: "Financial Accounting", Semester: 2,
	}
	return catalog
}

func uploadRequest() dto.CreateMaterialRequest {
	return dto.CreateMaterialRequest{
		Title:       "Chapter 1 Notes",
		Type:        models.MaterialTypeNote,
		ProgrammeID: "prog-1",
		Semester:    2,
		SubjectCode: "DPP20023",
	}
}

func pdfUpload(size int) MaterialUpload {
	payload := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte{'x'}, size)...)
	return MaterialUpload{
		Filename: "notes.pdf",
		Size:     int64(len(payload)),
		MimeType: "application/pdf",
		Content:  bytes.NewReader(payload),
	}
}

func newMaterialTestService(repo *materialRepoStub, storage *fileStorageStub, audit *auditStub) *MaterialService {
	return NewMaterialService(repo, seededCatalog(), storage, nil, nil, audit, nil, nil, nil, MaterialServiceConfig{})
}

func TestMaterialServiceStudentUploadPending(t *testing.T) {
	repo := newMaterialRepoStub()
	storage := newFileStorageStub()
	audit := &auditStub{}
	svc := newMaterialTestService(repo, storage, audit)

	student := &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent, FullName: "Aina"}
	material, err := svc.Upload(context.Background(), uploadRequest(), pdfUpload(64), student)
	require.NoError(t, err)
	require.Equal(t, models.MaterialStatusPending, material.Status)
	require.Nil(t, material.ApprovedBy)
	require.Nil(t, material.DecidedAt)
	require.Equal(t, "DPP20023", material.SubjectCode)
	require.Equal(t, "Financial Accounting", material.SubjectName)
	require.Len(t, storage.saved, 1)
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionMaterialUpload, audit.logs[0].Action)
}

func TestMaterialServiceLecturerUploadAutoApproved(t *testing.T) {
	repo := newMaterialRepoStub()
	svc := newMaterialTestService(repo, newFileStorageStub(), &auditStub{})

	lecturer := &models.JWTClaims{UserID: "lect-1", Role: models.RoleLecturer, FullName: "Dr. Farah"}
	material, err := svc.Upload(context.Background(), uploadRequest(), pdfUpload(64), lecturer)
	require.NoError(t, err)
	require.Equal(t, models.MaterialStatusApproved, material.Status)
	require.NotNil(t, material.ApprovedBy)
	require.Equal(t, "lect-1", *material.ApprovedBy)
	require.Equal(t, "Dr. Farah", *material.ApproverName)
	require.NotNil(t, material.DecidedAt)
}

func TestMaterialServiceUploadCleansBlobOnMetadataFailure(t *testing.T) {
	repo := newMaterialRepoStub()
	repo.createErr = errors.New("insert failed")
	storage := newFileStorageStub()
	svc := newMaterialTestService(repo, storage, &auditStub{})

	student := &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}
	_, err := svc.Upload(context.Background(), uploadRequest(), pdfUpload(64), student)
	require.Error(t, err)
	require.Len(t, storage.deleted, 1)
	require.Empty(t, repo.materials)
}

func TestMaterialServiceUploadRejectsMime(t *testing.T) {
	svc := newMaterialTestService(newMaterialRepoStub(), newFileStorageStub(), &auditStub{})

	upload := pdfUpload(64)
	upload.MimeType = "application/x-msdownload"
	upload.Filename = "setup.exe"

	student := &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}
	_, err := svc.Upload(context.Background(), uploadRequest(), upload, student)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMaterialServiceUploadRejectsOversize(t *testing.T) {
	storage := newFileStorageStub()
	svc := NewMaterialService(newMaterialRepoStub(), seededCatalog(), storage, nil, nil, &auditStub{}, nil, nil, nil, MaterialServiceConfig{MaxFileSize: 128})

	student := &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}
	_, err := svc.Upload(context.Background(), uploadRequest(), pdfUpload(512), student)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	require.Empty(t, storage.saved)
}

func TestMaterialServiceUploadRejectsSemesterMismatch(t *testing.T) {
	svc := newMaterialTestService(newMaterialRepoStub(), newFileStorageStub(), &auditStub{})

	req := uploadRequest()
	req.Semester = 3

	student := &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}
	_, err := svc.Upload(context.Background(), req, pdfUpload(64), student)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMaterialServiceVisibility(t *testing.T) {
	repo := newMaterialRepoStub()
	repo.materials["mat-1"] = &models.Material{
		ID: "mat-1", Title: "Pending", UploaderID: "student-1", Status: models.MaterialStatusPending,
	}
	svc := newMaterialTestService(repo, newFileStorageStub(), &auditStub{})

	// The uploader, lecturers and admins can see an undecided material.
	for _, claims := range []*models.JWTClaims{
		{UserID: "student-1", Role: models.RoleStudent},
		{UserID: "lect-1", Role: models.RoleLecturer},
		{UserID: "admin-1", Role: models.RoleAdmin},
	} {
		material, err := svc.Get(context.Background(), "mat-1", claims)
		require.NoError(t, err)
		require.Equal(t, "mat-1", material.ID)
	}

	// Other students cannot, and the response does not reveal existence.
	_, err := svc.Get(context.Background(), "mat-1", &models.JWTClaims{UserID: "student-2", Role: models.RoleStudent})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMaterialServiceGetRecordsViewOnlyWhenApproved(t *testing.T) {
	repo := newMaterialRepoStub()
	repo.materials["mat-1"] = &models.Material{ID: "mat-1", UploaderID: "student-1", Status: models.MaterialStatusPending}
	repo.materials["mat-2"] = &models.Material{ID: "mat-2", UploaderID: "student-1", Status: models.MaterialStatusApproved}

	engagement := &engagementStub{}
	svc := NewMaterialService(repo, seededCatalog(), newFileStorageStub(), nil, engagement, &auditStub{}, nil, nil, nil, MaterialServiceConfig{})

	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	_, err := svc.Get(context.Background(), "mat-1", admin)
	require.NoError(t, err)
	_, err = svc.Get(context.Background(), "mat-2", admin)
	require.NoError(t, err)

	require.Equal(t, []string{"mat-2"}, engagement.views)
}

func TestMaterialServiceBrowseForcesApprovedForNonAdmin(t *testing.T) {
	repo := newMaterialRepoStub()
	repo.materials["mat-1"] = &models.Material{ID: "mat-1", Status: models.MaterialStatusApproved}
	repo.materials["mat-2"] = &models.Material{ID: "mat-2", Status: models.MaterialStatusPending}
	svc := newMaterialTestService(repo, newFileStorageStub(), &auditStub{})

	student := &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}
	materials, _, err := svc.Browse(context.Background(), dto.MaterialQuery{}, student)
	require.NoError(t, err)
	require.Len(t, materials, 1)
	require.Equal(t, "mat-1", materials[0].ID)

	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	materials, _, err = svc.Browse(context.Background(), dto.MaterialQuery{}, admin)
	require.NoError(t, err)
	require.Len(t, materials, 2)
}

func TestMaterialServiceDeleteAdminOnly(t *testing.T) {
	repo := newMaterialRepoStub()
	repo.materials["mat-1"] = &models.Material{ID: "mat-1", FilePath: "materials/mat-1.pdf", Status: models.MaterialStatusApproved}
	storage := newFileStorageStub()
	audit := &auditStub{}
	svc := newMaterialTestService(repo, storage, audit)

	err := svc.Delete(context.Background(), "mat-1", &models.JWTClaims{UserID: "lect-1", Role: models.RoleLecturer})
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	err = svc.Delete(context.Background(), "mat-1", &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Empty(t, repo.materials)
	require.Equal(t, []string{"materials/mat-1.pdf"}, storage.deleted)
	require.Len(t, audit.logs, 1)
	require.Equal(t, models.AuditActionMaterialDelete, audit.logs[0].Action)
}
