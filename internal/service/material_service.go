package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edushare-my/edushare-api/internal/dto"
	"github.com/edushare-my/edushare-api/internal/models"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
)

type materialStore interface {
	Create(ctx context.Context, material *models.Material) error
	GetByID(ctx context.Context, id string) (*models.Material, error)
	List(ctx context.Context, filter models.MaterialFilter) ([]models.Material, int, error)
	Delete(ctx context.Context, id string) error
}

type materialCatalog interface {
	FindProgramme(ctx context.Context, id string) (*models.Programme, error)
	FindSubject(ctx context.Context, programmeID, code string) (*models.Subject, error)
}

type fileStorage interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
}

type downloadSigner interface {
	Generate(materialID, relPath string) (string, time.Time, error)
	Parse(token string) (materialID, relPath string, expiresAt time.Time, err error)
}

type engagementRecorder interface {
	MaterialViewed(id string)
	MaterialDownloaded(id string)
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// MaterialUpload carries upload metadata and stream reader.
type MaterialUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// MaterialDownload bundles file reader metadata for streaming.
type MaterialDownload struct {
	File      *os.File
	Filename  string
	MimeType  string
	SizeBytes int64
	ExpiresAt time.Time
}

// MaterialServiceConfig holds the upload policy parameters.
type MaterialServiceConfig struct {
	MaxFileSize  int64
	AllowedMIMEs []string
	APIPrefix    string
}

// MaterialService manages material metadata, storage IO and the upload
// policy. Who may upload and what initial status the upload gets depends on
// the uploader's role: lecturer and admin uploads go live immediately with a
// self-approval recorded, student uploads wait in the review queue.
type MaterialService struct {
	repo       materialStore
	catalog    materialCatalog
	storage    fileStorage
	signer     downloadSigner
	engagement engagementRecorder
	audit      auditLogger
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        MaterialServiceConfig
	mimeSet    map[string]struct{}
}

// NewMaterialService constructs the service with defaults.
func NewMaterialService(repo materialStore, catalog materialCatalog, storage fileStorage, signer downloadSigner, engagement engagementRecorder, audit auditLogger, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg MaterialServiceConfig) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 25 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{
			"application/pdf",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			"application/vnd.openxmlformats-officedocument.presentationml.presentation",
			"image/png",
			"image/jpeg",
		}
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api/v1"
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &MaterialService{
		repo:       repo,
		catalog:    catalog,
		storage:    storage,
		signer:     signer,
		engagement: engagement,
		audit:      audit,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		mimeSet:    mimeSet,
	}
}

// Upload persists metadata and the physical file for a new material. The
// status the material starts in follows the uploader's role.
func (s *MaterialService) Upload(ctx context.Context, req dto.CreateMaterialRequest, upload MaterialUpload, actor *models.JWTClaims) (*models.Material, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid material payload")
	}
	if !models.ValidMaterialType(req.Type) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be NOTE, EXAM_PAPER or ANSWER_SCHEME")
	}

	subject, err := s.resolveSubject(ctx, req.ProgrammeID, req.SubjectCode, req.Semester)
	if err != nil {
		return nil, err
	}

	if upload.Content == nil || upload.Size <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	if upload.Size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxFileSize))
	}
	mimeType, err := detectMime(upload.Content, upload.MimeType)
	if err != nil {
		return nil, err
	}
	if _, allowed := s.mimeSet[strings.ToLower(mimeType)]; !allowed {
		return nil, appErrors.Clone(appErrors.ErrValidation, "mime type not allowed")
	}

	filename := generateFilename("material", subject.Code, upload.Filename, mimeType)
	if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	path, err := s.storage.SaveStream(filename, upload.Content)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist material file")
	}

	material := &models.Material{
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Type:         req.Type,
		FileName:     upload.Filename,
		FileSize:     upload.Size,
		MimeType:     mimeType,
		FilePath:     path,
		ProgrammeID:  req.ProgrammeID,
		Semester:     req.Semester,
		SubjectCode:  subject.Code,
		SubjectName:  subject.Name,
		UploaderID:   actor.UserID,
		UploaderName: actor.FullName,
		UploaderRole: actor.Role,
		Status:       models.MaterialStatusPending,
	}
	if actor.Role == models.RoleLecturer || actor.Role == models.RoleAdmin {
		now := time.Now().UTC()
		role := actor.Role
		material.Status = models.MaterialStatusApproved
		material.ApprovedBy = &actor.UserID
		material.ApproverName = &actor.FullName
		material.ApproverRole = &role
		material.DecidedAt = &now
	}

	if err := s.repo.Create(ctx, material); err != nil {
		_ = s.storage.Delete(path)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create material metadata")
	}
	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionMaterialUpload,
		Resource:   "material",
		ResourceID: &material.ID,
		NewValues:  []byte(fmt.Sprintf(`{"title":%q,"subject":%q,"status":%q}`, material.Title, material.SubjectCode, material.Status)),
	})
	s.metrics.RecordUpload(string(material.UploaderRole), string(material.Status))
	return material, nil
}

// Browse lists approved materials matching the query. Admins may filter by
// any status; everyone else only sees what passed review.
func (s *MaterialService) Browse(ctx context.Context, query dto.MaterialQuery, actor *models.JWTClaims) ([]models.Material, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter := models.MaterialFilter{
		ProgrammeID: query.ProgrammeID,
		Semester:    query.Semester,
		SubjectCode: query.SubjectCode,
		Type:        models.MaterialType(strings.ToUpper(query.Type)),
		Status:      models.MaterialStatusApproved,
		Search:      query.Search,
		Page:        query.Page,
		PageSize:    query.PageSize,
	}
	if actor.Role == models.RoleAdmin {
		filter.Status = ""
	}
	materials, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.PageSize <= 0 || pagination.PageSize > 100 {
		pagination.PageSize = 20
	}
	return materials, pagination, nil
}

// ListMine returns the actor's own uploads in any status.
func (s *MaterialService) ListMine(ctx context.Context, query dto.MaterialQuery, actor *models.JWTClaims) ([]models.Material, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	filter := models.MaterialFilter{
		UploaderID: actor.UserID,
		Page:       query.Page,
		PageSize:   query.PageSize,
	}
	materials, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list own materials")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.PageSize <= 0 || pagination.PageSize > 100 {
		pagination.PageSize = 20
	}
	return materials, pagination, nil
}

// Get returns one material enforcing visibility and records a view. The view
// counter update is fire-and-forget; a dropped increment never fails the
// read.
func (s *MaterialService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Material, error) {
	material, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if s.engagement != nil && material.Status == models.MaterialStatusApproved {
		s.engagement.MaterialViewed(material.ID)
	}
	return material, nil
}

// GetDownloadURL generates a signed, expiring URL for downloading the file.
func (s *MaterialService) GetDownloadURL(ctx context.Context, id string, actor *models.JWTClaims) (*dto.DownloadURLResponse, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	material, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(material.ID, material.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate download token")
	}
	base := strings.TrimRight(s.cfg.APIPrefix, "/")
	return &dto.DownloadURLResponse{
		URL:       fmt.Sprintf("%s/materials/%s/download?token=%s", base, material.ID, token),
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// Download validates the signed token, opens the file and records a
// download.
func (s *MaterialService) Download(ctx context.Context, id, token string, actor *models.JWTClaims) (*MaterialDownload, error) {
	if s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "download signer unavailable")
	}
	material, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	materialID, relPath, expiresAt, err := s.signer.Parse(token)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired token")
	}
	if materialID != material.ID || relPath != material.FilePath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open material file")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read material file metadata")
	}
	if s.engagement != nil {
		s.engagement.MaterialDownloaded(material.ID)
	}
	s.metrics.RecordDownload()
	return &MaterialDownload{
		File:      file,
		Filename:  material.FileName,
		MimeType:  material.MimeType,
		SizeBytes: info.Size(),
		ExpiresAt: expiresAt,
	}, nil
}

// Delete removes a material and its file. Admin only.
func (s *MaterialService) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return appErrors.ErrForbidden
	}
	material, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete material")
	}
	if err := s.storage.Delete(material.FilePath); err != nil {
		s.logger.Warn("failed to remove material file", zap.Error(err), zap.String("material_id", id))
	}
	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionMaterialDelete,
		Resource:   "material",
		ResourceID: &id,
	})
	return nil
}

// load fetches a material and applies visibility: approved materials are
// visible to everyone authenticated, undecided or rejected ones only to
// their uploader, lecturers and admins.
func (s *MaterialService) load(ctx context.Context, id string, actor *models.JWTClaims) (*models.Material, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	material, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	if material.Status == models.MaterialStatusApproved {
		return material, nil
	}
	switch {
	case actor.Role == models.RoleAdmin, actor.Role == models.RoleLecturer:
		return material, nil
	case material.UploaderID == actor.UserID:
		return material, nil
	default:
		return nil, appErrors.ErrNotFound
	}
}

func (s *MaterialService) resolveSubject(ctx context.Context, programmeID, subjectCode string, semester int) (*models.Subject, error) {
	programme, err := s.catalog.FindProgramme(ctx, programmeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown programme")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load programme")
	}
	if !programme.IsActive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "programme is inactive")
	}
	subject, err := s.catalog.FindSubject(ctx, programmeID, subjectCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown subject for programme")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if subject.Semester != semester {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %s belongs to semester %d", subject.Code, subject.Semester))
	}
	return subject, nil
}

func (s *MaterialService) emitAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil || log == nil {
		return
	}
	log.IPAddress = "system"
	log.UserAgent = "material-service"
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func detectMime(content io.ReadSeeker, declared string) (string, error) {
	if content == nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "file reader missing")
	}
	if declared != "" {
		return declared, nil
	}
	header := make([]byte, 512)
	n, err := content.Read(header)
	if err != nil && err != io.EOF {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to inspect file")
	}
	if _, err := content.Seek(0, io.SeekStart); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reset upload stream")
	}
	if n == 0 {
		return "", appErrors.Clone(appErrors.ErrValidation, "empty file")
	}
	return http.DetectContentType(header[:n]), nil
}

func generateFilename(prefix, group, original, mimeType string) string {
	group = sanitize(group)
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = mimeExtension(mimeType)
	}
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("%s_%s_%d_%s%s", prefix, group, time.Now().Unix(), randomSuffix(), ext)
}

func sanitize(raw string) string {
	raw = strings.ToLower(raw)
	var b strings.Builder
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}

func mimeExtension(mime string) string {
	switch strings.ToLower(mime) {
	case "application/pdf":
		return ".pdf"
	case "application/msword":
		return ".doc"
	case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
		return ".docx"
	case "application/vnd.ms-powerpoint":
		return ".ppt"
	case "application/vnd.openxmlformats-officedocument.presentationml.presentation":
		return ".pptx"
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	default:
		return ""
	}
}

func randomSuffix() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
