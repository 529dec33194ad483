package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edushare-my/edushare-api/internal/dto"
	"github.com/edushare-my/edushare-api/internal/models"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
)

type programmeStore interface {
	List(ctx context.Context, activeOnly bool) ([]models.Programme, error)
	FindByID(ctx context.Context, id string) (*models.Programme, error)
	ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error)
	Create(ctx context.Context, programme *models.Programme) error
	Update(ctx context.Context, programme *models.Programme) error
}

type subjectStore interface {
	ListByProgramme(ctx context.Context, programmeID string, semester int) ([]models.Subject, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	FindByCode(ctx context.Context, programmeID, code string) (*models.Subject, error)
	ExistsByCode(ctx context.Context, programmeID, code string) (bool, error)
	CountByCodes(ctx context.Context, codes []string) (int, error)
	Create(ctx context.Context, subject *models.Subject) error
	Update(ctx context.Context, subject *models.Subject) error
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CatalogServiceConfig tunes reference-data caching.
type CatalogServiceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// CatalogService serves programme and subject reference data. Read paths are
// cache-backed; any catalog mutation invalidates the whole catalog keyspace
// since the data is small and rarely written.
type CatalogService struct {
	programmes programmeStore
	subjects   subjectStore
	cache      catalogCache
	audit      auditLogger
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        CatalogServiceConfig
}

// NewCatalogService constructs the service.
func NewCatalogService(programmes programmeStore, subjects subjectStore, cache catalogCache, audit auditLogger, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg CatalogServiceConfig) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	return &CatalogService{
		programmes: programmes,
		subjects:   subjects,
		cache:      cache,
		audit:      audit,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
	}
}

// ListProgrammes returns programmes. Non-admin callers only see active ones.
func (s *CatalogService) ListProgrammes(ctx context.Context, includeInactive bool, actor *models.JWTClaims) ([]models.Programme, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	activeOnly := !includeInactive || actor.Role != models.RoleAdmin

	key := fmt.Sprintf("catalog:programmes:%t", activeOnly)
	var cached []models.Programme
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	programmes, err := s.programmes.List(ctx, activeOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programmes")
	}
	if programmes == nil {
		programmes = []models.Programme{}
	}
	s.cacheSet(ctx, key, programmes)
	return programmes, nil
}

// GetProgramme returns one programme by identifier.
func (s *CatalogService) GetProgramme(ctx context.Context, id string, actor *models.JWTClaims) (*models.Programme, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	programme, err := s.programmes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load programme")
	}
	return programme, nil
}

// CreateProgramme adds a programme. Admin only.
func (s *CatalogService) CreateProgramme(ctx context.Context, req dto.CreateProgrammeRequest, actor *models.JWTClaims) (*models.Programme, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid programme payload")
	}
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.programmes.ExistsByCode(ctx, code, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check programme code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "programme code already exists")
	}

	programme := &models.Programme{
		Code:       code,
		Name:       strings.TrimSpace(req.Name),
		Department: strings.TrimSpace(req.Department),
		IsActive:   true,
	}
	if err := s.programmes.Create(ctx, programme); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create programme")
	}
	s.invalidateCache(ctx)
	s.emitAudit(ctx, actor, "programme", programme.ID, fmt.Sprintf(`{"op":"create","code":%q}`, programme.Code))
	return programme, nil
}

// UpdateProgramme modifies a programme, including soft-disabling it.
// Programmes are never deleted; materials keep a valid owner.
func (s *CatalogService) UpdateProgramme(ctx context.Context, id string, req dto.UpdateProgrammeRequest, actor *models.JWTClaims) (*models.Programme, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid programme payload")
	}
	programme, err := s.programmes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load programme")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code != programme.Code {
		exists, err := s.programmes.ExistsByCode(ctx, code, programme.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check programme code")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "programme code already exists")
		}
	}

	programme.Code = code
	programme.Name = strings.TrimSpace(req.Name)
	programme.Department = strings.TrimSpace(req.Department)
	if req.IsActive != nil {
		programme.IsActive = *req.IsActive
	}
	if err := s.programmes.Update(ctx, programme); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update programme")
	}
	s.invalidateCache(ctx)
	s.emitAudit(ctx, actor, "programme", programme.ID, fmt.Sprintf(`{"op":"update","code":%q,"active":%t}`, programme.Code, programme.IsActive))
	return programme, nil
}

// ListSubjects returns a programme's subjects, optionally for one semester.
func (s *CatalogService) ListSubjects(ctx context.Context, programmeID string, semester int, actor *models.JWTClaims) ([]models.Subject, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if semester < 0 || semester > models.MaxSemester {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("semester must be between %d and %d", models.MinSemester, models.MaxSemester))
	}
	if _, err := s.programmes.FindByID(ctx, programmeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load programme")
	}

	key := fmt.Sprintf("catalog:subjects:%s:%d", programmeID, semester)
	var cached []models.Subject
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	subjects, err := s.subjects.ListByProgramme(ctx, programmeID, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	if subjects == nil {
		subjects = []models.Subject{}
	}
	s.cacheSet(ctx, key, subjects)
	return subjects, nil
}

// CreateSubject adds a subject under a programme. Admin only.
func (s *CatalogService) CreateSubject(ctx context.Context, req dto.CreateSubjectRequest, actor *models.JWTClaims) (*models.Subject, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	if _, err := s.programmes.FindByID(ctx, req.ProgrammeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown programme")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load programme")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.subjects.ExistsByCode(ctx, req.ProgrammeID, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists in programme")
	}

	subject := &models.Subject{
		ProgrammeID: req.ProgrammeID,
		Code:        code,
		Name:        strings.TrimSpace(req.Name),
		Semester:    req.Semester,
		CreditHours: req.CreditHours,
	}
	if err := s.subjects.Create(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}
	s.invalidateCache(ctx)
	s.emitAudit(ctx, actor, "subject", subject.ID, fmt.Sprintf(`{"op":"create","code":%q}`, subject.Code))
	return subject, nil
}

// UpdateSubject modifies a subject. Admin only.
func (s *CatalogService) UpdateSubject(ctx context.Context, id string, req dto.CreateSubjectRequest, actor *models.JWTClaims) (*models.Subject, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}
	subject, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code != subject.Code {
		exists, err := s.subjects.ExistsByCode(ctx, subject.ProgrammeID, code)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "subject code already exists in programme")
		}
	}

	subject.Code = code
	subject.Name = strings.TrimSpace(req.Name)
	subject.Semester = req.Semester
	subject.CreditHours = req.CreditHours
	if err := s.subjects.Update(ctx, subject); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}
	s.invalidateCache(ctx)
	s.emitAudit(ctx, actor, "subject", subject.ID, fmt.Sprintf(`{"op":"update","code":%q}`, subject.Code))
	return subject, nil
}

// FindProgramme resolves a programme; used by upload and registration
// validation.
func (s *CatalogService) FindProgramme(ctx context.Context, id string) (*models.Programme, error) {
	return s.programmes.FindByID(ctx, id)
}

// FindSubject resolves a subject within a programme.
func (s *CatalogService) FindSubject(ctx context.Context, programmeID, code string) (*models.Subject, error) {
	return s.subjects.FindByCode(ctx, programmeID, code)
}

// CountSubjectsByCodes reports how many of the codes exist in the catalog.
func (s *CatalogService) CountSubjectsByCodes(ctx context.Context, codes []string) (int, error) {
	return s.subjects.CountByCodes(ctx, codes)
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return false
	}
	err := s.cache.Get(ctx, key, dest)
	if err == nil {
		s.metrics.RecordCacheLookup(true)
		return true
	}
	s.metrics.RecordCacheLookup(false)
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("catalog cache read failed", zap.Error(err), zap.String("key", key))
	}
	return false
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, value interface{}) {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("catalog cache write failed", zap.Error(err), zap.String("key", key))
	}
}

func (s *CatalogService) invalidateCache(ctx context.Context) {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, "catalog:*"); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

func (s *CatalogService) emitAudit(ctx context.Context, actor *models.JWTClaims, resource, resourceID, payload string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionCatalogMutation,
		Resource:   resource,
		ResourceID: &resourceID,
		NewValues:  []byte(payload),
		IPAddress:  "system",
		UserAgent:  "catalog-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
