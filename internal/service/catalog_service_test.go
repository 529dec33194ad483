package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/edushare-my/edushare-api/internal/dto"
	"github.com/edushare-my/edushare-api/internal/models"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
)

type programmeStoreStub struct {
	programmes map[string]*models.Programme
	listCalls  int
	nextID     int
}

func newProgrammeStoreStub() *programmeStoreStub {
	return &programmeStoreStub{programmes: make(map[string]*models.Programme)}
}

func (p *programmeStoreStub) List(ctx context.Context, activeOnly bool) ([]models.Programme, error) {
	p.listCalls++
	var out []models.Programme
	for _, prog := range p.programmes {
		if activeOnly && !prog.IsActive {
			continue
		}
		out = append(out, *prog)
	}
	return out, nil
}

func (p *programmeStoreStub) FindByID(ctx context.Context, id string) (*models.Programme, error) {
	if prog, ok := p.programmes[id]; ok {
		clone := *prog
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (p *programmeStoreStub) ExistsByCode(ctx context.Context, code string, excludeID string) (bool, error) {
	for _, prog := range p.programmes {
		if prog.Code == code && prog.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (p *programmeStoreStub) Create(ctx context.Context, programme *models.Programme) error {
	p.nextID++
	if programme.ID == "" {
		programme.ID = fmt.Sprintf("prog-%d", p.nextID)
	}
	stored := *programme
	p.programmes[programme.ID] = &stored
	return nil
}

func (p *programmeStoreStub) Update(ctx context.Context, programme *models.Programme) error {
	if _, ok := p.programmes[programme.ID]; !ok {
		return sql.ErrNoRows
	}
	stored := *programme
	p.programmes[programme.ID] = &stored
	return nil
}

type subjectStoreStub struct {
	subjects map[string]*models.Subject
	nextID   int
}

func newSubjectStoreStub() *subjectStoreStub {
	return &subjectStoreStub{subjects: make(map[string]*models.Subject)}
}

func (s *subjectStoreStub) ListByProgramme(ctx context.Context, programmeID string, semester int) ([]models.Subject, error) {
	var out []models.Subject
	for _, subj := range s.subjects {
		if subj.ProgrammeID != programmeID {
			continue
		}
		if semester > 0 && subj.Semester != semester {
			continue
		}
		out = append(out, *subj)
	}
	return out, nil
}

func (s *subjectStoreStub) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if subj, ok := s.subjects[id]; ok {
		clone := *subj
		return &clone, nil
	}
	return nil, sql.ErrNoRows
}

func (s *subjectStoreStub) FindByCode(ctx context.Context, programmeID, code string) (*models.Subject, error) {
	for _, subj := range s.subjects {
		if subj.ProgrammeID == programmeID && strings.EqualFold(subj.Code, code) {
			clone := *subj
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *subjectStoreStub) ExistsByCode(ctx context.Context, programmeID, code string) (bool, error) {
	_, err := s.FindByCode(ctx, programmeID, code)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (s *subjectStoreStub) CountByCodes(ctx context.Context, codes []string) (int, error) {
	seen := make(map[string]struct{})
	for _, code := range codes {
		for _, subj := range s.subjects {
			if strings.EqualFold(subj.Code, code) {
				seen[strings.ToUpper(code)] = struct{}{}
			}
		}
	}
	return len(seen), nil
}

func (s *subjectStoreStub) Create(ctx context.Context, subject *models.Subject) error {
	s.nextID++
	if subject.ID == "" {
		subject.ID = fmt.Sprintf("subj-%d", s.nextID)
	}
	stored := *subject
	s.subjects[subject.ID] = &stored
	return nil
}

func (s *subjectStoreStub) Update(ctx context.Context, subject *models.Subject) error {
	if _, ok := s.subjects[subject.ID]; !ok {
		return sql.ErrNoRows
	}
	stored := *subject
	s.subjects[subject.ID] = &stored
	return nil
}

// catalogCacheStub keeps values by key and records pattern invalidations.
// Get does not populate dest; a stored key is treated as a hit marker only by
// the tests that inspect entries directly.
type catalogCacheStub struct {
	entries     map[string]interface{}
	invalidated []string
}

func newCatalogCacheStub() *catalogCacheStub {
	return &catalogCacheStub{entries: make(map[string]interface{})}
}

func (c *catalogCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	if _, ok := c.entries[key]; ok {
		return nil
	}
	return appErrors.ErrCacheMiss
}

func (c *catalogCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *catalogCacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	c.invalidated = append(c.invalidated, pattern)
	c.entries = make(map[string]interface{})
	return nil
}

func TestCatalogServiceListProgrammesActiveOnlyForStudents(t *testing.T) {
	programmes := newProgrammeStoreStub()
	programmes.programmes["prog-1"] = &models.Programme{ID: "prog-1", Code: "DPP", IsActive: true}
	programmes.programmes["prog-2"] = &models.Programme{ID: "prog-2", Code: "DIT", IsActive: false}

	svc := NewCatalogService(programmes, newSubjectStoreStub(), nil, &auditStub{}, nil, nil, nil, CatalogServiceConfig{})

	student := &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}
	listed, err := svc.ListProgrammes(context.Background(), true, student)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "prog-1", listed[0].ID)

	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	listed, err = svc.ListProgrammes(context.Background(), true, admin)
	require.NoError(t, err)
	require.Len(t, listed, 2)
}

func TestCatalogServiceCreateProgrammeAdminOnly(t *testing.T) {
	programmes := newProgrammeStoreStub()
	svc := NewCatalogService(programmes, newSubjectStoreStub(), nil, &auditStub{}, nil, nil, nil, CatalogServiceConfig{})

	req := dto.CreateProgrammeRequest{Code: "dpp", Name: "Diploma in Accountancy", Department: "Commerce"}

	lecturer := &models.JWTClaims{UserID: "lect-1", Role: models.RoleLecturer}
	_, err := svc.CreateProgramme(context.Background(), req, lecturer)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	programme, err := svc.CreateProgramme(context.Background(), req, admin)
	require.NoError(t, err)
	require.Equal(t, "DPP", programme.Code)
	require.True(t, programme.IsActive)

	_, err = svc.CreateProgramme(context.Background(), req, admin)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCatalogServiceSoftDisableKeepsProgramme(t *testing.T) {
	programmes := newProgrammeStoreStub()
	programmes.programmes["prog-1"] = &models.Programme{ID: "prog-1", Code: "DPP", Name: "Diploma", Department: "Commerce", IsActive: true}
	svc := NewCatalogService(programmes, newSubjectStoreStub(), nil, &auditStub{}, nil, nil, nil, CatalogServiceConfig{})

	inactive := false
	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	programme, err := svc.UpdateProgramme(context.Background(), "prog-1", dto.UpdateProgrammeRequest{
		Code: "DPP", Name: "Diploma", Department: "Commerce", IsActive: &inactive,
	}, admin)
	require.NoError(t, err)
	require.False(t, programme.IsActive)

	// The row survives; only its active flag flips.
	stored, err := programmes.FindByID(context.Background(), "prog-1")
	require.NoError(t, err)
	require.False(t, stored.IsActive)
}

func TestCatalogServiceListSubjectsCaching(t *testing.T) {
	programmes := newProgrammeStoreStub()
	programmes.programmes["prog-1"] = &models.Programme{ID: "prog-1", Code: "DPP", IsActive: true}
	subjects := newSubjectStoreStub()
	subjects.subjects["subj-1"] = &models.Subject{ID: "subj-1", ProgrammeID: "prog-1", Code: "DPP20023", Semester: 2}

	cache := newCatalogCacheStub()
	svc := NewCatalogService(programmes, subjects, cache, &auditStub{}, nil, nil, nil, CatalogServiceConfig{
		CacheEnabled: true,
		CacheTTL:     time.Minute,
	})

	student := &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}
	listed, err := svc.ListSubjects(context.Background(), "prog-1", 2, student)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Contains(t, cache.entries, "catalog:subjects:prog-1:2")

	// A catalog mutation clears the whole keyspace.
	admin := &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin}
	_, err = svc.CreateSubject(context.Background(), dto.CreateSubjectRequest{
		ProgrammeID: "prog-1", Code: "DPP20033", Name: "Cost Accounting", Semester: 2, CreditHours: 3,
	}, admin)
	require.NoError(t, err)
	require.Equal(t, []string{"catalog:*"}, cache.invalidated)
	require.Empty(t, cache.entries)
}

func TestCatalogServiceListSubjectsSemesterBounds(t *testing.T) {
	programmes := newProgrammeStoreStub()
	programmes.programmes["prog-1"] = &models.Programme{ID: "prog-1", Code: "DPP", IsActive: true}
	svc := NewCatalogService(programmes, newSubjectStoreStub(), nil, &auditStub{}, nil, nil, nil, CatalogServiceConfig{})

	student := &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}
	_, err := svc.ListSubjects(context.Background(), "prog-1", models.MaxSemester+1, student)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
