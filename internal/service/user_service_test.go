package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edushare-my/edushare-api/internal/dto"
	"github.com/edushare-my/edushare-api/internal/models"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
)

type userStoreStub struct {
	users    map[string]*models.User
	active   map[string]bool
	promoted []string
	audit    auditStub
}

func newUserStoreStub() *userStoreStub {
	return &userStoreStub{users: map[string]*models.User{}, active: map[string]bool{}}
}

func (s *userStoreStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (s *userStoreStub) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var out []models.User
	for _, u := range s.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (s *userStoreStub) SetActive(ctx context.Context, id string, active bool) error {
	user, ok := s.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.Active = active
	s.active[id] = active
	return nil
}

func (s *userStoreStub) PromoteToAdmin(ctx context.Context, id string) error {
	if _, ok := s.users[id]; !ok {
		return sql.ErrNoRows
	}
	s.promoted = append(s.promoted, id)
	return nil
}

func (s *userStoreStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return s.audit.CreateAuditLog(ctx, log)
}

func adminClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleAdmin, FullName: "Admin " + id}
}

func directoryUser(id string, role models.UserRole, active bool) *models.User {
	return &models.User{ID: id, Email: id + "@example.edu.my", FullName: "User " + id, Role: role, Active: active}
}

func TestUserServiceListAdminOnly(t *testing.T) {
	store := newUserStoreStub()
	store.users["u-1"] = directoryUser("u-1", models.RoleStudent, true)
	store.users["u-2"] = directoryUser("u-2", models.RoleLecturer, true)
	svc := NewUserService(store, nil)

	_, _, err := svc.List(context.Background(), models.UserFilter{}, lecturerClaims("lect-1"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	users, pagination, err := svc.List(context.Background(), models.UserFilter{}, adminClaims("admin-1"))
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, 2, pagination.TotalCount)
	require.Equal(t, 1, pagination.Page)
	require.Equal(t, 20, pagination.PageSize)
}

func TestUserServiceListRoleFilter(t *testing.T) {
	store := newUserStoreStub()
	store.users["u-1"] = directoryUser("u-1", models.RoleStudent, true)
	store.users["u-2"] = directoryUser("u-2", models.RoleLecturer, true)
	svc := NewUserService(store, nil)

	filter := ParseUserFilter("lecturer", "", "", 1, 20)
	users, _, err := svc.List(context.Background(), filter, adminClaims("admin-1"))
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "u-2", users[0].ID)
}

func TestUserServiceGetSelfOrAdmin(t *testing.T) {
	store := newUserStoreStub()
	store.users["u-1"] = directoryUser("u-1", models.RoleStudent, true)
	svc := NewUserService(store, nil)

	self := &models.JWTClaims{UserID: "u-1", Role: models.RoleStudent}
	user, err := svc.Get(context.Background(), "u-1", self)
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)

	other := &models.JWTClaims{UserID: "u-2", Role: models.RoleStudent}
	_, err = svc.Get(context.Background(), "u-1", other)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	_, err = svc.Get(context.Background(), "u-1", adminClaims("admin-1"))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "missing", adminClaims("admin-1"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserServiceSetActiveGuardsSelf(t *testing.T) {
	store := newUserStoreStub()
	store.users["admin-1"] = directoryUser("admin-1", models.RoleAdmin, true)
	store.users["u-1"] = directoryUser("u-1", models.RoleStudent, true)
	svc := NewUserService(store, nil)

	err := svc.SetActive(context.Background(), "admin-1", dto.SetActiveRequest{Active: false}, adminClaims("admin-1"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	err = svc.SetActive(context.Background(), "u-1", dto.SetActiveRequest{Active: false}, adminClaims("admin-1"))
	require.NoError(t, err)
	require.False(t, store.users["u-1"].Active)
}

func TestUserServicePromote(t *testing.T) {
	store := newUserStoreStub()
	store.users["u-1"] = directoryUser("u-1", models.RoleLecturer, true)
	store.users["u-2"] = directoryUser("u-2", models.RoleAdmin, true)
	store.users["u-3"] = directoryUser("u-3", models.RoleStudent, false)
	svc := NewUserService(store, nil)

	user, err := svc.Promote(context.Background(), "u-1", adminClaims("admin-1"))
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, user.Role)
	require.Equal(t, []string{"u-1"}, store.promoted)
	require.Len(t, store.audit.logs, 1)
	require.Equal(t, models.AuditActionUserPromote, store.audit.logs[0].Action)

	_, err = svc.Promote(context.Background(), "u-2", adminClaims("admin-1"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Promote(context.Background(), "u-3", adminClaims("admin-1"))
	require.Error(t, err)
	require.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
