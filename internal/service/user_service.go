package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/edushare-my/edushare-api/internal/dto"
	"github.com/edushare-my/edushare-api/internal/models"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	SetActive(ctx context.Context, id string, active bool) error
	PromoteToAdmin(ctx context.Context, id string) error
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// UserService exposes the admin directory operations.
type UserService struct {
	repo   userStore
	logger *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(repo userStore, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, logger: logger}
}

// List returns users matching the filter. Admin only.
func (s *UserService) List(ctx context.Context, filter models.UserFilter, actor *models.JWTClaims) ([]models.User, *models.Pagination, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, nil, err
	}
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	if pagination.Page < 1 {
		pagination.Page = 1
	}
	if pagination.PageSize <= 0 || pagination.PageSize > 100 {
		pagination.PageSize = 20
	}
	return users, pagination, nil
}

// Get returns one user. Admins may read anyone; others only themselves.
func (s *UserService) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.User, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin && actor.UserID != id {
		return nil, appErrors.ErrForbidden
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// SetActive toggles an account. Admin only; admins cannot deactivate
// themselves.
func (s *UserService) SetActive(ctx context.Context, id string, req dto.SetActiveRequest, actor *models.JWTClaims) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.UserID == id && !req.Active {
		return appErrors.Clone(appErrors.ErrValidation, "cannot deactivate your own account")
	}
	if err := s.repo.SetActive(ctx, id, req.Active); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update account state")
	}
	return nil
}

// Promote elevates a user to admin. Roles are otherwise fixed at
// registration.
func (s *UserService) Promote(ctx context.Context, id string, actor *models.JWTClaims) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if user.Role == models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user is already an admin")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot promote an inactive account")
	}
	if err := s.repo.PromoteToAdmin(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to promote user")
	}
	previousRole := user.Role
	user.Role = models.RoleAdmin

	if err := s.repo.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionUserPromote,
		Resource:   "user",
		ResourceID: &id,
		OldValues:  []byte(fmt.Sprintf(`{"role":%q}`, previousRole)),
		NewValues:  []byte(fmt.Sprintf(`{"role":%q}`, models.RoleAdmin)),
		IPAddress:  "system",
		UserAgent:  "user-service",
	}); err != nil {
		s.logger.Warn("failed to record promotion audit log", zap.Error(err))
	}
	return user, nil
}

// ParseUserFilter builds a repository filter from raw query values.
func ParseUserFilter(role, active, search string, page, pageSize int) models.UserFilter {
	filter := models.UserFilter{Search: strings.TrimSpace(search), Page: page, PageSize: pageSize}
	if role != "" {
		r := models.UserRole(strings.ToUpper(role))
		filter.Role = &r
	}
	switch strings.ToLower(active) {
	case "true":
		t := true
		filter.Active = &t
	case "false":
		f := false
		filter.Active = &f
	}
	return filter
}

func requireAdmin(actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleAdmin {
		return appErrors.ErrForbidden
	}
	return nil
}
