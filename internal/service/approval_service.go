package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edushare-my/edushare-api/internal/dto"
	"github.com/edushare-my/edushare-api/internal/models"
	"github.com/edushare-my/edushare-api/internal/repository"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
	"github.com/edushare-my/edushare-api/pkg/retry"
)

type approvalStore interface {
	GetByID(ctx context.Context, id string) (*models.Material, error)
	ListPendingBySubjects(ctx context.Context, subjectCodes []string) ([]models.Material, error)
	ListPendingByProgrammes(ctx context.Context, programmeIDs []string) ([]models.Material, error)
	ListAllPending(ctx context.Context) ([]models.Material, error)
	ApplyDecision(ctx context.Context, params repository.DecisionParams) error
}

type reviewerDirectory interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ListTeachingSubjects(ctx context.Context, lecturerID string) ([]string, error)
	ListProgrammeAssignments(ctx context.Context, lecturerID string) ([]string, error)
}

// PendingReview pairs a lecturer's queue with how their scope resolved, so a
// queue that is empty because nothing awaits review is distinguishable from
// one that is empty because the lecturer has no assignment at all.
type PendingReview struct {
	Materials  []models.Material `json:"materials"`
	ScopeState models.ScopeKind  `json:"scope_state"`
}

// ApprovalService runs the review workflow for student uploads. Decisions
// are idempotence-guarded in the store: the first decision wins and any
// retry or competing decision surfaces as a conflict.
type ApprovalService struct {
	repo    approvalStore
	users   reviewerDirectory
	audit   auditLogger
	metrics *MetricsService
	logger  *zap.Logger
	retry   retry.Policy
}

// NewApprovalService constructs the service.
func NewApprovalService(repo approvalStore, users reviewerDirectory, audit auditLogger, metrics *MetricsService, logger *zap.Logger, policy retry.Policy) *ApprovalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalService{repo: repo, users: users, audit: audit, metrics: metrics, logger: logger, retry: policy}
}

// ListPending returns the actor's review queue, oldest first. Admins see
// every pending material; lecturers see only what their resolved scope
// covers.
func (s *ApprovalService) ListPending(ctx context.Context, actor *models.JWTClaims) (*PendingReview, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	switch actor.Role {
	case models.RoleAdmin:
		materials, err := s.repo.ListAllPending(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending materials")
		}
		return &PendingReview{Materials: materials, ScopeState: models.ScopeExplicit}, nil
	case models.RoleLecturer:
		scope, err := s.resolveScope(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if scope.Empty() {
			return &PendingReview{Materials: []models.Material{}, ScopeState: models.ScopeUnassigned}, nil
		}
		materials, err := s.listScoped(ctx, scope)
		if err != nil {
			return nil, err
		}
		return &PendingReview{Materials: materials, ScopeState: scope.Kind}, nil
	default:
		return nil, appErrors.ErrForbidden
	}
}

// Approve marks a pending material approved.
func (s *ApprovalService) Approve(ctx context.Context, materialID string, actor *models.JWTClaims) (*models.Material, error) {
	return s.decide(ctx, materialID, models.MaterialStatusApproved, nil, actor)
}

// Reject marks a pending material rejected with a mandatory reason.
func (s *ApprovalService) Reject(ctx context.Context, materialID string, req dto.RejectMaterialRequest, actor *models.JWTClaims) (*models.Material, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required")
	}
	return s.decide(ctx, materialID, models.MaterialStatusRejected, &reason, actor)
}

// decide runs the shared decision path. Authorization is checked before the
// already-decided state: an out-of-scope lecturer gets a forbidden answer
// even for a material someone else already reviewed.
func (s *ApprovalService) decide(ctx context.Context, materialID string, status models.MaterialStatus, reason *string, actor *models.JWTClaims) (*models.Material, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleLecturer && actor.Role != models.RoleAdmin {
		return nil, appErrors.ErrForbidden
	}

	var material *models.Material
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		var loadErr error
		material, loadErr = s.repo.GetByID(ctx, materialID)
		return loadErr
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}

	if actor.Role == models.RoleLecturer {
		scope, err := s.resolveScope(ctx, actor.UserID)
		if err != nil {
			return nil, err
		}
		if scope.Empty() {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "no review scope assigned")
		}
		if !scope.Covers(material.SubjectCode, material.ProgrammeID) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "material is outside your review scope")
		}
	}

	if material.Decided() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "material already decided")
	}

	now := time.Now().UTC()
	params := repository.DecisionParams{
		ID:              material.ID,
		Status:          status,
		ApprovedBy:      actor.UserID,
		ApproverName:    actor.FullName,
		ApproverRole:    actor.Role,
		DecidedAt:       now,
		RejectionReason: reason,
	}
	if err := s.retry.Do(ctx, func(ctx context.Context) error {
		return s.repo.ApplyDecision(ctx, params)
	}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "material already decided")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}

	role := actor.Role
	material.Status = status
	material.ApprovedBy = &actor.UserID
	material.ApproverName = &actor.FullName
	material.ApproverRole = &role
	material.DecidedAt = &now
	material.RejectionReason = reason

	action := models.AuditActionMaterialApprove
	outcome := "approved"
	if status == models.MaterialStatusRejected {
		action = models.AuditActionMaterialReject
		outcome = "rejected"
	}
	s.metrics.RecordDecision(outcome)
	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     action,
		Resource:   "material",
		ResourceID: &material.ID,
		NewValues:  []byte(fmt.Sprintf(`{"status":%q,"subject":%q}`, status, material.SubjectCode)),
	})
	return material, nil
}

// resolveScope loads the lecturer's assignment rows and resolves them into a
// reviewer scope once per request.
func (s *ApprovalService) resolveScope(ctx context.Context, lecturerID string) (models.ReviewerScope, error) {
	var user *models.User
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		var loadErr error
		user, loadErr = s.users.FindByID(ctx, lecturerID)
		return loadErr
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ReviewerScope{}, appErrors.ErrUnauthorized
		}
		return models.ReviewerScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reviewer")
	}
	subjects, err := s.users.ListTeachingSubjects(ctx, lecturerID)
	if err != nil {
		return models.ReviewerScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teaching subjects")
	}
	programmes, err := s.users.ListProgrammeAssignments(ctx, lecturerID)
	if err != nil {
		return models.ReviewerScope{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load programme assignments")
	}
	return models.ResolveReviewerScope(subjects, programmes, user.LegacyProgramme), nil
}

// listScoped unions the subject and programme queues for an explicit scope,
// deduplicating materials that match on both axes.
func (s *ApprovalService) listScoped(ctx context.Context, scope models.ReviewerScope) ([]models.Material, error) {
	var bySubject, byProgramme []models.Material
	var err error

	switch scope.Kind {
	case models.ScopeExplicit:
		bySubject, err = s.repo.ListPendingBySubjects(ctx, setToSlice(scope.SubjectCodes))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending materials")
		}
		byProgramme, err = s.repo.ListPendingByProgrammes(ctx, setToSlice(scope.ProgrammeIDs))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending materials")
		}
	case models.ScopeLegacy:
		byProgramme, err = s.repo.ListPendingByProgrammes(ctx, []string{scope.LegacyProgrammeID})
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending materials")
		}
	}

	seen := make(map[string]struct{}, len(bySubject)+len(byProgramme))
	merged := make([]models.Material, 0, len(bySubject)+len(byProgramme))
	for _, m := range bySubject {
		seen[m.ID] = struct{}{}
		merged = append(merged, m)
	}
	for _, m := range byProgramme {
		if _, dup := seen[m.ID]; dup {
			continue
		}
		merged = append(merged, m)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt.Before(merged[j].CreatedAt)
	})
	return merged, nil
}

func (s *ApprovalService) emitAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil || log == nil {
		return
	}
	log.IPAddress = "system"
	log.UserAgent = "approval-service"
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}

func setToSlice(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
