package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edushare-my/edushare-api/internal/dto"
	"github.com/edushare-my/edushare-api/internal/models"
	"github.com/edushare-my/edushare-api/internal/service"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
	"github.com/edushare-my/edushare-api/pkg/response"
)

type approvalService interface {
	ListPending(ctx context.Context, actor *models.JWTClaims) (*service.PendingReview, error)
	Approve(ctx context.Context, materialID string, actor *models.JWTClaims) (*models.Material, error)
	Reject(ctx context.Context, materialID string, req dto.RejectMaterialRequest, actor *models.JWTClaims) (*models.Material, error)
}

// ApprovalHandler exposes the review queue and decision endpoints.
type ApprovalHandler struct {
	service approvalService
}

// NewApprovalHandler constructs the handler.
func NewApprovalHandler(service approvalService) *ApprovalHandler {
	return &ApprovalHandler{service: service}
}

// Pending godoc
// @Summary List pending materials in the caller's review scope
// @Tags Approvals
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /approvals/pending [get]
func (h *ApprovalHandler) Pending(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "approval service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	review, err := h.service.ListPending(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, review.Materials, nil, map[string]interface{}{
		"scope_state": review.ScopeState,
	})
}

// Approve godoc
// @Summary Approve a pending material
// @Tags Approvals
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /materials/{id}/approve [post]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "approval service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	material, err := h.service.Approve(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, material, nil)
}

// Reject godoc
// @Summary Reject a pending material with a reason
// @Tags Approvals
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Param payload body dto.RejectMaterialRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /materials/{id}/reject [post]
func (h *ApprovalHandler) Reject(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "approval service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.RejectMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "rejection reason is required"))
		return
	}

	material, err := h.service.Reject(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, material, nil)
}
