package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edushare-my/edushare-api/internal/dto"
	"github.com/edushare-my/edushare-api/internal/models"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
	"github.com/edushare-my/edushare-api/pkg/response"
)

type catalogService interface {
	ListProgrammes(ctx context.Context, includeInactive bool, actor *models.JWTClaims) ([]models.Programme, error)
	GetProgramme(ctx context.Context, id string, actor *models.JWTClaims) (*models.Programme, error)
	CreateProgramme(ctx context.Context, req dto.CreateProgrammeRequest, actor *models.JWTClaims) (*models.Programme, error)
	UpdateProgramme(ctx context.Context, id string, req dto.UpdateProgrammeRequest, actor *models.JWTClaims) (*models.Programme, error)
	ListSubjects(ctx context.Context, programmeID string, semester int, actor *models.JWTClaims) ([]models.Subject, error)
	CreateSubject(ctx context.Context, req dto.CreateSubjectRequest, actor *models.JWTClaims) (*models.Subject, error)
	UpdateSubject(ctx context.Context, id string, req dto.CreateSubjectRequest, actor *models.JWTClaims) (*models.Subject, error)
}

// CatalogHandler exposes programme and subject reference data.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs the handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListProgrammes godoc
// @Summary List programmes
// @Tags Catalog
// @Produce json
// @Param include_inactive query bool false "Include inactive programmes (admin only)"
// @Success 200 {object} response.Envelope
// @Router /programmes [get]
func (h *CatalogHandler) ListProgrammes(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	includeInactive, _ := strconv.ParseBool(c.Query("include_inactive"))
	programmes, err := h.service.ListProgrammes(c.Request.Context(), includeInactive, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programmes, nil)
}

// GetProgramme godoc
// @Summary Get programme detail
// @Tags Catalog
// @Produce json
// @Param id path string true "Programme ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programmes/{id} [get]
func (h *CatalogHandler) GetProgramme(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	programme, err := h.service.GetProgramme(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programme, nil)
}

// CreateProgramme godoc
// @Summary Create a programme
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateProgrammeRequest true "Programme payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /programmes [post]
func (h *CatalogHandler) CreateProgramme(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateProgrammeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid programme payload"))
		return
	}

	programme, err := h.service.CreateProgramme(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, programme)
}

// UpdateProgramme godoc
// @Summary Update a programme
// @Description Modify a programme, including soft-disabling it
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Programme ID"
// @Param payload body dto.UpdateProgrammeRequest true "Programme payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /programmes/{id} [put]
func (h *CatalogHandler) UpdateProgramme(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.UpdateProgrammeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid programme payload"))
		return
	}

	programme, err := h.service.UpdateProgramme(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programme, nil)
}

// ListSubjects godoc
// @Summary List a programme's subjects
// @Tags Catalog
// @Produce json
// @Param id path string true "Programme ID"
// @Param semester query int false "Filter by semester"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programmes/{id}/subjects [get]
func (h *CatalogHandler) ListSubjects(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	semester := 0
	if raw := c.Query("semester"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester must be a number"))
			return
		}
		semester = parsed
	}

	subjects, err := h.service.ListSubjects(c.Request.Context(), c.Param("id"), semester, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// CreateSubject godoc
// @Summary Create a subject
// @Tags Catalog
// @Accept json
// @Produce json
// @Param payload body dto.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /subjects [post]
func (h *CatalogHandler) CreateSubject(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid subject payload"))
		return
	}

	subject, err := h.service.CreateSubject(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// UpdateSubject godoc
// @Summary Update a subject
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Subject ID"
// @Param payload body dto.CreateSubjectRequest true "Subject payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /subjects/{id} [put]
func (h *CatalogHandler) UpdateSubject(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "catalog service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid subject payload"))
		return
	}

	subject, err := h.service.UpdateSubject(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}
