package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edushare-my/edushare-api/internal/dto"
	"github.com/edushare-my/edushare-api/internal/models"
	"github.com/edushare-my/edushare-api/internal/service"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
	"github.com/edushare-my/edushare-api/pkg/response"
)

type materialService interface {
	Upload(ctx context.Context, req dto.CreateMaterialRequest, upload service.MaterialUpload, actor *models.JWTClaims) (*models.Material, error)
	Browse(ctx context.Context, query dto.MaterialQuery, actor *models.JWTClaims) ([]models.Material, *models.Pagination, error)
	ListMine(ctx context.Context, query dto.MaterialQuery, actor *models.JWTClaims) ([]models.Material, *models.Pagination, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Material, error)
	GetDownloadURL(ctx context.Context, id string, actor *models.JWTClaims) (*dto.DownloadURLResponse, error)
	Download(ctx context.Context, id, token string, actor *models.JWTClaims) (*service.MaterialDownload, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
}

// MaterialHandler exposes REST endpoints for material workflows.
type MaterialHandler struct {
	service materialService
}

// NewMaterialHandler constructs the handler.
func NewMaterialHandler(service materialService) *MaterialHandler {
	return &MaterialHandler{service: service}
}

// Upload godoc
// @Summary Upload a material
// @Description Upload an academic material; student uploads await review
// @Tags Materials
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param type formData string true "NOTE, EXAM_PAPER or ANSWER_SCHEME"
// @Param programme_id formData string true "Programme ID"
// @Param semester formData int true "Semester"
// @Param subject_code formData string true "Subject code"
// @Param file formData file true "Material file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /materials [post]
func (h *MaterialHandler) Upload(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "material service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateMaterialRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid material payload"))
		return
	}
	req.Type = models.MaterialType(strings.ToUpper(string(req.Type)))

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unable to read uploaded file"))
		return
	}
	defer file.Close() //nolint:errcheck

	upload := service.MaterialUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  file,
	}

	material, err := h.service.Upload(c.Request.Context(), req, upload, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, material)
}

// Browse godoc
// @Summary Browse approved materials
// @Tags Materials
// @Produce json
// @Param programme_id query string false "Programme ID"
// @Param semester query int false "Semester"
// @Param subject_code query string false "Subject code"
// @Param type query string false "Material type"
// @Param search query string false "Title search"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /materials [get]
func (h *MaterialHandler) Browse(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "material service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var query dto.MaterialQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}

	materials, pagination, err := h.service.Browse(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, pagination)
}

// Mine godoc
// @Summary List own uploads
// @Description List the caller's uploads in every status
// @Tags Materials
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /materials/mine [get]
func (h *MaterialHandler) Mine(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "material service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var query dto.MaterialQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid query parameters"))
		return
	}

	materials, pagination, err := h.service.ListMine(c.Request.Context(), query, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, pagination)
}

// Get godoc
// @Summary Get material detail
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materials/{id} [get]
func (h *MaterialHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "material service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	material, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, material, nil)
}

// DownloadURL godoc
// @Summary Generate a signed download URL
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materials/{id}/download-url [get]
func (h *MaterialHandler) DownloadURL(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "material service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.service.GetDownloadURL(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Download godoc
// @Summary Download a material file
// @Description Stream the file after validating the signed token
// @Tags Materials
// @Produce octet-stream
// @Param id path string true "Material ID"
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /materials/{id}/download [get]
func (h *MaterialHandler) Download(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "material service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	download, err := h.service.Download(c.Request.Context(), c.Param("id"), c.Query("token"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Content-Type", download.MimeType)
	c.Header("Content-Length", strconv.FormatInt(download.SizeBytes, 10))
	if _, err := io.Copy(c.Writer, download.File); err != nil {
		c.Abort()
	}
}

// Delete godoc
// @Summary Delete a material
// @Description Remove a material and its file; admin only
// @Tags Materials
// @Produce json
// @Param id path string true "Material ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /materials/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "material service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
