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

type commentService interface {
	Add(ctx context.Context, materialID string, req dto.CreateCommentRequest, uploads []service.CommentAttachmentUpload, actor *models.JWTClaims) (*dto.CreateCommentResponse, error)
	List(ctx context.Context, materialID string, actor *models.JWTClaims) ([]models.Comment, error)
	Delete(ctx context.Context, materialID, commentID string, actor *models.JWTClaims) error
}

// CommentHandler exposes comment endpoints nested under materials.
type CommentHandler struct {
	service commentService
}

// NewCommentHandler constructs the handler.
func NewCommentHandler(service commentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// Create godoc
// @Summary Comment on a material
// @Description Add a comment with optional attachments; invalid files are rejected per file
// @Tags Comments
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Material ID"
// @Param content formData string true "Comment text"
// @Param attachments formData file false "Attachment files"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /materials/{id}/comments [post]
func (h *CommentHandler) Create(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "comment service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateCommentRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid comment payload"))
		return
	}

	var uploads []service.CommentAttachmentUpload
	form, err := c.MultipartForm()
	if err == nil && form != nil {
		files := form.File["attachments"]
		openedAll := true
		for _, header := range files {
			file, err := header.Open()
			if err != nil {
				openedAll = false
				break
			}
			defer file.Close() //nolint:errcheck
			uploads = append(uploads, service.CommentAttachmentUpload{
				Filename: header.Filename,
				Size:     header.Size,
				MimeType: header.Header.Get("Content-Type"),
				Content:  file,
			})
		}
		if !openedAll {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unable to read attachment"))
			return
		}
	}

	res, err := h.service.Add(c.Request.Context(), c.Param("id"), req, uploads, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// List godoc
// @Summary List a material's comments
// @Tags Comments
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /materials/{id}/comments [get]
func (h *CommentHandler) List(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "comment service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	comments, err := h.service.List(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comments, nil)
}

// Delete godoc
// @Summary Delete a comment
// @Description Remove a comment; author only, admins override
// @Tags Comments
// @Produce json
// @Param id path string true "Material ID"
// @Param commentId path string true "Comment ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /materials/{id}/comments/{commentId} [delete]
func (h *CommentHandler) Delete(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "comment service not configured"))
		return
	}
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), c.Param("commentId"), claims); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
