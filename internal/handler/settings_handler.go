package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edushare-my/edushare-api/pkg/config"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
	"github.com/edushare-my/edushare-api/pkg/response"
)

// SettingsHandler exposes the effective upload and comment policy. Values
// come from configuration and are read-only at runtime.
type SettingsHandler struct {
	cfg *config.Config
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(cfg *config.Config) *SettingsHandler {
	return &SettingsHandler{cfg: cfg}
}

// Get godoc
// @Summary Read system settings
// @Description Effective upload and comment policy snapshot; admin only
// @Tags Users
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Security BearerAuth
// @Router /settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	if h.cfg == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "settings not configured"))
		return
	}

	response.JSON(c, http.StatusOK, gin.H{
		"uploads": gin.H{
			"max_file_size_bytes": h.cfg.Uploads.MaxFileSizeBytes,
			"allowed_mime_types":  h.cfg.Uploads.AllowedMIMEs,
			"signed_url_ttl":      h.cfg.Uploads.SignedURLTTL.String(),
		},
		"comments": gin.H{
			"max_attachments":          h.cfg.Comments.MaxAttachments,
			"max_attachment_size":      h.cfg.Comments.MaxAttachmentSize,
			"allowed_attachment_mimes": h.cfg.Comments.AllowedAttachmentMIMEs,
		},
		"catalog": gin.H{
			"cache_enabled": h.cfg.Catalog.CacheEnabled,
			"cache_ttl":     h.cfg.Catalog.CacheTTL.String(),
		},
		"reports": gin.H{
			"enabled": h.cfg.Reports.Enabled,
		},
	}, nil)
}
