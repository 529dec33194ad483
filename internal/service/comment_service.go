package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edushare-my/edushare-api/internal/dto"
	"github.com/edushare-my/edushare-api/internal/models"
	appErrors "github.com/edushare-my/edushare-api/pkg/errors"
)

type commentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	ListByMaterial(ctx context.Context, materialID string) ([]models.Comment, error)
	ListAttachments(ctx context.Context, commentID string) ([]models.CommentAttachment, error)
	Delete(ctx context.Context, materialID, commentID string) error
}

type commentMaterialResolver interface {
	GetByID(ctx context.Context, id string) (*models.Material, error)
}

type commentLinkBuilder interface {
	Comment(materialID, commentID string) string
}

// CommentAttachmentUpload is one candidate file submitted with a comment.
type CommentAttachmentUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.ReadSeeker
}

// CommentServiceConfig bounds the attachment policy.
type CommentServiceConfig struct {
	MaxAttachments    int
	MaxAttachmentSize int64
	AllowedMIMEs      []string
}

// CommentService manages comments and their attachments. Attachment batches
// are accepted per file: a failing file is reported with its reason while
// the rest of the batch and the comment itself go through.
type CommentService struct {
	repo      commentStore
	materials commentMaterialResolver
	storage   fileStorage
	links     commentLinkBuilder
	audit     auditLogger
	validator *validator.Validate
	logger    *zap.Logger
	cfg       CommentServiceConfig
	mimeSet   map[string]struct{}
}

// NewCommentService constructs the service with defaults.
func NewCommentService(repo commentStore, materials commentMaterialResolver, storage fileStorage, links commentLinkBuilder, audit auditLogger, validate *validator.Validate, logger *zap.Logger, cfg CommentServiceConfig) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.MaxAttachments <= 0 {
		cfg.MaxAttachments = 3
	}
	if cfg.MaxAttachmentSize <= 0 {
		cfg.MaxAttachmentSize = 5 * 1024 * 1024
	}
	if len(cfg.AllowedMIMEs) == 0 {
		cfg.AllowedMIMEs = []string{"application/pdf", "image/png", "image/jpeg"}
	}
	mimeSet := make(map[string]struct{}, len(cfg.AllowedMIMEs))
	for _, mt := range cfg.AllowedMIMEs {
		mimeSet[strings.ToLower(mt)] = struct{}{}
	}
	return &CommentService{
		repo:      repo,
		materials: materials,
		storage:   storage,
		links:     links,
		audit:     audit,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		mimeSet:   mimeSet,
	}
}

// Add creates a comment on a material, accepting valid attachments and
// reporting the rejected ones per file.
func (s *CommentService) Add(ctx context.Context, materialID string, req dto.CreateCommentRequest, uploads []CommentAttachmentUpload, actor *models.JWTClaims) (*dto.CreateCommentResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}

	material, err := s.materials.GetByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	if material.Type == models.MaterialTypeExamPaper {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "comments are disabled for exam papers")
	}

	accepted, rejected, savedPaths := s.processAttachments(uploads)

	comment := &models.Comment{
		MaterialID:  material.ID,
		Content:     strings.TrimSpace(req.Content),
		AuthorID:    actor.UserID,
		AuthorName:  actor.FullName,
		AuthorRole:  actor.Role,
		Attachments: accepted,
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		for _, p := range savedPaths {
			_ = s.storage.Delete(p)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create comment")
	}

	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionCommentCreate,
		Resource:   "comment",
		ResourceID: &comment.ID,
		NewValues:  []byte(fmt.Sprintf(`{"material_id":%q,"attachments":%d}`, material.ID, len(accepted))),
	})

	resp := &dto.CreateCommentResponse{Comment: comment, Rejected: rejected}
	if s.links != nil {
		resp.DeepLink = s.links.Comment(material.ID, comment.ID)
	}
	return resp, nil
}

// List returns a material's comments oldest first with attachments.
func (s *CommentService) List(ctx context.Context, materialID string, actor *models.JWTClaims) ([]models.Comment, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if _, err := s.materials.GetByID(ctx, materialID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	comments, err := s.repo.ListByMaterial(ctx, materialID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list comments")
	}
	if comments == nil {
		comments = []models.Comment{}
	}
	return comments, nil
}

// Delete removes a comment. Only the author may delete it; admins override.
func (s *CommentService) Delete(ctx context.Context, materialID, commentID string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	comment, err := s.repo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
	}
	if comment.MaterialID != materialID {
		return appErrors.ErrNotFound
	}
	if comment.AuthorID != actor.UserID && actor.Role != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only the author may delete this comment")
	}

	attachments, err := s.repo.ListAttachments(ctx, commentID)
	if err != nil {
		s.logger.Warn("failed to list comment attachments before delete", zap.Error(err), zap.String("comment_id", commentID))
	}
	if err := s.repo.Delete(ctx, materialID, commentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.ErrNotFound
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete comment")
	}
	for _, att := range attachments {
		if err := s.storage.Delete(att.FilePath); err != nil {
			s.logger.Warn("failed to remove attachment file", zap.Error(err), zap.String("path", att.FilePath))
		}
	}
	s.emitAudit(ctx, &models.AuditLog{
		UserID:     &actor.UserID,
		Action:     models.AuditActionCommentDelete,
		Resource:   "comment",
		ResourceID: &commentID,
	})
	return nil
}

// processAttachments validates and stores each file independently. A file
// past the count limit, over size, or of a disallowed type is rejected with
// a reason; the others are kept.
func (s *CommentService) processAttachments(uploads []CommentAttachmentUpload) ([]models.CommentAttachment, []dto.AttachmentRejection, []string) {
	var accepted []models.CommentAttachment
	var rejected []dto.AttachmentRejection
	var savedPaths []string

	for _, upload := range uploads {
		if len(accepted) >= s.cfg.MaxAttachments {
			rejected = append(rejected, dto.AttachmentRejection{
				FileName: upload.Filename,
				Reason:   fmt.Sprintf("attachment limit of %d exceeded", s.cfg.MaxAttachments),
			})
			continue
		}
		if upload.Content == nil || upload.Size <= 0 {
			rejected = append(rejected, dto.AttachmentRejection{FileName: upload.Filename, Reason: "empty file"})
			continue
		}
		if upload.Size > s.cfg.MaxAttachmentSize {
			rejected = append(rejected, dto.AttachmentRejection{
				FileName: upload.Filename,
				Reason:   fmt.Sprintf("file exceeds %d bytes limit", s.cfg.MaxAttachmentSize),
			})
			continue
		}
		mimeType, err := detectMime(upload.Content, upload.MimeType)
		if err != nil {
			rejected = append(rejected, dto.AttachmentRejection{FileName: upload.Filename, Reason: "unreadable file"})
			continue
		}
		if _, allowed := s.mimeSet[strings.ToLower(mimeType)]; !allowed {
			rejected = append(rejected, dto.AttachmentRejection{FileName: upload.Filename, Reason: "mime type not allowed"})
			continue
		}
		filename := generateFilename("comment", "attachment", upload.Filename, mimeType)
		if _, err := upload.Content.Seek(0, io.SeekStart); err != nil {
			rejected = append(rejected, dto.AttachmentRejection{FileName: upload.Filename, Reason: "unreadable file"})
			continue
		}
		path, err := s.storage.SaveStream(filename, upload.Content)
		if err != nil {
			s.logger.Warn("failed to store attachment", zap.Error(err), zap.String("file", upload.Filename))
			rejected = append(rejected, dto.AttachmentRejection{FileName: upload.Filename, Reason: "storage failure"})
			continue
		}
		savedPaths = append(savedPaths, path)
		accepted = append(accepted, models.CommentAttachment{
			FileName: upload.Filename,
			FileSize: upload.Size,
			MimeType: mimeType,
			FilePath: path,
		})
	}
	return accepted, rejected, savedPaths
}

func (s *CommentService) emitAudit(ctx context.Context, log *models.AuditLog) {
	if s.audit == nil || log == nil {
		return
	}
	log.IPAddress = "system"
	log.UserAgent = "comment-service"
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
