package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edushare-my/edushare-api/api/swagger"
	"github.com/edushare-my/edushare-api/internal/handler"
	"github.com/edushare-my/edushare-api/internal/repository"
	"github.com/edushare-my/edushare-api/internal/service"
	"github.com/edushare-my/edushare-api/pkg/cache"
	"github.com/edushare-my/edushare-api/pkg/config"
	"github.com/edushare-my/edushare-api/pkg/database"
	"github.com/edushare-my/edushare-api/pkg/deeplink"
	"github.com/edushare-my/edushare-api/pkg/export"
	"github.com/edushare-my/edushare-api/pkg/jobs"
	"github.com/edushare-my/edushare-api/pkg/logger"
	corsmiddleware "github.com/edushare-my/edushare-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edushare-my/edushare-api/pkg/middleware/requestid"
	"github.com/edushare-my/edushare-api/pkg/retry"
	"github.com/edushare-my/edushare-api/pkg/storage"
)

// @title EduShare API
// @version 1.0.0
// @description Academic material sharing platform for Malaysian polytechnic programmes
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog caching disabled", "error", err)
		redisClient = nil
	}

	blobs, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	programmeRepo := repository.NewProgrammeRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	var catalogCache *repository.CacheRepository
	if redisClient != nil {
		catalogCache = repository.NewCacheRepository(redisClient, logr)
	}

	retryPolicy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		MaxDelay:    cfg.Retry.MaxDelay,
	}

	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	links := deeplink.NewBuilder(cfg.PublicURL)

	metricsService := service.NewMetricsService()

	engagementService := service.NewEngagementService(materialRepo, metricsService, logr, jobs.QueueConfig{
		Workers:    2,
		BufferSize: 256,
		Logger:     logr,
	})

	catalogService := service.NewCatalogService(programmeRepo, subjectRepo, catalogCache, userRepo, metricsService, validate, logr, service.CatalogServiceConfig{
		CacheEnabled: cfg.Catalog.CacheEnabled && catalogCache != nil,
		CacheTTL:     cfg.Catalog.CacheTTL,
	})

	authService := service.NewAuthService(userRepo, catalogService, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "edushare-api",
		Audience:           []string{"edushare"},
	})

	materialService := service.NewMaterialService(materialRepo, catalogService, blobs, signer, engagementService, userRepo, metricsService, validate, logr, service.MaterialServiceConfig{
		MaxFileSize:  cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
		APIPrefix:    cfg.APIPrefix,
	})

	approvalService := service.NewApprovalService(materialRepo, userRepo, userRepo, metricsService, logr, retryPolicy)

	commentService := service.NewCommentService(commentRepo, materialRepo, blobs, links, userRepo, validate, logr, service.CommentServiceConfig{
		MaxAttachments:    cfg.Comments.MaxAttachments,
		MaxAttachmentSize: cfg.Comments.MaxAttachmentSize,
		AllowedMIMEs:      cfg.Comments.AllowedAttachmentMIMEs,
	})

	userService := service.NewUserService(userRepo, logr)

	reportService := service.NewReportService(materialRepo, userRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr, service.ReportServiceConfig{
		Enabled: cfg.Reports.Enabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engagementService.Start(ctx)
	defer engagementService.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Deps{
		AuthService: authService,
		Metrics:     metricsService,
		Auth:        handler.NewAuthHandler(authService),
		Users:       handler.NewUserHandler(userService),
		Catalog:     handler.NewCatalogHandler(catalogService),
		Materials:   handler.NewMaterialHandler(materialService),
		Approvals:   handler.NewApprovalHandler(approvalService),
		Comments:    handler.NewCommentHandler(commentService),
		Reports:     handler.NewReportHandler(reportService),
		Settings:    handler.NewSettingsHandler(cfg),
		Health:      handler.NewMetricsHandler(metricsService),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
