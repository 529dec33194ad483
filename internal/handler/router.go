package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/edushare-my/edushare-api/internal/middleware"
	"github.com/edushare-my/edushare-api/internal/models"
	"github.com/edushare-my/edushare-api/internal/service"
)

// Deps bundles everything route registration needs.
type Deps struct {
	AuthService *service.AuthService
	Metrics     *service.MetricsService

	Auth      *AuthHandler
	Users     *UserHandler
	Catalog   *CatalogHandler
	Materials *MaterialHandler
	Approvals *ApprovalHandler
	Comments  *CommentHandler
	Reports   *ReportHandler
	Settings  *SettingsHandler
	Health    *MetricsHandler
}

// RegisterRoutes mounts every endpoint group under the API prefix.
func RegisterRoutes(r *gin.Engine, prefix string, deps Deps) {
	r.GET("/health", deps.Health.Health)
	r.GET("/ready", deps.Health.Health)
	r.GET("/metrics", deps.Health.Prometheus)

	api := r.Group(prefix)
	api.Use(middleware.Metrics(deps.Metrics))

	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.Auth.Login)
		auth.POST("/register/student", deps.Auth.RegisterStudent)
		auth.POST("/register/lecturer", deps.Auth.RegisterLecturer)
		auth.POST("/refresh", deps.Auth.Refresh)

		session := auth.Group("")
		session.Use(middleware.JWT(deps.AuthService))
		session.POST("/logout", deps.Auth.Logout)
		session.POST("/change-password", deps.Auth.ChangePassword)
		session.GET("/me", deps.Auth.Me)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(deps.AuthService))

	programmes := authed.Group("/programmes")
	{
		programmes.GET("", deps.Catalog.ListProgrammes)
		programmes.GET("/:id", deps.Catalog.GetProgramme)
		programmes.GET("/:id/subjects", deps.Catalog.ListSubjects)
		programmes.POST("", middleware.RequireRoles(models.RoleAdmin), deps.Catalog.CreateProgramme)
		programmes.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), deps.Catalog.UpdateProgramme)
	}

	subjects := authed.Group("/subjects")
	{
		subjects.POST("", middleware.RequireRoles(models.RoleAdmin), deps.Catalog.CreateSubject)
		subjects.PUT("/:id", middleware.RequireRoles(models.RoleAdmin), deps.Catalog.UpdateSubject)
	}

	materials := authed.Group("/materials")
	{
		materials.GET("", deps.Materials.Browse)
		materials.POST("", deps.Materials.Upload)
		materials.GET("/mine", deps.Materials.Mine)
		materials.GET("/:id", deps.Materials.Get)
		materials.GET("/:id/download-url", deps.Materials.DownloadURL)
		materials.GET("/:id/download", deps.Materials.Download)
		materials.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), deps.Materials.Delete)

		materials.POST("/:id/approve", middleware.RequireRoles(models.RoleLecturer, models.RoleAdmin), deps.Approvals.Approve)
		materials.POST("/:id/reject", middleware.RequireRoles(models.RoleLecturer, models.RoleAdmin), deps.Approvals.Reject)

		materials.GET("/:id/comments", deps.Comments.List)
		materials.POST("/:id/comments", deps.Comments.Create)
		materials.DELETE("/:id/comments/:commentId", deps.Comments.Delete)
	}

	authed.GET("/approvals/pending", middleware.RequireRoles(models.RoleLecturer, models.RoleAdmin), deps.Approvals.Pending)

	users := authed.Group("/users")
	{
		users.GET("", middleware.RequireRoles(models.RoleAdmin), deps.Users.List)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), "SELF"), deps.Users.Get)
		users.PUT("/:id/active", middleware.RequireRoles(models.RoleAdmin), deps.Users.SetActive)
		users.POST("/:id/promote", middleware.RequireRoles(models.RoleAdmin), deps.Users.Promote)
	}

	authed.GET("/reports/engagement", middleware.RequireRoles(models.RoleAdmin), deps.Reports.EngagementExport)
	authed.GET("/settings", middleware.RequireRoles(models.RoleAdmin), deps.Settings.Get)
}
