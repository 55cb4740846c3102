package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"talentmatch/internal/auth"
	"talentmatch/internal/domain"
	"talentmatch/internal/handler"
	"talentmatch/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Analysis *handler.AnalysisHandler
	Extract  *handler.ExtractHandler
	Resume   *handler.ResumeHandler
	Health   *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(verifier auth.TokenVerifier, h Handlers, corsOrigins []string, logger *slog.Logger) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	// API docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require valid JWT
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(verifier))

	v1.POST("/extract", h.Extract.Extract)

	resumes := v1.Group("/resumes")
	resumes.POST("/upload", h.Resume.Upload)
	resumes.GET("", h.Resume.List)

	analyses := v1.Group("/analyses")
	analyses.Use(middleware.RequireRole(domain.RoleRecruiter))
	analyses.POST("", h.Analysis.Analyze)
	analyses.POST("/async", h.Analysis.Enqueue)
	analyses.GET("", h.Analysis.List)
	analyses.GET("/export", h.Analysis.ExportCSV)
	analyses.GET("/:id", h.Analysis.GetByID)

	return r
}
