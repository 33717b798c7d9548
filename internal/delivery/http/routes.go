package http

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/campnest/backend/config"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(cfg *config.Config, handler *Handler, logger *zap.Logger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(LoggerMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// Admin API routes
	admin := router.Group("/api/v1/admin")
	{
		sync := admin.Group("/sync")
		{
			sync.POST("/trigger", handler.TriggerSync)
			sync.GET("/status", handler.SyncStatus)
			sync.POST("/cancel", handler.CancelSync)
			sync.GET("/logs", handler.SyncLogs)
		}

		candidates := admin.Group("/candidates")
		{
			candidates.GET("", handler.ListCandidates)
			candidates.GET("/:id", handler.CandidateDetail)
			candidates.POST("/:id/approve", handler.ApproveCandidate)
			candidates.POST("/:id/reject", handler.RejectCandidate)
			candidates.POST("/bulk-approve", handler.BulkApprove)
		}

		admin.POST("/process", handler.Process)
	}

	return router
}
