package http

import (
	"github.com/gin-gonic/gin"
	"github.com/messlens/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = maxUploadBytes

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		analysis := v1.Group("/analysis")
		{
			analysis.POST("", handler.AnalyzeMenu)
			analysis.GET("", handler.ListRuns)
			analysis.GET("/:id", handler.GetRun)
		}

		reference := v1.Group("/reference")
		{
			reference.GET("/match", handler.MatchDish)
		}
	}

	return router
}
