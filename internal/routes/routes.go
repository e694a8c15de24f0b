package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ckd-screening-server/internal/config"
	"ckd-screening-server/internal/handlers"
	"ckd-screening-server/internal/middleware"
	"ckd-screening-server/internal/pipeline"
	"ckd-screening-server/internal/store"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, p *pipeline.Pipeline, screenings *store.ScreeningStore) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	screeningHandler := handlers.NewScreeningHandler(p, screenings)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
		}

		// Screening routes: the intake form descriptor, the prediction
		// pipeline, and per-user history
		screeningRoutes := private.Group("/screenings")
		{
			screeningRoutes.GET("/schema", screeningHandler.GetSchema)
			screeningRoutes.POST("/predict", screeningHandler.Predict)
			screeningRoutes.GET("/latest", screeningHandler.GetLatest)
			screeningRoutes.GET("/history", screeningHandler.GetHistory)
			screeningRoutes.GET("/export", screeningHandler.ExportHistory)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
