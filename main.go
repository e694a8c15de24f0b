package main

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ckd-screening-server/internal/config"
	"ckd-screening-server/internal/inference"
	"ckd-screening-server/internal/logger"
	"ckd-screening-server/internal/models"
	"ckd-screening-server/internal/pipeline"
	"ckd-screening-server/internal/routes"
	"ckd-screening-server/internal/store"
)

func main() {
	// Load environment variables; a missing .env is fine in containers
	_ = godotenv.Load()

	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format, "ckd-screening-server")
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer zlog.Sync()

	// Initialize database connection
	db, err := models.InitDB(models.DatabaseConfig{DSN: cfg.Database.DSN})
	if err != nil {
		zlog.Fatal("Error connecting to database", zap.Error(err))
	}

	// Load the classifier once; it is shared read-only by every request
	// and the process refuses to start without it.
	classifier, err := loadClassifier(cfg, zlog)
	if err != nil {
		zlog.Fatal("Error loading classifier", zap.Error(err))
	}
	zlog.Info("classifier ready",
		zap.String("schema", classifier.Schema().Name),
		zap.String("model_version", classifier.ModelVersion()),
		zap.String("label_policy", string(classifier.Policy())))

	screenings := store.NewScreeningStore(db, zlog)
	p := pipeline.New(classifier, screenings, zlog)

	// Initialize Gin router
	router := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Set up routes
	routes.SetupRoutes(router, db, cfg, p, screenings)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	zlog.Info("server running", zap.String("port", cfg.Port))
	if err := router.Run(serverAddr); err != nil {
		zlog.Fatal("Failed to start server", zap.Error(err))
	}
}

// loadClassifier picks the scoring backend: a remote model service when
// configured, the local artifact file otherwise.
func loadClassifier(cfg *config.Config, zlog *zap.Logger) (inference.Classifier, error) {
	if cfg.Model.RemoteURL != "" {
		zlog.Info("using remote model service", zap.String("url", cfg.Model.RemoteURL))
		return inference.NewRemoteClassifier(cfg.Model.RemoteURL,
			time.Duration(cfg.Model.RemoteTimeoutS)*time.Second)
	}
	return inference.LoadModel(cfg.Model.ArtifactPath)
}
