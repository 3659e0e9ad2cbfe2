package main

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"djset-backend/internal/config"
	"djset-backend/internal/database"
	"djset-backend/internal/handlers"
	"djset-backend/internal/logging"
	"djset-backend/internal/middleware"
	"djset-backend/internal/modules"
	"djset-backend/internal/pipeline"
	"djset-backend/internal/storage"
	"djset-backend/internal/store"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := logging.New(cfg.Environment)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	migrator, err := database.NewMigrator(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize migrator")
	}
	if err := migrator.Run(); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}
	migrator.Close()

	dbClient, err := store.NewDatabaseClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer dbClient.Close()

	fileStore, err := storage.NewFileStore(cfg.UploadDir, cfg.OutputDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize file store")
	}

	moduleClient, err := modules.NewClient(modules.Commands{
		Tracklist:   cfg.TracklistCmd,
		YouTube:     cfg.YouTubeCmd,
		VideoEditor: cfg.VideoEditorCmd,
		Thumbnail:   cfg.ThumbnailCmd,
	}, modules.NewExecRunner())
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid module configuration")
	}

	orchestrator := pipeline.NewOrchestrator(dbClient, moduleClient, fileStore, logger, cfg.ThumbnailCount)

	projectsHandler := handlers.NewProjectsHandler(dbClient, fileStore, logger)
	uploadHandler := handlers.NewUploadHandler(dbClient, fileStore, logger)
	processHandler := handlers.NewProcessHandler(orchestrator, logger)
	thumbnailsHandler := handlers.NewThumbnailsHandler(dbClient, logger)

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", handlers.HealthHandler)

	// Browser UI and served artifacts.
	router.StaticFile("/", filepath.Join(cfg.WebDir, "index.html"))
	router.Static("/static", cfg.WebDir)
	router.Static("/media", cfg.OutputDir)

	api := router.Group("/api")
	if cfg.APIJWTSecret != "" {
		api.Use(middleware.AuthMiddleware(cfg.APIJWTSecret))
	}

	api.GET("/projects", projectsHandler.ListProjects)
	api.GET("/projects/:id", projectsHandler.GetProject)
	api.GET("/projects/:id/status", projectsHandler.GetStatus)
	api.DELETE("/projects/:id", projectsHandler.DeleteProject)

	api.POST("/upload", uploadHandler.Upload)
	api.POST("/projects/:id/process", processHandler.Process)
	api.POST("/projects/:id/thumbnails/:thumbnail_id/select", thumbnailsHandler.SelectThumbnail)

	logger.Info().Str("port", cfg.Port).Msg("server starting")
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
