package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
	BaseURL     string

	// Optional bearer auth for the API group. Empty disables auth.
	APIJWTSecret string

	// Filesystem roots for uploaded videos and per-project artifacts.
	UploadDir string
	OutputDir string
	WebDir    string

	// External processing module commands. Each value is a full command
	// prefix, e.g. "python3 modules/tracklist_generator/cli.py".
	TracklistCmd   string
	YouTubeCmd     string
	VideoEditorCmd string
	ThumbnailCmd   string
	ThumbnailCount int
}

func Load() (*Config, error) {
	thumbnailCount, err := getEnvInt("THUMBNAIL_COUNT", 10)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg := &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),

		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),

		APIJWTSecret: getEnv("API_JWT_SECRET", ""),

		UploadDir: getEnv("UPLOAD_DIR", "data/uploads"),
		OutputDir: getEnv("OUTPUT_DIR", "data/output"),
		WebDir:    getEnv("WEB_DIR", "web"),

		TracklistCmd:   getEnv("TRACKLIST_MODULE_CMD", "tracklist_generator"),
		YouTubeCmd:     getEnv("YOUTUBE_MODULE_CMD", "youtube_checker"),
		VideoEditorCmd: getEnv("VIDEO_EDITOR_MODULE_CMD", "video_editor"),
		ThumbnailCmd:   getEnv("THUMBNAIL_MODULE_CMD", "thumbnail_generator"),
		ThumbnailCount: thumbnailCount,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("UPLOAD_DIR is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	if c.ThumbnailCount < 1 {
		return fmt.Errorf("THUMBNAIL_COUNT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
