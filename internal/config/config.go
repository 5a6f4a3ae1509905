// Package config handles loading and managing application configuration
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/omniconv/omniconv/internal/constants"
	"github.com/omniconv/omniconv/internal/models"
)

// New loads configuration from environment variables and returns a Config struct
func New() models.Config {
	var config models.Config

	config.Port = getEnv("PORT", constants.DefaultPort)
	config.Env = getEnv("APP_ENV", "development")
	config.CORSOrigin = getEnv("CORS_ORIGIN", "http://localhost:5173")

	maxFileSizeMB := parseIntEnv("MAX_FILE_SIZE_MB", constants.DefaultMaxFileSizeMB)
	config.MaxFileSize = int64(maxFileSizeMB) * 1024 * 1024 // Convert MB to bytes

	config.MaxImageFiles = parseIntEnv("MAX_FILES", constants.DefaultMaxImageFiles)
	config.MaxDocumentFiles = parseIntEnv("MAX_DOCUMENT_FILES", constants.DefaultMaxDocumentFiles)

	config.UploadsDir = getEnv("UPLOADS_DIR", constants.DefaultUploadsDir)
	config.DownloadsDir = getEnv("DOWNLOADS_DIR", constants.DefaultDownloadsDir)
	config.TempDir = getEnv("TEMP_DIR", constants.DefaultTempDir)

	config.DefaultQuality = getEnv("DEFAULT_VIDEO_QUALITY", constants.DefaultVideoQuality)
	config.DefaultImgQual = parseIntEnv("DEFAULT_IMAGE_QUALITY", constants.DefaultImageQuality)

	mediaTimeoutSec := parseIntEnv("MEDIA_TIMEOUT_SEC", constants.DefaultMediaTimeoutSec)
	if mediaTimeoutSec < 1 {
		log.Printf("Warning: Invalid MEDIA_TIMEOUT_SEC %d, using default %d", mediaTimeoutSec, constants.DefaultMediaTimeoutSec)
		mediaTimeoutSec = constants.DefaultMediaTimeoutSec
	}
	config.MediaTimeout = time.Duration(mediaTimeoutSec) * time.Second

	documentTimeoutSec := parseIntEnv("DOCUMENT_TIMEOUT_SEC", constants.DefaultDocumentTimeoutSec)
	if documentTimeoutSec < 1 {
		log.Printf("Warning: Invalid DOCUMENT_TIMEOUT_SEC %d, using default %d", documentTimeoutSec, constants.DefaultDocumentTimeoutSec)
		documentTimeoutSec = constants.DefaultDocumentTimeoutSec
	}
	config.DocumentTimeout = time.Duration(documentTimeoutSec) * time.Second

	config.FFmpegPath = getEnv("FFMPEG_PATH", "ffmpeg")
	config.YtDlpPath = getEnv("YTDLP_PATH", "yt-dlp")
	config.SofficePath = getEnv("SOFFICE_PATH", "soffice")

	log.Printf("Configuration loaded: Port=%s, Env=%s, MaxFileSize=%dMB, CORSOrigin=%s",
		config.Port, config.Env, maxFileSizeMB, config.CORSOrigin)

	return config
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// parseIntEnv retrieves an integer environment variable or returns a default.
func parseIntEnv(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s ('%s'), using default %d", key, valueStr, fallback)
		return fallback
	}
	return value
}
