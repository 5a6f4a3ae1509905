// Package main provides the entry point for the conversion server
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/omniconv/omniconv/internal/api"
	"github.com/omniconv/omniconv/internal/config"
	"github.com/omniconv/omniconv/internal/constants"
	"github.com/omniconv/omniconv/internal/document"
	"github.com/omniconv/omniconv/internal/filestore"
	"github.com/omniconv/omniconv/internal/image"
	"github.com/omniconv/omniconv/internal/media"
	"github.com/omniconv/omniconv/internal/metrics"
	"github.com/omniconv/omniconv/internal/middleware"
	"github.com/omniconv/omniconv/internal/models"
	"github.com/omniconv/omniconv/internal/runner"
)

const version = "1.0.0"

func main() {
	// Load configuration
	conf := config.New()

	// Ensure required directories exist
	for _, dir := range []string{conf.UploadsDir, conf.DownloadsDir, conf.TempDir} {
		if err := filestore.EnsureDirectoryExists(dir); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}

	// Initialize CORS middleware
	middleware.InitCORS(conf.CORSOrigin)

	// Initialize libvips for image conversions
	image.Startup()
	defer image.Shutdown()

	metrics.SetAppInfo(version, runtime.Version())

	// Wire services around a shared process runner
	run := runner.New()
	mediaSvc := media.NewService(conf, run)
	documentSvc := document.NewService(conf, run)
	imageSvc := image.NewService(conf, run)

	// Create API handlers
	handler := api.NewHandler(conf, mediaSvc, documentSvc, imageSvc, run)

	// Set up HTTP router with endpoints
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	// Configure server with timeouts and middleware
	server := &http.Server{
		Addr:         ":" + conf.Port,
		Handler:      middleware.SecurityHeaders(middleware.CORS(middleware.Metrics(mux))),
		ReadTimeout:  constants.HTTPReadTimeout,
		WriteTimeout: constants.HTTPWriteTimeout,
		IdleTimeout:  constants.HTTPIdleTimeout,
	}

	// Set up periodic file cleanup
	go setupFileCleanup(conf)

	// Graceful shutdown setup
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start the server in a goroutine
	go func() {
		fmt.Printf("Server starting on http://localhost:%s\n", conf.Port)
		fmt.Println("Make sure ffmpeg, yt-dlp and LibreOffice are installed and accessible.")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()

	// Attempt graceful shutdown
	fmt.Println("Server shutting down...")
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	fmt.Println("Server gracefully stopped")
}

// setupFileCleanup periodically removes stray scratch files that per-request
// cleanup missed, for example after a crash mid-request.
func setupFileCleanup(conf models.Config) {
	log.Printf("Scheduling initial file cleanup in %s...", constants.FileCleanupInitialDelay)
	time.Sleep(constants.FileCleanupInitialDelay)
	cleanupFiles(conf)

	ticker := time.NewTicker(constants.FileCleanupInterval)
	defer ticker.Stop()
	log.Printf("Starting periodic cleanup task (every %s)...", constants.FileCleanupInterval)
	for range ticker.C {
		cleanupFiles(conf)
	}
}

// cleanupFiles removes old entries from every scratch directory.
func cleanupFiles(conf models.Config) {
	log.Println("Running cleanup for old files...")
	removed := 0
	for _, dir := range []string{conf.UploadsDir, conf.DownloadsDir, conf.TempDir} {
		removed += filestore.CleanupOldFiles(dir, constants.FileMaxAge)
	}
	if removed > 0 {
		log.Printf("File cleanup finished. Removed %d entries.", removed)
	} else {
		log.Println("File cleanup finished. No files needed removal.")
	}
}
