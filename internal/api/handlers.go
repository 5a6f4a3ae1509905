// Package api contains HTTP handlers for the application's API endpoints
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omniconv/omniconv/internal/document"
	"github.com/omniconv/omniconv/internal/image"
	"github.com/omniconv/omniconv/internal/media"
	"github.com/omniconv/omniconv/internal/models"
	"github.com/omniconv/omniconv/internal/runner"
)

// Handler encapsulates dependencies for API handlers.
type Handler struct {
	Config   models.Config
	Media    *media.Service
	Document *document.Service
	Image    *image.Service
	Runner   *runner.Runner
}

// NewHandler creates a new API handler.
func NewHandler(config models.Config, mediaSvc *media.Service, documentSvc *document.Service, imageSvc *image.Service, run *runner.Runner) *Handler {
	return &Handler{
		Config:   config,
		Media:    mediaSvc,
		Document: documentSvc,
		Image:    imageSvc,
		Runner:   run,
	}
}

// SetupRoutes configures the HTTP routes.
func (h *Handler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", h.HealthHandler)
	mux.HandleFunc("/api/media/convert", h.ConvertMediaHandler)
	mux.HandleFunc("/api/media/playlist-info", h.PlaylistInfoHandler)
	mux.HandleFunc("/api/documents/convert", h.ConvertDocumentsHandler)
	mux.HandleFunc("/api/images/convert", h.ConvertImagesHandler)
	mux.Handle("/metrics", promhttp.Handler())

	// Root serves the API index; anything else under it is a JSON 404.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			h.sendJSONResponse(w, models.ErrorResponse{
				Error:   "Not Found",
				Message: "Endpoint " + r.Method + " " + r.URL.Path + " not found",
			}, http.StatusNotFound)
			return
		}
		h.RootHandler(w, r)
	})
}

// RootHandler describes the API.
func (h *Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Message   string            `json:"message"`
		Endpoints map[string]string `json:"endpoints"`
	}{
		Message: "Universal file conversion API",
		Endpoints: map[string]string{
			"GET /api/health":               "Health check and tool availability",
			"POST /api/media/convert":       "Convert uploaded media or a video URL to MP3/MP4",
			"POST /api/media/playlist-info": "Inspect a URL for playlist metadata",
			"POST /api/documents/convert":   "Convert documents between office formats",
			"POST /api/images/convert":      "Convert images between raster formats",
			"GET /metrics":                  "Prometheus metrics",
		},
	}
	h.sendJSONResponse(w, response, http.StatusOK)
}

// HealthHandler reports the availability of every external dependency.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	response := struct {
		Status     string          `json:"status"`
		Timestamp  string          `json:"timestamp"`
		ActiveJobs int             `json:"activeJobs"`
		Services   map[string]bool `json:"services"`
	}{
		Status:     "OK",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		ActiveJobs: h.Runner.ActiveCount(),
		Services: map[string]bool{
			"ffmpeg":      h.Media.CheckTranscoder(ctx),
			"ytdlp":       h.Media.CheckDownloader(ctx),
			"libreoffice": h.Document.CheckSuite(ctx),
			"vips":        image.CheckVips(),
		},
	}
	h.sendJSONResponse(w, response, http.StatusOK)
}

// sendJSONResponse sends a JSON response with appropriate headers.
func (h *Handler) sendJSONResponse(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// sendErrorResponse sends a standardized JSON error response.
func (h *Handler) sendErrorResponse(w http.ResponseWriter, errMsg string, statusCode int) {
	log.Printf("WARN: Sending error response (status %d): %s", statusCode, errMsg)
	h.sendJSONResponse(w, models.ErrorResponse{Error: errMsg, Message: errMsg}, statusCode)
}

// sendConversionError maps a service error to an HTTP status and JSON body.
// Development mode includes the full error chain in the details field.
func (h *Handler) sendConversionError(w http.ResponseWriter, title string, err error) {
	status := http.StatusInternalServerError
	response := models.ErrorResponse{Error: title, Message: err.Error()}

	var validationErr *models.ValidationError
	var playlistErr *models.PlaylistConfirmationError
	var dependencyErr *models.DependencyUnavailableError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.As(err, &playlistErr):
		status = http.StatusBadRequest
		response.Error = "Playlist detected"
		response.IsPlaylist = true
	case errors.As(err, &dependencyErr):
		response.Error = "Required tool unavailable"
	}

	if h.Config.IsDevelopment() {
		response.Details = err.Error()
	}

	log.Printf("WARN: Sending error response (status %d): %s", status, response.Message)
	h.sendJSONResponse(w, response, status)
}
