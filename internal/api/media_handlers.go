package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/omniconv/omniconv/internal/constants"
	"github.com/omniconv/omniconv/internal/filestore"
	"github.com/omniconv/omniconv/internal/formats"
	"github.com/omniconv/omniconv/internal/metrics"
	"github.com/omniconv/omniconv/internal/models"
)

// ConvertMediaHandler converts an uploaded media file or a video URL to
// MP3/MP4 and streams the result back as an attachment.
func (h *Handler) ConvertMediaHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.parseMultipart(w, r, 1); err != nil {
		h.sendConversionError(w, "Invalid request", err)
		return
	}

	opts := models.MediaOptions{
		Format:           r.FormValue("format"),
		Resolution:       r.FormValue("resolution"),
		Quality:          r.FormValue("quality"),
		DownloadPlaylist: r.FormValue("downloadPlaylist") == "true",
	}
	if opts.Quality == "" {
		opts.Quality = h.Config.DefaultQuality
	}
	if opts.Resolution == "" {
		opts.Resolution = constants.DefaultResolution
	}
	if !formats.IsSupportedMediaOutput(opts.Format) {
		h.sendConversionError(w, "Invalid format", models.NewValidationError("unsupported media format %q; use mp3 or mp4", opts.Format))
		return
	}

	jobID := uuid.NewString()
	log.Printf("INFO [job %s]: media conversion request (format=%s quality=%s)", jobID, opts.Format, opts.Quality)

	workDir, err := filestore.NewWorkDir(h.Config.DownloadsDir)
	if err != nil {
		h.sendConversionError(w, "Conversion failed", err)
		return
	}

	cleanup := []string{workDir}
	defer func() { filestore.CleanupFiles(cleanup) }()

	start := time.Now()
	var outputs []models.ConvertedOutput

	mediaURL := r.FormValue("url")
	switch {
	case hasUpload(r, "file"):
		files, inDir, saveErr := h.saveUploads(r, "file", 1)
		if saveErr != nil {
			h.sendConversionError(w, "Upload failed", saveErr)
			return
		}
		cleanup = append(cleanup, inDir)
		var output models.ConvertedOutput
		output, err = h.Media.ConvertUpload(r.Context(), jobID, files[0], opts, workDir)
		if err == nil {
			outputs = []models.ConvertedOutput{output}
		}
	case mediaURL != "":
		outputs, err = h.Media.DownloadURL(r.Context(), jobID, mediaURL, opts, workDir)
	default:
		h.sendConversionError(w, "Missing input", models.NewValidationError("either provide a file upload or a media URL"))
		return
	}

	metrics.RecordConversion("media", time.Since(start).Seconds(), err)
	if err != nil {
		h.sendConversionError(w, "Conversion failed", err)
		return
	}

	if err := h.serveOutputs(w, r, outputs, workDir, "converted-media.zip"); err != nil {
		h.sendConversionError(w, "Conversion failed", err)
	}
}

// PlaylistInfoHandler returns metadata about a video or playlist URL.
func (h *Handler) PlaylistInfoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request struct {
		URL string `json:"url"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxJSONRequestSize)
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendConversionError(w, "Invalid request", models.NewValidationError("failed to parse request: %v", err))
		return
	}
	if request.URL == "" {
		h.sendConversionError(w, "URL required", models.NewValidationError("please provide a video or playlist URL"))
		return
	}

	info, err := h.Media.PlaylistInfo(r.Context(), request.URL)
	if err != nil {
		h.sendConversionError(w, "Failed to get playlist info", err)
		return
	}
	h.sendJSONResponse(w, info, http.StatusOK)
}

// hasUpload reports whether the multipart form carries at least one file
// under the given field.
func hasUpload(r *http.Request, field string) bool {
	return r.MultipartForm != nil && len(r.MultipartForm.File[field]) > 0
}
