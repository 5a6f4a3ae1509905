package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/omniconv/omniconv/internal/filestore"
	"github.com/omniconv/omniconv/internal/formats"
	"github.com/omniconv/omniconv/internal/metrics"
	"github.com/omniconv/omniconv/internal/models"
)

// ConvertDocumentsHandler converts a batch of documents to one target format.
// Files are processed sequentially; individual failures are collected rather
// than aborting the batch, and the outcome summary travels in the
// X-Conversion-Info header because the body is the binary download.
func (h *Handler) ConvertDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.parseMultipart(w, r, h.Config.MaxDocumentFiles); err != nil {
		h.sendConversionError(w, "Invalid request", err)
		return
	}

	target := strings.ToLower(r.FormValue("target"))
	if target == "" {
		target = "pdf"
	}
	targetExt := "." + target
	if !formats.IsSupportedDocumentTarget(targetExt) {
		h.sendConversionError(w, "Unsupported target format",
			models.NewValidationError("supported formats: %s", strings.Join(formats.SupportedDocumentTargets(), ", ")))
		return
	}

	files, inDir, err := h.saveUploads(r, "files", h.Config.MaxDocumentFiles)
	if err != nil {
		h.sendConversionError(w, "Upload failed", err)
		return
	}
	cleanup := []string{inDir}
	defer func() { filestore.CleanupFiles(cleanup) }()

	if len(files) == 0 {
		h.sendConversionError(w, "No files uploaded", models.NewValidationError("please select at least one document to convert"))
		return
	}

	jobID := uuid.NewString()
	log.Printf("INFO [job %s]: converting %d documents to %s", jobID, len(files), targetExt)

	workDir, err := filestore.NewWorkDir(h.Config.DownloadsDir)
	if err != nil {
		h.sendConversionError(w, "Conversion failed", err)
		return
	}
	cleanup = append(cleanup, workDir)

	var processed []models.ConvertedOutput
	var failed []models.FailedFile
	for _, file := range files {
		start := time.Now()
		output, convErr := h.Document.Convert(r.Context(), jobID, file, targetExt, workDir)
		metrics.RecordConversion("document", time.Since(start).Seconds(), convErr)
		if convErr != nil {
			log.Printf("WARN [job %s]: failed to convert %s: %v", jobID, file.OriginalName, convErr)
			failed = append(failed, models.FailedFile{Filename: file.OriginalName, Error: convErr.Error()})
			continue
		}
		processed = append(processed, output)
	}

	if len(processed) == 0 {
		message := "no documents could be converted; please check your files and try again"
		if len(failed) > 0 {
			parts := make([]string, len(failed))
			for i, f := range failed {
				parts[i] = fmt.Sprintf("%s: %s", f.Filename, f.Error)
			}
			message = "all conversions failed: " + strings.Join(parts, "; ")
		}
		h.sendJSONResponse(w, struct {
			models.ErrorResponse
			Failures []models.FailedFile `json:"failures"`
		}{
			ErrorResponse: models.ErrorResponse{Error: "Conversion failed", Message: message},
			Failures:      failed,
		}, http.StatusUnprocessableEntity)
		return
	}

	summary := models.BatchSummary{
		Success:   true,
		Converted: len(processed),
		Failed:    len(failed),
		Failures:  failed,
	}
	summaryJSON, err := json.Marshal(summary)
	if err == nil {
		w.Header().Set("X-Conversion-Info", string(summaryJSON))
	}

	if err := h.serveOutputs(w, r, processed, workDir, "converted-documents.zip"); err != nil {
		h.sendConversionError(w, "Conversion failed", err)
	}
}
