package api

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/omniconv/omniconv/internal/filestore"
	"github.com/omniconv/omniconv/internal/formats"
	"github.com/omniconv/omniconv/internal/metrics"
	"github.com/omniconv/omniconv/internal/models"
)

// ConvertImagesHandler converts a batch of images to one target format.
// Non-image uploads are skipped; any conversion failure aborts the request.
func (h *Handler) ConvertImagesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.parseMultipart(w, r, h.Config.MaxImageFiles); err != nil {
		h.sendConversionError(w, "Invalid request", err)
		return
	}

	opts, err := h.imageOptionsFromForm(r)
	if err != nil {
		h.sendConversionError(w, "Invalid request", err)
		return
	}

	files, inDir, err := h.saveUploads(r, "files", h.Config.MaxImageFiles)
	if err != nil {
		h.sendConversionError(w, "Upload failed", err)
		return
	}
	cleanup := []string{inDir}
	defer func() { filestore.CleanupFiles(cleanup) }()

	if len(files) == 0 {
		h.sendConversionError(w, "No files uploaded", models.NewValidationError("please select at least one image to convert"))
		return
	}

	jobID := uuid.NewString()
	log.Printf("INFO [job %s]: converting %d images to %s", jobID, len(files), opts.Format)

	workDir, err := filestore.NewWorkDir(h.Config.DownloadsDir)
	if err != nil {
		h.sendConversionError(w, "Image conversion failed", err)
		return
	}
	cleanup = append(cleanup, workDir)

	var outputs []models.ConvertedOutput
	for _, file := range files {
		if !formats.IsImageFile(file.OriginalName) {
			log.Printf("INFO [job %s]: skipping non-image file: %s", jobID, file.OriginalName)
			continue
		}

		start := time.Now()
		output, convErr := h.Image.Convert(r.Context(), jobID, file, opts, workDir)
		metrics.RecordConversion("image", time.Since(start).Seconds(), convErr)
		if convErr != nil {
			h.sendConversionError(w, "Image conversion failed", convErr)
			return
		}
		outputs = append(outputs, output)
	}

	if len(outputs) == 0 {
		h.sendConversionError(w, "Image conversion failed",
			models.NewValidationError("no images were processed; please make sure you uploaded valid image files"))
		return
	}

	if err := h.serveOutputs(w, r, outputs, workDir, "converted-images.zip"); err != nil {
		h.sendConversionError(w, "Image conversion failed", err)
	}
}

// imageOptionsFromForm parses and validates the image conversion parameters.
func (h *Handler) imageOptionsFromForm(r *http.Request) (models.ImageOptions, error) {
	opts := models.ImageOptions{
		Format:         r.FormValue("format"),
		Quality:        h.Config.DefaultImgQual,
		Resize:         r.FormValue("resize") == "true",
		MaintainAspect: r.FormValue("maintainAspect") != "false",
	}

	if opts.Format == "" {
		return opts, models.NewValidationError("please specify the output format")
	}
	if !formats.IsSupportedImageOutput(opts.Format) {
		return opts, models.NewValidationError("unsupported image format %q", opts.Format)
	}

	if q := r.FormValue("quality"); q != "" {
		quality, err := strconv.Atoi(q)
		if err != nil || quality < 1 || quality > 100 {
			return opts, models.NewValidationError("quality must be an integer between 1 and 100")
		}
		opts.Quality = quality
	}

	if opts.Resize {
		var err error
		if opts.Width, err = parseDimension(r.FormValue("width")); err != nil {
			return opts, err
		}
		if opts.Height, err = parseDimension(r.FormValue("height")); err != nil {
			return opts, err
		}
		if opts.Width == 0 && opts.Height == 0 {
			opts.Resize = false
		}
	}
	return opts, nil
}

func parseDimension(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, models.NewValidationError("dimensions must be positive integers")
	}
	return n, nil
}
