package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/omniconv/omniconv/internal/archive"
	"github.com/omniconv/omniconv/internal/constants"
	"github.com/omniconv/omniconv/internal/filestore"
	"github.com/omniconv/omniconv/internal/formats"
	"github.com/omniconv/omniconv/internal/models"
)

// parseMultipart bounds and parses a multipart request. maxFiles caps the
// expected file count and scales the request size ceiling.
func (h *Handler) parseMultipart(w http.ResponseWriter, r *http.Request, maxFiles int) error {
	limit := h.Config.MaxFileSize*int64(maxFiles) + constants.UploadSizeBuffer
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(constants.MultipartMemoryLimit); err != nil {
		return models.NewValidationError("failed to parse upload: %v", err)
	}
	return nil
}

// saveUploads persists the multipart files under the given field into a fresh
// request-scoped directory and returns their descriptions. The caller owns
// the directory and must clean it up.
func (h *Handler) saveUploads(r *http.Request, field string, maxFiles int) ([]models.UploadedFile, string, error) {
	if r.MultipartForm == nil {
		return nil, "", models.NewValidationError("request is not multipart form data")
	}
	fileHeaders := r.MultipartForm.File[field]
	if len(fileHeaders) > maxFiles {
		return nil, "", models.NewValidationError("too many files: %d uploaded, at most %d allowed", len(fileHeaders), maxFiles)
	}

	inDir, err := filestore.NewWorkDir(h.Config.UploadsDir)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	files := make([]models.UploadedFile, 0, len(fileHeaders))
	for i, header := range fileHeaders {
		saved, err := saveUpload(header, inDir, i)
		if err != nil {
			filestore.CleanupFiles([]string{inDir})
			return nil, "", err
		}
		files = append(files, saved)
	}
	return files, inDir, nil
}

// saveUpload stores one upload under a sequence-prefixed name. Distinct
// uploads can sanitize to the same filename, so the raw sanitized name is
// not safe as an on-disk destination within a batch.
func saveUpload(header *multipart.FileHeader, dir string, seq int) (models.UploadedFile, error) {
	src, err := header.Open()
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("failed to open upload %q: %w", header.Filename, err)
	}
	defer src.Close()

	destPath := filepath.Join(dir, fmt.Sprintf("%d_%s", seq, filestore.SanitizeFilename(header.Filename)))
	dest, err := os.Create(destPath)
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dest.Close()

	size, err := io.Copy(dest, src)
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("failed to save upload %q: %w", header.Filename, err)
	}

	return models.UploadedFile{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         size,
		Path:         destPath,
	}, nil
}

// serveOutputs shapes the download response: a single artifact is sent
// directly, several are bundled into a ZIP named zipName. The ZIP is created
// inside workDir so request cleanup removes it with everything else.
func (h *Handler) serveOutputs(w http.ResponseWriter, r *http.Request, outputs []models.ConvertedOutput, workDir, zipName string) error {
	if len(outputs) == 1 {
		serveAttachment(w, r, outputs[0].Path, outputs[0].DisplayName, formats.ContentType(outputs[0].DisplayName))
		return nil
	}

	zipPath := filepath.Join(workDir, zipName)
	if err := archive.CreateZip(outputs, zipPath); err != nil {
		return err
	}
	serveAttachment(w, r, zipPath, zipName, "application/zip")
	return nil
}

func serveAttachment(w http.ResponseWriter, r *http.Request, path, downloadName, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", url.PathEscape(downloadName)))
	http.ServeFile(w, r, path)
}
