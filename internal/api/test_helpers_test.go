package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniconv/omniconv/internal/document"
	"github.com/omniconv/omniconv/internal/image"
	"github.com/omniconv/omniconv/internal/media"
	"github.com/omniconv/omniconv/internal/models"
	"github.com/omniconv/omniconv/internal/runner"
)

type handlerTestEnv struct {
	handler      *Handler
	uploadsDir   string
	downloadsDir string
}

func newHandlerTestEnv(t *testing.T) *handlerTestEnv {
	t.Helper()

	tempDir := t.TempDir()
	uploadsDir := filepath.Join(tempDir, "uploads")
	downloadsDir := filepath.Join(tempDir, "downloads")
	require.NoError(t, os.MkdirAll(uploadsDir, 0o755))
	require.NoError(t, os.MkdirAll(downloadsDir, 0o755))

	config := models.Config{
		Port:             "5000",
		Env:              "development",
		MaxFileSize:      100 * 1024 * 1024,
		MaxImageFiles:    3,
		MaxDocumentFiles: 2,
		UploadsDir:       uploadsDir,
		DownloadsDir:     downloadsDir,
		TempDir:          filepath.Join(tempDir, "temp"),
		DefaultQuality:   "high",
		DefaultImgQual:   90,
		MediaTimeout:     time.Minute,
		DocumentTimeout:  30 * time.Second,
		FFmpegPath:       "ffmpeg",
		YtDlpPath:        "yt-dlp",
		SofficePath:      "soffice",
	}

	run := runner.New()
	return &handlerTestEnv{
		handler: NewHandler(config,
			media.NewService(config, run),
			document.NewService(config, run),
			image.NewService(config, run),
			run,
		),
		uploadsDir:   uploadsDir,
		downloadsDir: downloadsDir,
	}
}

// assertRequestArtifactsRemoved fails if the handler left anything behind in
// the upload or download directories. Every request must clean up its entire
// file set after the response, whether it succeeded or not.
func assertRequestArtifactsRemoved(t *testing.T, env *handlerTestEnv) {
	t.Helper()
	for _, dir := range []string{env.uploadsDir, env.downloadsDir} {
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "leftover request files in %s", dir)
	}
}

// multipartBody builds a multipart form with the given fields and files
// (field name -> filename -> content) and returns the body plus content type.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	for field, names := range files {
		for _, name := range names {
			part, err := writer.CreateFormFile(field, name)
			require.NoError(t, err)
			_, err = part.Write([]byte("test content for " + name))
			require.NoError(t, err)
		}
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func doMultipartRequest(t *testing.T, handlerFunc http.HandlerFunc, target string, fields map[string]string, files map[string][]string) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, fields, files)
	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", contentType)
	recorder := httptest.NewRecorder()
	handlerFunc(recorder, req)
	return recorder
}
