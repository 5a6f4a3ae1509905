package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniconv/omniconv/internal/models"
)

func TestConvertDocumentsHandler_UnsupportedTarget(t *testing.T) {
	env := newHandlerTestEnv(t)

	recorder := doMultipartRequest(t, env.handler.ConvertDocumentsHandler, "/api/documents/convert",
		map[string]string{"target": "exe"},
		map[string][]string{"files": {"report.docx"}})

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "Unsupported target format", response.Error)
	assert.Contains(t, response.Message, "pdf")
}

func TestConvertDocumentsHandler_NoFiles(t *testing.T) {
	env := newHandlerTestEnv(t)

	recorder := doMultipartRequest(t, env.handler.ConvertDocumentsHandler, "/api/documents/convert",
		map[string]string{"target": "pdf"}, nil)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "No files uploaded", response.Error)
}

func TestConvertDocumentsHandler_SingleOutputIsAttachment(t *testing.T) {
	env := newHandlerTestEnv(t)

	// An image converted to txt yields an informational text document without
	// touching any external tool, so the full download path can be exercised.
	recorder := doMultipartRequest(t, env.handler.ConvertDocumentsHandler, "/api/documents/convert",
		map[string]string{"target": "txt"},
		map[string][]string{"files": {"photo.jpg"}})

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), "photo_converted.txt")

	var summary models.BatchSummary
	require.NoError(t, json.Unmarshal([]byte(recorder.Header().Get("X-Conversion-Info")), &summary))
	assert.True(t, summary.Success)
	assert.Equal(t, 1, summary.Converted)
	assert.Equal(t, 0, summary.Failed)

	assertRequestArtifactsRemoved(t, env)
}

func TestConvertDocumentsHandler_MultipleOutputsAreZipped(t *testing.T) {
	env := newHandlerTestEnv(t)

	recorder := doMultipartRequest(t, env.handler.ConvertDocumentsHandler, "/api/documents/convert",
		map[string]string{"target": "txt"},
		map[string][]string{"files": {"photo.jpg", "scan.png"}})

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/zip", recorder.Header().Get("Content-Type"))
	assert.Contains(t, recorder.Header().Get("Content-Disposition"), "converted-documents.zip")

	reader, err := zip.NewReader(bytes.NewReader(recorder.Body.Bytes()), int64(recorder.Body.Len()))
	require.NoError(t, err)

	var names []string
	for _, entry := range reader.File {
		names = append(names, entry.Name)
	}
	assert.ElementsMatch(t, []string{"photo_converted.txt", "scan_converted.txt"}, names)

	assertRequestArtifactsRemoved(t, env)
}

func TestConvertDocumentsHandler_CollidingNamesKeepBothFiles(t *testing.T) {
	env := newHandlerTestEnv(t)

	// "a b.jpg" and "a_b.jpg" sanitize to the same filename; neither upload
	// nor output may overwrite the other.
	recorder := doMultipartRequest(t, env.handler.ConvertDocumentsHandler, "/api/documents/convert",
		map[string]string{"target": "txt"},
		map[string][]string{"files": {"a b.jpg", "a_b.jpg"}})

	require.Equal(t, http.StatusOK, recorder.Code)

	var summary models.BatchSummary
	require.NoError(t, json.Unmarshal([]byte(recorder.Header().Get("X-Conversion-Info")), &summary))
	assert.Equal(t, 2, summary.Converted)
	assert.Equal(t, 0, summary.Failed)

	reader, err := zip.NewReader(bytes.NewReader(recorder.Body.Bytes()), int64(recorder.Body.Len()))
	require.NoError(t, err)
	require.Len(t, reader.File, 2)

	contents := make(map[string]string)
	for _, entry := range reader.File {
		rc, err := entry.Open()
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		contents[entry.Name] = string(data)
	}
	require.Len(t, contents, 2, "archive entry names must be distinct")
	assert.Contains(t, contents, "a_b_converted.txt")
	assert.Contains(t, contents, "a_b_converted_2.txt")

	var combined string
	for _, body := range contents {
		combined += body
	}
	assert.Contains(t, combined, "a b.jpg")
	assert.Contains(t, combined, "a_b.jpg")

	assertRequestArtifactsRemoved(t, env)
}

func TestConvertDocumentsHandler_TooManyFiles(t *testing.T) {
	env := newHandlerTestEnv(t)

	// The test environment allows at most two document uploads.
	recorder := doMultipartRequest(t, env.handler.ConvertDocumentsHandler, "/api/documents/convert",
		map[string]string{"target": "pdf"},
		map[string][]string{"files": {"a.docx", "b.docx", "c.docx"}})

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Contains(t, response.Message, "too many files")
}
