package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omniconv/omniconv/internal/models"
)

func TestRootHandler(t *testing.T) {
	env := newHandlerTestEnv(t)
	mux := http.NewServeMux()
	env.handler.SetupRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))

	var response struct {
		Message   string            `json:"message"`
		Endpoints map[string]string `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Message)
	assert.Contains(t, response.Endpoints, "POST /api/media/convert")
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	env := newHandlerTestEnv(t)
	mux := http.NewServeMux()
	env.handler.SetupRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/does-not-exist", nil)
	recorder := httptest.NewRecorder()
	mux.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusNotFound, recorder.Code)

	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "Not Found", response.Error)
	assert.Contains(t, response.Message, "/api/does-not-exist")
}

func TestConvertEndpointsRejectGET(t *testing.T) {
	env := newHandlerTestEnv(t)

	handlers := map[string]http.HandlerFunc{
		"/api/media/convert":     env.handler.ConvertMediaHandler,
		"/api/documents/convert": env.handler.ConvertDocumentsHandler,
		"/api/images/convert":    env.handler.ConvertImagesHandler,
		"/api/media/playlist-info": env.handler.PlaylistInfoHandler,
	}

	for path, handlerFunc := range handlers {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			recorder := httptest.NewRecorder()
			handlerFunc(recorder, req)
			assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
		})
	}
}

func TestSendConversionError_StatusMapping(t *testing.T) {
	env := newHandlerTestEnv(t)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{"validation", models.NewValidationError("bad input"), http.StatusBadRequest},
		{"playlist confirmation", &models.PlaylistConfirmationError{URL: "u"}, http.StatusBadRequest},
		{"dependency unavailable", &models.DependencyUnavailableError{Tool: "ffmpeg", Err: assert.AnError}, http.StatusInternalServerError},
		{"timeout", &models.TimeoutError{Tool: "soffice"}, http.StatusInternalServerError},
		{"conversion", &models.ConversionError{Tool: "ffmpeg", Message: "boom"}, http.StatusInternalServerError},
		{"no output", &models.NoOutputError{Tool: "yt-dlp", Dir: "/tmp"}, http.StatusInternalServerError},
		{"generic", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			env.handler.sendConversionError(recorder, "Test failure", tt.err)
			assert.Equal(t, tt.expectedStatus, recorder.Code)

			var response models.ErrorResponse
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
			assert.Equal(t, tt.err.Error(), response.Message)
		})
	}

	t.Run("playlist errors set the isPlaylist flag", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		env.handler.sendConversionError(recorder, "Test failure", &models.PlaylistConfirmationError{URL: "u"})

		var response models.ErrorResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.True(t, response.IsPlaylist)
		assert.Equal(t, "Playlist detected", response.Error)
	})

	t.Run("development mode includes details", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		env.handler.sendConversionError(recorder, "Test failure", models.NewValidationError("specifics"))

		var response models.ErrorResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "specifics", response.Details)
	})

	t.Run("production mode omits details", func(t *testing.T) {
		prod := newHandlerTestEnv(t)
		prod.handler.Config.Env = "production"

		recorder := httptest.NewRecorder()
		prod.handler.sendConversionError(recorder, "Test failure", models.NewValidationError("specifics"))

		var response models.ErrorResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Empty(t, response.Details)
	})
}

func TestHealthHandler(t *testing.T) {
	env := newHandlerTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	recorder := httptest.NewRecorder()
	env.handler.HealthHandler(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		Status     string          `json:"status"`
		Timestamp  string          `json:"timestamp"`
		ActiveJobs int             `json:"activeJobs"`
		Services   map[string]bool `json:"services"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "OK", response.Status)
	assert.NotEmpty(t, response.Timestamp)
	assert.Equal(t, 0, response.ActiveJobs)
	for _, service := range []string{"ffmpeg", "ytdlp", "libreoffice", "vips"} {
		assert.Contains(t, response.Services, service)
	}
}

func TestPlaylistInfoHandler_Validation(t *testing.T) {
	env := newHandlerTestEnv(t)

	t.Run("missing url", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/media/playlist-info", strings.NewReader(`{}`))
		recorder := httptest.NewRecorder()
		env.handler.PlaylistInfoHandler(recorder, req)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/media/playlist-info", strings.NewReader(`{not json`))
		recorder := httptest.NewRecorder()
		env.handler.PlaylistInfoHandler(recorder, req)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
