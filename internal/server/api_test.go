package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt-audio/internal/metrics"
	"yt-audio/internal/platform"
	"yt-audio/internal/player"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubExtractor struct{}

func (stubExtractor) Name() string { return "stub" }

func (stubExtractor) CanHandle(url string) bool { return strings.Contains(url, "youtube.com") }

func (stubExtractor) Resolve(_ context.Context, url string) (*platform.Source, error) {
	if strings.Contains(url, "private") {
		return nil, errors.New("video is private")
	}
	return &platform.Source{URL: url, StreamURL: "https://cdn/audio", Title: "Song", Duration: 3 * time.Minute}, nil
}

type testEnv struct {
	router   *gin.Engine
	sessions *SessionManager
	mocks    map[string]*player.Mock
}

func setupTestRouter(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{mocks: make(map[string]*player.Mock)}

	env.sessions = NewSessionManager(func(url string) player.Interface {
		m := player.NewMock(url)
		m.SetDuration(3 * time.Minute)
		if strings.Contains(url, "broken") {
			m.SetPlayError(&player.ResolutionError{URL: url, Op: "resolve", Err: errors.New("unavailable")})
		}
		if strings.Contains(url, "removed") {
			m.SetPlayError(player.ErrClosed)
		}
		env.mocks[url] = m
		return m
	}, nil)
	t.Cleanup(env.sessions.Close)

	reg := prometheus.NewRegistry()
	api := NewAPI(env.sessions, platform.NewRegistry(stubExtractor{}), nil)
	env.router = SetupRouter(api, metrics.NewMetrics(reg), reg)
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
}

func TestPlayEndpoint_ValidRequest(t *testing.T) {
	env := setupTestRouter(t)
	url := "https://youtube.com/watch?v=W-P_ShiZqvg"

	w := env.do(http.MethodPost, "/session/a/play", `{"url": "`+url+`", "start_at": 50}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[PlayResponse](t, w)
	assert.Equal(t, "playing", resp.Status)
	assert.Equal(t, "a", resp.SessionID)
	assert.Equal(t, []time.Duration{50 * time.Second}, env.mocks[url].PlayCalls())
}

func TestPlayEndpoint_MissingURL(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodPost, "/session/a/play", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error", decode[PlayResponse](t, w).Status)
}

func TestPlayEndpoint_InvalidJSON(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodPost, "/session/a/play", `{invalid json}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlayEndpoint_ErrorKinds(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodPost, "/session/a/play", `{"url": "https://youtube.com/broken"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decode[PlayResponse](t, w)
	assert.Equal(t, "resolution", resp.ErrorKind)
	assert.Contains(t, resp.Message, "unavailable")
}

func TestPlayEndpoint_ClosedPlayer(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodPost, "/session/a/play", `{"url": "https://youtube.com/removed"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "closed", decode[PlayResponse](t, w).ErrorKind)
}

func TestPlayEndpoint_StartAtOutOfRange(t *testing.T) {
	env := setupTestRouter(t)
	url := "https://youtube.com/watch?v=W-P_ShiZqvg"

	for _, startAt := range []string{"1e300", "-1e300", "9223372037"} {
		w := env.do(http.MethodPost, "/session/a/play", `{"url": "`+url+`", "start_at": `+startAt+`}`)

		assert.Equal(t, http.StatusBadRequest, w.Code, startAt)
		assert.Equal(t, "seek", decode[PlayResponse](t, w).ErrorKind, startAt)
	}
	assert.Empty(t, env.sessions.IDs())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{&player.SeekError{Offset: time.Hour, Duration: time.Minute}, http.StatusBadRequest, "seek"},
		{&player.ResolutionError{Op: "resolve", Err: errors.New("x")}, http.StatusUnprocessableEntity, "resolution"},
		{&player.DeviceError{Op: "open", Err: errors.New("x")}, http.StatusServiceUnavailable, "device"},
		{player.ErrClosed, http.StatusConflict, "closed"},
		{errors.New("x"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		status, kind := classify(tt.err)
		assert.Equal(t, tt.status, status)
		assert.Equal(t, tt.kind, kind)
	}
}

func TestStopEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	url := "https://youtube.com/watch?v=a"
	env.do(http.MethodPost, "/session/a/play", `{"url": "`+url+`"}`)

	w := env.do(http.MethodPost, "/session/a/stop", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stopped", decode[PlayResponse](t, w).Status)
	assert.Equal(t, player.Idle, env.mocks[url].State())
}

func TestStopEndpoint_NotFound(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodPost, "/session/missing/stop", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	url := "https://youtube.com/watch?v=a"
	env.do(http.MethodPost, "/session/a/play", `{"url": "`+url+`", "start_at": 12.5}`)

	w := env.do(http.MethodGet, "/session/a/status", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[StatusResponse](t, w)
	assert.Equal(t, "playing", resp.Status)
	assert.Equal(t, url, resp.URL)
	assert.Equal(t, 12.5, resp.Position)
	assert.Equal(t, 180.0, resp.Duration)
	assert.Empty(t, resp.Error)
}

func TestStatusEndpoint_ReportsError(t *testing.T) {
	env := setupTestRouter(t)
	url := "https://youtube.com/watch?v=a"
	env.do(http.MethodPost, "/session/a/play", `{"url": "`+url+`"}`)
	env.mocks[url].SetErr(&player.DeviceError{Op: "write", Err: errors.New("unplugged")})
	env.mocks[url].SetState(player.Idle)

	resp := decode[StatusResponse](t, env.do(http.MethodGet, "/session/a/status", ""))

	assert.Equal(t, "idle", resp.Status)
	assert.Equal(t, "audio device write: unplugged", resp.Error)
}

func TestStatusEndpoint_NotFound(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodGet, "/session/missing/status", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode[StatusResponse](t, w).Status)
}

func TestDeleteAndListEndpoints(t *testing.T) {
	env := setupTestRouter(t)
	env.do(http.MethodPost, "/session/b/play", `{"url": "https://youtube.com/watch?v=b"}`)
	env.do(http.MethodPost, "/session/a/play", `{"url": "https://youtube.com/watch?v=a"}`)

	list := decode[SessionsResponse](t, env.do(http.MethodGet, "/sessions", ""))
	assert.Equal(t, []string{"a", "b"}, list.Sessions)

	w := env.do(http.MethodDelete, "/session/a", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.mocks["https://youtube.com/watch?v=a"].Closed())

	list = decode[SessionsResponse](t, env.do(http.MethodGet, "/sessions", ""))
	assert.Equal(t, []string{"b"}, list.Sessions)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/session/a", "").Code)
}

func TestMetadataEndpoint(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodGet, "/metadata?url=https://youtube.com/watch?v=a", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[MetadataResponse](t, w)
	assert.Equal(t, "Song", resp.Title)
	assert.Equal(t, 180.0, resp.Duration)
	assert.Equal(t, "stub", resp.Extractor)
}

func TestMetadataEndpoint_Errors(t *testing.T) {
	env := setupTestRouter(t)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/metadata", "").Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/metadata?url=https://vimeo.com/1", "").Code)

	w := env.do(http.MethodGet, "/metadata?url=https://youtube.com/private", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decode[MetadataResponse](t, w).Error, "video is private")
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter(t)
	env.do(http.MethodGet, "/health", "")

	w := env.do(http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `ytaudio_http_requests_total{endpoint="/health",method="GET",status_code="200"} 1`)
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestRouter(t)

	w := env.do(http.MethodOptions, "/session/a/play", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
