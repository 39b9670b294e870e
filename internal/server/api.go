package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"yt-audio/internal/platform"
	"yt-audio/internal/player"
)

// API handles HTTP control endpoints.
type API struct {
	sessions *SessionManager
	registry *platform.Registry
	logger   *slog.Logger
}

// NewAPI creates a new API handler. The registry serves metadata lookups.
func NewAPI(sessions *SessionManager, registry *platform.Registry, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.Default()
	}
	return &API{
		sessions: sessions,
		registry: registry,
		logger:   logger.With("component", "api"),
	}
}

// PlayRequest is the request body for play endpoint.
type PlayRequest struct {
	URL     string  `json:"url" binding:"required"`
	StartAt float64 `json:"start_at"` // seconds
}

// PlayResponse is the response for play and stop endpoints.
type PlayResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	Message   string `json:"message,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"`
}

// StatusResponse is the response for status endpoint.
type StatusResponse struct {
	SessionID string  `json:"session_id"`
	Status    string  `json:"status"`
	URL       string  `json:"url,omitempty"`
	Title     string  `json:"title,omitempty"`
	Position  float64 `json:"position"`
	Duration  float64 `json:"duration"`
	Error     string  `json:"error,omitempty"`
}

// SessionsResponse is the response for the session list endpoint.
type SessionsResponse struct {
	Count    int      `json:"count"`
	Sessions []string `json:"sessions"`
}

// MetadataResponse is the response for metadata endpoint.
type MetadataResponse struct {
	URL       string  `json:"url"`
	Title     string  `json:"title"`
	Duration  float64 `json:"duration"`
	Extractor string  `json:"extractor,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// Play starts playback in a session, creating the session if needed.
func (a *API) Play(c *gin.Context) {
	sessionID := c.Param("id")

	var req PlayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, PlayResponse{
			Status:    "error",
			SessionID: sessionID,
			Message:   fmt.Sprintf("invalid request: %v", err),
		})
		return
	}

	startAt, err := player.OffsetFromSeconds(req.StartAt)
	if err != nil {
		c.JSON(http.StatusBadRequest, PlayResponse{
			Status:    "error",
			SessionID: sessionID,
			Message:   err.Error(),
			ErrorKind: "seek",
		})
		return
	}
	a.logger.Info("play request", "session", sessionID, "url", req.URL, "start_at", startAt)

	if err := a.sessions.StartPlayback(sessionID, req.URL, startAt); err != nil {
		status, kind := classify(err)
		c.JSON(status, PlayResponse{
			Status:    "error",
			SessionID: sessionID,
			Message:   err.Error(),
			ErrorKind: kind,
		})
		return
	}

	c.JSON(http.StatusOK, PlayResponse{
		Status:    "playing",
		SessionID: sessionID,
	})
}

// classify maps a Play error to an HTTP status and error kind.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, player.ErrSeek):
		return http.StatusBadRequest, "seek"
	case errors.Is(err, player.ErrResolution):
		return http.StatusUnprocessableEntity, "resolution"
	case errors.Is(err, player.ErrDevice):
		return http.StatusServiceUnavailable, "device"
	case errors.Is(err, player.ErrClosed):
		return http.StatusConflict, "closed"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// Stop stops playback in a session.
func (a *API) Stop(c *gin.Context) {
	sessionID := c.Param("id")
	a.logger.Info("stop request", "session", sessionID)

	if !a.sessions.Stop(sessionID) {
		c.JSON(http.StatusNotFound, PlayResponse{
			Status:    "error",
			SessionID: sessionID,
			Message:   "session not found",
		})
		return
	}

	c.JSON(http.StatusOK, PlayResponse{
		Status:    "stopped",
		SessionID: sessionID,
	})
}

// Delete stops and removes a session.
func (a *API) Delete(c *gin.Context) {
	sessionID := c.Param("id")

	if !a.sessions.Remove(sessionID) {
		c.JSON(http.StatusNotFound, PlayResponse{
			Status:    "error",
			SessionID: sessionID,
			Message:   "session not found",
		})
		return
	}

	c.JSON(http.StatusOK, PlayResponse{
		Status:    "removed",
		SessionID: sessionID,
	})
}

// Status returns the status of a session.
func (a *API) Status(c *gin.Context) {
	sessionID := c.Param("id")

	p := a.sessions.Get(sessionID)
	if p == nil {
		c.JSON(http.StatusNotFound, StatusResponse{
			SessionID: sessionID,
			Status:    "not_found",
		})
		return
	}

	resp := StatusResponse{
		SessionID: sessionID,
		Status:    stateString(p.State()),
		URL:       p.URL(),
		Title:     p.Title(),
		Position:  p.Position().Seconds(),
		Duration:  p.Duration().Seconds(),
	}
	if err := p.Err(); err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func stateString(s player.State) string {
	switch s {
	case player.Playing:
		return "playing"
	default:
		return "idle"
	}
}

// Sessions lists the session IDs.
func (a *API) Sessions(c *gin.Context) {
	ids := a.sessions.IDs()
	c.JSON(http.StatusOK, SessionsResponse{Count: len(ids), Sessions: ids})
}

// Metadata resolves track metadata without starting playback.
func (a *API) Metadata(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, MetadataResponse{
			Error: "url query parameter is required",
		})
		return
	}

	a.logger.Info("metadata request", "url", url)

	src, err := a.registry.Resolve(c.Request.Context(), url)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, platform.ErrUnsupportedURL) {
			status = http.StatusBadRequest
		}
		c.JSON(status, MetadataResponse{
			URL:   url,
			Error: fmt.Sprintf("failed to extract metadata: %v", err),
		})
		return
	}

	c.JSON(http.StatusOK, MetadataResponse{
		URL:       url,
		Title:     src.Title,
		Duration:  src.Duration.Seconds(),
		Extractor: src.Extractor,
	})
}
