package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/priyanshu2307/Newschat/chat"
	"github.com/priyanshu2307/Newschat/index"
	"github.com/priyanshu2307/Newschat/ingest"
	"github.com/priyanshu2307/Newschat/session"
	"github.com/priyanshu2307/Newschat/session/session_models"
)

// Handler carries the service dependencies for the HTTP routes.
type Handler struct {
	Sessions     session.Store
	Orchestrator *chat.Orchestrator
	Pipeline     *ingest.Pipeline
	Index        index.Index
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type historyResponse struct {
	History []session_models.Message `json:"history"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Response string `json:"response"`
}

type statusResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	ArticlesCount int    `json:"articles_count"`
}

// Register attaches all routes.
func (h *Handler) Register(e *echo.Echo) {
	e.POST("/sessions", h.createSession)
	e.GET("/sessions/:id", h.getSessionHistory)
	e.DELETE("/sessions/:id", h.clearSession)
	e.POST("/sessions/:id/messages", h.sendMessage)
	e.GET("/status", h.getStatus)
	e.POST("/ingest/file", h.ingestFromFile)
	e.POST("/ingest/rss", h.ingestFromRSS)
	e.GET("/ingest/status", h.ingestStatus)
}

func (h *Handler) createSession(c echo.Context) error {
	id, err := h.Sessions.Create()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{SessionID: id})
}

func (h *Handler) getSessionHistory(c echo.Context) error {
	history, err := h.Sessions.History(c.Param("id"))
	if err != nil {
		return err
	}
	if history == nil {
		history = []session_models.Message{}
	}
	return c.JSON(http.StatusOK, historyResponse{History: history})
}

func (h *Handler) clearSession(c echo.Context) error {
	id := c.Param("id")
	if !h.Sessions.Exists(id) {
		return session_models.ErrNotFound
	}
	if err := h.Sessions.Delete(id); err != nil {
		return err
	}
	count, err := h.Index.Count(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{
		Status:        "success",
		Message:       "Session cleared",
		ArticlesCount: count,
	})
}

func (h *Handler) sendMessage(c echo.Context) error {
	var req messageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	reply, err := h.Orchestrator.ProcessMessage(c.Request().Context(), c.Param("id"), req.Message)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Response: reply})
}

func (h *Handler) getStatus(c echo.Context) error {
	count, err := h.Index.Count(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{
		Status:        "online",
		Message:       "System is operational",
		ArticlesCount: count,
	})
}

func (h *Handler) ingestFromFile(c echo.Context) error {
	h.Pipeline.RunBackground("file", h.Pipeline.FromFile)
	count, err := h.Index.Count(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{
		Status:        "processing",
		Message:       "Started ingesting articles from file",
		ArticlesCount: count,
	})
}

func (h *Handler) ingestFromRSS(c echo.Context) error {
	rssURL := c.QueryParam("rss_url")
	if rssURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "rss_url is required")
	}

	h.Pipeline.RunBackground("rss", func(ctx context.Context) (int, error) {
		return h.Pipeline.FromFeed(ctx, rssURL)
	})
	count, err := h.Index.Count(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{
		Status:        "processing",
		Message:       "Started ingesting articles from RSS: " + rssURL,
		ArticlesCount: count,
	})
}

func (h *Handler) ingestStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, h.Pipeline.Tracker().Snapshot())
}
