package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/priyanshu2307/Newschat/chat"
	"github.com/priyanshu2307/Newschat/config"
	"github.com/priyanshu2307/Newschat/index"
	"github.com/priyanshu2307/Newschat/ingest"
	"github.com/priyanshu2307/Newschat/news"
	"github.com/priyanshu2307/Newschat/provider"
	"github.com/priyanshu2307/Newschat/provider/gemini"
	"github.com/priyanshu2307/Newschat/provider/jina"
	"github.com/priyanshu2307/Newschat/retrieval"
	"github.com/priyanshu2307/Newschat/session"
	redis_session "github.com/priyanshu2307/Newschat/session/redis"
	"github.com/priyanshu2307/Newschat/session/session_models"
	"github.com/priyanshu2307/Newschat/tools/web_fetch"
)

// Run wires the service together and serves the HTTP API until the listener
// stops. Configuration errors surface here and prevent startup.
func Run(cfg *config.Config) error {
	embedder, err := jina.NewClient(cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.BaseURL, cfg.Embedding.Timeout)
	if err != nil {
		return err
	}
	llm, err := gemini.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	if err != nil {
		return err
	}

	idx, err := index.New(index.Type(cfg.Index.Type), cfg.Index.Path)
	if err != nil {
		return err
	}
	defer idx.Close()

	// In hybrid mode writes go through the wrapper so the keyword leg
	// stays in sync with the vector index.
	writeIndex := idx
	retriever, err := retrieval.New(retrieval.Mode(cfg.Retrieval.Mode), idx)
	if err != nil {
		return err
	}
	if hybrid, ok := retriever.(*retrieval.Hybrid); ok {
		writeIndex = hybrid
	}

	sessions, err := session.NewStore(session.StoreType(cfg.Session.Store), cfg.Session.Expiry, session.RedisOptions{
		Addr:     fmt.Sprintf("%s:%d", cfg.Session.Redis.Host, cfg.Session.Redis.Port),
		Password: cfg.Session.Redis.Password,
		DB:       cfg.Session.Redis.DB,
		TTL:      cfg.Session.Redis.TTL,
	})
	if err != nil {
		return err
	}
	if rs, ok := sessions.(*redis_session.Store); ok {
		if err := rs.Ping(context.Background()); err != nil {
			return err
		}
	}

	fetcher, err := web_fetch.NewWebFetcher(web_fetch.FetcherType(cfg.Ingest.Fetcher), cfg.Ingest.FetchTimeout, cfg.Ingest.MaxChars)
	if err != nil {
		return err
	}
	feed := news.NewFeedClient(cfg.Ingest.FeedLimit)
	pipeline := ingest.NewPipeline(embedder, writeIndex, feed, fetcher, cfg.Ingest.DataPath, cfg.Ingest.MinContentLength)

	orch := chat.NewOrchestrator(sessions, embedder, retriever, llm, cfg.Retrieval.TopK, cfg.Retrieval.HistoryLimit)

	e := newEcho()
	h := &Handler{Sessions: sessions, Orchestrator: orch, Pipeline: pipeline, Index: idx}
	h.Register(e)

	// Load whatever the data file holds before traffic arrives.
	pipeline.RunBackground("file", pipeline.FromFile)

	if cfg.Ingest.RefreshCron != "" {
		sched, err := NewScheduler(pipeline, cfg.Ingest.RefreshCron, cfg.Ingest.RefreshFeedURL)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// newEcho builds the echo instance with middleware and the unified error
// handler mapping the error taxonomy onto status codes.
func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	httpLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()

		var he *echo.HTTPError
		var ue *provider.UpstreamError
		switch {
		case errors.As(err, &he):
			code = he.Code
			msg = fmt.Sprint(he.Message)
		case errors.Is(err, session_models.ErrNotFound):
			code = http.StatusNotFound
			msg = "Session not found"
		case errors.As(err, &ue):
			code = http.StatusBadGateway
			msg = "upstream service failed"
		}

		req := c.Request()
		httpLogger.Printf("%d %s %s: %v", code, req.Method, req.URL.Path, err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]string{"error": msg})
		}
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return e
}
