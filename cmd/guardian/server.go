package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"

	"github.com/parley-chat/guardian/moderation/engine"
	"github.com/parley-chat/guardian/moderation/escalation"
	"github.com/parley-chat/guardian/moderation/histstore"
	"github.com/parley-chat/guardian/moderation/lexicon"
	modsignal "github.com/parley-chat/guardian/moderation/signal"
)

// caps the text the O(n*m) matcher will be asked to walk
const maxPayloadSize = "16K"

type Server struct {
	logger *slog.Logger
	engine *engine.Engine
	echo   *echo.Echo
}

type Config struct {
	Logger            *slog.Logger
	DatabaseURL       string
	MaxDBConnections  int
	RedisURL          string
	LexiconFile       string
	PolicyFile        string
	ClassifierHost    string
	ClassifierTimeout time.Duration
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	entries := lexicon.DefaultEntries()
	if config.LexiconFile != "" {
		var err error
		entries, err = lexicon.LoadEntriesFromFileJSON(config.LexiconFile)
		if err != nil {
			return nil, fmt.Errorf("initializing lexicon: %w", err)
		}
		logger.Info("loaded lexicon from JSON", "path", config.LexiconFile, "entries", len(entries))
	}

	policy, policySrc, err := engine.LoadPolicy(config.PolicyFile)
	if err != nil {
		return nil, err
	}
	if policySrc.Defaulted {
		logger.Info("using built-in default policy", "reason", policySrc.Reason)
	} else {
		logger.Info("loaded policy from JSON", "path", policySrc.Path)
	}

	var history histstore.HistStore
	if config.RedisURL != "" {
		rhs, err := histstore.NewRedisHistStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis histstore: %v", err)
		}
		history = rhs
		logger.Info("offense history in redis")
	} else if config.DatabaseURL != "" {
		ghs, err := histstore.NewGormHistStore(config.DatabaseURL, config.MaxDBConnections)
		if err != nil {
			return nil, fmt.Errorf("initializing database histstore: %v", err)
		}
		history = ghs
		logger.Info("offense history in database")
	} else {
		history = histstore.NewMemHistStore()
		logger.Warn("offense history in memory only, lost on restart")
	}

	var classifier modsignal.Client
	if config.ClassifierHost != "" {
		logger.Info("configuring external toxicity classifier", "host", config.ClassifierHost)
		classifier = modsignal.NewHTTPClient(config.ClassifierHost, config.ClassifierTimeout)
	}

	eng := engine.Engine{
		Logger:        logger,
		Lexicon:       lexicon.NewIndex(entries),
		History:       history,
		Escalator:     escalation.NewEscalator(100_000),
		Policy:        policy,
		Signal:        classifier,
		SignalTimeout: config.ClassifierTimeout,
	}

	s := &Server{
		logger: logger,
		engine: &eng,
	}
	return s, nil
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

type analyzeRequest struct {
	Text   string `json:"text"`
	UserID string `json:"user_id"`
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.UserID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "must pass user_id")
	}

	out, err := s.engine.Analyze(c.Request().Context(), req.Text, req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetOffenses(c echo.Context) error {
	userID := c.Param("user_id")
	rec, err := s.engine.History.GetRecord(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if rec == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no offense record for user")
	}
	return c.JSON(http.StatusOK, rec)
}

func (s *Server) handleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) RunAPI(ctx context.Context, listen string) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(s.logger))
	e.Use(middleware.Recover())
	e.Use(echoprometheus.NewMiddleware("guardian"))
	e.Use(middleware.BodyLimit(maxPayloadSize))

	e.GET("/_health", s.handleHealthCheck)
	e.POST("/analyze", s.handleAnalyze)
	e.GET("/offenses/:user_id", s.handleGetOffenses)

	s.echo = e

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Start(listen)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-quit:
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
