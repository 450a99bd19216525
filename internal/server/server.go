// Package server exposes the resume scorer over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/spigell/devhire-ats/internal/ats"
	"github.com/spigell/devhire-ats/internal/extract"
)

const (
	DefaultAddress         = ":5000"
	DefaultMaxUploadBytes  = 5 << 20
	DefaultShutdownTimeout = 30 * time.Second

	RequestIDHeader = "X-Request-ID"
)

// Config holds server settings.
type Config struct {
	Address        string
	MaxUploadBytes int64
	AllowedOrigins []string
	Version        string

	// RateLimit is the allowed analyze requests per second per client; 0 disables limiting.
	RateLimit float64
	RateBurst int

	ShutdownTimeout time.Duration
}

// Analyzer scores a resume document against a job text.
type Analyzer interface {
	Score(ctx context.Context, doc extract.Document, jobText string) ats.Result
	SemanticEnabled() bool
}

type Server struct {
	cfg        Config
	analyzer   Analyzer
	logger     *zap.Logger
	engine     *gin.Engine
	httpServer *http.Server
}

func New(cfg Config, analyzer Analyzer, logger *zap.Logger) *Server {
	if cfg.Address == "" {
		cfg.Address = DefaultAddress
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		analyzer: analyzer,
		logger:   logger,
	}

	s.engine = s.routes()
	s.httpServer = &http.Server{
		Addr:              cfg.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// analyze waits for the semantic call
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), requestLogger(s.logger), recovery(s.logger), cors.New(corsConfig(s.cfg.AllowedOrigins)))

	api := r.Group("/api")
	{
		api.GET("", s.handleRoot)
		api.GET("/health", s.handleHealth)
		api.POST("/ats/analyze", newRateLimiter(s.cfg.RateLimit, s.cfg.RateBurst).middleware(), s.handleAnalyze)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", RequestIDHeader}
	cfg.ExposeHeaders = []string{RequestIDHeader}
	return cfg
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		s.logger.Info("server starting",
			zap.String("address", s.httpServer.Addr),
			zap.Bool("semantic", s.analyzer.SemanticEnabled()),
		)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
