// Package server exposes the reasoning engine over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/martiendejong/Hazina-sub003/internal/logging"
	"github.com/martiendejong/Hazina-sub003/internal/reasoning"
)

// Reasoner is the part of the engine the HTTP layer needs.
type Reasoner interface {
	Reason(ctx context.Context, prompt string, rctx reasoning.Context) *reasoning.RunResult
}

// Config holds the HTTP listener settings.
type Config struct {
	Host           string
	Port           string
	AllowedOrigins []string
	Debug          bool
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// DefaultConfig returns the listener settings used when nothing is
// configured.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         "8420",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
}

// Server hosts the reasoning API.
type Server struct {
	engine     Reasoner
	logger     logging.Logger
	router     *gin.Engine
	httpServer *http.Server
	startTime  time.Time
}

// New builds the server and its routes.
func New(engine Reasoner, cfg Config, logger logging.Logger) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	s := &Server{
		engine:    engine,
		logger:    logging.OrNop(logger),
		router:    router,
		startTime: time.Now(),
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.POST("/reason", s.handleReason)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving requests until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

func (s *Server) handleReason(c *gin.Context) {
	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if req.Prompt == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "prompt is required"})
		return
	}
	if req.MaxSteps < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "max_steps must not be negative"})
		return
	}
	if req.MinConfidence < 0 || req.MinConfidence > 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "min_confidence must be within [0,1]"})
		return
	}

	rctx := reasoning.NewContext()
	if req.MinConfidence > 0 {
		rctx.MinConfidence = req.MinConfidence
	}
	rctx.MaxSteps = req.MaxSteps
	rctx.Domain = req.Domain
	rctx.GroundTruth = req.GroundTruth
	for _, m := range req.History {
		rctx.History = append(rctx.History, m.toMessage())
	}

	run := s.engine.Reason(c.Request.Context(), req.Prompt, rctx)
	s.logger.Debug("reason request done: success=%t confidence=%.2f layers=%d",
		run.IsSuccessful, run.FinalConfidence, len(run.LayerResults))

	status := http.StatusOK
	if !run.IsSuccessful {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, newReasonResponse(run))
}
