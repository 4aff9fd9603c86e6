// Package server exposes trades, analytics, coaching and sessions over a
// JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"trading-coach/internal/analysis"
	"trading-coach/internal/coach"
	"trading-coach/internal/logging"
	"trading-coach/internal/store"
)

// Version is reported by the health and index endpoints.
const Version = "1.0.0"

const shutdownTimeout = 5 * time.Second

// Config describes the HTTP listener.
type Config struct {
	Addr            string
	Mode            string
	Environment     string
	RateLimitWindow time.Duration
	RateLimitMax    int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

// Deps are the services the handlers call.
type Deps struct {
	Store    store.DataStore
	Analyzer *analysis.Analyzer
	Coach    *coach.Coach
}

// Server is the HTTP front end.
type Server struct {
	cfg     Config
	deps    Deps
	router  *gin.Engine
	limiter *ipLimiter
	logger  zerolog.Logger
	now     func() time.Time
}

// New builds the server and registers every route.
func New(cfg Config, deps Deps, logger zerolog.Logger) (*Server, error) {
	if deps.Store == nil || deps.Analyzer == nil || deps.Coach == nil {
		return nil, errors.New("server requires a store, an analyzer and a coach")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":3000"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	switch cfg.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(cfg.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		deps:    deps,
		limiter: newIPLimiter(cfg.RateLimitWindow, cfg.RateLimitMax),
		logger:  logging.WithOperation(logger, "http"),
		now:     time.Now,
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	s.registerRoutes(router)
	s.router = router
	return s, nil
}

// Handler returns the router for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sweep := time.NewTicker(time.Minute)
	defer sweep.Stop()
	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			s.logger.Info().Msg("Shutting down HTTP server")
			return srv.Shutdown(shutdownCtx)
		case err, ok := <-errCh:
			if !ok {
				return nil
			}
			return err
		case <-sweep.C:
			s.limiter.sweep(s.now())
		}
	}
}

func (s *Server) registerRoutes(r *gin.Engine) {
	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)

	api := r.Group("/api", s.rateLimit())
	api.GET("", s.handleIndex)

	trades := api.Group("/trades")
	trades.GET("", s.listTrades)
	trades.GET("/stats/summary", s.tradeSummary)
	trades.GET("/:id", s.getTrade)
	trades.POST("", s.addTrade)
	trades.PUT("/:id", s.updateTrade)
	trades.DELETE("/:id", s.deleteTrade)

	api.GET("/history", s.history)

	biases := api.Group("/biases")
	biases.GET("", s.biases)
	biases.POST("/check", s.checkTrade)

	c := api.Group("/coach")
	c.POST("/analyze/:tradeId", s.analyzeTrade)
	c.POST("/advice", s.advice)
	c.POST("/review", s.review)
	c.GET("/biases", s.explainBiases)

	sessions := api.Group("/session")
	sessions.GET("/admin/sessions", s.listSessions)
	sessions.GET("", s.getSession)
	sessions.GET("/:sessionId", s.getSession)
	sessions.POST("/:sessionId/message", s.addMessage)
	sessions.PUT("/:sessionId/metadata", s.updateMetadata)
	sessions.GET("/:sessionId/history", s.sessionHistory)
	sessions.DELETE("/:sessionId/messages", s.clearMessages)

	r.NoRoute(s.notFound)
}

func (s *Server) aiMode() string {
	if s.deps.Coach.MockMode() {
		return "mock"
	}
	return "ai"
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "AI Trading Coach API",
		"status":  "ok",
		"health":  "/health",
		"api":     "/api",
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   s.now().UTC(),
		"environment": s.cfg.Environment,
		"aiMode":      s.aiMode(),
		"aiStatus":    s.deps.Coach.Status(),
		"version":     Version,
	})
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "AI Trading Coach API",
		"version": Version,
		"endpoints": gin.H{
			"trades":  "/api/trades",
			"history": "/api/history",
			"biases":  "/api/biases",
			"coach":   "/api/coach",
			"session": "/api/session",
		},
		"status": "operational",
		"ai":     s.aiMode(),
	})
}

var availableRoutes = []string{
	"GET /",
	"GET /health",
	"GET /api",
	"GET /api/trades",
	"GET /api/history",
	"GET /api/biases",
	"POST /api/coach/advice",
	"GET /api/session/:sessionId",
}

func (s *Server) notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":           true,
		"message":         "Route not found",
		"availableRoutes": availableRoutes,
	})
}
