// Package api exposes analysis and history over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/credence/internal/logger"
	"github.com/ppiankov/credence/internal/model"
	"github.com/ppiankov/credence/internal/store"
	"github.com/ppiankov/credence/internal/telemetry"
	"github.com/ppiankov/credence/internal/worker"
)

const limiterIdle = 10 * time.Minute

// Deps are the collaborators the server routes to
type Deps struct {
	Analyzer  Analyzer
	Store     store.HistoryStore
	Tokens    *TokenManager
	Telemetry *telemetry.Provider
	Log       logger.Logger
}

// Server is the HTTP API with lifecycle management
type Server struct {
	router  *gin.Engine
	server  *http.Server
	limiter *worker.Limiter
	log     logger.Logger
	version string
}

// NewServer builds the router and applies the standard middleware
func NewServer(cfg *model.Config, deps Deps, version string) *Server {
	if cfg.Server.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Log == nil {
		deps.Log = logger.NewNop()
	}
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.NewProvider()
	}

	s := &Server{
		router:  gin.New(),
		limiter: worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		log:     deps.Log,
		version: version,
	}

	s.router.Use(RecoveryMiddleware(deps.Log))
	s.router.Use(LoggerMiddleware(deps.Log))
	s.router.Use(MetricsMiddleware(deps.Telemetry.Metrics))

	s.routes(deps, cfg.Server.AnalyzeTimeout)

	s.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes(deps Deps, analyzeTimeout time.Duration) {
	h := NewHandler(deps.Analyzer, deps.Store, analyzeTimeout)

	s.router.GET("/health", s.health)
	s.router.GET("/metrics", gin.WrapH(deps.Telemetry.Handler()))

	s.router.POST("/news/analyze",
		RateLimitMiddleware(s.limiter, deps.Telemetry.Metrics),
		OptionalAuth(deps.Tokens),
		h.Analyze,
	)

	analysis := s.router.Group("/analysis", RequireAuth(deps.Tokens))
	analysis.GET("/history", h.History)
	analysis.DELETE("/history", h.DeleteAll)
	analysis.GET("/stats/summary", h.Stats)
	analysis.GET("/:id", h.Get)
	analysis.DELETE("/:id", h.Delete)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   s.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Router returns the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down within shutdownTimeout
func (s *Server) Start(ctx context.Context, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", logger.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	evict := time.NewTicker(limiterIdle)
	defer evict.Stop()

	for {
		select {
		case err := <-errCh:
			return err
		case <-evict.C:
			if n := s.limiter.Evict(limiterIdle); n > 0 {
				s.log.Debug("evicted idle rate limit buckets", logger.Int("count", n))
			}
		case <-ctx.Done():
			return s.Shutdown(shutdownTimeout)
		}
	}
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(timeout time.Duration) error {
	s.log.Info("Shutting down HTTP server", logger.Duration("timeout", timeout))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
