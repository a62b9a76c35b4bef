// Package api exposes the analysis pipeline over HTTP: service metadata,
// health, and the single-drug and batch analysis endpoints.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/middleware"
	"github.com/pharmaguard-server/internal/service"
)

const serviceVersion = "2.0"

// Server is the HTTP server over the analysis pipeline.
type Server struct {
	config    *domain.Config
	extractor domain.VariantExtractor
	analyzer  *service.Analyzer
	advisory  bool
	log       *logrus.Logger
	router    *gin.Engine
	server    *http.Server
}

// NewServer wires the router and middleware stack around the pipeline.
func NewServer(config *domain.Config, extractor domain.VariantExtractor, analyzer *service.Analyzer, logger *logrus.Logger) *Server {
	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.RateLimit(config.Server.RateLimitRPS, config.Server.RateLimitBurst))
	router.Use(middleware.MaxBodySize(config.Upload.MaxFileSize + 64*1024))

	s := &Server{
		config:    config,
		extractor: extractor,
		analyzer:  analyzer,
		advisory:  config.Advisory.Enabled,
		log:       logger,
		router:    router,
	}
	s.setupRoutes()
	return s
}

// Router exposes the underlying handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleRoot)
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/analyze", s.handleAnalyze)
		v1.POST("/analyze/batch", s.handleAnalyzeBatch)
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":             "PharmaGuard API",
		"version":             serviceVersion,
		"status":              "operational",
		"advisory_configured": s.advisory,
		"supported_drugs":     s.analyzer.SupportedDrugs(),
		"supported_genes":     supportedGenes(),
		"cpic_guidelines":     domain.CPICGuidelineURLs,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "healthy",
		"timestamp":           time.Now().UTC().Format(time.RFC3339),
		"advisory_configured": s.advisory,
	})
}

func supportedGenes() []string {
	seen := make(map[string]struct{})
	for _, marker := range domain.Markers {
		seen[marker.Gene] = struct{}{}
	}
	genes := make([]string, 0, len(seen))
	for gene := range seen {
		genes = append(genes, gene)
	}
	sort.Strings(genes)
	return genes
}
