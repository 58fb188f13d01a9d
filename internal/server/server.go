// Package server provides the HTTP API for Docsight.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/docsight/docsight/internal/config"
	"github.com/docsight/docsight/internal/domain"
	"github.com/docsight/docsight/internal/upload"
)

// Rasterizer converts every page of a PDF into raster images, index-aligned
// to page order.
type Rasterizer interface {
	RenderFile(ctx context.Context, path string) ([]domain.PageImage, error)
}

// Encoder serializes page images into transport-ready payloads.
type Encoder interface {
	EncodeBatch(pages []domain.PageImage) ([]domain.ImagePayload, error)
}

// Analyzer sends one prompt plus zero or more images to the model service
// and returns the answer text.
type Analyzer interface {
	Analyze(ctx context.Context, prompt string, images []domain.ImagePayload) (string, error)
}

// Server is the HTTP server for the Docsight API.
type Server struct {
	rasterizer Rasterizer
	encoder    Encoder
	analyzer   Analyzer
	spool      *upload.Spool
	config     *config.ServerConfig
	logger     *zap.Logger
	server     *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	rasterizer Rasterizer,
	encoder Encoder,
	analyzer Analyzer,
	spool *upload.Spool,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		rasterizer: rasterizer,
		encoder:    encoder,
		analyzer:   analyzer,
		spool:      spool,
		config:     cfg,
		logger:     logger,
	}
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.config.RequestTimeout()))

	r.Get("/", s.handleRoot)
	r.Post("/ask", s.handleAsk)
	r.Post("/upload-and-analyze", s.handleUploadAndAnalyze)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
