package http

import (
	"context"
	"fmt"
	"net"
	stdHTTP "net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/logger"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/metrics"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
)

type ServerReq struct {
	Logger             *zap.Logger
	HTTPAddr           string
	HTTPAccessLogLevel string
	State              state.State
	Registry           *step.Registry

	// Lookup populates option lists when forms are rendered. It may be nil,
	// in which case lookup fields carry no options.
	Lookup lookup.Lookup

	// Metrics is optional. When nil /metrics is not served.
	Metrics *metrics.Metrics
}

type Server struct {
	logger *zap.Logger
	ln     net.Listener
	mux    *chi.Mux
	server *stdHTTP.Server
}

func NewServer(req *ServerReq) (*Server, error) {

	parsedURL, err := url.Parse(req.HTTPAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTTP address: %w", err)
	}

	ln, err := net.Listen("tcp", parsedURL.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to setup HTTP listener: %w", err)
	}

	s := &Server{
		logger: req.Logger.Named(logger.ComponentNameHTTPServer).With(
			zap.String("bind_addr", ln.Addr().String()),
			zap.String("network", "tcp"),
		),
		ln:  ln,
		mux: newRouter(req),
	}

	s.server = &stdHTTP.Server{
		Addr:         req.HTTPAddr,
		Handler:      s.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	s.logger.Info("successfully initialized HTTP server")

	return s, nil
}

func (s *Server) Start() {
	s.logger.Info("starting HTTP server")
	go s.serve()
}

func (s *Server) serve() {
	if err := s.server.Serve(s.ln); err != nil && err != stdHTTP.ErrServerClosed {
		s.logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
	}
}

func (s *Server) Stop() {
	s.logger.Info("stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("failed to gracefully stop HTTP server", zap.Error(err))
	} else {
		s.logger.Info("successfully stopped HTTP server")
	}
}
