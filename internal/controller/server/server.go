package server

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server/http"
	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	stateImpl "github.com/hashicorp-forge/pipeline-steps/internal/controller/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/logger"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/metrics"
	sharedstate "github.com/hashicorp-forge/pipeline-steps/internal/pkg/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/steps"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/version"
)

type Server struct {
	baseLogger   *zap.Logger
	serverLogger *zap.Logger

	state   state.State
	metrics *metrics.Metrics

	httpServer *http.Server
}

func NewServer(cfg *Config) (*Server, error) {

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	zapLogger, err := logger.NewZap(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	zapLogger.Info("starting server", zap.String("version", version.Get()))

	server := Server{
		baseLogger:   zapLogger,
		serverLogger: zapLogger.Named(logger.ComponentNameServer),
		metrics:      metrics.New(cfg.Metrics),
	}

	stateBackend, err := stateImpl.NewBackend(cfg.State, zapLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create state backend: %w", err)
	}
	server.state = stateBackend

	if err := server.setupStateDefaultObjects(); err != nil {
		return nil, fmt.Errorf("failed to setup default state objects: %w", err)
	}

	lookupBackend, err := lookup.New(cfg.Lookup, zapLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup backend: %w", err)
	}

	httpServerReq := http.ServerReq{
		Logger:             zapLogger,
		HTTPAddr:           cfg.HTTP.Addr,
		HTTPAccessLogLevel: cfg.HTTP.AccessLogLevel,
		State:              server.state,
		Registry:           steps.Registry(),
		Lookup:             lookupBackend,
		Metrics:            server.metrics,
	}

	httpServer, err := http.NewServer(&httpServerReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP server: %w", err)
	}
	server.httpServer = httpServer

	return &server, nil
}

func (s *Server) setupStateDefaultObjects() error {

	stateResp, err := s.state.Namespaces().Get(&state.NamespacesGetReq{Name: state.DefaultNamespace})
	if err != nil && err.StatusCode() != 404 {
		return fmt.Errorf("failed to check for default namespace: %w", err)
	}
	if stateResp != nil {
		return nil
	}

	if _, err := s.state.Namespaces().Create(&state.NamespacesCreateReq{Namespace: &sharedstate.Namespace{
		ID:          state.DefaultNamespace,
		Description: "built-in namespace",
	}}); err != nil {
		return fmt.Errorf("failed to create default namespace: %w", err)
	}

	return nil
}

func (s *Server) Start() {
	s.httpServer.Start()
}

func (s *Server) Stop() {
	s.httpServer.Stop()
	_ = s.baseLogger.Sync()
}

func (s *Server) WaitForSignals() {

	signalCh := make(chan os.Signal, 3)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	// Wait to receive a signal. This blocks until we are notified.
	for {
		s.serverLogger.Debug("wait for signal handler started")

		sig := <-signalCh
		s.serverLogger.Info("received signal", zap.String("signal", sig.String()))

		// SIGHUP is accepted but config reloading is not supported, so the
		// server keeps running. Everything else means exit.
		switch sig {
		case syscall.SIGHUP:
		default:
			s.Stop()
			return
		}
	}
}
