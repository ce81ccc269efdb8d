package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/logger"
)

func newRouter(req *ServerReq) *chi.Mux {

	accessLogger := req.Logger.Named(logger.ComponentNameHTTPServer)

	r := chi.NewRouter()
	r.Use(loggerMiddleware(accessLogger, req.HTTPAccessLogLevel))
	r.Use(req.Metrics.Middleware)
	r.Use(languageMiddleware)
	r.Use(middleware.RequestSize(maxRequestBodyBytes))

	if req.Metrics != nil {
		r.Handle("/metrics", req.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Mount("/step-types", stepTypesEndpoint{
			registry: req.Registry,
			lookup:   req.Lookup,
		}.routes())
		r.Mount("/validate", validateEndpoint{
			registry: req.Registry,
			metrics:  req.Metrics,
		}.routes())
		r.Mount("/namespaces", namespacesEndpoint{
			state: req.State,
		}.routes())
		r.Mount("/steps", stepsEndpoint{
			state:    req.State,
			registry: req.Registry,
			lookup:   req.Lookup,
			metrics:  req.Metrics,
		}.routes())
	})

	return r
}
