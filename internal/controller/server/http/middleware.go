package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
)

func loggerMiddleware(logger *zap.Logger, accessLevel string) func(next http.Handler) http.Handler {

	var accessLoggerFn func(msg string, fields ...zap.Field)

	switch accessLevel {
	case zap.DebugLevel.String(), "":
		accessLoggerFn = logger.Debug
	case zap.InfoLevel.String():
		accessLoggerFn = logger.Info
	default:
		panic(fmt.Sprintf("unsupported access log level: %q", accessLevel))
	}

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			startTime := time.Now()

			defer func() {

				// A panicking handler still gets an access log line after
				// its 500.
				if rec := recover(); rec != nil {
					logger.Error("panic during handling of HTTP request", zap.Reflect("recover_info", rec))
					http.Error(ww, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}

				accessLoggerFn("successfully handled HTTP request",
					zap.String("remote_address", r.RemoteAddr),
					zap.String("path", r.URL.Path),
					zap.String("route", routePattern(r)),
					zap.String("namespace", r.URL.Query().Get(namespaceQueryParam)),
					zap.String("proto", r.Proto),
					zap.String("method", r.Method),
					zap.String("user_agent", r.Header.Get("User-Agent")),
					zap.Int("status", ww.Status()),
					zap.Int64("latency_ns", time.Since(startTime).Nanoseconds()),
					zap.Int("content_in_bytes", contentInBytes(r.Header)),
					zap.Int("content_out_bytes", ww.BytesWritten()))
			}()

			next.ServeHTTP(ww, r)

		}
		return http.HandlerFunc(fn)
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}

func contentInBytes(header http.Header) int {
	if i, err := strconv.Atoi(header.Get("Content-Length")); err != nil {
		return 0
	} else {
		return i
	}
}

// languageMiddleware picks the message catalog for labels and validation
// messages from the Accept-Language header.
func languageMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gs := i18n.FromAcceptLanguage(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(withGetString(r.Context(), gs)))
	})
}

// namespaceCheckMiddleware answers 404 for steps requests scoped to a
// namespace that is not stored. allNamespaces passes through to the
// listing endpoint.
func namespaceCheckMiddleware(stateStore state.State) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ns := getNamespaceParam(r); ns != allNamespaces {
				if _, err := stateStore.Namespaces().Get(&state.NamespacesGetReq{Name: ns}); err != nil {
					httpWriteResponseError(w, NewResponseError(err.Err(), err.StatusCode()))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// namespaceWildcardRejectMiddleware guards the single-step routes. A step ID
// is only unique within one namespace, so allNamespaces cannot address it.
func namespaceWildcardRejectMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if getNamespaceParam(r) == allNamespaces {
				httpWriteResponseError(w, NewResponseError(
					fmt.Errorf("namespace %q can only be used to list steps", allNamespaces),
					http.StatusBadRequest))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
