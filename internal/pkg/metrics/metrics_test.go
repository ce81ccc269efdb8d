package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/pipeline-steps/internal/helper"
)

func TestConfig_Merge(t *testing.T) {
	cfg := DefaultConfig().Merge(&Config{Enabled: helper.PointerOf(false)})
	require.False(t, *cfg.Enabled)
	require.Equal(t, "pipeline_steps", cfg.Namespace)

	require.Nil(t, New(cfg))
}

func TestMetrics_Middleware(t *testing.T) {
	m := New(DefaultConfig())

	router := chi.NewRouter()
	router.Use(m.Middleware)
	router.Get("/v1/steps/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	router.Get("/ok", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/v1/steps/a", "/v1/steps/b", "/ok"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/v1/steps/{id}", "4xx")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/ok", "2xx")))
}

func TestMetrics_Validation(t *testing.T) {
	m := New(DefaultConfig())

	m.ObserveValidation("SshWinRmAws", true)
	m.ObserveValidation("SshWinRmAws", false)
	m.ObserveValidation("SshWinRmAws", false)

	require.Equal(t, 2.0, testutil.ToFloat64(m.validations.WithLabelValues("SshWinRmAws", OutcomeInvalid)))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "pipeline_steps_validations_total"))
}

func TestMetrics_Nil(t *testing.T) {
	var m *Metrics

	m.ObserveValidation("x", true)
	require.Nil(t, m.Registry())

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	require.NotNil(t, m.Middleware(next))
}
