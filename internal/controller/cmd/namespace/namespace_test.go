package namespace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func testClient(t *testing.T, router http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	cfg := api.DefaultConfig()
	cfg.Address = srv.URL
	return api.NewClient(cfg)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func Test_emptyNamespace(t *testing.T) {
	var deleted []string

	router := chi.NewRouter()
	router.Get("/v1/steps", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "platform", r.URL.Query().Get("namespace"))
		writeJSON(w, http.StatusOK, map[string]any{
			"steps": []map[string]any{
				{"id": "aws", "namespace": "platform", "type": "SshWinRmAws"},
				{"id": "flags", "namespace": "platform", "type": "FlagConfiguration"},
				{"id": "locked", "namespace": "platform", "type": "SscaEnforcement"},
			},
		})
	})
	router.Delete("/v1/steps/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "platform", r.URL.Query().Get("namespace"))
		id := chi.URLParam(r, "id")
		if id == "locked" {
			writeJSON(w, http.StatusConflict, map[string]any{
				"error": map[string]any{"message": "step is locked", "code": http.StatusConflict},
			})
			return
		}
		deleted = append(deleted, id)
		w.WriteHeader(http.StatusNoContent)
	})

	removed, err := emptyNamespace(context.Background(), testClient(t, router), "platform")
	require.ErrorContains(t, err, `failed to delete step "locked"`)
	require.ErrorContains(t, err, "step is locked")
	require.Equal(t, []string{"aws", "flags"}, removed)
	require.Equal(t, []string{"aws", "flags"}, deleted)
}

func Test_emptyNamespace_ListError(t *testing.T) {
	router := chi.NewRouter()
	router.Get("/v1/steps", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]any{"message": "namespace not found", "code": http.StatusNotFound},
		})
	})

	removed, err := emptyNamespace(context.Background(), testClient(t, router), "missing")
	require.ErrorContains(t, err, "namespace not found")
	require.Empty(t, removed)
}
