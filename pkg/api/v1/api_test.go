package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.Address = srv.URL
	cfg.Namespace = "platform"
	cfg.Language = "de"
	return NewClient(cfg)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func TestSteps_Create(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/steps", r.URL.Path)
		assert.Equal(t, "platform", r.URL.Query().Get("namespace"))
		assert.Equal(t, "de", r.Header.Get("Accept-Language"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		step := body["step"].(map[string]any)

		writeJSON(w, http.StatusCreated, map[string]any{
			"step": map[string]any{
				"id":        step["identifier"],
				"namespace": "platform",
				"config":    step,
				"revision":  "01J9Z3N7QG6W2X7Y8Z9A0B1C2D",
			},
		})
	})

	resp, httpResp, err := client.Steps().Create(context.Background(), &StepCreateReq{
		Step: Step{"identifier": "flags", "type": "FlagConfiguration"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, httpResp.StatusCode)
	require.Equal(t, "flags", resp.Step.ID)
	require.Equal(t, "FlagConfiguration", resp.Step.Config["type"])
}

func TestSteps_ValidationError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "*", r.URL.Query().Get("namespace"))
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  map[string]any{"message": "validation failed", "code": 400},
			"errors": map[string]string{"name": "Name is required", "identifier": "Identifier is required"},
		})
	})

	_, httpResp, err := client.Steps().List(context.Background(), &StepListReq{Namespace: "*"})
	require.Error(t, err)
	require.Equal(t, http.StatusBadRequest, httpResp.StatusCode)

	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	require.Equal(t, 400, respErr.StatusCode())
	require.Equal(t, "validation failed: identifier: Identifier is required; name: Name is required", respErr.Error())
}

func TestClient_PlainTextError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, _, err := client.StepTypes().List(context.Background())

	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	require.Equal(t, 500, respErr.StatusCode())
	require.Equal(t, "boom", respErr.Error())
}

func TestSteps_Form(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/steps/aws/form", r.URL.Path)
		assert.Equal(t, "input-set", r.URL.Query().Get("view"))
		writeJSON(w, http.StatusOK, map[string]any{
			"form": map[string]any{
				"view":   "input-set",
				"fields": []any{map[string]any{"path": "spec.region", "input_type": "FIXED"}},
			},
		})
	})

	resp, _, err := client.Steps().Form(context.Background(), &StepFormReq{ID: "aws", View: "input-set"})
	require.NoError(t, err)
	require.Len(t, resp.Form.Fields, 1)
	require.Equal(t, "spec.region", resp.Form.Fields[0].Path)
}

func TestSteps_UpdateRequiresIdentifier(t *testing.T) {
	client := NewClient(nil)
	_, _, err := client.Steps().Update(context.Background(), &StepUpdateReq{Step: Step{}})
	require.Error(t, err)
}

func TestParseStepFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "step.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
step:
  identifier: rollout
  name: Rollout
  type: FlagConfiguration
  timeout: 10m
  spec:
    environment: prod
    feature: checkout
    instructions:
      - type: AddRule
        spec:
          priority: 1
          distribution:
            variations:
              - variation: "on"
                weight: 50
`), 0o644))

	step, err := ParseStepFile(yamlPath)
	require.NoError(t, err)
	require.Equal(t, "rollout", step["identifier"])

	instr := step["spec"].(map[string]any)["instructions"].([]any)[0].(map[string]any)
	variations := instr["spec"].(map[string]any)["distribution"].(map[string]any)["variations"].([]any)
	require.Equal(t, float64(50), variations[0].(map[string]any)["weight"])

	jsonPath := filepath.Join(dir, "step.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"identifier":"aws","type":"SshWinRmAws"}`), 0o644))

	step, err = ParseStepFile(jsonPath)
	require.NoError(t, err)
	require.Equal(t, "SshWinRmAws", step["type"])

	_, err = ParseStepFile(filepath.Join(dir, "step.hcl"))
	require.Error(t, err)

	_, err = ParseStep([]byte(""))
	require.Error(t, err)
}
