package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/controller/state/dev"
	"github.com/hashicorp-forge/pipeline-steps/internal/helper"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/metrics"
	sharedstate "github.com/hashicorp-forge/pipeline-steps/internal/pkg/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/steps"
)

func testRouter(t *testing.T) *chi.Mux {
	t.Helper()

	stateStore := dev.New()
	_, errResp := stateStore.Namespaces().Create(&state.NamespacesCreateReq{
		Namespace: &sharedstate.Namespace{ID: state.DefaultNamespace},
	})
	require.Nil(t, errResp)

	return newRouter(&ServerReq{
		Logger:             zap.NewNop(),
		HTTPAccessLogLevel: zap.DebugLevel.String(),
		State:              stateStore,
		Registry:           steps.Registry(),
		Lookup: lookup.NewStatic([]*lookup.StaticOption{
			{Kind: "regions", Value: "us-east-1", Scope: map[string]string{"connectorRef": "aws_conn"}},
			{Kind: "regions", Value: "eu-west-1", Scope: map[string]string{"connectorRef": "aws_conn"}},
		}),
		Metrics: metrics.New(&metrics.Config{Enabled: helper.PointerOf(true), Namespace: "test"}),
	})
}

func do(t *testing.T, router http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func awsStep() map[string]any {
	return map[string]any{
		"identifier": "deploy_infra",
		"name":       "Deploy Infra",
		"type":       "SshWinRmAws",
		"spec": map[string]any{
			"connectorRef":       "aws_conn",
			"region":             "us-east-1",
			"credentialsRef":     "<+pipeline.variables.sshKey>",
			"hostConnectionType": "Hostname",
			"awsInstanceFilter": map[string]any{
				"vpcs": []any{},
				"tags": map[string]any{},
			},
			"allowSimultaneousDeployments": false,
		},
	}
}

func createStep(t *testing.T, router http.Handler, cfg map[string]any) map[string]any {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/v1/steps", map[string]any{"step": cfg})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode(t, rec)["step"].(map[string]any)
}

func TestStepTypes(t *testing.T) {
	router := testRouter(t)

	rec := do(t, router, http.MethodGet, "/v1/step-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	types := decode(t, rec)["step_types"].([]any)
	require.Len(t, types, 4)
	require.Equal(t, "FlagConfiguration", types[0].(map[string]any)["type"])

	rec = do(t, router, http.MethodGet, "/v1/step-types/SshWinRmAws", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	require.Equal(t, "AWS SSH/WinRM Infrastructure", resp["step_type"].(map[string]any)["name"])
	require.NotEmpty(t, resp["form"].(map[string]any)["fields"])

	rec = do(t, router, http.MethodGet, "/v1/step-types/Nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidate(t *testing.T) {
	router := testRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/validate", map[string]any{"step": awsStep()})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["valid"])

	cfg := awsStep()
	cfg["name"] = ""
	spec := cfg["spec"].(map[string]any)
	spec["connectorRef"] = "<+input>"
	spec["awsInstanceFilter"].(map[string]any)["tags"] = map[string]any{"env": "prod"}

	rec = do(t, router, http.MethodPost, "/v1/validate", map[string]any{"step": cfg})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode(t, rec)
	require.Equal(t, false, resp["valid"])
	errs := resp["errors"].(map[string]any)
	require.Equal(t, "Name is required", errs["name"])
	require.Contains(t, errs, "spec.awsInstanceFilter.tags")

	rec = do(t, router, http.MethodPost, "/v1/validate", map[string]any{"step": cfg}, "Accept-Language", "de-DE,de;q=0.9")
	require.Equal(t, "Name ist erforderlich", decode(t, rec)["errors"].(map[string]any)["name"])

	rec = do(t, router, http.MethodPost, "/v1/validate", map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidate_InputSet(t *testing.T) {
	router := testRouter(t)

	tpl := awsStep()
	tpl["spec"].(map[string]any)["region"] = "<+input>.allowedValues(us-east-1,eu-west-1)"

	rec := do(t, router, http.MethodPost, "/v1/validate", map[string]any{
		"template": tpl,
		"step":     map[string]any{"spec": map[string]any{"region": "eu-west-1"}},
	})
	require.Equal(t, true, decode(t, rec)["valid"])

	rec = do(t, router, http.MethodPost, "/v1/validate", map[string]any{
		"template": tpl,
		"step":     map[string]any{"spec": map[string]any{"region": "ap-south-1"}},
	})
	resp := decode(t, rec)
	require.Equal(t, false, resp["valid"])
	require.Contains(t, resp["errors"], "spec.region")
}

func TestNamespaces(t *testing.T) {
	router := testRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/namespaces", map[string]any{
		"namespace": map[string]any{"id": "platform", "description": "platform team"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/namespaces", map[string]any{
		"namespace": map[string]any{"id": "platform"},
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, float64(409), decode(t, rec)["error"].(map[string]any)["code"])

	rec = do(t, router, http.MethodGet, "/v1/namespaces", nil)
	require.Len(t, decode(t, rec)["namespaces"], 2)

	rec = do(t, router, http.MethodGet, "/v1/namespaces/platform", nil)
	require.Equal(t, "platform team", decode(t, rec)["namespace"].(map[string]any)["description"])

	rec = do(t, router, http.MethodDelete, "/v1/namespaces/default", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodDelete, "/v1/namespaces/platform", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/namespaces/platform", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSteps_CRUD(t *testing.T) {
	router := testRouter(t)

	created := createStep(t, router, awsStep())
	require.Equal(t, "deploy_infra", created["id"])
	require.Equal(t, "default", created["namespace"])
	revision := created["revision"].(string)

	rec := do(t, router, http.MethodPost, "/v1/steps", map[string]any{"step": awsStep()})
	require.Equal(t, http.StatusConflict, rec.Code)

	invalid := awsStep()
	invalid["identifier"] = "1bad"
	rec = do(t, router, http.MethodPost, "/v1/steps", map[string]any{"step": invalid})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode(t, rec)["errors"], "identifier")

	rec = do(t, router, http.MethodPost, "/v1/steps?namespace=missing", map[string]any{"step": awsStep()})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/steps", nil)
	list := decode(t, rec)["steps"].([]any)
	require.Len(t, list, 1)
	require.Equal(t, "Deploy Infra", list[0].(map[string]any)["name"])

	rec = do(t, router, http.MethodGet, "/v1/steps?namespace=*", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	updated := awsStep()
	updated["name"] = "Deploy Infra Again"
	rec = do(t, router, http.MethodPut, "/v1/steps/deploy_infra", map[string]any{"step": updated, "revision": revision})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPut, "/v1/steps/deploy_infra", map[string]any{"step": updated, "revision": revision})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, router, http.MethodPut, "/v1/steps/other", map[string]any{"step": updated})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/steps/deploy_infra", nil)
	require.Equal(t, "Deploy Infra Again", decode(t, rec)["step"].(map[string]any)["config"].(map[string]any)["name"])

	rec = do(t, router, http.MethodGet, "/v1/steps/deploy_infra?namespace=*", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode(t, rec)["error"].(map[string]any)["message"], "can only be used to list steps")

	rec = do(t, router, http.MethodDelete, "/v1/steps/deploy_infra", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/steps/deploy_infra", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSteps_Form(t *testing.T) {
	router := testRouter(t)

	cfg := awsStep()
	cfg["spec"].(map[string]any)["region"] = "<+input>"
	createStep(t, router, cfg)

	rec := do(t, router, http.MethodGet, "/v1/steps/deploy_infra/form", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	frm := decode(t, rec)["form"].(map[string]any)
	require.Equal(t, "edit", frm["view"])

	rec = do(t, router, http.MethodGet, "/v1/steps/deploy_infra/form?view=input-set", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fields := decode(t, rec)["form"].(map[string]any)["fields"].([]any)
	require.Len(t, fields, 1)

	region := fields[0].(map[string]any)
	require.Equal(t, "spec.region", region["path"])
	require.Len(t, region["options"], 2)

	rec = do(t, router, http.MethodGet, "/v1/steps/deploy_infra/form?view=variables", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, decode(t, rec)["form"].(map[string]any)["variables"])

	rec = do(t, router, http.MethodGet, "/v1/steps/deploy_infra/form?view=wizard", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSteps_Field(t *testing.T) {
	router := testRouter(t)
	createStep(t, router, awsStep())

	rec := do(t, router, http.MethodPatch, "/v1/steps/deploy_infra/field", map[string]any{
		"path":  "spec.connectorRef",
		"value": "<+input>",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode(t, rec)
	resets := resp["resets"].([]any)
	require.NotEmpty(t, resets)
	require.Equal(t, "spec.region", resets[0].(map[string]any)["path"])
	require.Equal(t, "RUNTIME", resets[0].(map[string]any)["to"])

	spec := resp["step"].(map[string]any)["config"].(map[string]any)["spec"].(map[string]any)
	require.Equal(t, "<+input>", spec["connectorRef"])
	require.Equal(t, "<+input>", spec["region"])

	rec = do(t, router, http.MethodPatch, "/v1/steps/deploy_infra/field", map[string]any{
		"path":  "type",
		"value": "FlagConfiguration",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPatch, "/v1/steps/deploy_infra/field", map[string]any{
		"path":  "spec..region",
		"value": "x",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPatch, "/v1/steps/deploy_infra/field", map[string]any{
		"path":  "spec.awsInstanceFilter.vpcs[2000000000]",
		"value": "vpc-1",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/v1/steps/deploy_infra", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	filter := decode(t, rec)["step"].(map[string]any)["config"].(map[string]any)["spec"].(map[string]any)["awsInstanceFilter"].(map[string]any)
	require.Empty(t, filter["vpcs"])
}

func TestRequestBodyLimit(t *testing.T) {
	router := testRouter(t)

	cfg := awsStep()
	cfg["name"] = strings.Repeat("a", maxRequestBodyBytes)

	rec := do(t, router, http.MethodPost, "/v1/validate", map[string]any{"step": cfg})
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/v1/steps", map[string]any{"step": cfg})
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = do(t, router, http.MethodGet, "/v1/steps/deploy_infra", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSteps_TemplateAndInputSet(t *testing.T) {
	router := testRouter(t)

	cfg := awsStep()
	cfg["spec"].(map[string]any)["region"] = "<+input>"
	createStep(t, router, cfg)

	rec := do(t, router, http.MethodGet, "/v1/steps/deploy_infra/template", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	require.Equal(t, []any{"spec.region"}, resp["runtime_paths"])
	require.Equal(t, "deploy_infra", resp["template"].(map[string]any)["identifier"])

	rec = do(t, router, http.MethodPost, "/v1/steps/deploy_infra/input-set", map[string]any{
		"inputs": map[string]any{"spec": map[string]any{"region": "eu-west-1"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	merged := decode(t, rec)["step"].(map[string]any)
	require.Equal(t, "eu-west-1", merged["spec"].(map[string]any)["region"])

	rec = do(t, router, http.MethodPost, "/v1/steps/deploy_infra/input-set", map[string]any{
		"inputs": map[string]any{"spec": map[string]any{"connectorRef": "other"}},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode(t, rec)["errors"].(map[string]any)
	require.Contains(t, errs, "spec.connectorRef")
	require.Contains(t, errs, "spec.region")
}

func TestSteps_Resolve(t *testing.T) {
	router := testRouter(t)
	createStep(t, router, awsStep())

	rec := do(t, router, http.MethodPost, "/v1/steps/deploy_infra/resolve", map[string]any{
		"pipeline": map[string]any{
			"identifier": "release",
			"variables":  map[string]any{"sshKey": "prod_key"},
		},
		"strict": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	spec := decode(t, rec)["step"].(map[string]any)["spec"].(map[string]any)
	require.Equal(t, "prod_key", spec["credentialsRef"])

	rec = do(t, router, http.MethodPost, "/v1/steps/deploy_infra/resolve", map[string]any{"strict": true})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, decode(t, rec)["errors"], "spec.credentialsRef")

	rec = do(t, router, http.MethodPost, "/v1/steps/deploy_infra/resolve", map[string]any{})
	require.Equal(t, http.StatusOK, rec.Code)
	spec = decode(t, rec)["step"].(map[string]any)["spec"].(map[string]any)
	require.Equal(t, "<+pipeline.variables.sshKey>", spec["credentialsRef"])
}

func TestMetrics(t *testing.T) {
	router := testRouter(t)

	do(t, router, http.MethodPost, "/v1/validate", map[string]any{"step": awsStep()})

	rec := do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	require.True(t, strings.Contains(body, `test_validations_total{outcome="valid",step_type="SshWinRmAws"} 1`), body)
	require.Contains(t, body, `route="/v1/validate`)
}
