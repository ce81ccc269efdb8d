package awsinfra

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/value"
)

func testConfig() step.Config {
	return step.Config{
		"identifier": "aws_infra",
		"name":       "AWS Infra",
		"type":       Type,
		"spec": map[string]any{
			"connectorRef":       "account.aws",
			"region":             "us-east-1",
			"credentialsRef":     "ssh_key",
			"hostConnectionType": "PrivateIP",
			"awsInstanceFilter": map[string]any{
				"vpcs": []any{"vpc-1"},
				"tags": map[string]any{"env": "prod"},
			},
			"allowSimultaneousDeployments": true,
		},
	}
}

func TestValidate(t *testing.T) {
	def := New()

	require.True(t, step.Validate(def, testConfig(), nil).Empty())

	cfg := testConfig()
	spec := cfg["spec"].(map[string]any)
	spec["credentialsRef"] = ""
	spec["hostConnectionType"] = "Telnet"
	spec["allowSimultaneousDeployments"] = "maybe"

	errs := step.Validate(def, cfg, nil)
	require.ElementsMatch(t, []string{
		PathCredentials,
		PathHostConnection,
		PathSimultaneous,
	}, errs.Paths())
	require.Equal(t, "Host Connection Type must be one of PublicIP, PrivateIP, Hostname", errs.Get(PathHostConnection))
}

func TestValidate_RuntimeDependencies(t *testing.T) {
	def := New()

	cfg := testConfig()
	spec := cfg["spec"].(map[string]any)
	spec["connectorRef"] = value.RuntimeInputSentinel
	spec["region"] = value.RuntimeInputSentinel

	errs := step.Validate(def, cfg, nil)
	require.Equal(t, "Tags cannot be fixed unless Connector, Region are fixed", errs.Get(PathTags))
	require.True(t, errs.Has(PathVPCs))

	// Once the filters follow they are accepted.
	_, err := step.ApplyChange(def, cfg, PathRegion, value.RuntimeInputSentinel)
	require.NoError(t, err)
	require.Equal(t, value.RuntimeInputSentinel, step.ValueAt(cfg, PathTags).Raw())
	require.True(t, step.Validate(def, cfg, nil).Empty())
}

func TestApplyChange_ConnectorRuntime(t *testing.T) {
	def := New()
	cfg := testConfig()

	resets, err := step.ApplyChange(def, cfg, PathConnector, value.RuntimeInputSentinel)
	require.NoError(t, err)
	require.Equal(t, []value.Reset{
		{Path: PathRegion, From: value.InputTypeFixed, To: value.InputTypeRuntime},
		{Path: PathVPCs, From: value.InputTypeFixed, To: value.InputTypeRuntime},
		{Path: PathTags, From: value.InputTypeFixed, To: value.InputTypeRuntime},
	}, resets)
}

func TestRender_InputSet(t *testing.T) {
	def := New()

	tpl := testConfig()
	spec := tpl["spec"].(map[string]any)
	spec["connectorRef"] = value.RuntimeInputSentinel
	spec["region"] = value.RuntimeInputSentinel

	var requests []*lookup.Request
	lk := lookup.Func(func(_ context.Context, req *lookup.Request) ([]form.Option, error) {
		requests = append(requests, req)
		return form.StaticOptions("a", "b"), nil
	})

	frm, err := step.Render(context.Background(), def, &step.RenderRequest{
		View:     form.ViewInputSet,
		Template: tpl,
		Lookup:   lk,
	})
	require.NoError(t, err)

	var paths []string
	for _, f := range frm.Fields {
		paths = append(paths, f.Path)
	}
	require.Equal(t, []string{PathConnector, PathRegion}, paths)

	region, _ := frm.Field(PathRegion)
	require.True(t, region.Disabled)
	require.Equal(t, []value.InputType{value.InputTypeFixed, value.InputTypeExpression}, region.AllowedTypes)
	require.Len(t, requests, 1)

	// Entering the connector enables the region lookup.
	requests = nil
	frm, err = step.Render(context.Background(), def, &step.RenderRequest{
		View:     form.ViewInputSet,
		Template: tpl,
		Config:   step.Config{"spec": map[string]any{"connectorRef": "account.aws"}},
		Lookup:   lk,
	})
	require.NoError(t, err)

	region, _ = frm.Field(PathRegion)
	require.False(t, region.Disabled)
	require.Len(t, region.Options, 2)
	require.Len(t, requests, 2)
	require.Equal(t, map[string]string{"connectorRef": "account.aws"}, requests[1].Scope)
}
