package context

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testContext() *Context {
	ctx := New(&PipelineContext{
		Identifier: "deploy_prod",
		Name:       "Deploy Prod",
		SequenceID: 42,
		Variables: map[string]any{
			"region":  "eu-west-1",
			"vpcs":    []any{"vpc-1", "vpc-2"},
			"enabled": true,
		},
	}, map[string]any{"env": map[string]any{"name": "production"}})

	return ctx.ForStep(map[string]any{
		"identifier": "aws_infra",
		"name":       "AWS Infra",
		"type":       "SshWinRmAws",
	})
}

func TestContext_AsMap(t *testing.T) {
	m := testContext().AsMap()

	require.Equal(t, map[string]any{
		"identifier": "aws_infra",
		"name":       "AWS Infra",
		"type":       "SshWinRmAws",
	}, m["step"])
	require.Equal(t, 42, m["pipeline"].(map[string]any)["sequenceId"])
	require.Contains(t, m, "env")

	require.NotContains(t, New(nil, nil).AsMap(), "step")
}

func TestContext_Resolve(t *testing.T) {
	doc := map[string]any{
		"identifier": "aws_infra",
		"spec": map[string]any{
			"region":  "<+pipeline.variables.region>",
			"vpcs":    "<+pipeline.variables.vpcs>",
			"flag":    "<+pipeline.variables.enabled>",
			"label":   "run-<+pipeline.sequenceId>-<+step.identifier>",
			"env":     "<+env.name>",
			"creds":   "<+secrets.getValue(\"ssh_key\")>",
			"runtime": "<+input>",
			"missing": "<+pipeline.variables.nope>",
		},
	}

	out, errs := testContext().Resolve(doc, false, nil)
	require.True(t, errs.Empty(), errs.Map())

	spec := out["spec"].(map[string]any)
	require.Equal(t, "eu-west-1", spec["region"])
	require.Equal(t, []any{"vpc-1", "vpc-2"}, spec["vpcs"])
	require.Equal(t, true, spec["flag"])
	require.Equal(t, "run-42-aws_infra", spec["label"])
	require.Equal(t, "production", spec["env"])
	require.Equal(t, "<+secrets.getValue(\"ssh_key\")>", spec["creds"])
	require.Equal(t, "<+input>", spec["runtime"])
	require.Equal(t, "<+pipeline.variables.nope>", spec["missing"])

	// The input document is not modified.
	require.Equal(t, "<+pipeline.variables.region>", doc["spec"].(map[string]any)["region"])
}

func TestContext_ResolveStrict(t *testing.T) {
	_, errs := testContext().Resolve(map[string]any{
		"spec": map[string]any{
			"region":  "<+pipeline.variables.region>",
			"missing": "<+pipeline.variables.nope>",
		},
	}, true, nil)

	require.Equal(t, []string{"spec.missing"}, errs.Paths())
	require.Equal(t, "spec.missing references pipeline.variables.nope which is not available", errs.Get("spec.missing"))
}
