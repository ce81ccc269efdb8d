package inputset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/steps/awsinfra"
)

func template() step.Config {
	return step.Config{
		"identifier": "aws_infra",
		"name":       "AWS Infra",
		"type":       awsinfra.Type,
		"spec": map[string]any{
			"connectorRef":       "<+input>",
			"region":             "<+input>.allowedValues(us-east-1,eu-west-1)",
			"credentialsRef":     "ssh_key",
			"hostConnectionType": "<+input>.default(Hostname)",
			"awsInstanceFilter": map[string]any{
				"vpcs": "<+input>",
				"tags": map[string]any{},
			},
			"allowSimultaneousDeployments": false,
		},
	}
}

func TestRuntimePaths(t *testing.T) {
	require.Equal(t, []string{
		"spec.awsInstanceFilter.vpcs",
		"spec.connectorRef",
		"spec.hostConnectionType",
		"spec.region",
	}, RuntimePaths(template()))

	require.Empty(t, RuntimePaths(step.Config{"name": "x"}))
}

func TestTemplate(t *testing.T) {
	require.Equal(t, step.Config{
		"identifier": "aws_infra",
		"type":       awsinfra.Type,
		"spec": map[string]any{
			"connectorRef":       "<+input>",
			"region":             "<+input>.allowedValues(us-east-1,eu-west-1)",
			"hostConnectionType": "<+input>.default(Hostname)",
			"awsInstanceFilter": map[string]any{
				"vpcs": "<+input>",
			},
		},
	}, Template(template()))
}

func TestMerge(t *testing.T) {
	tpl := template()

	merged, errs := Merge(tpl, step.Config{
		"identifier": "aws_infra",
		"spec": map[string]any{
			"connectorRef": "account.aws",
			"region":       "eu-west-1",
			"awsInstanceFilter": map[string]any{
				"vpcs": []any{"vpc-1", "vpc-2"},
			},
		},
	}, nil)
	require.True(t, errs.Empty(), errs.Map())

	require.Equal(t, "account.aws", step.ValueAt(merged, "spec.connectorRef").Raw())
	require.Equal(t, "Hostname", step.ValueAt(merged, "spec.hostConnectionType").Raw())
	require.Equal(t, []any{"vpc-1", "vpc-2"}, step.ValueAt(merged, "spec.awsInstanceFilter.vpcs").Raw())

	// The template is left untouched.
	require.Equal(t, "<+input>", step.ValueAt(tpl, "spec.connectorRef").Raw())
}

func TestMerge_Errors(t *testing.T) {
	_, errs := Merge(template(), step.Config{
		"identifier": "renamed",
		"spec": map[string]any{
			"region":         "ap-south-1",
			"credentialsRef": "other",
			"awsInstanceFilter": map[string]any{
				"vpcs": "<+input>",
			},
		},
	}, nil)

	require.ElementsMatch(t, []string{
		"identifier",
		"spec.credentialsRef",
		"spec.connectorRef",
		"spec.region",
		"spec.awsInstanceFilter.vpcs",
	}, errs.Paths())
	require.Equal(t, "spec.connectorRef is required", errs.Get("spec.connectorRef"))
	require.Equal(t, "spec.credentialsRef is not a runtime input of this step", errs.Get("spec.credentialsRef"))
}

func TestMerge_Expression(t *testing.T) {
	merged, errs := Merge(template(), step.Config{
		"spec": map[string]any{
			"connectorRef": "<+pipeline.variables.connector>",
			"region":       "<+pipeline.variables.region>",
			"awsInstanceFilter": map[string]any{
				"vpcs": []any{},
			},
		},
	}, nil)
	require.True(t, errs.Empty(), errs.Map())
	require.Equal(t, "<+pipeline.variables.region>", step.ValueAt(merged, "spec.region").Raw())
}

func TestValidate(t *testing.T) {
	def := awsinfra.New()

	errs := Validate(def, template(), step.Config{
		"spec": map[string]any{
			"connectorRef":       "account.aws",
			"region":             "us-east-1",
			"hostConnectionType": "Telnet",
			"awsInstanceFilter": map[string]any{
				"vpcs": []any{"vpc-1", ""},
			},
		},
	}, nil)

	require.ElementsMatch(t, []string{
		"spec.hostConnectionType",
		"spec.awsInstanceFilter.vpcs[1]",
	}, errs.Paths())
}
