// Package awsinfra defines the SshWinRmAws infrastructure step: SSH or
// WinRM deployment targets discovered from AWS instances.
package awsinfra

import (
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
)

const Type = "SshWinRmAws"

var (
	PathConnector      = step.SpecPath("connectorRef")
	PathRegion         = step.SpecPath("region")
	PathCredentials    = step.SpecPath("credentialsRef")
	PathHostConnection = step.SpecPath("hostConnectionType")
	PathVPCs           = step.SpecPath("awsInstanceFilter.vpcs")
	PathTags           = step.SpecPath("awsInstanceFilter.tags")
	PathSimultaneous   = step.SpecPath("allowSimultaneousDeployments")
)

// HostConnectionTypes are the address kinds used to reach instances.
var HostConnectionTypes = []string{"PublicIP", "PrivateIP", "Hostname"}

type Definition struct{}

func New() *Definition { return &Definition{} }

func (*Definition) Type() string          { return Type }
func (*Definition) Name() string          { return "steps.sshWinRmAws" }
func (*Definition) Icon() string          { return "service-aws" }
func (*Definition) Category() string      { return step.CategoryInfrastructure }
func (*Definition) RequiresTimeout() bool { return false }

func (*Definition) Defaults() step.Config {
	return step.Config{
		"identifier": "",
		"name":       "",
		"type":       Type,
		"spec": map[string]any{
			"connectorRef":       "",
			"region":             "",
			"credentialsRef":     "",
			"hostConnectionType": "Hostname",
			"awsInstanceFilter": map[string]any{
				"vpcs": []any{},
				"tags": map[string]any{},
			},
			"allowSimultaneousDeployments": false,
		},
	}
}

func (*Definition) Fields(step.Config) []form.FieldSpec {
	regionScope := map[string]string{"connectorRef": PathConnector}
	filterScope := map[string]string{"connectorRef": PathConnector, "region": PathRegion}

	return []form.FieldSpec{
		{
			Path:     PathConnector,
			Label:    "common.connector",
			Kind:     form.KindConnector,
			Required: true,
			Lookup:   string(lookup.KindConnectors),
		},
		{
			Path:      PathRegion,
			Label:     "common.region",
			Kind:      form.KindSelect,
			Required:  true,
			Lookup:    string(lookup.KindRegions),
			Scope:     regionScope,
			DependsOn: []string{PathConnector},
		},
		{
			Path:     PathCredentials,
			Label:    "common.credentials",
			Kind:     form.KindSecret,
			Required: true,
			Lookup:   string(lookup.KindSecrets),
		},
		{
			Path:     PathHostConnection,
			Label:    "common.hostConnection",
			Kind:     form.KindSelect,
			Required: true,
			Options:  HostConnectionTypes,
		},
		{
			Path:      PathVPCs,
			Label:     "common.vpcs",
			Kind:      form.KindMultiSelect,
			Lookup:    string(lookup.KindVPCs),
			Scope:     filterScope,
			DependsOn: []string{PathConnector, PathRegion},
		},
		{
			Path:      PathTags,
			Label:     "common.tags",
			Kind:      form.KindMap,
			Lookup:    string(lookup.KindTags),
			Scope:     filterScope,
			DependsOn: []string{PathConnector, PathRegion},
		},
		{
			Path:  PathSimultaneous,
			Label: "common.simultaneous",
			Kind:  form.KindBool,
		},
	}
}

func (*Definition) Schema(getString i18n.GetString) validate.Schema {
	return validate.SchemaFunc(func(doc map[string]any, _ string, errs *validate.Errors) {
		c := validate.NewChecker(doc, errs, getString)

		c.Required(PathConnector, "common.connector")
		c.Required(PathRegion, "common.region")
		c.Required(PathCredentials, "common.credentials")

		if c.Required(PathHostConnection, "common.hostConnection") {
			c.OneOf(PathHostConnection, "common.hostConnection", HostConnectionTypes...)
		}

		c.StringList(PathVPCs, "common.vpcs", 0)
		c.StringMap(PathTags, "common.tags")
		c.Bool(PathSimultaneous, "common.simultaneous")
	})
}
