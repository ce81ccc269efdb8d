package ssca

import (
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/dispatch"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
)

const EnforcementType = "SscaEnforcement"

// PolicyStoreHarness is the only supported policy store.
const PolicyStoreHarness = "Harness"

var (
	PathPublicKey       = step.SpecPath("verifySign.publicKey")
	PathPolicyStoreType = step.SpecPath("policy.store.type")
	PathPolicyFile      = step.SpecPath("policy.store.spec.file")
)

type Enforcement struct {
	sources *dispatch.Table[dispatch.Section]
}

func NewEnforcement() *Enforcement {
	return &Enforcement{sources: sourceSections()}
}

func (*Enforcement) Type() string          { return EnforcementType }
func (*Enforcement) Name() string          { return "steps.sscaEnforcement" }
func (*Enforcement) Icon() string          { return "sbom-enforcement" }
func (*Enforcement) Category() string      { return step.CategorySupplyChain }
func (*Enforcement) RequiresTimeout() bool { return true }

func (*Enforcement) Defaults() step.Config {
	return step.Config{
		"identifier": "",
		"name":       "",
		"type":       EnforcementType,
		"timeout":    "",
		"spec": map[string]any{
			"source": map[string]any{
				"type": SourceImage,
				"spec": map[string]any{"connector": "", "image": ""},
			},
			"verifySign": map[string]any{"publicKey": ""},
			"policy": map[string]any{
				"store": map[string]any{
					"type": PolicyStoreHarness,
					"spec": map[string]any{"file": ""},
				},
			},
		},
	}
}

func (e *Enforcement) Fields(cfg step.Config) []form.FieldSpec {
	fields := sectionFields(cfg, e.sources, PathSource, "common.sourceType")

	fields = append(fields,
		form.FieldSpec{
			Path:     PathPublicKey,
			Label:    "common.publicKey",
			Kind:     form.KindSecret,
			Required: true,
			Lookup:   string(lookup.KindSecrets),
		},
		form.FieldSpec{
			Path:     PathPolicyStoreType,
			Label:    "common.policyStore",
			Kind:     form.KindSelect,
			Required: true,
			Options:  []string{PolicyStoreHarness},
		},
		form.FieldSpec{
			Path:     PathPolicyFile,
			Label:    "common.policyFile",
			Kind:     form.KindText,
			Required: true,
		},
	)

	return append(fields, resourceFields()...)
}

func (e *Enforcement) Schema(getString i18n.GetString) validate.Schema {
	return validate.SchemaFunc(func(doc map[string]any, _ string, errs *validate.Errors) {
		c := validate.NewChecker(doc, errs, getString)

		checkType(c, e.sources, PathSource, "common.sourceType")
		c.Required(PathPublicKey, "common.publicKey")

		if c.Required(PathPolicyStoreType, "common.policyStore") {
			c.OneOf(PathPolicyStoreType, "common.policyStore", PolicyStoreHarness)
		}
		c.Required(PathPolicyFile, "common.policyFile")

		checkResources(c)
	})
}
