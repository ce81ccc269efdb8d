// Package ssca defines the software supply chain steps: SBOM orchestration,
// which generates or ingests an SBOM for an artifact, and SBOM policy
// enforcement.
package ssca

import (
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/dispatch"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
)

const OrchestrationType = "SscaOrchestration"

// Orchestration modes.
const (
	ModeGeneration = "generation"
	ModeIngestion  = "ingestion"
)

var Modes = []string{ModeGeneration, ModeIngestion}

var (
	PathMode          = step.SpecPath("mode")
	PathIngestionFile = step.SpecPath("ingestion.file")
)

type Orchestration struct {
	sources      *dispatch.Table[dispatch.Section]
	tools        *dispatch.Table[dispatch.Section]
	attestations *dispatch.Table[dispatch.Section]
}

func NewOrchestration() *Orchestration {
	return &Orchestration{
		sources:      sourceSections(),
		tools:        toolSections(),
		attestations: attestationSections(),
	}
}

func (*Orchestration) Type() string          { return OrchestrationType }
func (*Orchestration) Name() string          { return "steps.sscaOrchestration" }
func (*Orchestration) Icon() string          { return "sbom-orchestration" }
func (*Orchestration) Category() string      { return step.CategorySupplyChain }
func (*Orchestration) RequiresTimeout() bool { return true }

func (*Orchestration) Defaults() step.Config {
	return step.Config{
		"identifier": "",
		"name":       "",
		"type":       OrchestrationType,
		"timeout":    "",
		"spec": map[string]any{
			"mode": ModeGeneration,
			"source": map[string]any{
				"type": SourceImage,
				"spec": map[string]any{"connector": "", "image": ""},
			},
			"tool": map[string]any{
				"type": ToolSyft,
				"spec": map[string]any{"format": FormatSPDX},
			},
			"attestation": map[string]any{
				"type": AttestationCosign,
				"spec": map[string]any{"privateKey": "", "password": ""},
			},
		},
	}
}

func mode(cfg step.Config) string {
	s, _ := step.ValueAt(cfg, PathMode).Raw().(string)
	return s
}

func (o *Orchestration) Fields(cfg step.Config) []form.FieldSpec {
	fields := []form.FieldSpec{{
		Path:     PathMode,
		Label:    "common.mode",
		Kind:     form.KindSelect,
		Required: true,
		Options:  Modes,
	}}

	fields = append(fields, sectionFields(cfg, o.sources, PathSource, "common.sourceType")...)

	if mode(cfg) == ModeIngestion {
		fields = append(fields, form.FieldSpec{
			Path:     PathIngestionFile,
			Label:    "common.ingestionFile",
			Kind:     form.KindText,
			Required: true,
		})
	} else {
		fields = append(fields, sectionFields(cfg, o.tools, PathTool, "common.tool")...)
	}

	fields = append(fields, sectionFields(cfg, o.attestations, PathAttestation, "common.attestationType")...)

	return append(fields, resourceFields()...)
}

func (o *Orchestration) Schema(getString i18n.GetString) validate.Schema {
	return validate.SchemaFunc(func(doc map[string]any, _ string, errs *validate.Errors) {
		c := validate.NewChecker(doc, errs, getString)

		if c.Required(PathMode, "common.mode") {
			c.OneOf(PathMode, "common.mode", Modes...)
		}

		checkType(c, o.sources, PathSource, "common.sourceType")

		switch mode(doc) {
		case ModeIngestion:
			c.Required(PathIngestionFile, "common.ingestionFile")
		case ModeGeneration:
			checkType(c, o.tools, PathTool, "common.tool")
		}

		checkType(c, o.attestations, PathAttestation, "common.attestationType")
		checkResources(c)
	})
}
