package ssca

import (
	"slices"
	"strings"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/dispatch"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/fieldpath"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
)

var (
	PathSource      = step.SpecPath("source")
	PathTool        = step.SpecPath("tool")
	PathAttestation = step.SpecPath("attestation")
	PathLimitMemory = step.SpecPath("resources.limits.memory")
	PathLimitCPU    = step.SpecPath("resources.limits.cpu")
)

// Source types.
const (
	SourceImage      = "image"
	SourceRepository = "repository"
)

// SBOM tools and formats.
const (
	ToolSyft   = "Syft"
	ToolCdxgen = "Cdxgen"

	FormatSPDX      = "spdx-json"
	FormatCycloneDX = "cyclonedx-json"
)

const AttestationCosign = "cosign"

// ToolFormats lists the SBOM formats each tool can produce.
var ToolFormats = map[string][]string{
	ToolSyft:   {FormatSPDX, FormatCycloneDX},
	ToolCdxgen: {FormatCycloneDX},
}

// typeField is the discriminator field of a section mounted at prefix.
func typeField(prefix, label string, options []string) form.FieldSpec {
	return form.FieldSpec{
		Path:     fieldpath.WithPrefix(prefix, "type"),
		Label:    label,
		Kind:     form.KindSelect,
		Required: true,
		Options:  options,
	}
}

// discriminator returns the fixed type string of the section at prefix.
func discriminator(cfg map[string]any, prefix string) string {
	raw, _ := fieldpath.Get(cfg, fieldpath.WithPrefix(prefix, "type"))
	s, _ := raw.(string)
	return s
}

// checkType validates the discriminator and then the selected section.
func checkType(c *validate.Checker, table *dispatch.Table[dispatch.Section], prefix, label string) {
	typePath := fieldpath.WithPrefix(prefix, "type")
	if !c.Required(typePath, label) {
		return
	}
	table.Select(discriminator(c.Doc, prefix)).SchemaFor(c.GetString).Validate(c.Doc, prefix, c.Errs)
}

func specOf(prefix, name string) string {
	return fieldpath.WithPrefix(prefix, fieldpath.WithPrefix("spec", name))
}

func sourceSections() *dispatch.Table[dispatch.Section] {
	return dispatch.NewSections().
		Register(SourceImage, dispatch.Section{
			Fields: func(prefix string) []form.FieldSpec {
				return []form.FieldSpec{
					{
						Path:     specOf(prefix, "connector"),
						Label:    "common.connector",
						Kind:     form.KindConnector,
						Required: true,
						Lookup:   string(lookup.KindConnectors),
					},
					{
						Path:     specOf(prefix, "image"),
						Label:    "common.image",
						Kind:     form.KindText,
						Required: true,
					},
				}
			},
			Schema: func(getString i18n.GetString) validate.Schema {
				return validate.SchemaFunc(func(doc map[string]any, prefix string, errs *validate.Errors) {
					c := validate.NewChecker(doc, errs, getString)
					c.Required(specOf(prefix, "connector"), "common.connector")
					c.Required(specOf(prefix, "image"), "common.image")
				})
			},
		}).
		Register(SourceRepository, dispatch.Section{
			Fields: func(prefix string) []form.FieldSpec {
				return []form.FieldSpec{
					{Path: specOf(prefix, "url"), Label: "common.repositoryURL", Kind: form.KindText, Required: true},
					{Path: specOf(prefix, "path"), Label: "common.repositoryPath", Kind: form.KindText, Required: true},
					{Path: specOf(prefix, "variant"), Label: "common.repositoryBranch", Kind: form.KindText, Required: true},
				}
			},
			Schema: func(getString i18n.GetString) validate.Schema {
				return validate.SchemaFunc(func(doc map[string]any, prefix string, errs *validate.Errors) {
					c := validate.NewChecker(doc, errs, getString)
					c.Required(specOf(prefix, "url"), "common.repositoryURL")
					c.Required(specOf(prefix, "path"), "common.repositoryPath")
					c.Required(specOf(prefix, "variant"), "common.repositoryBranch")
				})
			},
		})
}

func toolSection(tool string) dispatch.Section {
	formats := ToolFormats[tool]

	return dispatch.Section{
		Fields: func(prefix string) []form.FieldSpec {
			return []form.FieldSpec{{
				Path:     specOf(prefix, "format"),
				Label:    "common.format",
				Kind:     form.KindSelect,
				Required: true,
				Options:  formats,
			}}
		},
		Schema: func(getString i18n.GetString) validate.Schema {
			return validate.SchemaFunc(func(doc map[string]any, prefix string, errs *validate.Errors) {
				c := validate.NewChecker(doc, errs, getString)
				path := specOf(prefix, "format")
				if !c.Required(path, "common.format") {
					return
				}
				v := c.Value(path)
				if !v.IsFixed() {
					return
				}
				format := strings.TrimSpace(fieldpath.Format(v.Raw()))
				if !slices.Contains(formats, format) {
					errs.Add(path, getString("validation.formatForTool", getString("common.tool"), tool, format))
				}
			})
		},
	}
}

func toolSections() *dispatch.Table[dispatch.Section] {
	return dispatch.NewSections().
		Register(ToolSyft, toolSection(ToolSyft)).
		Register(ToolCdxgen, toolSection(ToolCdxgen))
}

func attestationSections() *dispatch.Table[dispatch.Section] {
	return dispatch.NewSections().
		Register(AttestationCosign, dispatch.Section{
			Fields: func(prefix string) []form.FieldSpec {
				return []form.FieldSpec{
					{
						Path:     specOf(prefix, "privateKey"),
						Label:    "common.privateKey",
						Kind:     form.KindSecret,
						Required: true,
						Lookup:   string(lookup.KindSecrets),
					},
					{
						Path:     specOf(prefix, "password"),
						Label:    "common.password",
						Kind:     form.KindSecret,
						Required: true,
						Lookup:   string(lookup.KindSecrets),
					},
				}
			},
			Schema: func(getString i18n.GetString) validate.Schema {
				return validate.SchemaFunc(func(doc map[string]any, prefix string, errs *validate.Errors) {
					c := validate.NewChecker(doc, errs, getString)
					c.Required(specOf(prefix, "privateKey"), "common.privateKey")
					c.Required(specOf(prefix, "password"), "common.password")
				})
			},
		})
}

func resourceFields() []form.FieldSpec {
	return []form.FieldSpec{
		{Path: PathLimitMemory, Label: "common.limitMemory", Kind: form.KindText},
		{Path: PathLimitCPU, Label: "common.limitCPU", Kind: form.KindText},
	}
}

func checkResources(c *validate.Checker) {
	c.Pattern(PathLimitMemory, "common.limitMemory", validate.MemoryRe, "500Mi or 2Gi")
	c.Pattern(PathLimitCPU, "common.limitCPU", validate.CPURe, "0.5 or 500m")
}

// sectionFields returns the discriminator field of a section followed by
// the fields of the selected entry.
func sectionFields(cfg step.Config, table *dispatch.Table[dispatch.Section], prefix, label string) []form.FieldSpec {
	fields := []form.FieldSpec{typeField(prefix, label, table.Keys())}
	return append(fields, table.Select(discriminator(cfg, prefix)).FieldsAt(prefix)...)
}
