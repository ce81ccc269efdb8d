// Package flagconfig defines the FlagConfiguration step, which applies an
// ordered list of changes to one feature flag in one environment.
package flagconfig

import (
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/dispatch"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/fieldpath"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/value"
)

const Type = "FlagConfiguration"

// DefaultTimeout is the timeout of a new flag configuration step.
const DefaultTimeout = "10m"

var (
	PathEnvironment  = step.SpecPath("environment")
	PathFeature      = step.SpecPath("feature")
	PathInstructions = step.SpecPath("instructions")
)

type Definition struct {
	flag         Flag
	instructions *dispatch.Table[Instruction]
}

func New() *Definition {
	return &Definition{
		flag:         Flag{Environment: PathEnvironment, Feature: PathFeature},
		instructions: Instructions(),
	}
}

func (*Definition) Type() string          { return Type }
func (*Definition) Name() string          { return "steps.flagConfiguration" }
func (*Definition) Icon() string          { return "feature-flag" }
func (*Definition) Category() string      { return step.CategoryFeatureFlags }
func (*Definition) RequiresTimeout() bool { return true }

func (*Definition) Defaults() step.Config {
	return step.Config{
		"identifier": "",
		"name":       "",
		"type":       Type,
		"timeout":    DefaultTimeout,
		"spec": map[string]any{
			"environment":  "",
			"feature":      "",
			"instructions": []any{},
		},
	}
}

// InstructionPrefix is the path of the i-th instruction.
func InstructionPrefix(i int) string { return fieldpath.Index(PathInstructions, i) }

// instructionList returns the instructions when they are a fixed list.
func instructionList(cfg step.Config) []any {
	raw, _ := fieldpath.Get(cfg, PathInstructions)
	list, _ := raw.([]any)
	return list
}

func instructionType(item any) string {
	m, _ := item.(map[string]any)
	t, _ := m["type"].(string)
	return t
}

func (d *Definition) Fields(cfg step.Config) []form.FieldSpec {
	fields := []form.FieldSpec{
		{
			Path:     PathEnvironment,
			Label:    "common.environment",
			Kind:     form.KindSelect,
			Required: true,
			Lookup:   string(lookup.KindEnvironments),
		},
		{
			Path:      PathFeature,
			Label:     "common.feature",
			Kind:      form.KindSelect,
			Required:  true,
			Lookup:    string(lookup.KindFeatures),
			Scope:     map[string]string{"environment": PathEnvironment},
			DependsOn: []string{PathEnvironment},
		},
		{
			Path:         PathInstructions,
			Label:        "common.instructions",
			Kind:         form.KindList,
			Required:     true,
			AllowedTypes: []value.InputType{value.InputTypeFixed, value.InputTypeRuntime},
		},
	}

	for i, item := range instructionList(cfg) {
		prefix := InstructionPrefix(i)
		in := d.instructions.Select(instructionType(item))

		fields = append(fields, form.FieldSpec{
			Path:         fieldpath.WithPrefix(prefix, "type"),
			Label:        in.Label,
			Kind:         form.KindSection,
			Required:     true,
			AllowedTypes: []value.InputType{value.InputTypeFixed},
			Options:      d.instructions.Keys(),
		})
		fields = append(fields, in.Section(d.flag).FieldsAt(prefix)...)
	}

	return fields
}

// Normalize stamps every recognized instruction with its type and the
// identifier derived from it.
func (d *Definition) Normalize(cfg step.Config) {
	for i, item := range instructionList(cfg) {
		t := instructionType(item)
		if _, ok := d.instructions.Lookup(t); !ok {
			continue
		}
		prefix := InstructionPrefix(i)
		_ = fieldpath.Set(cfg, fieldpath.WithPrefix(prefix, "identifier"), t+"Identifier")
		_ = fieldpath.Set(cfg, fieldpath.WithPrefix(prefix, "type"), t)
	}
}

func (d *Definition) Schema(getString i18n.GetString) validate.Schema {
	return validate.SchemaFunc(func(doc map[string]any, _ string, errs *validate.Errors) {
		c := validate.NewChecker(doc, errs, getString)

		c.Required(PathEnvironment, "common.environment")
		c.Required(PathFeature, "common.feature")

		v := c.Value(PathInstructions)
		if !v.IsFixed() {
			return
		}
		if v.IsUnset() {
			c.Required(PathInstructions, "common.instructions")
			return
		}

		list, ok := v.Raw().([]any)
		if !ok {
			errs.Add(PathInstructions, getString("validation.list", getString("common.instructions")))
			return
		}
		if len(list) == 0 {
			errs.Add(PathInstructions, getString("validation.minItems", getString("common.instructions"), 1))
			return
		}

		seen := make(map[string]bool, len(list))
		for i, item := range list {
			prefix := InstructionPrefix(i)
			typePath := fieldpath.WithPrefix(prefix, "type")

			if !c.Required(typePath, "common.type") {
				continue
			}

			t := instructionType(item)
			in, known := d.instructions.Lookup(t)
			if !known {
				in = d.instructions.Select(t)
			} else if seen[t] {
				errs.Add(typePath, getString("instructions.duplicate", getString(in.Label)))
			}
			seen[t] = true

			in.Section(d.flag).SchemaFor(getString).Validate(doc, prefix, errs)
		}
	})
}
