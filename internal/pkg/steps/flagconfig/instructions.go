package flagconfig

import (
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/dispatch"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/fieldpath"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/value"
)

// Instruction types.
const (
	SetFeatureFlagState               = "SetFeatureFlagState"
	SetOnVariation                    = "SetOnVariation"
	SetOffVariation                   = "SetOffVariation"
	AddRule                           = "AddRule"
	AddTargetsToVariationTargetMap    = "AddTargetsToVariationTargetMap"
	RemoveTargetsToVariationTargetMap = "RemoveTargetsToVariationTargetMap"
	AddSegmentToVariationTargetMap    = "AddSegmentToVariationTargetMap"
	RemoveSegmentToVariationTargetMap = "RemoveSegmentToVariationTargetMap"
)

// FlagStates are the values of a SetFeatureFlagState instruction.
var FlagStates = []string{"on", "off"}

// Flag identifies the environment and feature fields an instruction's
// lookups are scoped to. It is passed to every instruction explicitly.
type Flag struct {
	Environment string
	Feature     string
}

func (f Flag) scope() map[string]string {
	return map[string]string{"environment": f.Environment, "feature": f.Feature}
}

func (f Flag) deps() []string { return []string{f.Environment, f.Feature} }

// Instruction is one entry of the flag change table.
type Instruction struct {
	Type string

	// Label is the i18n key of the display name.
	Label string

	// Section returns the instruction's fields and schema for flag.
	Section func(flag Flag) dispatch.Section
}

// Instructions returns the instruction table. Unregistered types select an
// entry with no fields that accepts any spec.
func Instructions() *dispatch.Table[Instruction] {
	table := dispatch.New(Instruction{
		Label:   "instructions.unknown",
		Section: func(Flag) dispatch.Section { return dispatch.Unmatched },
	})

	for _, in := range []Instruction{
		{Type: SetFeatureFlagState, Label: "instructions.setFeatureFlagState", Section: flagState},
		{Type: SetOnVariation, Label: "instructions.setOnVariation", Section: variationOnly},
		{Type: SetOffVariation, Label: "instructions.setOffVariation", Section: variationOnly},
		{Type: AddRule, Label: "instructions.addRule", Section: percentageRollout},
		{Type: AddTargetsToVariationTargetMap, Label: "instructions.addTargets", Section: variationTargets("targets", lookup.KindTargets, "common.targets")},
		{Type: RemoveTargetsToVariationTargetMap, Label: "instructions.removeTargets", Section: variationTargets("targets", lookup.KindTargets, "common.targets")},
		{Type: AddSegmentToVariationTargetMap, Label: "instructions.addSegments", Section: variationTargets("segments", lookup.KindSegments, "common.segments")},
		{Type: RemoveSegmentToVariationTargetMap, Label: "instructions.removeSegments", Section: variationTargets("segments", lookup.KindSegments, "common.segments")},
	} {
		table.Register(in.Type, in)
	}

	return table
}

func specPath(prefix, name string) string {
	return fieldpath.WithPrefix(prefix, fieldpath.WithPrefix("spec", name))
}

func flagState(Flag) dispatch.Section {
	return dispatch.Section{
		Fields: func(prefix string) []form.FieldSpec {
			return []form.FieldSpec{{
				Path:     specPath(prefix, "state"),
				Label:    "common.state",
				Kind:     form.KindSelect,
				Required: true,
				Options:  FlagStates,
			}}
		},
		Schema: func(getString i18n.GetString) validate.Schema {
			return validate.SchemaFunc(func(doc map[string]any, prefix string, errs *validate.Errors) {
				c := validate.NewChecker(doc, errs, getString)
				path := specPath(prefix, "state")
				if c.Required(path, "common.state") {
					c.OneOf(path, "common.state", FlagStates...)
				}
			})
		},
	}
}

func variationField(prefix string, flag Flag) form.FieldSpec {
	return form.FieldSpec{
		Path:      specPath(prefix, "variation"),
		Label:     "common.variation",
		Kind:      form.KindSelect,
		Required:  true,
		Lookup:    string(lookup.KindVariations),
		Scope:     flag.scope(),
		DependsOn: flag.deps(),
	}
}

func variationOnly(flag Flag) dispatch.Section {
	return dispatch.Section{
		Fields: func(prefix string) []form.FieldSpec {
			return []form.FieldSpec{variationField(prefix, flag)}
		},
		Schema: func(getString i18n.GetString) validate.Schema {
			return validate.SchemaFunc(func(doc map[string]any, prefix string, errs *validate.Errors) {
				validate.NewChecker(doc, errs, getString).Required(specPath(prefix, "variation"), "common.variation")
			})
		},
	}
}

func variationTargets(name string, kind lookup.Kind, label string) func(Flag) dispatch.Section {
	return func(flag Flag) dispatch.Section {
		return dispatch.Section{
			Fields: func(prefix string) []form.FieldSpec {
				return []form.FieldSpec{
					variationField(prefix, flag),
					{
						Path:      specPath(prefix, name),
						Label:     label,
						Kind:      form.KindMultiSelect,
						Required:  true,
						Lookup:    string(kind),
						Scope:     map[string]string{"environment": flag.Environment},
						DependsOn: []string{flag.Environment},
					},
				}
			},
			Schema: func(getString i18n.GetString) validate.Schema {
				return validate.SchemaFunc(func(doc map[string]any, prefix string, errs *validate.Errors) {
					c := validate.NewChecker(doc, errs, getString)
					c.Required(specPath(prefix, "variation"), "common.variation")
					if c.Required(specPath(prefix, name), label) {
						c.StringList(specPath(prefix, name), label, 1)
					}
				})
			},
		}
	}
}

func percentageRollout(flag Flag) dispatch.Section {
	return dispatch.Section{
		Fields: func(prefix string) []form.FieldSpec {
			return []form.FieldSpec{
				{
					Path:         specPath(prefix, "priority"),
					Label:        "common.priority",
					Kind:         form.KindNumber,
					AllowedTypes: []value.InputType{value.InputTypeFixed, value.InputTypeRuntime},
				},
				{
					Path:     specPath(prefix, "distribution.bucketBy"),
					Label:    "common.bucketBy",
					Kind:     form.KindText,
					Required: true,
				},
				{
					Path:      specPath(prefix, "distribution.variations"),
					Label:     "common.variation",
					Kind:      form.KindList,
					Required:  true,
					Lookup:    string(lookup.KindVariations),
					Scope:     flag.scope(),
					DependsOn: flag.deps(),
				},
				{
					Path:      specPath(prefix, "clauses[0].values"),
					Label:     "common.segments",
					Kind:      form.KindMultiSelect,
					Required:  true,
					Lookup:    string(lookup.KindSegments),
					Scope:     map[string]string{"environment": flag.Environment},
					DependsOn: []string{flag.Environment},
				},
			}
		},
		Schema: func(getString i18n.GetString) validate.Schema {
			return validate.SchemaFunc(func(doc map[string]any, prefix string, errs *validate.Errors) {
				c := validate.NewChecker(doc, errs, getString)

				if !c.Value(specPath(prefix, "priority")).Empty() {
					c.Number(specPath(prefix, "priority"), "common.priority")
				}
				c.Required(specPath(prefix, "distribution.bucketBy"), "common.bucketBy")
				if c.Required(specPath(prefix, "clauses[0].values"), "common.segments") {
					c.StringList(specPath(prefix, "clauses[0].values"), "common.segments", 1)
				}

				checkWeights(c, specPath(prefix, "distribution.variations"))
			})
		},
	}
}

// checkWeights validates the rollout rows and requires fixed weights to add
// up to exactly 100. The sum is only checked once every weight is a fixed
// whole number.
func checkWeights(c *validate.Checker, path string) {
	v := c.Value(path)
	if !v.IsFixed() {
		return
	}

	rows, ok := v.Raw().([]any)
	if !ok || len(rows) == 0 {
		if v.IsUnset() {
			c.Errs.Add(path, c.GetString("validation.required", c.GetString("common.variation")))
		} else if !ok {
			c.Errs.Add(path, c.GetString("validation.list", c.GetString("common.variation")))
		} else {
			c.Errs.Add(path, c.GetString("validation.minItems", c.GetString("common.variation"), 1))
		}
		return
	}

	sum, complete := 0, true
	for i := range rows {
		row := fieldpath.Index(path, i)
		c.Required(row+".variation", "common.variation")

		weightPath := row + ".weight"
		w := c.Value(weightPath)
		if !w.IsFixed() {
			complete = false
			continue
		}
		if !c.Required(weightPath, "common.weight") {
			complete = false
			continue
		}
		n, ok := c.IntRange(weightPath, "common.weight", "validation.weightRange", 0, 100)
		if !ok {
			complete = false
			continue
		}
		sum += n
	}

	if complete && sum != 100 {
		c.Errs.Add(path, c.GetString("validation.weightSum", sum))
	}
}
