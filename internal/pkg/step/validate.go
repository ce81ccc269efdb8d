package step

import (
	"strings"
	"time"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/fieldpath"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/hcl"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/value"
)

// MinTimeout is the shortest timeout a step may declare.
const MinTimeout = 10 * time.Second

// CommonFields are the fields every step carries ahead of its own table.
func CommonFields(def Definition) []form.FieldSpec {
	fields := []form.FieldSpec{
		{
			Path:         PathName,
			Label:        "common.name",
			Kind:         form.KindText,
			Required:     true,
			AllowedTypes: []value.InputType{value.InputTypeFixed},
		},
		{
			Path:         PathIdentifier,
			Label:        "common.identifier",
			Kind:         form.KindText,
			Required:     true,
			AllowedTypes: []value.InputType{value.InputTypeFixed},
		},
	}

	if def.RequiresTimeout() {
		fields = append(fields, form.FieldSpec{
			Path:     PathTimeout,
			Label:    "common.timeout",
			Kind:     form.KindDuration,
			Required: true,
		})
	}

	return fields
}

// AllFields returns the common fields followed by the definition's table.
func AllFields(def Definition, cfg Config) []form.FieldSpec {
	return append(CommonFields(def), def.Fields(cfg)...)
}

// Validate runs the common checks and then the definition's schema. Runtime
// inputs and expressions pass content checks. Only fixed values are
// inspected.
func Validate(def Definition, cfg Config, getString i18n.GetString) *validate.Errors {
	if getString == nil {
		getString = i18n.Default()
	}

	errs := validate.NewErrors()
	c := validate.NewChecker(cfg, errs, getString)

	c.Name(PathName, "common.name")
	c.Identifier(PathIdentifier, "common.identifier")

	if def.RequiresTimeout() {
		c.Required(PathTimeout, "common.timeout")
		c.Timeout(PathTimeout, "common.timeout", MinTimeout)
	}

	checkExpressions(cfg, errs, getString)
	checkModes(def, cfg, errs, getString)

	def.Schema(getString).Validate(cfg, "", errs)

	return errs
}

func checkExpressions(cfg Config, errs *validate.Errors, getString i18n.GetString) {
	fieldpath.Walk(cfg, func(path string, leaf any) {
		s, ok := leaf.(string)
		if !ok || !strings.Contains(s, "<+") {
			return
		}

		v := value.Of(s)
		if v.IsRuntime() {
			return
		}

		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, value.RuntimeInputSentinel) {
			if _, err := value.ParseRuntimeInput(trimmed); err != nil {
				errs.Add(path, getString("validation.runtimeInput", path, err.Error()))
				return
			}
		}

		if err := hcl.CheckExpression(s); err != nil {
			errs.Add(path, getString("validation.expression", path, err.Error()))
		}
	})
}

// checkModes rejects fields whose current input mode is not allowed by
// their candidate set and dependencies.
func checkModes(def Definition, cfg Config, errs *validate.Errors, getString i18n.GetString) {
	fields := AllFields(def, cfg)

	labels := make(map[string]string, len(fields))
	for _, f := range fields {
		labels[f.Path] = getString(f.Label)
	}

	for _, f := range fields {
		cur := ValueAt(cfg, f.Path)
		if cur.IsFixed() && cur.Empty() {
			continue
		}

		allowed := value.AllowedTypes(f.AllowedTypes, dependencyValues(cfg, f.DependsOn)...)
		if value.Allows(allowed, cur.InputType()) {
			continue
		}

		mode := strings.ToLower(string(cur.InputType()))

		var blocking []string
		for _, dep := range f.DependsOn {
			if !ValueAt(cfg, dep).IsFixed() {
				label, ok := labels[dep]
				if !ok {
					label = dep
				}
				blocking = append(blocking, label)
			}
		}

		if len(blocking) > 0 {
			errs.Add(f.Path, getString("validation.dependencyMode",
				getString(f.Label), mode, strings.Join(blocking, ", ")))
		} else {
			errs.Add(f.Path, getString("validation.inputType", getString(f.Label), mode))
		}
	}
}

func dependencyValues(cfg Config, paths []string) []value.Value {
	out := make([]value.Value, 0, len(paths))
	for _, p := range paths {
		out = append(out, ValueAt(cfg, p))
	}
	return out
}
