// Package inputset merges the values supplied for a step's runtime inputs
// into its template.
package inputset

import (
	"reflect"
	"sort"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/fieldpath"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/value"
)

// RuntimePaths returns the sorted paths of every runtime input in tpl.
func RuntimePaths(tpl step.Config) []string {
	var out []string
	fieldpath.Walk(tpl, func(path string, leaf any) {
		if value.Of(leaf).IsRuntime() {
			out = append(out, path)
		}
	})
	sort.Strings(out)
	return out
}

// Template reduces cfg to what an input set is written against: the
// identifier, the type and the runtime inputs.
func Template(cfg step.Config) step.Config {
	out := step.Config{}
	for _, key := range []string{step.PathIdentifier, step.PathType} {
		if v, ok := cfg[key]; ok {
			out[key] = v
		}
	}
	for _, path := range RuntimePaths(cfg) {
		raw, _ := fieldpath.Get(cfg, path)
		_ = fieldpath.Set(out, path, raw)
	}
	return out
}

// Merge fills the runtime inputs of tpl from inputs. A missing input takes
// the default modifier of its sentinel and is required otherwise. Inputs for
// paths that are not runtime inputs are rejected, except an identifier or
// type equal to the template's.
func Merge(tpl, inputs step.Config, getString i18n.GetString) (step.Config, *validate.Errors) {
	if getString == nil {
		getString = i18n.Default()
	}

	errs := validate.NewErrors()
	out := step.Clone(tpl)
	if out == nil {
		out = step.Config{}
	}

	runtime := RuntimePaths(tpl)

	fieldpath.Walk(inputs, func(path string, leaf any) {
		if covered(runtime, path) {
			return
		}
		if path == step.PathIdentifier || path == step.PathType {
			if tplValue, _ := fieldpath.Get(tpl, path); reflect.DeepEqual(tplValue, leaf) {
				return
			}
		}
		errs.Add(path, getString("validation.notRuntime", path))
	})

	for _, path := range runtime {
		raw, _ := fieldpath.Get(tpl, path)
		in := value.Of(raw).Input()

		provided, ok := fieldpath.Get(inputs, path)
		if !ok || provided == nil {
			if in != nil && in.HasDefault {
				_ = fieldpath.Set(out, path, in.Default)
				continue
			}
			errs.Add(path, getString("validation.required", path))
			continue
		}

		v := value.Of(provided)
		switch {
		case v.IsRuntime():
			errs.Add(path, getString("validation.inputType", path, "runtime"))
			continue
		case v.IsFixed() && in != nil:
			if err := in.Check(fieldpath.Format(provided)); err != nil {
				errs.Add(path, getString("validation.runtimeInput", path, err.Error()))
				continue
			}
		}

		_ = fieldpath.Set(out, path, fieldpath.Clone(provided))
	}

	return out, errs
}

// Validate merges inputs into tpl and validates the result against def.
// Only failures on runtime paths are reported since the user can change
// nothing else.
func Validate(def step.Definition, tpl, inputs step.Config, getString i18n.GetString) *validate.Errors {
	if getString == nil {
		getString = i18n.Default()
	}

	merged, errs := Merge(tpl, inputs, getString)
	runtime := RuntimePaths(tpl)

	errs.Merge(step.Validate(def, merged, getString).Filter(func(path string) bool {
		return covered(runtime, path)
	}))

	return errs
}

// covered reports whether path is one of the runtime paths or lies below
// one, as list entries under a runtime list do.
func covered(runtime []string, path string) bool {
	for _, p := range runtime {
		if fieldpath.IsDescendant(path, p) {
			return true
		}
	}
	return false
}
