package step

import (
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/fieldpath"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/value"
)

// ApplyChange writes v at path and then reconciles every field depending on
// path, transitively. A dependent whose mode is no longer allowed is moved
// to the first allowed mode. A nil v removes the field.
//
// A dependent moved to RUNTIME holds the sentinel afterwards. One moved to
// EXPRESSION or FIXED is removed from cfg and reads as empty FIXED, so the
// returned resets are the only record of its new mode. Clients showing a
// mode selector must take it from Reset.To.
func ApplyChange(def Definition, cfg Config, path string, v any) ([]value.Reset, error) {
	if _, err := fieldpath.Parse(path); err != nil {
		return nil, err
	}

	if v == nil {
		fieldpath.Delete(cfg, path)
	} else if err := fieldpath.Set(cfg, path, fieldpath.Clone(v)); err != nil {
		return nil, err
	}

	Normalize(def, cfg)

	var resets []value.Reset

	visited := map[string]bool{path: true}
	queue := []string{path}

	for len(queue) > 0 {
		changed := queue[0]
		queue = queue[1:]

		for _, f := range AllFields(def, cfg) {
			if visited[f.Path] || !dependsOn(f, changed) {
				continue
			}

			cur := ValueAt(cfg, f.Path)
			allowed := value.AllowedTypes(f.AllowedTypes, dependencyValues(cfg, f.DependsOn)...)

			next, reset := value.Reconcile(cur, allowed)
			if !reset {
				continue
			}

			if next.IsUnset() {
				fieldpath.Delete(cfg, f.Path)
			} else if err := fieldpath.Set(cfg, f.Path, next.Raw()); err != nil {
				return resets, err
			}

			resets = append(resets, value.Reset{Path: f.Path, From: cur.InputType(), To: allowed[0]})
			visited[f.Path] = true
			queue = append(queue, f.Path)
		}
	}

	return resets, nil
}

func dependsOn(f form.FieldSpec, changed string) bool {
	for _, dep := range f.DependsOn {
		if fieldpath.IsDescendant(changed, dep) || fieldpath.IsDescendant(dep, changed) {
			return true
		}
	}
	return false
}

// Normalize applies the definition's normalizer, if it has one.
func Normalize(def Definition, cfg Config) {
	if n, ok := def.(Normalizer); ok {
		n.Normalize(cfg)
	}
}
