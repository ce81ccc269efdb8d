package context

import (
	"fmt"
	"strings"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/fieldpath"
	hhcl "github.com/hashicorp-forge/pipeline-steps/internal/pkg/hcl"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/value"
)

// Resolve returns a copy of doc with every expression leaf evaluated. A
// leaf that is exactly one reference takes the referenced value, so numbers
// and lists keep their type. Leaves mixing text and references become
// strings. Runtime inputs and references only the execution engine can
// resolve are left in place. In strict mode any other reference that cannot
// be resolved is reported, otherwise the leaf is kept as written.
func (c *Context) Resolve(doc map[string]any, strict bool, getString i18n.GetString) (map[string]any, *validate.Errors) {
	if getString == nil {
		getString = i18n.Default()
	}

	errs := validate.NewErrors()

	out, _ := fieldpath.Clone(doc).(map[string]any)
	if out == nil {
		return map[string]any{}, errs
	}

	evalCtx, err := hhcl.GenerateEvalContext(c.AsMap())
	if err != nil {
		errs.Add("", fmt.Sprintf("failed to create eval context: %v", err))
		return out, errs
	}

	fieldpath.Walk(doc, func(path string, leaf any) {
		s, ok := leaf.(string)
		if !ok {
			return
		}

		v := value.Of(s)
		if !v.IsExpression() {
			return
		}

		refs := v.References()
		for _, ref := range refs {
			if hhcl.EngineReference(ref) {
				return
			}
		}

		var resolved any
		if ref, single := hhcl.SingleReference(s); single {
			resolved, err = hhcl.EvaluateExpression(ref, evalCtx)
		} else {
			resolved, err = hhcl.EvaluateTemplateString(hhcl.ToTemplate(s), evalCtx)
		}

		if err != nil {
			if strict {
				errs.Add(path, getString("validation.unresolved", path, strings.Join(refs, ", ")))
			}
			return
		}

		_ = fieldpath.Set(out, path, resolved)
	})

	return out, errs
}
