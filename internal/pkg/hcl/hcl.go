package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

type EvalContext = hcl.EvalContext

func GenerateEvalContext(vars map[string]any) (*hcl.EvalContext, error) {
	ctx := &hcl.EvalContext{
		Variables: make(map[string]cty.Value),
		Functions: hclFunctions(),
	}

	if len(vars) == 0 {
		return ctx, nil
	}

	varValues := make(map[string]cty.Value)

	for k, v := range vars {
		ctyVal, err := goValueToCtyValue(v)
		if err != nil {
			return nil, fmt.Errorf("failed to convert variable %q: %w", k, err)
		}
		varValues[k] = ctyVal
	}

	ctx.Variables = varValues

	return ctx, nil
}

func hclFunctions() map[string]function.Function {
	return map[string]function.Function{
		"coalesce":  stdlib.CoalesceFunc,
		"format":    stdlib.FormatFunc,
		"join":      stdlib.JoinFunc,
		"length":    stdlib.LengthFunc,
		"lower":     stdlib.LowerFunc,
		"replace":   stdlib.ReplaceFunc,
		"split":     stdlib.SplitFunc,
		"substr":    stdlib.SubstrFunc,
		"trimspace": stdlib.TrimSpaceFunc,
		"upper":     stdlib.UpperFunc,
	}
}

func EvaluateTemplateString(tpl string, evalCtx *hcl.EvalContext) (string, error) {

	expr, diags := hclsyntax.ParseTemplate([]byte(tpl), "<template>", hcl.InitialPos)
	if diags.HasErrors() {
		return "", fmt.Errorf("parse error: %s", diags.Error())
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("eval error: %s", diags.Error())
	}

	if !val.Type().Equals(cty.String) {
		return "", fmt.Errorf("result is not a string: %s", val.Type().FriendlyName())
	}

	return val.AsString(), nil
}

// EvaluateExpression parses and evaluates a single HCL expression, returning
// the result in document form.
func EvaluateExpression(src string, evalCtx *hcl.EvalContext) (any, error) {

	expr, diags := hclsyntax.ParseExpression([]byte(src), "<expr>", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse error: %s", diags.Error())
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, fmt.Errorf("eval error: %s", diags.Error())
	}

	return CtyToGo(val)
}

// ParseConfigFile decodes the HCL file at path into target.
func ParseConfigFile(path string, target any) error {
	if err := hclsimple.DecodeFile(path, nil, target); err != nil {
		return fmt.Errorf("failed to decode %q: %w", path, err)
	}
	return nil
}
