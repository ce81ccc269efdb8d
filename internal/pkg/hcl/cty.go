package hcl

import (
	"encoding/json"
	"fmt"

	"github.com/oklog/ulid/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

func goValueToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}

	switch v.(type) {
	case map[string]any, []any:
		return GoToCty(v)
	}

	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return GoToCty(v)
	}

	val, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return cty.NilVal, err
	}

	return val, nil
}

// GoToCty converts a decoded JSON document value into a cty value so it can
// be placed in an evaluation context.
func GoToCty(v any) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}

	switch val := v.(type) {
	case string:
		return cty.StringVal(val), nil
	case int:
		return cty.NumberIntVal(int64(val)), nil
	case int64:
		return cty.NumberIntVal(val), nil
	case float64:
		return cty.NumberFloatVal(val), nil
	case bool:
		return cty.BoolVal(val), nil
	case []string:
		vals := make([]cty.Value, len(val))
		for i, item := range val {
			vals[i] = cty.StringVal(item)
		}
		if len(vals) == 0 {
			return cty.ListValEmpty(cty.String), nil
		}
		return cty.TupleVal(vals), nil
	case []any:
		vals := make([]cty.Value, len(val))
		for i, item := range val {
			itemVal, err := goValueToCtyValue(item)
			if err != nil {
				return cty.NilVal, err
			}
			vals[i] = itemVal
		}
		if len(vals) == 0 {
			return cty.EmptyTupleVal, nil
		}
		return cty.TupleVal(vals), nil
	case map[string]string:
		vals := make(map[string]cty.Value, len(val))
		for k, item := range val {
			vals[k] = cty.StringVal(item)
		}
		if len(vals) == 0 {
			return cty.EmptyObjectVal, nil
		}
		return cty.ObjectVal(vals), nil
	case map[string]any:
		vals := make(map[string]cty.Value)
		for k, item := range val {
			itemVal, err := goValueToCtyValue(item)
			if err != nil {
				return cty.NilVal, err
			}
			vals[k] = itemVal
		}
		if len(vals) == 0 {
			return cty.EmptyObjectVal, nil
		}
		return cty.ObjectVal(vals), nil
	case ulid.ULID:
		return cty.StringVal(val.String()), nil
	default:
		return cty.NilVal, fmt.Errorf("unsupported type: %T", v)
	}
}

// CtyToGo converts a known cty value back into the JSON document form:
// strings, float64 numbers, bools, []any and map[string]any.
func CtyToGo(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	data, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, fmt.Errorf("failed to encode value: %w", err)
	}

	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode value: %w", err)
	}
	return out, nil
}
