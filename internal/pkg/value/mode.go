package value

// InputType is the input mode a field is edited in.
type InputType string

const (
	InputTypeFixed      InputType = "FIXED"
	InputTypeRuntime    InputType = "RUNTIME"
	InputTypeExpression InputType = "EXPRESSION"
)

// AllInputTypes is the full candidate set, in display order.
var AllInputTypes = []InputType{InputTypeFixed, InputTypeRuntime, InputTypeExpression}

// Contribution returns the modes a dependency leaves open for the fields
// that depend on it. A fixed dependency does not restrict anything.
func Contribution(dep Value) []InputType {
	switch dep.Kind() {
	case KindRuntime:
		return []InputType{InputTypeRuntime}
	case KindExpression:
		return []InputType{InputTypeExpression, InputTypeRuntime}
	default:
		return AllInputTypes
	}
}

// AllowedTypes narrows candidates by every non-fixed dependency. Each step
// keeps the shorter of the current set and its intersection with the
// dependency's contribution, in the contribution's order.
func AllowedTypes(candidates []InputType, deps ...Value) []InputType {
	result := candidates
	if len(result) == 0 {
		result = AllInputTypes
	}

	for _, dep := range deps {
		if dep.IsFixed() {
			continue
		}

		narrowed := intersect(Contribution(dep), result)
		if len(narrowed) > 0 && len(narrowed) < len(result) {
			result = narrowed
		}
	}

	out := make([]InputType, len(result))
	copy(out, result)
	return out
}

func intersect(ordered, other []InputType) []InputType {
	var out []InputType
	for _, t := range ordered {
		if Allows(other, t) {
			out = append(out, t)
		}
	}
	return out
}

func Allows(allowed []InputType, t InputType) bool {
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

// Reset records a field that was forced into another input mode.
type Reset struct {
	Path string    `json:"path"`
	From InputType `json:"from"`
	To   InputType `json:"to"`
}

// Reconcile forces v into the first allowed mode when its current mode is no
// longer allowed. Moving to runtime writes the sentinel. Any other move,
// including one to EXPRESSION, clears the value to unset, and an unset value
// reads back as an empty FIXED one. Only the caller's Reset records the new
// mode in that case. The boolean reports whether anything changed.
func Reconcile(v Value, allowed []InputType) (Value, bool) {
	if len(allowed) == 0 || Allows(allowed, v.InputType()) {
		return v, false
	}

	if allowed[0] == InputTypeRuntime {
		return Runtime(RuntimeInput{}), true
	}
	return Value{kind: KindUnset}, true
}
