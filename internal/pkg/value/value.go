// Package value classifies step configuration leaves as fixed, deferred to
// pipeline runtime, or expressions resolved by the execution engine.
package value

import (
	"encoding/json"
	"regexp"
	"strings"
)

// RuntimeInputSentinel is the reserved string meaning "resolve this field at
// pipeline execution time".
const RuntimeInputSentinel = "<+input>"

type Kind int

const (
	KindUnset Kind = iota
	KindFixed
	KindRuntime
	KindExpression
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindRuntime:
		return "runtime"
	case KindExpression:
		return "expression"
	default:
		return "unset"
	}
}

// Value is a single field value together with its classification.
type Value struct {
	kind  Kind
	raw   any
	input *RuntimeInput
}

var expressionRe = regexp.MustCompile(`<\+[^<>]+>`)

// Of classifies a raw document value.
func Of(raw any) Value {
	if raw == nil {
		return Value{kind: KindUnset}
	}

	s, ok := raw.(string)
	if !ok {
		return Value{kind: KindFixed, raw: raw}
	}

	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, RuntimeInputSentinel) {
		if in, err := ParseRuntimeInput(trimmed); err == nil {
			return Value{kind: KindRuntime, raw: s, input: in}
		}
	}

	if expressionRe.MatchString(s) {
		return Value{kind: KindExpression, raw: s}
	}

	return Value{kind: KindFixed, raw: s}
}

// Fixed wraps a concrete value.
func Fixed(v any) Value {
	if v == nil {
		return Value{kind: KindUnset}
	}
	return Value{kind: KindFixed, raw: v}
}

// Runtime returns a value deferred to execution time.
func Runtime(in RuntimeInput) Value {
	return Value{kind: KindRuntime, raw: in.String(), input: &in}
}

// Expression wraps an expression string such as "<+pipeline.name>".
func Expression(expr string) Value {
	return Value{kind: KindExpression, raw: expr}
}

func (v Value) Kind() Kind { return v.kind }

// Raw returns the wire form of the value. Runtime values render as the
// sentinel string including their modifiers.
func (v Value) Raw() any { return v.raw }

func (v Value) Input() *RuntimeInput { return v.input }

func (v Value) IsUnset() bool { return v.kind == KindUnset }

// IsFixed reports whether the value is concrete or absent. An absent field is
// in fixed mode with an empty value.
func (v Value) IsFixed() bool { return v.kind == KindFixed || v.kind == KindUnset }

func (v Value) IsRuntime() bool { return v.kind == KindRuntime }

func (v Value) IsExpression() bool { return v.kind == KindExpression }

// String returns the value as a string when it is one, otherwise "".
func (v Value) String() string {
	s, _ := v.raw.(string)
	return s
}

// Expression returns the expression text, or "" for non-expression values.
func (v Value) Expression() string {
	if v.kind != KindExpression {
		return ""
	}
	return v.String()
}

// References lists the expression references held by the value, without the
// surrounding "<+" and ">".
func (v Value) References() []string {
	if v.kind != KindExpression {
		return nil
	}
	matches := expressionRe.FindAllString(v.String(), -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, strings.TrimSpace(m[2:len(m)-1]))
	}
	return out
}

// Empty reports whether a fixed value carries no content.
func (v Value) Empty() bool {
	switch v.kind {
	case KindUnset:
		return true
	case KindFixed:
		switch r := v.raw.(type) {
		case string:
			return strings.TrimSpace(r) == ""
		case []any:
			return len(r) == 0
		case map[string]any:
			return len(r) == 0
		}
	}
	return false
}

// InputType maps the value kind onto the input mode a field is in.
func (v Value) InputType() InputType {
	switch v.kind {
	case KindRuntime:
		return InputTypeRuntime
	case KindExpression:
		return InputTypeExpression
	default:
		return InputTypeFixed
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Of(raw)
	return nil
}
