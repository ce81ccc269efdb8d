package value

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// RuntimeInput holds the modifiers that may follow the runtime sentinel, for
// example "<+input>.default(us-east-1).allowedValues(us-east-1,eu-west-1)".
type RuntimeInput struct {
	Default        string   `json:"default,omitempty"`
	HasDefault     bool     `json:"has_default,omitempty"`
	AllowedValues  []string `json:"allowed_values,omitempty"`
	Regex          string   `json:"regex,omitempty"`
	ExecutionInput bool     `json:"execution_input,omitempty"`
}

var ErrNotRuntimeInput = errors.New("not a runtime input")

// ParseRuntimeInput parses the sentinel and its modifier chain.
func ParseRuntimeInput(s string) (*RuntimeInput, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, RuntimeInputSentinel) {
		return nil, ErrNotRuntimeInput
	}

	in := &RuntimeInput{}
	rest := s[len(RuntimeInputSentinel):]

	for rest != "" {
		if rest[0] != '.' {
			return nil, fmt.Errorf("%w: unexpected %q after sentinel", ErrNotRuntimeInput, rest)
		}
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			return nil, fmt.Errorf("%w: modifier %q has no argument list", ErrNotRuntimeInput, rest)
		}
		name := rest[1:open]

		closeIdx := matchParen(rest, open)
		if closeIdx < 0 {
			return nil, fmt.Errorf("%w: modifier %q is not terminated", ErrNotRuntimeInput, name)
		}
		arg := rest[open+1 : closeIdx]
		rest = rest[closeIdx+1:]

		switch name {
		case "default":
			in.Default = arg
			in.HasDefault = true
		case "allowedValues":
			for _, item := range strings.Split(arg, ",") {
				if item = strings.TrimSpace(item); item != "" {
					in.AllowedValues = append(in.AllowedValues, item)
				}
			}
		case "regex":
			if _, err := regexp.Compile(arg); err != nil {
				return nil, fmt.Errorf("%w: bad regex modifier: %v", ErrNotRuntimeInput, err)
			}
			in.Regex = arg
		case "executionInput":
			in.ExecutionInput = true
		default:
			return nil, fmt.Errorf("%w: unknown modifier %q", ErrNotRuntimeInput, name)
		}
	}

	return in, nil
}

func matchParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// String renders the runtime input back into its wire form.
func (r RuntimeInput) String() string {
	var b strings.Builder
	b.WriteString(RuntimeInputSentinel)
	if r.HasDefault {
		b.WriteString(".default(" + r.Default + ")")
	}
	if len(r.AllowedValues) > 0 {
		b.WriteString(".allowedValues(" + strings.Join(r.AllowedValues, ",") + ")")
	}
	if r.Regex != "" {
		b.WriteString(".regex(" + r.Regex + ")")
	}
	if r.ExecutionInput {
		b.WriteString(".executionInput()")
	}
	return b.String()
}

// Check reports whether a provided string satisfies the modifiers.
func (r RuntimeInput) Check(s string) error {
	if len(r.AllowedValues) > 0 {
		found := false
		for _, allowed := range r.AllowedValues {
			if allowed == s {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("value %q is not one of the allowed values %s",
				s, strings.Join(r.AllowedValues, ", "))
		}
	}
	if r.Regex != "" {
		re, err := regexp.Compile(r.Regex)
		if err != nil {
			return err
		}
		if !re.MatchString(s) {
			return fmt.Errorf("value %q does not match %q", s, r.Regex)
		}
	}
	return nil
}
