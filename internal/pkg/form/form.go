// Package form describes the rendered views of a step configuration: the
// field tables step types declare and the forms built from them.
package form

import (
	"fmt"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/value"
)

type View string

const (
	ViewEdit      View = "edit"
	ViewInputSet  View = "input-set"
	ViewVariables View = "variables"
)

func ParseView(s string) (View, error) {
	switch v := View(s); v {
	case ViewEdit, ViewInputSet, ViewVariables:
		return v, nil
	case "":
		return ViewEdit, nil
	default:
		return "", fmt.Errorf("unsupported view %q", s)
	}
}

type Kind string

const (
	KindText        Kind = "text"
	KindSelect      Kind = "select"
	KindMultiSelect Kind = "multiselect"
	KindList        Kind = "list"
	KindMap         Kind = "map"
	KindBool        Kind = "bool"
	KindNumber      Kind = "number"
	KindDuration    Kind = "duration"
	KindSecret      Kind = "secret"
	KindConnector   Kind = "connector"
	KindSection     Kind = "section"
)

// FieldSpec is one entry in a step type's field table.
type FieldSpec struct {
	Path     string
	Label    string
	Kind     Kind
	Required bool

	// Lookup names the option source for the field. Scope maps lookup
	// parameters to the document paths that supply them.
	Lookup string
	Scope  map[string]string

	// DependsOn lists the paths whose input mode restricts this field.
	DependsOn []string

	// AllowedTypes is the candidate mode set before dependencies narrow
	// it. Nil means every mode.
	AllowedTypes []value.InputType

	Options []string
}

// Field is a FieldSpec with its current state filled in.
type Field struct {
	Path         string            `json:"path"`
	Label        string            `json:"label"`
	Kind         Kind              `json:"kind"`
	Required     bool              `json:"required"`
	Value        any               `json:"value,omitempty"`
	Default      any               `json:"default,omitempty"`
	InputType    value.InputType   `json:"input_type"`
	AllowedTypes []value.InputType `json:"allowed_types"`
	Options      []Option          `json:"options,omitempty"`
	Disabled     bool              `json:"disabled,omitempty"`
	Error        string            `json:"error,omitempty"`
}

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Variable is one read-only row of the variables view.
type Variable struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

// FetchError records a lookup that failed while rendering. The form is still
// usable and the client may ask for it again.
type FetchError struct {
	Source    string `json:"source"`
	Path      string `json:"path"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type Form struct {
	View        View             `json:"view"`
	StepType    string           `json:"step_type"`
	Fields      []Field          `json:"fields,omitempty"`
	Variables   []Variable       `json:"variables,omitempty"`
	FetchErrors []FetchError     `json:"fetch_errors,omitempty"`
	Errors      *validate.Errors `json:"errors,omitempty"`
}

// Field returns the rendered field at path.
func (f *Form) Field(path string) (*Field, bool) {
	for i := range f.Fields {
		if f.Fields[i].Path == path {
			return &f.Fields[i], true
		}
	}
	return nil, false
}

// StaticOptions converts a fixed option list into form options.
func StaticOptions(values ...string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Label: v, Value: v})
	}
	return out
}
