package step

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/fieldpath"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/lookup"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/value"
)

type RenderRequest struct {
	View form.View

	// Config holds the values shown. In the input-set view these are the
	// inputs entered so far and may be nil.
	Config Config

	// Template decides which fields the input-set view exposes. When nil,
	// Config is its own template.
	Template Config

	Lookup    lookup.Lookup
	GetString i18n.GetString
}

// Render builds one view of a step. Lookup failures never fail the render.
// They are reported in the form's FetchErrors.
func Render(ctx context.Context, def Definition, req *RenderRequest) (*form.Form, error) {
	getString := req.GetString
	if getString == nil {
		getString = i18n.Default()
	}

	r := renderer{
		ctx:       ctx,
		lookup:    req.Lookup,
		getString: getString,
	}

	switch req.View {
	case form.ViewEdit, "":
		return r.edit(def, req.Config), nil
	case form.ViewInputSet:
		tpl := req.Template
		if tpl == nil {
			tpl = req.Config
		}
		return r.inputSet(def, tpl, req.Config), nil
	case form.ViewVariables:
		return r.variables(def, req.Config), nil
	default:
		return nil, fmt.Errorf("unsupported view %q", req.View)
	}
}

type renderer struct {
	ctx       context.Context
	lookup    lookup.Lookup
	getString i18n.GetString
}

func (r *renderer) edit(def Definition, cfg Config) *form.Form {
	if cfg == nil {
		cfg = def.Defaults()
	}

	frm := &form.Form{View: form.ViewEdit, StepType: def.Type()}
	errs := Validate(def, cfg, r.getString)

	for _, spec := range AllFields(def, cfg) {
		field := r.field(frm, spec, cfg)
		field.Error = errs.Get(spec.Path)
		frm.Fields = append(frm.Fields, field)
	}

	frm.Errors = errs
	return frm
}

// inputSet exposes exactly the fields whose template value is a runtime
// input. Runtime leaves that no field covers are listed as plain text
// fields.
func (r *renderer) inputSet(def Definition, tpl, inputs Config) *form.Form {
	frm := &form.Form{View: form.ViewInputSet, StepType: def.Type()}

	doc := unfilled(overlay(tpl, inputs))
	covered := make(map[string]bool)

	for _, spec := range AllFields(def, tpl) {
		tplValue := ValueAt(tpl, spec.Path)
		if !tplValue.IsRuntime() {
			continue
		}
		covered[spec.Path] = true

		spec.AllowedTypes = inputSetTypes(spec.AllowedTypes)
		spec.DependsOn = nil

		field := r.field(frm, spec, doc)
		inputSetDefaults(&field, tplValue)
		frm.Fields = append(frm.Fields, field)
	}

	var extra []string
	fieldpath.Walk(tpl, func(path string, leaf any) {
		if covered[path] || !value.Of(leaf).IsRuntime() {
			return
		}
		extra = append(extra, path)
	})
	sort.Strings(extra)

	for _, path := range extra {
		tplValue := ValueAt(tpl, path)
		field := r.field(frm, form.FieldSpec{
			Path:         path,
			Label:        path,
			Kind:         form.KindText,
			Required:     true,
			AllowedTypes: inputSetTypes(nil),
		}, doc)
		inputSetDefaults(&field, tplValue)
		frm.Fields = append(frm.Fields, field)
	}

	return frm
}

func (r *renderer) variables(def Definition, cfg Config) *form.Form {
	frm := &form.Form{View: form.ViewVariables, StepType: def.Type()}
	for _, kv := range fieldpath.Flatten(cfg) {
		frm.Variables = append(frm.Variables, form.Variable{Path: kv[0], Value: kv[1]})
	}
	return frm
}

func (r *renderer) field(frm *form.Form, spec form.FieldSpec, doc Config) form.Field {
	cur := ValueAt(doc, spec.Path)

	field := form.Field{
		Path:         spec.Path,
		Label:        r.getString(spec.Label),
		Kind:         spec.Kind,
		Required:     spec.Required,
		InputType:    cur.InputType(),
		Value:        cur.Raw(),
		AllowedTypes: value.AllowedTypes(spec.AllowedTypes, dependencyValues(doc, spec.DependsOn)...),
	}

	if len(spec.Options) > 0 {
		field.Options = form.StaticOptions(spec.Options...)
	}

	if spec.Lookup == "" || !cur.IsFixed() {
		return field
	}

	scope, ready := lookupScope(doc, spec.Scope)
	if !ready {
		field.Disabled = true
		return field
	}
	if r.lookup == nil {
		return field
	}

	opts, err := r.lookup.Options(r.ctx, &lookup.Request{Kind: lookup.Kind(spec.Lookup), Scope: scope})
	if err != nil {
		frm.FetchErrors = append(frm.FetchErrors, form.FetchError{
			Source:    spec.Lookup,
			Path:      spec.Path,
			Message:   err.Error(),
			Retryable: lookup.IsRetryable(err),
		})
		return field
	}
	field.Options = opts

	return field
}

// lookupScope collects the scope values of a lookup. It is ready only when
// every scope field holds a fixed, non-empty value.
func lookupScope(doc Config, scope map[string]string) (map[string]string, bool) {
	out := make(map[string]string, len(scope))
	for param, path := range scope {
		v := ValueAt(doc, path)
		if !v.IsFixed() || v.Empty() {
			return nil, false
		}
		out[param] = fieldpath.Format(v.Raw())
	}
	return out, true
}

// inputSetTypes narrows a candidate set to the modes an input set can
// supply: a fixed value or an expression.
func inputSetTypes(candidates []value.InputType) []value.InputType {
	if len(candidates) == 0 {
		candidates = value.AllInputTypes
	}
	var out []value.InputType
	for _, t := range candidates {
		if t != value.InputTypeRuntime {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []value.InputType{value.InputTypeFixed}
	}
	return out
}

func inputSetDefaults(field *form.Field, tplValue value.Value) {
	in := tplValue.Input()
	if in == nil {
		return
	}
	if in.HasDefault {
		field.Default = in.Default
	}
	if len(in.AllowedValues) > 0 {
		field.Options = form.StaticOptions(in.AllowedValues...)
	}
}

// unfilled removes the runtime inputs no value was entered for, so they
// render as empty fixed fields.
func unfilled(doc Config) Config {
	var pending []string
	fieldpath.Walk(doc, func(path string, leaf any) {
		if value.Of(leaf).IsRuntime() {
			pending = append(pending, path)
		}
	})
	for _, path := range pending {
		fieldpath.Delete(doc, path)
	}
	return doc
}

// overlay copies tpl and writes every leaf of inputs over it.
func overlay(tpl, inputs Config) Config {
	doc := Clone(tpl)
	if doc == nil {
		doc = Config{}
	}
	fieldpath.Walk(inputs, func(path string, leaf any) {
		_ = fieldpath.Set(doc, path, fieldpath.Clone(leaf))
	})
	return doc
}
