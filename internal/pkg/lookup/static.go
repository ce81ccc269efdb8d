package lookup

import (
	"context"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
)

// StaticOption is one catalog entry. It is offered when every scope entry
// matches the request scope.
type StaticOption struct {
	Kind  string            `hcl:"kind,label"`
	Value string            `hcl:"value"`
	Label string            `hcl:"label,optional"`
	Scope map[string]string `hcl:"scope,optional"`
}

// Static serves options from an in-memory catalog.
type Static struct {
	options map[Kind][]*StaticOption
}

func NewStatic(options []*StaticOption) *Static {
	s := &Static{options: make(map[Kind][]*StaticOption)}
	for _, opt := range options {
		s.options[Kind(opt.Kind)] = append(s.options[Kind(opt.Kind)], opt)
	}
	return s
}

func (s *Static) Options(_ context.Context, req *Request) ([]form.Option, error) {
	var out []form.Option

	for _, opt := range s.options[req.Kind] {
		if !scopeMatches(opt.Scope, req.Scope) {
			continue
		}
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		out = append(out, form.Option{Label: label, Value: opt.Value})
	}

	return out, nil
}

func scopeMatches(want, have map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}
