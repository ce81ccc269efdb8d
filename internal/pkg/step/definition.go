package step

import (
	"sort"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/dispatch"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
)

// Definition is implemented by every step type.
type Definition interface {
	Type() string

	// Name is the i18n key of the display name.
	Name() string
	Icon() string
	Category() string

	// Defaults returns a fresh document for a new step of this type.
	Defaults() Config

	// Fields returns the field table for cfg. Tables can depend on the
	// document, e.g. one set of fields per configured instruction.
	Fields(cfg Config) []form.FieldSpec

	Schema(getString i18n.GetString) validate.Schema
	RequiresTimeout() bool
}

// Normalizer is implemented by definitions that rewrite derived parts of
// the document, such as discriminator identifiers, after every change.
type Normalizer interface {
	Normalize(cfg Config)
}

const (
	CategoryInfrastructure = "Infrastructure"
	CategoryFeatureFlags   = "Feature Flags"
	CategorySupplyChain    = "Supply Chain Security"
)

// Info is the serializable description of a definition.
type Info struct {
	Type            string `json:"type"`
	Name            string `json:"name"`
	Icon            string `json:"icon"`
	Category        string `json:"category"`
	RequiresTimeout bool   `json:"requires_timeout"`
	Defaults        Config `json:"defaults"`
}

func Describe(def Definition, getString i18n.GetString) *Info {
	if getString == nil {
		getString = i18n.Default()
	}
	return &Info{
		Type:            def.Type(),
		Name:            getString(def.Name()),
		Icon:            def.Icon(),
		Category:        def.Category(),
		RequiresTimeout: def.RequiresTimeout(),
		Defaults:        def.Defaults(),
	}
}

type unknown struct{}

func (unknown) Type() string                          { return "" }
func (unknown) Name() string                          { return "steps.unknown" }
func (unknown) Icon() string                          { return "" }
func (unknown) Category() string                      { return "" }
func (unknown) Defaults() Config                      { return Config{} }
func (unknown) Fields(Config) []form.FieldSpec        { return nil }
func (unknown) Schema(i18n.GetString) validate.Schema { return validate.Permissive }
func (unknown) RequiresTimeout() bool                 { return false }

// Unknown is selected for unregistered step types. It has no fields and
// accepts any spec.
var Unknown Definition = unknown{}

// Registry dispatches step documents to their definitions by type.
type Registry struct {
	table *dispatch.Table[Definition]
}

func NewRegistry(defs ...Definition) *Registry {
	r := &Registry{table: dispatch.New(Unknown)}
	for _, def := range defs {
		r.Register(def)
	}
	return r
}

func (r *Registry) Register(def Definition) { r.table.Register(def.Type(), def) }

// Select returns the definition for stepType, or Unknown.
func (r *Registry) Select(stepType string) Definition { return r.table.Select(stepType) }

func (r *Registry) Lookup(stepType string) (Definition, bool) { return r.table.Lookup(stepType) }

// For returns the definition matching the document's type.
func (r *Registry) For(cfg Config) Definition { return r.Select(TypeOf(cfg)) }

// Types returns the registered types sorted by name.
func (r *Registry) Types() []string {
	keys := r.table.Keys()
	sort.Strings(keys)
	return keys
}

func (r *Registry) Definitions() []Definition {
	types := r.Types()
	out := make([]Definition, 0, len(types))
	for _, t := range types {
		out = append(out, r.Select(t))
	}
	return out
}

// Validate checks cfg against the definition its type selects. Unregistered
// types are reported on the type field and their spec is accepted as-is.
func (r *Registry) Validate(cfg Config, getString i18n.GetString) *validate.Errors {
	if getString == nil {
		getString = i18n.Default()
	}

	def, ok := r.Lookup(TypeOf(cfg))
	if !ok {
		def = Unknown
	}

	errs := Validate(def, cfg, getString)

	if !ok && !errs.Has(PathType) {
		if TypeOf(cfg) == "" {
			errs.Add(PathType, getString("validation.required", getString("common.type")))
		} else {
			errs.Add(PathType, getString("validation.unknownStepType", TypeOf(cfg)))
		}
	}

	return errs
}
