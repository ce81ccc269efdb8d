package validate

import (
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
)

// Schema validates the part of a step document mounted at prefix.
type Schema interface {
	Validate(doc map[string]any, prefix string, errs *Errors)
}

type SchemaFunc func(doc map[string]any, prefix string, errs *Errors)

func (f SchemaFunc) Validate(doc map[string]any, prefix string, errs *Errors) {
	f(doc, prefix, errs)
}

// Factory builds a schema whose messages come from getString.
type Factory func(getString i18n.GetString) Schema

// Permissive accepts anything. It backs discriminator values that have no
// registered schema.
var Permissive Schema = SchemaFunc(func(map[string]any, string, *Errors) {})

// PermissiveFactory returns Permissive regardless of the lookup.
func PermissiveFactory(i18n.GetString) Schema { return Permissive }

// All runs each schema in order against the same prefix.
func All(schemas ...Schema) Schema {
	return SchemaFunc(func(doc map[string]any, prefix string, errs *Errors) {
		for _, s := range schemas {
			s.Validate(doc, prefix, errs)
		}
	})
}
