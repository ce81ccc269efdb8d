// Package dispatch selects configuration entries by a discriminator value
// such as a step type, an instruction type or a source type.
package dispatch

import (
	"fmt"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
)

// Table maps a closed set of discriminators to entries. Unknown
// discriminators resolve to the fallback entry.
type Table[T any] struct {
	keys     []string
	entries  map[string]T
	fallback T
}

func New[T any](fallback T) *Table[T] {
	return &Table[T]{
		entries:  make(map[string]T),
		fallback: fallback,
	}
}

// Register adds an entry. Registering the same discriminator twice is a
// programming error and panics.
func (t *Table[T]) Register(key string, entry T) *Table[T] {
	if _, ok := t.entries[key]; ok {
		panic(fmt.Sprintf("dispatch: duplicate registration for %q", key))
	}
	t.keys = append(t.keys, key)
	t.entries[key] = entry
	return t
}

// Select returns the entry for key, or the fallback.
func (t *Table[T]) Select(key string) T {
	if e, ok := t.entries[key]; ok {
		return e
	}
	return t.fallback
}

func (t *Table[T]) Lookup(key string) (T, bool) {
	e, ok := t.entries[key]
	return e, ok
}

// Keys returns the registered discriminators in registration order.
func (t *Table[T]) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

func (t *Table[T]) Len() int { return len(t.keys) }

// Section is a sub-section of a step document selected by a nested
// discriminator. Fields and Schema are both mounted at a path prefix.
type Section struct {
	Fields func(prefix string) []form.FieldSpec
	Schema validate.Factory
}

// FieldsAt returns the section's field table mounted at prefix.
func (s Section) FieldsAt(prefix string) []form.FieldSpec {
	if s.Fields == nil {
		return nil
	}
	return s.Fields(prefix)
}

// SchemaFor returns the section's schema, or the permissive schema when
// the section has none.
func (s Section) SchemaFor(getString i18n.GetString) validate.Schema {
	if s.Schema == nil {
		return validate.Permissive
	}
	return s.Schema(getString)
}

// Unmatched is the section used for discriminators nothing registered.
var Unmatched = Section{Schema: validate.PermissiveFactory}

func NewSections() *Table[Section] { return New(Unmatched) }
