package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/form"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/i18n"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/validate"
)

func TestTable(t *testing.T) {
	table := New("fallback").
		Register("image", "image-entry").
		Register("repository", "repository-entry")

	assert.Equal(t, "image-entry", table.Select("image"))
	assert.Equal(t, "fallback", table.Select("unknown"))
	assert.Equal(t, "fallback", table.Select(""))
	assert.Equal(t, []string{"image", "repository"}, table.Keys())
	assert.Equal(t, 2, table.Len())

	_, ok := table.Lookup("unknown")
	assert.False(t, ok)

	assert.Panics(t, func() { table.Register("image", "again") })
}

func TestSectionsUnknownDiscriminator(t *testing.T) {
	sections := NewSections().Register("image", Section{
		Fields: func(prefix string) []form.FieldSpec {
			return []form.FieldSpec{{Path: prefix + ".image"}}
		},
		Schema: func(i18n.GetString) validate.Schema {
			return validate.SchemaFunc(func(_ map[string]any, prefix string, errs *validate.Errors) {
				errs.Add(prefix+".image", "required")
			})
		},
	})

	for _, discriminator := range []string{"", "nope", "IMAGE"} {
		section := sections.Select(discriminator)
		assert.Empty(t, section.FieldsAt("spec.source.spec"))

		errs := validate.NewErrors()
		require.NotPanics(t, func() {
			section.SchemaFor(i18n.Default()).Validate(map[string]any{}, "spec.source.spec", errs)
		})
		assert.True(t, errs.Empty())
	}

	section := sections.Select("image")
	assert.Equal(t, []form.FieldSpec{{Path: "spec.source.spec.image"}}, section.FieldsAt("spec.source.spec"))
}
