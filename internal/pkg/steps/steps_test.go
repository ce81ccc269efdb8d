package steps

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
)

func TestRegistry(t *testing.T) {
	reg := Registry()

	require.Equal(t, []string{
		"FlagConfiguration",
		"SscaEnforcement",
		"SscaOrchestration",
		"SshWinRmAws",
	}, reg.Types())

	for _, def := range reg.Definitions() {
		t.Run(def.Type(), func(t *testing.T) {
			defaults := def.Defaults()
			require.Equal(t, def.Type(), step.TypeOf(defaults))
			require.NotEmpty(t, step.Describe(def, nil).Name)

			// A new step only lacks what the user must enter.
			errs := reg.Validate(defaults, nil)
			require.True(t, errs.Has(step.PathName))
			require.True(t, errs.Has(step.PathIdentifier))
			require.False(t, errs.Has(step.PathType))
		})
	}
}

func TestRegistry_UnknownType(t *testing.T) {
	reg := Registry()

	errs := reg.Validate(step.Config{
		"identifier": "x",
		"name":       "x",
		"type":       "Bogus",
		"spec":       map[string]any{"anything": []any{1.0, "two"}},
	}, nil)

	require.Equal(t, []string{step.PathType}, errs.Paths())
}
