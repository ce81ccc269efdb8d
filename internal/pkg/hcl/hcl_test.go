package hcl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleReference(t *testing.T) {
	ref, ok := SingleReference(" <+pipeline.variables.region> ")
	require.True(t, ok)
	assert.Equal(t, "pipeline.variables.region", ref)

	_, ok = SingleReference("app-<+pipeline.sequenceId>")
	assert.False(t, ok)

	_, ok = SingleReference("<+a>-<+b>")
	assert.False(t, ok)
}

func TestToTemplate(t *testing.T) {
	assert.Equal(t, "app-${pipeline.sequenceId}", ToTemplate("app-<+pipeline.sequenceId>"))
	assert.Equal(t, "$${literal}-${step.name}", ToTemplate("${literal}-<+ step.name >"))
	assert.Equal(t, "plain", ToTemplate("plain"))
}

func TestCheckExpression(t *testing.T) {
	assert.NoError(t, CheckExpression("<+pipeline.variables.region>"))
	assert.NoError(t, CheckExpression(`<+secrets.getValue("token")>`))
	assert.NoError(t, CheckExpression("no expression here"))
	assert.Error(t, CheckExpression("<+pipeline..name>"))
	assert.Error(t, CheckExpression("<+>"))
	assert.Error(t, CheckExpression("<+pipeline.name"))
	assert.Error(t, CheckExpression("<+pipeline.name> and <+step"))
}

func TestEvaluate(t *testing.T) {
	evalCtx, err := GenerateEvalContext(map[string]any{
		"pipeline": map[string]any{
			"name":      "deploy",
			"variables": map[string]any{"replicas": float64(3), "tags": []any{"a", "b"}},
		},
	})
	require.NoError(t, err)

	out, err := EvaluateTemplateString(ToTemplate("<+pipeline.name>-<+upper(pipeline.name)>"), evalCtx)
	require.NoError(t, err)
	assert.Equal(t, "deploy-DEPLOY", out)

	v, err := EvaluateExpression("pipeline.variables.replicas", evalCtx)
	require.NoError(t, err)
	assert.Equal(t, float64(3), v)

	v, err = EvaluateExpression("pipeline.variables.tags", evalCtx)
	require.NoError(t, err)
	assert.Equal(t, []any{"a", "b"}, v)

	_, err = EvaluateExpression("pipeline.missing", evalCtx)
	assert.Error(t, err)
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`name = "example"`), 0o644))

	var cfg struct {
		Name string `hcl:"name"`
	}
	require.NoError(t, ParseConfigFile(path, &cfg))
	assert.Equal(t, "example", cfg.Name)

	assert.Error(t, ParseConfigFile(filepath.Join(t.TempDir(), "missing.hcl"), &cfg))
}
