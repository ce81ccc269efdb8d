package fieldpath

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPrefix(t *testing.T) {
	assert.Equal(t, "spec.variation", WithPrefix("", "spec.variation"))
	assert.Equal(t, "spec.instructions[2].spec.variation",
		WithPrefix(Index("spec.instructions", 2), "spec.variation"))
	assert.Equal(t, "spec", WithPrefix("spec", ""))
}

func TestParse(t *testing.T) {
	segs, err := Parse("spec.instructions[2].spec.distribution.variations[0].weight")
	require.NoError(t, err)
	require.Len(t, segs, 8)
	assert.Equal(t, Segment{Key: "instructions"}, segs[1])
	assert.Equal(t, Segment{Index: 2, IsIndex: true}, segs[2])
	assert.Equal(t, Segment{Key: "weight"}, segs[7])

	for _, bad := range []string{"", "spec..x", "spec[", "spec[x]", "spec[-1]"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestSet_IndexLimit(t *testing.T) {
	doc := map[string]any{}

	err := Set(doc, "spec.x[2000000000]", 1.0)
	require.ErrorIs(t, err, ErrInvalidPath)
	assert.Empty(t, doc)

	require.NoError(t, Set(doc, fmt.Sprintf("spec.x[%d]", MaxIndex), 1.0))
	list := doc["spec"].(map[string]any)["x"].([]any)
	assert.Len(t, list, MaxIndex+1)

	_, ok := Get(doc, fmt.Sprintf("spec.x[%d]", MaxIndex+1))
	assert.False(t, ok)
}

func TestGetSet(t *testing.T) {
	doc := map[string]any{}

	require.NoError(t, Set(doc, "spec.instructions[1].spec.variation", "true"))
	require.NoError(t, Set(doc, "spec.instructions[0].type", "SetFeatureFlagState"))

	v, ok := Get(doc, "spec.instructions[1].spec.variation")
	require.True(t, ok)
	assert.Equal(t, "true", v)

	v, ok = Get(doc, "spec.instructions[0].type")
	require.True(t, ok)
	assert.Equal(t, "SetFeatureFlagState", v)

	_, ok = Get(doc, "spec.instructions[5]")
	assert.False(t, ok)
	_, ok = Get(doc, "spec.instructions.type")
	assert.False(t, ok)

	err := Set(doc, "spec.instructions[0].type.nested", "x")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestDelete(t *testing.T) {
	doc := map[string]any{
		"spec": map[string]any{
			"region": "us-east-1",
			"list":   []any{"a", "b"},
		},
	}

	Delete(doc, "spec.region")
	_, ok := Get(doc, "spec.region")
	assert.False(t, ok)

	Delete(doc, "spec.list[0]")
	v, ok := Get(doc, "spec.list[1]")
	require.True(t, ok)
	assert.Equal(t, "b", v)

	Delete(doc, "does.not.exist")
}

func TestWalkAndFlatten(t *testing.T) {
	doc := map[string]any{
		"name": "aws",
		"spec": map[string]any{
			"tags":   map[string]any{},
			"vpcs":   []any{"vpc-1"},
			"weight": float64(50),
			"async":  true,
		},
	}

	assert.Equal(t, [][2]string{
		{"name", "aws"},
		{"spec.async", "true"},
		{"spec.tags", "{}"},
		{"spec.vpcs[0]", "vpc-1"},
		{"spec.weight", "50"},
	}, Flatten(doc))
}

func TestClone(t *testing.T) {
	orig := map[string]any{"spec": map[string]any{"list": []any{"a"}}}
	cp := Clone(orig).(map[string]any)

	require.NoError(t, Set(cp, "spec.list[0]", "b"))

	v, _ := Get(orig, "spec.list[0]")
	assert.Equal(t, "a", v)
}

func TestIsDescendant(t *testing.T) {
	assert.True(t, IsDescendant("spec.instructions[0].spec", "spec.instructions"))
	assert.True(t, IsDescendant("spec.tags", "spec.tags"))
	assert.True(t, IsDescendant("spec.tags.env", "spec.tags"))
	assert.False(t, IsDescendant("spec.tagsx", "spec.tags"))
}
