package validate

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrors(t *testing.T) {
	errs := NewErrors()
	require.True(t, errs.Empty())
	require.NoError(t, errs.Err())

	errs.Add("spec.region", "Region is required")
	errs.Add("identifier", "Identifier is required")
	errs.Add("spec.region", "ignored")

	assert.Equal(t, 2, errs.Len())
	assert.Equal(t, []string{"spec.region", "identifier"}, errs.Paths())
	assert.Equal(t, "Region is required", errs.Get("spec.region"))
	assert.EqualError(t, errs.Err(),
		"validation failed: spec.region: Region is required; identifier: Identifier is required")

	filtered := errs.Filter(func(p string) bool { return p == "identifier" })
	assert.Equal(t, []string{"identifier"}, filtered.Paths())

	var nilErrs *Errors
	assert.Equal(t, 0, nilErrs.Len())
}

func TestErrorsJSON(t *testing.T) {
	errs := NewErrors()
	errs.Add("b", "two")
	errs.Add("a", "one")

	data, err := json.Marshal(errs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"one","b":"two"}`, string(data))

	var decoded Errors
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"a", "b"}, decoded.Paths())
}

func TestParseTimeout(t *testing.T) {
	testCases := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{input: "10m", expected: 10 * time.Minute},
		{input: "1d 2h 30m 10s 500ms", expected: 26*time.Hour + 30*time.Minute + 10*time.Second + 500*time.Millisecond},
		{input: "1w", expected: 7 * 24 * time.Hour},
		{input: "90s", expected: 90 * time.Second},
		{input: "ten minutes", wantErr: true},
		{input: "10", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			actual, err := ParseTimeout(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestFormatTimeout(t *testing.T) {
	assert.Equal(t, "10s", FormatTimeout(10*time.Second))
	assert.Equal(t, "1d 1h 1m", FormatTimeout(25*time.Hour+time.Minute))
	assert.Equal(t, "0s", FormatTimeout(0))
}

func TestChecker(t *testing.T) {
	doc := map[string]any{
		"identifier": "1bad",
		"name":       "My Step",
		"timeout":    "5s",
		"spec": map[string]any{
			"connectorRef": "<+input>",
			"region":       "",
			"mode":         "sideways",
			"vpcs":         []any{"vpc-1", ""},
			"tags":         map[string]any{"env": "prod"},
			"flag":         "maybe",
			"weight":       "12.5",
			"memory":       "500Mi",
			"cpu":          "lots",
		},
	}

	errs := NewErrors()
	c := NewChecker(doc, errs, nil)

	c.Identifier("identifier", "common.identifier")
	c.Name("name", "common.name")
	c.Timeout("timeout", "common.timeout", 10*time.Second)
	c.Required("spec.connectorRef", "common.connector")
	c.Required("spec.region", "common.region")
	c.OneOf("spec.mode", "common.mode", "generation", "ingestion")
	c.StringList("spec.vpcs", "common.vpcs", 1)
	c.StringMap("spec.tags", "common.tags")
	c.Bool("spec.flag", "common.simultaneous")
	c.IntRange("spec.weight", "common.weight", "validation.weightRange", 0, 100)
	c.Pattern("spec.memory", "common.limitMemory", MemoryRe, "500Mi")
	c.Pattern("spec.cpu", "common.limitCPU", CPURe, "0.5")

	assert.ElementsMatch(t, []string{
		"identifier",
		"timeout",
		"spec.region",
		"spec.mode",
		"spec.vpcs[1]",
		"spec.flag",
		"spec.weight",
		"spec.cpu",
	}, errs.Paths())

	assert.Equal(t, "Timeout must be at least 10s", errs.Get("timeout"))
	assert.Equal(t, "Step Mode must be one of generation, ingestion", errs.Get("spec.mode"))
	assert.False(t, errs.Has("spec.connectorRef"))
}

func TestCheckerSkipsRuntimeAndExpressions(t *testing.T) {
	doc := map[string]any{
		"timeout": "<+input>",
		"spec": map[string]any{
			"mode": "<+pipeline.variables.mode>",
			"vpcs": "<+input>.default(vpc-1)",
		},
	}

	errs := NewErrors()
	c := NewChecker(doc, errs, nil)
	c.Timeout("timeout", "common.timeout", 10*time.Second)
	c.OneOf("spec.mode", "common.mode", "generation")
	c.StringList("spec.vpcs", "common.vpcs", 1)

	assert.True(t, errs.Empty())
}

func TestAll(t *testing.T) {
	calls := 0
	s := All(
		SchemaFunc(func(_ map[string]any, prefix string, errs *Errors) {
			calls++
			errs.Add(prefix+".a", "a")
		}),
		Permissive,
		SchemaFunc(func(_ map[string]any, prefix string, errs *Errors) {
			calls++
			errs.Add(prefix+".b", "b")
		}),
	)

	errs := NewErrors()
	s.Validate(nil, "spec", errs)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{"spec.a", "spec.b"}, errs.Paths())
}
