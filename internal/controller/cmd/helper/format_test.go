package helper

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/pipeline-steps/pkg/api/v1"
)

func TestFormatError(t *testing.T) {
	respErr := &api.ResponseError{ErrorBody: api.ErrorBody{Msg: "step not found", Code: 404}}

	out := FormatError("failed to get step", respErr)
	require.Contains(t, out, "Description = failed to get step")
	require.Contains(t, out, "Error       = step not found")
	require.Contains(t, out, "Code        = 404")

	require.Contains(t, FormatError("failed", errors.New("bad args")), "Code        = 400")
}

func TestFormatTime(t *testing.T) {
	require.Equal(t, "N/A", FormatTime(time.Time{}))
	require.Equal(t, "2026-01-02T03:04:05Z", FormatTime(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestFormatYAML(t *testing.T) {
	out := FormatYAML(map[string]any{"identifier": "aws", "spec": map[string]any{"region": "us-east-1"}})
	require.Equal(t, "identifier: aws\nspec:\n  region: us-east-1\n", out)
}
