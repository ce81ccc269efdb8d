// Package step holds the step configuration document, the definitions step
// types register, and the operations shared by every type: validation,
// input mode negotiation and rendering of the edit, input-set and variables
// views.
package step

import (
	"encoding/json"
	"fmt"

	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/fieldpath"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/value"
)

// Config is a step document: identifier, name, type, an optional timeout and
// a type specific spec. Numbers are float64 as decoded from JSON.
type Config = map[string]any

const (
	PathIdentifier = "identifier"
	PathName       = "name"
	PathType       = "type"
	PathTimeout    = "timeout"
	PathSpec       = "spec"
)

func TypeOf(cfg Config) string       { return stringAt(cfg, PathType) }
func IdentifierOf(cfg Config) string { return stringAt(cfg, PathIdentifier) }
func NameOf(cfg Config) string       { return stringAt(cfg, PathName) }

func stringAt(cfg Config, key string) string {
	s, _ := cfg[key].(string)
	return s
}

// SpecPath returns the path of name below spec.
func SpecPath(name string) string { return fieldpath.WithPrefix(PathSpec, name) }

// ValueAt classifies the leaf at path.
func ValueAt(cfg Config, path string) value.Value {
	raw, _ := fieldpath.Get(cfg, path)
	return value.Of(raw)
}

func Clone(cfg Config) Config {
	if cfg == nil {
		return nil
	}
	return fieldpath.Clone(cfg).(map[string]any)
}

// Decode parses a JSON step document.
func Decode(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode step: %w", err)
	}
	if cfg == nil {
		return nil, fmt.Errorf("failed to decode step: document is empty")
	}
	return cfg, nil
}
