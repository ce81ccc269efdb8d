// Package steps assembles the registry of every built-in step type.
package steps

import (
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/step"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/steps/awsinfra"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/steps/flagconfig"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/steps/ssca"
)

// Registry returns a new registry holding the built-in step types.
func Registry() *step.Registry {
	return step.NewRegistry(
		awsinfra.New(),
		flagconfig.New(),
		ssca.NewOrchestration(),
		ssca.NewEnforcement(),
	)
}
