package dev

import (
	"sync"
	"time"

	serverstate "github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/state"
)

// State keeps everything in memory. It is lost on restart.
type State struct {
	namespaces     map[string]*state.Namespace
	namespacesLock sync.RWMutex

	steps     map[stepCompositeKey]*state.Step
	stepsLock sync.RWMutex

	now func() time.Time
}

func New() serverstate.State {
	return &State{
		namespaces: make(map[string]*state.Namespace),
		steps:      make(map[stepCompositeKey]*state.Step),
		now:        time.Now,
	}
}

type stepCompositeKey struct {
	id        string
	namespace string
}
