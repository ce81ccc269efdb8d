package dev

import (
	"errors"
	"sort"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
)

func (s *State) Steps() state.Steps {
	return &Steps{s: s}
}

type Steps struct {
	s *State
}

func (p *Steps) Create(req *state.StepsCreateReq) (*state.StepsCreateResp, *state.ErrorResp) {
	if err := p.namespaceExists(req.Step.Namespace); err != nil {
		return nil, err
	}

	p.s.stepsLock.Lock()
	defer p.s.stepsLock.Unlock()

	k := stepCompositeKey{id: req.Step.ID, namespace: req.Step.Namespace}

	if _, ok := p.s.steps[k]; ok {
		return nil, state.NewErrorResp(errors.New("step already exists"), 409)
	}

	stored := req.Step.Copy()
	stored.Stamp(p.s.now())
	p.s.steps[k] = stored

	return &state.StepsCreateResp{Step: stored.Copy()}, nil
}

func (p *Steps) Delete(req *state.StepsDeleteReq) (*state.StepsDeleteResp, *state.ErrorResp) {
	p.s.stepsLock.Lock()
	defer p.s.stepsLock.Unlock()

	k := stepCompositeKey{id: req.ID, namespace: req.Namespace}

	if _, ok := p.s.steps[k]; !ok {
		return nil, state.NewErrorResp(errors.New("step not found"), 404)
	} else {
		delete(p.s.steps, k)
		return &state.StepsDeleteResp{}, nil
	}
}

func (p *Steps) Get(req *state.StepsGetReq) (*state.StepsGetResp, *state.ErrorResp) {
	p.s.stepsLock.RLock()
	defer p.s.stepsLock.RUnlock()

	if step, ok := p.s.steps[stepCompositeKey{id: req.ID, namespace: req.Namespace}]; !ok {
		return nil, state.NewErrorResp(errors.New("step not found"), 404)
	} else {
		return &state.StepsGetResp{Step: step.Copy()}, nil
	}
}

func (p *Steps) List(req *state.StepsListReq) (*state.StepsListResp, *state.ErrorResp) {
	p.s.stepsLock.RLock()
	defer p.s.stepsLock.RUnlock()

	resp := state.StepsListResp{}

	for _, step := range p.s.steps {
		if req.Namespace == "*" || step.Namespace == req.Namespace {
			resp.Steps = append(resp.Steps, step.Stub())
		}
	}

	sort.Slice(resp.Steps, func(i, j int) bool {
		if resp.Steps[i].Namespace != resp.Steps[j].Namespace {
			return resp.Steps[i].Namespace < resp.Steps[j].Namespace
		}
		return resp.Steps[i].ID < resp.Steps[j].ID
	})

	return &resp, nil
}

func (p *Steps) Update(req *state.StepsUpdateReq) (*state.StepsUpdateResp, *state.ErrorResp) {
	p.s.stepsLock.Lock()
	defer p.s.stepsLock.Unlock()

	k := stepCompositeKey{id: req.Step.ID, namespace: req.Step.Namespace}

	existing, ok := p.s.steps[k]
	if !ok {
		return nil, state.NewErrorResp(errors.New("step not found"), 404)
	}
	if !req.ExpectedRevision.IsZero() && req.ExpectedRevision != existing.Revision {
		return nil, state.NewErrorResp(errors.New("step revision does not match"), 409)
	}

	stored := req.Step.Copy()
	stored.CreateTime = existing.CreateTime
	stored.Stamp(p.s.now())
	p.s.steps[k] = stored

	return &state.StepsUpdateResp{Step: stored.Copy()}, nil
}

func (p *Steps) namespaceExists(name string) *state.ErrorResp {
	p.s.namespacesLock.RLock()
	defer p.s.namespacesLock.RUnlock()

	if _, ok := p.s.namespaces[name]; !ok {
		return state.NewErrorResp(errors.New("namespace not found"), 404)
	}
	return nil
}
