package dev

import (
	"errors"
	"sort"

	"github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
)

func (s *State) Namespaces() state.Namespaces {
	return &Namespaces{s: s}
}

type Namespaces struct {
	s *State
}

func (p *Namespaces) Create(req *state.NamespacesCreateReq) (*state.NamespacesCreateResp, *state.ErrorResp) {
	p.s.namespacesLock.Lock()
	defer p.s.namespacesLock.Unlock()

	_, ok := p.s.namespaces[req.Namespace.ID]
	if ok {
		return nil, state.NewErrorResp(errors.New("namespace already exists"), 409)
	}

	req.Namespace.Stamp(p.s.now())
	p.s.namespaces[req.Namespace.ID] = req.Namespace
	return &state.NamespacesCreateResp{}, nil
}

func (p *Namespaces) Delete(req *state.NamespacesDeleteReq) (*state.NamespacesDeleteResp, *state.ErrorResp) {

	// Check if any steps are stored in the namespace.
	p.s.stepsLock.RLock()
	for k := range p.s.steps {
		if k.namespace == req.Name {
			p.s.stepsLock.RUnlock()
			return nil, state.NewErrorResp(errors.New("cannot delete in-use namespace"), 409)
		}
	}
	p.s.stepsLock.RUnlock()

	p.s.namespacesLock.Lock()
	defer p.s.namespacesLock.Unlock()

	if _, ok := p.s.namespaces[req.Name]; !ok {
		return nil, state.NewErrorResp(errors.New("namespace not found"), 404)
	} else {
		delete(p.s.namespaces, req.Name)
		return &state.NamespacesDeleteResp{}, nil
	}
}

func (p *Namespaces) Get(req *state.NamespacesGetReq) (*state.NamespacesGetResp, *state.ErrorResp) {
	p.s.namespacesLock.RLock()
	defer p.s.namespacesLock.RUnlock()

	if ns, ok := p.s.namespaces[req.Name]; !ok {
		return nil, state.NewErrorResp(errors.New("namespace not found"), 404)
	} else {
		return &state.NamespacesGetResp{Namespace: ns}, nil
	}
}

func (p *Namespaces) List(_ *state.NamespacesListReq) (*state.NamespacesListResp, *state.ErrorResp) {
	p.s.stepsLock.RLock()
	counts := make(map[string]int)
	for k := range p.s.steps {
		counts[k.namespace]++
	}
	p.s.stepsLock.RUnlock()

	p.s.namespacesLock.RLock()
	defer p.s.namespacesLock.RUnlock()

	resp := state.NamespacesListResp{}

	for _, ns := range p.s.namespaces {
		resp.Namespaces = append(resp.Namespaces, ns.Stub(counts[ns.ID]))
	}

	sort.Slice(resp.Namespaces, func(i, j int) bool {
		return resp.Namespaces[i].ID < resp.Namespaces[j].ID
	})

	return &resp, nil
}
