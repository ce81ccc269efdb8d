package redis

import (
	"errors"
	"sort"

	"go.uber.org/zap"

	serverstate "github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/state"
)

type Namespaces struct {
	s *State
}

func (n *Namespaces) Create(req *serverstate.NamespacesCreateReq) (*serverstate.NamespacesCreateResp, *serverstate.ErrorResp) {
	n.s.namespacesLock.Lock()
	defer n.s.namespacesLock.Unlock()

	ctx, cancel := n.s.ctx()
	defer cancel()

	req.Namespace.Stamp(n.s.now())

	data, err := encode(req.Namespace)
	if err != nil {
		return nil, n.s.internalError("failed to encode namespace", err)
	}

	ok, err := n.s.client.SetNX(ctx, n.s.namespaceKey(req.Namespace.ID), data, 0).Result()
	if err != nil {
		return nil, n.s.internalError("failed to store namespace", err)
	}
	if !ok {
		return nil, serverstate.NewErrorResp(errors.New("namespace already exists"), 409)
	}

	if err := n.s.client.SAdd(ctx, n.s.namespacesIndexKey(), req.Namespace.ID).Err(); err != nil {
		return nil, n.s.internalError("failed to index namespace", err)
	}

	if n.s.enableCache {
		n.s.namespacesCache[req.Namespace.ID] = req.Namespace
	}

	n.s.logger.Debug("namespace created", zap.String("namespace", req.Namespace.ID))
	return &serverstate.NamespacesCreateResp{}, nil
}

func (n *Namespaces) Delete(req *serverstate.NamespacesDeleteReq) (*serverstate.NamespacesDeleteResp, *serverstate.ErrorResp) {
	ctx, cancel := n.s.ctx()
	defer cancel()

	// Check if any steps are stored in the namespace.
	count, err := n.s.client.SCard(ctx, n.s.stepsIndexKey(req.Name)).Result()
	if err != nil {
		return nil, n.s.internalError("failed to check steps", err)
	}
	if count > 0 {
		return nil, serverstate.NewErrorResp(errors.New("cannot delete in-use namespace"), 409)
	}

	n.s.namespacesLock.Lock()
	defer n.s.namespacesLock.Unlock()

	deleted, err := n.s.client.Del(ctx, n.s.namespaceKey(req.Name)).Result()
	if err != nil {
		return nil, n.s.internalError("failed to delete namespace", err)
	}
	if deleted == 0 {
		return nil, serverstate.NewErrorResp(errors.New("namespace not found"), 404)
	}

	if err := n.s.client.SRem(ctx, n.s.namespacesIndexKey(), req.Name).Err(); err != nil {
		return nil, n.s.internalError("failed to unindex namespace", err)
	}

	if n.s.enableCache {
		delete(n.s.namespacesCache, req.Name)
	}

	n.s.logger.Debug("namespace deleted", zap.String("namespace", req.Name))
	return &serverstate.NamespacesDeleteResp{}, nil
}

func (n *Namespaces) Get(req *serverstate.NamespacesGetReq) (*serverstate.NamespacesGetResp, *serverstate.ErrorResp) {
	if n.s.enableCache {
		n.s.namespacesLock.RLock()
		ns, ok := n.s.namespacesCache[req.Name]
		n.s.namespacesLock.RUnlock()
		if ok {
			return &serverstate.NamespacesGetResp{Namespace: ns}, nil
		}
	}

	ctx, cancel := n.s.ctx()
	defer cancel()

	var ns state.Namespace
	found, err := n.s.getJSON(ctx, n.s.namespaceKey(req.Name), &ns)
	if err != nil {
		return nil, n.s.internalError("failed to get namespace", err)
	}
	if !found {
		return nil, serverstate.NewErrorResp(errors.New("namespace not found"), 404)
	}

	if n.s.enableCache {
		n.s.namespacesLock.Lock()
		n.s.namespacesCache[req.Name] = &ns
		n.s.namespacesLock.Unlock()
	}

	return &serverstate.NamespacesGetResp{Namespace: &ns}, nil
}

func (n *Namespaces) List(_ *serverstate.NamespacesListReq) (*serverstate.NamespacesListResp, *serverstate.ErrorResp) {
	ctx, cancel := n.s.ctx()
	defer cancel()

	names, err := n.s.client.SMembers(ctx, n.s.namespacesIndexKey()).Result()
	if err != nil {
		return nil, n.s.internalError("failed to list namespaces", err)
	}
	sort.Strings(names)

	resp := serverstate.NamespacesListResp{}

	for _, name := range names {
		var ns state.Namespace
		found, err := n.s.getJSON(ctx, n.s.namespaceKey(name), &ns)
		if err != nil || !found {
			n.s.logger.Warn("failed to get namespace", zap.String("namespace", name), zap.Error(err))
			continue
		}

		steps, err := n.s.client.SCard(ctx, n.s.stepsIndexKey(name)).Result()
		if err != nil {
			return nil, n.s.internalError("failed to count steps", err)
		}
		resp.Namespaces = append(resp.Namespaces, ns.Stub(int(steps)))
	}

	return &resp, nil
}
