package redis

import (
	"context"
	"errors"
	"sort"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	serverstate "github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/state"
)

// errRevisionMismatch aborts an update transaction whose expected revision
// is stale.
var errRevisionMismatch = errors.New("step revision does not match")

var errStepNotFound = errors.New("step not found")

type Steps struct {
	s *State
}

func (p *Steps) Create(req *serverstate.StepsCreateReq) (*serverstate.StepsCreateResp, *serverstate.ErrorResp) {
	ctx, cancel := p.s.ctx()
	defer cancel()

	exists, err := p.s.client.Exists(ctx, p.s.namespaceKey(req.Step.Namespace)).Result()
	if err != nil {
		return nil, p.s.internalError("failed to check namespace", err)
	}
	if exists == 0 {
		return nil, serverstate.NewErrorResp(errors.New("namespace not found"), 404)
	}

	stored := req.Step.Copy()
	stored.Stamp(p.s.now())

	data, err := encode(stored)
	if err != nil {
		return nil, p.s.internalError("failed to encode step", err)
	}

	p.s.stepsLock.Lock()
	defer p.s.stepsLock.Unlock()

	ok, err := p.s.client.SetNX(ctx, p.s.stepKey(stored.Namespace, stored.ID), data, 0).Result()
	if err != nil {
		return nil, p.s.internalError("failed to store step", err)
	}
	if !ok {
		return nil, serverstate.NewErrorResp(errors.New("step already exists"), 409)
	}

	if err := p.s.client.SAdd(ctx, p.s.stepsIndexKey(stored.Namespace), stored.ID).Err(); err != nil {
		return nil, p.s.internalError("failed to index step", err)
	}

	if p.s.enableCache {
		p.s.stepsCache[stepCompositeKey{id: stored.ID, namespace: stored.Namespace}] = stored.Copy()
	}

	p.s.logger.Debug("step created",
		zap.String("namespace", stored.Namespace), zap.String("id", stored.ID))

	return &serverstate.StepsCreateResp{Step: stored}, nil
}

func (p *Steps) Delete(req *serverstate.StepsDeleteReq) (*serverstate.StepsDeleteResp, *serverstate.ErrorResp) {
	ctx, cancel := p.s.ctx()
	defer cancel()

	p.s.stepsLock.Lock()
	defer p.s.stepsLock.Unlock()

	deleted, err := p.s.client.Del(ctx, p.s.stepKey(req.Namespace, req.ID)).Result()
	if err != nil {
		return nil, p.s.internalError("failed to delete step", err)
	}
	if deleted == 0 {
		return nil, serverstate.NewErrorResp(errStepNotFound, 404)
	}

	if err := p.s.client.SRem(ctx, p.s.stepsIndexKey(req.Namespace), req.ID).Err(); err != nil {
		return nil, p.s.internalError("failed to unindex step", err)
	}

	if p.s.enableCache {
		delete(p.s.stepsCache, stepCompositeKey{id: req.ID, namespace: req.Namespace})
	}

	p.s.logger.Debug("step deleted",
		zap.String("namespace", req.Namespace), zap.String("id", req.ID))

	return &serverstate.StepsDeleteResp{}, nil
}

func (p *Steps) Get(req *serverstate.StepsGetReq) (*serverstate.StepsGetResp, *serverstate.ErrorResp) {
	k := stepCompositeKey{id: req.ID, namespace: req.Namespace}

	if p.s.enableCache {
		p.s.stepsLock.RLock()
		cached, ok := p.s.stepsCache[k]
		p.s.stepsLock.RUnlock()
		if ok {
			return &serverstate.StepsGetResp{Step: cached.Copy()}, nil
		}
	}

	ctx, cancel := p.s.ctx()
	defer cancel()

	step, errResp := p.load(ctx, req.Namespace, req.ID)
	if errResp != nil {
		return nil, errResp
	}

	if p.s.enableCache {
		p.s.stepsLock.Lock()
		p.s.stepsCache[k] = step.Copy()
		p.s.stepsLock.Unlock()
	}

	return &serverstate.StepsGetResp{Step: step}, nil
}

func (p *Steps) List(req *serverstate.StepsListReq) (*serverstate.StepsListResp, *serverstate.ErrorResp) {
	ctx, cancel := p.s.ctx()
	defer cancel()

	namespaces := []string{req.Namespace}
	if req.Namespace == "*" {
		var err error
		namespaces, err = p.s.client.SMembers(ctx, p.s.namespacesIndexKey()).Result()
		if err != nil {
			return nil, p.s.internalError("failed to list namespaces", err)
		}
	}

	resp := serverstate.StepsListResp{}

	for _, ns := range namespaces {
		ids, err := p.s.client.SMembers(ctx, p.s.stepsIndexKey(ns)).Result()
		if err != nil {
			return nil, p.s.internalError("failed to list steps", err)
		}

		for _, id := range ids {
			step, errResp := p.load(ctx, ns, id)
			if errResp != nil {
				p.s.logger.Warn("failed to get step",
					zap.String("namespace", ns), zap.String("id", id), zap.Error(errResp.Err()))
				continue
			}
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

// Update runs the revision check and the write in one WATCH transaction so
// a concurrent writer on another server makes it fail rather than be lost.
func (p *Steps) Update(req *serverstate.StepsUpdateReq) (*serverstate.StepsUpdateResp, *serverstate.ErrorResp) {
	ctx, cancel := p.s.ctx()
	defer cancel()

	p.s.stepsLock.Lock()
	defer p.s.stepsLock.Unlock()

	key := p.s.stepKey(req.Step.Namespace, req.Step.ID)

	var stored *state.Step

	txf := func(tx *goredis.Tx) error {
		var existing state.Step
		data, err := tx.Get(ctx, key).Result()
		if errors.Is(err, goredis.Nil) {
			return errStepNotFound
		}
		if err != nil {
			return err
		}
		if err := decode(data, &existing); err != nil {
			return err
		}

		if !req.ExpectedRevision.IsZero() && req.ExpectedRevision != existing.Revision {
			return errRevisionMismatch
		}

		stored = req.Step.Copy()
		stored.CreateTime = existing.CreateTime
		stored.Stamp(p.s.now())

		encoded, err := encode(stored)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, key, encoded, 0)
			return nil
		})
		return err
	}

	switch err := p.s.client.Watch(ctx, txf, key); {
	case err == nil:
	case errors.Is(err, errStepNotFound):
		return nil, serverstate.NewErrorResp(errStepNotFound, 404)
	case errors.Is(err, errRevisionMismatch), errors.Is(err, goredis.TxFailedErr):
		return nil, serverstate.NewErrorResp(errRevisionMismatch, 409)
	default:
		return nil, p.s.internalError("failed to update step", err)
	}

	if p.s.enableCache {
		p.s.stepsCache[stepCompositeKey{id: stored.ID, namespace: stored.Namespace}] = stored.Copy()
	}

	p.s.logger.Debug("step updated",
		zap.String("namespace", stored.Namespace), zap.String("id", stored.ID))

	return &serverstate.StepsUpdateResp{Step: stored}, nil
}

func (p *Steps) load(ctx context.Context, namespace, id string) (*state.Step, *serverstate.ErrorResp) {
	var step state.Step
	found, err := p.s.getJSON(ctx, p.s.stepKey(namespace, id), &step)
	if err != nil {
		return nil, p.s.internalError("failed to get step", err)
	}
	if !found {
		return nil, serverstate.NewErrorResp(errStepNotFound, 404)
	}
	return &step, nil
}
