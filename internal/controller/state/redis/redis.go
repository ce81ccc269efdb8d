// Package redis stores state in Redis as JSON documents so it is shared
// across server instances and survives restarts.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	serverstate "github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/logger"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/state"
)

// opTimeout bounds every Redis round trip.
const opTimeout = 5 * time.Second

// State implements serverstate.State on Redis. Each object is a JSON string
// key and every collection has a set of member keys.
type State struct {
	client goredis.UniversalClient
	prefix string
	logger *zap.Logger

	// enableCache turns on an in-process read-through cache. Writes made by
	// this instance keep it current.
	enableCache bool

	namespacesCache map[string]*state.Namespace
	namespacesLock  sync.RWMutex

	stepsCache map[stepCompositeKey]*state.Step
	stepsLock  sync.RWMutex

	now func() time.Time
}

type stepCompositeKey struct {
	id        string
	namespace string
}

func New(client goredis.UniversalClient, prefix string, cache bool, zLogger *zap.Logger) (serverstate.State, error) {
	s := &State{
		client:          client,
		prefix:          prefix,
		enableCache:     cache,
		logger:          zLogger.Named(logger.ComponentNameState),
		namespacesCache: make(map[string]*state.Namespace),
		stepsCache:      make(map[stepCompositeKey]*state.Step),
		now:             time.Now,
	}

	ctx, cancel := s.ctx()
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return s, nil
}

func (s *State) Namespaces() serverstate.Namespaces { return &Namespaces{s: s} }

func (s *State) Steps() serverstate.Steps { return &Steps{s: s} }

func (s *State) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

func (s *State) namespaceKey(name string) string {
	return fmt.Sprintf("%s:namespace:%s", s.prefix, name)
}

func (s *State) namespacesIndexKey() string {
	return s.prefix + ":namespaces"
}

func (s *State) stepKey(namespace, id string) string {
	return fmt.Sprintf("%s:step:%s:%s", s.prefix, namespace, id)
}

func (s *State) stepsIndexKey(namespace string) string {
	return fmt.Sprintf("%s:steps:%s", s.prefix, namespace)
}

func encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal data: %w", err)
	}
	return string(data), nil
}

func decode(data string, target any) error {
	if err := json.Unmarshal([]byte(data), target); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}

// getJSON reads key into target. found is false when the key does not
// exist.
func (s *State) getJSON(ctx context.Context, key string, target any) (found bool, err error) {
	data, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, decode(data, target)
}

func (s *State) internalError(msg string, err error) *serverstate.ErrorResp {
	s.logger.Error(msg, zap.Error(err))
	return serverstate.NewErrorResp(fmt.Errorf("%s: %w", msg, err), 500)
}
