package state

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/oklog/ulid/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	serverstate "github.com/hashicorp-forge/pipeline-steps/internal/controller/server/state"
	"github.com/hashicorp-forge/pipeline-steps/internal/controller/state/dev"
	"github.com/hashicorp-forge/pipeline-steps/internal/controller/state/redis"
	"github.com/hashicorp-forge/pipeline-steps/internal/helper"
	"github.com/hashicorp-forge/pipeline-steps/internal/pkg/state"
)

func backends(t *testing.T) map[string]serverstate.State {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cached, err := redis.New(client, "test-cached", true, zap.NewNop())
	require.NoError(t, err)

	uncached, err := redis.New(client, "test-uncached", false, zap.NewNop())
	require.NoError(t, err)

	return map[string]serverstate.State{
		"dev":            dev.New(),
		"redis_cached":   cached,
		"redis_uncached": uncached,
	}
}

func testStep(id, namespace string) *state.Step {
	return &state.Step{
		ID:        id,
		Namespace: namespace,
		Config: map[string]any{
			"identifier": id,
			"name":       "Step " + id,
			"type":       "FlagConfiguration",
			"timeout":    "10m",
		},
	}
}

func TestBackend_Namespaces(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ns := backend.Namespaces()

			_, errResp := ns.Create(&serverstate.NamespacesCreateReq{
				Namespace: &state.Namespace{ID: "platform", Description: "platform team"},
			})
			require.Nil(t, errResp)

			_, errResp = ns.Create(&serverstate.NamespacesCreateReq{
				Namespace: &state.Namespace{ID: "platform"},
			})
			require.NotNil(t, errResp)
			require.Equal(t, 409, errResp.StatusCode())

			_, errResp = ns.Create(&serverstate.NamespacesCreateReq{
				Namespace: &state.Namespace{ID: "apps"},
			})
			require.Nil(t, errResp)

			getResp, errResp := ns.Get(&serverstate.NamespacesGetReq{Name: "platform"})
			require.Nil(t, errResp)
			require.Equal(t, "platform team", getResp.Namespace.Description)

			listResp, errResp := ns.List(&serverstate.NamespacesListReq{})
			require.Nil(t, errResp)
			require.Len(t, listResp.Namespaces, 2)
			require.Equal(t, "apps", listResp.Namespaces[0].ID)
			require.Equal(t, "platform", listResp.Namespaces[1].ID)
			require.Zero(t, listResp.Namespaces[1].Steps)
			require.False(t, listResp.Namespaces[1].CreateTime.IsZero())

			_, errResp = ns.Delete(&serverstate.NamespacesDeleteReq{Name: "apps"})
			require.Nil(t, errResp)

			_, errResp = ns.Get(&serverstate.NamespacesGetReq{Name: "apps"})
			require.NotNil(t, errResp)
			require.Equal(t, 404, errResp.StatusCode())

			_, errResp = ns.Delete(&serverstate.NamespacesDeleteReq{Name: "apps"})
			require.NotNil(t, errResp)
			require.Equal(t, 404, errResp.StatusCode())
		})
	}
}

func TestBackend_Steps(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, errResp := backend.Namespaces().Create(&serverstate.NamespacesCreateReq{
				Namespace: &state.Namespace{ID: "default"},
			})
			require.Nil(t, errResp)

			steps := backend.Steps()

			_, errResp = steps.Create(&serverstate.StepsCreateReq{Step: testStep("orphan", "missing")})
			require.NotNil(t, errResp)
			require.Equal(t, 404, errResp.StatusCode())

			created, errResp := steps.Create(&serverstate.StepsCreateReq{Step: testStep("flags", "default")})
			require.Nil(t, errResp)
			require.False(t, created.Step.Revision.IsZero())
			require.False(t, created.Step.CreateTime.IsZero())

			_, errResp = steps.Create(&serverstate.StepsCreateReq{Step: testStep("flags", "default")})
			require.NotNil(t, errResp)
			require.Equal(t, 409, errResp.StatusCode())

			_, errResp = steps.Create(&serverstate.StepsCreateReq{Step: testStep("aws", "default")})
			require.Nil(t, errResp)

			getResp, errResp := steps.Get(&serverstate.StepsGetReq{ID: "flags", Namespace: "default"})
			require.Nil(t, errResp)
			require.Equal(t, "Step flags", getResp.Step.Config["name"])
			require.Equal(t, created.Step.Revision, getResp.Step.Revision)

			listResp, errResp := steps.List(&serverstate.StepsListReq{Namespace: "default"})
			require.Nil(t, errResp)
			require.Len(t, listResp.Steps, 2)
			require.Equal(t, "aws", listResp.Steps[0].ID)
			require.Equal(t, "flags", listResp.Steps[1].ID)
			require.Equal(t, "FlagConfiguration", listResp.Steps[1].Type)

			allResp, errResp := steps.List(&serverstate.StepsListReq{Namespace: "*"})
			require.Nil(t, errResp)
			require.Len(t, allResp.Steps, 2)

			nsResp, errResp := backend.Namespaces().List(&serverstate.NamespacesListReq{})
			require.Nil(t, errResp)
			require.Len(t, nsResp.Namespaces, 1)
			require.Equal(t, 2, nsResp.Namespaces[0].Steps)

			_, errResp = backend.Namespaces().Delete(&serverstate.NamespacesDeleteReq{Name: "default"})
			require.NotNil(t, errResp)
			require.Equal(t, 409, errResp.StatusCode())

			_, errResp = steps.Delete(&serverstate.StepsDeleteReq{ID: "aws", Namespace: "default"})
			require.Nil(t, errResp)

			_, errResp = steps.Delete(&serverstate.StepsDeleteReq{ID: "aws", Namespace: "default"})
			require.NotNil(t, errResp)
			require.Equal(t, 404, errResp.StatusCode())
		})
	}
}

func TestBackend_StepsUpdate(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, errResp := backend.Namespaces().Create(&serverstate.NamespacesCreateReq{
				Namespace: &state.Namespace{ID: "default"},
			})
			require.Nil(t, errResp)

			steps := backend.Steps()

			created, errResp := steps.Create(&serverstate.StepsCreateReq{Step: testStep("flags", "default")})
			require.Nil(t, errResp)

			// Make sure the next revision carries a later timestamp.
			time.Sleep(2 * time.Millisecond)

			changed := created.Step.Copy()
			changed.Config["name"] = "Renamed"

			updated, errResp := steps.Update(&serverstate.StepsUpdateReq{
				Step:             changed,
				ExpectedRevision: created.Step.Revision,
			})
			require.Nil(t, errResp)
			require.NotEqual(t, created.Step.Revision, updated.Step.Revision)
			require.True(t, created.Step.CreateTime.Equal(updated.Step.CreateTime))

			// The old revision is now stale.
			_, errResp = steps.Update(&serverstate.StepsUpdateReq{
				Step:             changed,
				ExpectedRevision: created.Step.Revision,
			})
			require.NotNil(t, errResp)
			require.Equal(t, 409, errResp.StatusCode())

			// No expected revision means last write wins.
			_, errResp = steps.Update(&serverstate.StepsUpdateReq{Step: changed})
			require.Nil(t, errResp)

			getResp, errResp := steps.Get(&serverstate.StepsGetReq{ID: "flags", Namespace: "default"})
			require.Nil(t, errResp)
			require.Equal(t, "Renamed", getResp.Step.Config["name"])

			_, errResp = steps.Update(&serverstate.StepsUpdateReq{
				Step:             testStep("missing", "default"),
				ExpectedRevision: ulid.Make(),
			})
			require.NotNil(t, errResp)
			require.Equal(t, 404, errResp.StatusCode())
		})
	}
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig().Merge(&Config{
		Backend: BackendRedis,
		Redis:   &RedisConfig{Addr: "redis:6379", CacheEnabled: helper.PointerOf(false)},
	})
	require.Equal(t, BackendRedis, cfg.Backend)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, "pipeline-steps", cfg.Redis.Prefix)
	require.False(t, *cfg.Redis.CacheEnabled)
	require.NoError(t, cfg.Validate())

	require.Error(t, (&Config{Backend: "etcd"}).Validate())
	require.Error(t, (&Config{Backend: BackendRedis}).Validate())
	require.NoError(t, DefaultConfig().Validate())
}

func TestNewBackend_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := DefaultConfig().Merge(&Config{Backend: BackendRedis, Redis: &RedisConfig{Addr: mr.Addr()}})
	backend, err := NewBackend(cfg, zap.NewNop())
	require.NoError(t, err)

	_, errResp := backend.Namespaces().Create(&serverstate.NamespacesCreateReq{
		Namespace: &state.Namespace{ID: "default"},
	})
	require.Nil(t, errResp)
	require.True(t, mr.Exists("pipeline-steps:namespace:default"))

	_, err = NewBackend(&Config{Backend: "etcd"}, zap.NewNop())
	require.Error(t, err)
}
