package initialization

import (
	"context"
	"testing"

	"github.com/flowbaker/hubspot-executor/internal/config"
	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		HubSpot: config.HubSpotConfig{BaseURL: "http://127.0.0.1:1", AccessToken: "pat"},
		Polling: config.PollingConfig{TestPageSize: 10, LivePageSize: 100, HistoryBatchSize: 50, MaxHistoryWorkers: 2},
		Watermark: config.WatermarkConfig{
			Backend: "memory",
		},
		Tasks: config.TasksConfig{Backend: config.TaskBackendLog},
	}
}

func TestNewExecutorContainer(t *testing.T) {
	container, err := NewExecutorContainer(testConfig())
	require.NoError(t, err)

	ctx := context.Background()
	params := domain.SelectIntegrationParams{IntegrationType: domain.IntegrationType_HubSpot}

	_, err = container.IntegrationSelector.SelectCreator(ctx, params)
	assert.NoError(t, err)

	_, err = container.IntegrationSelector.SelectPoller(ctx, params)
	assert.NoError(t, err)

	_, err = container.IntegrationSelector.SelectConnectionTester(ctx, params)
	assert.NoError(t, err)

	integrations := container.ExecutorService.ListIntegrations()
	require.Len(t, integrations, 1)
	assert.Equal(t, domain.IntegrationType_HubSpot, integrations[0].ID)

	credential, err := container.CredentialManager.GetFullCredential(ctx, config.DefaultCredentialID)
	require.NoError(t, err)
	assert.Equal(t, "pat", credential.DecryptedPayload["access_token"])
}

func TestBuildRunner_MemoryAndLog(t *testing.T) {
	container, err := NewExecutorContainer(testConfig())
	require.NoError(t, err)

	ctx := context.Background()

	resources, err := container.BuildRunner(ctx)
	require.NoError(t, err)
	require.NotNil(t, resources.Runner)

	key := domain.WatermarkKey{IntegrationType: domain.IntegrationType_HubSpot, TriggerID: "t"}
	require.NoError(t, resources.Store.Put(ctx, key, 42))

	value, ok, err := resources.Store.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), value)

	assert.NoError(t, resources.Close(ctx))
}

func TestBuildRunner_BadRedisURI(t *testing.T) {
	cfg := testConfig()
	cfg.Tasks = config.TasksConfig{Backend: config.TaskBackendRedis, RedisURI: "not a url"}

	container, err := NewExecutorContainer(cfg)
	require.NoError(t, err)

	_, err = container.BuildRunner(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tasks redis uri")
}
