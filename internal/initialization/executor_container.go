package initialization

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowbaker/hubspot-executor/internal/config"
	"github.com/flowbaker/hubspot-executor/internal/controllers"
	"github.com/flowbaker/hubspot-executor/internal/managers"
	"github.com/flowbaker/hubspot-executor/internal/scheduler"
	"github.com/flowbaker/hubspot-executor/pkg/domain"
	"github.com/flowbaker/hubspot-executor/pkg/domain/executor"
	"github.com/flowbaker/hubspot-executor/pkg/expressions"
	"github.com/flowbaker/hubspot-executor/pkg/storage/watermark"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// ExecutorContainer wires the integrations and services for one loaded
// configuration.
type ExecutorContainer struct {
	Config              *config.Config
	IntegrationSelector domain.IntegrationSelector
	CredentialManager   domain.ExecutorCredentialManager
	ExecutorService     executor.ExecutorService
	ExecutorController  *controllers.ExecutorController
}

func NewExecutorContainer(cfg *config.Config) (*ExecutorContainer, error) {
	log.Info().Msg("Building executor dependencies")

	integrationSelector := domain.NewIntegrationSelector()

	credentialManager := managers.NewExecutorCredentialManager(managers.ExecutorCredentialManagerDependencies{
		Credentials: cfg.DomainCredentials(),
	})

	integrationDeps := domain.IntegrationDeps{
		ParameterBinder:           expressions.NewPathBinder(expressions.DefaultPathBinderOptions()),
		ExecutorCredentialManager: credentialManager,
		HubSpotClientConfig:       cfg.HubSpotClientConfig(),
		PollingConfig:             cfg.PollingConfig(),
	}

	if err := registerIntegrations(integrationSelector, integrationDeps); err != nil {
		return nil, err
	}

	executorService := executor.NewExecutorService(executor.ExecutorServiceDependencies{
		IntegrationSelector: integrationSelector,
		CredentialManager:   credentialManager,
	})

	executorController := controllers.NewExecutorController(controllers.ExecutorControllerDependencies{
		ExecutorService: executorService,
	})

	log.Info().Msg("Executor dependencies built successfully")

	return &ExecutorContainer{
		Config:              cfg,
		IntegrationSelector: integrationSelector,
		CredentialManager:   credentialManager,
		ExecutorService:     executorService,
		ExecutorController:  executorController,
	}, nil
}

// RunnerResources is a trigger runner plus the connections it holds.
type RunnerResources struct {
	Runner *scheduler.Runner
	Store  domain.WatermarkStore

	redisClient *redis.Client
}

func (r *RunnerResources) Close(ctx context.Context) error {
	var errs []error

	if err := r.Store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to close watermark store: %w", err))
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close task stream client: %w", err))
		}
	}

	return errors.Join(errs...)
}

// BuildRunner opens the configured watermark store and task publisher.
func (c *ExecutorContainer) BuildRunner(ctx context.Context) (*RunnerResources, error) {
	store, err := watermark.Open(ctx, c.Config.WatermarkOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open watermark store: %w", err)
	}

	resources := &RunnerResources{Store: store}

	var taskPublisher domain.ExecutorTaskPublisher

	switch c.Config.Tasks.Backend {
	case config.TaskBackendRedis:
		redisOptions, err := redis.ParseURL(c.Config.Tasks.RedisURI)
		if err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("failed to parse tasks redis uri: %w", err)
		}

		resources.redisClient = redis.NewClient(redisOptions)
		if err := resources.redisClient.Ping(ctx).Err(); err != nil {
			_ = resources.Close(ctx)
			return nil, fmt.Errorf("failed to connect to tasks redis: %w", err)
		}

		taskPublisher = managers.NewRedisTaskPublisher(managers.RedisTaskPublisherDependencies{
			Client: resources.redisClient,
			Stream: c.Config.Tasks.Stream,
		})
	default:
		taskPublisher = managers.NewLogTaskPublisher()
	}

	resources.Runner = scheduler.NewRunner(scheduler.RunnerDependencies{
		Selector:      c.IntegrationSelector,
		Store:         store,
		TaskPublisher: taskPublisher,
	})

	log.Info().
		Str("watermark_backend", c.Config.Watermark.Backend).
		Str("tasks_backend", c.Config.Tasks.Backend).
		Msg("Trigger runner ready")

	return resources, nil
}
