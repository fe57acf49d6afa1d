package managers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const DefaultTaskStream = "hubspot-executor:tasks"

// logTaskPublisher writes tasks to the log instead of a queue. It is used
// when no redis is configured.
type logTaskPublisher struct{}

func NewLogTaskPublisher() domain.ExecutorTaskPublisher {
	return &logTaskPublisher{}
}

func (p *logTaskPublisher) EnqueueTask(ctx context.Context, workspaceID string, task domain.Task) error {
	if err := validateTask(workspaceID, task); err != nil {
		return err
	}

	taskJSON, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	log.Info().
		Str("workspaceID", workspaceID).
		Str("taskType", string(task.GetType())).
		RawJSON("task", taskJSON).
		Msg("Task published")

	return nil
}

type redisTaskPublisher struct {
	client *redis.Client
	stream string
}

type RedisTaskPublisherDependencies struct {
	Client *redis.Client
	Stream string
}

// NewRedisTaskPublisher appends tasks to a redis stream consumed by the
// workflow engine.
func NewRedisTaskPublisher(deps RedisTaskPublisherDependencies) domain.ExecutorTaskPublisher {
	stream := deps.Stream
	if stream == "" {
		stream = DefaultTaskStream
	}

	return &redisTaskPublisher{
		client: deps.Client,
		stream: stream,
	}
}

func (p *redisTaskPublisher) EnqueueTask(ctx context.Context, workspaceID string, task domain.Task) error {
	if err := validateTask(workspaceID, task); err != nil {
		return err
	}

	taskJSON, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"id":           uuid.NewString(),
			"workspace_id": workspaceID,
			"task_type":    string(task.GetType()),
			"task_data":    string(taskJSON),
		},
	}).Err()
	if err != nil {
		return fmt.Errorf("task enqueue failed: %w", err)
	}

	return nil
}

func validateTask(workspaceID string, task domain.Task) error {
	if workspaceID == "" {
		return fmt.Errorf("workspaceID cannot be empty")
	}

	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	return nil
}
