// Package scheduler is the standalone host for polling triggers. It owns the
// watermark lifecycle that the polling handlers leave to their caller.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/flowbaker/hubspot-executor/pkg/domain"
	"github.com/flowbaker/hubspot-executor/pkg/polling"

	"github.com/google/uuid"
	"github.com/rs/xid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Trigger is one enabled trigger node and everything needed to poll it.
type Trigger struct {
	ID              string                             `mapstructure:"id" json:"id"`
	IntegrationType domain.IntegrationType             `mapstructure:"integration_type" json:"integration_type"`
	EventType       domain.IntegrationTriggerEventType `mapstructure:"event_type" json:"event_type"`
	WorkspaceID     string                             `mapstructure:"workspace_id" json:"workspace_id"`
	WorkflowID      string                             `mapstructure:"workflow_id" json:"workflow_id"`
	UserID          string                             `mapstructure:"user_id" json:"user_id"`
	Settings        map[string]any                     `mapstructure:"settings" json:"settings"`
	Credential      map[string]any                     `mapstructure:"credential" json:"credential,omitempty"`
	Schedule        string                             `mapstructure:"schedule" json:"schedule,omitempty"`
}

func (t Trigger) Key() domain.WatermarkKey {
	return domain.WatermarkKey{
		IntegrationType: t.IntegrationType,
		WorkspaceID:     t.WorkspaceID,
		WorkflowID:      t.WorkflowID,
		TriggerID:       t.ID,
	}
}

func (t Trigger) pollingEvent(lastFetchEpochMS int64) domain.PollingEvent {
	return domain.PollingEvent{
		IntegrationType: t.IntegrationType,
		Trigger: domain.WorkflowTrigger{
			ID:                  t.ID,
			EventType:           t.EventType,
			IntegrationSettings: t.Settings,
		},
		WorkflowID:       t.WorkflowID,
		UserID:           t.UserID,
		WorkspaceID:      t.WorkspaceID,
		LastFetchEpochMS: lastFetchEpochMS,
		Credential:       t.Credential,
	}
}

type RunResult struct {
	RunID     string
	Items     []domain.PollItem
	Watermark int64
}

type Runner struct {
	selector  domain.IntegrationSelector
	store     domain.WatermarkStore
	publisher domain.ExecutorTaskPublisher
	now       func() time.Time
}

type RunnerDependencies struct {
	Selector      domain.IntegrationSelector
	Store         domain.WatermarkStore
	TaskPublisher domain.ExecutorTaskPublisher

	// Now defaults to time.Now.
	Now func() time.Time
}

func NewRunner(deps RunnerDependencies) *Runner {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &Runner{
		selector:  deps.Selector,
		store:     deps.Store,
		publisher: deps.TaskPublisher,
		now:       now,
	}
}

// poll hands the event to the integration poller inside an execution context
// carrying the run id, so credential lookups and handler logs can tie their
// work to the run. A run id already in ctx is kept.
func (r *Runner) poll(ctx context.Context, trigger Trigger, lastFetchEpochMS int64) (domain.PollResult, error) {
	runID := domain.RunIDFromContext(ctx)
	if runID == "" {
		runID = xid.New().String()
	}

	ctx = domain.NewContextWithWorkflowExecutionContext(ctx, domain.NewContextWithWorkflowExecutionContextParams{
		WorkspaceID: trigger.WorkspaceID,
		WorkflowID:  trigger.WorkflowID,
		RunID:       runID,
		IsTesting:   lastFetchEpochMS == 0,
	})

	poller, err := r.selector.SelectPoller(ctx, domain.SelectIntegrationParams{
		IntegrationType: trigger.IntegrationType,
	})
	if err != nil {
		return domain.PollResult{}, fmt.Errorf("failed to select poller: %w", err)
	}

	return poller.HandlePollingEvent(ctx, trigger.pollingEvent(lastFetchEpochMS))
}

// Enable seeds the watermark of a trigger that has none, so the first live
// run only sees records created after the trigger was turned on. The seed
// is the newest record of a test-mode sample, or now when the sample is
// empty. An existing watermark is kept.
func (r *Runner) Enable(ctx context.Context, trigger Trigger) (int64, error) {
	key := trigger.Key()

	current, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return 0, err
	}

	if ok {
		return current, nil
	}

	result, err := r.poll(ctx, trigger, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to sample trigger %s: %w", trigger.ID, err)
	}

	seed := polling.NextWatermark(0, result.Items)
	if seed == 0 {
		seed = r.now().UnixMilli()
	}

	if err := r.store.Put(ctx, key, seed); err != nil {
		return 0, err
	}

	log.Info().
		Str("trigger_id", trigger.ID).
		Str("workflow_id", trigger.WorkflowID).
		Int64("watermark", seed).
		Msg("Trigger enabled")

	return seed, nil
}

// Run polls once, publishes one task per new item oldest first and then
// advances the watermark. A failed publish leaves the watermark untouched so
// the next run delivers the same items again.
func (r *Runner) Run(ctx context.Context, trigger Trigger) (RunResult, error) {
	runID := xid.New().String()

	logger := log.With().
		Str("run_id", runID).
		Str("trigger_id", trigger.ID).
		Str("workflow_id", trigger.WorkflowID).
		Logger()
	ctx = logger.WithContext(ctx)
	ctx = domain.NewContextWithWorkflowExecutionContext(ctx, domain.NewContextWithWorkflowExecutionContextParams{
		WorkspaceID: trigger.WorkspaceID,
		WorkflowID:  trigger.WorkflowID,
		RunID:       runID,
	})

	result := RunResult{RunID: runID, Items: []domain.PollItem{}}

	watermark, ok, err := r.store.Get(ctx, trigger.Key())
	if err != nil {
		return result, err
	}

	if !ok {
		seed, err := r.Enable(ctx, trigger)
		if err != nil {
			return result, err
		}

		result.Watermark = seed
		return result, nil
	}

	pollResult, err := r.poll(ctx, trigger, watermark)
	if err != nil {
		return result, fmt.Errorf("failed to poll trigger %s: %w", trigger.ID, err)
	}

	items := polling.FilterNewerThan(pollResult.Items, watermark)
	items = polling.DedupeByID(items, polling.DataID)
	polling.SortAscending(items)

	for _, item := range items {
		task := domain.ExecuteWorkflowTask{
			ID:          uuid.NewString(),
			WorkspaceID: trigger.WorkspaceID,
			WorkflowID:  trigger.WorkflowID,
			UserID:      trigger.UserID,
			FromNodeID:  trigger.ID,
			Payload:     item,
		}

		if err := r.publisher.EnqueueTask(ctx, trigger.WorkspaceID, task); err != nil {
			return result, fmt.Errorf("failed to enqueue task: %w", err)
		}
	}

	next := polling.NextWatermark(watermark, items)
	if next > watermark {
		if err := r.store.Put(ctx, trigger.Key(), next); err != nil {
			return result, err
		}
	}

	result.Items = items
	result.Watermark = next

	zerolog.Ctx(ctx).Info().
		Int("items", len(items)).
		Int64("watermark", next).
		Msg("Trigger run completed")

	return result, nil
}

func (r *Runner) Disable(ctx context.Context, trigger Trigger) error {
	if err := r.store.Delete(ctx, trigger.Key()); err != nil {
		return err
	}

	log.Info().Str("trigger_id", trigger.ID).Msg("Trigger disabled")

	return nil
}

// Test returns a sample of the trigger's data without touching the
// watermark.
func (r *Runner) Test(ctx context.Context, trigger Trigger) ([]domain.PollItem, error) {
	result, err := r.poll(ctx, trigger, 0)
	if err != nil {
		return nil, err
	}

	return result.Items, nil
}
