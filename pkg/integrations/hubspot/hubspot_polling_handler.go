package hubspot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/flowbaker/hubspot-executor/internal/managers"
	"github.com/flowbaker/hubspot-executor/pkg/domain"
	"github.com/flowbaker/hubspot-executor/pkg/polling"

	"github.com/rs/zerolog/log"
)

type HubSpotPollingHandler struct {
	credentialGetter domain.CredentialGetter[HubSpotCredential]
	clientConfig     domain.HubSpotClientConfig
	engine           *polling.Engine
}

func NewHubSpotPollingHandler(deps domain.IntegrationDeps) domain.IntegrationPoller {
	return &HubSpotPollingHandler{
		credentialGetter: managers.NewExecutorCredentialGetter[HubSpotCredential](deps.ExecutorCredentialManager),
		clientConfig:     deps.HubSpotClientConfig,
		engine:           polling.NewEngine(deps.PollingConfig),
	}
}

// HandlePollingEvent returns the records that appeared since the event's
// watermark. The watermark in the result is advisory; storing it is up to
// the caller.
func (h *HubSpotPollingHandler) HandlePollingEvent(ctx context.Context, p domain.PollingEvent) (domain.PollResult, error) {
	log.Info().
		Str("workspaceID", p.WorkspaceID).
		Str("workflowID", p.WorkflowID).
		Str("triggerID", p.Trigger.ID).
		Str("eventType", string(p.Trigger.EventType)).
		Int64("lastFetchEpochMS", p.LastFetchEpochMS).
		Msg("HubSpotPollingHandler: Handling polling event")

	definition, ok := triggerDefinitions[p.Trigger.EventType]
	if !ok {
		return domain.PollResult{}, fmt.Errorf("poll function not found for event type: %s", p.Trigger.EventType)
	}

	settings := TriggerSettings{}
	if err := decodeSettings(p.Trigger.IntegrationSettings, &settings); err != nil {
		return domain.PollResult{}, err
	}

	plan, err := definition.plan(settings)
	if err != nil {
		return domain.PollResult{}, err
	}

	credential, err := h.resolveCredential(ctx, p, settings)
	if err != nil {
		return domain.PollResult{}, err
	}

	client := NewClient(ctx, h.clientConfig, credential.AccessToken)

	var items []domain.PollItem

	if definition.Kind == triggerKindPropertyChanged {
		items, err = h.engine.PollPropertyChanges(ctx, newHistorySource(client, plan), plan.HistoryProperty, p.LastFetchEpochMS)
	} else {
		items, err = h.engine.Poll(ctx, newSearchSource(client, plan), p.LastFetchEpochMS)
	}
	if err != nil {
		log.Error().Err(err).
			Str("runID", domain.RunIDFromContext(ctx)).
			Str("workspaceID", p.WorkspaceID).
			Str("triggerID", p.Trigger.ID).
			Msg("HubSpotPollingHandler: Poll failed")
		return domain.PollResult{}, err
	}

	next := polling.NextWatermark(p.LastFetchEpochMS, items)

	log.Info().
		Str("runID", domain.RunIDFromContext(ctx)).
		Str("workspaceID", p.WorkspaceID).
		Str("triggerID", p.Trigger.ID).
		Int("items", len(items)).
		Int64("nextWatermark", next).
		Bool("test", p.IsTest()).
		Msg("HubSpotPollingHandler: Polling event handled")

	return domain.PollResult{
		Items:            items,
		LastModifiedData: strconv.FormatInt(next, 10),
	}, nil
}

func (h *HubSpotPollingHandler) resolveCredential(ctx context.Context, p domain.PollingEvent, settings TriggerSettings) (HubSpotCredential, error) {
	var (
		credential HubSpotCredential
		err        error
	)

	if p.Credential != nil {
		err = decodeSettings(p.Credential, &credential)
	} else {
		if settings.CredentialID == "" {
			return HubSpotCredential{}, fmt.Errorf("credential_id not found in integration settings")
		}

		credential, err = h.credentialGetter.GetDecryptedCredential(ctx, settings.CredentialID)
	}
	if err != nil {
		return HubSpotCredential{}, fmt.Errorf("failed to get credential: %w", err)
	}

	if credential.AccessToken == "" {
		return HubSpotCredential{}, fmt.Errorf("credential has no access token")
	}

	return credential, nil
}
