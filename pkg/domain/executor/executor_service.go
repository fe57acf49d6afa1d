package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
)

// ExecutorService is the host-facing entry point. Every call is routed to
// the integration registered for its IntegrationType.
type ExecutorService interface {
	HandlePollingEvent(ctx context.Context, event domain.PollingEvent) (domain.PollResult, error)
	ExecuteAction(ctx context.Context, params ExecuteActionParams) (domain.IntegrationOutput, error)
	PeekData(ctx context.Context, params PeekDataParams) (domain.PeekResult, error)
	TestConnection(ctx context.Context, params TestConnectionParams) (bool, error)
	ListIntegrations() []domain.Integration
}

type executorService struct {
	integrationSelector domain.IntegrationSelector
	credentialManager   domain.ExecutorCredentialManager
}

type ExecutorServiceDependencies struct {
	IntegrationSelector domain.IntegrationSelector
	CredentialManager   domain.ExecutorCredentialManager
}

func NewExecutorService(deps ExecutorServiceDependencies) ExecutorService {
	return &executorService{
		integrationSelector: deps.IntegrationSelector,
		credentialManager:   deps.CredentialManager,
	}
}

func (s *executorService) HandlePollingEvent(ctx context.Context, event domain.PollingEvent) (domain.PollResult, error) {
	runID := domain.RunIDFromContext(ctx)
	if runID == "" {
		runID = xid.New().String()
	}

	log.Info().
		Str("runID", runID).
		Str("workspaceID", event.WorkspaceID).
		Str("workflowID", event.WorkflowID).
		Str("integrationType", string(event.IntegrationType)).
		Str("triggerID", event.Trigger.ID).
		Str("eventType", string(event.Trigger.EventType)).
		Int64("lastFetchEpochMS", event.LastFetchEpochMS).
		Msg("ExecutorService: Starting polling event handling")

	ctx = domain.NewContextWithWorkflowExecutionContext(ctx, domain.NewContextWithWorkflowExecutionContextParams{
		WorkspaceID: event.WorkspaceID,
		WorkflowID:  event.WorkflowID,
		RunID:       runID,
		IsTesting:   event.IsTest(),
	})

	integrationPoller, err := s.integrationSelector.SelectPoller(ctx, domain.SelectIntegrationParams{
		IntegrationType: event.IntegrationType,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("integrationType", string(event.IntegrationType)).
			Msgf("ExecutorService: Error selecting integration poller for type %s", event.IntegrationType)
		return domain.PollResult{}, err
	}

	result, err := integrationPoller.HandlePollingEvent(ctx, event)
	if err != nil {
		log.Error().
			Err(err).
			Str("workspaceID", event.WorkspaceID).
			Str("triggerID", event.Trigger.ID).
			Str("workflowID", event.WorkflowID).
			Msg("ExecutorService: Failed to handle polling event")
		return domain.PollResult{}, err
	}

	log.Info().
		Str("workspaceID", event.WorkspaceID).
		Int("items", len(result.Items)).
		Str("lastModifiedData", result.LastModifiedData).
		Msg("ExecutorService: Successfully handled polling event")

	return result, nil
}

type ExecuteActionParams struct {
	IntegrationType domain.IntegrationType
	ActionType      domain.IntegrationActionType
	CredentialID    string
	Credential      map[string]any
	WorkspaceID     string
	WorkflowID      string
	NodeID          string
	Settings        map[string]any
	Items           []domain.Item
}

func (s *executorService) ExecuteAction(ctx context.Context, params ExecuteActionParams) (domain.IntegrationOutput, error) {
	ctx = domain.NewContextWithWorkflowExecutionContext(ctx, domain.NewContextWithWorkflowExecutionContextParams{
		WorkspaceID: params.WorkspaceID,
		WorkflowID:  params.WorkflowID,
	})

	integration, err := s.createIntegration(ctx, params.IntegrationType, params.CredentialID, params.WorkspaceID, params.Credential)
	if err != nil {
		return domain.IntegrationOutput{}, err
	}

	items := params.Items
	if len(items) == 0 {
		items = []domain.Item{map[string]any{}}
	}

	payload, err := domain.NewPayloadFromItems(items)
	if err != nil {
		return domain.IntegrationOutput{}, fmt.Errorf("failed to encode input items: %w", err)
	}

	settings := params.Settings
	if settings == nil {
		settings = map[string]any{}
	}

	output, err := integration.Execute(ctx, domain.IntegrationInput{
		NodeID:            params.NodeID,
		ActionType:        params.ActionType,
		PayloadByInputID:  map[string]domain.Payload{params.NodeID: payload},
		IntegrationParams: domain.IntegrationParams{Settings: settings},
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("actionType", string(params.ActionType)).
			Str("nodeID", params.NodeID).
			Msg("ExecutorService: Action failed")
		return domain.IntegrationOutput{}, err
	}

	return output, nil
}

type PeekDataParams struct {
	IntegrationType domain.IntegrationType
	CredentialID    string
	Credential      map[string]any
	WorkspaceID     string
	UserID          string
	PeekableType    string
	Pagination      domain.PaginationParams
	PayloadJSON     []byte
}

func (s *executorService) PeekData(ctx context.Context, params PeekDataParams) (domain.PeekResult, error) {
	ctx = domain.NewContextWithWorkflowExecutionContext(ctx, domain.NewContextWithWorkflowExecutionContextParams{
		WorkspaceID: params.WorkspaceID,
	})

	integration, err := s.createIntegration(ctx, params.IntegrationType, params.CredentialID, params.WorkspaceID, params.Credential)
	if err != nil {
		return domain.PeekResult{}, err
	}

	integrationPeeker, ok := integration.(domain.IntegrationPeeker)
	if !ok {
		return domain.PeekResult{}, errors.New("integration is not peekable")
	}

	result, err := integrationPeeker.Peek(ctx, domain.PeekParams{
		PeekableType: domain.IntegrationPeekableType(params.PeekableType),
		PayloadJSON:  params.PayloadJSON,
		Pagination:   params.Pagination,
		UserID:       params.UserID,
		WorkspaceID:  params.WorkspaceID,
	})
	if err != nil {
		log.Error().Err(err).Str("peekableType", params.PeekableType).Msg("ExecutorService: Failed to peek data")
		return domain.PeekResult{}, err
	}

	return result, nil
}

type TestConnectionParams struct {
	IntegrationType domain.IntegrationType
	CredentialID    string
	WorkspaceID     string

	// Payload overrides fields of the stored credential. Without a
	// CredentialID it is the whole credential.
	Payload map[string]any
}

func (s *executorService) TestConnection(ctx context.Context, params TestConnectionParams) (bool, error) {
	ctx = domain.NewContextWithWorkflowExecutionContext(ctx, domain.NewContextWithWorkflowExecutionContextParams{
		WorkspaceID: params.WorkspaceID,
	})

	credential := domain.Credential{
		WorkspaceID:      params.WorkspaceID,
		IntegrationType:  params.IntegrationType,
		DecryptedPayload: map[string]any{},
	}

	if params.CredentialID != "" {
		stored, err := s.credentialManager.GetFullCredential(ctx, params.CredentialID)
		if err != nil {
			log.Error().Err(err).Msg("ExecutorService: Failed to get credential for connection test")
			return false, err
		}

		credential = stored
		credential.DecryptedPayload = make(map[string]any, len(stored.DecryptedPayload))
		for key, value := range stored.DecryptedPayload {
			credential.DecryptedPayload[key] = value
		}
	}

	for key, value := range params.Payload {
		credential.DecryptedPayload[key] = value
	}

	connectionTester, err := s.integrationSelector.SelectConnectionTester(ctx, domain.SelectIntegrationParams{
		IntegrationType: params.IntegrationType,
	})
	if err != nil {
		return false, err
	}

	success, err := connectionTester.TestConnection(ctx, domain.TestConnectionParams{
		Credential: credential,
	})
	if err != nil {
		log.Error().Err(err).Msg("ExecutorService: Connection test failed")
		return false, err
	}

	return success, nil
}

func (s *executorService) ListIntegrations() []domain.Integration {
	return s.integrationSelector.ListSchemas()
}

func (s *executorService) createIntegration(ctx context.Context, integrationType domain.IntegrationType, credentialID, workspaceID string, credential map[string]any) (domain.IntegrationExecutor, error) {
	integrationCreator, err := s.integrationSelector.SelectCreator(ctx, domain.SelectIntegrationParams{
		IntegrationType: integrationType,
	})
	if err != nil {
		return nil, err
	}

	integration, err := integrationCreator.CreateIntegration(ctx, domain.CreateIntegrationParams{
		CredentialID: credentialID,
		WorkspaceID:  workspaceID,
		Credential:   credential,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create integration: %w", err)
	}

	return integration, nil
}
