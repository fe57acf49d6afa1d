// Package executor holds the wire types of the executor HTTP API and a
// client for it.
package executor

import (
	"encoding/json"

	"github.com/flowbaker/hubspot-executor/pkg/domain"
)

type HealthCheckResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

type Trigger struct {
	ID                  string                             `json:"id"`
	EventType           domain.IntegrationTriggerEventType `json:"event_type"`
	IntegrationSettings map[string]any                     `json:"integration_settings"`
}

// PollingEventRequest asks the executor to poll one trigger.
// LastFetchEpochMS of 0 runs the trigger in test mode.
type PollingEventRequest struct {
	IntegrationType  domain.IntegrationType `json:"integration_type"`
	Trigger          Trigger                `json:"trigger"`
	WorkflowID       string                 `json:"workflow_id"`
	UserID           string                 `json:"user_id"`
	LastFetchEpochMS int64                  `json:"last_fetch_epoch_ms"`
	Auth             map[string]any         `json:"auth,omitempty"`
}

type PollingEventResponse struct {
	Items            []domain.PollItem `json:"items"`
	LastModifiedData string            `json:"last_modified_data"`
}

type ExecuteActionRequest struct {
	IntegrationType domain.IntegrationType       `json:"integration_type"`
	ActionType      domain.IntegrationActionType `json:"action_type"`
	CredentialID    string                       `json:"credential_id,omitempty"`
	Auth            map[string]any               `json:"auth,omitempty"`
	WorkflowID      string                       `json:"workflow_id,omitempty"`
	NodeID          string                       `json:"node_id"`
	Settings        map[string]any               `json:"settings"`
	Items           json.RawMessage              `json:"items,omitempty"`
}

// ExecuteActionResponse has one JSON array of items per action output.
type ExecuteActionResponse struct {
	Outputs []json.RawMessage `json:"outputs"`
}

type ConnectionTestRequest struct {
	IntegrationType domain.IntegrationType `json:"integration_type"`
	CredentialID    string                 `json:"credential_id,omitempty"`
	Payload         map[string]any         `json:"payload,omitempty"`
}

type ConnectionTestResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type PeekDataRequest struct {
	IntegrationType domain.IntegrationType  `json:"integration_type"`
	CredentialID    string                  `json:"credential_id,omitempty"`
	Auth            map[string]any          `json:"auth,omitempty"`
	UserID          string                  `json:"user_id"`
	PeekableType    string                  `json:"peekable_type"`
	Pagination      domain.PaginationParams `json:"pagination"`
	Payload         json.RawMessage         `json:"payload,omitempty"`
}

type PeekDataResponse struct {
	Success    bool                      `json:"success"`
	Error      string                    `json:"error,omitempty"`
	Result     []domain.PeekResultItem   `json:"result,omitempty"`
	Pagination domain.PaginationMetadata `json:"pagination"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Value any    `json:"value,omitempty"`
}
