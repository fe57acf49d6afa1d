package domain

import (
	"context"
	"errors"
)

var (
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrActionNotFound      = errors.New("action not found")
	ErrPeekableNotFound    = errors.New("peekable not found")
)

type IntegrationType string
type IntegrationActionType string
type IntegrationTriggerEventType string
type IntegrationPeekableType string
type IntegrationPeekablePaginationType string

const (
	IntegrationType_HubSpot IntegrationType = "hubspot"
)

const (
	PeekablePaginationType_None   IntegrationPeekablePaginationType = "none"
	PeekablePaginationType_Cursor IntegrationPeekablePaginationType = "cursor"
)

type Integration struct {
	ID          IntegrationType `json:"id" bson:"id"`
	Name        string          `json:"name" bson:"name"`
	Description string          `json:"description" bson:"description"`

	CredentialProperties []NodeProperty       `json:"credential_props" bson:"credential_properties"`
	Actions              []IntegrationAction  `json:"actions" bson:"actions"`
	Triggers             []IntegrationTrigger `json:"triggers" bson:"triggers"`

	CanTestConnection bool `json:"can_test_connection" bson:"can_test_connection"`
}

func (i Integration) GetTrigger(eventType IntegrationTriggerEventType) (IntegrationTrigger, bool) {
	for _, trigger := range i.Triggers {
		if trigger.EventType == eventType {
			return trigger, true
		}
	}

	return IntegrationTrigger{}, false
}

func (i Integration) GetAction(actionType IntegrationActionType) (IntegrationAction, bool) {
	for _, action := range i.Actions {
		if action.ActionType == actionType {
			return action, true
		}
	}

	return IntegrationAction{}, false
}

type IntegrationTrigger struct {
	ID          string                      `json:"id" bson:"id"`
	EventType   IntegrationTriggerEventType `json:"event_type" bson:"event_type"`
	Name        string                      `json:"name" bson:"name"`
	Description string                      `json:"description" bson:"description"`
	Properties  []NodeProperty              `json:"properties" bson:"properties"`
}

type IntegrationAction struct {
	ID          string                `json:"id" bson:"id"`
	ActionType  IntegrationActionType `json:"action_type" bson:"action_type"`
	Name        string                `json:"name" bson:"name"`
	Description string                `json:"description" bson:"description"`
	Properties  []NodeProperty        `json:"properties" bson:"properties"`
}

type IntegrationInput struct {
	NodeID            string
	InputJSON         []byte
	PayloadByInputID  map[string]Payload
	IntegrationParams IntegrationParams
	ActionType        IntegrationActionType
}

func (i IntegrationInput) GetItemsByInputID() (map[string][]Item, error) {
	itemsByInputID := map[string][]Item{}

	for inputID, payload := range i.PayloadByInputID {
		items, err := payload.ToItems()
		if err != nil {
			return nil, err
		}

		itemsByInputID[inputID] = items
	}

	return itemsByInputID, nil
}

func (i IntegrationInput) GetAllItems() ([]Item, error) {
	itemsByInputID, err := i.GetItemsByInputID()
	if err != nil {
		return nil, err
	}

	items := []Item{}

	for _, inputItems := range itemsByInputID {
		items = append(items, inputItems...)
	}

	return items, nil
}

type IntegrationParams struct {
	Settings map[string]any
}

type IntegrationOutput struct {
	ResultJSONByOutputID []Payload
}

type IntegrationDeps struct {
	ParameterBinder           IntegrationParameterBinder
	ExecutorCredentialManager ExecutorCredentialManager
	HubSpotClientConfig       HubSpotClientConfig
	PollingConfig             PollingConfig
}

// HubSpotClientConfig holds transport settings shared by every HubSpot client.
type HubSpotClientConfig struct {
	BaseURL      string
	RetryMax     int
	RetryWaitMin int64 // milliseconds
	RetryWaitMax int64 // milliseconds
}

type PollingConfig struct {
	TestPageSize      int
	LivePageSize      int
	HistoryBatchSize  int
	MaxHistoryWorkers int
}

type IntegrationParameterBinder interface {
	BindToStruct(ctx context.Context, item any, params any, expressions map[string]any) error
}
