package domain

import (
	"context"
	"fmt"
	"sort"
)

type CreateIntegrationParams struct {
	CredentialID string
	WorkspaceID  string
	// Credential, when set, is used instead of resolving CredentialID.
	Credential map[string]any
}

type IntegrationCreator interface {
	CreateIntegration(ctx context.Context, p CreateIntegrationParams) (IntegrationExecutor, error)
}

type IntegrationExecutor interface {
	Execute(ctx context.Context, params IntegrationInput) (IntegrationOutput, error)
}

type IntegrationPeeker interface {
	Peek(ctx context.Context, params PeekParams) (PeekResult, error)
}

type IntegrationPoller interface {
	HandlePollingEvent(ctx context.Context, event PollingEvent) (PollResult, error)
}

type IntegrationConnectionTester interface {
	TestConnection(ctx context.Context, params TestConnectionParams) (bool, error)
}

type TestConnectionParams struct {
	Credential Credential
}

type SelectIntegrationParams struct {
	IntegrationType IntegrationType
}

type IntegrationSelector interface {
	RegisterSchema(schema Integration)
	SelectSchema(ctx context.Context, params SelectIntegrationParams) (Integration, error)
	ListSchemas() []Integration
	RegisterCreator(integrationType IntegrationType, creator IntegrationCreator)
	SelectCreator(ctx context.Context, params SelectIntegrationParams) (IntegrationCreator, error)
	RegisterPoller(integrationType IntegrationType, poller IntegrationPoller)
	SelectPoller(ctx context.Context, params SelectIntegrationParams) (IntegrationPoller, error)
	RegisterConnectionTester(integrationType IntegrationType, connectionTester IntegrationConnectionTester)
	SelectConnectionTester(ctx context.Context, params SelectIntegrationParams) (IntegrationConnectionTester, error)
}

type integrationSelector struct {
	schemasByType              map[IntegrationType]Integration
	creatorsByType             map[IntegrationType]IntegrationCreator
	pollingEventHandlersByType map[IntegrationType]IntegrationPoller
	connectionTestersByType    map[IntegrationType]IntegrationConnectionTester
}

func NewIntegrationSelector() IntegrationSelector {
	return &integrationSelector{
		schemasByType:              make(map[IntegrationType]Integration),
		creatorsByType:             make(map[IntegrationType]IntegrationCreator),
		pollingEventHandlersByType: make(map[IntegrationType]IntegrationPoller),
		connectionTestersByType:    make(map[IntegrationType]IntegrationConnectionTester),
	}
}

func (s *integrationSelector) RegisterSchema(schema Integration) {
	s.schemasByType[schema.ID] = schema
}

func (s *integrationSelector) SelectSchema(ctx context.Context, params SelectIntegrationParams) (Integration, error) {
	schema, ok := s.schemasByType[params.IntegrationType]
	if !ok {
		return Integration{}, fmt.Errorf("%w: %s", ErrIntegrationNotFound, params.IntegrationType)
	}

	return schema, nil
}

func (s *integrationSelector) ListSchemas() []Integration {
	schemas := make([]Integration, 0, len(s.schemasByType))

	for _, schema := range s.schemasByType {
		schemas = append(schemas, schema)
	}

	sort.Slice(schemas, func(i, j int) bool {
		return schemas[i].ID < schemas[j].ID
	})

	return schemas
}

func (s *integrationSelector) RegisterCreator(integrationType IntegrationType, creator IntegrationCreator) {
	s.creatorsByType[integrationType] = creator
}

func (s *integrationSelector) SelectCreator(ctx context.Context, params SelectIntegrationParams) (IntegrationCreator, error) {
	creator, ok := s.creatorsByType[params.IntegrationType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIntegrationNotFound, params.IntegrationType)
	}

	return creator, nil
}

func (s *integrationSelector) RegisterPoller(integrationType IntegrationType, poller IntegrationPoller) {
	s.pollingEventHandlersByType[integrationType] = poller
}

func (s *integrationSelector) SelectPoller(ctx context.Context, params SelectIntegrationParams) (IntegrationPoller, error) {
	poller, ok := s.pollingEventHandlersByType[params.IntegrationType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIntegrationNotFound, params.IntegrationType)
	}

	return poller, nil
}

func (s *integrationSelector) RegisterConnectionTester(integrationType IntegrationType, connectionTester IntegrationConnectionTester) {
	s.connectionTestersByType[integrationType] = connectionTester
}

func (s *integrationSelector) SelectConnectionTester(ctx context.Context, params SelectIntegrationParams) (IntegrationConnectionTester, error) {
	connectionTester, ok := s.connectionTestersByType[params.IntegrationType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIntegrationNotFound, params.IntegrationType)
	}

	return connectionTester, nil
}
