package managers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/rs/zerolog/log"
)

// executorCredentialManager serves credentials provisioned through the
// executor configuration. A credential bound to a workspace is only visible to
// executions running in that workspace.
type executorCredentialManager struct {
	mtx         sync.RWMutex
	credentials map[string]domain.Credential
}

type ExecutorCredentialManagerDependencies struct {
	Credentials []domain.Credential
}

func NewExecutorCredentialManager(deps ExecutorCredentialManagerDependencies) *executorCredentialManager {
	credentials := make(map[string]domain.Credential, len(deps.Credentials))

	for _, credential := range deps.Credentials {
		credentials[credential.ID] = credential
	}

	return &executorCredentialManager{
		credentials: credentials,
	}
}

// Put registers or replaces a credential.
func (e *executorCredentialManager) Put(credential domain.Credential) {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	e.credentials[credential.ID] = credential
}

func (e *executorCredentialManager) GetDecryptedCredential(ctx context.Context, credentialID string) ([]byte, error) {
	credential, err := e.GetFullCredential(ctx, credentialID)
	if err != nil {
		return nil, err
	}

	payloadJSON, err := json.Marshal(credential.DecryptedPayload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal credential payload: %w", err)
	}

	return payloadJSON, nil
}

func (e *executorCredentialManager) GetFullCredential(ctx context.Context, credentialID string) (domain.Credential, error) {
	if credentialID == "" {
		return domain.Credential{}, fmt.Errorf("credential ID cannot be empty")
	}

	e.mtx.RLock()
	credential, ok := e.credentials[credentialID]
	e.mtx.RUnlock()

	if !ok {
		return domain.Credential{}, fmt.Errorf("%w: %s", domain.ErrCredentialNotFound, credentialID)
	}

	if credential.WorkspaceID != "" {
		workflowExecutionContext, ok := domain.GetWorkflowExecutionContext(ctx)
		if ok && workflowExecutionContext.WorkspaceID != "" && workflowExecutionContext.WorkspaceID != credential.WorkspaceID {
			log.Warn().
				Str("runID", workflowExecutionContext.RunID).
				Str("credentialID", credentialID).
				Str("workspaceID", workflowExecutionContext.WorkspaceID).
				Msg("ExecutorCredentialManager: Credential belongs to another workspace")

			return domain.Credential{}, fmt.Errorf("%w: %s", domain.ErrCredentialNotFound, credentialID)
		}
	}

	return credential, nil
}

// ExecutorCredentialGetter decodes credential payloads into an integration's
// credential type.
type ExecutorCredentialGetter[T any] struct {
	manager domain.ExecutorCredentialManager
}

func NewExecutorCredentialGetter[T any](
	manager domain.ExecutorCredentialManager,
) *ExecutorCredentialGetter[T] {
	return &ExecutorCredentialGetter[T]{
		manager: manager,
	}
}

func (e *ExecutorCredentialGetter[T]) GetDecryptedCredential(ctx context.Context, credentialID string) (T, error) {
	var zero T

	decryptedBytes, err := e.manager.GetDecryptedCredential(ctx, credentialID)
	if err != nil {
		return zero, fmt.Errorf("failed to get credential: %w", err)
	}

	var result T
	if err := json.Unmarshal(decryptedBytes, &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal credential: %w", err)
	}

	return result, nil
}
