package managers

import (
	"context"
	"testing"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCredential struct {
	AccessToken string `json:"access_token"`
}

func TestExecutorCredentialManager_GetFullCredential(t *testing.T) {
	manager := NewExecutorCredentialManager(ExecutorCredentialManagerDependencies{
		Credentials: []domain.Credential{
			{ID: "shared", DecryptedPayload: map[string]any{"access_token": "shared-token"}},
			{ID: "scoped", WorkspaceID: "ws-1", DecryptedPayload: map[string]any{"access_token": "scoped-token"}},
		},
	})

	inWorkspace := func(workspaceID string) context.Context {
		return domain.NewContextWithWorkflowExecutionContext(context.Background(), domain.NewContextWithWorkflowExecutionContextParams{
			WorkspaceID: workspaceID,
		})
	}

	tests := []struct {
		name         string
		ctx          context.Context
		credentialID string
		wantErr      error
	}{
		{name: "unscoped credential without context", ctx: context.Background(), credentialID: "shared"},
		{name: "unscoped credential in any workspace", ctx: inWorkspace("ws-2"), credentialID: "shared"},
		{name: "scoped credential in its workspace", ctx: inWorkspace("ws-1"), credentialID: "scoped"},
		{name: "scoped credential in another workspace", ctx: inWorkspace("ws-2"), credentialID: "scoped", wantErr: domain.ErrCredentialNotFound},
		{name: "unknown credential", ctx: context.Background(), credentialID: "missing", wantErr: domain.ErrCredentialNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			credential, err := manager.GetFullCredential(tt.ctx, tt.credentialID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.credentialID, credential.ID)
		})
	}
}

func TestExecutorCredentialGetter_GetDecryptedCredential(t *testing.T) {
	manager := NewExecutorCredentialManager(ExecutorCredentialManagerDependencies{})
	manager.Put(domain.Credential{ID: "cred-1", DecryptedPayload: map[string]any{"access_token": "pat-na1-123"}})

	getter := NewExecutorCredentialGetter[testCredential](manager)

	credential, err := getter.GetDecryptedCredential(context.Background(), "cred-1")
	require.NoError(t, err)
	assert.Equal(t, "pat-na1-123", credential.AccessToken)

	_, err = getter.GetDecryptedCredential(context.Background(), "")
	assert.Error(t, err)
}
