package domain

import (
	"context"
	"errors"
)

var ErrCredentialNotFound = errors.New("credential not found")

type Credential struct {
	ID              string
	Name            string
	WorkspaceID     string
	IntegrationType IntegrationType

	DecryptedPayload map[string]any
}

type CredentialGetter[T any] interface {
	GetDecryptedCredential(ctx context.Context, credentialID string) (T, error)
}

type ExecutorCredentialManager interface {
	GetDecryptedCredential(ctx context.Context, credentialID string) ([]byte, error)
	GetFullCredential(ctx context.Context, credentialID string) (Credential, error)
}
