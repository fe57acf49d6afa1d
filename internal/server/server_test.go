package server

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flowbaker/hubspot-executor/internal/auth"
	"github.com/flowbaker/hubspot-executor/internal/controllers"
	executortypes "github.com/flowbaker/hubspot-executor/pkg/clients/hubspot-executor"
	"github.com/flowbaker/hubspot-executor/pkg/domain"
	"github.com/flowbaker/hubspot-executor/pkg/domain/executor"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutorService struct {
	pollEvent    domain.PollingEvent
	pollResult   domain.PollResult
	actionParams executor.ExecuteActionParams
	actionOutput domain.IntegrationOutput
	peekResult   domain.PeekResult
	testParams   executor.TestConnectionParams
	err          error
}

func (f *fakeExecutorService) HandlePollingEvent(ctx context.Context, event domain.PollingEvent) (domain.PollResult, error) {
	f.pollEvent = event
	return f.pollResult, f.err
}

func (f *fakeExecutorService) ExecuteAction(ctx context.Context, params executor.ExecuteActionParams) (domain.IntegrationOutput, error) {
	f.actionParams = params
	return f.actionOutput, f.err
}

func (f *fakeExecutorService) PeekData(ctx context.Context, params executor.PeekDataParams) (domain.PeekResult, error) {
	return f.peekResult, f.err
}

func (f *fakeExecutorService) TestConnection(ctx context.Context, params executor.TestConnectionParams) (bool, error) {
	f.testParams = params
	return f.err == nil, f.err
}

func (f *fakeExecutorService) ListIntegrations() []domain.Integration {
	return []domain.Integration{{ID: domain.IntegrationType_HubSpot, Name: "HubSpot"}}
}

func newTestServer(t *testing.T, service *fakeExecutorService, deps HTTPServerDependencies) *fiber.App {
	t.Helper()

	deps.ExecutorController = controllers.NewExecutorController(controllers.ExecutorControllerDependencies{
		ExecutorService: service,
	})
	deps.DisableRequestLog = true

	app, err := NewHTTPServer(deps)
	require.NoError(t, err)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, headers map[string]string) (int, []byte) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, responseBody
}

func TestHealthAndIntegrations(t *testing.T) {
	app := newTestServer(t, &fakeExecutorService{}, HTTPServerDependencies{APIKey: "secret"})

	status, body := doJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"status":"healthy"`)

	status, body = doJSON(t, app, http.MethodGet, "/integrations", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `"id":"hubspot"`)
}

func TestPollingEvents(t *testing.T) {
	service := &fakeExecutorService{
		pollResult: domain.PollResult{
			Items: []domain.PollItem{
				{EpochMilliseconds: 1700000000000, Data: map[string]any{"id": "1"}},
			},
			LastModifiedData: "1700000000000",
		},
	}
	app := newTestServer(t, service, HTTPServerDependencies{})

	status, body := doJSON(t, app, http.MethodPost, "/workspaces/ws-1/polling-events", `{
		"integration_type": "hubspot",
		"trigger": {"id": "t-1", "event_type": "new_contact", "integration_settings": {"credential_id": "c-1"}},
		"workflow_id": "wf-1",
		"last_fetch_epoch_ms": 1690000000000
	}`, nil)
	require.Equal(t, http.StatusOK, status, string(body))

	var response executortypes.PollingEventResponse
	require.NoError(t, json.Unmarshal(body, &response))
	assert.Equal(t, "1700000000000", response.LastModifiedData)
	require.Len(t, response.Items, 1)
	assert.Equal(t, int64(1700000000000), response.Items[0].EpochMilliseconds)

	assert.Equal(t, "ws-1", service.pollEvent.WorkspaceID)
	assert.Equal(t, int64(1690000000000), service.pollEvent.LastFetchEpochMS)
	assert.Equal(t, "c-1", service.pollEvent.Trigger.IntegrationSettings["credential_id"])
}

func TestPollingEvents_EmptyItemsAndErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "no items encodes an empty list",
			body:       `{"integration_type":"hubspot","trigger":{"id":"t"},"last_fetch_epoch_ms":0}`,
			wantStatus: http.StatusOK,
			wantBody:   `"items":[]`,
		},
		{
			name:       "negative watermark",
			body:       `{"integration_type":"hubspot","trigger":{"id":"t"},"last_fetch_epoch_ms":-1}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown integration",
			err:        fmt.Errorf("select poller: %w", domain.ErrIntegrationNotFound),
			body:       `{"integration_type":"salesforce","trigger":{"id":"t"}}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "invalid input echoes the raw value",
			err:        domain.NewInputError("to_object_ids", "1,x", "not a list of object ids"),
			body:       `{"integration_type":"hubspot","trigger":{"id":"t"}}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"value":"1,x"`,
		},
		{
			name:       "upstream failure",
			err:        fmt.Errorf("hubspot returned 502"),
			body:       `{"integration_type":"hubspot","trigger":{"id":"t"}}`,
			wantStatus: http.StatusInternalServerError,
			wantBody:   "hubspot returned 502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestServer(t, &fakeExecutorService{err: tt.err}, HTTPServerDependencies{})

			status, body := doJSON(t, app, http.MethodPost, "/workspaces/ws-1/polling-events", tt.body, nil)
			assert.Equal(t, tt.wantStatus, status, string(body))
			if tt.wantBody != "" {
				assert.Contains(t, string(body), tt.wantBody)
			}
		})
	}
}

func TestExecutions(t *testing.T) {
	service := &fakeExecutorService{
		actionOutput: domain.IntegrationOutput{
			ResultJSONByOutputID: []domain.Payload{domain.Payload(`[{"id":"42"}]`)},
		},
	}
	app := newTestServer(t, service, HTTPServerDependencies{})

	status, body := doJSON(t, app, http.MethodPost, "/workspaces/ws-1/executions", `{
		"integration_type": "hubspot",
		"action_type": "create_contact",
		"credential_id": "c-1",
		"node_id": "node-1",
		"settings": {"email": "{{ item.email }}"},
		"items": [{"email": "a@example.com"}]
	}`, nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"outputs":[[{"id":"42"}]]}`, string(body))

	assert.Equal(t, domain.IntegrationActionType("create_contact"), service.actionParams.ActionType)
	assert.Equal(t, "ws-1", service.actionParams.WorkspaceID)
	require.Len(t, service.actionParams.Items, 1)
	assert.Equal(t, "a@example.com", service.actionParams.Items[0].(map[string]any)["email"])
}

func TestConnectionTestAndPeek(t *testing.T) {
	service := &fakeExecutorService{
		peekResult: domain.PeekResult{
			Result:     []domain.PeekResultItem{{Key: "default", Value: "default", Content: "Sales Pipeline"}},
			Pagination: domain.PaginationMetadata{HasMore: true, NextCursor: "abc"},
		},
	}
	app := newTestServer(t, service, HTTPServerDependencies{})

	status, body := doJSON(t, app, http.MethodPost, "/workspaces/ws-1/connection-test",
		`{"integration_type":"hubspot","payload":{"access_token":"pat"}}`, nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"success":true}`, string(body))
	assert.Equal(t, "pat", service.testParams.Payload["access_token"])

	status, body = doJSON(t, app, http.MethodPost, "/workspaces/ws-1/peek-data",
		`{"integration_type":"hubspot","credential_id":"c-1","peekable_type":"pipelines","payload":{"object_type":"deals"}}`, nil)
	require.Equal(t, http.StatusOK, status)

	var response executortypes.PeekDataResponse
	require.NoError(t, json.Unmarshal(body, &response))
	assert.True(t, response.Success)
	assert.Equal(t, "Sales Pipeline", response.Result[0].Content)
	assert.Equal(t, "abc", response.Pagination.NextCursor)
}

func TestWorkspaceAuthentication(t *testing.T) {
	publicKey, privateKey, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	signer, err := auth.NewRequestSigner(base64.StdEncoding.EncodeToString(privateKey))
	require.NoError(t, err)

	const path = "/workspaces/ws-1/connection-test"
	const body = `{"integration_type":"hubspot"}`

	signed := signer.Sign(http.MethodPost, path, []byte(body))

	tests := []struct {
		name       string
		deps       HTTPServerDependencies
		headers    map[string]string
		wantStatus int
	}{
		{
			name:       "api key accepted",
			deps:       HTTPServerDependencies{APIKey: "secret"},
			headers:    map[string]string{"Authorization": "Bearer secret"},
			wantStatus: http.StatusOK,
		},
		{
			name:       "api key missing",
			deps:       HTTPServerDependencies{APIKey: "secret"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "api key wrong",
			deps:       HTTPServerDependencies{APIKey: "secret"},
			headers:    map[string]string{"Authorization": "Bearer guess"},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "signature accepted",
			deps:       HTTPServerDependencies{APISigningPublicKey: base64.StdEncoding.EncodeToString(publicKey)},
			headers:    signed,
			wantStatus: http.StatusOK,
		},
		{
			name:       "signature missing",
			deps:       HTTPServerDependencies{APISigningPublicKey: base64.StdEncoding.EncodeToString(publicKey)},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestServer(t, &fakeExecutorService{}, tt.deps)

			status, _ := doJSON(t, app, http.MethodPost, path, body, tt.headers)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}

func TestNewHTTPServer_InvalidSigningKey(t *testing.T) {
	_, err := NewHTTPServer(HTTPServerDependencies{
		ExecutorController:  controllers.NewExecutorController(controllers.ExecutorControllerDependencies{}),
		APISigningPublicKey: "not-base64!",
	})
	require.Error(t, err)
}
