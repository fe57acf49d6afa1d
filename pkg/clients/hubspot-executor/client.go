package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flowbaker/hubspot-executor/internal/auth"

	"github.com/hashicorp/go-retryablehttp"
)

// Error is a non-2xx answer from the executor.
type Error struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("executor returned %d: %s", e.StatusCode, e.Message)
}

type ClientConfig struct {
	BaseURL string
	APIKey  string

	// SigningKey is a base64 ed25519 private key. Requests are signed when
	// it is set.
	SigningKey string

	Timeout       time.Duration
	RetryAttempts int
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	signer     *auth.RequestSigner
}

func NewClient(config ClientConfig) (*Client, error) {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = config.RetryAttempts
	retryClient.RetryWaitMin = 100 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	httpClient := retryClient.StandardClient()
	if config.Timeout > 0 {
		httpClient.Timeout = config.Timeout
	}

	client := &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		apiKey:     config.APIKey,
		httpClient: httpClient,
	}

	if config.SigningKey != "" {
		signer, err := auth.NewRequestSigner(config.SigningKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize request signer: %w", err)
		}

		client.signer = signer
	}

	return client, nil
}

func (c *Client) HealthCheck(ctx context.Context) (HealthCheckResponse, error) {
	var response HealthCheckResponse

	err := c.do(ctx, http.MethodGet, "/health", nil, &response)

	return response, err
}

func (c *Client) HandlePollingEvent(ctx context.Context, workspaceID string, req PollingEventRequest) (PollingEventResponse, error) {
	var response PollingEventResponse

	if err := c.do(ctx, http.MethodPost, workspacePath(workspaceID, "polling-events"), req, &response); err != nil {
		return PollingEventResponse{}, fmt.Errorf("failed to handle polling event: %w", err)
	}

	return response, nil
}

func (c *Client) ExecuteAction(ctx context.Context, workspaceID string, req ExecuteActionRequest) (ExecuteActionResponse, error) {
	var response ExecuteActionResponse

	if err := c.do(ctx, http.MethodPost, workspacePath(workspaceID, "executions"), req, &response); err != nil {
		return ExecuteActionResponse{}, fmt.Errorf("failed to execute action: %w", err)
	}

	return response, nil
}

func (c *Client) PeekData(ctx context.Context, workspaceID string, req PeekDataRequest) (PeekDataResponse, error) {
	var response PeekDataResponse

	if err := c.do(ctx, http.MethodPost, workspacePath(workspaceID, "peek-data"), req, &response); err != nil {
		return PeekDataResponse{}, fmt.Errorf("failed to peek data: %w", err)
	}

	return response, nil
}

func (c *Client) TestConnection(ctx context.Context, workspaceID string, req ConnectionTestRequest) (ConnectionTestResponse, error) {
	var response ConnectionTestResponse

	if err := c.do(ctx, http.MethodPost, workspacePath(workspaceID, "connection-test"), req, &response); err != nil {
		return ConnectionTestResponse{}, fmt.Errorf("failed to test connection: %w", err)
	}

	return response, nil
}

func workspacePath(workspaceID, route string) string {
	return fmt.Sprintf("/workspaces/%s/%s", workspaceID, route)
}

func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var bodyBytes []byte

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyBytes = encoded
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if c.signer != nil {
		for key, value := range c.signer.Sign(method, path, bodyBytes) {
			req.Header.Set(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		message := fmt.Sprintf("HTTP %d", resp.StatusCode)

		var errorResponse ErrorResponse
		if json.Unmarshal(responseBody, &errorResponse) == nil && errorResponse.Error != "" {
			message = errorResponse.Error
		}

		return &Error{StatusCode: resp.StatusCode, Message: message, Body: string(responseBody)}
	}

	if result != nil {
		if err := json.Unmarshal(responseBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}
