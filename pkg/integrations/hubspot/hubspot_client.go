package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

const DefaultBaseURL = "https://api.hubapi.com"

// APIError is returned for every non-2xx response from HubSpot.
type APIError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hubspot API error (status %d): %s", e.StatusCode, e.Body)
}

// Client is a thin HubSpot REST client. Authentication is a bearer token and
// transient failures (429, 5xx, connection errors) are retried with backoff.
type Client struct {
	baseURL    string
	httpClient *retryablehttp.Client
}

func NewClient(ctx context.Context, config domain.HubSpotClientConfig, accessToken string) *Client {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = oauth2.NewClient(ctx, tokenSource)
	retryClient.RetryMax = config.RetryMax
	retryClient.RetryWaitMin = time.Duration(config.RetryWaitMin) * time.Millisecond
	retryClient.RetryWaitMax = time.Duration(config.RetryWaitMax) * time.Millisecond
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = retryLogger{}

	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: retryClient,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	var rawBody any
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		rawBody = bytes.NewReader(jsonBody)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, rawBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       string(respBody),
		}
	}

	return respBody, nil
}

func decode[T any](body []byte) (T, error) {
	var result T

	if len(body) == 0 {
		return result, nil
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return result, nil
}

// retryLogger routes retryablehttp's leveled logs to zerolog.
type retryLogger struct{}

func (retryLogger) Error(msg string, keysAndValues ...any) {
	log.Error().Fields(keysAndValues).Msg("HubSpotClient: " + msg)
}

func (retryLogger) Info(msg string, keysAndValues ...any) {
	log.Debug().Fields(keysAndValues).Msg("HubSpotClient: " + msg)
}

func (retryLogger) Debug(msg string, keysAndValues ...any) {
	log.Trace().Fields(keysAndValues).Msg("HubSpotClient: " + msg)
}

func (retryLogger) Warn(msg string, keysAndValues ...any) {
	log.Warn().Fields(keysAndValues).Msg("HubSpotClient: " + msg)
}
