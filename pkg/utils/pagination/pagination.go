package pagination

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flowbaker/hubspot-executor/pkg/domain"

	"github.com/tidwall/gjson"
)

// AfterCursorPath is where HubSpot list and search responses carry the cursor
// of the next page.
const AfterCursorPath = "paging.next.after"

type Handler interface {
	GetType() domain.IntegrationPeekablePaginationType

	BuildRequestParams(params domain.PaginationParams) (map[string]any, error)

	ParseResponseMetadata(body []byte) (domain.PaginationMetadata, error)

	ValidateParams(params domain.PaginationParams) error
}

// CursorHandler implements HubSpot's limit/after pagination.
type CursorHandler struct {
	DefaultLimit int
	MaxLimit     int
}

func NewCursorHandler(config domain.PeekablePaginationConfig) *CursorHandler {
	return &CursorHandler{
		DefaultLimit: config.DefaultLimit,
		MaxLimit:     config.MaxLimit,
	}
}

func (h *CursorHandler) GetType() domain.IntegrationPeekablePaginationType {
	return domain.PeekablePaginationType_Cursor
}

func (h *CursorHandler) Limit(params domain.PaginationParams) int {
	limit := params.Limit
	if limit <= 0 {
		limit = h.DefaultLimit
	}
	if h.MaxLimit > 0 && limit > h.MaxLimit {
		limit = h.MaxLimit
	}
	return limit
}

func (h *CursorHandler) BuildRequestParams(params domain.PaginationParams) (map[string]any, error) {
	if err := h.ValidateParams(params); err != nil {
		return nil, err
	}

	reqParams := map[string]any{
		"limit": h.Limit(params),
	}

	if params.Cursor != "" {
		reqParams["after"] = params.Cursor
	}

	return reqParams, nil
}

// QueryString renders the request params as a URL query, e.g. "limit=20&after=abc".
func (h *CursorHandler) QueryString(params domain.PaginationParams) (string, error) {
	if err := h.ValidateParams(params); err != nil {
		return "", err
	}

	parts := []string{"limit=" + strconv.Itoa(h.Limit(params))}
	if params.Cursor != "" {
		parts = append(parts, "after="+params.Cursor)
	}

	return strings.Join(parts, "&"), nil
}

func (h *CursorHandler) ParseResponseMetadata(body []byte) (domain.PaginationMetadata, error) {
	if !gjson.ValidBytes(body) {
		return domain.PaginationMetadata{}, fmt.Errorf("failed to parse pagination metadata: invalid JSON")
	}

	nextCursor := NextCursor(body)

	return domain.PaginationMetadata{
		HasMore:    nextCursor != "",
		NextCursor: nextCursor,
	}, nil
}

func (h *CursorHandler) ValidateParams(params domain.PaginationParams) error {
	if params.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	if h.MaxLimit > 0 && params.Limit > h.MaxLimit {
		return fmt.Errorf("limit %d exceeds maximum %d", params.Limit, h.MaxLimit)
	}
	return nil
}

// NextCursor returns the next-page cursor of a HubSpot response body. A
// missing or malformed cursor yields "", which callers treat as the last page.
func NextCursor(body []byte) string {
	result := gjson.GetBytes(body, AfterCursorPath)

	switch result.Type {
	case gjson.String:
		return strings.TrimSpace(result.Str)
	case gjson.Number:
		return result.Raw
	default:
		return ""
	}
}
