package hubspot

import (
	"context"
	"fmt"

	"github.com/flowbaker/hubspot-executor/pkg/utils/pagination"
)

type FilterOperator string

// Search operators as the CRM search endpoint spells them.
const (
	FilterOperatorEQ               FilterOperator = "EQ"
	FilterOperatorNEQ              FilterOperator = "NEQ"
	FilterOperatorLT               FilterOperator = "LT"
	FilterOperatorLTE              FilterOperator = "LTE"
	FilterOperatorGT               FilterOperator = "GT"
	FilterOperatorGTE              FilterOperator = "GTE"
	FilterOperatorBetween          FilterOperator = "BETWEEN"
	FilterOperatorIn               FilterOperator = "IN"
	FilterOperatorNotIn            FilterOperator = "NOT_IN"
	FilterOperatorHasProperty      FilterOperator = "HAS_PROPERTY"
	FilterOperatorNotHasProperty   FilterOperator = "NOT_HAS_PROPERTY"
	FilterOperatorContainsToken    FilterOperator = "CONTAINS_TOKEN"
	FilterOperatorNotContainsToken FilterOperator = "NOT_CONTAINS_TOKEN"
)

var FilterOperators = []FilterOperator{
	FilterOperatorEQ,
	FilterOperatorNEQ,
	FilterOperatorLT,
	FilterOperatorLTE,
	FilterOperatorGT,
	FilterOperatorGTE,
	FilterOperatorBetween,
	FilterOperatorIn,
	FilterOperatorNotIn,
	FilterOperatorHasProperty,
	FilterOperatorNotHasProperty,
	FilterOperatorContainsToken,
	FilterOperatorNotContainsToken,
}

func (o FilterOperator) IsValid() bool {
	for _, operator := range FilterOperators {
		if operator == o {
			return true
		}
	}
	return false
}

type SortDirection string

const (
	SortDirectionAscending  SortDirection = "ASCENDING"
	SortDirectionDescending SortDirection = "DESCENDING"
)

type Filter struct {
	PropertyName string         `json:"propertyName"`
	Operator     FilterOperator `json:"operator"`
	Value        string         `json:"value,omitempty"`
	HighValue    string         `json:"highValue,omitempty"`
	Values       []string       `json:"values,omitempty"`
}

type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

type Sort struct {
	PropertyName string        `json:"propertyName"`
	Direction    SortDirection `json:"direction"`
}

// MaxSearchLimit is the largest page the CRM search endpoint accepts.
const MaxSearchLimit = 200

type SearchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups,omitempty"`
	Sorts        []Sort        `json:"sorts,omitempty"`
	Query        string        `json:"query,omitempty"`
	Properties   []string      `json:"properties,omitempty"`
	Limit        int           `json:"limit"`
	After        string        `json:"after,omitempty"`
}

type SearchResponse struct {
	Total      int
	Results    []map[string]any
	NextCursor string
}

type searchResponseBody struct {
	Total   int              `json:"total"`
	Results []map[string]any `json:"results"`
}

func (c *Client) Search(ctx context.Context, objectType string, req SearchRequest) (SearchResponse, error) {
	body, err := c.post(ctx, fmt.Sprintf("/crm/v3/objects/%s/search", objectType), req)
	if err != nil {
		return SearchResponse{}, fmt.Errorf("failed to search %s: %w", objectType, err)
	}

	decoded, err := decode[searchResponseBody](body)
	if err != nil {
		return SearchResponse{}, err
	}

	if decoded.Results == nil {
		decoded.Results = []map[string]any{}
	}

	return SearchResponse{
		Total:      decoded.Total,
		Results:    decoded.Results,
		NextCursor: pagination.NextCursor(body),
	}, nil
}

type BatchReadInput struct {
	ID string `json:"id"`
}

type BatchReadRequest struct {
	Properties            []string         `json:"properties,omitempty"`
	PropertiesWithHistory []string         `json:"propertiesWithHistory,omitempty"`
	IDProperty            string           `json:"idProperty,omitempty"`
	Inputs                []BatchReadInput `json:"inputs"`
}

type batchReadResponseBody struct {
	Status  string           `json:"status"`
	Results []map[string]any `json:"results"`
}

// MaxBatchReadInputs is the vendor limit for batch reads that include
// property history.
const MaxBatchReadInputs = 50

func (c *Client) BatchRead(ctx context.Context, objectType string, req BatchReadRequest) ([]map[string]any, error) {
	if len(req.Inputs) > MaxBatchReadInputs {
		return nil, fmt.Errorf("batch read of %d %s exceeds the limit of %d", len(req.Inputs), objectType, MaxBatchReadInputs)
	}

	body, err := c.post(ctx, fmt.Sprintf("/crm/v3/objects/%s/batch/read", objectType), req)
	if err != nil {
		return nil, fmt.Errorf("failed to batch read %s: %w", objectType, err)
	}

	decoded, err := decode[batchReadResponseBody](body)
	if err != nil {
		return nil, err
	}

	return decoded.Results, nil
}
