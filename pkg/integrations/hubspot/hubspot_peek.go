package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/flowbaker/hubspot-executor/pkg/domain"
)

const (
	IntegrationPeekable_Pipelines         domain.IntegrationPeekableType = "pipelines"
	IntegrationPeekable_PipelineStages    domain.IntegrationPeekableType = "pipeline_stages"
	IntegrationPeekable_Owners            domain.IntegrationPeekableType = "owners"
	IntegrationPeekable_Properties        domain.IntegrationPeekableType = "properties"
	IntegrationPeekable_Lists             domain.IntegrationPeekableType = "lists"
	IntegrationPeekable_AssociationLabels domain.IntegrationPeekableType = "association_labels"
	IntegrationPeekable_ObjectTypes       domain.IntegrationPeekableType = "object_types"
)

type peekPayload struct {
	ObjectType     string `json:"object_type"`
	PipelineID     string `json:"pipeline_id"`
	FromObjectType string `json:"from_object_type"`
	ToObjectType   string `json:"to_object_type"`
	Query          string `json:"query"`
}

func decodePeekPayload(params domain.PeekParams) (peekPayload, error) {
	payload := peekPayload{}

	if len(params.PayloadJSON) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(params.PayloadJSON, &payload); err != nil {
		return peekPayload{}, fmt.Errorf("failed to unmarshal peek payload: %w", err)
	}

	return payload, nil
}

func (i *HubSpotIntegration) PeekPipelines(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	payload, err := decodePeekPayload(params)
	if err != nil {
		return domain.PeekResult{}, err
	}

	objectType := payload.ObjectType
	if objectType == "" {
		objectType = ObjectTypeDeals
	}

	pipelines, err := i.client.ListPipelines(ctx, objectType)
	if err != nil {
		return domain.PeekResult{}, err
	}

	results := make([]domain.PeekResultItem, 0, len(pipelines))
	for _, pipeline := range pipelines {
		if pipeline.Archived {
			continue
		}

		results = append(results, domain.PeekResultItem{
			Key:     pipeline.ID,
			Value:   pipeline.ID,
			Content: pipeline.Label,
		})
	}

	return domain.PeekResult{Result: results}, nil
}

func (i *HubSpotIntegration) PeekPipelineStages(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	payload, err := decodePeekPayload(params)
	if err != nil {
		return domain.PeekResult{}, err
	}

	if payload.PipelineID == "" {
		return domain.PeekResult{Result: []domain.PeekResultItem{}}, nil
	}

	objectType := payload.ObjectType
	if objectType == "" {
		objectType = ObjectTypeDeals
	}

	pipelines, err := i.client.ListPipelines(ctx, objectType)
	if err != nil {
		return domain.PeekResult{}, err
	}

	results := []domain.PeekResultItem{}

	for _, pipeline := range pipelines {
		if pipeline.ID != payload.PipelineID {
			continue
		}

		stages := append([]PipelineStage{}, pipeline.Stages...)
		sort.SliceStable(stages, func(a, b int) bool {
			return stages[a].DisplayOrder < stages[b].DisplayOrder
		})

		for _, stage := range stages {
			if stage.Archived {
				continue
			}

			results = append(results, domain.PeekResultItem{
				Key:     stage.ID,
				Value:   stage.ID,
				Content: stage.Label,
			})
		}
	}

	return domain.PeekResult{Result: results}, nil
}

func (i *HubSpotIntegration) PeekOwners(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	if err := i.paginationHandler.ValidateParams(params.Pagination); err != nil {
		return domain.PeekResult{}, err
	}

	page, err := i.client.ListOwners(ctx, "", i.paginationHandler.Limit(params.Pagination), params.Pagination.Cursor)
	if err != nil {
		return domain.PeekResult{}, err
	}

	results := make([]domain.PeekResultItem, 0, len(page.Owners))
	for _, owner := range page.Owners {
		results = append(results, domain.PeekResultItem{
			Key:     owner.ID,
			Value:   owner.ID,
			Content: owner.DisplayName(),
		})
	}

	return domain.PeekResult{
		Result: results,
		Pagination: domain.PaginationMetadata{
			HasMore:    page.NextCursor != "",
			NextCursor: page.NextCursor,
		},
	}, nil
}

func (i *HubSpotIntegration) PeekProperties(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	payload, err := decodePeekPayload(params)
	if err != nil {
		return domain.PeekResult{}, err
	}

	objectType := payload.ObjectType
	if objectType == "" {
		objectType = ObjectTypeContacts
	}

	properties, err := i.client.ListProperties(ctx, objectType)
	if err != nil {
		return domain.PeekResult{}, err
	}

	sort.SliceStable(properties, func(a, b int) bool {
		return properties[a].Label < properties[b].Label
	})

	results := make([]domain.PeekResultItem, 0, len(properties))
	for _, property := range properties {
		if property.Hidden {
			continue
		}

		results = append(results, domain.PeekResultItem{
			Key:     property.Name,
			Value:   property.Name,
			Content: property.Label,
		})
	}

	return domain.PeekResult{Result: results}, nil
}

// PeekLists pages by offset; the cursor is the decimal offset of the next
// page.
func (i *HubSpotIntegration) PeekLists(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	payload, err := decodePeekPayload(params)
	if err != nil {
		return domain.PeekResult{}, err
	}

	if err := i.paginationHandler.ValidateParams(params.Pagination); err != nil {
		return domain.PeekResult{}, err
	}

	offset := 0
	if params.Pagination.Cursor != "" {
		offset, err = strconv.Atoi(params.Pagination.Cursor)
		if err != nil || offset < 0 {
			return domain.PeekResult{}, fmt.Errorf("invalid lists cursor: %s", params.Pagination.Cursor)
		}
	}

	response, err := i.client.SearchLists(ctx, payload.Query, i.paginationHandler.Limit(params.Pagination), offset)
	if err != nil {
		return domain.PeekResult{}, err
	}

	results := make([]domain.PeekResultItem, 0, len(response.Lists))
	for _, list := range response.Lists {
		results = append(results, domain.PeekResultItem{
			Key:     list.ListID,
			Value:   list.ListID,
			Content: list.Name,
		})
	}

	result := domain.PeekResult{Result: results}
	if response.HasMore {
		result.Pagination = domain.PaginationMetadata{
			HasMore:    true,
			NextCursor: strconv.Itoa(response.Offset),
		}
	}

	return result, nil
}

func (i *HubSpotIntegration) PeekAssociationLabels(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	payload, err := decodePeekPayload(params)
	if err != nil {
		return domain.PeekResult{}, err
	}

	if payload.FromObjectType == "" || payload.ToObjectType == "" {
		return domain.PeekResult{Result: []domain.PeekResultItem{}}, nil
	}

	labels, err := i.client.ListAssociationLabels(ctx, payload.FromObjectType, payload.ToObjectType)
	if err != nil {
		return domain.PeekResult{}, err
	}

	results := make([]domain.PeekResultItem, 0, len(labels))
	for _, label := range labels {
		content := label.Label
		if content == "" {
			content = fmt.Sprintf("Default (%d)", label.TypeID)
		}

		value := encodeAssociationLabel(label)

		results = append(results, domain.PeekResultItem{
			Key:     value,
			Value:   value,
			Content: content,
		})
	}

	return domain.PeekResult{Result: results}, nil
}

func (i *HubSpotIntegration) PeekObjectTypes(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	objectTypes := make([]string, 0, len(objectDefs))
	for objectType := range objectDefs {
		objectTypes = append(objectTypes, objectType)
	}
	sort.Strings(objectTypes)

	results := make([]domain.PeekResultItem, 0, len(objectTypes))
	for _, objectType := range objectTypes {
		results = append(results, domain.PeekResultItem{
			Key:     objectType,
			Value:   objectType,
			Content: objectDefs[objectType].Label,
		})
	}

	return domain.PeekResult{Result: results}, nil
}
