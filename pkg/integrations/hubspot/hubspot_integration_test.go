package hubspot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/flowbaker/hubspot-executor/pkg/domain"
	"github.com/flowbaker/hubspot-executor/pkg/expressions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIntegration(t *testing.T) (*hubspotServer, *HubSpotIntegration) {
	t.Helper()

	server, client := newHubSpotServer(t)

	integration := NewHubSpotIntegration(HubSpotIntegrationDependencies{
		Client:          client,
		ParameterBinder: expressions.NewPathBinder(expressions.DefaultPathBinderOptions()),
	})

	return server, integration
}

func actionInput(t *testing.T, actionType domain.IntegrationActionType, settings map[string]any, items ...domain.Item) domain.IntegrationInput {
	t.Helper()

	if len(items) == 0 {
		items = []domain.Item{map[string]any{}}
	}

	payload, err := domain.NewPayloadFromItems(items)
	require.NoError(t, err)

	return domain.IntegrationInput{
		NodeID:            "node-1",
		ActionType:        actionType,
		PayloadByInputID:  map[string]domain.Payload{"input-1": payload},
		IntegrationParams: domain.IntegrationParams{Settings: settings},
	}
}

func outputItems(t *testing.T, output domain.IntegrationOutput) []map[string]any {
	t.Helper()

	require.Len(t, output.ResultJSONByOutputID, 1)

	var items []map[string]any
	require.NoError(t, json.Unmarshal(output.ResultJSONByOutputID[0], &items))

	return items
}

func TestHubSpotIntegration_CreateContact(t *testing.T) {
	server, integration := newTestIntegration(t)

	server.handle(http.MethodPost, "/crm/v3/objects/contacts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"id": "501", "properties": map[string]any{"email": "jane@example.com"}})
	})

	output, err := integration.Execute(context.Background(), actionInput(t, IntegrationActionType_CreateContact, map[string]any{
		"email":             "{{ item.email }}",
		"firstname":         "Jane",
		"not_a_field":       "dropped",
		"custom_properties": map[string]any{"favorite_color": "green"},
	}, map[string]any{"email": "jane@example.com"}))
	require.NoError(t, err)

	items := outputItems(t, output)
	require.Len(t, items, 1)
	assert.Equal(t, "501", items[0]["id"])

	calls := server.requests(http.MethodPost, "/crm/v3/objects/contacts")
	require.Len(t, calls, 1)

	var body objectWriteBody
	require.NoError(t, json.Unmarshal(calls[0].Body, &body))
	assert.Equal(t, map[string]string{
		"email":          "jane@example.com",
		"firstname":      "Jane",
		"favorite_color": "green",
	}, body.Properties)
}

func TestHubSpotIntegration_CreateOrUpdateContact(t *testing.T) {
	tests := []struct {
		name           string
		searchResults  []any
		expectedMethod string
		expectedPath   string
	}{
		{
			name:           "creates when no contact matches",
			searchResults:  []any{},
			expectedMethod: http.MethodPost,
			expectedPath:   "/crm/v3/objects/contacts",
		},
		{
			name:           "updates the matching contact",
			searchResults:  []any{map[string]any{"id": "77"}},
			expectedMethod: http.MethodPatch,
			expectedPath:   "/crm/v3/objects/contacts/77",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, integration := newTestIntegration(t)

			server.handle(http.MethodPost, "/crm/v3/objects/contacts/search", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"results": tt.searchResults})
			})
			server.handle(tt.expectedMethod, tt.expectedPath, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"id": "77"})
			})

			_, err := integration.Execute(context.Background(), actionInput(t, IntegrationActionType_CreateOrUpdateContact, map[string]any{
				"email":    "jane@example.com",
				"lastname": "Doe",
			}))
			require.NoError(t, err)

			assert.Len(t, server.requests(tt.expectedMethod, tt.expectedPath), 1)
		})
	}
}

func TestHubSpotIntegration_FindDeals(t *testing.T) {
	server, integration := newTestIntegration(t)

	server.handle(http.MethodPost, "/crm/v3/objects/deals/search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"results": []any{
			map[string]any{"id": "1"},
			map[string]any{"id": "2"},
		}})
	})

	output, err := integration.Execute(context.Background(), actionInput(t, IntegrationActionType_FindDeals, map[string]any{
		"property_name": "dealstage",
		"operator":      "in",
		"value":         "qualified, closedwon",
	}))
	require.NoError(t, err)

	assert.Len(t, outputItems(t, output), 2)

	calls := server.requests(http.MethodPost, "/crm/v3/objects/deals/search")
	require.Len(t, calls, 1)

	request := decodeSearch(t, calls[0].Body)
	assert.Equal(t, []Filter{{PropertyName: "dealstage", Operator: FilterOperatorIn, Values: []string{"qualified", "closedwon"}}}, request.FilterGroups[0].Filters)
	assert.Equal(t, defaultFindLimit, request.Limit)
}

func TestHubSpotIntegration_FindRejectsUnknownOperator(t *testing.T) {
	_, integration := newTestIntegration(t)

	_, err := integration.Execute(context.Background(), actionInput(t, IntegrationActionType_FindContacts, map[string]any{
		"property_name": "email",
		"operator":      "LIKE",
		"value":         "x",
	}))

	require.Error(t, err)
	assert.True(t, domain.IsInputError(err))
	assert.Contains(t, err.Error(), "LIKE")
}

func TestHubSpotIntegration_CreateAssociation(t *testing.T) {
	server, integration := newTestIntegration(t)

	server.handle(http.MethodPut, "/crm/v4/objects/deals/9/associations/contacts/1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"fromObjectId": 9, "toObjectId": 1})
	})
	server.handle(http.MethodPut, "/crm/v4/objects/deals/9/associations/contacts/2", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"fromObjectId": 9, "toObjectId": 2})
	})

	output, err := integration.Execute(context.Background(), actionInput(t, IntegrationActionType_CreateAssociation, map[string]any{
		"from_object_type":  "deals",
		"from_object_id":    "9",
		"to_object_type":    "contacts",
		"to_object_ids":     `["1","2"]`,
		"association_label": `{"category":"USER_DEFINED","typeId":36}`,
	}))
	require.NoError(t, err)

	assert.Len(t, outputItems(t, output), 2)

	calls := server.requests(http.MethodPut, "/crm/v4/objects/deals/9/associations/contacts/1")
	require.Len(t, calls, 1)

	var specs []AssociationSpec
	require.NoError(t, json.Unmarshal(calls[0].Body, &specs))
	assert.Equal(t, []AssociationSpec{{AssociationCategory: "USER_DEFINED", AssociationTypeID: 36}}, specs)
}

func TestHubSpotIntegration_CreateAssociation_InvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		rawValue string
	}{
		{
			name: "malformed to object ids",
			settings: map[string]any{
				"from_object_type": "deals",
				"from_object_id":   "9",
				"to_object_type":   "contacts",
				"to_object_ids":    `[1, 2`,
			},
			rawValue: `[1, 2`,
		},
		{
			name: "malformed association label",
			settings: map[string]any{
				"from_object_type":  "deals",
				"from_object_id":    "9",
				"to_object_type":    "contacts",
				"to_object_ids":     "1",
				"association_label": "{category:USER_DEFINED}",
			},
			rawValue: "{category:USER_DEFINED}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, integration := newTestIntegration(t)

			_, err := integration.Execute(context.Background(), actionInput(t, IntegrationActionType_CreateAssociation, tt.settings))
			require.Error(t, err)

			var inputErr *domain.InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, tt.rawValue, inputErr.RawValue)

			server.mtx.Lock()
			assert.Empty(t, server.calls, "invalid input must not reach HubSpot")
			server.mtx.Unlock()
		})
	}
}

func TestHubSpotIntegration_GetOwnerByEmail_NoMatch(t *testing.T) {
	server, integration := newTestIntegration(t)

	server.handle(http.MethodGet, "/crm/v3/owners", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nobody@example.com", r.URL.Query().Get("email"))
		writeJSON(w, http.StatusOK, map[string]any{"results": []any{}})
	})

	output, err := integration.Execute(context.Background(), actionInput(t, IntegrationActionType_GetOwnerByEmail, map[string]any{
		"email": "nobody@example.com",
	}))
	require.NoError(t, err)

	assert.Empty(t, outputItems(t, output))
}

func TestHubSpotIntegration_UnknownAction(t *testing.T) {
	_, integration := newTestIntegration(t)

	_, err := integration.Execute(context.Background(), actionInput(t, "launch_rocket", map[string]any{}))
	assert.ErrorIs(t, err, domain.ErrActionNotFound)
}

func TestHubSpotIntegration_Peek(t *testing.T) {
	server, integration := newTestIntegration(t)

	server.handle(http.MethodGet, "/crm/v3/pipelines/deals", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"results": []any{
			map[string]any{
				"id":    "default",
				"label": "Sales",
				"stages": []any{
					map[string]any{"id": "closedwon", "label": "Won", "displayOrder": 2},
					map[string]any{"id": "qualified", "label": "Qualified", "displayOrder": 1},
				},
			},
			map[string]any{"id": "old", "label": "Old", "archived": true},
		}})
	})

	server.handle(http.MethodGet, "/crm/v3/owners", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "25", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, map[string]any{
			"results": []any{map[string]any{"id": "5", "firstName": "Ada", "lastName": "Lovelace", "email": "ada@example.com"}},
			"paging":  map[string]any{"next": map[string]any{"after": "5"}},
		})
	})

	tests := []struct {
		name         string
		params       domain.PeekParams
		expectedKeys []string
		expectedNext string
	}{
		{
			name:         "pipelines skip archived",
			params:       domain.PeekParams{PeekableType: IntegrationPeekable_Pipelines, PayloadJSON: []byte(`{"object_type":"deals"}`)},
			expectedKeys: []string{"default"},
		},
		{
			name:         "stages in display order",
			params:       domain.PeekParams{PeekableType: IntegrationPeekable_PipelineStages, PayloadJSON: []byte(`{"pipeline_id":"default"}`)},
			expectedKeys: []string{"qualified", "closedwon"},
		},
		{
			name:         "owners with cursor",
			params:       domain.PeekParams{PeekableType: IntegrationPeekable_Owners, Pagination: domain.PaginationParams{Limit: 25}},
			expectedKeys: []string{"5"},
			expectedNext: "5",
		},
		{
			name:         "object types",
			params:       domain.PeekParams{PeekableType: IntegrationPeekable_ObjectTypes},
			expectedKeys: []string{"companies", "contacts", "deals", "line_items", "products", "tasks", "tickets"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := integration.Peek(context.Background(), tt.params)
			require.NoError(t, err)

			keys := []string{}
			for _, item := range result.Result {
				keys = append(keys, item.Key)
			}

			assert.Equal(t, tt.expectedKeys, keys)
			assert.Equal(t, tt.expectedNext, result.Pagination.NextCursor)
			assert.Equal(t, tt.expectedNext != "", result.Pagination.HasMore)
		})
	}

	_, err := integration.Peek(context.Background(), domain.PeekParams{PeekableType: "galaxies"})
	assert.ErrorIs(t, err, domain.ErrPeekableNotFound)
}

func TestSchema_TriggersMatchDefinitions(t *testing.T) {
	assert.Len(t, Schema.Triggers, len(triggerDefinitions))

	for _, trigger := range Schema.Triggers {
		_, ok := triggerDefinitions[trigger.EventType]
		assert.True(t, ok, "trigger %s has no definition", trigger.EventType)
	}

	integration := NewHubSpotIntegration(HubSpotIntegrationDependencies{})
	for _, action := range Schema.Actions {
		assert.True(t, integration.actionManager.Has(action.ActionType), "action %s is not registered", action.ActionType)
	}
}
