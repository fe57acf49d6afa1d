package hubspot

import (
	"context"
	"fmt"
	"strconv"

	"github.com/flowbaker/hubspot-executor/pkg/domain"
	"github.com/flowbaker/hubspot-executor/pkg/polling"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"
)

const (
	IntegrationTriggerType_NewContact  domain.IntegrationTriggerEventType = "new_contact"
	IntegrationTriggerType_NewCompany  domain.IntegrationTriggerEventType = "new_company"
	IntegrationTriggerType_NewDeal     domain.IntegrationTriggerEventType = "new_deal"
	IntegrationTriggerType_NewTicket   domain.IntegrationTriggerEventType = "new_ticket"
	IntegrationTriggerType_NewProduct  domain.IntegrationTriggerEventType = "new_product"
	IntegrationTriggerType_NewLineItem domain.IntegrationTriggerEventType = "new_line_item"
	IntegrationTriggerType_NewTask     domain.IntegrationTriggerEventType = "new_task"

	IntegrationTriggerType_NewOrUpdatedContact  domain.IntegrationTriggerEventType = "new_or_updated_contact"
	IntegrationTriggerType_NewOrUpdatedCompany  domain.IntegrationTriggerEventType = "new_or_updated_company"
	IntegrationTriggerType_NewOrUpdatedDeal     domain.IntegrationTriggerEventType = "new_or_updated_deal"
	IntegrationTriggerType_NewOrUpdatedTicket   domain.IntegrationTriggerEventType = "new_or_updated_ticket"
	IntegrationTriggerType_NewOrUpdatedProduct  domain.IntegrationTriggerEventType = "new_or_updated_product"
	IntegrationTriggerType_NewOrUpdatedLineItem domain.IntegrationTriggerEventType = "new_or_updated_line_item"

	IntegrationTriggerType_NewDealInPipeline   domain.IntegrationTriggerEventType = "new_deal_in_pipeline"
	IntegrationTriggerType_NewTicketInPipeline domain.IntegrationTriggerEventType = "new_ticket_in_pipeline"
	IntegrationTriggerType_NewRecord           domain.IntegrationTriggerEventType = "new_record"

	IntegrationTriggerType_ContactPropertyChanged domain.IntegrationTriggerEventType = "contact_property_changed"
	IntegrationTriggerType_CompanyPropertyChanged domain.IntegrationTriggerEventType = "company_property_changed"
	IntegrationTriggerType_DealPropertyChanged    domain.IntegrationTriggerEventType = "deal_property_changed"
	IntegrationTriggerType_TicketPropertyChanged  domain.IntegrationTriggerEventType = "ticket_property_changed"
	IntegrationTriggerType_DealStageChanged       domain.IntegrationTriggerEventType = "deal_stage_changed"
)

type triggerKind int

const (
	triggerKindCreated triggerKind = iota
	triggerKindModified
	triggerKindPropertyChanged
)

type triggerDefinition struct {
	EventType domain.IntegrationTriggerEventType
	Kind      triggerKind

	// ObjectType is empty when the user picks it in the object_type setting.
	ObjectType string

	// Property is the watched property of a property-change trigger. Empty
	// means the property_name setting.
	Property string

	RequirePipeline bool
	FilterByStage   bool
}

var triggerDefinitions = map[domain.IntegrationTriggerEventType]triggerDefinition{
	IntegrationTriggerType_NewContact:  {Kind: triggerKindCreated, ObjectType: ObjectTypeContacts},
	IntegrationTriggerType_NewCompany:  {Kind: triggerKindCreated, ObjectType: ObjectTypeCompanies},
	IntegrationTriggerType_NewDeal:     {Kind: triggerKindCreated, ObjectType: ObjectTypeDeals},
	IntegrationTriggerType_NewTicket:   {Kind: triggerKindCreated, ObjectType: ObjectTypeTickets},
	IntegrationTriggerType_NewProduct:  {Kind: triggerKindCreated, ObjectType: ObjectTypeProducts},
	IntegrationTriggerType_NewLineItem: {Kind: triggerKindCreated, ObjectType: ObjectTypeLineItems},
	IntegrationTriggerType_NewTask:     {Kind: triggerKindCreated, ObjectType: ObjectTypeTasks},

	IntegrationTriggerType_NewOrUpdatedContact:  {Kind: triggerKindModified, ObjectType: ObjectTypeContacts},
	IntegrationTriggerType_NewOrUpdatedCompany:  {Kind: triggerKindModified, ObjectType: ObjectTypeCompanies},
	IntegrationTriggerType_NewOrUpdatedDeal:     {Kind: triggerKindModified, ObjectType: ObjectTypeDeals},
	IntegrationTriggerType_NewOrUpdatedTicket:   {Kind: triggerKindModified, ObjectType: ObjectTypeTickets},
	IntegrationTriggerType_NewOrUpdatedProduct:  {Kind: triggerKindModified, ObjectType: ObjectTypeProducts},
	IntegrationTriggerType_NewOrUpdatedLineItem: {Kind: triggerKindModified, ObjectType: ObjectTypeLineItems},

	IntegrationTriggerType_NewDealInPipeline:   {Kind: triggerKindCreated, ObjectType: ObjectTypeDeals, RequirePipeline: true},
	IntegrationTriggerType_NewTicketInPipeline: {Kind: triggerKindCreated, ObjectType: ObjectTypeTickets, RequirePipeline: true},
	IntegrationTriggerType_NewRecord:           {Kind: triggerKindCreated},

	IntegrationTriggerType_ContactPropertyChanged: {Kind: triggerKindPropertyChanged, ObjectType: ObjectTypeContacts},
	IntegrationTriggerType_CompanyPropertyChanged: {Kind: triggerKindPropertyChanged, ObjectType: ObjectTypeCompanies},
	IntegrationTriggerType_DealPropertyChanged:    {Kind: triggerKindPropertyChanged, ObjectType: ObjectTypeDeals},
	IntegrationTriggerType_TicketPropertyChanged:  {Kind: triggerKindPropertyChanged, ObjectType: ObjectTypeTickets},
	IntegrationTriggerType_DealStageChanged:       {Kind: triggerKindPropertyChanged, ObjectType: ObjectTypeDeals, Property: "dealstage", FilterByStage: true},
}

func init() {
	for eventType, definition := range triggerDefinitions {
		definition.EventType = eventType
		triggerDefinitions[eventType] = definition
	}
}

type TriggerSettings struct {
	CredentialID         string   `json:"credential_id"`
	ObjectType           string   `json:"object_type"`
	PipelineID           string   `json:"pipeline_id"`
	StageID              string   `json:"stage_id"`
	PropertyName         string   `json:"property_name"`
	AdditionalProperties []string `json:"additional_properties"`
}

func decodeSettings(input map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           target,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("failed to decode integration settings: %w", err)
	}

	return nil
}

// triggerPlan is a trigger definition resolved against the user's settings.
type triggerPlan struct {
	ObjectType        string
	TimestampProperty string
	HistoryProperty   string
	Filters           []Filter
	Properties        []string
}

func (d triggerDefinition) plan(settings TriggerSettings) (triggerPlan, error) {
	objectType := d.ObjectType
	if objectType == "" {
		objectType = settings.ObjectType
	}
	if objectType == "" {
		return triggerPlan{}, domain.NewInputError("object type", settings.ObjectType, "an object type is required")
	}

	def := objectDefFor(objectType)

	plan := triggerPlan{
		ObjectType: objectType,
		Filters:    []Filter{},
		Properties: mergeProperties(DefaultProperties(objectType), settings.AdditionalProperties),
	}

	switch d.Kind {
	case triggerKindCreated:
		plan.TimestampProperty = def.CreatedProperty
	case triggerKindModified:
		plan.TimestampProperty = def.ModifiedProperty
	case triggerKindPropertyChanged:
		plan.TimestampProperty = def.ModifiedProperty

		plan.HistoryProperty = d.Property
		if plan.HistoryProperty == "" {
			plan.HistoryProperty = settings.PropertyName
		}
		if plan.HistoryProperty == "" {
			return triggerPlan{}, domain.NewInputError("property name", settings.PropertyName, "a property to watch is required")
		}

		plan.Filters = append(plan.Filters, Filter{
			PropertyName: plan.HistoryProperty,
			Operator:     FilterOperatorHasProperty,
		})
		plan.Properties = mergeProperties(plan.Properties, []string{plan.HistoryProperty})
	}

	if d.RequirePipeline {
		if settings.PipelineID == "" {
			return triggerPlan{}, domain.NewInputError("pipeline", settings.PipelineID, "a pipeline is required")
		}

		plan.Filters = append(plan.Filters, Filter{
			PropertyName: def.PipelineProperty,
			Operator:     FilterOperatorEQ,
			Value:        settings.PipelineID,
		})
	}

	if d.FilterByStage && settings.StageID != "" {
		plan.Filters = append(plan.Filters, Filter{
			PropertyName: def.StageProperty,
			Operator:     FilterOperatorEQ,
			Value:        settings.StageID,
		})
	}

	return plan, nil
}

// searchSource pages through the CRM search endpoint newest first.
type searchSource struct {
	client *Client
	plan   triggerPlan
}

func newSearchSource(client *Client, plan triggerPlan) *searchSource {
	return &searchSource{
		client: client,
		plan:   plan,
	}
}

func (s *searchSource) FetchPage(ctx context.Context, req polling.PageRequest) (polling.Page, error) {
	filters := append([]Filter{}, s.plan.Filters...)

	if !req.IsTest() {
		filters = append(filters, Filter{
			PropertyName: s.plan.TimestampProperty,
			Operator:     FilterOperatorGT,
			Value:        strconv.FormatInt(req.Since, 10),
		})
	}

	searchRequest := SearchRequest{
		Sorts: []Sort{
			{PropertyName: s.plan.TimestampProperty, Direction: SortDirectionDescending},
		},
		Properties: s.plan.Properties,
		Limit:      req.Limit,
		After:      req.After,
	}

	if len(filters) > 0 {
		searchRequest.FilterGroups = []FilterGroup{{Filters: filters}}
	}

	response, err := s.client.Search(ctx, s.plan.ObjectType, searchRequest)
	if err != nil {
		return polling.Page{}, err
	}

	return polling.Page{
		Records:    response.Results,
		NextCursor: response.NextCursor,
	}, nil
}

// Timestamp reads the trigger's timestamp property, falling back to the
// createdAt/updatedAt fields every CRM object carries.
func (s *searchSource) Timestamp(record map[string]any) (int64, bool) {
	if properties, ok := record["properties"].(map[string]any); ok {
		if ts, ok := ParseTimestamp(properties[s.plan.TimestampProperty]); ok {
			return ts, true
		}
	}

	fallback := "updatedAt"
	if s.plan.TimestampProperty == objectDefFor(s.plan.ObjectType).CreatedProperty {
		fallback = "createdAt"
	}

	return ParseTimestamp(record[fallback])
}

// historySource finds candidates through search and reads the watched
// property's history through batch read.
type historySource struct {
	*searchSource
}

func newHistorySource(client *Client, plan triggerPlan) *historySource {
	return &historySource{
		searchSource: newSearchSource(client, plan),
	}
}

func (s *historySource) RecordID(record map[string]any) (string, bool) {
	id := cast.ToString(record["id"])
	return id, id != ""
}

func (s *historySource) FetchHistory(ctx context.Context, ids []string) ([]polling.ObjectHistory, error) {
	inputs := make([]BatchReadInput, 0, len(ids))
	for _, id := range ids {
		inputs = append(inputs, BatchReadInput{ID: id})
	}

	results, err := s.client.BatchRead(ctx, s.plan.ObjectType, BatchReadRequest{
		Properties:            s.plan.Properties,
		PropertiesWithHistory: []string{s.plan.HistoryProperty},
		Inputs:                inputs,
	})
	if err != nil {
		return nil, err
	}

	histories := make([]polling.ObjectHistory, 0, len(results))

	for _, result := range results {
		histories = append(histories, toObjectHistory(result))
	}

	return histories, nil
}

func toObjectHistory(result map[string]any) polling.ObjectHistory {
	object := make(map[string]any, len(result))
	for key, value := range result {
		if key == "propertiesWithHistory" {
			continue
		}
		object[key] = value
	}

	history := []polling.PropertyHistoryRecord{}

	withHistory, _ := result["propertiesWithHistory"].(map[string]any)
	for property, rawEntries := range withHistory {
		entries, ok := rawEntries.([]any)
		if !ok {
			continue
		}

		for _, rawEntry := range entries {
			entry, ok := rawEntry.(map[string]any)
			if !ok {
				continue
			}

			ts, ok := ParseTimestamp(entry["timestamp"])
			if !ok {
				continue
			}

			history = append(history, polling.PropertyHistoryRecord{
				PropertyName: property,
				Timestamp:    ts,
			})
		}
	}

	return polling.ObjectHistory{
		ID:      cast.ToString(result["id"]),
		Object:  object,
		History: history,
	}
}
