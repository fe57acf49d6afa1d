package hubspot

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowbaker/hubspot-executor/internal/managers"
	"github.com/flowbaker/hubspot-executor/pkg/domain"
	"github.com/flowbaker/hubspot-executor/pkg/utils/pagination"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
)

const (
	IntegrationActionType_CreateContact domain.IntegrationActionType = "create_contact"
	IntegrationActionType_UpdateContact domain.IntegrationActionType = "update_contact"
	IntegrationActionType_GetContact    domain.IntegrationActionType = "get_contact"
	IntegrationActionType_FindContacts  domain.IntegrationActionType = "find_contacts"
	IntegrationActionType_DeleteContact domain.IntegrationActionType = "delete_contact"

	IntegrationActionType_CreateCompany domain.IntegrationActionType = "create_company"
	IntegrationActionType_UpdateCompany domain.IntegrationActionType = "update_company"
	IntegrationActionType_GetCompany    domain.IntegrationActionType = "get_company"
	IntegrationActionType_FindCompanies domain.IntegrationActionType = "find_companies"
	IntegrationActionType_DeleteCompany domain.IntegrationActionType = "delete_company"

	IntegrationActionType_CreateDeal domain.IntegrationActionType = "create_deal"
	IntegrationActionType_UpdateDeal domain.IntegrationActionType = "update_deal"
	IntegrationActionType_GetDeal    domain.IntegrationActionType = "get_deal"
	IntegrationActionType_FindDeals  domain.IntegrationActionType = "find_deals"
	IntegrationActionType_DeleteDeal domain.IntegrationActionType = "delete_deal"

	IntegrationActionType_CreateTicket domain.IntegrationActionType = "create_ticket"
	IntegrationActionType_UpdateTicket domain.IntegrationActionType = "update_ticket"
	IntegrationActionType_GetTicket    domain.IntegrationActionType = "get_ticket"
	IntegrationActionType_FindTickets  domain.IntegrationActionType = "find_tickets"
	IntegrationActionType_DeleteTicket domain.IntegrationActionType = "delete_ticket"

	IntegrationActionType_CreateProduct domain.IntegrationActionType = "create_product"
	IntegrationActionType_UpdateProduct domain.IntegrationActionType = "update_product"
	IntegrationActionType_GetProduct    domain.IntegrationActionType = "get_product"
	IntegrationActionType_FindProducts  domain.IntegrationActionType = "find_products"
	IntegrationActionType_DeleteProduct domain.IntegrationActionType = "delete_product"

	IntegrationActionType_CreateLineItem domain.IntegrationActionType = "create_line_item"
	IntegrationActionType_UpdateLineItem domain.IntegrationActionType = "update_line_item"
	IntegrationActionType_GetLineItem    domain.IntegrationActionType = "get_line_item"
	IntegrationActionType_FindLineItems  domain.IntegrationActionType = "find_line_items"
	IntegrationActionType_DeleteLineItem domain.IntegrationActionType = "delete_line_item"

	IntegrationActionType_CreateOrUpdateContact domain.IntegrationActionType = "create_or_update_contact"
	IntegrationActionType_AddContactToList      domain.IntegrationActionType = "add_contact_to_list"
	IntegrationActionType_RemoveContactFromList domain.IntegrationActionType = "remove_contact_from_list"
	IntegrationActionType_CreateAssociation     domain.IntegrationActionType = "create_association"
	IntegrationActionType_RemoveAssociation     domain.IntegrationActionType = "remove_association"
	IntegrationActionType_FindAssociations      domain.IntegrationActionType = "find_associations"
	IntegrationActionType_GetOwnerByID          domain.IntegrationActionType = "get_owner_by_id"
	IntegrationActionType_GetOwnerByEmail       domain.IntegrationActionType = "get_owner_by_email"
	IntegrationActionType_GetPipelineStage      domain.IntegrationActionType = "get_pipeline_stage"
)

// crudActions binds the generic object actions to each standard object type.
var crudActions = []struct {
	ObjectType string
	Create     domain.IntegrationActionType
	Update     domain.IntegrationActionType
	Get        domain.IntegrationActionType
	Find       domain.IntegrationActionType
	Delete     domain.IntegrationActionType
}{
	{ObjectTypeContacts, IntegrationActionType_CreateContact, IntegrationActionType_UpdateContact, IntegrationActionType_GetContact, IntegrationActionType_FindContacts, IntegrationActionType_DeleteContact},
	{ObjectTypeCompanies, IntegrationActionType_CreateCompany, IntegrationActionType_UpdateCompany, IntegrationActionType_GetCompany, IntegrationActionType_FindCompanies, IntegrationActionType_DeleteCompany},
	{ObjectTypeDeals, IntegrationActionType_CreateDeal, IntegrationActionType_UpdateDeal, IntegrationActionType_GetDeal, IntegrationActionType_FindDeals, IntegrationActionType_DeleteDeal},
	{ObjectTypeTickets, IntegrationActionType_CreateTicket, IntegrationActionType_UpdateTicket, IntegrationActionType_GetTicket, IntegrationActionType_FindTickets, IntegrationActionType_DeleteTicket},
	{ObjectTypeProducts, IntegrationActionType_CreateProduct, IntegrationActionType_UpdateProduct, IntegrationActionType_GetProduct, IntegrationActionType_FindProducts, IntegrationActionType_DeleteProduct},
	{ObjectTypeLineItems, IntegrationActionType_CreateLineItem, IntegrationActionType_UpdateLineItem, IntegrationActionType_GetLineItem, IntegrationActionType_FindLineItems, IntegrationActionType_DeleteLineItem},
}

const (
	defaultFindLimit = 10
	maxFindLimit     = 200
)

type HubSpotCredential struct {
	AccessToken string `json:"access_token"`
}

type HubSpotIntegrationCreator struct {
	binder           domain.IntegrationParameterBinder
	credentialGetter domain.CredentialGetter[HubSpotCredential]
	clientConfig     domain.HubSpotClientConfig
}

func NewHubSpotIntegrationCreator(deps domain.IntegrationDeps) domain.IntegrationCreator {
	return &HubSpotIntegrationCreator{
		binder:           deps.ParameterBinder,
		credentialGetter: managers.NewExecutorCredentialGetter[HubSpotCredential](deps.ExecutorCredentialManager),
		clientConfig:     deps.HubSpotClientConfig,
	}
}

func (c *HubSpotIntegrationCreator) CreateIntegration(ctx context.Context, p domain.CreateIntegrationParams) (domain.IntegrationExecutor, error) {
	var (
		credential HubSpotCredential
		err        error
	)

	if p.Credential != nil {
		err = decodeSettings(p.Credential, &credential)
	} else {
		credential, err = c.credentialGetter.GetDecryptedCredential(ctx, p.CredentialID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}

	if credential.AccessToken == "" {
		return nil, fmt.Errorf("credential has no access token")
	}

	return NewHubSpotIntegration(HubSpotIntegrationDependencies{
		Client:          NewClient(ctx, c.clientConfig, credential.AccessToken),
		ParameterBinder: c.binder,
	}), nil
}

type HubSpotIntegration struct {
	client *Client
	binder domain.IntegrationParameterBinder

	actionManager     *domain.IntegrationActionManager
	peekFuncs         map[domain.IntegrationPeekableType]domain.PeekFunc
	paginationHandler *pagination.CursorHandler
}

type HubSpotIntegrationDependencies struct {
	Client          *Client
	ParameterBinder domain.IntegrationParameterBinder
}

func NewHubSpotIntegration(deps HubSpotIntegrationDependencies) *HubSpotIntegration {
	integration := &HubSpotIntegration{
		client: deps.Client,
		binder: deps.ParameterBinder,
		paginationHandler: pagination.NewCursorHandler(domain.PeekablePaginationConfig{
			DefaultLimit: 50,
			MaxLimit:     100,
		}),
	}

	actionManager := domain.NewIntegrationActionManager()

	for _, crud := range crudActions {
		actionManager.
			AddPerItem(crud.Create, integration.createObject(crud.ObjectType)).
			AddPerItem(crud.Update, integration.updateObject(crud.ObjectType)).
			AddPerItem(crud.Get, integration.getObject(crud.ObjectType)).
			AddPerItemMulti(crud.Find, integration.findObjects(crud.ObjectType)).
			AddPerItem(crud.Delete, integration.deleteObject(crud.ObjectType))
	}

	actionManager.
		AddPerItem(IntegrationActionType_CreateOrUpdateContact, integration.CreateOrUpdateContact).
		AddPerItem(IntegrationActionType_AddContactToList, integration.AddContactToList).
		AddPerItem(IntegrationActionType_RemoveContactFromList, integration.RemoveContactFromList).
		AddPerItemMulti(IntegrationActionType_CreateAssociation, integration.CreateAssociation).
		AddPerItemMulti(IntegrationActionType_RemoveAssociation, integration.RemoveAssociation).
		AddPerItemMulti(IntegrationActionType_FindAssociations, integration.FindAssociations).
		AddPerItem(IntegrationActionType_GetOwnerByID, integration.GetOwnerByID).
		AddPerItem(IntegrationActionType_GetOwnerByEmail, integration.GetOwnerByEmail).
		AddPerItem(IntegrationActionType_GetPipelineStage, integration.GetPipelineStage)

	integration.actionManager = actionManager

	integration.peekFuncs = map[domain.IntegrationPeekableType]domain.PeekFunc{
		IntegrationPeekable_Pipelines:         integration.PeekPipelines,
		IntegrationPeekable_PipelineStages:    integration.PeekPipelineStages,
		IntegrationPeekable_Owners:            integration.PeekOwners,
		IntegrationPeekable_Properties:        integration.PeekProperties,
		IntegrationPeekable_Lists:             integration.PeekLists,
		IntegrationPeekable_AssociationLabels: integration.PeekAssociationLabels,
		IntegrationPeekable_ObjectTypes:       integration.PeekObjectTypes,
	}

	return integration
}

func (i *HubSpotIntegration) Execute(ctx context.Context, params domain.IntegrationInput) (domain.IntegrationOutput, error) {
	return i.actionManager.Run(ctx, params.ActionType, params)
}

func (i *HubSpotIntegration) Peek(ctx context.Context, params domain.PeekParams) (domain.PeekResult, error) {
	peekFunc, ok := i.peekFuncs[params.PeekableType]
	if !ok {
		return domain.PeekResult{}, fmt.Errorf("%w: %s", domain.ErrPeekableNotFound, params.PeekableType)
	}

	return peekFunc(ctx, params)
}

// ObjectWriteParams carries the writable fields of an object. Fields outside
// the object's field list are ignored; custom_properties are sent as is.
type ObjectWriteParams struct {
	ObjectID         string         `json:"object_id"`
	CustomProperties map[string]any `json:"custom_properties"`
	Fields           map[string]any `json:",remain"`
}

func (p ObjectWriteParams) properties(objectType string) map[string]string {
	properties := map[string]string{}

	for _, field := range objectDefFor(objectType).Fields {
		value, ok := p.Fields[field]
		if !ok || value == nil {
			continue
		}

		s := strings.TrimSpace(cast.ToString(value))
		if s == "" {
			continue
		}

		properties[field] = s
	}

	for key, value := range p.CustomProperties {
		if key == "" || value == nil {
			continue
		}

		properties[key] = cast.ToString(value)
	}

	return properties
}

func (i *HubSpotIntegration) createObject(objectType string) domain.ActionFuncPerItem {
	return func(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Item, error) {
		p := ObjectWriteParams{}
		if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
			return nil, err
		}

		properties := p.properties(objectType)
		if len(properties) == 0 {
			return nil, domain.NewInputError("properties", p.Fields, "at least one property is required")
		}

		return i.client.CreateObject(ctx, objectType, properties)
	}
}

func (i *HubSpotIntegration) updateObject(objectType string) domain.ActionFuncPerItem {
	return func(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Item, error) {
		p := ObjectWriteParams{}
		if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
			return nil, err
		}

		if p.ObjectID == "" {
			return nil, domain.NewInputError("object id", p.ObjectID, "an object id is required")
		}

		return i.client.UpdateObject(ctx, objectType, p.ObjectID, p.properties(objectType))
	}
}

type GetObjectParams struct {
	ObjectID             string   `json:"object_id"`
	IDProperty           string   `json:"id_property"`
	AdditionalProperties []string `json:"additional_properties"`
}

func (i *HubSpotIntegration) getObject(objectType string) domain.ActionFuncPerItem {
	return func(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Item, error) {
		p := GetObjectParams{}
		if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
			return nil, err
		}

		if p.ObjectID == "" {
			return nil, domain.NewInputError("object id", p.ObjectID, "an object id is required")
		}

		properties := mergeProperties(DefaultProperties(objectType), p.AdditionalProperties)

		return i.client.GetObject(ctx, objectType, p.ObjectID, properties, p.IDProperty)
	}
}

type FindObjectsParams struct {
	PropertyName         string   `json:"property_name"`
	Operator             string   `json:"operator"`
	Value                string   `json:"value"`
	HighValue            string   `json:"high_value"`
	Limit                int      `json:"limit"`
	AdditionalProperties []string `json:"additional_properties"`
}

func (p FindObjectsParams) filter() (Filter, error) {
	if p.PropertyName == "" {
		return Filter{}, domain.NewInputError("property name", p.PropertyName, "a property is required")
	}

	operator := FilterOperator(strings.ToUpper(strings.TrimSpace(p.Operator)))
	if operator == "" {
		operator = FilterOperatorEQ
	}

	if !operator.IsValid() {
		return Filter{}, domain.NewInputError("operator", p.Operator, "unknown search operator")
	}

	filter := Filter{
		PropertyName: p.PropertyName,
		Operator:     operator,
	}

	switch operator {
	case FilterOperatorHasProperty, FilterOperatorNotHasProperty:
	case FilterOperatorIn, FilterOperatorNotIn:
		for _, value := range strings.Split(p.Value, ",") {
			if value = strings.TrimSpace(value); value != "" {
				filter.Values = append(filter.Values, value)
			}
		}
		if len(filter.Values) == 0 {
			return Filter{}, domain.NewInputError("value", p.Value, "at least one value is required")
		}
	case FilterOperatorBetween:
		filter.Value = p.Value
		filter.HighValue = p.HighValue
		if filter.HighValue == "" {
			return Filter{}, domain.NewInputError("high value", p.HighValue, "BETWEEN needs an upper bound")
		}
	default:
		filter.Value = p.Value
	}

	return filter, nil
}

func (i *HubSpotIntegration) findObjects(objectType string) domain.ActionFuncPerItemMulti {
	return func(ctx context.Context, params domain.IntegrationInput, item domain.Item) ([]domain.Item, error) {
		p := FindObjectsParams{}
		if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
			return nil, err
		}

		filter, err := p.filter()
		if err != nil {
			return nil, err
		}

		limit := p.Limit
		if limit <= 0 {
			limit = defaultFindLimit
		}
		if limit > maxFindLimit {
			limit = maxFindLimit
		}

		response, err := i.client.Search(ctx, objectType, SearchRequest{
			FilterGroups: []FilterGroup{{Filters: []Filter{filter}}},
			Properties:   mergeProperties(DefaultProperties(objectType), p.AdditionalProperties),
			Limit:        limit,
		})
		if err != nil {
			return nil, err
		}

		items := make([]domain.Item, 0, len(response.Results))
		for _, result := range response.Results {
			items = append(items, result)
		}

		return items, nil
	}
}

type DeleteObjectParams struct {
	ObjectID string `json:"object_id"`
}

func (i *HubSpotIntegration) deleteObject(objectType string) domain.ActionFuncPerItem {
	return func(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Item, error) {
		p := DeleteObjectParams{}
		if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
			return nil, err
		}

		if p.ObjectID == "" {
			return nil, domain.NewInputError("object id", p.ObjectID, "an object id is required")
		}

		if err := i.client.ArchiveObject(ctx, objectType, p.ObjectID); err != nil {
			return nil, err
		}

		return map[string]any{
			"id":       p.ObjectID,
			"archived": true,
		}, nil
	}
}

// CreateOrUpdateContact looks the contact up by email and updates it, or
// creates it when no contact has that email.
func (i *HubSpotIntegration) CreateOrUpdateContact(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Item, error) {
	p := ObjectWriteParams{}
	if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
		return nil, err
	}

	properties := p.properties(ObjectTypeContacts)

	email := properties["email"]
	if email == "" {
		return nil, domain.NewInputError("email", p.Fields["email"], "an email is required to match contacts")
	}

	response, err := i.client.Search(ctx, ObjectTypeContacts, SearchRequest{
		FilterGroups: []FilterGroup{{Filters: []Filter{{PropertyName: "email", Operator: FilterOperatorEQ, Value: email}}}},
		Properties:   []string{"email"},
		Limit:        1,
	})
	if err != nil {
		return nil, err
	}

	if len(response.Results) == 0 {
		log.Debug().Str("email", email).Msg("HubSpotIntegration: No contact with email, creating one")
		return i.client.CreateObject(ctx, ObjectTypeContacts, properties)
	}

	contactID := cast.ToString(response.Results[0]["id"])

	return i.client.UpdateObject(ctx, ObjectTypeContacts, contactID, properties)
}

type ListMembershipParams struct {
	ListID     string `json:"list_id"`
	ContactIDs any    `json:"contact_ids"`
}

func (i *HubSpotIntegration) bindListMembership(ctx context.Context, params domain.IntegrationInput, item domain.Item) (string, []string, error) {
	p := ListMembershipParams{}
	if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
		return "", nil, err
	}

	if p.ListID == "" {
		return "", nil, domain.NewInputError("list", p.ListID, "a list is required")
	}

	contactIDs, err := parseObjectIDs("Contact IDs", p.ContactIDs)
	if err != nil {
		return "", nil, err
	}

	return p.ListID, contactIDs, nil
}

func (i *HubSpotIntegration) AddContactToList(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Item, error) {
	listID, contactIDs, err := i.bindListMembership(ctx, params, item)
	if err != nil {
		return nil, err
	}

	return i.client.AddToList(ctx, listID, contactIDs)
}

func (i *HubSpotIntegration) RemoveContactFromList(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Item, error) {
	listID, contactIDs, err := i.bindListMembership(ctx, params, item)
	if err != nil {
		return nil, err
	}

	return i.client.RemoveFromList(ctx, listID, contactIDs)
}

type AssociationParams struct {
	FromObjectType   string `json:"from_object_type"`
	FromObjectID     string `json:"from_object_id"`
	ToObjectType     string `json:"to_object_type"`
	ToObjectIDs      any    `json:"to_object_ids"`
	AssociationLabel string `json:"association_label"`
}

func (p AssociationParams) validate() error {
	if p.FromObjectType == "" {
		return domain.NewInputError("from object type", p.FromObjectType, "an object type is required")
	}

	if p.FromObjectID == "" {
		return domain.NewInputError("from object id", p.FromObjectID, "an object id is required")
	}

	if p.ToObjectType == "" {
		return domain.NewInputError("to object type", p.ToObjectType, "an object type is required")
	}

	return nil
}

func (i *HubSpotIntegration) CreateAssociation(ctx context.Context, params domain.IntegrationInput, item domain.Item) ([]domain.Item, error) {
	p := AssociationParams{}
	if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
		return nil, err
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	toIDs, err := parseObjectIDs("To Object IDs", p.ToObjectIDs)
	if err != nil {
		return nil, err
	}

	specs, err := parseAssociationLabel(p.AssociationLabel)
	if err != nil {
		return nil, err
	}

	results := make([]domain.Item, 0, len(toIDs))

	for _, toID := range toIDs {
		result, err := i.client.CreateAssociation(ctx, p.FromObjectType, p.FromObjectID, p.ToObjectType, toID, specs)
		if err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	return results, nil
}

func (i *HubSpotIntegration) RemoveAssociation(ctx context.Context, params domain.IntegrationInput, item domain.Item) ([]domain.Item, error) {
	p := AssociationParams{}
	if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
		return nil, err
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	toIDs, err := parseObjectIDs("To Object IDs", p.ToObjectIDs)
	if err != nil {
		return nil, err
	}

	results := make([]domain.Item, 0, len(toIDs))

	for _, toID := range toIDs {
		if err := i.client.RemoveAssociation(ctx, p.FromObjectType, p.FromObjectID, p.ToObjectType, toID); err != nil {
			return nil, err
		}

		results = append(results, map[string]any{
			"from_object_id": p.FromObjectID,
			"to_object_id":   toID,
			"removed":        true,
		})
	}

	return results, nil
}

func (i *HubSpotIntegration) FindAssociations(ctx context.Context, params domain.IntegrationInput, item domain.Item) ([]domain.Item, error) {
	p := AssociationParams{}
	if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
		return nil, err
	}

	if err := p.validate(); err != nil {
		return nil, err
	}

	associations, err := i.client.ListAssociations(ctx, p.FromObjectType, p.FromObjectID, p.ToObjectType)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, 0, len(associations))
	for _, association := range associations {
		items = append(items, association)
	}

	return items, nil
}

type GetOwnerParams struct {
	OwnerID string `json:"owner_id"`
	Email   string `json:"email"`
}

func (i *HubSpotIntegration) GetOwnerByID(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Item, error) {
	p := GetOwnerParams{}
	if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
		return nil, err
	}

	if p.OwnerID == "" {
		return nil, domain.NewInputError("owner id", p.OwnerID, "an owner id is required")
	}

	return i.client.GetOwner(ctx, p.OwnerID)
}

// GetOwnerByEmail yields no item when no owner has the email.
func (i *HubSpotIntegration) GetOwnerByEmail(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Item, error) {
	p := GetOwnerParams{}
	if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
		return nil, err
	}

	if p.Email == "" {
		return nil, domain.NewInputError("email", p.Email, "an email is required")
	}

	page, err := i.client.ListOwners(ctx, p.Email, 1, "")
	if err != nil {
		return nil, err
	}

	if len(page.Owners) == 0 {
		return nil, nil
	}

	return page.Owners[0], nil
}

type GetPipelineStageParams struct {
	ObjectType string `json:"object_type"`
	PipelineID string `json:"pipeline_id"`
	StageID    string `json:"stage_id"`
}

func (i *HubSpotIntegration) GetPipelineStage(ctx context.Context, params domain.IntegrationInput, item domain.Item) (domain.Item, error) {
	p := GetPipelineStageParams{}
	if err := i.binder.BindToStruct(ctx, item, &p, params.IntegrationParams.Settings); err != nil {
		return nil, err
	}

	if p.ObjectType == "" {
		p.ObjectType = ObjectTypeDeals
	}

	if p.PipelineID == "" {
		return nil, domain.NewInputError("pipeline", p.PipelineID, "a pipeline is required")
	}

	if p.StageID == "" {
		return nil, domain.NewInputError("stage", p.StageID, "a stage is required")
	}

	return i.client.GetPipelineStage(ctx, p.ObjectType, p.PipelineID, p.StageID)
}
