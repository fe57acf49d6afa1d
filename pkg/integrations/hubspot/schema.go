package hubspot

import (
	"fmt"
	"strings"

	"github.com/flowbaker/hubspot-executor/pkg/domain"
)

var (
	credentialProperty = domain.NodeProperty{
		Key:         "credential_id",
		Name:        "HubSpot Account",
		Description: "The HubSpot account to use",
		Required:    true,
		Type:        domain.NodePropertyType_OAuth,
		OAuthType:   domain.OAuthTypeHubSpot,
	}

	additionalPropertiesProperty = domain.NodeProperty{
		Key:          "additional_properties",
		Name:         "Additional Properties",
		Description:  "Extra properties to include in the output",
		Required:     false,
		Advanced:     true,
		Type:         domain.NodePropertyType_TagInput,
		Peekable:     true,
		PeekableType: IntegrationPeekable_Properties,
	}

	objectTypeProperty = domain.NodeProperty{
		Key:          "object_type",
		Name:         "Object Type",
		Description:  "A standard object type or the id of a custom object",
		Required:     true,
		Type:         domain.NodePropertyType_String,
		Peekable:     true,
		PeekableType: IntegrationPeekable_ObjectTypes,
	}

	pipelineProperty = domain.NodeProperty{
		Key:          "pipeline_id",
		Name:         "Pipeline",
		Required:     true,
		Type:         domain.NodePropertyType_String,
		Peekable:     true,
		PeekableType: IntegrationPeekable_Pipelines,
	}

	operatorOptions = func() []domain.NodePropertyOption {
		options := make([]domain.NodePropertyOption, 0, len(FilterOperators))
		for _, operator := range FilterOperators {
			options = append(options, domain.NodePropertyOption{
				Label: strings.ReplaceAll(string(operator), "_", " "),
				Value: string(operator),
			})
		}
		return options
	}()
)

func withDependentObjectType(property domain.NodeProperty, objectType string) domain.NodeProperty {
	property.Dependent = []string{"object_type"}
	if objectType != "" {
		property.Placeholder = objectType
	}
	property.PeekableDependentProperties = []domain.PeekableDependentProperty{
		{PropertyKey: "object_type", ValueKey: "object_type"},
	}
	return property
}

func objectIDProperty(label string) domain.NodeProperty {
	return domain.NodeProperty{
		Key:         "object_id",
		Name:        label + " ID",
		Description: fmt.Sprintf("The ID of the %s", strings.ToLower(label)),
		Required:    true,
		Type:        domain.NodePropertyType_String,
	}
}

func fieldProperties(objectType string) []domain.NodeProperty {
	def := objectDefFor(objectType)

	properties := make([]domain.NodeProperty, 0, len(def.Fields)+1)
	for _, field := range def.Fields {
		property := domain.NodeProperty{
			Key:  field,
			Name: field,
			Type: domain.NodePropertyType_String,
		}

		switch field {
		case "hubspot_owner_id":
			property.Name = "Owner"
			property.Peekable = true
			property.PeekableType = IntegrationPeekable_Owners
			property.PeekablePaginationType = domain.PeekablePaginationType_Cursor
		case def.PipelineProperty:
			property.Name = "Pipeline"
			property.Peekable = true
			property.PeekableType = IntegrationPeekable_Pipelines
		case def.StageProperty:
			property.Name = "Stage"
			property.Peekable = true
			property.PeekableType = IntegrationPeekable_PipelineStages
			property.PeekableDependentProperties = []domain.PeekableDependentProperty{
				{PropertyKey: def.PipelineProperty, ValueKey: "pipeline_id"},
			}
		}

		properties = append(properties, property)
	}

	properties = append(properties, domain.NodeProperty{
		Key:         "custom_properties",
		Name:        "Custom Properties",
		Description: "Any other property, keyed by its internal name",
		Advanced:    true,
		Type:        domain.NodePropertyType_Map,
	})

	return properties
}

func crudSchemaActions() []domain.IntegrationAction {
	actions := []domain.IntegrationAction{}

	for _, crud := range crudActions {
		label := objectDefFor(crud.ObjectType).Label

		actions = append(actions,
			domain.IntegrationAction{
				ID:          string(crud.Create),
				ActionType:  crud.Create,
				Name:        "Create " + label,
				Description: fmt.Sprintf("Create a %s", strings.ToLower(label)),
				Properties:  fieldProperties(crud.ObjectType),
			},
			domain.IntegrationAction{
				ID:          string(crud.Update),
				ActionType:  crud.Update,
				Name:        "Update " + label,
				Description: fmt.Sprintf("Update a %s. Empty fields are left unchanged", strings.ToLower(label)),
				Properties:  append([]domain.NodeProperty{objectIDProperty(label)}, fieldProperties(crud.ObjectType)...),
			},
			domain.IntegrationAction{
				ID:          string(crud.Get),
				ActionType:  crud.Get,
				Name:        "Get " + label,
				Description: fmt.Sprintf("Get a %s by ID", strings.ToLower(label)),
				Properties: []domain.NodeProperty{
					objectIDProperty(label),
					{
						Key:         "id_property",
						Name:        "ID Property",
						Description: "Look the object up by this unique property instead of its ID",
						Advanced:    true,
						Type:        domain.NodePropertyType_String,
					},
					additionalPropertiesProperty,
				},
			},
			domain.IntegrationAction{
				ID:          string(crud.Find),
				ActionType:  crud.Find,
				Name:        "Find " + label,
				Description: fmt.Sprintf("Search %s records by a property", strings.ToLower(label)),
				Properties: []domain.NodeProperty{
					{
						Key:          "property_name",
						Name:         "Property",
						Required:     true,
						Type:         domain.NodePropertyType_String,
						Peekable:     true,
						PeekableType: IntegrationPeekable_Properties,
					},
					{
						Key:      "operator",
						Name:     "Operator",
						Required: true,
						Type:     domain.NodePropertyType_String,
						Options:  operatorOptions,
					},
					{
						Key:  "value",
						Name: "Value",
						Help: "Comma separated for IN and NOT_IN",
						Type: domain.NodePropertyType_String,
					},
					{
						Key:    "high_value",
						Name:   "High Value",
						Type:   domain.NodePropertyType_String,
						ShowIf: &domain.ShowIf{PropertyKey: "operator", Values: []any{string(FilterOperatorBetween)}},
					},
					{
						Key:         "limit",
						Name:        "Limit",
						Description: "Maximum number of records to return",
						Type:        domain.NodePropertyType_Integer,
					},
					additionalPropertiesProperty,
				},
			},
			domain.IntegrationAction{
				ID:          string(crud.Delete),
				ActionType:  crud.Delete,
				Name:        "Delete " + label,
				Description: fmt.Sprintf("Archive a %s", strings.ToLower(label)),
				Properties:  []domain.NodeProperty{objectIDProperty(label)},
			},
		)
	}

	return actions
}

var associationProperties = []domain.NodeProperty{
	{
		Key:          "from_object_type",
		Name:         "From Object Type",
		Required:     true,
		Type:         domain.NodePropertyType_String,
		Peekable:     true,
		PeekableType: IntegrationPeekable_ObjectTypes,
	},
	{
		Key:      "from_object_id",
		Name:     "From Object ID",
		Required: true,
		Type:     domain.NodePropertyType_String,
	},
	{
		Key:          "to_object_type",
		Name:         "To Object Type",
		Required:     true,
		Type:         domain.NodePropertyType_String,
		Peekable:     true,
		PeekableType: IntegrationPeekable_ObjectTypes,
	},
}

func miscSchemaActions() []domain.IntegrationAction {
	toObjectIDs := domain.NodeProperty{
		Key:         "to_object_ids",
		Name:        "To Object IDs",
		Description: "A JSON array or comma separated list of IDs",
		Required:    true,
		Type:        domain.NodePropertyType_TagInput,
	}

	return []domain.IntegrationAction{
		{
			ID:          string(IntegrationActionType_CreateOrUpdateContact),
			ActionType:  IntegrationActionType_CreateOrUpdateContact,
			Name:        "Create or Update Contact",
			Description: "Update the contact with this email, or create it",
			Properties:  fieldProperties(ObjectTypeContacts),
		},
		{
			ID:          string(IntegrationActionType_AddContactToList),
			ActionType:  IntegrationActionType_AddContactToList,
			Name:        "Add Contact to List",
			Description: "Add contacts to a static list",
			Properties: []domain.NodeProperty{
				{Key: "list_id", Name: "List", Required: true, Type: domain.NodePropertyType_String, Peekable: true, PeekableType: IntegrationPeekable_Lists, PeekablePaginationType: domain.PeekablePaginationType_Cursor},
				{Key: "contact_ids", Name: "Contact IDs", Required: true, Type: domain.NodePropertyType_TagInput},
			},
		},
		{
			ID:          string(IntegrationActionType_RemoveContactFromList),
			ActionType:  IntegrationActionType_RemoveContactFromList,
			Name:        "Remove Contact from List",
			Description: "Remove contacts from a static list",
			Properties: []domain.NodeProperty{
				{Key: "list_id", Name: "List", Required: true, Type: domain.NodePropertyType_String, Peekable: true, PeekableType: IntegrationPeekable_Lists, PeekablePaginationType: domain.PeekablePaginationType_Cursor},
				{Key: "contact_ids", Name: "Contact IDs", Required: true, Type: domain.NodePropertyType_TagInput},
			},
		},
		{
			ID:          string(IntegrationActionType_CreateAssociation),
			ActionType:  IntegrationActionType_CreateAssociation,
			Name:        "Create Association",
			Description: "Associate one record with one or more records",
			Properties: append(append([]domain.NodeProperty{}, associationProperties...),
				toObjectIDs,
				domain.NodeProperty{
					Key:          "association_label",
					Name:         "Association Label",
					Description:  "Leave empty for the default association",
					Type:         domain.NodePropertyType_String,
					Peekable:     true,
					PeekableType: IntegrationPeekable_AssociationLabels,
					PeekableDependentProperties: []domain.PeekableDependentProperty{
						{PropertyKey: "from_object_type", ValueKey: "from_object_type"},
						{PropertyKey: "to_object_type", ValueKey: "to_object_type"},
					},
				},
			),
		},
		{
			ID:          string(IntegrationActionType_RemoveAssociation),
			ActionType:  IntegrationActionType_RemoveAssociation,
			Name:        "Remove Association",
			Description: "Remove every association between records",
			Properties:  append(append([]domain.NodeProperty{}, associationProperties...), toObjectIDs),
		},
		{
			ID:          string(IntegrationActionType_FindAssociations),
			ActionType:  IntegrationActionType_FindAssociations,
			Name:        "Find Associations",
			Description: "List the records of a type associated with a record",
			Properties:  associationProperties,
		},
		{
			ID:          string(IntegrationActionType_GetOwnerByID),
			ActionType:  IntegrationActionType_GetOwnerByID,
			Name:        "Get Owner by ID",
			Description: "Get a HubSpot user that can own records",
			Properties: []domain.NodeProperty{
				{Key: "owner_id", Name: "Owner", Required: true, Type: domain.NodePropertyType_String, Peekable: true, PeekableType: IntegrationPeekable_Owners, PeekablePaginationType: domain.PeekablePaginationType_Cursor},
			},
		},
		{
			ID:          string(IntegrationActionType_GetOwnerByEmail),
			ActionType:  IntegrationActionType_GetOwnerByEmail,
			Name:        "Get Owner by Email",
			Description: "Find an owner by email",
			Properties: []domain.NodeProperty{
				{Key: "email", Name: "Email", Required: true, Type: domain.NodePropertyType_String},
			},
		},
		{
			ID:          string(IntegrationActionType_GetPipelineStage),
			ActionType:  IntegrationActionType_GetPipelineStage,
			Name:        "Get Pipeline Stage",
			Description: "Get a stage of a deal or ticket pipeline",
			Properties: []domain.NodeProperty{
				{
					Key:     "object_type",
					Name:    "Object Type",
					Type:    domain.NodePropertyType_String,
					Options: []domain.NodePropertyOption{{Label: "Deals", Value: ObjectTypeDeals}, {Label: "Tickets", Value: ObjectTypeTickets}},
				},
				withDependentObjectType(pipelineProperty, ""),
				{
					Key:          "stage_id",
					Name:         "Stage",
					Required:     true,
					Type:         domain.NodePropertyType_String,
					Peekable:     true,
					PeekableType: IntegrationPeekable_PipelineStages,
					PeekableDependentProperties: []domain.PeekableDependentProperty{
						{PropertyKey: "object_type", ValueKey: "object_type"},
						{PropertyKey: "pipeline_id", ValueKey: "pipeline_id"},
					},
				},
			},
		},
	}
}

func schemaTriggers() []domain.IntegrationTrigger {
	triggers := []domain.IntegrationTrigger{}

	for _, created := range []struct {
		eventType  domain.IntegrationTriggerEventType
		objectType string
	}{
		{IntegrationTriggerType_NewContact, ObjectTypeContacts},
		{IntegrationTriggerType_NewCompany, ObjectTypeCompanies},
		{IntegrationTriggerType_NewDeal, ObjectTypeDeals},
		{IntegrationTriggerType_NewTicket, ObjectTypeTickets},
		{IntegrationTriggerType_NewProduct, ObjectTypeProducts},
		{IntegrationTriggerType_NewLineItem, ObjectTypeLineItems},
		{IntegrationTriggerType_NewTask, ObjectTypeTasks},
	} {
		label := objectDefFor(created.objectType).Label
		triggers = append(triggers, domain.IntegrationTrigger{
			ID:          string(created.eventType),
			EventType:   created.eventType,
			Name:        "New " + label,
			Description: fmt.Sprintf("Triggers when a %s is created", strings.ToLower(label)),
			Properties:  []domain.NodeProperty{credentialProperty, additionalPropertiesProperty},
		})
	}

	for _, modified := range []struct {
		eventType  domain.IntegrationTriggerEventType
		objectType string
	}{
		{IntegrationTriggerType_NewOrUpdatedContact, ObjectTypeContacts},
		{IntegrationTriggerType_NewOrUpdatedCompany, ObjectTypeCompanies},
		{IntegrationTriggerType_NewOrUpdatedDeal, ObjectTypeDeals},
		{IntegrationTriggerType_NewOrUpdatedTicket, ObjectTypeTickets},
		{IntegrationTriggerType_NewOrUpdatedProduct, ObjectTypeProducts},
		{IntegrationTriggerType_NewOrUpdatedLineItem, ObjectTypeLineItems},
	} {
		label := objectDefFor(modified.objectType).Label
		triggers = append(triggers, domain.IntegrationTrigger{
			ID:          string(modified.eventType),
			EventType:   modified.eventType,
			Name:        "New or Updated " + label,
			Description: fmt.Sprintf("Triggers when a %s is created or changed", strings.ToLower(label)),
			Properties:  []domain.NodeProperty{credentialProperty, additionalPropertiesProperty},
		})
	}

	triggers = append(triggers,
		domain.IntegrationTrigger{
			ID:          string(IntegrationTriggerType_NewDealInPipeline),
			EventType:   IntegrationTriggerType_NewDealInPipeline,
			Name:        "New Deal in Pipeline",
			Description: "Triggers when a deal is created in a pipeline",
			Properties:  []domain.NodeProperty{credentialProperty, pipelineProperty, additionalPropertiesProperty},
		},
		domain.IntegrationTrigger{
			ID:          string(IntegrationTriggerType_NewTicketInPipeline),
			EventType:   IntegrationTriggerType_NewTicketInPipeline,
			Name:        "New Ticket in Pipeline",
			Description: "Triggers when a ticket is created in a pipeline",
			Properties:  []domain.NodeProperty{credentialProperty, withDependentObjectType(pipelineProperty, ObjectTypeTickets), additionalPropertiesProperty},
		},
		domain.IntegrationTrigger{
			ID:          string(IntegrationTriggerType_NewRecord),
			EventType:   IntegrationTriggerType_NewRecord,
			Name:        "New Record",
			Description: "Triggers when a record of any object type, custom objects included, is created",
			Properties:  []domain.NodeProperty{credentialProperty, objectTypeProperty, additionalPropertiesProperty},
		},
	)

	for _, changed := range []struct {
		eventType  domain.IntegrationTriggerEventType
		objectType string
	}{
		{IntegrationTriggerType_ContactPropertyChanged, ObjectTypeContacts},
		{IntegrationTriggerType_CompanyPropertyChanged, ObjectTypeCompanies},
		{IntegrationTriggerType_DealPropertyChanged, ObjectTypeDeals},
		{IntegrationTriggerType_TicketPropertyChanged, ObjectTypeTickets},
	} {
		label := objectDefFor(changed.objectType).Label
		triggers = append(triggers, domain.IntegrationTrigger{
			ID:          string(changed.eventType),
			EventType:   changed.eventType,
			Name:        label + " Property Changed",
			Description: fmt.Sprintf("Triggers when a property of a %s changes", strings.ToLower(label)),
			Properties: []domain.NodeProperty{
				credentialProperty,
				{
					Key:          "property_name",
					Name:         "Property",
					Required:     true,
					Type:         domain.NodePropertyType_String,
					Peekable:     true,
					PeekableType: IntegrationPeekable_Properties,
					Placeholder:  changed.objectType,
				},
				additionalPropertiesProperty,
			},
		})
	}

	triggers = append(triggers, domain.IntegrationTrigger{
		ID:          string(IntegrationTriggerType_DealStageChanged),
		EventType:   IntegrationTriggerType_DealStageChanged,
		Name:        "Deal Stage Changed",
		Description: "Triggers when a deal moves to another stage",
		Properties: []domain.NodeProperty{
			credentialProperty,
			{Key: "pipeline_id", Name: "Pipeline", Type: domain.NodePropertyType_String, Peekable: true, PeekableType: IntegrationPeekable_Pipelines},
			{
				Key:          "stage_id",
				Name:         "Stage",
				Description:  "Only trigger when the deal enters this stage",
				Type:         domain.NodePropertyType_String,
				Peekable:     true,
				PeekableType: IntegrationPeekable_PipelineStages,
				PeekableDependentProperties: []domain.PeekableDependentProperty{
					{PropertyKey: "pipeline_id", ValueKey: "pipeline_id"},
				},
			},
			additionalPropertiesProperty,
		},
	})

	return triggers
}

var Schema = domain.Integration{
	ID:                domain.IntegrationType_HubSpot,
	Name:              "HubSpot",
	Description:       "Watch and manage HubSpot CRM records.",
	CanTestConnection: true,
	CredentialProperties: []domain.NodeProperty{
		{
			Key:         "access_token",
			Name:        "Access Token",
			Description: "A private app access token or an OAuth access token",
			Required:    true,
			Type:        domain.NodePropertyType_String,
			IsSecret:    true,
		},
	},
	Actions:  append(crudSchemaActions(), miscSchemaActions()...),
	Triggers: schemaTriggers(),
}
