package hubspot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flowbaker/hubspot-executor/pkg/utils/pagination"

	"github.com/spf13/cast"
)

const (
	ObjectTypeContacts  = "contacts"
	ObjectTypeCompanies = "companies"
	ObjectTypeDeals     = "deals"
	ObjectTypeTickets   = "tickets"
	ObjectTypeProducts  = "products"
	ObjectTypeLineItems = "line_items"
	ObjectTypeTasks     = "tasks"
)

// objectDef describes the HubSpot properties this piece relies on for one
// object type.
type objectDef struct {
	Label            string
	CreatedProperty  string
	ModifiedProperty string
	PipelineProperty string
	StageProperty    string
	// Fields are the writable properties offered in create/update actions.
	Fields []string
}

var objectDefs = map[string]objectDef{
	ObjectTypeContacts: {
		Label:            "Contact",
		CreatedProperty:  "createdate",
		ModifiedProperty: "lastmodifieddate",
		Fields:           []string{"email", "firstname", "lastname", "phone", "company", "website", "jobtitle", "lifecyclestage", "hubspot_owner_id"},
	},
	ObjectTypeCompanies: {
		Label:            "Company",
		CreatedProperty:  "createdate",
		ModifiedProperty: "hs_lastmodifieddate",
		Fields:           []string{"name", "domain", "industry", "phone", "city", "country", "hubspot_owner_id"},
	},
	ObjectTypeDeals: {
		Label:            "Deal",
		CreatedProperty:  "createdate",
		ModifiedProperty: "hs_lastmodifieddate",
		PipelineProperty: "pipeline",
		StageProperty:    "dealstage",
		Fields:           []string{"dealname", "amount", "pipeline", "dealstage", "closedate", "hubspot_owner_id"},
	},
	ObjectTypeTickets: {
		Label:            "Ticket",
		CreatedProperty:  "createdate",
		ModifiedProperty: "hs_lastmodifieddate",
		PipelineProperty: "hs_pipeline",
		StageProperty:    "hs_pipeline_stage",
		Fields:           []string{"subject", "content", "hs_pipeline", "hs_pipeline_stage", "hs_ticket_priority", "hubspot_owner_id"},
	},
	ObjectTypeProducts: {
		Label:            "Product",
		CreatedProperty:  "createdate",
		ModifiedProperty: "hs_lastmodifieddate",
		Fields:           []string{"name", "price", "description", "hs_sku"},
	},
	ObjectTypeLineItems: {
		Label:            "Line Item",
		CreatedProperty:  "createdate",
		ModifiedProperty: "hs_lastmodifieddate",
		Fields:           []string{"name", "quantity", "price", "hs_product_id"},
	},
	ObjectTypeTasks: {
		Label:            "Task",
		CreatedProperty:  "hs_createdate",
		ModifiedProperty: "hs_lastmodifieddate",
		Fields:           []string{"hs_task_subject", "hs_task_body", "hs_task_status", "hs_task_priority", "hs_timestamp", "hubspot_owner_id"},
	},
}

// objectDefFor returns the definition of a standard object, or the conventions shared by
// custom objects.
func objectDefFor(objectType string) objectDef {
	if def, ok := objectDefs[objectType]; ok {
		return def
	}

	return objectDef{
		Label:            objectType,
		CreatedProperty:  "hs_createdate",
		ModifiedProperty: "hs_lastmodifieddate",
	}
}

// DefaultProperties are requested on every read of objectType.
func DefaultProperties(objectType string) []string {
	def := objectDefFor(objectType)

	properties := append([]string{}, def.Fields...)
	properties = append(properties, def.CreatedProperty, def.ModifiedProperty)

	return properties
}

func mergeProperties(base []string, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	merged := make([]string, 0, len(base)+len(extra))

	for _, property := range append(append([]string{}, base...), extra...) {
		property = strings.TrimSpace(property)
		if property == "" {
			continue
		}

		if _, ok := seen[property]; ok {
			continue
		}

		seen[property] = struct{}{}
		merged = append(merged, property)
	}

	return merged
}

// ParseTimestamp reads a HubSpot timestamp, which is either epoch
// milliseconds (number or digit string) or an ISO-8601 string.
func ParseTimestamp(value any) (int64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}

		if isDigits(s) {
			ms, err := cast.ToInt64E(s)
			if err != nil {
				return 0, false
			}
			return ms, true
		}

		t, err := cast.ToTimeE(s)
		if err != nil {
			return 0, false
		}

		return t.UnixMilli(), true
	case time.Time:
		return v.UnixMilli(), true
	default:
		ms, err := cast.ToInt64E(v)
		if err != nil {
			return 0, false
		}
		return ms, true
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

type objectWriteBody struct {
	Properties map[string]string `json:"properties"`
}

func (c *Client) GetObject(ctx context.Context, objectType, objectID string, properties []string, idProperty string) (map[string]any, error) {
	query := url.Values{}
	if len(properties) > 0 {
		query.Set("properties", strings.Join(properties, ","))
	}
	if idProperty != "" {
		query.Set("idProperty", idProperty)
	}

	body, err := c.get(ctx, fmt.Sprintf("/crm/v3/objects/%s/%s", objectType, url.PathEscape(objectID)), query)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", objectType, objectID, err)
	}

	return decode[map[string]any](body)
}

func (c *Client) CreateObject(ctx context.Context, objectType string, properties map[string]string) (map[string]any, error) {
	body, err := c.post(ctx, fmt.Sprintf("/crm/v3/objects/%s", objectType), objectWriteBody{Properties: properties})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", objectType, err)
	}

	return decode[map[string]any](body)
}

func (c *Client) UpdateObject(ctx context.Context, objectType, objectID string, properties map[string]string) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/crm/v3/objects/%s/%s", objectType, url.PathEscape(objectID)), nil, objectWriteBody{Properties: properties})
	if err != nil {
		return nil, fmt.Errorf("failed to update %s %s: %w", objectType, objectID, err)
	}

	return decode[map[string]any](body)
}

func (c *Client) ArchiveObject(ctx context.Context, objectType, objectID string) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/crm/v3/objects/%s/%s", objectType, url.PathEscape(objectID)), nil, nil)
	if err != nil {
		return fmt.Errorf("failed to archive %s %s: %w", objectType, objectID, err)
	}

	return nil
}

type AssociationSpec struct {
	AssociationCategory string `json:"associationCategory"`
	AssociationTypeID   int    `json:"associationTypeId"`
}

func (c *Client) CreateAssociation(ctx context.Context, fromType, fromID, toType, toID string, specs []AssociationSpec) (map[string]any, error) {
	var (
		body []byte
		err  error
	)

	if len(specs) == 0 {
		path := fmt.Sprintf("/crm/v4/objects/%s/%s/associations/default/%s/%s", fromType, url.PathEscape(fromID), toType, url.PathEscape(toID))
		body, err = c.do(ctx, http.MethodPut, path, nil, nil)
	} else {
		path := fmt.Sprintf("/crm/v4/objects/%s/%s/associations/%s/%s", fromType, url.PathEscape(fromID), toType, url.PathEscape(toID))
		body, err = c.do(ctx, http.MethodPut, path, nil, specs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to associate %s %s with %s %s: %w", fromType, fromID, toType, toID, err)
	}

	return decode[map[string]any](body)
}

func (c *Client) RemoveAssociation(ctx context.Context, fromType, fromID, toType, toID string) error {
	path := fmt.Sprintf("/crm/v4/objects/%s/%s/associations/%s/%s", fromType, url.PathEscape(fromID), toType, url.PathEscape(toID))

	if _, err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("failed to remove association between %s %s and %s %s: %w", fromType, fromID, toType, toID, err)
	}

	return nil
}

type associationListBody struct {
	Results []map[string]any `json:"results"`
}

func (c *Client) ListAssociations(ctx context.Context, fromType, fromID, toType string) ([]map[string]any, error) {
	path := fmt.Sprintf("/crm/v4/objects/%s/%s/associations/%s", fromType, url.PathEscape(fromID), toType)

	results := []map[string]any{}
	after := ""

	for {
		query := url.Values{"limit": {"500"}}
		if after != "" {
			query.Set("after", after)
		}

		body, err := c.get(ctx, path, query)
		if err != nil {
			return nil, fmt.Errorf("failed to list associations of %s %s: %w", fromType, fromID, err)
		}

		decoded, err := decode[associationListBody](body)
		if err != nil {
			return nil, err
		}

		results = append(results, decoded.Results...)

		next := pagination.NextCursor(body)
		if next == "" || next == after {
			break
		}
		after = next
	}

	return results, nil
}

type AssociationLabel struct {
	Category string `json:"category"`
	TypeID   int    `json:"typeId"`
	Label    string `json:"label"`
}

func (c *Client) ListAssociationLabels(ctx context.Context, fromType, toType string) ([]AssociationLabel, error) {
	body, err := c.get(ctx, fmt.Sprintf("/crm/v4/associations/%s/%s/labels", fromType, toType), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list association labels: %w", err)
	}

	decoded, err := decode[struct {
		Results []AssociationLabel `json:"results"`
	}](body)
	if err != nil {
		return nil, err
	}

	return decoded.Results, nil
}

func (c *Client) AddToList(ctx context.Context, listID string, recordIDs []string) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/crm/v3/lists/%s/memberships/add", url.PathEscape(listID)), nil, recordIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to add records to list %s: %w", listID, err)
	}

	return decode[map[string]any](body)
}

func (c *Client) RemoveFromList(ctx context.Context, listID string, recordIDs []string) (map[string]any, error) {
	body, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/crm/v3/lists/%s/memberships/remove", url.PathEscape(listID)), nil, recordIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to remove records from list %s: %w", listID, err)
	}

	return decode[map[string]any](body)
}

type List struct {
	ListID       string `json:"listId"`
	Name         string `json:"name"`
	ObjectTypeID string `json:"objectTypeId"`
}

type listSearchRequest struct {
	Query  string `json:"query,omitempty"`
	Count  int    `json:"count"`
	Offset int    `json:"offset"`
}

type ListSearchResponse struct {
	Lists   []List `json:"lists"`
	HasMore bool   `json:"hasMore"`
	Offset  int    `json:"offset"`
}

func (c *Client) SearchLists(ctx context.Context, query string, count, offset int) (ListSearchResponse, error) {
	body, err := c.post(ctx, "/crm/v3/lists/search", listSearchRequest{Query: query, Count: count, Offset: offset})
	if err != nil {
		return ListSearchResponse{}, fmt.Errorf("failed to search lists: %w", err)
	}

	return decode[ListSearchResponse](body)
}

type Owner struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserID    int    `json:"userId"`
	Archived  bool   `json:"archived"`
}

func (o Owner) DisplayName() string {
	name := strings.TrimSpace(o.FirstName + " " + o.LastName)
	if name == "" {
		return o.Email
	}
	if o.Email == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, o.Email)
}

type OwnerPage struct {
	Owners     []Owner
	NextCursor string
}

func (c *Client) ListOwners(ctx context.Context, email string, limit int, after string) (OwnerPage, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", cast.ToString(limit))
	}
	if after != "" {
		query.Set("after", after)
	}
	if email != "" {
		query.Set("email", email)
	}

	body, err := c.get(ctx, "/crm/v3/owners", query)
	if err != nil {
		return OwnerPage{}, fmt.Errorf("failed to list owners: %w", err)
	}

	decoded, err := decode[struct {
		Results []Owner `json:"results"`
	}](body)
	if err != nil {
		return OwnerPage{}, err
	}

	return OwnerPage{
		Owners:     decoded.Results,
		NextCursor: pagination.NextCursor(body),
	}, nil
}

func (c *Client) GetOwner(ctx context.Context, ownerID string) (map[string]any, error) {
	body, err := c.get(ctx, fmt.Sprintf("/crm/v3/owners/%s", url.PathEscape(ownerID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get owner %s: %w", ownerID, err)
	}

	return decode[map[string]any](body)
}

type PipelineStage struct {
	ID           string         `json:"id"`
	Label        string         `json:"label"`
	DisplayOrder int            `json:"displayOrder"`
	Archived     bool           `json:"archived"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type Pipeline struct {
	ID           string          `json:"id"`
	Label        string          `json:"label"`
	DisplayOrder int             `json:"displayOrder"`
	Archived     bool            `json:"archived"`
	Stages       []PipelineStage `json:"stages"`
}

func (c *Client) ListPipelines(ctx context.Context, objectType string) ([]Pipeline, error) {
	body, err := c.get(ctx, fmt.Sprintf("/crm/v3/pipelines/%s", objectType), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s pipelines: %w", objectType, err)
	}

	decoded, err := decode[struct {
		Results []Pipeline `json:"results"`
	}](body)
	if err != nil {
		return nil, err
	}

	return decoded.Results, nil
}

func (c *Client) GetPipelineStage(ctx context.Context, objectType, pipelineID, stageID string) (map[string]any, error) {
	path := fmt.Sprintf("/crm/v3/pipelines/%s/%s/stages/%s", objectType, url.PathEscape(pipelineID), url.PathEscape(stageID))

	body, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get stage %s of pipeline %s: %w", stageID, pipelineID, err)
	}

	return decode[map[string]any](body)
}

type PropertyDefinition struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Type        string `json:"type"`
	FieldType   string `json:"fieldType"`
	GroupName   string `json:"groupName"`
	Description string `json:"description"`
	Hidden      bool   `json:"hidden"`
}

func (c *Client) ListProperties(ctx context.Context, objectType string) ([]PropertyDefinition, error) {
	body, err := c.get(ctx, fmt.Sprintf("/crm/v3/properties/%s", objectType), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s properties: %w", objectType, err)
	}

	decoded, err := decode[struct {
		Results []PropertyDefinition `json:"results"`
	}](body)
	if err != nil {
		return nil, err
	}

	return decoded.Results, nil
}

type AccountDetails struct {
	PortalID     int    `json:"portalId"`
	AccountType  string `json:"accountType"`
	TimeZone     string `json:"timeZone"`
	CompanyCurr  string `json:"companyCurrency"`
	UIDomain     string `json:"uiDomain"`
	DataHostingL string `json:"dataHostingLocation"`
}

func (c *Client) GetAccountDetails(ctx context.Context) (AccountDetails, error) {
	body, err := c.get(ctx, "/account-info/v3/details", nil)
	if err != nil {
		return AccountDetails{}, fmt.Errorf("failed to get account details: %w", err)
	}

	return decode[AccountDetails](body)
}
