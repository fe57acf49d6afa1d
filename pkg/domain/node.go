package domain

type NodePropertyType string

const (
	NodePropertyType_String       NodePropertyType = "string"
	NodePropertyType_Text         NodePropertyType = "text"
	NodePropertyType_TagInput     NodePropertyType = "tag_input"
	NodePropertyType_Integer      NodePropertyType = "integer"
	NodePropertyType_Number       NodePropertyType = "number"
	NodePropertyType_Boolean      NodePropertyType = "boolean"
	NodePropertyType_Array        NodePropertyType = "array"
	NodePropertyType_Map          NodePropertyType = "map"
	NodePropertyType_Date         NodePropertyType = "date"
	NodePropertyType_CodeEditor   NodePropertyType = "code_editor"
	NodePropertyType_OAuth        NodePropertyType = "oauth"
	NodePropertyType_ListTagInput NodePropertyType = "list_tag_input"
)

type CodeLanguageType string

const (
	CodeLanguageType_JSON CodeLanguageType = "json"
)

type OAuthType string

var (
	OAuthTypeHubSpot OAuthType = "hubspot"
)

type NodeProperty struct {
	Key         string           `json:"key"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Required    bool             `json:"required"`
	Hidden      bool             `json:"hidden"`
	Advanced    bool             `json:"advanced"` // hidden behind "more options"
	Type        NodePropertyType `json:"type"`
	OAuthType   OAuthType        `json:"oauth_type,omitempty"`
	IsSecret    bool             `json:"is_secret,omitempty"`

	Dependent []string `json:"dependent,omitempty"`
	ShowIf    *ShowIf  `json:"show_if,omitempty"`

	Placeholder string `json:"placeholder,omitempty"`
	Help        string `json:"help,omitempty"`

	Options   []NodePropertyOption  `json:"options,omitempty"`
	ArrayOpts *ArrayPropertyOptions `json:"array_opts,omitempty"`

	CodeLanguage CodeLanguageType `json:"code_language,omitempty"`

	// Dynamic data loading
	Peekable                    bool                              `json:"peekable"`
	PeekableType                IntegrationPeekableType           `json:"peekable_type,omitempty"`
	PeekablePaginationType      IntegrationPeekablePaginationType `json:"peekable_pagination_type,omitempty"`
	PeekableDependentProperties []PeekableDependentProperty       `json:"peekable_dependent_properties,omitempty"`

	ExpressionChoice bool `json:"expression_choice"`
}

type PeekableDependentProperty struct {
	PropertyKey string `json:"property_key"`
	ValueKey    string `json:"value_key"`
}

type NodePropertyOption struct {
	Label       string `json:"label"`
	Value       any    `json:"value"`
	Description string `json:"description"`
}

type ShowIf struct {
	PropertyKey string `json:"property_key"`
	Values      []any  `json:"values"`
}

type ArrayPropertyOptions struct {
	MinItems       int              `json:"min_items,omitempty"`
	MaxItems       int              `json:"max_items,omitempty"`
	ItemType       NodePropertyType `json:"item_type"`
	ItemProperties []NodeProperty   `json:"item_properties,omitempty"`
}
