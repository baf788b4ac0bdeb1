package dataverse

import (
	"fmt"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// OData payload shapes for the metadata API. Labels are always emitted for
// LCID 1033; the API localizes display names per organization language.

const languageCode = 1033

type localizedLabel struct {
	Label        string `json:"Label"`
	LanguageCode int    `json:"LanguageCode"`
}

type label struct {
	LocalizedLabels []localizedLabel `json:"LocalizedLabels"`
}

func newLabel(text string) *label {
	return &label{LocalizedLabels: []localizedLabel{{Label: text, LanguageCode: languageCode}}}
}

type requiredLevel struct {
	Value string `json:"Value"`
}

func requiredLevelFor(required bool) *requiredLevel {
	if required {
		return &requiredLevel{Value: "ApplicationRequired"}
	}
	return &requiredLevel{Value: "None"}
}

// attributeMetadata is the union of the typed attribute payloads; the
// @odata.type discriminator selects which optional fields the API reads.
type attributeMetadata struct {
	ODataType     string         `json:"@odata.type"`
	SchemaName    string         `json:"SchemaName"`
	DisplayName   *label         `json:"DisplayName,omitempty"`
	Description   *label         `json:"Description,omitempty"`
	RequiredLevel *requiredLevel `json:"RequiredLevel,omitempty"`
	IsPrimaryName bool           `json:"IsPrimaryName,omitempty"`

	// String attributes.
	MaxLength  int         `json:"MaxLength,omitempty"`
	FormatName *formatName `json:"FormatName,omitempty"`

	// DateTime attributes: "DateAndTime" or "DateOnly".
	Format string `json:"Format,omitempty"`

	// Decimal and money attributes.
	Precision int `json:"Precision,omitempty"`

	// Boolean attributes carry a local yes/no option set; choice attributes
	// bind a global set instead.
	OptionSet       any    `json:"OptionSet,omitempty"`
	GlobalOptionSet string `json:"GlobalOptionSet@odata.bind,omitempty"`
}

type formatName struct {
	Value string `json:"Value"`
}

type optionMetadata struct {
	Value int    `json:"Value"`
	Label *label `json:"Label"`
}

type booleanOptionSet struct {
	ODataType     string         `json:"@odata.type"`
	TrueOption    optionMetadata `json:"TrueOption"`
	FalseOption   optionMetadata `json:"FalseOption"`
	OptionSetType string         `json:"OptionSetType"`
}

type optionSetMetadata struct {
	ODataType     string           `json:"@odata.type,omitempty"`
	Name          string           `json:"Name,omitempty"`
	DisplayName   *label           `json:"DisplayName,omitempty"`
	IsGlobal      bool             `json:"IsGlobal,omitempty"`
	OptionSetType string           `json:"OptionSetType"`
	Options       []optionMetadata `json:"Options,omitempty"`
}

const (
	odataStringAttribute   = "Microsoft.Dynamics.CRM.StringAttributeMetadata"
	odataMemoAttribute     = "Microsoft.Dynamics.CRM.MemoAttributeMetadata"
	odataIntegerAttribute  = "Microsoft.Dynamics.CRM.IntegerAttributeMetadata"
	odataDecimalAttribute  = "Microsoft.Dynamics.CRM.DecimalAttributeMetadata"
	odataMoneyAttribute    = "Microsoft.Dynamics.CRM.MoneyAttributeMetadata"
	odataDateTimeAttribute = "Microsoft.Dynamics.CRM.DateTimeAttributeMetadata"
	odataBooleanAttribute  = "Microsoft.Dynamics.CRM.BooleanAttributeMetadata"
	odataPicklistAttribute = "Microsoft.Dynamics.CRM.PicklistAttributeMetadata"
	odataBooleanOptionSet  = "Microsoft.Dynamics.CRM.BooleanOptionSetMetadata"
	odataOptionSet         = "Microsoft.Dynamics.CRM.OptionSetMetadata"

	defaultTextMaxLength = 100
	defaultMemoMaxLength = 2000
)

// buildAttributePayload maps an AttributeRequest onto the API's typed
// attribute metadata. Lookup attributes are rejected here; the relationship
// endpoint creates those.
func buildAttributePayload(req mdv.AttributeRequest) (*attributeMetadata, error) {
	display := req.DisplayName
	if display == "" {
		display = req.SchemaName
	}

	meta := &attributeMetadata{
		SchemaName:    req.SchemaName,
		DisplayName:   newLabel(display),
		RequiredLevel: requiredLevelFor(req.Required),
	}
	if req.Description != "" {
		meta.Description = newLabel(req.Description)
	}

	switch req.Type {
	case mdv.AttributeTypeText:
		meta.ODataType = odataStringAttribute
		meta.MaxLength = req.MaxLength
		if meta.MaxLength == 0 {
			meta.MaxLength = defaultTextMaxLength
		}
		meta.FormatName = &formatName{Value: "Text"}

	case mdv.AttributeTypeMemo:
		meta.ODataType = odataMemoAttribute
		meta.MaxLength = req.MaxLength
		if meta.MaxLength == 0 {
			meta.MaxLength = defaultMemoMaxLength
		}

	case mdv.AttributeTypeInteger:
		meta.ODataType = odataIntegerAttribute

	case mdv.AttributeTypeDecimal:
		meta.ODataType = odataDecimalAttribute
		meta.Precision = 2

	case mdv.AttributeTypeMoney:
		meta.ODataType = odataMoneyAttribute
		meta.Precision = 2

	case mdv.AttributeTypeDateTime:
		meta.ODataType = odataDateTimeAttribute
		meta.Format = "DateAndTime"

	case mdv.AttributeTypeDate:
		meta.ODataType = odataDateTimeAttribute
		meta.Format = "DateOnly"

	case mdv.AttributeTypeBoolean:
		meta.ODataType = odataBooleanAttribute
		meta.OptionSet = &booleanOptionSet{
			ODataType:     odataBooleanOptionSet,
			TrueOption:    optionMetadata{Value: 1, Label: newLabel("Yes")},
			FalseOption:   optionMetadata{Value: 0, Label: newLabel("No")},
			OptionSetType: "Boolean",
		}

	case mdv.AttributeTypeChoice:
		meta.ODataType = odataPicklistAttribute
		meta.GlobalOptionSet = fmt.Sprintf("/GlobalOptionSetDefinitions(Name='%s')", req.ChoiceSetName)

	default:
		return nil, fmt.Errorf("attribute %q: type %q has no metadata mapping: %w",
			req.LogicalName, req.Type, mdv.ErrInvalidConfig)
	}

	return meta, nil
}

type entityMetadata struct {
	ODataType             string              `json:"@odata.type"`
	SchemaName            string              `json:"SchemaName"`
	DisplayName           *label              `json:"DisplayName"`
	DisplayCollectionName *label              `json:"DisplayCollectionName"`
	Description           *label              `json:"Description,omitempty"`
	OwnershipType         string              `json:"OwnershipType"`
	HasNotes              bool                `json:"HasNotes"`
	HasActivities         bool                `json:"HasActivities"`
	Attributes            []attributeMetadata `json:"Attributes"`
}

type publisherPayload struct {
	UniqueName        string `json:"uniquename"`
	FriendlyName      string `json:"friendlyname"`
	Prefix            string `json:"customizationprefix"`
	OptionValuePrefix int    `json:"customizationoptionvalueprefix"`
}

type solutionPayload struct {
	UniqueName   string `json:"uniquename"`
	FriendlyName string `json:"friendlyname"`
	PublisherID  string `json:"publisherid@odata.bind"`
}

type lookupAttributePayload struct {
	ODataType     string         `json:"@odata.type"`
	SchemaName    string         `json:"SchemaName"`
	DisplayName   *label         `json:"DisplayName"`
	RequiredLevel *requiredLevel `json:"RequiredLevel"`
}

type cascadeConfiguration struct {
	Assign   string `json:"Assign"`
	Delete   string `json:"Delete"`
	Merge    string `json:"Merge"`
	Reparent string `json:"Reparent"`
	Share    string `json:"Share"`
	Unshare  string `json:"Unshare"`
}

// cascadeFor maps the plan's cascade behavior onto the relationship's delete
// configuration; the remaining actions follow the referenced record.
func cascadeFor(behavior mdv.CascadeBehavior) *cascadeConfiguration {
	deleteAction := "RemoveLink"
	if behavior == mdv.CascadeDelete {
		deleteAction = "Cascade"
	}
	return &cascadeConfiguration{
		Assign:   "NoCascade",
		Delete:   deleteAction,
		Merge:    "NoCascade",
		Reparent: "NoCascade",
		Share:    "NoCascade",
		Unshare:  "NoCascade",
	}
}

type oneToManyPayload struct {
	ODataType         string                  `json:"@odata.type"`
	SchemaName        string                  `json:"SchemaName"`
	ReferencedEntity  string                  `json:"ReferencedEntity"`
	ReferencingEntity string                  `json:"ReferencingEntity"`
	Lookup            *lookupAttributePayload `json:"Lookup"`
	Cascade           *cascadeConfiguration   `json:"CascadeConfiguration,omitempty"`
}

type manyToManyPayload struct {
	ODataType     string `json:"@odata.type"`
	SchemaName    string `json:"SchemaName"`
	Entity1       string `json:"Entity1LogicalName"`
	Entity2       string `json:"Entity2LogicalName"`
	IntersectName string `json:"IntersectEntityName,omitempty"`
}

const (
	odataOneToManyRelationship  = "Microsoft.Dynamics.CRM.OneToManyRelationshipMetadata"
	odataManyToManyRelationship = "Microsoft.Dynamics.CRM.ManyToManyRelationshipMetadata"
	odataLookupAttribute        = "Microsoft.Dynamics.CRM.LookupAttributeMetadata"
)

type addSolutionComponentPayload struct {
	ComponentID           string `json:"ComponentId"`
	ComponentType         int    `json:"ComponentType"`
	SolutionUniqueName    string `json:"SolutionUniqueName"`
	AddRequiredComponents bool   `json:"AddRequiredComponents"`
}

// Response shapes.

type odataErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type publisherRow struct {
	ID         string `json:"publisherid"`
	UniqueName string `json:"uniquename"`
	Prefix     string `json:"customizationprefix"`
}

type solutionRow struct {
	ID         string `json:"solutionid"`
	UniqueName string `json:"uniquename"`
}

type entityDefinitionRow struct {
	MetadataID  string `json:"MetadataId"`
	LogicalName string `json:"LogicalName"`
}

type relationshipRow struct {
	MetadataID string `json:"MetadataId"`
	SchemaName string `json:"SchemaName"`
}

type collection[T any] struct {
	Value []T `json:"value"`
}
