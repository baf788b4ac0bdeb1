package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuiseFreese/mermaid-sub004/internal/logging"
	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

func newParser() *MermaidParser {
	return New(logging.NewNullLogger())
}

const sampleDiagram = `erDiagram
    Customer ||--o{ Order : places
    Order ||--|{ LineItem : contains
    Customer {
        string name PK "Customer full name"
        string email
        int loyaltyPoints
        enum tier
    }
    Order {
        string orderNumber PK
        datetime placedAt
        money total
    }
    LineItem {
        string description PK
        int quantity
        money price
    }
`

func TestParse_SampleDiagram(t *testing.T) {
	result, err := newParser().Parse(sampleDiagram)
	require.NoError(t, err)

	require.Len(t, result.Entities, 3)
	assert.Equal(t, "Customer", result.Entities[0].Name)
	assert.Equal(t, "Order", result.Entities[1].Name)
	assert.Equal(t, "LineItem", result.Entities[2].Name)

	require.Len(t, result.Relationships, 2)
	assert.Equal(t, mdv.OneToMany, result.Relationships[0].Kind)
	assert.Equal(t, "Customer", result.Relationships[0].From)
	assert.Equal(t, "Order", result.Relationships[0].To)
	assert.Equal(t, "places", result.Relationships[0].Label)

	assert.Empty(t, result.Warnings)
	assert.True(t, result.Validation.IsValid)
	assert.Empty(t, result.CorrectedDiagram)
}

func TestParse_AttributeDetails(t *testing.T) {
	result, err := newParser().Parse(sampleDiagram)
	require.NoError(t, err)

	customer, ok := result.Entity("Customer")
	require.True(t, ok)
	assert.Equal(t, "name", customer.PrimaryAttribute)

	name, ok := customer.Attribute("name")
	require.True(t, ok)
	assert.True(t, name.IsPrimaryKey)
	assert.True(t, name.Required)
	assert.Equal(t, mdv.AttributeTypeText, name.Type)
	assert.Equal(t, "Customer full name", name.Description)

	points, ok := customer.Attribute("loyaltyPoints")
	require.True(t, ok)
	assert.Equal(t, mdv.AttributeTypeInteger, points.Type)

	tier, ok := customer.Attribute("tier")
	require.True(t, ok)
	assert.Equal(t, mdv.AttributeTypeChoice, tier.Type)
	assert.Equal(t, "tier", tier.ChoiceSet)
}

func TestParse_MinimalRelationshipOnly(t *testing.T) {
	// The endpoints are never declared as blocks; the parser synthesizes
	// them so every relationship endpoint names a parsed entity.
	result, err := newParser().Parse("erDiagram\n  Customer ||--o{ Order : places")
	require.NoError(t, err)

	require.Len(t, result.Entities, 2)
	assert.Equal(t, "Customer", result.Entities[0].Name)
	assert.Equal(t, "Order", result.Entities[1].Name)

	require.Len(t, result.Relationships, 1)
	assert.Equal(t, mdv.OneToMany, result.Relationships[0].Kind)
	assert.Equal(t, "Customer", result.Relationships[0].From)
	assert.Equal(t, "Order", result.Relationships[0].To)

	// Synthesized entities produce warnings but the parse stays valid.
	assert.NotEmpty(t, result.Warnings)
	assert.True(t, result.Validation.IsValid)
}

func TestParse_RelationshipKinds(t *testing.T) {
	tests := []struct {
		marker string
		kind   mdv.RelationshipKind
		from   string
		to     string
	}{
		{marker: "||--||", kind: mdv.OneToOne, from: "A", to: "B"},
		{marker: "||--o{", kind: mdv.OneToMany, from: "A", to: "B"},
		{marker: "||--|{", kind: mdv.OneToMany, from: "A", to: "B"},
		{marker: "|o..o{", kind: mdv.OneToMany, from: "A", to: "B"},
		// "many" on the left normalizes to one-to-many with B as the one side
		{marker: "}o--||", kind: mdv.OneToMany, from: "B", to: "A"},
		{marker: "}|--|o", kind: mdv.OneToMany, from: "B", to: "A"},
		{marker: "}o--o{", kind: mdv.ManyToMany, from: "A", to: "B"},
		{marker: "}|..|{", kind: mdv.ManyToMany, from: "A", to: "B"},
	}

	for _, tt := range tests {
		t.Run(tt.marker, func(t *testing.T) {
			result, err := newParser().Parse("erDiagram\n  A " + tt.marker + " B : rel")
			require.NoError(t, err)
			require.Len(t, result.Relationships, 1)
			rel := result.Relationships[0]
			assert.Equal(t, tt.kind, rel.Kind)
			assert.Equal(t, tt.from, rel.From)
			assert.Equal(t, tt.to, rel.To)
		})
	}
}

func TestParse_CascadeFromConnector(t *testing.T) {
	result, err := newParser().Parse("erDiagram\n  A ||--o{ B : owns\n  A ||..o{ C : references")
	require.NoError(t, err)
	require.Len(t, result.Relationships, 2)
	assert.Equal(t, mdv.CascadeDelete, result.Relationships[0].Cascade)
	assert.Equal(t, mdv.CascadeRemoveLink, result.Relationships[1].Cascade)
}

func TestParse_UnknownMarkerWarnsAndDefaults(t *testing.T) {
	result, err := newParser().Parse("erDiagram\n  A ||--x{ B : broken")
	require.NoError(t, err)

	require.Len(t, result.Relationships, 1)
	assert.Equal(t, mdv.OneToMany, result.Relationships[0].Kind)

	found := false
	for _, w := range result.Warnings {
		if w.Suggestion == "A ||--o{ B : broken" {
			found = true
			assert.Equal(t, 2, w.Line)
		}
	}
	assert.True(t, found, "expected a corrected-line suggestion, warnings: %v", result.Warnings)
	assert.True(t, result.Validation.IsValid)
}

func TestParse_DuplicateRelationshipDeduplicated(t *testing.T) {
	result, err := newParser().Parse(
		"erDiagram\n  A ||--o{ B : owns\n  A ||--o{ B : owns again")
	require.NoError(t, err)

	assert.Len(t, result.Relationships, 1)
	assert.NotEmpty(t, result.Warnings)
}

func TestParse_DuplicateAttributeIgnored(t *testing.T) {
	result, err := newParser().Parse(`erDiagram
  Thing {
    string name PK
    string name
  }`)
	require.NoError(t, err)

	thing, ok := result.Entity("Thing")
	require.True(t, ok)
	assert.Len(t, thing.Attributes, 1)
	assert.NotEmpty(t, result.Warnings)
}

func TestParse_UnknownTypeDefaultsToText(t *testing.T) {
	result, err := newParser().Parse(`erDiagram
  Thing {
    blob payload
    string name PK
  }`)
	require.NoError(t, err)

	thing, _ := result.Entity("Thing")
	payload, ok := thing.Attribute("payload")
	require.True(t, ok)
	assert.Equal(t, mdv.AttributeTypeText, payload.Type)

	found := false
	for _, w := range result.Warnings {
		if w.Suggestion == "string payload" {
			found = true
		}
	}
	assert.True(t, found, "expected type correction suggestion")
}

func TestParse_MissingPrimaryKeyFallsBack(t *testing.T) {
	result, err := newParser().Parse(`erDiagram
  Event {
    datetime occurredAt
    string title
  }`)
	require.NoError(t, err)

	event, _ := result.Entity("Event")
	assert.Equal(t, "title", event.PrimaryAttribute)
	assert.NotEmpty(t, result.Warnings)
}

func TestParse_FatalErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty input", text: ""},
		{name: "no header", text: "Customer ||--o{ Order : places"},
		{name: "header only", text: "erDiagram\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newParser().Parse(tt.text)
			require.Error(t, err)

			var parseErr *mdv.ParseError
			assert.True(t, errors.As(err, &parseErr))
			assert.True(t, errors.Is(err, mdv.ErrUnparsableDiagram))
		})
	}
}

func TestParse_EntityNamesUnique(t *testing.T) {
	result, err := newParser().Parse(sampleDiagram)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, e := range result.Entities {
		assert.False(t, seen[e.Name], "duplicate entity %q", e.Name)
		seen[e.Name] = true
	}

	for _, rel := range result.Relationships {
		_, fromOK := result.Entity(rel.From)
		_, toOK := result.Entity(rel.To)
		assert.True(t, fromOK, "relationship endpoint %q missing", rel.From)
		assert.True(t, toOK, "relationship endpoint %q missing", rel.To)
	}
}

func TestParse_CorrectedDiagramReparsesCleanly(t *testing.T) {
	dirty := `erDiagram
  Customer ||--x{ Order : places
  Customer {
    blob avatar
    string name PK
  }
  Order {
    string orderNumber PK
    string orderNumber
  }`

	first, err := newParser().Parse(dirty)
	require.NoError(t, err)
	require.NotEmpty(t, first.CorrectedDiagram)

	second, err := newParser().Parse(first.CorrectedDiagram)
	require.NoError(t, err)
	assert.Empty(t, second.Warnings, "corrected diagram should reparse without warnings")
	assert.Equal(t, len(first.Entities), len(second.Entities))
	assert.Equal(t, len(first.Relationships), len(second.Relationships))
}

func TestParse_CommentsAndBlankLinesIgnored(t *testing.T) {
	result, err := newParser().Parse(`erDiagram

  %% customers own orders
  Customer ||--o{ Order : places
`)
	require.NoError(t, err)
	assert.Len(t, result.Relationships, 1)
}
