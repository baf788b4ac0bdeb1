package cdm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuiseFreese/mermaid-sub004/internal/logging"
	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

func newMatcher(opts ...Option) *Matcher {
	return NewMatcher(logging.NewNullLogger(), opts...)
}

func entity(name string, attrs ...string) mdv.Entity {
	e := mdv.Entity{Name: name}
	for _, a := range attrs {
		e.Attributes = append(e.Attributes, mdv.Attribute{Name: a, Type: mdv.AttributeTypeText})
	}
	return e
}

func TestDetect_ExactNameMatch(t *testing.T) {
	matches := newMatcher().DetectCanonicalEntities([]mdv.Entity{
		entity("Contact", "firstName", "lastName", "email"),
	})

	require.Len(t, matches, 1)
	assert.Equal(t, "Contact", matches[0].EntityName)
	assert.Equal(t, "contact", matches[0].LogicalName)
	assert.GreaterOrEqual(t, matches[0].Score, DefaultThreshold)
}

func TestDetect_SynonymMatch(t *testing.T) {
	matches := newMatcher().DetectCanonicalEntities([]mdv.Entity{
		entity("Company", "name", "industry", "revenue"),
	})

	require.Len(t, matches, 1)
	assert.Equal(t, "account", matches[0].LogicalName)
}

func TestDetect_PluralizedName(t *testing.T) {
	matches := newMatcher().DetectCanonicalEntities([]mdv.Entity{
		entity("Customers", "name", "accountNumber"),
	})

	require.Len(t, matches, 1)
	assert.Equal(t, "account", matches[0].LogicalName)
}

func TestDetect_NoMatchForUnrelatedEntity(t *testing.T) {
	matches := newMatcher().DetectCanonicalEntities([]mdv.Entity{
		entity("WarehouseShelf", "aisle", "rackNumber", "capacity"),
	})

	assert.Empty(t, matches)
}

func TestDetect_AtMostOneMatchPerEntity(t *testing.T) {
	// "User" hits both the systemuser synonyms and, weakly, contact.
	matches := newMatcher().DetectCanonicalEntities([]mdv.Entity{
		entity("User", "fullName", "firstName", "lastName"),
	})

	require.Len(t, matches, 1)
	assert.Equal(t, "systemuser", matches[0].LogicalName)
}

func TestDetect_FieldMapping(t *testing.T) {
	matches := newMatcher().DetectCanonicalEntities([]mdv.Entity{
		entity("Contact", "firstName", "lastName", "jobTitle", "shelfCount"),
	})

	require.Len(t, matches, 1)
	mapping := matches[0].FieldMapping
	assert.Equal(t, "firstname", mapping["firstName"])
	assert.Equal(t, "lastname", mapping["lastName"])
	assert.Equal(t, "jobtitle", mapping["jobTitle"])
	_, mapped := mapping["shelfCount"]
	assert.False(t, mapped, "unrelated attribute should not be mapped")
}

func TestDetect_Deterministic(t *testing.T) {
	input := []mdv.Entity{
		entity("Customer", "name", "email"),
		entity("Ticket", "title", "description", "priorityCode"),
		entity("Widget", "serial"),
	}

	first := newMatcher().DetectCanonicalEntities(input)
	second := newMatcher().DetectCanonicalEntities(input)

	assert.Equal(t, first, second)
}

func TestDetect_DoesNotMutateInput(t *testing.T) {
	input := []mdv.Entity{entity("Contact", "firstName")}
	before := input[0]

	_ = newMatcher().DetectCanonicalEntities(input)

	assert.Equal(t, before, input[0])
}

func TestDetect_TieBreaksByRegistryOrder(t *testing.T) {
	// Two templates scoring identically on name: the earlier one wins.
	reg := []Template{
		{LogicalName: "first", DisplayName: "Widget"},
		{LogicalName: "second", DisplayName: "Widget"},
	}

	matches := newMatcher(WithRegistry(reg)).DetectCanonicalEntities([]mdv.Entity{
		{Name: "Widget"},
	})

	require.Len(t, matches, 1)
	assert.Equal(t, "first", matches[0].LogicalName)
}

func TestDetect_ThresholdConfigurable(t *testing.T) {
	// "Customer" with a partially aligned shape scores well below 1.0:
	// matched at the default threshold, rejected at 0.99.
	input := []mdv.Entity{entity("Customer", "name", "email")}

	require.Len(t, newMatcher().DetectCanonicalEntities(input), 1)
	assert.Empty(t, newMatcher(WithThreshold(0.99)).DetectCanonicalEntities(input))
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{a: "contact", b: "contact", min: 1, max: 1},
		{a: "customer", b: "customers", min: 0.85, max: 0.95},
		{a: "order", b: "widget", min: 0, max: 0.4},
		{a: "", b: "contact", min: 0, max: 0},
	}

	for _, tt := range tests {
		s := similarity(tt.a, tt.b)
		assert.GreaterOrEqual(t, s, tt.min, "similarity(%q, %q)", tt.a, tt.b)
		assert.LessOrEqual(t, s, tt.max, "similarity(%q, %q)", tt.a, tt.b)
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "customeraccount", normalizeName("Customer_Account"))
	assert.Equal(t, "customeraccount", normalizeName("customerAccount"))
	assert.Equal(t, "line2item", normalizeName("Line2-Item"))
}
