package mdv

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// AttributeType is the semantic type of an entity attribute.
type AttributeType string

const (
	AttributeTypeText     AttributeType = "text"
	AttributeTypeMemo     AttributeType = "memo"
	AttributeTypeInteger  AttributeType = "integer"
	AttributeTypeDecimal  AttributeType = "decimal"
	AttributeTypeMoney    AttributeType = "money"
	AttributeTypeDateTime AttributeType = "datetime"
	AttributeTypeDate     AttributeType = "date"
	AttributeTypeBoolean  AttributeType = "boolean"
	AttributeTypeChoice   AttributeType = "choice"
	AttributeTypeLookup   AttributeType = "lookup"
)

// IsValid returns true if the AttributeType is a defined value.
func (t AttributeType) IsValid() bool {
	switch t {
	case AttributeTypeText, AttributeTypeMemo, AttributeTypeInteger,
		AttributeTypeDecimal, AttributeTypeMoney, AttributeTypeDateTime,
		AttributeTypeDate, AttributeTypeBoolean, AttributeTypeChoice,
		AttributeTypeLookup:
		return true
	}
	return false
}

// Attribute is a single column of an Entity.
// Attributes are created by the parser, or synthesized by the planner for
// the foreign-key side of one-to-many relationships.
type Attribute struct {
	// Name is the attribute name as written in the diagram.
	// Unique within its entity.
	Name string

	// Type is the normalized semantic type.
	Type AttributeType

	// Required indicates the attribute is non-nullable.
	Required bool

	// DefaultValue is the literal default, empty if none.
	DefaultValue string

	// Description is the optional quoted comment from the diagram.
	Description string

	// ChoiceSet references a named choice set for choice-typed attributes.
	ChoiceSet string

	// IsPrimaryKey marks the attribute flagged PK in the diagram.
	IsPrimaryKey bool

	// IsForeignKey marks the attribute flagged FK, or synthesized by the
	// planner to back a relationship.
	IsForeignKey bool
}

// Entity is a parsed diagram entity. Entities are immutable after parse.
type Entity struct {
	// Name is the entity name as written in the diagram. Unique within a
	// parse result.
	Name string

	// Attributes in diagram declaration order.
	Attributes []Attribute

	// PrimaryAttribute is the name of the designated primary (name) attribute.
	PrimaryAttribute string
}

// Attribute returns the named attribute and true, or a zero Attribute and
// false if the entity has no attribute with that name.
func (e *Entity) Attribute(name string) (Attribute, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// RelationshipKind is the normalized cardinality of a relationship.
type RelationshipKind string

const (
	OneToOne   RelationshipKind = "one-to-one"
	OneToMany  RelationshipKind = "one-to-many"
	ManyToMany RelationshipKind = "many-to-many"
)

// CascadeBehavior controls what happens to referencing rows when the
// referenced row is deleted.
type CascadeBehavior string

const (
	// CascadeRemoveLink clears the reference on delete (non-identifying
	// relationships, drawn with a dotted line).
	CascadeRemoveLink CascadeBehavior = "remove-link"

	// CascadeDelete deletes referencing rows on delete (identifying
	// relationships, drawn with a solid line).
	CascadeDelete CascadeBehavior = "cascade"
)

// Relationship links two entities of the same parse result.
// For one-to-many, From is the "one" side and To is the "many" side.
type Relationship struct {
	Kind    RelationshipKind
	From    string
	To      string
	Label   string
	Cascade CascadeBehavior
}

// ChoiceOption is a single labeled value of a choice set.
type ChoiceOption struct {
	Label string
	Value int
}

// ChoiceSet is a named enumeration of labeled values. Global choice sets are
// reusable across entities; inline sets belong to a single attribute.
type ChoiceSet struct {
	Name    string
	Options []ChoiceOption
	Global  bool
}

// ValidationWarning records a recoverable issue found while parsing.
type ValidationWarning struct {
	// Line is the 1-based line number in the input, 0 if not line-specific.
	Line int

	// Message describes the issue.
	Message string

	// Suggestion is the corrected form of the offending line, empty if no
	// correction is available.
	Suggestion string
}

func (w ValidationWarning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}

// ValidationResult summarizes parse validity. IsValid is true iff the input
// produced zero fatal errors; warnings do not affect it.
type ValidationResult struct {
	IsValid           bool
	EntityCount       int
	RelationshipCount int
}

// ParseResult is the output of the diagram parser.
type ParseResult struct {
	Entities      []Entity
	Relationships []Relationship
	Warnings      []ValidationWarning

	// CorrectedDiagram is a normalized rendering of the input with all
	// recoverable issues fixed, suitable for surfacing back to the author.
	// Empty when no corrections were needed.
	CorrectedDiagram string

	Validation ValidationResult
}

// Entity returns the named entity and true, or nil and false.
func (r *ParseResult) Entity(name string) (*Entity, bool) {
	for i := range r.Entities {
		if r.Entities[i].Name == name {
			return &r.Entities[i], true
		}
	}
	return nil, false
}

// CDMMatch is an advisory match of a diagram entity against a canonical
// (Common Data Model) entity template. Matches never modify the source
// entities; the planner decides whether to apply them.
type CDMMatch struct {
	// EntityName is the diagram entity name.
	EntityName string

	// LogicalName is the canonical entity's logical name (e.g. "account").
	LogicalName string

	// DisplayName is the canonical entity's display name (e.g. "Account").
	DisplayName string

	// Score is the match confidence in [0, 1].
	Score float64

	// FieldMapping maps diagram attribute names to canonical attribute
	// logical names for attributes the matcher could align.
	FieldMapping map[string]string
}

// DeploymentRequest carries the caller's choices for one deployment.
type DeploymentRequest struct {
	// EnvironmentURL is the target environment, e.g.
	// "https://contoso.crm.dynamics.com".
	EnvironmentURL string

	// SolutionUniqueName is the unique name of the target solution.
	SolutionUniqueName string

	// SolutionDisplayName is the display name used if the solution must be
	// created. Defaults to SolutionUniqueName.
	SolutionDisplayName string

	// PublisherUniqueName is the unique name of the target publisher.
	PublisherUniqueName string

	// PublisherDisplayName is the display name used if the publisher must be
	// created. Defaults to PublisherUniqueName.
	PublisherDisplayName string

	// PublisherPrefix is the customization prefix applied to all logical and
	// schema names (2-8 characters, lowercase letters and digits, starting
	// with a letter).
	PublisherPrefix string

	// IntegrateCDM opts in to replacing matched entities with their
	// canonical templates instead of creating custom entities.
	IntegrateCDM bool

	// ChoiceSets are additional global choice sets to create and attach
	// beyond those declared in the diagram.
	ChoiceSets []ChoiceSet
}

var prefixPattern = regexp.MustCompile(`^[a-z][a-z0-9]{1,7}$`)

// Validate checks the request for completeness and well-formed identifiers.
// It returns a multi-error if several fields are invalid.
func (r *DeploymentRequest) Validate() error {
	var errs []error

	if r.EnvironmentURL == "" {
		errs = append(errs, fmt.Errorf("EnvironmentURL is required: %w", ErrInvalidConfig))
	} else if !strings.HasPrefix(r.EnvironmentURL, "https://") {
		errs = append(errs, fmt.Errorf("EnvironmentURL must use https: %w", ErrInvalidConfig))
	}

	if r.SolutionUniqueName == "" {
		errs = append(errs, fmt.Errorf("SolutionUniqueName is required: %w", ErrInvalidConfig))
	}

	if r.PublisherUniqueName == "" {
		errs = append(errs, fmt.Errorf("PublisherUniqueName is required: %w", ErrInvalidConfig))
	}

	if r.PublisherPrefix == "" {
		errs = append(errs, fmt.Errorf("PublisherPrefix is required: %w", ErrInvalidConfig))
	} else if !prefixPattern.MatchString(r.PublisherPrefix) {
		errs = append(errs, fmt.Errorf(
			"PublisherPrefix %q must be 2-8 lowercase letters or digits starting with a letter: %w",
			r.PublisherPrefix, ErrInvalidConfig))
	}

	for _, cs := range r.ChoiceSets {
		if cs.Name == "" {
			errs = append(errs, fmt.Errorf("choice set with empty name: %w", ErrInvalidConfig))
		}
		if len(cs.Options) == 0 {
			errs = append(errs, fmt.Errorf("choice set %q has no options: %w", cs.Name, ErrInvalidConfig))
		}
	}

	return errors.Join(errs...)
}
