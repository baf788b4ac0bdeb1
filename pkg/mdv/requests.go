package mdv

import (
	"errors"
	"fmt"
)

// Typed request payloads, one per metadata operation kind. Each is validated
// before the remote client sends it, so malformed payloads fail client-side
// instead of producing opaque 400 responses.

// PublisherRequest creates a publisher.
type PublisherRequest struct {
	UniqueName  string
	DisplayName string
	Prefix      string

	// OptionValuePrefix seeds option values for choice sets owned by this
	// publisher. Must be in [10000, 99999].
	OptionValuePrefix int
}

// Validate checks the request before it is sent.
func (r *PublisherRequest) Validate() error {
	var errs []error
	if r.UniqueName == "" {
		errs = append(errs, fmt.Errorf("publisher UniqueName is required: %w", ErrInvalidConfig))
	}
	if !prefixPattern.MatchString(r.Prefix) {
		errs = append(errs, fmt.Errorf("publisher Prefix %q is invalid: %w", r.Prefix, ErrInvalidConfig))
	}
	if r.OptionValuePrefix < 10_000 || r.OptionValuePrefix > 99_999 {
		errs = append(errs, fmt.Errorf("publisher OptionValuePrefix %d out of range [10000, 99999]: %w",
			r.OptionValuePrefix, ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// PublisherRef identifies an existing publisher.
type PublisherRef struct {
	ID         string
	UniqueName string
	Prefix     string
}

// SolutionRequest creates a solution owned by a publisher.
type SolutionRequest struct {
	UniqueName  string
	DisplayName string
	PublisherID string
}

// Validate checks the request before it is sent.
func (r *SolutionRequest) Validate() error {
	var errs []error
	if r.UniqueName == "" {
		errs = append(errs, fmt.Errorf("solution UniqueName is required: %w", ErrInvalidConfig))
	}
	if r.PublisherID == "" {
		errs = append(errs, fmt.Errorf("solution PublisherID is required: %w", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// SolutionRef identifies an existing solution.
type SolutionRef struct {
	ID         string
	UniqueName string
}

// AttributeRequest creates a column on an entity, or the primary name
// column when embedded in an EntityRequest.
type AttributeRequest struct {
	// SolutionUniqueName scopes the created component to a solution.
	SolutionUniqueName string

	// EntityLogicalName is the owning entity. Ignored when embedded in an
	// EntityRequest.
	EntityLogicalName string

	LogicalName string
	SchemaName  string
	DisplayName string
	Description string

	Type     AttributeType
	Required bool

	// MaxLength applies to text attributes; 0 means the store default.
	MaxLength int

	// ChoiceSetName is the logical name of the global choice set backing a
	// choice attribute.
	ChoiceSetName string

	// Targets lists referenced entity logical names for lookup attributes.
	Targets []string
}

// Validate checks the request before it is sent.
func (r *AttributeRequest) Validate() error {
	var errs []error
	if r.LogicalName == "" {
		errs = append(errs, fmt.Errorf("attribute LogicalName is required: %w", ErrInvalidConfig))
	}
	if !r.Type.IsValid() {
		errs = append(errs, fmt.Errorf("attribute %q has invalid type %q: %w", r.LogicalName, r.Type, ErrInvalidConfig))
	}
	if r.Type == AttributeTypeChoice && r.ChoiceSetName == "" {
		errs = append(errs, fmt.Errorf("choice attribute %q needs a ChoiceSetName: %w", r.LogicalName, ErrInvalidConfig))
	}
	if r.Type == AttributeTypeLookup && len(r.Targets) == 0 {
		errs = append(errs, fmt.Errorf("lookup attribute %q needs at least one target: %w", r.LogicalName, ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// EntityRequest creates a custom entity together with its primary name
// column.
type EntityRequest struct {
	SolutionUniqueName string

	LogicalName string
	SchemaName  string
	DisplayName string
	// DisplayCollectionName is the plural display name.
	DisplayCollectionName string
	Description           string

	PrimaryAttribute AttributeRequest
}

// Validate checks the request before it is sent.
func (r *EntityRequest) Validate() error {
	var errs []error
	if r.LogicalName == "" {
		errs = append(errs, fmt.Errorf("entity LogicalName is required: %w", ErrInvalidConfig))
	}
	if r.SchemaName == "" {
		errs = append(errs, fmt.Errorf("entity %q SchemaName is required: %w", r.LogicalName, ErrInvalidConfig))
	}
	if r.PrimaryAttribute.Type != AttributeTypeText {
		errs = append(errs, fmt.Errorf("entity %q primary attribute must be text, got %q: %w",
			r.LogicalName, r.PrimaryAttribute.Type, ErrInvalidConfig))
	}
	if err := r.PrimaryAttribute.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// OneToManyRequest creates a one-to-many relationship plus its backing
// lookup column on the referencing entity.
type OneToManyRequest struct {
	SolutionUniqueName string

	SchemaName        string
	ReferencedEntity  string
	ReferencingEntity string

	LookupSchemaName  string
	LookupDisplayName string

	Cascade CascadeBehavior
}

// Validate checks the request before it is sent.
func (r *OneToManyRequest) Validate() error {
	var errs []error
	if r.SchemaName == "" {
		errs = append(errs, fmt.Errorf("relationship SchemaName is required: %w", ErrInvalidConfig))
	}
	if r.ReferencedEntity == "" || r.ReferencingEntity == "" {
		errs = append(errs, fmt.Errorf("relationship %q needs both endpoints: %w", r.SchemaName, ErrInvalidConfig))
	}
	if r.LookupSchemaName == "" {
		errs = append(errs, fmt.Errorf("relationship %q needs a lookup schema name: %w", r.SchemaName, ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// ManyToManyRequest creates a many-to-many relationship with its intersect
// entity.
type ManyToManyRequest struct {
	SolutionUniqueName string

	SchemaName    string
	Entity1       string
	Entity2       string
	IntersectName string
}

// Validate checks the request before it is sent.
func (r *ManyToManyRequest) Validate() error {
	var errs []error
	if r.SchemaName == "" {
		errs = append(errs, fmt.Errorf("relationship SchemaName is required: %w", ErrInvalidConfig))
	}
	if r.Entity1 == "" || r.Entity2 == "" {
		errs = append(errs, fmt.Errorf("relationship %q needs both endpoints: %w", r.SchemaName, ErrInvalidConfig))
	}
	return errors.Join(errs...)
}

// ChoiceSetRequest creates a global choice set.
type ChoiceSetRequest struct {
	SolutionUniqueName string

	Name        string
	DisplayName string
	Options     []ChoiceOption
}

// Validate checks the request before it is sent.
func (r *ChoiceSetRequest) Validate() error {
	var errs []error
	if r.Name == "" {
		errs = append(errs, fmt.Errorf("choice set Name is required: %w", ErrInvalidConfig))
	}
	if len(r.Options) == 0 {
		errs = append(errs, fmt.Errorf("choice set %q has no options: %w", r.Name, ErrInvalidConfig))
	}
	seen := make(map[int]string, len(r.Options))
	for _, opt := range r.Options {
		if prev, dup := seen[opt.Value]; dup {
			errs = append(errs, fmt.Errorf("choice set %q options %q and %q share value %d: %w",
				r.Name, prev, opt.Label, opt.Value, ErrInvalidConfig))
		}
		seen[opt.Value] = opt.Label
	}
	return errors.Join(errs...)
}

// Solution component types used by AddSolutionComponent.
const (
	// ComponentTypeEntity is the solution component type code for entities.
	ComponentTypeEntity = 1
)

// SolutionComponentRequest adds an existing component (a canonical entity)
// to a solution.
type SolutionComponentRequest struct {
	SolutionUniqueName string

	// ComponentID is the metadata id of the component to add.
	ComponentID string

	// ComponentType is the solution component type code.
	ComponentType int

	// AddRequiredComponents pulls in components the target depends on.
	AddRequiredComponents bool
}

// Validate checks the request before it is sent.
func (r *SolutionComponentRequest) Validate() error {
	var errs []error
	if r.SolutionUniqueName == "" {
		errs = append(errs, fmt.Errorf("solution component needs SolutionUniqueName: %w", ErrInvalidConfig))
	}
	if r.ComponentID == "" {
		errs = append(errs, fmt.Errorf("solution component needs ComponentID: %w", ErrInvalidConfig))
	}
	if r.ComponentType == 0 {
		errs = append(errs, fmt.Errorf("solution component needs ComponentType: %w", ErrInvalidConfig))
	}
	return errors.Join(errs...)
}
