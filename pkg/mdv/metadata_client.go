package mdv

import "context"

// EntityRef identifies an entity definition in the target store.
type EntityRef struct {
	// MetadataID is the store-assigned id of the entity definition.
	MetadataID string

	LogicalName string
}

// MetadataClient is the HTTP boundary to the target store's metadata API.
// All methods are safe for concurrent use.
//
// Find* methods return (nil, nil) when the resource does not exist; *Exists
// methods return (false, nil). Create* methods return ErrAlreadyExists
// (possibly wrapped) when the store reports a conflict, which callers treat
// as a no-op success.
type MetadataClient interface {
	// FindPublisher looks up a publisher by unique name.
	FindPublisher(ctx context.Context, uniqueName string) (*PublisherRef, error)

	// CreatePublisher creates a publisher and returns its reference.
	CreatePublisher(ctx context.Context, req PublisherRequest) (*PublisherRef, error)

	// FindSolution looks up a solution by unique name.
	FindSolution(ctx context.Context, uniqueName string) (*SolutionRef, error)

	// CreateSolution creates a solution and returns its reference.
	CreateSolution(ctx context.Context, req SolutionRequest) (*SolutionRef, error)

	// FindEntity looks up an entity definition by logical name.
	FindEntity(ctx context.Context, logicalName string) (*EntityRef, error)

	// CreateEntity creates a custom entity with its primary name column.
	CreateEntity(ctx context.Context, req EntityRequest) error

	// AttributeExists reports whether the entity already has the column.
	AttributeExists(ctx context.Context, entityLogicalName, attributeLogicalName string) (bool, error)

	// CreateAttribute creates a column on an existing entity.
	CreateAttribute(ctx context.Context, req AttributeRequest) error

	// RelationshipExists reports whether a relationship with the schema
	// name already exists.
	RelationshipExists(ctx context.Context, schemaName string) (bool, error)

	// CreateOneToMany creates a one-to-many relationship and its lookup
	// column.
	CreateOneToMany(ctx context.Context, req OneToManyRequest) error

	// CreateManyToMany creates a many-to-many relationship.
	CreateManyToMany(ctx context.Context, req ManyToManyRequest) error

	// ChoiceSetExists reports whether a global choice set with the name
	// already exists.
	ChoiceSetExists(ctx context.Context, name string) (bool, error)

	// CreateChoiceSet creates a global choice set.
	CreateChoiceSet(ctx context.Context, req ChoiceSetRequest) error

	// AddSolutionComponent adds an existing component to a solution.
	AddSolutionComponent(ctx context.Context, req SolutionComponentRequest) error

	// DeleteRelationship deletes a relationship by schema name.
	DeleteRelationship(ctx context.Context, schemaName string) error

	// DeleteEntity deletes an entity definition by logical name.
	DeleteEntity(ctx context.Context, logicalName string) error
}
