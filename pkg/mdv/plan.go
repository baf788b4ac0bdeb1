package mdv

// OperationKind identifies what a plan operation creates or ensures.
type OperationKind string

const (
	OpEnsurePublisher     OperationKind = "ensure-publisher"
	OpEnsureSolution      OperationKind = "ensure-solution"
	OpIntegrateCanonical  OperationKind = "integrate-canonical-entity"
	OpCreateEntity        OperationKind = "create-entity"
	OpCreateAttribute     OperationKind = "create-attribute"
	OpCreateRelationship  OperationKind = "create-relationship"
	OpCreateChoiceSet     OperationKind = "create-choice-set"
)

// PlannedRelationship is a relationship resolved to target-store logical
// names, ready for creation.
type PlannedRelationship struct {
	// SchemaName is the unique schema name of the relationship.
	SchemaName string

	Kind RelationshipKind

	// ReferencedEntity is the logical name of the "one" side (one-to-many)
	// or the first entity (many-to-many).
	ReferencedEntity string

	// ReferencingEntity is the logical name of the "many" side (one-to-many)
	// or the second entity (many-to-many).
	ReferencingEntity string

	// LookupAttribute is the logical name of the lookup column created on
	// the referencing entity. Empty for many-to-many.
	LookupAttribute string

	// LookupDisplayName is the display name of the lookup column.
	LookupDisplayName string

	Cascade CascadeBehavior
}

// Operation is a single step of a DeploymentPlan. Exactly the fields
// relevant to its Kind are populated:
//
//	OpEnsurePublisher    — Name, DisplayName
//	OpEnsureSolution     — Name, DisplayName
//	OpIntegrateCanonical — Name (canonical logical name), Match
//	OpCreateEntity       — Name (logical name), DisplayName, Entity
//	OpCreateAttribute    — Name (logical name), DisplayName, OwnerEntity, Attribute
//	OpCreateRelationship — Name (schema name), Relationship
//	OpCreateChoiceSet    — Name (logical name), ChoiceSet
type Operation struct {
	Kind OperationKind

	// Name is the unique/logical name the operation targets. Used for the
	// existence check of the ensure pattern.
	Name string

	DisplayName string

	// OwnerEntity is the logical name of the entity owning an attribute.
	OwnerEntity string

	Entity       *Entity
	Attribute    *Attribute
	Relationship *PlannedRelationship
	ChoiceSet    *ChoiceSet
	Match        *CDMMatch

	// DependsOn lists logical names of custom entities this operation
	// requires. The executor skips the operation if any of them failed.
	DependsOn []string
}

// DeploymentPlan is a dependency-ordered list of operations together with
// the entity partition it was planned from.
type DeploymentPlan struct {
	Operations []Operation

	// CustomEntities maps diagram entity names to their generated logical
	// names for entities that will be created as custom entities.
	CustomEntities map[string]string

	// CanonicalEntities maps diagram entity names to canonical logical
	// names for entities replaced by an accepted match.
	CanonicalEntities map[string]string

	// Request is the deployment request the plan was built for.
	Request DeploymentRequest
}

// OperationsOfKind returns the operations of the given kind in plan order.
func (p *DeploymentPlan) OperationsOfKind(kind OperationKind) []Operation {
	var ops []Operation
	for _, op := range p.Operations {
		if op.Kind == kind {
			ops = append(ops, op)
		}
	}
	return ops
}
