package planner

import (
	"fmt"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// SchemaPlanner implements mdv.Planner. It combines a parse result, the
// matcher's advisory output and the deployment request into a topologically
// ordered operation list.
//
// Planning is pure: no network calls, no mutation of its inputs, and
// identical inputs always produce an identical plan.
type SchemaPlanner struct {
	logger mdv.Logger
}

// New creates a SchemaPlanner. Panics if logger is nil.
func New(logger mdv.Logger) *SchemaPlanner {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &SchemaPlanner{logger: logger}
}

// Plan builds the deployment plan. Phases are emitted in fixed order:
// publisher, solution, canonical integration (only when the request opts
// in), custom entities, their attributes, relationships, then choice sets
// with their attached choice columns.
func (p *SchemaPlanner) Plan(parse *mdv.ParseResult, matches []mdv.CDMMatch, request mdv.DeploymentRequest) (*mdv.DeploymentPlan, error) {
	if parse == nil {
		return nil, fmt.Errorf("parse result is required: %w", mdv.ErrInvalidConfig)
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	plan := &mdv.DeploymentPlan{
		CustomEntities:    make(map[string]string),
		CanonicalEntities: make(map[string]string),
		Request:           request,
	}

	// Partition entities: an entity is canonical iff the request opts in to
	// CDM integration and the matcher produced a match for it. The two sets
	// are disjoint and together cover all parsed entities.
	accepted := make(map[string]*mdv.CDMMatch)
	if request.IntegrateCDM {
		for i := range matches {
			accepted[matches[i].EntityName] = &matches[i]
		}
	}

	var custom []mdv.Entity
	var canonical []*mdv.CDMMatch
	for _, entity := range parse.Entities {
		if match, ok := accepted[entity.Name]; ok {
			plan.CanonicalEntities[entity.Name] = match.LogicalName
			canonical = append(canonical, match)
			continue
		}
		plan.CustomEntities[entity.Name] = logicalName(request.PublisherPrefix, entity.Name)
		custom = append(custom, entity)
	}

	p.appendFoundation(plan, request)
	p.appendCanonical(plan, canonical)
	p.appendEntities(plan, custom, request)
	p.appendAttributes(plan, custom, request)
	p.appendRelationships(plan, parse.Relationships, request)
	p.appendChoiceSets(plan, custom, request)

	p.logger.Verbose("planned %d operations (%d custom, %d canonical entities)",
		len(plan.Operations), len(custom), len(canonical))

	return plan, nil
}

func (p *SchemaPlanner) appendFoundation(plan *mdv.DeploymentPlan, request mdv.DeploymentRequest) {
	publisherDisplay := request.PublisherDisplayName
	if publisherDisplay == "" {
		publisherDisplay = request.PublisherUniqueName
	}
	solutionDisplay := request.SolutionDisplayName
	if solutionDisplay == "" {
		solutionDisplay = request.SolutionUniqueName
	}

	plan.Operations = append(plan.Operations,
		mdv.Operation{
			Kind:        mdv.OpEnsurePublisher,
			Name:        request.PublisherUniqueName,
			DisplayName: publisherDisplay,
		},
		mdv.Operation{
			Kind:        mdv.OpEnsureSolution,
			Name:        request.SolutionUniqueName,
			DisplayName: solutionDisplay,
		},
	)
}

func (p *SchemaPlanner) appendCanonical(plan *mdv.DeploymentPlan, canonical []*mdv.CDMMatch) {
	for _, match := range canonical {
		plan.Operations = append(plan.Operations, mdv.Operation{
			Kind:        mdv.OpIntegrateCanonical,
			Name:        match.LogicalName,
			DisplayName: match.DisplayName,
			Match:       match,
		})
	}
}

func (p *SchemaPlanner) appendEntities(plan *mdv.DeploymentPlan, custom []mdv.Entity, request mdv.DeploymentRequest) {
	for i := range custom {
		entity := &custom[i]
		plan.Operations = append(plan.Operations, mdv.Operation{
			Kind:        mdv.OpCreateEntity,
			Name:        plan.CustomEntities[entity.Name],
			DisplayName: entity.Name,
			Entity:      entity,
		})
	}
}

// appendAttributes plans the non-primary columns of every custom entity.
// Skipped here: the primary attribute (created with the entity), lookup and
// FK attributes (the relationship phase creates them as lookup columns) and
// choice attributes (attached in the choice-set phase, after their set
// exists).
func (p *SchemaPlanner) appendAttributes(plan *mdv.DeploymentPlan, custom []mdv.Entity, request mdv.DeploymentRequest) {
	for i := range custom {
		entity := &custom[i]
		entityLogical := plan.CustomEntities[entity.Name]

		for j := range entity.Attributes {
			attr := &entity.Attributes[j]
			if attr.Name == entity.PrimaryAttribute {
				continue
			}
			if attr.IsForeignKey || attr.Type == mdv.AttributeTypeLookup {
				continue
			}
			if attr.Type == mdv.AttributeTypeChoice {
				continue
			}

			plan.Operations = append(plan.Operations, mdv.Operation{
				Kind:        mdv.OpCreateAttribute,
				Name:        logicalName(request.PublisherPrefix, attr.Name),
				DisplayName: attr.Name,
				OwnerEntity: entityLogical,
				Attribute:   attr,
				DependsOn:   []string{entityLogical},
			})
		}
	}
}

// appendRelationships resolves endpoints to logical names — canonical
// entities resolve to their CDM logical name, which is how "mixed"
// relationships between custom and canonical entities work — and emits one
// operation per relationship.
func (p *SchemaPlanner) appendRelationships(plan *mdv.DeploymentPlan, relationships []mdv.Relationship, request mdv.DeploymentRequest) {
	for _, rel := range relationships {
		fromLogical, fromCustom := p.resolve(plan, rel.From)
		toLogical, toCustom := p.resolve(plan, rel.To)

		var dependsOn []string
		if fromCustom {
			dependsOn = append(dependsOn, fromLogical)
		}
		if toCustom {
			dependsOn = append(dependsOn, toLogical)
		}

		planned := &mdv.PlannedRelationship{
			Kind:    rel.Kind,
			Cascade: rel.Cascade,
		}

		switch rel.Kind {
		case mdv.ManyToMany:
			planned.SchemaName = relationshipName(request.PublisherPrefix, rel.From, rel.To)
			planned.ReferencedEntity = fromLogical
			planned.ReferencingEntity = toLogical
		default:
			// One-to-one is provisioned as a one-to-many; the target store
			// has no native one-to-one relationship type.
			planned.SchemaName = relationshipName(request.PublisherPrefix, rel.To, rel.From)
			planned.ReferencedEntity = fromLogical
			planned.ReferencingEntity = toLogical
			planned.LookupAttribute = lookupName(request.PublisherPrefix, rel.From)
			planned.LookupDisplayName = rel.From
		}

		plan.Operations = append(plan.Operations, mdv.Operation{
			Kind:         mdv.OpCreateRelationship,
			Name:         planned.SchemaName,
			Relationship: planned,
			DependsOn:    dependsOn,
		})
	}
}

// appendChoiceSets plans the request's explicit choice sets, synthesizes
// sets for choice attributes without one, and attaches each choice column
// right after its set.
func (p *SchemaPlanner) appendChoiceSets(plan *mdv.DeploymentPlan, custom []mdv.Entity, request mdv.DeploymentRequest) {
	provided := make(map[string]*mdv.ChoiceSet, len(request.ChoiceSets))
	for i := range request.ChoiceSets {
		provided[request.ChoiceSets[i].Name] = &request.ChoiceSets[i]
	}

	planned := make(map[string]bool)

	appendSet := func(cs mdv.ChoiceSet) string {
		setLogical := logicalName(request.PublisherPrefix, cs.Name)
		if planned[setLogical] {
			return setLogical
		}
		planned[setLogical] = true
		set := cs
		set.Global = true
		plan.Operations = append(plan.Operations, mdv.Operation{
			Kind:        mdv.OpCreateChoiceSet,
			Name:        setLogical,
			DisplayName: cs.Name,
			ChoiceSet:   &set,
		})
		return setLogical
	}

	// Explicit sets first, in request order.
	for i := range request.ChoiceSets {
		appendSet(request.ChoiceSets[i])
	}

	// Then choice attributes, each preceded by its set.
	for i := range custom {
		entity := &custom[i]
		entityLogical := plan.CustomEntities[entity.Name]

		for j := range entity.Attributes {
			attr := &entity.Attributes[j]
			if attr.Type != mdv.AttributeTypeChoice || attr.Name == entity.PrimaryAttribute {
				continue
			}

			var set mdv.ChoiceSet
			if cs, ok := provided[attr.ChoiceSet]; ok {
				set = *cs
			} else {
				set = placeholderChoiceSet(attr.ChoiceSet)
			}
			setLogical := appendSet(set)

			choiceAttr := *attr
			choiceAttr.ChoiceSet = setLogical
			plan.Operations = append(plan.Operations, mdv.Operation{
				Kind:        mdv.OpCreateAttribute,
				Name:        logicalName(request.PublisherPrefix, attr.Name),
				DisplayName: attr.Name,
				OwnerEntity: entityLogical,
				Attribute:   &choiceAttr,
				DependsOn:   []string{entityLogical},
			})
		}
	}
}

// placeholderChoiceSet backs a diagram choice attribute whose options were
// not supplied with the request. The author replaces the generated options
// in the target store afterwards.
func placeholderChoiceSet(name string) mdv.ChoiceSet {
	return mdv.ChoiceSet{
		Name: name,
		Options: []mdv.ChoiceOption{
			{Label: "Option 1", Value: mdv.ChoiceValueBase},
			{Label: "Option 2", Value: mdv.ChoiceValueBase + 1},
			{Label: "Option 3", Value: mdv.ChoiceValueBase + 2},
		},
	}
}

// resolve maps a diagram entity name to its logical name. custom reports
// whether the entity is created by this plan (and is therefore a hard
// dependency for operations referencing it).
func (p *SchemaPlanner) resolve(plan *mdv.DeploymentPlan, entityName string) (logical string, custom bool) {
	if l, ok := plan.CanonicalEntities[entityName]; ok {
		return l, false
	}
	return plan.CustomEntities[entityName], true
}

var _ mdv.Planner = (*SchemaPlanner)(nil)
