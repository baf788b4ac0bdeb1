package mdv

import "context"

// Parser turns diagram text into a typed entity/relationship graph.
// Recoverable syntax deviations are recorded as ValidationWarnings; a fatal
// *ParseError is returned only when the text cannot be tokenized at all.
type Parser interface {
	Parse(text string) (*ParseResult, error)
}

// Matcher compares parsed entities against the canonical entity registry.
// Matching is heuristic and deterministic for a fixed registry and input;
// it performs no network calls and never mutates the input entities.
type Matcher interface {
	// DetectCanonicalEntities returns at most one advisory match per source
	// entity, ordered by input entity order.
	DetectCanonicalEntities(entities []Entity) []CDMMatch
}

// Planner combines a parse result, matcher output, and a deployment request
// into a dependency-ordered DeploymentPlan. Re-planning from the same inputs
// produces an identical operation list.
type Planner interface {
	Plan(parse *ParseResult, matches []CDMMatch, request DeploymentRequest) (*DeploymentPlan, error)
}

// Deployer executes deployment plans against the target store.
type Deployer interface {
	// Execute walks the plan in phase order, aggregating per-item outcomes
	// without aborting the whole run unless a phase-blocking operation
	// (publisher, solution) fails.
	Execute(ctx context.Context, plan *DeploymentPlan) (*DeploymentResult, error)

	// Cleanup deletes the schema objects a plan would create, relationships
	// before entities. Canonical entities are never deleted.
	Cleanup(ctx context.Context, plan *DeploymentPlan) (*DeploymentResult, error)
}
