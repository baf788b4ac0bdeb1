// Package planner turns a parse result, the matcher's advisory output and a
// deployment request into a dependency-ordered DeploymentPlan.
//
// The plan's phase order is fixed: publisher, solution, canonical
// integration, custom entities, attributes, relationships, choice sets.
// Every operation referencing an entity appears after that entity's
// creation operation, which the executor relies on.
package planner
