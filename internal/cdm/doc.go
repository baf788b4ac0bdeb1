// Package cdm matches parsed diagram entities against a fixed registry of
// Common Data Model entity templates.
//
// Matching is heuristic and purely local: name similarity against template
// names and synonyms, combined with attribute overlap. For a fixed registry
// and input the result is deterministic. Matches are advisory; the planner
// decides whether to apply them based on the caller's CDM-integration
// choice.
package cdm
