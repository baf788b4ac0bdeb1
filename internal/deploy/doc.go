// Package deploy executes deployment plans against the target store.
//
// Every operation follows the ensure pattern: check for the resource, create
// it only when absent, and record a conflict as a no-op success. Re-running
// a deployment against an unchanged diagram therefore converges to zero
// creations. Failures on the critical path (publisher, solution, lost
// credentials) abort the run; item-level failures are aggregated and leave
// the rest of the plan running, with dependent operations skipped.
package deploy
