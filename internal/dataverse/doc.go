// Package dataverse implements the HTTP metadata client for the Dataverse
// Web API. It translates the typed requests in pkg/mdv into OData payloads,
// authenticates with cached bearer tokens, and retries transient failures
// (429 and 5xx) honoring Retry-After.
//
// Conflict responses (409) unwrap to mdv.ErrAlreadyExists so callers can
// treat them as no-op successes.
package dataverse
