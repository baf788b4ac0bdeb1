package mdv

import (
	"context"
	"time"
)

// TokenProvider abstracts bearer credential acquisition for the target
// store's audience. This interface enables testability (mock providers) and
// keeps the dual-credential bootstrap concern outside the engine.
type TokenProvider interface {
	// GetToken acquires a bearer token for the target store.
	// Returns the token string and its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a human-readable description for logging.
	// Must NOT include secrets. Example: "ServicePrincipal(tenant=xxx, client=yyy)"
	String() string
}
