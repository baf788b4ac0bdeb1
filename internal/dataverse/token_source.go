package dataverse

import (
	"context"
	"sync"
	"time"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// CachedTokenSource caches a provider's bearer token and reuses it until it
// is within the refresh skew of expiry. The mutex serializes refreshes, so
// at most one provider call is in flight at a time; concurrent callers block
// and receive the freshly cached token.
type CachedTokenSource struct {
	provider mdv.TokenProvider
	skew     time.Duration
	now      func() time.Time

	mu        sync.Mutex
	token     string
	expiresOn time.Time
}

// TokenSourceOption configures a CachedTokenSource.
type TokenSourceOption func(*CachedTokenSource)

// WithRefreshSkew sets how long before expiry the cached token is treated as
// stale.
func WithRefreshSkew(skew time.Duration) TokenSourceOption {
	return func(s *CachedTokenSource) {
		s.skew = skew
	}
}

// WithClock sets the time source. Intended for tests.
func WithClock(now func() time.Time) TokenSourceOption {
	return func(s *CachedTokenSource) {
		s.now = now
	}
}

// NewCachedTokenSource wraps a provider with caching. Panics if provider is
// nil.
func NewCachedTokenSource(provider mdv.TokenProvider, opts ...TokenSourceOption) *CachedTokenSource {
	if provider == nil {
		panic("provider cannot be nil")
	}
	s := &CachedTokenSource{
		provider: provider,
		skew:     mdv.DefaultTokenRefreshSkew,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Token returns the cached token, refreshing it first when it is missing or
// within the skew of expiry.
func (s *CachedTokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.expiresOn.Sub(s.now()) > s.skew {
		return s.token, nil
	}

	token, expiresOn, err := s.provider.GetToken(ctx)
	if err != nil {
		return "", err
	}

	s.token = token
	s.expiresOn = expiresOn
	return s.token, nil
}
