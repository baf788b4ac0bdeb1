package dataverse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

type countingProvider struct {
	calls     int
	token     string
	expiresOn time.Time
	err       error
}

func (p *countingProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	p.calls++
	if p.err != nil {
		return "", time.Time{}, p.err
	}
	return p.token, p.expiresOn, nil
}

func (p *countingProvider) String() string { return "counting" }

func TestCachedTokenSource_ReusesFreshToken(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	provider := &countingProvider{token: "tok-1", expiresOn: now.Add(time.Hour)}
	source := NewCachedTokenSource(provider, WithClock(func() time.Time { return now }))

	for i := 0; i < 3; i++ {
		token, err := source.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "tok-1", token)
	}

	assert.Equal(t, 1, provider.calls, "a fresh token must be served from cache")
}

func TestCachedTokenSource_RefreshesWithinSkew(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	provider := &countingProvider{token: "tok-1", expiresOn: now.Add(time.Hour)}
	source := NewCachedTokenSource(provider, WithClock(func() time.Time { return now }))

	_, err := source.Token(context.Background())
	require.NoError(t, err)

	// Inside the refresh skew of expiry the cached token is stale.
	now = provider.expiresOn.Add(-mdv.DefaultTokenRefreshSkew + time.Second)
	provider.token = "tok-2"
	provider.expiresOn = now.Add(time.Hour)

	token, err := source.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
	assert.Equal(t, 2, provider.calls)
}

func TestCachedTokenSource_SingleRefreshUnderConcurrency(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	provider := &countingProvider{token: "tok-1", expiresOn: now.Add(time.Hour)}
	source := NewCachedTokenSource(provider, WithClock(func() time.Time { return now }))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := source.Token(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, "tok-1", token)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, provider.calls, "concurrent callers must share one refresh")
}

func TestCachedTokenSource_PropagatesCredentialFailure(t *testing.T) {
	provider := &countingProvider{err: mdv.ErrCredentialFailed}
	source := NewCachedTokenSource(provider)

	_, err := source.Token(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, mdv.ErrCredentialFailed))
}

func TestCachedTokenSource_NilProviderPanics(t *testing.T) {
	assert.Panics(t, func() { NewCachedTokenSource(nil) })
}
