// Package retry provides automatic retry logic with exponential backoff
// for transient failures of the target store's HTTP metadata API.
//
// The package supports pluggable error classification and backoff
// strategies, and an injectable sleep function so backoff timing is
// deterministic in tests.
//
// # Example Usage
//
//	classifier := retry.NewHTTPErrorClassifier()
//	strategy := retry.NewExponentialBackoff(4)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return client.CreateEntity(ctx, req)
//	})
//
// # Error Classification
//
// The ErrorClassifier interface determines which errors are transient
// (retryable) versus fatal (non-retryable). The HTTPErrorClassifier retries
// 429 and the transient server statuses 500, 502, 503, 504, plus
// network-level failures. Client-side 4xx statuses, including 409 conflicts,
// are surfaced immediately.
//
// # Rate limiting
//
// Errors that implement mdv.RetryAfterHint (429 responses with a
// Retry-After header) raise the wait for the next attempt to the
// server-requested delay when it exceeds the backoff floor.
package retry
