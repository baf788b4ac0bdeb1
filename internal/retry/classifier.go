package retry

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"syscall"
)

// HTTPStatusError is implemented by errors that carry an HTTP status code,
// such as the metadata client's status errors. The classifier uses it to
// decide retryability without depending on the client package.
type HTTPStatusError interface {
	HTTPStatus() int
}

// HTTPErrorClassifier implements mdv.ErrorClassifier for the target store's
// HTTP metadata API.
//
// Retryable: 429 and the transient server errors 500, 502, 503, 504, plus
// network-level failures (timeouts, refused/reset connections, DNS).
// Everything else — including 400, 403, 404 and 409 — is surfaced to the
// caller immediately.
type HTTPErrorClassifier struct{}

// NewHTTPErrorClassifier creates a new HTTP error classifier.
func NewHTTPErrorClassifier() *HTTPErrorClassifier {
	return &HTTPErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *HTTPErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var statusErr HTTPStatusError
	if errors.As(err, &statusErr) {
		return isTransientStatus(statusErr.HTTPStatus())
	}

	if c.isNetworkError(err) {
		return true
	}

	return c.isConnectionError(err)
}

// isTransientStatus reports whether the HTTP status code indicates a
// transient condition worth retrying.
func isTransientStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// isNetworkError checks for network-level errors.
func (c *HTTPErrorClassifier) isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Temporary() || opErr.Timeout() {
			return true
		}

		if opErr.Err != nil {
			if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
				return true
			}
			if errors.Is(opErr.Err, syscall.ECONNRESET) {
				return true
			}
			if errors.Is(opErr.Err, syscall.ENETUNREACH) {
				return true
			}
			if errors.Is(opErr.Err, syscall.EHOSTUNREACH) {
				return true
			}
		}
	}

	return false
}

// isConnectionError checks for connection-level failures that surface only
// as message text (e.g. wrapped by net/http).
func (c *HTTPErrorClassifier) isConnectionError(err error) bool {
	errMsg := strings.ToLower(err.Error())

	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"connection timeout",
		"no such host",
		"network is unreachable",
		"i/o timeout",
		"broken pipe",
		"unexpected eof",
		"server closed idle connection",
		"tls handshake timeout",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return false
}
