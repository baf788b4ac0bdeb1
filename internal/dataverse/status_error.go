package dataverse

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// StatusError is a non-2xx response from the metadata API. It carries the
// HTTP status for the retry classifier and the server-requested Retry-After
// delay, when present, for the retry executor.
type StatusError struct {
	// Status is the HTTP status code.
	Status int

	// Code is the OData error code, if the body carried one.
	Code string

	// Message is the OData error message, or the raw body when the response
	// was not OData-shaped.
	Message string

	// Method and Path identify the failed request.
	Method string
	Path   string

	retryAfter    time.Duration
	hasRetryAfter bool
}

func (e *StatusError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s %s: %d (%s): %s", e.Method, e.Path, e.Status, e.Code, msg)
	}
	return fmt.Sprintf("%s %s: %d: %s", e.Method, e.Path, e.Status, msg)
}

// HTTPStatus reports the status code for the retry classifier.
func (e *StatusError) HTTPStatus() int { return e.Status }

// RetryAfter reports the server-requested minimum wait, if the response
// carried a Retry-After header.
func (e *StatusError) RetryAfter() (time.Duration, bool) {
	return e.retryAfter, e.hasRetryAfter
}

// Unwrap maps conflicts onto the already-exists sentinel so callers can
// detect them with errors.Is and record a no-op success.
func (e *StatusError) Unwrap() error {
	if e.Status == http.StatusConflict || isDuplicateMessage(e.Message) {
		return mdv.ErrAlreadyExists
	}
	if e.Status == http.StatusNotFound {
		return mdv.ErrNotFound
	}
	return nil
}

// isDuplicateMessage catches duplicate-component errors the API reports as
// 400 instead of 409.
func isDuplicateMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "already exists") ||
		strings.Contains(lower, "duplicate")
}

// parseRetryAfter parses a Retry-After header value, either delta-seconds or
// an HTTP date. ok is false for empty or malformed values.
func parseRetryAfter(value string, now time.Time) (delay time.Duration, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}

	if at, err := http.ParseTime(value); err == nil {
		d := at.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}

	return 0, false
}
