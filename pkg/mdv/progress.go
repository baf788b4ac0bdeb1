package mdv

import "time"

// ProgressEvent is one entry of the ordered, one-way progress stream emitted
// while a deployment advances. No acknowledgement is expected from consumers.
type ProgressEvent struct {
	// Step is the phase the executor is in, e.g. "create-entity".
	Step string

	// Message is a human-readable description of the event.
	Message string

	// Detail carries the affected object's logical name or extra context.
	Detail string

	Timestamp time.Time
}

// ProgressSink receives progress events. Implementations must not block for
// long; the executor publishes synchronously.
type ProgressSink interface {
	Publish(event ProgressEvent)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(event ProgressEvent)

// Publish calls the wrapped function.
func (f ProgressFunc) Publish(event ProgressEvent) { f(event) }

// NopProgress discards all events.
var NopProgress ProgressSink = ProgressFunc(func(ProgressEvent) {})
