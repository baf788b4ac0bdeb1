package mdv

import (
	"fmt"
	"strings"
	"time"
)

// OutcomeStatus is the terminal state of a single plan operation.
type OutcomeStatus string

const (
	// StatusCreated means the resource was created by this run.
	StatusCreated OutcomeStatus = "created"

	// StatusExists means the resource already existed and the operation was
	// recorded as a no-op success.
	StatusExists OutcomeStatus = "already-exists"

	// StatusFailed means the operation failed; Error holds the reason.
	StatusFailed OutcomeStatus = "failed"

	// StatusSkipped means the operation was not attempted because a
	// dependency failed earlier in the run.
	StatusSkipped OutcomeStatus = "skipped"

	// StatusDeleted means the resource was removed by a cleanup run.
	StatusDeleted OutcomeStatus = "deleted"
)

// OperationOutcome records the result of one plan operation.
type OperationOutcome struct {
	Kind   OperationKind
	Name   string
	Status OutcomeStatus
	Error  string
}

// ResultCounts aggregates outcomes per resource kind.
type ResultCounts struct {
	EntitiesCreated        int
	EntitiesExisting       int
	AttributesCreated      int
	AttributesExisting     int
	RelationshipsCreated   int
	RelationshipsExisting  int
	ChoiceSetsCreated      int
	ChoiceSetsExisting     int
	CanonicalIntegrated    int
	Deleted                int
	Failed                 int
	Skipped                int
}

// DeploymentResult is the aggregate outcome of executing a DeploymentPlan.
// It is built incrementally by the executor and immutable once returned.
type DeploymentResult struct {
	// Success is true iff every phase that was attempted completed without a
	// hard abort. Per-item failures leave Success true as long as the
	// critical path (publisher, solution) succeeded.
	Success bool

	Outcomes []OperationOutcome
	Counts   ResultCounts

	// Errors holds item-level and phase-level failure messages in the order
	// they occurred.
	Errors []string

	// Warnings holds non-fatal notices collected during the run.
	Warnings []string

	StartedAt  time.Time
	FinishedAt time.Time
}

// Summary renders a short human-readable account of the run.
func (r *DeploymentResult) Summary() string {
	var b strings.Builder
	if r.Success {
		b.WriteString("Deployment succeeded")
	} else {
		b.WriteString("Deployment failed")
	}
	fmt.Fprintf(&b, ": %d entities created, %d already existed, %d attributes created, %d relationships created, %d choice sets created",
		r.Counts.EntitiesCreated, r.Counts.EntitiesExisting,
		r.Counts.AttributesCreated, r.Counts.RelationshipsCreated,
		r.Counts.ChoiceSetsCreated)
	if r.Counts.Deleted > 0 {
		fmt.Fprintf(&b, ", %d objects deleted", r.Counts.Deleted)
	}
	if r.Counts.CanonicalIntegrated > 0 {
		fmt.Fprintf(&b, ", %d canonical entities integrated", r.Counts.CanonicalIntegrated)
	}
	if r.Counts.Failed > 0 || r.Counts.Skipped > 0 {
		fmt.Fprintf(&b, " (%d failed, %d skipped)", r.Counts.Failed, r.Counts.Skipped)
	}
	if d := r.FinishedAt.Sub(r.StartedAt); d > 0 {
		fmt.Fprintf(&b, " in %s", d.Round(time.Millisecond))
	}
	return b.String()
}
