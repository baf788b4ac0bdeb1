package deploy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// Cleanup deletes the schema objects the plan would create, walking the plan
// in reverse so relationships go before the entities they connect. Canonical
// entities, the publisher and the solution are never deleted. Global choice
// sets are left in place and noted as a warning.
func (e *Executor) Cleanup(ctx context.Context, plan *mdv.DeploymentPlan) (*mdv.DeploymentResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is required: %w", mdv.ErrInvalidConfig)
	}

	result := &mdv.DeploymentResult{StartedAt: e.now()}
	prefix := plan.Request.PublisherPrefix + "_"

	e.logger.Info("cleaning up schema objects for solution %s", plan.Request.SolutionUniqueName)

	choiceSets := 0
	for i := len(plan.Operations) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return e.abort(result, fmt.Errorf("%w: %v", mdv.ErrDeploymentAborted, err))
		}

		op := plan.Operations[i]
		switch op.Kind {
		case mdv.OpCreateRelationship:
			e.record(result, op, e.deleteOutcome(op, e.client.DeleteRelationship(ctx, op.Name)))

		case mdv.OpCreateEntity:
			// Refuse to touch anything outside the publisher's namespace;
			// canonical and system entities never carry the prefix.
			if !strings.HasPrefix(op.Name, prefix) {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("refusing to delete entity %s outside prefix %s", op.Name, prefix))
				continue
			}
			e.record(result, op, e.deleteOutcome(op, e.client.DeleteEntity(ctx, op.Name)))

		case mdv.OpCreateChoiceSet:
			choiceSets++
		}
	}

	if choiceSets > 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%d global choice sets were left in place; remove them manually if unused", choiceSets))
	}

	result.Success = result.Counts.Failed == 0
	result.FinishedAt = e.now()
	return result, nil
}

// deleteOutcome maps a delete result: absent resources are recorded as
// skipped, everything else as deleted or failed.
func (e *Executor) deleteOutcome(op mdv.Operation, err error) mdv.OperationOutcome {
	outcome := mdv.OperationOutcome{Kind: op.Kind, Name: op.Name}
	switch {
	case err == nil:
		outcome.Status = mdv.StatusDeleted
		e.logger.Verbose("deleted %s %s", op.Kind, op.Name)
	case errors.Is(err, mdv.ErrNotFound):
		outcome.Status = mdv.StatusSkipped
	default:
		outcome.Status = mdv.StatusFailed
		outcome.Error = err.Error()
	}
	return outcome
}
