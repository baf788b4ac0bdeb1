package deploy

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/LuiseFreese/mermaid-sub004/internal/planner"
	"github.com/LuiseFreese/mermaid-sub004/pkg/mdv"
)

// Executor implements mdv.Deployer. Entity creations within the
// create-entities phase run on a bounded worker pool; everything else is
// sequential, and outcomes are always recorded in plan order.
type Executor struct {
	client   mdv.MetadataClient
	logger   mdv.Logger
	progress mdv.ProgressSink
	workers  int
	now      func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithProgress sets the sink receiving progress events.
func WithProgress(sink mdv.ProgressSink) Option {
	return func(e *Executor) {
		e.progress = sink
	}
}

// WithWorkers bounds concurrent entity creations. Values below 1 mean
// sequential execution.
func WithWorkers(workers int) Option {
	return func(e *Executor) {
		if workers < 1 {
			workers = 1
		}
		e.workers = workers
	}
}

// NewExecutor creates an executor. Panics if client or logger is nil.
func NewExecutor(client mdv.MetadataClient, logger mdv.Logger, opts ...Option) *Executor {
	if client == nil {
		panic("client cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	e := &Executor{
		client:   client,
		logger:   logger,
		progress: mdv.NopProgress,
		workers:  mdv.DefaultEntityWorkers,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// runState carries cross-operation state through one execution.
type runState struct {
	publisher *mdv.PublisherRef
	solution  *mdv.SolutionRef

	// failed records logical names of custom entities whose creation failed;
	// operations depending on them are skipped.
	failed map[string]bool
}

// Execute walks the plan in order. It returns a populated result in every
// case; the error is non-nil only for hard aborts (publisher or solution
// failure, lost credentials, cancelled context).
func (e *Executor) Execute(ctx context.Context, plan *mdv.DeploymentPlan) (*mdv.DeploymentResult, error) {
	if plan == nil {
		return nil, fmt.Errorf("plan is required: %w", mdv.ErrInvalidConfig)
	}

	result := &mdv.DeploymentResult{StartedAt: e.now()}
	run := &runState{failed: make(map[string]bool)}

	e.logger.Info("deploying %d operations to %s", len(plan.Operations), plan.Request.EnvironmentURL)

	i := 0
	for i < len(plan.Operations) {
		if err := ctx.Err(); err != nil {
			return e.abort(result, fmt.Errorf("%w: %v", mdv.ErrDeploymentAborted, err))
		}

		op := plan.Operations[i]

		// Consecutive entity creations run concurrently.
		if op.Kind == mdv.OpCreateEntity {
			j := i
			for j < len(plan.Operations) && plan.Operations[j].Kind == mdv.OpCreateEntity {
				j++
			}
			if err := e.executeEntityPhase(ctx, plan, plan.Operations[i:j], run, result); err != nil {
				return e.abort(result, err)
			}
			i = j
			continue
		}

		outcome, err := e.executeOne(ctx, plan, op, run)
		e.record(result, op, outcome)
		if err != nil {
			return e.abort(result, fmt.Errorf("%w: %s %q: %v", mdv.ErrDeploymentAborted, op.Kind, op.Name, err))
		}
		i++
	}

	result.Success = true
	result.FinishedAt = e.now()
	e.logger.Info("%s", result.Summary())
	return result, nil
}

func (e *Executor) abort(result *mdv.DeploymentResult, err error) (*mdv.DeploymentResult, error) {
	if errors.Is(err, mdv.ErrCredentialFailed) {
		err = fmt.Errorf("%w: %v", mdv.ErrCredentialFailed, err)
	}
	result.Success = false
	result.FinishedAt = e.now()
	result.Errors = append(result.Errors, err.Error())
	e.logger.Error("%v", err)
	return result, err
}

// executeOne runs a single non-entity operation. The returned error is
// non-nil only when the failure must abort the whole run.
func (e *Executor) executeOne(ctx context.Context, plan *mdv.DeploymentPlan, op mdv.Operation, run *runState) (mdv.OperationOutcome, error) {
	if skipped := e.skipForFailedDependency(op, run); skipped != nil {
		return *skipped, nil
	}

	e.publish(op, "starting")

	switch op.Kind {
	case mdv.OpEnsurePublisher:
		return e.ensurePublisher(ctx, plan, op, run)
	case mdv.OpEnsureSolution:
		return e.ensureSolution(ctx, plan, op, run)
	case mdv.OpIntegrateCanonical:
		return e.integrateCanonical(ctx, plan, op), nil
	case mdv.OpCreateAttribute:
		err := e.createAttribute(ctx, plan, op)
		return e.itemOutcome(op, err), credentialAbort(err)
	case mdv.OpCreateRelationship:
		err := e.createRelationship(ctx, plan, op)
		return e.itemOutcome(op, err), credentialAbort(err)
	case mdv.OpCreateChoiceSet:
		err := e.createChoiceSet(ctx, plan, op)
		return e.itemOutcome(op, err), credentialAbort(err)
	}

	return mdv.OperationOutcome{
		Kind:   op.Kind,
		Name:   op.Name,
		Status: mdv.StatusFailed,
		Error:  fmt.Sprintf("unknown operation kind %q", op.Kind),
	}, nil
}

// itemOutcome converts an item-level create result into an outcome.
// Credential loss is promoted to a hard abort by the caller via the error in
// the outcome; all other failures are aggregated.
func (e *Executor) itemOutcome(op mdv.Operation, err error) mdv.OperationOutcome {
	outcome := mdv.OperationOutcome{Kind: op.Kind, Name: op.Name}
	switch {
	case err == nil:
		outcome.Status = mdv.StatusCreated
	case errors.Is(err, errAlreadyExisted):
		outcome.Status = mdv.StatusExists
	case errors.Is(err, mdv.ErrAlreadyExists):
		outcome.Status = mdv.StatusExists
	default:
		outcome.Status = mdv.StatusFailed
		outcome.Error = err.Error()
	}
	return outcome
}

// errAlreadyExisted distinguishes "existence check said present" from a
// create-time conflict; both record StatusExists.
var errAlreadyExisted = errors.New("resource already present")

// credentialAbort promotes a credential failure to a run-aborting error;
// every other item-level error stays aggregated.
func credentialAbort(err error) error {
	if errors.Is(err, mdv.ErrCredentialFailed) {
		return err
	}
	return nil
}

func (e *Executor) skipForFailedDependency(op mdv.Operation, run *runState) *mdv.OperationOutcome {
	for _, dep := range op.DependsOn {
		if run.failed[dep] {
			e.logger.Verbose("skipping %s %s: dependency %s failed", op.Kind, op.Name, dep)
			return &mdv.OperationOutcome{
				Kind:   op.Kind,
				Name:   op.Name,
				Status: mdv.StatusSkipped,
				Error:  fmt.Sprintf("dependency %s failed", dep),
			}
		}
	}
	return nil
}

func (e *Executor) ensurePublisher(ctx context.Context, plan *mdv.DeploymentPlan, op mdv.Operation, run *runState) (mdv.OperationOutcome, error) {
	outcome := mdv.OperationOutcome{Kind: op.Kind, Name: op.Name}

	ref, err := e.client.FindPublisher(ctx, op.Name)
	if err != nil {
		outcome.Status = mdv.StatusFailed
		outcome.Error = err.Error()
		return outcome, err
	}

	if ref == nil {
		ref, err = e.client.CreatePublisher(ctx, mdv.PublisherRequest{
			UniqueName:        op.Name,
			DisplayName:       op.DisplayName,
			Prefix:            plan.Request.PublisherPrefix,
			OptionValuePrefix: optionValuePrefix(plan.Request.PublisherPrefix),
		})
		if errors.Is(err, mdv.ErrAlreadyExists) {
			// Lost the race; someone else created it.
			ref, err = e.client.FindPublisher(ctx, op.Name)
		}
		if err != nil {
			outcome.Status = mdv.StatusFailed
			outcome.Error = err.Error()
			return outcome, err
		}
		outcome.Status = mdv.StatusCreated
	} else {
		outcome.Status = mdv.StatusExists
	}

	run.publisher = ref
	return outcome, nil
}

func (e *Executor) ensureSolution(ctx context.Context, plan *mdv.DeploymentPlan, op mdv.Operation, run *runState) (mdv.OperationOutcome, error) {
	outcome := mdv.OperationOutcome{Kind: op.Kind, Name: op.Name}

	if run.publisher == nil {
		err := fmt.Errorf("no publisher resolved before solution %q", op.Name)
		outcome.Status = mdv.StatusFailed
		outcome.Error = err.Error()
		return outcome, err
	}

	ref, err := e.client.FindSolution(ctx, op.Name)
	if err != nil {
		outcome.Status = mdv.StatusFailed
		outcome.Error = err.Error()
		return outcome, err
	}

	if ref == nil {
		ref, err = e.client.CreateSolution(ctx, mdv.SolutionRequest{
			UniqueName:  op.Name,
			DisplayName: op.DisplayName,
			PublisherID: run.publisher.ID,
		})
		if errors.Is(err, mdv.ErrAlreadyExists) {
			ref, err = e.client.FindSolution(ctx, op.Name)
		}
		if err != nil {
			outcome.Status = mdv.StatusFailed
			outcome.Error = err.Error()
			return outcome, err
		}
		outcome.Status = mdv.StatusCreated
	} else {
		outcome.Status = mdv.StatusExists
	}

	run.solution = ref
	return outcome, nil
}

// integrateCanonical adds an existing canonical entity to the solution. A
// missing canonical entity is an item-level failure; the custom part of the
// deployment still proceeds.
func (e *Executor) integrateCanonical(ctx context.Context, plan *mdv.DeploymentPlan, op mdv.Operation) mdv.OperationOutcome {
	outcome := mdv.OperationOutcome{Kind: op.Kind, Name: op.Name}

	ref, err := e.client.FindEntity(ctx, op.Name)
	if err != nil {
		outcome.Status = mdv.StatusFailed
		outcome.Error = err.Error()
		return outcome
	}
	if ref == nil {
		outcome.Status = mdv.StatusFailed
		outcome.Error = fmt.Sprintf("canonical entity %s not found in environment", op.Name)
		return outcome
	}

	err = e.client.AddSolutionComponent(ctx, mdv.SolutionComponentRequest{
		SolutionUniqueName: plan.Request.SolutionUniqueName,
		ComponentID:        ref.MetadataID,
		ComponentType:      mdv.ComponentTypeEntity,
	})
	switch {
	case err == nil:
		outcome.Status = mdv.StatusCreated
	case errors.Is(err, mdv.ErrAlreadyExists):
		outcome.Status = mdv.StatusExists
	default:
		outcome.Status = mdv.StatusFailed
		outcome.Error = err.Error()
	}
	return outcome
}

// executeEntityPhase creates custom entities on a bounded worker pool.
// Outcomes land in the result in plan order regardless of completion order.
func (e *Executor) executeEntityPhase(ctx context.Context, plan *mdv.DeploymentPlan, ops []mdv.Operation, run *runState, result *mdv.DeploymentResult) error {
	workers := e.workers
	if workers > len(ops) {
		workers = len(ops)
	}

	outcomes := make([]mdv.OperationOutcome, len(ops))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range ops {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = e.createEntity(ctx, plan, ops[i])
		}(i)
	}
	wg.Wait()

	var credentialErr error
	for i, outcome := range outcomes {
		e.record(result, ops[i], outcome)
		if outcome.Status == mdv.StatusFailed {
			run.failed[ops[i].Name] = true
			if credentialErr == nil && strings.Contains(outcome.Error, mdv.ErrCredentialFailed.Error()) {
				credentialErr = fmt.Errorf("%w: %s", mdv.ErrCredentialFailed, outcome.Error)
			}
		}
	}
	return credentialErr
}

func (e *Executor) createEntity(ctx context.Context, plan *mdv.DeploymentPlan, op mdv.Operation) mdv.OperationOutcome {
	e.publish(op, "starting")
	outcome := mdv.OperationOutcome{Kind: op.Kind, Name: op.Name}

	ref, err := e.client.FindEntity(ctx, op.Name)
	if err != nil {
		outcome.Status = mdv.StatusFailed
		outcome.Error = err.Error()
		return outcome
	}
	if ref != nil {
		outcome.Status = mdv.StatusExists
		return outcome
	}

	req, err := e.entityRequest(plan, op)
	if err != nil {
		outcome.Status = mdv.StatusFailed
		outcome.Error = err.Error()
		return outcome
	}

	err = e.client.CreateEntity(ctx, req)
	switch {
	case err == nil:
		outcome.Status = mdv.StatusCreated
	case errors.Is(err, mdv.ErrAlreadyExists):
		outcome.Status = mdv.StatusExists
	default:
		outcome.Status = mdv.StatusFailed
		outcome.Error = err.Error()
	}
	return outcome
}

// entityRequest builds the create payload including the primary name column.
func (e *Executor) entityRequest(plan *mdv.DeploymentPlan, op mdv.Operation) (mdv.EntityRequest, error) {
	if op.Entity == nil {
		return mdv.EntityRequest{}, fmt.Errorf("entity operation %q carries no entity", op.Name)
	}

	primary, ok := op.Entity.Attribute(op.Entity.PrimaryAttribute)
	if !ok {
		return mdv.EntityRequest{}, fmt.Errorf("entity %q has no primary attribute", op.Entity.Name)
	}

	prefix := plan.Request.PublisherPrefix
	return mdv.EntityRequest{
		SolutionUniqueName: plan.Request.SolutionUniqueName,
		LogicalName:        op.Name,
		SchemaName:         op.Name,
		DisplayName:        op.DisplayName,
		PrimaryAttribute: mdv.AttributeRequest{
			LogicalName: planner.LogicalName(prefix, primary.Name),
			SchemaName:  planner.LogicalName(prefix, primary.Name),
			DisplayName: primary.Name,
			Description: primary.Description,
			// The target store requires a text primary name column.
			Type:     mdv.AttributeTypeText,
			Required: true,
		},
	}, nil
}

func (e *Executor) createAttribute(ctx context.Context, plan *mdv.DeploymentPlan, op mdv.Operation) error {
	exists, err := e.client.AttributeExists(ctx, op.OwnerEntity, op.Name)
	if err != nil {
		return err
	}
	if exists {
		return errAlreadyExisted
	}

	attr := op.Attribute
	if attr == nil {
		return fmt.Errorf("attribute operation %q carries no attribute", op.Name)
	}

	return e.client.CreateAttribute(ctx, mdv.AttributeRequest{
		SolutionUniqueName: plan.Request.SolutionUniqueName,
		EntityLogicalName:  op.OwnerEntity,
		LogicalName:        op.Name,
		SchemaName:         op.Name,
		DisplayName:        op.DisplayName,
		Description:        attr.Description,
		Type:               attr.Type,
		Required:           attr.Required,
		ChoiceSetName:      attr.ChoiceSet,
	})
}

func (e *Executor) createRelationship(ctx context.Context, plan *mdv.DeploymentPlan, op mdv.Operation) error {
	exists, err := e.client.RelationshipExists(ctx, op.Name)
	if err != nil {
		return err
	}
	if exists {
		return errAlreadyExisted
	}

	rel := op.Relationship
	if rel == nil {
		return fmt.Errorf("relationship operation %q carries no relationship", op.Name)
	}

	if rel.Kind == mdv.ManyToMany {
		return e.client.CreateManyToMany(ctx, mdv.ManyToManyRequest{
			SolutionUniqueName: plan.Request.SolutionUniqueName,
			SchemaName:         rel.SchemaName,
			Entity1:            rel.ReferencedEntity,
			Entity2:            rel.ReferencingEntity,
		})
	}

	return e.client.CreateOneToMany(ctx, mdv.OneToManyRequest{
		SolutionUniqueName: plan.Request.SolutionUniqueName,
		SchemaName:         rel.SchemaName,
		ReferencedEntity:   rel.ReferencedEntity,
		ReferencingEntity:  rel.ReferencingEntity,
		LookupSchemaName:   rel.LookupAttribute,
		LookupDisplayName:  rel.LookupDisplayName,
		Cascade:            rel.Cascade,
	})
}

func (e *Executor) createChoiceSet(ctx context.Context, plan *mdv.DeploymentPlan, op mdv.Operation) error {
	exists, err := e.client.ChoiceSetExists(ctx, op.Name)
	if err != nil {
		return err
	}
	if exists {
		return errAlreadyExisted
	}

	set := op.ChoiceSet
	if set == nil {
		return fmt.Errorf("choice set operation %q carries no choice set", op.Name)
	}

	return e.client.CreateChoiceSet(ctx, mdv.ChoiceSetRequest{
		SolutionUniqueName: plan.Request.SolutionUniqueName,
		Name:               op.Name,
		DisplayName:        op.DisplayName,
		Options:            set.Options,
	})
}

// record appends the outcome and updates the aggregate counts.
func (e *Executor) record(result *mdv.DeploymentResult, op mdv.Operation, outcome mdv.OperationOutcome) {
	result.Outcomes = append(result.Outcomes, outcome)

	switch outcome.Status {
	case mdv.StatusFailed:
		result.Counts.Failed++
		result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %s", op.Kind, op.Name, outcome.Error))
		e.publish(op, "failed")
		return
	case mdv.StatusSkipped:
		result.Counts.Skipped++
		e.publish(op, "skipped")
		return
	case mdv.StatusDeleted:
		result.Counts.Deleted++
		e.publish(op, "deleted")
		return
	}

	created := outcome.Status == mdv.StatusCreated
	switch op.Kind {
	case mdv.OpCreateEntity:
		if created {
			result.Counts.EntitiesCreated++
		} else {
			result.Counts.EntitiesExisting++
		}
	case mdv.OpCreateAttribute:
		if created {
			result.Counts.AttributesCreated++
		} else {
			result.Counts.AttributesExisting++
		}
	case mdv.OpCreateRelationship:
		if created {
			result.Counts.RelationshipsCreated++
		} else {
			result.Counts.RelationshipsExisting++
		}
	case mdv.OpCreateChoiceSet:
		if created {
			result.Counts.ChoiceSetsCreated++
		} else {
			result.Counts.ChoiceSetsExisting++
		}
	case mdv.OpIntegrateCanonical:
		result.Counts.CanonicalIntegrated++
	}

	e.publish(op, string(outcome.Status))
}

func (e *Executor) publish(op mdv.Operation, message string) {
	e.progress.Publish(mdv.ProgressEvent{
		Step:      string(op.Kind),
		Message:   message,
		Detail:    op.Name,
		Timestamp: e.now(),
	})
}

// optionValuePrefix derives a deterministic option value prefix in
// [10000, 99999] from the customization prefix.
func optionValuePrefix(prefix string) int {
	h := fnv.New32a()
	h.Write([]byte(prefix))
	return 10_000 + int(h.Sum32()%90_000)
}

var _ mdv.Deployer = (*Executor)(nil)
