package transfer

import (
	"context"
	"fmt"

	"github.com/smartcontractkit/datasync-transfer-framework/operations"
	"github.com/smartcontractkit/datasync-transfer-framework/pkg/logger"
)

// Pipeline provisions and starts DataSync transfers. A Pipeline holds no per-run state and is
// safe for concurrent use as long as every run owns its TransferState.
type Pipeline struct {
	deps     Deps
	opts     TransferOptions
	lggr     logger.Logger
	reporter operations.Reporter
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the logger of the Pipeline. Defaults to a no-op logger.
func WithLogger(lggr logger.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.lggr = lggr
	}
}

// WithReporter sets the Reporter every executed stage is recorded in. Defaults to a
// MemoryReporter owned by the Pipeline.
func WithReporter(reporter operations.Reporter) PipelineOption {
	return func(p *Pipeline) {
		p.reporter = reporter
	}
}

// NewPipeline creates a Pipeline calling deps with the shared opts.
func NewPipeline(deps Deps, opts TransferOptions, options ...PipelineOption) (*Pipeline, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		deps:     deps,
		opts:     opts,
		lggr:     logger.Nop(),
		reporter: operations.NewMemoryReporter(),
	}
	for _, opt := range options {
		opt(p)
	}

	return p, nil
}

// Reporter returns the Reporter the Pipeline records stage executions in.
func (p *Pipeline) Reporter() operations.Reporter {
	return p.reporter
}

// Run provisions the transfer described by spec, resuming from prior. The returned state is
// always usable as the prior of a later run, including when err is not nil.
func (p *Pipeline) Run(ctx context.Context, spec TransferSpec, prior TransferState) (TransferState, error) {
	res := p.Execute(ctx, BatchItem{Spec: spec, Prior: prior})

	return res.State, res.Err
}

// Execute runs a single batch item and returns its Result, including the reports of the remote
// calls it made.
func (p *Pipeline) Execute(ctx context.Context, item BatchItem) Result {
	recent := operations.NewRecentReporter(p.reporter)
	lggr := p.lggr.With("transfer", item.Spec.Name)
	b := operations.NewBundle(func() context.Context { return ctx }, lggr, recent)

	state, err := p.run(b, item.Spec, item.Prior)
	if err != nil {
		lggr.Errorw("Transfer provisioning halted", "completed", state.Completed(), "error", err)
	} else {
		lggr.Infow("Transfer started", "execution", state.TaskExecutionARN)
	}

	return Result{
		Spec:    item.Spec,
		State:   state,
		Err:     err,
		Reports: recent.GetRecentReports(),
	}
}

func (p *Pipeline) run(b operations.Bundle, spec TransferSpec, prior TransferState) (TransferState, error) {
	state := prior
	if err := spec.Validate(); err != nil {
		return state, err
	}
	if err := prior.Validate(); err != nil {
		return state, err
	}
	initiator, err := p.initiator(spec)
	if err != nil {
		return state, err
	}

	// The grant is applied before the first identifier can be recorded, so any recorded identifier
	// means it is already in place.
	if state.Empty() {
		grant := p.policyGrant(spec, initiator)
		if _, err = runStep(b, p.deps, StagePolicyUpdate, "", updateBucketPolicyOp, grant); err != nil {
			return state, err
		}
	} else {
		b.Logger.Debugw("Stage already completed, skipping", "stage", string(StagePolicyUpdate))
	}

	state.SourceLocationARN, err = runStep(b, p.deps, StageSourceLocation, state.SourceLocationARN,
		registerLocationOp, LocationRequest{
			Bucket:       spec.Source,
			RoleARN:      p.opts.RoleARN,
			Subdirectory: spec.SourcePrefix,
		})
	if err != nil {
		return state, err
	}

	state.DestinationLocationARN, err = runStep(b, p.deps, StageDestinationLocation, state.DestinationLocationARN,
		registerLocationOp, LocationRequest{
			Bucket:       spec.Destination,
			RoleARN:      p.opts.RoleARN,
			Subdirectory: spec.DestinationPrefix,
		})
	if err != nil {
		return state, err
	}

	state.TaskARN, err = runStep(b, p.deps, StageTaskCreate, state.TaskARN,
		createTaskOp, TaskRequest{
			Name:                   spec.Name,
			SourceLocationARN:      state.SourceLocationARN,
			DestinationLocationARN: state.DestinationLocationARN,
			LogGroupARN:            p.opts.LogGroupARN,
		})
	if err != nil {
		return state, err
	}

	// Every run that gets here starts a new execution, a recorded one is superseded.
	if state.TaskExecutionARN != "" {
		b.Logger.Infow("Starting a new execution of an already started task",
			"task", state.TaskARN, "previous", state.TaskExecutionARN)
	}
	state.TaskExecutionARN, err = runStep(b, p.deps, StageTaskStart, "",
		startTaskOp, StartRequest{TaskARN: state.TaskARN})
	if err != nil {
		return state, err
	}

	return state, nil
}

func (p *Pipeline) initiator(spec TransferSpec) (Side, error) {
	side := spec.Initiator
	if side == SideUnspecified {
		side = p.opts.Initiator
	}
	if !side.valid() {
		return SideUnspecified, fmt.Errorf("%w: no initiator set for %s", ErrInvalidSpec, spec.Name)
	}

	return side, nil
}

// policyGrant targets the bucket owned by the side that does not initiate the transfer. A bucket
// written to gets read-write access, a bucket read from gets read access.
func (p *Pipeline) policyGrant(spec TransferSpec, initiator Side) PolicyGrant {
	grant := PolicyGrant{
		Owner:     initiator.Opposite(),
		Principal: p.opts.Principal,
		RoleARN:   p.opts.RoleARN,
	}
	if grant.Owner == SideDestination {
		grant.Bucket = spec.Destination
		grant.Access = AccessReadWrite
	} else {
		grant.Bucket = spec.Source
		grant.Access = AccessRead
	}

	return grant
}
