/*
Package transfer provisions the chain of DataSync resources needed to copy the objects of one S3
bucket into another, possibly owned by a different AWS account.

A run walks a fixed sequence of stages:

	policy-update -> source-location -> destination-location -> task-create -> task-start

Every stage is a single remote call executed as an operations.Operation. A run halts at the first
failing stage and returns the TransferState accumulated so far together with a *PipelineError
naming that stage. Feeding the returned TransferState back into a later run resumes the
provisioning: stages whose identifier is already recorded are skipped without any remote call.
The task-start stage is the exception and always runs, so every run that reaches it starts a new
task execution.

Shared resources (the DataSync execution role and the CloudWatch log group) are resolved once per
process with ResolveOptions and handed to the Pipeline through TransferOptions.

	opts, _, err := transfer.ResolveOptions(bundle, setupDeps, setupCfg)
	pipeline, err := transfer.NewPipeline(deps, opts, transfer.WithLogger(lggr))

	for res := range pipeline.RunBatch(ctx, items) {
		store.Put(ctx, statestore.Key(res.Spec), res.State)
	}
*/
package transfer
