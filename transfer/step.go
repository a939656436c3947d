package transfer

import (
	"github.com/smartcontractkit/datasync-transfer-framework/operations"
)

// runStep executes one stage of a run.
//
// A non-empty prior value means the stage completed in an earlier run: it is returned as is and no
// remote call is made. Otherwise the operation is executed once, and its failure, or a success
// without identifier, is returned as a *PipelineError tagged with stage.
func runStep[IN any](
	b operations.Bundle,
	deps Deps,
	stage Stage,
	prior string,
	op *operations.Operation[IN, string, Deps],
	input IN,
) (string, error) {
	if prior != "" {
		b.Logger.Debugw("Stage already completed, skipping", "stage", string(stage), "arn", prior)

		return prior, nil
	}

	if err := b.GetContext().Err(); err != nil {
		return "", &PipelineError{Stage: stage, Err: err}
	}

	report, err := operations.ExecuteOperation(b, op, deps, input)
	if err != nil {
		if report.Err != nil || report.Output == "" {
			b.Logger.Errorw("Stage failed", "stage", string(stage), "error", err)

			return "", &PipelineError{Stage: stage, Err: err}
		}
		// The remote call succeeded, only recording its report failed. The identifier is kept
		// because the resource it names already exists.
		b.Logger.Warnw("Failed to record stage report", "stage", string(stage), "error", err)
	}

	if report.Output == "" {
		b.Logger.Errorw("Stage returned no identifier", "stage", string(stage))

		return "", &PipelineError{Stage: stage, Err: ErrMalformedResponse}
	}

	b.Logger.Infow("Stage completed", "stage", string(stage), "arn", report.Output)

	return report.Output, nil
}
