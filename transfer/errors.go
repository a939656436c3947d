package transfer

import (
	"errors"
	"fmt"
)

// Stage names one step of a provisioning run.
type Stage string

const (
	StagePolicyUpdate        Stage = "policy-update"
	StageSourceLocation      Stage = "source-location"
	StageDestinationLocation Stage = "destination-location"
	StageTaskCreate          Stage = "task-create"
	StageTaskStart           Stage = "task-start"
)

// resumableStages lists the stages that record an identifier in TransferState, in order.
var resumableStages = [4]Stage{StageSourceLocation, StageDestinationLocation, StageTaskCreate, StageTaskStart}

var (
	ErrPolicyUpdateFailed        = errors.New("bucket policy update failed")
	ErrSourceLocationFailed      = errors.New("source location registration failed")
	ErrDestinationLocationFailed = errors.New("destination location registration failed")
	ErrTaskCreateFailed          = errors.New("task creation failed")
	ErrTaskStartFailed           = errors.New("task start failed")

	// ErrMalformedResponse is the cause of a PipelineError when a remote call succeeded but did
	// not return the identifier the next stage depends on.
	ErrMalformedResponse = errors.New("malformed response: missing identifier")

	// ErrInvalidSpec is returned before any remote call when a TransferSpec is incomplete.
	ErrInvalidSpec = errors.New("invalid transfer spec")

	// ErrInvalidState is returned before any remote call when a resume token has a gap.
	ErrInvalidState = errors.New("invalid transfer state")

	// ErrAlreadyExists is returned by get-or-create collaborators that lost a creation race.
	// The lookup is expected to succeed when retried.
	ErrAlreadyExists = errors.New("resource already exists")
)

var stageErrors = map[Stage]error{
	StagePolicyUpdate:        ErrPolicyUpdateFailed,
	StageSourceLocation:      ErrSourceLocationFailed,
	StageDestinationLocation: ErrDestinationLocationFailed,
	StageTaskCreate:          ErrTaskCreateFailed,
	StageTaskStart:           ErrTaskStartFailed,
}

// PipelineError tags the stage a run halted at and wraps the collaborator failure.
//
// errors.Is matches both the stage sentinel (e.g. ErrTaskCreateFailed) and the wrapped cause.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the failed stage.
func (e *PipelineError) Is(target error) bool {
	sentinel, ok := stageErrors[e.Stage]

	return ok && target == sentinel
}

// FailedStage returns the stage carried by a *PipelineError in err's chain.
func FailedStage(err error) (Stage, bool) {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr.Stage, true
	}

	return "", false
}
