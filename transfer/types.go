package transfer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/smartcontractkit/datasync-transfer-framework/operations"
)

// Side identifies one end of a transfer.
type Side string

const (
	// SideUnspecified defers the choice to TransferOptions.Initiator.
	SideUnspecified Side = ""
	SideSource      Side = "source"
	SideDestination Side = "destination"
)

// ParseSide parses "source" or "destination". An empty string yields SideUnspecified.
func ParseSide(s string) (Side, error) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideUnspecified:
		return SideUnspecified, nil
	case SideSource:
		return SideSource, nil
	case SideDestination:
		return SideDestination, nil
	default:
		return SideUnspecified, fmt.Errorf("unknown side %q, want %q or %q", s, SideSource, SideDestination)
	}
}

// Opposite returns the other end of the transfer.
func (s Side) Opposite() Side {
	switch s {
	case SideSource:
		return SideDestination
	case SideDestination:
		return SideSource
	default:
		return SideUnspecified
	}
}

func (s Side) valid() bool {
	return s == SideSource || s == SideDestination
}

// TransferSpec describes a single bucket to bucket transfer. It is created by the caller and
// never mutated by the pipeline.
type TransferSpec struct {
	// Name is the display name of the DataSync task.
	Name string `json:"name" yaml:"name"`
	// Source is the name of the bucket objects are copied from.
	Source string `json:"source" yaml:"source"`
	// Destination is the name of the bucket objects are copied to.
	Destination string `json:"destination" yaml:"destination"`
	// SourcePrefix optionally restricts the source location to a subdirectory.
	SourcePrefix string `json:"sourcePrefix,omitempty" yaml:"source_prefix,omitempty"`
	// DestinationPrefix optionally places the copied objects under a subdirectory.
	DestinationPrefix string `json:"destinationPrefix,omitempty" yaml:"destination_prefix,omitempty"`
	// Initiator is the side whose account creates the DataSync resources. SideUnspecified falls
	// back to TransferOptions.Initiator.
	Initiator Side `json:"initiator,omitempty" yaml:"initiator,omitempty"`
}

// Validate checks that both buckets and the task are named.
func (s TransferSpec) Validate() error {
	var missing []string
	if s.Name == "" {
		missing = append(missing, "Name")
	}
	if s.Source == "" {
		missing = append(missing, "Source")
	}
	if s.Destination == "" {
		missing = append(missing, "Destination")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrInvalidSpec, strings.Join(missing, ", "))
	}
	if s.Initiator != SideUnspecified && !s.Initiator.valid() {
		return fmt.Errorf("%w: unknown initiator %q", ErrInvalidSpec, s.Initiator)
	}

	return nil
}

// TransferOptions is the configuration shared by every run of a Pipeline. It is resolved once,
// usually with ResolveOptions, and is safe to share between concurrent runs.
type TransferOptions struct {
	// RoleARN is the execution role DataSync assumes in the initiating account.
	RoleARN string `json:"roleArn" yaml:"role_arn"`
	// Principal is the ARN granted access on the bucket the initiating account does not own.
	Principal string `json:"principal" yaml:"principal"`
	// LogGroupARN is the CloudWatch log group the task writes to.
	LogGroupARN string `json:"logGroupArn" yaml:"log_group_arn"`
	// Initiator is the default initiating side for specs that leave it unspecified.
	Initiator Side `json:"initiator" yaml:"initiator"`
}

// Validate checks that all required options are set.
func (o TransferOptions) Validate() error {
	var missing []string
	if o.RoleARN == "" {
		missing = append(missing, "RoleARN")
	}
	if o.Principal == "" {
		missing = append(missing, "Principal")
	}
	if o.LogGroupARN == "" {
		missing = append(missing, "LogGroupARN")
	}
	if len(missing) > 0 {
		return errors.New("transfer.TransferOptions: missing required fields: " + strings.Join(missing, ", "))
	}
	if o.Initiator != SideUnspecified && !o.Initiator.valid() {
		return fmt.Errorf("transfer.TransferOptions: unknown initiator %q", o.Initiator)
	}

	return nil
}

// TransferState accumulates the identifiers created by a run, in stage order. It is returned after
// every run, complete or not, and doubles as the resume token of the next run.
//
// A later identifier is never populated unless all earlier ones are.
type TransferState struct {
	SourceLocationARN      string `json:"sourceLocationArn,omitempty" yaml:"source_location_arn,omitempty"`
	DestinationLocationARN string `json:"destinationLocationArn,omitempty" yaml:"destination_location_arn,omitempty"`
	TaskARN                string `json:"taskArn,omitempty" yaml:"task_arn,omitempty"`
	TaskExecutionARN       string `json:"taskExecutionArn,omitempty" yaml:"task_execution_arn,omitempty"`
}

func (s TransferState) ids() [4]string {
	return [4]string{s.SourceLocationARN, s.DestinationLocationARN, s.TaskARN, s.TaskExecutionARN}
}

// Completed returns the number of stages recorded in the state.
func (s TransferState) Completed() int {
	n := 0
	for _, id := range s.ids() {
		if id == "" {
			break
		}
		n++
	}

	return n
}

// Empty reports whether no identifier is recorded.
func (s TransferState) Empty() bool {
	return s == TransferState{}
}

// Complete reports whether all four identifiers are recorded.
func (s TransferState) Complete() bool {
	return s.Completed() == len(s.ids())
}

// Validate checks that the recorded identifiers form a contiguous prefix of the stage order.
func (s TransferState) Validate() error {
	ids := s.ids()
	n := s.Completed()
	for i := n; i < len(ids); i++ {
		if ids[i] != "" {
			return fmt.Errorf("%w: %s is set but %s is not", ErrInvalidState, resumableStages[i], resumableStages[n])
		}
	}

	return nil
}

// BatchItem is one entry of a batch: a spec and the state a previous run returned for it.
type BatchItem struct {
	Spec  TransferSpec
	Prior TransferState
}

// Result is the outcome of one run. State is always set, even when Err is not nil.
type Result struct {
	Spec  TransferSpec
	State TransferState
	Err   error
	// Reports holds one report per remote call made by the run. Skipped stages have no report.
	Reports []operations.Report[any, any]
}
