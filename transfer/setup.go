package transfer

import (
	"errors"
	"fmt"
	"time"

	"github.com/smartcontractkit/datasync-transfer-framework/operations"
)

// SetupConfig names the shared resources resolved by ResolveOptions.
type SetupConfig struct {
	// RoleName is the name of the DataSync execution role in the initiating account.
	RoleName string
	// LogGroupName is the name of the CloudWatch log group the tasks write to.
	LogGroupName string
	// Principal is granted access on foreign buckets. Defaults to the caller identity.
	Principal string
	// SourcePattern and DestinationPattern scope the inline policies of the role. Default "*".
	SourcePattern      string
	DestinationPattern string
	// Initiator is the default initiating side of the resulting TransferOptions.
	Initiator Side
	// Retry controls how lost creation races are retried.
	Retry operations.RetryPolicy
}

func (c *SetupConfig) applyDefaults() {
	if c.SourcePattern == "" {
		c.SourcePattern = "*"
	}
	if c.DestinationPattern == "" {
		c.DestinationPattern = "*"
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.Delay == 0 {
		c.Retry.Delay = 500 * time.Millisecond
	}
}

// ResolveOptions looks up the caller identity and gets or creates the execution role and the log
// group, once, for all the runs of a Pipeline.
//
// Get-or-create calls are retried only when they lose a creation race (ErrAlreadyExists): the
// next attempt finds the resource through its lookup. Any other failure is returned immediately.
func ResolveOptions(b operations.Bundle, deps SetupDeps, cfg SetupConfig) (TransferOptions, Identity, error) {
	if err := deps.validate(); err != nil {
		return TransferOptions{}, Identity{}, err
	}
	if cfg.RoleName == "" || cfg.LogGroupName == "" {
		return TransferOptions{}, Identity{}, errors.New("transfer.SetupConfig: RoleName and LogGroupName are required")
	}
	cfg.applyDefaults()

	idReport, err := operations.ExecuteOperation(b, accountIdentityOp, deps, struct{}{})
	if err != nil {
		return TransferOptions{}, Identity{}, fmt.Errorf("failed to look up caller identity: %w", err)
	}
	identity := idReport.Output
	if identity.AccountID == "" {
		return TransferOptions{}, Identity{}, fmt.Errorf("caller identity: %w", ErrMalformedResponse)
	}

	retry := operations.WithRetryConfig(operations.RetryConfig{Enabled: true, Policy: cfg.Retry})

	roleReport, err := operations.ExecuteOperation(b, getOrCreateRoleOp, deps, RoleRequest{
		Name:               cfg.RoleName,
		AccountID:          identity.AccountID,
		SourcePattern:      cfg.SourcePattern,
		DestinationPattern: cfg.DestinationPattern,
	}, retry)
	if err != nil {
		return TransferOptions{}, identity, fmt.Errorf("failed to get or create role %s: %w", cfg.RoleName, err)
	}
	if roleReport.Output == "" {
		return TransferOptions{}, identity, fmt.Errorf("role %s: %w", cfg.RoleName, ErrMalformedResponse)
	}

	logReport, err := operations.ExecuteOperation(b, getOrCreateLogGroupOp, deps, cfg.LogGroupName, retry)
	if err != nil {
		return TransferOptions{}, identity, fmt.Errorf("failed to get or create log group %s: %w", cfg.LogGroupName, err)
	}
	if logReport.Output == "" {
		return TransferOptions{}, identity, fmt.Errorf("log group %s: %w", cfg.LogGroupName, ErrMalformedResponse)
	}

	principal := cfg.Principal
	if principal == "" {
		principal = identity.PrincipalARN
	}

	b.Logger.Infow("Resolved shared transfer resources",
		"account", identity.AccountID, "role", roleReport.Output, "logGroup", logReport.Output)

	return TransferOptions{
		RoleARN:     roleReport.Output,
		Principal:   principal,
		LogGroupARN: logReport.Output,
		Initiator:   cfg.Initiator,
	}, identity, nil
}

func retryOnlyIfAlreadyExists(err error) error {
	if err == nil || errors.Is(err, ErrAlreadyExists) {
		return err
	}

	return operations.NewUnrecoverableError(err)
}
