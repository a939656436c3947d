package operations

import (
	"errors"
	"time"

	"github.com/avast/retry-go/v4"
)

// ExecuteConfig is the configuration for the ExecuteOperation function.
type ExecuteConfig struct {
	retryConfig RetryConfig
}

type ExecuteOption func(*ExecuteConfig)

type RetryConfig struct {
	// Enabled determines if the retry is enabled for the operation.
	Enabled bool

	// Policy is the retry policy to control the behavior of the retry.
	Policy RetryPolicy
}

// newDisabledRetryConfig returns a default retry configuration that is initially disabled.
func newDisabledRetryConfig() RetryConfig {
	return RetryConfig{
		Enabled: false,
		Policy: RetryPolicy{
			MaxAttempts: 5,
		},
	}
}

// RetryPolicy defines the arguments to control the retry behavior.
type RetryPolicy struct {
	MaxAttempts uint
	// Delay is the base delay between attempts. Zero keeps the retry-go default.
	Delay time.Duration
}

// options returns the 'avast/retry' functional options for the retry policy.
func (p RetryPolicy) options() []retry.Option {
	opts := []retry.Option{
		retry.Attempts(p.MaxAttempts),
		retry.LastErrorOnly(true),
	}
	if p.Delay > 0 {
		opts = append(opts, retry.Delay(p.Delay))
	}

	return opts
}

// WithRetry is an ExecuteOption that enables the default retry for the operation.
func WithRetry() ExecuteOption {
	return func(c *ExecuteConfig) {
		c.retryConfig.Enabled = true
	}
}

// WithRetryConfig is an ExecuteOption that sets the retry configuration.
func WithRetryConfig(config RetryConfig) ExecuteOption {
	return func(c *ExecuteConfig) {
		c.retryConfig = config
	}
}

// ExecuteOperation executes an operation with the given input and dependencies and records a
// Report of the execution in the bundle's Reporter.
//
// Retry:
// By default the operation is executed exactly once. Use WithRetry or WithRetryConfig to retry a
// failing operation. To cancel the retry early, return an error with NewUnrecoverableError.
//
// The returned error is the handler error, unwrapped from any retry bookkeeping, so callers can
// match it with errors.Is. When recording the report fails, that error is returned together with
// the report so the caller can still observe the output of a successful side effect.
func ExecuteOperation[IN, OUT, DEP any](
	b Bundle,
	operation *Operation[IN, OUT, DEP],
	deps DEP,
	input IN,
	opts ...ExecuteOption,
) (Report[IN, OUT], error) {
	executeConfig := &ExecuteConfig{
		retryConfig: newDisabledRetryConfig(),
	}
	for _, opt := range opts {
		opt(executeConfig)
	}

	var output OUT
	var err error

	if executeConfig.retryConfig.Enabled {
		retryOpts := executeConfig.retryConfig.Policy.options()
		// Use the operation context in the retry
		retryOpts = append(retryOpts, retry.Context(b.GetContext()))
		retryOpts = append(retryOpts, retry.OnRetry(func(attempt uint, err error) {
			b.Logger.Infow("Operation failed. Retrying...",
				"operation", operation.def.ID, "attempt", attempt, "error", err)
		}))

		output, err = retry.DoWithData(
			func() (OUT, error) {
				return operation.execute(b, deps, input)
			},
			retryOpts...,
		)
	} else {
		output, err = operation.execute(b, deps, input)
	}

	report := NewReport(operation.def, input, output, err)
	if b.reporter != nil {
		if rerr := b.reporter.AddReport(genericReport(report)); rerr != nil {
			return report, errors.Join(err, rerr)
		}
	}

	if err != nil {
		return report, err
	}

	return report, nil
}

// NewUnrecoverableError creates an error that indicates an unrecoverable error.
// If this error is returned inside an operation, the operation will no longer retry.
// This allows the operation to fail fast if it encounters an unrecoverable error.
func NewUnrecoverableError(err error) error {
	return retry.Unrecoverable(err)
}
