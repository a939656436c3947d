package operations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/datasync-transfer-framework/pkg/logger"
)

func Test_ExecuteOperation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		options           []ExecuteOption
		IsUnrecoverable   bool
		wantOpCalledTimes int
		wantOutput        int
		wantErr           string
	}{
		{
			name:              "no retry",
			wantOpCalledTimes: 1,
			wantErr:           "test error",
		},
		{
			name: "with default retry",
			options: []ExecuteOption{
				WithRetryConfig(RetryConfig{
					Enabled: true,
					Policy:  RetryPolicy{MaxAttempts: 5, Delay: time.Millisecond},
				}),
			},
			wantOpCalledTimes: 3,
			wantOutput:        2,
		},
		{
			name: "with custom retry eventual failure",
			options: []ExecuteOption{
				WithRetryConfig(RetryConfig{
					Enabled: true,
					Policy: RetryPolicy{
						MaxAttempts: 1,
					},
				}),
			},
			wantOpCalledTimes: 1,
			wantErr:           "test error",
		},
		{
			name: "UnrecoverableError",
			options: []ExecuteOption{
				WithRetry(),
			},
			IsUnrecoverable:   true,
			wantOpCalledTimes: 1,
			wantErr:           "fatal error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			failTimes := 2
			handlerCalledTimes := 0
			handler := func(b Bundle, deps any, input int) (output int, err error) {
				handlerCalledTimes++
				if tt.IsUnrecoverable {
					return 0, NewUnrecoverableError(errors.New("fatal error"))
				}

				if failTimes > 0 {
					failTimes--
					return 0, errors.New("test error")
				}

				return input + 1, nil
			}
			op := NewOperation("plus1", semver.MustParse("1.0.0"), "test operation", handler)
			e := NewBundle(context.Background, logger.Test(t), NewMemoryReporter())

			res, err := ExecuteOperation(e, op, nil, 1, tt.options...)

			if tt.wantErr != "" {
				require.Error(t, res.Err)
				require.Error(t, err)
				require.ErrorContains(t, res.Err, tt.wantErr)
				require.ErrorContains(t, err, tt.wantErr)
			} else {
				require.Nil(t, res.Err)
				require.NoError(t, err)
				assert.Equal(t, tt.wantOutput, res.Output)
			}
			assert.Equal(t, tt.wantOpCalledTimes, handlerCalledTimes)
			// check report is added to reporter
			report, err := e.reporter.GetReport(res.ID)
			require.NoError(t, err)
			assert.NotNil(t, report)
		})
	}
}

func Test_ExecuteOperation_ErrorIsPreserved(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("already exists")
	op := NewOperation("create", semver.MustParse("1.0.0"), "test operation",
		func(b Bundle, deps any, input int) (int, error) {
			return 0, sentinel
		})
	e := NewBundle(context.Background, logger.Test(t), NewMemoryReporter())

	_, err := ExecuteOperation(e, op, nil, 1, WithRetryConfig(RetryConfig{
		Enabled: true,
		Policy:  RetryPolicy{MaxAttempts: 2, Delay: time.Millisecond},
	}))

	require.ErrorIs(t, err, sentinel)
}

func Test_ExecuteOperation_NilReporter(t *testing.T) {
	t.Parallel()

	op := NewOperation("plus1", semver.MustParse("1.0.0"), "test operation",
		func(e Bundle, deps any, input int) (output int, err error) {
			return input + 1, nil
		})
	e := NewBundle(context.Background, logger.Test(t), nil)

	res, err := ExecuteOperation(e, op, nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Output)
}

func Test_ExecuteOperation_ErrorReporter(t *testing.T) {
	t.Parallel()

	op := NewOperation("plus1", semver.MustParse("1.0.0"), "test operation",
		func(e Bundle, deps any, input int) (output int, err error) {
			return input + 1, nil
		})

	reportErr := errors.New("add report error")
	errReporter := errorReporter{
		Reporter:       NewMemoryReporter(),
		AddReportError: reportErr,
	}
	e := NewBundle(context.Background, logger.Test(t), errReporter)

	res, err := ExecuteOperation(e, op, nil, 1)
	require.Error(t, err)
	require.ErrorContains(t, err, reportErr.Error())
	require.Nil(t, res.Err)
}

func Test_ExecuteOperation_ErrorReporterKeepsOperationError(t *testing.T) {
	t.Parallel()

	opErr := errors.New("bucket not found")
	op := NewOperation("fail", semver.MustParse("1.0.0"), "test operation",
		func(e Bundle, deps any, input int) (output int, err error) {
			return 0, opErr
		})

	reportErr := errors.New("add report error")
	e := NewBundle(context.Background, logger.Test(t), errorReporter{
		Reporter:       NewMemoryReporter(),
		AddReportError: reportErr,
	})

	res, err := ExecuteOperation(e, op, nil, 1)
	require.ErrorIs(t, err, opErr)
	require.ErrorIs(t, err, reportErr)
	require.NotNil(t, res.Err)
	require.Equal(t, opErr.Error(), res.Err.Message)
}

func Test_ExecuteOperation_CancelledContextStopsRetry(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	op := NewOperation("flaky", semver.MustParse("1.0.0"), "test operation",
		func(b Bundle, deps any, input int) (int, error) {
			calls++
			cancel()

			return 0, errors.New("throttled")
		})
	e := NewBundle(func() context.Context { return ctx }, logger.Test(t), NewMemoryReporter())

	_, err := ExecuteOperation(e, op, nil, 1, WithRetryConfig(RetryConfig{
		Enabled: true,
		Policy:  RetryPolicy{MaxAttempts: 10, Delay: 10 * time.Millisecond},
	}))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func Test_ExecuteOperation_Concurrent(t *testing.T) {
	t.Parallel()

	version := semver.MustParse("1.0.0")

	op := NewOperation("increment", version, "increment by 1",
		func(b Bundle, deps any, input int) (output int, err error) {
			// Introduce a small delay to increase chance of race conditions
			time.Sleep(time.Millisecond)
			return input + 1, nil
		})

	reporter := NewMemoryReporter()
	bundle := NewBundle(context.Background, logger.Test(t), reporter)

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	type result struct {
		report Report[int, int]
		err    error
	}
	results := make(chan result, numGoroutines)

	for i := range numGoroutines {
		go func(input int) {
			defer wg.Done()

			report, err := ExecuteOperation(bundle, op, nil, input)
			results <- result{report, err}
		}(i)
	}

	wg.Wait()
	close(results)

	for res := range results {
		require.NoError(t, res.err)
		require.Nil(t, res.report.Err)
		assert.Equal(t, res.report.Input+1, res.report.Output)
	}

	allReports, err := reporter.GetReports()
	require.NoError(t, err)
	assert.Len(t, allReports, numGoroutines)
}

type errorReporter struct {
	Reporter
	GetReportError  error
	GetReportsError error
	AddReportError  error
}

func (e errorReporter) GetReport(id string) (Report[any, any], error) {
	if e.GetReportError != nil {
		return Report[any, any]{}, e.GetReportError
	}

	return e.Reporter.GetReport(id)
}

func (e errorReporter) GetReports() ([]Report[any, any], error) {
	if e.GetReportsError != nil {
		return nil, e.GetReportsError
	}

	return e.Reporter.GetReports()
}

func (e errorReporter) AddReport(report Report[any, any]) error {
	if e.AddReportError != nil {
		return e.AddReportError
	}

	return e.Reporter.AddReport(report)
}
