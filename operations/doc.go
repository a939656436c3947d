/*
Package operations provides the building blocks used to execute the remote calls of a
transfer provisioning run in a structured and traceable manner.

# Core Components

Operation:
  - Wraps a single remote side effect (register a location, create a task...)
  - Carries a versioned Definition used in reports and logs
  - Uses generic typing for type-safe inputs, outputs and dependencies

Executor:
  - ExecuteOperation runs an operation once, or with a retry policy when asked to
  - Failures can be marked unrecoverable to stop retrying early

Reporter:
  - Records one Report per executed operation (input, output, error, timestamp)
  - MemoryReporter keeps reports for a whole process, RecentReporter scopes them to one run

# Basic Usage

	op := operations.NewOperation(
		"datasync-start-task", semver.MustParse("1.0.0"), "Start a DataSync task", handler,
	)

	bundle := operations.NewBundle(ctxFn, lggr, operations.NewMemoryReporter())
	report, err := operations.ExecuteOperation(bundle, op, deps, input)
*/
package operations
