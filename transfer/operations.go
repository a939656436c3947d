package transfer

import (
	"github.com/Masterminds/semver/v3"

	"github.com/smartcontractkit/datasync-transfer-framework/operations"
)

// Each stage is one operation with one side effect. The output is the identifier the stage
// records, validated by runStep.

var updateBucketPolicyOp = operations.NewOperation(
	"s3-update-bucket-policy",
	semver.MustParse("1.0.0"),
	"Grant the initiating account access to the bucket it does not own",
	func(b operations.Bundle, deps Deps, grant PolicyGrant) (string, error) {
		if err := deps.Policies.UpdateBucketPolicy(b.GetContext(), grant); err != nil {
			return "", err
		}

		return grant.Bucket, nil
	},
)

var registerLocationOp = operations.NewOperation(
	"datasync-create-location-s3",
	semver.MustParse("1.0.0"),
	"Register an S3 bucket as a DataSync location",
	func(b operations.Bundle, deps Deps, req LocationRequest) (string, error) {
		return deps.Locations.RegisterLocation(b.GetContext(), req)
	},
)

var createTaskOp = operations.NewOperation(
	"datasync-create-task",
	semver.MustParse("1.0.0"),
	"Create a DataSync task between two locations",
	func(b operations.Bundle, deps Deps, req TaskRequest) (string, error) {
		return deps.Tasks.CreateTask(b.GetContext(), req)
	},
)

var startTaskOp = operations.NewOperation(
	"datasync-start-task-execution",
	semver.MustParse("1.0.0"),
	"Start a new execution of a DataSync task",
	func(b operations.Bundle, deps Deps, req StartRequest) (string, error) {
		return deps.Tasks.StartTask(b.GetContext(), req)
	},
)

var accountIdentityOp = operations.NewOperation(
	"sts-get-caller-identity",
	semver.MustParse("1.0.0"),
	"Look up the identity of the initiating account",
	func(b operations.Bundle, deps SetupDeps, _ struct{}) (Identity, error) {
		return deps.Identity.AccountIdentity(b.GetContext())
	},
)

var getOrCreateRoleOp = operations.NewOperation(
	"iam-get-or-create-role",
	semver.MustParse("1.0.0"),
	"Look up or create the DataSync execution role",
	func(b operations.Bundle, deps SetupDeps, req RoleRequest) (string, error) {
		arn, err := deps.Roles.GetOrCreateRole(b.GetContext(), req)

		return arn, retryOnlyIfAlreadyExists(err)
	},
)

var getOrCreateLogGroupOp = operations.NewOperation(
	"logs-get-or-create-log-group",
	semver.MustParse("1.0.0"),
	"Look up or create the CloudWatch log group of the tasks",
	func(b operations.Bundle, deps SetupDeps, name string) (string, error) {
		arn, err := deps.LogGroups.GetOrCreateLogGroup(b.GetContext(), name)

		return arn, retryOnlyIfAlreadyExists(err)
	},
)
