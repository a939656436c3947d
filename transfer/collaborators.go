package transfer

import "context"

// Access is the level of access a bucket policy grant gives to the initiating account.
type Access string

const (
	AccessRead      Access = "read"
	AccessReadWrite Access = "read-write"
)

// PolicyGrant asks the owner of Bucket to let Principal and RoleARN use it.
type PolicyGrant struct {
	// Bucket is the bucket whose policy is updated.
	Bucket string `json:"bucket"`
	// Owner is the side of the transfer that owns Bucket. The grant is applied with that
	// account's credentials.
	Owner Side `json:"owner"`
	// Principal is the identity registering the location from the initiating account.
	Principal string `json:"principal"`
	// RoleARN is the DataSync execution role of the initiating account.
	RoleARN string `json:"roleArn"`
	Access  Access `json:"access"`
}

// LocationRequest registers a bucket as a DataSync S3 location.
type LocationRequest struct {
	Bucket       string `json:"bucket"`
	RoleARN      string `json:"roleArn"`
	Subdirectory string `json:"subdirectory,omitempty"`
}

// TaskRequest defines a DataSync task between two registered locations.
type TaskRequest struct {
	Name                   string `json:"name"`
	SourceLocationARN      string `json:"sourceLocationArn"`
	DestinationLocationARN string `json:"destinationLocationArn"`
	LogGroupARN            string `json:"logGroupArn,omitempty"`
}

// StartRequest starts a new execution of a DataSync task.
type StartRequest struct {
	TaskARN string `json:"taskArn"`
}

// RoleRequest describes the DataSync execution role to look up or create.
type RoleRequest struct {
	Name string `json:"name"`
	// AccountID scopes the role trust policy to DataSync calls made on behalf of this account.
	AccountID string `json:"accountId"`
	// SourcePattern is the bucket name pattern the role may read and list.
	SourcePattern string `json:"sourcePattern"`
	// DestinationPattern is the bucket name pattern the role may read, write and delete in.
	DestinationPattern string `json:"destinationPattern"`
}

// Identity is the caller identity of the initiating account.
type Identity struct {
	AccountID    string `json:"accountId"`
	PrincipalARN string `json:"principalArn"`
}

// PolicyUpdater appends the DataSync access statement to a bucket policy.
//
// Implementations perform a read-modify-write of the policy and are not safe against concurrent
// writers of the same bucket.
type PolicyUpdater interface {
	UpdateBucketPolicy(ctx context.Context, grant PolicyGrant) error
}

// LocationRegistrar registers buckets as DataSync locations.
type LocationRegistrar interface {
	RegisterLocation(ctx context.Context, req LocationRequest) (locationARN string, err error)
}

// TaskManager creates and starts DataSync tasks.
type TaskManager interface {
	CreateTask(ctx context.Context, req TaskRequest) (taskARN string, err error)
	StartTask(ctx context.Context, req StartRequest) (executionARN string, err error)
}

// RoleProvisioner returns the ARN of the named role, creating it when absent.
type RoleProvisioner interface {
	GetOrCreateRole(ctx context.Context, req RoleRequest) (roleARN string, err error)
}

// LogGroupProvisioner returns the ARN of the named log group, creating it when absent.
type LogGroupProvisioner interface {
	GetOrCreateLogGroup(ctx context.Context, name string) (logGroupARN string, err error)
}

// IdentityResolver returns the identity of the credentials in use.
type IdentityResolver interface {
	AccountIdentity(ctx context.Context) (Identity, error)
}

// Deps are the collaborators a Pipeline calls. They are owned by the caller and may be shared by
// concurrent runs.
type Deps struct {
	Policies  PolicyUpdater
	Locations LocationRegistrar
	Tasks     TaskManager
}

func (d Deps) validate() error {
	switch {
	case d.Policies == nil:
		return errMissingDep("Policies")
	case d.Locations == nil:
		return errMissingDep("Locations")
	case d.Tasks == nil:
		return errMissingDep("Tasks")
	}

	return nil
}

// SetupDeps are the collaborators used by ResolveOptions.
type SetupDeps struct {
	Identity  IdentityResolver
	Roles     RoleProvisioner
	LogGroups LogGroupProvisioner
}

func (d SetupDeps) validate() error {
	switch {
	case d.Identity == nil:
		return errMissingDep("Identity")
	case d.Roles == nil:
		return errMissingDep("Roles")
	case d.LogGroups == nil:
		return errMissingDep("LogGroups")
	}

	return nil
}

type errMissingDep string

func (e errMissingDep) Error() string {
	return "transfer: missing dependency " + string(e)
}
