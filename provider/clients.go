// Package provider implements the transfer collaborators on top of the AWS SDK.
//
// Every AWS service is reached through a narrow client interface holding only the calls the
// provider makes, which allows the clients to be mocked in unit tests.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/datasync"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// S3Client defines the bucket policy operations of the S3 client.
type S3Client interface {
	GetBucketPolicy(
		ctx context.Context, params *s3.GetBucketPolicyInput, optFns ...func(*s3.Options),
	) (*s3.GetBucketPolicyOutput, error)
	PutBucketPolicy(
		ctx context.Context, params *s3.PutBucketPolicyInput, optFns ...func(*s3.Options),
	) (*s3.PutBucketPolicyOutput, error)
}

// DataSyncClient defines the DataSync operations used to provision a transfer.
type DataSyncClient interface {
	CreateLocationS3(
		ctx context.Context, params *datasync.CreateLocationS3Input, optFns ...func(*datasync.Options),
	) (*datasync.CreateLocationS3Output, error)
	CreateTask(
		ctx context.Context, params *datasync.CreateTaskInput, optFns ...func(*datasync.Options),
	) (*datasync.CreateTaskOutput, error)
	StartTaskExecution(
		ctx context.Context, params *datasync.StartTaskExecutionInput, optFns ...func(*datasync.Options),
	) (*datasync.StartTaskExecutionOutput, error)
}

// IAMClient defines the IAM operations used to get or create the execution role.
type IAMClient interface {
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	PutRolePolicy(
		ctx context.Context, params *iam.PutRolePolicyInput, optFns ...func(*iam.Options),
	) (*iam.PutRolePolicyOutput, error)
}

// LogsClient defines the CloudWatch Logs operations used to get or create the task log group.
type LogsClient interface {
	DescribeLogGroups(
		ctx context.Context, params *cloudwatchlogs.DescribeLogGroupsInput, optFns ...func(*cloudwatchlogs.Options),
	) (*cloudwatchlogs.DescribeLogGroupsOutput, error)
	CreateLogGroup(
		ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options),
	) (*cloudwatchlogs.CreateLogGroupOutput, error)
	PutResourcePolicy(
		ctx context.Context, params *cloudwatchlogs.PutResourcePolicyInput, optFns ...func(*cloudwatchlogs.Options),
	) (*cloudwatchlogs.PutResourcePolicyOutput, error)
}

// STSClient defines the STS operation used to resolve the caller identity.
type STSClient interface {
	GetCallerIdentity(
		ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options),
	) (*sts.GetCallerIdentityOutput, error)
}

// Clients holds the AWS clients of a transfer. DataSync, IAM, Logs and STS run with the credentials
// of the initiating account. Each bucket policy is written with the credentials of the account
// owning the bucket.
type Clients struct {
	Partition string

	DataSync DataSyncClient
	IAM      IAMClient
	Logs     LogsClient
	STS      STSClient

	SourceS3      S3Client
	DestinationS3 S3Client
}

// ClientConfig selects the region and the shared config profiles the clients are loaded from.
type ClientConfig struct {
	Region string
	// Partition is the ARN partition of the region. Defaults to "aws".
	Partition string
	// InitiatorProfile is the profile of the account that creates the DataSync resources. Empty
	// uses the default credential chain.
	InitiatorProfile string
	// SourceProfile and DestinationProfile are the profiles of the bucket owners. Empty falls back
	// to InitiatorProfile.
	SourceProfile      string
	DestinationProfile string
}

// NewClients loads the AWS configuration of each profile and creates the clients.
func NewClients(ctx context.Context, cfg ClientConfig) (*Clients, error) {
	if cfg.Region == "" {
		return nil, errors.New("provider.ClientConfig: Region is required")
	}
	partition := cfg.Partition
	if partition == "" {
		partition = "aws"
	}

	initiator, err := loadConfig(ctx, cfg.Region, cfg.InitiatorProfile)
	if err != nil {
		return nil, err
	}
	source, err := loadProfileOr(ctx, cfg.Region, cfg.SourceProfile, initiator)
	if err != nil {
		return nil, err
	}
	destination, err := loadProfileOr(ctx, cfg.Region, cfg.DestinationProfile, initiator)
	if err != nil {
		return nil, err
	}

	return &Clients{
		Partition:     partition,
		DataSync:      datasync.NewFromConfig(initiator),
		IAM:           iam.NewFromConfig(initiator),
		Logs:          cloudwatchlogs.NewFromConfig(initiator),
		STS:           sts.NewFromConfig(initiator),
		SourceS3:      s3.NewFromConfig(source),
		DestinationS3: s3.NewFromConfig(destination),
	}, nil
}

func loadConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config for profile %q: %w", profile, err)
	}

	return cfg, nil
}

func loadProfileOr(ctx context.Context, region, profile string, fallback aws.Config) (aws.Config, error) {
	if profile == "" {
		return fallback, nil
	}

	return loadConfig(ctx, region, profile)
}

func (c *Clients) validate() error {
	switch {
	case c == nil:
		return errors.New("provider: nil clients")
	case c.DataSync == nil, c.IAM == nil, c.Logs == nil, c.STS == nil:
		return errors.New("provider: initiator clients are required")
	case c.SourceS3 == nil || c.DestinationS3 == nil:
		return errors.New("provider: source and destination S3 clients are required")
	}

	return nil
}

func (c *Clients) partition() string {
	if c.Partition == "" {
		return "aws"
	}

	return c.Partition
}
