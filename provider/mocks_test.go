package provider

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/datasync"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smartcontractkit/datasync-transfer-framework/pkg/logger"
)

// output returns the first return value of a mocked call as T, nil when the mock returned nil.
func output[T any](args mock.Arguments) *T {
	out, _ := args.Get(0).(*T)

	return out
}

type mockS3Client struct{ mock.Mock }

func (m *mockS3Client) GetBucketPolicy(
	ctx context.Context, params *s3.GetBucketPolicyInput, _ ...func(*s3.Options),
) (*s3.GetBucketPolicyOutput, error) {
	args := m.Called(ctx, params)

	return output[s3.GetBucketPolicyOutput](args), args.Error(1)
}

func (m *mockS3Client) PutBucketPolicy(
	ctx context.Context, params *s3.PutBucketPolicyInput, _ ...func(*s3.Options),
) (*s3.PutBucketPolicyOutput, error) {
	args := m.Called(ctx, params)

	return output[s3.PutBucketPolicyOutput](args), args.Error(1)
}

type mockDataSyncClient struct{ mock.Mock }

func (m *mockDataSyncClient) CreateLocationS3(
	ctx context.Context, params *datasync.CreateLocationS3Input, _ ...func(*datasync.Options),
) (*datasync.CreateLocationS3Output, error) {
	args := m.Called(ctx, params)

	return output[datasync.CreateLocationS3Output](args), args.Error(1)
}

func (m *mockDataSyncClient) CreateTask(
	ctx context.Context, params *datasync.CreateTaskInput, _ ...func(*datasync.Options),
) (*datasync.CreateTaskOutput, error) {
	args := m.Called(ctx, params)

	return output[datasync.CreateTaskOutput](args), args.Error(1)
}

func (m *mockDataSyncClient) StartTaskExecution(
	ctx context.Context, params *datasync.StartTaskExecutionInput, _ ...func(*datasync.Options),
) (*datasync.StartTaskExecutionOutput, error) {
	args := m.Called(ctx, params)

	return output[datasync.StartTaskExecutionOutput](args), args.Error(1)
}

type mockIAMClient struct{ mock.Mock }

func (m *mockIAMClient) GetRole(
	ctx context.Context, params *iam.GetRoleInput, _ ...func(*iam.Options),
) (*iam.GetRoleOutput, error) {
	args := m.Called(ctx, params)

	return output[iam.GetRoleOutput](args), args.Error(1)
}

func (m *mockIAMClient) CreateRole(
	ctx context.Context, params *iam.CreateRoleInput, _ ...func(*iam.Options),
) (*iam.CreateRoleOutput, error) {
	args := m.Called(ctx, params)

	return output[iam.CreateRoleOutput](args), args.Error(1)
}

func (m *mockIAMClient) PutRolePolicy(
	ctx context.Context, params *iam.PutRolePolicyInput, _ ...func(*iam.Options),
) (*iam.PutRolePolicyOutput, error) {
	args := m.Called(ctx, params)

	return output[iam.PutRolePolicyOutput](args), args.Error(1)
}

type mockLogsClient struct{ mock.Mock }

func (m *mockLogsClient) DescribeLogGroups(
	ctx context.Context, params *cloudwatchlogs.DescribeLogGroupsInput, _ ...func(*cloudwatchlogs.Options),
) (*cloudwatchlogs.DescribeLogGroupsOutput, error) {
	args := m.Called(ctx, params)

	return output[cloudwatchlogs.DescribeLogGroupsOutput](args), args.Error(1)
}

func (m *mockLogsClient) CreateLogGroup(
	ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, _ ...func(*cloudwatchlogs.Options),
) (*cloudwatchlogs.CreateLogGroupOutput, error) {
	args := m.Called(ctx, params)

	return output[cloudwatchlogs.CreateLogGroupOutput](args), args.Error(1)
}

func (m *mockLogsClient) PutResourcePolicy(
	ctx context.Context, params *cloudwatchlogs.PutResourcePolicyInput, _ ...func(*cloudwatchlogs.Options),
) (*cloudwatchlogs.PutResourcePolicyOutput, error) {
	args := m.Called(ctx, params)

	return output[cloudwatchlogs.PutResourcePolicyOutput](args), args.Error(1)
}

type mockSTSClient struct{ mock.Mock }

func (m *mockSTSClient) GetCallerIdentity(
	ctx context.Context, params *sts.GetCallerIdentityInput, _ ...func(*sts.Options),
) (*sts.GetCallerIdentityOutput, error) {
	args := m.Called(ctx, params)

	return output[sts.GetCallerIdentityOutput](args), args.Error(1)
}

type mockClients struct {
	DataSync      *mockDataSyncClient
	IAM           *mockIAMClient
	Logs          *mockLogsClient
	STS           *mockSTSClient
	SourceS3      *mockS3Client
	DestinationS3 *mockS3Client
}

// newTestProvider returns a Provider backed by mocks whose expectations are asserted at cleanup.
func newTestProvider(t *testing.T) (*Provider, *mockClients) {
	t.Helper()

	m := &mockClients{
		DataSync:      &mockDataSyncClient{},
		IAM:           &mockIAMClient{},
		Logs:          &mockLogsClient{},
		STS:           &mockSTSClient{},
		SourceS3:      &mockS3Client{},
		DestinationS3: &mockS3Client{},
	}
	t.Cleanup(func() {
		m.DataSync.AssertExpectations(t)
		m.IAM.AssertExpectations(t)
		m.Logs.AssertExpectations(t)
		m.STS.AssertExpectations(t)
		m.SourceS3.AssertExpectations(t)
		m.DestinationS3.AssertExpectations(t)
	})

	p, err := New(&Clients{
		Partition:     "aws",
		DataSync:      m.DataSync,
		IAM:           m.IAM,
		Logs:          m.Logs,
		STS:           m.STS,
		SourceS3:      m.SourceS3,
		DestinationS3: m.DestinationS3,
	}, logger.Test(t))
	require.NoError(t, err)

	return p, m
}
