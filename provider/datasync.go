package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/datasync"
	"github.com/aws/aws-sdk-go-v2/service/datasync/types"

	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

// RegisterLocation creates a DataSync S3 location for the bucket, accessed through the execution
// role.
func (p *Provider) RegisterLocation(ctx context.Context, req transfer.LocationRequest) (string, error) {
	in := &datasync.CreateLocationS3Input{
		S3BucketArn: aws.String(fmt.Sprintf("arn:%s:s3:::%s", p.clients.partition(), req.Bucket)),
		S3Config:    &types.S3Config{BucketAccessRoleArn: aws.String(req.RoleARN)},
	}
	if req.Subdirectory != "" {
		in.Subdirectory = aws.String(req.Subdirectory)
	}

	out, err := p.clients.DataSync.CreateLocationS3(ctx, in)
	if err != nil {
		return "", fmt.Errorf("failed to create location for bucket %s: %w", req.Bucket, err)
	}
	if out == nil {
		return "", nil
	}

	return aws.ToString(out.LocationArn), nil
}

// CreateTask creates a DataSync task logging transferred objects to the log group.
func (p *Provider) CreateTask(ctx context.Context, req transfer.TaskRequest) (string, error) {
	out, err := p.clients.DataSync.CreateTask(ctx, &datasync.CreateTaskInput{
		Name:                   aws.String(req.Name),
		SourceLocationArn:      aws.String(req.SourceLocationARN),
		DestinationLocationArn: aws.String(req.DestinationLocationARN),
		// DataSync rejects the ":*" suffix CloudWatch Logs puts on log group ARNs.
		CloudWatchLogGroupArn: aws.String(strings.TrimSuffix(req.LogGroupARN, ":*")),
		Options:               &types.Options{LogLevel: types.LogLevelTransfer},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create task %s: %w", req.Name, err)
	}
	if out == nil {
		return "", nil
	}

	return aws.ToString(out.TaskArn), nil
}

// StartTask starts a new execution of the task.
func (p *Provider) StartTask(ctx context.Context, req transfer.StartRequest) (string, error) {
	out, err := p.clients.DataSync.StartTaskExecution(ctx, &datasync.StartTaskExecutionInput{
		TaskArn: aws.String(req.TaskARN),
	})
	if err != nil {
		return "", fmt.Errorf("failed to start task %s: %w", req.TaskARN, err)
	}
	if out == nil {
		return "", nil
	}

	return aws.ToString(out.TaskExecutionArn), nil
}
