package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

const logsPolicyPrefix = "datasync-transfer-logs"

// logsPolicyName names the resource policy of one log group. Each group of the account keeps its own.
func logsPolicyName(logGroup string) string {
	return logsPolicyPrefix + "-" + strings.Trim(strings.ReplaceAll(logGroup, "/", "-"), "-")
}

// GetOrCreateLogGroup returns the ARN of the named log group, creating it when it does not exist,
// and lets DataSync tasks of the account write to it.
//
// Losing a creation race to a concurrent caller returns transfer.ErrAlreadyExists.
func (p *Provider) GetOrCreateLogGroup(ctx context.Context, name string) (string, error) {
	arn, err := p.findLogGroup(ctx, name)
	if err != nil {
		return "", err
	}

	if arn == "" {
		if _, err = p.clients.Logs.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{
			LogGroupName: aws.String(name),
		}); err != nil {
			if errorCode(err) == codeResourceAlreadyExists {
				return "", fmt.Errorf("log group %s: %w", name, transfer.ErrAlreadyExists)
			}

			return "", fmt.Errorf("failed to create log group %s: %w", name, err)
		}
		p.lggr.Infow("Created log group", "logGroup", name)

		if arn, err = p.findLogGroup(ctx, name); err != nil {
			return "", err
		}
		if arn == "" {
			return "", fmt.Errorf("log group %s not found after creation: %w", name, transfer.ErrMalformedResponse)
		}
	}

	// The resource policy of the group is upserted by name, so it is put on every call.
	if _, err = p.clients.Logs.PutResourcePolicy(ctx, &cloudwatchlogs.PutResourcePolicyInput{
		PolicyName:     aws.String(logsPolicyName(name)),
		PolicyDocument: aws.String(logsPolicy(p.clients.partition(), arn).String()),
	}); err != nil {
		return "", fmt.Errorf("failed to put resource policy of log group %s: %w", name, err)
	}

	return arn, nil
}

func (p *Provider) findLogGroup(ctx context.Context, name string) (string, error) {
	pages := cloudwatchlogs.NewDescribeLogGroupsPaginator(p.clients.Logs, &cloudwatchlogs.DescribeLogGroupsInput{
		LogGroupNamePrefix: aws.String(name),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to describe log group %s: %w", name, err)
		}
		for _, group := range page.LogGroups {
			if aws.ToString(group.LogGroupName) == name {
				return aws.ToString(group.Arn), nil
			}
		}
	}

	return "", nil
}

// logsPolicy lets DataSync tasks of the account owning the log group write to it.
func logsPolicy(partition, logGroupARN string) policy {
	account := ""
	if parts := strings.Split(logGroupARN, ":"); len(parts) > 4 {
		account = parts[4]
	}
	resource := logGroupARN
	if !strings.HasSuffix(resource, ":*") {
		resource += ":*"
	}

	return policy{
		Version: policyVersion,
		Statement: []statement{{
			Sid:       "DataSyncLogsToCloudWatchLogs",
			Effect:    "Allow",
			Principal: &principal{Service: "datasync.amazonaws.com"},
			Action:    []string{"logs:PutLogEvents", "logs:CreateLogStream"},
			Resource:  []string{resource},
			Condition: map[string]map[string]string{
				"ArnLike":      {"aws:SourceArn": fmt.Sprintf("arn:%s:datasync:*:%s:task/*", partition, account)},
				"StringEquals": {"aws:SourceAccount": account},
			},
		}},
	}
}
