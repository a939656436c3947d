package provider

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"

	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

const (
	sourcePolicyName      = "datasync-source-access"
	destinationPolicyName = "datasync-destination-access"
)

// GetOrCreateRole returns the ARN of the named role, creating it when it does not exist. The role
// can be assumed by DataSync on behalf of the account only, and gets read access to the source
// buckets and read-write access to the destination buckets. The inline policies are put on every
// call, so a role left without them by an interrupted creation is repaired.
//
// Losing a creation race to a concurrent caller returns transfer.ErrAlreadyExists.
func (p *Provider) GetOrCreateRole(ctx context.Context, req transfer.RoleRequest) (string, error) {
	arn, err := p.getOrCreateRole(ctx, req)
	if err != nil || arn == "" {
		return "", err
	}

	partition := p.clients.partition()
	inline := map[string]policy{
		sourcePolicyName:      bucketAccessPolicy(partition, req.SourcePattern, false),
		destinationPolicyName: bucketAccessPolicy(partition, req.DestinationPattern, true),
	}
	for _, name := range []string{sourcePolicyName, destinationPolicyName} {
		if _, err = p.clients.IAM.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
			RoleName:       aws.String(req.Name),
			PolicyName:     aws.String(name),
			PolicyDocument: aws.String(inline[name].String()),
		}); err != nil {
			return "", fmt.Errorf("failed to put policy %s on role %s: %w", name, req.Name, err)
		}
	}

	return arn, nil
}

func (p *Provider) getOrCreateRole(ctx context.Context, req transfer.RoleRequest) (string, error) {
	got, err := p.clients.IAM.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(req.Name)})
	if err == nil {
		if got == nil || got.Role == nil {
			return "", nil
		}
		p.lggr.Debugw("Found execution role", "role", req.Name)

		return aws.ToString(got.Role.Arn), nil
	}
	if errorCode(err) != codeNoSuchEntity {
		return "", fmt.Errorf("failed to get role %s: %w", req.Name, err)
	}

	created, err := p.clients.IAM.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(req.Name),
		AssumeRolePolicyDocument: aws.String(trustPolicy(req.AccountID).String()),
		Description:              aws.String("DataSync bucket transfers"),
	})
	if err != nil {
		if errorCode(err) == codeEntityAlreadyExists {
			return "", fmt.Errorf("role %s: %w", req.Name, transfer.ErrAlreadyExists)
		}

		return "", fmt.Errorf("failed to create role %s: %w", req.Name, err)
	}
	if created == nil || created.Role == nil {
		return "", nil
	}
	p.lggr.Infow("Created execution role", "role", req.Name)

	return aws.ToString(created.Role.Arn), nil
}

func trustPolicy(accountID string) policy {
	return policy{
		Version: policyVersion,
		Statement: []statement{{
			Effect:    "Allow",
			Principal: &principal{Service: "datasync.amazonaws.com"},
			Action:    []string{"sts:AssumeRole"},
			Condition: map[string]map[string]string{
				"StringEquals": {"aws:SourceAccount": accountID},
			},
		}},
	}
}

func bucketAccessPolicy(partition, bucketPattern string, write bool) policy {
	return policy{
		Version: policyVersion,
		Statement: []statement{{
			Effect:   "Allow",
			Action:   s3Actions(write),
			Resource: bucketResources(partition, bucketPattern),
		}},
	}
}
