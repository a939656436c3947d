package provider

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

// UpdateBucketPolicy adds a statement granting the execution role and the principal access to the
// bucket. The policy is written with the credentials of the side owning the bucket and existing
// statements are kept.
func (p *Provider) UpdateBucketPolicy(ctx context.Context, grant transfer.PolicyGrant) error {
	client := p.clients.SourceS3
	if grant.Owner == transfer.SideDestination {
		client = p.clients.DestinationS3
	}

	current := ""
	out, err := client.GetBucketPolicy(ctx, &s3.GetBucketPolicyInput{Bucket: aws.String(grant.Bucket)})
	switch {
	case err == nil && out != nil:
		current = aws.ToString(out.Policy)
	case err == nil:
	case errorCode(err) == codeNoSuchBucketPolicy:
		p.lggr.Debugw("Bucket has no policy yet", "bucket", grant.Bucket)
	default:
		return fmt.Errorf("failed to get policy of bucket %s: %w", grant.Bucket, err)
	}

	principals := []string{grant.RoleARN}
	if grant.Principal != "" && grant.Principal != grant.RoleARN {
		principals = append(principals, grant.Principal)
	}

	doc, err := mergeStatement(current, statement{
		Sid:       statementID(grant.RoleARN),
		Effect:    "Allow",
		Principal: &principal{AWS: principals},
		Action:    s3Actions(grant.Access == transfer.AccessReadWrite),
		Resource:  bucketResources(p.clients.partition(), grant.Bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s: %w", grant.Bucket, err)
	}

	if _, err = client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(grant.Bucket),
		Policy: aws.String(doc),
	}); err != nil {
		return fmt.Errorf("failed to put policy of bucket %s: %w", grant.Bucket, err)
	}

	p.lggr.Infow("Updated bucket policy", "bucket", grant.Bucket, "owner", grant.Owner, "access", grant.Access)

	return nil
}
