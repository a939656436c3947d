package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

// AccountIdentity returns the account and principal of the initiating credentials. An assumed role
// session is reported as its role, which is what bucket policies can name.
func (p *Provider) AccountIdentity(ctx context.Context) (transfer.Identity, error) {
	out, err := p.clients.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return transfer.Identity{}, fmt.Errorf("failed to get caller identity: %w", err)
	}
	if out == nil {
		return transfer.Identity{}, fmt.Errorf("empty caller identity: %w", transfer.ErrMalformedResponse)
	}

	return transfer.Identity{
		AccountID:    aws.ToString(out.Account),
		PrincipalARN: principalARN(aws.ToString(out.Arn)),
	}, nil
}

// principalARN maps arn:<p>:sts::<acct>:assumed-role/<role>/<session> to arn:<p>:iam::<acct>:role/<role>.
func principalARN(arn string) string {
	parts := strings.SplitN(arn, ":", 6)
	if len(parts) != 6 || parts[2] != "sts" || !strings.HasPrefix(parts[5], "assumed-role/") {
		return arn
	}

	resource := strings.Split(strings.TrimPrefix(parts[5], "assumed-role/"), "/")

	return fmt.Sprintf("arn:%s:iam::%s:role/%s", parts[1], parts[4], resource[0])
}
