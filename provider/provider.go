package provider

import (
	"errors"

	"github.com/aws/smithy-go"

	"github.com/smartcontractkit/datasync-transfer-framework/pkg/logger"
	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

// AWS error codes the provider reacts to.
const (
	codeNoSuchBucketPolicy    = "NoSuchBucketPolicy"
	codeNoSuchEntity          = "NoSuchEntity"
	codeEntityAlreadyExists   = "EntityAlreadyExists"
	codeResourceAlreadyExists = "ResourceAlreadyExistsException"
)

// Provider implements every transfer collaborator with AWS clients. It is safe for concurrent use.
type Provider struct {
	clients *Clients
	lggr    logger.Logger
}

var (
	_ transfer.PolicyUpdater       = (*Provider)(nil)
	_ transfer.LocationRegistrar   = (*Provider)(nil)
	_ transfer.TaskManager         = (*Provider)(nil)
	_ transfer.RoleProvisioner     = (*Provider)(nil)
	_ transfer.LogGroupProvisioner = (*Provider)(nil)
	_ transfer.IdentityResolver    = (*Provider)(nil)
)

// New creates a Provider calling the given clients.
func New(clients *Clients, lggr logger.Logger) (*Provider, error) {
	if err := clients.validate(); err != nil {
		return nil, err
	}
	if lggr == nil {
		lggr = logger.Nop()
	}

	return &Provider{clients: clients, lggr: lggr.Named("aws")}, nil
}

// Deps returns the collaborators of a transfer.Pipeline.
func (p *Provider) Deps() transfer.Deps {
	return transfer.Deps{Policies: p, Locations: p, Tasks: p}
}

// SetupDeps returns the collaborators of transfer.ResolveOptions.
func (p *Provider) SetupDeps() transfer.SetupDeps {
	return transfer.SetupDeps{Identity: p, Roles: p, LogGroups: p}
}

// errorCode returns the AWS error code of err, or an empty string if err is not an API error.
func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}

	return ""
}
