// Package transfers provides the CLI commands provisioning DataSync transfers.
package transfers

import (
	"context"
	"io"

	"github.com/segmentio/ksuid"

	"github.com/smartcontractkit/datasync-transfer-framework/config"
	"github.com/smartcontractkit/datasync-transfer-framework/pkg/logger"
	"github.com/smartcontractkit/datasync-transfer-framework/provider"
	"github.com/smartcontractkit/datasync-transfer-framework/statestore"
	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

// Collaborators hands out the remote collaborators of the transfer package.
// *provider.Provider is the production implementation.
type Collaborators interface {
	Deps() transfer.Deps
	SetupDeps() transfer.SetupDeps
}

// ConfigLoaderFunc loads the transfer config file at path.
type ConfigLoaderFunc func(path string) (*config.Config, error)

// LoggerBuilderFunc builds the logger the transfers are run with.
type LoggerBuilderFunc func(cfg logger.Config) (logger.Logger, error)

// CollaboratorsLoaderFunc creates the collaborators calling the initiating and bucket owner accounts.
type CollaboratorsLoaderFunc func(ctx context.Context, cfg provider.ClientConfig, lggr logger.Logger) (Collaborators, error)

// StoreOpenerFunc opens the store holding the transfer states.
type StoreOpenerFunc func(ctx context.Context, cfg statestore.Config) (statestore.Store, io.Closer, error)

// RunIDFunc returns the identifier correlating the logs of one invocation.
type RunIDFunc func() string

// defaultLoggerBuilder is the production implementation that builds a zap logger.
func defaultLoggerBuilder(cfg logger.Config) (logger.Logger, error) {
	return cfg.New()
}

// defaultCollaboratorsLoader is the production implementation that calls AWS.
func defaultCollaboratorsLoader(ctx context.Context, cfg provider.ClientConfig, lggr logger.Logger) (Collaborators, error) {
	clients, err := provider.NewClients(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p, err := provider.New(clients, lggr)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// defaultRunID is the production implementation returning a time sortable KSUID.
func defaultRunID() string {
	return ksuid.New().String()
}

// Deps holds the injectable dependencies for transfers commands.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// ConfigLoader loads the transfer config file.
	// Default: config.Load
	ConfigLoader ConfigLoaderFunc

	// LoggerBuilder builds the logger from the log section of the config.
	// Default: logger.Config.New
	LoggerBuilder LoggerBuilderFunc

	// CollaboratorsLoader creates the AWS collaborators.
	// Default: provider.NewClients and provider.New
	CollaboratorsLoader CollaboratorsLoaderFunc

	// StoreOpener opens the state store.
	// Default: statestore.Open
	StoreOpener StoreOpenerFunc

	// RunID returns the run identifier.
	// Default: a new KSUID
	RunID RunIDFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ConfigLoader == nil {
		d.ConfigLoader = config.Load
	}
	if d.LoggerBuilder == nil {
		d.LoggerBuilder = defaultLoggerBuilder
	}
	if d.CollaboratorsLoader == nil {
		d.CollaboratorsLoader = defaultCollaboratorsLoader
	}
	if d.StoreOpener == nil {
		d.StoreOpener = statestore.Open
	}
	if d.RunID == nil {
		d.RunID = defaultRunID
	}
}
