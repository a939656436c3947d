// Package commands provides the CLI commands of the DataSync transfer tool.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	cmds := commands.New(lggr)
//	transfersCmd, err := cmds.Transfers()
//	if err != nil {
//	    return err
//	}
//	app.AddCommand(transfersCmd)
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/smartcontractkit/datasync-transfer-framework/pkg/commands/transfers"
//
//	cmd, err := transfers.NewCommand(transfers.Config{
//	    Logger: lggr,
//	    Deps:   transfers.Deps{...},  // inject fakes for testing
//	})
package commands

import (
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/datasync-transfer-framework/pkg/commands/transfers"
	"github.com/smartcontractkit/datasync-transfer-framework/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
// This allows setting the logger once and reusing it across all commands.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger.
// The logger will be shared across all commands created by this factory.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// Transfers creates the transfers command group: run, status and identity.
func (c *Commands) Transfers() (*cobra.Command, error) {
	return transfers.NewCommand(transfers.Config{
		Logger: c.lggr,
	})
}

// Root creates the root command of the CLI with every command group attached.
func (c *Commands) Root(version string) (*cobra.Command, error) {
	root := &cobra.Command{
		Use:           "datasync-transfer",
		Short:         "Provision cross-account S3 to S3 DataSync transfers",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	transfersCmd, err := c.Transfers()
	if err != nil {
		return nil, err
	}
	root.AddCommand(transfersCmd)

	return root, nil
}
