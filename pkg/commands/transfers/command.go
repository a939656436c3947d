package transfers

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/datasync-transfer-framework/config"
	"github.com/smartcontractkit/datasync-transfer-framework/pkg/commands/text"
	"github.com/smartcontractkit/datasync-transfer-framework/pkg/logger"
)

var (
	transfersShort = "Provision DataSync transfers"

	transfersLong = text.LongDesc(`
		Commands for provisioning cross-account S3 to S3 DataSync transfers.

		Transfers are read from the config file. The identifiers created for each transfer are kept
		in the state store so that an interrupted run resumes where it stopped.
	`)
)

// Config holds the configuration for transfers commands.
type Config struct {
	// Logger is the logger to use for command output. Required.
	Logger logger.Logger

	// Deps holds optional dependencies that can be overridden.
	// If fields are nil, production defaults are used.
	Deps Deps
}

// Validate checks that all required configuration fields are set.
func (c Config) Validate() error {
	if c.Logger == nil {
		return errors.New("transfers.Config: missing required fields: Logger")
	}

	return nil
}

// deps returns the Deps with defaults applied.
func (c *Config) deps() *Deps {
	c.Deps.applyDefaults()

	return &c.Deps
}

// NewCommand creates a new transfers command with all subcommands.
func NewCommand(cfg Config) (*cobra.Command, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.deps()

	cmd := &cobra.Command{
		Use:     "transfers",
		Aliases: []string{"transfer"},
		Short:   transfersShort,
		Long:    transfersLong,
	}

	cmd.AddCommand(newRunCmd(cfg))
	cmd.AddCommand(newStatusCmd(cfg))
	cmd.AddCommand(newIdentityCmd(cfg))

	return cmd, nil
}

// loadConfig loads, filters and validates the transfer config.
func loadConfig(cfg Config, path string, names []string) (*config.Config, error) {
	c, err := cfg.Deps.ConfigLoader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err = c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err = c.Filter(names); err != nil {
		return nil, err
	}

	return c, nil
}
