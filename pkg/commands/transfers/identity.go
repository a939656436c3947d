package transfers

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/datasync-transfer-framework/pkg/commands/flags"
	"github.com/smartcontractkit/datasync-transfer-framework/pkg/commands/text"
)

var (
	identityShort = "Show the caller identity of the initiating account"

	identityLong = text.LongDesc(`
		Prints the account and the principal the initiating profile resolves to. Unless the config
		sets resources.principal, this principal is the one granted access on foreign buckets.
	`)

	identityExample = text.Examples(`
		# Show the identity used by run
		datasync-transfer transfers identity -c datasync.yaml
	`)
)

type identityFlags struct {
	configPath string
	asJSON     bool
}

// newIdentityCmd creates the "identity" subcommand.
func newIdentityCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "identity",
		Short:   identityShort,
		Long:    identityLong,
		Example: identityExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := identityFlags{
				configPath: flags.MustString(cmd.Flags().GetString("config")),
				asJSON:     flags.MustBool(cmd.Flags().GetBool("json")),
			}

			return runIdentity(cmd, cfg, f)
		},
	}

	flags.Config(cmd)
	cmd.Flags().Bool("json", false, "Print the identity as JSON")

	return cmd
}

// runIdentity executes the identity command logic.
func runIdentity(cmd *cobra.Command, cfg Config, f identityFlags) error {
	ctx := cmd.Context()
	deps := cfg.deps()

	c, err := loadConfig(cfg, f.configPath, nil)
	if err != nil {
		return err
	}

	coll, err := deps.CollaboratorsLoader(ctx, c.ClientConfig(), cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to load AWS clients: %w", err)
	}

	id, err := coll.SetupDeps().Identity.AccountIdentity(ctx)
	if err != nil {
		return fmt.Errorf("failed to look up caller identity: %w", err)
	}

	if f.asJSON {
		b, merr := json.MarshalIndent(id, "", "  ")
		if merr != nil {
			return merr
		}
		cmd.Println(string(b))

		return nil
	}

	cmd.Printf("Account:   %s\n", id.AccountID)
	cmd.Printf("Principal: %s\n", id.PrincipalARN)

	return nil
}
