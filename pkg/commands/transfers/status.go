package transfers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/smartcontractkit/datasync-transfer-framework/pkg/commands/flags"
	"github.com/smartcontractkit/datasync-transfer-framework/pkg/commands/text"
	"github.com/smartcontractkit/datasync-transfer-framework/statestore"
	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

var (
	statusShort = "Show the stored state of transfers"

	statusLong = text.LongDesc(`
		Shows how far each configured transfer was provisioned, as recorded in the state store.

		A transfer is complete once a task execution was started, partial when some of its
		identifiers are recorded and pending when none are. With --all every stored state is
		listed, including the states of transfers no longer in the config file.
	`)

	statusExample = text.Examples(`
		# Show the configured transfers
		datasync-transfer transfers status

		# Show every stored state
		datasync-transfer transfers status --all
	`)
)

type statusFlags struct {
	configPath string
	transfers  []string
	all        bool
}

// newStatusCmd creates the "status" subcommand.
func newStatusCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "status",
		Short:   statusShort,
		Long:    statusLong,
		Example: statusExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := statusFlags{
				configPath: flags.MustString(cmd.Flags().GetString("config")),
				transfers:  flags.MustStringSlice(cmd.Flags().GetStringSlice("transfer")),
				all:        flags.MustBool(cmd.Flags().GetBool("all")),
			}

			return runStatus(cmd, cfg, f)
		},
	}

	flags.Config(cmd)
	flags.Transfers(cmd)
	cmd.Flags().Bool("all", false, "List every stored state instead of the configured transfers")
	cmd.MarkFlagsMutuallyExclusive("all", "transfer")

	return cmd
}

// statusRow is one line of the status table.
type statusRow struct {
	name  string
	key   string
	state transfer.TransferState
}

// runStatus executes the status command logic.
func runStatus(cmd *cobra.Command, cfg Config, f statusFlags) (err error) {
	ctx := cmd.Context()
	deps := cfg.deps()

	c, err := loadConfig(cfg, f.configPath, f.transfers)
	if err != nil {
		return err
	}

	store, closer, err := deps.StoreOpener(ctx, c.StoreConfig())
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer func() { err = errors.Join(err, closer.Close()) }()

	var rows []statusRow
	if f.all {
		entries, lerr := store.List(ctx)
		if lerr != nil {
			return fmt.Errorf("failed to list states: %w", lerr)
		}
		for _, e := range entries {
			rows = append(rows, statusRow{key: e.Key, state: e.State})
		}
	} else {
		specs, serr := c.Specs()
		if serr != nil {
			return serr
		}
		items, perr := statestore.Prior(ctx, store, specs)
		if perr != nil {
			return perr
		}
		for _, item := range items {
			rows = append(rows, statusRow{name: item.Spec.Name, key: statestore.Key(item.Spec), state: item.Prior})
		}
	}

	printStatus(cmd, rows)

	return nil
}

func printStatus(cmd *cobra.Command, rows []statusRow) {
	if len(rows) == 0 {
		cmd.Println("No transfers found")
		return
	}

	var complete, partial, pending int
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Name", "Key", "Stages", "Status", "Execution"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for _, r := range rows {
		var status string
		switch {
		case r.state.Complete():
			status = "complete"
			complete++
		case r.state.Empty():
			status = "pending"
			pending++
		default:
			status = "partial"
			partial++
		}
		table.Append([]string{
			r.name,
			r.key,
			strconv.Itoa(r.state.Completed()) + "/4",
			status,
			r.state.TaskExecutionARN,
		})
	}
	table.Render()

	cmd.Printf("\n%d complete, %d partial, %d pending\n", complete, partial, pending)
}
