package transfers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smartcontractkit/datasync-transfer-framework/operations"
	"github.com/smartcontractkit/datasync-transfer-framework/pkg/commands/flags"
	"github.com/smartcontractkit/datasync-transfer-framework/pkg/commands/text"
	"github.com/smartcontractkit/datasync-transfer-framework/statestore"
	"github.com/smartcontractkit/datasync-transfer-framework/transfer"
)

var (
	runShort = "Provision and start transfers"

	runLong = text.LongDesc(`
		Provisions the configured transfers and starts a task execution for each of them.

		The execution role and the log group are resolved once for all transfers. Each transfer then
		resumes from its stored state: stages whose identifier is already recorded are skipped and a
		new task execution is always started. The state returned by every transfer is saved, also
		when the transfer fails, and a failed transfer does not stop the following ones.
	`)

	runExample = text.Examples(`
		# Run every configured transfer
		datasync-transfer transfers run --config datasync.yaml

		# Run two transfers and keep the operation reports
		datasync-transfer transfers run -t events -t clicks -o reports.json
	`)
)

type runFlags struct {
	configPath string
	transfers  []string
	out        string
}

// newRunCmd creates the "run" subcommand.
func newRunCmd(cfg Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   runShort,
		Long:    runLong,
		Example: runExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := runFlags{
				configPath: flags.MustString(cmd.Flags().GetString("config")),
				transfers:  flags.MustStringSlice(cmd.Flags().GetStringSlice("transfer")),
				out:        flags.MustString(cmd.Flags().GetString("out")),
			}

			return runRun(cmd, cfg, f)
		},
	}

	flags.Config(cmd)
	flags.Transfers(cmd)
	flags.Output(cmd, "")

	return cmd
}

// runRun executes the run command logic.
func runRun(cmd *cobra.Command, cfg Config, f runFlags) (err error) {
	ctx := cmd.Context()
	deps := cfg.deps()

	// --- Load

	c, err := loadConfig(cfg, f.configPath, f.transfers)
	if err != nil {
		return err
	}
	specs, err := c.Specs()
	if err != nil {
		return err
	}
	if len(specs) == 0 {
		cmd.Println("No transfers configured")
		return nil
	}

	lcfg, err := c.LoggerConfig()
	if err != nil {
		return err
	}
	lggr, err := deps.LoggerBuilder(lcfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = lggr.Sync() }()
	lggr = lggr.With("run", deps.RunID())

	store, closer, err := deps.StoreOpener(ctx, c.StoreConfig())
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}
	defer func() { err = errors.Join(err, closer.Close()) }()

	items, err := statestore.Prior(ctx, store, specs)
	if err != nil {
		return err
	}

	coll, err := deps.CollaboratorsLoader(ctx, c.ClientConfig(), lggr)
	if err != nil {
		return fmt.Errorf("failed to load AWS clients: %w", err)
	}

	// --- Execute

	reporter := operations.NewMemoryReporter()
	if f.out != "" {
		defer func() { err = errors.Join(err, writeReports(f.out, reporter)) }()
	}

	b := operations.NewBundle(cmd.Context, lggr, reporter)
	opts, id, err := transfer.ResolveOptions(b, coll.SetupDeps(), c.SetupConfig())
	if err != nil {
		return fmt.Errorf("failed to resolve shared resources: %w", err)
	}
	cmd.Printf("🔑 Provisioning as %s in account %s\n", opts.Principal, id.AccountID)

	pipeline, err := transfer.NewPipeline(coll.Deps(), opts,
		transfer.WithLogger(lggr),
		transfer.WithReporter(reporter),
	)
	if err != nil {
		return err
	}

	// States are saved even once ctx is cancelled, they are the resume token of the next run.
	saveCtx := context.WithoutCancel(ctx)

	var failed int
	var saveErrs []error
	for res := range pipeline.RunBatch(ctx, items) {
		if perr := store.Put(saveCtx, statestore.Key(res.Spec), res.State); perr != nil {
			saveErrs = append(saveErrs, fmt.Errorf("failed to save state of %s: %w", res.Spec.Name, perr))
		}
		if res.Err != nil {
			failed++
		}
		printResult(cmd, res)
	}

	// --- Output

	cmd.Printf("\n%d of %d transfers started\n", len(items)-failed, len(items))

	if err = errors.Join(saveErrs...); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d transfers failed", failed, len(items))
	}

	return nil
}

func printResult(cmd *cobra.Command, res transfer.Result) {
	if res.Err == nil {
		cmd.Printf("✅ %s: started execution %s\n", res.Spec.Name, res.State.TaskExecutionARN)
		return
	}

	if stage, ok := transfer.FailedStage(res.Err); ok {
		cmd.Printf("❌ %s: halted at %s with %d of 4 identifiers recorded: %v\n",
			res.Spec.Name, stage, res.State.Completed(), res.Err)

		return
	}
	cmd.Printf("❌ %s: %v\n", res.Spec.Name, res.Err)
}

// writeReports writes every report of reporter to path as a JSON array.
func writeReports(path string, reporter operations.Reporter) error {
	reports, err := reporter.GetReports()
	if err != nil {
		return err
	}

	b, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal reports: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}
	if err = os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write reports to %s: %w", path, err)
	}

	return nil
}
