// Package flags provides reusable flag helpers for CLI commands.
//
// This package should only contain common flags that can be used by multiple commands
// to ensure unified naming and consistent behavior across the CLI.
// Command-specific flags should be defined locally in the command file.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// DefaultConfigPath is the config file read when --config is not set.
const DefaultConfigPath = "datasync.yaml"

// MustString returns the string value, ignoring the error.
// Safe to use with registered flags where GetString cannot fail.
func MustString(s string, _ error) string { return s }

// MustBool returns the bool value, ignoring the error.
// Safe to use with registered flags where GetBool cannot fail.
func MustBool(b bool, _ error) bool { return b }

// MustStringSlice returns the slice value, ignoring the error.
// Safe to use with registered flags where GetStringSlice cannot fail.
func MustStringSlice(s []string, _ error) []string { return s }

// Config adds the --config/-c flag pointing at the transfer config file.
// Retrieve the value with cmd.Flags().GetString("config").
func Config(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", DefaultConfigPath, "Path of the transfer config file")
}

// Transfers adds the repeatable --transfer/-t flag restricting a command to the named transfers.
// All configured transfers are selected when the flag is not set.
// Retrieve the value with cmd.Flags().GetStringSlice("transfer").
//
// Usage:
//
//	flags.Transfers(cmd)
//	// later in RunE:
//	names, _ := cmd.Flags().GetStringSlice("transfer")
func Transfers(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("transfer", "t", nil, "Name of a configured transfer, repeatable (default: all)")
}

// Output adds the --out/-o flag for specifying output file path.
// --reports is accepted as an alias.
// Retrieve the value with cmd.Flags().GetString("out").
//
// Usage:
//
//	flags.Output(cmd, "")
//	// later in RunE:
//	outPath, _ := cmd.Flags().GetString("out")
func Output(cmd *cobra.Command, defaultValue string) {
	cmd.Flags().StringP("out", "o", defaultValue, "Path of the JSON file the operation reports are written to")

	existingNormalize := cmd.Flags().GetNormalizeFunc()
	cmd.Flags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		if name == "reports" {
			return pflag.NormalizedName("out")
		}
		if existingNormalize != nil {
			return existingNormalize(f, name)
		}

		return pflag.NormalizedName(name)
	})
}
