package cli

import (
	"github.com/spf13/cobra"

	"github.com/coral-mesh/sigscan/internal/cli/helpers"
	"github.com/coral-mesh/sigscan/internal/cli/modules"
	"github.com/coral-mesh/sigscan/internal/cli/resolve"
	"github.com/coral-mesh/sigscan/internal/cli/scan"
	"github.com/coral-mesh/sigscan/pkg/version"
)

// NewRootCmd builds the sigscan command tree.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sigscan",
		Short: "Find byte signatures in loaded modules",
		Long: `sigscan locates byte signatures inside shared libraries mapped into its own
process. Module base and extent come from the dynamic loader's program headers,
so addresses stay correct across builds that shift code around.

Patterns use IDA notation: hex bytes separated by spaces, "??" for a wildcard.

Settings are read from ~/.sigscan/config.yaml (or $SIGSCAN_CONFIG/.sigscan/)
and overridden by SIGSCAN_* environment variables and flags.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.PersistentFlags().String(helpers.FlagLogLevel, "", "Log level (trace, debug, info, warn, error)")
	helpers.AddWalkerFlag(cmd)

	cmd.AddCommand(modules.NewModulesCmd())
	cmd.AddCommand(scan.NewScanCmd())
	cmd.AddCommand(resolve.NewResolveCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("sigscan version %s\n", version.Version)
			cmd.Printf("Git commit: %s\n", version.GitCommit)
			cmd.Printf("Build date: %s\n", version.BuildDate)
			cmd.Printf("Go version: %s\n", version.GoVersion)
		},
	}
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
