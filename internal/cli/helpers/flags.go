package helpers

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/sigscan/pkg/module"
)

// Persistent flag names defined on the root command.
const (
	FlagLogLevel = "log-level"
	FlagWalker   = "walker"
)

// AddFormatFlag adds a standard --format/-o flag to a command.
// Validates that the format is in the supportedFormats list.
func AddFormatFlag(cmd *cobra.Command, formatVar *string, defaultFormat OutputFormat, supportedFormats []OutputFormat) {
	formatNames := make([]string, len(supportedFormats))
	for i, f := range supportedFormats {
		formatNames[i] = string(f)
	}

	description := fmt.Sprintf("Output format (%s)", strings.Join(formatNames, ", "))
	cmd.Flags().StringVarP(formatVar, "format", "o", string(defaultFormat), description)

	// Add shell completion for format flag.
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatNames, cobra.ShellCompDirectiveNoFileComp
	})
}

// AddWalkerFlag adds the persistent --walker flag.
func AddWalkerFlag(cmd *cobra.Command) {
	names := make([]string, len(module.WalkerKinds))
	for i, k := range module.WalkerKinds {
		names[i] = string(k)
	}

	cmd.PersistentFlags().String(FlagWalker, string(module.WalkerAuto),
		fmt.Sprintf("Module walker (%s)", strings.Join(names, ", ")))
	_ = cmd.RegisterFlagCompletionFunc(FlagWalker, func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

// AddLoadFlag adds a repeatable --load flag naming libraries to dlopen
// before scanning.
func AddLoadFlag(cmd *cobra.Command, loadVar *[]string) {
	cmd.Flags().StringSliceVar(loadVar, "load", nil, "Shared library to load into the process first (repeatable)")
}

// AddWaitFlag adds a --wait flag bounding how long to poll for a module
// that is not loaded yet.
func AddWaitFlag(cmd *cobra.Command, waitVar *time.Duration) {
	cmd.Flags().DurationVar(waitVar, "wait", 0, "Keep polling for a missing module this long (e.g. 5s)")
}

// ValidateFormat checks if the format is in the supported list.
func ValidateFormat(format string, supported []OutputFormat) error {
	for _, s := range supported {
		if format == string(s) {
			return nil
		}
	}

	supportedNames := make([]string, len(supported))
	for i, s := range supported {
		supportedNames[i] = string(s)
	}

	return fmt.Errorf("unsupported format %q, must be one of: %s",
		format, strings.Join(supportedNames, ", "))
}
