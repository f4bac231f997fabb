// Package modules implements the modules command.
package modules

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/sigscan/internal/cli/helpers"
)

type row struct {
	Name string `header:"NAME" json:"name"`
	Base string `header:"BASE" json:"base"`
	End  string `header:"END" json:"end"`
	Size uint64 `header:"SIZE" json:"size"`
}

// NewModulesCmd creates the modules command.
func NewModulesCmd() *cobra.Command {
	var (
		filter string
		load   []string
		format string
	)

	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List the modules loaded in this process",
		Long: `List the modules loaded into the sigscan process, in the order the module
walker reports them. Size is the upper bound max(p_vaddr + p_memsz) over the
module's program headers.

Examples:
  # Everything the loader knows about
  sigscan modules

  # Load a library first, then show only modules whose name contains "ssl"
  sigscan modules --load libssl.so.3 --filter ssl -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateFormat(format, helpers.AllFormats); err != nil {
				return err
			}
			formatter, err := helpers.NewFormatter(helpers.OutputFormat(format))
			if err != nil {
				return err
			}

			rt, err := helpers.LoadRuntime(cmd)
			if err != nil {
				return err
			}
			libs, err := rt.OpenLibraries(load)
			if err != nil {
				return err
			}
			defer rt.CloseLibraries(libs)

			loc, err := rt.Locator()
			if err != nil {
				return err
			}
			mods, err := loc.Modules()
			if err != nil {
				return err
			}

			rows := make([]row, 0, len(mods))
			for _, m := range mods {
				if filter != "" && !strings.Contains(m.Name, filter) {
					continue
				}
				rows = append(rows, row{
					Name: m.DisplayName(),
					Base: helpers.Hex(m.Base),
					End:  helpers.Hex(m.End()),
					Size: uint64(m.Size),
				})
			}

			if err := formatter.Format(rows, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Only show modules whose name contains this substring")
	helpers.AddLoadFlag(cmd, &load)
	helpers.AddFormatFlag(cmd, &format, helpers.FormatTable, helpers.AllFormats)

	return cmd
}
