// Package resolve implements the resolve command.
package resolve

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/sigscan/internal/cli/helpers"
	"github.com/coral-mesh/sigscan/internal/config"
	"github.com/coral-mesh/sigscan/internal/errors"
	"github.com/coral-mesh/sigscan/internal/resolver"
	"github.com/coral-mesh/sigscan/pkg/signature"
)

type row struct {
	Name    string `header:"NAME" json:"name"`
	Module  string `header:"MODULE" json:"module"`
	Address string `header:"ADDRESS" json:"address,omitempty"`
	Error   string `header:"ERROR" json:"error,omitempty"`
}

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	var (
		file   string
		load   []string
		wait   time.Duration
		format string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a file of named signatures",
		Long: `Resolve every signature in a YAML signature set against the loaded modules.

  signatures:
    - name: GameData
      module: libgame.so
      pattern: "44 88 25 ?? ?? ?? ?? 66 44 89 25"
      operand: rel32        # none, rip or rel32
      operand_offset: 3
      instruction_length: 7
      offset: 0             # added to the result

Every entry is attempted. The command fails if any entry is unresolved.

Examples:
  sigscan resolve -f signatures.yaml --load ./libgame.so --wait 10s -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := helpers.ValidateFormat(format, helpers.AllFormats); err != nil {
				return err
			}
			formatter, err := helpers.NewFormatter(helpers.OutputFormat(format))
			if err != nil {
				return err
			}

			set, err := config.LoadSignatureSet(file)
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
			r := resolver.New(rt.Logger, signature.NewScanner(rt.Logger, loc), rt.WaitConfig(wait))
			results := r.ResolveAll(cmd.Context(), set)

			rows := make([]row, len(results))
			failed := 0
			for i, res := range results {
				rows[i] = row{Name: res.Name, Module: res.Module}
				if res.OK() {
					rows[i].Address = helpers.Hex(res.Address)
				} else {
					rows[i].Error = res.Err.Error()
					failed++
				}
			}

			if err := formatter.Format(rows, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d signatures unresolved", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Signature set YAML file")
	helpers.AddLoadFlag(cmd, &load)
	helpers.AddWaitFlag(cmd, &wait)
	helpers.AddFormatFlag(cmd, &format, helpers.FormatTable, helpers.AllFormats)
	errors.Must(cmd.MarkFlagRequired("file"), "failed to mark --file required")

	return cmd
}
