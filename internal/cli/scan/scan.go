// Package scan implements the scan command.
package scan

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/coral-mesh/sigscan/internal/cli/helpers"
	"github.com/coral-mesh/sigscan/internal/config"
	cleanup "github.com/coral-mesh/sigscan/internal/errors"
	"github.com/coral-mesh/sigscan/internal/resolver"
	"github.com/coral-mesh/sigscan/internal/safe"
	"github.com/coral-mesh/sigscan/pkg/signature"
)

type options struct {
	pattern           string
	module            string
	file              string
	load              []string
	wait              time.Duration
	offset            int
	operand           string
	operandOffset     int
	instructionLength int
}

func (o *options) entry() config.SignatureEntry {
	return config.SignatureEntry{
		Name:              "pattern",
		Module:            o.module,
		Pattern:           o.pattern,
		Offset:            o.offset,
		Operand:           config.OperandKind(o.operand),
		OperandOffset:     o.operandOffset,
		InstructionLength: o.instructionLength,
	}
}

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find a byte pattern in a loaded module or a file",
		Long: `Find the first occurrence of a pattern in IDA notation ("48 8B 05 ?? ?? ?? ??").

With --module, the first loaded module whose name contains the given substring
is scanned in memory and the absolute address is printed. With --file, the
file is read from disk and the offset within it is printed.

--operand rip decodes the matched x86-64 instruction and prints the address
its RIP-relative operand points to. --operand rel32 does the same from an
explicit displacement offset and instruction length.

Examples:
  # Address of a pattern in libc
  sigscan scan --module libc.so --pattern "F3 0F 1E FA 48 89 F8"

  # Wait up to 5s for a plugin to be loaded, then follow the mov's operand
  sigscan scan --load ./libplugin.so --module libplugin --wait 5s \
    --pattern "48 8B 05 ?? ?? ?? ??" --operand rip

  # File offset of a pattern on disk
  sigscan scan --file /usr/lib/libc.so.6 --pattern "7F 45 4C 46"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.module == "") == (opts.file == "") {
				return errors.New("exactly one of --module or --file is required")
			}
			set := &config.SignatureSet{Signatures: []config.SignatureEntry{opts.entry()}}
			if opts.file != "" {
				// The module field is irrelevant for files.
				set.Signatures[0].Module = opts.file
			}
			if err := set.Validate(); err != nil {
				return err
			}

			rt, err := helpers.LoadRuntime(cmd)
			if err != nil {
				return err
			}

			if opts.file != "" {
				off, err := scanFile(opts)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%#x\n", off)
				return err
			}

			libs, err := rt.OpenLibraries(opts.load)
			if err != nil {
				return err
			}
			defer rt.CloseLibraries(libs)

			loc, err := rt.Locator()
			if err != nil {
				return err
			}
			r := resolver.New(rt.Logger, signature.NewScanner(rt.Logger, loc), rt.WaitConfig(opts.wait))
			res := r.Resolve(cmd.Context(), opts.entry())
			if !res.OK() {
				return res.Err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), helpers.Hex(res.Address))
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.pattern, "pattern", "p", "", "Pattern in IDA notation")
	cmd.Flags().StringVarP(&opts.module, "module", "m", "", "Substring of the loaded module to scan")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "File to scan instead of a loaded module")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Value added to the result")
	cmd.Flags().StringVar(&opts.operand, "operand", "", "Follow the matched instruction's operand (none, rip, rel32)")
	cmd.Flags().IntVar(&opts.operandOffset, "operand-offset", 0, "Offset of the rel32 displacement in the instruction")
	cmd.Flags().IntVar(&opts.instructionLength, "instruction-length", 0, "Length of the instruction for rel32")
	helpers.AddLoadFlag(cmd, &opts.load)
	helpers.AddWaitFlag(cmd, &opts.wait)
	cleanup.Must(cmd.MarkFlagRequired("pattern"), "failed to mark --pattern required")

	return cmd
}

// scanFile returns the offset of the pattern, or of its operand target,
// within the file.
func scanFile(opts options) (int, error) {
	data, err := safe.ReadFile(opts.file, &safe.ReadOptions{AllowSymlinks: true})
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", opts.file, err)
	}

	e := opts.entry()
	sig, err := e.Signature()
	if err != nil {
		return 0, err
	}
	off, ok := sig.Scan(data)
	if !ok {
		return 0, fmt.Errorf("%w: %s in %s", signature.ErrPatternNotFound, sig, opts.file)
	}

	op, err := resolver.Operand(e)
	if err != nil {
		return 0, err
	}
	if op != nil {
		if off, err = op(data, off); err != nil {
			return 0, err
		}
	}
	return off + e.Offset, nil
}
