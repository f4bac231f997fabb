// Package resolver resolves named signature sets against the modules loaded
// in the current process.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/sigscan/internal/config"
	"github.com/coral-mesh/sigscan/internal/retry"
	"github.com/coral-mesh/sigscan/internal/safe"
	"github.com/coral-mesh/sigscan/pkg/module"
	"github.com/coral-mesh/sigscan/pkg/signature"
)

// Result is the outcome of resolving one entry.
type Result struct {
	Name    string
	Module  string
	Address uintptr
	Err     error
}

// OK reports whether the entry resolved.
func (r Result) OK() bool {
	return r.Err == nil
}

// Resolver turns signature entries into addresses.
type Resolver struct {
	logger  zerolog.Logger
	scanner *signature.Scanner
	wait    retry.Config
}

// New creates a resolver. A zero wait.Timeout disables waiting for modules
// that are not loaded yet.
func New(logger zerolog.Logger, scanner *signature.Scanner, wait retry.Config) *Resolver {
	return &Resolver{
		logger:  logger.With().Str("component", "resolver").Logger(),
		scanner: scanner,
		wait:    wait,
	}
}

// ResolveAll resolves every entry of set in order. Failed entries carry
// their error; they do not stop the remaining entries.
func (r *Resolver) ResolveAll(ctx context.Context, set *config.SignatureSet) []Result {
	results := make([]Result, 0, len(set.Signatures))
	for _, e := range set.Signatures {
		if ctx.Err() != nil {
			results = append(results, Result{Name: e.Name, Module: e.Module, Err: ctx.Err()})
			continue
		}
		results = append(results, r.Resolve(ctx, e))
	}
	return results
}

// Resolve resolves a single entry. While the module is not loaded the lookup
// is repeated until the wait budget runs out; other failures return at once.
func (r *Resolver) Resolve(ctx context.Context, e config.SignatureEntry) Result {
	res := Result{Name: e.Name, Module: e.Module}

	sig, err := e.Signature()
	if err != nil {
		res.Err = err
		return res
	}
	op, err := Operand(e)
	if err != nil {
		res.Err = err
		return res
	}

	var addr uintptr
	err = retry.Do(ctx, r.wait, func() error {
		var err error
		if op == nil {
			addr, err = r.scanner.Resolve(sig, e.Module)
		} else {
			addr, err = r.scanner.ResolveOperand(sig, e.Module, op)
		}
		return err
	}, func(err error) bool {
		return errors.Is(err, module.ErrModuleNotFound)
	})
	if err != nil {
		r.logger.Debug().Err(err).Str("name", e.Name).Msg("Signature unresolved")
		res.Err = err
		return res
	}

	final, ok := safe.AddOffset(addr, e.Offset)
	if !ok {
		res.Err = fmt.Errorf("offset %d moves %#x outside the address space", e.Offset, addr)
		return res
	}
	res.Address = final
	r.logger.Debug().
		Str("name", e.Name).
		Str("address", fmt.Sprintf("%#x", res.Address)).
		Msg("Signature resolved")
	return res
}

// Operand returns the operand resolver for e, or nil when the match address
// is used as is.
func Operand(e config.SignatureEntry) (signature.Operand, error) {
	switch e.Operand {
	case "", config.OperandNone:
		return nil, nil
	case config.OperandRIP:
		return signature.RIPRelative, nil
	case config.OperandRel32:
		return signature.Rel32(e.OperandOffset, e.InstructionLength), nil
	default:
		return nil, fmt.Errorf("unknown operand kind %q", e.Operand)
	}
}
