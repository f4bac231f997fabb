package signature

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coral-mesh/sigscan/internal/safe"
	"github.com/coral-mesh/sigscan/pkg/module"
)

var ErrPatternNotFound = errors.New("pattern not found")

// Scanner resolves signatures against loaded modules and reports why a
// resolution failed.
type Scanner struct {
	logger  zerolog.Logger
	locator *module.Locator
}

// NewScanner creates a scanner. A nil locator selects module.Default.
func NewScanner(logger zerolog.Logger, locator *module.Locator) *Scanner {
	if locator == nil {
		locator = module.Default()
	}
	return &Scanner{
		logger:  logger.With().Str("component", "signature-scanner").Logger(),
		locator: locator,
	}
}

// Locator returns the locator used by the scanner.
func (s *Scanner) Locator() *module.Locator {
	return s.locator
}

// Resolve returns the absolute address of the first match of sig in the
// first module whose name contains name. Errors wrap module.ErrInvalidName,
// module.ErrModuleNotFound, or ErrPatternNotFound.
func (s *Scanner) Resolve(sig *Signature, name string) (uintptr, error) {
	m, off, err := s.find(sig, name)
	if err != nil {
		return 0, err
	}
	return m.Base + uintptr(off), nil
}

// ResolveOperand is Resolve followed by op applied to the matched
// instruction. It returns the absolute address the instruction references.
func (s *Scanner) ResolveOperand(sig *Signature, name string, op Operand) (uintptr, error) {
	m, off, err := s.find(sig, name)
	if err != nil {
		return 0, err
	}

	var target int
	m.Borrow(func(image []byte) {
		target, err = op(image, off)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to resolve operand of %s at %#x: %w", sig.ID(), m.Base+uintptr(off), err)
	}
	addr, ok := safe.AddOffset(m.Base, target)
	if !ok {
		return 0, fmt.Errorf("%w: target %#x outside address space", ErrNoOperand, target)
	}
	return addr, nil
}

func (s *Scanner) find(sig *Signature, name string) (module.Info, int, error) {
	logger := s.logger.With().Str("signature", sig.ID()).Str("module", name).Logger()

	m, err := s.locator.Lookup(name)
	if err != nil {
		logger.Debug().Err(err).Msg("Module lookup failed")
		return module.Info{}, 0, err
	}

	off, ok := sig.scanImage(m)
	if !ok {
		logger.Debug().
			Str("path", m.DisplayName()).
			Int("length", sig.Len()).
			Msg("Pattern not found in module")
		return module.Info{}, 0, fmt.Errorf("%w: %s in %s", ErrPatternNotFound, sig, m.DisplayName())
	}

	logger.Debug().
		Str("path", m.DisplayName()).
		Str("offset", fmt.Sprintf("%#x", off)).
		Msg("Pattern matched")
	return m, off, nil
}
