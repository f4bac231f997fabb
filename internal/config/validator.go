package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/coral-mesh/sigscan/pkg/module"
	"github.com/coral-mesh/sigscan/pkg/signature"
)

// Validator is the interface for validating configuration.
type Validator interface {
	Validate() error
}

// ValidationError represents a single validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// MultiValidationError represents multiple validation errors.
type MultiValidationError struct {
	Errors []ValidationError
}

// Error implements the error interface.
func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		builder.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return builder.String()
}

func (e *MultiValidationError) add(field, format string, args ...any) {
	e.Errors = append(e.Errors, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *MultiValidationError) errOrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

var logLevels = []string{"trace", "debug", "info", "warn", "error", "off", "disabled"}

// Validate validates Settings.
func (s *Settings) Validate() error {
	errs := &MultiValidationError{}

	if s.LogLevel != "" && !slices.Contains(logLevels, s.LogLevel) {
		errs.add("log_level", "must be one of %s, got %q", strings.Join(logLevels, ", "), s.LogLevel)
	}
	if _, err := module.ParseWalkerKind(s.Walker); err != nil {
		errs.add("walker", "%v", err)
	}
	for i, lib := range s.Libraries {
		if lib == "" {
			errs.add(fmt.Sprintf("libraries[%d]", i), "must not be empty")
		}
	}
	if s.Wait.InitialBackoff <= 0 {
		errs.add("wait.initial_backoff", "must be positive, got %s", s.Wait.InitialBackoff)
	}
	if s.Wait.MaxBackoff < 0 {
		errs.add("wait.max_backoff", "must not be negative")
	}

	return errs.errOrNil()
}

// Validate checks every entry of the set and reports all problems at once.
func (s *SignatureSet) Validate() error {
	errs := &MultiValidationError{}

	if len(s.Signatures) == 0 {
		errs.add("signatures", "at least one signature is required")
	}

	seen := make(map[string]bool, len(s.Signatures))
	for i, e := range s.Signatures {
		field := fmt.Sprintf("signatures[%d]", i)
		if e.Name != "" {
			field = fmt.Sprintf("signatures[%s]", e.Name)
		}

		switch {
		case e.Name == "":
			errs.add(field+".name", "is required")
		case seen[e.Name]:
			errs.add(field+".name", "duplicate name %q", e.Name)
		}
		seen[e.Name] = true

		if e.Module == "" {
			errs.add(field+".module", "is required")
		}

		sig, err := e.Signature()
		switch {
		case err != nil:
			errs.add(field+".pattern", "%v", err)
		case sig.Len() == 0:
			errs.add(field+".pattern", "is required")
		}

		switch e.Operand {
		case "", OperandNone, OperandRIP:
		case OperandRel32:
			if e.InstructionLength <= 0 {
				errs.add(field+".instruction_length", "must be positive for rel32 operands")
			}
			if e.OperandOffset < 0 || e.OperandOffset+4 > e.InstructionLength {
				errs.add(field+".operand_offset", "displacement must lie within the instruction")
			}
		default:
			errs.add(field+".operand", "must be one of none, rip, rel32, got %q", e.Operand)
		}
	}

	return errs.errOrNil()
}

// Signature parses the entry's pattern.
func (e SignatureEntry) Signature() (*signature.Signature, error) {
	return signature.Parse(e.Pattern)
}
