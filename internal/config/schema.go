package config

import (
	"time"

	"github.com/coral-mesh/sigscan/internal/constants"
	"github.com/coral-mesh/sigscan/pkg/module"
)

// Settings is the sigscan configuration stored in ~/.sigscan/config.yaml.
type Settings struct {
	// LogLevel is one of trace, debug, info, warn, error or off.
	LogLevel string `yaml:"log_level" env:"SIGSCAN_LOG_LEVEL"`
	// LogPretty selects the human-readable console writer.
	LogPretty bool `yaml:"log_pretty" env:"SIGSCAN_LOG_PRETTY"`

	// Walker selects how modules are enumerated: auto, loader or auxv.
	Walker string `yaml:"walker" env:"SIGSCAN_WALKER"`
	// Libraries are tried in order to reach dl_iterate_phdr.
	Libraries []string `yaml:"libraries,omitempty" env:"SIGSCAN_LIBRARIES"`

	Wait WaitSettings `yaml:"wait"`
}

// WaitSettings tunes polling for modules that are not loaded yet.
type WaitSettings struct {
	InitialBackoff time.Duration `yaml:"initial_backoff" env:"SIGSCAN_WAIT_INITIAL_BACKOFF"`
	MaxBackoff     time.Duration `yaml:"max_backoff" env:"SIGSCAN_WAIT_MAX_BACKOFF"`
}

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		LogLevel:  constants.DefaultLogLevel,
		LogPretty: true,
		Walker:    string(module.WalkerAuto),
		Wait: WaitSettings{
			InitialBackoff: constants.DefaultWaitInitialBackoff,
			MaxBackoff:     constants.DefaultWaitMaxBackoff,
		},
	}
}

// OperandKind selects how a match is turned into the address it references.
type OperandKind string

const (
	// OperandNone reports the match address itself.
	OperandNone OperandKind = "none"
	// OperandRIP decodes the matched instruction and follows its
	// RIP-relative operand.
	OperandRIP OperandKind = "rip"
	// OperandRel32 reads a 32-bit displacement at OperandOffset and adds it
	// to the end of an InstructionLength-byte instruction.
	OperandRel32 OperandKind = "rel32"
)

// SignatureSet is a file of named signatures resolved together.
type SignatureSet struct {
	Signatures []SignatureEntry `yaml:"signatures"`
}

// SignatureEntry names one signature and the module it lives in.
type SignatureEntry struct {
	Name    string `yaml:"name"`
	Module  string `yaml:"module"`
	Pattern string `yaml:"pattern"`
	// Offset is added to the resolved address.
	Offset int `yaml:"offset,omitempty"`

	Operand           OperandKind `yaml:"operand,omitempty"`
	OperandOffset     int         `yaml:"operand_offset,omitempty"`
	InstructionLength int         `yaml:"instruction_length,omitempty"`
}
