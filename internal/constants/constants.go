// Package constants defines shared configuration constants.
package constants

import "time"

var (
	ConfigFile = "config.yaml"

	DefaultDir = ".sigscan"

	// FallbackConfigDir is used when the user has no home directory.
	FallbackConfigDir = "/tmp/sigscan-fallback"
)

// Environment variables.
const (
	// EnvConfigDir overrides the directory holding DefaultDir.
	EnvConfigDir = "SIGSCAN_CONFIG"

	EnvLogLevel  = "SIGSCAN_LOG_LEVEL"
	EnvLogPretty = "SIGSCAN_LOG_PRETTY"
	EnvWalker    = "SIGSCAN_WALKER"
	EnvLibraries = "SIGSCAN_LIBRARIES"
)

// Defaults.
const (
	DefaultLogLevel = "warn"

	// DefaultWaitInitialBackoff is the first delay between module lookups
	// when waiting for a library to load.
	DefaultWaitInitialBackoff = 50 * time.Millisecond

	// DefaultWaitMaxBackoff caps the delay between module lookups.
	DefaultWaitMaxBackoff = time.Second
)
