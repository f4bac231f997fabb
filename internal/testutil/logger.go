package testutil

import (
	"io"
	"testing"

	"github.com/rs/zerolog"
)

// NewTestLogger creates a test logger that discards output.
// Use NewTestLoggerWithOutput to log to t.Log().
func NewTestLogger(t testing.TB) zerolog.Logger {
	t.Helper()
	return zerolog.New(io.Discard).With().Timestamp().Logger()
}

// NewTestLoggerWithOutput creates a debug-level test logger that writes
// through t.Log(), so output only shows for failed or verbose tests.
func NewTestLoggerWithOutput(t testing.TB) zerolog.Logger {
	t.Helper()
	w := zerolog.ConsoleWriter{Out: zerolog.NewTestWriter(t), NoColor: true}
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}
