package helpers

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coral-mesh/sigscan/internal/config"
	"github.com/coral-mesh/sigscan/internal/logging"
	"github.com/coral-mesh/sigscan/internal/retry"
	"github.com/coral-mesh/sigscan/pkg/module"
)

// Runtime carries the settings and logger shared by every command.
type Runtime struct {
	Settings *config.Settings
	Logger   zerolog.Logger
}

// LoadRuntime loads settings from file and environment and applies the
// persistent --log-level and --walker flags when they were set.
func LoadRuntime(cmd *cobra.Command) (*Runtime, error) {
	settings, err := config.NewLoader().LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	if f := cmd.Flag(FlagLogLevel); f != nil && f.Changed {
		settings.LogLevel = f.Value.String()
	}
	if f := cmd.Flag(FlagWalker); f != nil && f.Changed {
		settings.Walker = f.Value.String()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logger := logging.New(logging.Config{
		Level:  settings.LogLevel,
		Pretty: settings.LogPretty,
		Output: cmd.ErrOrStderr(),
	})

	return &Runtime{Settings: settings, Logger: logger}, nil
}

// Locator builds a module locator using the configured walker.
func (r *Runtime) Locator() (*module.Locator, error) {
	kind, err := module.ParseWalkerKind(r.Settings.Walker)
	if err != nil {
		return nil, err
	}
	w, err := module.NewWalker(r.Logger, kind, r.Settings.Libraries)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s walker: %w", kind, err)
	}
	return module.NewLocator(r.Logger, module.WithWalker(w)), nil
}

// WaitConfig returns the polling configuration for a --wait of timeout.
func (r *Runtime) WaitConfig(timeout time.Duration) retry.Config {
	return retry.Config{
		Timeout:        timeout,
		InitialBackoff: r.Settings.Wait.InitialBackoff,
		MaxBackoff:     r.Settings.Wait.MaxBackoff,
	}
}

// OpenLibraries loads each path into the process. On failure the libraries
// already opened are closed again.
func (r *Runtime) OpenLibraries(paths []string) ([]*module.Library, error) {
	libs := make([]*module.Library, 0, len(paths))
	for _, p := range paths {
		lib, err := module.Open(p)
		if err != nil {
			r.CloseLibraries(libs)
			return nil, err
		}
		r.Logger.Debug().Str("library", lib.Path()).Msg("Loaded library")
		libs = append(libs, lib)
	}
	return libs, nil
}

// CloseLibraries releases libraries returned by OpenLibraries.
func (r *Runtime) CloseLibraries(libs []*module.Library) {
	for _, lib := range libs {
		if err := lib.Close(); err != nil {
			r.Logger.Warn().Err(err).Str("library", lib.Path()).Msg("Failed to close library")
		}
	}
}

// Hex formats an address for output.
func Hex(v uintptr) string {
	return fmt.Sprintf("%#x", v)
}
