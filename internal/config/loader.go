// Package config provides configuration loading for sigscan.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/coral-mesh/sigscan/internal/constants"
	"github.com/coral-mesh/sigscan/internal/safe"
)

// Config files are small and commonly symlinked from a dotfiles checkout.
var readOptions = &safe.ReadOptions{MaxSize: 1 << 20, AllowSymlinks: true}

// Loader handles loading configuration files.
type Loader struct {
	homeDir string
}

// NewLoader creates a new config loader.
// The base directory is resolved in this order:
//  1. SIGSCAN_CONFIG environment variable.
//  2. User home directory (~/).
//  3. /tmp/sigscan-fallback (containers without a home dir).
func NewLoader() *Loader {
	if baseDir := os.Getenv(constants.EnvConfigDir); baseDir != "" {
		return &Loader{homeDir: baseDir}
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		return &Loader{homeDir: homeDir}
	}

	// Config files won't exist here, so LoadSettings returns defaults with
	// env overrides.
	return &Loader{homeDir: constants.FallbackConfigDir}
}

// SettingsPath returns the path to the settings file.
func (l *Loader) SettingsPath() string {
	return filepath.Join(l.homeDir, constants.DefaultDir, constants.ConfigFile)
}

// LoadSettings loads the settings file, falling back to defaults when it
// does not exist, then applies environment variable overrides.
func (l *Loader) LoadSettings() (*Settings, error) {
	path := l.SettingsPath()
	settings := DefaultSettings()

	data, err := safe.ReadFile(path, readOptions)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read settings: %w", err)
	default:
		if err := yaml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
		}
	}

	// Apply environment variable overrides (layered configuration).
	if err := LoadFromEnv(settings); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// LoadSignatureSet reads and validates a signature set file.
func LoadSignatureSet(path string) (*SignatureSet, error) {
	data, err := safe.ReadFile(path, readOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to read signature set: %w", err)
	}

	var set SignatureSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse signature set %s: %w", path, err)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}
