//go:build linux

package module

import (
	"github.com/rs/zerolog"
)

// NewWalker returns a walker of the given kind. libraries overrides
// DefaultLibraries for the loader walker.
func NewWalker(logger zerolog.Logger, kind WalkerKind, libraries []string) (Walker, error) {
	if len(libraries) == 0 {
		libraries = DefaultLibraries
	}

	switch kind {
	case WalkerLoader:
		return newLoaderWalker(libraries)
	case WalkerAuxv:
		return newAuxvWalker(logger), nil
	case WalkerAuto, "":
		w, err := newLoaderWalker(libraries)
		if err != nil {
			logger.Debug().Err(err).Msg("Dynamic loader unavailable, falling back to auxiliary vector walker")
			return newAuxvWalker(logger), nil
		}
		return w, nil
	default:
		_, err := ParseWalkerKind(string(kind))
		return nil, err
	}
}
