//go:build !linux

package module

import (
	"github.com/rs/zerolog"
)

// NewWalker returns a walker whose Walk fails with ErrUnsupported: module
// enumeration is only implemented for Linux.
func NewWalker(logger zerolog.Logger, kind WalkerKind, libraries []string) (Walker, error) {
	if _, err := ParseWalkerKind(string(kind)); err != nil {
		return nil, err
	}
	return unsupportedWalker{}, nil
}

// Open is not supported on this platform.
func Open(path string) (*Library, error) {
	return nil, ErrUnsupported
}

// Close does nothing on this platform.
func (l *Library) Close() error {
	return nil
}
