//go:build linux && !amd64 && !arm64

package module

import (
	"fmt"
)

func newLoaderWalker([]string) (Walker, error) {
	return nil, fmt.Errorf("dl_iterate_phdr walker: %w", ErrUnsupported)
}

// Open is not supported on this architecture.
func Open(path string) (*Library, error) {
	return nil, ErrUnsupported
}

// Close does nothing on this architecture.
func (l *Library) Close() error {
	return nil
}
