package module

import (
	"fmt"
)

// WalkerKind selects how modules are enumerated.
type WalkerKind string

const (
	// WalkerAuto uses WalkerLoader when libc can be opened and falls back
	// to WalkerAuxv otherwise.
	WalkerAuto WalkerKind = "auto"
	// WalkerLoader asks the dynamic loader through dl_iterate_phdr. Names are
	// the paths the loader opened, e.g. /lib/x86_64-linux-gnu/libc.so.6.
	WalkerLoader WalkerKind = "loader"
	// WalkerAuxv reconstructs the module list from the auxiliary vector and
	// /proc/self/maps without calling into libc. Names are the paths the
	// kernel resolved, e.g. /usr/lib/x86_64-linux-gnu/libc.so.6, which can
	// differ from the loader's on merged-/usr systems. Query by file name
	// rather than directory to get the same match from both walkers.
	WalkerAuxv WalkerKind = "auxv"
)

// WalkerKinds lists the accepted walker kinds.
var WalkerKinds = []WalkerKind{WalkerAuto, WalkerLoader, WalkerAuxv}

// ParseWalkerKind validates a walker kind. The empty string selects WalkerAuto.
func ParseWalkerKind(s string) (WalkerKind, error) {
	if s == "" {
		return WalkerAuto, nil
	}
	for _, k := range WalkerKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWalker, s)
}

// DefaultLibraries are the C libraries tried, in order, to reach
// dl_iterate_phdr.
var DefaultLibraries = []string{
	"libc.so.6",
	"libc.so",
	"libc.musl-x86_64.so.1",
	"libc.musl-aarch64.so.1",
}

type unsupportedWalker struct{}

func (unsupportedWalker) Walk(func(Info) bool) error {
	return ErrUnsupported
}
