package module

import "errors"

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrInvalidName    = errors.New("invalid module name")
	ErrUnsupported    = errors.New("module enumeration unsupported on this platform")
	ErrUnknownWalker  = errors.New("unknown module walker")
)
