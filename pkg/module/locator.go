package module

import (
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Walker enumerates the modules of the current process.
//
// Walk calls yield once per module, in loader order, until yield returns
// false or the modules are exhausted. A pass cannot be resumed, and yield
// must not start another Walk on the same goroutine.
type Walker interface {
	Walk(yield func(Info) bool) error
}

// WalkerFunc adapts a function to the Walker interface.
type WalkerFunc func(yield func(Info) bool) error

// Walk calls f(yield).
func (f WalkerFunc) Walk(yield func(Info) bool) error {
	return f(yield)
}

// Locator resolves loaded modules by name.
type Locator struct {
	logger zerolog.Logger
	walker Walker
}

// Option configures a Locator.
type Option func(*Locator)

// WithWalker sets the walker used to enumerate modules.
func WithWalker(w Walker) Option {
	return func(l *Locator) {
		l.walker = w
	}
}

// NewLocator creates a locator. Without WithWalker it uses the WalkerAuto
// walker for the current platform.
func NewLocator(logger zerolog.Logger, opts ...Option) *Locator {
	l := &Locator{
		logger: logger.With().Str("component", "module-locator").Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}

	if l.walker == nil {
		w, err := NewWalker(logger, WalkerAuto, nil)
		if err != nil {
			l.logger.Warn().Err(err).Msg("No module walker available")
			w = unsupportedWalker{}
		}
		l.walker = w
	}

	return l
}

var (
	defaultOnce    sync.Once
	defaultLocator *Locator
)

// Default returns the process-wide locator used by package-level helpers.
// It logs nothing.
func Default() *Locator {
	defaultOnce.Do(func() {
		defaultLocator = NewLocator(zerolog.Nop())
	})
	return defaultLocator
}

// Find returns the first module whose name contains name. The second result
// is false when no module matches or the name cannot be used as a query.
func (l *Locator) Find(name string) (Info, bool) {
	m, err := l.Lookup(name)
	return m, err == nil
}

// Lookup is Find with the reason for a failed lookup: ErrInvalidName,
// ErrModuleNotFound, or an error from the walker.
func (l *Locator) Lookup(name string) (Info, error) {
	query, err := normalizeName(name)
	if err != nil {
		return Info{}, err
	}

	var (
		found Info
		ok    bool
	)
	err = l.walker.Walk(func(m Info) bool {
		if strings.Contains(m.Name, query) {
			found, ok = m, true
			return false
		}
		return true
	})

	if ok {
		l.logger.Debug().
			Str("query", name).
			Str("module", found.DisplayName()).
			Uint64("base", uint64(found.Base)).
			Uint64("size", uint64(found.Size)).
			Msg("Resolved module")
		return found, nil
	}
	if err != nil {
		return Info{}, fmt.Errorf("failed to enumerate modules: %w", err)
	}

	l.logger.Debug().Str("query", name).Msg("No loaded module matches query")
	return Info{}, fmt.Errorf("%w: %q", ErrModuleNotFound, name)
}

// Modules returns every module the walker reports.
func (l *Locator) Modules() ([]Info, error) {
	var modules []Info
	err := l.walker.Walk(func(m Info) bool {
		modules = append(modules, m)
		return true
	})
	if err != nil {
		return modules, fmt.Errorf("failed to enumerate modules: %w", err)
	}
	return modules, nil
}

// All returns the modules as a single-use sequence. Enumeration errors end
// the sequence early; use Modules to observe them.
func (l *Locator) All() iter.Seq[Info] {
	return func(yield func(Info) bool) {
		if err := l.walker.Walk(yield); err != nil {
			l.logger.Debug().Err(err).Msg("Module enumeration ended with error")
		}
	}
}

// normalizeName strips a leading "./" and rejects names that cannot be
// represented as a C string.
func normalizeName(name string) (string, error) {
	if strings.IndexByte(name, 0) >= 0 {
		return "", fmt.Errorf("%w: %q contains a NUL byte", ErrInvalidName, name)
	}
	return strings.TrimPrefix(name, "./"), nil
}
