package signature

import (
	"fmt"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/coral-mesh/sigscan/pkg/module"
)

// Signature is an immutable byte pattern with a mask of the same length.
type Signature struct {
	pattern []byte
	mask    Mask
}

// New returns a signature for pattern and mask. It panics when their lengths
// differ. Both slices are copied.
func New(pattern []byte, mask Mask) *Signature {
	if len(pattern) != len(mask) {
		panic(fmt.Sprintf("signature: pattern has %d bytes but mask has %d tokens", len(pattern), len(mask)))
	}
	return &Signature{
		pattern: append([]byte(nil), pattern...),
		mask:    append(Mask(nil), mask...),
	}
}

// Len returns the number of positions in the signature.
func (s *Signature) Len() int {
	return len(s.pattern)
}

// Pattern returns a copy of the pattern bytes.
func (s *Signature) Pattern() []byte {
	return append([]byte(nil), s.pattern...)
}

// Mask returns a copy of the mask.
func (s *Signature) Mask() Mask {
	return append(Mask(nil), s.mask...)
}

// Scan returns the offset of the first match in haystack.
func (s *Signature) Scan(haystack []byte) (int, bool) {
	return Find(haystack, s.pattern, s.mask)
}

// ScanModule scans the first loaded module whose name contains name and
// returns the absolute address of the first match. It reports false when no
// module matches, the name is malformed, or the pattern is absent.
//
// The module image is read in place. The caller must keep the module loaded
// for the duration of the call.
func (s *Signature) ScanModule(name string) (uintptr, bool) {
	return s.ScanModuleWith(module.Default(), name)
}

// ScanModuleWith is ScanModule using locator l.
func (s *Signature) ScanModuleWith(l *module.Locator, name string) (uintptr, bool) {
	m, ok := l.Find(name)
	if !ok {
		return 0, false
	}
	off, ok := s.scanImage(m)
	if !ok {
		return 0, false
	}
	return m.Base + uintptr(off), true
}

// scanImage fails for modules without an addressable image, so an empty
// pattern never reports address 0.
func (s *Signature) scanImage(m module.Info) (off int, ok bool) {
	if !m.Mapped() {
		return 0, false
	}
	m.Borrow(func(image []byte) {
		off, ok = s.Scan(image)
	})
	return off, ok
}

// String renders the signature in IDA notation, for example "48 8B ?? 05".
func (s *Signature) String() string {
	var b strings.Builder
	b.Grow(len(s.pattern) * 3)
	for i, c := range s.pattern {
		if i > 0 {
			b.WriteByte(' ')
		}
		if s.mask.IsExact(i) {
			fmt.Fprintf(&b, "%02X", c)
		} else {
			b.WriteString("??")
		}
	}
	return b.String()
}

// ID returns a short fingerprint of the signature. Bytes under wildcards do
// not contribute, so signatures that match the same inputs share an ID.
func (s *Signature) ID() string {
	buf := make([]byte, 0, 2*len(s.pattern))
	for i, c := range s.pattern {
		if s.mask.IsExact(i) {
			buf = append(buf, byte(Exact), c)
		} else {
			buf = append(buf, byte(Wildcard), 0)
		}
	}
	return fmt.Sprintf("%016x", xxh3.Hash(buf))
}
