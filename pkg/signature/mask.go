package signature

import (
	"strings"
)

// MaskToken marks one pattern position as exact or wildcard.
type MaskToken byte

const (
	Exact    MaskToken = 'x'
	Wildcard MaskToken = '?'
)

// Mask holds one token per pattern byte.
type Mask []MaskToken

// ParseMask reads a code-style mask such as "xx??x". 'x' is Exact and every
// other byte is a Wildcard.
func ParseMask(s string) Mask {
	m := make(Mask, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == byte(Exact) {
			m[i] = Exact
		} else {
			m[i] = Wildcard
		}
	}
	return m
}

// ExactMask returns a mask of n Exact tokens.
func ExactMask(n int) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = Exact
	}
	return m
}

// IsExact reports whether position i must match exactly.
func (m Mask) IsExact(i int) bool {
	return m[i] == Exact
}

func (m Mask) String() string {
	var b strings.Builder
	b.Grow(len(m))
	for _, t := range m {
		if t == Exact {
			b.WriteByte(byte(Exact))
		} else {
			b.WriteByte(byte(Wildcard))
		}
	}
	return b.String()
}
