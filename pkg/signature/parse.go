package signature

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidPattern = errors.New("invalid pattern")

// Parse reads a pattern in IDA notation: whitespace-separated hex bytes,
// with "?" or "??" for a wildcard.
//
//	48 8B 05 ?? ?? ?? ?? 48 85 C0
func Parse(text string) (*Signature, error) {
	fields := strings.Fields(text)
	pattern := make([]byte, len(fields))
	mask := make(Mask, len(fields))

	for i, f := range fields {
		if f == "?" || f == "??" {
			mask[i] = Wildcard
			continue
		}
		if len(f) != 2 {
			return nil, fmt.Errorf("%w: token %d %q is not a hex byte", ErrInvalidPattern, i, f)
		}
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d %q is not a hex byte", ErrInvalidPattern, i, f)
		}
		pattern[i] = byte(v)
		mask[i] = Exact
	}

	return &Signature{pattern: pattern, mask: mask}, nil
}

// MustParse is Parse for patterns known at compile time. It panics on error.
func MustParse(text string) *Signature {
	s, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("signature: %v", err))
	}
	return s
}

// ParseCode builds a signature from code notation: pattern holds the raw
// bytes ("\x48\x8B\x05\x00") and mask one token per byte ("xxx?"). It panics
// when the lengths differ.
func ParseCode(pattern, mask string) *Signature {
	return New([]byte(pattern), ParseMask(mask))
}
